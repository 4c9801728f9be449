package search

import (
	"context"
	"time"

	"github.com/danielkmetz/ActivityPal-sub004/internal/models"
)

// CursorStore 세션 영속화 계약. Get은 miss일 때 (nil, nil)을 반환한다.
type CursorStore interface {
	Set(ctx context.Context, id string, state *SearchState, ttl time.Duration) error
	Get(ctx context.Context, id string) (*SearchState, error)
	Del(ctx context.Context, id string) error
}

// SessionLocker 세션 id당 best-effort 상호 배제. fail-open: 획득 실패는
// 중복 업스트림 호출을 감수할 뿐 상태를 손상시키지 않는다.
type SessionLocker interface {
	Acquire(ctx context.Context, id string) (release func(), ok bool)
}

// PromoSource 장소 id 기준 프로모션/이벤트 조회
type PromoSource interface {
	LookupByPlace(ctx context.Context, placeID string) ([]models.Promotion, []models.Event, error)
}

// ReviewSource 장소 id 기준 리뷰 본문 샘플
type ReviewSource interface {
	RecentTexts(ctx context.Context, placeID string, limit int) ([]string, error)
}

// MediaSource presigned 미디어 URL 해석 (없으면 빈 문자열)
type MediaSource interface {
	Resolve(ctx context.Context, placeID, photoRef string) string
}
