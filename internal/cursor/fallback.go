package cursor

import (
	"context"
	"time"

	"github.com/danielkmetz/ActivityPal-sub004/internal/logger"
	"github.com/danielkmetz/ActivityPal-sub004/internal/search"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var storeFallbacksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "activitypal_cursor_store_fallbacks_total",
		Help: "Operations served by the local store after a primary store failure",
	},
	[]string{"op"},
)

// FallbackStore 기본 백엔드 실패 시 해당 연산만 로컬 백엔드로 투명하게
// 전환하는 데코레이터. 영속화 실패는 호출자에게 절대 노출되지 않는다.
type FallbackStore struct {
	primary search.CursorStore
	local   search.CursorStore
}

func NewFallbackStore(primary search.CursorStore, local search.CursorStore) *FallbackStore {
	return &FallbackStore{primary: primary, local: local}
}

func (s *FallbackStore) Set(ctx context.Context, id string, state *search.SearchState, ttl time.Duration) error {
	if err := s.primary.Set(ctx, id, state, ttl); err != nil {
		logger.GetLogger("cursor.fallback").Warnf("기본 스토어 set 실패, 로컬로 폴백: %v", err)
		storeFallbacksTotal.WithLabelValues("set").Inc()
		return s.local.Set(ctx, id, state, ttl)
	}
	return nil
}

// Get 기본 스토어 오류뿐 아니라 miss도 로컬을 확인한다: 이전 요청에서
// set이 로컬로 폴백되었을 수 있다.
func (s *FallbackStore) Get(ctx context.Context, id string) (*search.SearchState, error) {
	state, err := s.primary.Get(ctx, id)
	if err != nil {
		logger.GetLogger("cursor.fallback").Warnf("기본 스토어 get 실패, 로컬로 폴백: %v", err)
		storeFallbacksTotal.WithLabelValues("get").Inc()
		return s.local.Get(ctx, id)
	}
	if state == nil {
		return s.local.Get(ctx, id)
	}
	return state, nil
}

func (s *FallbackStore) Del(ctx context.Context, id string) error {
	if err := s.primary.Del(ctx, id); err != nil {
		logger.GetLogger("cursor.fallback").Warnf("기본 스토어 del 실패, 로컬로 폴백: %v", err)
		storeFallbacksTotal.WithLabelValues("del").Inc()
	}
	// 폴백으로 저장되었을 수 있으므로 로컬도 항상 정리
	return s.local.Del(ctx, id)
}
