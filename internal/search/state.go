package search

import (
	"time"

	"github.com/danielkmetz/ActivityPal-sub004/internal/models"
	"github.com/google/uuid"
)

// PlaceResult normalized, enriched search result item
type PlaceResult struct {
	PlaceID    string             `json:"placeId"`
	Name       string             `json:"name"`
	Types      []string           `json:"types,omitempty"`
	Address    string             `json:"address,omitempty"`
	OpenNow    *bool              `json:"openNow,omitempty"`
	Lat        float64            `json:"lat"`
	Lng        float64            `json:"lng"`
	DistanceM  float64            `json:"distanceM"`
	Rating     float64            `json:"rating,omitempty"`
	Cuisine    string             `json:"cuisine,omitempty"`
	PhotoURL   string             `json:"photoUrl,omitempty"`
	PhotoRef   string             `json:"-"`
	Promotions []models.Promotion `json:"promotions"`
	Events     []models.Event     `json:"events"`
	Hydrated   bool               `json:"hydrated"`
}

// HasPromotion promo-seek 정렬 키
func (p *PlaceResult) HasPromotion() bool {
	return len(p.Promotions) > 0
}

// ComboMeta per-combo pagination bookkeeping. comboMeta와 combos는
// 항상 같은 길이를 유지한다.
type ComboMeta struct {
	PagesFetched  int       `json:"pagesFetched"`
	NextPageToken string    `json:"nextPageToken,omitempty"`
	TokenReadyAt  time.Time `json:"tokenReadyAt"`
	TokenRetries  int       `json:"tokenRetries,omitempty"`
	Exhausted     bool      `json:"exhausted"`
}

// SearchState resumable multi-page session, persisted between requests
// and mutated in place within one request cycle
type SearchState struct {
	ID         string         `json:"id"`
	QueryHash  string         `json:"queryHash"`
	Query      CanonicalQuery `json:"query"`
	Combos     []Combo        `json:"combos"`
	ComboMeta  []ComboMeta    `json:"comboMeta"`
	ComboIndex int            `json:"comboIndex"`
	SeenIDs    []string       `json:"seenIds"` // FIFO, 오래된 것부터 축출
	Pending    []PlaceResult  `json:"pending"`
	PageNo     int            `json:"pageNo"`
	Version    int            `json:"version"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`

	// SeenIDs에서 재구성되는 멤버십 인덱스 (직렬화 제외)
	seen map[string]struct{}
}

// NewSearchState 신규 검색 세션 생성
func NewSearchState(q *CanonicalQuery) *SearchState {
	combos := BuildCombos(q)
	now := time.Now().UTC()
	return &SearchState{
		ID:        uuid.NewString(),
		QueryHash: q.Hash(),
		Query:     *q,
		Combos:    combos,
		ComboMeta: make([]ComboMeta, len(combos)),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasSeen 이미 버퍼링/반환된 id인지 확인
func (s *SearchState) HasSeen(id string) bool {
	s.rebuildSeen()
	_, ok := s.seen[id]
	return ok
}

// MarkSeen id를 seen 집합에 추가. cap 초과 시 가장 오래된 항목부터 축출하여
// 쿼리 형태와 무관하게 메모리를 제한한다.
func (s *SearchState) MarkSeen(id string, limit int) {
	s.rebuildSeen()
	if _, ok := s.seen[id]; ok {
		return
	}
	s.SeenIDs = append(s.SeenIDs, id)
	s.seen[id] = struct{}{}

	for limit > 0 && len(s.SeenIDs) > limit {
		oldest := s.SeenIDs[0]
		s.SeenIDs = s.SeenIDs[1:]
		delete(s.seen, oldest)
	}
}

func (s *SearchState) rebuildSeen() {
	if s.seen != nil {
		return
	}
	s.seen = make(map[string]struct{}, len(s.SeenIDs))
	for _, id := range s.SeenIDs {
		s.seen[id] = struct{}{}
	}
}

// MarkExhausted 콤보 소진 처리. 한번 소진된 콤보는 되돌리지 않는다.
func (s *SearchState) MarkExhausted(idx int) {
	if idx < 0 || idx >= len(s.ComboMeta) {
		return
	}
	s.ComboMeta[idx].Exhausted = true
	s.ComboMeta[idx].NextPageToken = ""
}

// LiveCombos 소진되지 않은 콤보 수
func (s *SearchState) LiveCombos() int {
	n := 0
	for i := range s.ComboMeta {
		if !s.ComboMeta[i].Exhausted {
			n++
		}
	}
	return n
}

// AllExhausted 모든 콤보가 소진되었는지
func (s *SearchState) AllExhausted() bool {
	return len(s.Combos) == 0 || s.LiveCombos() == 0
}

// MinTokenWait 아직 유효화되지 않은 토큰 중 가장 빠른 대기 시간.
// 동률이면 낮은 콤보 인덱스가 선택된다.
func (s *SearchState) MinTokenWait(now time.Time) (time.Duration, bool) {
	var best time.Duration
	found := false
	for i := range s.ComboMeta {
		m := &s.ComboMeta[i]
		if m.Exhausted || m.NextPageToken == "" {
			continue
		}
		wait := m.TokenReadyAt.Sub(now)
		if wait <= 0 {
			continue
		}
		if !found || wait < best {
			best = wait
			found = true
		}
	}
	return best, found
}

// SplicePage 버퍼 앞에서 perPage개를 FIFO 순서 그대로 잘라낸다
func (s *SearchState) SplicePage(perPage int) []PlaceResult {
	if perPage > len(s.Pending) {
		perPage = len(s.Pending)
	}
	page := make([]PlaceResult, perPage)
	copy(page, s.Pending[:perPage])
	s.Pending = append(s.Pending[:0:0], s.Pending[perPage:]...)
	return page
}
