package search

import (
	"context"
	"time"

	"github.com/danielkmetz/ActivityPal-sub004/internal/config"
	"github.com/danielkmetz/ActivityPal-sub004/internal/logger"
	"github.com/danielkmetz/ActivityPal-sub004/internal/provider"
)

// Fill 중단 사유
const (
	StopWantCount    = "wantCount"
	StopAllExhausted = "allExhausted"
	StopCallCap      = "callCap"
	StopNoCombos     = "noCombos"
	StopTokenWait    = "tokenWait" // 남은 콤보가 전부 토큰 대기 중이라 지금은 진행 불가
)

// 결과 스킵 사유 (진단용)
const (
	SkipMissingID        = "missingId"
	SkipDuplicate        = "duplicate"
	SkipOutsideRadius    = "outsideRadius"
	SkipCategoryMismatch = "categoryMismatch"
	SkipAvoided          = "avoided"
	SkipMissingAmenity   = "missingAmenity"
	SkipLowRating        = "lowRating"
)

// CallBudget 요청당 업스트림 호출 예산
type CallBudget struct {
	remaining int
	used      int
}

func NewCallBudget(n int) *CallBudget {
	return &CallBudget{remaining: n}
}

// Spend 호출 1회 차감. 예산이 없으면 false
func (b *CallBudget) Spend() bool {
	if b.remaining <= 0 {
		return false
	}
	b.remaining--
	b.used++
	return true
}

func (b *CallBudget) Remaining() int { return b.remaining }
func (b *CallBudget) Used() int      { return b.used }

// FillStats 한 번의 fill 패스에 대한 진단 정보
type FillStats struct {
	Calls      int
	StopReason string
	Skipped    map[string]int
	Admitted   int
}

func (s *FillStats) skip(reason string) {
	if s.Skipped == nil {
		s.Skipped = make(map[string]int)
	}
	s.Skipped[reason]++
}

// Merge 추가 패스의 통계를 누적
func (s *FillStats) Merge(other *FillStats) {
	s.Calls += other.Calls
	s.Admitted += other.Admitted
	s.StopReason = other.StopReason
	for reason, n := range other.Skipped {
		if s.Skipped == nil {
			s.Skipped = make(map[string]int)
		}
		s.Skipped[reason] += n
	}
}

// Filler 콤보를 라운드로빈으로 순회하며 결과 버퍼를 채우는 드라이버.
// 모든 상태 변경은 전달받은 SearchState에 대해 제자리에서 수행된다.
type Filler struct {
	provider provider.Client
	cfg      *config.SearchConfig
	now      func() time.Time
}

func NewFiller(p provider.Client, cfg *config.SearchConfig) *Filler {
	return &Filler{
		provider: p,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Fill 버퍼가 want에 도달하고 현재 라운드의 모든 콤보를 방문할 때까지,
// 호출 예산 내에서 콤보를 순회한다.
func (f *Filler) Fill(ctx context.Context, st *SearchState, want int, budget *CallBudget) *FillStats {
	log := logger.GetLogger("search.filler")
	stats := &FillStats{}

	if len(st.Combos) == 0 {
		stats.StopReason = StopNoCombos
		return stats
	}

	visited := 0       // 현재 라운드에서 방문한 (비소진) 콤보 수
	callsInRound := 0  // 진행 판정용: 라운드 내 실제 업스트림 호출 수
	admitsInRound := 0

	for {
		live := st.LiveCombos()
		if live == 0 {
			stats.StopReason = StopAllExhausted
			return stats
		}

		// 버퍼가 충분하고 라운드가 끝났으면 종료
		if len(st.Pending) >= want && visited >= live {
			stats.StopReason = StopWantCount
			return stats
		}

		// 라운드 완료 후에도 버퍼가 부족한데 이번 라운드에 아무 진행이
		// 없었다면 (전부 토큰 대기) 더 돌아도 소용없다
		if visited >= live {
			if callsInRound == 0 && admitsInRound == 0 {
				stats.StopReason = StopTokenWait
				return stats
			}
			visited, callsInRound, admitsInRound = 0, 0, 0
			continue
		}

		if budget.Remaining() <= 0 {
			stats.StopReason = StopCallCap
			return stats
		}

		idx, ok := f.nextCombo(st)
		if !ok {
			stats.StopReason = StopAllExhausted
			return stats
		}
		meta := &st.ComboMeta[idx]
		combo := st.Combos[idx]

		// 수용/스킵과 무관하게 인덱스를 전진시켜 라운드로빈 공정성 유지
		st.ComboIndex = (idx + 1) % len(st.Combos)
		visited++

		// 토큰 페이싱: 발급 후 최소 유효화 대기 전이면 이번 라운드는 건너뜀
		if meta.NextPageToken != "" && f.now().Before(meta.TokenReadyAt) {
			continue
		}

		if !budget.Spend() {
			stats.StopReason = StopCallCap
			return stats
		}
		stats.Calls++
		callsInRound++
		upstreamCallsTotal.Inc()

		resp, err := f.provider.NearbySearch(ctx, f.buildRequest(st, combo, meta))
		if err != nil {
			// 한 콤보의 전송 실패는 그 콤보만 소진시키고 요청은 계속된다
			log.Warnf("콤보 %d (%s/%s) 업스트림 호출 실패, 소진 처리: %v",
				idx, combo.PlaceType, combo.Keyword, err)
			upstreamErrorsTotal.Inc()
			st.MarkExhausted(idx)
			continue
		}

		switch resp.Status {
		case provider.StatusOK:
			// 아래 admission으로 진행
		case provider.StatusInvalidRequest:
			if meta.NextPageToken != "" && meta.TokenRetries == 0 {
				// 토큰이 아직 유효화되지 않음: 숙성 후 한 번 더 재시도
				meta.TokenRetries++
				meta.TokenReadyAt = f.now().Add(f.cfg.PageTokenDelay)
				continue
			}
			st.MarkExhausted(idx)
			continue
		default:
			// ZERO_RESULTS 및 기타 비정상 status는 해당 콤보 소진
			st.MarkExhausted(idx)
			continue
		}

		if len(resp.Results) == 0 {
			st.MarkExhausted(idx)
			continue
		}

		admitted := f.admit(st, resp.Results, stats)
		admitsInRound += admitted
		stats.Admitted += admitted

		meta.PagesFetched++
		meta.TokenRetries = 0
		if resp.NextPageToken == "" || meta.PagesFetched >= f.cfg.MaxPagesPerCombo {
			// 더 받을 페이지가 없거나 콤보당 페이지 상한 도달
			st.MarkExhausted(idx)
			continue
		}
		meta.NextPageToken = resp.NextPageToken
		meta.TokenReadyAt = f.now().Add(f.cfg.PageTokenDelay)
	}
}

// nextCombo 현재 인덱스부터 비소진 콤보 탐색
func (f *Filler) nextCombo(st *SearchState) (int, bool) {
	n := len(st.Combos)
	for i := 0; i < n; i++ {
		idx := (st.ComboIndex + i) % n
		if !st.ComboMeta[idx].Exhausted {
			return idx, true
		}
	}
	return 0, false
}

// buildRequest 세션 쿼리 + 콤보 → 업스트림 요청
func (f *Filler) buildRequest(st *SearchState, combo Combo, meta *ComboMeta) *provider.Request {
	q := &st.Query
	return &provider.Request{
		Lat:            q.Lat,
		Lng:            q.Lng,
		Radius:         q.Radius,
		Type:           combo.PlaceType,
		Keyword:        combo.Keyword,
		RankByDistance: q.RankByDistance,
		OpenNow:        q.Filters.OpenNow,
		MaxPrice:       budgetToMaxPrice(q.Budget),
		PageToken:      meta.NextPageToken,
	}
}

// admit 필터/검증/중복 제거를 거쳐 버퍼에 추가. 수용된 개수를 반환.
func (f *Filler) admit(st *SearchState, results []provider.Place, stats *FillStats) int {
	q := &st.Query
	allowed := allowedTypes(q)
	admitted := 0

	for i := range results {
		raw := &results[i]

		// 안정적인 외부 id가 없으면 중복 제거가 불가능하므로 버린다
		if raw.PlaceID == "" {
			stats.skip(SkipMissingID)
			continue
		}
		if st.HasSeen(raw.PlaceID) {
			stats.skip(SkipDuplicate)
			continue
		}

		dist := Haversine(q.Lat, q.Lng, raw.Lat, raw.Lng)

		// rankby=distance 모드에서는 업스트림이 radius를 무시하므로 직접 검사
		if q.RankByDistance && dist > q.Radius {
			stats.skip(SkipOutsideRadius)
			continue
		}

		if matchesAny(raw.Types, q.Filters.Avoid) {
			stats.skip(SkipAvoided)
			continue
		}

		// 키워드/vibe 콤보가 넓혀놓은 결과라도 카테고리/모드 타입 집합에는
		// 부합해야 한다. 타입 미보고 결과는 판단 불가로 통과.
		if len(raw.Types) > 0 && !matchesAny(raw.Types, allowed) {
			stats.skip(SkipCategoryMismatch)
			continue
		}

		if !containsAll(raw.Types, q.Filters.Amenities) {
			stats.skip(SkipMissingAmenity)
			continue
		}

		if q.Filters.MinRating > 0 && raw.Rating > 0 && raw.Rating < q.Filters.MinRating {
			stats.skip(SkipLowRating)
			continue
		}

		st.Pending = append(st.Pending, PlaceResult{
			PlaceID:   raw.PlaceID,
			Name:      raw.Name,
			Types:     raw.Types,
			Address:   raw.Vicinity,
			OpenNow:   raw.OpenNow,
			Lat:       raw.Lat,
			Lng:       raw.Lng,
			DistanceM: dist,
			Rating:    raw.Rating,
			PhotoRef:  raw.PhotoRef,
		})
		st.MarkSeen(raw.PlaceID, f.cfg.SeenCap)
		admitted++
	}

	return admitted
}

// budgetToMaxPrice "$".."$$$$" → 업스트림 maxprice 1..4
func budgetToMaxPrice(budget string) int {
	if budget == "" {
		return 0
	}
	n := len(budget)
	if n > 4 {
		n = 4
	}
	return n
}

func matchesAny(types []string, want []string) bool {
	if len(want) == 0 {
		return false
	}
	for _, t := range types {
		for _, w := range want {
			if t == w {
				return true
			}
		}
	}
	return false
}

// containsAll 요청된 태그가 전부 결과 타입에 포함되는지
func containsAll(types []string, want []string) bool {
	for _, w := range want {
		found := false
		for _, t := range types {
			if t == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
