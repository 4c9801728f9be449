package search

import (
	"context"
	"sort"

	"github.com/danielkmetz/ActivityPal-sub004/internal/config"
	"github.com/danielkmetz/ActivityPal-sub004/internal/cuisine"
	"github.com/danielkmetz/ActivityPal-sub004/internal/logger"
	"github.com/danielkmetz/ActivityPal-sub004/internal/models"
)

const reviewSampleSize = 3

// Hydrator wraps the page filler with enrichment and a conditional re-fill
// that raises the proportion of promoted results
type Hydrator struct {
	filler   *Filler
	promos   PromoSource
	reviews  ReviewSource
	media    MediaSource
	cuisines *cuisine.Classifier
	cfg      *config.SearchConfig
}

func NewHydrator(filler *Filler, promos PromoSource, reviews ReviewSource, media MediaSource, cfg *config.SearchConfig) *Hydrator {
	return &Hydrator{
		filler:   filler,
		promos:   promos,
		reviews:  reviews,
		media:    media,
		cuisines: cuisine.New(),
		cfg:      cfg,
	}
}

// FillAndHydrate fill 패스 후 버퍼 전체를 보강/정렬하고, 프로모션 결과가
// 부족하면 예산 내에서 목표치를 올려 패스를 반복한다.
func (h *Hydrator) FillAndHydrate(ctx context.Context, st *SearchState, want int, budget *CallBudget) *FillStats {
	stats := h.filler.Fill(ctx, st, want, budget)
	h.hydrate(ctx, st)
	h.sortPending(st)

	rounds := 0
	for h.promoCount(st) < h.cfg.MinPromoCount &&
		budget.Remaining() > 0 &&
		rounds < h.cfg.MaxPromoRounds &&
		stats.StopReason != StopAllExhausted &&
		stats.StopReason != StopNoCombos {

		rounds++
		want += h.cfg.PromoIncrement
		promoSeekRoundsTotal.Inc()

		extra := h.filler.Fill(ctx, st, want, budget)
		stats.Merge(extra)
		h.hydrate(ctx, st)
		h.sortPending(st)
	}

	return stats
}

// hydrate 미보강 항목에 프로모션/이벤트/cuisine/사진 URL을 붙인다.
// 각 소스의 실패는 해당 항목만 비운 채 조용히 넘어간다.
func (h *Hydrator) hydrate(ctx context.Context, st *SearchState) {
	log := logger.GetLogger("search.hydrator")

	for i := range st.Pending {
		item := &st.Pending[i]
		if item.Hydrated {
			continue
		}

		if h.promos != nil {
			promos, events, err := h.promos.LookupByPlace(ctx, item.PlaceID)
			if err != nil {
				log.Debugf("프로모션 조회 실패 (%s): %v", item.PlaceID, err)
			} else {
				item.Promotions = promos
				item.Events = events
			}
		}
		if item.Promotions == nil {
			item.Promotions = []models.Promotion{}
		}
		if item.Events == nil {
			item.Events = []models.Event{}
		}

		item.Cuisine = h.cuisines.Classify(item.Name, item.Types, h.reviewsFor(ctx, item.PlaceID))

		if h.media != nil && item.PhotoRef != "" {
			item.PhotoURL = h.media.Resolve(ctx, item.PlaceID, item.PhotoRef)
		}

		item.Hydrated = true
	}
}

// reviewsFor 리뷰 텍스트 지연 로더. 실패는 빈 샘플로 강등된다.
func (h *Hydrator) reviewsFor(ctx context.Context, placeID string) func() []string {
	if h.reviews == nil {
		return nil
	}
	return func() []string {
		texts, err := h.reviews.RecentTexts(ctx, placeID, reviewSampleSize)
		if err != nil {
			return nil
		}
		return texts
	}
}

// sortPending 프로모션 보유 내림차순, 거리 오름차순 안정 정렬.
// 재정렬일 뿐 어떤 항목도 버리지 않는다.
func (h *Hydrator) sortPending(st *SearchState) {
	sort.SliceStable(st.Pending, func(i, j int) bool {
		pi, pj := st.Pending[i].HasPromotion(), st.Pending[j].HasPromotion()
		if pi != pj {
			return pi
		}
		return st.Pending[i].DistanceM < st.Pending[j].DistanceM
	})
}

func (h *Hydrator) promoCount(st *SearchState) int {
	n := 0
	for i := range st.Pending {
		if st.Pending[i].HasPromotion() {
			n++
		}
	}
	return n
}
