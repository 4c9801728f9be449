package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danielkmetz/ActivityPal-sub004/internal/config"
	"github.com/danielkmetz/ActivityPal-sub004/internal/models"
	"github.com/danielkmetz/ActivityPal-sub004/internal/provider"
)

type fakePromoSource struct {
	promos map[string][]models.Promotion
	err    error
}

func (f *fakePromoSource) LookupByPlace(_ context.Context, placeID string) ([]models.Promotion, []models.Event, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.promos[placeID], nil, nil
}

type fakeReviewSource struct {
	texts map[string][]string
}

func (f *fakeReviewSource) RecentTexts(_ context.Context, placeID string, _ int) ([]string, error) {
	return f.texts[placeID], nil
}

type fakeMediaSource struct{}

func (fakeMediaSource) Resolve(_ context.Context, placeID, photoRef string) string {
	return "https://cdn.example.com/" + placeID
}

func promoFor(placeID string) []models.Promotion {
	return []models.Promotion{{
		PlaceID:  placeID,
		Title:    "Happy Hour",
		StartsAt: time.Now().Add(-time.Hour),
		EndsAt:   time.Now().Add(time.Hour),
	}}
}

func newTestHydrator(fp provider.Client, promos *fakePromoSource, cfg *config.SearchConfig) *Hydrator {
	return NewHydrator(newTestFiller(fp, cfg), promos, &fakeReviewSource{}, fakeMediaSource{}, cfg)
}

// TestHydratePreservesCount 보강은 항목을 추가하거나 버리지 않는다
func TestHydratePreservesCount(t *testing.T) {
	fp := newFakeProvider()
	fp.script("restaurant", "", &provider.Response{
		Status: provider.StatusOK,
		Results: []provider.Place{
			{PlaceID: "a", Name: "Sushi House", Lat: 37.5665, Lng: 126.978, PhotoRef: "ref-a"},
			{PlaceID: "b", Name: "Plain Diner", Lat: 37.5665, Lng: 126.978},
		},
	})
	fp.script("cafe", "")

	cfg := testSearchConfig()
	cfg.MinPromoCount = 0
	promos := &fakePromoSource{promos: map[string][]models.Promotion{"b": promoFor("b")}}
	h := newTestHydrator(fp, promos, cfg)

	st := NewSearchState(testQuery())
	h.FillAndHydrate(context.Background(), st, 10, NewCallBudget(10))

	if len(st.Pending) != 2 {
		t.Fatalf("Expected 2 items after hydration, got %d", len(st.Pending))
	}
	for i := range st.Pending {
		item := &st.Pending[i]
		if !item.Hydrated {
			t.Errorf("Expected %s hydrated", item.PlaceID)
		}
		if item.Promotions == nil || item.Events == nil {
			t.Errorf("Expected non-nil promo/event slices for %s", item.PlaceID)
		}
	}
}

// TestHydrateCuisineAndPhoto 이름 기반 cuisine과 사진 URL 보강
func TestHydrateCuisineAndPhoto(t *testing.T) {
	fp := newFakeProvider()
	fp.script("restaurant", "", &provider.Response{
		Status: provider.StatusOK,
		Results: []provider.Place{
			{PlaceID: "a", Name: "Sushi House", Lat: 37.5665, Lng: 126.978, PhotoRef: "ref-a"},
		},
	})
	fp.script("cafe", "")

	cfg := testSearchConfig()
	cfg.MinPromoCount = 0
	h := newTestHydrator(fp, &fakePromoSource{}, cfg)

	st := NewSearchState(testQuery())
	h.FillAndHydrate(context.Background(), st, 10, NewCallBudget(10))

	item := st.Pending[0]
	if item.Cuisine != "Japanese" {
		t.Errorf("Expected Japanese cuisine from name, got %q", item.Cuisine)
	}
	if item.PhotoURL != "https://cdn.example.com/a" {
		t.Errorf("Expected resolved photo URL, got %q", item.PhotoURL)
	}
}

// TestHydratePromoFailureDegrades 프로모션 소스 실패는 해당 항목만 빈 채로
func TestHydratePromoFailureDegrades(t *testing.T) {
	fp := newFakeProvider()
	fp.script("restaurant", "", okPage([]string{"a"}, ""))
	fp.script("cafe", "")

	cfg := testSearchConfig()
	cfg.MinPromoCount = 0
	promos := &fakePromoSource{err: errors.New("db down")}
	h := newTestHydrator(fp, promos, cfg)

	st := NewSearchState(testQuery())
	h.FillAndHydrate(context.Background(), st, 10, NewCallBudget(10))

	if len(st.Pending) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(st.Pending))
	}
	if len(st.Pending[0].Promotions) != 0 {
		t.Error("Expected empty promotions on source failure")
	}
	if !st.Pending[0].Hydrated {
		t.Error("Expected item still marked hydrated")
	}
}

// TestSortPromotedFirst 프로모션 보유가 거리보다 우선하는 안정 정렬
func TestSortPromotedFirst(t *testing.T) {
	fp := newFakeProvider()
	fp.script("restaurant", "", &provider.Response{
		Status: provider.StatusOK,
		Results: []provider.Place{
			{PlaceID: "near-plain", Lat: 37.5665, Lng: 126.9781},
			{PlaceID: "far-promo", Lat: 37.5700, Lng: 126.978},
			{PlaceID: "near-promo", Lat: 37.5666, Lng: 126.978},
		},
	})
	fp.script("cafe", "")

	cfg := testSearchConfig()
	cfg.MinPromoCount = 0
	promos := &fakePromoSource{promos: map[string][]models.Promotion{
		"far-promo":  promoFor("far-promo"),
		"near-promo": promoFor("near-promo"),
	}}
	h := newTestHydrator(fp, promos, cfg)

	st := NewSearchState(testQuery())
	h.FillAndHydrate(context.Background(), st, 10, NewCallBudget(10))

	got := []string{st.Pending[0].PlaceID, st.Pending[1].PlaceID, st.Pending[2].PlaceID}
	want := []string{"near-promo", "far-promo", "near-plain"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected order %v, got %v", want, got)
		}
	}
}

// TestPromoSeekExtraRound 프로모션 결과가 부족하면 예산 내에서 추가 패스
func TestPromoSeekExtraRound(t *testing.T) {
	fp := newFakeProvider()
	cfg := testSearchConfig()
	cfg.PageTokenDelay = 0
	cfg.MinPromoCount = 1
	cfg.PromoIncrement = 5

	// 첫 페이지엔 프로모션 없음, 두 번째 페이지에 프로모션 보유 장소
	fp.script("restaurant", "",
		okPage([]string{"plain-1", "plain-2"}, "tok"),
		okPage([]string{"promoted"}, "tok2"),
	)
	fp.script("cafe", "", okPage([]string{"plain-3"}, "tok-c"), okPage([]string{"plain-4"}, "tok-c2"))

	promos := &fakePromoSource{promos: map[string][]models.Promotion{"promoted": promoFor("promoted")}}
	h := newTestHydrator(fp, promos, cfg)

	st := NewSearchState(testQuery())
	budget := NewCallBudget(10)
	h.FillAndHydrate(context.Background(), st, 3, budget)

	found := false
	for i := range st.Pending {
		if st.Pending[i].PlaceID == "promoted" {
			found = true
		}
	}
	if !found {
		t.Error("Expected promo-seek round to surface the promoted place")
	}
	if st.Pending[0].PlaceID != "promoted" {
		t.Errorf("Expected promoted place sorted first, got %s", st.Pending[0].PlaceID)
	}
}

// TestPromoSeekStopsAtBudget 예산이 없으면 추가 라운드를 돌지 않는다
func TestPromoSeekStopsAtBudget(t *testing.T) {
	fp := newFakeProvider()
	cfg := testSearchConfig()
	cfg.PageTokenDelay = 0
	cfg.MinPromoCount = 2
	fp.script("restaurant", "", okPage([]string{"plain-1"}, "tok"))
	fp.script("cafe", "", okPage([]string{"plain-2"}, "tok-c"))

	h := newTestHydrator(fp, &fakePromoSource{}, cfg)

	st := NewSearchState(testQuery())
	budget := NewCallBudget(2)
	stats := h.FillAndHydrate(context.Background(), st, 5, budget)

	if budget.Remaining() != 0 {
		t.Errorf("Expected budget drained, got %d remaining", budget.Remaining())
	}
	if stats.Calls != 2 {
		t.Errorf("Expected exactly 2 calls, got %d", stats.Calls)
	}
}
