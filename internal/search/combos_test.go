package search

import "testing"

// TestBuildCombosKeywordFirst 키워드 콤보가 항상 첫 번째로 방문된다
func TestBuildCombosKeywordFirst(t *testing.T) {
	q := &CanonicalQuery{Category: "Dining", Keyword: "tacos"}
	combos := BuildCombos(q)

	if len(combos) == 0 {
		t.Fatal("Expected combos, got none")
	}
	if combos[0].Keyword != "tacos" || combos[0].PlaceType != "restaurant" {
		t.Errorf("Expected keyword combo first, got %+v", combos[0])
	}
}

func TestBuildCombosDiningModeOverridesTypes(t *testing.T) {
	q := &CanonicalQuery{Category: "Dining", DiningMode: "quick"}
	combos := BuildCombos(q)

	want := []string{"meal_takeaway", "cafe", "bakery"}
	if len(combos) != len(want) {
		t.Fatalf("Expected %d combos, got %d", len(want), len(combos))
	}
	for i, pt := range want {
		if combos[i].PlaceType != pt {
			t.Errorf("Expected combos[%d]=%s, got %s", i, pt, combos[i].PlaceType)
		}
	}
}

func TestBuildCombosVibesDiversify(t *testing.T) {
	q := &CanonicalQuery{Category: "Nightlife", Vibes: []string{"live music", "rooftop"}}
	combos := BuildCombos(q)

	// bar, night_club + vibe 2개
	if len(combos) != 4 {
		t.Fatalf("Expected 4 combos, got %d: %+v", len(combos), combos)
	}
	if combos[2].Keyword != "live music" || combos[2].PlaceType != "bar" {
		t.Errorf("Expected vibe combo on primary type, got %+v", combos[2])
	}
}

// TestBuildCombosDedupe 키워드와 vibe가 겹치면 한 번만
func TestBuildCombosDedupe(t *testing.T) {
	q := &CanonicalQuery{Category: "Culture", Keyword: "modern", Vibes: []string{"modern"}}
	combos := BuildCombos(q)

	seen := make(map[Combo]int)
	for _, c := range combos {
		seen[c]++
		if seen[c] > 1 {
			t.Errorf("Duplicate combo %+v", c)
		}
	}
}

func TestBuildCombosDeterministic(t *testing.T) {
	q := &CanonicalQuery{Category: "Outdoor", Keyword: "trail", Vibes: []string{"scenic"}}
	a := BuildCombos(q)
	b := BuildCombos(q)

	if len(a) != len(b) {
		t.Fatalf("Expected identical combo lists, got %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("Combo %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
