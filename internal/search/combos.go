package search

// Combo one concrete upstream request (type/keyword pair) derived from
// the logical query
type Combo struct {
	PlaceType string `json:"placeType"`
	Keyword   string `json:"keyword,omitempty"`
}

// 카테고리/모드별 업스트림 place type 집합.
// 순서가 결과 순서를 결정하므로 변경 시 세션 재현성에 영향을 준다.
var categoryTypes = map[string][]string{
	"Dining":        {"restaurant", "cafe"},
	"Outdoor":       {"park", "tourist_attraction", "campground"},
	"Entertainment": {"movie_theater", "bowling_alley", "amusement_park"},
	"Culture":       {"museum", "art_gallery"},
	"Nightlife":     {"bar", "night_club"},
}

var diningModeTypes = map[string][]string{
	"quick":   {"meal_takeaway", "cafe", "bakery"},
	"sitDown": {"restaurant", "bar"},
}

// allowedTypes 세션 쿼리의 카테고리/모드가 허용하는 place type 집합.
// 수용 단계의 카테고리 적합성 검사도 이 집합을 기준으로 한다.
func allowedTypes(q *CanonicalQuery) []string {
	types := categoryTypes[q.Category]
	if q.Category == "Dining" && q.DiningMode != "" {
		if modeTypes, ok := diningModeTypes[q.DiningMode]; ok {
			types = modeTypes
		}
	}
	return types
}

// BuildCombos canonical query → 콤보 목록. Pure and deterministic:
// 동일한 쿼리는 항상 동일한 목록을 생성한다 (콤보는 세션에 영속되므로
// 재현 가능해야 함).
func BuildCombos(q *CanonicalQuery) []Combo {
	types := allowedTypes(q)

	combos := make([]Combo, 0, len(types)+1+len(q.Vibes))

	// 키워드 콤보를 먼저: 사용자가 명시한 의도가 우선 방문된다
	if q.Keyword != "" {
		primary := ""
		if len(types) > 0 {
			primary = types[0]
		}
		combos = append(combos, Combo{PlaceType: primary, Keyword: q.Keyword})
	}

	for _, t := range types {
		combos = append(combos, Combo{PlaceType: t})
	}

	// vibe 태그는 대표 타입과 조합하여 다양화
	for _, v := range q.Vibes {
		primary := ""
		if len(types) > 0 {
			primary = types[0]
		}
		combos = append(combos, Combo{PlaceType: primary, Keyword: v})
	}

	return dedupeCombos(combos)
}

// dedupeCombos 순서를 보존하며 중복 제거
func dedupeCombos(combos []Combo) []Combo {
	seen := make(map[Combo]struct{}, len(combos))
	out := combos[:0]
	for _, c := range combos {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// rankByDistance quick 모드는 가까운 순 정렬이 의미가 크므로
// rankby=distance를 사용한다. 업스트림에서 radius와 상호 배타이므로
// 이 모드에서는 반경 검사를 결과 수용 단계에서 수행한다.
func rankByDistance(q *CanonicalQuery) bool {
	return q.DiningMode == "quick"
}
