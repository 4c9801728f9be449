// Package cuisine infers a cuisine label for a venue through a cascade of
// best-effort strategies. Each strategy is a pure function that returns
// Unknown when it has no confident answer; the next one is tried only then.
// Adding a strategy is an append, not a new conditional.
package cuisine

import (
	"strings"
	"unicode"
)

const (
	Unknown = "Unknown"
	Bar     = "Bar"
)

// Strategy 단일 추론 전략. 실패는 Unknown으로 침묵 강등되며 절대 panic하지
// 않는다.
type Strategy func(name string, categories []string, reviews func() []string) string

// Classifier ordered cascade of strategies
type Classifier struct {
	strategies []Strategy
}

func New() *Classifier {
	return &Classifier{
		strategies: []Strategy{
			byNameKeyword,
			byNameScript,
			byReviewKeywords,
		},
	}
}

// Classify 전략을 순서대로 시도. reviews는 세 번째 전략에서만 지연 호출된다.
func (c *Classifier) Classify(name string, categories []string, reviews func() []string) string {
	for _, s := range c.strategies {
		if label := safeApply(s, name, categories, reviews); label != Unknown {
			return label
		}
	}

	// 모든 전략 실패: bar 카테고리면 예약 라벨, 아니면 Unknown
	for _, cat := range categories {
		if cat == "bar" {
			return Bar
		}
	}
	return Unknown
}

// safeApply 전략 실행 중의 panic을 Unknown으로 강등
func safeApply(s Strategy, name string, categories []string, reviews func() []string) (label string) {
	defer func() {
		if r := recover(); r != nil {
			label = Unknown
		}
	}()
	return s(name, categories, reviews)
}

// 이름/리뷰 키워드 → cuisine 매핑 테이블
var keywordTable = []struct {
	keyword string
	cuisine string
}{
	{"pizza", "Italian"}, {"pasta", "Italian"}, {"trattoria", "Italian"},
	{"sushi", "Japanese"}, {"ramen", "Japanese"}, {"izakaya", "Japanese"},
	{"taco", "Mexican"}, {"burrito", "Mexican"}, {"cantina", "Mexican"},
	{"pho", "Vietnamese"}, {"banh mi", "Vietnamese"},
	{"dim sum", "Chinese"}, {"szechuan", "Chinese"}, {"dumpling", "Chinese"},
	{"curry", "Indian"}, {"tandoori", "Indian"}, {"masala", "Indian"},
	{"pad thai", "Thai"},
	{"gyro", "Greek"}, {"souvlaki", "Greek"},
	{"bbq", "Barbecue"}, {"barbecue", "Barbecue"}, {"smokehouse", "Barbecue"},
	{"burger", "American"}, {"diner", "American"},
	{"kebab", "Middle Eastern"}, {"falafel", "Middle Eastern"}, {"shawarma", "Middle Eastern"},
	{"bistro", "French"}, {"brasserie", "French"}, {"creperie", "French"},
	{"tapas", "Spanish"}, {"paella", "Spanish"},
	{"김밥", "Korean"}, {"국밥", "Korean"}, {"bibimbap", "Korean"}, {"bulgogi", "Korean"},
}

// byNameKeyword 상호명 키워드 매칭
func byNameKeyword(name string, _ []string, _ func() []string) string {
	return scanKeywords(name)
}

// byNameScript 상호명의 문자 체계로 cuisine 힌트 추론
func byNameScript(name string, _ []string, _ func() []string) string {
	var hangul, kana, han, thai int
	for _, r := range name {
		switch {
		case unicode.Is(unicode.Hangul, r):
			hangul++
		case unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r):
			kana++
		case unicode.Is(unicode.Han, r):
			han++
		case unicode.Is(unicode.Thai, r):
			thai++
		}
	}

	switch {
	case hangul > 0:
		return "Korean"
	case kana > 0:
		return "Japanese"
	case thai > 0:
		return "Thai"
	case han > 0:
		// 한자만 있는 경우 (가나 없음) 중식으로 추정
		return "Chinese"
	}
	return Unknown
}

// byReviewKeywords 리뷰 본문 샘플 키워드 스캔
func byReviewKeywords(_ string, _ []string, reviews func() []string) string {
	if reviews == nil {
		return Unknown
	}
	for _, text := range reviews() {
		if label := scanKeywords(text); label != Unknown {
			return label
		}
	}
	return Unknown
}

func scanKeywords(text string) string {
	lower := strings.ToLower(text)
	for _, entry := range keywordTable {
		if strings.Contains(lower, entry.keyword) {
			return entry.cuisine
		}
	}
	return Unknown
}
