package cuisine

import "testing"

func TestClassifyByNameKeyword(t *testing.T) {
	c := New()

	tests := []struct {
		name string
		want string
	}{
		{"Tony's Pizza Palace", "Italian"},
		{"Sushi Zen", "Japanese"},
		{"Taco Loco", "Mexican"},
		{"Pho 99", "Vietnamese"},
		{"Royal Curry House", "Indian"},
		{"Smokehouse BBQ", "Barbecue"},
		{"서울김밥", "Korean"},
	}

	for _, tt := range tests {
		if got := c.Classify(tt.name, nil, nil); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

// TestClassifyByScript 키워드 매칭 실패 시 문자 체계로 추론
func TestClassifyByScript(t *testing.T) {
	c := New()

	tests := []struct {
		name string
		want string
	}{
		{"청기와", "Korean"},
		{"やまと", "Japanese"},
		{"福临门", "Chinese"},
		{"ครัวไทย", "Thai"},
	}

	for _, tt := range tests {
		if got := c.Classify(tt.name, nil, nil); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

// TestClassifyByReviews 이름으로 판단 불가하면 리뷰 샘플을 지연 조회
func TestClassifyByReviews(t *testing.T) {
	c := New()

	reviews := func() []string {
		return []string{"great service", "best ramen in town"}
	}
	if got := c.Classify("The Corner Spot", nil, reviews); got != "Japanese" {
		t.Errorf("Expected Japanese from reviews, got %q", got)
	}

	// 이름에서 확정되면 리뷰는 호출되지 않는다
	called := false
	lazy := func() []string {
		called = true
		return nil
	}
	c.Classify("Pasta Fresca", nil, lazy)
	if called {
		t.Error("Expected review loader untouched when name suffices")
	}
}

func TestClassifyBarFallback(t *testing.T) {
	c := New()

	if got := c.Classify("The Alibi", []string{"bar", "establishment"}, nil); got != Bar {
		t.Errorf("Expected Bar fallback, got %q", got)
	}
	if got := c.Classify("The Alibi", []string{"establishment"}, nil); got != Unknown {
		t.Errorf("Expected Unknown without bar category, got %q", got)
	}
}

// TestClassifySurvivesPanickingStrategy 전략의 panic은 Unknown으로 강등
func TestClassifySurvivesPanickingStrategy(t *testing.T) {
	c := &Classifier{
		strategies: []Strategy{
			func(string, []string, func() []string) string { panic("boom") },
			byNameKeyword,
		},
	}

	if got := c.Classify("Burger Joint", nil, nil); got != "American" {
		t.Errorf("Expected cascade to continue past panic, got %q", got)
	}
}

func TestClassifyEmptyName(t *testing.T) {
	c := New()
	if got := c.Classify("", nil, nil); got != Unknown {
		t.Errorf("Expected Unknown for empty name, got %q", got)
	}
}
