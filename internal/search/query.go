package search

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MaxRadiusMeters = 50000
	MaxVibes        = 2
	MaxKeywordLen   = 120
)

// Request inbound search body; flat 또는 {"query": {...}} 래핑 두 형태 모두 허용
type Request struct {
	Lat        *float64 `json:"lat" validate:"omitempty,min=-90,max=90"`
	Lng        *float64 `json:"lng" validate:"omitempty,min=-180,max=180"`
	Radius     *float64 `json:"radius"`
	Category   string   `json:"category" validate:"omitempty,oneof=Dining Outdoor Entertainment Culture Nightlife"`
	DiningMode string   `json:"diningMode" validate:"omitempty,oneof=quick sitDown"`
	Budget     string   `json:"budget" validate:"omitempty,oneof=$ $$ $$$ $$$$"`
	Keyword    string   `json:"keyword"`
	Vibes      []string `json:"vibes"`
	OpenNow    bool     `json:"openNow"`
	MinRating  float64  `json:"minRating" validate:"omitempty,min=0,max=5"`
	Amenities  []string `json:"amenities" validate:"omitempty,max=10"`
	Avoid      []string `json:"avoid" validate:"omitempty,max=10"`

	// Paging
	PerPage   int    `json:"perPage"`
	Cursor    string `json:"cursor"`
	QueryHash string `json:"queryHash"`
	Debug     bool   `json:"debug"`

	// 래핑된 형태
	Query *Request `json:"query"`
}

// QueryFilters structured filters on a canonical query
type QueryFilters struct {
	OpenNow   bool     `json:"openNow,omitempty"`
	MinRating float64  `json:"minRating,omitempty"`
	Amenities []string `json:"amenities,omitempty"`
	Avoid     []string `json:"avoid,omitempty"`
}

// CanonicalQuery immutable normalized search intent; persisted with the
// session and never mutated afterwards
type CanonicalQuery struct {
	Lat            float64      `json:"lat"`
	Lng            float64      `json:"lng"`
	Radius         float64      `json:"radius"`
	Category       string       `json:"category"`
	DiningMode     string       `json:"diningMode,omitempty"`
	Budget         string       `json:"budget,omitempty"`
	Keyword        string       `json:"keyword,omitempty"`
	Vibes          []string     `json:"vibes,omitempty"`
	Filters        QueryFilters `json:"filters"`
	RankByDistance bool         `json:"rankByDistance"`
}

// Hash deterministic digest of the canonical query. 구조체 필드 순서가
// 인코딩 순서를 고정하므로 프로세스/재시작 간 안정적이다.
func (q *CanonicalQuery) Hash() string {
	data, err := json.Marshal(q)
	if err != nil {
		// CanonicalQuery는 marshal 불가능한 필드가 없다
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}

// Normalizer parses and validates inbound queries
type Normalizer struct {
	validate *validator.Validate
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		validate: validator.New(),
	}
}

// Parse 요청 본문을 평탄화된 Request로 파싱
func (n *Normalizer) Parse(body []byte) (*Request, error) {
	var req Request
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, &ValidationError{Message: "malformed request body"}
		}
	}

	// {"query": {...}} 래핑 해제. 페이징 필드는 바깥쪽 값이 우선
	if req.Query != nil {
		inner := *req.Query
		if req.Cursor != "" {
			inner.Cursor = req.Cursor
		}
		if req.PerPage != 0 {
			inner.PerPage = req.PerPage
		}
		if req.QueryHash != "" {
			inner.QueryHash = req.QueryHash
		}
		inner.Debug = inner.Debug || req.Debug
		inner.Query = nil
		return &inner, nil
	}

	return &req, nil
}

// IsContinuation 커서가 있으면 저장된 세션의 쿼리가 기준이므로
// 페이징 필드 외에는 재검증하지 않는다
func (r *Request) IsContinuation() bool {
	return r.Cursor != ""
}

// Canonicalize 신규 검색 요청을 검증하고 CanonicalQuery로 정규화.
// 어떤 필드라도 유효하지 않으면 부분 결과 없이 실패한다.
func (n *Normalizer) Canonicalize(req *Request) (*CanonicalQuery, error) {
	if req.Lat == nil || req.Lng == nil {
		return nil, &ValidationError{Field: "lat/lng", Message: "origin coordinates are required"}
	}
	lat, lng := *req.Lat, *req.Lng
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return nil, &ValidationError{Field: "lat/lng", Message: "coordinates must be finite"}
	}

	if req.Radius == nil {
		return nil, &ValidationError{Field: "radius", Message: "radius is required"}
	}
	radius := *req.Radius
	if radius <= 0 || radius > MaxRadiusMeters {
		return nil, &ValidationError{Field: "radius", Message: fmt.Sprintf("radius must be in (0, %d]", MaxRadiusMeters)}
	}

	if req.Category == "" {
		return nil, &ValidationError{Field: "category", Message: "category is required"}
	}

	if len(req.Keyword) > MaxKeywordLen {
		return nil, &ValidationError{Field: "keyword", Message: fmt.Sprintf("keyword exceeds %d characters", MaxKeywordLen)}
	}

	if err := n.validate.Struct(req); err != nil {
		var invalid validator.ValidationErrors
		if ok := asValidationErrors(err, &invalid); ok && len(invalid) > 0 {
			fe := invalid[0]
			return nil, &ValidationError{Field: jsonField(fe.Field()), Message: "value out of range or not in allowed set"}
		}
		return nil, &ValidationError{Message: err.Error()}
	}

	vibes, err := normalizeVibes(req.Vibes)
	if err != nil {
		return nil, err
	}

	q := &CanonicalQuery{
		Lat:        lat,
		Lng:        lng,
		Radius:     radius,
		Category:   req.Category,
		DiningMode: req.DiningMode,
		Budget:     req.Budget,
		Keyword:    strings.TrimSpace(req.Keyword),
		Vibes:      vibes,
		Filters: QueryFilters{
			OpenNow:   req.OpenNow,
			MinRating: req.MinRating,
			Amenities: normalizeTags(req.Amenities),
			Avoid:     normalizeTags(req.Avoid),
		},
	}
	q.RankByDistance = rankByDistance(q)

	return q, nil
}

// normalizeVibes 중복 제거 후 최대 2개까지 허용
func normalizeVibes(vibes []string) ([]string, error) {
	deduped := normalizeTags(vibes)
	if len(deduped) > MaxVibes {
		return nil, &ValidationError{Field: "vibes", Message: fmt.Sprintf("at most %d distinct vibes allowed", MaxVibes)}
	}
	return deduped, nil
}

// normalizeTags trims, lowercases, and dedupes preserving order
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*target = ve
	return true
}

// jsonField 구조체 필드명을 JSON 필드명으로 변환
func jsonField(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
