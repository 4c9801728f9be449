package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/danielkmetz/ActivityPal-sub004/internal/config"
	"github.com/danielkmetz/ActivityPal-sub004/internal/logger"
)

// 업스트림 응답 status 값
const (
	StatusOK             = "OK"
	StatusZeroResults    = "ZERO_RESULTS"
	StatusInvalidRequest = "INVALID_REQUEST" // 페이지 토큰이 아직 유효화되지 않은 경우 포함
	StatusOverQuota      = "OVER_QUERY_LIMIT"
	StatusDenied         = "REQUEST_DENIED"
)

// Request one concrete nearby-search call (a combo plus paging/filter state)
type Request struct {
	Lat            float64
	Lng            float64
	Radius         float64
	Type           string
	Keyword        string
	RankByDistance bool // rankby=distance; radius must be omitted upstream
	OpenNow        bool
	MaxPrice       int // 1~4, 0이면 미지정
	PageToken      string
}

// Place raw upstream result item
type Place struct {
	PlaceID  string
	Name     string
	Types    []string
	Vicinity string
	Lat      float64
	Lng      float64
	Rating   float64
	OpenNow  *bool
	PhotoRef string
}

// Response nearby-search 응답
type Response struct {
	Status        string
	Results       []Place
	NextPageToken string
}

// Client is the upstream maps search boundary
type Client interface {
	NearbySearch(ctx context.Context, req *Request) (*Response, error)
}

// GooglePlaces Google Places Nearby Search API 클라이언트
type GooglePlaces struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewGooglePlaces(cfg *config.PlacesConfig) *GooglePlaces {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &GooglePlaces{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// nearbyResponse wire format of the upstream JSON body
type nearbyResponse struct {
	Status        string `json:"status"`
	ErrorMessage  string `json:"error_message"`
	NextPageToken string `json:"next_page_token"`
	Results       []struct {
		PlaceID  string   `json:"place_id"`
		Name     string   `json:"name"`
		Types    []string `json:"types"`
		Vicinity string   `json:"vicinity"`
		Rating   float64  `json:"rating"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		OpeningHours *struct {
			OpenNow *bool `json:"open_now"`
		} `json:"opening_hours"`
		Photos []struct {
			PhotoReference string `json:"photo_reference"`
		} `json:"photos"`
	} `json:"results"`
}

// NearbySearch 업스트림 Nearby Search 호출
func (g *GooglePlaces) NearbySearch(ctx context.Context, req *Request) (*Response, error) {
	log := logger.GetLogger("provider.places")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := httpReq.URL.Query()
	q.Add("key", g.apiKey)

	if req.PageToken != "" {
		// 토큰 기반 페이지 요청은 토큰과 키만 전달 (다른 파라미터는 무시됨)
		q.Add("pagetoken", req.PageToken)
	} else {
		q.Add("location", fmt.Sprintf("%.6f,%.6f", req.Lat, req.Lng))
		if req.RankByDistance {
			// rankby=distance와 radius는 상호 배타
			q.Add("rankby", "distance")
		} else {
			q.Add("radius", strconv.Itoa(int(req.Radius)))
		}
		if req.Type != "" {
			q.Add("type", req.Type)
		}
		if req.Keyword != "" {
			q.Add("keyword", req.Keyword)
		}
		if req.OpenNow {
			q.Add("opennow", "true")
		}
		if req.MaxPrice >= 1 && req.MaxPrice <= 4 {
			q.Add("maxprice", strconv.Itoa(req.MaxPrice))
		}
	}
	httpReq.URL.RawQuery = q.Encode()

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("nearby search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nearby search failed: http status=%d", resp.StatusCode)
	}

	var body nearbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode nearby search response: %w", err)
	}

	if body.Status != StatusOK && body.Status != StatusZeroResults && body.ErrorMessage != "" {
		log.Warnf("업스트림 응답 status=%s: %s", body.Status, body.ErrorMessage)
	}

	out := &Response{
		Status:        body.Status,
		NextPageToken: body.NextPageToken,
		Results:       make([]Place, 0, len(body.Results)),
	}
	for _, r := range body.Results {
		p := Place{
			PlaceID:  r.PlaceID,
			Name:     r.Name,
			Types:    r.Types,
			Vicinity: r.Vicinity,
			Lat:      r.Geometry.Location.Lat,
			Lng:      r.Geometry.Location.Lng,
			Rating:   r.Rating,
		}
		if r.OpeningHours != nil {
			p.OpenNow = r.OpeningHours.OpenNow
		}
		if len(r.Photos) > 0 {
			p.PhotoRef = r.Photos[0].PhotoReference
		}
		out.Results = append(out.Results, p)
	}

	return out, nil
}
