package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielkmetz/ActivityPal-sub004/internal/config"
	"github.com/danielkmetz/ActivityPal-sub004/internal/cursor"
	"github.com/danielkmetz/ActivityPal-sub004/internal/provider"
	"github.com/danielkmetz/ActivityPal-sub004/internal/search"
	"github.com/gofiber/fiber/v2"
)

// stubClient 항상 같은 한 페이지를 반환하는 업스트림 스텁
type stubClient struct{}

func (stubClient) NearbySearch(_ context.Context, req *provider.Request) (*provider.Response, error) {
	if req.Type != "restaurant" {
		return &provider.Response{Status: provider.StatusZeroResults}, nil
	}
	return &provider.Response{
		Status: provider.StatusOK,
		Results: []provider.Place{
			{PlaceID: "p-1", Name: "Stub Diner", Lat: 37.5665, Lng: 126.978, Rating: 4.1},
			{PlaceID: "p-2", Name: "Stub Cafe", Lat: 37.5665, Lng: 126.978, Rating: 4.5},
		},
	}, nil
}

func testApp(configured bool) *fiber.App {
	cfg := &config.SearchConfig{
		MaxCallsPerRequest: 10,
		MaxPagesPerCombo:   3,
		SeenCap:            1000,
		CursorTTL:          10 * time.Minute,
		DefaultPerPage:     10,
		MaxPerPage:         20,
		PrefetchBuffer:     5,
	}

	filler := search.NewFiller(stubClient{}, cfg)
	hydrator := search.NewHydrator(filler, nil, nil, nil, cfg)
	svc := search.NewService(search.ServiceOptions{
		Store:        cursor.NewLocalStore(),
		Hydrator:     hydrator,
		Config:       cfg,
		ProviderName: "stub",
		StorageName:  "local",
		Configured:   configured,
	})

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	SetupSearchRoutes(app.Group("/v1/places"), svc)
	return app
}

func TestSearchEndpointOK(t *testing.T) {
	app := testApp(true)

	body := `{"lat":37.5665,"lng":126.978,"radius":1500,"category":"Dining"}`
	req := httptest.NewRequest("POST", "/v1/places/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var page search.Page
	data, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(data, &page); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(page.CuratedPlaces) != 2 {
		t.Errorf("Expected 2 results, got %d", len(page.CuratedPlaces))
	}
	if page.Meta.Provider != "stub" {
		t.Errorf("Expected provider=stub, got %q", page.Meta.Provider)
	}
}

// TestSearchEndpointValidation 잘못된 요청은 {error:{status,message}} 형태의 400
func TestSearchEndpointValidation(t *testing.T) {
	app := testApp(true)

	body := `{"lat":37.5665,"lng":126.978,"radius":99999,"category":"Dining"}`
	req := httptest.NewRequest("POST", "/v1/places/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("Expected 400, got %d", resp.StatusCode)
	}

	var errResp ErrorResponse
	data, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(data, &errResp); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if errResp.Error.Status != 400 || errResp.Error.Message == "" {
		t.Errorf("Expected structured error body, got %+v", errResp)
	}
}

// TestSearchEndpointMissingCredential 자격 증명 누락은 500
func TestSearchEndpointMissingCredential(t *testing.T) {
	app := testApp(false)

	body := `{"lat":37.5665,"lng":126.978,"radius":1500,"category":"Dining"}`
	req := httptest.NewRequest("POST", "/v1/places/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != 500 {
		t.Errorf("Expected 500, got %d", resp.StatusCode)
	}
}

func TestSearchEndpointMalformedBody(t *testing.T) {
	app := testApp(true)

	req := httptest.NewRequest("POST", "/v1/places/search", strings.NewReader(`{"lat":`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Errorf("Expected 400 for malformed body, got %d", resp.StatusCode)
	}
}
