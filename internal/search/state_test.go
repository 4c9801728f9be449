package search

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

func testQuery() *CanonicalQuery {
	return &CanonicalQuery{
		Lat:      37.5665,
		Lng:      126.978,
		Radius:   1500,
		Category: "Dining",
	}
}

func TestNewSearchState(t *testing.T) {
	st := NewSearchState(testQuery())

	if st.ID == "" {
		t.Error("Expected non-empty session id")
	}
	if st.QueryHash == "" {
		t.Error("Expected query hash")
	}
	if len(st.Combos) != len(st.ComboMeta) {
		t.Errorf("Expected combos/comboMeta same length, got %d/%d", len(st.Combos), len(st.ComboMeta))
	}
	if st.PageNo != 0 || st.Version != 0 {
		t.Errorf("Expected fresh counters, got pageNo=%d version=%d", st.PageNo, st.Version)
	}
}

// TestMarkSeenEviction cap 초과 시 가장 오래된 id부터 축출 (FIFO)
func TestMarkSeenEviction(t *testing.T) {
	st := NewSearchState(testQuery())
	limit := 5

	for i := 0; i < 8; i++ {
		st.MarkSeen(fmt.Sprintf("place-%d", i), limit)
	}

	if len(st.SeenIDs) != limit {
		t.Fatalf("Expected %d seen ids, got %d", limit, len(st.SeenIDs))
	}
	if st.HasSeen("place-0") || st.HasSeen("place-2") {
		t.Error("Expected oldest ids evicted")
	}
	if !st.HasSeen("place-7") {
		t.Error("Expected newest id retained")
	}

	// 중복 mark는 축출을 유발하지 않는다
	st.MarkSeen("place-7", limit)
	if len(st.SeenIDs) != limit {
		t.Errorf("Expected duplicate mark to be a no-op, got %d ids", len(st.SeenIDs))
	}
}

// TestSeenSurvivesSerialization 역직렬화 후에도 seen 멤버십이 유지된다
func TestSeenSurvivesSerialization(t *testing.T) {
	st := NewSearchState(testQuery())
	st.MarkSeen("place-a", 100)
	st.MarkSeen("place-b", 100)

	data, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var restored SearchState
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !restored.HasSeen("place-a") || !restored.HasSeen("place-b") {
		t.Error("Expected seen membership rebuilt from SeenIDs")
	}
	if restored.HasSeen("place-c") {
		t.Error("Expected unseen id to stay unseen")
	}
}

func TestMarkExhausted(t *testing.T) {
	st := NewSearchState(testQuery())
	st.ComboMeta[0].NextPageToken = "tok"

	st.MarkExhausted(0)
	if !st.ComboMeta[0].Exhausted {
		t.Error("Expected combo exhausted")
	}
	if st.ComboMeta[0].NextPageToken != "" {
		t.Error("Expected token cleared on exhaustion")
	}

	// 범위 밖 인덱스는 무시
	st.MarkExhausted(-1)
	st.MarkExhausted(99)

	if st.AllExhausted() {
		t.Error("Expected live combos remaining")
	}
	for i := range st.ComboMeta {
		st.MarkExhausted(i)
	}
	if !st.AllExhausted() {
		t.Error("Expected all combos exhausted")
	}
}

// TestMinTokenWait 아직 유효화되지 않은 토큰 중 최소 양수 대기만 반환
func TestMinTokenWait(t *testing.T) {
	st := NewSearchState(testQuery())
	now := time.Now()

	if _, ok := st.MinTokenWait(now); ok {
		t.Error("Expected no wait without tokens")
	}

	st.ComboMeta[0].NextPageToken = "a"
	st.ComboMeta[0].TokenReadyAt = now.Add(3 * time.Second)
	st.ComboMeta[1].NextPageToken = "b"
	st.ComboMeta[1].TokenReadyAt = now.Add(1 * time.Second)

	wait, ok := st.MinTokenWait(now)
	if !ok {
		t.Fatal("Expected a pending wait")
	}
	if wait != time.Second {
		t.Errorf("Expected 1s wait, got %v", wait)
	}

	// 이미 유효화된 토큰은 대기에 포함되지 않는다
	st.ComboMeta[1].TokenReadyAt = now.Add(-time.Second)
	wait, ok = st.MinTokenWait(now)
	if !ok || wait != 3*time.Second {
		t.Errorf("Expected 3s wait from the remaining token, got %v (ok=%t)", wait, ok)
	}

	// 소진된 콤보의 토큰은 무시
	st.MarkExhausted(0)
	if _, ok := st.MinTokenWait(now); ok {
		t.Error("Expected no wait after exhaustion")
	}
}

// TestSplicePage FIFO 순서 그대로 앞에서 잘라낸다
func TestSplicePage(t *testing.T) {
	st := NewSearchState(testQuery())
	for i := 0; i < 7; i++ {
		st.Pending = append(st.Pending, PlaceResult{PlaceID: fmt.Sprintf("p-%d", i)})
	}

	page := st.SplicePage(5)
	if len(page) != 5 {
		t.Fatalf("Expected 5 items, got %d", len(page))
	}
	for i, item := range page {
		if item.PlaceID != fmt.Sprintf("p-%d", i) {
			t.Errorf("Expected FIFO order, got %s at %d", item.PlaceID, i)
		}
	}
	if len(st.Pending) != 2 || st.Pending[0].PlaceID != "p-5" {
		t.Errorf("Expected remainder [p-5, p-6], got %+v", st.Pending)
	}

	// 버퍼보다 큰 요청은 남은 전부 반환
	page = st.SplicePage(10)
	if len(page) != 2 {
		t.Errorf("Expected 2 items from drained buffer, got %d", len(page))
	}
	if len(st.Pending) != 0 {
		t.Errorf("Expected empty buffer, got %d", len(st.Pending))
	}
}
