// Package cursor provides the pluggable session persistence backends for
// resumable searches: a local TTL map, a Redis-backed store, and a fallback
// decorator that keeps persistence failures invisible to callers.
package cursor

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/danielkmetz/ActivityPal-sub004/internal/search"
)

// sweepEvery N번의 연산마다 만료 항목 일괄 정리
const sweepEvery = 64

type localEntry struct {
	data      []byte
	expiresAt time.Time
}

// LocalStore 프로세스 내 TTL 맵. 읽기 시 지연 만료 검사 + 주기적 스윕으로
// 메모리를 제한한다.
type LocalStore struct {
	mu      sync.Mutex
	entries map[string]localEntry
	ops     int
	now     func() time.Time
}

func NewLocalStore() *LocalStore {
	return &LocalStore{
		entries: make(map[string]localEntry),
		now:     time.Now,
	}
}

// Set 직렬화된 복사본을 저장하여 호출자와 상태를 공유하지 않는다
func (s *LocalStore) Set(_ context.Context, id string, state *search.SearchState, ttl time.Duration) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = localEntry{
		data:      data,
		expiresAt: s.now().Add(ttl),
	}
	s.maybeSweep()
	return nil
}

// Get miss 또는 만료 시 (nil, nil)
func (s *LocalStore) Get(_ context.Context, id string) (*search.SearchState, error) {
	s.mu.Lock()
	entry, ok := s.entries[id]
	if ok && s.now().After(entry.expiresAt) {
		delete(s.entries, id)
		ok = false
	}
	s.maybeSweep()
	s.mu.Unlock()

	if !ok {
		return nil, nil
	}

	var state search.SearchState
	if err := json.Unmarshal(entry.data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *LocalStore) Del(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	s.maybeSweep()
	return nil
}

// maybeSweep 호출자가 mu를 잡은 상태에서 호출
func (s *LocalStore) maybeSweep() {
	s.ops++
	if s.ops < sweepEvery {
		return
	}
	s.ops = 0
	now := s.now()
	for id, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, id)
		}
	}
}

// Len 보관 중인 세션 수 (만료 포함)
func (s *LocalStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
