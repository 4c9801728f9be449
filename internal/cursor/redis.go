package cursor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielkmetz/ActivityPal-sub004/internal/config"
	"github.com/danielkmetz/ActivityPal-sub004/internal/search"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "activitypal:cursor:"

// RedisStore 공유 캐시 기반 세션 스토어. 여러 인스턴스가 같은 커서를
// 이어받을 수 있게 한다.
type RedisStore struct {
	client *redis.Client
}

func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Set(ctx context.Context, id string, state *search.SearchState, ttl time.Duration) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to serialize session state: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+id, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*search.SearchState, error) {
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var state search.SearchState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("corrupt session state: %w", err)
	}
	return &state, nil
}

func (s *RedisStore) Del(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}
