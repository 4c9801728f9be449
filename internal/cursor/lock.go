package cursor

import (
	"context"
	"time"

	"github.com/danielkmetz/ActivityPal-sub004/internal/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockPrefix = "activitypal:lock:"

// unlockScript 소유자가 일치할 때만 해제 (다른 요청의 락을 지우지 않도록)
const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`

// RedisLock 세션 id당 short-TTL advisory lock. fail-open: 획득 경쟁에서
// 지거나 Redis가 죽어도 요청은 진행한다. 최악의 경우는 중복 업스트림
// 호출이지 상태 손상이 아니다 (각 요청은 자기 복사본을 읽고 last-wins로
// 쓴다).
type RedisLock struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLock(client *redis.Client, ttl time.Duration) *RedisLock {
	return &RedisLock{client: client, ttl: ttl}
}

// Acquire 락 획득 시도. release는 항상 호출 가능하다.
func (l *RedisLock) Acquire(ctx context.Context, id string) (func(), bool) {
	token := uuid.NewString()
	key := lockPrefix + id

	acquired, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		logger.GetLogger("cursor.lock").Debugf("락 획득 실패 (fail-open, 진행): %v", err)
		return func() {}, true
	}
	if !acquired {
		// 동시 이어보기: 진행은 하되 중복 호출 가능성만 감수
		return func() {}, false
	}

	return func() {
		_ = l.client.Eval(context.WithoutCancel(ctx), unlockScript, []string{key}, token).Err()
	}, true
}

// NoopLock 락 없이 동작하는 기본 구현 (로컬 스토어 전용 구성)
type NoopLock struct{}

func (NoopLock) Acquire(_ context.Context, _ string) (func(), bool) {
	return func() {}, true
}
