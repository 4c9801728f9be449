// Package media resolves presigned photo URLs for places, caching them
// in Redis (with a local map fallback) so repeated pages share URLs.
package media

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/danielkmetz/ActivityPal-sub004/internal/config"
	"github.com/danielkmetz/ActivityPal-sub004/internal/logger"
	"github.com/redis/go-redis/v9"
)

const mediaKeyPrefix = "activitypal:media:"

// URLCache place id → presigned 사진 URL 캐시
type URLCache struct {
	rdb *redis.Client // nil이면 로컬 캐시만 사용
	ttl time.Duration

	photoBaseURL string
	apiKey       string

	mu    sync.Mutex
	local map[string]localURL
}

type localURL struct {
	url       string
	expiresAt time.Time
}

func NewURLCache(rdb *redis.Client, cfg *config.PlacesConfig, ttl time.Duration) *URLCache {
	return &URLCache{
		rdb:          rdb,
		ttl:          ttl,
		photoBaseURL: cfg.PhotoBaseURL,
		apiKey:       cfg.APIKey,
		local:        make(map[string]localURL),
	}
}

// Resolve 캐시된 URL 반환, 없으면 photo reference로부터 생성 후 캐시.
// 어떤 실패도 빈 문자열로 강등될 뿐 호출자에게 전파되지 않는다.
func (c *URLCache) Resolve(ctx context.Context, placeID, photoRef string) string {
	if photoRef == "" {
		return ""
	}

	if cached := c.lookup(ctx, placeID); cached != "" {
		return cached
	}

	resolved := c.buildURL(photoRef)
	c.store(ctx, placeID, resolved)
	return resolved
}

func (c *URLCache) lookup(ctx context.Context, placeID string) string {
	if c.rdb != nil {
		val, err := c.rdb.Get(ctx, mediaKeyPrefix+placeID).Result()
		if err == nil {
			return val
		}
		if err != redis.Nil {
			logger.GetLogger("media").Debugf("미디어 캐시 조회 실패 (무시): %v", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.local[placeID]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(c.local, placeID)
		return ""
	}
	return entry.url
}

func (c *URLCache) store(ctx context.Context, placeID, resolved string) {
	if c.rdb != nil {
		if err := c.rdb.Set(ctx, mediaKeyPrefix+placeID, resolved, c.ttl).Err(); err != nil {
			logger.GetLogger("media").Debugf("미디어 캐시 저장 실패 (무시): %v", err)
		} else {
			return
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.local[placeID] = localURL{url: resolved, expiresAt: time.Now().Add(c.ttl)}
}

func (c *URLCache) buildURL(photoRef string) string {
	return fmt.Sprintf("%s?maxwidth=800&photo_reference=%s&key=%s",
		c.photoBaseURL, url.QueryEscape(photoRef), url.QueryEscape(c.apiKey))
}
