package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ServerConfig HTTP 서버 관련 설정
type ServerConfig struct {
	Port string
	Env  string
	Host string
}

// RedisConfig 커서 세션 캐시용 Redis 설정 (비어있으면 로컬 스토어만 사용)
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled Redis 백엔드 사용 여부
func (r *RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// PlacesConfig 업스트림 지도 검색 제공자(Google Places) 설정
type PlacesConfig struct {
	APIKey       string
	BaseURL      string
	PhotoBaseURL string
	Timeout      time.Duration
}

// SearchConfig 검색 오케스트레이션 예산/기본값
type SearchConfig struct {
	MaxCallsPerRequest int           // 요청당 업스트림 호출 상한
	MaxPagesPerCombo   int           // 콤보당 페이지 상한
	SeenCap            int           // 중복 제거용 seen-id 보관 상한 (FIFO)
	PageTokenDelay     time.Duration // 페이지 토큰 발급 후 최소 유효화 대기
	CursorTTL          time.Duration
	LockTTL            time.Duration
	DefaultPerPage     int
	MaxPerPage         int
	PrefetchBuffer     int
	MinPromoCount      int
	PromoIncrement     int
	MaxPromoRounds     int
	EmptyPageWaitMax   time.Duration
	MediaURLTTL        time.Duration
}

// JWTConfig 토큰 검증용 설정 (발급은 별도 인증 서비스 담당)
type JWTConfig struct {
	SecretKey string
}

// Config 애플리케이션의 모든 설정을 통합 관리하는 메인 구조체
type Config struct {
	Server      ServerConfig
	DatabaseURL string
	Redis       RedisConfig
	Places      PlacesConfig
	Search      SearchConfig
	JWT         JWTConfig

	// SigNoz
	SigNozEndpoint string
}

// Load 환경변수에서 설정을 로드
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "3000"),
			Env:  getEnv("SERVER_ENV", "development"),
			Host: getEnv("SERVER_HOST", "localhost:3000"),
		},

		// DATABASE_URL 우선, 없으면 개별 환경변수로 구성
		DatabaseURL: getDatabaseURL(),

		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},

		Places: PlacesConfig{
			APIKey:       getEnv("GOOGLE_MAPS_API_KEY", ""),
			BaseURL:      getEnv("PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place/nearbysearch/json"),
			PhotoBaseURL: getEnv("PLACES_PHOTO_BASE_URL", "https://maps.googleapis.com/maps/api/place/photo"),
			Timeout:      getEnvAsDuration("PLACES_TIMEOUT", 10*time.Second),
		},

		Search: SearchConfig{
			MaxCallsPerRequest: getEnvAsInt("SEARCH_MAX_CALLS_PER_REQUEST", 10),
			MaxPagesPerCombo:   getEnvAsInt("SEARCH_MAX_PAGES_PER_COMBO", 3),
			SeenCap:            getEnvAsInt("SEARCH_SEEN_CAP", 1000),
			PageTokenDelay:     getEnvAsDuration("SEARCH_PAGE_TOKEN_DELAY", 2*time.Second),
			CursorTTL:          getEnvAsDuration("SEARCH_CURSOR_TTL", 10*time.Minute),
			LockTTL:            getEnvAsDuration("SEARCH_LOCK_TTL", 5*time.Second),
			DefaultPerPage:     getEnvAsInt("SEARCH_DEFAULT_PER_PAGE", 10),
			MaxPerPage:         getEnvAsInt("SEARCH_MAX_PER_PAGE", 20),
			PrefetchBuffer:     getEnvAsInt("SEARCH_PREFETCH_BUFFER", 5),
			MinPromoCount:      getEnvAsInt("SEARCH_MIN_PROMO_COUNT", 2),
			PromoIncrement:     getEnvAsInt("SEARCH_PROMO_INCREMENT", 5),
			MaxPromoRounds:     getEnvAsInt("SEARCH_MAX_PROMO_ROUNDS", 2),
			EmptyPageWaitMax:   getEnvAsDuration("SEARCH_EMPTY_PAGE_WAIT_MAX", 2500*time.Millisecond),
			MediaURLTTL:        getEnvAsDuration("SEARCH_MEDIA_URL_TTL", time.Hour),
		},

		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET_KEY", ""),
		},

		SigNozEndpoint: getEnv("SIGNOZ_ENDPOINT", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getDatabaseURL returns DATABASE_URL or builds it from individual env vars
func getDatabaseURL() string {
	// 1. DATABASE_URL이 있으면 그대로 사용
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	// 2. 개별 환경변수로 구성 (k8s secret 키 이름과 일치)
	host := getEnv("POSTGRES_HOST", "localhost")
	port := getEnv("POSTGRES_PORT", "5432")
	user := getEnv("POSTGRES_USER", "postgres")
	password := getEnv("POSTGRES_PASSWORD", "")
	dbname := getEnv("POSTGRES_DB", "activitypal")
	sslmode := getEnv("POSTGRES_SSLMODE", "disable")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, password, host, port, dbname, sslmode)
}
