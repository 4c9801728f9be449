package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/danielkmetz/ActivityPal-sub004/internal/config"
	"github.com/danielkmetz/ActivityPal-sub004/internal/cursor"
	"github.com/danielkmetz/ActivityPal-sub004/internal/database"
	"github.com/danielkmetz/ActivityPal-sub004/internal/handlers"
	applogger "github.com/danielkmetz/ActivityPal-sub004/internal/logger"
	"github.com/danielkmetz/ActivityPal-sub004/internal/media"
	"github.com/danielkmetz/ActivityPal-sub004/internal/middleware"
	"github.com/danielkmetz/ActivityPal-sub004/internal/provider"
	"github.com/danielkmetz/ActivityPal-sub004/internal/search"
	"github.com/danielkmetz/ActivityPal-sub004/internal/services"
	"github.com/danielkmetz/ActivityPal-sub004/internal/telemetry"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// @title ActivityPal Places API
// @version 1.0.0
// @description 주변 장소 탐색/페이지네이션 API
// @host api.activitypal.app
// @BasePath /v1
// @schemes https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	if err := applogger.Init(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Initialize OpenTelemetry Tracer
	ctx := context.Background()
	tracerShutdown, err := telemetry.InitTracer(ctx, "activitypal-api", cfg.SigNozEndpoint)
	if err != nil {
		log.Printf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tracerShutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	// Initialize OpenTelemetry Metrics
	meterShutdown, err := telemetry.InitMeter(ctx, "activitypal-api", cfg.SigNozEndpoint)
	if err != nil {
		log.Printf("Failed to initialize metrics: %v", err)
	}
	defer func() {
		if err := meterShutdown(ctx); err != nil {
			log.Printf("Error shutting down metrics: %v", err)
		}
	}()

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Cursor storage: Redis가 구성되면 로컬 폴백을 덧대고, 아니면 로컬 단독
	var (
		rdb         *redis.Client
		store       search.CursorStore
		lock        search.SessionLocker
		storageName = "local"
	)
	local := cursor.NewLocalStore()
	if cfg.Redis.Enabled() {
		rdb = cursor.NewRedisClient(&cfg.Redis)
		store = cursor.NewFallbackStore(cursor.NewRedisStore(rdb), local)
		lock = cursor.NewRedisLock(rdb, cfg.Search.LockTTL)
		storageName = "redis"
	} else {
		store = local
		lock = cursor.NoopLock{}
	}

	// Upstream provider and hydration collaborators
	places := provider.NewGooglePlaces(&cfg.Places)
	promos := services.NewPromoService(db)
	reviews := services.NewReviewService(db)
	photos := media.NewURLCache(rdb, &cfg.Places, cfg.Search.MediaURLTTL)

	filler := search.NewFiller(places, &cfg.Search)
	hydrator := search.NewHydrator(filler, promos, reviews, photos, &cfg.Search)
	svc := search.NewService(search.ServiceOptions{
		Store:        store,
		Lock:         lock,
		Hydrator:     hydrator,
		Config:       &cfg.Search,
		ProviderName: "google-places",
		StorageName:  storageName,
		Configured:   cfg.Places.APIKey != "",
	})

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "ActivityPal Places API",
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	// JSON 구조화 액세스 로그
	app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","status":${status},"latency":"${latency}","ip":"${ip}","method":"${method}","path":"${path}","user_agent":"${ua}","error":"${error}"}` + "\n",
		TimeFormat: "2006-01-02T15:04:05Z07:00",
	}))
	app.Use(telemetry.New(telemetry.Config{
		ServiceName: "activitypal-api",
	}))
	app.Use(middleware.PrometheusMiddleware())
	// Mobile app (Android/iOS)에서 API 호출을 위해 모든 origin 허용
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowHeaders:     "Accept, Accept-Encoding, Authorization, Content-Type, DNT, Origin, User-Agent, X-Requested-With, X-API-Key",
		AllowCredentials: false, // AllowOrigins가 "*"일 때는 false여야 함
		ExposeHeaders:    "Content-Length, Content-Type",
		MaxAge:           86400, // Preflight 캐시 24시간
	}))

	// Setup routes
	setupRoutes(app, db, rdb, svc, cfg)

	// Start server
	port := cfg.Server.Port
	if port == "" {
		port = "3000"
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Println("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Error shutting down server: %v", err)
		}
	}()

	log.Printf("Server starting on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRoutes(app *fiber.App, db *database.DB, rdb *redis.Client, svc *search.Service, cfg *config.Config) {
	// Prometheus scrape endpoint
	app.Get("/metrics", middleware.PrometheusHandler())

	// Health check endpoints for k8s probes
	app.Get("/healthz", handlers.HealthCheck)
	app.Get("/v1/healthz", handlers.HealthCheck)
	app.Get("/v1/health", handlers.HealthCheck)
	app.Get("/v1/readiness", handlers.ReadinessCheck(db, rdb))
	app.Get("/v1/liveness", handlers.LivenessCheck)

	// API v1 group
	v1 := app.Group("/v1")

	// Places search (public, Bearer 토큰은 있으면 식별에만 사용)
	places := v1.Group("/places", middleware.OptionalAuth(cfg))
	handlers.SetupSearchRoutes(places, svc)
}
