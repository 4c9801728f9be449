package handlers

import (
	"github.com/danielkmetz/ActivityPal-sub004/internal/database"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// HealthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
	})
}

// LivenessCheck k8s liveness probe
func LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// ReadinessCheck k8s readiness probe: DB와 Redis(구성된 경우) 연결 확인
func ReadinessCheck(db *database.DB, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sqlDB, err := db.DB.DB()
		if err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "not ready",
				"reason": "database unreachable",
			})
		}

		if rdb != nil {
			if err := rdb.Ping(c.UserContext()).Err(); err != nil {
				// Redis 장애는 로컬 폴백으로 흡수되므로 readiness는 유지
				return c.JSON(fiber.Map{
					"status":  "ready",
					"storage": "local-fallback",
				})
			}
		}

		return c.JSON(fiber.Map{
			"status": "ready",
		})
	}
}
