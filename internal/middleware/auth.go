package middleware

import (
	"strings"

	"github.com/danielkmetz/ActivityPal-sub004/internal/config"
	"github.com/danielkmetz/ActivityPal-sub004/pkg/auth"
	"github.com/gofiber/fiber/v2"
)

// OptionalAuth 검색은 공개 API지만, 유효한 토큰이 있으면 사용자 컨텍스트를
// 로깅/트레이싱용으로 붙여준다. 잘못된 토큰은 익명으로 처리한다.
func OptionalAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" || cfg.JWT.SecretKey == "" {
			return c.Next()
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Next()
		}

		claims, err := auth.ValidateAccessToken(parts[1], cfg.JWT.SecretKey)
		if err != nil {
			return c.Next()
		}

		c.Locals("userID", claims.UserID)
		return c.Next()
	}
}
