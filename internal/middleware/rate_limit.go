package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimit: counter per-IP di Redis dengan expire. Dipakai di /auth/login
// supaya brute force password ketahan. Redis mati = lolos (jangan blokir
// login cuma karena cache down).
func RateLimit(rdb *redis.Client, prefix string, limit int64, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rdb == nil {
			return c.Next()
		}

		key := "rate:" + prefix + ":" + c.IP()
		count, err := rdb.Incr(c.Context(), key).Result()
		if err != nil {
			return c.Next()
		}
		if count == 1 {
			rdb.Expire(c.Context(), key, window)
		}
		if count > limit {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Terlalu banyak percobaan, coba lagi nanti",
			})
		}

		return c.Next()
	}
}
