package bridge

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
)

func corsMiddleware() fiber.Handler {
	config := cors.Config{
		// Headers as listed by the Stremio example addon.
		//
		// According to logs an actual stream request sends these headers though:
		//   Header:map[
		// 	  Accept:[*/*]
		// 	  Accept-Encoding:[gzip, deflate, br]
		// 	  Connection:[keep-alive]
		// 	  Origin:[https://app.strem.io]
		// 	  User-Agent:[Mozilla/5.0 (Windows NT 6.2; WOW64) AppleWebKit/537.36 (KHTML, like Gecko) QtWebEngine/5.9.9 Chrome/56.0.2924.122 Safari/537.36 StremioShell/4.4.106]
		// ]
		AllowHeaders: strings.Join([]string{
			"Accept",
			"Accept-Language",
			"Content-Type",
			"Origin", // Not "safelisted" in the specification

			// Non-default for gorilla/handlers CORS handling
			"Accept-Encoding",
			"Content-Language", // "Safelisted" in the specification
			"X-Requested-With",
		}, ","),
		AllowMethods: "GET",
		AllowOrigins: "*",
	}
	return cors.New(config)
}

func createLoggingMiddleware(logger *zap.Logger, logIPs, logUserAgent bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// First call the other handlers in the chain!
		err := c.Next()

		// Then log

		duration := time.Since(start).Milliseconds()
		durationString := strconv.FormatInt(duration, 10) + "ms"

		fields := []zap.Field{
			zap.Int("status", c.Response().StatusCode()),
			zap.String("duration", durationString),
			zap.String("method", c.Method()),
			zap.String("url", c.OriginalURL()),
		}
		if logIPs {
			fields = append(fields, zap.String("ip", c.IP()), zap.Strings("forwardedFor", c.IPs()))
		}
		if logUserAgent {
			fields = append(fields, zap.String("userAgent", c.Get(fiber.HeaderUserAgent)))
		}
		logger.Info("Handled request", fields...)

		return err
	}
}
