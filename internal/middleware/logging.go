package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// RequestLogger logs one line per request.
func RequestLogger() fiber.Handler {
	return logger.New(logger.Config{
		Format:     "${time} ${status} ${method} ${path} ${latency}\n",
		TimeFormat: "2006/01/02 15:04:05",
	})
}

// Recover turns handler panics into 500 responses, logging the stack when
// stackTrace is set.
func Recover(stackTrace bool) fiber.Handler {
	return recover.New(recover.Config{EnableStackTrace: stackTrace})
}
