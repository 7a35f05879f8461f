package handlers

import (
	"time"

	"github.com/ashmitsharp/payledger-api/internal/services"
	"github.com/ashmitsharp/payledger-api/internal/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// fail renders a service error with the status it maps to.
func fail(c fiber.Ctx, err error) error {
	apiErr := utils.FromDomainError(err)
	return utils.ErrorResponse(c, apiErr.StatusCode, apiErr.Message)
}

func badRequest(c fiber.Ctx, message string) error {
	return utils.ErrorResponse(c, fiber.StatusBadRequest, message)
}

func paramUUID(c fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

// queryDate reads a reference date from the query string. Missing or
// malformed values mean today.
func queryDate(c fiber.Ctx, key string, now services.Clock) time.Time {
	return services.ParseDateOr(c.Query(key), now())
}
