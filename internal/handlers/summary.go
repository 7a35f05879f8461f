package handlers

import (
	"time"

	"github.com/ashmitsharp/payledger-api/internal/services"
	"github.com/ashmitsharp/payledger-api/internal/utils"
	"github.com/gofiber/fiber/v3"
)

// SummaryHandler serves the dashboard rollup
type SummaryHandler struct {
	summaries *services.SummaryService
	currency  string
	now       services.Clock
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(summaries *services.SummaryService, currency string) *SummaryHandler {
	return &SummaryHandler{summaries: summaries, currency: currency, now: time.Now}
}

// GetSummary returns available funds and the bills of the current pay window
// GET /v1/summary?date=2024-01-20
func (h *SummaryHandler) GetSummary(c fiber.Ctx) error {
	s, err := h.summaries.Summary(c.Context(), queryDate(c, "date", h.now))
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.Map{
		"summary":                 s,
		"total_available_display": services.FormatMoney(s.TotalAvailable, h.currency),
		"total_due_display":       services.FormatMoney(s.TotalDue, h.currency),
	})
}
