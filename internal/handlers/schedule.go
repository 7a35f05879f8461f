package handlers

import (
	"time"

	"github.com/ashmitsharp/payledger-api/internal/models"
	"github.com/ashmitsharp/payledger-api/internal/services"
	"github.com/ashmitsharp/payledger-api/internal/utils"
	"github.com/gofiber/fiber/v3"
)

// ScheduleHandler serves the pay schedule and its windows
type ScheduleHandler struct {
	scheduler *services.Scheduler
	now       services.Clock
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(scheduler *services.Scheduler) *ScheduleHandler {
	return &ScheduleHandler{scheduler: scheduler, now: time.Now}
}

// SetAnchorRequest represents the request body for SetAnchor
type SetAnchorRequest struct {
	Anchor string `json:"anchor"`
}

// GetSchedule returns the stored pay schedule
// GET /v1/pay-schedule
func (h *ScheduleHandler) GetSchedule(c fiber.Ctx) error {
	sched, ok, err := h.scheduler.Schedule(c.Context())
	if err != nil {
		return fail(c, err)
	}
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "pay schedule not configured")
	}
	return utils.SuccessResponse(c, sched)
}

// SetAnchor re-anchors the schedule on a known payday
// PUT /v1/pay-schedule
// Body: {"anchor": "2024-01-05"}
func (h *ScheduleHandler) SetAnchor(c fiber.Ctx) error {
	var req SetAnchorRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	sched, err := h.scheduler.SetAnchor(c.Context(), services.ParseDateOr(req.Anchor, h.now()))
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, sched)
}

// GetWindow returns the pay window containing a date, with its neighbours
// GET /v1/pay-window?date=2024-01-20
func (h *ScheduleHandler) GetWindow(c fiber.Ctx) error {
	window, err := h.scheduler.WindowFor(c.Context(), queryDate(c, "date", h.now))
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.Map{
		"window":   window,
		"previous": services.PrevWindow(window),
		"next":     services.NextWindow(window),
		"days":     models.PayCadenceDays,
	})
}
