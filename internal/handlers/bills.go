package handlers

import (
	"time"

	"github.com/ashmitsharp/payledger-api/internal/models"
	"github.com/ashmitsharp/payledger-api/internal/services"
	"github.com/ashmitsharp/payledger-api/internal/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// BillHandler handles bills and the state of their occurrences
type BillHandler struct {
	bills     *services.BillService
	scheduler *services.Scheduler
	now       services.Clock
}

// NewBillHandler creates a new bill handler
func NewBillHandler(bills *services.BillService, scheduler *services.Scheduler) *BillHandler {
	return &BillHandler{bills: bills, scheduler: scheduler, now: time.Now}
}

// BillRequest represents the body of add and edit requests
type BillRequest struct {
	Payee      string `json:"payee"`
	Frequency  string `json:"frequency"`
	DayOfMonth int    `json:"day_of_month"`
	Month      int    `json:"month"`
	AmountDue  string `json:"amount_due"`
	AccountID  string `json:"account_id"`
	TotalDebt  string `json:"total_debt"`
	Notes      string `json:"notes"`
}

// IgnoreRequest represents the request body for SetIgnored
type IgnoreRequest struct {
	Ignored bool `json:"ignored"`
}

func (req BillRequest) toNew() (services.NewBill, bool) {
	in := services.NewBill{
		Payee: req.Payee,
		Recurrence: models.Recurrence{
			Frequency:  models.Frequency(req.Frequency),
			DayOfMonth: req.DayOfMonth,
			Month:      req.Month,
		},
		AmountDue: services.ParseAmountOrZero(req.AmountDue),
		TotalDebt: services.ParseAmountOrZero(req.TotalDebt),
		Notes:     req.Notes,
	}
	if req.AccountID != "" {
		id, err := uuid.Parse(req.AccountID)
		if err != nil {
			return in, false
		}
		in.AccountID = &id
	}
	return in, true
}

// ListBills returns bills ordered by payee with their next due dates
// GET /v1/bills?all=true&date=2024-01-20
func (h *BillHandler) ListBills(c fiber.Ctx) error {
	activeOnly := c.Query("all") != "true"
	listings, err := h.bills.ListBills(c.Context(), activeOnly, queryDate(c, "date", h.now))
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, listings)
}

// AddBill creates a bill
// POST /v1/bills
// Body: {"payee": "Rent", "frequency": "monthly", "day_of_month": 1, "amount_due": "1500"}
func (h *BillHandler) AddBill(c fiber.Ctx) error {
	var req BillRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	in, ok := req.toNew()
	if !ok {
		return badRequest(c, "invalid account_id")
	}
	bill, err := h.bills.AddBill(c.Context(), in)
	if err != nil {
		return fail(c, err)
	}
	return utils.CreatedResponse(c, bill)
}

// GetBill returns one bill
// GET /v1/bills/:id
func (h *BillHandler) GetBill(c fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid bill id")
	}
	bill, err := h.bills.GetBill(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, bill)
}

// UpdateBill rewrites a bill
// PUT /v1/bills/:id
func (h *BillHandler) UpdateBill(c fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid bill id")
	}
	var req BillRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	in, ok := req.toNew()
	if !ok {
		return badRequest(c, "invalid account_id")
	}
	bill, err := h.bills.EditBill(c.Context(), id, in)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, bill)
}

// DeactivateBill stops a bill from appearing in upcoming lists
// POST /v1/bills/:id/deactivate
func (h *BillHandler) DeactivateBill(c fiber.Ctx) error {
	return h.setActive(c, false)
}

// ReactivateBill reverses DeactivateBill
// POST /v1/bills/:id/reactivate
func (h *BillHandler) ReactivateBill(c fiber.Ctx) error {
	return h.setActive(c, true)
}

func (h *BillHandler) setActive(c fiber.Ctx, active bool) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid bill id")
	}
	if err := h.bills.SetBillActive(c.Context(), id, active); err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.Map{"id": id, "active": active})
}

// Upcoming returns the occurrences falling in the pay window containing a date
// GET /v1/upcoming?date=2024-01-20
func (h *BillHandler) Upcoming(c fiber.Ctx) error {
	window, err := h.scheduler.WindowFor(c.Context(), queryDate(c, "date", h.now))
	if err != nil {
		return fail(c, err)
	}
	occurrences, err := h.bills.Upcoming(c.Context(), window)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.Map{
		"window":      window,
		"occurrences": occurrences,
	})
}

// GetOccurrence reports the paid and ignored state of one occurrence
// GET /v1/bills/:id/occurrences/:due
func (h *BillHandler) GetOccurrence(c fiber.Ctx) error {
	id, due, ok := h.occurrence(c)
	if !ok {
		return badRequest(c, "invalid bill id or due date")
	}
	paid, err := h.bills.IsPaid(c.Context(), id, due)
	if err != nil {
		return fail(c, err)
	}
	ignored, err := h.bills.IsIgnored(c.Context(), id, due)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.Map{
		"bill_id":  id,
		"due_date": due.Format(services.DateLayout),
		"paid":     paid,
		"ignored":  ignored,
	})
}

// MarkPaid records an occurrence as paid and books the payment
// POST /v1/bills/:id/occurrences/:due/paid
func (h *BillHandler) MarkPaid(c fiber.Ctx) error {
	id, due, ok := h.occurrence(c)
	if !ok {
		return badRequest(c, "invalid bill id or due date")
	}
	result, err := h.bills.MarkPaid(c.Context(), id, due)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, result)
}

// SetIgnored hides or restores an occurrence
// PUT /v1/bills/:id/occurrences/:due/ignored
// Body: {"ignored": true}
func (h *BillHandler) SetIgnored(c fiber.Ctx) error {
	id, due, ok := h.occurrence(c)
	if !ok {
		return badRequest(c, "invalid bill id or due date")
	}
	var req IgnoreRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.bills.SetIgnored(c.Context(), id, due, req.Ignored); err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.Map{"bill_id": id, "due_date": due.Format(services.DateLayout), "ignored": req.Ignored})
}

// ResetOccurrence clears an occurrence's state so it reads as unpaid again
// DELETE /v1/bills/:id/occurrences/:due
func (h *BillHandler) ResetOccurrence(c fiber.Ctx) error {
	id, due, ok := h.occurrence(c)
	if !ok {
		return badRequest(c, "invalid bill id or due date")
	}
	if err := h.bills.ResetOccurrence(c.Context(), id, due); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *BillHandler) occurrence(c fiber.Ctx) (uuid.UUID, time.Time, bool) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return uuid.Nil, time.Time{}, false
	}
	due, err := time.Parse(services.DateLayout, c.Params("due"))
	if err != nil {
		return uuid.Nil, time.Time{}, false
	}
	return id, due, true
}
