package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/ashmitsharp/payledger-api/internal/models"
	"github.com/ashmitsharp/payledger-api/internal/services"
	"github.com/ashmitsharp/payledger-api/internal/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// TransactionHandler handles register reads, writes and manual reordering
type TransactionHandler struct {
	ledger  *services.Ledger
	lookups *services.LookupResolver
	now     services.Clock
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(ledger *services.Ledger, lookups *services.LookupResolver) *TransactionHandler {
	return &TransactionHandler{ledger: ledger, lookups: lookups, now: time.Now}
}

// TransactionRequest represents the body of add and edit requests. Labels are
// resolved when the matching id is omitted.
type TransactionRequest struct {
	TypeID           int32  `json:"type_id"`
	Type             string `json:"type"`
	Description      string `json:"description"`
	MethodID         *int32 `json:"method_id"`
	Method           string `json:"method"`
	ClassificationID *int32 `json:"classification_id"`
	Classification   string `json:"classification"`
	Amount           string `json:"amount"`
	Date             string `json:"date"`
	Pending          bool   `json:"pending"`
}

// PendingRequest represents the request body for SetPending
type PendingRequest struct {
	Pending bool `json:"pending"`
}

// MoveBeforeRequest represents the request body for MoveBefore
type MoveBeforeRequest struct {
	TargetID string `json:"target_id"`
}

func (h *TransactionHandler) toNew(ctx context.Context, accountID uuid.UUID, req TransactionRequest) (models.NewTransaction, error) {
	in := models.NewTransaction{
		AccountID:        accountID,
		TypeID:           req.TypeID,
		Description:      req.Description,
		MethodID:         req.MethodID,
		ClassificationID: req.ClassificationID,
		Amount:           services.ParseAmountOrZero(req.Amount),
		OccurredOn:       services.ParseDateOr(req.Date, h.now()),
		Pending:          req.Pending,
	}

	if in.TypeID == 0 {
		row, ok, err := h.lookups.Resolve(ctx, models.TableTxnType, req.Type)
		if err != nil {
			return in, err
		}
		if !ok {
			return in, fmt.Errorf("%w: type %q", services.ErrUnknownCategory, req.Type)
		}
		in.TypeID = row.ID
	}
	if in.MethodID == nil && req.Method != "" {
		if row, ok, err := h.lookups.Resolve(ctx, models.TableMethod, req.Method); err != nil {
			return in, err
		} else if ok {
			in.MethodID = &row.ID
		}
	}
	if in.ClassificationID == nil && req.Classification != "" {
		if row, ok, err := h.lookups.Resolve(ctx, models.TableClassification, req.Classification); err != nil {
			return in, err
		} else if ok {
			in.ClassificationID = &row.ID
		}
	}
	return in, nil
}

// ListTransactions returns an account's register in display order
// GET /v1/accounts/:id/transactions
func (h *TransactionHandler) ListTransactions(c fiber.Ctx) error {
	accountID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid account id")
	}
	rows, err := h.ledger.ListTransactions(c.Context(), accountID)
	if err != nil {
		return fail(c, err)
	}
	if rows == nil {
		rows = []models.TransactionRow{}
	}
	return utils.SuccessResponse(c, rows)
}

// AddTransaction records a transaction at the top of the register
// POST /v1/accounts/:id/transactions
// Body: {"type": "Expense", "description": "Groceries", "amount": "42.10", "date": "2024-01-05"}
func (h *TransactionHandler) AddTransaction(c fiber.Ctx) error {
	accountID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid account id")
	}
	var req TransactionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	in, err := h.toNew(c.Context(), accountID, req)
	if err != nil {
		return fail(c, err)
	}
	txn, err := h.ledger.AddTransaction(c.Context(), in)
	if err != nil {
		return fail(c, err)
	}
	return utils.CreatedResponse(c, txn)
}

// UpdateTransaction rewrites a transaction in place
// PUT /v1/accounts/:id/transactions/:txnID
func (h *TransactionHandler) UpdateTransaction(c fiber.Ctx) error {
	accountID, txnID, ok := h.ids(c)
	if !ok {
		return badRequest(c, "invalid account or transaction id")
	}
	var req TransactionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	in, err := h.toNew(c.Context(), accountID, req)
	if err != nil {
		return fail(c, err)
	}
	txn, err := h.ledger.EditTransaction(c.Context(), txnID, in)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, txn)
}

// DeleteTransaction removes a transaction
// DELETE /v1/accounts/:id/transactions/:txnID
func (h *TransactionHandler) DeleteTransaction(c fiber.Ctx) error {
	accountID, txnID, ok := h.ids(c)
	if !ok {
		return badRequest(c, "invalid account or transaction id")
	}
	if _, err := h.ledger.GetTransaction(c.Context(), accountID, txnID); err != nil {
		return fail(c, err)
	}
	if err := h.ledger.DeleteTransaction(c.Context(), txnID); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetPending toggles the pending flag
// PUT /v1/accounts/:id/transactions/:txnID/pending
// Body: {"pending": true}
func (h *TransactionHandler) SetPending(c fiber.Ctx) error {
	accountID, txnID, ok := h.ids(c)
	if !ok {
		return badRequest(c, "invalid account or transaction id")
	}
	var req PendingRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if _, err := h.ledger.GetTransaction(c.Context(), accountID, txnID); err != nil {
		return fail(c, err)
	}
	if err := h.ledger.SetPending(c.Context(), txnID, req.Pending); err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.Map{"id": txnID, "pending": req.Pending})
}

// MoveUp swaps a transaction with the one directly above it
// POST /v1/accounts/:id/transactions/:txnID/move-up
func (h *TransactionHandler) MoveUp(c fiber.Ctx) error {
	return h.move(c, h.ledger.Ordering().MoveUp)
}

// MoveDown swaps a transaction with the one directly below it
// POST /v1/accounts/:id/transactions/:txnID/move-down
func (h *TransactionHandler) MoveDown(c fiber.Ctx) error {
	return h.move(c, h.ledger.Ordering().MoveDown)
}

func (h *TransactionHandler) move(c fiber.Ctx, op func(ctx context.Context, accountID, txnID uuid.UUID) (bool, error)) error {
	accountID, txnID, ok := h.ids(c)
	if !ok {
		return badRequest(c, "invalid account or transaction id")
	}
	moved, err := op(c.Context(), accountID, txnID)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.Map{"id": txnID, "moved": moved})
}

// MoveBefore places a transaction directly above another one
// POST /v1/accounts/:id/transactions/:txnID/move-before
// Body: {"target_id": "..."}
func (h *TransactionHandler) MoveBefore(c fiber.Ctx) error {
	accountID, txnID, ok := h.ids(c)
	if !ok {
		return badRequest(c, "invalid account or transaction id")
	}
	var req MoveBeforeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	targetID, err := uuid.Parse(req.TargetID)
	if err != nil {
		return badRequest(c, "target_id must be a transaction id")
	}
	if err := h.ledger.Ordering().MoveBefore(c.Context(), accountID, txnID, targetID); err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.Map{"id": txnID, "target_id": targetID})
}

func (h *TransactionHandler) ids(c fiber.Ctx) (uuid.UUID, uuid.UUID, bool) {
	accountID, ok := paramUUID(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	txnID, ok := paramUUID(c, "txnID")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return accountID, txnID, true
}
