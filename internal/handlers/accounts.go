package handlers

import (
	"github.com/ashmitsharp/payledger-api/internal/models"
	"github.com/ashmitsharp/payledger-api/internal/services"
	"github.com/ashmitsharp/payledger-api/internal/utils"
	"github.com/gofiber/fiber/v3"
)

// AccountHandler serves accounts and their balances
type AccountHandler struct {
	ledger   *services.Ledger
	currency string
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(ledger *services.Ledger, currency string) *AccountHandler {
	return &AccountHandler{ledger: ledger, currency: currency}
}

// CreateAccountRequest represents the request body for CreateAccount
type CreateAccountRequest struct {
	Institution    string `json:"institution"`
	Name           string `json:"name"`
	OpeningBalance string `json:"opening_balance"`
	EarnsInterest  bool   `json:"earns_interest"`
}

type accountView struct {
	models.AccountBalance
	PostedDisplay    string `json:"posted_display"`
	AvailableDisplay string `json:"available_display"`
}

func (h *AccountHandler) view(b models.AccountBalance) accountView {
	return accountView{
		AccountBalance:   b,
		PostedDisplay:    services.FormatMoney(b.Posted, h.currency),
		AvailableDisplay: services.FormatMoney(b.Available, h.currency),
	}
}

// ListAccounts returns active accounts grouped by institution
// GET /v1/accounts
func (h *AccountHandler) ListAccounts(c fiber.Ctx) error {
	groups, err := h.ledger.Sidebar(c.Context())
	if err != nil {
		return fail(c, err)
	}

	type groupView struct {
		Institution string        `json:"institution"`
		Accounts    []accountView `json:"accounts"`
	}
	out := make([]groupView, 0, len(groups))
	for _, g := range groups {
		gv := groupView{Institution: g.Institution, Accounts: make([]accountView, 0, len(g.Accounts))}
		for _, a := range g.Accounts {
			gv.Accounts = append(gv.Accounts, h.view(a))
		}
		out = append(out, gv)
	}
	return utils.SuccessResponse(c, out)
}

// CreateAccount opens a new account
// POST /v1/accounts
// Body: {"institution": "Chase", "name": "Checking", "opening_balance": "1,200.00"}
func (h *AccountHandler) CreateAccount(c fiber.Ctx) error {
	var req CreateAccountRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Name == "" {
		return badRequest(c, "name is required")
	}

	account, err := h.ledger.CreateAccount(c.Context(), services.NewAccount{
		Institution:    req.Institution,
		Name:           req.Name,
		OpeningBalance: services.ParseAmountOrZero(req.OpeningBalance),
		EarnsInterest:  req.EarnsInterest,
	})
	if err != nil {
		return fail(c, err)
	}
	return utils.CreatedResponse(c, account)
}

// GetAccount returns an account with its posted and available balances
// GET /v1/accounts/:id
func (h *AccountHandler) GetAccount(c fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid account id")
	}
	header, err := h.ledger.AccountHeader(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, h.view(header))
}

// DeactivateAccount hides an account from the sidebar and blocks new entries
// POST /v1/accounts/:id/deactivate
func (h *AccountHandler) DeactivateAccount(c fiber.Ctx) error {
	return h.setActive(c, false)
}

// ReactivateAccount reverses DeactivateAccount
// POST /v1/accounts/:id/reactivate
func (h *AccountHandler) ReactivateAccount(c fiber.Ctx) error {
	return h.setActive(c, true)
}

func (h *AccountHandler) setActive(c fiber.Ctx, active bool) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid account id")
	}
	if err := h.ledger.SetAccountActive(c.Context(), id, active); err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.Map{"id": id, "active": active})
}
