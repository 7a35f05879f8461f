package handlers

import (
	"github.com/ashmitsharp/payledger-api/internal/models"
	"github.com/ashmitsharp/payledger-api/internal/services"
	"github.com/ashmitsharp/payledger-api/internal/utils"
	"github.com/gofiber/fiber/v3"
)

// LookupHandler serves the type, method and classification tables
type LookupHandler struct {
	lookups *services.LookupResolver
}

// NewLookupHandler creates a new lookup handler
func NewLookupHandler(lookups *services.LookupResolver) *LookupHandler {
	return &LookupHandler{lookups: lookups}
}

// AddLookupRequest represents the request body for AddLookup
type AddLookupRequest struct {
	Label string `json:"label"`
}

var lookupTables = map[string]models.LookupTable{
	"types":           models.TableTxnType,
	"methods":         models.TableMethod,
	"classifications": models.TableClassification,
}

// ListLookups returns every row of a table
// GET /v1/lookups/:table (types|methods|classifications)
func (h *LookupHandler) ListLookups(c fiber.Ctx) error {
	table, ok := lookupTables[c.Params("table")]
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "unknown lookup table")
	}
	rows, err := h.lookups.List(c.Context(), table)
	if err != nil {
		return fail(c, err)
	}
	if rows == nil {
		rows = []models.Lookup{}
	}
	return utils.SuccessResponse(c, rows)
}

// SearchLookup resolves a free-form label to the closest row
// GET /v1/lookups/:table/search?q=groc
func (h *LookupHandler) SearchLookup(c fiber.Ctx) error {
	table, ok := lookupTables[c.Params("table")]
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "unknown lookup table")
	}
	q := c.Query("q")
	if q == "" {
		return badRequest(c, "q is required")
	}
	row, found, err := h.lookups.Resolve(c.Context(), table, q)
	if err != nil {
		return fail(c, err)
	}
	if !found {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "no matching label")
	}
	return utils.SuccessResponse(c, row)
}

// AddLookup appends a label to a table
// POST /v1/lookups/:table
// Body: {"label": "Utilities"}
func (h *LookupHandler) AddLookup(c fiber.Ctx) error {
	table, ok := lookupTables[c.Params("table")]
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "unknown lookup table")
	}
	var req AddLookupRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Label == "" {
		return badRequest(c, "label is required")
	}
	row, err := h.lookups.Add(c.Context(), table, req.Label)
	if err != nil {
		return fail(c, err)
	}
	return utils.CreatedResponse(c, row)
}
