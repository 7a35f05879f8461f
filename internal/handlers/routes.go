package handlers

import (
	"github.com/gofiber/fiber/v3"
)

// Handlers groups every handler mounted under /v1.
type Handlers struct {
	Accounts     *AccountHandler
	Transactions *TransactionHandler
	Lookups      *LookupHandler
	Schedule     *ScheduleHandler
	Bills        *BillHandler
	Summary      *SummaryHandler
	Export       *ExportHandler
}

// Register mounts the API routes on router.
func (h *Handlers) Register(router fiber.Router) {
	accounts := router.Group("/accounts")
	accounts.Get("/", h.Accounts.ListAccounts)
	accounts.Post("/", h.Accounts.CreateAccount)
	accounts.Get("/:id", h.Accounts.GetAccount)
	accounts.Post("/:id/deactivate", h.Accounts.DeactivateAccount)
	accounts.Post("/:id/reactivate", h.Accounts.ReactivateAccount)
	accounts.Get("/:id/export", h.Export.ExportRegister)

	accounts.Get("/:id/transactions", h.Transactions.ListTransactions)
	accounts.Post("/:id/transactions", h.Transactions.AddTransaction)
	accounts.Put("/:id/transactions/:txnID", h.Transactions.UpdateTransaction)
	accounts.Delete("/:id/transactions/:txnID", h.Transactions.DeleteTransaction)
	accounts.Put("/:id/transactions/:txnID/pending", h.Transactions.SetPending)
	accounts.Post("/:id/transactions/:txnID/move-up", h.Transactions.MoveUp)
	accounts.Post("/:id/transactions/:txnID/move-down", h.Transactions.MoveDown)
	accounts.Post("/:id/transactions/:txnID/move-before", h.Transactions.MoveBefore)

	router.Get("/lookups/:table", h.Lookups.ListLookups)
	router.Get("/lookups/:table/search", h.Lookups.SearchLookup)
	router.Post("/lookups/:table", h.Lookups.AddLookup)

	router.Get("/pay-schedule", h.Schedule.GetSchedule)
	router.Put("/pay-schedule", h.Schedule.SetAnchor)
	router.Get("/pay-window", h.Schedule.GetWindow)

	bills := router.Group("/bills")
	bills.Get("/", h.Bills.ListBills)
	bills.Post("/", h.Bills.AddBill)
	bills.Get("/:id", h.Bills.GetBill)
	bills.Put("/:id", h.Bills.UpdateBill)
	bills.Post("/:id/deactivate", h.Bills.DeactivateBill)
	bills.Post("/:id/reactivate", h.Bills.ReactivateBill)
	bills.Get("/:id/occurrences/:due", h.Bills.GetOccurrence)
	bills.Post("/:id/occurrences/:due/paid", h.Bills.MarkPaid)
	bills.Put("/:id/occurrences/:due/ignored", h.Bills.SetIgnored)
	bills.Delete("/:id/occurrences/:due", h.Bills.ResetOccurrence)

	router.Get("/upcoming", h.Bills.Upcoming)
	router.Get("/summary", h.Summary.GetSummary)
}
