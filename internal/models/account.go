package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is a bank account tracked by the ledger. Accounts are never deleted,
// only deactivated.
type Account struct {
	ID             uuid.UUID       `json:"id"`
	Institution    string          `json:"institution"`
	Name           string          `json:"name"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	EarnsInterest  bool            `json:"earns_interest"`
	Active         bool            `json:"active"`
	OpenedOn       time.Time       `json:"opened_on"`
}

// AccountBalance pairs an account with its computed balances.
type AccountBalance struct {
	Account   Account         `json:"account"`
	Posted    decimal.Decimal `json:"posted"`
	Available decimal.Decimal `json:"available"`
}

// InstitutionGroup is one sidebar section: an institution and its active accounts.
type InstitutionGroup struct {
	Institution string           `json:"institution"`
	Accounts    []AccountBalance `json:"accounts"`
}
