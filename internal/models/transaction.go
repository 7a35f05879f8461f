package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TxnKind is the sign polarity class of a transaction type.
type TxnKind int

const (
	KindUnknown TxnKind = iota
	KindExpense
	KindDeposit
	KindTransfer
)

func (k TxnKind) String() string {
	switch k {
	case KindExpense:
		return "expense"
	case KindDeposit:
		return "deposit"
	case KindTransfer:
		return "transfer"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the closed set of kinds.
func (k TxnKind) Valid() bool {
	return k == KindExpense || k == KindDeposit || k == KindTransfer
}

func (k TxnKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *TxnKind) UnmarshalText(text []byte) error {
	parsed, err := ParseTxnKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseTxnKind parses the canonical kind name ("expense", "deposit", "transfer").
func ParseTxnKind(s string) (TxnKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "expense":
		return KindExpense, nil
	case "deposit":
		return KindDeposit, nil
	case "transfer":
		return KindTransfer, nil
	}
	return KindUnknown, fmt.Errorf("unknown transaction kind: %q", s)
}

// KindFromLabel classifies a free-form type label the way imported type rows are
// classified: "expense..." and "deposit..." prefixes, anything else is a transfer.
func KindFromLabel(label string) TxnKind {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case strings.HasPrefix(l, "expense"):
		return KindExpense
	case strings.HasPrefix(l, "deposit"):
		return KindDeposit
	default:
		return KindTransfer
	}
}

// Transaction is a ledger entry. Amount is stored already sign-normalized.
type Transaction struct {
	ID               uuid.UUID       `json:"id"`
	AccountID        uuid.UUID       `json:"account_id"`
	TypeID           int32           `json:"type_id"`
	Description      string          `json:"description"`
	MethodID         *int32          `json:"method_id,omitempty"`
	ClassificationID *int32          `json:"classification_id,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	OccurredOn       time.Time       `json:"occurred_on"`
	Pending          bool            `json:"pending"`
	OrderKey         int64           `json:"order_key"`
}

// TransactionRow is a transaction joined with its lookup labels for display.
type TransactionRow struct {
	Transaction
	TypeLabel           string  `json:"type"`
	Kind                TxnKind `json:"kind"`
	MethodLabel         string  `json:"method,omitempty"`
	ClassificationLabel string  `json:"classification,omitempty"`
}

// NewTransaction carries the user-editable fields of a transaction.
// Amount may carry any sign; it is normalized by the type's kind on write.
type NewTransaction struct {
	AccountID        uuid.UUID
	TypeID           int32
	Description      string
	MethodID         *int32
	ClassificationID *int32
	Amount           decimal.Decimal
	OccurredOn       time.Time
	Pending          bool
}
