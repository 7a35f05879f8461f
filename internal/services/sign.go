package services

import (
	"fmt"

	"github.com/ashmitsharp/payledger-api/internal/models"
	"github.com/shopspring/decimal"
)

// Normalize applies the sign polarity of kind to the magnitude of amount:
// expenses are negative, deposits and transfers positive. It is idempotent.
func Normalize(amount decimal.Decimal, kind models.TxnKind) (decimal.Decimal, error) {
	magnitude := amount.Abs()
	switch kind {
	case models.KindExpense:
		return magnitude.Neg(), nil
	case models.KindDeposit, models.KindTransfer:
		return magnitude, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: kind %d", ErrUnknownCategory, int(kind))
	}
}
