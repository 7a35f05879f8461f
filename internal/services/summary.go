package services

import (
	"context"
	"time"

	"github.com/ashmitsharp/payledger-api/internal/models"
	"github.com/shopspring/decimal"
)

// Summary is the dashboard rollup for one pay window.
type Summary struct {
	TotalAvailable decimal.Decimal     `json:"total_available"`
	ActiveAccounts int                 `json:"active_accounts"`
	Window         models.Window       `json:"window"`
	Bills          []models.Occurrence `json:"bills"`
	TotalDue       decimal.Decimal     `json:"total_due"`
}

// SummaryService assembles the dashboard rollup.
type SummaryService struct {
	balances  *BalanceCalculator
	scheduler *Scheduler
	bills     *BillService
}

// NewSummaryService creates a summary service.
func NewSummaryService(balances *BalanceCalculator, scheduler *Scheduler, bills *BillService) *SummaryService {
	return &SummaryService{balances: balances, scheduler: scheduler, bills: bills}
}

// Summary returns total available funds across active accounts and the bills
// of the pay window containing ref. Ignored occurrences are left out; total
// due counts only unpaid ones.
func (s *SummaryService) Summary(ctx context.Context, ref time.Time) (Summary, error) {
	total, count, err := s.balances.TotalAvailable(ctx)
	if err != nil {
		return Summary{}, err
	}
	window, err := s.scheduler.WindowFor(ctx, ref)
	if err != nil {
		return Summary{}, err
	}
	upcoming, err := s.bills.Upcoming(ctx, window)
	if err != nil {
		return Summary{}, err
	}

	var unpaid []decimal.Decimal
	bills := make([]models.Occurrence, 0, len(upcoming))
	for _, occ := range upcoming {
		if occ.Ignored {
			continue
		}
		bills = append(bills, occ)
		if !occ.Paid {
			unpaid = append(unpaid, occ.Bill.AmountDue)
		}
	}

	return Summary{
		TotalAvailable: total,
		ActiveAccounts: count,
		Window:         window,
		Bills:          bills,
		TotalDue:       SumAmounts(unpaid...),
	}, nil
}
