package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// XLSXContentType is the MIME type of exported workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const registerSheet = "Register"

// numFmtThousands is the builtin "#,##0.00" number format.
const numFmtThousands = 4

var registerHeaders = []any{"Date", "Description", "Type", "Method", "Classification", "Amount", "Pending", "Balance"}

// Exporter renders account registers as spreadsheets.
type Exporter struct {
	ledger *Ledger
}

// NewExporter creates an exporter reading through ledger.
func NewExporter(ledger *Ledger) *Exporter {
	return &Exporter{ledger: ledger}
}

// ExportXLSX renders the register of an account in display order with a
// running available balance, followed by posted and available totals.
func (e *Exporter) ExportXLSX(ctx context.Context, accountID uuid.UUID) (string, []byte, error) {
	header, err := e.ledger.AccountHeader(ctx, accountID)
	if err != nil {
		return "", nil, err
	}
	rows, err := e.ledger.ListTransactions(ctx, accountID)
	if err != nil {
		return "", nil, err
	}

	// Running balances accumulate from the bottom of the register upward.
	running := make([]decimal.Decimal, len(rows))
	balance := header.Account.OpeningBalance
	for i := len(rows) - 1; i >= 0; i-- {
		balance = balance.Add(rows[i].Amount)
		running[i] = balance
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", registerSheet); err != nil {
		return "", nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(registerSheet, "A1", &registerHeaders); err != nil {
		return "", nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []any{
			r.OccurredOn.Format(DateLayout),
			r.Description,
			r.TypeLabel,
			r.MethodLabel,
			r.ClassificationLabel,
			r.Amount.InexactFloat64(),
			r.Pending,
			running[i].InexactFloat64(),
		}
		if err := f.SetSheetRow(registerSheet, cell, &values); err != nil {
			return "", nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	totalsRow := len(rows) + 3
	totals := [][]any{
		{"Opening balance", header.Account.OpeningBalance.InexactFloat64()},
		{"Posted", header.Posted.InexactFloat64()},
		{"Available", header.Available.InexactFloat64()},
	}
	for i, t := range totals {
		cell, _ := excelize.CoordinatesToCellName(7, totalsRow+i)
		if err := f.SetSheetRow(registerSheet, cell, &t); err != nil {
			return "", nil, fmt.Errorf("failed to write totals: %w", err)
		}
	}

	style, err := f.NewStyle(&excelize.Style{NumFmt: numFmtThousands})
	if err != nil {
		return "", nil, fmt.Errorf("failed to create style: %w", err)
	}
	lastCell, _ := excelize.CoordinatesToCellName(8, totalsRow+len(totals)-1)
	if err := f.SetCellStyle(registerSheet, "F2", lastCell, style); err != nil {
		return "", nil, fmt.Errorf("failed to apply style: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	name := fmt.Sprintf("%s-%s.xlsx", sanitizeFilename(header.Account.Name), time.Now().UTC().Format("20060102"))
	return name, buf.Bytes(), nil
}
