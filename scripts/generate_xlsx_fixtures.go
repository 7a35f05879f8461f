package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ashmitsharp/payledger-api/internal/database/memory"
	"github.com/ashmitsharp/payledger-api/internal/models"
	"github.com/ashmitsharp/payledger-api/internal/services"
	"github.com/shopspring/decimal"
)

type fixtureRow struct {
	date    string
	desc    string
	kind    string
	method  string
	class   string
	amount  string
	pending bool
}

func main() {
	outDir := "testdata"
	if len(os.Args) > 1 {
		outDir = os.Args[1]
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Fatal(err)
	}

	generateCheckingFixture(outDir)
	generateSavingsFixture(outDir)
	fmt.Println("\n✅ All XLSX fixtures generated successfully!")
}

func generateCheckingFixture(outDir string) {
	writeFixture(outDir, "checking_register.xlsx", "First Bank", "Checking", "1500.00", []fixtureRow{
		{"2024-01-02", "Paycheck", "Deposit", "ACH", "Income", "2100.00", false},
		{"2024-01-03", "Rent", "Expense", "Check", "Bills", "1200.00", false},
		{"2024-01-05", "Corner Market", "Expense", "Card", "Groceries", "82.17", false},
		{"2024-01-08", "Electric Co", "Expense", "N/A", "Bills", "84.20", false},
		{"2024-01-09", "Transfer from savings", "Transfer", "N/A", "Misc", "300.00", false},
		{"2024-01-12", "Fuel", "Expense", "Card", "Misc", "41.03", true},
	})
}

func generateSavingsFixture(outDir string) {
	writeFixture(outDir, "savings_register.xlsx", "First Bank", "Savings", "5000.00", []fixtureRow{
		{"2024-01-01", "Interest", "Deposit", "N/A", "Income", "4.11", false},
		{"2024-01-09", "Transfer to checking", "Expense", "N/A", "Misc", "300.00", false},
		{"2024-02-01", "Interest", "Deposit", "N/A", "Income", "3.87", true},
	})
}

func writeFixture(outDir, filename, institution, name, opening string, data []fixtureRow) {
	ctx := context.Background()
	store := memory.New()
	lookups := services.NewLookupResolver(store)
	ledger := services.NewLedger(store, lookups)

	account, err := ledger.CreateAccount(ctx, services.NewAccount{
		Institution:    institution,
		Name:           name,
		OpeningBalance: decimal.RequireFromString(opening),
	})
	if err != nil {
		log.Fatal(err)
	}

	for _, row := range data {
		in := models.NewTransaction{
			AccountID:   account.ID,
			Description: row.desc,
			Amount:      decimal.RequireFromString(row.amount),
			Pending:     row.pending,
		}
		if in.OccurredOn, err = time.Parse(services.DateLayout, row.date); err != nil {
			log.Fatal(err)
		}
		if in.TypeID, err = lookupID(ctx, lookups, models.TableTxnType, row.kind); err != nil {
			log.Fatal(err)
		}
		method, err := lookupID(ctx, lookups, models.TableMethod, row.method)
		if err != nil {
			log.Fatal(err)
		}
		class, err := lookupID(ctx, lookups, models.TableClassification, row.class)
		if err != nil {
			log.Fatal(err)
		}
		in.MethodID, in.ClassificationID = &method, &class

		if _, err := ledger.AddTransaction(ctx, in); err != nil {
			log.Fatal(err)
		}
	}

	_, body, err := services.NewExporter(ledger).ExportXLSX(ctx, account.ID)
	if err != nil {
		log.Fatal(err)
	}
	path := filepath.Join(outDir, filename)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		log.Fatal(err)
	}
	fmt.Println("✓ Generated", path)
}

func lookupID(ctx context.Context, lookups *services.LookupResolver, table models.LookupTable, label string) (int32, error) {
	row, ok, err := lookups.Resolve(ctx, table, label)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("no %s matching %q", table, label)
	}
	return row.ID, nil
}
