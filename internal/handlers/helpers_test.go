package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ashmitsharp/payledger-api/internal/database/memory"
	"github.com/ashmitsharp/payledger-api/internal/services"
	"github.com/ashmitsharp/payledger-api/internal/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testEnv struct {
	app     *fiber.App
	store   *memory.Store
	ledger  *services.Ledger
	bills   *services.BillService
	exports *ExportHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.New()
	lookups := services.NewLookupResolver(store)
	ledger := services.NewLedger(store, lookups)
	scheduler := services.NewScheduler(store)
	bills := services.NewBillService(store, ledger, lookups)
	summaries := services.NewSummaryService(ledger.Balances(), scheduler, bills)
	exports := NewExportHandler(services.NewExporter(ledger))

	h := &Handlers{
		Accounts:     NewAccountHandler(ledger, "$"),
		Transactions: NewTransactionHandler(ledger, lookups),
		Lookups:      NewLookupHandler(lookups),
		Schedule:     NewScheduleHandler(scheduler),
		Bills:        NewBillHandler(bills, scheduler),
		Summary:      NewSummaryHandler(summaries, "$"),
		Export:       exports,
	}

	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler})
	h.Register(app.Group("/v1"))

	return &testEnv{app: app, store: store, ledger: ledger, bills: bills, exports: exports}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && json.Valid(raw) {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}
