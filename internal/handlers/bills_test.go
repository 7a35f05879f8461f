package handlers

import (
	"testing"

	"github.com/ashmitsharp/payledger-api/internal/models"
	"github.com/ashmitsharp/payledger-api/internal/services"
	"github.com/gofiber/fiber/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addBill(t *testing.T, env *testEnv, req BillRequest) models.Bill {
	t.Helper()
	resp, body := env.do(t, "POST", "/v1/bills", req)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body.Error)
	return decode[models.Bill](t, body.Data)
}

func TestAddBill_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name       string
		req        BillRequest
		wantStatus int
	}{
		{"monthly", BillRequest{Payee: "Rent", Frequency: "monthly", DayOfMonth: 1, AmountDue: "1500"}, fiber.StatusCreated},
		{"yearly", BillRequest{Payee: "Insurance", Frequency: "yearly", DayOfMonth: 15, Month: 3, AmountDue: "600"}, fiber.StatusCreated},
		{"day zero", BillRequest{Payee: "Rent", Frequency: "monthly", DayOfMonth: 0}, fiber.StatusBadRequest},
		{"day 32", BillRequest{Payee: "Rent", Frequency: "monthly", DayOfMonth: 32}, fiber.StatusBadRequest},
		{"yearly without month", BillRequest{Payee: "Tax", Frequency: "yearly", DayOfMonth: 1}, fiber.StatusBadRequest},
		{"weekly", BillRequest{Payee: "Gym", Frequency: "weekly", DayOfMonth: 1}, fiber.StatusBadRequest},
		{"no payee", BillRequest{Frequency: "monthly", DayOfMonth: 1}, fiber.StatusBadRequest},
		{"bad account id", BillRequest{Payee: "Rent", Frequency: "monthly", DayOfMonth: 1, AccountID: "nope"}, fiber.StatusBadRequest},
		{"unknown account", BillRequest{Payee: "Rent", Frequency: "monthly", DayOfMonth: 1, AccountID: "0190a5b0-0000-7000-8000-000000000000"}, fiber.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := env.do(t, "POST", "/v1/bills", tt.req)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestListBills_NextDueAndAccountName(t *testing.T) {
	env := newTestEnv(t)
	account := createAccount(t, env, "Chase", "Checking", "0")
	addBill(t, env, BillRequest{Payee: "rent", Frequency: "monthly", DayOfMonth: 31, AmountDue: "1500", AccountID: account.ID.String()})
	addBill(t, env, BillRequest{Payee: "Internet", Frequency: "monthly", DayOfMonth: 10, AmountDue: "60"})

	resp, body := env.do(t, "GET", "/v1/bills?date=2024-02-15", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	listings := decode[[]services.BillListing](t, body.Data)

	require.Len(t, listings, 2)
	assert.Equal(t, "Internet", listings[0].Bill.Payee)
	assert.Equal(t, "2024-03-10", listings[0].NextDue.Format(services.DateLayout))
	assert.Equal(t, "rent", listings[1].Bill.Payee)
	assert.Equal(t, "2024-02-29", listings[1].NextDue.Format(services.DateLayout))
	assert.Equal(t, "Checking", listings[1].AccountName)
}

func TestMarkPaid_BooksOneTransaction(t *testing.T) {
	env := newTestEnv(t)
	account := createAccount(t, env, "Chase", "Checking", "2000")
	bill := addBill(t, env, BillRequest{Payee: "Rent", Frequency: "monthly", DayOfMonth: 1, AmountDue: "1500", AccountID: account.ID.String()})
	path := "/v1/bills/" + bill.ID.String() + "/occurrences/2024-02-01"

	resp, body := env.do(t, "POST", path+"/paid", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body.Error)
	first := decode[services.MarkPaidResult](t, body.Data)
	require.NotNil(t, first.Transaction)
	assert.True(t, decimal.NewFromInt(-1500).Equal(first.Transaction.Amount))

	resp, body = env.do(t, "POST", path+"/paid", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	second := decode[services.MarkPaidResult](t, body.Data)
	assert.Nil(t, second.Transaction)
	assert.NotEmpty(t, second.SkipReason)

	rows := listRegister(t, env, account.ID.String())
	require.Len(t, rows, 1)
	assert.Equal(t, "Rent", rows[0].Description)
	assert.Equal(t, "N/A", rows[0].MethodLabel)
	assert.Equal(t, "Bills", rows[0].ClassificationLabel)

	_, body = env.do(t, "GET", path, nil)
	assert.JSONEq(t, `{"bill_id":"`+bill.ID.String()+`","due_date":"2024-02-01","paid":true,"ignored":false}`, string(body.Data))
}

func TestIgnoreAndReset(t *testing.T) {
	env := newTestEnv(t)
	bill := addBill(t, env, BillRequest{Payee: "Gym", Frequency: "monthly", DayOfMonth: 5, AmountDue: "30"})
	path := "/v1/bills/" + bill.ID.String() + "/occurrences/2024-01-05"

	resp, _ := env.do(t, "PUT", path+"/ignored", IgnoreRequest{Ignored: true})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	_, body := env.do(t, "GET", path, nil)
	state := decode[map[string]any](t, body.Data)
	assert.Equal(t, true, state["ignored"])
	assert.Equal(t, true, state["paid"], "any state record reads as paid")

	resp, _ = env.do(t, "DELETE", path, nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	_, body = env.do(t, "GET", path, nil)
	state = decode[map[string]any](t, body.Data)
	assert.Equal(t, false, state["ignored"])
	assert.Equal(t, false, state["paid"])
}

func TestOccurrence_BadDueDate(t *testing.T) {
	env := newTestEnv(t)
	bill := addBill(t, env, BillRequest{Payee: "Gym", Frequency: "monthly", DayOfMonth: 5})

	resp, _ := env.do(t, "POST", "/v1/bills/"+bill.ID.String()+"/occurrences/05-01-2024/paid", nil)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUpcomingAndSummary(t *testing.T) {
	env := newTestEnv(t)
	account := createAccount(t, env, "Chase", "Checking", "1000")
	addBill(t, env, BillRequest{Payee: "Rent", Frequency: "monthly", DayOfMonth: 20, AmountDue: "700", AccountID: account.ID.String()})
	gym := addBill(t, env, BillRequest{Payee: "Gym", Frequency: "monthly", DayOfMonth: 25, AmountDue: "30"})
	addBill(t, env, BillRequest{Payee: "Water", Frequency: "monthly", DayOfMonth: 3, AmountDue: "40"})

	resp, _ := env.do(t, "PUT", "/v1/pay-schedule", SetAnchorRequest{Anchor: "2024-01-05"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body := env.do(t, "GET", "/v1/upcoming?date=2024-01-20", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	upcoming := decode[struct {
		Window      models.Window       `json:"window"`
		Occurrences []models.Occurrence `json:"occurrences"`
	}](t, body.Data)

	assert.Equal(t, "2024-01-19", upcoming.Window.Start.Format(services.DateLayout))
	assert.Equal(t, "2024-02-01", upcoming.Window.End.Format(services.DateLayout))
	require.Len(t, upcoming.Occurrences, 2)
	assert.Equal(t, "Rent", upcoming.Occurrences[0].Bill.Payee)
	assert.Equal(t, "Checking", upcoming.Occurrences[0].AccountName)
	assert.Equal(t, "Gym", upcoming.Occurrences[1].Bill.Payee)

	resp, _ = env.do(t, "PUT", "/v1/bills/"+gym.ID.String()+"/occurrences/2024-01-25/ignored", IgnoreRequest{Ignored: true})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body = env.do(t, "GET", "/v1/summary?date=2024-01-20", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	summary := decode[struct {
		Summary               services.Summary `json:"summary"`
		TotalAvailableDisplay string           `json:"total_available_display"`
		TotalDueDisplay       string           `json:"total_due_display"`
	}](t, body.Data)

	assert.Equal(t, 1, summary.Summary.ActiveAccounts)
	require.Len(t, summary.Summary.Bills, 1)
	assert.Equal(t, "Rent", summary.Summary.Bills[0].Bill.Payee)
	assert.Equal(t, "$1,000.00", summary.TotalAvailableDisplay)
	assert.Equal(t, "$700.00", summary.TotalDueDisplay)
}

func TestDeactivateBill_DropsFromUpcoming(t *testing.T) {
	env := newTestEnv(t)
	bill := addBill(t, env, BillRequest{Payee: "Rent", Frequency: "monthly", DayOfMonth: 20, AmountDue: "700"})

	resp, _ := env.do(t, "POST", "/v1/bills/"+bill.ID.String()+"/deactivate", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	_, body := env.do(t, "GET", "/v1/upcoming?date=2024-01-20", nil)
	upcoming := decode[struct {
		Occurrences []models.Occurrence `json:"occurrences"`
	}](t, body.Data)
	assert.Empty(t, upcoming.Occurrences)

	_, body = env.do(t, "GET", "/v1/bills?all=true", nil)
	listings := decode[[]services.BillListing](t, body.Data)
	require.Len(t, listings, 1)
	assert.False(t, listings[0].Bill.Active)
}
