package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ashmitsharp/payledger-api/internal/services"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// MockExportArchive is a mock implementation of ExportArchive for testing
type MockExportArchive struct {
	GenerateExportKeyFunc    func(accountID, filename string) (string, error)
	UploadExportFunc         func(ctx context.Context, key, contentType string, body []byte) error
	PresignedDownloadURLFunc func(ctx context.Context, key string, expiryMinutes int) (string, error)

	uploaded map[string][]byte
}

func (m *MockExportArchive) GenerateExportKey(accountID, filename string) (string, error) {
	if m.GenerateExportKeyFunc != nil {
		return m.GenerateExportKeyFunc(accountID, filename)
	}
	return fmt.Sprintf("exports/%s/mock-%s", accountID, filename), nil
}

func (m *MockExportArchive) UploadExport(ctx context.Context, key, contentType string, body []byte) error {
	if m.UploadExportFunc != nil {
		return m.UploadExportFunc(ctx, key, contentType, body)
	}
	if m.uploaded == nil {
		m.uploaded = make(map[string][]byte)
	}
	m.uploaded[key] = body
	return nil
}

func (m *MockExportArchive) PresignedDownloadURL(ctx context.Context, key string, expiryMinutes int) (string, error) {
	if m.PresignedDownloadURLFunc != nil {
		return m.PresignedDownloadURLFunc(ctx, key, expiryMinutes)
	}
	return fmt.Sprintf("https://s3.amazonaws.com/bucket/%s?X-Amz-Signature=abc123", key), nil
}

func seedRegister(t *testing.T, env *testEnv) string {
	t.Helper()
	account := createAccount(t, env, "Chase", "Main Checking", "100")
	id := account.ID.String()
	addTransaction(t, env, id, TransactionRequest{Type: "Deposit", Description: "Paycheck", Amount: "1000", Date: "2024-01-05"})
	addTransaction(t, env, id, TransactionRequest{Type: "Expense", Description: "Rent", Amount: "750", Date: "2024-01-06", Pending: true})
	return id
}

// TestExportRegister_Direct tests the workbook is streamed when no archive is configured
func TestExportRegister_Direct(t *testing.T) {
	env := newTestEnv(t)
	id := seedRegister(t, env)

	req := httptest.NewRequest("GET", "/v1/accounts/"+id+"/export", nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, services.XLSXContentType, resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Disposition"), `attachment; filename="Main-Checking-`))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Register")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 3)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "Rent", rows[1][1])
	assert.Equal(t, "Paycheck", rows[2][1])
}

// TestExportRegister_Archived tests the upload and presigned URL flow
func TestExportRegister_Archived(t *testing.T) {
	env := newTestEnv(t)
	id := seedRegister(t, env)

	archive := &MockExportArchive{}
	env.exports.archive = archive
	env.exports.expiryMinutes = 15

	resp, body := env.do(t, "GET", "/v1/accounts/"+id+"/export", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body.Error)

	result := decode[map[string]any](t, body.Data)
	assert.Contains(t, result["download_url"].(string), "https://s3.amazonaws.com")
	assert.Contains(t, result["file_key"].(string), "exports/"+id)
	assert.Equal(t, float64(900), result["expires_in"].(float64))
	assert.Len(t, archive.uploaded, 1)
}

// TestExportRegister_UploadError tests a failing archive surfaces as a gateway error
func TestExportRegister_UploadError(t *testing.T) {
	env := newTestEnv(t)
	id := seedRegister(t, env)

	env.exports.archive = &MockExportArchive{
		UploadExportFunc: func(ctx context.Context, key, contentType string, body []byte) error {
			return fmt.Errorf("bucket unavailable")
		},
	}

	resp, body := env.do(t, "GET", "/v1/accounts/"+id+"/export", nil)

	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body.Error, "archive")
}

// TestExportRegister_UnknownAccount tests 404 for missing accounts
func TestExportRegister_UnknownAccount(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, "GET", "/v1/accounts/0190a5b0-0000-7000-8000-000000000000/export", nil)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestNewExportHandlerWithArchive_DefaultExpiry(t *testing.T) {
	h := NewExportHandlerWithArchive(nil, &MockExportArchive{}, 0)
	assert.Equal(t, DefaultExportURLExpiryMinutes, h.expiryMinutes)
}
