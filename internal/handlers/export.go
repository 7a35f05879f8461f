package handlers

import (
	"context"
	"fmt"

	"github.com/ashmitsharp/payledger-api/internal/services"
	"github.com/ashmitsharp/payledger-api/internal/utils"
	"github.com/gofiber/fiber/v3"
)

// DefaultExportURLExpiryMinutes is used when no expiry is configured
const DefaultExportURLExpiryMinutes = 15

// ExportArchive interface defines methods for S3 operations
type ExportArchive interface {
	GenerateExportKey(accountID, filename string) (string, error)
	UploadExport(ctx context.Context, key, contentType string, body []byte) error
	PresignedDownloadURL(ctx context.Context, key string, expiryMinutes int) (string, error)
}

// ExportHandler handles register export requests
type ExportHandler struct {
	exporter      *services.Exporter
	archive       ExportArchive
	expiryMinutes int
}

// NewExportHandler creates an export handler that streams workbooks directly
func NewExportHandler(exporter *services.Exporter) *ExportHandler {
	return &ExportHandler{exporter: exporter, expiryMinutes: DefaultExportURLExpiryMinutes}
}

// NewExportHandlerWithArchive creates an export handler that archives workbooks
// to S3 and returns presigned download URLs
func NewExportHandlerWithArchive(exporter *services.Exporter, archive ExportArchive, expiryMinutes int) *ExportHandler {
	if expiryMinutes <= 0 {
		expiryMinutes = DefaultExportURLExpiryMinutes
	}
	return &ExportHandler{exporter: exporter, archive: archive, expiryMinutes: expiryMinutes}
}

// ExportRegister renders an account's register as XLSX
// GET /v1/accounts/:id/export
// Returns the workbook, or {download_url, file_key, expires_in} when archiving
func (h *ExportHandler) ExportRegister(c fiber.Ctx) error {
	accountID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid account id")
	}

	name, body, err := h.exporter.ExportXLSX(c.Context(), accountID)
	if err != nil {
		return fail(c, err)
	}

	if h.archive == nil {
		c.Set(fiber.HeaderContentType, services.XLSXContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
		return c.Send(body)
	}

	key, err := h.archive.GenerateExportKey(accountID.String(), name)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "failed to generate export key")
	}
	if err := h.archive.UploadExport(c.Context(), key, services.XLSXContentType, body); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "failed to archive export")
	}
	url, err := h.archive.PresignedDownloadURL(c.Context(), key, h.expiryMinutes)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "failed to generate download URL")
	}

	return utils.SuccessResponse(c, fiber.Map{
		"download_url": url,
		"file_key":     key,
		"expires_in":   h.expiryMinutes * 60,
	})
}
