package handlers

import (
	"bytes"
	"fmt"

	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ReportHandler serves CSV summaries of paid orders.
type ReportHandler struct {
	service *services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// RegisterRoutes registers the report routes.
func (h *ReportHandler) RegisterRoutes(router fiber.Router) {
	reportRoutes := router.Group("/reports")
	reportRoutes.Get("/printer", h.HandlePrinterSummary)
	reportRoutes.Get("/sales", h.HandleSalesSummary)
}

// HandlePrinterSummary returns units per product, size and color.
func (h *ReportHandler) HandlePrinterSummary(c *fiber.Ctx) error {
	rows, err := h.service.PrinterSummary(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}
	var buf bytes.Buffer
	if err := services.WritePrinterCSV(&buf, rows); err != nil {
		return errorResponse(c, err)
	}
	return sendCSV(c, "printer_summary.csv", buf.Bytes())
}

// HandleSalesSummary returns revenue per product with the provider fee summary.
func (h *ReportHandler) HandleSalesSummary(c *fiber.Ctx) error {
	rows, summary, err := h.service.SalesSummary(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}
	var buf bytes.Buffer
	if err := services.WriteSalesCSV(&buf, rows, summary); err != nil {
		return errorResponse(c, err)
	}
	return sendCSV(c, "sales_summary.csv", buf.Bytes())
}

func sendCSV(c *fiber.Ctx, filename string, body []byte) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
	return c.Send(body)
}
