package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// balanceLookback is how many recent balance transactions feed the fee summary.
const balanceLookback = 100

// QuantityRow is a printer summary line: units sold per product variant.
type QuantityRow struct {
	ProductName string
	Size        string
	Color       string
	Quantity    int64
}

// SalesRow is a sales summary line: revenue and units per product.
type SalesRow struct {
	ProductName  string
	RevenueCents int64
	Quantity     int64
}

// FeeSummary totals provider charges over the lookback window.
type FeeSummary struct {
	GrossCents int64
	FeeCents   int64
	NetCents   int64
}

// ReportService aggregates paid orders into admin reports.
type ReportService struct {
	orderRepo repositories.OrderRepository
	gateway   PaymentGateway
}

// NewReportService creates a new ReportService.
func NewReportService(orderRepo repositories.OrderRepository, gateway PaymentGateway) *ReportService {
	return &ReportService{orderRepo: orderRepo, gateway: gateway}
}

// PrinterSummary groups paid items by product, size and color.
func (s *ReportService) PrinterSummary(ctx context.Context) ([]QuantityRow, error) {
	items, err := s.orderRepo.ListPaidItems(ctx)
	if err != nil {
		return nil, err
	}
	return GroupByVariant(items), nil
}

// SalesSummary groups paid items by product. The fee summary is nil when the
// provider could not be queried.
func (s *ReportService) SalesSummary(ctx context.Context) ([]SalesRow, *FeeSummary, error) {
	items, err := s.orderRepo.ListPaidItems(ctx)
	if err != nil {
		return nil, nil, err
	}
	rows := GroupByProduct(items)

	txns, err := s.gateway.ListBalanceTransactions(ctx, balanceLookback)
	if err != nil {
		slog.Warn("balance transactions unavailable", "error", err)
		return rows, nil, nil
	}
	var summary FeeSummary
	for _, t := range txns {
		if t.Type != "charge" {
			continue
		}
		summary.GrossCents += t.Amount
		summary.FeeCents += t.Fee
		summary.NetCents += t.Net
	}
	return rows, &summary, nil
}

// GroupByVariant sums quantities per (product, size, color), sorted by key.
func GroupByVariant(items []models.PaidItem) []QuantityRow {
	type key struct{ name, size, color string }
	totals := make(map[key]int64)
	for _, it := range items {
		totals[key{it.ProductName, labelOrEmpty(it.Size), labelOrEmpty(it.Color)}] += it.Quantity
	}

	rows := make([]QuantityRow, 0, len(totals))
	for k, qty := range totals {
		rows = append(rows, QuantityRow{ProductName: k.name, Size: k.size, Color: k.color, Quantity: qty})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.ProductName != b.ProductName {
			return a.ProductName < b.ProductName
		}
		if a.Size != b.Size {
			return a.Size < b.Size
		}
		return a.Color < b.Color
	})
	return rows
}

// GroupByProduct sums revenue and quantity per product name, sorted by name.
func GroupByProduct(items []models.PaidItem) []SalesRow {
	index := make(map[string]int)
	var rows []SalesRow
	for _, it := range items {
		i, ok := index[it.ProductName]
		if !ok {
			i = len(rows)
			index[it.ProductName] = i
			rows = append(rows, SalesRow{ProductName: it.ProductName})
		}
		rows[i].RevenueCents += it.LineTotalCents
		rows[i].Quantity += it.Quantity
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ProductName < rows[j].ProductName })
	return rows
}

// WritePrinterCSV renders the printer summary with a trailing total line.
func WritePrinterCSV(w io.Writer, rows []QuantityRow) error {
	cw := csv.NewWriter(w)
	records := [][]string{{"product_name", "size", "color", "qty"}}
	var total int64
	for _, r := range rows {
		records = append(records, []string{r.ProductName, r.Size, r.Color, fmt.Sprint(r.Quantity)})
		total += r.Quantity
	}
	records = append(records, []string{"Summary:", "Total items", fmt.Sprint(total)})
	return cw.WriteAll(records)
}

// WriteSalesCSV renders the sales summary. A nil summary yields the
// fees-unavailable line.
func WriteSalesCSV(w io.Writer, rows []SalesRow, summary *FeeSummary) error {
	cw := csv.NewWriter(w)
	records := [][]string{{"product_name", "revenue", "qty"}}
	for _, r := range rows {
		records = append(records, []string{r.ProductName, models.FormatCents(r.RevenueCents), fmt.Sprint(r.Quantity)})
	}
	if summary == nil {
		records = append(records, []string{"Summary:", "Stripe fees unavailable (insufficient permissions)"})
	} else {
		records = append(records, []string{
			"Summary:",
			"Gross", models.FormatCents(summary.GrossCents),
			"Fee", models.FormatCents(summary.FeeCents),
			"Net", models.FormatCents(summary.NetCents),
		})
	}
	return cw.WriteAll(records)
}
