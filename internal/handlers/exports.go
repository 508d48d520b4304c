package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/campaign-inventory/dashboard/internal/audit"
	"github.com/campaign-inventory/dashboard/internal/dashboard"
	"github.com/campaign-inventory/dashboard/internal/httpx"
	"github.com/campaign-inventory/dashboard/internal/inventory"
	"github.com/campaign-inventory/dashboard/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var slotCSVHeader = []string{
	"brand", "brand_name", "slot_id", "date", "iso_date", "status", "raw_status",
	"product", "booking_id", "client_name", "contract_id",
}

var tallyHeader = []any{"Total", "Booked", "Available", "On Hold", "Unclassified", "% Booked"}

func (s *Server) GetExportsSlotsCsv(w http.ResponseWriter, r *http.Request) {
	p, rng, ok := bindSlotParams(w, r)
	if !ok {
		return
	}
	page, err := s.Dashboard.ExportSlots(r.Context(), toSlotParams(p, rng))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(page.Total))
	w.Header().Set("X-Result-Limit", strconv.Itoa(page.Limit))

	s.writeExportCSV(w, r, "slots", "slots.csv", len(page.Items), func(writer *csv.Writer) error {
		if err := writer.Write(slotCSVHeader); err != nil {
			return err
		}
		for _, slot := range page.Items {
			if err := writer.Write([]string{
				slot.Brand,
				slot.BrandName,
				strconv.FormatInt(slot.SlotID, 10),
				slot.Date,
				slot.ISODate,
				string(slot.Status),
				slot.RawStatus,
				slot.Product,
				slot.BookingID,
				slot.ClientName,
				slot.ContractID,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeExportCSV renders into memory first so a failure can still be
// reported as a JSON error.
func (s *Server) writeExportCSV(w http.ResponseWriter, r *http.Request, entityType, filename string, rows int, writerFunc func(writer *csv.Writer) error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writerFunc(writer); err != nil {
		s.Logger.Error("export_failed", "entity", entityType, "error", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to generate export CSV", nil)
		return
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		s.Logger.Error("export_failed", "entity", entityType, "error", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to generate export CSV", nil)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)

	s.auditExport(r, entityType, filename, rows)
}

func (s *Server) GetExportsSummaryXlsx(w http.ResponseWriter, r *http.Request) {
	rng, ok := bindRange(w, r)
	if !ok {
		return
	}
	overview, err := s.Dashboard.BrandSummary(r.Context(), dashboard.SummaryParams{Range: rng})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	products, err := s.Dashboard.ProductBreakdown(r.Context(), rng)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	rows, err := s.buildSummaryWorkbook(&buf, overview, products)
	if err != nil {
		s.Logger.Error("export_failed", "entity", "summary", "error", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to generate export workbook", nil)
		return
	}

	filename := "inventory-summary.xlsx"
	if rng != nil {
		filename = fmt.Sprintf("inventory-summary-%s-%s.xlsx", rng.StartString(), rng.EndString())
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)

	s.auditExport(r, "summary", filename, rows)
}

// buildSummaryWorkbook writes a Summary sheet (one row per brand plus totals)
// and a Products sheet, returning the number of data rows written.
func (s *Server) buildSummaryWorkbook(buf *bytes.Buffer, overview dashboard.Overview, products map[string]map[string]inventory.ProductSummary) (int, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, err
	}

	const summarySheet = "Summary"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return 0, err
	}
	if err := f.SetSheetRow(summarySheet, "A1", headerRow("Brand", "Name")); err != nil {
		return 0, err
	}
	if err := f.SetCellStyle(summarySheet, "A1", "H1", bold); err != nil {
		return 0, err
	}
	row := 2
	for _, b := range overview.Brands {
		if err := setRow(f, summarySheet, row, append([]any{b.Brand, b.Name}, tallyCells(b.Tally)...)); err != nil {
			return 0, err
		}
		row++
	}
	if err := setRow(f, summarySheet, row, append([]any{"Total", ""}, tallyCells(overview.Totals)...)); err != nil {
		return 0, err
	}
	if cell, err := excelize.CoordinatesToCellName(1, row); err == nil {
		end, _ := excelize.CoordinatesToCellName(8, row)
		if err := f.SetCellStyle(summarySheet, cell, end, bold); err != nil {
			return 0, err
		}
	}
	dataRows := row - 1

	const productSheet = "Products"
	if _, err := f.NewSheet(productSheet); err != nil {
		return 0, err
	}
	if err := f.SetSheetRow(productSheet, "A1", headerRow("Brand", "Product")); err != nil {
		return 0, err
	}
	if err := f.SetCellStyle(productSheet, "A1", "H1", bold); err != nil {
		return 0, err
	}
	row = 2
	for _, b := range s.Dashboard.Brands() {
		byProduct, ok := products[b.Code]
		if !ok {
			continue
		}
		names := make([]string, 0, len(byProduct))
		for name := range byProduct {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := setRow(f, productSheet, row, append([]any{b.Code, name}, tallyCells(byProduct[name])...)); err != nil {
				return 0, err
			}
			row++
			dataRows++
		}
	}

	for _, sheet := range []string{summarySheet, productSheet} {
		if err := f.SetColWidth(sheet, "A", "B", 28); err != nil {
			return 0, err
		}
	}
	if err := f.Write(buf); err != nil {
		return 0, err
	}
	return dataRows, nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func headerRow(lead ...any) *[]any {
	row := append(lead, tallyHeader...)
	return &row
}

func tallyCells(t inventory.Tally) []any {
	return []any{t.Total, t.Booked, t.Available, t.OnHold, t.Unclassified, t.PercentageBooked}
}

func (s *Server) auditExport(r *http.Request, entityType, filename string, rows int) {
	s.Audit.Log(r.Context(), audit.Entry{
		Action:     "export.download",
		EntityType: entityType,
		Filename:   filename,
		RequestID:  middleware.RequestIDFromContext(r.Context()),
		RemoteAddr: r.RemoteAddr,
		Rows:       rows,
		Metadata: map[string]any{
			"query": r.URL.RawQuery,
		},
	})
}
