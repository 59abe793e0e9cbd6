package reports

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/Leeseongbin2/smm-panel-v2/internal/domain/timeclock"
)

// Service renders the wage ledger of a single employee into the export
// formats store owners hand to their staff or their accountant.
type Service struct {
	timeclock *timeclock.Service
}

func NewService(tc *timeclock.Service) *Service {
	return &Service{timeclock: tc}
}

type statement struct {
	Employee    timeclock.Employee
	Entries     []timeclock.WorkLog
	TotalEarned float64
	TotalPaid   float64
	Unpaid      float64
}

func (s *Service) buildStatement(ctx context.Context, storeID, employeeID string) (statement, error) {
	employee, err := s.timeclock.GetEmployee(ctx, storeID, employeeID)
	if err != nil {
		return statement{}, err
	}
	entries, err := s.timeclock.ListAllLogs(ctx, storeID, employeeID)
	if err != nil {
		return statement{}, err
	}

	st := statement{Employee: employee, Entries: entries}
	for _, entry := range entries {
		if entry.IsPayMarker {
			st.TotalPaid += entry.PaidAmount
			continue
		}
		st.TotalEarned += entry.WageAmount
	}
	st.Unpaid = timeclock.UnpaidTotal(entries)
	return st, nil
}

// WriteStatementPDF renders a one-page wage statement: employee header,
// ledger rows oldest first, and the earned/paid/unpaid totals.
func (s *Service) WriteStatementPDF(ctx context.Context, w io.Writer, storeName, storeID, employeeID string) error {
	st, err := s.buildStatement(ctx, storeID, employeeID)
	if err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Wage Statement")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Store: %s", storeName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s (%s)", st.Employee.Name, st.Employee.Phone))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Hourly wage: %.0f", st.Employee.HourlyWage))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Issued: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(30, 7, "Date", "1", 0, "", false, 0, "")
	pdf.CellFormat(25, 7, "Type", "1", 0, "", false, 0, "")
	pdf.CellFormat(25, 7, "Minutes", "1", 0, "", false, 0, "")
	pdf.CellFormat(35, 7, "Earned", "1", 0, "", false, 0, "")
	pdf.CellFormat(35, 7, "Paid", "1", 0, "", false, 0, "")
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, entry := range st.Entries {
		kind := "work"
		earned := fmt.Sprintf("%.0f", entry.WageAmount)
		minutes := strconv.Itoa(entry.DurationMinutes)
		if entry.IsPayMarker {
			kind = "payment"
			earned = "-"
			minutes = "-"
		}
		pdf.CellFormat(30, 7, entry.CreatedAt.Format("2006-01-02"), "1", 0, "", false, 0, "")
		pdf.CellFormat(25, 7, kind, "1", 0, "", false, 0, "")
		pdf.CellFormat(25, 7, minutes, "1", 0, "", false, 0, "")
		pdf.CellFormat(35, 7, earned, "1", 0, "", false, 0, "")
		pdf.CellFormat(35, 7, fmt.Sprintf("%.0f", entry.PaidAmount), "1", 0, "", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Total earned: %.0f", st.TotalEarned))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Total paid: %.0f", st.TotalPaid))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Unpaid balance: %.0f", st.Unpaid))

	return pdf.Output(w)
}

// WriteLedgerCSV streams the raw ledger rows, oldest first.
func (s *Service) WriteLedgerCSV(ctx context.Context, w io.Writer, storeID, employeeID string) error {
	st, err := s.buildStatement(ctx, storeID, employeeID)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "type", "start_time", "end_time", "duration_minutes", "wage_rate", "wage_amount", "paid_amount", "paid_at", "created_at"}); err != nil {
		return err
	}
	for _, entry := range st.Entries {
		if err := writer.Write(ledgerRow(entry)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteLedgerXLSX renders the same rows as the CSV export plus a totals
// block, as a single-sheet workbook.
func (s *Service) WriteLedgerXLSX(ctx context.Context, w io.Writer, storeID, employeeID string) error {
	st, err := s.buildStatement(ctx, storeID, employeeID)
	if err != nil {
		return err
	}

	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	sheet := "Ledger"
	if err := file.SetSheetName(file.GetSheetName(0), sheet); err != nil {
		return err
	}

	header := []string{"ID", "Type", "Start", "End", "Minutes", "Rate", "Earned", "Paid", "Paid At", "Created At"}
	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(sheet, cell, title); err != nil {
			return err
		}
	}

	for rowIdx, entry := range st.Entries {
		for col, value := range ledgerRow(entry) {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	totalsRow := len(st.Entries) + 3
	totals := []struct {
		label string
		value float64
	}{
		{"Total earned", st.TotalEarned},
		{"Total paid", st.TotalPaid},
		{"Unpaid balance", st.Unpaid},
	}
	for offset, total := range totals {
		labelCell, err := excelize.CoordinatesToCellName(1, totalsRow+offset)
		if err != nil {
			return err
		}
		valueCell, err := excelize.CoordinatesToCellName(2, totalsRow+offset)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(sheet, labelCell, total.label); err != nil {
			return err
		}
		if err := file.SetCellValue(sheet, valueCell, total.value); err != nil {
			return err
		}
	}

	return file.Write(w)
}

func ledgerRow(entry timeclock.WorkLog) []string {
	kind := "work"
	if entry.IsPayMarker {
		kind = "payment"
	}
	return []string{
		entry.ID,
		kind,
		formatTime(entry.StartTime),
		formatTime(entry.EndTime),
		strconv.Itoa(entry.DurationMinutes),
		strconv.FormatFloat(entry.WageRate, 'f', -1, 64),
		strconv.FormatFloat(entry.WageAmount, 'f', -1, 64),
		strconv.FormatFloat(entry.PaidAmount, 'f', -1, 64),
		formatTime(entry.PaidAt),
		entry.CreatedAt.Format(time.RFC3339),
	}
}

func formatTime(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.Format(time.RFC3339)
}
