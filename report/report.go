/*
Package report renders the reports screen's data as downloadable files.

PURPOSE:
  Takes the rows and totals the ledger engine already computed and writes
  them out as XLSX workbooks or CSV. No recomputation happens here; the
  figures in an export always match what the screen showed.

FORMATS:
  - XLSX via excelize: one sheet per section (sales, payments, expenses),
    header row plus data rows, fixed column widths
  - CSV with a UTF-8 BOM so spreadsheet apps detect the encoding

SEE ALSO:
  - ledger/report.go: The row builders these writers consume
  - api/handlers.go: The download endpoints
*/
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/senoto/clinic-engine/ledger"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const dateFormat = "2006-01-02"

// Data bundles everything one export run covers.
type Data struct {
	ClinicName string
	From, To   time.Time

	Sales    []ledger.SaleRow
	Payments []ledger.LedgerRow
	Totals   ledger.CashTotals
	Expenses []ledger.Expense
}

// Filename builds the attachment name for a given extension.
func (d Data) Filename(ext string) string {
	return fmt.Sprintf("report_%s.%s", time.Now().Format("20060102"), ext)
}

// =============================================================================
// XLSX
// =============================================================================

// WriteXLSX writes the full report workbook: a Sales sheet, a Payments
// sheet, an Expenses sheet, and a Totals sheet.
func WriteXLSX(w io.Writer, d Data) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSalesSheet(f, d); err != nil {
		return err
	}
	if err := writePaymentsSheet(f, d); err != nil {
		return err
	}
	if err := writeExpensesSheet(f, d); err != nil {
		return err
	}
	if err := writeTotalsSheet(f, d); err != nil {
		return err
	}

	// Drop excelize's default sheet.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	return f.Write(w)
}

func writeSalesSheet(f *excelize.File, d Data) error {
	const sheet = "Sales"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)

	setHeader(f, sheet, []string{"Date", "Patient", "Service", "Type", "Amount", "Total Paid", "Remaining"})
	for idx, r := range d.Sales {
		row := idx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.Date.Format(dateFormat))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.PatientName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.ServiceName)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), string(r.PaymentType))
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.Amount.String())
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), r.TotalPaid.String())
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), r.Remaining.String())
	}
	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "B", "C", 22)
	f.SetColWidth(sheet, "D", "G", 12)
	return nil
}

func writePaymentsSheet(f *excelize.File, d Data) error {
	const sheet = "Payments"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	setHeader(f, sheet, []string{"Date", "Patient", "Type", "Amount", "Remaining"})
	for idx, r := range d.Payments {
		row := idx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.Date.Format(dateFormat))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.PatientName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), string(r.Type))
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.Amount.String())
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.Remaining.String())
	}
	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "B", "B", 22)
	f.SetColWidth(sheet, "C", "E", 12)
	return nil
}

func writeExpensesSheet(f *excelize.File, d Data) error {
	const sheet = "Expenses"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	setHeader(f, sheet, []string{"Date", "Title", "Category", "Amount"})
	for idx, e := range d.Expenses {
		row := idx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), e.DateSpent.Format(dateFormat))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), e.Title)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), e.Category)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), e.Amount.String())
	}
	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "B", "C", 22)
	f.SetColWidth(sheet, "D", "D", 12)
	return nil
}

func writeTotalsSheet(f *excelize.File, d Data) error {
	const sheet = "Totals"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	lines := [][2]string{
		{"Clinic", d.ClinicName},
		{"Total Sales", d.Totals.TotalSales.String()},
		{"Cash Collected", d.Totals.TotalCashCollected.String()},
		{"Full Payments", d.Totals.FullPaymentsReceived.String()},
		{"Installments Collected", d.Totals.InstallmentsCollected.String()},
		{"Total Expenses", d.Totals.TotalExpenses.String()},
		{"Net Revenue", d.Totals.NetRevenue.String()},
	}
	for idx, line := range lines {
		row := idx + 1
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), line[0])
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), line[1])
	}
	f.SetColWidth(sheet, "A", "A", 24)
	f.SetColWidth(sheet, "B", "B", 16)
	return nil
}

func setHeader(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheet, cell, h)
	}
}

// =============================================================================
// CSV
// =============================================================================

// WriteSalesCSV writes the sales view as CSV. A UTF-8 BOM is prepended so
// spreadsheet apps detect the encoding.
func WriteSalesCSV(w io.Writer, d Data) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"Date", "Patient", "Service", "Type", "Amount", "Total Paid", "Remaining"}); err != nil {
		return err
	}
	for _, r := range d.Sales {
		if err := cw.Write([]string{
			r.Date.Format(dateFormat),
			r.PatientName,
			r.ServiceName,
			string(r.PaymentType),
			r.Amount.String(),
			r.TotalPaid.String(),
			r.Remaining.String(),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePaymentsCSV writes the payment ledger as CSV.
func WritePaymentsCSV(w io.Writer, d Data) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"Date", "Patient", "Type", "Amount", "Remaining"}); err != nil {
		return err
	}
	for _, r := range d.Payments {
		if err := cw.Write([]string{
			r.Date.Format(dateFormat),
			r.PatientName,
			string(r.Type),
			r.Amount.String(),
			r.Remaining.String(),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
