/*
handlers.go - HTTP handlers for the clinic API

PURPOSE:
  Exposes the scheduling and billing engines via REST. Handlers parse and
  validate input, call the clinic containers, and serialize the result; no
  business computation happens here.

ENDPOINTS:
  Schedule:
    GET    /api/schedules                List appointments (?view=&ref=)
    GET    /api/schedules/counts         Month-grid day counts (?ref=)
    POST   /api/schedules                Create (409 + conflicts on clash)
    PUT    /api/schedules/{id}           Update
    DELETE /api/schedules/{id}           Delete

  Billing:
    GET    /api/transactions             List sales
    POST   /api/transactions             Create sale
    GET    /api/transactions/summary     Portfolio summary
    DELETE /api/transactions/{id}        Delete sale (no cascade)
    GET    /api/transactions/{id}/installments
    POST   /api/transactions/{id}/payments
    DELETE /api/transactions/{id}/payments/{installmentId}

  Reports:
    GET    /api/ledger                   Payment ledger + cash totals
    GET    /api/ledger/sales             Sales report (?from=&to=)
    GET    /api/reports/export.xlsx      Workbook download
    GET    /api/reports/sales.csv        Sales CSV download
    GET    /api/reports/payments.csv     Payment ledger CSV download

  Patients, services, expenses: plain CRUD, see server.go.

  Admin:
    POST   /api/admin/reconcile          Repair drifted transactions

ERROR HANDLING:
  Errors are JSON with appropriate status:
  - 400: Validation errors, invalid input
  - 404: Unknown document id
  - 409: Schedule conflict awaiting a decision
  - 500: Store and internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/senoto/clinic-engine/clinic"
	"github.com/senoto/clinic-engine/docstore"
	"github.com/senoto/clinic-engine/ledger"
	"github.com/senoto/clinic-engine/report"
	"github.com/senoto/clinic-engine/schedule"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Board    *clinic.ScheduleBoard
	Billing  *clinic.Billing
	Patients *clinic.Patients
	Services *clinic.Services
	Expenses *clinic.Expenses

	ClinicName string
}

// NewHandler creates a handler over the clinic containers.
func NewHandler(board *clinic.ScheduleBoard, billing *clinic.Billing, patients *clinic.Patients, services *clinic.Services, expenses *clinic.Expenses, clinicName string) *Handler {
	return &Handler{
		Board:      board,
		Billing:    billing,
		Patients:   patients,
		Services:   services,
		Expenses:   expenses,
		ClinicName: clinicName,
	}
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// ListSchedules returns appointments for a view window around ref.
// GET /api/schedules?view=day|week|month&ref=RFC3339
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	ref := parseRef(r)
	mode := schedule.ViewMode(r.URL.Query().Get("view"))
	if mode == "" {
		mode = schedule.ViewMonth
	}
	writeJSON(w, http.StatusOK, toEventDTOs(h.Board.Events(ref, mode)))
}

// ScheduleCounts returns per-day counts over the month grid containing ref.
// GET /api/schedules/counts?ref=RFC3339
func (h *Handler) ScheduleCounts(w http.ResponseWriter, r *http.Request) {
	ref := parseRef(r)
	counts := h.Board.DayCounts(ref)
	resp := DayCountsResponse{Counts: make(map[string]int, len(counts))}
	for day, n := range counts {
		resp.Counts[day.Format("2006-01-02")] = n
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateSchedule saves an appointment. A conflict without decision=proceed
// returns 409 with the clashing titles; the client resubmits with the
// decision to override.
// POST /api/schedules
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	candidate := schedule.Event{
		Title:    req.Title,
		Date:     req.Date,
		Duration: req.Duration,
		Public:   req.Public,
	}
	saved, err := h.Board.Add(r.Context(), candidate, schedule.Decision(req.Decision))
	if err != nil {
		var conflict *clinic.ConflictError
		if errors.As(err, &conflict) {
			writeJSON(w, http.StatusConflict, ConflictResponse{
				Error:     "Schedule conflict",
				Conflicts: conflict.Conflicts,
			})
			return
		}
		writeDomainError(w, "Failed to create appointment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventDTO(saved))
}

// UpdateSchedule rewrites an appointment.
// PUT /api/schedules/{id}
func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	event := schedule.Event{
		ID:       chi.URLParam(r, "id"),
		Title:    req.Title,
		Date:     req.Date,
		Duration: req.Duration,
		Public:   req.Public,
	}
	saved, err := h.Board.Update(r.Context(), event)
	if err != nil {
		writeDomainError(w, "Failed to update appointment", err)
		return
	}
	writeJSON(w, http.StatusOK, toEventDTO(saved))
}

// DeleteSchedule removes an appointment.
// DELETE /api/schedules/{id}
func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	if err := h.Board.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "Failed to delete appointment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// BILLING HANDLERS
// =============================================================================

// ListTransactions returns all sales, newest first.
// GET /api/transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.Billing.Transactions(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTOs(txs))
}

// CreateTransaction starts a sale.
// POST /api/transactions
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	total, err := parseAmount(req.TotalAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid totalAmount", err)
		return
	}
	initial, err := parseAmount(req.InitialPay)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid initialPay", err)
		return
	}

	tx, err := h.Billing.CreateSale(r.Context(), req.PatientID, req.PatientName,
		req.ServiceID, req.ServiceName, total, ledger.PaymentType(req.PaymentType), initial)
	if err != nil {
		writeDomainError(w, "Failed to create sale", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

// TransactionSummary returns the portfolio roll-up.
// GET /api/transactions/summary
func (h *Handler) TransactionSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Billing.Summary(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to summarize", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(summary))
}

// DeleteTransaction removes a sale without cascading to its installments.
// DELETE /api/transactions/{id}
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.Billing.DeleteTransaction(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "Failed to delete transaction", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListInstallments returns one transaction's payments, oldest first.
// GET /api/transactions/{id}/installments
func (h *Handler) ListInstallments(w http.ResponseWriter, r *http.Request) {
	ins, err := h.Billing.Installments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to list installments", err)
		return
	}
	writeJSON(w, http.StatusOK, toInstallmentDTOs(ins))
}

// AddPayment records an installment payment.
// POST /api/transactions/{id}/payments
func (h *Handler) AddPayment(w http.ResponseWriter, r *http.Request) {
	var req AddPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	installment, tx, err := h.Billing.AddPayment(r.Context(), chi.URLParam(r, "id"), amount, req.Note)
	if err != nil {
		if errors.Is(err, clinic.ErrPartialWrite) {
			// The payment exists; the totals are stale until reconciled.
			writeError(w, http.StatusAccepted, "Payment recorded, totals pending reconciliation", err)
			return
		}
		writeDomainError(w, "Failed to record payment", err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Installment InstallmentDTO `json:"installment"`
		Transaction TransactionDTO `json:"transaction"`
	}{toInstallmentDTO(installment), toTransactionDTO(tx)})
}

// RemovePayment deletes a payment and recomputes the transaction.
// DELETE /api/transactions/{id}/payments/{installmentId}
func (h *Handler) RemovePayment(w http.ResponseWriter, r *http.Request) {
	tx, err := h.Billing.RemovePayment(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "installmentId"))
	if err != nil {
		writeDomainError(w, "Failed to remove payment", err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(tx))
}

// Reconcile sweeps installment transactions and repairs drifted totals.
// POST /api/admin/reconcile
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	repaired, err := h.Billing.Reconcile(r.Context())
	if err != nil {
		writeDomainError(w, "Reconciliation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, ReconcileResponse{Repaired: repaired})
}

// =============================================================================
// LEDGER AND REPORT HANDLERS
// =============================================================================

// GetLedger returns the payment ledger and cash totals.
// GET /api/ledger
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	rows, totals, err := h.ledgerData(r)
	if err != nil {
		writeDomainError(w, "Failed to build ledger", err)
		return
	}
	writeJSON(w, http.StatusOK, LedgerResponse{
		Rows:   toLedgerRowDTOs(rows),
		Totals: toCashTotalsDTO(totals),
	})
}

// GetSalesReport returns one row per sale within the date range.
// GET /api/ledger/sales?from=2006-01-02&to=2006-01-02
func (h *Handler) GetSalesReport(w http.ResponseWriter, r *http.Request) {
	txs, err := h.Billing.Transactions(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list transactions", err)
		return
	}
	from, to, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleRowDTOs(ledger.SalesReport(txs, from, to)))
}

// ExportXLSX streams the full report workbook.
// GET /api/reports/export.xlsx
func (h *Handler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	data, err := h.reportData(r)
	if err != nil {
		writeDomainError(w, "Failed to build report", err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", data.Filename("xlsx")))
	if err := report.WriteXLSX(w, data); err != nil {
		writeError(w, http.StatusInternalServerError, "Export failed", err)
	}
}

// ExportSalesCSV streams the sales report as CSV.
// GET /api/reports/sales.csv
func (h *Handler) ExportSalesCSV(w http.ResponseWriter, r *http.Request) {
	data, err := h.reportData(r)
	if err != nil {
		writeDomainError(w, "Failed to build report", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", data.Filename("csv")))
	if err := report.WriteSalesCSV(w, data); err != nil {
		writeError(w, http.StatusInternalServerError, "Export failed", err)
	}
}

// ExportPaymentsCSV streams the payment ledger as CSV.
// GET /api/reports/payments.csv
func (h *Handler) ExportPaymentsCSV(w http.ResponseWriter, r *http.Request) {
	data, err := h.reportData(r)
	if err != nil {
		writeDomainError(w, "Failed to build report", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", data.Filename("csv")))
	if err := report.WritePaymentsCSV(w, data); err != nil {
		writeError(w, http.StatusInternalServerError, "Export failed", err)
	}
}

func (h *Handler) ledgerData(r *http.Request) ([]ledger.LedgerRow, ledger.CashTotals, error) {
	ctx := r.Context()
	txs, err := h.Billing.Transactions(ctx)
	if err != nil {
		return nil, ledger.CashTotals{}, err
	}
	rows, err := h.Billing.PaymentLedger(ctx)
	if err != nil {
		return nil, ledger.CashTotals{}, err
	}
	expenses, err := h.Expenses.List(ctx)
	if err != nil {
		return nil, ledger.CashTotals{}, err
	}
	return rows, ledger.ComputeCashTotals(txs, rows, expenses), nil
}

func (h *Handler) reportData(r *http.Request) (report.Data, error) {
	ctx := r.Context()
	from, to, err := parseDateRange(r)
	if err != nil {
		return report.Data{}, err
	}

	txs, err := h.Billing.Transactions(ctx)
	if err != nil {
		return report.Data{}, err
	}
	rows, err := h.Billing.PaymentLedger(ctx)
	if err != nil {
		return report.Data{}, err
	}
	expenses, err := h.Expenses.List(ctx)
	if err != nil {
		return report.Data{}, err
	}

	rows = ledger.FilterRowsByDate(rows, from, to)
	return report.Data{
		ClinicName: h.ClinicName,
		From:       from,
		To:         to,
		Sales:      ledger.SalesReport(txs, from, to),
		Payments:   rows,
		Totals:     ledger.ComputeCashTotals(txs, rows, expenses),
		Expenses:   expenses,
	}, nil
}

// =============================================================================
// PATIENT HANDLERS
// =============================================================================

// ListPatients returns all patients, optionally filtered by ?q=.
// GET /api/patients
func (h *Handler) ListPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.Patients.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeDomainError(w, "Failed to list patients", err)
		return
	}
	dtos := make([]PatientDTO, len(patients))
	for i, p := range patients {
		dtos[i] = toPatientDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPatient returns one patient.
// GET /api/patients/{id}
func (h *Handler) GetPatient(w http.ResponseWriter, r *http.Request) {
	p, err := h.Patients.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get patient", err)
		return
	}
	writeJSON(w, http.StatusOK, toPatientDTO(p))
}

// CreatePatient registers a patient.
// POST /api/patients
func (h *Handler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var req PatientDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	saved, err := h.Patients.Create(r.Context(), req.toPatient())
	if err != nil {
		writeDomainError(w, "Failed to create patient", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPatientDTO(saved))
}

// UpdatePatient rewrites a patient record.
// PUT /api/patients/{id}
func (h *Handler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	var req PatientDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	patient := req.toPatient()
	patient.ID = chi.URLParam(r, "id")
	saved, err := h.Patients.Update(r.Context(), patient)
	if err != nil {
		writeDomainError(w, "Failed to update patient", err)
		return
	}
	writeJSON(w, http.StatusOK, toPatientDTO(saved))
}

// DeletePatient removes a patient record.
// DELETE /api/patients/{id}
func (h *Handler) DeletePatient(w http.ResponseWriter, r *http.Request) {
	if err := h.Patients.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "Failed to delete patient", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PatientTransactions lists one patient's sales.
// GET /api/patients/{id}/transactions
func (h *Handler) PatientTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.Billing.TransactionsForPatient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to list transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTOs(txs))
}

// PatientSummary aggregates one patient's balances.
// GET /api/patients/{id}/summary
func (h *Handler) PatientSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Billing.PatientSummary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to summarize", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(summary))
}

// ListRecords returns one section of a patient's sub-records.
// GET /api/patients/{id}/records/{section}
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.Patients.Records(r.Context(),
		chi.URLParam(r, "section"), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to list records", err)
		return
	}
	dtos := make([]RecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = toRecordDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AddRecord appends an entry to a patient's section.
// POST /api/patients/{id}/records/{section}
func (h *Handler) AddRecord(w http.ResponseWriter, r *http.Request) {
	var req RecordDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	saved, err := h.Patients.AddRecord(r.Context(), chi.URLParam(r, "section"), clinic.Record{
		PatientID: chi.URLParam(r, "id"),
		Title:     req.Title,
		Detail:    req.Detail,
	})
	if err != nil {
		writeDomainError(w, "Failed to add record", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecordDTO(saved))
}

// DeleteRecord removes a sub-record entry.
// DELETE /api/records/{section}/{id}
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	err := h.Patients.DeleteRecord(r.Context(),
		chi.URLParam(r, "section"), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to delete record", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SERVICE HANDLERS
// =============================================================================

// ListServices returns the catalog.
// GET /api/services
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.Services.List(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list services", err)
		return
	}
	dtos := make([]ServiceDTO, len(services))
	for i, s := range services {
		dtos[i] = toServiceDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateService adds a catalog entry.
// POST /api/services
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.decodeService(w, r)
	if !ok {
		return
	}
	saved, err := h.Services.Create(r.Context(), svc)
	if err != nil {
		writeDomainError(w, "Failed to create service", err)
		return
	}
	writeJSON(w, http.StatusCreated, toServiceDTO(saved))
}

// UpdateService rewrites a catalog entry.
// PUT /api/services/{id}
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.decodeService(w, r)
	if !ok {
		return
	}
	svc.ID = chi.URLParam(r, "id")
	saved, err := h.Services.Update(r.Context(), svc)
	if err != nil {
		writeDomainError(w, "Failed to update service", err)
		return
	}
	writeJSON(w, http.StatusOK, toServiceDTO(saved))
}

// DeleteService removes a catalog entry.
// DELETE /api/services/{id}
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	if err := h.Services.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "Failed to delete service", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeService(w http.ResponseWriter, r *http.Request) (clinic.Service, bool) {
	var req ServiceDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return clinic.Service{}, false
	}
	price, err := parseAmount(req.ServicePrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid servicePrice", err)
		return clinic.Service{}, false
	}
	return clinic.Service{ServiceName: req.ServiceName, ServicePrice: price}, true
}

// =============================================================================
// EXPENSE HANDLERS
// =============================================================================

// ListExpenses returns all expenses, newest first.
// GET /api/expenses
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.Expenses.List(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list expenses", err)
		return
	}
	dtos := make([]ExpenseDTO, len(expenses))
	for i, e := range expenses {
		dtos[i] = toExpenseDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateExpense records an expense.
// POST /api/expenses
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req ExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}
	saved, err := h.Expenses.Create(r.Context(), ledger.Expense{
		Title:     req.Title,
		Category:  req.Category,
		Amount:    amount,
		DateSpent: req.DateSpent,
	})
	if err != nil {
		writeDomainError(w, "Failed to create expense", err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseDTO(saved))
}

// DeleteExpense removes an expense.
// DELETE /api/expenses/{id}
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.Expenses.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "Failed to delete expense", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExpenseSummary buckets expenses by category.
// GET /api/expenses/summary
func (h *Handler) ExpenseSummary(w http.ResponseWriter, r *http.Request) {
	totals, err := h.Expenses.Summarize(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to summarize expenses", err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseTotalsDTO(totals))
}

// =============================================================================
// HELPERS
// =============================================================================

func parseRef(r *http.Request) time.Time {
	if raw := r.URL.Query().Get("ref"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			return t
		}
	}
	return time.Now()
}

func parseDateRange(r *http.Request) (from, to time.Time, err error) {
	q := r.URL.Query()
	if raw := q.Get("from"); raw != "" {
		from, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return
		}
	}
	if raw := q.Get("to"); raw != "" {
		to, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return
		}
		// Inclusive upper bound: cover the whole day.
		to = to.Add(24*time.Hour - time.Nanosecond)
	}
	return
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors to status codes.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case docstore.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case clinic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
