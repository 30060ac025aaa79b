package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/senoto/clinic-engine/api"
	"github.com/senoto/clinic-engine/clinic"
	"github.com/senoto/clinic-engine/docstore/memory"
	"github.com/senoto/clinic-engine/logger"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.New()
	log := logger.NewWithWriter(logSink{t})

	board, err := clinic.NewScheduleBoard(context.Background(), store, log)
	require.NoError(t, err)
	t.Cleanup(board.Close)

	handler := api.NewHandler(board,
		clinic.NewBilling(store, log),
		clinic.NewPatients(store, log),
		clinic.NewServices(store, log),
		clinic.NewExpenses(store, log),
		"Senoto Dental Care")

	srv := httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(srv.Close)
	return srv
}

type logSink struct{ t *testing.T }

func (s logSink) Write(p []byte) (int, error) {
	s.t.Log(string(p))
	return len(p), nil
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// =============================================================================
// SCHEDULE ENDPOINTS
// =============================================================================

func TestAPI_ScheduleConflictFlow(t *testing.T) {
	// GIVEN: A saved 09:00 appointment
	// WHEN: An overlapping one is posted without a decision, then with proceed
	// THEN: First attempt gets 409 with the clash; second gets 201

	srv := newTestServer(t)
	date := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/schedules", api.CreateEventRequest{
		Title: "Root canal", Date: date, Duration: 60,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	overlap := api.CreateEventRequest{Title: "Checkup", Date: date.Add(30 * time.Minute), Duration: 30}
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/schedules", overlap)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	conflict := decode[api.ConflictResponse](t, resp)
	assert.Equal(t, []string{"Root canal"}, conflict.Conflicts)

	overlap.Decision = "proceed"
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/schedules", overlap)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet,
		fmt.Sprintf("%s/api/schedules?view=day&ref=%s", srv.URL, date.Format(time.RFC3339)), nil)
	events := decode[[]api.EventDTO](t, resp)
	assert.Len(t, events, 2)
}

func TestAPI_ScheduleCounts(t *testing.T) {
	srv := newTestServer(t)
	date := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/schedules", api.CreateEventRequest{
		Title: "Cleaning", Date: date, Duration: 30,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/schedules/counts?ref=2025-06-01", nil)
	counts := decode[api.DayCountsResponse](t, resp)
	assert.Equal(t, 1, counts.Counts["2025-06-10"])
}

// =============================================================================
// BILLING ENDPOINTS
// =============================================================================

func TestAPI_SaleAndPaymentFlow(t *testing.T) {
	// GIVEN: A patient with a 5000 installment plan, 2000 down
	// WHEN: A 3000 payment is posted
	// THEN: The returned transaction is paid and the ledger has both payments

	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/transactions", api.CreateSaleRequest{
		PatientID:   "pat-1",
		PatientName: "Maria Cruz",
		ServiceName: "Braces",
		TotalAmount: "5000",
		PaymentType: "installment",
		InitialPay:  "2000",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tx := decode[api.TransactionDTO](t, resp)
	assert.Equal(t, "ongoing", tx.Status)
	assert.Equal(t, "3000", tx.Remaining)

	resp = doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/transactions/%s/payments", srv.URL, tx.ID),
		api.AddPaymentRequest{Amount: "3000", Note: "final"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	payment := decode[struct {
		Installment api.InstallmentDTO `json:"installment"`
		Transaction api.TransactionDTO `json:"transaction"`
	}](t, resp)
	assert.Equal(t, "paid", payment.Transaction.Status)
	assert.Equal(t, "0", payment.Installment.Remaining)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/ledger", nil)
	ledgerResp := decode[api.LedgerResponse](t, resp)
	assert.Len(t, ledgerResp.Rows, 2)
	assert.Equal(t, "5000", ledgerResp.Totals.TotalCashCollected)
	assert.Equal(t, "5000", ledgerResp.Totals.TotalSales)
}

func TestAPI_SaleValidation(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/transactions", api.CreateSaleRequest{
		PatientName: "Maria Cruz",
		ServiceName: "Braces",
		TotalAmount: "5000",
		PaymentType: "installment",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/transactions", api.CreateSaleRequest{
		PatientID:   "pat-1",
		PatientName: "Maria Cruz",
		ServiceName: "Braces",
		TotalAmount: "not-a-number",
		PaymentType: "full",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/transactions", api.CreateSaleRequest{
		PatientID:   "pat-1",
		PatientName: "Maria Cruz",
		ServiceName: "Braces",
		TotalAmount: "-5000",
		PaymentType: "full",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "negative totals are rejected")
	resp.Body.Close()
}

func TestAPI_PaymentOnUnknownTransaction(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/transactions/nope/payments",
		api.AddPaymentRequest{Amount: "100"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

// =============================================================================
// PATIENT ENDPOINTS
// =============================================================================

func TestAPI_PatientCRUDAndRecords(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/patients", api.PatientDTO{
		PatientName: "Maria Cruz",
		Contact:     "0917-555-0101",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	patient := decode[api.PatientDTO](t, resp)
	require.NotEmpty(t, patient.ID)

	resp = doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/patients/%s/records/notes", srv.URL, patient.ID),
		api.RecordDTO{Title: "First visit", Detail: "Cleaning done"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet,
		fmt.Sprintf("%s/api/patients/%s/records/notes", srv.URL, patient.ID), nil)
	notes := decode[[]api.RecordDTO](t, resp)
	require.Len(t, notes, 1)
	assert.Equal(t, "First visit", notes[0].Title)

	// Unknown section is rejected.
	resp = doJSON(t, http.MethodGet,
		fmt.Sprintf("%s/api/patients/%s/records/bogus", srv.URL, patient.ID), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/patients?q=maria", nil)
	found := decode[[]api.PatientDTO](t, resp)
	assert.Len(t, found, 1)
}

func TestAPI_PatientMissingContact(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/patients", api.PatientDTO{
		PatientName: "No Contact",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

// =============================================================================
// REPORT AND ADMIN ENDPOINTS
// =============================================================================

func TestAPI_SeedDemoThenExport(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/admin/seed-demo", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Seeding twice is refused.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/admin/seed-demo", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/reports/sales.csv", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/reports/export.xlsx", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/admin/reconcile", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	recon := decode[api.ReconcileResponse](t, resp)
	assert.Zero(t, recon.Repaired, "seeded data is consistent")
}
