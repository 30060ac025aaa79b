/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/schedules/*      Appointments and the calendar grid
  /api/patients/*       Patient registry and sub-records
  /api/transactions/*   Sales and installment payments
  /api/ledger/*         Payment ledger and sales report
  /api/reports/*        XLSX/CSV downloads
  /api/services/*       Billable service catalog
  /api/expenses/*       Operating expenses
  /api/admin/*          Reconciliation

SECURITY NOTE:
  No authentication middleware. The server is meant to sit on a clinic's
  local network behind the reception desk.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Schedule routes
		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", h.ListSchedules)
			r.Get("/counts", h.ScheduleCounts)
			r.Post("/", h.CreateSchedule)
			r.Put("/{id}", h.UpdateSchedule)
			r.Delete("/{id}", h.DeleteSchedule)
		})

		// Patient routes
		r.Route("/patients", func(r chi.Router) {
			r.Get("/", h.ListPatients)
			r.Post("/", h.CreatePatient)
			r.Get("/{id}", h.GetPatient)
			r.Put("/{id}", h.UpdatePatient)
			r.Delete("/{id}", h.DeletePatient)
			r.Get("/{id}/transactions", h.PatientTransactions)
			r.Get("/{id}/summary", h.PatientSummary)
			r.Get("/{id}/records/{section}", h.ListRecords)
			r.Post("/{id}/records/{section}", h.AddRecord)
		})
		r.Delete("/records/{section}/{id}", h.DeleteRecord)

		// Billing routes
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", h.ListTransactions)
			r.Post("/", h.CreateTransaction)
			r.Get("/summary", h.TransactionSummary)
			r.Delete("/{id}", h.DeleteTransaction)
			r.Get("/{id}/installments", h.ListInstallments)
			r.Post("/{id}/payments", h.AddPayment)
			r.Delete("/{id}/payments/{installmentId}", h.RemovePayment)
		})

		// Ledger and report routes
		r.Route("/ledger", func(r chi.Router) {
			r.Get("/", h.GetLedger)
			r.Get("/sales", h.GetSalesReport)
		})
		r.Route("/reports", func(r chi.Router) {
			r.Get("/export.xlsx", h.ExportXLSX)
			r.Get("/sales.csv", h.ExportSalesCSV)
			r.Get("/payments.csv", h.ExportPaymentsCSV)
		})

		// Catalog routes
		r.Route("/services", func(r chi.Router) {
			r.Get("/", h.ListServices)
			r.Post("/", h.CreateService)
			r.Put("/{id}", h.UpdateService)
			r.Delete("/{id}", h.DeleteService)
		})

		// Expense routes
		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", h.ListExpenses)
			r.Post("/", h.CreateExpense)
			r.Get("/summary", h.ExpenseSummary)
			r.Delete("/{id}", h.DeleteExpense)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/reconcile", h.Reconcile)
			r.Post("/seed-demo", h.SeedDemo)
		})
	})

	return r
}
