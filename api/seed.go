/*
seed.go - Demo data loader

PURPOSE:
  Seeds a fresh store with a small, realistic clinic: a service catalog,
  a few patients, this week's appointments, and a mix of full and
  installment sales. Used for demos and manual testing against the memory
  or a throwaway sqlite store.

SAFETY:
  Refuses to run when patients already exist, so it cannot pollute a live
  database.
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/senoto/clinic-engine/clinic"
	"github.com/senoto/clinic-engine/ledger"
	"github.com/senoto/clinic-engine/schedule"
)

// SeedDemo loads the demo dataset into an empty store.
// POST /api/admin/seed-demo
func (h *Handler) SeedDemo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	existing, err := h.Patients.List(ctx)
	if err != nil {
		writeDomainError(w, "Failed to check store", err)
		return
	}
	if len(existing) > 0 {
		writeError(w, http.StatusConflict, "Store is not empty", nil)
		return
	}

	if err := h.seed(ctx); err != nil {
		writeDomainError(w, "Seeding failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "seeded"})
}

func (h *Handler) seed(ctx context.Context) error {
	services := []clinic.Service{
		{ServiceName: "Oral Prophylaxis", ServicePrice: dec("1200")},
		{ServiceName: "Tooth Extraction", ServicePrice: dec("1500")},
		{ServiceName: "Orthodontic Braces", ServicePrice: dec("45000")},
		{ServiceName: "Root Canal Treatment", ServicePrice: dec("8000")},
	}
	for i, svc := range services {
		saved, err := h.Services.Create(ctx, svc)
		if err != nil {
			return fmt.Errorf("seed service %q: %w", svc.ServiceName, err)
		}
		services[i] = saved
	}

	patients := []clinic.Patient{
		{PatientName: "Maria Cruz", Gender: "Female", Contact: "0917-555-0101", Address: "Quezon City"},
		{PatientName: "Jose Ramirez", Gender: "Male", Contact: "0917-555-0102", Address: "Makati"},
		{PatientName: "Ana Reyes", Gender: "Female", Contact: "0917-555-0103", Address: "Pasig"},
	}
	for i, p := range patients {
		saved, err := h.Patients.Create(ctx, p)
		if err != nil {
			return fmt.Errorf("seed patient %q: %w", p.PatientName, err)
		}
		patients[i] = saved
	}

	// Appointments spread over the coming days, none overlapping.
	day := time.Now().AddDate(0, 0, 1)
	slots := []struct {
		title    string
		hour     int
		dayShift int
		duration int
	}{
		{"Maria Cruz - Prophylaxis", 9, 0, 30},
		{"Jose Ramirez - Extraction", 10, 0, 60},
		{"Ana Reyes - Braces adjustment", 9, 1, 45},
	}
	for _, s := range slots {
		d := day.AddDate(0, 0, s.dayShift)
		_, err := h.Board.Add(ctx, schedule.Event{
			Title:    s.title,
			Date:     time.Date(d.Year(), d.Month(), d.Day(), s.hour, 0, 0, 0, d.Location()),
			Duration: s.duration,
		}, "")
		if err != nil {
			return fmt.Errorf("seed appointment %q: %w", s.title, err)
		}
	}

	// One settled full sale, one running installment plan.
	if _, err := h.Billing.CreateSale(ctx, patients[0].ID, patients[0].PatientName,
		services[0].ID, services[0].ServiceName, services[0].ServicePrice,
		ledger.PayFull, decimal.Zero); err != nil {
		return fmt.Errorf("seed full sale: %w", err)
	}

	plan, err := h.Billing.CreateSale(ctx, patients[2].ID, patients[2].PatientName,
		services[2].ID, services[2].ServiceName, services[2].ServicePrice,
		ledger.PayInstallment, dec("10000"))
	if err != nil {
		return fmt.Errorf("seed installment sale: %w", err)
	}
	if _, _, err := h.Billing.AddPayment(ctx, plan.ID, dec("5000"), "Second payment"); err != nil {
		return fmt.Errorf("seed payment: %w", err)
	}

	if _, err := h.Expenses.Create(ctx, ledger.Expense{
		Title:    "Dental supplies restock",
		Category: "Supplies",
		Amount:   dec("3500"),
	}); err != nil {
		return fmt.Errorf("seed expense: %w", err)
	}
	return nil
}

func dec(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}
