/*
dto.go - Request/response shapes for the clinic API

PURPOSE:
  JSON wire types for every endpoint. Amounts travel as decimal strings and
  timestamps as RFC3339, matching what the stores persist; the DTO layer is
  the only place that converts.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

SEE ALSO:
  - handlers.go: Where these are populated
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/senoto/clinic-engine/clinic"
	"github.com/senoto/clinic-engine/ledger"
	"github.com/senoto/clinic-engine/schedule"
)

// =============================================================================
// SCHEDULE
// =============================================================================

// EventDTO is one appointment on the wire.
type EventDTO struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Date     time.Time `json:"date"`
	Duration int       `json:"duration"`
	Public   bool      `json:"public"`
}

func toEventDTO(e schedule.Event) EventDTO {
	return EventDTO{ID: e.ID, Title: e.Title, Date: e.Date, Duration: e.Duration, Public: e.Public}
}

func toEventDTOs(events []schedule.Event) []EventDTO {
	out := make([]EventDTO, len(events))
	for i, e := range events {
		out[i] = toEventDTO(e)
	}
	return out
}

// CreateEventRequest carries a new appointment plus the caller's conflict
// decision. Decision is empty on the first attempt; "proceed" confirms an
// override after a 409.
type CreateEventRequest struct {
	Title    string    `json:"title"`
	Date     time.Time `json:"date"`
	Duration int       `json:"duration"`
	Public   bool      `json:"public"`
	Decision string    `json:"decision,omitempty"`
}

// ConflictResponse is the 409 body listing the clashing appointments.
type ConflictResponse struct {
	Error     string   `json:"error"`
	Conflicts []string `json:"conflicts"`
}

// DayCountsResponse maps grid dates (yyyy-mm-dd) to appointment counts.
type DayCountsResponse struct {
	Counts map[string]int `json:"counts"`
}

// =============================================================================
// BILLING
// =============================================================================

// TransactionDTO is one sale on the wire.
type TransactionDTO struct {
	ID             string    `json:"id"`
	PatientID      string    `json:"patientId"`
	PatientName    string    `json:"patientName"`
	ServiceID      string    `json:"serviceId,omitempty"`
	ServiceName    string    `json:"serviceName"`
	TotalAmount    string    `json:"totalAmount"`
	PaymentType    string    `json:"paymentType"`
	Paid           string    `json:"paid"`
	Remaining      string    `json:"remaining"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	NeedsRecompute bool      `json:"needsRecompute,omitempty"`
}

func toTransactionDTO(t ledger.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:             t.ID,
		PatientID:      t.PatientID,
		PatientName:    t.PatientName,
		ServiceID:      t.ServiceID,
		ServiceName:    t.ServiceName,
		TotalAmount:    t.TotalAmount.String(),
		PaymentType:    string(t.PaymentType),
		Paid:           t.Paid.String(),
		Remaining:      t.Remaining.String(),
		Status:         string(t.Status),
		CreatedAt:      t.CreatedAt,
		NeedsRecompute: t.NeedsRecompute,
	}
}

func toTransactionDTOs(txs []ledger.Transaction) []TransactionDTO {
	out := make([]TransactionDTO, len(txs))
	for i, t := range txs {
		out[i] = toTransactionDTO(t)
	}
	return out
}

// InstallmentDTO is one payment on the wire.
type InstallmentDTO struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transactionId"`
	Amount        string    `json:"amount"`
	DateTransact  time.Time `json:"dateTransact"`
	Remaining     string    `json:"remaining"`
	Note          string    `json:"note,omitempty"`
	PatientName   string    `json:"patientName"`
}

func toInstallmentDTO(in ledger.Installment) InstallmentDTO {
	return InstallmentDTO{
		ID:            in.ID,
		TransactionID: in.TransactionID,
		Amount:        in.Amount.String(),
		DateTransact:  in.DateTransact,
		Remaining:     in.Remaining.String(),
		Note:          in.Note,
		PatientName:   in.PatientName,
	}
}

func toInstallmentDTOs(ins []ledger.Installment) []InstallmentDTO {
	out := make([]InstallmentDTO, len(ins))
	for i, in := range ins {
		out[i] = toInstallmentDTO(in)
	}
	return out
}

// CreateSaleRequest starts a new sale.
type CreateSaleRequest struct {
	PatientID   string `json:"patientId"`
	PatientName string `json:"patientName"`
	ServiceID   string `json:"serviceId"`
	ServiceName string `json:"serviceName"`
	TotalAmount string `json:"totalAmount"`
	PaymentType string `json:"paymentType"`
	InitialPay  string `json:"initialPay,omitempty"`
}

// AddPaymentRequest records one installment payment.
type AddPaymentRequest struct {
	Amount string `json:"amount"`
	Note   string `json:"note,omitempty"`
}

// SummaryDTO is the portfolio roll-up.
type SummaryDTO struct {
	TotalPaid        string `json:"totalPaid"`
	TotalRemaining   string `json:"totalRemaining"`
	CountWithBalance int    `json:"countWithBalance"`
}

func toSummaryDTO(s ledger.Summary) SummaryDTO {
	return SummaryDTO{
		TotalPaid:        s.TotalPaid.String(),
		TotalRemaining:   s.TotalRemaining.String(),
		CountWithBalance: s.CountWithBalance,
	}
}

// LedgerRowDTO is one cash movement.
type LedgerRowDTO struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transactionId"`
	Type          string    `json:"type"`
	PatientName   string    `json:"patientName"`
	Amount        string    `json:"amount"`
	Remaining     string    `json:"remaining"`
	Date          time.Time `json:"date"`
}

func toLedgerRowDTOs(rows []ledger.LedgerRow) []LedgerRowDTO {
	out := make([]LedgerRowDTO, len(rows))
	for i, r := range rows {
		out[i] = LedgerRowDTO{
			ID:            r.ID,
			TransactionID: r.TransactionID,
			Type:          string(r.Type),
			PatientName:   r.PatientName,
			Amount:        r.Amount.String(),
			Remaining:     r.Remaining.String(),
			Date:          r.Date,
		}
	}
	return out
}

// CashTotalsDTO is the headline figure block.
type CashTotalsDTO struct {
	TotalSales            string `json:"totalSales"`
	TotalCashCollected    string `json:"totalCashCollected"`
	InstallmentsCollected string `json:"installmentsCollected"`
	FullPaymentsReceived  string `json:"fullPaymentsReceived"`
	TotalExpenses         string `json:"totalExpenses"`
	NetRevenue            string `json:"netRevenue"`
}

func toCashTotalsDTO(ct ledger.CashTotals) CashTotalsDTO {
	return CashTotalsDTO{
		TotalSales:            ct.TotalSales.String(),
		TotalCashCollected:    ct.TotalCashCollected.String(),
		InstallmentsCollected: ct.InstallmentsCollected.String(),
		FullPaymentsReceived:  ct.FullPaymentsReceived.String(),
		TotalExpenses:         ct.TotalExpenses.String(),
		NetRevenue:            ct.NetRevenue.String(),
	}
}

// LedgerResponse is the payments tab payload.
type LedgerResponse struct {
	Rows   []LedgerRowDTO `json:"rows"`
	Totals CashTotalsDTO  `json:"totals"`
}

// SaleRowDTO is one sale in the sales report.
type SaleRowDTO struct {
	TransactionID string    `json:"transactionId"`
	PatientName   string    `json:"patientName"`
	ServiceName   string    `json:"serviceName"`
	PaymentType   string    `json:"paymentType"`
	Amount        string    `json:"amount"`
	TotalPaid     string    `json:"totalPaid"`
	Remaining     string    `json:"remaining"`
	Date          time.Time `json:"date"`
}

func toSaleRowDTOs(rows []ledger.SaleRow) []SaleRowDTO {
	out := make([]SaleRowDTO, len(rows))
	for i, r := range rows {
		out[i] = SaleRowDTO{
			TransactionID: r.TransactionID,
			PatientName:   r.PatientName,
			ServiceName:   r.ServiceName,
			PaymentType:   string(r.PaymentType),
			Amount:        r.Amount.String(),
			TotalPaid:     r.TotalPaid.String(),
			Remaining:     r.Remaining.String(),
			Date:          r.Date,
		}
	}
	return out
}

// ReconcileResponse reports a reconciliation sweep.
type ReconcileResponse struct {
	Repaired int `json:"repaired"`
}

// =============================================================================
// PATIENTS, SERVICES, EXPENSES
// =============================================================================

// PatientDTO is one patient record on the wire.
type PatientDTO struct {
	ID                     string    `json:"id"`
	PatientName            string    `json:"patientName"`
	Gender                 string    `json:"gender,omitempty"`
	Birthdate              string    `json:"birthdate,omitempty"`
	Contact                string    `json:"contact"`
	CivilStatus            string    `json:"civilStatus,omitempty"`
	Occupation             string    `json:"occupation,omitempty"`
	Address                string    `json:"address,omitempty"`
	EmergencyContact       string    `json:"emergencyToContact,omitempty"`
	EmergencyContactNumber string    `json:"emergencyToContactNumber,omitempty"`
	Note                   string    `json:"note,omitempty"`
	CreatedAt              time.Time `json:"createdAt"`
}

func toPatientDTO(p clinic.Patient) PatientDTO {
	return PatientDTO{
		ID:                     p.ID,
		PatientName:            p.PatientName,
		Gender:                 p.Gender,
		Birthdate:              p.Birthdate,
		Contact:                p.Contact,
		CivilStatus:            p.CivilStatus,
		Occupation:             p.Occupation,
		Address:                p.Address,
		EmergencyContact:       p.EmergencyContact,
		EmergencyContactNumber: p.EmergencyContactNumber,
		Note:                   p.Note,
		CreatedAt:              p.CreatedAt,
	}
}

func (d PatientDTO) toPatient() clinic.Patient {
	return clinic.Patient{
		ID:                     d.ID,
		PatientName:            d.PatientName,
		Gender:                 d.Gender,
		Birthdate:              d.Birthdate,
		Contact:                d.Contact,
		CivilStatus:            d.CivilStatus,
		Occupation:             d.Occupation,
		Address:                d.Address,
		EmergencyContact:       d.EmergencyContact,
		EmergencyContactNumber: d.EmergencyContactNumber,
		Note:                   d.Note,
	}
}

// RecordDTO is one patient sub-record entry.
type RecordDTO struct {
	ID        string    `json:"id"`
	PatientID string    `json:"patientId"`
	Title     string    `json:"title"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toRecordDTO(r clinic.Record) RecordDTO {
	return RecordDTO{ID: r.ID, PatientID: r.PatientID, Title: r.Title, Detail: r.Detail, CreatedAt: r.CreatedAt}
}

// ServiceDTO is one catalog entry.
type ServiceDTO struct {
	ID           string `json:"id"`
	ServiceName  string `json:"serviceName"`
	ServicePrice string `json:"servicePrice"`
}

func toServiceDTO(s clinic.Service) ServiceDTO {
	return ServiceDTO{ID: s.ID, ServiceName: s.ServiceName, ServicePrice: s.ServicePrice.String()}
}

// ExpenseDTO is one expense record.
type ExpenseDTO struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category,omitempty"`
	Amount    string    `json:"amount"`
	DateSpent time.Time `json:"dateSpent"`
}

func toExpenseDTO(e ledger.Expense) ExpenseDTO {
	return ExpenseDTO{
		ID:        e.ID,
		Title:     e.Title,
		Category:  e.Category,
		Amount:    e.Amount.String(),
		DateSpent: e.DateSpent,
	}
}

// ExpenseTotalsDTO is the expense tab's summary block.
type ExpenseTotalsDTO struct {
	Total      string            `json:"total"`
	ByCategory map[string]string `json:"byCategory"`
}

func toExpenseTotalsDTO(t ledger.ExpenseTotals) ExpenseTotalsDTO {
	out := ExpenseTotalsDTO{Total: t.Total.String(), ByCategory: make(map[string]string, len(t.ByCategory))}
	for cat, amt := range t.ByCategory {
		out.ByCategory[cat] = amt.String()
	}
	return out
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// parseAmount converts a wire decimal string, tolerating empty as zero.
func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
