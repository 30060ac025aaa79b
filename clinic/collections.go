/*
Package clinic holds the application's state containers and data mapping.

PURPOSE:
  Everything between the pure engines (schedule, ledger) and the document
  store lives here: collection names, document <-> entity mapping, and the
  per-session containers that fetch snapshots, run the engines, and persist
  the results. Containers hold no hidden global state; construct them per
  session and pass them where needed.

FIELD ENCODING:
  Documents are loosely typed, so the mapping layer pins a convention:
  timestamps are RFC3339 strings, money amounts are decimal strings, and
  booleans stay booleans. Decoding is defensive throughout - a record with
  a missing or garbled amount contributes zero, never an error.

SEE ALSO:
  - scheduleboard.go: Appointment container
  - billing.go: Payment flows and the two-step write saga
  - patients.go: Patient records and sub-records
*/
package clinic

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/senoto/clinic-engine/docstore"
	"github.com/senoto/clinic-engine/ledger"
	"github.com/senoto/clinic-engine/schedule"
)

// =============================================================================
// COLLECTIONS - names match the hosted database's collection ids
// =============================================================================

const (
	ColSchedules      = "schedules"
	ColPatients       = "patients"
	ColTransactions   = "transactions"
	ColInstallments   = "installments"
	ColExpenses       = "expenses"
	ColServices       = "services"
	ColNotes          = "notes"
	ColMedicalHistory = "medicalhistory"
	ColTreatmentPlans = "treatmentplans"
	ColDentalChart    = "dentalchart"
)

// =============================================================================
// FIELD CODECS
// =============================================================================

func encodeTime(t time.Time) string { return t.Format(time.RFC3339) }

func decodeTime(v any) time.Time {
	s, _ := v.(string)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func decodeInt(v any) int {
	switch x := v.(type) {
	case int:
		return x
	case float64:
		return int(x)
	default:
		return 0
	}
}

// =============================================================================
// EVENTS
// =============================================================================

func encodeEvent(e schedule.Event) map[string]any {
	return map[string]any{
		"title":    e.Title,
		"date":     encodeTime(e.Date),
		"duration": e.Duration,
		"public":   e.Public,
	}
}

func decodeEvent(doc docstore.Document) schedule.Event {
	return schedule.Event{
		ID:       doc.ID,
		Title:    doc.GetString("title"),
		Date:     decodeTime(doc.Get("date")),
		Duration: decodeInt(doc.Get("duration")),
		Public:   doc.GetBool("public"),
	}
}

// =============================================================================
// TRANSACTIONS AND INSTALLMENTS
// =============================================================================

func encodeTransaction(t ledger.Transaction) map[string]any {
	return map[string]any{
		"patientId":   t.PatientID,
		"patientName": t.PatientName,
		"serviceId":   t.ServiceID,
		"serviceName": t.ServiceName,
		"totalAmount": t.TotalAmount.String(),
		"paymentType": string(t.PaymentType),
		"paid":        t.Paid.String(),
		"remaining":   t.Remaining.String(),
		"status":      string(t.Status),
	}
}

// transactionPatch is the recompute subset persisted after a payment
// mutation.
func transactionPatch(t ledger.Transaction) map[string]any {
	return map[string]any{
		"paid":           t.Paid.String(),
		"remaining":      t.Remaining.String(),
		"status":         string(t.Status),
		"needsRecompute": t.NeedsRecompute,
	}
}

func decodeTransaction(doc docstore.Document) ledger.Transaction {
	return ledger.Transaction{
		ID:             doc.ID,
		PatientID:      doc.GetString("patientId"),
		PatientName:    doc.GetString("patientName"),
		ServiceID:      doc.GetString("serviceId"),
		ServiceName:    doc.GetString("serviceName"),
		TotalAmount:    ledger.ParseAmount(doc.Get("totalAmount")),
		PaymentType:    ledger.PaymentType(doc.GetString("paymentType")),
		Paid:           ledger.ParseAmount(doc.Get("paid")),
		Remaining:      ledger.ParseAmount(doc.Get("remaining")),
		Status:         ledger.Status(doc.GetString("status")),
		CreatedAt:      doc.CreatedAt,
		NeedsRecompute: doc.GetBool("needsRecompute"),
	}
}

func encodeInstallment(in ledger.Installment) map[string]any {
	return map[string]any{
		"transactionId": in.TransactionID,
		"amount":        in.Amount.String(),
		"dateTransact":  encodeTime(in.DateTransact),
		"remaining":     in.Remaining.String(),
		"note":          in.Note,
		"patientId":     in.PatientID,
		"patientName":   in.PatientName,
		"serviceName":   in.ServiceName,
	}
}

func decodeInstallment(doc docstore.Document) ledger.Installment {
	in := ledger.Installment{
		ID:            doc.ID,
		TransactionID: doc.GetString("transactionId"),
		Amount:        ledger.ParseAmount(doc.Get("amount")),
		DateTransact:  decodeTime(doc.Get("dateTransact")),
		Remaining:     ledger.ParseAmount(doc.Get("remaining")),
		Note:          doc.GetString("note"),
		PatientID:     doc.GetString("patientId"),
		PatientName:   doc.GetString("patientName"),
		ServiceName:   doc.GetString("serviceName"),
	}
	if in.DateTransact.IsZero() {
		in.DateTransact = doc.CreatedAt
	}
	return in
}

// =============================================================================
// EXPENSES AND SERVICES
// =============================================================================

func encodeExpense(e ledger.Expense) map[string]any {
	return map[string]any{
		"title":     e.Title,
		"category":  e.Category,
		"amount":    e.Amount.String(),
		"dateSpent": encodeTime(e.DateSpent),
	}
}

func decodeExpense(doc docstore.Document) ledger.Expense {
	e := ledger.Expense{
		ID:        doc.ID,
		Title:     doc.GetString("title"),
		Category:  doc.GetString("category"),
		Amount:    ledger.ParseAmount(doc.Get("amount")),
		DateSpent: decodeTime(doc.Get("dateSpent")),
	}
	if e.DateSpent.IsZero() {
		e.DateSpent = doc.CreatedAt
	}
	return e
}

// Service is a billable service offered by the clinic.
type Service struct {
	ID           string
	ServiceName  string
	ServicePrice decimal.Decimal
}

func encodeService(s Service) map[string]any {
	return map[string]any{
		"serviceName":  s.ServiceName,
		"servicePrice": s.ServicePrice.String(),
	}
}

func decodeService(doc docstore.Document) Service {
	return Service{
		ID:           doc.ID,
		ServiceName:  doc.GetString("serviceName"),
		ServicePrice: ledger.ParseAmount(doc.Get("servicePrice")),
	}
}

// =============================================================================
// PATIENTS AND SUB-RECORDS
// =============================================================================

// Patient is a clinic patient record.
type Patient struct {
	ID          string
	PatientName string
	Gender      string
	Birthdate   string
	Contact     string
	CivilStatus string
	Occupation  string
	Address     string

	EmergencyContact       string
	EmergencyContactNumber string
	Note                   string

	CreatedAt time.Time
}

func encodePatient(p Patient) map[string]any {
	return map[string]any{
		"patientName":              p.PatientName,
		"gender":                   p.Gender,
		"birthdate":                p.Birthdate,
		"contact":                  p.Contact,
		"civilStatus":              p.CivilStatus,
		"occupation":               p.Occupation,
		"address":                  p.Address,
		"emergencyToContact":       p.EmergencyContact,
		"emergencyToContactNumber": p.EmergencyContactNumber,
		"note":                     p.Note,
	}
}

func decodePatient(doc docstore.Document) Patient {
	return Patient{
		ID:                     doc.ID,
		PatientName:            doc.GetString("patientName"),
		Gender:                 doc.GetString("gender"),
		Birthdate:              doc.GetString("birthdate"),
		Contact:                doc.GetString("contact"),
		CivilStatus:            doc.GetString("civilStatus"),
		Occupation:             doc.GetString("occupation"),
		Address:                doc.GetString("address"),
		EmergencyContact:       doc.GetString("emergencyToContact"),
		EmergencyContactNumber: doc.GetString("emergencyToContactNumber"),
		Note:                   doc.GetString("note"),
		CreatedAt:              doc.CreatedAt,
	}
}

// Record is a free-form entry in one of a patient's sub-sections: notes,
// medical history, treatment plans, or dental chart entries.
type Record struct {
	ID        string
	PatientID string
	Title     string
	Detail    string
	CreatedAt time.Time
}

func encodeRecord(r Record) map[string]any {
	return map[string]any{
		"patientId": r.PatientID,
		"title":     r.Title,
		"detail":    r.Detail,
	}
}

func decodeRecord(doc docstore.Document) Record {
	return Record{
		ID:        doc.ID,
		PatientID: doc.GetString("patientId"),
		Title:     doc.GetString("title"),
		Detail:    doc.GetString("detail"),
		CreatedAt: doc.CreatedAt,
	}
}
