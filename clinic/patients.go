/*
patients.go - Patient records and their sub-sections

PURPOSE:
  CRUD over the patients collection plus the four per-patient record
  sections: notes, medical history, treatment plans, and dental chart
  entries. Sub-records live in their own collections keyed by patientId.

DELETE SEMANTICS:
  Deleting a patient removes the patient document only. Sub-records and
  transactions keep their patientId and survive as orphans, same as the
  billing side.
*/
package clinic

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/senoto/clinic-engine/docstore"
)

// recordCollections maps a section name to its collection. Exposed via
// RecordSections for the API layer.
var recordCollections = map[string]string{
	"notes":          ColNotes,
	"medicalhistory": ColMedicalHistory,
	"treatmentplans": ColTreatmentPlans,
	"dentalchart":    ColDentalChart,
}

// RecordSections returns the valid sub-record section names.
func RecordSections() []string {
	return []string{"notes", "medicalhistory", "treatmentplans", "dentalchart"}
}

// Patients manages the patient registry.
type Patients struct {
	store docstore.Store
	log   zerolog.Logger
}

// NewPatients builds the patient container.
func NewPatients(store docstore.Store, log zerolog.Logger) *Patients {
	return &Patients{
		store: store,
		log:   log.With().Str("component", "patients").Logger(),
	}
}

// =============================================================================
// PATIENT CRUD
// =============================================================================

// List returns all patients, newest first.
func (p *Patients) List(ctx context.Context) ([]Patient, error) {
	docs, err := p.store.List(ctx, ColPatients,
		docstore.ListOptions{}.WithOrder("createdAt", true))
	if err != nil {
		return nil, err
	}
	out := make([]Patient, 0, len(docs))
	for _, doc := range docs {
		out = append(out, decodePatient(doc))
	}
	return out, nil
}

// Search returns patients whose name contains q, case-insensitively.
// Filtering runs client-side; the collection is a per-clinic set, not a
// population registry.
func (p *Patients) Search(ctx context.Context, q string) ([]Patient, error) {
	all, err := p.List(ctx)
	if err != nil {
		return nil, err
	}
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return all, nil
	}
	var out []Patient
	for _, pt := range all {
		if strings.Contains(strings.ToLower(pt.PatientName), q) {
			out = append(out, pt)
		}
	}
	return out, nil
}

// Get returns one patient by id.
func (p *Patients) Get(ctx context.Context, id string) (Patient, error) {
	docs, err := p.store.List(ctx, ColPatients, docstore.ListOptions{})
	if err != nil {
		return Patient{}, err
	}
	for _, doc := range docs {
		if doc.ID == id {
			return decodePatient(doc), nil
		}
	}
	return Patient{}, &docstore.NotFoundError{Collection: ColPatients, ID: id}
}

// Create registers a patient. Name and contact number are required.
func (p *Patients) Create(ctx context.Context, patient Patient) (Patient, error) {
	if strings.TrimSpace(patient.PatientName) == "" {
		return Patient{}, &MissingFieldError{Field: "patientName"}
	}
	if strings.TrimSpace(patient.Contact) == "" {
		return Patient{}, &MissingFieldError{Field: "contact"}
	}
	doc, err := p.store.Create(ctx, ColPatients, encodePatient(patient))
	if err != nil {
		return Patient{}, err
	}
	saved := decodePatient(doc)
	p.log.Info().Str("id", saved.ID).Str("name", saved.PatientName).Msg("patient registered")
	return saved, nil
}

// Update rewrites a patient's fields.
func (p *Patients) Update(ctx context.Context, patient Patient) (Patient, error) {
	doc, err := p.store.Update(ctx, ColPatients, patient.ID, encodePatient(patient))
	if err != nil {
		return Patient{}, err
	}
	return decodePatient(doc), nil
}

// Delete removes a patient document. Sub-records are not cascaded.
func (p *Patients) Delete(ctx context.Context, id string) error {
	return p.store.Delete(ctx, ColPatients, id)
}

// =============================================================================
// SUB-RECORDS
// =============================================================================

// Records lists one section of a patient's records, newest first.
func (p *Patients) Records(ctx context.Context, section, patientID string) ([]Record, error) {
	col, ok := recordCollections[section]
	if !ok {
		return nil, &MissingFieldError{Field: "section"}
	}
	docs, err := p.store.List(ctx, col,
		docstore.Equal("patientId", patientID).WithOrder("createdAt", true))
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(docs))
	for _, doc := range docs {
		out = append(out, decodeRecord(doc))
	}
	return out, nil
}

// AddRecord appends an entry to one of a patient's sections.
func (p *Patients) AddRecord(ctx context.Context, section string, record Record) (Record, error) {
	col, ok := recordCollections[section]
	if !ok {
		return Record{}, &MissingFieldError{Field: "section"}
	}
	if record.PatientID == "" {
		return Record{}, &MissingFieldError{Field: "patientId"}
	}
	doc, err := p.store.Create(ctx, col, encodeRecord(record))
	if err != nil {
		return Record{}, err
	}
	return decodeRecord(doc), nil
}

// UpdateRecord rewrites a record entry.
func (p *Patients) UpdateRecord(ctx context.Context, section string, record Record) (Record, error) {
	col, ok := recordCollections[section]
	if !ok {
		return Record{}, &MissingFieldError{Field: "section"}
	}
	doc, err := p.store.Update(ctx, col, record.ID, encodeRecord(record))
	if err != nil {
		return Record{}, err
	}
	return decodeRecord(doc), nil
}

// DeleteRecord removes a record entry.
func (p *Patients) DeleteRecord(ctx context.Context, section, id string) error {
	col, ok := recordCollections[section]
	if !ok {
		return &MissingFieldError{Field: "section"}
	}
	return p.store.Delete(ctx, col, id)
}
