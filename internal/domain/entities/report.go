package entities

// WriteKind distinguishes the two persistence paths of one save cycle
type WriteKind string

const (
	WriteKindSOAP       WriteKind = "soap"
	WriteKindAssessment WriteKind = "assessment"
)

// WriteFailure names one failed write so the user-facing notification can
// identify the affected note type or assessment category.
type WriteFailure struct {
	Kind    WriteKind `json:"kind"`
	Label   string    `json:"label"` // note type or category name
	Message string    `json:"message"`
}

// PersistenceReport collects the per-item outcomes of one settle-all
// persistence cycle. Individual failures never abort sibling writes.
type PersistenceReport struct {
	SOAPAttempted int `json:"soap_attempted"`
	SOAPSucceeded int `json:"soap_succeeded"`
	SOAPFailed    int `json:"soap_failed"`

	FormsAttempted int `json:"forms_attempted"`
	FormsSucceeded int `json:"forms_succeeded"`
	FormsFailed    int `json:"forms_failed"`

	Failures []WriteFailure `json:"failures,omitempty"`
}

// AnySOAPSucceeded gates the note-history refresh after a save cycle
func (r *PersistenceReport) AnySOAPSucceeded() bool {
	return r.SOAPSucceeded > 0
}

// TotalSucceeded returns the number of writes that landed
func (r *PersistenceReport) TotalSucceeded() int {
	return r.SOAPSucceeded + r.FormsSucceeded
}

// TotalFailed returns the number of writes that failed
func (r *PersistenceReport) TotalFailed() int {
	return r.SOAPFailed + r.FormsFailed
}
