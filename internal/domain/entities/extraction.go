package entities

// SOAPExtraction carries the four optional SOAP fields of one extraction.
// Absent fields stay nil and are never invented.
type SOAPExtraction struct {
	Subjective *string `json:"subjective"`
	Objective  *string `json:"objective"`
	Assessment *string `json:"assessment"`
	Plan       *string `json:"plan"`
}

// Field returns the pointer for the given note type
func (s *SOAPExtraction) Field(t NoteType) *string {
	switch t {
	case NoteTypeSubjective:
		return s.Subjective
	case NoteTypeObjective:
		return s.Objective
	case NoteTypeAssessment:
		return s.Assessment
	case NoteTypePlan:
		return s.Plan
	}
	return nil
}

// ExtractionResult is the raw typed shape of the model's JSON response.
// Custom values are still untrusted at this point: string | bool | number |
// null per field, unknown keys possible. Sanitization happens before any
// persistence call.
type ExtractionResult struct {
	SOAP   SOAPExtraction            `json:"soap"`
	Custom map[string]map[string]any `json:"custom"`
}

// SanitizedExtraction is the persistable view of an extraction after the
// field-sanitization pass: trimmed non-empty SOAP content only, and per
// category the whitelisted non-null fields with severity clamped and
// symptom flags coerced to strict booleans.
type SanitizedExtraction struct {
	SOAP  map[NoteType]string
	Forms map[AssessmentCategory]map[string]any
}

// Empty reports whether neither section holds persistable content
func (s *SanitizedExtraction) Empty() bool {
	return len(s.SOAP) == 0 && len(s.Forms) == 0
}
