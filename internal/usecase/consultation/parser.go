package consultation

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/physiohub/clinic-assistant/internal/domain/entities"
)

// Parser handles parsing and sanitization of extraction-service responses.
// Model output is wholly untrusted: unknown keys are dropped, types are
// coerced and ranges clamped before anything reaches a persistence call.
type Parser struct{}

// NewParser creates a new Parser instance
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses the JSON response from the extraction service into an
// ExtractionResult. Fails when the content does not parse or the top-level
// shape is not an object; the caller must skip persistence entirely.
func (p *Parser) Parse(raw string) (*entities.ExtractionResult, error) {
	raw = extractJSON(raw)

	if !strings.HasPrefix(raw, "{") {
		return nil, fmt.Errorf("top-level shape is not a JSON object")
	}

	var result entities.ExtractionResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return &result, nil
}

// Sanitize applies the field-sanitization pass: trimmed non-empty SOAP
// content only; per category the whitelisted non-null fields, with pain
// severity clamped to an integer in [1,10] and chief-complaint symptom
// flags coerced to strict booleans. Absent fields stay absent.
func (p *Parser) Sanitize(result *entities.ExtractionResult) *entities.SanitizedExtraction {
	out := &entities.SanitizedExtraction{
		SOAP:  make(map[entities.NoteType]string),
		Forms: make(map[entities.AssessmentCategory]map[string]any),
	}
	if result == nil {
		return out
	}

	for _, noteType := range entities.NoteTypes {
		ptr := result.SOAP.Field(noteType)
		if ptr == nil {
			continue
		}
		if content := strings.TrimSpace(*ptr); content != "" {
			out.SOAP[noteType] = content
		}
	}

	for name, fields := range result.Custom {
		category := entities.AssessmentCategory(strings.ToLower(name))
		allowed, ok := entities.AssessmentFields[category]
		if !ok {
			continue
		}

		clean := make(map[string]any)
		for _, key := range allowed {
			value, present := fields[key]
			if !present || value == nil {
				continue
			}

			switch {
			case category == entities.CategoryPain && key == entities.PainSeverityField:
				if severity, ok := clampSeverity(value); ok {
					clean[key] = severity
				}
			case category == entities.CategoryChiefComplaints && entities.ChiefComplaintFlags[key]:
				if flag, ok := coerceBool(value); ok {
					clean[key] = flag
				}
			default:
				if v, ok := sanitizeScalar(value); ok {
					clean[key] = v
				}
			}
		}

		if len(clean) > 0 {
			out.Forms[category] = clean
		}
	}

	return out
}

// clampSeverity rounds the value to an integer and clamps it to [1,10].
// Non-numeric values are dropped entirely.
func clampSeverity(value any) (int, bool) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	severity := int(math.Round(f))
	if severity < 1 {
		severity = 1
	}
	if severity > 10 {
		severity = 10
	}
	return severity, true
}

// coerceBool converts the value to a strict boolean or drops it
func coerceBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(strings.ToLower(v)))
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		return false, false
	}
}

// sanitizeScalar passes strings (trimmed, non-empty), booleans and numbers
// through; nested objects and arrays are dropped as out-of-schema.
func sanitizeScalar(value any) (any, bool) {
	switch v := value.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil, false
		}
		return trimmed, true
	case bool:
		return v, true
	case float64:
		return v, true
	default:
		return nil, false
	}
}

// extractJSON strips markdown code fences the model might wrap the object
// in and drops trailing prose after the closing brace. A payload that does
// not open with '{' is returned as is so Parse rejects it; slicing from the
// first brace would wrongly rescue top-level arrays.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	if !strings.HasPrefix(raw, "{") {
		return raw
	}
	if end := strings.LastIndex(raw, "}"); end >= 0 {
		return raw[:end+1]
	}
	return raw
}
