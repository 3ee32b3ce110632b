package consultation

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/physiohub/clinic-assistant/errors"
	"github.com/physiohub/clinic-assistant/internal/adapter/clinical"
	"github.com/physiohub/clinic-assistant/internal/domain/entities"
)

// defaultNoteRole tags records created from a consultation capture
const defaultNoteRole = "doctor"

// Coordinator fans a sanitized extraction out to the records API: one
// create per populated SOAP section and one per populated assessment
// category, all dispatched concurrently. Every write settles on its own;
// a failed sibling never aborts the rest.
type Coordinator struct {
	api    clinical.RecordsAPI
	logger *zap.Logger
	now    func() time.Time
}

// NewCoordinator creates a persistence coordinator
func NewCoordinator(api clinical.RecordsAPI, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		api:    api,
		logger: logger,
		now:    time.Now,
	}
}

type writeOutcome struct {
	kind  entities.WriteKind
	label string
	err   error
}

// Persist dispatches all writes for one save cycle and returns the settled
// report. Returns NothingToSave without issuing any write when the
// extraction holds no persistable content.
func (c *Coordinator) Persist(ctx context.Context, sanitized *entities.SanitizedExtraction, patientID string, doctorID int64) (*entities.PersistenceReport, error) {
	if sanitized == nil || sanitized.Empty() {
		return nil, errors.ErrNothingToSave()
	}

	date := c.now()
	total := len(sanitized.SOAP) + len(sanitized.Forms)
	outcomes := make(chan writeOutcome, total)

	var wg sync.WaitGroup
	for noteType, content := range sanitized.SOAP {
		wg.Add(1)
		go func(noteType entities.NoteType, content string) {
			defer wg.Done()
			_, err := c.api.CreateNote(ctx, noteType, clinical.CreateNoteRequest{
				PatientID: patientID,
				Content:   content,
				DoctorID:  doctorID,
				Date:      date,
				Role:      defaultNoteRole,
			})
			outcomes <- writeOutcome{kind: entities.WriteKindSOAP, label: string(noteType), err: err}
		}(noteType, content)
	}

	for category, fields := range sanitized.Forms {
		wg.Add(1)
		go func(category entities.AssessmentCategory, fields map[string]any) {
			defer wg.Done()
			payload := make(map[string]any, len(fields)+4)
			for k, v := range fields {
				payload[k] = v
			}
			payload["patientId"] = patientID
			payload["doctorId"] = doctorID
			payload["date"] = date.Format(time.RFC3339)
			payload["role"] = defaultNoteRole

			_, err := c.api.CreateAssessment(ctx, category, payload)
			outcomes <- writeOutcome{kind: entities.WriteKindAssessment, label: string(category), err: err}
		}(category, fields)
	}

	wg.Wait()
	close(outcomes)

	report := &entities.PersistenceReport{
		SOAPAttempted:  len(sanitized.SOAP),
		FormsAttempted: len(sanitized.Forms),
	}
	for outcome := range outcomes {
		if outcome.err == nil {
			if outcome.kind == entities.WriteKindSOAP {
				report.SOAPSucceeded++
			} else {
				report.FormsSucceeded++
			}
			continue
		}

		if outcome.kind == entities.WriteKindSOAP {
			report.SOAPFailed++
		} else {
			report.FormsFailed++
		}
		report.Failures = append(report.Failures, entities.WriteFailure{
			Kind:    outcome.kind,
			Label:   outcome.label,
			Message: outcome.err.Error(),
		})
		if c.logger != nil {
			c.logger.Warn("⚠️ Record write failed",
				zap.String("kind", string(outcome.kind)),
				zap.String("label", outcome.label),
				zap.String("patient_id", patientID),
				zap.Error(outcome.err))
		}
	}

	if c.logger != nil {
		c.logger.Info("💾 Save cycle settled",
			zap.String("patient_id", patientID),
			zap.Int("succeeded", report.TotalSucceeded()),
			zap.Int("failed", report.TotalFailed()))
	}
	return report, nil
}
