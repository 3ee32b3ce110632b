package consultation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/physiohub/clinic-assistant/errors"
	"github.com/physiohub/clinic-assistant/internal/audio"
	"github.com/physiohub/clinic-assistant/internal/domain/entities"
)

// PatientDirectory resolves patient identity. A nil patient with a nil
// error means the patient is unknown.
type PatientDirectory interface {
	Lookup(ctx context.Context, patientID string) (*entities.Patient, error)
}

// DoctorDirectory resolves doctor identity per operation; identity is
// never cached across calls. A nil doctor with a nil error means unknown.
type DoctorDirectory interface {
	Resolve(ctx context.Context, doctorID int64) (*entities.Doctor, error)
}

// Transcriber turns an audio blob into plain text. An empty string with a
// nil error means the service heard no speech.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// Extractor turns a transcript into the raw structured-extraction JSON
type Extractor interface {
	ExtractClinicalRecord(ctx context.Context, transcript string) (string, error)
}

// ArchiveStore persists raw consultation artifacts (audio blobs and
// transcripts) for audit. Archival is best effort and never blocks the
// clinical pipeline; archived objects are read back through presigned URLs
// only.
type ArchiveStore interface {
	ArchiveAudio(ctx context.Context, objectName string, data []byte, contentType string) error
	ArchiveTranscript(ctx context.Context, objectName, text string) error
	ListFiles(ctx context.Context, prefix string) ([]string, error)
	GetFileURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// Artifact is one archived consultation object with a time-limited
// download URL
type Artifact struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Result is the outcome of one completed capture cycle
type Result struct {
	SessionID  string                      `json:"session_id"`
	Transcript string                      `json:"transcript"`
	NoSpeech   bool                        `json:"no_speech"`
	Report     *entities.PersistenceReport `json:"report,omitempty"`
	History    []entities.NoteRecord       `json:"history,omitempty"`
}

// Service orchestrates the consultation capture pipeline: record, stop,
// transcribe, extract, sanitize, persist, refresh.
type Service struct {
	recorder    *audio.Recorder
	transcriber Transcriber
	extractor   Extractor
	parser      *Parser
	coordinator *Coordinator
	history     *HistoryStore
	forms       *FormStore
	patients    PatientDirectory
	doctors     DoctorDirectory
	archive     ArchiveStore
	logger      *zap.Logger
}

// NewService creates the consultation service
func NewService(
	recorder *audio.Recorder,
	transcriber Transcriber,
	extractor Extractor,
	parser *Parser,
	coordinator *Coordinator,
	history *HistoryStore,
	forms *FormStore,
	patients PatientDirectory,
	doctors DoctorDirectory,
	archive ArchiveStore,
	logger *zap.Logger,
) *Service {
	return &Service{
		recorder:    recorder,
		transcriber: transcriber,
		extractor:   extractor,
		parser:      parser,
		coordinator: coordinator,
		history:     history,
		forms:       forms,
		patients:    patients,
		doctors:     doctors,
		archive:     archive,
		logger:      logger,
	}
}

// resolveIdentity re-reads both identities. Neither is cached between
// operations, so a patient switch mid-session is always picked up.
func (s *Service) resolveIdentity(ctx context.Context, patientID string, doctorID int64) (*entities.Patient, *entities.Doctor, error) {
	patient, err := s.patients.Lookup(ctx, patientID)
	if err != nil {
		return nil, nil, errors.ErrInternal(err)
	}
	if patient == nil {
		return nil, nil, errors.ErrNoActivePatient(patientID)
	}

	doctor, err := s.doctors.Resolve(ctx, doctorID)
	if err != nil {
		return nil, nil, errors.ErrInternal(err)
	}
	if doctor == nil {
		return nil, nil, errors.ErrDoctorUnavailable()
	}
	return patient, doctor, nil
}

// StartRecording opens a recording session for the patient. Forms are
// seeded empty on first selection of the patient.
func (s *Service) StartRecording(ctx context.Context, patientID string, doctorID int64, encoding string) (string, error) {
	if _, _, err := s.resolveIdentity(ctx, patientID, doctorID); err != nil {
		return "", err
	}

	s.forms.EnsureSeeded(patientID)
	return s.recorder.Start(ctx, patientID, encoding)
}

// AppendAudio buffers one captured chunk into the open session
func (s *Service) AppendAudio(patientID string, chunk []byte) error {
	return s.recorder.Append(patientID, chunk)
}

// StopAndProcess finalizes the recording and runs the full pipeline. A
// transcript with no speech completes successfully without an extraction
// call. Transcription and extraction failures abort before any write;
// persistence failures settle per item and never abort siblings.
func (s *Service) StopAndProcess(ctx context.Context, patientID string, doctorID int64) (*Result, error) {
	_, doctor, err := s.resolveIdentity(ctx, patientID, doctorID)
	if err != nil {
		return nil, err
	}

	clip, err := s.recorder.Stop(ctx, patientID)
	if err != nil {
		return nil, err
	}

	s.archiveAudio(ctx, clip)

	transcript, err := s.transcriber.Transcribe(ctx, clip.Data, clip.Encoding)
	if err != nil {
		return nil, errors.ErrTranscriptionService(err)
	}
	transcript = strings.TrimSpace(transcript)

	result := &Result{SessionID: clip.SessionID, Transcript: transcript}
	if transcript == "" {
		if s.logger != nil {
			s.logger.Info("🤫 No speech detected, nothing to extract",
				zap.String("session_id", clip.SessionID),
				zap.String("patient_id", patientID))
		}
		result.NoSpeech = true
		return result, nil
	}

	s.archiveTranscript(ctx, clip, transcript)

	raw, err := s.extractor.ExtractClinicalRecord(ctx, transcript)
	if err != nil {
		return result, errors.ErrExtractionService(err)
	}

	extraction, err := s.parser.Parse(raw)
	if err != nil {
		return result, errors.ErrMalformedExtraction(err)
	}
	sanitized := s.parser.Sanitize(extraction)

	for category, fields := range sanitized.Forms {
		s.forms.ApplyExtraction(patientID, category, fields)
	}

	report, err := s.coordinator.Persist(ctx, sanitized, patientID, doctor.ID)
	if err != nil {
		return result, err
	}
	result.Report = report

	if report.AnySOAPSucceeded() {
		notes, err := s.history.Refresh(ctx, patientID)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("⚠️ History refresh after save failed",
					zap.String("patient_id", patientID),
					zap.Error(err))
			}
			notes = s.history.Notes(patientID)
		}
		result.History = notes
	}
	return result, nil
}

// AbortRecording discards the patient's open session without processing
func (s *Service) AbortRecording(patientID string) {
	s.recorder.Abort(patientID)
}

// Artifacts lists the patient's archived consultation objects with
// presigned download URLs. Returns an empty list when archival is disabled.
func (s *Service) Artifacts(ctx context.Context, patientID string) ([]Artifact, error) {
	if s.archive == nil {
		return []Artifact{}, nil
	}

	prefix := fmt.Sprintf("consultations/%s/", patientID)
	names, err := s.archive.ListFiles(ctx, prefix)
	if err != nil {
		return nil, errors.ErrInternal(err)
	}

	artifacts := make([]Artifact, 0, len(names))
	for _, name := range names {
		url, err := s.archive.GetFileURL(ctx, name, artifactURLExpiry)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("⚠️ Presigned URL generation failed",
					zap.String("object", name),
					zap.Error(err))
			}
			continue
		}
		artifacts = append(artifacts, Artifact{Name: name, URL: url})
	}
	return artifacts, nil
}

// History reloads and returns the patient's note history
func (s *Service) History(ctx context.Context, patientID string) ([]entities.NoteRecord, error) {
	return s.history.Refresh(ctx, patientID)
}

// EditNote updates one note and returns the refreshed history
func (s *Service) EditNote(ctx context.Context, patientID string, noteType entities.NoteType, id, content string, date time.Time) ([]entities.NoteRecord, error) {
	if err := s.history.Edit(ctx, patientID, noteType, id, content, date); err != nil {
		return nil, err
	}
	return s.history.Refresh(ctx, patientID)
}

// DeleteNote removes one note; the local list is updated without a refresh
func (s *Service) DeleteNote(ctx context.Context, patientID string, noteType entities.NoteType, id string) ([]entities.NoteRecord, error) {
	if err := s.history.Delete(ctx, patientID, noteType, id); err != nil {
		return nil, err
	}
	return s.history.Notes(patientID), nil
}

// Forms returns the patient's current assessment form state
func (s *Service) Forms(patientID string) map[entities.AssessmentCategory]map[string]any {
	s.forms.EnsureSeeded(patientID)
	return s.forms.Snapshot(patientID)
}

// SaveForms submits the filled assessment categories as fresh submissions
func (s *Service) SaveForms(ctx context.Context, patientID string, doctorID int64) (*entities.PersistenceReport, error) {
	_, doctor, err := s.resolveIdentity(ctx, patientID, doctorID)
	if err != nil {
		return nil, err
	}
	return s.forms.SaveAll(ctx, patientID, doctor.ID)
}

// archiveAudio uploads the raw clip with retry. Failures are logged only.
func (s *Service) archiveAudio(ctx context.Context, clip *audio.Clip) {
	if s.archive == nil {
		return
	}
	objectName := archiveObjectName(clip, extensionFor(clip.Encoding))
	operation := func() error {
		return s.archive.ArchiveAudio(ctx, objectName, clip.Data, clip.Encoding)
	}
	if err := backoff.Retry(operation, backoff.WithContext(archiveBackoff(), ctx)); err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Audio archive upload failed",
				zap.String("object", objectName),
				zap.Error(err))
		}
	}
}

// archiveTranscript uploads the transcript text with retry
func (s *Service) archiveTranscript(ctx context.Context, clip *audio.Clip, transcript string) {
	if s.archive == nil {
		return
	}
	objectName := archiveObjectName(clip, "txt")
	operation := func() error {
		return s.archive.ArchiveTranscript(ctx, objectName, transcript)
	}
	if err := backoff.Retry(operation, backoff.WithContext(archiveBackoff(), ctx)); err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Transcript archive upload failed",
				zap.String("object", objectName),
				zap.Error(err))
		}
	}
}

const artifactURLExpiry = 15 * time.Minute

func archiveBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = 15 * time.Second
	return bo
}

func archiveObjectName(clip *audio.Clip, ext string) string {
	return fmt.Sprintf("consultations/%s/%s.%s", clip.PatientID, clip.SessionID, ext)
}

func extensionFor(encoding string) string {
	switch {
	case strings.Contains(encoding, "wav"):
		return "wav"
	case strings.Contains(encoding, "mp3"), strings.Contains(encoding, "mpeg"):
		return "mp3"
	case strings.Contains(encoding, "ogg"):
		return "ogg"
	default:
		return "webm"
	}
}
