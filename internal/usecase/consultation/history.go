package consultation

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/physiohub/clinic-assistant/internal/adapter/clinical"
	"github.com/physiohub/clinic-assistant/internal/domain/entities"
)

// HistoryStore keeps the in-memory note history per patient, refreshed
// from the records API. A refresh issues the four per-type list calls
// concurrently; a type whose fetch fails simply contributes no rows for
// that cycle, the other types still land.
type HistoryStore struct {
	api    clinical.RecordsAPI
	logger *zap.Logger

	mu       sync.Mutex
	patients map[string]*patientHistory
}

type patientHistory struct {
	notes []entities.NoteRecord
	// generation increments on every local delete so that a refresh
	// started before the delete cannot resurrect the removed note
	generation uint64
}

// NewHistoryStore creates a note history store
func NewHistoryStore(api clinical.RecordsAPI, logger *zap.Logger) *HistoryStore {
	return &HistoryStore{
		api:      api,
		logger:   logger,
		patients: make(map[string]*patientHistory),
	}
}

// Refresh reloads the patient's notes from the records API and returns the
// merged list sorted by date, newest first. If a delete completed while
// the fetches were in flight the fetched snapshot is stale and is
// discarded; the current local list is returned instead.
func (s *HistoryStore) Refresh(ctx context.Context, patientID string) ([]entities.NoteRecord, error) {
	startGeneration := s.generation(patientID)

	perType := make([][]entities.NoteRecord, len(entities.NoteTypes))
	var wg sync.WaitGroup
	for i, noteType := range entities.NoteTypes {
		wg.Add(1)
		go func(i int, noteType entities.NoteType) {
			defer wg.Done()
			records, err := s.api.ListNotes(ctx, noteType, patientID)
			if err != nil {
				if s.logger != nil {
					s.logger.Warn("⚠️ Note list fetch failed",
						zap.String("note_type", string(noteType)),
						zap.String("patient_id", patientID),
						zap.Error(err))
				}
				return
			}
			perType[i] = records
		}(i, noteType)
	}
	wg.Wait()

	var merged []entities.NoteRecord
	for _, records := range perType {
		merged = append(merged, records...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date.After(merged[j].Date)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.ensureLocked(patientID)
	if history.generation != startGeneration {
		if s.logger != nil {
			s.logger.Info("🔁 Discarding stale history refresh",
				zap.String("patient_id", patientID))
		}
		return snapshot(history.notes), nil
	}
	history.notes = merged
	return snapshot(history.notes), nil
}

// Notes returns a copy of the current local list for the patient
func (s *HistoryStore) Notes(patientID string) []entities.NoteRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	history, ok := s.patients[patientID]
	if !ok {
		return nil
	}
	return snapshot(history.notes)
}

// Edit updates one note's content in place via the records API. The caller
// refreshes afterwards to pick up the authoritative row.
func (s *HistoryStore) Edit(ctx context.Context, patientID string, noteType entities.NoteType, id, content string, date time.Time) error {
	err := s.api.UpdateNote(ctx, noteType, id, clinical.UpdateNoteRequest{
		PatientID: patientID,
		Date:      date,
		Content:   content,
	})
	if err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Info("✏️ Note updated",
			zap.String("note_type", string(noteType)),
			zap.String("note_id", id),
			zap.String("patient_id", patientID))
	}
	return nil
}

// Delete removes one note via the records API, then drops it from the
// local list and bumps the generation so in-flight refreshes are
// discarded rather than resurrecting the note.
func (s *HistoryStore) Delete(ctx context.Context, patientID string, noteType entities.NoteType, id string) error {
	if err := s.api.DeleteNote(ctx, noteType, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.ensureLocked(patientID)
	history.generation++
	kept := history.notes[:0]
	for _, note := range history.notes {
		if note.ID == id && note.Type == noteType {
			continue
		}
		kept = append(kept, note)
	}
	history.notes = kept

	if s.logger != nil {
		s.logger.Info("🗑️ Note deleted",
			zap.String("note_type", string(noteType)),
			zap.String("note_id", id),
			zap.String("patient_id", patientID))
	}
	return nil
}

func (s *HistoryStore) generation(patientID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked(patientID).generation
}

func (s *HistoryStore) ensureLocked(patientID string) *patientHistory {
	history, ok := s.patients[patientID]
	if !ok {
		history = &patientHistory{}
		s.patients[patientID] = history
	}
	return history
}

func snapshot(notes []entities.NoteRecord) []entities.NoteRecord {
	if notes == nil {
		return nil
	}
	out := make([]entities.NoteRecord, len(notes))
	copy(out, notes)
	return out
}
