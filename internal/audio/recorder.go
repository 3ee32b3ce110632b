package audio

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/physiohub/clinic-assistant/errors"
)

// Clip is the finalized result of one recording session: all buffered
// chunks joined into a single contiguous blob.
type Clip struct {
	SessionID string
	PatientID string
	Encoding  string
	Data      []byte
	StartedAt time.Time
	StoppedAt time.Time
}

// session is the ephemeral recording state. It is owned exclusively by the
// Recorder and destroyed on stop or error.
type session struct {
	id        string
	patientID string
	encoding  string
	handle    Handle
	buf       bytes.Buffer
	startedAt time.Time
}

// Recorder buffers microphone input into a single blob per session. At most
// one session may be open at a time; the device is acquired exactly once on
// start and released exactly once on every exit path.
type Recorder struct {
	device Device
	logger *zap.Logger

	mu     sync.Mutex
	active *session
}

// NewRecorder creates a recorder over the given capture device
func NewRecorder(device Device, logger *zap.Logger) *Recorder {
	return &Recorder{device: device, logger: logger}
}

// Start acquires the capture device and opens a session for the patient.
// Returns AlreadyRecording while another session is open and
// DeviceUnavailable when acquisition fails.
func (r *Recorder) Start(ctx context.Context, patientID, encoding string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil {
		return "", errors.ErrAlreadyRecording()
	}

	handle, err := r.device.Acquire(ctx)
	if err != nil {
		return "", errors.ErrDeviceUnavailable(err)
	}

	if encoding == "" {
		encoding = "audio/webm"
	}

	r.active = &session{
		id:        uuid.New().String(),
		patientID: patientID,
		encoding:  encoding,
		handle:    handle,
		startedAt: time.Now(),
	}

	if r.logger != nil {
		r.logger.Info("🎙️ Recording session started",
			zap.String("session_id", r.active.id),
			zap.String("patient_id", patientID),
			zap.String("encoding", encoding),
		)
	}
	return r.active.id, nil
}

// Append buffers one chunk of captured audio into the open session
func (r *Recorder) Append(patientID string, chunk []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil || r.active.patientID != patientID {
		return errors.ErrNothingRecording()
	}

	r.active.buf.Write(chunk)
	return nil
}

// Stop finalizes the buffered chunks into one blob and releases the device.
// The device is released before any error is returned, so no stream leaks
// on the EmptyRecording path either.
func (r *Recorder) Stop(ctx context.Context, patientID string) (*Clip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil || r.active.patientID != patientID {
		return nil, errors.ErrNothingRecording()
	}

	sess := r.active
	r.active = nil

	// Release on every exit path.
	if err := sess.handle.Close(); err != nil && r.logger != nil {
		r.logger.Warn("⚠️ Failed to release capture device",
			zap.String("session_id", sess.id),
			zap.Error(err),
		)
	}

	if sess.buf.Len() == 0 {
		if r.logger != nil {
			r.logger.Warn("⚠️ Recording finished with zero audio bytes",
				zap.String("session_id", sess.id),
				zap.String("patient_id", sess.patientID),
			)
		}
		return nil, errors.ErrEmptyRecording()
	}

	clip := &Clip{
		SessionID: sess.id,
		PatientID: sess.patientID,
		Encoding:  sess.encoding,
		Data:      sess.buf.Bytes(),
		StartedAt: sess.startedAt,
		StoppedAt: time.Now(),
	}

	if r.logger != nil {
		r.logger.Info("✅ Recording session finalized",
			zap.String("session_id", clip.SessionID),
			zap.String("patient_id", clip.PatientID),
			zap.Int("bytes", len(clip.Data)),
		)
	}
	return clip, nil
}

// Abort discards the open session for the patient, releasing the device
// without producing a clip. A no-op when nothing is recording or when the
// open session belongs to a different patient.
func (r *Recorder) Abort(patientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil || r.active.patientID != patientID {
		return
	}
	r.discardLocked()
}

// Close discards whatever session is open regardless of patient. Used on
// shutdown so the device is never left acquired.
func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil {
		return
	}
	r.discardLocked()
}

func (r *Recorder) discardLocked() {
	sess := r.active
	r.active = nil
	_ = sess.handle.Close()

	if r.logger != nil {
		r.logger.Info("🛑 Recording session aborted",
			zap.String("session_id", sess.id),
			zap.String("patient_id", sess.patientID),
		)
	}
}

// Recording reports whether a session is currently open
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}
