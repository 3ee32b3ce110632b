package consultation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	goerrors "errors"

	"github.com/physiohub/clinic-assistant/errors"
	"github.com/physiohub/clinic-assistant/internal/audio"
	"github.com/physiohub/clinic-assistant/internal/domain/entities"
)

type fakeHandle struct{ closed bool }

func (h *fakeHandle) Close() error {
	h.closed = true
	return nil
}

type fakeDevice struct {
	acquireErr error
	handles    []*fakeHandle
}

func (d *fakeDevice) Acquire(context.Context) (audio.Handle, error) {
	if d.acquireErr != nil {
		return nil, d.acquireErr
	}
	h := &fakeHandle{}
	d.handles = append(d.handles, h)
	return h, nil
}

type fakeTranscriber struct {
	text string
	err  error
}

func (t *fakeTranscriber) Transcribe(context.Context, []byte, string) (string, error) {
	return t.text, t.err
}

type fakeExtractor struct {
	raw   string
	err   error
	calls int
}

func (e *fakeExtractor) ExtractClinicalRecord(context.Context, string) (string, error) {
	e.calls++
	return e.raw, e.err
}

type fakeDirectory struct {
	patients map[string]*entities.Patient
	doctors  map[int64]*entities.Doctor
}

func (d *fakeDirectory) Lookup(_ context.Context, patientID string) (*entities.Patient, error) {
	return d.patients[patientID], nil
}

func (d *fakeDirectory) Resolve(_ context.Context, doctorID int64) (*entities.Doctor, error) {
	return d.doctors[doctorID], nil
}

type fakeArchive struct {
	objects map[string]string
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{objects: make(map[string]string)}
}

func (a *fakeArchive) ArchiveAudio(_ context.Context, objectName string, data []byte, _ string) error {
	a.objects[objectName] = string(data)
	return nil
}

func (a *fakeArchive) ArchiveTranscript(_ context.Context, objectName, text string) error {
	a.objects[objectName] = text
	return nil
}

func (a *fakeArchive) ListFiles(_ context.Context, prefix string) ([]string, error) {
	var names []string
	for name := range a.objects {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (a *fakeArchive) GetFileURL(_ context.Context, objectName string, _ time.Duration) (string, error) {
	return "https://archive.local/" + objectName + "?sig=test", nil
}

func newTestService(api *fakeRecordsAPI, device *fakeDevice, transcriber *fakeTranscriber, extractor *fakeExtractor) *Service {
	directory := &fakeDirectory{
		patients: map[string]*entities.Patient{"p-1": {ID: "p-1", Name: "Jordan Lee"}},
		doctors:  map[int64]*entities.Doctor{7: {ID: 7, Name: "Dr. Rivera", IsActive: true}},
	}
	coordinator := NewCoordinator(api, nil)
	return NewService(
		audio.NewRecorder(device, nil),
		transcriber,
		extractor,
		NewParser(),
		coordinator,
		NewHistoryStore(api, nil),
		NewFormStore(coordinator, nil),
		directory,
		directory,
		nil,
		nil,
	)
}

func TestStartRecordingUnknownPatient(t *testing.T) {
	svc := newTestService(newFakeRecordsAPI(), &fakeDevice{}, &fakeTranscriber{}, &fakeExtractor{})

	_, err := svc.StartRecording(context.Background(), "missing", 7, "")
	var appErr errors.AppError
	if !goerrors.As(err, &appErr) || appErr.Code != errors.ErrorCode_NO_ACTIVE_PATIENT {
		t.Fatalf("expected NO_ACTIVE_PATIENT, got %v", err)
	}
}

func TestStartRecordingUnknownDoctor(t *testing.T) {
	svc := newTestService(newFakeRecordsAPI(), &fakeDevice{}, &fakeTranscriber{}, &fakeExtractor{})

	_, err := svc.StartRecording(context.Background(), "p-1", 99, "")
	var appErr errors.AppError
	if !goerrors.As(err, &appErr) || appErr.Code != errors.ErrorCode_DOCTOR_UNAVAILABLE {
		t.Fatalf("expected DOCTOR_UNAVAILABLE, got %v", err)
	}
}

func TestStartRecordingSeedsForms(t *testing.T) {
	svc := newTestService(newFakeRecordsAPI(), &fakeDevice{}, &fakeTranscriber{}, &fakeExtractor{})

	if _, err := svc.StartRecording(context.Background(), "p-1", 7, ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	if forms := svc.Forms("p-1"); len(forms) != len(entities.AssessmentFields) {
		t.Fatalf("expected seeded forms for all categories, got %d", len(forms))
	}
}

func TestSecondStartRejected(t *testing.T) {
	svc := newTestService(newFakeRecordsAPI(), &fakeDevice{}, &fakeTranscriber{}, &fakeExtractor{})
	ctx := context.Background()

	if _, err := svc.StartRecording(ctx, "p-1", 7, ""); err != nil {
		t.Fatalf("first start: %v", err)
	}
	_, err := svc.StartRecording(ctx, "p-1", 7, "")
	var appErr errors.AppError
	if !goerrors.As(err, &appErr) || appErr.Code != errors.ErrorCode_ALREADY_RECORDING {
		t.Fatalf("expected ALREADY_RECORDING, got %v", err)
	}
}

func TestStopWithoutStart(t *testing.T) {
	svc := newTestService(newFakeRecordsAPI(), &fakeDevice{}, &fakeTranscriber{}, &fakeExtractor{})

	_, err := svc.StopAndProcess(context.Background(), "p-1", 7)
	var appErr errors.AppError
	if !goerrors.As(err, &appErr) || appErr.Code != errors.ErrorCode_NOTHING_RECORDING {
		t.Fatalf("expected NOTHING_RECORDING, got %v", err)
	}
}

func TestStopEmptyRecordingReleasesDevice(t *testing.T) {
	device := &fakeDevice{}
	svc := newTestService(newFakeRecordsAPI(), device, &fakeTranscriber{}, &fakeExtractor{})
	ctx := context.Background()

	if _, err := svc.StartRecording(ctx, "p-1", 7, ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	_, err := svc.StopAndProcess(ctx, "p-1", 7)
	var appErr errors.AppError
	if !goerrors.As(err, &appErr) || appErr.Code != errors.ErrorCode_EMPTY_RECORDING {
		t.Fatalf("expected EMPTY_RECORDING, got %v", err)
	}
	if len(device.handles) != 1 || !device.handles[0].closed {
		t.Fatal("device must be released even on the empty-recording path")
	}

	// A new session can start immediately afterwards.
	if _, err := svc.StartRecording(ctx, "p-1", 7, ""); err != nil {
		t.Fatalf("restart after empty recording: %v", err)
	}
}

func TestNoSpeechCompletesWithoutExtraction(t *testing.T) {
	extractor := &fakeExtractor{}
	svc := newTestService(newFakeRecordsAPI(), &fakeDevice{}, &fakeTranscriber{text: "   "}, extractor)
	ctx := context.Background()

	if _, err := svc.StartRecording(ctx, "p-1", 7, ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := svc.AppendAudio("p-1", []byte{1, 2, 3}); err != nil {
		t.Fatalf("append: %v", err)
	}

	result, err := svc.StopAndProcess(ctx, "p-1", 7)
	if err != nil {
		t.Fatalf("no-speech stop must succeed: %v", err)
	}
	if !result.NoSpeech {
		t.Fatal("expected NoSpeech outcome")
	}
	if extractor.calls != 0 {
		t.Fatal("no extraction call should be made for an empty transcript")
	}
}

func TestTranscriptionFailureAbortsPipeline(t *testing.T) {
	api := newFakeRecordsAPI()
	svc := newTestService(api, &fakeDevice{}, &fakeTranscriber{err: fmt.Errorf("upstream 500")}, &fakeExtractor{})
	ctx := context.Background()

	if _, err := svc.StartRecording(ctx, "p-1", 7, ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := svc.AppendAudio("p-1", []byte{1}); err != nil {
		t.Fatalf("append: %v", err)
	}

	_, err := svc.StopAndProcess(ctx, "p-1", 7)
	var appErr errors.AppError
	if !goerrors.As(err, &appErr) || appErr.Code != errors.ErrorCode_TRANSCRIPTION_FAILED {
		t.Fatalf("expected TRANSCRIPTION_FAILED, got %v", err)
	}
	if len(api.notes) != 0 || len(api.assessments) != 0 {
		t.Fatal("no write may be issued after a transcription failure")
	}
}

func TestMalformedExtractionSkipsPersistence(t *testing.T) {
	api := newFakeRecordsAPI()
	svc := newTestService(api, &fakeDevice{}, &fakeTranscriber{text: "patient reports pain"}, &fakeExtractor{raw: "sorry, no JSON today"})
	ctx := context.Background()

	if _, err := svc.StartRecording(ctx, "p-1", 7, ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := svc.AppendAudio("p-1", []byte{1}); err != nil {
		t.Fatalf("append: %v", err)
	}

	_, err := svc.StopAndProcess(ctx, "p-1", 7)
	var appErr errors.AppError
	if !goerrors.As(err, &appErr) || appErr.Code != errors.ErrorCode_MALFORMED_EXTRACTION {
		t.Fatalf("expected MALFORMED_EXTRACTION, got %v", err)
	}
	if len(api.notes) != 0 || len(api.assessments) != 0 {
		t.Fatal("persistence must be skipped entirely on malformed extraction")
	}
}

func TestFullCaptureCycle(t *testing.T) {
	api := newFakeRecordsAPI()
	raw := `{
		"soap": {"subjective": "knee pain after running", "plan": "rest and ice"},
		"custom": {"pain": {"painsite": "left knee", "painsevirity": 12, "painnature": "sharp"}}
	}`
	svc := newTestService(api, &fakeDevice{}, &fakeTranscriber{text: "my left knee hurts"}, &fakeExtractor{raw: raw})
	ctx := context.Background()

	if _, err := svc.StartRecording(ctx, "p-1", 7, "audio/webm"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := svc.AppendAudio("p-1", []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("append: %v", err)
	}

	result, err := svc.StopAndProcess(ctx, "p-1", 7)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}

	if result.Report == nil || result.Report.SOAPSucceeded != 2 || result.Report.FormsSucceeded != 1 {
		t.Fatalf("unexpected report: %+v", result.Report)
	}

	payload := api.assessments[entities.CategoryPain]
	if payload["painsevirity"] != 10 {
		t.Fatalf("severity should be clamped to 10, got %v", payload["painsevirity"])
	}

	// The extracted pain fields also accumulated into the form state.
	form := svc.Forms("p-1")[entities.CategoryPain]
	if form["painsite"] != "left knee" || form["painnature"] != "sharp" {
		t.Fatalf("form state not updated: %v", form)
	}
}

func TestPartialNoteFailureStillRefreshesHistory(t *testing.T) {
	api := newFakeRecordsAPI()
	api.failCreateNote[entities.NoteTypeObjective] = fmt.Errorf("boom")
	api.listResults[entities.NoteTypeSubjective] = []entities.NoteRecord{
		{ID: "n-1", Type: entities.NoteTypeSubjective, Date: time.Now(), Content: "reports pain"},
	}
	raw := `{
		"soap": {"subjective": "reports pain", "objective": "limited ROM", "plan": "rest"},
		"custom": {}
	}`
	svc := newTestService(api, &fakeDevice{}, &fakeTranscriber{text: "my knee hurts"}, &fakeExtractor{raw: raw})
	ctx := context.Background()

	if _, err := svc.StartRecording(ctx, "p-1", 7, ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := svc.AppendAudio("p-1", []byte{1}); err != nil {
		t.Fatalf("append: %v", err)
	}

	result, err := svc.StopAndProcess(ctx, "p-1", 7)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}

	if result.Report.SOAPAttempted != 3 || result.Report.SOAPSucceeded != 2 || result.Report.SOAPFailed != 1 {
		t.Fatalf("soap counts = %d/%d/%d",
			result.Report.SOAPAttempted, result.Report.SOAPSucceeded, result.Report.SOAPFailed)
	}
	// The surviving writes still gate a refresh.
	if len(result.History) != 1 || result.History[0].ID != "n-1" {
		t.Fatalf("history should be refreshed after partial failure, got %v", result.History)
	}
}

func TestArtifactsListArchivedObjects(t *testing.T) {
	api := newFakeRecordsAPI()
	raw := `{"soap": {"plan": "rest"}, "custom": {}}`
	svc := newTestService(api, &fakeDevice{}, &fakeTranscriber{text: "take it easy this week"}, &fakeExtractor{raw: raw})
	archive := newFakeArchive()
	svc.archive = archive
	ctx := context.Background()

	if _, err := svc.StartRecording(ctx, "p-1", 7, "audio/webm"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := svc.AppendAudio("p-1", []byte{1, 2}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := svc.StopAndProcess(ctx, "p-1", 7); err != nil {
		t.Fatalf("stop: %v", err)
	}

	artifacts, err := svc.Artifacts(ctx, "p-1")
	if err != nil {
		t.Fatalf("artifacts: %v", err)
	}
	if len(artifacts) != 2 {
		t.Fatalf("expected audio and transcript artifacts, got %v", artifacts)
	}
	for _, artifact := range artifacts {
		if !strings.HasPrefix(artifact.Name, "consultations/p-1/") {
			t.Fatalf("artifact outside patient prefix: %s", artifact.Name)
		}
		if !strings.HasPrefix(artifact.URL, "https://archive.local/") {
			t.Fatalf("expected presigned URL, got %s", artifact.URL)
		}
	}
}

func TestArtifactsWithoutArchiveStore(t *testing.T) {
	svc := newTestService(newFakeRecordsAPI(), &fakeDevice{}, &fakeTranscriber{}, &fakeExtractor{})

	artifacts, err := svc.Artifacts(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("artifacts: %v", err)
	}
	if len(artifacts) != 0 {
		t.Fatalf("expected no artifacts when archival is disabled, got %v", artifacts)
	}
}
