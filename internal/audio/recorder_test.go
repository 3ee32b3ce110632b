package audio

import (
	"context"
	"testing"

	goerrors "errors"

	"github.com/physiohub/clinic-assistant/errors"
)

func assertCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	var appErr errors.AppError
	if !goerrors.As(err, &appErr) || appErr.Code != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestStartAcquiresSlot(t *testing.T) {
	recorder := NewRecorder(NewCaptureSlot(), nil)

	sessionID, err := recorder.Start(context.Background(), "p-1", "")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if sessionID == "" {
		t.Fatal("expected a session id")
	}
	if !recorder.Recording() {
		t.Fatal("recorder should report an open session")
	}
}

func TestSecondStartReturnsAlreadyRecording(t *testing.T) {
	recorder := NewRecorder(NewCaptureSlot(), nil)
	ctx := context.Background()

	if _, err := recorder.Start(ctx, "p-1", ""); err != nil {
		t.Fatalf("first start: %v", err)
	}
	_, err := recorder.Start(ctx, "p-1", "")
	assertCode(t, err, errors.ErrorCode_ALREADY_RECORDING)
}

func TestAppendWithoutSession(t *testing.T) {
	recorder := NewRecorder(NewCaptureSlot(), nil)

	err := recorder.Append("p-1", []byte{1})
	assertCode(t, err, errors.ErrorCode_NOTHING_RECORDING)
}

func TestStopWithoutSession(t *testing.T) {
	recorder := NewRecorder(NewCaptureSlot(), nil)

	_, err := recorder.Stop(context.Background(), "p-1")
	assertCode(t, err, errors.ErrorCode_NOTHING_RECORDING)
}

func TestStopJoinsChunksInOrder(t *testing.T) {
	recorder := NewRecorder(NewCaptureSlot(), nil)
	ctx := context.Background()

	sessionID, err := recorder.Start(ctx, "p-1", "audio/wav")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, chunk := range [][]byte{{1, 2}, {3}, {4, 5, 6}} {
		if err := recorder.Append("p-1", chunk); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	clip, err := recorder.Stop(ctx, "p-1")
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if clip.SessionID != sessionID {
		t.Fatalf("session id mismatch: %s vs %s", clip.SessionID, sessionID)
	}
	if clip.Encoding != "audio/wav" {
		t.Fatalf("encoding = %s", clip.Encoding)
	}
	want := []byte{1, 2, 3, 4, 5, 6}
	if string(clip.Data) != string(want) {
		t.Fatalf("data = %v, want %v", clip.Data, want)
	}
}

func TestStopEmptyReleasesSlot(t *testing.T) {
	slot := NewCaptureSlot()
	recorder := NewRecorder(slot, nil)
	ctx := context.Background()

	if _, err := recorder.Start(ctx, "p-1", ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	_, err := recorder.Stop(ctx, "p-1")
	assertCode(t, err, errors.ErrorCode_EMPTY_RECORDING)

	// The slot must be free again.
	handle, err := slot.Acquire(ctx)
	if err != nil {
		t.Fatalf("slot still held after empty stop: %v", err)
	}
	_ = handle.Close()
}

func TestStopForDifferentPatient(t *testing.T) {
	recorder := NewRecorder(NewCaptureSlot(), nil)
	ctx := context.Background()

	if _, err := recorder.Start(ctx, "p-1", ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	_, err := recorder.Stop(ctx, "p-2")
	assertCode(t, err, errors.ErrorCode_NOTHING_RECORDING)
}

func TestAbortReleasesSlot(t *testing.T) {
	slot := NewCaptureSlot()
	recorder := NewRecorder(slot, nil)
	ctx := context.Background()

	if _, err := recorder.Start(ctx, "p-1", ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := recorder.Append("p-1", []byte{1, 2}); err != nil {
		t.Fatalf("append: %v", err)
	}
	recorder.Abort("p-1")

	if recorder.Recording() {
		t.Fatal("abort should close the session")
	}
	handle, err := slot.Acquire(ctx)
	if err != nil {
		t.Fatalf("slot still held after abort: %v", err)
	}
	_ = handle.Close()
}

func TestAbortForDifferentPatientKeepsSession(t *testing.T) {
	recorder := NewRecorder(NewCaptureSlot(), nil)
	ctx := context.Background()

	if _, err := recorder.Start(ctx, "p-1", ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	recorder.Abort("p-2")

	if !recorder.Recording() {
		t.Fatal("abort for another patient must not discard the open session")
	}
	if err := recorder.Append("p-1", []byte{1}); err != nil {
		t.Fatalf("session should still accept chunks: %v", err)
	}
}

func TestCloseReleasesSlot(t *testing.T) {
	slot := NewCaptureSlot()
	recorder := NewRecorder(slot, nil)
	ctx := context.Background()

	if _, err := recorder.Start(ctx, "p-1", ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	recorder.Close()

	if recorder.Recording() {
		t.Fatal("close should discard the open session")
	}
	handle, err := slot.Acquire(ctx)
	if err != nil {
		t.Fatalf("slot still held after close: %v", err)
	}
	_ = handle.Close()
}
