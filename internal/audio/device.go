package audio

import (
	"context"
	"fmt"
	"sync"
)

// Handle is an acquired capture device. Closing it releases the device;
// Close is safe to call more than once.
type Handle interface {
	Close() error
}

// Device grants exclusive access to the audio input. Acquire fails while a
// previously acquired handle has not been released.
type Device interface {
	Acquire(ctx context.Context) (Handle, error)
}

// CaptureSlot is the default Device: a single exclusive slot guarding the
// one microphone stream available to this deployment.
type CaptureSlot struct {
	mu   sync.Mutex
	busy bool
}

// NewCaptureSlot creates an unoccupied capture slot
func NewCaptureSlot() *CaptureSlot {
	return &CaptureSlot{}
}

// Acquire takes the slot or fails if it is held
func (s *CaptureSlot) Acquire(ctx context.Context) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return nil, fmt.Errorf("capture device is held by another session")
	}
	s.busy = true
	return &slotHandle{slot: s}, nil
}

type slotHandle struct {
	slot *CaptureSlot
	once sync.Once
}

func (h *slotHandle) Close() error {
	h.once.Do(func() {
		h.slot.mu.Lock()
		h.slot.busy = false
		h.slot.mu.Unlock()
	})
	return nil
}
