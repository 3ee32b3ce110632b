package ai

import "context"

// Transcriber converts one recorded audio blob into plain text. An empty
// string is a valid result meaning no speech was detected; it is distinct
// from a transport failure. Implementations perform no automatic retries;
// retry policy belongs to the caller.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}
