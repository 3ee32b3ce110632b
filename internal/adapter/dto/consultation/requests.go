// Package consultation holds the wire shapes of the consultation capture
// endpoints.
package consultation

import "time"

// StartRecordingRequest optionally selects the audio encoding for the
// session. Empty defaults to audio/webm.
type StartRecordingRequest struct {
	Encoding string `json:"encoding"`
}

// StartRecordingResponse carries the opened session id
type StartRecordingResponse struct {
	SessionID string `json:"session_id"`
}

// EditNoteRequest is the body for editing one note's content
type EditNoteRequest struct {
	Content string    `json:"content" validate:"required"`
	Date    time.Time `json:"date"`
}
