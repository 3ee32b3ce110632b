package errors

import (
	"fmt"
	"net/http"
	"time"
)

// AppError is the custom error type for the application
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is/As
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General Errors

func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

func ErrInvalidPayload() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_PAYLOAD,
		Message:  "Invalid request payload",
	}
}

func ErrValidationFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_VALIDATION_FAILED,
		Message:  "Request validation failed",
	}
}

// Recording lifecycle errors

// ErrDeviceUnavailable reports that the capture device could not be acquired
// (permission denied or no device present).
func ErrDeviceUnavailable(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusServiceUnavailable,
		Code:     ErrorCode_DEVICE_UNAVAILABLE,
		Message:  "Audio capture device unavailable",
	}
}

// ErrAlreadyRecording reports that a recording session is already open.
func ErrAlreadyRecording() AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_ALREADY_RECORDING,
		Message:  "A recording session is already active",
	}
}

// ErrNothingRecording reports a stop without a prior successful start.
func ErrNothingRecording() AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_NOTHING_RECORDING,
		Message:  "No recording session in progress",
	}
}

// ErrEmptyRecording reports a session that finished with zero audio bytes.
func ErrEmptyRecording() AppError {
	return AppError{
		HTTPCode: http.StatusUnprocessableEntity,
		Code:     ErrorCode_EMPTY_RECORDING,
		Message:  "Recording contained no audio data",
	}
}

// Pipeline errors

// ErrTranscriptionService wraps a transcription transport or upstream
// failure, keeping the upstream detail for display.
func ErrTranscriptionService(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_TRANSCRIPTION_FAILED,
		Message:  "Transcription service failed",
	}
}

// ErrExtractionService wraps an extraction transport or upstream failure.
func ErrExtractionService(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_EXTRACTION_FAILED,
		Message:  "Clinical extraction service failed",
	}
}

// ErrMalformedExtraction reports model output that did not parse to a JSON
// object. Persistence must be skipped entirely.
func ErrMalformedExtraction(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_MALFORMED_EXTRACTION,
		Message:  "Extraction response was not a valid JSON object",
	}
}

// ErrNothingToSave reports an extraction with no persistable content in
// either the SOAP or assessment sections.
func ErrNothingToSave() AppError {
	return AppError{
		HTTPCode: http.StatusUnprocessableEntity,
		Code:     ErrorCode_NOTHING_TO_SAVE,
		Message:  "Nothing to save: extraction contained no persistable content",
	}
}

// ErrPersistenceWrite reports a single failed write, naming the kind
// (soap note type or assessment category) so the user-facing message can
// identify the affected record.
func ErrPersistenceWrite(kind, label string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_PERSISTENCE_WRITE_FAILED,
		Message:  fmt.Sprintf("Failed to save %s record", label),
	}.WithDetail("kind", kind).WithDetail("label", label)
}

// Identity collaborator errors

// ErrNoActivePatient reports that the patient-identity lookup returned
// absent; recording and persistence must be refused.
func ErrNoActivePatient(patientID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NO_ACTIVE_PATIENT,
		Message:  "No active patient",
	}.WithDetail("patient_id", patientID)
}

// ErrDoctorUnavailable reports a null doctor-identity lookup.
func ErrDoctorUnavailable() AppError {
	return AppError{
		HTTPCode: http.StatusPreconditionFailed,
		Code:     ErrorCode_DOCTOR_UNAVAILABLE,
		Message:  "Doctor identity unavailable",
	}
}

// Infrastructure errors

func ErrDatabaseQuery(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_DB_QUERY_FAILED,
		Message:  "Database query failed",
	}
}

func ErrStorageFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTEGRATION_STORAGE_FAILED,
		Message:  "Object storage operation failed",
	}
}

func ErrCacheFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTEGRATION_CACHE_FAILED,
		Message:  "Cache operation failed",
	}
}
