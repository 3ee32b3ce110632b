package errors

// ErrorCode identifies an application error condition. Codes are stable and
// returned to clients in the response body alongside the HTTP status.
type ErrorCode int32

const (
	ErrorCode_UNKNOWN          ErrorCode = 0
	ErrorCode_INTERNAL         ErrorCode = 1
	ErrorCode_INVALID_ARGUMENT ErrorCode = 2
	ErrorCode_NOT_FOUND        ErrorCode = 3
	ErrorCode_ALREADY_EXISTS   ErrorCode = 4
	ErrorCode_HTTP_OK          ErrorCode = 200

	// Payload / validation
	ErrorCode_INVALID_PAYLOAD   ErrorCode = 1001
	ErrorCode_VALIDATION_FAILED ErrorCode = 1002

	// Recording lifecycle
	ErrorCode_DEVICE_UNAVAILABLE ErrorCode = 2001
	ErrorCode_ALREADY_RECORDING  ErrorCode = 2002
	ErrorCode_NOTHING_RECORDING  ErrorCode = 2003
	ErrorCode_EMPTY_RECORDING    ErrorCode = 2004

	// Pipeline
	ErrorCode_TRANSCRIPTION_FAILED     ErrorCode = 3001
	ErrorCode_MALFORMED_EXTRACTION     ErrorCode = 3002
	ErrorCode_NOTHING_TO_SAVE          ErrorCode = 3003
	ErrorCode_PERSISTENCE_WRITE_FAILED ErrorCode = 3004
	ErrorCode_EXTRACTION_FAILED        ErrorCode = 3005

	// Identity collaborators
	ErrorCode_NO_ACTIVE_PATIENT  ErrorCode = 4001
	ErrorCode_DOCTOR_UNAVAILABLE ErrorCode = 4002

	// Infrastructure
	ErrorCode_DB_QUERY_FAILED           ErrorCode = 5001
	ErrorCode_INTEGRATION_STORAGE_FAILED ErrorCode = 5002
	ErrorCode_INTEGRATION_CACHE_FAILED   ErrorCode = 5003
)

var codeNames = map[ErrorCode]string{
	ErrorCode_UNKNOWN:                    "UNKNOWN",
	ErrorCode_INTERNAL:                   "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:           "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                  "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:             "ALREADY_EXISTS",
	ErrorCode_HTTP_OK:                    "OK",
	ErrorCode_INVALID_PAYLOAD:            "INVALID_PAYLOAD",
	ErrorCode_VALIDATION_FAILED:          "VALIDATION_FAILED",
	ErrorCode_DEVICE_UNAVAILABLE:         "DEVICE_UNAVAILABLE",
	ErrorCode_ALREADY_RECORDING:          "ALREADY_RECORDING",
	ErrorCode_NOTHING_RECORDING:          "NOTHING_RECORDING",
	ErrorCode_EMPTY_RECORDING:            "EMPTY_RECORDING",
	ErrorCode_TRANSCRIPTION_FAILED:       "TRANSCRIPTION_FAILED",
	ErrorCode_MALFORMED_EXTRACTION:       "MALFORMED_EXTRACTION",
	ErrorCode_NOTHING_TO_SAVE:            "NOTHING_TO_SAVE",
	ErrorCode_PERSISTENCE_WRITE_FAILED:   "PERSISTENCE_WRITE_FAILED",
	ErrorCode_EXTRACTION_FAILED:          "EXTRACTION_FAILED",
	ErrorCode_NO_ACTIVE_PATIENT:          "NO_ACTIVE_PATIENT",
	ErrorCode_DOCTOR_UNAVAILABLE:         "DOCTOR_UNAVAILABLE",
	ErrorCode_DB_QUERY_FAILED:            "DB_QUERY_FAILED",
	ErrorCode_INTEGRATION_STORAGE_FAILED: "INTEGRATION_STORAGE_FAILED",
	ErrorCode_INTEGRATION_CACHE_FAILED:   "INTEGRATION_CACHE_FAILED",
}

// String returns the symbolic name for the code
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
