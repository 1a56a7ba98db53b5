package errors

const (
	HttpInternalError        = "internal_error"
	HttpInvalidRequestError  = "invalid_request"
	HttpInvalidCsvError      = "invalid_csv"
	HttpDuplicateRecordError = "duplicate_record"
	HttpNotFoundError        = "not_found"
)

// ErrorResponse is the error response body for all CDR API errors.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
