// Package apierror holds the JSON error envelope of the API. Clients switch on
// Code; Detail is the German message shown to the user.
package apierror

// Error codes.
const (
	CodeBadRequest     = "bad_request"
	CodeValidation     = "validation_failed"
	CodeUnauthorized   = "unauthorized"
	CodeForbidden      = "forbidden"
	CodeNotFound       = "not_found"
	CodeConflict       = "conflict"
	CodeDocumentLocked = "document_locked"
	CodeRateLimited    = "rate_limited"
	CodeConfiguration  = "configuration_error"
	CodeInternal       = "internal_error"
)

// APIError is the body of every 4xx/5xx response except validation failures.
type APIError struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func New(code, detail string) *APIError {
	return &APIError{Code: code, Detail: detail}
}

func BadRequest(detail string) *APIError { return New(CodeBadRequest, detail) }

func NotFound(detail string) *APIError { return New(CodeNotFound, detail) }

// Internal never carries the underlying error.
func Internal() *APIError { return New(CodeInternal, "Interner Serverfehler") }

// ValidationError lists the offending fields with their failed rule or message.
type ValidationError struct {
	Code   string            `json:"code"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Code: CodeValidation, Detail: "Validierungsfehler", Fields: fields}
}
