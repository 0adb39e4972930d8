package dto

// Error codes carried in ErrorResponse.Code.
const (
	CodeUnauthenticated = "unauthenticated"
	CodeNotFound        = "not_found"
	CodeTransient       = "transient"
	CodeForbidden       = "forbidden"
	CodeBadRequest      = "bad_request"
	CodeRateLimited     = "rate_limited"
)

// MessageResponse is a generic response for success messages.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is a response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse is returned by the liveness check.
type HealthResponse struct {
	Status string `json:"status"`
}
