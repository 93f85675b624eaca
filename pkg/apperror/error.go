package apperror

import "net/http"

// Machine-stable reasons exposed in the "code" field of error responses
const (
	ReasonBadRequest         = "bad_request"
	ReasonValidation         = "validation_failed"
	ReasonUnauthorized       = "unauthorized"
	ReasonInvalidCredentials = "invalid_credentials"
	ReasonAccountInactive    = "account_inactive"
	ReasonInvalidToken       = "invalid_token"
	ReasonForbidden          = "forbidden"
	ReasonWrongRole          = "wrong_role"
	ReasonNotOwner           = "not_owner"
	ReasonCSRF               = "csrf_failed"
	ReasonNotFound           = "not_found"
	ReasonConflict           = "conflict"
	ReasonEmailTaken         = "email_taken"
	ReasonInvalidTransition  = "invalid_transition"
	ReasonTooManyRequests    = "too_many_requests"
	ReasonInternal           = "internal_error"
)

type AppError struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Reason  string   `json:"reason"`
	Details []string `json:"details,omitempty"`
	Err     error    `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithReason returns a copy carrying a more specific machine-stable reason
func (e *AppError) WithReason(reason string) *AppError {
	cp := *e
	cp.Reason = reason
	return &cp
}

func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Reason:  defaultReason(code),
		Err:     err,
	}
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message, nil)
}

// Validation wraps binding/validation failures, keeping per-field messages
func Validation(details []string) *AppError {
	e := New(http.StatusBadRequest, "Données invalides", nil)
	e.Reason = ReasonValidation
	e.Details = details
	return e
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, message, nil)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message, nil)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, nil)
}

func Conflict(message string) *AppError {
	return New(http.StatusConflict, message, nil)
}

func TooManyRequests(message string) *AppError {
	return New(http.StatusTooManyRequests, message, nil)
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, "Internal Server Error", err)
}

func defaultReason(code int) string {
	switch code {
	case http.StatusBadRequest:
		return ReasonBadRequest
	case http.StatusUnauthorized:
		return ReasonUnauthorized
	case http.StatusForbidden:
		return ReasonForbidden
	case http.StatusNotFound:
		return ReasonNotFound
	case http.StatusConflict:
		return ReasonConflict
	case http.StatusTooManyRequests:
		return ReasonTooManyRequests
	default:
		return ReasonInternal
	}
}
