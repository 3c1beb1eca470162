package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrListingNotFound is returned when a listing is not found.
	ErrListingNotFound = errors.New("listing not found")
	// ErrAlreadyClaimed is returned when a listing is no longer available.
	ErrAlreadyClaimed = errors.New("listing already claimed")
	// ErrNotOwner is returned when a caller mutates a listing it does not own.
	ErrNotOwner = errors.New("not authorized to modify this listing")
	// ErrForbiddenRole is returned when the caller's role does not permit the operation.
	ErrForbiddenRole = errors.New("role not permitted for this operation")
	// ErrNotClaimant is returned when someone other than the claiming identity completes a claim.
	ErrNotClaimant = errors.New("only the claiming collector may complete this listing")
	// ErrClaimNotPending is returned when completing a listing that is not reserved.
	ErrClaimNotPending = errors.New("listing is not reserved")
	// ErrEmailTaken is returned when the registration email is already in use.
	ErrEmailTaken = errors.New("email already in use")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrValidation is returned when a request fails field validation.
	ErrValidation = errors.New("validation failed")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unexpected errors are
// collapsed to a generic 500 so internal detail never reaches the caller.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrListingNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "LISTING_NOT_FOUND")
	case errors.Is(err, ErrAlreadyClaimed):
		return NewHTTPError(http.StatusConflict, err.Error(), "ALREADY_CLAIMED")
	case errors.Is(err, ErrNotOwner):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrForbiddenRole):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrNotClaimant):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrClaimNotPending):
		return NewHTTPError(http.StatusConflict, err.Error(), "CLAIM_NOT_PENDING")
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "EMAIL_TAKEN")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
