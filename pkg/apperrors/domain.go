package apperrors

import (
	"net/http"
)

// Factories and predefined variables for the business errors of the
// job board. Repositories return plain sentinel errors; services map
// them onto these.

// ErrNotFound wraps a repository not-found error into a 404.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrUpstream covers aggregator calls that never got a response.
// Non-2xx upstream answers bypass the envelope entirely: the handler
// relays their status and body verbatim.
func ErrUpstream(err error) *AppError {
	return Wrap(err, CodeExternalServiceError, "aggregator", "Upstream job search is unavailable", http.StatusBadGateway)
}

// --- Auth ---

var ErrWeakPassword = New(
	CodeValidationFailed,
	"validation",
	"Password must be at least 8 characters long",
	http.StatusBadRequest,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)

// ErrInvalidCredentials is returned for both unknown email and wrong
// password so the login endpoint cannot be used for email enumeration.
var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrTokenExpired = New(
	CodeTokenExpired,
	"auth",
	"Token has expired",
	http.StatusUnauthorized,
)

// --- Jobs ---

var ErrJobNotFound = New(
	CodeNotFound,
	"jobs",
	"Job not found",
	http.StatusNotFound,
)

var ErrAlreadyApplied = New(
	CodeConflict,
	"jobs",
	"You have already applied to this job",
	http.StatusConflict,
)

var ErrAlreadySaved = New(
	CodeConflict,
	"jobs",
	"You have already saved this job",
	http.StatusConflict,
)

var ErrNotApplied = New(
	CodeNotFound,
	"jobs",
	"You have not applied to this job",
	http.StatusNotFound,
)

var ErrNotSaved = New(
	CodeNotFound,
	"jobs",
	"This job is not in your saved list",
	http.StatusNotFound,
)

// ErrNotJobOwner hides existence of jobs posted by others: the caller
// sees the same 404 as for an absent job.
var ErrNotJobOwner = New(
	CodeNotFound,
	"jobs",
	"Job not found",
	http.StatusNotFound,
)
