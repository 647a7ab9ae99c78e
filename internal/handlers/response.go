package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/brightlux/storefront-backend/internal/auth"
	"github.com/brightlux/storefront-backend/internal/db"
	"github.com/brightlux/storefront-backend/internal/logging"
	"github.com/brightlux/storefront-backend/internal/media"
	"github.com/brightlux/storefront-backend/internal/services"
)

// Error codes returned in the envelope.
const (
	CodeInvalidInput      = "INVALID_INPUT"
	CodeNotFound          = "NOT_FOUND"
	CodeUserNotFound      = "USER_NOT_FOUND"
	CodeIncorrectPassword = "INCORRECT_PASSWORD"
	CodeEmailExists       = "EMAIL_EXISTS"
	CodeCartNotFound      = "CART_NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeFileTooLarge      = "FILE_TOO_LARGE"
	CodeMethodNotAllowed  = "METHOD_NOT_ALLOWED"
	CodeUnavailable       = "UNAVAILABLE"
	CodeInternal          = "INTERNAL_ERROR"
)

var (
	errUnauthorized = errors.New("authentication required")
	errForbidden    = errors.New("insufficient permissions")
)

// Envelope is the body of every API response.
type Envelope struct {
	StatusCode   int    `json:"statusCode"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	Data         any    `json:"data,omitempty"`
}

func writeEnvelope(w http.ResponseWriter, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.StatusCode)
	_ = json.NewEncoder(w).Encode(env)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, Envelope{StatusCode: status, Data: data})
}

func writeFail(w http.ResponseWriter, status int, code, msg string) {
	writeEnvelope(w, Envelope{StatusCode: status, ErrorCode: code, ErrorMessage: msg})
}

// invalid builds a 400 error with the given detail.
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", services.ErrInvalidInput, fmt.Sprintf(format, args...))
}

// classify maps an error from any layer to its HTTP status and code.
func classify(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, media.ErrUnsupportedType),
		errors.Is(err, media.ErrEmptyFile):
		return http.StatusBadRequest, CodeInvalidInput
	case errors.Is(err, errUnauthorized), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, auth.ErrIncorrectPassword):
		return http.StatusUnauthorized, CodeIncorrectPassword
	case errors.Is(err, errForbidden):
		return http.StatusForbidden, CodeForbidden
	case errors.Is(err, auth.ErrUserNotFound):
		return http.StatusNotFound, CodeUserNotFound
	case errors.Is(err, services.ErrCartNotFound):
		return http.StatusNotFound, CodeCartNotFound
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, auth.ErrEmailExists):
		return http.StatusConflict, CodeEmailExists
	case errors.Is(err, db.ErrConflict), errors.Is(err, db.ErrDuplicate):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, media.ErrFileTooLarge), errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, CodeFileTooLarge
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// writeError maps err to the envelope. Internal errors are logged and their
// text is not sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, log logging.Logger, err error) {
	status, code := classify(err)
	msg := err.Error()
	switch {
	case status == http.StatusInternalServerError:
		log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "Internal server error"
	case code == CodeUserNotFound:
		msg = auth.ErrUserNotFound.Error()
	case code == CodeIncorrectPassword:
		msg = auth.ErrIncorrectPassword.Error()
	case code == CodeEmailExists:
		msg = auth.ErrEmailExists.Error()
	case code == CodeInvalidInput:
		// "invalid input: name is required" -> "name is required"
		if rest, ok := strings.CutPrefix(msg, services.ErrInvalidInput.Error()+": "); ok {
			msg = rest
		}
	}
	writeFail(w, status, code, msg)
}
