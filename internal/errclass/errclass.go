// Package errclass maps failed API calls to a stable taxonomy of user-facing
// outcomes. Classify is a pure, total function over (HTTP status, response
// body, request path); it never fails and has no transport or store
// dependencies.
package errclass

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Kind identifies the failure category of a classified error.
type Kind int

const (
	KindUnclassified Kind = iota
	KindNetwork
	KindInvalidCredentials
	KindValidationFailed
	KindForbidden
	KindNotFound
	KindConflict
	KindServerFault
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindValidationFailed:
		return "validation_failed"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindServerFault:
		return "server_fault"
	}

	return "unclassified"
}

// Classification is the classifier's verdict for a failed call. Suppress
// tells the presentation layer to skip the transient notification; the
// calling form is expected to surface the failure inline instead.
type Classification struct {
	Kind     Kind
	Message  string
	Suppress bool
}

const genericMessage = "An unexpected error occurred"

// errorBody is the subset of the server error payload the classifier reads.
// The field-level errors map is presentation's concern, not the classifier's.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func serverMessage(body []byte) string {
	parsed := errorBody{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	if parsed.Error != "" {
		return parsed.Error
	}

	return parsed.Message
}

// suppressedPath reports whether path targets an auth flow that renders its
// own inline failure UI.
func suppressedPath(path string) bool {
	return strings.Contains(path, "/auth/login") || strings.Contains(path, "/auth/register")
}

func fallback(primary, secondary string) string {
	if primary != "" {
		return primary
	}

	return secondary
}

// Classify maps a failed call to its user-facing outcome. A status of zero
// means no response reached the client (a network-level failure). The body
// may be nil; path is the request path, used for the auth-flow suppression
// rule.
func Classify(status int, body []byte, path string) Classification {
	classification := Classification{
		Kind:    KindUnclassified,
		Message: genericMessage,
	}

	if status == 0 {
		classification.Kind = KindNetwork
		classification.Suppress = suppressedPath(path)

		return classification
	}

	backend := serverMessage(body)

	switch status {
	case http.StatusBadRequest:
		classification.Kind = KindValidationFailed
		switch {
		case strings.Contains(backend, "User creation failed"):
			classification.Message = "Registration failed. Please check your details and try again."
		case strings.Contains(backend, "Empty short code"):
			classification.Message = "Invalid request. Please try again."
		default:
			classification.Message = fallback(backend, "Invalid request data")
		}

	case http.StatusUnauthorized:
		classification.Kind = KindInvalidCredentials
		classification.Message = "Invalid email or password"
		classification.Suppress = true

	case http.StatusForbidden:
		classification.Kind = KindForbidden
		if strings.Contains(backend, "delete your own") {
			classification.Message = "You can only delete your own short URLs"
		} else {
			classification.Message = "Access denied"
		}

	case http.StatusNotFound:
		classification.Kind = KindNotFound
		switch {
		case strings.Contains(backend, "User not found"):
			classification.Message = "User account not found"
		case strings.Contains(backend, "Admin not found"):
			classification.Message = "Administrator not found"
		case strings.Contains(backend, "Short URL not found"):
			classification.Message = "Short URL not found"
		case strings.Contains(backend, "About information not found"):
			classification.Message = "About information not found"
		default:
			classification.Message = "Resource not found"
		}

	case http.StatusConflict:
		classification.Kind = KindConflict
		if strings.Contains(backend, "already exists") {
			classification.Message = "This URL already exists in the system"
		} else {
			classification.Message = fallback(backend, "Conflict occurred")
		}

	case http.StatusInternalServerError:
		classification.Kind = KindServerFault
		switch {
		case strings.Contains(backend, "generate unique short code"):
			classification.Message = "Unable to generate a unique short code. Please try again later."
		case strings.Contains(backend, "Invalid short code length"):
			classification.Message = "System error: Invalid short code configuration"
		case strings.Contains(backend, "already exists"):
			classification.Message = "This URL already exists in the system"
		default:
			classification.Message = "Internal server error. Please try again later."
		}

	default:
		classification.Message = fallback(
			backend,
			fmt.Sprintf("Error %d: %s", status, http.StatusText(status)),
		)
	}

	if suppressedPath(path) {
		classification.Suppress = true
	}

	return classification
}

// Error is the classified form of a failed API call, re-raised to the caller
// after the interception point has routed the classification to the
// notification sink.
type Error struct {
	Classification Classification
	Status         int
	Path           string

	cause error
}

// New classifies a non-2xx response into an Error.
func New(status int, body []byte, path string) *Error {
	return &Error{
		Classification: Classify(status, body, path),
		Status:         status,
		Path:           path,
	}
}

// NewNetwork wraps a transport failure that produced no response.
func NewNetwork(cause error, path string) *Error {
	return &Error{
		Classification: Classify(0, nil, path),
		Path:           path,
		cause:          cause,
	}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Classification.Kind, e.Classification.Message, e.cause)
	}

	return fmt.Sprintf("%s: %s", e.Classification.Kind, e.Classification.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}
