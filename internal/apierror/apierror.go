// Package apierror defines the error envelope exchanged with the backend and
// the classified failure returned by every gateway call. Callers branch on
// Kind, never on message text.
package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// APIError is the canonical error envelope for 4xx/5xx responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}

// Kind classifies a failed call.
type Kind int

const (
	Unknown Kind = iota
	NetworkUnreachable
	EndpointNotFound
	Forbidden
	ServerError
	Validation
)

func (k Kind) String() string {
	switch k {
	case NetworkUnreachable:
		return "network_unreachable"
	case EndpointNotFound:
		return "endpoint_not_found"
	case Forbidden:
		return "forbidden"
	case ServerError:
		return "server_error"
	case Validation:
		return "validation_error"
	default:
		return "unknown"
	}
}

// User-facing messages for the rewritten classes.
const (
	MsgNetwork   = "Unable to connect to server. Please check your internet connection."
	MsgNotFound  = "The requested resource was not found."
	MsgServer    = "Server error. Please try again later."
	MsgForbidden = "Access denied."
	MsgAuth      = "Authentication required."
)

// Error is a classified failure. Status is 0 when no response was received.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Detail  string
	Fields  map[string]string
	Body    []byte
	Op      string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Classify maps an HTTP status and response body to an Error.
func Classify(op string, status int, body []byte) *Error {
	detail, fields := ParseEnvelope(body)
	e := &Error{Status: status, Detail: detail, Fields: fields, Body: body, Op: op}
	switch {
	case status == http.StatusNotFound:
		e.Kind, e.Message = EndpointNotFound, MsgNotFound
	case status == http.StatusForbidden:
		e.Kind, e.Message = Forbidden, firstNonEmpty(detail, MsgForbidden)
	case status == http.StatusUnauthorized:
		e.Kind, e.Message = Validation, firstNonEmpty(detail, MsgAuth)
	case status >= 500:
		e.Kind, e.Message = ServerError, MsgServer
	case status >= 400:
		e.Kind, e.Message = Validation, firstNonEmpty(detail, http.StatusText(status))
	default:
		e.Kind, e.Message = Unknown, firstNonEmpty(detail, http.StatusText(status))
	}
	return e
}

// Network builds a NetworkUnreachable error around a transport failure.
func Network(op string, err error) *Error {
	return &Error{Kind: NetworkUnreachable, Message: MsgNetwork, Op: op, Err: err}
}

// Invalid builds a client-side validation failure; no request was sent.
func Invalid(op string, fields map[string]string) *Error {
	return &Error{Kind: Validation, Message: "invalid request", Fields: fields, Op: op}
}

// Decode builds an Unknown error for a 2xx body of the wrong shape.
func Decode(op string, status int, body []byte, err error) *Error {
	return &Error{Kind: Unknown, Status: status, Message: "unexpected response", Body: body, Op: op, Err: err}
}

// ParseEnvelope extracts a detail message and per-field errors from
// {"detail": ...}, {"error": ...} or a DRF field map {"field": ["msg"]}.
func ParseEnvelope(body []byte) (string, map[string]string) {
	if len(body) == 0 {
		return "", nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", nil
	}
	var detail string
	for _, key := range []string{"detail", "error", "message"} {
		if v, ok := raw[key]; ok {
			if s := flatten(v); s != "" {
				detail = s
				break
			}
		}
	}
	var fields map[string]string
	if nested, ok := raw["fields"]; ok {
		_ = json.Unmarshal(nested, &fields)
	}
	for key, v := range raw {
		switch key {
		case "detail", "error", "message", "fields", "code":
			continue
		}
		if s := flatten(v); s != "" {
			if fields == nil {
				fields = map[string]string{}
			}
			fields[key] = s
		}
	}
	if detail == "" && len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		detail = keys[0] + ": " + fields[keys[0]]
	}
	return detail, fields
}

func flatten(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, " ")
	}
	return ""
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// KindOf returns the Kind of err, or Unknown when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err is a classified failure of kind k.
func Is(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// StatusOf returns the HTTP status attached to err, 0 if none.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}
