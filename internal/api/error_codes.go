package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents machine-readable error codes for JSON error output.
type ErrorCode string

const (
	// ErrCodeConfiguration indicates an incomplete or invalid local configuration.
	ErrCodeConfiguration ErrorCode = "configuration"
	// ErrCodeTransport indicates the HTTP round trip failed.
	ErrCodeTransport ErrorCode = "transport"
	// ErrCodeTimeout indicates the round trip exceeded the connection timeout.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeNoCallYet indicates no call has completed.
	ErrCodeNoCallYet ErrorCode = "no_call_yet"
	// ErrCodeRemoteError indicates the API answered with an ERROR: body.
	ErrCodeRemoteError ErrorCode = "remote_error"
	// ErrCodeUnknownResponse indicates the API body matched neither prefix.
	ErrCodeUnknownResponse ErrorCode = "unknown_response"
	// ErrCodeUnknown indicates an unclassified error.
	ErrCodeUnknown ErrorCode = "unknown"
)

// IsRetryable returns true if errors with this code may succeed on a manual retry.
func (c ErrorCode) IsRetryable() bool {
	switch c {
	case ErrCodeTransport, ErrCodeTimeout:
		return true
	default:
		return false
	}
}

// Suggestion returns a human-readable suggestion for resolving this error.
func (c ErrorCode) Suggestion() string {
	switch c {
	case ErrCodeConfiguration:
		return "Check host, credentials, action and required parameters"
	case ErrCodeTransport:
		return "Check that the VICIdial server is reachable and retry"
	case ErrCodeTimeout:
		return "Increase --timeout or check network connectivity"
	case ErrCodeRemoteError:
		return "Inspect the response message returned by the server"
	case ErrCodeUnknownResponse:
		return "Verify the resource path points at non_agent_api.php"
	default:
		return ""
	}
}

// StructuredError provides machine-readable error information.
type StructuredError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	Suggestion string         `json:"suggestion,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// MarshalJSON implements custom JSON marshaling.
func (e *StructuredError) MarshalJSON() ([]byte, error) {
	type Alias StructuredError
	return json.Marshal((*Alias)(e))
}

// NewStructuredError creates a StructuredError from an ErrorCode and message.
func NewStructuredError(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:       code,
		Message:    message,
		Retryable:  code.IsRetryable(),
		Suggestion: code.Suggestion(),
	}
}

// StructuredErrorFromError attempts to convert any error to a StructuredError.
func StructuredErrorFromError(err error) *StructuredError {
	if err == nil {
		return nil
	}

	var se *StructuredError
	if errors.As(err, &se) {
		return se
	}

	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		se := NewStructuredError(ErrCodeConfiguration, cfgErr.Error())
		ctx := map[string]any{"kind": cfgErr.Err.Error()}
		if cfgErr.Name != "" {
			ctx["name"] = cfgErr.Name
		}
		if len(cfgErr.Suggestions) > 0 {
			ctx["suggestions"] = cfgErr.Suggestions
		}
		se.Context = ctx
		return se
	}

	var tErr *TransportError
	if errors.As(err, &tErr) {
		code := ErrCodeTransport
		if IsTimeout(tErr) {
			code = ErrCodeTimeout
		}
		se := NewStructuredError(code, tErr.Error())
		if tErr.StatusCode != 0 {
			se.Context = map[string]any{"status_code": tErr.StatusCode}
		}
		return se
	}

	if errors.Is(err, ErrNoCallYet) {
		return NewStructuredError(ErrCodeNoCallYet, err.Error())
	}

	var rErr *ResponseError
	if errors.As(err, &rErr) {
		code := ErrCodeUnknownResponse
		if rErr.Outcome == OutcomeError {
			code = ErrCodeRemoteError
		}
		se := NewStructuredError(code, rErr.Error())
		se.Context = map[string]any{"body": rErr.Body}
		return se
	}

	return NewStructuredError(ErrCodeUnknown, err.Error())
}
