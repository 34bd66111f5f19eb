package api

import "bytes"

// Outcome is the classification of a response body.
type Outcome int

const (
	// OutcomeNone means no call has completed.
	OutcomeNone Outcome = iota
	OutcomeSuccess
	OutcomeError
	OutcomeUnknown
)

var (
	successPrefix = []byte("SUCCESS:")
	errorPrefix   = []byte("ERROR:")
)

// Classify inspects the literal body prefix. The remote system always answers
// 200 and reports the result in the first bytes of the body.
func Classify(body []byte) Outcome {
	switch {
	case bytes.HasPrefix(body, successPrefix):
		return OutcomeSuccess
	case bytes.HasPrefix(body, errorPrefix):
		return OutcomeError
	default:
		return OutcomeUnknown
	}
}

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeError:
		return "error"
	case OutcomeUnknown:
		return "unknown"
	default:
		return "none"
	}
}

// MarshalText renders the outcome name in JSON output.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
