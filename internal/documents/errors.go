package documents

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransport marks failures where no usable answer came back from the backend.
	ErrTransport = errors.New("backend unreachable")
	// ErrRejected marks non-success HTTP answers.
	ErrRejected = errors.New("backend rejected request")
	// ErrInvalidID is returned for blank document identifiers.
	ErrInvalidID = errors.New("document id is required")
)

// StatusError carries a non-2xx backend answer.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Code)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Code, e.Message)
}

func (e *StatusError) Unwrap() error { return ErrRejected }

// RejectionMessage returns the server-provided message of a rejection, if any.
func RejectionMessage(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Message
	}
	return ""
}

// serverMessage pulls a human readable message out of an error body.
func serverMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"message", "detail", "error"} {
		switch v := payload[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case map[string]any:
			if s, ok := v["message"].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}
