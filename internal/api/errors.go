package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthorized matches any 401 response via errors.Is
var ErrUnauthorized = errors.New("unauthorized")

// Error is a non-2xx backend response
type Error struct {
	StatusCode int
	Message    string
	Timestamp  string
}

// apiError mirrors the backend's error body
type apiError struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func newError(status int, body []byte) *Error {
	e := &Error{StatusCode: status}

	var payload apiError
	if json.Unmarshal(body, &payload) == nil {
		e.Message = payload.Message
		e.Timestamp = payload.Timestamp
	}
	if e.Message == "" {
		e.Message = strings.TrimSpace(string(body))
	}
	if e.Message == "" || strings.HasPrefix(e.Message, "{") {
		e.Message = http.StatusText(status)
	}
	return e
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Is reports 401s as ErrUnauthorized
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}
