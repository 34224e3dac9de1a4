package auth

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAuthenticationFailed marks signing or token-exchange failures. Callers
// can match it with errors.Is regardless of the underlying cause.
var ErrAuthenticationFailed = errors.New("auth: authentication failed")

// Error is the typed failure for assertion signing and token exchange. It
// carries the HTTP status of a failed exchange (zero for signing failures)
// and the original cause.
type Error struct {
	StatusCode int
	ErrorCode  string
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	if e == nil {
		return "auth: token exchange error"
	}
	parts := []string{"auth"}
	if e.StatusCode != 0 {
		parts = append(parts, fmt.Sprintf("status %d", e.StatusCode))
	}
	if strings.TrimSpace(e.ErrorCode) != "" {
		parts = append(parts, e.ErrorCode)
	}
	message := strings.TrimSpace(e.Message)
	if message == "" {
		message = "token exchange failed"
	}
	parts = append(parts, message)
	joined := strings.Join(parts, ": ")
	if e.Cause != nil && !errors.Is(e.Cause, ErrAuthenticationFailed) {
		return joined + ": " + e.Cause.Error()
	}
	return joined
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is lets errors.Is(err, ErrAuthenticationFailed) match every auth failure.
func (e *Error) Is(target error) bool {
	return target == ErrAuthenticationFailed
}
