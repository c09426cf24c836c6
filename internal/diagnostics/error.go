package diagnostics

import (
	"strings"
)

// Error is the single user-facing failure of the WebIDL front-end. Callers
// distinguish categories by Message only.
type Error struct {
	Message   string
	Locations []string
	Warning   bool
}

// NewError builds an error and renders the given locations eagerly, so the
// error stays printable after the parse session is gone.
func NewError(message string, locations ...Location) *Error {
	e := &Error{Message: message}
	for _, loc := range locations {
		e.Locations = append(e.Locations, loc.String())
	}
	return e
}

// NewWarning is NewError with the warning flag set.
func NewWarning(message string, locations ...Location) *Error {
	e := NewError(message, locations...)
	e.Warning = true
	return e
}

func (e *Error) Error() string {
	severity := "error"
	if e.Warning {
		severity = "warning"
	}
	var sb strings.Builder
	sb.WriteString(severity)
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if len(e.Locations) > 0 {
		sb.WriteString(", ")
		sb.WriteString(strings.Join(e.Locations, "\n"))
	}
	return sb.String()
}
