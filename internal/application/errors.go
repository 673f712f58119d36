package application

import "errors"

var (
	// ErrUnauthorized is reported when a request needs a logged in user.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrInvalidCredentials is returned when a login attempt is missing a username or password.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrWeatherUnavailable wraps any failure of a weather lookup.
	ErrWeatherUnavailable = errors.New("application: weather unavailable")
)

// Messages surfaced inline by the views.
const (
	MessageMissingCredentials = "Please enter both username and password"
	MessageWeatherUnavailable = "Unable to fetch weather data"
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}
