package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable covers network errors, timeouts, non-2xx responses and
	// missing credentials.
	ErrUnavailable = errors.New("provider unavailable")
	// ErrMalformed means the provider answered but the payload could not be
	// decoded or carried nothing usable.
	ErrMalformed = errors.New("provider data malformed")
	// ErrInvalidImage is returned by image adapters before any network call
	// when the upload is empty or not an image.
	ErrInvalidImage = errors.New("invalid image")
)

// Failure is the uniform error marker every adapter returns instead of
// panicking or leaking transport errors.
type Failure struct {
	Provider Name
	Kind     error // ErrUnavailable, ErrMalformed or ErrInvalidImage
	Reason   string
	Err      error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", f.Provider, f.Kind, f.Reason, f.Err)
	}
	return fmt.Sprintf("%s: %s: %s", f.Provider, f.Kind, f.Reason)
}

// Unwrap exposes both the kind sentinel and the underlying cause so callers
// can use errors.Is against either.
func (f *Failure) Unwrap() []error {
	if f.Err != nil {
		return []error{f.Kind, f.Err}
	}
	return []error{f.Kind}
}

// Unavailable builds an ErrUnavailable failure.
func Unavailable(p Name, reason string, err error) *Failure {
	return &Failure{Provider: p, Kind: ErrUnavailable, Reason: reason, Err: err}
}

// Malformed builds an ErrMalformed failure.
func Malformed(p Name, reason string, err error) *Failure {
	return &Failure{Provider: p, Kind: ErrMalformed, Reason: reason, Err: err}
}

// InvalidImage builds an ErrInvalidImage failure.
func InvalidImage(p Name, reason string) *Failure {
	return &Failure{Provider: p, Kind: ErrInvalidImage, Reason: reason}
}
