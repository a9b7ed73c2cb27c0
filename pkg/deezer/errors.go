package deezer

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotYetSupported is returned by operations Deezer exposes no API for.
var ErrNotYetSupported = errors.New("deezer: operation not yet supported")

// InvalidArgumentError reports a caller-supplied value that does not match
// the accepted kinds. It is always returned before any network I/O.
type InvalidArgumentError struct {
	Name     string
	Value    any
	Accepted []Kind
}

func (e *InvalidArgumentError) Error() string {
	accepted := make([]string, 0, len(e.Accepted))
	for _, k := range e.Accepted {
		accepted = append(accepted, k.String())
	}
	return fmt.Sprintf(
		"deezer: invalid argument %q: got %#v (%T), want %s",
		e.Name, e.Value, e.Value, strings.Join(accepted, " or "),
	)
}

// UnknownResponseError is returned when Deezer answers with an empty body.
// Response is the raw response; its body has already been consumed.
type UnknownResponseError struct {
	Response *http.Response
}

func (e *UnknownResponseError) Error() string {
	if e.Response == nil {
		return "deezer: unknown response"
	}
	return fmt.Sprintf("deezer: unknown response (status %d)", e.Response.StatusCode)
}

// ProviderError carries the raw body of a response that is not a token.
// Deezer publishes no error schema for the token endpoint, so the message
// is exactly the body it sent.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return e.Body
}
