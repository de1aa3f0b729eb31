package domain

import (
	"fmt"
	"strings"
)

// AuthError is returned when the token endpoint or an API call rejects the credentials.
type AuthError struct {
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: status=%d body=%s", e.Status, strings.TrimSpace(e.Body))
}

// RateLimitError is returned once a 429 response outlives the retry policy.
type RateLimitError struct {
	URL      string
	Attempts int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by %s after %d attempts", e.URL, e.Attempts)
}

type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// FetchError covers any non-2xx response other than 401 and 429.
type FetchError struct {
	URL    string
	Status int
	Body   string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed: status=%d body=%s", e.URL, e.Status, strings.TrimSpace(e.Body))
}

type TemplateShapeError struct {
	Path string
	Err  error
}

func (e *TemplateShapeError) Error() string {
	return fmt.Sprintf("template %s: %v", e.Path, e.Err)
}

func (e *TemplateShapeError) Unwrap() error { return e.Err }

type DeliveryError struct {
	Destination string
	Err         error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to %s failed: %v", e.Destination, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
