package main

import (
	"errors"

	"github.com/iota-uz/hrsync/modules/hris/domain"
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	exitConfig   = 3
	exitAuth     = 4
	exitFetch    = 5
	exitTemplate = 6
	exitDelivery = 7
)

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

// classify attaches the exit code of a pipeline failure.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var (
		ce        *cliError
		authErr   *domain.AuthError
		rateErr   *domain.RateLimitError
		netErr    *domain.NetworkError
		fetchErr  *domain.FetchError
		shapeErr  *domain.TemplateShapeError
		deliveErr *domain.DeliveryError
	)
	switch {
	case errors.As(err, &ce):
		return err
	case errors.As(err, &authErr):
		return withCode(exitAuth, err)
	case errors.As(err, &rateErr), errors.As(err, &netErr), errors.As(err, &fetchErr):
		return withCode(exitFetch, err)
	case errors.As(err, &shapeErr):
		return withCode(exitTemplate, err)
	case errors.As(err, &deliveErr):
		return withCode(exitDelivery, err)
	default:
		return withCode(exitFailure, err)
	}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitFailure
}
