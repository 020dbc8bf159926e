package framework

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// ErrForcedExit is returned by Runner.Wait when a second stop is requested.
var ErrForcedExit = errors.New("forced exit")

// AggregatedError collects errors from a tick or from multiple Runnables.
type AggregatedError struct {
	merr *multierror.Error
}

// Add adds errors to be aggregated. nil and context.Canceled are skipped.
func (e *AggregatedError) Add(errs ...error) *AggregatedError {
	for _, err := range errs {
		if err != nil && errors.Cause(err) != context.Canceled {
			e.merr = multierror.Append(e.merr, err)
		}
	}
	return e
}

// Len returns the number of collected errors.
func (e *AggregatedError) Len() int {
	if e.merr == nil {
		return 0
	}
	return len(e.merr.Errors)
}

// Errors returns the collected errors.
func (e *AggregatedError) Errors() []error {
	if e.merr == nil {
		return nil
	}
	return e.merr.Errors
}

// Aggregate returns nil, the only error, or a multierror of all.
func (e *AggregatedError) Aggregate() error {
	switch e.Len() {
	case 0:
		return nil
	case 1:
		return e.merr.Errors[0]
	}
	return e.merr
}
