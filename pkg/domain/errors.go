package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfiguration is returned when a registry, table or definition cannot be built.
var ErrConfiguration = errors.New("invalid machine configuration")

// ErrDuplicateTransition is returned when the same source state is bound twice.
var ErrDuplicateTransition = fmt.Errorf("%w: duplicate transition", ErrConfiguration)

// ErrInvalidState is returned when a value or state is not registered, or a state has no transition.
var ErrInvalidState = errors.New("invalid state")

// ErrContractViolation is returned when a resolver chain settles on something other than a State or End.
var ErrContractViolation = errors.New("resolver contract violation")

// ErrRecursionExhausted is returned when a resolver or virtual-state chain exceeds the depth limit.
var ErrRecursionExhausted = errors.New("transition chain exhausted")

// ErrExtractionAmbiguity is returned when a resolver branch cannot be resolved statically.
var ErrExtractionAmbiguity = errors.New("ambiguous resolver branch")

// ErrArgumentConflict is returned when a parameter is bound both positionally and by name.
var ErrArgumentConflict = errors.New("argument bound twice")

// ErrFinished is returned by mutating calls on a machine that reached End.
var ErrFinished = errors.New("machine finished")

// ErrNotStarted is returned when a machine is advanced before Start.
var ErrNotStarted = errors.New("machine not started")

// ErrAlreadyStarted is returned when Start is called twice.
var ErrAlreadyStarted = errors.New("machine already started")

// TransitionError carries the context of a failed transition step.
type TransitionError struct {
	Op       string // "resolve", "hook", "assign", "lookup"
	State    string // Source state name, empty when unset
	Resolver ResolverID
	Hook     string
	Err      error
}

func (e *TransitionError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Op)
	if e.State != "" {
		fmt.Fprintf(&sb, " state %q", e.State)
	}
	if e.Resolver != "" {
		fmt.Fprintf(&sb, " resolver %q", e.Resolver)
	}
	if e.Hook != "" {
		fmt.Fprintf(&sb, " hook %q", e.Hook)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Err.Error())
	return sb.String()
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// AggregateError collects every failure found while validating a configuration.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d configuration errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Unwrap exposes every member so errors.Is matches any of them.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// Errors returns the members of an AggregateError, or nil for any other error.
func Errors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}

// collector accumulates validation failures and folds them into one error.
type collector struct {
	errs []error
}

func (c *collector) add(err error) {
	if err != nil {
		c.errs = append(c.errs, err)
	}
}

func (c *collector) addf(base error, format string, args ...any) {
	c.errs = append(c.errs, fmt.Errorf("%w: "+format, append([]any{base}, args...)...))
}

func (c *collector) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return &AggregateError{Errors: c.errs}
}
