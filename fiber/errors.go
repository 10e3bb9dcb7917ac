package fiber

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidHookCall    = errors.New("fiber: hook called outside of a component render")
	ErrHookMismatch       = errors.New("fiber: hook order changed between renders")
	ErrUnknownElementType = errors.New("fiber: unknown element type")
)

// SuspendedError is returned by Use while its thenable is pending. A
// component hands it back unchanged so the nearest Suspense boundary can
// show its fallback.
type SuspendedError struct {
	Thenable Thenable
}

func (e *SuspendedError) Error() string {
	return "fiber: render suspended on a pending thenable"
}

// PanicError carries a value recovered from a panicking render.
type PanicError struct {
	Component string
	Value     any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("fiber: panic while rendering %s: %v", e.Component, e.Value)
}

func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

func isContractViolation(v any) bool {
	err, ok := v.(error)
	if !ok {
		return false
	}
	return errors.Is(err, ErrInvalidHookCall) || errors.Is(err, ErrHookMismatch)
}
