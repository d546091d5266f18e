package ecs

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrEmptyQuery is returned when a query that has to select entities declares no required attributes.
	ErrEmptyQuery = errors.New("query requires at least one attribute")

	// ErrNoCallbacks is returned when a system is created without a ForEach or Once callback.
	ErrNoCallbacks = errors.New("system needs a ForEach or Once callback")

	// ErrInvalidFrequency is returned for a non-positive or non-finite frequency.
	ErrInvalidFrequency = errors.New("system frequency must be a positive finite number")
)

// UndefinedAttributeError reports access to an attribute type that is not registered on the world.
type UndefinedAttributeError struct {
	Type reflect.Type
	Name string
}

func (e *UndefinedAttributeError) Error() string {
	if e.Type == nil {
		return fmt.Sprintf("undefined attribute '%s'", e.Name)
	}
	return fmt.Sprintf("undefined attribute '%s'", e.Type)
}

// UndefinedResourceError reports access to a resource type that is not registered on the world.
type UndefinedResourceError struct {
	Type reflect.Type
}

func (e *UndefinedResourceError) Error() string {
	return fmt.Sprintf("undefined resource '%s'", e.Type)
}

// DuplicateAttributeError is returned when an attribute type or name is registered twice.
type DuplicateAttributeError struct {
	Type reflect.Type
	Name string
}

func (e *DuplicateAttributeError) Error() string {
	return fmt.Sprintf("attribute '%s' (%s) already registered", e.Name, e.Type)
}

// StaleEntityError reports a write to an entity that is not live.
type StaleEntityError struct {
	Entity EntityId
}

func (e *StaleEntityError) Error() string {
	return fmt.Sprintf("entity %d (index %d, generation %d) is not live",
		e.Entity, e.Entity.Index(), e.Entity.Generation())
}

// UndefinedWorldError is returned by Universe lookups of unknown world names.
type UndefinedWorldError struct {
	Name string
}

func (e *UndefinedWorldError) Error() string {
	return fmt.Sprintf("undefined world '%s'", e.Name)
}

// SystemError wraps a failure raised by a system callback or one of the hooks it triggered.
type SystemError struct {
	System SystemId
	Name   string
	Entity EntityId
	Err    error
}

func (e *SystemError) Error() string {
	if e.Entity != 0 {
		return fmt.Sprintf("system %q (%d) failed on entity %d: %v", e.Name, e.System, e.Entity, e.Err)
	}
	return fmt.Sprintf("system %q (%d) failed: %v", e.Name, e.System, e.Err)
}

func (e *SystemError) Unwrap() error {
	return e.Err
}

// PanicError carries a recovered panic value that was not itself an error.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func recoveredError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &PanicError{Value: r}
}
