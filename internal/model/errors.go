package model

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("model: validation failed")
	ErrPlanNotFound = errors.New("model: plan not found")
)

// ValidationError describes a single rejected field of an entity.
type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s %s", e.Entity, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NotFoundError is returned when a plan id is absent from the data at hand.
type NotFoundError struct {
	PlanID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("plan %q not found", e.PlanID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrPlanNotFound
}

func invalid(entity, field, reason string) error {
	return &ValidationError{Entity: entity, Field: field, Reason: reason}
}
