package services

import (
	"fmt"

	"github.com/scifair/fairjudge/internal/scoring"
)

// Service errors
var (
	ErrRegistrationClosed  = &ServiceError{Message: "project registration is currently closed"}
	ErrInvalidSection      = &ServiceError{Message: "section must be Part A or Part B & C"}
	ErrInvalidLevel        = &ServiceError{Message: "invalid competition level"}
	ErrDuplicateAssignment = &ServiceError{Message: "judge already has an active assignment for this section"}
	ErrAssignmentCompleted = &ServiceError{Message: "assignment is already completed and cannot be changed"}
	ErrAssignmentArchived  = &ServiceError{Message: "archived assignments cannot be scored"}
	ErrNotCoordinator      = &ServiceError{Message: "judge does not coordinate this category"}
	ErrProjectLocked       = &ServiceError{Message: "project cannot be changed once judging has started"}
	ErrNoTablesSpecified   = &ServiceError{Message: "no tables specified"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// InvalidTableError represents an invalid table name error
type InvalidTableError struct {
	Table string
}

func (e *InvalidTableError) Error() string {
	return fmt.Sprintf("invalid table name: %s", e.Table)
}

// PublishBlockedError is returned when a publish precondition fails. It is a
// recoverable, user-facing condition; the block carries the exact counts and
// tie groups so the frontend can render them.
type PublishBlockedError struct {
	Block scoring.PublishBlock
}

func (e *PublishBlockedError) Error() string {
	return e.Block.Reason()
}
