package services

import (
	"errors"
	"fmt"
)

// Base error classes. Every service error wraps exactly one of these so
// handlers can classify with errors.Is regardless of the specific cause.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("requested resource not found")
	ErrConflict          = errors.New("conflict with current state")
	ErrPrecondition      = errors.New("operation precondition not met")
	ErrStorage           = errors.New("storage failure")
	ErrPartialCompletion = errors.New("bye resolution stopped before convergence")
)

// Validation errors.
var (
	ErrNotEnoughParticipants = fmt.Errorf("%w: at least 2 accepted participants required", ErrValidation)
	ErrTooManyParticipants   = fmt.Errorf("%w: accepted participants exceed tournament capacity", ErrValidation)
	ErrNegativeScore         = fmt.Errorf("%w: scores must be non-negative", ErrValidation)
	ErrDrawNotAllowed        = fmt.Errorf("%w: draws are not permitted in elimination matches", ErrValidation)
	ErrWrongParticipantCount = fmt.Errorf("%w: match does not have exactly two participants", ErrValidation)
	ErrUnsupportedBracket    = fmt.Errorf("%w: bracket type is not supported by this operation", ErrValidation)
	ErrInvalidGroupCount     = fmt.Errorf("%w: group count must leave at least 2 participants per group", ErrValidation)
	ErrInvalidQualifierCount = fmt.Errorf("%w: qualifiers per group must be at least 1", ErrValidation)
	ErrInvalidPlacement      = fmt.Errorf("%w: placements must be positive and unique", ErrValidation)
	ErrUnknownParticipant    = fmt.Errorf("%w: entry references a participant outside this tournament", ErrValidation)
)

// Not-found errors.
var (
	ErrTournamentNotFound = fmt.Errorf("%w: tournament", ErrNotFound)
	ErrMatchNotFound      = fmt.Errorf("%w: match", ErrNotFound)
	ErrGroupNotFound      = fmt.Errorf("%w: group", ErrNotFound)
	ErrFixtureNotFound    = fmt.Errorf("%w: fixture", ErrNotFound)
)

// Conflict errors.
var (
	ErrBracketExists           = fmt.Errorf("%w: a bracket already exists for this tournament", ErrConflict)
	ErrGroupsExist             = fmt.Errorf("%w: groups already exist for this tournament", ErrConflict)
	ErrMatchAlreadyScored      = fmt.Errorf("%w: match already has a recorded result", ErrConflict)
	ErrFixtureAlreadyCompleted = fmt.Errorf("%w: fixture result already recorded", ErrConflict)
)

// Precondition errors.
var (
	ErrTournamentNotReady   = fmt.Errorf("%w: tournament status does not allow this operation", ErrPrecondition)
	ErrGroupStageIncomplete = fmt.Errorf("%w: not every round robin fixture is completed", ErrPrecondition)
	ErrNoGroups             = fmt.Errorf("%w: tournament has no round robin groups", ErrPrecondition)
)

// classify wraps an opaque lower-layer error into the storage class unless it
// already carries a classification.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrPrecondition),
		errors.Is(err, ErrPartialCompletion):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
}
