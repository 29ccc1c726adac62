package engine

import (
	"errors"
	"fmt"

	"github.com/piwi3910/HoleCut/internal/model"
)

var (
	// ErrNoDiameter is the only descriptor error that makes the resolver
	// fall back to width and height.
	ErrNoDiameter = errors.New("element has no diameter")
	// ErrInvalidSection reports a non-positive or non-finite dimension.
	ErrInvalidSection = errors.New("invalid cross-section")
	// ErrInvalidRun reports a degenerate centerline.
	ErrInvalidRun = errors.New("invalid run")
	// ErrHitOrder reports a hit tester that broke its ordering contract.
	ErrHitOrder = errors.New("hits not in ascending proximity order")
	// ErrUnresolvedLevel reports a wall whose level cannot be found.
	ErrUnresolvedLevel = errors.New("wall level cannot be resolved")
)

// Cause names the precondition that failed.
type Cause string

const (
	CauseCompanion Cause = "companion model not found"
	CauseTarget    Cause = "target model not available"
	CauseTemplate  Cause = "opening template not found"
	CauseRuns      Cause = "no duct or pipe runs found"
	CauseView      Cause = "no 3D view found"
)

// PreconditionError is returned when the batch is cancelled before any edit
// scope is opened.
type PreconditionError struct {
	Cause Cause
	Err   error
}

func (e *PreconditionError) Error() string {
	if e.Err == nil {
		return string(e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Cause, e.Err)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// PlacementError is a fault tied to one run or one of its hits.
type PlacementError struct {
	RunID     string
	WallID    string
	Proximity float64
	Stage     model.FailureStage
	Err       error
}

func (e *PlacementError) Error() string {
	if e.WallID == "" {
		return fmt.Sprintf("run %s (%s): %v", e.RunID, e.Stage, e.Err)
	}
	return fmt.Sprintf("run %s, wall %s at %.4f (%s): %v", e.RunID, e.WallID, e.Proximity, e.Stage, e.Err)
}

func (e *PlacementError) Unwrap() error {
	return e.Err
}

// Failure converts the error into its journal record.
func (e *PlacementError) Failure() model.HitFailure {
	return model.HitFailure{
		RunID:     e.RunID,
		WallID:    e.WallID,
		Proximity: e.Proximity,
		Stage:     e.Stage,
		Reason:    e.Err.Error(),
	}
}
