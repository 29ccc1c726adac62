package engine

import (
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/piwi3910/HoleCut/internal/model"
)

// RunDescriptor is the parametric view of a duct or pipe that the
// cross-section resolver reads.
type RunDescriptor interface {
	ID() string
	Name() string
	Category() model.Category
	Profile() model.Profile
	Centerline() (start, end r3.Vec)
	// Diameter fails with an error matching ErrNoDiameter when the element
	// has no diameter.
	Diameter() (float64, error)
	Width() (float64, error)
	Height() (float64, error)
}

// RunEnumerator lists the straight ducts and pipes of a design model.
type RunEnumerator interface {
	Title() string
	Runs() ([]RunDescriptor, error)
}

// HitTester casts a ray against walls. Hits are ordered by ascending
// proximity measured from origin.
type HitTester interface {
	Find(origin, direction r3.Vec) ([]model.Hit, error)
}

// Template is a parametric opening type. Activate must be called inside an
// open edit scope and is a no-op on an active template.
type Template interface {
	Name() string
	IsActive() bool
	Activate() error
}

// TemplateLibrary resolves the opening template by name.
type TemplateLibrary interface {
	OpeningTemplate(match func(name string) bool) (Template, error)
}

// SpatialIndexProvider builds the hit tester from a non-template 3D view.
type SpatialIndexProvider interface {
	HitTester() (HitTester, error)
}

// ElementLookup resolves element references of the target model.
type ElementLookup interface {
	Wall(id string) (model.Wall, error)
	Level(id string) (model.Level, error)
}

// TargetModel is the design model that receives the openings.
type TargetModel interface {
	Title() string
	TemplateLibrary
	SpatialIndexProvider
	ElementLookup
	Begin(name string) (EditScope, error)
}

// ModelProvider resolves the companion and target design models.
type ModelProvider interface {
	Companion(match func(title string) bool) (RunEnumerator, error)
	Target() (TargetModel, error)
}

// EditScope is an atomic unit of model mutation.
type EditScope interface {
	NewInstance(tpl Template, position r3.Vec, wallID, levelID string) (Instance, error)
	Savepoint() (Savepoint, error)
	Commit() error
	RollBack() error
}

// Savepoint is a nested recoverable unit inside an edit scope.
type Savepoint interface {
	Release() error
	RollBack() error
}

// Instance is a placed parametric element.
type Instance interface {
	ID() string
	SetParameter(name string, value float64) error
}

// Contains returns a matcher reporting whether a name contains substr.
func Contains(substr string) func(string) bool {
	return func(s string) bool {
		return strings.Contains(s, substr)
	}
}
