package host

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/piwi3910/HoleCut/internal/engine"
	"github.com/piwi3910/HoleCut/internal/model"
)

// Descriptor exposes a duct or pipe as an engine.RunDescriptor.
type Descriptor struct {
	curve model.MEPCurve
}

func NewDescriptor(c model.MEPCurve) *Descriptor {
	return &Descriptor{curve: c}
}

func (d *Descriptor) ID() string               { return d.curve.ID }
func (d *Descriptor) Name() string             { return d.curve.Name }
func (d *Descriptor) Category() model.Category { return d.curve.Category }
func (d *Descriptor) Profile() model.Profile   { return d.curve.Profile }

func (d *Descriptor) Centerline() (start, end r3.Vec) {
	return d.curve.Curve.Start.Vec(), d.curve.Curve.End.Vec()
}

// Diameter fails with engine.ErrNoDiameter for rectangular elements and for
// undeclared profiles without a stored diameter.
func (d *Descriptor) Diameter() (float64, error) {
	switch {
	case d.curve.Profile == model.ProfileRectangular,
		d.curve.Profile == model.ProfileUnknown && d.curve.Diameter == 0:
		return 0, fmt.Errorf("%w: %s", engine.ErrNoDiameter, d.curve.ID)
	}
	return d.curve.Diameter, nil
}

func (d *Descriptor) Width() (float64, error) {
	if d.curve.Profile == model.ProfileRound {
		return 0, fmt.Errorf("%w: %s has no width", ErrNotDimensioned, d.curve.ID)
	}
	return d.curve.Width, nil
}

func (d *Descriptor) Height() (float64, error) {
	if d.curve.Profile == model.ProfileRound {
		return 0, fmt.Errorf("%w: %s has no height", ErrNotDimensioned, d.curve.ID)
	}
	return d.curve.Height, nil
}
