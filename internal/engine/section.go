package engine

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/piwi3910/HoleCut/internal/model"
)

// ResolveCrossSection reads the run's transverse shape. A declared round or
// rectangular profile picks the variant directly. An undeclared profile is
// probed: the diameter is tried first, and only ErrNoDiameter falls back to
// width and height.
func ResolveCrossSection(d RunDescriptor) (model.CrossSection, error) {
	switch d.Profile() {
	case model.ProfileRound:
		return circular(d)
	case model.ProfileRectangular:
		return rectangular(d)
	}

	cs, err := circular(d)
	if errors.Is(err, ErrNoDiameter) {
		return rectangular(d)
	}
	return cs, err
}

func circular(d RunDescriptor) (model.CrossSection, error) {
	dia, err := d.Diameter()
	if err != nil {
		return model.CrossSection{}, err
	}
	if err := checkDimension("diameter", dia); err != nil {
		return model.CrossSection{}, err
	}
	return model.Circular(dia), nil
}

func rectangular(d RunDescriptor) (model.CrossSection, error) {
	w, err := d.Width()
	if err != nil {
		return model.CrossSection{}, err
	}
	h, err := d.Height()
	if err != nil {
		return model.CrossSection{}, err
	}
	if err := checkDimension("width", w); err != nil {
		return model.CrossSection{}, err
	}
	if err := checkDimension("height", h); err != nil {
		return model.CrossSection{}, err
	}
	return model.Rectangular(w, h), nil
}

func checkDimension(name string, v float64) error {
	if !model.IsFinite(v) || v <= 0 {
		return fmt.Errorf("%w: %s %g", ErrInvalidSection, name, v)
	}
	return nil
}

// BuildRun snapshots a descriptor into a Run: origin at the centerline start,
// unit direction towards its end, and the resolved cross-section.
func BuildRun(d RunDescriptor) (model.Run, error) {
	start, end := d.Centerline()
	axis := r3.Sub(end, start)
	length := r3.Norm(axis)
	if length <= 0 || !model.IsFinite(length) {
		return model.Run{}, fmt.Errorf("%w: %s has a zero-length centerline", ErrInvalidRun, d.ID())
	}

	cs, err := ResolveCrossSection(d)
	if err != nil {
		return model.Run{}, fmt.Errorf("failed to resolve cross-section of %s: %w", d.ID(), err)
	}

	return model.Run{
		ID:        d.ID(),
		Name:      d.Name(),
		Category:  d.Category(),
		Origin:    start,
		Direction: r3.Scale(1/length, axis),
		Length:    length,
		Section:   cs,
	}, nil
}
