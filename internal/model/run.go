package model

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// SectionShape tags which variant a CrossSection holds.
type SectionShape int

const (
	SectionCircular SectionShape = iota
	SectionRectangular
)

func (s SectionShape) String() string {
	switch s {
	case SectionCircular:
		return "Circular"
	case SectionRectangular:
		return "Rectangular"
	default:
		return fmt.Sprintf("SectionShape(%d)", int(s))
	}
}

// CrossSection is the transverse shape of a run: either Circular{Diameter}
// or Rectangular{Width, Height}. Use the constructors; the zero value is a
// circle of diameter 0.
type CrossSection struct {
	Shape    SectionShape `json:"shape"`
	Diameter float64      `json:"diameter,omitempty"`
	Width    float64      `json:"width,omitempty"`
	Height   float64      `json:"height,omitempty"`
}

func Circular(diameter float64) CrossSection {
	return CrossSection{Shape: SectionCircular, Diameter: diameter}
}

func Rectangular(width, height float64) CrossSection {
	return CrossSection{Shape: SectionRectangular, Width: width, Height: height}
}

func (c CrossSection) String() string {
	if c.Shape == SectionCircular {
		return fmt.Sprintf("Circular{d=%g}", c.Diameter)
	}
	return fmt.Sprintf("Rectangular{%gx%g}", c.Width, c.Height)
}

// Run is a read-only snapshot of a straight duct or pipe segment.
// Direction has unit length and Length is positive.
type Run struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Category  Category     `json:"category"`
	Origin    r3.Vec       `json:"origin"`
	Direction r3.Vec       `json:"direction"`
	Length    float64      `json:"length"`
	Section   CrossSection `json:"section"`
}

// PointAt returns origin + direction*distance.
func (r Run) PointAt(distance float64) r3.Vec {
	return r3.Add(r.Origin, r3.Scale(distance, r.Direction))
}

// Hit is one ray/wall intersection along a run, Proximity measured from the
// run origin.
type Hit struct {
	WallID    string  `json:"wall_id"`
	Proximity float64 `json:"proximity"`
}
