package model

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Point2D represents a plan coordinate in model units.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Point3D represents a model-space coordinate in model units.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec converts the point to a gonum vector for arithmetic.
func (p Point3D) Vec() r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// PointFromVec converts a gonum vector back to a Point3D.
func PointFromVec(v r3.Vec) Point3D {
	return Point3D{X: v.X, Y: v.Y, Z: v.Z}
}

// Box3D is an axis-aligned box, used for view section boxes.
type Box3D struct {
	Min Point3D `json:"min"`
	Max Point3D `json:"max"`
}

// Contains reports whether p lies inside the box, boundaries included,
// within tolerance tol.
func (b Box3D) Contains(p r3.Vec, tol float64) bool {
	return p.X >= b.Min.X-tol && p.X <= b.Max.X+tol &&
		p.Y >= b.Min.Y-tol && p.Y <= b.Max.Y+tol &&
		p.Z >= b.Min.Z-tol && p.Z <= b.Max.Z+tol
}

// Overlaps reports whether two boxes share any volume or boundary.
func (b Box3D) Overlaps(o Box3D) bool {
	return b.Min.X <= o.Max.X && o.Min.X <= b.Max.X &&
		b.Min.Y <= o.Max.Y && o.Min.Y <= b.Max.Y &&
		b.Min.Z <= o.Max.Z && o.Min.Z <= b.Max.Z
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
