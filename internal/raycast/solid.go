package raycast

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/piwi3910/HoleCut/internal/model"
)

// wallSolid is a wall swept into an oriented box. Local axes: u runs along
// the baseline from Start, n is the horizontal normal, z is world up.
type wallSolid struct {
	wall   model.Wall
	origin r3.Vec
	u, n   r3.Vec
	length float64
	half   float64
	zMin   float64
	zMax   float64
	box    model.Box3D
	bounds rtreego.Rect
}

func newWallSolid(w model.Wall, elevation float64) (*wallSolid, bool) {
	length := w.Length()
	if length < eps || w.Thickness <= 0 || w.Height <= 0 {
		return nil, false
	}
	u := r3.Vec{X: (w.End.X - w.Start.X) / length, Y: (w.End.Y - w.Start.Y) / length}
	n := r3.Vec{X: -u.Y, Y: u.X}
	zMin := elevation + w.BaseOffset
	s := &wallSolid{
		wall:   w,
		origin: r3.Vec{X: w.Start.X, Y: w.Start.Y, Z: zMin},
		u:      u,
		n:      n,
		length: length,
		half:   w.Thickness / 2,
		zMin:   zMin,
		zMax:   zMin + w.Height,
	}

	base := r3.Vec{X: w.Start.X, Y: w.Start.Y}
	corners := []r3.Vec{
		r3.Add(base, r3.Scale(s.half, n)),
		r3.Sub(base, r3.Scale(s.half, n)),
		r3.Add(r3.Add(base, r3.Scale(length, u)), r3.Scale(s.half, n)),
		r3.Sub(r3.Add(base, r3.Scale(length, u)), r3.Scale(s.half, n)),
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		minX, maxX = math.Min(minX, c.X), math.Max(maxX, c.X)
		minY, maxY = math.Min(minY, c.Y), math.Max(maxY, c.Y)
	}
	s.box = model.Box3D{
		Min: model.Point3D{X: minX, Y: minY, Z: s.zMin},
		Max: model.Point3D{X: maxX, Y: maxY, Z: s.zMax},
	}
	rect, err := rtreego.NewRect(
		rtreego.Point{minX - eps, minY - eps, s.zMin - eps},
		[]float64{maxX - minX + 2*eps, maxY - minY + 2*eps, s.zMax - s.zMin + 2*eps},
	)
	if err != nil {
		return nil, false
	}
	s.bounds = rect
	return s, true
}

// Bounds implements rtreego.Spatial.
func (s *wallSolid) Bounds() rtreego.Rect {
	return s.bounds
}

// intersect returns the distance along the unit direction d at which the
// ray from o enters the solid, or 0 when o is already inside.
func (s *wallSolid) intersect(o, d r3.Vec) (float64, bool) {
	rel := r3.Sub(o, s.origin)
	tmin, tmax := math.Inf(-1), math.Inf(1)
	var ok bool

	if tmin, tmax, ok = slab(r3.Dot(rel, s.u), r3.Dot(d, s.u), -eps, s.length+eps, tmin, tmax); !ok {
		return 0, false
	}
	if tmin, tmax, ok = slab(r3.Dot(rel, s.n), r3.Dot(d, s.n), -s.half-eps, s.half+eps, tmin, tmax); !ok {
		return 0, false
	}
	if tmin, tmax, ok = slab(o.Z, d.Z, s.zMin-eps, s.zMax+eps, tmin, tmax); !ok {
		return 0, false
	}
	if tmax < 0 {
		return 0, false
	}
	return math.Max(tmin, 0), true
}
