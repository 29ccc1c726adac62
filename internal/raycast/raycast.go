// Package raycast finds where rays cross walls. Walls are indexed in an
// R-tree built from the walls a 3D view shows, and every candidate returned
// by the index is confirmed with an exact slab test in the wall's own frame.
package raycast

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/piwi3910/HoleCut/internal/model"
)

var (
	// ErrTemplateView is returned when the supplied view is a view template.
	ErrTemplateView = errors.New("view template cannot be used for ray casting")
	// ErrZeroDirection is returned for a ray without direction.
	ErrZeroDirection = errors.New("ray direction has zero length")
)

// eps pads index boxes and absorbs rounding at solid boundaries.
const eps = 1e-9

// Intersector answers wall hit-test queries for one view. It is read-only
// after construction and safe for concurrent use.
type Intersector struct {
	tree    *rtreego.Rtree
	solids  []*wallSolid
	scene   model.Box3D
	section *model.Box3D
}

// New builds the spatial index from the walls visible in view. elevations
// maps level IDs to their elevation; walls on unknown levels sit at 0.
func New(walls []model.Wall, elevations map[string]float64, view model.View3D) (*Intersector, error) {
	if view.IsTemplate {
		return nil, fmt.Errorf("view %q: %w", view.Name, ErrTemplateView)
	}

	ix := &Intersector{section: view.SectionBox}
	var objs []rtreego.Spatial
	for _, w := range walls {
		if view.Hides(w.ID) {
			continue
		}
		s, ok := newWallSolid(w, elevations[w.LevelID])
		if !ok {
			continue
		}
		if view.SectionBox != nil && !view.SectionBox.Overlaps(s.box) {
			continue
		}
		if len(ix.solids) == 0 {
			ix.scene = s.box
		} else {
			ix.scene = union(ix.scene, s.box)
		}
		ix.solids = append(ix.solids, s)
		objs = append(objs, s)
	}
	ix.tree = rtreego.NewTree(3, 2, 8, objs...)
	return ix, nil
}

// Len returns the number of indexed walls.
func (ix *Intersector) Len() int {
	return len(ix.solids)
}

// Find casts a ray from origin along direction and returns one hit per wall
// crossed, ordered by ascending proximity from origin. A wall that already
// contains the origin is reported at proximity 0.
func (ix *Intersector) Find(origin, direction r3.Vec) ([]model.Hit, error) {
	n := r3.Norm(direction)
	if n == 0 || !model.IsFinite(n) {
		return nil, ErrZeroDirection
	}
	dir := r3.Scale(1/n, direction)

	if len(ix.solids) == 0 {
		return nil, nil
	}

	t0, t1, ok := clipToBox(origin, dir, ix.scene)
	if !ok {
		return nil, nil
	}
	query, err := segmentRect(r3.Add(origin, r3.Scale(t0, dir)), r3.Add(origin, r3.Scale(t1, dir)))
	if err != nil {
		return nil, fmt.Errorf("failed to build query box: %w", err)
	}

	var hits []model.Hit
	for _, obj := range ix.tree.SearchIntersect(query) {
		s := obj.(*wallSolid)
		t, ok := s.intersect(origin, dir)
		if !ok {
			continue
		}
		if ix.section != nil && !ix.section.Contains(r3.Add(origin, r3.Scale(t, dir)), eps) {
			continue
		}
		hits = append(hits, model.Hit{WallID: s.wall.ID, Proximity: t})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Proximity == hits[j].Proximity {
			return hits[i].WallID < hits[j].WallID
		}
		return hits[i].Proximity < hits[j].Proximity
	})
	return hits, nil
}

// clipToBox returns the parameter interval, starting no earlier than 0, in
// which the ray lies inside box.
func clipToBox(o, d r3.Vec, box model.Box3D) (t0, t1 float64, ok bool) {
	t0, t1 = 0, math.Inf(1)
	axes := [3][4]float64{
		{o.X, d.X, box.Min.X, box.Max.X},
		{o.Y, d.Y, box.Min.Y, box.Max.Y},
		{o.Z, d.Z, box.Min.Z, box.Max.Z},
	}
	for _, a := range axes {
		if t0, t1, ok = slab(a[0], a[1], a[2]-eps, a[3]+eps, t0, t1); !ok {
			return 0, 0, false
		}
	}
	return t0, t1, true
}

// slab narrows [tmin, tmax] to the part of the ray p + t*dp inside [lo, hi].
func slab(p, dp, lo, hi, tmin, tmax float64) (float64, float64, bool) {
	if math.Abs(dp) < eps {
		if p < lo || p > hi {
			return 0, 0, false
		}
		return tmin, tmax, true
	}
	ta := (lo - p) / dp
	tb := (hi - p) / dp
	if ta > tb {
		ta, tb = tb, ta
	}
	tmin = math.Max(tmin, ta)
	tmax = math.Min(tmax, tb)
	return tmin, tmax, tmin <= tmax
}

// segmentRect returns the padded index box around the segment a-b.
func segmentRect(a, b r3.Vec) (rtreego.Rect, error) {
	lo := rtreego.Point{math.Min(a.X, b.X) - eps, math.Min(a.Y, b.Y) - eps, math.Min(a.Z, b.Z) - eps}
	lengths := []float64{
		math.Abs(a.X-b.X) + 2*eps,
		math.Abs(a.Y-b.Y) + 2*eps,
		math.Abs(a.Z-b.Z) + 2*eps,
	}
	return rtreego.NewRect(lo, lengths)
}

func union(a, b model.Box3D) model.Box3D {
	return model.Box3D{
		Min: model.Point3D{X: math.Min(a.Min.X, b.Min.X), Y: math.Min(a.Min.Y, b.Min.Y), Z: math.Min(a.Min.Z, b.Min.Z)},
		Max: model.Point3D{X: math.Max(a.Max.X, b.Max.X), Y: math.Max(a.Max.Y, b.Max.Y), Z: math.Max(a.Max.Z, b.Max.Z)},
	}
}
