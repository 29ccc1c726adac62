// Package export writes placed openings to PDF drawings, QR-coded tags,
// Excel schedules and DXF plans.
package export

import (
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/HoleCut/internal/model"
)

// ScheduleRow is one opening as listed in schedules, tags and plans.
type ScheduleRow struct {
	Mark      string
	OpeningID string
	Template  string
	WallID    string
	Wall      string
	LevelID   string
	Level     string
	Position  model.Point3D
	Width     float64
	Height    float64
}

// BuildSchedule lists the openings of doc in placement order. Marks are
// numbered O-001, O-002, ... in that order.
func BuildSchedule(doc model.DocumentData, settings model.Settings) []ScheduleRow {
	templates := make(map[string]string, len(doc.Templates))
	for _, t := range doc.Templates {
		templates[t.ID] = t.Family + ": " + t.Name
	}

	rows := make([]ScheduleRow, 0, len(doc.Openings))
	for i, o := range doc.Openings {
		w, h := o.Size(settings.WidthParameter, settings.HeightParameter)
		row := ScheduleRow{
			Mark:      fmt.Sprintf("O-%03d", i+1),
			OpeningID: o.ID,
			Template:  o.Template,
			WallID:    o.HostWallID,
			Wall:      o.HostWallID,
			LevelID:   o.LevelID,
			Level:     o.LevelID,
			Position:  o.Position,
			Width:     w,
			Height:    h,
		}
		if name, ok := templates[o.Template]; ok {
			row.Template = name
		}
		if wall := doc.WallByID(o.HostWallID); wall != nil {
			row.Wall = wall.Name
		}
		if level := doc.LevelByID(o.LevelID); level != nil {
			row.Level = level.Name
		}
		rows = append(rows, row)
	}
	return rows
}

// planLevel groups what one plan page or layer shows.
type planLevel struct {
	ID        string
	Name      string
	Elevation float64
	Walls     []model.Wall
	Openings  []ScheduleRow
}

// groupByLevel returns the levels that carry walls or openings, lowest
// first. Openings on a level the document does not define get their own
// group at the end, named by the level ID.
func groupByLevel(doc model.DocumentData, rows []ScheduleRow) []planLevel {
	index := map[string]int{}
	var levels []planLevel
	sorted := append([]model.Level(nil), doc.Levels...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Elevation < sorted[j].Elevation })
	for _, l := range sorted {
		index[l.ID] = len(levels)
		levels = append(levels, planLevel{ID: l.ID, Name: l.Name, Elevation: l.Elevation})
	}

	for _, w := range doc.Walls {
		if i, ok := index[w.LevelID]; ok {
			levels[i].Walls = append(levels[i].Walls, w)
		}
	}
	for _, r := range rows {
		i, ok := index[r.LevelID]
		if !ok {
			i = len(levels)
			index[r.LevelID] = i
			levels = append(levels, planLevel{ID: r.LevelID, Name: r.LevelID})
		}
		levels[i].Openings = append(levels[i].Openings, r)
	}

	out := levels[:0]
	for _, l := range levels {
		if len(l.Walls) > 0 || len(l.Openings) > 0 {
			out = append(out, l)
		}
	}
	return out
}

// footprint returns the plan corners of a w-wide opening centred on p
// through the wall, or an axis-aligned square when the wall is unknown.
func footprint(p model.Point3D, w float64, wall *model.Wall) [4]model.Point2D {
	ux, uy, depth := 1.0, 0.0, w
	if wall != nil {
		if l := wall.Length(); l > 0 {
			ux, uy = (wall.End.X-wall.Start.X)/l, (wall.End.Y-wall.Start.Y)/l
			depth = wall.Thickness
		}
	}
	nx, ny := -uy, ux
	hw, hd := w/2, depth/2
	return [4]model.Point2D{
		{X: p.X - ux*hw - nx*hd, Y: p.Y - uy*hw - ny*hd},
		{X: p.X + ux*hw - nx*hd, Y: p.Y + uy*hw - ny*hd},
		{X: p.X + ux*hw + nx*hd, Y: p.Y + uy*hw + ny*hd},
		{X: p.X - ux*hw + nx*hd, Y: p.Y - uy*hw + ny*hd},
	}
}

// wallOutline returns the plan corners of a wall's footprint.
func wallOutline(w model.Wall) [4]model.Point2D {
	l := w.Length()
	if l == 0 {
		return [4]model.Point2D{w.Start, w.Start, w.End, w.End}
	}
	nx, ny := -(w.End.Y-w.Start.Y)/l*w.Thickness/2, (w.End.X-w.Start.X)/l*w.Thickness/2
	return [4]model.Point2D{
		{X: w.Start.X - nx, Y: w.Start.Y - ny},
		{X: w.End.X - nx, Y: w.End.Y - ny},
		{X: w.End.X + nx, Y: w.End.Y + ny},
		{X: w.Start.X + nx, Y: w.Start.Y + ny},
	}
}

// planBounds returns the plan extent of a level's walls and openings.
func planBounds(l planLevel) (lo, hi model.Point2D) {
	lo = model.Point2D{X: math.Inf(1), Y: math.Inf(1)}
	hi = model.Point2D{X: math.Inf(-1), Y: math.Inf(-1)}
	grow := func(p model.Point2D) {
		lo.X, lo.Y = math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)
		hi.X, hi.Y = math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)
	}
	for _, w := range l.Walls {
		for _, c := range wallOutline(w) {
			grow(c)
		}
	}
	for _, o := range l.Openings {
		grow(model.Point2D{X: o.Position.X - o.Width/2, Y: o.Position.Y - o.Width/2})
		grow(model.Point2D{X: o.Position.X + o.Width/2, Y: o.Position.Y + o.Width/2})
	}
	return lo, hi
}

// countFailures sums failures per stage.
func countFailures(failures []model.HitFailure) map[model.FailureStage]int {
	out := map[model.FailureStage]int{}
	for _, f := range failures {
		out[f.Stage]++
	}
	return out
}
