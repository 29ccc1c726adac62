package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/HoleCut/internal/model"
)

// DXFUnits is the number of drawing units written per model unit
// (millimetres for models in metres).
const DXFUnits = 1000.0

// Layer suffixes of the exported plan. Each level gets "<level>-WALLS" and
// "<level>-OPENINGS".
const (
	LayerSuffixWalls    = "-WALLS"
	LayerSuffixOpenings = "-OPENINGS"
)

var layerUnsafe = regexp.MustCompile(`[<>/\\":;?*|=,]`)

// LayerName turns a level name into a DXF-safe layer prefix.
func LayerName(level string) string {
	name := strings.ToUpper(strings.TrimSpace(layerUnsafe.ReplaceAllString(level, "_")))
	if name == "" {
		return "LEVEL"
	}
	return name
}

// ExportDXF writes a plan of doc with walls outlined and opening footprints
// drawn through their host walls, one layer pair per level. Lines sit at
// the level elevation.
func ExportDXF(path string, doc model.DocumentData, settings model.Settings) error {
	rows := BuildSchedule(doc, settings)
	levels := groupByLevel(doc, rows)
	if len(levels) == 0 {
		return fmt.Errorf("nothing to export: no walls or openings")
	}

	d := dxf.NewDrawing()
	for _, level := range levels {
		z := level.Elevation * DXFUnits
		prefix := LayerName(level.Name)

		walls := map[string]*model.Wall{}
		if len(level.Walls) > 0 {
			if _, err := d.AddLayer(prefix+LayerSuffixWalls, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
				return fmt.Errorf("failed to add layer for %s: %w", level.Name, err)
			}
			for i := range level.Walls {
				w := &level.Walls[i]
				walls[w.ID] = w
				if err := closedOutline(d, wallOutline(*w), z); err != nil {
					return fmt.Errorf("failed to draw wall %s: %w", w.Name, err)
				}
			}
		}

		if len(level.Openings) > 0 {
			if _, err := d.AddLayer(prefix+LayerSuffixOpenings, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
				return fmt.Errorf("failed to add layer for %s: %w", level.Name, err)
			}
			for _, o := range level.Openings {
				if err := closedOutline(d, footprint(o.Position, o.Width, walls[o.WallID]), z); err != nil {
					return fmt.Errorf("failed to draw opening %s: %w", o.Mark, err)
				}
			}
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save DXF: %w", err)
	}
	return nil
}

// closedOutline draws the four edges of a quadrilateral on the current layer.
func closedOutline(d *drawing.Drawing, corners [4]model.Point2D, z float64) error {
	for i := range corners {
		a, b := corners[i], corners[(i+1)%len(corners)]
		if _, err := d.Line(a.X*DXFUnits, a.Y*DXFUnits, z, b.X*DXFUnits, b.Y*DXFUnits, z); err != nil {
			return err
		}
	}
	return nil
}
