package importer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/HoleCut/internal/model"
)

// Layer name prefixes recognized in plan drawings.
const (
	LayerWall = "WALL"
	LayerPipe = "PIPE"
	LayerDuct = "DUCT"
)

// DXFOptions controls how drawing units become model elements.
type DXFOptions struct {
	LevelName     string
	Elevation     float64 // level elevation, model units
	Scale         float64 // model units per drawing unit
	WallThickness float64 // model units, used when the layer carries none
	WallHeight    float64 // model units
	RunElevation  float64 // absolute Z for runs drawn flat at Z=0, model units
}

// DefaultDXFOptions reads millimetre drawings into metres.
func DefaultDXFOptions() DXFOptions {
	return DXFOptions{
		LevelName:     "Level 1",
		Scale:         0.001,
		WallThickness: 0.2,
		WallHeight:    3.0,
		RunElevation:  2.5,
	}
}

// ImportDXF reads walls and runs from a layered plan drawing.
//
// LINE entities on WALL layers become walls on one new level; a WALL_<mm>
// layer sets the wall thickness. LINE entities on PIPE_D<mm>, DUCT_D<mm> and
// DUCT_<w>x<h> layers become runs with that cross-section. Section sizes are
// in drawing units and scaled like coordinates. ARCs on run layers are kept
// as curved runs, which are never scanned.
func ImportDXF(path string, opts DXFOptions) ImportResult {
	result := ImportResult{}
	if opts.Scale <= 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid scale %g", opts.Scale))
		return result
	}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	level := model.NewLevel(opts.LevelName, opts.Elevation)
	ignored := 0
	for _, ent := range entities {
		layer := layerName(ent)
		switch e := ent.(type) {
		case *entity.Line:
			switch {
			case strings.HasPrefix(layer, LayerWall):
				wall, warning := lineToWall(e, layer, level.ID, opts, len(result.Walls))
				if warning != "" {
					result.Warnings = append(result.Warnings, warning)
				}
				if wall != nil {
					result.Walls = append(result.Walls, *wall)
				}
			case isRunLayer(layer):
				run, err := lineToRun(e, layer, opts, len(result.Curves))
				if err != nil {
					result.Errors = append(result.Errors, err.Error())
					continue
				}
				result.Curves = append(result.Curves, run)
			default:
				ignored++
			}

		case *entity.Arc:
			if !isRunLayer(layer) {
				ignored++
				continue
			}
			run, err := arcToRun(e, layer, opts, len(result.Curves))
			if err != nil {
				result.Errors = append(result.Errors, err.Error())
				continue
			}
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Curved run %q on layer %s is not supported and will not be scanned", run.Name, layer))
			result.Curves = append(result.Curves, run)

		default:
			ignored++
		}
	}

	if ignored > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Ignored %d entities on other layers or of other types", ignored))
	}
	if len(result.Walls) > 0 {
		result.Levels = append(result.Levels, level)
	}
	if len(result.Walls) == 0 && len(result.Curves) == 0 {
		result.Errors = append(result.Errors, "No walls or runs found in DXF file")
	}
	return result
}

func layerName(e entity.Entity) string {
	if l := e.Layer(); l != nil {
		return strings.ToUpper(strings.TrimSpace(l.Name()))
	}
	return ""
}

func isRunLayer(layer string) bool {
	return strings.HasPrefix(layer, LayerPipe) || strings.HasPrefix(layer, LayerDuct)
}

func lineToWall(e *entity.Line, layer, levelID string, opts DXFOptions, n int) (*model.Wall, string) {
	start := model.Point2D{X: e.Start[0] * opts.Scale, Y: e.Start[1] * opts.Scale}
	end := model.Point2D{X: e.End[0] * opts.Scale, Y: e.End[1] * opts.Scale}
	if math.Hypot(end.X-start.X, end.Y-start.Y) < 1e-9 {
		return nil, fmt.Sprintf("Skipped zero-length wall on layer %s", layer)
	}

	thickness := opts.WallThickness
	var warning string
	if suffix, ok := layerSuffix(layer, LayerWall); ok {
		if v, err := strconv.ParseFloat(suffix, 64); err == nil && v > 0 {
			thickness = v * opts.Scale
		} else {
			warning = fmt.Sprintf("Layer %s: cannot read wall thickness, using %g", layer, opts.WallThickness)
		}
	}
	wall := model.NewWall(fmt.Sprintf("Wall %d", n+1), levelID, start, end, thickness, opts.WallHeight)
	return &wall, warning
}

func lineToRun(e *entity.Line, layer string, opts DXFOptions, n int) (model.MEPCurve, error) {
	start := point3D(e.Start, opts)
	end := point3D(e.End, opts)
	if e.Start[2] == 0 && e.End[2] == 0 {
		start.Z, end.Z = opts.RunElevation, opts.RunElevation
	}
	if start == end {
		return model.MEPCurve{}, fmt.Errorf("layer %s: zero-length run", layer)
	}
	run := model.NewMEPCurve(fmt.Sprintf("%s-%d", layer, n+1), "", start, end)
	if err := applyLayerSection(&run, layer, opts.Scale); err != nil {
		return model.MEPCurve{}, err
	}
	return run, nil
}

func arcToRun(e *entity.Arc, layer string, opts DXFOptions, n int) (model.MEPCurve, error) {
	cx, cy := e.Circle.Center[0], e.Circle.Center[1]
	r := e.Circle.Radius
	startRad := e.Angle[0] * math.Pi / 180
	endRad := e.Angle[1] * math.Pi / 180

	z := opts.RunElevation
	if e.Circle.Center[2] != 0 {
		z = e.Circle.Center[2] * opts.Scale
	}
	start := model.Point3D{X: (cx + r*math.Cos(startRad)) * opts.Scale, Y: (cy + r*math.Sin(startRad)) * opts.Scale, Z: z}
	end := model.Point3D{X: (cx + r*math.Cos(endRad)) * opts.Scale, Y: (cy + r*math.Sin(endRad)) * opts.Scale, Z: z}

	run := model.NewMEPCurve(fmt.Sprintf("%s-%d", layer, n+1), "", start, end)
	run.Curve.Kind = model.CurveArc
	if err := applyLayerSection(&run, layer, opts.Scale); err != nil {
		return model.MEPCurve{}, err
	}
	return run, nil
}

func point3D(v []float64, opts DXFOptions) model.Point3D {
	return model.Point3D{X: v[0] * opts.Scale, Y: v[1] * opts.Scale, Z: v[2] * opts.Scale}
}

// layerSuffix returns what follows "<prefix>_" in a layer name.
func layerSuffix(layer, prefix string) (string, bool) {
	rest := strings.TrimPrefix(layer, prefix)
	if !strings.HasPrefix(rest, "_") || len(rest) < 2 {
		return "", false
	}
	return rest[1:], true
}

// applyLayerSection sets category, profile and size from a run layer name:
// PIPE_D200, DUCT_D315 or DUCT_400X300.
func applyLayerSection(run *model.MEPCurve, layer string, scale float64) error {
	prefix := LayerDuct
	run.Category = model.CategoryDucts
	if strings.HasPrefix(layer, LayerPipe) {
		prefix = LayerPipe
		run.Category = model.CategoryPipes
	}

	suffix, ok := layerSuffix(layer, prefix)
	if !ok {
		return fmt.Errorf("layer %s: no cross-section in layer name", layer)
	}
	if strings.HasPrefix(suffix, "D") {
		d, err := strconv.ParseFloat(suffix[1:], 64)
		if err != nil || d <= 0 {
			return fmt.Errorf("layer %s: invalid diameter %q", layer, suffix[1:])
		}
		run.Profile = model.ProfileRound
		run.Diameter = d * scale
		return nil
	}

	parts := strings.Split(suffix, "X")
	if len(parts) != 2 {
		return fmt.Errorf("layer %s: expected D<diameter> or <width>x<height>", layer)
	}
	w, errW := strconv.ParseFloat(parts[0], 64)
	h, errH := strconv.ParseFloat(parts[1], 64)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return fmt.Errorf("layer %s: invalid size %q", layer, suffix)
	}
	run.Profile = model.ProfileRectangular
	run.Width = w * scale
	run.Height = h * scale
	return nil
}
