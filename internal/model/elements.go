package model

import (
	"math"

	"github.com/google/uuid"
)

// Category identifies the host category an element belongs to.
type Category string

const (
	CategoryWalls        Category = "walls"
	CategoryDucts        Category = "ducts"
	CategoryPipes        Category = "pipes"
	CategoryGenericModel Category = "generic_model"
)

// newID returns the short identifier used for every element.
func newID() string {
	return uuid.New().String()[:8]
}

// Level is a named horizontal reference plane.
type Level struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Elevation float64 `json:"elevation"`
}

func NewLevel(name string, elevation float64) Level {
	return Level{ID: newID(), Name: name, Elevation: elevation}
}

// Wall is a straight vertical wall. Its solid is the box swept from the
// baseline: Thickness across, Height upward from the level elevation plus
// BaseOffset.
type Wall struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	LevelID    string  `json:"level_id"`
	Start      Point2D `json:"start"`
	End        Point2D `json:"end"`
	Thickness  float64 `json:"thickness"`
	BaseOffset float64 `json:"base_offset"`
	Height     float64 `json:"height"`
}

func NewWall(name, levelID string, start, end Point2D, thickness, height float64) Wall {
	return Wall{
		ID:        newID(),
		Name:      name,
		LevelID:   levelID,
		Start:     start,
		End:       end,
		Thickness: thickness,
		Height:    height,
	}
}

// Length returns the baseline length.
func (w Wall) Length() float64 {
	return math.Hypot(w.End.X-w.Start.X, w.End.Y-w.Start.Y)
}

// CurveKind is the geometric type of an element's location curve.
type CurveKind string

const (
	CurveLine CurveKind = "line"
	CurveArc  CurveKind = "arc"
)

// Curve is the location curve of a run. Only lines carry enough data to be
// scanned; arcs are kept so enumerators can report what they skipped.
type Curve struct {
	Kind  CurveKind `json:"kind"`
	Start Point3D   `json:"start"`
	End   Point3D   `json:"end"`
}

// Profile is the declared cross-section shape of a duct or pipe.
type Profile string

const (
	ProfileUnknown     Profile = ""
	ProfileRound       Profile = "round"
	ProfileRectangular Profile = "rectangular"
)

// MEPCurve is a duct or pipe element as stored in the companion model.
// Diameter is only meaningful for round profiles, Width and Height only for
// rectangular ones.
type MEPCurve struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Profile  Profile  `json:"profile"`
	Diameter float64  `json:"diameter,omitempty"`
	Width    float64  `json:"width,omitempty"`
	Height   float64  `json:"height,omitempty"`
	Curve    Curve    `json:"curve"`
}

// NewMEPCurve creates a straight duct or pipe with an undeclared profile.
func NewMEPCurve(name string, category Category, start, end Point3D) MEPCurve {
	return MEPCurve{
		ID:       newID(),
		Name:     name,
		Category: category,
		Curve:    Curve{Kind: CurveLine, Start: start, End: end},
	}
}

// NewPipe creates a round pipe along a straight line.
func NewPipe(name string, start, end Point3D, diameter float64) MEPCurve {
	return MEPCurve{
		ID:       newID(),
		Name:     name,
		Category: CategoryPipes,
		Profile:  ProfileRound,
		Diameter: diameter,
		Curve:    Curve{Kind: CurveLine, Start: start, End: end},
	}
}

// NewDuct creates a rectangular duct along a straight line.
func NewDuct(name string, start, end Point3D, width, height float64) MEPCurve {
	return MEPCurve{
		ID:       newID(),
		Name:     name,
		Category: CategoryDucts,
		Profile:  ProfileRectangular,
		Width:    width,
		Height:   height,
		Curve:    Curve{Kind: CurveLine, Start: start, End: end},
	}
}

// OpeningTemplate is a loadable parametric type (family symbol) that
// openings are instantiated from.
type OpeningTemplate struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Family     string   `json:"family"`
	Category   Category `json:"category"`
	Active     bool     `json:"active"`
	Parameters []string `json:"parameters"`
}

func NewOpeningTemplate(family, name string, parameters ...string) OpeningTemplate {
	return OpeningTemplate{
		ID:         newID(),
		Name:       name,
		Family:     family,
		Category:   CategoryGenericModel,
		Parameters: parameters,
	}
}

// HasParameter reports whether the template declares the named parameter.
func (t OpeningTemplate) HasParameter(name string) bool {
	for _, p := range t.Parameters {
		if p == name {
			return true
		}
	}
	return false
}

// View3D is a 3D view of a document. Ray casting only sees what the view
// shows: hidden elements and anything outside an active section box are
// invisible.
type View3D struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	IsTemplate     bool     `json:"is_template"`
	SectionBox     *Box3D   `json:"section_box,omitempty"`
	HiddenElements []string `json:"hidden_elements,omitempty"`
}

func NewView3D(name string) View3D {
	return View3D{ID: newID(), Name: name}
}

// Hides reports whether the element is hidden in the view.
func (v View3D) Hides(id string) bool {
	for _, h := range v.HiddenElements {
		if h == id {
			return true
		}
	}
	return false
}
