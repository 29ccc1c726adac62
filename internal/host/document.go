package host

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/piwi3910/HoleCut/internal/config"
	"github.com/piwi3910/HoleCut/internal/engine"
	"github.com/piwi3910/HoleCut/internal/model"
	"github.com/piwi3910/HoleCut/internal/raycast"
)

// Document is an open design model. It is safe for concurrent use; at most
// one edit scope may be open at a time.
type Document struct {
	mu    sync.Mutex
	data  model.DocumentData
	scope *Transaction
	log   *logrus.Entry
}

func NewDocument(data model.DocumentData) *Document {
	return &Document{
		data: cloneData(data),
		log:  config.NamedLogger("host").WithField("doc", data.Title),
	}
}

func (d *Document) Title() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.data.Title
}

// Data returns a copy of the document content.
func (d *Document) Data() model.DocumentData {
	d.mu.Lock()
	defer d.mu.Unlock()
	return cloneData(d.data)
}

func (d *Document) Wall(id string) (model.Wall, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	w := d.data.WallByID(id)
	if w == nil {
		return model.Wall{}, fmt.Errorf("%w: wall %s", ErrElementNotFound, id)
	}
	return *w, nil
}

func (d *Document) Level(id string) (model.Level, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	l := d.data.LevelByID(id)
	if l == nil {
		return model.Level{}, fmt.Errorf("%w: level %s", ErrElementNotFound, id)
	}
	return *l, nil
}

// Runs lists every duct and pipe whose location curve is a line. Curved
// elements are skipped.
func (d *Document) Runs() ([]engine.RunDescriptor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var runs []engine.RunDescriptor
	skipped := 0
	for _, c := range d.data.Curves {
		if c.Category != model.CategoryDucts && c.Category != model.CategoryPipes {
			continue
		}
		if c.Curve.Kind != model.CurveLine {
			skipped++
			continue
		}
		runs = append(runs, NewDescriptor(c))
	}
	if skipped > 0 {
		d.log.Warnf("skipped %d curved ducts/pipes", skipped)
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRuns, d.data.Title)
	}
	return runs, nil
}

// OpeningTemplate returns the first generic-model template whose family name
// satisfies match.
func (d *Document) OpeningTemplate(match func(string) bool) (engine.Template, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range d.data.Templates {
		if t.Category == model.CategoryGenericModel && match(t.Family) {
			return &Symbol{doc: d, id: t.ID, name: t.Family + ": " + t.Name}, nil
		}
	}
	return nil, ErrTemplateNotFound
}

// HitTester indexes the walls visible in the first non-template 3D view.
func (d *Document) HitTester() (engine.HitTester, error) {
	d.mu.Lock()
	var view *model.View3D
	for i := range d.data.Views {
		if !d.data.Views[i].IsTemplate {
			v := d.data.Views[i]
			view = &v
			break
		}
	}
	walls := append([]model.Wall(nil), d.data.Walls...)
	elevations := make(map[string]float64, len(d.data.Levels))
	for _, l := range d.data.Levels {
		elevations[l.ID] = l.Elevation
	}
	d.mu.Unlock()

	if view == nil {
		return nil, ErrNoView3D
	}
	ix, err := raycast.New(walls, elevations, *view)
	if err != nil {
		return nil, fmt.Errorf("failed to index view %q: %w", view.Name, err)
	}
	d.log.Debugf("indexed %d walls from view %q", ix.Len(), view.Name)
	return ix, nil
}

// Begin opens the document's edit scope.
func (d *Document) Begin(name string) (engine.EditScope, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.scope != nil {
		return nil, fmt.Errorf("%w: %q", ErrScopeOpen, d.scope.name)
	}
	d.scope = &Transaction{doc: d, name: name, base: len(d.data.Openings)}
	d.log.Debugf("begin %q", name)
	return d.scope, nil
}

// Openings returns a copy of the placed openings.
func (d *Document) Openings() []model.Opening {
	d.mu.Lock()
	defer d.mu.Unlock()
	return cloneOpenings(d.data.Openings)
}

// template returns the stored template; d.mu must be held.
func (d *Document) template(id string) *model.OpeningTemplate {
	for i := range d.data.Templates {
		if d.data.Templates[i].ID == id {
			return &d.data.Templates[i]
		}
	}
	return nil
}

func cloneData(src model.DocumentData) model.DocumentData {
	dst := src
	dst.Levels = append([]model.Level{}, src.Levels...)
	dst.Walls = append([]model.Wall{}, src.Walls...)
	dst.Curves = append([]model.MEPCurve{}, src.Curves...)
	dst.Templates = make([]model.OpeningTemplate, len(src.Templates))
	for i, t := range src.Templates {
		t.Parameters = append([]string(nil), t.Parameters...)
		dst.Templates[i] = t
	}
	dst.Views = make([]model.View3D, len(src.Views))
	for i, v := range src.Views {
		if v.SectionBox != nil {
			box := *v.SectionBox
			v.SectionBox = &box
		}
		v.HiddenElements = append([]string(nil), v.HiddenElements...)
		dst.Views[i] = v
	}
	dst.Openings = cloneOpenings(src.Openings)
	return dst
}

func cloneOpenings(src []model.Opening) []model.Opening {
	dst := make([]model.Opening, len(src))
	for i, o := range src {
		params := make(map[string]float64, len(o.Parameters))
		for k, v := range o.Parameters {
			params[k] = v
		}
		o.Parameters = params
		dst[i] = o
	}
	return dst
}
