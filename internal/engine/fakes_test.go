package engine

import (
	"errors"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/piwi3910/HoleCut/internal/model"
)

type fakeRun struct {
	id          string
	category    model.Category
	profile     model.Profile
	start, end  r3.Vec
	diameter    float64
	width       float64
	height      float64
	diameterErr error
	widthErr    error
}

func (r *fakeRun) ID() string                      { return r.id }
func (r *fakeRun) Name() string                    { return "run " + r.id }
func (r *fakeRun) Category() model.Category        { return r.category }
func (r *fakeRun) Profile() model.Profile          { return r.profile }
func (r *fakeRun) Centerline() (start, end r3.Vec) { return r.start, r.end }
func (r *fakeRun) Height() (float64, error)        { return r.height, nil }

func (r *fakeRun) Diameter() (float64, error) {
	if r.diameterErr != nil {
		return 0, r.diameterErr
	}
	return r.diameter, nil
}

func (r *fakeRun) Width() (float64, error) {
	if r.widthErr != nil {
		return 0, r.widthErr
	}
	return r.width, nil
}

func pipe(id string, start, end r3.Vec, diameter float64) *fakeRun {
	return &fakeRun{id: id, category: model.CategoryPipes, profile: model.ProfileRound,
		start: start, end: end, diameter: diameter}
}

// duct leaves the profile undeclared so the resolver has to probe.
func duct(id string, start, end r3.Vec, width, height float64) *fakeRun {
	return &fakeRun{id: id, category: model.CategoryDucts, start: start, end: end,
		width: width, height: height, diameterErr: ErrNoDiameter}
}

type fakeTester struct {
	mu    sync.Mutex
	hits  map[r3.Vec][]model.Hit
	errs  map[r3.Vec]error
	calls int
}

func newFakeTester() *fakeTester {
	return &fakeTester{hits: map[r3.Vec][]model.Hit{}, errs: map[r3.Vec]error{}}
}

func (t *fakeTester) Find(origin, direction r3.Vec) ([]model.Hit, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	if err := t.errs[origin]; err != nil {
		return nil, err
	}
	return append([]model.Hit(nil), t.hits[origin]...), nil
}

type fakeTemplate struct {
	name        string
	active      bool
	activations int
	activateErr error
}

func (t *fakeTemplate) Name() string   { return t.name }
func (t *fakeTemplate) IsActive() bool { return t.active }

func (t *fakeTemplate) Activate() error {
	if t.activateErr != nil {
		return t.activateErr
	}
	t.activations++
	t.active = true
	return nil
}

type fakeInstance struct {
	id       string
	wallID   string
	levelID  string
	position r3.Vec
	params   map[string]float64
	order    []string
	failOn   string
}

func (i *fakeInstance) ID() string { return i.id }

func (i *fakeInstance) SetParameter(name string, value float64) error {
	if name == i.failOn {
		return fmt.Errorf("parameter %q is read-only", name)
	}
	i.params[name] = value
	i.order = append(i.order, name)
	return nil
}

type fakeSavepoint struct {
	scope *fakeScope
	mark  int
}

func (s *fakeSavepoint) Release() error { return nil }

func (s *fakeSavepoint) RollBack() error {
	s.scope.pending = s.scope.pending[:s.mark]
	s.scope.target.savepointRollbacks++
	return nil
}

type fakeScope struct {
	target  *fakeTarget
	pending []*fakeInstance
}

func (s *fakeScope) NewInstance(tpl Template, position r3.Vec, wallID, levelID string) (Instance, error) {
	if err := s.target.instanceErr[wallID]; err != nil {
		return nil, err
	}
	s.target.nextID++
	inst := &fakeInstance{
		id:       fmt.Sprintf("op%d", s.target.nextID),
		wallID:   wallID,
		levelID:  levelID,
		position: position,
		params:   map[string]float64{},
		failOn:   s.target.failParam,
	}
	s.pending = append(s.pending, inst)
	return inst, nil
}

func (s *fakeScope) Savepoint() (Savepoint, error) {
	s.target.savepoints++
	return &fakeSavepoint{scope: s, mark: len(s.pending)}, nil
}

func (s *fakeScope) Commit() error {
	if s.target.commitErr != nil {
		return s.target.commitErr
	}
	s.target.committed = append(s.target.committed, s.pending...)
	s.target.commits++
	return nil
}

func (s *fakeScope) RollBack() error {
	s.pending = nil
	s.target.rollbacks++
	return nil
}

type fakeTarget struct {
	title       string
	templates   []*fakeTemplate
	tester      HitTester
	testerErr   error
	walls       map[string]model.Wall
	levels      map[string]model.Level
	instanceErr map[string]error
	failParam   string
	commitErr   error

	begun              int
	commits            int
	rollbacks          int
	savepoints         int
	savepointRollbacks int
	committed          []*fakeInstance
	nextID             int
}

func (t *fakeTarget) Title() string { return t.title }

func (t *fakeTarget) OpeningTemplate(match func(string) bool) (Template, error) {
	for _, tpl := range t.templates {
		if match(tpl.name) {
			return tpl, nil
		}
	}
	return nil, errors.New("no matching template")
}

func (t *fakeTarget) HitTester() (HitTester, error) {
	if t.testerErr != nil {
		return nil, t.testerErr
	}
	return t.tester, nil
}

func (t *fakeTarget) Wall(id string) (model.Wall, error) {
	w, ok := t.walls[id]
	if !ok {
		return model.Wall{}, fmt.Errorf("wall %s not found", id)
	}
	return w, nil
}

func (t *fakeTarget) Level(id string) (model.Level, error) {
	l, ok := t.levels[id]
	if !ok {
		return model.Level{}, fmt.Errorf("level %s not found", id)
	}
	return l, nil
}

func (t *fakeTarget) Begin(name string) (EditScope, error) {
	t.begun++
	return &fakeScope{target: t}, nil
}

type fakeCompanion struct {
	title string
	runs  []RunDescriptor
	err   error
}

func (c *fakeCompanion) Title() string { return c.title }

func (c *fakeCompanion) Runs() ([]RunDescriptor, error) {
	return c.runs, c.err
}

type fakeModels struct {
	companions []*fakeCompanion
	target     *fakeTarget
	targetErr  error
}

func (m *fakeModels) Companion(match func(string) bool) (RunEnumerator, error) {
	for _, c := range m.companions {
		if match(c.title) {
			return c, nil
		}
	}
	return nil, errors.New("no matching document")
}

func (m *fakeModels) Target() (TargetModel, error) {
	if m.targetErr != nil {
		return nil, m.targetErr
	}
	return m.target, nil
}

// fixture is a target with three walls on level L1, an inactive opening
// template and a companion model holding runs.
type fixture struct {
	models    *fakeModels
	target    *fakeTarget
	companion *fakeCompanion
	tester    *fakeTester
	template  *fakeTemplate
}

func newFixture(runs ...RunDescriptor) *fixture {
	tester := newFakeTester()
	tpl := &fakeTemplate{name: "Отверстие в стене прямоугольное"}
	target := &fakeTarget{
		title:     "AR_building",
		templates: []*fakeTemplate{{name: "Door"}, tpl},
		tester:    tester,
		walls: map[string]model.Wall{
			"W1": {ID: "W1", LevelID: "L1"},
			"W2": {ID: "W2", LevelID: "L1"},
			"W3": {ID: "W3", LevelID: "L1"},
		},
		levels:      map[string]model.Level{"L1": {ID: "L1", Name: "Level 1"}},
		instanceErr: map[string]error{},
	}
	companion := &fakeCompanion{title: "Building_ИОС_v2", runs: runs}
	return &fixture{
		models: &fakeModels{
			companions: []*fakeCompanion{{title: "Structure"}, companion},
			target:     target,
		},
		target:    target,
		companion: companion,
		tester:    tester,
		template:  tpl,
	}
}

func testSettings() model.Settings {
	s := model.DefaultSettings()
	s.WidthParameter = "Ширина"
	s.HeightParameter = "Высота"
	return s
}
