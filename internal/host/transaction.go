package host

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/piwi3910/HoleCut/internal/engine"
	"github.com/piwi3910/HoleCut/internal/model"
)

// Symbol is an opening template of a document.
type Symbol struct {
	doc  *Document
	id   string
	name string
}

func (s *Symbol) ID() string   { return s.id }
func (s *Symbol) Name() string { return s.name }

func (s *Symbol) IsActive() bool {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	t := s.doc.template(s.id)
	return t != nil && t.Active
}

// Activate marks the template usable for placement. It needs an open edit
// scope and is reverted when that scope rolls back.
func (s *Symbol) Activate() error {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	if s.doc.scope == nil {
		return ErrNoScope
	}
	t := s.doc.template(s.id)
	if t == nil {
		return fmt.Errorf("%w: template %s", ErrElementNotFound, s.id)
	}
	if t.Active {
		return nil
	}
	t.Active = true
	s.doc.scope.activated = append(s.doc.scope.activated, s.id)
	return nil
}

// Transaction is the edit scope of a document. Changes are applied in place
// and undone on rollback.
type Transaction struct {
	doc       *Document
	name      string
	base      int
	activated []string
	closed    bool
}

// open reports whether tx is still the document's scope; doc.mu must be held.
func (tx *Transaction) open() error {
	if tx.closed || tx.doc.scope != tx {
		return ErrScopeClosed
	}
	return nil
}

// revert undoes everything past the given marks; doc.mu must be held.
func (tx *Transaction) revert(openings, activated int) {
	tx.doc.data.Openings = tx.doc.data.Openings[:openings]
	for _, id := range tx.activated[activated:] {
		if t := tx.doc.template(id); t != nil {
			t.Active = false
		}
	}
	tx.activated = tx.activated[:activated]
}

func (tx *Transaction) close() {
	tx.closed = true
	tx.doc.scope = nil
}

func (tx *Transaction) NewInstance(tpl engine.Template, position r3.Vec, wallID, levelID string) (engine.Instance, error) {
	sym, ok := tpl.(*Symbol)
	if !ok || sym.doc != tx.doc {
		return nil, ErrForeignTemplate
	}

	tx.doc.mu.Lock()
	defer tx.doc.mu.Unlock()
	if err := tx.open(); err != nil {
		return nil, err
	}
	t := tx.doc.template(sym.id)
	if t == nil {
		return nil, fmt.Errorf("%w: template %s", ErrElementNotFound, sym.id)
	}
	if !t.Active {
		return nil, fmt.Errorf("%w: %s", ErrTemplateInactive, sym.name)
	}
	if tx.doc.data.WallByID(wallID) == nil {
		return nil, fmt.Errorf("%w: wall %s", ErrElementNotFound, wallID)
	}
	if tx.doc.data.LevelByID(levelID) == nil {
		return nil, fmt.Errorf("%w: level %s", ErrElementNotFound, levelID)
	}
	if !model.IsFinite(position.X) || !model.IsFinite(position.Y) || !model.IsFinite(position.Z) {
		return nil, fmt.Errorf("%w: position %v", ErrInvalidValue, position)
	}

	o := model.NewOpening(t.ID, wallID, levelID, model.PointFromVec(position), t.Parameters)
	tx.doc.data.Openings = append(tx.doc.data.Openings, o)
	return &instance{tx: tx, id: o.ID}, nil
}

func (tx *Transaction) Savepoint() (engine.Savepoint, error) {
	tx.doc.mu.Lock()
	defer tx.doc.mu.Unlock()
	if err := tx.open(); err != nil {
		return nil, err
	}
	return &savepoint{tx: tx, openings: len(tx.doc.data.Openings), activated: len(tx.activated)}, nil
}

func (tx *Transaction) Commit() error {
	tx.doc.mu.Lock()
	defer tx.doc.mu.Unlock()
	if err := tx.open(); err != nil {
		return err
	}
	tx.doc.log.Infof("commit %q: %d openings", tx.name, len(tx.doc.data.Openings)-tx.base)
	tx.close()
	return nil
}

func (tx *Transaction) RollBack() error {
	tx.doc.mu.Lock()
	defer tx.doc.mu.Unlock()
	if err := tx.open(); err != nil {
		return err
	}
	tx.revert(tx.base, 0)
	tx.doc.log.Infof("rolled back %q", tx.name)
	tx.close()
	return nil
}

type savepoint struct {
	tx        *Transaction
	openings  int
	activated int
	done      bool
}

func (sp *savepoint) Release() error {
	sp.tx.doc.mu.Lock()
	defer sp.tx.doc.mu.Unlock()
	if sp.done {
		return ErrScopeClosed
	}
	sp.done = true
	return sp.tx.open()
}

func (sp *savepoint) RollBack() error {
	sp.tx.doc.mu.Lock()
	defer sp.tx.doc.mu.Unlock()
	if sp.done {
		return ErrScopeClosed
	}
	sp.done = true
	if err := sp.tx.open(); err != nil {
		return err
	}
	sp.tx.revert(sp.openings, sp.activated)
	return nil
}

type instance struct {
	tx *Transaction
	id string
}

func (i *instance) ID() string { return i.id }

// SetParameter writes a declared, finite, positive parameter value.
func (i *instance) SetParameter(name string, value float64) error {
	doc := i.tx.doc
	doc.mu.Lock()
	defer doc.mu.Unlock()
	if err := i.tx.open(); err != nil {
		return err
	}

	var o *model.Opening
	for k := i.tx.base; k < len(doc.data.Openings); k++ {
		if doc.data.Openings[k].ID == i.id {
			o = &doc.data.Openings[k]
			break
		}
	}
	if o == nil {
		return fmt.Errorf("%w: opening %s", ErrElementNotFound, i.id)
	}
	t := doc.template(o.Template)
	if t == nil || !t.HasParameter(name) {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	if !model.IsFinite(value) || value <= 0 {
		return fmt.Errorf("%w: %s=%g", ErrInvalidValue, name, value)
	}
	o.Parameters[name] = value
	return nil
}
