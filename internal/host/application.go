// Package host is an in-process design-model host: open documents with
// walls, levels, ducts, pipes and opening templates, atomic edit scopes and
// ray casting through a 3D view.
package host

import (
	"fmt"
	"sync"

	"github.com/piwi3910/HoleCut/internal/engine"
	"github.com/piwi3910/HoleCut/internal/model"
)

// Application holds the open documents. The active document is the target
// of placement batches.
type Application struct {
	mu     sync.RWMutex
	docs   []*Document
	active *Document
}

func NewApplication() *Application {
	return &Application{}
}

// Open adds a document. The first opened document becomes active.
func (a *Application) Open(data model.DocumentData) *Document {
	doc := NewDocument(data)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.docs = append(a.docs, doc)
	if a.active == nil {
		a.active = doc
	}
	return doc
}

// OpenProject opens every document of p and activates p.Target.
func (a *Application) OpenProject(p model.Project) error {
	for _, d := range p.Documents {
		a.Open(d)
	}
	if p.Target == "" {
		return nil
	}
	return a.Activate(p.Target)
}

// Activate makes the titled document the target.
func (a *Application) Activate(title string) error {
	doc, err := a.Document(title)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.active = doc
	a.mu.Unlock()
	return nil
}

// Document returns the first open document with the given title.
func (a *Application) Document(title string) (*Document, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, d := range a.docs {
		if d.Title() == title {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrDocumentNotFound, title)
}

func (a *Application) Documents() []*Document {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]*Document(nil), a.docs...)
}

// Active returns the target document.
func (a *Application) Active() (*Document, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.active == nil {
		return nil, ErrNoActiveDocument
	}
	return a.active, nil
}

// Companion returns the first open document, in open order, whose title
// satisfies match. The active document is a candidate too.
func (a *Application) Companion(match func(string) bool) (engine.RunEnumerator, error) {
	for _, d := range a.Documents() {
		if match(d.Title()) {
			return d, nil
		}
	}
	return nil, ErrCompanionNotFound
}

func (a *Application) Target() (engine.TargetModel, error) {
	return a.Active()
}

// Snapshot captures the open documents as a project.
func (a *Application) Snapshot(name string, settings model.Settings) model.Project {
	p := model.NewProject()
	p.Name = name
	p.Settings = settings
	for _, d := range a.Documents() {
		p.Documents = append(p.Documents, d.Data())
	}
	if active, err := a.Active(); err == nil {
		p.Target = active.Title()
	}
	return p
}
