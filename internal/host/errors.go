package host

import "errors"

var (
	ErrCompanionNotFound = errors.New("no open document matches the companion title")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrNoActiveDocument  = errors.New("no active document")
	ErrNoRuns            = errors.New("document has no straight ducts or pipes")
	ErrTemplateNotFound  = errors.New("no generic model template matches")
	ErrNoView3D          = errors.New("document has no non-template 3D view")
	ErrScopeOpen         = errors.New("another edit scope is open")
	ErrScopeClosed       = errors.New("edit scope is closed")
	ErrNoScope           = errors.New("operation requires an open edit scope")
	ErrForeignTemplate   = errors.New("template belongs to another document")
	ErrTemplateInactive  = errors.New("template is not active")
	ErrElementNotFound   = errors.New("element not found")
	ErrUnknownParameter  = errors.New("template does not declare parameter")
	ErrInvalidValue      = errors.New("parameter value must be finite and positive")
	ErrNotDimensioned    = errors.New("element has no such dimension")
)
