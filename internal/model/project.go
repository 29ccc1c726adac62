package model

// DocumentData is the serializable content of one design model.
type DocumentData struct {
	Title     string            `json:"title"`
	Levels    []Level           `json:"levels"`
	Walls     []Wall            `json:"walls"`
	Curves    []MEPCurve        `json:"curves"`
	Templates []OpeningTemplate `json:"templates"`
	Views     []View3D          `json:"views"`
	Openings  []Opening         `json:"openings"`
}

func NewDocumentData(title string) DocumentData {
	return DocumentData{
		Title:     title,
		Levels:    []Level{},
		Walls:     []Wall{},
		Curves:    []MEPCurve{},
		Templates: []OpeningTemplate{},
		Views:     []View3D{},
		Openings:  []Opening{},
	}
}

// LevelByID returns the level with the given ID, or nil.
func (d *DocumentData) LevelByID(id string) *Level {
	for i := range d.Levels {
		if d.Levels[i].ID == id {
			return &d.Levels[i]
		}
	}
	return nil
}

// WallByID returns the wall with the given ID, or nil.
func (d *DocumentData) WallByID(id string) *Wall {
	for i := range d.Walls {
		if d.Walls[i].ID == id {
			return &d.Walls[i]
		}
	}
	return nil
}

// Project ties the open documents together for save/load.
type Project struct {
	Name      string         `json:"name"`
	Target    string         `json:"target"` // Title of the document receiving openings
	Documents []DocumentData `json:"documents"`
	Settings  Settings       `json:"settings"`
}

func NewProject() Project {
	return Project{
		Name:      "Untitled",
		Documents: []DocumentData{},
		Settings:  DefaultSettings(),
	}
}

// Document returns the document with the given title, or nil.
func (p *Project) Document(title string) *DocumentData {
	for i := range p.Documents {
		if p.Documents[i].Title == title {
			return &p.Documents[i]
		}
	}
	return nil
}
