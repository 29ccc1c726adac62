package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/piwi3910/HoleCut/internal/model"
)

// DefaultTemplatePath returns the default file path of the opening template
// library, ~/.holecut/templates.json.
func DefaultTemplatePath() string {
	return filepath.Join(DefaultConfigDir(), "templates.json")
}

// BuiltinTemplates is the library used when none has been saved: one
// rectangular wall opening with width and height parameters.
func BuiltinTemplates(widthParam, heightParam string) []model.OpeningTemplate {
	return []model.OpeningTemplate{
		model.NewOpeningTemplate("Отверстие в стене", "Прямоугольное", widthParam, heightParam),
	}
}

// SaveTemplates writes the opening template library to a JSON file.
func SaveTemplates(path string, templates []model.OpeningTemplate) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(templates, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadTemplates reads the opening template library. If the file does not
// exist, it returns an empty library.
func LoadTemplates(path string) ([]model.OpeningTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.OpeningTemplate{}, nil
		}
		return nil, err
	}
	var templates []model.OpeningTemplate
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, err
	}
	if templates == nil {
		templates = []model.OpeningTemplate{}
	}
	for i := range templates {
		if templates[i].Category == "" {
			templates[i].Category = model.CategoryGenericModel
		}
		// Activation belongs to a document, not to the library.
		templates[i].Active = false
	}
	return templates, nil
}
