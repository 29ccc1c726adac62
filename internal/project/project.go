package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/HoleCut/internal/model"
)

// FileExtension is the extension of project files.
const FileExtension = ".holecut"

// Save writes a project file.
func Save(path string, p model.Project) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}
	return nil
}

// Load reads a project file. Missing settings fields fall back to
// DefaultSettings.
func Load(path string) (model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Project{}, fmt.Errorf("failed to read project file: %w", err)
	}
	p := model.NewProject()
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Project{}, fmt.Errorf("failed to parse project file: %w", err)
	}
	if p.Documents == nil {
		p.Documents = []model.DocumentData{}
	}
	if p.Target != "" && p.Document(p.Target) == nil {
		return model.Project{}, fmt.Errorf("invalid project file: target %q is not among its documents", p.Target)
	}
	return p, nil
}
