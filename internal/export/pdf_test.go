package export

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/HoleCut/internal/model"
)

func assertNonEmptyFile(t *testing.T, path string, minSize int64) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("file was not created: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("file is empty")
	}
	if info.Size() < minSize {
		t.Errorf("file seems too small: %d bytes", info.Size())
	}
}

func TestExportPDF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openings.pdf")

	err := ExportPDF(path, buildTestDocument(), model.DefaultSettings(), nil)
	if err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	// Two plan pages plus the schedule
	assertNonEmptyFile(t, path, 500)
}

func TestExportPDF_NoOpenings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	doc := buildTestDocument()
	doc.Openings = nil
	if err := ExportPDF(path, doc, model.DefaultSettings(), nil); err == nil {
		t.Fatal("expected error for document without openings, got nil")
	}
}

func TestExportPDF_WithFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failures.pdf")

	failures := []model.HitFailure{
		{RunID: "P1", Stage: model.StageSection, Reason: "no diameter"},
		{RunID: "D1", WallID: "W9", Proximity: 4, Stage: model.StageLevel, Reason: "wall level cannot be resolved"},
	}
	if err := ExportPDF(path, buildTestDocument(), model.DefaultSettings(), failures); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	assertNonEmptyFile(t, path, 500)
}

func TestExportPDF_OrphanOpeningAndSingleWall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orphan.pdf")

	doc := buildTestDocument()
	doc.Walls = doc.Walls[:1]
	doc.Openings[1].HostWallID = "missing"
	doc.Openings[1].LevelID = "missing"
	if err := ExportPDF(path, doc, model.DefaultSettings(), nil); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	assertNonEmptyFile(t, path, 500)
}

func TestExportPDF_ManyOpenings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "many.pdf")

	// More rows than fit on one schedule page and more walls than colors.
	doc := buildTestDocument()
	level := doc.Levels[1].ID
	tmpl := doc.Templates[0]
	for i := 0; i < 60; i++ {
		wall := model.NewWall(fmt.Sprintf("X%d", i), level, model.Point2D{X: float64(i), Y: 5}, model.Point2D{X: float64(i), Y: 9}, 0.2, 3)
		doc.Walls = append(doc.Walls, wall)
		o := model.NewOpening(tmpl.ID, wall.ID, level, model.Point3D{X: float64(i), Y: 7, Z: 1}, tmpl.Parameters)
		o.Parameters["Ширина"], o.Parameters["Высота"] = 0.22, 0.22
		doc.Openings = append(doc.Openings, o)
	}

	if err := ExportPDF(path, doc, model.DefaultSettings(), nil); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	assertNonEmptyFile(t, path, 1000)
}
