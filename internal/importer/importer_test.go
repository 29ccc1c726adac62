package importer

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/HoleCut/internal/model"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter_Comma(t *testing.T) {
	data := []byte("Name,X1,Y1,Z1,X2,Y2,Z2,Diameter\nP1,0,0,1,3,0,1,0.2\nP2,0,1,1,3,1,1,0.1\n")
	got := DetectCSVDelimiter(data)
	if got != ',' {
		t.Errorf("expected comma delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Semicolon(t *testing.T) {
	data := []byte("Name;X1;Y1;Z1;X2;Y2;Z2;Diameter\nP1;0;0;1;3;0;1;0,2\nP2;0;1;1;3;1;1;0,1\n")
	got := DetectCSVDelimiter(data)
	if got != ';' {
		t.Errorf("expected semicolon delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Tab(t *testing.T) {
	data := []byte("Name\tX1\tY1\tZ1\tX2\tY2\tZ2\tDiameter\nP1\t0\t0\t1\t3\t0\t1\t0.2\n")
	got := DetectCSVDelimiter(data)
	if got != '\t' {
		t.Errorf("expected tab delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Pipe(t *testing.T) {
	data := []byte("Name|X1|Y1|Z1|X2|Y2|Z2|Diameter\nP1|0|0|1|3|0|1|0.2\n")
	got := DetectCSVDelimiter(data)
	if got != '|' {
		t.Errorf("expected pipe delimiter, got %q", got)
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	row := []string{"Name", "System", "X1", "Y1", "Z1", "X2", "Y2", "Z2", "Diameter", "Width", "Height"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	if mapping != positionalMapping {
		t.Errorf("expected standard order to match positional mapping, got %+v", mapping)
	}
}

func TestDetectColumns_CaseInsensitiveAliases(t *testing.T) {
	row := []string{"MARK", "Start X", "START Y", "start z", "End X", "end y", "END Z", "DIA", "Type"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	if mapping.Name != 0 || mapping.X1 != 1 || mapping.Y1 != 2 || mapping.Z1 != 3 {
		t.Errorf("unexpected start mapping: %+v", mapping)
	}
	if mapping.X2 != 4 || mapping.Y2 != 5 || mapping.Z2 != 6 {
		t.Errorf("unexpected end mapping: %+v", mapping)
	}
	if mapping.Diameter != 7 || mapping.System != 8 {
		t.Errorf("expected Diameter at 7 and System at 8, got %d and %d", mapping.Diameter, mapping.System)
	}
	if mapping.Width != -1 || mapping.Height != -1 {
		t.Errorf("expected absent Width/Height to be -1, got %d and %d", mapping.Width, mapping.Height)
	}
}

func TestDetectColumns_RussianHeaders(t *testing.T) {
	row := []string{"Марка", "Система", "x1", "y1", "z1", "x2", "y2", "z2", "Ширина", "Высота"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	if mapping.Name != 0 || mapping.System != 1 {
		t.Errorf("expected Name at 0 and System at 1, got %d and %d", mapping.Name, mapping.System)
	}
	if mapping.Width != 8 || mapping.Height != 9 {
		t.Errorf("expected Width at 8 and Height at 9, got %d and %d", mapping.Width, mapping.Height)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	row := []string{"P1", "pipe", "0", "0", "1", "3", "0", "1", "0.2"}
	mapping, isHeader := DetectColumns(row)

	if isHeader {
		t.Error("expected no header to be detected")
	}
	if mapping != positionalMapping {
		t.Errorf("expected positional mapping, got %+v", mapping)
	}
}

// ─── ImportCSVFromReader Tests ─────────────────────────────

func TestImportCSVFromReader_PipeAndDuct(t *testing.T) {
	input := "Name,System,X1,Y1,Z1,X2,Y2,Z2,Diameter,Width,Height\n" +
		"P1,pipe,0,0,1,3,0,1,0.2,,\n" +
		"D1,duct,0,1,2,5,1,2,,0.4,0.3\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Curves) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(result.Curves))
	}

	p := result.Curves[0]
	if p.Name != "P1" || p.Category != model.CategoryPipes || p.Profile != model.ProfileRound {
		t.Errorf("unexpected pipe: %+v", p)
	}
	if !near(p.Diameter, 0.2) {
		t.Errorf("expected diameter 0.2, got %v", p.Diameter)
	}
	if p.Curve.Kind != model.CurveLine || p.Curve.End != (model.Point3D{X: 3, Z: 1}) {
		t.Errorf("unexpected pipe curve: %+v", p.Curve)
	}

	d := result.Curves[1]
	if d.Category != model.CategoryDucts || d.Profile != model.ProfileRectangular {
		t.Errorf("unexpected duct: %+v", d)
	}
	if !near(d.Width, 0.4) || !near(d.Height, 0.3) {
		t.Errorf("expected 0.4x0.3, got %vx%v", d.Width, d.Height)
	}
	if d.ID == p.ID {
		t.Error("expected distinct run IDs")
	}
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	input := "P1,pipe,0,0,1,3,0,1,0.2\nP2,pipe,0,1,1,3,1,1,0.1\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Curves) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(result.Curves))
	}
	for _, w := range result.Warnings {
		if strings.Contains(w, "header") {
			t.Errorf("unexpected header warning: %s", w)
		}
	}
}

func TestImportCSVFromReader_SemicolonDecimalComma(t *testing.T) {
	input := "Name;X1;Y1;Z1;X2;Y2;Z2;Diameter\nP1;0;0;1,5;3;0;1,5;0,25\n"
	result := ImportCSVFromReader(strings.NewReader(input), ';')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Curves) != 1 {
		t.Fatalf("expected 1 run, got %d", len(result.Curves))
	}
	run := result.Curves[0]
	if !near(run.Curve.Start.Z, 1.5) || !near(run.Diameter, 0.25) {
		t.Errorf("decimal comma not parsed: z=%v d=%v", run.Curve.Start.Z, run.Diameter)
	}
}

func TestImportCSVFromReader_ReorderedColumns(t *testing.T) {
	input := "Height,Width,Z2,Y2,X2,Z1,Y1,X1,Name\n0.3,0.4,2,1,5,2,1,0,D1\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	run := result.Curves[0]
	if run.Name != "D1" || run.Profile != model.ProfileRectangular {
		t.Errorf("unexpected run: %+v", run)
	}
	if run.Curve.Start != (model.Point3D{Y: 1, Z: 2}) || run.Curve.End != (model.Point3D{X: 5, Y: 1, Z: 2}) {
		t.Errorf("unexpected curve: %+v", run.Curve)
	}
}

func TestImportCSVFromReader_EmptyFile(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader(""), ',')
	if len(result.Errors) == 0 {
		t.Error("expected error for empty input")
	}
}

func TestImportCSVFromReader_InvalidCoordinate(t *testing.T) {
	input := "Name,X1,Y1,Z1,X2,Y2,Z2,Diameter\nP1,abc,0,1,3,0,1,0.2\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "x1") {
		t.Errorf("expected error to name x1, got %s", result.Errors[0])
	}
}

func TestImportCSVFromReader_CoincidentPoints(t *testing.T) {
	input := "Name,X1,Y1,Z1,X2,Y2,Z2,Diameter\nP1,1,1,1,1,1,1,0.2\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "coincide") {
		t.Errorf("expected coincide error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_NonPositiveSize(t *testing.T) {
	input := "Name,X1,Y1,Z1,X2,Y2,Z2,Diameter\nP1,0,0,1,3,0,1,0\nP2,0,0,1,3,0,1,-0.1\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Errors) != 2 {
		t.Errorf("expected 2 errors, got %v", result.Errors)
	}
	if len(result.Curves) != 0 {
		t.Errorf("expected no runs, got %d", len(result.Curves))
	}
}

func TestImportCSVFromReader_MissingSection(t *testing.T) {
	input := "Name,X1,Y1,Z1,X2,Y2,Z2,Diameter,Width,Height\nP1,0,0,1,3,0,1,,0.4,\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Missing diameter") {
		t.Errorf("expected missing section error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_BothSectionsLeavesProfileUndeclared(t *testing.T) {
	input := "Name,X1,Y1,Z1,X2,Y2,Z2,Diameter,Width,Height\nM1,0,0,1,3,0,1,0.2,0.4,0.3\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	run := result.Curves[0]
	if run.Profile != model.ProfileUnknown {
		t.Errorf("expected undeclared profile, got %q", run.Profile)
	}
	if !near(run.Diameter, 0.2) || !near(run.Width, 0.4) || !near(run.Height, 0.3) {
		t.Errorf("expected all dimensions kept, got %+v", run)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "undeclared") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected undeclared profile warning, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_UnknownSystem(t *testing.T) {
	input := "Name,System,X1,Y1,Z1,X2,Y2,Z2,Diameter\nP1,cable,0,0,1,3,0,1,0.2\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Curves[0].Category != model.CategoryPipes {
		t.Errorf("expected pipe category from profile, got %q", result.Curves[0].Category)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "Unknown system 'cable'") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected unknown system warning, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_MixedValidAndInvalid(t *testing.T) {
	input := "Name,X1,Y1,Z1,X2,Y2,Z2,Diameter\n" +
		"P1,0,0,1,3,0,1,0.2\n" +
		"P2,0,0,1,3,0,1,bad\n" +
		"\n" +
		"P3,0,2,1,3,2,1,0.1\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Curves) != 2 {
		t.Errorf("expected 2 valid runs, got %d", len(result.Curves))
	}
	if len(result.Errors) != 1 || !strings.HasPrefix(result.Errors[0], "Line 3") {
		t.Errorf("expected one error on line 3, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_EmptyNameGetsDefault(t *testing.T) {
	input := "Name,X1,Y1,Z1,X2,Y2,Z2,Diameter\n,0,0,1,3,0,1,0.2\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Curves) != 1 || result.Curves[0].Name != "Run 1" {
		t.Errorf("expected default name 'Run 1', got %+v", result.Curves)
	}
}

func TestImportCSVFromReader_MissingRequiredColumnInHeader(t *testing.T) {
	input := "Name,X1,Y1,X2,Y2,Diameter\nP1,0,0,3,0,0.2\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "Z1") || !strings.Contains(result.Errors[0], "Z2") {
		t.Errorf("expected missing Z columns in error, got %s", result.Errors[0])
	}
}

func TestImportCSVFromReader_OnlyHeaders(t *testing.T) {
	input := "Name,X1,Y1,Z1,X2,Y2,Z2,Diameter\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Curves) != 0 {
		t.Errorf("expected 0 runs, got %d", len(result.Curves))
	}
}

// ─── ImportCSV File Tests ──────────────────────────────────

func TestImportCSV_SemicolonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.csv")
	content := "Марка;Система;x1;y1;z1;x2;y2;z2;Ширина;Высота\nВ1;воздуховод;0;1;2;5;1;2;0,4;0,3\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	result := ImportCSV(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Curves) != 1 || result.Curves[0].Category != model.CategoryDucts {
		t.Fatalf("expected one duct, got %+v", result.Curves)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "semicolon") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected semicolon warning, got %v", result.Warnings)
	}
}

func TestImportCSV_FileNotFound(t *testing.T) {
	result := ImportCSV("/nonexistent/path/runs.csv")
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

func TestImportCSV_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	result := ImportCSV(path)
	if len(result.Errors) == 0 || result.Errors[0] != "File is empty" {
		t.Errorf("expected 'File is empty', got %v", result.Errors)
	}
}

func TestImportResult_Apply(t *testing.T) {
	doc := model.NewDocumentData("Building_ИОС")
	result := ImportCSVFromReader(strings.NewReader("P1,pipe,0,0,1,3,0,1,0.2\n"), ',')
	result.Apply(&doc)
	result.Apply(&doc)

	if len(doc.Curves) != 2 {
		t.Errorf("expected Apply to append runs, got %d", len(doc.Curves))
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "runs.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Name", "System", "X1", "Y1", "Z1", "X2", "Y2", "Z2", "Diameter", "Width", "Height"},
		{"P1", "pipe", 0, 0, 1, 3, 0, 1, 0.2, "", ""},
		{"D1", "duct", 0, 1, 2, 5, 1, 2, "", 0.4, 0.3},
	})

	result := ImportExcel(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Curves) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(result.Curves))
	}
	if result.Curves[0].Profile != model.ProfileRound || result.Curves[1].Profile != model.ProfileRectangular {
		t.Errorf("unexpected profiles: %q, %q", result.Curves[0].Profile, result.Curves[1].Profile)
	}
}

func TestImportExcel_WithoutHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"P1", "pipe", 0, 0, 1, 3, 0, 1, 0.2},
	})

	result := ImportExcel(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Curves) != 1 {
		t.Errorf("expected 1 run, got %d", len(result.Curves))
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	result := ImportExcel("/nonexistent/path/runs.xlsx")
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

func TestImportExcel_InvalidData(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Name", "X1", "Y1", "Z1", "X2", "Y2", "Z2", "Diameter"},
		{"P1", "a", 0, 1, 3, 0, 1, 0.2},
		{"P2", 0, 0, 1, 3, 0, 1, 0.2},
	})

	result := ImportExcel(path)
	if len(result.Errors) != 1 || !strings.HasPrefix(result.Errors[0], "Row 2") {
		t.Errorf("expected one error on row 2, got %v", result.Errors)
	}
	if len(result.Curves) != 1 {
		t.Errorf("expected 1 valid run, got %d", len(result.Curves))
	}
}

// ─── parseSystem Tests ─────────────────────────────────────

func TestParseSystem(t *testing.T) {
	tests := []struct {
		input string
		want  model.Category
		ok    bool
	}{
		{"pipe", model.CategoryPipes, true},
		{"Pipes", model.CategoryPipes, true},
		{"труба", model.CategoryPipes, true},
		{" DUCT ", model.CategoryDucts, true},
		{"воздуховод", model.CategoryDucts, true},
		{"cable tray", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := parseSystem(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseSystem(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}
