// Package importer reads design-model content from drawings and schedules.
// Run schedules come from CSV or Excel files with automatic delimiter
// detection and case-insensitive header recognition; walls and runs come
// from layered DXF drawings.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/HoleCut/internal/model"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Levels   []model.Level
	Walls    []model.Wall
	Curves   []model.MEPCurve
	Errors   []string
	Warnings []string
}

// Apply appends the imported elements to doc.
func (r ImportResult) Apply(doc *model.DocumentData) {
	doc.Levels = append(doc.Levels, r.Levels...)
	doc.Walls = append(doc.Walls, r.Walls...)
	doc.Curves = append(doc.Curves, r.Curves...)
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Name     int
	System   int
	X1       int
	Y1       int
	Z1       int
	X2       int
	Y2       int
	Z2       int
	Diameter int
	Width    int
	Height   int
}

// positionalMapping is used when the first row is not a header.
var positionalMapping = ColumnMapping{
	Name: 0, System: 1,
	X1: 2, Y1: 3, Z1: 4,
	X2: 5, Y2: 6, Z2: 7,
	Diameter: 8, Width: 9, Height: 10,
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"name":     {"name", "id", "label", "mark", "tag", "element", "имя", "марка"},
	"system":   {"system", "category", "type", "kind", "система", "тип"},
	"x1":       {"x1", "start x", "sx", "xstart"},
	"y1":       {"y1", "start y", "sy", "ystart"},
	"z1":       {"z1", "start z", "sz", "zstart"},
	"x2":       {"x2", "end x", "ex", "xend"},
	"y2":       {"y2", "end y", "ey", "yend"},
	"z2":       {"z2", "end z", "ez", "zend"},
	"diameter": {"diameter", "dia", "d", "ø", "диаметр"},
	"width":    {"width", "w", "ширина"},
	"height":   {"height", "h", "высота"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// It performs case-insensitive matching against known aliases for each column role.
// Returns the mapping and true if a header was detected, or the positional
// mapping and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1}
	roles := map[string]*int{
		"name": &mapping.Name, "system": &mapping.System,
		"x1": &mapping.X1, "y1": &mapping.Y1, "z1": &mapping.Z1,
		"x2": &mapping.X2, "y2": &mapping.Y2, "z2": &mapping.Z2,
		"diameter": &mapping.Diameter, "width": &mapping.Width, "height": &mapping.Height,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					if idx := roles[role]; *idx == -1 {
						*idx = i
					}
				}
			}
		}
	}

	if !isHeader {
		return positionalMapping, false
	}
	return mapping, true
}

// parseSystem converts a system string to a run category.
func parseSystem(s string) (model.Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pipe", "pipes", "p", "труба", "трубопровод":
		return model.CategoryPipes, true
	case "duct", "ducts", "d", "воздуховод":
		return model.CategoryDucts, true
	default:
		return "", false
	}
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseNumber reads an optional decimal cell, accepting a decimal comma.
func parseNumber(row []string, idx int) (float64, bool, error) {
	s := strings.ReplaceAll(getCell(row, idx), ",", ".")
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !model.IsFinite(v) {
		return 0, true, fmt.Errorf("invalid number '%s'", getCell(row, idx))
	}
	return v, true, nil
}

// parseRow extracts a run from a row using the given column mapping.
// Returns the run, any error message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, runCount int) (model.MEPCurve, string, string) {
	name := getCell(row, mapping.Name)
	if name == "" {
		name = fmt.Sprintf("Run %d", runCount+1)
	}

	coords := []struct {
		label string
		idx   int
	}{
		{"x1", mapping.X1}, {"y1", mapping.Y1}, {"z1", mapping.Z1},
		{"x2", mapping.X2}, {"y2", mapping.Y2}, {"z2", mapping.Z2},
	}
	var v [6]float64
	for i, c := range coords {
		val, ok, err := parseNumber(row, c.idx)
		if err != nil {
			return model.MEPCurve{}, fmt.Sprintf("%s: %s: %v", rowLabel, c.label, err), ""
		}
		if !ok {
			return model.MEPCurve{}, fmt.Sprintf("%s: Missing %s value", rowLabel, c.label), ""
		}
		v[i] = val
	}
	start := model.Point3D{X: v[0], Y: v[1], Z: v[2]}
	end := model.Point3D{X: v[3], Y: v[4], Z: v[5]}
	if start == end {
		return model.MEPCurve{}, fmt.Sprintf("%s: Start and end points coincide", rowLabel), ""
	}

	dia, hasDia, err := parseNumber(row, mapping.Diameter)
	if err != nil {
		return model.MEPCurve{}, fmt.Sprintf("%s: diameter: %v", rowLabel, err), ""
	}
	w, hasW, err := parseNumber(row, mapping.Width)
	if err != nil {
		return model.MEPCurve{}, fmt.Sprintf("%s: width: %v", rowLabel, err), ""
	}
	h, hasH, err := parseNumber(row, mapping.Height)
	if err != nil {
		return model.MEPCurve{}, fmt.Sprintf("%s: height: %v", rowLabel, err), ""
	}
	hasRect := hasW && hasH
	if !hasDia && !hasRect {
		return model.MEPCurve{}, fmt.Sprintf("%s: Missing diameter or width and height", rowLabel), ""
	}
	if (hasDia && dia <= 0) || (hasRect && (w <= 0 || h <= 0)) {
		return model.MEPCurve{}, fmt.Sprintf("%s: Dimensions must be positive", rowLabel), ""
	}

	var run model.MEPCurve
	var warning string
	switch {
	case hasDia && hasRect:
		run = model.NewMEPCurve(name, model.CategoryPipes, start, end)
		run.Diameter, run.Width, run.Height = dia, w, h
		warning = fmt.Sprintf("%s: Both diameter and width/height given, profile left undeclared", rowLabel)
	case hasDia:
		run = model.NewPipe(name, start, end, dia)
	default:
		run = model.NewDuct(name, start, end, w, h)
	}

	systemStr := getCell(row, mapping.System)
	if category, ok := parseSystem(systemStr); ok {
		run.Category = category
	} else if systemStr != "" {
		warning = fmt.Sprintf("%s: Unknown system '%s', defaulting to %s", rowLabel, systemStr, run.Category)
	}

	return run, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports a run schedule from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports a run schedule from a CSV reader with a
// specific delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports a run schedule from an Excel (.xlsx) file.
// Reads the first sheet and auto-detects column mapping from headers.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
// It detects headers, maps columns, and parses each row into a run.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		for _, c := range []struct {
			name string
			idx  int
		}{
			{"X1", mapping.X1}, {"Y1", mapping.Y1}, {"Z1", mapping.Z1},
			{"X2", mapping.X2}, {"Y2", mapping.Y2}, {"Z2", mapping.Z2},
		} {
			if c.idx == -1 {
				missing = append(missing, c.name)
			}
		}
		if mapping.Diameter == -1 && (mapping.Width == -1 || mapping.Height == -1) {
			missing = append(missing, "Diameter or Width/Height")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) > mapping.X1 {
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][mapping.X1]), 64); err != nil {
			// Unrecognized header: skip it but keep the positional mapping
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		lineNum := i + 1

		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, lineNum)
		run, errMsg, warning := parseRow(row, mapping, rowLabel, len(result.Curves))

		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}

		result.Curves = append(result.Curves, run)
	}

	return result
}
