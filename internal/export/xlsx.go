package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/HoleCut/internal/model"
)

// Sheet names of the exported workbook.
const (
	SheetOpenings = "Openings"
	SheetFailures = "Failures"
)

var (
	openingHeaders = []interface{}{"Mark", "Opening ID", "Template", "Wall", "Level", "X", "Y", "Z", "Width", "Height"}
	failureHeaders = []interface{}{"Run", "Wall", "Proximity", "Stage", "Reason"}
)

// ExportExcel writes the opening schedule of doc to an .xlsx workbook. A
// second sheet lists failures; it is written even when empty so the
// workbook layout is stable.
func ExportExcel(path string, doc model.DocumentData, settings model.Settings, failures []model.HitFailure) error {
	rows := BuildSchedule(doc, settings)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetOpenings); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeRow(f, SheetOpenings, 1, openingHeaders); err != nil {
		return err
	}
	for i, r := range rows {
		values := []interface{}{
			r.Mark, r.OpeningID, r.Template, r.Wall, r.Level,
			r.Position.X, r.Position.Y, r.Position.Z, r.Width, r.Height,
		}
		if err := writeRow(f, SheetOpenings, i+2, values); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(SheetFailures); err != nil {
		return fmt.Errorf("failed to add sheet %s: %w", SheetFailures, err)
	}
	if err := writeRow(f, SheetFailures, 1, failureHeaders); err != nil {
		return err
	}
	for i, fl := range failures {
		values := []interface{}{fl.RunID, fl.WallID, fl.Proximity, string(fl.Stage), fl.Reason}
		if err := writeRow(f, SheetFailures, i+2, values); err != nil {
			return err
		}
	}

	if err := styleHeader(f, SheetOpenings, len(openingHeaders)); err != nil {
		return err
	}
	if err := styleHeader(f, SheetFailures, len(failureHeaders)); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// styleHeader bolds the first row and freezes it.
func styleHeader(f *excelize.File, sheet string, cols int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
