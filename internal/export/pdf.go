package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/HoleCut/internal/model"
)

// openingColor represents an RGB color for a placed opening.
type openingColor struct {
	R, G, B int
}

// openingColors cycles per host wall so neighbouring openings stay apart.
var openingColors = []openingColor{
	{R: 244, G: 67, B: 54},  // red
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 76, G: 175, B: 80},  // green
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	rowHeight    = 6.0
)

// ExportPDF writes one plan page per level showing walls and the openings
// placed in them, followed by the opening schedule. failures, when given,
// are listed after the schedule.
func ExportPDF(path string, doc model.DocumentData, settings model.Settings, failures []model.HitFailure) error {
	rows := BuildSchedule(doc, settings)
	if len(rows) == 0 {
		return fmt.Errorf("no openings to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, level := range groupByLevel(doc, rows) {
		pdf.AddPage()
		renderLevelPage(pdf, tr, doc, level)
	}

	pdf.AddPage()
	renderSchedulePages(pdf, tr, doc.Title, rows, settings, failures)

	return pdf.OutputFileAndClose(path)
}

// renderLevelPage draws a plan of one level on the current PDF page.
func renderLevelPage(pdf *fpdf.Fpdf, tr func(string) string, doc model.DocumentData, level planLevel) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("%s: %s (elevation %.2f)", doc.Title, level.Name, level.Elevation)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, tr(title), "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Walls: %d | Openings: %d", len(level.Walls), len(level.Openings))
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight

	lo, hi := planBounds(level)
	spanX := math.Max(hi.X-lo.X, 1e-3)
	spanY := math.Max(hi.Y-lo.Y, 1e-3)
	scale := math.Min(drawWidth/spanX, drawHeight/spanY)

	canvasW := spanX * scale
	canvasH := spanY * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Plan Y grows upward, page Y downward.
	toPage := func(p model.Point2D) fpdf.PointType {
		return fpdf.PointType{X: offsetX + (p.X-lo.X)*scale, Y: offsetY + (hi.Y-p.Y)*scale}
	}
	polygon := func(corners [4]model.Point2D) []fpdf.PointType {
		pts := make([]fpdf.PointType, len(corners))
		for i, c := range corners {
			pts[i] = toPage(c)
		}
		return pts
	}

	pdf.SetFillColor(200, 200, 200)
	pdf.SetDrawColor(60, 60, 60)
	pdf.SetLineWidth(0.3)
	walls := map[string]*model.Wall{}
	wallColor := map[string]openingColor{}
	for i := range level.Walls {
		w := &level.Walls[i]
		walls[w.ID] = w
		wallColor[w.ID] = openingColors[i%len(openingColors)]
		pdf.Polygon(polygon(wallOutline(*w)), "FD")
	}

	for _, o := range level.Openings {
		col, ok := wallColor[o.WallID]
		if !ok {
			col = openingColors[0]
		}
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.2)
		pdf.Polygon(polygon(footprint(o.Position, o.Width, walls[o.WallID])), "FD")

		at := toPage(model.Point2D{X: o.Position.X, Y: o.Position.Y})
		pdf.SetFont("Helvetica", "", 6)
		pdf.SetTextColor(0, 0, 0)
		pdf.Text(at.X+1.5, at.Y-1.5, o.Mark)
	}

	drawScaleAnnotation(pdf, spanX, offsetX, offsetY+canvasH, canvasW)
	drawOpeningsLegend(pdf, level, offsetY+canvasH+6)
}

// drawScaleAnnotation labels the plan width below the drawing.
func drawScaleAnnotation(pdf *fpdf.Fpdf, span, offsetX, y, canvasW float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)
	label := fmt.Sprintf("%.2f", span)
	labelW := pdf.GetStringWidth(label)
	pdf.SetXY(offsetX+(canvasW-labelW)/2, y+1)
	pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// drawOpeningsLegend renders a compact list of the level's openings.
func drawOpeningsLegend(pdf *fpdf.Fpdf, level planLevel, startY float64) {
	if len(level.Openings) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Openings:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight
	for _, o := range level.Openings {
		label := fmt.Sprintf("%s %.3fx%.3f", o.Mark, o.Width, o.Height)
		labelW := pdf.GetStringWidth(label) + 2
		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
			if startY > pageHeight-marginBottom {
				return
			}
		}
		pdf.SetXY(xPos, startY)
		pdf.CellFormat(labelW, 4, label, "", 0, "L", false, 0, "")
		xPos += labelW + 2
	}
}

// renderSchedulePages draws the opening table, continuing on new pages as
// needed, then the settings and any failures.
func renderSchedulePages(pdf *fpdf.Fpdf, tr func(string) string, title string, rows []ScheduleRow, settings model.Settings, failures []model.HitFailure) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, tr("Opening Schedule: "+title), "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	colWidths := []float64{18, 52, 40, 40, 30, 30, 30, 22, 22}
	headers := []string{"Mark", "Template", "Wall", "Level", "X", "Y", "Z", "Width", "Height"}
	header := func(y float64) float64 {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		xPos := marginLeft
		for i, h := range headers {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[i], rowHeight, h, "1", 0, "C", true, 0, "")
			xPos += colWidths[i]
		}
		return y + rowHeight
	}

	y := header(marginTop + 18)
	pdf.SetFont("Helvetica", "", 9)
	for i, r := range rows {
		if y+rowHeight > pageHeight-marginBottom {
			pdf.AddPage()
			y = header(marginTop)
			pdf.SetFont("Helvetica", "", 9)
		}
		cells := []string{
			r.Mark, tr(r.Template), tr(r.Wall), tr(r.Level),
			fmt.Sprintf("%.3f", r.Position.X),
			fmt.Sprintf("%.3f", r.Position.Y),
			fmt.Sprintf("%.3f", r.Position.Z),
			fmt.Sprintf("%.3f", r.Width),
			fmt.Sprintf("%.3f", r.Height),
		}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		xPos := marginLeft
		for j, cell := range cells {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], rowHeight, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += rowHeight
	}

	settingsItems := []struct {
		label string
		value string
	}{
		{"Openings", fmt.Sprintf("%d", len(rows))},
		{"Width parameter", settings.WidthParameter},
		{"Height parameter", settings.HeightParameter},
		{"Failure policy", string(settings.FailurePolicy)},
	}
	if y+8+float64(len(settingsItems))*5 > pageHeight-marginBottom {
		pdf.AddPage()
		y = marginTop
	}
	y += 8
	pdf.SetFont("Helvetica", "", 9)
	for _, item := range settingsItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(60, 5, tr(item.value), "", 0, "L", false, 0, "")
		y += 5
	}

	if len(failures) > 0 {
		y += 6
		if y+20 > pageHeight-marginBottom {
			pdf.AddPage()
			y = marginTop
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		counts := countFailures(failures)
		pdf.CellFormat(250, 7, fmt.Sprintf("WARNING: %d hits without an opening (section %d, scan %d, level %d, place %d)",
			len(failures), counts[model.StageSection], counts[model.StageScan], counts[model.StageLevel], counts[model.StagePlace]),
			"", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, f := range failures {
			if y+5 > pageHeight-marginBottom {
				pdf.AddPage()
				y = marginTop
			}
			pdf.SetXY(marginLeft+5, y)
			text := fmt.Sprintf("- run %s", f.RunID)
			if f.WallID != "" {
				text += fmt.Sprintf(", wall %s at %.3f", f.WallID, f.Proximity)
			}
			text += fmt.Sprintf(" [%s]: %s", f.Stage, f.Reason)
			pdf.CellFormat(260, 5, tr(text), "", 0, "L", false, 0, "")
			y += 5
		}
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by HoleCut - Wall Opening Placement", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}
