package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/HoleCut/internal/model"
)

// LabelInfo holds the data encoded into each opening tag's QR code.
type LabelInfo struct {
	Mark      string  `json:"mark"`
	OpeningID string  `json:"id"`
	Wall      string  `json:"wall"`
	Level     string  `json:"level"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// ExportLabels generates a PDF of QR-coded tags, one per opening of doc.
// Each tag shows the mark, size and host wall, and its QR code carries the
// LabelInfo as JSON.
func ExportLabels(path string, doc model.DocumentData, settings model.Settings) error {
	labels := CollectLabelInfos(doc, settings)
	if len(labels) == 0 {
		return fmt.Errorf("no openings to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, tr, x, y, label); err != nil {
			return fmt.Errorf("failed to render label for %s: %w", label.Mark, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single tag at the given position.
func renderLabel(pdf *fpdf.Fpdf, tr func(string) string, x, y float64, info LabelInfo) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := "qr_" + info.Mark
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4.5, info.Mark, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	dims := fmt.Sprintf("%.3f x %.3f", info.Width, info.Height)
	pdf.CellFormat(textW, 3.5, dims, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	host := truncate(pdf, tr(fmt.Sprintf("%s / %s", info.Level, info.Wall)), textW)
	pdf.CellFormat(textW, 3, host, "", 1, "L", false, 0, "")

	pdf.SetXY(textX, y+labelPadding+12.5)
	at := fmt.Sprintf("@ (%.3f, %.3f, %.3f)", info.X, info.Y, info.Z)
	pdf.CellFormat(textW, 3, truncate(pdf, at, textW), "", 0, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	return nil
}

// truncate shortens s with an ellipsis until it fits in w at the current
// font.
func truncate(pdf *fpdf.Fpdf, s string, w float64) string {
	if pdf.GetStringWidth(s) <= w {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > w {
		s = s[:len(s)-1]
	}
	return s + "..."
}

// CollectLabelInfos extracts tag data from a document's openings for use in
// testing or alternative export formats.
func CollectLabelInfos(doc model.DocumentData, settings model.Settings) []LabelInfo {
	rows := BuildSchedule(doc, settings)
	labels := make([]LabelInfo, 0, len(rows))
	for _, r := range rows {
		labels = append(labels, LabelInfo{
			Mark:      r.Mark,
			OpeningID: r.OpeningID,
			Wall:      r.Wall,
			Level:     r.Level,
			X:         r.Position.X,
			Y:         r.Position.Y,
			Z:         r.Position.Z,
			Width:     r.Width,
			Height:    r.Height,
		})
	}
	return labels
}
