package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/HoleCut/internal/export"
	"github.com/piwi3910/HoleCut/internal/model"
	"github.com/piwi3910/HoleCut/internal/project"
)

func newExportCommand(g *globals) *cobra.Command {
	var (
		output   string
		format   string
		document string
		batchID  string
	)
	cmd := &cobra.Command{
		Use:   "export PROJECT",
		Short: "export the openings of a document as a PDF plan, QR tags, an Excel schedule or a DXF plan",
		Long: "Writes the openings of the target document (or --document) to OUTPUT. The format " +
			"comes from --format or the output extension: pdf, labels, xlsx or dxf. When a journal " +
			"is configured, the failures of the document's latest batch (or --batch) are included " +
			"in PDF and Excel output.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return fmt.Errorf("--output is required")
			}
			p, err := project.Load(args[0])
			if err != nil {
				return err
			}
			title := document
			if title == "" {
				title = p.Target
			}
			doc := p.Document(title)
			if doc == nil {
				return fmt.Errorf("document %q not found in %s", title, args[0])
			}

			if format == "" {
				format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
			}
			failures, err := g.batchFailures(doc.Title, batchID)
			if err != nil {
				return err
			}

			switch format {
			case "pdf":
				err = export.ExportPDF(output, *doc, p.Settings, failures)
			case "labels":
				err = export.ExportLabels(output, *doc, p.Settings)
			case "xlsx":
				err = export.ExportExcel(output, *doc, p.Settings, failures)
			case "dxf":
				err = export.ExportDXF(output, *doc, p.Settings)
			default:
				return fmt.Errorf("unsupported export format %q", format)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d openings to %s\n", len(doc.Openings), output)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "output file")
	f.StringVar(&format, "format", "", "pdf, labels, xlsx or dxf (defaults to the output extension)")
	f.StringVarP(&document, "document", "d", "", "document to export (defaults to the project target)")
	f.StringVar(&batchID, "batch", "", "journal batch whose failures are listed")
	return cmd
}

// batchFailures reads the failures of batchID, or of the latest journaled
// batch of document. Without a journal there are none.
func (g *globals) batchFailures(document, batchID string) ([]model.HitFailure, error) {
	s, err := g.openJournal()
	if err != nil || s == nil {
		return nil, err
	}
	defer s.Close()

	if batchID != "" {
		b, err := s.Batch(batchID)
		if err != nil {
			return nil, err
		}
		return b.Failures, nil
	}
	batches, err := s.Batches(document)
	if err != nil || len(batches) == 0 {
		return nil, err
	}
	return batches[len(batches)-1].Failures, nil
}
