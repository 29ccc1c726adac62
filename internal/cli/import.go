package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/HoleCut/internal/importer"
	"github.com/piwi3910/HoleCut/internal/model"
	"github.com/piwi3910/HoleCut/internal/project"
)

// Import formats, by file extension.
const (
	formatDXF  = "dxf"
	formatCSV  = "csv"
	formatXLSX = "xlsx"
)

func newImportCommand(g *globals) *cobra.Command {
	var (
		projectPath string
		document    string
		format      string
		opts        = importer.DefaultDXFOptions()
	)
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "import walls and runs from a DXF plan or runs from a CSV/Excel schedule",
		Long: "Adds the elements read from FILE to a document of the project, creating the " +
			"project and the document when they do not exist. A document that receives walls " +
			"gets a 3D view and the opening template library, and becomes the project target " +
			"when none is set.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if projectPath == "" {
				return fmt.Errorf("--project is required")
			}
			if document == "" {
				return fmt.Errorf("--document is required")
			}

			p, err := loadOrNewProject(projectPath, g.appConfig)
			if err != nil {
				return err
			}

			result, err := runImport(args[0], format, opts)
			if err != nil {
				return err
			}
			printImport(cmd.OutOrStdout(), result)
			if len(result.Walls) == 0 && len(result.Curves) == 0 {
				return fmt.Errorf("nothing imported from %s", args[0])
			}

			doc := p.Document(document)
			if doc == nil {
				p.Documents = append(p.Documents, model.NewDocumentData(document))
				doc = &p.Documents[len(p.Documents)-1]
			}
			result.Apply(doc)

			if len(result.Walls) > 0 {
				if err := g.prepareTarget(doc, p.Settings); err != nil {
					return err
				}
				if p.Target == "" {
					p.Target = doc.Title
				}
			}

			if err := project.Save(projectPath, p); err != nil {
				return err
			}
			g.rememberProject(projectPath)
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", projectPath)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&projectPath, "project", "p", "", "project file to import into")
	f.StringVarP(&document, "document", "d", "", "title of the receiving document")
	f.StringVar(&format, "format", "", "dxf, csv or xlsx (defaults to the file extension)")
	f.StringVar(&opts.LevelName, "level", opts.LevelName, "DXF: name of the level created for walls")
	f.Float64Var(&opts.Elevation, "elevation", opts.Elevation, "DXF: elevation of that level")
	f.Float64Var(&opts.Scale, "scale", opts.Scale, "DXF: model units per drawing unit")
	f.Float64Var(&opts.WallThickness, "wall-thickness", opts.WallThickness, "DXF: thickness of walls on plain WALL layers")
	f.Float64Var(&opts.WallHeight, "wall-height", opts.WallHeight, "DXF: wall height")
	f.Float64Var(&opts.RunElevation, "run-elevation", opts.RunElevation, "DXF: elevation of runs drawn at Z=0")
	return cmd
}

// loadOrNewProject loads path, or starts a project named after the file
// with settings from the app config when it does not exist yet.
func loadOrNewProject(path string, cfg model.AppConfig) (model.Project, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		p := model.NewProject()
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		cfg.ApplyToSettings(&p.Settings)
		return p, nil
	}
	return project.Load(path)
}

func runImport(path, format string, opts importer.DXFOptions) (importer.ImportResult, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch format {
	case formatDXF:
		return importer.ImportDXF(path, opts), nil
	case formatCSV, "txt":
		return importer.ImportCSV(path), nil
	case formatXLSX:
		return importer.ImportExcel(path), nil
	default:
		return importer.ImportResult{}, fmt.Errorf("unsupported import format %q", format)
	}
}

// prepareTarget gives a wall-carrying document what a placement batch needs
// from its target: a 3D view and at least one opening template.
func (g *globals) prepareTarget(doc *model.DocumentData, settings model.Settings) error {
	hasView := false
	for _, v := range doc.Views {
		if !v.IsTemplate {
			hasView = true
		}
	}
	if !hasView {
		doc.Views = append(doc.Views, model.NewView3D("{3D}"))
	}
	if len(doc.Templates) > 0 {
		return nil
	}

	library, err := project.LoadTemplates(g.templatesPath)
	if err != nil {
		return fmt.Errorf("failed to load template library %s: %w", g.templatesPath, err)
	}
	if len(library) == 0 {
		library = project.BuiltinTemplates(settings.WidthParameter, settings.HeightParameter)
	}
	doc.Templates = append(doc.Templates, library...)
	return nil
}

func printImport(w io.Writer, r importer.ImportResult) {
	fmt.Fprintf(w, "imported %d levels, %d walls, %d runs\n", len(r.Levels), len(r.Walls), len(r.Curves))
	for _, msg := range r.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", msg)
	}
	for _, msg := range r.Errors {
		fmt.Fprintf(w, "  error: %s\n", msg)
	}
}
