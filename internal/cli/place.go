package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/piwi3910/HoleCut/internal/config"
	"github.com/piwi3910/HoleCut/internal/engine"
	"github.com/piwi3910/HoleCut/internal/host"
	"github.com/piwi3910/HoleCut/internal/model"
	"github.com/piwi3910/HoleCut/internal/project"
)

func newPlaceCommand(g *globals) *cobra.Command {
	var (
		sf     settingsFlags
		target string
		output string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "place PROJECT",
		Short: "place openings where runs of the companion model cross walls of the target",
		Long: "Loads the project, ray-casts every duct and pipe run of the companion model " +
			"against the walls of the target model and places one opening per crossing in a " +
			"single atomic batch. The project is saved with the new openings unless --dry-run is given.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			p, err := project.Load(path)
			if err != nil {
				return err
			}
			settings, err := sf.apply(cmd, p.Settings)
			if err != nil {
				return err
			}

			app := host.NewApplication()
			if err := app.OpenProject(p); err != nil {
				return err
			}
			if target != "" {
				if err := app.Activate(target); err != nil {
					return err
				}
			}

			coordinator := engine.NewCoordinator(app, settings)
			coordinator.SetLogger(config.NamedLogger("engine").WithField("project", p.Name))
			result, runErr := coordinator.Run()

			var precondition *engine.PreconditionError
			if !errors.As(runErr, &precondition) {
				var snapshot *model.DocumentData
				if doc, err := app.Active(); err == nil && result.State == model.BatchCommitted {
					data := doc.Data()
					snapshot = &data
				}
				if err := g.journal(result, snapshot); err != nil {
					g.log.WithError(err).Warn("batch not journaled")
				}
			}
			printBatch(cmd.OutOrStdout(), result)
			if runErr != nil {
				return runErr
			}

			if dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), "dry run: project not saved")
				return nil
			}
			dest := path
			if output != "" {
				dest = output
			}
			if err := project.Save(dest, app.Snapshot(p.Name, settings)); err != nil {
				return err
			}
			g.rememberProject(dest)
			return nil
		},
	}
	sf.register(cmd)
	cmd.Flags().StringVar(&target, "target", "", "title of the document receiving openings (defaults to the project target)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "save the updated project here instead of overwriting PROJECT")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "run the batch without saving the project")
	return cmd
}

// journal records a batch that reached the target document, and the
// target's snapshot when one is given.
func (g *globals) journal(result model.BatchResult, snapshot *model.DocumentData) error {
	s, err := g.openJournal()
	if err != nil || s == nil {
		return err
	}
	defer s.Close()
	if err := s.RecordBatch(result); err != nil {
		return err
	}
	if snapshot != nil {
		return s.SaveDocument(*snapshot)
	}
	return nil
}

// rememberProject adds path to the recent projects of the app config.
func (g *globals) rememberProject(path string) {
	project.AddRecentProject(&g.appConfig, path)
	if err := project.SaveAppConfig(g.configPath, g.appConfig); err != nil {
		g.log.WithError(err).Warn("failed to update recent projects")
	}
}

func printBatch(w io.Writer, r model.BatchResult) {
	fmt.Fprintf(w, "batch %s: %s\n", r.ID, r.State)
	if r.Document == "" {
		return
	}
	fmt.Fprintf(w, "target %s: %d runs scanned, %d hits, %d openings placed\n",
		r.Document, r.RunsScanned, r.HitsFound, r.OpeningCount())
	for _, f := range r.Failures {
		if f.WallID == "" {
			fmt.Fprintf(w, "  failed: run %s [%s] %s\n", f.RunID, f.Stage, f.Reason)
			continue
		}
		fmt.Fprintf(w, "  failed: run %s, wall %s at %.4f [%s] %s\n", f.RunID, f.WallID, f.Proximity, f.Stage, f.Reason)
	}
}
