package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/HoleCut/internal/project"
)

func newBackupCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "export or restore the application config and opening template library",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "export FILE",
		Short: "write the config and template library to FILE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, err := project.LoadTemplates(g.templatesPath)
			if err != nil {
				return fmt.Errorf("failed to load template library %s: %w", g.templatesPath, err)
			}
			if err := project.ExportAllData(args[0], g.appConfig, templates); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backed up config and %d templates to %s\n", len(templates), args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import FILE",
		Short: "replace the config and template library with the contents of FILE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backup, err := project.ImportAllData(args[0])
			if err != nil {
				return err
			}
			if err := project.SaveAppConfig(g.configPath, backup.Config); err != nil {
				return err
			}
			if err := project.SaveTemplates(g.templatesPath, backup.Templates); err != nil {
				return err
			}
			g.appConfig = backup.Config
			fmt.Fprintf(cmd.OutOrStdout(), "restored config and %d templates from %s\n", len(backup.Templates), args[0])
			return nil
		},
	})
	return cmd
}
