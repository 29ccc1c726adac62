// Package cli implements the holecut command line: placing openings in a
// project, importing drawings and schedules, exporting results and reading
// the batch journal.
package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/piwi3910/HoleCut/internal/config"
	"github.com/piwi3910/HoleCut/internal/model"
	"github.com/piwi3910/HoleCut/internal/project"
	"github.com/piwi3910/HoleCut/internal/store"
)

// globals holds the persistent flags and what PersistentPreRunE loads from
// them.
type globals struct {
	configPath    string
	templatesPath string
	logLevel      string
	journalPath   string

	appConfig model.AppConfig
	log       *logrus.Entry
}

// NewRootCommand builds the holecut command tree.
func NewRootCommand() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "holecut",
		Short:         "place wall openings where ducts and pipes cross walls",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&g.configPath, "config", project.DefaultConfigPath(), "application config file")
	flags.StringVar(&g.templatesPath, "templates", project.DefaultTemplatePath(), "opening template library")
	flags.StringVar(&g.logLevel, "log-level", "", "log level: panic, fatal, error, warn, info, debug")
	flags.StringVar(&g.journalPath, "journal", "", "SQLite batch journal (defaults to the config's journal_path)")

	root.AddCommand(
		newPlaceCommand(g),
		newImportCommand(g),
		newExportCommand(g),
		newHistoryCommand(g),
		newBackupCommand(g),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(args []string) int {
	root := NewRootCommand()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		config.NamedLogger("cli").Error(err)
		return 1
	}
	return 0
}

func (g *globals) load(cmd *cobra.Command) error {
	cfg, err := project.LoadAppConfig(g.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config %s: %w", g.configPath, err)
	}
	g.appConfig = cfg

	levelName := cfg.LogLevel
	if cmd.Flags().Changed("log-level") {
		levelName = g.logLevel
	}
	if levelName != "" {
		level, err := config.ParseLevel(levelName)
		if err != nil {
			return err
		}
		config.SetLevel(level)
	}
	if g.journalPath == "" {
		g.journalPath = cfg.JournalPath
	}
	g.log = config.NamedLogger("cli")
	return nil
}

// openJournal opens the batch journal, or returns nil when none is
// configured.
func (g *globals) openJournal() (*store.Store, error) {
	if g.journalPath == "" {
		return nil, nil
	}
	return store.Open(g.journalPath)
}

// requireJournal is openJournal for commands that cannot work without one.
func (g *globals) requireJournal() (*store.Store, error) {
	if g.journalPath == "" {
		return nil, fmt.Errorf("no journal: pass --journal or set journal_path in %s", g.configPath)
	}
	return store.Open(g.journalPath)
}

// settingsFlags are the batch settings every command that sizes openings
// can override.
type settingsFlags struct {
	companion   string
	template    string
	widthParam  string
	heightParam string
	policy      string
	workers     int
}

func (s *settingsFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&s.companion, "companion", "", "substring of the companion model title")
	f.StringVar(&s.template, "template", "", "substring of the opening template family")
	f.StringVar(&s.widthParam, "width-param", "", "instance parameter receiving the opening width")
	f.StringVar(&s.heightParam, "height-param", "", "instance parameter receiving the opening height")
	f.StringVar(&s.policy, "policy", "", "failure policy: collect or fail-fast")
	f.IntVar(&s.workers, "workers", 0, "parallel ray-cast workers")
}

// apply overrides base with every flag the user set.
func (s *settingsFlags) apply(cmd *cobra.Command, base model.Settings) (model.Settings, error) {
	f := cmd.Flags()
	if f.Changed("companion") {
		base.CompanionTitle = s.companion
	}
	if f.Changed("template") {
		base.TemplateName = s.template
	}
	if f.Changed("width-param") {
		base.WidthParameter = s.widthParam
	}
	if f.Changed("height-param") {
		base.HeightParameter = s.heightParam
	}
	if f.Changed("policy") {
		p := model.FailurePolicy(s.policy)
		if !p.Valid() {
			return base, fmt.Errorf("invalid policy %q, expected %s or %s", s.policy, model.PolicyCollect, model.PolicyFailFast)
		}
		base.FailurePolicy = p
	}
	if f.Changed("workers") {
		if s.workers < 1 {
			return base, fmt.Errorf("workers must be at least 1, got %d", s.workers)
		}
		base.ScanWorkers = s.workers
	}
	return base, nil
}
