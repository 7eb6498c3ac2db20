package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ishuide/Car-price-prediction/pkg/cli/ui"
	"github.com/ishuide/Car-price-prediction/pkg/config"
	"github.com/ishuide/Car-price-prediction/pkg/data"
	"github.com/ishuide/Car-price-prediction/pkg/dataprep"
	"github.com/ishuide/Car-price-prediction/pkg/logger"
)

const version = "0.1.0"

// Execute runs the command tree on the terminal. Errors the commands have
// not printed themselves, such as a bad flag or config, are printed here.
func Execute(ctx context.Context) error {
	err := NewRootCmd(SurveyPrompter()).ExecuteContext(ctx)
	var shown *reportedError
	if err != nil && !errors.As(err, &shown) {
		ui.PrintError("%v", err)
	}
	return err
}

// reportedError marks an error that was already printed to the user.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// runtime is the state shared by all commands of one invocation.
type runtime struct {
	envFile string
	prompt  Prompter
	app     *App
	closer  io.Closer
}

// NewRootCmd builds the carprice command tree.
func NewRootCmd(prompt Prompter) *cobra.Command {
	rt := &runtime{prompt: prompt}

	root := &cobra.Command{
		Use:     "carprice",
		Short:   "Used car price analyzer",
		Version: version,
		Long: `Loads a used car dataset, cleans it into a local SQLite table, trains a
linear price model on it and answers price questions from an interactive menu.

Without a subcommand the raw dataset is loaded and the menu is opened.`,
		Example: `  # Load, clean and store the dataset, then open the menu
  $ carprice

  # Train and save the price model
  $ carprice train

  # Price a single car
  $ carprice predict --fuel-type Diesel --year 2002 --km 65000 --hp 90 --doors 4`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: rt.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return rt.teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ui.PrintBanner()
			if err := rt.ingest(cmd.Context()); err != nil {
				if errors.Is(err, data.ErrRawNotFound) {
					return err
				}
				ui.PrintWarning("Continuing with the dataset already stored in %s (table %s).",
					rt.app.Config.Data.DBPath, rt.app.Config.Data.Table)
			}
			return NewMenu(rt.app, rt.prompt).Run(cmd.Context())
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVar(&rt.envFile, "env-file", "", "env file to load instead of .env")

	root.AddCommand(
		newLoadCmd(rt),
		newTrainCmd(rt),
		newPredictCmd(rt),
		newMenuCmd(rt),
		newPlotCmd(rt),
	)
	root.SetUsageTemplate(usageTemplate())
	root.SetHelpTemplate(usageTemplate())
	return root
}

func (rt *runtime) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(rt.envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, closer, err := logger.Setup(cfg.Log)
	if err != nil {
		return err
	}
	rt.closer = closer
	rt.app = NewApp(cfg, log)
	return nil
}

func (rt *runtime) teardown() error {
	if rt.app != nil {
		if err := rt.app.Close(); err != nil {
			return err
		}
	}
	if rt.closer != nil {
		return rt.closer.Close()
	}
	return nil
}

func (rt *runtime) ingest(ctx context.Context) error {
	ui.PrintInfo("Loading and cleaning %s", rt.app.Config.Data.RawPath)
	sum, err := rt.app.Ingest(ctx)
	if errors.Is(err, data.ErrRawNotFound) {
		ui.PrintErrorBox("Raw dataset not found",
			fmt.Sprintf("%v\n\nSet RAW_DATA_PATH or place the file at that path.", err))
		return &reportedError{err}
	}
	if err != nil {
		return rt.fail(err)
	}
	printCleanSummary(sum)
	ui.PrintSuccess("Stored %d rows in %s (table %s)", sum.RowsOut, rt.app.Config.Data.DBPath, rt.app.Config.Data.Table)
	return nil
}

// fail prints err once, with the dataset or model location involved.
func (rt *runtime) fail(err error) error {
	reportError(rt.app.Config, err)
	return &reportedError{err}
}

func printCleanSummary(sum dataprep.Summary) {
	ui.PrintInfo("rows in %d, duplicates removed %d, rows out %d", sum.RowsIn, sum.DuplicatesRemoved, sum.RowsOut)
	if len(sum.ColumnsDropped) > 0 {
		ui.PrintInfo("dropped columns: %s", strings.Join(sum.ColumnsDropped, ", "))
	}
	for _, f := range sum.Fills {
		ui.PrintInfo("filled %d missing %s with %s %s", f.Count, f.Column, f.Strategy, f.Value)
	}
}

func usageTemplate() string {
	return `{{if .Long}}{{.Long}}

{{end}}` + ui.Styles.Bold.Render("USAGE") + `
  {{.UseLine}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}

{{if .HasExample}}` + ui.Styles.Bold.Render("EXAMPLES") + `
{{.Example}}

{{end}}{{if .HasAvailableSubCommands}}` + ui.Styles.Bold.Render("COMMANDS") + `{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableLocalFlags}}` + ui.Styles.Bold.Render("OPTIONS") + `
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableInheritedFlags}}` + ui.Styles.Bold.Render("GLOBAL OPTIONS") + `
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}
