// Package cli implements the taskdump command-line interface.
package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/harrisonrobin/taskdump/pkg/config"
)

// app holds what the subcommands share.
type app struct {
	cfgFile string
	verbose bool

	fs afero.Fs
	v  *viper.Viper
}

// Execute runs the command line against the OS filesystem. ctx is cancelled
// on interrupt.
func Execute(ctx context.Context) error {
	return newRootCmd(afero.NewOsFs()).ExecuteContext(ctx)
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	a := &app{fs: fs}

	cmd := &cobra.Command{
		Use:   "taskdump",
		Short: "Export Taskwarrior tasks to dated JSON files",
		Long: `taskdump exports every task from the local Taskwarrior CLI or from a remote
Taskwarrior web API (inthe.am) into a JSON file, together with the list of
projects the tasks belong to.

Quick start:
  taskdump dump                              Export local tasks to ./{date}-taskwarrior.json
  taskdump dump -k <token> --export-path ~/backups
                                             Export tasks from inthe.am
  taskdump projects ~/backups/*.json         List projects of previous exports`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd.ErrOrStderr(), a.verbose)

			v, err := config.NewViper(a.cfgFile)
			if err != nil {
				return err
			}
			a.v = v
			if used := v.ConfigFileUsed(); used != "" {
				slog.DebugContext(cmd.Context(), "using config file", slog.String("path", used))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ~/.config/taskdump/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(newDumpCmd(a))
	cmd.AddCommand(newProjectsCmd(a))
	cmd.AddCommand(newAuthCmd(a))
	cmd.AddCommand(newConfigCmd(a))

	return cmd
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
