package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskdump/pkg/auth"
	"github.com/harrisonrobin/taskdump/pkg/config"
	"github.com/harrisonrobin/taskdump/pkg/export"
	"github.com/harrisonrobin/taskdump/pkg/failure"
	"github.com/harrisonrobin/taskdump/pkg/pipeline"
	"github.com/harrisonrobin/taskdump/pkg/source"
)

func newDumpCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump [-- taskwarrior filter...]",
		Short: "Dump all tasks to a dated JSON file",
		Long: `Dump all tasks to a file as JSON, along with the list of their projects.

Tasks come from the local Taskwarrior CLI ("task export") unless an API key is
given, in which case they are fetched from the remote API.

The file name is built from --export-format; "{date}" is replaced by today's
date (YYYY-MM-DD). The default is "{date}-taskwarrior.json" for the local
source and "{date}-intheam.json" for the remote one.

Arguments after "--" are passed to task as a filter (local source only).

Examples:
  taskdump dump
  taskdump dump --export-path ~/backups --export-format 'tasks-{date}.json'
  taskdump dump -k $INTHEAM_TOKEN
  taskdump dump -- project:work status:pending`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			for key, name := range map[string]string{
				config.KeyExportFormat: "export-format",
				config.KeyExportPath:   "export-path",
				config.KeySource:       "source",
				config.KeyAPIKey:       "apiKey",
				config.KeyAPIURL:       "api-url",
				config.KeyTaskBin:      "task-bin",
				config.KeyPretty:       "pretty",
				config.KeyTimeout:      "timeout",
			} {
				if err := a.v.BindPFlag(key, flags.Lookup(name)); err != nil {
					return err
				}
			}

			cfg, err := config.FromViper(a.v)
			if err != nil {
				return err
			}

			srcCfg, err := sourceConfig(cfg, args)
			if err != nil {
				return err
			}

			src, err := source.New(srcCfg)
			if err != nil {
				return err
			}

			writer := export.NewWriter(a.fs, export.WithIndent(cfg.Pretty))
			target := pipeline.Target{
				Format:    cfg.ExportFormat,
				Directory: cfg.ExportPath,
			}

			res := pipeline.New(src, writer, target).Run(cmd.Context())
			if res.Err != nil {
				return res.Err
			}

			slog.InfoContext(cmd.Context(), "dump complete", slog.String("path", res.Path))
			return nil
		},
	}

	cmd.Flags().String("export-format", "", "export file name format, {date} is replaced by the current date (default \"{date}-<source>.json\")")
	cmd.Flags().String("export-path", "", "directory to write the export to (default current directory)")
	cmd.Flags().String("source", "", "task source: local or remote (default local, remote when an api key is given)")
	cmd.Flags().StringP("apiKey", "k", "", "API key for the remote task API")
	cmd.Flags().String("api-url", "", "base URL of the remote task API (default \"https://inthe.am\")")
	cmd.Flags().String("task-bin", "", "Taskwarrior executable (default \"task\")")
	cmd.Flags().Bool("pretty", false, "indent the JSON output")
	cmd.Flags().Duration("timeout", 0, "timeout of the remote API request (default 1m)")

	return cmd
}

// sourceConfig decides which source to use. Without an explicit source, an
// api key selects the remote API.
func sourceConfig(cfg *config.Config, filter []string) (source.Config, error) {
	kind := source.Kind(strings.ToLower(strings.TrimSpace(cfg.Source)))
	if kind == "" {
		kind = source.KindLocal
		if cfg.APIKey != "" {
			kind = source.KindRemote
		}
	}

	srcCfg := source.Config{
		Kind:       kind,
		TaskBinary: cfg.TaskBin,
		APIURL:     cfg.APIURL,
		APIKey:     cfg.APIKey,
		Timeout:    cfg.Timeout,
	}

	switch kind {
	case source.KindLocal:
		srcCfg.Filter = filter
	case source.KindRemote:
		if len(filter) > 0 {
			return source.Config{}, failure.New(failure.CodeConfigInvalid,
				fmt.Sprintf("task filters are only supported by the local source (got %q)", strings.Join(filter, " ")), nil)
		}
		if srcCfg.APIKey == "" {
			key, err := auth.LoadAPIKey()
			if err != nil {
				return source.Config{}, failure.New(failure.CodeConfigInvalid, "could not read stored api key", err)
			}
			srcCfg.APIKey = key
		}
	}

	return srcCfg, nil
}
