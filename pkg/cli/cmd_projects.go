package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskdump/pkg/index"
)

func newProjectsCmd(a *app) *cobra.Command {
	var unique bool
	var count bool

	cmd := &cobra.Command{
		Use:   "projects <export-file>...",
		Short: "List the projects recorded in export files",
		Long: `List the projects recorded in one or more export files, one per line.

Files are read in sorted order, so dated exports come out oldest first.

Examples:
  taskdump projects 2024-01-05-taskwarrior.json
  taskdump projects --unique ~/backups/*-taskwarrior.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := index.NewExportIndex(a.fs, args...)
			if err != nil {
				return err
			}

			projects := idx.Projects()
			if unique {
				projects = projects.Unique()
			}

			out := cmd.OutOrStdout()
			for _, p := range projects {
				fmt.Fprintln(out, p)
			}
			if count {
				fmt.Fprintf(out, "%d tasks in %d exports\n", len(idx.Tasks()), len(idx.Documents()))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&unique, "unique", "u", false, "print each project once, in first-seen order")
	cmd.Flags().BoolVar(&count, "count", false, "also print the number of tasks read")

	return cmd
}
