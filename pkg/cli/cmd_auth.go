package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskdump/pkg/auth"
	"github.com/harrisonrobin/taskdump/pkg/config"
)

func newAuthCmd(a *app) *cobra.Command {
	var apiKey string
	var remove bool

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Store the API key of the remote task API",
		Long: `Store the API key used by "taskdump dump --source remote" so it does not
have to be passed on every run. The key is written to
~/.config/taskdump/token.json, readable by the owner only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if remove {
				path, err := auth.TokenPath()
				if err != nil {
					return err
				}
				if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("could not delete token file '%s': %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed stored API key %s\n", path)
				return nil
			}

			if apiKey == "" {
				apiKey = a.v.GetString(config.KeyAPIKey)
			}
			path, err := auth.SaveAPIKey(apiKey)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API key saved to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&apiKey, "apiKey", "k", "", "API key to store (defaults to TASKDUMP_API_KEY)")
	cmd.Flags().BoolVar(&remove, "remove", false, "delete the stored API key")

	return cmd
}
