package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(configFile func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context(), configFile())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.DB.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", app.Config.DB.Driver)
			return nil
		},
	}
}
