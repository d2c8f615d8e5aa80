package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simaogato/estateflow-backend/internal/domain"
)

func newSeedCmd(configFile func() string) *cobra.Command {
	var (
		demo        bool
		depositDate string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the standard discount catalog, and optionally the demo records",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context(), configFile())
			if err != nil {
				return err
			}
			defer app.Close()

			created, err := app.Seeder.Seed(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "discount catalog: %d created\n", created)

			if !demo {
				return nil
			}

			date := app.Schedule.Today()
			if depositDate != "" {
				date, err = domain.ParseDate(depositDate)
				if err != nil {
					return fmt.Errorf("invalid --deposit-date: %w", err)
				}
			}
			if err := app.Seeder.SeedDemo(cmd.Context(), date); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "demo site plan and product ready")
			return nil
		},
	}
	cmd.Flags().BoolVar(&demo, "demo", false, "Also create the demo site plan and product")
	cmd.Flags().StringVar(&depositDate, "deposit-date", "", "Deposit date of the demo site plan (YYYY-MM-DD), defaults to today")

	return cmd
}
