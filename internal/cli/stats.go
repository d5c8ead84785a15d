package cli

import (
	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Dashboard aggregate commands",
	}

	cmd.AddCommand(newStatsOrgCmd())
	cmd.AddCommand(newStatsTeamCmd())

	return cmd
}

func newStatsOrgCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "org",
		Short: "Show organization completion stats (HR only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result OrgStats

			if err := client.Get("/api/v1/stats/org", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newStatsTeamCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "team",
		Short: "Show direct report progress (managers only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result TeamStats

			if err := client.Get("/api/v1/stats/team", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
