package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProgressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Scenario progress commands",
	}

	cmd.AddCommand(newProgressShowCmd())
	cmd.AddCommand(newProgressStartCmd())
	cmd.AddCommand(newProgressCompleteCmd())
	cmd.AddCommand(newProgressChooseCmd())

	return cmd
}

func newProgressShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your progress ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Ledger

			if err := client.Get("/api/v1/progress", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newProgressStartCmd() *cobra.Command {
	var pct int

	cmd := &cobra.Command{
		Use:   "start <scenario-id>",
		Short: "Mark a scenario as in progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req any
			if pct != 0 {
				req = map[string]int{"pct": pct}
			}
			var result ProgressEntry

			path := fmt.Sprintf("/api/v1/progress/%s/start", args[0])
			if err := client.Post(path, req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&pct, "pct", 0, "Progress percentage (default: server default)")

	return cmd
}

func newProgressCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <scenario-id>",
		Short: "Mark a scenario as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ProgressEntry

			path := fmt.Sprintf("/api/v1/progress/%s/complete", args[0])
			if err := client.Post(path, nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newProgressChooseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "choose <scenario-id> <choice>",
		Short: "Record your response choice for a scenario",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"choice": args[1]}
			var result ProgressEntry

			path := fmt.Sprintf("/api/v1/progress/%s/choice", args[0])
			if err := client.Put(path, req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
