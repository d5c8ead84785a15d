package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newNotesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Personal reflection notes commands",
	}

	cmd.AddCommand(newNotesShowCmd())
	cmd.AddCommand(newNotesSetCmd())

	return cmd
}

func newNotesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your saved notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Notes

			if err := client.Get("/api/v1/notes", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newNotesSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <text>",
		Short: "Replace your saved notes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"notes": strings.Join(args, " ")}

			if err := client.Put("/api/v1/notes", req, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Notes saved")
			return nil
		},
	}
}

func newPrefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Accessibility preference commands",
	}

	cmd.AddCommand(newPrefsShowCmd())
	cmd.AddCommand(newPrefsSetCmd())

	return cmd
}

func newPrefsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your accessibility preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result struct {
				Preferences map[string]bool `json:"preferences"`
			}

			if err := client.Get("/api/v1/preferences", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			if cfg.Output == "json" {
				out.Print(result)
				return nil
			}
			if len(result.Preferences) == 0 {
				out.PrintMessage("No preferences set")
				return nil
			}
			data, _ := json.Marshal(result.Preferences)
			fmt.Println(string(data))
			return nil
		},
	}
}

func newPrefsSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key>=<true|false> ...",
		Short: "Set accessibility preference flags",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs := make(map[string]bool, len(args))
			for _, arg := range args {
				key, value, found := strings.Cut(arg, "=")
				if !found || key == "" {
					return fmt.Errorf("invalid preference %q: expected key=true|false", arg)
				}
				switch value {
				case "true":
					prefs[key] = true
				case "false":
					prefs[key] = false
				default:
					return fmt.Errorf("invalid preference %q: expected key=true|false", arg)
				}
			}

			req := map[string]any{"preferences": prefs}
			if err := client.Put("/api/v1/preferences", req, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Preferences saved")
			return nil
		},
	}

	return cmd
}
