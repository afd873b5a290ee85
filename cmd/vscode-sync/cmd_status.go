package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tilwick/vscode-sync/internal/commands"
	"github.com/tilwick/vscode-sync/internal/vscode"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := commands.Open(commands.DefaultRegistry())
		if err != nil {
			return err
		}

		result, err := commands.Status(cmd.Context(), session, vscode.New())
		if err != nil {
			return err
		}

		fmt.Printf("Backend: %s (%s/%s@%s)\n", result.Backend, result.Owner, result.Repo, result.Branch)
		if result.Profile == "" {
			fmt.Println("No active profile. Run 'vscode-sync profile create <name>' or 'vscode-sync profile use <name>'.")
			return nil
		}
		fmt.Printf("Profile: %s (%s)\n", result.Profile, result.ProfileID)
		fmt.Println()

		if !result.HasSnapshot {
			fmt.Println("No extension snapshot yet. Run 'vscode-sync upload' to publish one.")
			return nil
		}

		if len(result.Synced) > 0 {
			fmt.Println("SYNCED")
			for _, id := range result.Synced {
				fmt.Printf("  ✓ %s\n", id)
			}
			fmt.Println()
		}

		if len(result.Missing) > 0 {
			fmt.Println("NOT INSTALLED (run 'vscode-sync download' to install)")
			for _, id := range result.Missing {
				fmt.Printf("  ⚠️  %s\n", id)
			}
			fmt.Println()
		}

		if len(result.Untracked) > 0 {
			fmt.Println("UNTRACKED (run 'vscode-sync upload' to add to the profile)")
			for _, id := range result.Untracked {
				fmt.Printf("  ? %s\n", id)
			}
			fmt.Println()
		}

		if len(result.Missing) == 0 && len(result.Untracked) == 0 {
			fmt.Println("Everything is in sync.")
		}

		return nil
	},
}
