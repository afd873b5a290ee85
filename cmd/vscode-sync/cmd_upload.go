package main

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tilwick/vscode-sync/internal/commands"
	"github.com/tilwick/vscode-sync/internal/vscode"
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload local configuration to the sync repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := commands.Open(commands.DefaultRegistry())
		if err != nil {
			return err
		}
		editor := vscode.New()

		if !session.State.HasActiveProfile() {
			name, err := promptProfileName()
			if err != nil {
				return err
			}
			meta, err := commands.CreateProfile(cmd.Context(), session, editor, name)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Created profile %q (%s)\n", meta.DisplayName, meta.ID)
		}

		fmt.Println("Uploading configuration...")
		result, err := commands.Upload(cmd.Context(), session, editor)
		if err != nil {
			return err
		}

		fmt.Printf("✓ Uploaded profile %q to %s (%s/%s@%s)\n",
			result.Profile, result.Backend, result.Owner, result.Repo, result.Branch)
		for _, path := range result.Written {
			fmt.Printf("  ✓ %s\n", path)
		}
		return nil
	},
}

func promptProfileName() (string, error) {
	var name string
	err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Profile name").
			Description("No profile is active yet. Name this machine's configuration").
			Value(&name),
	)).Run()
	if err != nil {
		return "", err
	}
	return name, nil
}
