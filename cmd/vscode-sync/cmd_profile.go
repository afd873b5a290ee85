package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tilwick/vscode-sync/internal/commands"
	"github.com/tilwick/vscode-sync/internal/profiles"
	"github.com/tilwick/vscode-sync/internal/vscode"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage sync profiles",
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles in the sync repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := commands.Open(commands.DefaultRegistry())
		if err != nil {
			return err
		}

		list, err := commands.Profiles(cmd.Context(), session)
		if err != nil {
			return err
		}

		if len(list) == 0 {
			fmt.Println("No profiles yet. Run 'vscode-sync profile create <name>'.")
			return nil
		}

		for _, p := range list {
			if p.ID == session.State.ActiveProfileID {
				fmt.Printf("* %s: %s\n", p.ID, profileSummary(p.Meta))
			} else {
				fmt.Printf("  %s: %s\n", p.ID, profileSummary(p.Meta))
			}
		}

		return nil
	},
}

var profileCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a profile and make it active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := commands.Open(commands.DefaultRegistry())
		if err != nil {
			return err
		}

		meta, err := commands.CreateProfile(cmd.Context(), session, vscode.New(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("✓ Created profile %q (%s)\n", meta.DisplayName, meta.ID)
		fmt.Println("Run 'vscode-sync upload' to publish your configuration.")
		return nil
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Switch the active profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := commands.Open(commands.DefaultRegistry())
		if err != nil {
			return err
		}

		var picked profiles.RemoteProfile
		if len(args) == 1 {
			picked, err = commands.FindProfile(cmd.Context(), session, args[0])
		} else {
			picked, err = promptProfilePick(cmd.Context(), session)
		}
		if err != nil {
			return err
		}

		if err := commands.UseProfile(session, picked.ID, picked.Meta.DisplayName); err != nil {
			return err
		}

		fmt.Printf("✓ Active profile is now %q\n", picked.Meta.DisplayName)
		fmt.Println("Run 'vscode-sync download' to apply it.")
		return nil
	},
}

var profileRenameCmd = &cobra.Command{
	Use:   "rename <name> <new-name>",
	Short: "Rename a profile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := commands.Open(commands.DefaultRegistry())
		if err != nil {
			return err
		}

		p, err := commands.FindProfile(cmd.Context(), session, args[0])
		if err != nil {
			return err
		}

		if err := commands.RenameProfile(cmd.Context(), session, p.ID, args[1]); err != nil {
			return err
		}

		fmt.Printf("✓ Renamed profile to %q\n", args[1])
		return nil
	},
}

// promptProfilePick lets the user choose among the remote profiles.
func promptProfilePick(ctx context.Context, session *commands.Session) (profiles.RemoteProfile, error) {
	list, err := commands.Profiles(ctx, session)
	if err != nil {
		return profiles.RemoteProfile{}, err
	}
	if len(list) == 0 {
		return profiles.RemoteProfile{}, fmt.Errorf("no profiles yet. Run 'vscode-sync profile create <name>'")
	}

	var id string
	var options []huh.Option[string]
	for _, p := range list {
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%s)", p.Meta.DisplayName, p.ID), p.ID))
	}
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which profile should be active?").
				Options(options...).
				Value(&id),
		),
	).Run()
	if err != nil {
		return profiles.RemoteProfile{}, err
	}

	for _, p := range list {
		if p.ID == id {
			return p, nil
		}
	}
	return profiles.RemoteProfile{}, fmt.Errorf("no profile selected")
}

func profileSummary(m profiles.Metadata) string {
	parts := []string{m.DisplayName}
	if m.Platform != "" {
		parts = append(parts, m.Platform)
	}
	if m.LastSyncAt != nil {
		parts = append(parts, "last sync "+m.LastSyncAt.Format("2006-01-02"))
	} else {
		parts = append(parts, "never synced")
	}
	return strings.Join(parts, ", ")
}

func init() {
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileCreateCmd)
	profileCmd.AddCommand(profileUseCmd)
	profileCmd.AddCommand(profileRenameCmd)
}
