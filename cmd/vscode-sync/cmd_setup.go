package main

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tilwick/vscode-sync/internal/commands"
	"github.com/tilwick/vscode-sync/internal/config"
	"github.com/tilwick/vscode-sync/internal/remote"
)

var setupBackend string
var setupToken string
var setupRepo string

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Connect to a sync backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		backend := setupBackend
		token := setupToken
		repo := setupRepo

		if backend == "" || token == "" {
			if err := promptSetup(&backend, &token, &repo); err != nil {
				return err
			}
		}

		login, err := commands.Setup(cmd.Context(), commands.DefaultRegistry(), commands.SetupOptions{
			Kind:       remote.Kind(backend),
			Token:      token,
			Repository: repo,
		}.DefaultSetupPaths())
		if err != nil {
			return err
		}

		fmt.Printf("✓ Authenticated as %s\n", login)
		fmt.Println()
		fmt.Println("Run 'vscode-sync profile create <name>' to start syncing.")
		return nil
	},
}

// promptSetup collects the backend, token, and repository name. Values
// already provided through flags are kept as the form's initial answers.
func promptSetup(backend, token, repo *string) error {
	if *backend == "" {
		*backend = string(remote.GitHub)
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which backend hosts your sync repository?").
				Options(
					huh.NewOption("GitHub", string(remote.GitHub)),
					huh.NewOption("Gitee", string(remote.Gitee)),
				).
				Value(backend),
			huh.NewInput().
				Title("Personal access token").
				Description("Needs permission to create and write repositories").
				EchoMode(huh.EchoModePassword).
				Value(token),
			huh.NewInput().
				Title("Repository name").
				Description("Created as a private repository if it does not exist").
				Placeholder(config.DefaultRepository).
				Value(repo),
		),
	).Run()
}

func init() {
	setupCmd.Flags().StringVar(&setupBackend, "backend", "", "Backend to use (github or gitee)")
	setupCmd.Flags().StringVar(&setupToken, "token", "", "Personal access token (prompted if omitted)")
	setupCmd.Flags().StringVar(&setupRepo, "repo", "", "Sync repository name")
}
