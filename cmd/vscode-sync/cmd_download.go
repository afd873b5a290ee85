package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tilwick/vscode-sync/internal/commands"
	"github.com/tilwick/vscode-sync/internal/vscode"
)

var downloadQuiet bool

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the active profile and apply it locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := commands.Open(commands.DefaultRegistry())
		if err != nil {
			return err
		}

		if !downloadQuiet {
			var proceed bool
			err := huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title("Overwrite local configuration with the remote profile?").
						Description("Settings, keybindings, and snippets are replaced; nothing is deleted").
						Value(&proceed),
				),
			).Run()
			if err != nil {
				return err
			}
			if !proceed {
				fmt.Println("Download cancelled.")
				return nil
			}
			fmt.Println("Downloading configuration...")
		}

		result, err := commands.Download(cmd.Context(), session, vscode.New())
		if err != nil {
			return err
		}

		if downloadQuiet {
			return nil
		}

		fmt.Printf("✓ Downloaded profile %q from %s (%s/%s@%s)\n",
			result.Profile, result.Backend, result.Owner, result.Repo, result.Branch)
		for _, f := range result.Applied {
			fmt.Printf("  ✓ %s\n", f)
		}

		if len(result.Installed) > 0 {
			fmt.Printf("\n✓ %d extension(s) installed\n", len(result.Installed))
		}

		if len(result.FailedSnippets) > 0 {
			fmt.Fprintf(os.Stderr, "\n⚠️  %d snippet(s) could not be applied:\n", len(result.FailedSnippets))
			for _, name := range result.FailedSnippets {
				fmt.Fprintf(os.Stderr, "  • %s\n", name)
			}
		}
		if len(result.Failed) > 0 {
			fmt.Fprintf(os.Stderr, "\n⚠️  %d extension(s) failed to install:\n", len(result.Failed))
			for _, id := range result.Failed {
				fmt.Fprintf(os.Stderr, "  • %s\n", id)
			}
			fmt.Fprintf(os.Stderr, "\nSome extensions could not be installed. Check the errors above.\n")
		}

		if len(result.Applied) == 0 && len(result.Installed) == 0 && len(result.Failed) == 0 {
			fmt.Println("Nothing to apply. Run 'vscode-sync upload' on the source machine first.")
		}
		return nil
	},
}

func init() {
	downloadCmd.Flags().BoolVarP(&downloadQuiet, "quiet", "q", false, "Apply without confirmation or output")
}
