package cmd

import (
	"context"
	"fmt"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/version"
)

// updateRepository is the GitHub repository releases are published to.
const updateRepository = "JaniniRami/WebRTC-Vinyl-Client"

// CreateUpdateCmd creates the update command, which replaces the running
// binary with the latest GitHub release. The appliance runs headless, so
// self-update beats shipping binaries over scp.
func CreateUpdateCmd() *cobra.Command {
	var checkOnly bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update audionode to the latest release",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
			if err != nil {
				return fmt.Errorf("failed to create GitHub source: %w", err)
			}

			updater, err := selfupdate.NewUpdater(selfupdate.Config{Source: source})
			if err != nil {
				return fmt.Errorf("failed to create updater: %w", err)
			}

			repo := selfupdate.ParseSlug(updateRepository)
			release, found, err := updater.DetectLatest(ctx, repo)
			if err != nil {
				return fmt.Errorf("failed to check for updates: %w", err)
			}
			if !found {
				return fmt.Errorf("no releases found for %s", updateRepository)
			}

			current := version.Version
			// A dev build is always considered outdated
			if current != "dev" && !release.GreaterThan(current) {
				fmt.Printf("Already up to date (current %s, latest %s)\n", current, release.Version())
				return nil
			}

			if checkOnly {
				fmt.Printf("Update available: %s -> %s\n%s\n", current, release.Version(), release.URL)
				return nil
			}

			exe, err := selfupdate.ExecutablePath()
			if err != nil {
				return fmt.Errorf("failed to locate executable: %w", err)
			}

			fmt.Printf("Updating %s -> %s\n", current, release.Version())
			if err := updater.UpdateTo(ctx, release, exe); err != nil {
				return fmt.Errorf("failed to apply update: %w", err)
			}

			fmt.Printf("Updated to %s; restart the service to run it\n", release.Version())
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "Check for an update without applying it")

	return cmd
}
