package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/nexusquery/auth-gateway/internal/config"
	"github.com/nexusquery/auth-gateway/internal/database"
	"github.com/nexusquery/auth-gateway/internal/models"
	"github.com/spf13/cobra"
)

// NewProfilesCmd creates the profiles command group
func NewProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Inspect locally synced user profiles",
	}
	cmd.AddCommand(newProfilesListCmd())
	cmd.AddCommand(newProfilesDeleteCmd())
	return cmd
}

func openProfiles() (*database.DB, *database.ProfileRepository, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is not set")
	}
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, database.NewProfileRepository(db), nil
}

func closeDB(db *database.DB) {
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
	}
}

func newProfilesListCmd() *cobra.Command {
	var (
		limit  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List profiles, most recently seen first",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, repo, err := openProfiles()
			if err != nil {
				return err
			}
			defer closeDB(db)

			profiles, err := repo.List(context.Background(), limit)
			if err != nil {
				return fmt.Errorf("failed to list profiles: %w", err)
			}
			return printProfiles(cmd.OutOrStdout(), output, profiles)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of profiles")
	cmd.Flags().StringVarP(&output, "output", "o", outputYAML, "Output format (yaml|json)")
	return cmd
}

func printProfiles(w io.Writer, format string, profiles []*models.Profile) error {
	if len(profiles) == 0 {
		_, err := fmt.Fprintln(w, "No profiles found")
		return err
	}
	return writeOutput(w, format, profiles)
}

func newProfilesDeleteCmd() *cobra.Command {
	var uid string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the local profile of a user",
		Long:  "Delete the local profile row. The Firebase account is not touched and the profile is recreated on the next authenticated request.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if uid == "" {
				return fmt.Errorf("--uid is required")
			}
			db, repo, err := openProfiles()
			if err != nil {
				return err
			}
			defer closeDB(db)

			if err := repo.Delete(context.Background(), uid); err != nil {
				return fmt.Errorf("failed to delete profile: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Profile deleted for %s\n", uid)
			return nil
		},
	}

	cmd.Flags().StringVar(&uid, "uid", "", "Firebase user id (required)")
	return cmd
}
