package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewCheckCmd creates the check command
func NewCheckCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check Firebase trust material",
		Long:  "Load the service account and fetch the token signing keys, exactly as the server does at startup",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, provider, err := newProvider()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Service account: %s\n", cfg.FirebaseServiceAccountPath)
			if err := provider.Init(ctx); err != nil {
				return fmt.Errorf("trust material check failed: %w", err)
			}
			fmt.Fprintf(out, "✓ Service account loaded for project %s\n", provider.ProjectID())
			fmt.Fprintln(out, "✓ Token signing keys fetched")
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Time allowed for loading trust material")
	return cmd
}
