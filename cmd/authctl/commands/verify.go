package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nexusquery/auth-gateway/internal/auth"
	"github.com/spf13/cobra"
)

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	var (
		output  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a Firebase ID token",
		Long:  "Read an ID token from stdin and print the claims it carries. The token is never echoed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readToken(cmd.InOrStdin())
			if err != nil {
				return err
			}

			_, provider, err := newProvider()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			verifier := auth.NewVerifier(provider, auth.NewTrustMaterial(provider.Init), nil)
			claims, err := verifier.Verify(ctx, auth.BearerCredential(raw))
			if err != nil {
				kind, _ := auth.KindOf(err)
				return fmt.Errorf("token rejected (%s): %w", kind, err)
			}
			return writeOutput(cmd.OutOrStdout(), output, viewClaims(claims))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputYAML, "Output format (yaml|json)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Time allowed for verification")
	return cmd
}

// readToken reads the first non-empty line of r. A leading "Bearer " is
// accepted so a copied header value works.
func readToken(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 8192), 64*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if len(line) > 7 && strings.EqualFold(line[:7], "bearer ") {
			line = strings.TrimSpace(line[7:])
		}
		return line, nil
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return "", fmt.Errorf("no token on stdin")
}
