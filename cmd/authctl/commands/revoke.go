package commands

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nexusquery/auth-gateway/internal/auth"
	"github.com/spf13/cobra"
)

// NewRevokeCmd creates the revoke command
func NewRevokeCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke every refresh token of the token's owner",
		Long: "Read an ID token from stdin, verify it and revoke all refresh tokens of the user it belongs to. " +
			"Only the token owner's sessions can be revoked. Access tokens already issued stay valid until they expire.",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readToken(cmd.InOrStdin())
			if err != nil {
				return err
			}

			cfg, provider, err := newProvider()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			gate := auth.NewGate(auth.NewVerifier(provider, auth.NewTrustMaterial(provider.Init), nil), nil, nil)
			revoker := auth.NewSessionRevoker(provider, nil, cfg.RevokeTimeout)
			uid, err := revokeOwnSessions(ctx, gate, revoker, raw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Sessions revoked for %s\n", uid)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Time allowed for the operation")
	return cmd
}

type sessionGate interface {
	Authorize(ctx context.Context, h http.Header, policy auth.Policy) (*auth.VerifiedClaims, error)
}

type sessionRevoker interface {
	RevokeAllSessions(ctx context.Context, subjectID string) error
}

// revokeOwnSessions passes raw through the gate and revokes the sessions of
// the subject it proves. No other subject can be named.
func revokeOwnSessions(ctx context.Context, gate sessionGate, revoker sessionRevoker, raw string) (string, error) {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+raw)
	claims, err := gate.Authorize(ctx, h, auth.RequireAuthentication)
	if err != nil {
		kind, _ := auth.KindOf(err)
		return "", fmt.Errorf("token rejected (%s): %w", kind, err)
	}
	if err := revoker.RevokeAllSessions(ctx, claims.SubjectID); err != nil {
		return "", fmt.Errorf("revocation outcome unknown: %w", err)
	}
	return claims.SubjectID, nil
}
