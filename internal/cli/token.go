package cli

import (
	"fmt"
	"os"
	"time"

	"shuttlesync/internal/session"

	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		userID string
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a session token for local testing",
		Long:  "Sign a session token with SESSION_JWT_SECRET, the same secret the booking service verifies with.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := os.Getenv("SESSION_JWT_SECRET")
			if secret == "" {
				return fmt.Errorf("SESSION_JWT_SECRET is not set")
			}
			r := session.Role(role)
			if r != session.RoleAdmin && r != session.RoleCustomer {
				return fmt.Errorf("unknown role %q", role)
			}
			token, err := session.Issue([]byte(secret), userID, r, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().StringVar(&role, "role", string(session.RoleCustomer), "admin or customer")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
