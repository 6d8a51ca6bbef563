package main

import (
	"fmt"
	"os"
	"time"

	"chalkstone_backend/internal/auth"
	"chalkstone_backend/internal/auth/token"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		userType string
		userID   string
		secret   string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed access token for testing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if userType != auth.UserTypePublic && userType != auth.UserTypeStaff {
				return fmt.Errorf("invalid user type %q: want %s or %s", userType, auth.UserTypePublic, auth.UserTypeStaff)
			}

			id := uuid.New()
			if userID != "" {
				parsed, err := uuid.Parse(userID)
				if err != nil {
					return fmt.Errorf("invalid user id: %w", err)
				}
				id = parsed
			}

			if secret == "" {
				_ = godotenv.Load()
				secret = os.Getenv("JWT_ACCESS_SECRET")
			}

			signed, err := token.SignAccessToken(secret, id, token.RolesForUserType(userType), ttl)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Generated JWT token:")
			fmt.Fprintln(out, signed)
			return nil
		},
	}

	cmd.Flags().StringVar(&userType, "type", auth.UserTypeStaff, "user type (public or staff)")
	cmd.Flags().StringVar(&userID, "id", "", "user UUID (random when empty)")
	cmd.Flags().StringVar(&secret, "secret", "", "signing secret (defaults to JWT_ACCESS_SECRET)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
