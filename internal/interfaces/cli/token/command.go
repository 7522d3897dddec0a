package token

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/auth"
	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/config"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/constants"
)

var (
	env    string
	userID uint
	role   string
)

// NewCommand issues access tokens signed with the configured secret. Identity is owned by
// an external provider; this exists for local development and smoke tests.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development access token",
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")
	cmd.Flags().UintVarP(&userID, "user", "u", 0, "User ID (required)")
	cmd.Flags().StringVarP(&role, "role", "r", string(authorization.RoleUser), "Role: admin, incharge or user")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if env == constants.EnvProduction {
		return fmt.Errorf("token issuing is disabled in production")
	}

	r := authorization.UserRole(role)
	if !r.IsValid() {
		return fmt.Errorf("invalid role %q", role)
	}
	if userID == 0 {
		return fmt.Errorf("user ID must be positive")
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	svc := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.Issuer, cfg.Auth.JWT.AccessExpMinutes)
	token, err := svc.Generate(userID, r)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
