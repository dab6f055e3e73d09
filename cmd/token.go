package cmd

import (
	"fmt"
	"time"

	"fieldstock/internal/config"
	"fieldstock/pkg/models"
	"fieldstock/pkg/roles"
	"fieldstock/pkg/security"

	"github.com/spf13/cobra"
)

const defaultTokenTTL = 24 * time.Hour

// TokenCmd issues a signed bearer token for local testing.
var TokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a signed bearer token.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.JWT.Secret == "" {
			return fmt.Errorf("missing required configuration: JWT_SECRET")
		}

		userID, _ := cmd.Flags().GetInt64("user-id")
		roleName, _ := cmd.Flags().GetString("role")
		regionID, _ := cmd.Flags().GetInt64("region-id")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		if userID <= 0 {
			return fmt.Errorf("--user-id must be positive")
		}
		role := roles.Role(roleName)
		if !role.IsValid() {
			return fmt.Errorf("unknown role %q", roleName)
		}

		actor := models.Actor{ID: userID, Role: role}
		if regionID > 0 {
			actor.RegionID = &regionID
		}

		token, err := security.GenerateJWT([]byte(cfg.JWT.Secret), actor, ttl)
		if err != nil {
			return fmt.Errorf("failed to sign token: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}
