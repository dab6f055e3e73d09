package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func Execute(ctx context.Context) {
	rootCmd := &cobra.Command{
		Use:   "fieldstock",
		Short: "Field inventory ledger and transfer service",
	}

	MigrateCmd.Flags().String("dir", "./migrations", "Directory containing the migration files")
	ServeCmd.Flags().Bool("in-memory", false, "Serve from an in-memory store instead of Postgres")
	TokenCmd.Flags().Int64("user-id", 0, "Actor id placed in the token")
	TokenCmd.Flags().String("role", "technician", "Actor role: technician, supervisor or admin")
	TokenCmd.Flags().Int64("region-id", 0, "Optional region id; 0 leaves the claim out")
	TokenCmd.Flags().Duration("ttl", defaultTokenTTL, "Token lifetime")

	rootCmd.AddCommand(ServeCmd, MigrateCmd, TokenCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
