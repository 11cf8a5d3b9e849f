package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/orris-inc/archy/internal/interfaces/cli/migrate"
	"github.com/orris-inc/archy/internal/interfaces/cli/server"
	"github.com/orris-inc/archy/internal/interfaces/cli/token"
	"github.com/orris-inc/archy/internal/shared/version"
)

// @title Archy API
// @version 1.0
// @description Read-only access to archived support tickets.
// @BasePath /api/v1
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	rootCmd := &cobra.Command{
		Use:     "archy",
		Short:   "Archy - support ticket archiver",
		Long:    `Archy archives support ticket channels into Postgres and lets staff search and restore them.`,
		Version: version.String(),
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		token.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
