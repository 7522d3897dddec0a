package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/helpdesk-inc/helpdesk/internal/interfaces/cli/migrate"
	"github.com/helpdesk-inc/helpdesk/internal/interfaces/cli/seed"
	"github.com/helpdesk-inc/helpdesk/internal/interfaces/cli/server"
	"github.com/helpdesk-inc/helpdesk/internal/interfaces/cli/token"
	"github.com/helpdesk-inc/helpdesk/internal/interfaces/cli/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "helpdesk",
		Short: "Helpdesk - support tickets with realtime messaging",
		Long:  `Helpdesk serves the ticket and message API, the channel authorizer and the realtime WebSocket gateway.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		seed.NewCommand(),
		token.NewCommand(),
		version.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
