// Command gnomeshade-admin manages a gnomeshade database directly: it
// applies migrations, creates users, adds currencies and authorizes the
// Google Sheets journal.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gnomeshade/internal/cli"
	"gnomeshade/internal/commands"
	"gnomeshade/internal/log"
	"gnomeshade/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cli.LoadEnvFile()
	cfg, err := cli.LoadConfig(nil)
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg, log.ComponentAdmin)

	rootCmd := &cobra.Command{
		Use:   "gnomeshade-admin",
		Short: "Administrative tasks for a gnomeshade database",
		Long: `gnomeshade-admin works directly against the database configured by
DATABASE_DRIVER, SQLITE_DB_PATH and DATABASE_URL. It does not need the
server to be running.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	open := func(ctx context.Context) (*storage.DB, *storage.Store, error) {
		return cli.OpenStore(ctx, cfg, logger)
	}
	commands.InitAdminCommands(rootCmd, commands.NewAdminCommandHandler(open, logger))
	commands.InitSheetsCommands(rootCmd, commands.NewSheetsCommandHandler(cfg.OAuthClient, cfg.GoogleOAuthTokenFile))

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()
	return rootCmd.ExecuteContext(ctx)
}
