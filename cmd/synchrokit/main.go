// Package main implements the synchrokit command line.
// It uses the cobra library to define commands and flags.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rpggio/synchrokit/internal/config"
	"github.com/rpggio/synchrokit/internal/logging"
	"github.com/rpggio/synchrokit/internal/sqlite"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var (
	configPath    string
	transportMode string
	tenantID      string
	description   string

	cfg     config.Config
	logger  *slog.Logger
	logFile *logging.FileWriter
	db      *sqlite.DB
)

// setupRuntime loads configuration, builds the logger and opens the database.
func setupRuntime(cmd *cobra.Command, args []string) error {
	var err error

	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	// Flags override config
	if transportMode != "" {
		cfg.Transport.Mode = transportMode
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	// stdout carries JSON-RPC in stdio mode
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == config.TransportStdio {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		logFile, err = logging.OpenFile(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			logWriter = logFile
		}
	}
	logger = logging.New(logWriter, cfg.Log.Level)

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return fmt.Errorf("prepare database path: %w", err)
	}

	db, err = sqlite.New(cfg.DB.Path)
	if err != nil {
		return err
	}

	if err := db.RunMigrations(); err != nil {
		return err
	}

	return nil
}

// tearDownRuntime closes whatever setupRuntime managed to open.
func tearDownRuntime() error {
	var errs []error
	if db != nil {
		errs = append(errs, db.Close())
		db = nil
	}
	if logFile != nil {
		errs = append(errs, logFile.Close())
		logFile = nil
	}
	return errors.Join(errs...)
}

// withRuntime wraps run with setupRuntime and tearDownRuntime. The teardown is
// deferred so it also runs when setup or run fails.
func withRuntime(run func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			err = errors.Join(err, tearDownRuntime())
		}()
		if err := setupRuntime(cmd, args); err != nil {
			return err
		}
		return run(cmd, args)
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

var (
	rootCmd = &cobra.Command{
		Use:           "synchrokit",
		Short:         "synchrokit tracks object descriptors and how often they are used.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the descriptor tools over HTTP or stdio",
		Long: `Serve the descriptor tools.

In http mode a JSON-RPC endpoint is served at POST /mcp and a health check at
GET /health. With auth enabled, requests need an API key as a bearer token.

In stdio mode the server speaks MCP on stdin and stdout, and logs go to stderr.`,
		Example: `  # Serve HTTP on the configured host and port
  synchrokit serve

  # Serve MCP over stdio for a local client
  synchrokit serve --transport stdio`,
		Args: cobra.NoArgs,
		RunE: withRuntime(func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		}),
	}
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		Args:  cobra.NoArgs,
		RunE: withRuntime(func(cmd *cobra.Command, args []string) error {
			logger.Info("migrations applied", "db", cfg.DB.Path)
			return nil
		}),
	}
	apikeyCmd = &cobra.Command{
		Use:   "apikey",
		Short: "Manage API keys.",
	}
	apikeyCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Issue a bearer token for a tenant",
		Long: `Issue a new bearer token for a tenant and print it.

Only a hash of the token is stored, so it cannot be shown again.`,
		Example: `  synchrokit apikey create --tenant acme --description "build agent"`,
		Args:    cobra.NoArgs,
		RunE: withRuntime(func(cmd *cobra.Command, args []string) error {
			token, err := sqlite.NewAPIKeyRepository(db).Create(cmd.Context(), tenantID, description)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		}),
	}
)

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file. Overrides SYNCHROKIT_CONFIG_PATH.")
	serveCmd.Flags().StringVar(&transportMode, "transport", "", "Transport: 'http' or 'stdio'. Overrides config.")
	apikeyCreateCmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant that owns the key.")
	apikeyCreateCmd.Flags().StringVar(&description, "description", "", "Free-form note stored with the key.")
	_ = apikeyCreateCmd.MarkFlagRequired("tenant")

	apikeyCmd.AddCommand(apikeyCreateCmd)
	rootCmd.AddCommand(serveCmd, migrateCmd, apikeyCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
