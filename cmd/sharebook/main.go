package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Veraticus/sharebook/internal/cli"
	"github.com/Veraticus/sharebook/internal/common"
	"github.com/Veraticus/sharebook/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

// app carries the state shared by every command of one invocation.
type app struct {
	v       *viper.Viper
	cfg     *config.Config
	cfgFile string
	envFile string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "sharebook",
		Short: "📒 Bookkeeping and profit sharing for small businesses",
		Long: `sharebook records income and expenses, tracks shareholders and their
payouts, and reports profit and each shareholder's share over any date range.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.initConfig,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/sharebook/config.yaml)")
	flags.StringVar(&a.envFile, "env-file", "", "load environment variables from this file (default: ./.env if present)")
	flags.String("db", "", "database path (default: $HOME/.local/share/sharebook/sharebook.db)")
	flags.String("user", "", "acting user id")
	flags.String("currency", "", "ISO currency code used to display amounts")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")

	_ = a.v.BindPFlag(config.KeyDatabasePath, flags.Lookup("db"))
	_ = a.v.BindPFlag(config.KeyAuthUser, flags.Lookup("user"))
	_ = a.v.BindPFlag(config.KeyCurrency, flags.Lookup("currency"))
	_ = a.v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = a.v.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format"))

	rootCmd.AddCommand(a.transactionsCmd())
	rootCmd.AddCommand(a.categoriesCmd())
	rootCmd.AddCommand(a.shareholdersCmd())
	rootCmd.AddCommand(a.disbursementsCmd())
	rootCmd.AddCommand(a.reportCmd())
	rootCmd.AddCommand(a.snapshotCmd())
	rootCmd.AddCommand(a.migrateCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func printError(w io.Writer, err error) {
	var userErr *common.UserError
	switch {
	case errors.As(err, &userErr):
		fmt.Fprintln(w, cli.FormatError(userErr.Error()))
	case errors.Is(err, common.ErrUnauthenticated):
		fmt.Fprintln(w, cli.FormatError("Not signed in: set auth.user in the config, SHAREBOOK_AUTH_USER, or --user."))
	default:
		fmt.Fprintln(w, cli.FormatError(err.Error()))
	}
}

func (a *app) initConfig(_ *cobra.Command, _ []string) error {
	// .env values must be in the environment before viper reads it.
	if err := config.LoadEnvFile(a.envFile); err != nil {
		return err
	}
	config.SetDefaults(a.v)

	if a.cfgFile != "" {
		a.v.SetConfigFile(config.ExpandPath(a.cfgFile))
	} else {
		a.v.AddConfigPath(config.DefaultConfigDir())
		a.v.AddConfigPath(".")
		a.v.SetConfigName("config")
		a.v.SetConfigType("yaml")
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := common.SetupLogger(cfg.LogLevel, cfg.LogFormat); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	slog.Debug("configuration loaded",
		"database", cfg.DatabasePath,
		"currency", cfg.Currency,
		"timezone", cfg.Location.String(),
		"config_file", a.v.ConfigFileUsed())
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sharebook %s\n", version)
		},
	}
}
