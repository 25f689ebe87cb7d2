package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/ourllet/internal/infrastructure/config"
	"github.com/iho/ourllet/internal/infrastructure/logger"
	"github.com/iho/ourllet/internal/infrastructure/postgres"
)

type options struct {
	baseURL string
	token   string
	timeout time.Duration
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "ourllet-cli",
		Short:        "Ourllet CLI tool",
		Long:         `A command line interface for database migrations and the Ourllet API.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("OURLLET_URL", "http://localhost:8080"), "Base URL of the Ourllet API")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("OURLLET_TOKEN"), "Session token")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		migrateCmd(),
		healthCmd(opts),
		ledgersCmd(opts),
		settlementCmd(opts),
		summaryCmd(opts),
	)

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Migration commands

type migrationFuncs struct {
	up      func(databaseURL, migrationsURL string, logger zerolog.Logger) error
	down    func(databaseURL, migrationsURL string, logger zerolog.Logger) error
	version func(databaseURL, migrationsURL string, logger zerolog.Logger) (uint, bool, error)
}

var migrations = migrationFuncs{
	up:      postgres.RunMigrations,
	down:    postgres.RunMigrationsDown,
	version: postgres.MigrationVersion,
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	load := func(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, zerolog.Nop(), fmt.Errorf("load configuration: %w", err)
		}
		log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", Output: cmd.ErrOrStderr()})
		return cfg, log, nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, log, err := load(cmd)
				if err != nil {
					return err
				}
				return migrations.up(cfg.DatabaseURL, cfg.MigrationsPath, log)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, log, err := load(cmd)
				if err != nil {
					return err
				}
				return migrations.down(cfg.DatabaseURL, cfg.MigrationsPath, log)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, log, err := load(cmd)
				if err != nil {
					return err
				}
				version, dirty, err := migrations.version(cfg.DatabaseURL, cfg.MigrationsPath, log)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version: %d\ndirty: %v\n", version, dirty)
				return nil
			},
		},
	)

	return cmd
}

// API commands

func healthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check API readiness",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return getJSON(cmd, opts, "/ready", nil)
		},
	}
}

func ledgersCmd(opts *options) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "ledgers",
		Short: "List your ledgers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			query := url.Values{}
			if cmd.Flags().Changed("name") {
				query.Set("name", name)
			}
			return getJSON(cmd, opts, "/api/v1/ledgers", query)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Filter by ledger name")

	return cmd
}

func settlementCmd(opts *options) *cobra.Command {
	var (
		ledgerID string
		period   string
		debug    bool
	)

	cmd := &cobra.Command{
		Use:   "settlement",
		Short: "Show the monthly settlement of a ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			query := url.Values{"ledgerId": {ledgerID}, "period": {period}}
			if debug {
				query.Set("debug", "true")
			}
			return getJSON(cmd, opts, "/api/v1/settlement", query)
		},
	}
	cmd.Flags().StringVar(&ledgerID, "ledger", "", "Ledger ID")
	cmd.Flags().StringVar(&period, "period", time.Now().Format("2006-01"), "Month as YYYY-MM")
	cmd.Flags().BoolVar(&debug, "debug", false, "Include the computation breakdown")
	_ = cmd.MarkFlagRequired("ledger")

	return cmd
}

func summaryCmd(opts *options) *cobra.Command {
	var (
		ledgerID string
		period   string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the monthly summary of a ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return getJSON(cmd, opts, "/api/v1/summary", url.Values{"ledgerId": {ledgerID}, "period": {period}})
		},
	}
	cmd.Flags().StringVar(&ledgerID, "ledger", "", "Ledger ID")
	cmd.Flags().StringVar(&period, "period", time.Now().Format("2006-01"), "Month as YYYY-MM")
	_ = cmd.MarkFlagRequired("ledger")

	return cmd
}

func getJSON(cmd *cobra.Command, opts *options, path string, query url.Values) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	target := strings.TrimRight(opts.baseURL, "/") + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if opts.token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return printJSON(cmd.OutOrStdout(), body)
}

func printJSON(w io.Writer, body []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		_, err = w.Write(body)
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}
