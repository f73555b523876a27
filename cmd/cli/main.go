package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/creditledger/internal/adapter/http/dto"
	"github.com/iho/creditledger/internal/adapter/http/middleware"
	"github.com/iho/creditledger/internal/infrastructure/logger"
	"github.com/iho/creditledger/internal/infrastructure/postgres"
)

// client talks to a running ledger server.
type client struct {
	baseURL string
	http    *http.Client
}

func (c *client) do(ctx context.Context, method, path string, body any, header http.Header) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	return resp.StatusCode, data, err
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &client{}
	var timeout time.Duration

	rootCmd := &cobra.Command{
		Use:           "creditledger-cli",
		Short:         "Credit ledger CLI tool",
		Long:          `A command line interface for the credit ledger API and its database.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(*cobra.Command, []string) {
			c.http = &http.Client{Timeout: timeout}
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(transactCmd(c), statementCmd(c), ledgerCmd(c), migrateCmd())

	return rootCmd
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("account id must be an integer: %q", arg)
	}
	return id, nil
}

func transactCmd(c *client) *cobra.Command {
	var (
		req            dto.TransactionRequest
		idempotencyKey string
	)

	cmd := &cobra.Command{
		Use:   "transact <account-id>",
		Short: "Credit or debit an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			header := http.Header{}
			if idempotencyKey != "" {
				header.Set(middleware.IdempotencyKeyHeader, idempotencyKey)
			}

			status, body, err := c.do(cmd.Context(), http.MethodPost, fmt.Sprintf("/accounts/%d/transactions", id), req, header)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("transaction rejected (status %d): %s", status, bytes.TrimSpace(body))
			}

			var result dto.TransactionResponse
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Balance: %d\nLimit: %d\n", result.Balance, result.CreditLimit)
			return nil
		},
	}

	cmd.Flags().Int64Var(&req.Amount, "amount", 0, "Amount in cents")
	cmd.Flags().StringVar(&req.Kind, "kind", "", `Kind: "c" for credit, "d" for debit`)
	cmd.Flags().StringVar(&req.Description, "description", "", "Description, 1 to 10 characters")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency-Key header")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func statementCmd(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "statement <account-id>",
		Short: "Show the balance and the latest transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			status, body, err := c.do(cmd.Context(), http.MethodGet, fmt.Sprintf("/accounts/%d/statement", id), nil, nil)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("statement failed (status %d): %s", status, bytes.TrimSpace(body))
			}

			var stmt dto.StatementResponse
			if err := json.Unmarshal(body, &stmt); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Balance: %d (limit %d) as of %s\n",
				stmt.Balance.Total, stmt.Balance.Limit, stmt.Balance.AsOf.Time().Format(dto.TimestampLayout))
			for _, t := range stmt.RecentTransactions {
				fmt.Fprintf(out, "%s  %s  %10d  %s\n",
					t.PerformedAt.Time().Format(dto.TimestampLayout), t.Kind, t.Amount, t.Description)
			}
			return nil
		},
	}
}

func ledgerCmd(c *client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, body, err := c.do(cmd.Context(), http.MethodGet, "/ledger/consistency", nil, nil)
			if err != nil {
				return err
			}
			if status != http.StatusOK && status != http.StatusConflict {
				return fmt.Errorf("consistency check failed (status %d): %s", status, bytes.TrimSpace(body))
			}

			var result dto.ConsistencyResponse
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			out := cmd.OutOrStdout()
			if result.Consistent {
				fmt.Fprintf(out, "Consistency check PASSED (%d accounts)\n", result.Checked)
				return nil
			}

			fmt.Fprintf(out, "Consistency check FAILED (%d of %d accounts)\n", len(result.Inconsistent), result.Checked)
			for _, a := range result.Inconsistent {
				fmt.Fprintf(out, "account %d: balance %d, limit %d, drift %d\n", a.AccountID, a.Balance, a.CreditLimit, a.Drift)
			}
			return fmt.Errorf("ledger is inconsistent")
		},
	})

	return cmd
}

// migrateCmd runs the embedded migrations directly against the database.
func migrateCmd() *cobra.Command {
	var (
		databaseURL string
		logLevel    string
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level")

	newLogger := func(cmd *cobra.Command) zerolog.Logger {
		return logger.NewWithWriter(logger.Config{Level: logLevel, Format: "console"}, cmd.ErrOrStderr())
	}
	requireURL := func() error {
		if databaseURL == "" {
			return fmt.Errorf("--database-url or DATABASE_URL is required")
		}
		return nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := requireURL(); err != nil {
					return err
				}
				return postgres.RunMigrations(databaseURL, newLogger(cmd))
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := requireURL(); err != nil {
					return err
				}
				return postgres.RunMigrationsDown(databaseURL, newLogger(cmd))
			},
		},
	)

	return cmd
}
