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

	"github.com/spf13/cobra"

	postgresRepo "github.com/iho/leaveledger/internal/adapter/repository/postgres"
	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/infrastructure/auth"
	"github.com/iho/leaveledger/internal/infrastructure/logger"
	"github.com/iho/leaveledger/internal/infrastructure/postgres"
	"github.com/iho/leaveledger/internal/infrastructure/seed"
)

// options are the persistent flags shared by every command.
type options struct {
	baseURL string
	timeout time.Duration
	token   string
	actor   string
	org     string
	roles   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "leavectl",
		Short:         "Leave ledger CLI tool",
		Long:          `A command line interface for operating the leave ledger API and its database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("LEAVE_API_URL", "http://localhost:8080"), "Base URL of the leave API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("LEAVE_API_TOKEN"), "Bearer token")
	rootCmd.PersistentFlags().StringVar(&opts.actor, "actor", "admin", "Actor ID sent when no token is given")
	rootCmd.PersistentFlags().StringVar(&opts.org, "org", "", "Actor organization sent when no token is given")
	rootCmd.PersistentFlags().StringVar(&opts.roles, "roles", "admin", "Comma separated actor roles sent when no token is given")

	rootCmd.AddCommand(
		newReconcileCmd(opts),
		newSweepCmd(opts),
		newBalanceCmd(opts),
		newRequestCmd(opts),
		newMigrateCmd(),
		newSeedCmd(),
		newTokenCmd(),
	)

	return rootCmd
}

func newReconcileCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Check every balance account against its ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			var report struct {
				TotalAccounts      int               `json:"total_accounts"`
				ReconciledAccounts int               `json:"reconciled_accounts"`
				LedgerConsistent   bool              `json:"ledger_consistent"`
				Discrepancies      []json.RawMessage `json:"discrepancies"`
			}
			if err := opts.do(cmd.Context(), http.MethodGet, "/api/v1/ledger/reconcile", nil, &report); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Accounts: %d, reconciled: %d\n", report.TotalAccounts, report.ReconciledAccounts)
			if !report.LedgerConsistent {
				for _, d := range report.Discrepancies {
					fmt.Fprintf(out, "  %s\n", truncate(string(d), 160))
				}
				return fmt.Errorf("ledger inconsistent: %d discrepancies", len(report.Discrepancies))
			}
			fmt.Fprintln(out, "Ledger consistent")
			return nil
		},
	}
}

func newSweepCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one auto-approval sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result struct {
				Advanced int `json:"advanced"`
			}
			if err := opts.do(cmd.Context(), http.MethodPost, "/api/v1/admin/auto-approvals/process", nil, &result); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Advanced %d request(s)\n", result.Advanced)
			return nil
		},
	}
}

func newBalanceCmd(opts *options) *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "balance <employee-id>",
		Short: "Show an employee's balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/balances/" + url.PathEscape(args[0])
			if year > 0 {
				path += fmt.Sprintf("?year=%d", year)
			}

			var balances []map[string]any
			if err := opts.do(cmd.Context(), http.MethodGet, path, nil, &balances); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), balances)
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Leave year (default: current year)")

	return cmd
}

func newRequestCmd(opts *options) *cobra.Command {
	requestCmd := &cobra.Command{
		Use:   "request",
		Short: "Request operations",
	}

	requestCmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req map[string]any
			if err := opts.do(cmd.Context(), http.MethodGet, "/api/v1/requests/"+url.PathEscape(args[0]), nil, &req); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), req)
		},
	})

	for _, action := range []string{"approve", "reject", "withdraw", "cancel", "advance"} {
		requestCmd.AddCommand(newTransitionCmd(opts, action))
	}

	return requestCmd
}

func newTransitionCmd(opts *options, action string) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   action + " <id>",
		Short: strings.ToUpper(action[:1]) + action[1:] + " a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{}
			if reason != "" {
				body["reason"] = reason
			}

			var req struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			}
			path := "/api/v1/requests/" + url.PathEscape(args[0]) + "/" + action
			if err := opts.do(cmd.Context(), http.MethodPost, path, body, &req); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Request %s is %s\n", req.ID, req.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "Reason or comment recorded with the action")

	return cmd
}

func newMigrateCmd() *cobra.Command {
	var databaseURL, path string

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	migrateCmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL URL")
	migrateCmd.PersistentFlags().StringVar(&path, "path", envOr("MIGRATIONS_PATH", "migrations"), "Migrations directory")

	migrator := func() *postgres.Migrator {
		return postgres.NewMigrator(databaseURL, path, logger.New(logger.Config{Level: "info", Format: "console"}))
	}

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrator().Up()
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrator().Down()
			},
		},
	)

	return migrateCmd
}

func newSeedCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Load leave variants, workflows, holidays and employees into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			pool, err := postgres.NewPool(cmd.Context(), databaseURL, 2, 1)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := seed.Load(cmd.Context(), f, postgresRepo.NewConfigWriter(pool)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL URL")

	return cmd
}

func newTokenCmd() *cobra.Command {
	var secret, actor, org, roles string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for an actor",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret or JWT_SECRET is required")
			}
			token, err := auth.NewJWTManager(secret, ttl).Generate(domain.Actor{
				ID:    actor,
				OrgID: org,
				Roles: splitList(roles),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Signing secret")
	cmd.Flags().StringVar(&actor, "actor", "", "Actor ID")
	cmd.Flags().StringVar(&org, "org", "", "Organization ID")
	cmd.Flags().StringVar(&roles, "roles", domain.RoleEmployee, "Comma separated roles")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	return cmd
}

// do sends a JSON request and decodes a 2xx response into out.
func (o *options) do(ctx context.Context, method, path string, body, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(o.baseURL, "/")+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if o.token != "" {
		req.Header.Set("Authorization", "Bearer "+o.token)
	} else {
		req.Header.Set("X-Actor-ID", o.actor)
		req.Header.Set("X-Actor-Org", o.org)
		req.Header.Set("X-Actor-Roles", o.roles)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s failed (status %d): %s", method, path, resp.StatusCode, truncate(strings.TrimSpace(string(data)), 200))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
