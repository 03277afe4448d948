package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/moazalc/autostacks-app-sub000/internal/infrastructure/postgres"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// apiClient talks to the ledger HTTP API.
type apiClient struct {
	baseURL        string
	idempotencyKey string
	http           *http.Client
	out            io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	var timeout time.Duration
	c := &apiClient{out: out}

	rootCmd := &cobra.Command{
		Use:           "ledger-cli",
		Short:         "Ledger CLI tool",
		Long:          `A command line interface for interacting with the ledger balance engine.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.http = &http.Client{Timeout: timeout}
		},
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVar(&c.baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&c.idempotencyKey, "idempotency-key", "", "Idempotency-Key header for write requests")

	rootCmd.AddCommand(accountsCmd(c), entriesCmd(c), ledgerCmd(c), migrateCmd(out))
	return rootCmd
}

func accountsCmd(c *apiClient) *cobra.Command {
	cmd := &cobra.Command{Use: "accounts", Short: "Account operations"}

	var name string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.do(http.MethodPost, "/api/v1/accounts", nil, map[string]any{"name": name})
		},
	}
	create.Flags().StringVar(&name, "name", "", "Account name")
	_ = create.MarkFlagRequired("name")

	var limit, offset int
	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			setInt(q, "limit", limit)
			setInt(q, "offset", offset)
			return c.do(http.MethodGet, "/api/v1/accounts", q, nil)
		},
	}
	list.Flags().IntVar(&limit, "limit", 0, "Page size")
	list.Flags().IntVar(&offset, "offset", 0, "Page offset")

	get := &cobra.Command{
		Use:   "get ACCOUNT_ID",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.do(http.MethodGet, "/api/v1/accounts/"+url.PathEscape(args[0]), nil, nil)
		},
	}

	balance := &cobra.Command{
		Use:   "balance ACCOUNT_ID",
		Short: "Show an account's balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.do(http.MethodGet, "/api/v1/accounts/"+url.PathEscape(args[0])+"/balance", nil, nil)
		},
	}

	cmd.AddCommand(create, list, get, balance)
	return cmd
}

func entriesCmd(c *apiClient) *cobra.Command {
	cmd := &cobra.Command{Use: "entries", Short: "Entry operations"}

	var amount, entryType, date, description, car string
	create := &cobra.Command{
		Use:   "create ACCOUNT_ID",
		Short: "Record a credit or debit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{
				"amount": amount,
				"type":   strings.ToUpper(entryType),
				"date":   date,
			}
			if description != "" {
				body["description"] = description
			}
			if car != "" {
				body["related_car_id"] = car
			}
			return c.do(http.MethodPost, "/api/v1/accounts/"+url.PathEscape(args[0])+"/entries", nil, body)
		},
	}
	create.Flags().StringVar(&amount, "amount", "", "Positive decimal amount")
	create.Flags().StringVar(&entryType, "type", "", "CREDIT or DEBIT")
	create.Flags().StringVar(&date, "date", time.Now().UTC().Format("2006-01-02"), "Entry date (YYYY-MM-DD or RFC3339)")
	create.Flags().StringVar(&description, "description", "", "Description")
	create.Flags().StringVar(&car, "car", "", "Related car id")
	_ = create.MarkFlagRequired("amount")
	_ = create.MarkFlagRequired("type")

	var from, to, filterType, filterCar string
	var limit, offset int
	list := &cobra.Command{
		Use:   "list ACCOUNT_ID",
		Short: "List an account's entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			setString(q, "from", from)
			setString(q, "to", to)
			setString(q, "type", strings.ToUpper(filterType))
			setString(q, "car", filterCar)
			setInt(q, "limit", limit)
			setInt(q, "offset", offset)
			return c.do(http.MethodGet, "/api/v1/accounts/"+url.PathEscape(args[0])+"/entries", q, nil)
		},
	}
	list.Flags().StringVar(&from, "from", "", "Window start, inclusive")
	list.Flags().StringVar(&to, "to", "", "Window end, exclusive")
	list.Flags().StringVar(&filterType, "type", "", "Only CREDIT or DEBIT entries")
	list.Flags().StringVar(&filterCar, "car", "", "Only entries for this car")
	list.Flags().IntVar(&limit, "limit", 0, "Page size")
	list.Flags().IntVar(&offset, "offset", 0, "Page offset")

	get := &cobra.Command{
		Use:   "get ENTRY_ID",
		Short: "Show an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.do(http.MethodGet, "/api/v1/entries/"+url.PathEscape(args[0]), nil, nil)
		},
	}

	del := &cobra.Command{
		Use:   "delete ENTRY_ID",
		Short: "Delete an entry and reverse its effect on the balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.do(http.MethodDelete, "/api/v1/entries/"+url.PathEscape(args[0]), nil, nil)
		},
	}

	cmd.AddCommand(create, list, get, del)
	return cmd
}

func ledgerCmd(c *apiClient) *cobra.Command {
	cmd := &cobra.Command{Use: "ledger", Short: "Ledger operations"}

	var from, to, starting string
	show := &cobra.Command{
		Use:   "show ACCOUNT_ID",
		Short: "Show an account ledger with running balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			setString(q, "from", from)
			setString(q, "to", to)
			setString(q, "starting_balance", starting)
			return c.do(http.MethodGet, "/api/v1/accounts/"+url.PathEscape(args[0])+"/ledger", q, nil)
		},
	}
	show.Flags().StringVar(&from, "from", "", "Window start, inclusive")
	show.Flags().StringVar(&to, "to", "", "Window end, exclusive")
	show.Flags().StringVar(&starting, "starting-balance", "", "Override the opening balance")

	consistency := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.do(http.MethodGet, "/api/v1/ledger/consistency", nil, nil)
		},
	}

	reconcile := &cobra.Command{
		Use:   "reconcile [ACCOUNT_ID]",
		Short: "Compare stored balances with their entries",
		Long:  "Reconciles one account, or every account when no id is given. Drift is reported, never repaired.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return c.do(http.MethodGet, "/api/v1/accounts/"+url.PathEscape(args[0])+"/reconciliation", nil, nil)
			}
			return c.do(http.MethodGet, "/api/v1/ledger/reconciliation", nil, nil)
		},
	}

	cmd.AddCommand(show, consistency, reconcile)
	return cmd
}

// migrateUp and migrateDown are replaced in tests.
var (
	migrateUp   = postgres.RunMigrations
	migrateDown = postgres.RunMigrationsDown
)

func migrateCmd(out io.Writer) *cobra.Command {
	var databaseURL string
	cmd := &cobra.Command{Use: "migrate", Short: "Apply or roll back database migrations"}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL URL")

	logger := zerolog.New(zerolog.ConsoleWriter{Out: out, NoColor: true})

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return fmt.Errorf("--database-url or DATABASE_URL is required")
			}
			return migrateUp(databaseURL, logger)
		},
	}
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return fmt.Errorf("--database-url or DATABASE_URL is required")
			}
			return migrateDown(databaseURL, logger)
		},
	}

	cmd.AddCommand(up, down)
	return cmd
}

// do sends one request and prints the JSON response. Non-2xx answers are
// printed too and returned as an error.
func (c *apiClient) do(method, path string, query url.Values, body any) error {
	u := strings.TrimRight(c.baseURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, u, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.idempotencyKey != "" && method != http.MethodGet {
		req.Header.Set("Idempotency-Key", c.idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if len(respBody) > 0 {
		c.printJSON(respBody)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("request failed (status %d)", resp.StatusCode)
	}
	return nil
}

func (c *apiClient) printJSON(raw []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		fmt.Fprintln(c.out, truncate(string(raw), 512))
		return
	}
	buf.WriteByte('\n')
	_, _ = buf.WriteTo(c.out)
}

func setString(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func setInt(q url.Values, key string, value int) {
	if value > 0 {
		q.Set(key, fmt.Sprint(value))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
