package main

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/infrastructure/auth"
)

var (
	baseURL string
	token   string
	timeout time.Duration
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "fintrack-cli",
		Short:         "Fintrack CLI tool",
		Long:          `A command line interface for uploading bank statements and managing imported transactions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", envOr("FINTRACK_URL", "http://localhost:8080"), "Base URL of the Fintrack API")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("FINTRACK_TOKEN"), "Bearer token (defaults to $FINTRACK_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 3*time.Minute, "Request timeout")

	rootCmd.AddCommand(statementsCmd(), transactionsCmd(), tokenCmd())
	return rootCmd
}

func client() *apiClient {
	return newAPIClient(baseURL, token, timeout)
}

func statementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "statements",
		Short: "Statement operations",
	}

	var teamID, idempotencyKey string
	uploadCmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload and import a bank statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := client().uploadStatement(cmd.Context(), args[0], teamID, idempotencyKey)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}
	uploadCmd.Flags().StringVar(&teamID, "team", "", "Attribute imported transactions to this team")
	uploadCmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key (random when empty)")

	var limit, offset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List uploaded statements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := client().getJSON(cmd.Context(), "/api/v1/statements", pageQuery(limit, offset))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", domain.DefaultPageSize, "Page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	var output string
	downloadCmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download a stored statement file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, name, err := client().downloadStatement(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = filepath.Base(name)
			}
			if err := os.WriteFile(output, content, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", output, len(content))
			return nil
		},
	}
	downloadCmd.Flags().StringVarP(&output, "output", "o", "", "Output file (defaults to the original name)")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a statement and its stored file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client().deleteStatement(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted statement %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(uploadCmd, listCmd, downloadCmd, deleteCmd)
	return cmd
}

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Transaction operations",
	}

	var teamID string
	var month, year, limit, offset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List personal or team transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := pageQuery(limit, offset)
			if teamID != "" {
				query.Set("team_id", teamID)
			}
			if month != 0 {
				query.Set("month", strconv.Itoa(month))
			}
			if year != 0 {
				query.Set("year", strconv.Itoa(year))
			}

			body, err := client().getJSON(cmd.Context(), "/api/v1/transactions", query)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}
	listCmd.Flags().StringVar(&teamID, "team", "", "List this team's transactions")
	listCmd.Flags().IntVar(&month, "month", 0, "Filter by month (1-12)")
	listCmd.Flags().IntVar(&year, "year", 0, "Filter by year")
	listCmd.Flags().IntVar(&limit, "limit", domain.DefaultPageSize, "Page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	var idempotencyKey string
	bulkDeleteCmd := &cobra.Command{
		Use:   "bulk-delete <id>...",
		Short: "Delete several transactions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := client().bulkDelete(cmd.Context(), args, idempotencyKey)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}
	bulkDeleteCmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key (random when empty)")

	cmd.AddCommand(listCmd, bulkDeleteCmd)
	return cmd
}

func tokenCmd() *cobra.Command {
	var secret, email, name string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Mint a bearer token for local testing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret or $JWT_SECRET is required")
			}
			signed, err := auth.NewJWTManager(secret, ttl).Generate(&domain.User{ID: args[0], Email: email, Name: name})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Signing secret (defaults to $JWT_SECRET)")
	cmd.Flags().StringVar(&email, "email", "", "User email")
	cmd.Flags().StringVar(&name, "name", "", "User display name")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	return cmd
}

func pageQuery(limit, offset int) url.Values {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	return query
}

// printJSON indents a JSON response body.
func printJSON(w io.Writer, body json.RawMessage) error {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func parseDisposition(header string) (string, map[string]string, error) {
	return mime.ParseMediaType(header)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

