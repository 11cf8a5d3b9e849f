package token

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/orris-inc/archy/internal/infrastructure/auth"
	"github.com/orris-inc/archy/internal/infrastructure/config"
)

var (
	env        string
	configPath string
	subject    string
	scopes     []string
	ttl        time.Duration
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage API access tokens",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(newIssueCommand())
	return cmd
}

func newIssueCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a bearer token for the archive API",
		RunE:  runIssue,
	}

	cmd.Flags().StringVarP(&subject, "subject", "s", "", "Who the token is for (required)")
	cmd.Flags().StringSliceVar(&scopes, "scope", []string{auth.ScopeRead}, "Scopes to grant")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default: auth.default_ttl_hours)")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}

func runIssue(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(env, configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate("Auth"); err != nil {
		return err
	}

	svc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenIssuer, time.Duration(cfg.Auth.DefaultTTLHours)*time.Hour)
	signed, expiresAt, err := svc.Issue(subject, scopes, ttl)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, signed)
	fmt.Fprintf(out, "# expires %s\n", expiresAt.Format(time.RFC3339))
	return nil
}
