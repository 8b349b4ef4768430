package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the storefront session",
	Long: `Log in to the storefront API and keep the session in the local store.

The access token is refreshed automatically when it expires; the refreshed
pair is written back to the store.`,
}

// ─── auth login ───────────────────────────────────────────────────────────────

var (
	authEmail         string
	authPasswordStdin bool
)

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session",
	Long: `Log in with an email and password.

The email comes from --email, or the "email" config key. The password is
read from PITWALL_PASSWORD, or from the first line of stdin with
--password-stdin.`,
	Example: `  pitwall auth login --email me@example.com --password-stdin < pw.txt
  PITWALL_PASSWORD=secret pitwall auth login`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(cmd.Context()); err != nil {
			return err
		}
		defer deps.Close()

		email := authEmail
		if email == "" {
			email = deps.Config.Email
		}
		if email == "" {
			return fmt.Errorf("no email: pass --email or set the email config key")
		}
		password, err := readPassword(cmd.InOrStdin(), authPasswordStdin)
		if err != nil {
			return err
		}

		tok, err := deps.Client.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		if err := deps.Store.PutToken(tok); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Logged in as %s\n", email)
		if !tok.Expiry.IsZero() {
			fmt.Fprintf(cmd.OutOrStdout(), "  Access token expires %s\n", tok.Expiry.Local().Format(time.RFC1123))
		}
		return nil
	},
}

// readPassword takes the password from the environment or stdin.
func readPassword(in io.Reader, fromStdin bool) (string, error) {
	if fromStdin {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("reading password: %w", err)
		}
		if pw := strings.TrimRight(line, "\r\n"); pw != "" {
			return pw, nil
		}
		return "", fmt.Errorf("empty password on stdin")
	}
	if pw := os.Getenv("PITWALL_PASSWORD"); pw != "" {
		return pw, nil
	}
	return "", fmt.Errorf("no password: set PITWALL_PASSWORD or use --password-stdin")
}

// ─── auth logout ──────────────────────────────────────────────────────────────

var authLogoutCmd = &cobra.Command{
	Use:     "logout",
	Short:   "End the session and forget the stored tokens",
	Example: `  pitwall auth logout`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(cmd.Context()); err != nil {
			return err
		}
		defer deps.Close()

		_, ok, err := deps.Store.GetToken()
		if err != nil {
			return fmt.Errorf("reading session: %w", err)
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
			return nil
		}
		// The local session is dropped even if the server call fails.
		if err := deps.Client.Logout(cmd.Context()); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠  server logout failed: %v\n", err)
		}
		if err := deps.Store.DeleteToken(); err != nil {
			return fmt.Errorf("deleting session: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged out")
		return nil
	},
}

// ─── auth status ──────────────────────────────────────────────────────────────

var authStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show whether a session is stored",
	Example: `  pitwall auth status`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(cmd.Context()); err != nil {
			return err
		}
		defer deps.Close()

		tok, ok, err := deps.Store.GetToken()
		if err != nil {
			return fmt.Errorf("reading session: %w", err)
		}
		out := cmd.OutOrStdout()
		if !ok {
			fmt.Fprintln(out, "Not logged in.")
			return nil
		}
		expiry := "unknown"
		state := "active"
		if !tok.Expiry.IsZero() {
			expiry = tok.Expiry.Local().Format(time.RFC1123)
			if time.Now().After(tok.Expiry) {
				state = "expired (refreshed on next request)"
			}
		}
		printKVTable(out, [][2]string{
			{"api", deps.Client.BaseURL()},
			{"state", state},
			{"expires", expiry},
			{"refresh token", yesNo(tok.RefreshToken != "")},
		})
		return nil
	},
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// ─── Registration ─────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)

	authLoginCmd.Flags().StringVar(&authEmail, "email", "", "account email (default: email config key)")
	authLoginCmd.Flags().BoolVar(&authPasswordStdin, "password-stdin", false, "read the password from stdin")
}
