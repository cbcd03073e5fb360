package main

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mercator-hq/tonecoach/pkg/cli"
	"mercator-hq/tonecoach/pkg/mail/gmail"
)

var authFlags struct {
	code string
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize the Gmail account",
	Long: `Run the OAuth consent flow and cache the token.

The command prints the Google consent URL. After approving access, paste
either the authorization code or the whole URL the browser was redirected
to. The token is written to mail.token_file with 0600 permissions and is
refreshed automatically afterwards.

Examples:
  # Interactive consent
  tonecoach auth

  # Non-interactive, with a code obtained elsewhere
  tonecoach auth --code 4/0AbCd...`,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)

	authCmd.Flags().StringVar(&authFlags.code, "code", "", "authorization code (skips the prompt)")
}

func runAuth(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	auth := gmail.NewAuthenticator(&cfg.Mail)
	state := uuid.NewString()
	out := cmd.OutOrStdout()

	input := authFlags.code
	if input == "" {
		consentURL, err := auth.AuthCodeURL(state)
		if err != nil {
			return cli.NewCommandError("auth", err)
		}
		fmt.Fprintln(out, "Open this URL in a browser and approve access:")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  "+consentURL)
		fmt.Fprintln(out)
		fmt.Fprint(out, "Paste the authorization code or the redirect URL: ")

		input, err = readLine(cmd.InOrStdin())
		if err != nil {
			return cli.NewCommandError("auth", err)
		}
	}

	code, err := extractAuthCode(input, state)
	if err != nil {
		return cli.NewConfigError("code", err.Error())
	}

	if _, err := auth.Exchange(cmd.Context(), code); err != nil {
		return cli.NewCommandError("auth", err)
	}

	logger.Debug("gmail account authorized")
	fmt.Fprintf(out, "✓ Token saved to %s\n", cfg.Mail.TokenFile)
	return nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", fmt.Errorf("failed to read authorization code: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// extractAuthCode accepts a bare code or the redirect URL carrying it. A
// redirect URL with a state parameter must carry the expected state.
func extractAuthCode(input, state string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("no authorization code given")
	}
	if !strings.Contains(input, "://") && !strings.HasPrefix(input, "?") {
		return input, nil
	}

	var query url.Values
	if strings.HasPrefix(input, "?") {
		q, err := url.ParseQuery(input[1:])
		if err != nil {
			return "", fmt.Errorf("invalid redirect query: %w", err)
		}
		query = q
	} else {
		u, err := url.Parse(input)
		if err != nil {
			return "", fmt.Errorf("invalid redirect URL: %w", err)
		}
		query = u.Query()
	}

	if msg := query.Get("error"); msg != "" {
		return "", fmt.Errorf("consent was not granted: %s", msg)
	}
	if got := query.Get("state"); got != "" && state != "" && got != state {
		return "", fmt.Errorf("state mismatch in redirect URL")
	}
	code := query.Get("code")
	if code == "" {
		return "", fmt.Errorf("redirect URL has no code parameter")
	}
	return code, nil
}
