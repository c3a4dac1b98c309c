package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	gsheet "gnomeshade/internal/sheets/google"
)

// AuthorizeFunc runs an OAuth consent flow. google.Authorize in production.
type AuthorizeFunc func(ctx context.Context, cfg *oauth2.Config, port string, prompt func(url string)) (*oauth2.Token, error)

// SheetsCommandHandler obtains the OAuth token the journal worker uses when
// no service account is configured.
type SheetsCommandHandler struct {
	clientJSON func() ([]byte, error)
	tokenFile  string
	authorize  AuthorizeFunc
}

// NewSheetsCommandHandler takes the configured OAuth client loader and token
// path as flag defaults.
func NewSheetsCommandHandler(clientJSON func() ([]byte, error), tokenFile string) *SheetsCommandHandler {
	return &SheetsCommandHandler{clientJSON: clientJSON, tokenFile: tokenFile, authorize: gsheet.Authorize}
}

func (h *SheetsCommandHandler) AuthorizeCmd(cmd *cobra.Command, _ []string) error {
	clientFile, _ := cmd.Flags().GetString("client-file")
	tokenFile, _ := cmd.Flags().GetString("token-file")
	port, _ := cmd.Flags().GetString("port")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	var clientJSON []byte
	var err error
	if clientFile != "" {
		clientJSON, err = os.ReadFile(clientFile)
	} else if h.clientJSON != nil {
		clientJSON, err = h.clientJSON()
	}
	if err != nil {
		return err
	}
	if len(clientJSON) == 0 {
		return errors.New("no OAuth client: pass --client-file or set GOOGLE_OAUTH_CLIENT_FILE or GOOGLE_OAUTH_CLIENT_JSON")
	}
	if tokenFile == "" {
		return errors.New("--token-file is required")
	}

	cfg, err := gsheet.OAuthConfig(clientJSON)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	out := cmd.OutOrStdout()
	tok, err := h.authorize(ctx, cfg, port, func(url string) {
		fmt.Fprintf(out, "Open this URL to authorize:\n%s\n", url)
	})
	if err != nil {
		return err
	}
	if err := gsheet.SaveToken(tokenFile, tok); err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved token to %s\n", tokenFile)
	return nil
}

func InitSheetsCommands(rootCmd *cobra.Command, handler *SheetsCommandHandler) {
	sheetsCmd := &cobra.Command{Use: "sheets", Short: "Google Sheets journal setup"}
	authorizeCmd := &cobra.Command{
		Use:   "authorize",
		Short: "Authorize the journal to write with your Google account",
		Long: `authorize starts a local server for the OAuth redirect, prints the consent
URL and saves the resulting token. Add the redirect URL
http://127.0.0.1:<port>/callback to the OAuth client first.`,
		Args: cobra.NoArgs,
		RunE: handler.AuthorizeCmd,
	}
	authorizeCmd.Flags().String("client-file", "", "OAuth client JSON (default: GOOGLE_OAUTH_CLIENT_FILE or GOOGLE_OAUTH_CLIENT_JSON)")
	authorizeCmd.Flags().String("token-file", handler.tokenFile, "Where to save the token")
	authorizeCmd.Flags().String("port", "8085", "Local port for the OAuth redirect")
	authorizeCmd.Flags().Duration("timeout", 5*time.Minute, "How long to wait for consent")
	sheetsCmd.AddCommand(authorizeCmd)
	rootCmd.AddCommand(sheetsCmd)
}
