package commands

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	gsheet "gnomeshade/internal/sheets/google"
)

const testOAuthClient = `{"installed":{"client_id":"id","client_secret":"secret",
"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token",
"redirect_uris":["http://localhost"]}}`

func runSheets(t *testing.T, h *SheetsCommandHandler, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "gnomeshade-admin", SilenceUsage: true, SilenceErrors: true}
	InitSheetsCommands(root, h)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAuthorizeCmd(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "token.json")
	h := NewSheetsCommandHandler(func() ([]byte, error) { return []byte(testOAuthClient), nil }, tokenFile)

	var port string
	h.authorize = func(_ context.Context, cfg *oauth2.Config, p string, prompt func(string)) (*oauth2.Token, error) {
		port = p
		assert.Equal(t, "id", cfg.ClientID)
		prompt("https://consent.example.com")
		return &oauth2.Token{AccessToken: "access", RefreshToken: "refresh"}, nil
	}

	out, err := runSheets(t, h, "sheets", "authorize", "--port", "9999")
	require.NoError(t, err)
	assert.Equal(t, "9999", port)
	assert.Contains(t, out, "https://consent.example.com")
	assert.Contains(t, out, "Saved token to "+tokenFile)

	tok, err := gsheet.LoadToken(tokenFile)
	require.NoError(t, err)
	assert.Equal(t, "refresh", tok.RefreshToken)
}

func TestAuthorizeCmd_Errors(t *testing.T) {
	h := NewSheetsCommandHandler(func() ([]byte, error) { return nil, nil }, "token.json")
	_, err := runSheets(t, h, "sheets", "authorize")
	assert.ErrorContains(t, err, "no OAuth client")

	denied := errors.New("denied")
	h = NewSheetsCommandHandler(func() ([]byte, error) { return []byte(testOAuthClient), nil }, filepath.Join(t.TempDir(), "t.json"))
	h.authorize = func(context.Context, *oauth2.Config, string, func(string)) (*oauth2.Token, error) { return nil, denied }
	_, err = runSheets(t, h, "sheets", "authorize")
	assert.ErrorIs(t, err, denied)
}
