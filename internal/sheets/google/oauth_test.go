package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func fakeTokenEndpoint(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "the-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access",
			"refresh_token": "refresh",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// visit follows the consent URL's redirect the way a browser would after
// the user approved, optionally tampering with the state.
func visit(t *testing.T, consentURL, code, state string) {
	t.Helper()
	u, err := url.Parse(consentURL)
	require.NoError(t, err)
	q := u.Query()
	if state == "" {
		state = q.Get("state")
	}
	assert.Equal(t, "offline", q.Get("access_type"))

	callback := q.Get("redirect_uri") + "?" + url.Values{"code": {code}, "state": {state}}.Encode()
	go func() {
		resp, err := http.Get(callback)
		if err == nil {
			resp.Body.Close()
		}
	}()
}

func TestAuthorize(t *testing.T) {
	tokens := fakeTokenEndpoint(t)
	cfg := &oauth2.Config{
		ClientID: "client", ClientSecret: "secret",
		Endpoint: oauth2.Endpoint{AuthURL: "https://accounts.example.com/auth", TokenURL: tokens.URL},
		Scopes:   []string{"sheets"},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tok, err := Authorize(ctx, cfg, "0", func(u string) { visit(t, u, "the-code", "") })
	require.NoError(t, err)
	assert.Equal(t, "access", tok.AccessToken)
	assert.Equal(t, "refresh", tok.RefreshToken)

	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, SaveToken(path, tok))
	loaded, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, tok.RefreshToken, loaded.RefreshToken)

	_, err = Authorize(ctx, cfg, "0", func(u string) { visit(t, u, "the-code", "forged") })
	assert.ErrorContains(t, err, "state mismatch")
}

func TestOAuthConfig(t *testing.T) {
	_, err := OAuthConfig([]byte(`{}`))
	assert.Error(t, err)

	cfg, err := OAuthConfig([]byte(`{"installed":{"client_id":"id","client_secret":"secret",
		"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token",
		"redirect_uris":["http://localhost"]}}`))
	require.NoError(t, err)
	assert.Equal(t, "id", cfg.ClientID)
}
