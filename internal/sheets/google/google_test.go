package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	goption "google.golang.org/api/option"

	ports "gnomeshade/internal/sheets"
)

type fakeSheets struct {
	mu      sync.Mutex
	header  bool
	updates int
	appends [][]any
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet:
		values := [][]any{}
		if f.header {
			values = append(values, ports.Header)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"range": "Journal!A1:H1", "values": values})
	case r.Method == http.MethodPut:
		f.updates++
		f.header = true
		_ = json.NewEncoder(w).Encode(map[string]any{"updatedRange": "Journal!A1:H1"})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		var body struct {
			Values [][]any `json:"values"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.appends = append(f.appends, body.Values...)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"updates": map[string]any{"updatedRange": "Journal!A2:H2"},
		})
	default:
		http.Error(w, "unexpected request", http.StatusBadRequest)
	}
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := newClient(context.Background(), Config{SpreadsheetID: "sheet-id"}, nil,
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(context.Background(), Config{}, nil)
	assert.ErrorContains(t, err, "spreadsheet id")

	_, err = New(context.Background(), Config{SpreadsheetID: "x"}, nil)
	assert.ErrorContains(t, err, "credentials")
}

func TestNew_OAuthToken(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, SaveToken(tokenFile, &oauth2.Token{AccessToken: "a", RefreshToken: "r"}))
	client := []byte(`{"installed":{"client_id":"id","client_secret":"s","auth_uri":"https://a","token_uri":"https://t","redirect_uris":["http://localhost"]}}`)

	c, err := New(context.Background(), Config{SpreadsheetID: "x", OAuthClientJSON: client, OAuthTokenFile: tokenFile}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Journal", c.sheetName)

	_, err = New(context.Background(), Config{SpreadsheetID: "x", OAuthClientJSON: client, OAuthTokenFile: tokenFile + ".missing"}, nil)
	assert.ErrorContains(t, err, "token file")
}

func TestClient_AppendEntry(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)
	assert.Equal(t, "Journal", c.sheetName)

	amount := decimal.RequireFromString("12.5")
	booked := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	entry := ports.JournalEntry{
		Timestamp:    time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		Entity:       "transfers",
		Action:       "created",
		ID:           uuid.New(),
		OwnerID:      uuid.New(),
		SourceAmount: &amount,
		TargetAmount: &amount,
		TransferDate: &booked,
	}

	ref, err := c.AppendEntry(context.Background(), entry)
	require.NoError(t, err)
	assert.Equal(t, "Journal!A2:H2", ref)

	_, err = c.AppendEntry(context.Background(), entry)
	require.NoError(t, err)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, 1, fake.updates, "header is written once")
	require.Len(t, fake.appends, 2)
	row := fake.appends[0]
	require.Len(t, row, 8)
	assert.Equal(t, "transfers", row[1])
	assert.Equal(t, "12.50", row[5])
	assert.Equal(t, "2024-03-01T10:00:00Z", row[7])
}

func TestClient_AppendEntryErrors(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":500,"message":"boom"}}`, http.StatusInternalServerError)
	}))

	_, err := c.AppendEntry(context.Background(), ports.JournalEntry{Entity: "units"})
	assert.ErrorContains(t, err, "validation failed")

	_, err = c.AppendEntry(context.Background(), ports.JournalEntry{Entity: "units", Action: "created", ID: uuid.New()})
	assert.ErrorContains(t, err, "read header")
}
