package google

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"gnomeshade/internal/log"
	ports "gnomeshade/internal/sheets"
)

// Config selects the spreadsheet and the credentials used to write it.
// A service account (CredentialsJSON, then CredentialsFile) wins over an
// OAuth client plus the token saved by Authorize.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string

	OAuthClientJSON []byte
	OAuthTokenFile  string
}

// Client appends journal rows to a sheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger

	mu            sync.Mutex
	headerWritten bool
}

var _ ports.JournalWriter = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	var creds goption.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		creds = goption.WithCredentialsJSON([]byte(cfg.CredentialsJSON))
	case cfg.CredentialsFile != "":
		creds = goption.WithCredentialsFile(cfg.CredentialsFile)
	case len(cfg.OAuthClientJSON) > 0 && cfg.OAuthTokenFile != "":
		oauthCfg, err := OAuthConfig(cfg.OAuthClientJSON)
		if err != nil {
			return nil, err
		}
		tok, err := LoadToken(cfg.OAuthTokenFile)
		if err != nil {
			return nil, err
		}
		creds = goption.WithTokenSource(oauthCfg.TokenSource(ctx, tok))
	default:
		return nil, errors.New("missing service account or oauth credentials")
	}
	return newClient(ctx, cfg, logger, creds, goption.WithScopes(gsheet.SpreadsheetsScope))
}

func newClient(ctx context.Context, cfg Config, logger *log.Logger, opts ...goption.ClientOption) (*Client, error) {
	if logger == nil {
		logger = log.Discard()
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	name := strings.TrimSpace(cfg.SheetName)
	if name == "" {
		name = "Journal"
	}
	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     name,
		logger:        logger.WithComponent(log.ComponentSheets),
	}, nil
}

// ensureHeader writes the header row when the sheet is empty. A failed
// attempt is retried on the next append.
func (c *Client) ensureHeader(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.headerWritten {
		return nil
	}

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.sheetName+"!A1:H1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", c.sheetName, err)
	}
	if len(resp.Values) == 0 {
		_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, c.sheetName+"!A1:H1",
			&gsheet.ValueRange{Values: [][]any{ports.Header}}).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("write header of %s: %w", c.sheetName, err)
		}
	}
	c.headerWritten = true
	return nil
}

// AppendEntry appends one row below the last filled row and returns the
// updated range.
func (c *Client) AppendEntry(ctx context.Context, e ports.JournalEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if err := c.ensureHeader(ctx); err != nil {
		return "", err
	}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.sheetName+"!A:H",
		&gsheet.ValueRange{Values: [][]any{e.Row()}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}

	ref := ""
	if resp.Updates != nil {
		ref = resp.Updates.UpdatedRange
	}
	c.logger.DebugContext(ctx, "Journal row appended",
		log.FieldEntity, e.Entity,
		log.FieldEntityID, e.ID.String(),
		"range", ref)
	return ref, nil
}
