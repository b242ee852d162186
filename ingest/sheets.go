// ABOUTME: Google Sheets source for pipeline uploads
// ABOUTME: Handles OAuth token storage and reads the first sheet of a spreadsheet as rows
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// OAuthCallbackPath is where the local redirect listener receives the authorization code.
const OAuthCallbackPath = "/oauth/callback"

// NewOAuthConfig builds a read-only Sheets OAuth config. redirectAddr is host:port of the
// local callback listener.
func NewOAuthConfig(clientID, clientSecret, redirectAddr string) (*oauth2.Config, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("google OAuth credentials not configured; set PIPETRACK_GOOGLE_CLIENT_ID and PIPETRACK_GOOGLE_CLIENT_SECRET")
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  "http://" + redirectAddr + OAuthCallbackPath,
		Scopes:       []string{sheets.SpreadsheetsReadonlyScope},
		Endpoint:     google.Endpoint,
	}, nil
}

// TokenPath returns the XDG path of the stored Google token.
func TokenPath() string {
	return filepath.Join(xdg.DataHome, "pipetrack", "google-token.json")
}

// SaveToken writes the token with owner-only permissions.
func SaveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return nil
}

func LoadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var token oauth2.Token
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return &token, nil
}

// SheetsReader pulls pipeline rows out of Google Sheets.
type SheetsReader struct {
	svc *sheets.Service
}

// NewSheetsReader authenticates with a stored token. The config refreshes it as needed.
func NewSheetsReader(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (*SheetsReader, error) {
	if token == nil {
		return nil, fmt.Errorf("token cannot be nil")
	}
	return NewSheetsReaderWithClient(ctx, cfg.Client(ctx, token))
}

// NewSheetsReaderWithClient uses an already authenticated HTTP client.
func NewSheetsReaderWithClient(ctx context.Context, client *http.Client, opts ...option.ClientOption) (*SheetsReader, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}
	return &SheetsReader{svc: svc}, nil
}

// ReadFirstSheet returns rows from the first sheet using unformatted values, so amounts
// arrive as numbers and dates as serial numbers.
func (r *SheetsReader) ReadFirstSheet(ctx context.Context, spreadsheetID string) ([]Row, error) {
	ss, err := r.svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet %s: %w", spreadsheetID, err)
	}
	if len(ss.Sheets) == 0 || ss.Sheets[0].Properties == nil {
		return nil, fmt.Errorf("spreadsheet %s has no sheets", spreadsheetID)
	}
	title := ss.Sheets[0].Properties.Title

	resp, err := r.svc.Spreadsheets.Values.Get(spreadsheetID, quoteSheet(title)).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read values of %q: %w", title, err)
	}
	return RowsFromGrid(resp.Values), nil
}

func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
