package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

func TestReadFirstSheet(t *testing.T) {
	var valuesQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Path, "/values/") {
			valuesQuery = r.URL.RawQuery
			_ = json.NewEncoder(w).Encode(map[string]any{
				"range": "'Pipeline'!A1:C3",
				"values": [][]any{
					{"Opportunity Name", "Amount (converted)", "Close Date"},
					{"Acme Renewal", 1500.4, 45731},
				},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sheets": []any{map[string]any{"properties": map[string]any{"title": "Pipeline"}}},
		})
	}))
	defer srv.Close()

	ctx := context.Background()
	reader, err := NewSheetsReaderWithClient(ctx, srv.Client(), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	rows, err := reader.ReadFirstSheet(ctx, "sheet-123")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Contains(t, valuesQuery, "valueRenderOption=UNFORMATTED_VALUE")

	res, err := Process(rows, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1500), res.Records[0].Amount)
	assert.Equal(t, time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC), res.Records[0].CloseDate)
}

func TestOAuthConfig(t *testing.T) {
	_, err := NewOAuthConfig("", "secret", "localhost:8085")
	assert.Error(t, err)

	cfg, err := NewOAuthConfig("id", "secret", "localhost:8085")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8085/oauth/callback", cfg.RedirectURL)
	assert.Equal(t, []string{"https://www.googleapis.com/auth/spreadsheets.readonly"}, cfg.Scopes)
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	token := &oauth2.Token{AccessToken: "abc", RefreshToken: "def", TokenType: "Bearer"}

	require.NoError(t, SaveToken(path, token))
	loaded, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", loaded.AccessToken)
	assert.Equal(t, "def", loaded.RefreshToken)

	_, err = LoadToken(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestQuoteSheet(t *testing.T) {
	assert.Equal(t, "'Bob''s Deals'", quoteSheet("Bob's Deals"))
}
