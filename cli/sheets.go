// ABOUTME: Google Sheets authorization command
// ABOUTME: Runs the OAuth flow on a loopback listener and stores the token for pipeline sheets
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/pipetrack/config"
	"github.com/harperreed/pipetrack/ingest"
	"golang.org/x/oauth2"
)

// oauthListenAddr receives the Google redirect. It must match the OAuth client's redirect URI.
const oauthListenAddr = "localhost:8471"

// SheetsAuthCommand authorizes read-only Sheets access.
func SheetsAuthCommand(ctx context.Context, cfg *config.Config, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("sheets auth", flag.ContinueOnError)
	noBrowser := fs.Bool("no-browser", false, "Print the URL without opening a browser")
	if err := fs.Parse(args); err != nil {
		return err
	}

	oauthCfg, err := ingest.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, oauthListenAddr)
	if err != nil {
		return err
	}

	state := uuid.NewString()
	tokens := make(chan *oauth2.Token, 1)
	errs := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(ingest.OAuthCallbackPath, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "no authorization code", http.StatusBadRequest)
			sendErr(errs, fmt.Errorf("no authorization code received"))
			return
		}
		token, err := oauthCfg.Exchange(r.Context(), code)
		if err != nil {
			http.Error(w, "token exchange failed", http.StatusBadGateway)
			sendErr(errs, fmt.Errorf("failed to exchange code: %w", err))
			return
		}
		_, _ = fmt.Fprint(w, "Authorization successful! You can close this window.")
		tokens <- token
	})

	server := &http.Server{Addr: oauthListenAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sendErr(errs, err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	authURL := oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	_, _ = fmt.Fprintf(out, "Visit this URL to authorize read-only Google Sheets access:\n%s\n\n", authURL)
	if !*noBrowser {
		_ = openBrowser(authURL)
	}

	select {
	case token := <-tokens:
		if err := ingest.SaveToken(ingest.TokenPath(), token); err != nil {
			return fmt.Errorf("failed to save token: %w", err)
		}
		_, _ = fmt.Fprintln(out, "✓ Authenticated successfully")
		_, _ = fmt.Fprintf(out, "✓ Token saved to %s\n", ingest.TokenPath())
		return nil
	case err := <-errs:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func sendErr(errs chan<- error, err error) {
	select {
	case errs <- err:
	default:
	}
}

func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	return exec.Command(cmd, args...).Start()
}
