// Package gdocs wraps the Google Docs, Sheets and Drive services used to
// read tabular input and write generated documents.
package gdocs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Scopes requested for every credential type.
var Scopes = []string{
	drive.DriveFileScope,
	docs.DocumentsScope,
	sheets.SpreadsheetsReadonlyScope,
}

// AuthConfig locates the credentials used to reach Google APIs.
type AuthConfig struct {
	// CredentialsFile is a service account key or an OAuth client secret
	CredentialsFile string
	// TokenFile caches the OAuth token between runs
	TokenFile string
	// RedirectAddr is the host:port of the local OAuth callback listener
	RedirectAddr string
	// Prompt receives the consent URL during the OAuth flow
	Prompt io.Writer
	Logger *log.Logger
}

type credentialsKind struct {
	Type      string          `json:"type"`
	Installed json.RawMessage `json:"installed"`
	Web       json.RawMessage `json:"web"`
}

// Authenticate returns a client option carrying credentials for Scopes.
// Service account keys are used directly; OAuth client secrets go through
// the cached token or the browser consent flow.
func Authenticate(ctx context.Context, cfg AuthConfig) (option.ClientOption, error) {
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var kind credentialsKind
	if err := json.Unmarshal(data, &kind); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	if kind.Type == "service_account" {
		creds, err := google.CredentialsFromJSON(ctx, data, Scopes...)
		if err != nil {
			return nil, fmt.Errorf("failed to load service account: %w", err)
		}
		return option.WithCredentials(creds), nil
	}

	oauthCfg, err := OAuthConfig(data, cfg.RedirectAddr)
	if err != nil {
		return nil, err
	}

	tok, err := LoadToken(cfg.TokenFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		tok, err = Consent(ctx, oauthCfg, cfg)
		if err != nil {
			return nil, err
		}
		if err := SaveToken(cfg.TokenFile, tok); err != nil {
			return nil, err
		}
	}

	return option.WithTokenSource(oauthCfg.TokenSource(ctx, tok)), nil
}

// OAuthConfig parses an OAuth client secret and points its redirect at the
// local callback listener.
func OAuthConfig(clientSecret []byte, redirectAddr string) (*oauth2.Config, error) {
	oauthCfg, err := google.ConfigFromJSON(clientSecret, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OAuth client secret: %w", err)
	}
	if redirectAddr != "" {
		oauthCfg.RedirectURL = "http://" + redirectAddr
	}
	return oauthCfg, nil
}

// Consent runs the installed-app flow: it prints the consent URL, waits for
// the redirect carrying the authorization code and exchanges it.
func Consent(ctx context.Context, oauthCfg *oauth2.Config, cfg AuthConfig) (*oauth2.Token, error) {
	addr := cfg.RedirectAddr
	if addr == "" {
		addr = "localhost:8501"
		oauthCfg.RedirectURL = "http://" + addr
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for OAuth callback: %w", err)
	}

	state := uuid.NewString()
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	report := func(err error) {
		select {
		case errCh <- err:
		default:
		}
	}

	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		if msg := q.Get("error"); msg != "" {
			http.Error(w, "authorization failed", http.StatusBadRequest)
			report(fmt.Errorf("authorization failed: %s", msg))
			return
		}
		code := q.Get("code")
		if code == "" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintln(w, "Authorization complete. You can close this window.")
		select {
		case codeCh <- code:
		default:
		}
	})}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			report(err)
		}
	}()
	defer srv.Close()

	authURL := oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	if cfg.Prompt != nil {
		fmt.Fprintf(cfg.Prompt, "Open this URL to authorize access:\n\n%s\n\n", authURL)
	}
	if cfg.Logger != nil {
		cfg.Logger.Debug("waiting for OAuth callback", "addr", addr)
	}

	select {
	case code := <-codeCh:
		tok, err := oauthCfg.Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, fmt.Errorf("authorization cancelled: %w", ctx.Err())
	}
}

// LoadToken reads a cached OAuth token.
func LoadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token file: %w", err)
	}
	return tok, nil
}

// SaveToken writes tok to path, readable only by the owner.
func SaveToken(path string, tok *oauth2.Token) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer f.Close()

	// O_CREATE's mode only applies to new files.
	if err := f.Chmod(0600); err != nil {
		return fmt.Errorf("failed to restrict token file: %w", err)
	}

	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
