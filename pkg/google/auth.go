package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klokku/calbar/internal/config"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
)

var ErrUnauthenticated = errors.New("google calendar is not authorized, run 'calbar auth' first")

const authTimeout = 5 * time.Minute

// Credentials are the OAuth client id and secret of an installed application.
type Credentials struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

// TokenStore is the on-disk form of an OAuth token.
type TokenStore struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	Expiry       time.Time `json:"expiry"`
}

type GoogleAuth struct {
	cfg      config.Google
	endpoint oauth2.Endpoint
	browser  func(url string) error
}

func NewGoogleAuth(cfg config.Google) *GoogleAuth {
	return &GoogleAuth{cfg: cfg, endpoint: google.Endpoint, browser: openBrowser}
}

func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("credentials not found at %s, please configure OAuth credentials", path)
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("credentials file %s is missing clientId or clientSecret", path)
	}
	return &creds, nil
}

// LoadToken returns nil without an error when no token was saved yet.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read token: %w", err)
	}

	var store TokenStore
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return &oauth2.Token{
		AccessToken:  store.AccessToken,
		RefreshToken: store.RefreshToken,
		TokenType:    store.TokenType,
		Expiry:       store.Expiry,
	}, nil
}

// SaveToken writes the token readable by the owner only.
func SaveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	data, err := json.MarshalIndent(TokenStore{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

func (g *GoogleAuth) oauthConfig(creds *Credentials) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     g.endpoint,
		RedirectURL:  fmt.Sprintf("http://localhost:%d/callback", g.cfg.CallbackPort),
		Scopes:       []string{gcal.CalendarReadonlyScope},
	}
}

// Client returns an authorized HTTP client. A refreshed token is saved back to the token file.
func (g *GoogleAuth) Client(ctx context.Context) (*http.Client, error) {
	creds, err := LoadCredentials(g.cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}
	token, err := LoadToken(g.cfg.TokenFile)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, ErrUnauthenticated
	}

	tokenSource := g.oauthConfig(creds).TokenSource(ctx, token)
	fresh, err := tokenSource.Token()
	if err != nil {
		err := fmt.Errorf("%w: token refresh failed: %w", ErrUnauthenticated, err)
		log.Error(err)
		return nil, err
	}
	if fresh.AccessToken != token.AccessToken {
		if err := SaveToken(g.cfg.TokenFile, fresh); err != nil {
			log.Warnf("failed to save refreshed Google token: %v", err)
		} else {
			log.Debug("Saved refreshed Google token")
		}
	}
	return oauth2.NewClient(ctx, tokenSource), nil
}

// IsAuthorized reports whether credentials and a token are present.
func (g *GoogleAuth) IsAuthorized() bool {
	if _, err := LoadCredentials(g.cfg.CredentialsFile); err != nil {
		return false
	}
	token, err := LoadToken(g.cfg.TokenFile)
	return err == nil && token != nil
}

// RunAuthFlow performs the installed-app flow: it serves the redirect on localhost, opens the
// consent page and saves the exchanged token.
func (g *GoogleAuth) RunAuthFlow(ctx context.Context, out io.Writer) error {
	creds, err := LoadCredentials(g.cfg.CredentialsFile)
	if err != nil {
		return err
	}
	oauthConfig := g.oauthConfig(creds)

	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", g.cfg.CallbackPort))
	if err != nil {
		return fmt.Errorf("start callback server: %w", err)
	}

	state := uuid.New().String()
	codes := make(chan string, 1)
	errs := make(chan error, 1)

	mux := http.NewServeMux()
	mux.Handle("/callback", callbackHandler(state, codes, errs))
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	defer server.Close()

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			report[error](errs, err)
		}
	}()

	authURL := oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Fprintf(out, "Opening browser for authorization...\nIf the browser doesn't open, visit:\n%s\n\n", authURL)
	if err := g.browser(authURL); err != nil {
		log.Debugf("could not open browser: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	var code string
	select {
	case code = <-codes:
	case err := <-errs:
		return err
	case <-ctx.Done():
		return fmt.Errorf("authorization not completed: %w", ctx.Err())
	}

	token, err := oauthConfig.Exchange(ctx, code)
	if err != nil {
		err := fmt.Errorf("unable to exchange code for token: %w", err)
		log.Error(err)
		return err
	}
	if err := SaveToken(g.cfg.TokenFile, token); err != nil {
		return err
	}
	fmt.Fprintln(out, "Authorization successful! Token saved.")
	return nil
}

func callbackHandler(state string, codes chan<- string, errs chan<- error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("state") != state {
			http.Error(w, "Invalid state", http.StatusBadRequest)
			return
		}
		if e := r.FormValue("error"); e != "" {
			report(errs, fmt.Errorf("authorization denied: %s", e))
			http.Error(w, "Authorization denied", http.StatusForbidden)
			return
		}
		code := r.FormValue("code")
		if code == "" {
			report(errs, errors.New("no code in callback"))
			http.Error(w, "No code received", http.StatusBadRequest)
			return
		}
		report(codes, code)
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><h1>Authorization successful!</h1><p>You can close this tab and return to the terminal.</p></body></html>`)
	}
}

// report never blocks: only the first callback counts.
func report[T any](ch chan<- T, v T) {
	select {
	case ch <- v:
	default:
	}
}

func openBrowser(url string) error {
	return exec.Command("xdg-open", url).Start()
}
