package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/oauth2"

	"github.com/calmcp/calmcp/internal/logging"
)

// AuthError indicates that no usable credential could be produced: the consent
// flow failed or was refused, the refresh token was revoked, or the token
// bundle could not be persisted. It is not retried automatically; the operator
// has to re-authenticate.
type AuthError struct {
	Op  string // "load", "refresh", "consent" or "persist"
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth %s failed: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Credential lifecycle events reported to the observer hook.
const (
	EventRefresh = "refresh"
	EventConsent = "consent"
)

// Manager owns the OAuth token bundle for a single Google account.
//
// Token acquisition follows a fixed ladder: use the cached bundle while the
// access token is fresh, silently refresh against the token endpoint when it
// expires, and fall back to the interactive consent flow only when no bundle
// exists or the refresh grant is no longer valid. Every successful refresh or
// exchange is persisted before it is handed to a caller.
type Manager struct {
	conf      *oauth2.Config
	tokenFile string

	// AllowConsent permits the interactive browser flow. It is enabled for
	// the auth command and disabled while serving, where blocking on a
	// browser would stall the transport.
	AllowConsent bool

	// Observer, when set, is called after each refresh or consent attempt
	// with status "success" or "error". Used for metrics.
	Observer func(ctx context.Context, event, status string)

	mu    sync.Mutex
	token *oauth2.Token
}

// NewManager creates a Manager persisting the token bundle at tokenFile.
func NewManager(conf *oauth2.Config, tokenFile string) *Manager {
	return &Manager{
		conf:      conf,
		tokenFile: tokenFile,
	}
}

// NewManagerFromFiles builds a Manager from the client-secret file on disk
// and the default token path.
func NewManagerFromFiles() (*Manager, error) {
	conf, err := LoadConfig(ClientSecretPath())
	if err != nil {
		return nil, err
	}
	return NewManager(conf, TokenPath()), nil
}

// HasToken reports whether a token bundle has been persisted.
func (m *Manager) HasToken() bool {
	_, err := os.Stat(m.tokenFile)
	return err == nil
}

// Token returns a valid access token, refreshing or bootstrapping the bundle
// as needed. The check-refresh-persist sequence runs under the manager lock:
// a second caller arriving during a refresh blocks and then reuses the
// refreshed token instead of issuing its own token-endpoint request.
func (m *Manager) Token(ctx context.Context) (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token == nil {
		tok, err := m.loadToken()
		switch {
		case err == nil:
			m.token = tok
		case os.IsNotExist(err):
			// First run, consent flow below.
		default:
			return nil, &AuthError{Op: "load", Err: err}
		}
	}

	if m.token != nil && m.token.Valid() {
		return m.token, nil
	}

	if m.token != nil && m.token.RefreshToken != "" {
		tok, err := m.refreshLocked(ctx)
		if err == nil {
			return tok, nil
		}
		if !isInvalidGrant(err) {
			return nil, &AuthError{Op: "refresh", Err: err}
		}
		// Refresh token revoked or expired, only re-consent can recover.
	}

	return m.consentLocked(ctx)
}

// TokenSource returns an oauth2.TokenSource backed by the manager, suitable
// for wiring into API clients. Refreshes triggered through the source go
// through Token and therefore share the persistence and locking discipline.
func (m *Manager) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &managerTokenSource{ctx: ctx, m: m}
}

// Client returns an HTTP client that authenticates requests with the managed
// token. HTTP/2 is disabled to avoid protocol errors against the Google
// frontends with long-lived connections.
func (m *Manager) Client(ctx context.Context) (*http.Client, error) {
	// Fail fast so callers see an AuthError instead of a lazy failure on
	// the first API call.
	if _, err := m.Token(ctx); err != nil {
		return nil, err
	}

	client := oauth2.NewClient(ctx, m.TokenSource(ctx))
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			ForceAttemptHTTP2: false,
		}
	}
	return client, nil
}

// Authorize runs the interactive consent flow unconditionally and persists
// the resulting bundle, replacing any stored credentials. Used by the auth
// command for explicit re-authentication.
func (m *Manager) Authorize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := m.consentFlowLocked(ctx)
	return err
}

func (m *Manager) refreshLocked(ctx context.Context) (*oauth2.Token, error) {
	tok, err := m.conf.TokenSource(ctx, m.token).Token()
	m.observe(ctx, EventRefresh, err)
	if err != nil {
		return nil, err
	}

	// The token endpoint usually omits the refresh token on refresh
	// responses; never drop the one we have.
	if tok.RefreshToken == "" {
		tok.RefreshToken = m.token.RefreshToken
	}

	slog.Debug("access token refreshed",
		logging.Operation("oauth.refresh"),
		"access_token", logging.SanitizeToken(tok.AccessToken),
		"expiry", tok.Expiry)

	if err := m.saveToken(tok); err != nil {
		return nil, &AuthError{Op: "persist", Err: err}
	}
	m.token = tok
	return tok, nil
}

func (m *Manager) consentLocked(ctx context.Context) (*oauth2.Token, error) {
	if !m.AllowConsent {
		return nil, &AuthError{Op: "consent", Err: errors.New(`no stored credentials; run "calmcp auth" to authorize`)}
	}
	return m.consentFlowLocked(ctx)
}

func (m *Manager) consentFlowLocked(ctx context.Context) (*oauth2.Token, error) {
	tok, err := m.authorize(ctx)
	m.observe(ctx, EventConsent, err)
	if err != nil {
		return nil, &AuthError{Op: "consent", Err: err}
	}
	if err := m.saveToken(tok); err != nil {
		return nil, &AuthError{Op: "persist", Err: err}
	}
	m.token = tok

	slog.Info("authorization complete",
		logging.Operation("oauth.consent"),
		"token_file", m.tokenFile)
	return tok, nil
}

func (m *Manager) loadToken() (*oauth2.Token, error) {
	f, err := os.Open(m.tokenFile)
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

// saveToken writes the bundle atomically: the new content lands in a temp
// file that is renamed over the old one, so a crash mid-write leaves the
// prior bundle intact.
func (m *Manager) saveToken(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(m.tokenFile), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	b, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	b = append(b, '\n')

	tmp := m.tokenFile + ".tmp"
	if err := os.WriteFile(tmp, b, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmp, m.tokenFile); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to commit token file: %w", err)
	}
	return nil
}

func (m *Manager) observe(ctx context.Context, event string, err error) {
	if m.Observer == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.Observer(ctx, event, status)
}

// isInvalidGrant reports whether the token endpoint rejected the refresh
// grant itself (revoked or expired refresh token) as opposed to a transient
// network or server failure.
func isInvalidGrant(err error) bool {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.ErrorCode == "invalid_grant" {
			return true
		}
		return strings.Contains(string(retrieveErr.Body), "invalid_grant")
	}
	return false
}

type managerTokenSource struct {
	ctx context.Context
	m   *Manager
}

func (ts *managerTokenSource) Token() (*oauth2.Token, error) {
	return ts.m.Token(ts.ctx)
}
