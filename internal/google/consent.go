package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	consentCallbackPath = "/oauth2/callback"
	consentTimeout      = 2 * time.Minute
)

// authorize runs the desktop-app consent flow: a loopback listener on an
// ephemeral port receives the authorization code, which is exchanged for a
// fresh token bundle. The listener is torn down on every exit path, success,
// error or context cancellation alike.
func (m *Manager) authorize(ctx context.Context) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, consentTimeout)
	defer cancel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to open callback listener: %w", err)
	}
	defer ln.Close()

	port := ln.Addr().(*net.TCPAddr).Port

	// The loopback redirect has to match the flow's listener, so work on a
	// copy of the config rather than mutating the shared one.
	conf := *m.conf
	conf.RedirectURL = fmt.Sprintf("http://127.0.0.1:%d%s", port, consentCallbackPath)

	state := uuid.NewString()

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	srv := &http.Server{
		Handler: consentCallbackHandler(state, codeCh, errCh),
	}
	defer srv.Close()

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errCh <- err:
			default:
			}
		}
	}()

	// offline access is what yields the refresh token; prompt=consent forces
	// Google to return one even when the user authorized before.
	authURL := conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)

	fmt.Fprintln(os.Stderr, "Opening browser for Google Calendar authorization...")
	fmt.Fprintln(os.Stderr, "If the browser doesn't open, visit this URL:")
	fmt.Fprintln(os.Stderr, authURL)
	_ = openBrowser(authURL)

	select {
	case code := <-codeCh:
		tok, err := conf.Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
		}
		if tok.RefreshToken == "" {
			return nil, errors.New("no refresh token received from consent flow")
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// consentCallbackHandler validates the state parameter and relays the
// authorization code. Exactly one code or error is delivered; later requests
// against an already-satisfied channel are dropped.
func consentCallbackHandler(state string, codeCh chan<- string, errCh chan<- error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != consentCallbackPath {
			http.NotFound(w, r)
			return
		}

		q := r.URL.Query()
		if errCode := q.Get("error"); errCode != "" {
			select {
			case errCh <- fmt.Errorf("authorization refused: %s", errCode):
			default:
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("Authorization cancelled. You can close this window."))
			return
		}
		if q.Get("state") != state {
			select {
			case errCh <- errors.New("state mismatch in authorization callback"):
			default:
			}
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("State mismatch. You can close this window."))
			return
		}
		code := q.Get("code")
		if code == "" {
			select {
			case errCh <- errors.New("authorization callback carried no code"):
			default:
			}
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("Missing authorization code. You can close this window."))
			return
		}

		select {
		case codeCh <- code:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Authorization complete. You can close this window."))
	})
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
