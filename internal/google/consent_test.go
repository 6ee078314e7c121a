package google

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsentCallbackDeliversCode(t *testing.T) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	handler := consentCallbackHandler("state-1", codeCh, errCh)

	req := httptest.NewRequest("GET", "/oauth2/callback?state=state-1&code=auth-code", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	select {
	case code := <-codeCh:
		assert.Equal(t, "auth-code", code)
	default:
		t.Fatal("expected code on channel")
	}
}

func TestConsentCallbackStateMismatch(t *testing.T) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	handler := consentCallbackHandler("state-1", codeCh, errCh)

	req := httptest.NewRequest("GET", "/oauth2/callback?state=forged&code=auth-code", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, 400, rec.Code)
	select {
	case err := <-errCh:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "state mismatch")
	default:
		t.Fatal("expected error on channel")
	}
	assert.Empty(t, codeCh)
}

func TestConsentCallbackAuthorizationRefused(t *testing.T) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	handler := consentCallbackHandler("state-1", codeCh, errCh)

	req := httptest.NewRequest("GET", "/oauth2/callback?error=access_denied", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	select {
	case err := <-errCh:
		assert.Contains(t, err.Error(), "access_denied")
	default:
		t.Fatal("expected error on channel")
	}
}

func TestConsentCallbackMissingCode(t *testing.T) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	handler := consentCallbackHandler("state-1", codeCh, errCh)

	req := httptest.NewRequest("GET", "/oauth2/callback?state=state-1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, 400, rec.Code)
	select {
	case <-errCh:
	default:
		t.Fatal("expected error on channel")
	}
}

func TestConsentCallbackIgnoresOtherPaths(t *testing.T) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	handler := consentCallbackHandler("state-1", codeCh, errCh)

	req := httptest.NewRequest("GET", "/favicon.ico", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, 404, rec.Code)
	assert.Empty(t, codeCh)
	assert.Empty(t, errCh)
}
