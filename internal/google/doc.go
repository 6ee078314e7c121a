// Package google provides OAuth2 authentication and token management for the
// Google Calendar API.
//
// The Manager owns the full credential lifecycle: loading the operator-supplied
// client-secret file, persisting the token bundle across restarts, refreshing
// access tokens silently, and bootstrapping first-time authorization through
// the OAuth 2.0 desktop-app loopback flow.
//
// Token persistence is atomic (temp file + rename) and the refresh path is
// serialized, so concurrent callers during a refresh window observe a single
// refreshed token rather than racing against the token endpoint.
package google
