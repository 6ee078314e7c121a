// Package logging provides structured logging utilities for the calmcp server.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - Token sanitization for credential material
//   - Consistent attribute naming across the codebase
//
// # Usage Patterns
//
// Log with standard attributes:
//
//	slog.Debug("listing events",
//	    logging.Operation("events.list"),
//	    logging.Calendar("primary"))
//
// Sanitize sensitive data before logging:
//
//	slog.Debug("loaded token",
//	    "access_token", logging.SanitizeToken(tok.AccessToken))
//
// # Security Considerations
//
// Tokens are never logged directly; SanitizeToken reduces them to a length
// indicator before they reach any log output.
package logging
