// Package log provides slog loggers that mask secrets before they are
// written.
//
// Audits log pixel URLs, request headers and transport errors. Ad servers
// often sign pixel URLs with tokens in the query string, and custom probe
// headers may carry credentials, so the SecureHandler masks:
//   - attributes whose key names a credential (authorization, cookie, token)
//   - string values that look like credentials (JWTs, bearer tokens)
//   - sensitive query parameter values inside any logged URL, including URLs
//     quoted in error messages
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Warn("pixel failed", "url", "https://px.example.com/i?token=abc")
//	// url=https://px.example.com/i?token=***REDACTED***
package log
