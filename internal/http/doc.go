// Package http exposes the baby pool over HTTP using chi.
//
// The router serves the following endpoints:
//   - POST /sessions: exchanges the shared site password for a session. Body:
//     {"password"}. Response: {"token","expires_at"} with the token also set as
//     the `session_token` cookie and the `X-Session-Token` header. Rate limited
//     per client IP.
//   - GET /settings: public settings (secrets removed).
//   - POST /weight/convert: {"pounds","ounces"} or {"kilograms"} in, both
//     representations out.
//   - GET /guesses, POST /guesses: list newest first or submit a guess using
//     the `guessRequest` payload defined in guess_handler.go. Session required.
//   - GET /calendar/events: the calendar projection of every guess. Session
//     required.
//   - GET /healthz and, when enabled, GET /metrics.
//
// Session tokens are read from `Authorization: Bearer`, `X-Session-Token` or
// the `session_token` cookie, in that order.
package http
