// Package server exposes the playlist generator over HTTP.
//
// Two surfaces share one chi router:
//
//   - HTML UI: a vibe input form with example prompts and a size slider,
//     the assembled playlist with its interpretation summary, and a
//     session-scoped history of the visitor's last five playlists.
//   - JSON API: POST /api/interpret returns the vibe profile only;
//     POST /api/playlists runs the full curation pipeline.
//
// Spotify account linking uses the authorization-code flow: /auth/login
// redirects to the consent page with a session-bound state token and
// /callback finishes the exchange. [CallbackHandler] is the separate
// one-shot callback used by the CLI's auth command.
//
// Sessions ride a [sessions.CookieStore]; history entries persist in
// sqlite via [repositories.HistoryStore] with only the IDs kept in the
// cookie.
package server
