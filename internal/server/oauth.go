package server

import (
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

// AuthResult is the outcome of a completed authorization-code flow.
type AuthResult struct {
	Token *oauth2.Token
	Err   error
}

// CallbackHandler serves the one-shot OAuth callback used by
// `vibelist spotify auth`. The CLI opens the authorization URL, runs a
// temporary server with this handler, and blocks on Done() until Spotify
// redirects back. The web UI has its own session-backed callback.
type CallbackHandler struct {
	exchange func(code string) (*oauth2.Token, error)
	state    string

	mu   sync.Mutex
	done chan AuthResult
	used bool
}

// NewCallbackHandler creates a callback handler bound to a CSRF state token.
// The state should be cryptographically random.
func NewCallbackHandler(state string, exchange func(code string) (*oauth2.Token, error)) *CallbackHandler {
	return &CallbackHandler{
		exchange: exchange,
		state:    state,
		done:     make(chan AuthResult, 1),
	}
}

// Done returns a channel that receives exactly one AuthResult and is then
// closed.
func (h *CallbackHandler) Done() <-chan AuthResult {
	return h.done
}

func (h *CallbackHandler) finish(result AuthResult) {
	h.done <- result
	close(h.done)
}

// ServeHTTP validates the state parameter, exchanges the authorization code,
// and delivers the result to the waiting CLI. Repeat hits are rejected.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.used {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.used = true
	h.mu.Unlock()

	query := r.URL.Query()

	if query.Get("state") != h.state {
		h.finish(AuthResult{Err: fmt.Errorf("state mismatch on OAuth callback")})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		h.finish(AuthResult{Err: fmt.Errorf("authorization denied: %s (%s)", query.Get("error"), query.Get("error_description"))})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := h.exchange(code)
	if err != nil {
		h.finish(AuthResult{Err: fmt.Errorf("token exchange failed: %w", err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	h.finish(AuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, authSuccessPage)
}

const authSuccessPage = `<!DOCTYPE html>
<html>
<head>
    <title>Spotify Connected</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .card { text-align: center; background: white; padding: 2rem;
                border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="card">
        <h1>✓ Spotify Connected</h1>
        <p>Playlists can now be created on your account. You can close this window.</p>
    </div>
</body>
</html>
`
