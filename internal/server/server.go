// package server contains the web UI and JSON API for the playlist generator
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/Nishad-30/vibelist-ai/internal/curator"
	"github.com/Nishad-30/vibelist-ai/internal/repositories"
	"github.com/Nishad-30/vibelist-ai/internal/services"
	"github.com/Nishad-30/vibelist-ai/internal/shared"
	"github.com/Nishad-30/vibelist-ai/internal/tasks"
	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	sessionName       = "vibelist"
	sessionHistoryKey = "history"
	sessionStateKey   = "oauth_state"
	sessionHistoryMax = 5
)

// exampleVibes seed the input form.
var exampleVibes = []string{
	"rainy sunday morning with coffee",
	"high energy gym session",
	"late night coding focus",
	"romantic dinner for two",
	"road trip through the desert",
	"chill autumn afternoon",
}

// Server wires the curation engine, Spotify client, and history store behind
// an HTTP interface: an HTML UI plus a small JSON API.
type Server struct {
	config    *shared.Config
	engine    tasks.CurateEngine
	curator   *curator.Curator
	spotify   *services.SpotifyService
	history   *repositories.HistoryStore
	store     *sessions.CookieStore
	templates map[string]*template.Template
	logger    *log.Logger
}

// ServerOpts configures a Server. Engine and Config are required; Spotify and
// History are optional and gate the publish and history features.
type ServerOpts struct {
	Config  *shared.Config
	Engine  tasks.CurateEngine
	Curator *curator.Curator
	Spotify *services.SpotifyService
	History *repositories.HistoryStore
	Logger  *log.Logger
}

// NewServer creates a Server with parsed templates and a session store keyed
// by the configured secret.
func NewServer(opts ServerOpts) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	secret := opts.Config.Server.SessionSecret
	if secret == "" {
		// Random per-process secret; sessions reset on restart.
		secret = shared.GenerateID()
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	store := sessions.NewCookieStore([]byte(secret))
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode

	return &Server{
		config:    opts.Config,
		engine:    opts.Engine,
		curator:   opts.Curator,
		spotify:   opts.Spotify,
		history:   opts.History,
		store:     store,
		templates: templates,
		logger:    opts.Logger,
	}, nil
}

func parseTemplates() (map[string]*template.Template, error) {
	pages := map[string]*template.Template{}
	for _, page := range []string{"index.html", "history.html"} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, err
		}
		pages[page] = t
	}
	return pages, nil
}

// Routes builds the chi router with the full middleware stack and all
// handlers registered.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", s.handleIndex)
	r.Post("/playlists", s.handleCreatePlaylist)
	r.Get("/history", s.handleHistory)
	r.Get("/healthz", s.handleHealthz)

	r.Get("/auth/login", s.handleAuthLogin)
	r.Get("/callback", s.handleAuthCallback)

	r.Route("/api", func(r chi.Router) {
		r.Post("/interpret", s.handleAPIInterpret)
		r.Post("/playlists", s.handleAPICurate)
	})

	return r
}

// Start runs the HTTP server until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Server.Addr(),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// requestLogger logs method, path, status, and latency for each request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start),
		)
	})
}
