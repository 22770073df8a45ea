package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/Nishad-30/vibelist-ai/internal/curator"
	"github.com/Nishad-30/vibelist-ai/internal/repositories"
	"github.com/Nishad-30/vibelist-ai/internal/services"
	"github.com/Nishad-30/vibelist-ai/internal/shared"
	"github.com/Nishad-30/vibelist-ai/internal/tasks"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	spotify    *services.SpotifyService
	curator    *curator.Curator
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Spotify    *services.SpotifyService
	Curator    *curator.Curator
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Curator == nil {
		opts.Curator = curator.New(opts.Config.Curator.ModelPath, opts.Logger)
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		spotify:    opts.Spotify,
		curator:    opts.Curator,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the runner's logger. The TUI swaps in a file logger so
// log lines stay off the alternate screen.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		trainCommand, curateCommand, serveCommand, tuiCommand, spotifyCommand, setupCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// newEngine builds a curation engine over the runner's curator and Spotify
// service. The cache may be nil.
func (r *Runner) newEngine(cache tasks.PlaylistCacher) (*tasks.VibeEngine, error) {
	if r.spotify == nil {
		return nil, fmt.Errorf("%w: Spotify credentials not configured", shared.ErrServiceUnavailable)
	}

	return tasks.NewVibeEngine(tasks.EngineOpts{
		Curator:    r.curator,
		Service:    r.spotify,
		Cache:      cache,
		Logger:     r.logger,
		MaxRetries: r.config.Curator.MaxRetries,
		RateLimit:  r.config.Curator.RateLimit,
	}), nil
}

// openHistory opens the configured sqlite database with migrations applied
// and wraps it in a history store. The caller closes the database.
func (r *Runner) openHistory() (*sql.DB, *repositories.HistoryStore, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, repositories.NewHistoryStore(db), nil
}

// saveTokens persists user OAuth tokens to the in-memory config and, when a
// config path is known, back to disk.
func (r *Runner) saveTokens(token *oauth2.Token) error {
	if r.config == nil {
		return fmt.Errorf("config is nil")
	}

	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}

	if r.configPath == "" {
		return nil
	}

	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
