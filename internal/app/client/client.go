// Package client wires the passkeeper client together: configuration,
// logging, the remote HTTP client, the session, the record cache, the
// sync repository and the login history store.
package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"passkeeper/internal/app/client/cache"
	"passkeeper/internal/app/client/config"
	"passkeeper/internal/app/client/crypto"
	"passkeeper/internal/app/client/history"
	"passkeeper/internal/app/client/remote"
	"passkeeper/internal/app/client/repository"
	"passkeeper/internal/app/client/session"
)

// App owns the client-side object graph for one process.
type App struct {
	config   *config.Config
	log      *slog.Logger
	history  *history.Store
	repo     *repository.Repository
	searcher *repository.Searcher
}

// New builds the App. The history store is best-effort: if it cannot be
// opened the client still works, just without "remember me".
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	rc := remote.NewHTTPClient(cfg.ServerAddress, cfg.EnableTLS, log)
	repo := repository.New(rc, cache.New(), session.NewManager(), log)

	hist, err := history.Open(cfg.HistoryPath)
	if err != nil {
		log.Warn("login history unavailable", "path", cfg.HistoryPath, "error", err)
		hist = nil
	}

	return &App{
		config:   cfg,
		log:      log,
		history:  hist,
		repo:     repo,
		searcher: repository.NewSearcher(repo, time.Duration(cfg.SearchDebounce)*time.Millisecond),
	}, nil
}

// Repo returns the sync repository.
func (a *App) Repo() *repository.Repository { return a.repo }

// Searcher returns the debounced search front end.
func (a *App) Searcher() *repository.Searcher { return a.searcher }

// Config returns the loaded configuration.
func (a *App) Config() *config.Config { return a.config }

// TrySilentLogin attempts a token login with the last remembered entry.
// Returns true when a session was established. Any failure only means
// the user logs in manually.
func (a *App) TrySilentLogin(ctx context.Context) bool {
	if a.history == nil {
		return false
	}

	last, err := a.history.Last()
	if err != nil {
		if !errors.Is(err, history.ErrNoHistory) {
			a.log.Warn("failed to read login history", "error", err)
		}
		return false
	}
	if !last.SilentLogin || last.Token == "" || last.SecretKey == "" {
		return false
	}

	if err := a.repo.LoginWithToken(ctx, last.Token, last.SecretKey); err != nil {
		a.log.Debug("silent login failed", "user", last.Username, "error", err)
		return false
	}

	a.log.Info("silent login", "user", last.Username)
	return true
}

// RememberLogin stores a successful manual login for later silent
// login. No-op without a history store.
func (a *App) RememberLogin(username, password, secretKey string, silent bool) error {
	if a.history == nil {
		return nil
	}

	s, ok := a.repo.Session().Current()
	if !ok {
		return fmt.Errorf("no active session to remember")
	}

	return a.history.Save(history.Entry{
		Username:    username,
		Password:    password,
		SecretKey:   secretKey,
		Host:        a.config.ServerAddress,
		Token:       s.Token,
		Saved:       true,
		SilentLogin: silent,
	})
}

// ForgetLogins clears the saved login history. Called on logout so a
// stale token cannot silently re-authenticate the next start.
func (a *App) ForgetLogins() error {
	if a.history == nil {
		return nil
	}
	return a.history.Clear()
}

// GenerateSecretKey produces a fresh base64 secret key for a new vault.
func (a *App) GenerateSecretKey() (string, error) {
	return crypto.GenerateKey()
}

// Close releases process resources.
func (a *App) Close() error {
	a.searcher.Stop()
	if a.history != nil {
		return a.history.Close()
	}
	return nil
}
