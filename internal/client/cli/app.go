package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/matchline/tournops/internal/client/api"
	"github.com/matchline/tournops/internal/client/config"
	"github.com/matchline/tournops/internal/client/guard"
	"github.com/matchline/tournops/internal/client/notifications"
	"github.com/matchline/tournops/internal/client/repositories/keystore"
	"github.com/matchline/tournops/internal/client/services"
	"github.com/matchline/tournops/internal/client/session"
	"github.com/matchline/tournops/internal/logging"
)

// Mode is the client's connectivity status, maintained by the online
// status watcher and shown in the prompt.
type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

// App wires the client components together and serves the REPL.
type App struct {
	config  *config.Config
	log     logging.Logger
	db      *sql.DB
	store   *session.Store
	auth    *services.AuthService
	channel *notifications.Manager
	guard   *guard.Guard
	unmount func()
	reader  *bufio.Reader

	mu    sync.Mutex
	mode  Mode
	route string
}

// NewApp builds a fully wired App from cfg. The returned App owns the
// database handle and the API client; Run closes both on exit.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	db, err := keystore.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}

	store := session.NewStore(db, log)
	apiClient := api.NewHTTPClient(cfg.APIBaseURL, store, cfg.RequestTimeout)
	channel := notifications.NewManager(cfg.WSURL, notifications.Config{
		BaseDelay:   cfg.ReconnectBaseDelay,
		MaxAttempts: cfg.ReconnectMaxAttempts,
	}, log)

	a := &App{
		config:  cfg,
		log:     log.With("component", "cli"),
		db:      db,
		store:   store,
		channel: channel,
		reader:  bufio.NewReader(os.Stdin),
		mode:    ModeOffline,
	}
	a.auth = services.NewAuthService(apiClient, store, a, log)
	a.guard = guard.New(channel, a, log)
	return a, nil
}

// Navigate implements services.Navigator: the terminal client has no view
// stack, so a navigation just moves the prompt's current route.
func (a *App) Navigate(route string) {
	a.mu.Lock()
	a.route = route
	a.mu.Unlock()
	fmt.Printf("-> %s\n", route)
}

// Replace implements guard.Redirector. History-replacing and pushing
// navigations collapse to the same thing in a terminal.
func (a *App) Replace(route string) {
	a.Navigate(route)
}

func (a *App) currentRoute() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.route
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		fmt.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) getMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) isLoggedIn() bool {
	return a.store.Snapshot().IsAuthenticated
}

// Run hydrates the session, mounts the guard, starts the online status
// watcher and serves the REPL until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if a.unmount != nil {
			a.unmount()
		}
		if err := a.auth.Close(); err != nil {
			a.log.Warn(ctx, "api client close failed", "error", err)
		}
		if err := a.db.Close(); err != nil {
			a.log.Warn(ctx, "database close failed", "error", err)
		}
	}()

	if err := a.store.Hydrate(ctx); err != nil {
		a.log.Warn(ctx, "session hydration cleanup failed", "error", err)
	}
	a.unmount = a.guard.Mount(a.store)

	watchCtx, stopWatcher := context.WithCancel(ctx)
	defer stopWatcher()
	go a.startOnlineStatusWatcher(watchCtx, a.config.OnlineCheckInterval)

	fmt.Println("Welcome to TournOps (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
	return nil
}

// getStatus renders the prompt suffix: user, connectivity mode, unread badge.
func (a *App) getStatus() string {
	s := ""
	if user := a.store.CurrentUser(); user != nil {
		s = user.Username + " "
	}
	s += string(a.getMode())
	if unread := a.channel.UnreadCount(); unread > 0 {
		s += fmt.Sprintf(" [%d]", unread)
	}
	return "(" + s + ")"
}

// startOnlineStatusWatcher probes the API on a fixed interval and flips the
// connectivity mode accordingly.
func (a *App) startOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := a.auth.Ping(ctx); err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}
		case <-ctx.Done():
			return
		}
	}
}
