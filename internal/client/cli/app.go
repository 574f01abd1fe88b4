package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/vaultsync/internal/client/client"
	"github.com/dmitrijs2005/vaultsync/internal/client/config"
	"github.com/dmitrijs2005/vaultsync/internal/client/services"
	"github.com/dmitrijs2005/vaultsync/internal/filex"
	"github.com/dmitrijs2005/vaultsync/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const pingTimeout = 3 * time.Second

type App struct {
	config  *config.Config
	session *services.Session
	logger  logging.Logger
	reader  *bufio.Reader
	out     io.Writer
	closers []func() error

	mu   sync.Mutex
	mode Mode

	// current is the entry selected with "use"
	current string
}

// NewApp dials the server, opens the offline cache unless disabled, and
// returns an App reading stdin and writing stdout.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewText(os.Stderr, logging.ParseLevel(c.LogLevel))

	apiClient, err := client.NewVaultClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	opts := []services.SessionOption{services.WithLogger(logger)}
	closers := []func() error{apiClient.Close}

	if c.CacheFile != "" {
		if err := filex.EnsureParentDir(c.CacheFile); err != nil {
			apiClient.Close()
			return nil, err
		}
		db, err := client.InitDatabase(ctx, c.CacheFile)
		if err != nil {
			logger.Error(ctx, "error initializing offline cache", "file", c.CacheFile, "error", err)
			apiClient.Close()
			return nil, err
		}
		opts = append(opts, services.WithCache(services.NewCache(db, c.ServerEndpointAddr)))
		closers = append(closers, db.Close)
	}

	a := newApp(c, services.NewSession(apiClient, opts...), os.Stdin, os.Stdout, logger)
	a.closers = closers
	return a, nil
}

func newApp(c *config.Config, s *services.Session, in io.Reader, out io.Writer, logger logging.Logger) *App {
	return &App{
		config:  c,
		session: s,
		logger:  logger,
		reader:  bufio.NewReader(in),
		out:     out,
	}
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode != mode {
		a.mode = mode
		a.logger.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

func (a *App) getMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) isLoggedIn() bool {
	return a.session.State() == services.Authenticated
}

func (a *App) getStatus() string {
	s := ""
	if u := a.session.Username(); u != "" {
		s = u + " "
	}
	if m := a.getMode(); m != "" {
		s = s + string(m)
	}
	if a.session.Offline() {
		s = s + " read-only"
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Run executes the REPL until "exit" or end of input, then logs out and
// releases the connection and the cache.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, "Welcome to vaultsync (type 'help' for commands)")

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)

	a.session.Logout(ctx)
	return a.Close()
}

// Close releases the server connection and the cache database.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// StartOnlineStatusWatcher pings the server every interval until ctx ends
// and records the result as the connectivity mode.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := a.session.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}
