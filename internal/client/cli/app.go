package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/expertconnect/internal/client/client"
	"github.com/dmitrijs2005/expertconnect/internal/client/config"
	"github.com/dmitrijs2005/expertconnect/internal/client/models"
	"github.com/dmitrijs2005/expertconnect/internal/client/objectstore"
	"github.com/dmitrijs2005/expertconnect/internal/client/peer"
	"github.com/dmitrijs2005/expertconnect/internal/client/realtime"
	"github.com/dmitrijs2005/expertconnect/internal/client/room"
	"github.com/dmitrijs2005/expertconnect/internal/client/services"
	"github.com/dmitrijs2005/expertconnect/internal/client/tokens"
	"github.com/dmitrijs2005/expertconnect/internal/client/views"
	"github.com/dmitrijs2005/expertconnect/internal/cryptox"
	"github.com/dmitrijs2005/expertconnect/internal/filex"
	"github.com/dmitrijs2005/expertconnect/internal/logging"
	"github.com/dmitrijs2005/expertconnect/internal/metrics"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Realtime is the part of the websocket the CLI drives.
type Realtime interface {
	room.Signaling
	OnMessage(fn func(models.Message)) func()
	Run(ctx context.Context) error
	Close() error
}

type App struct {
	config *config.Config
	log    logging.Logger

	auth      services.AuthService
	credits   services.CreditService
	meetings  services.MeetingService
	messaging services.MessagingService
	directory services.DirectoryService
	admin     services.AdminService

	metrics *metrics.Metrics
	tokens  client.Credentials
	ping    func(ctx context.Context) error
	dial    func(ctx context.Context, token string, userID int) (Realtime, error)

	media room.MediaDevices
	peers room.PeerFactory
	now   func() time.Time

	reader *bufio.Reader
	out    io.Writer

	mu         sync.Mutex
	Mode       Mode
	socket     Realtime
	stopSocket func()
	session    *room.Session

	dialMu  sync.Mutex
	closers []func() error
}

// NewApp wires local storage, the API adapter, the services and the call
// stack from c. Only bootstrap failures are returned.
func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	a := &App{config: c, reader: bufio.NewReader(os.Stdin), out: os.Stdout, now: time.Now}

	logOut := io.Writer(os.Stderr)
	if c.LogFile != "" {
		path, err := filex.EnsureParentDir(c.LogFile)
		if err != nil {
			return nil, err
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open log file error: %w", err)
		}
		a.closers = append(a.closers, f.Close)
		logOut = f
	}
	a.log = logging.New(c.LogLevel, "text", logOut)

	dbPath, err := filex.EnsureParentDir(c.DatabasePath)
	if err != nil {
		return nil, err
	}
	db, err := client.InitDatabase(ctx, dbPath)
	if err != nil {
		a.log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}
	a.closers = append(a.closers, db.Close)

	key, err := cryptox.LoadOrCreateKey(c.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load key error: %w", err)
	}
	sealer, err := cryptox.NewSealer(key)
	if err != nil {
		return nil, err
	}
	store := tokens.NewSQLiteStore(db, sealer)
	a.tokens = store

	a.metrics = metrics.New()
	httpClient := client.New(c.APIURL, store,
		client.WithLogger(a.log),
		client.WithRecorder(a.metrics),
		client.WithTimeout(c.RequestTimeout),
	)
	a.ping = httpClient.Ping
	api := client.NewAPI(httpClient)

	uploader, err := objectstore.NewS3Uploader(ctx, objectstore.Config{
		Endpoint:  c.S3Endpoint,
		Region:    c.S3Region,
		Bucket:    c.S3Bucket,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
		PublicURL: c.S3PublicURL,
	})
	if err != nil {
		return nil, err
	}

	a.auth = services.NewAuthService(api.Auth, store, uploader, a.log)
	a.credits = services.NewCreditService(api.Credits, a.log)
	a.meetings = services.NewMeetingService(api.Meetings, a.log)
	a.messaging = services.NewMessagingService(api.Messaging, a.log)
	a.directory = services.NewDirectoryService(api.Users, api.Categories)
	a.admin = services.NewAdminService(api.Admin, a.auth, a.log)

	factory, err := peer.NewFactory(c.ICEServers, a.log)
	if err != nil {
		return nil, err
	}
	a.peers = factory
	a.media = peer.NewDevices()

	a.dial = func(ctx context.Context, token string, userID int) (Realtime, error) {
		s, err := realtime.Dial(ctx, realtime.Options{
			URL:      c.WSURL,
			Token:    token,
			UserID:   userID,
			Log:      a.log,
			Recorder: a.metrics,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return a, nil
}

// Run resumes a stored session, starts the connectivity watcher and blocks
// in the REPL until the user exits or ctx ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printlnFn("Welcome to ExpertConnect CLI (type 'help' for commands)")
	if err := a.auth.Restore(ctx); err != nil {
		a.log.Warn(ctx, "session restore failed", "error", err)
	}
	if u, ok := a.auth.CurrentUser(); ok {
		printlnFn(views.WelcomeBanner(u))
		a.connectRealtime(ctx)
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close stops the realtime socket and any active call, then releases local
// storage.
func (a *App) Close() {
	a.mu.Lock()
	s := a.session
	a.session = nil
	a.mu.Unlock()
	if s != nil {
		s.Close()
	}
	a.disconnectRealtime()

	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
	a.closers = nil
}

func (a *App) isLoggedIn() bool {
	_, ok := a.auth.CurrentUser()
	return ok
}

func (a *App) currentUser() (models.User, error) {
	u, ok := a.auth.CurrentUser()
	if !ok {
		return models.User{}, errLoginRequired
	}
	return u, nil
}

func (a *App) getStatus() string {
	s := ""
	if u, ok := a.auth.CurrentUser(); ok {
		s = u.Username + " "
	}
	a.mu.Lock()
	mode := a.Mode
	a.mu.Unlock()
	if mode != "" {
		s += string(mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.Mode != mode
	a.Mode = mode
	a.mu.Unlock()
	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

// StartOnlineStatusWatcher pings the API every interval, tracks the mode and
// re-opens the realtime socket once the API is reachable again.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
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
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.ping(pingCtx)
	cancel()

	if err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)

	a.mu.Lock()
	missing := a.socket == nil
	a.mu.Unlock()
	if missing && a.isLoggedIn() {
		a.connectRealtime(ctx)
	}
}

// connectRealtime opens the socket for the signed-in user. Failures are
// logged; messaging falls back to REST until the watcher retries.
func (a *App) connectRealtime(ctx context.Context) {
	if a.dial == nil {
		return
	}
	a.dialMu.Lock()
	defer a.dialMu.Unlock()

	a.mu.Lock()
	connected := a.socket != nil
	a.mu.Unlock()
	if connected {
		return
	}

	u, ok := a.auth.CurrentUser()
	if !ok {
		return
	}
	token, err := a.tokens.AccessToken(ctx)
	if err != nil {
		a.log.Warn(ctx, "realtime token read failed", "error", err)
		return
	}
	sock, err := a.dial(ctx, token, u.ID)
	if err != nil {
		a.log.Warn(ctx, "realtime unavailable", "error", err)
		return
	}

	cancelMsg := sock.OnMessage(func(msg models.Message) {
		a.messaging.Receive(msg)
		if msg.Receiver == u.ID {
			printlnFn(views.MessageLine(msg, u.ID))
		}
	})

	runCtx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.socket = sock
	a.stopSocket = func() {
		cancel()
		cancelMsg()
		_ = sock.Close()
	}
	a.mu.Unlock()

	go func() {
		err := sock.Run(runCtx)
		if err != nil && !errors.Is(err, context.Canceled) {
			a.log.Warn(ctx, "realtime disconnected", "error", err)
		}
		cancelMsg()
		a.mu.Lock()
		if a.socket == sock {
			a.socket = nil
			a.stopSocket = nil
		}
		a.mu.Unlock()
	}()
}

func (a *App) disconnectRealtime() {
	a.mu.Lock()
	stop := a.stopSocket
	a.socket = nil
	a.stopSocket = nil
	a.mu.Unlock()
	if stop != nil {
		stop()
	}
}

func (a *App) realtimeSocket() Realtime {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.socket
}
