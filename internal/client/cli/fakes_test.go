package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/expertconnect/internal/client/models"
	"github.com/dmitrijs2005/expertconnect/internal/client/room"
	"github.com/dmitrijs2005/expertconnect/internal/client/services"
	"github.com/dmitrijs2005/expertconnect/internal/common"
	"github.com/dmitrijs2005/expertconnect/internal/logging"
)

// ------------ helpers ------------

// readerFromLines scripts terminal input. Every line, a trailing blank one
// included, ends with a newline, so a blank answer is read as "" and not EOF.
func readerFromLines(lines ...string) *bufio.Reader {
	if len(lines) == 0 {
		return bufio.NewReader(strings.NewReader(""))
	}
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

// captureOutput swaps printlnFn for the duration of the test.
func captureOutput(t *testing.T) *output {
	t.Helper()
	o := &output{}
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		o.mu.Lock()
		defer o.mu.Unlock()
		o.lines = append(o.lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return o
}

type output struct {
	mu    sync.Mutex
	lines []string
}

func (o *output) all() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.lines...)
}

func (o *output) contains(s string) bool {
	for _, l := range o.all() {
		if strings.Contains(l, s) {
			return true
		}
	}
	return false
}

// stubPasswords answers getPassword prompts in order.
func stubPasswords(t *testing.T, pws ...string) {
	t.Helper()
	orig := getPassword
	getPassword = func(string, io.Writer) ([]byte, error) {
		if len(pws) == 0 {
			return nil, io.EOF
		}
		pw := pws[0]
		pws = pws[1:]
		return []byte(pw), nil
	}
	t.Cleanup(func() { getPassword = orig })
}

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)

type harness struct {
	app       *App
	auth      *fakeAuth
	credits   *fakeCredits
	meetings  *fakeMeetings
	messaging *fakeMessaging
	directory *fakeDirectory
	admin     *fakeAdmin
	out       *output
}

func newHarness(t *testing.T, lines ...string) *harness {
	t.Helper()
	h := &harness{
		auth:      &fakeAuth{},
		credits:   &fakeCredits{},
		meetings:  &fakeMeetings{byID: map[int]models.Meeting{}},
		messaging: &fakeMessaging{},
		directory: &fakeDirectory{},
		admin:     &fakeAdmin{},
		out:       captureOutput(t),
	}
	h.app = &App{
		log:       logging.Nop(),
		auth:      h.auth,
		credits:   h.credits,
		meetings:  h.meetings,
		messaging: h.messaging,
		directory: h.directory,
		admin:     h.admin,
		tokens:    staticToken("tok"),
		now:       func() time.Time { return testNow },
		reader:    readerFromLines(lines...),
		out:       io.Discard,
	}
	return h
}

func (h *harness) signIn(u models.User) {
	h.auth.user = &u
}

type staticToken string

func (s staticToken) AccessToken(context.Context) (string, error) { return string(s), nil }

// ------------ services ------------

type fakeAuth struct {
	services.AuthService

	user      *models.User
	loginUser models.User
	loginErr  error
	logins    []models.Credentials

	registered  []models.RegisterRequest
	registerErr error

	refreshErr   error
	refreshCalls int
	logoutCalls  int
}

func (f *fakeAuth) CurrentUser() (models.User, bool) {
	if f.user == nil {
		return models.User{}, false
	}
	return *f.user, true
}

func (f *fakeAuth) Login(_ context.Context, c models.Credentials) error {
	f.logins = append(f.logins, c)
	if f.loginErr != nil {
		return f.loginErr
	}
	u := f.loginUser
	f.user = &u
	return nil
}

func (f *fakeAuth) Register(_ context.Context, req models.RegisterRequest) error {
	f.registered = append(f.registered, req)
	return f.registerErr
}

func (f *fakeAuth) Logout(context.Context) {
	f.logoutCalls++
	f.user = nil
}

func (f *fakeAuth) EnsureFresh(context.Context) error { return nil }
func (f *fakeAuth) ReloadUser(context.Context) error  { return nil }

func (f *fakeAuth) Refresh(context.Context) error {
	f.refreshCalls++
	if f.refreshErr != nil {
		f.user = nil
	}
	return f.refreshErr
}

type fakeCredits struct {
	services.CreditService

	state      services.CreditState
	fetchCalls int
	fetchErrs  []error
	// balances, when queued, are what successive fetches read from the server
	balances []int
	purchases  []models.PurchaseRequest
	buyErrs    []error
}

func pop(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}

func (f *fakeCredits) FetchBalance(context.Context) error {
	f.fetchCalls++
	if err := pop(&f.fetchErrs); err != nil {
		return err
	}
	if len(f.balances) > 0 {
		f.state.Balance, f.balances = f.balances[0], f.balances[1:]
	}
	f.state.Loaded = true
	return nil
}

func (f *fakeCredits) FetchTransactions(context.Context) error { return nil }
func (f *fakeCredits) State() services.CreditState             { return f.state }
func (f *fakeCredits) Packages() []models.CreditPackage        { return services.DefaultPackages }

func (f *fakeCredits) CheckFunds(cost int) error {
	if f.state.Balance < cost {
		return common.ErrInsufficientCredits
	}
	return nil
}

func (f *fakeCredits) Purchase(_ context.Context, req models.PurchaseRequest) error {
	f.purchases = append(f.purchases, req)
	if err := pop(&f.buyErrs); err != nil {
		return err
	}
	f.state.Balance += req.Amount
	return nil
}

type fakeMeetings struct {
	services.MeetingService

	list      []models.Meeting
	byID      map[int]models.Meeting
	created   []models.CreateMeetingRequest
	updates   []string
	updateErr error
	reviews   []models.ReviewRequest
}

func (f *fakeMeetings) FetchMeetings(context.Context, models.MeetingQuery) error { return nil }
func (f *fakeMeetings) State() services.MeetingState {
	return services.MeetingState{Meetings: f.list}
}

func (f *fakeMeetings) Get(_ context.Context, id int) (models.Meeting, error) {
	m, ok := f.byID[id]
	if !ok {
		return models.Meeting{}, fmt.Errorf("get meeting error: %w", common.ErrNotFound)
	}
	return m, nil
}

func (f *fakeMeetings) Create(_ context.Context, req models.CreateMeetingRequest) (models.Meeting, error) {
	f.created = append(f.created, req)
	return models.Meeting{ID: 42}, nil
}

func (f *fakeMeetings) UpdateStatus(_ context.Context, id int, status models.MeetingStatus) error {
	f.updates = append(f.updates, fmt.Sprintf("%d:%s", id, status))
	return f.updateErr
}

func (f *fakeMeetings) CreateReview(_ context.Context, req models.ReviewRequest) error {
	f.reviews = append(f.reviews, req)
	return nil
}

type fakeMessaging struct {
	services.MessagingService

	mu       sync.Mutex
	state    services.MessagingState
	opened   [][2]int
	sent     []models.SendMessageRequest
	received []models.Message
}

func (f *fakeMessaging) State() services.MessagingState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeMessaging) FetchNotifications(context.Context) error { return nil }

func (f *fakeMessaging) OpenConversation(_ context.Context, other, self int) error {
	f.opened = append(f.opened, [2]int{other, self})
	f.state.CounterpartyID = other
	return nil
}

func (f *fakeMessaging) Send(_ context.Context, req models.SendMessageRequest) error {
	f.sent = append(f.sent, req)
	return nil
}

func (f *fakeMessaging) Receive(msg models.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, msg)
}

type fakeDirectory struct {
	services.DirectoryService

	experts []models.User
	queries []models.UserQuery
	cats    []models.Category
}

func (f *fakeDirectory) Experts(_ context.Context, q models.UserQuery) ([]models.User, error) {
	f.queries = append(f.queries, q)
	return f.experts, nil
}

func (f *fakeDirectory) Categories(context.Context) ([]models.Category, error) {
	return f.cats, nil
}

type fakeAdmin struct {
	services.AdminService

	calls []string
	err   error
}

func (f *fakeAdmin) SetAdmin(_ context.Context, id int, admin bool) (models.User, error) {
	f.calls = append(f.calls, fmt.Sprintf("setadmin %d %t", id, admin))
	return models.User{ID: id, Username: "bob", IsAdmin: admin}, f.err
}

func (f *fakeAdmin) Refund(_ context.Context, id int, reason string) error {
	f.calls = append(f.calls, fmt.Sprintf("refund %d %s", id, reason))
	return f.err
}

// ------------ call stack ------------

type fakeTrack struct {
	id      string
	kind    room.TrackKind
	enabled bool
	stopped bool
	onEnded func()
}

func (t *fakeTrack) ID() string              { return t.id }
func (t *fakeTrack) Kind() room.TrackKind    { return t.kind }
func (t *fakeTrack) Enabled() bool           { return t.enabled }
func (t *fakeTrack) SetEnabled(enabled bool) { t.enabled = enabled }
func (t *fakeTrack) OnEnded(fn func())       { t.onEnded = fn }
func (t *fakeTrack) Stop()                   { t.stopped = true }

type fakeDevices struct {
	calls int
	err   error
}

func (d *fakeDevices) UserMedia(context.Context, room.Constraints) (*room.MediaStream, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return &room.MediaStream{ID: "cam", Tracks: []room.Track{
		&fakeTrack{id: "a", kind: room.KindAudio, enabled: true},
		&fakeTrack{id: "v", kind: room.KindVideo, enabled: true},
	}}, nil
}

func (d *fakeDevices) DisplayMedia(context.Context) (*room.MediaStream, error) {
	return &room.MediaStream{ID: "screen", Tracks: []room.Track{
		&fakeTrack{id: "s", kind: room.KindVideo, enabled: true},
	}}, nil
}

type fakePeer struct{ destroyed bool }

func (p *fakePeer) Signal(room.Signal) error           { return nil }
func (p *fakePeer) ReplaceVideoTrack(room.Track) error { return nil }
func (p *fakePeer) Destroy() error                     { p.destroyed = true; return nil }

type fakePeers struct {
	peer *fakePeer
	cfg  room.PeerConfig
}

func (f *fakePeers) NewPeer(_ context.Context, cfg room.PeerConfig) (room.Peer, error) {
	f.cfg = cfg
	f.peer = &fakePeer{}
	return f.peer, nil
}

// fakeSocket is a Realtime whose Run blocks until ctx ends or Close.
type fakeSocket struct {
	mu       sync.Mutex
	onMsg    func(models.Message)
	subs     int
	closed   chan struct{}
	once     sync.Once
	running  chan struct{}
	runOnce  sync.Once
	sentSigs []room.Signal
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{closed: make(chan struct{}), running: make(chan struct{})}
}

func (s *fakeSocket) Subscribe(int, func(int, room.Signal)) func() {
	s.mu.Lock()
	s.subs++
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.subs--
		s.mu.Unlock()
	}
}

func (s *fakeSocket) SendSignal(_ context.Context, _, _ int, sig room.Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sentSigs = append(s.sentSigs, sig)
	return nil
}

func (s *fakeSocket) OnMessage(fn func(models.Message)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onMsg = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.onMsg = nil
	}
}

func (s *fakeSocket) deliver(msg models.Message) {
	s.mu.Lock()
	fn := s.onMsg
	s.mu.Unlock()
	if fn != nil {
		fn(msg)
	}
}

func (s *fakeSocket) Run(ctx context.Context) error {
	s.runOnce.Do(func() { close(s.running) })
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.closed:
		return nil
	}
}

func (s *fakeSocket) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

func (s *fakeSocket) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func servicesBalance(n int) services.CreditState {
	return services.CreditState{Balance: n, Loaded: true}
}

func bufioReader(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}
