// Package realtime is the websocket side channel: live messages and call
// signaling between meeting participants.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrijs2005/expertconnect/internal/client/models"
	"github.com/dmitrijs2005/expertconnect/internal/client/room"
	"github.com/dmitrijs2005/expertconnect/internal/common"
	"github.com/dmitrijs2005/expertconnect/internal/logging"
	"github.com/dmitrijs2005/expertconnect/internal/netx"
)

const (
	TypeJoin    = "join"
	TypeMessage = "message"
	TypeSignal  = "signal"

	writeTimeout = 10 * time.Second
)

var ErrClosed = errors.New("socket closed")

type Envelope struct {
	Type       string          `json:"type"`
	UserID     int             `json:"user_id,omitempty"`
	Message    *models.Message `json:"message,omitempty"`
	MeetingID  int             `json:"meeting_id,omitempty"`
	SenderID   int             `json:"sender_id,omitempty"`
	ReceiverID int             `json:"receiver_id,omitempty"`
	Signal     *room.Signal    `json:"signal,omitempty"`
}

// Recorder counts envelopes by direction ("in"/"out") and type.
type Recorder interface {
	RecordSocketEvent(direction, envelopeType string)
}

type Options struct {
	// URL is the websocket base, e.g. ws://localhost:8000/ws.
	URL    string
	Token  string
	UserID int

	Dialer   *websocket.Dialer
	Log      logging.Logger
	Recorder Recorder
}

type Socket struct {
	conn   *websocket.Conn
	userID int
	log    logging.Logger
	rec    Recorder

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  uint64
	signals map[int]map[uint64]func(from int, sig room.Signal)
	msgs    map[uint64]func(models.Message)

	closeOnce sync.Once
	closed    chan struct{}
}

// Dial opens the socket and announces the user.
func Dial(ctx context.Context, opts Options) (*Socket, error) {
	if opts.Log == nil {
		opts.Log = logging.Nop()
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	target, err := netx.ResolveURL(opts.URL, "/messaging/", nil)
	if err != nil {
		return nil, fmt.Errorf("websocket url error: %w", err)
	}

	header := http.Header{}
	if opts.Token != "" {
		header.Set(common.AuthorizationHeaderName, common.BearerPrefix+opts.Token)
	}

	conn, resp, err := dialer.DialContext(ctx, target, header)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("websocket dial error: %w", common.ErrAuthentication)
		}
		return nil, fmt.Errorf("websocket dial error: %w: %w", common.ErrNetwork, err)
	}

	s := &Socket{
		conn:    conn,
		userID:  opts.UserID,
		log:     opts.Log,
		rec:     opts.Recorder,
		signals: map[int]map[uint64]func(int, room.Signal){},
		msgs:    map[uint64]func(models.Message){},
		closed:  make(chan struct{}),
	}

	if err := s.write(ctx, Envelope{Type: TypeJoin, UserID: opts.UserID}); err != nil {
		_ = conn.Close()
		return nil, err
	}
	s.log.Info(ctx, "realtime connected", "url", target, "user_id", opts.UserID)
	return s, nil
}

func (s *Socket) record(direction, typ string) {
	if s.rec != nil {
		s.rec.RecordSocketEvent(direction, typ)
	}
}

func (s *Socket) write(ctx context.Context, env Envelope) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	select {
	case <-s.closed:
		return ErrClosed
	default:
	}

	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = s.conn.SetWriteDeadline(deadline)

	if err := s.conn.WriteJSON(env); err != nil {
		return fmt.Errorf("websocket write %s error: %w: %w", env.Type, common.ErrNetwork, err)
	}
	s.record("out", env.Type)
	return nil
}

// SendSignal relays a session description to the other participant.
func (s *Socket) SendSignal(ctx context.Context, meetingID, to int, sig room.Signal) error {
	return s.write(ctx, Envelope{
		Type:       TypeSignal,
		MeetingID:  meetingID,
		SenderID:   s.userID,
		ReceiverID: to,
		Signal:     &sig,
	})
}

// Subscribe delivers signals for one meeting. Echoes of our own signals are
// dropped.
func (s *Socket) Subscribe(meetingID int, fn func(from int, sig room.Signal)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	if s.signals[meetingID] == nil {
		s.signals[meetingID] = map[uint64]func(int, room.Signal){}
	}
	s.signals[meetingID][id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.signals[meetingID], id)
		if len(s.signals[meetingID]) == 0 {
			delete(s.signals, meetingID)
		}
	}
}

func (s *Socket) OnMessage(fn func(models.Message)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.msgs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.msgs, id)
	}
}

// Run reads envelopes until ctx ends or the connection closes. A normal
// close returns nil.
func (s *Socket) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()

	for {
		var env Envelope
		if err := s.conn.ReadJSON(&env); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			select {
			case <-s.closed:
				return nil
			default:
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("websocket read error: %w: %w", common.ErrNetwork, err)
		}
		s.record("in", env.Type)
		s.dispatch(ctx, env)
	}
}

func (s *Socket) dispatch(ctx context.Context, env Envelope) {
	switch env.Type {
	case TypeMessage:
		if env.Message == nil {
			return
		}
		s.mu.Lock()
		fns := make([]func(models.Message), 0, len(s.msgs))
		for _, fn := range s.msgs {
			fns = append(fns, fn)
		}
		s.mu.Unlock()
		for _, fn := range fns {
			fn(*env.Message)
		}

	case TypeSignal:
		if env.Signal == nil || env.SenderID == s.userID {
			return
		}
		if env.ReceiverID != 0 && env.ReceiverID != s.userID {
			return
		}
		s.mu.Lock()
		fns := make([]func(int, room.Signal), 0, len(s.signals[env.MeetingID]))
		for _, fn := range s.signals[env.MeetingID] {
			fns = append(fns, fn)
		}
		s.mu.Unlock()
		for _, fn := range fns {
			fn(env.SenderID, *env.Signal)
		}

	default:
		s.log.Debug(ctx, "ignored realtime envelope", "type", env.Type)
	}
}

// Close sends a normal close frame and drops the connection.
func (s *Socket) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		close(s.closed)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		s.writeMu.Unlock()
		err = s.conn.Close()
	})
	return err
}
