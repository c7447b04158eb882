package room

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/expertconnect/internal/client/models"
	"github.com/dmitrijs2005/expertconnect/internal/logging"
)

type State string

const (
	StateIdle           State = "idle"
	StateAcquiringMedia State = "acquiring-media"
	StateAwaitingPeer   State = "awaiting-peer"
	StateConnected      State = "connected"
	StateEnded          State = "ended"
	StateFailed         State = "failed"
)

func (s State) terminal() bool { return s == StateEnded || s == StateFailed }

var (
	ErrNotConnected = errors.New("call is not connected")
	ErrNotActive    = errors.New("call is not active")
	ErrCaptureEnded = errors.New("screen capture ended")
)

type EventType string

const (
	EventState        EventType = "state"
	EventRemoteStream EventType = "remote-stream"
	EventAudio        EventType = "audio"
	EventVideo        EventType = "video"
	EventScreenShare  EventType = "screen-share"
)

type Event struct {
	Type    EventType
	State   State
	Enabled bool
	Remote  *RemoteStream
	Err     error
}

// eventBuffer is the capacity of Session.Events. Events are dropped when
// the reader falls behind.
const eventBuffer = 32

type Deps struct {
	Devices   MediaDevices
	Peers     PeerFactory
	Signaling Signaling
	Meetings  MeetingStatusUpdater

	Log   logging.Logger
	Calls CallRecorder
	Now   func() time.Time
}

// Status is a point-in-time copy of the session.
type Status struct {
	State   State
	Audio   bool
	Video   bool
	Sharing bool
	Remote  *RemoteStream
	Err     error
}

type EndResult struct {
	// Redirect is where the caller navigates next.
	Redirect  string
	Completed bool
	// StatusErr is the failed completion update, if any. It does not undo
	// the end of the call.
	StatusErr error
}

type Session struct {
	deps        Deps
	meeting     models.Meeting
	userID      int
	counterpart int

	mu       sync.Mutex
	state    State
	err      error
	local    *MediaStream
	camera   Track
	screen   *MediaStream
	peer     Peer
	unsub    func()
	remote   *RemoteStream
	audioOn  bool
	videoOn  bool
	events   chan Event
	closed   bool
	ended    bool
	result   EndResult
	cancel   context.CancelFunc
	stopWait func() bool
	ctx      context.Context
}

// Join checks the preconditions, acquires local media, creates the peer
// and subscribes to signaling. The returned session is always non-nil; on
// error it is already failed and holds nothing. Cancelling ctx tears the
// session down like Close.
func Join(ctx context.Context, deps Deps, meeting models.Meeting, user models.User) (*Session, error) {
	if deps.Log == nil {
		deps.Log = logging.Nop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	s := &Session{
		deps:        deps,
		meeting:     meeting,
		userID:      user.ID,
		counterpart: meeting.Counterpart(user.ID),
		state:       StateIdle,
		audioOn:     true,
		videoOn:     true,
		events:      make(chan Event, eventBuffer),
	}
	s.ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))

	if err := Check(meeting, user.ID, deps.Now()); err != nil {
		s.mu.Lock()
		release := s.failLocked(err, "rejected")
		s.mu.Unlock()
		release()
		return s, err
	}

	s.mu.Lock()
	s.setStateLocked(StateAcquiringMedia)
	s.mu.Unlock()

	stream, err := deps.Devices.UserMedia(ctx, Constraints{Audio: true, Video: true})
	if err != nil {
		s.mu.Lock()
		release := s.failLocked(fmt.Errorf("acquire media error: %w", err), "failed")
		s.mu.Unlock()
		release()
		return s, s.Status().Err
	}

	s.mu.Lock()
	if s.state.terminal() {
		s.mu.Unlock()
		stream.Stop()
		return s, s.terminalErr(ctx)
	}
	s.local = stream
	s.camera = stream.Video()
	s.mu.Unlock()

	if ctx.Err() != nil {
		s.Close()
		return s, ctx.Err()
	}

	peer, err := deps.Peers.NewPeer(ctx, PeerConfig{
		Initiator: meeting.Requester == user.ID,
		Trickle:   false,
		Stream:    stream,
		OnSignal:  s.sendSignal,
		OnConnect: s.handleConnect,
		OnStream:  s.handleStream,
		OnError:   s.handleError,
	})

	s.mu.Lock()
	if err != nil {
		release := s.failLocked(fmt.Errorf("create peer error: %w", err), "failed")
		s.mu.Unlock()
		release()
		return s, s.Status().Err
	}
	if s.state.terminal() {
		// closed or failed while the peer was being built
		s.mu.Unlock()
		_ = peer.Destroy()
		return s, s.terminalErr(ctx)
	}
	s.peer = peer
	s.mu.Unlock()

	unsub := deps.Signaling.Subscribe(meeting.ID, s.handleSignal)

	s.mu.Lock()
	if s.state.terminal() {
		s.mu.Unlock()
		unsub()
		return s, s.terminalErr(ctx)
	}
	s.unsub = unsub
	s.setStateLocked(StateAwaitingPeer)
	s.stopWait = context.AfterFunc(ctx, s.Close)
	s.mu.Unlock()

	if !s.Initiator() {
		s.sendSignal(Signal{Type: SignalReady})
	}
	return s, nil
}

func (s *Session) terminalErr(ctx context.Context) error {
	if err := s.Status().Err; err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return ErrNotActive
}

// Events streams state changes. The channel is closed once the session
// ends or fails.
func (s *Session) Events() <-chan Event { return s.events }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		State:   s.state,
		Audio:   s.audioOn,
		Video:   s.videoOn,
		Sharing: s.screen != nil,
		Remote:  s.remote,
		Err:     s.err,
	}
}

// Initiator reports whether this side sends the offer.
func (s *Session) Initiator() bool { return s.meeting.Requester == s.userID }

func (s *Session) emitLocked(e Event) {
	if s.closed {
		return
	}
	select {
	case s.events <- e:
	default:
	}
}

func (s *Session) setStateLocked(st State) {
	s.deps.Log.Info(s.ctx, "meeting room state", "meeting_id", s.meeting.ID, "from", s.state, "to", st)
	s.state = st
	s.emitLocked(Event{Type: EventState, State: st, Err: s.err})
	if st.terminal() {
		s.closed = true
		close(s.events)
	}
}

// detachLocked takes ownership of every held resource and returns a func
// that releases them. The func must run without s.mu held, since stopping
// a screen track re-enters the restore path.
func (s *Session) detachLocked() func() {
	local, screen, peer, unsub := s.local, s.screen, s.peer, s.unsub
	stopWait, cancel := s.stopWait, s.cancel
	s.local, s.screen, s.peer, s.unsub, s.camera = nil, nil, nil, nil, nil
	s.stopWait = nil

	return func() {
		if stopWait != nil {
			stopWait()
		}
		if unsub != nil {
			unsub()
		}
		if peer != nil {
			if err := peer.Destroy(); err != nil {
				s.deps.Log.Warn(s.ctx, "destroy peer failed", "meeting_id", s.meeting.ID, "error", err)
			}
		}
		if screen != nil {
			screen.Stop()
		}
		if local != nil {
			local.Stop()
		}
		if cancel != nil {
			cancel()
		}
	}
}

func (s *Session) failLocked(err error, outcome string) func() {
	release := s.detachLocked()
	s.err = err
	s.deps.Log.Warn(s.ctx, "meeting room failed", "meeting_id", s.meeting.ID, "error", err)
	s.setStateLocked(StateFailed)
	if s.deps.Calls != nil {
		s.deps.Calls.RecordCall(outcome)
	}
	return release
}

func (s *Session) sendSignal(sig Signal) {
	s.mu.Lock()
	if s.state.terminal() {
		s.mu.Unlock()
		return
	}
	ctx := s.ctx
	s.mu.Unlock()

	if err := s.deps.Signaling.SendSignal(ctx, s.meeting.ID, s.counterpart, sig); err != nil {
		s.handleError(fmt.Errorf("send %s error: %w", sig.Type, err))
	}
}

func (s *Session) handleSignal(from int, sig Signal) {
	if from != s.counterpart {
		return
	}

	s.mu.Lock()
	peer := s.peer
	if peer == nil || s.state.terminal() {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if err := peer.Signal(sig); err != nil {
		s.handleError(fmt.Errorf("apply %s error: %w", sig.Type, err))
	}
}

func (s *Session) handleConnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwaitingPeer {
		return
	}
	s.setStateLocked(StateConnected)
}

func (s *Session) handleStream(rs RemoteStream) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.terminal() {
		return
	}
	s.remote = &rs
	s.emitLocked(Event{Type: EventRemoteStream, State: s.state, Remote: &rs})
}

func (s *Session) handleError(err error) {
	s.mu.Lock()
	if s.state.terminal() {
		s.mu.Unlock()
		return
	}
	release := s.failLocked(fmt.Errorf("peer connection error: %w", err), "failed")
	s.mu.Unlock()
	release()
}

// ToggleAudio flips the local audio tracks in place and returns the new
// setting.
func (s *Session) ToggleAudio() (bool, error) {
	return s.toggle(KindAudio, &s.audioOn, EventAudio)
}

func (s *Session) ToggleVideo() (bool, error) {
	return s.toggle(KindVideo, &s.videoOn, EventVideo)
}

func (s *Session) toggle(kind TrackKind, flag *bool, ev EventType) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingPeer && s.state != StateConnected {
		return *flag, ErrNotActive
	}
	*flag = !*flag
	for _, t := range s.local.Tracks {
		if t.Kind() == kind {
			t.SetEnabled(*flag)
		}
	}
	s.emitLocked(Event{Type: ev, State: s.state, Enabled: *flag})
	return *flag, nil
}

// ShareScreen swaps the outgoing camera track for a display capture. It is
// a no-op while already sharing.
func (s *Session) ShareScreen(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateConnected {
		s.mu.Unlock()
		return ErrNotConnected
	}
	if s.screen != nil {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	display, err := s.deps.Devices.DisplayMedia(ctx)
	if err != nil {
		return fmt.Errorf("display media error: %w", err)
	}
	track := display.Video()
	if track == nil {
		display.Stop()
		return fmt.Errorf("display media error: no video track")
	}

	// registered before the swap: a capture ending at any point from here
	// on either aborts the share or restores the camera
	ended := make(chan struct{})
	var endOnce sync.Once
	track.OnEnded(func() {
		endOnce.Do(func() { close(ended) })
		s.restoreCamera(display)
	})

	s.mu.Lock()
	if s.state != StateConnected || s.screen != nil {
		s.mu.Unlock()
		display.Stop()
		if s.State() != StateConnected {
			return ErrNotConnected
		}
		return nil
	}
	select {
	case <-ended:
		s.mu.Unlock()
		display.Stop()
		return ErrCaptureEnded
	default:
	}
	if err := s.peer.ReplaceVideoTrack(track); err != nil {
		s.mu.Unlock()
		display.Stop()
		return fmt.Errorf("replace video track error: %w", err)
	}
	s.screen = display
	s.emitLocked(Event{Type: EventScreenShare, State: s.state, Enabled: true})
	s.mu.Unlock()
	return nil
}

// StopScreenShare puts the camera back on the wire.
func (s *Session) StopScreenShare() {
	s.restoreCamera(nil)
}

// restoreCamera serves both the manual stop and the capture ending on its
// own. With only set it acts just while that capture is on the wire.
func (s *Session) restoreCamera(only *MediaStream) {
	s.mu.Lock()
	screen := s.screen
	if screen == nil || (only != nil && screen != only) {
		s.mu.Unlock()
		return
	}
	s.screen = nil
	if s.peer != nil && s.camera != nil {
		if err := s.peer.ReplaceVideoTrack(s.camera); err != nil {
			s.deps.Log.Warn(s.ctx, "restore camera failed", "meeting_id", s.meeting.ID, "error", err)
		}
	}
	s.emitLocked(Event{Type: EventScreenShare, State: s.state, Enabled: false})
	s.mu.Unlock()

	screen.Stop()
}

// End hangs up, marks the meeting completed once its scheduled end has
// passed, and returns where to go next. Repeated calls return the first
// result.
func (s *Session) End(ctx context.Context) EndResult {
	s.mu.Lock()
	if s.ended {
		res := s.result
		s.mu.Unlock()
		return res
	}
	s.ended = true
	s.result = EndResult{Redirect: fmt.Sprintf("/meetings/%d", s.meeting.ID)}
	release := func() {}
	if !s.state.terminal() {
		release = s.detachLocked()
		s.setStateLocked(StateEnded)
		if s.deps.Calls != nil {
			s.deps.Calls.RecordCall("ended")
		}
	}
	s.mu.Unlock()
	release()

	if !s.deps.Now().Before(s.meeting.ScheduledEnd) {
		err := s.deps.Meetings.UpdateStatus(ctx, s.meeting.ID, models.StatusCompleted)
		s.mu.Lock()
		if err != nil {
			s.result.StatusErr = err
			s.deps.Log.Warn(ctx, "mark meeting completed failed", "meeting_id", s.meeting.ID, "error", err)
		} else {
			s.result.Completed = true
		}
		s.mu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Close releases everything without touching the meeting status.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state.terminal() {
		s.mu.Unlock()
		return
	}
	release := s.detachLocked()
	s.setStateLocked(StateEnded)
	if s.deps.Calls != nil {
		s.deps.Calls.RecordCall("closed")
	}
	s.mu.Unlock()
	release()
}
