package peer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/dmitrijs2005/expertconnect/internal/client/room"
	"github.com/dmitrijs2005/expertconnect/internal/logging"
)

var (
	ErrUnexpectedSignal = errors.New("unexpected signal")
	ErrForeignTrack     = errors.New("track was not created by peer.Devices")
	ErrConnectionFailed = errors.New("peer connection failed")
)

// Factory builds pion peer connections for the meeting room.
type Factory struct {
	api    *webrtc.API
	config webrtc.Configuration
	log    logging.Logger
}

type Option func(*webrtc.SettingEngine)

// WithLoopback lets ICE gather loopback candidates, so two peers in one
// process can reach each other.
func WithLoopback() Option {
	return func(se *webrtc.SettingEngine) { se.SetIncludeLoopbackCandidate(true) }
}

func NewFactory(iceServers []string, log logging.Logger, opts ...Option) (*Factory, error) {
	if log == nil {
		log = logging.Nop()
	}

	m := &webrtc.MediaEngine{}
	if err := m.RegisterDefaultCodecs(); err != nil {
		return nil, fmt.Errorf("register codecs error: %w", err)
	}
	se := webrtc.SettingEngine{}
	for _, o := range opts {
		o(&se)
	}

	cfg := webrtc.Configuration{}
	if len(iceServers) > 0 {
		cfg.ICEServers = []webrtc.ICEServer{{URLs: iceServers}}
	}

	return &Factory{
		api:    webrtc.NewAPI(webrtc.WithMediaEngine(m), webrtc.WithSettingEngine(se)),
		config: cfg,
		log:    log,
	}, nil
}

type Peer struct {
	pc    *webrtc.PeerConnection
	cfg   room.PeerConfig
	video *webrtc.RTPSender
	log   logging.Logger

	done      chan struct{}
	closeOnce sync.Once
	connOnce  sync.Once
	errOnce   sync.Once

	mu      sync.Mutex
	remotes map[string]bool
	// offerSDP is the gathered offer, kept for re-sending on SignalReady.
	offerSDP string
}

func (f *Factory) NewPeer(ctx context.Context, cfg room.PeerConfig) (room.Peer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pc, err := f.api.NewPeerConnection(f.config)
	if err != nil {
		return nil, fmt.Errorf("new peer connection error: %w", err)
	}

	p := &Peer{
		pc:      pc,
		cfg:     cfg,
		log:     f.log,
		done:    make(chan struct{}),
		remotes: map[string]bool{},
	}

	if cfg.Stream != nil {
		for _, t := range cfg.Stream.Tracks {
			lt, ok := t.(*Track)
			if !ok {
				_ = pc.Close()
				return nil, ErrForeignTrack
			}
			sender, err := pc.AddTrack(lt.local)
			if err != nil {
				_ = pc.Close()
				return nil, fmt.Errorf("add %s track error: %w", lt.kind, err)
			}
			if lt.kind == room.KindVideo && p.video == nil {
				p.video = sender
			}
			go drainRTCP(sender)
		}
	}

	pc.OnConnectionStateChange(p.onState)
	pc.OnTrack(p.onTrack)

	if cfg.Initiator {
		go p.offer()
	}
	return p, nil
}

func drainRTCP(s *webrtc.RTPSender) {
	buf := make([]byte, 1500)
	for {
		if _, _, err := s.Read(buf); err != nil {
			return
		}
	}
}

func (p *Peer) onState(s webrtc.PeerConnectionState) {
	p.log.Debug(context.Background(), "peer connection state", "state", s.String())
	switch s {
	case webrtc.PeerConnectionStateConnected:
		p.connOnce.Do(func() {
			if p.cfg.OnConnect != nil {
				p.cfg.OnConnect()
			}
		})
	case webrtc.PeerConnectionStateFailed:
		p.fail(ErrConnectionFailed)
	}
}

func (p *Peer) onTrack(tr *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
	p.mu.Lock()
	seen := p.remotes[tr.StreamID()]
	p.remotes[tr.StreamID()] = true
	p.mu.Unlock()

	if !seen && p.cfg.OnStream != nil {
		p.cfg.OnStream(room.RemoteStream{
			ID:    tr.StreamID(),
			Kinds: []room.TrackKind{room.TrackKind(tr.Kind().String())},
		})
	}

	buf := make([]byte, 1500)
	for {
		if _, _, err := tr.Read(buf); err != nil {
			return
		}
	}
}

func (p *Peer) fail(err error) {
	select {
	case <-p.done:
		return
	default:
	}
	p.errOnce.Do(func() {
		if p.cfg.OnError != nil {
			p.cfg.OnError(err)
		}
	})
}

// localDescription sets desc and waits for ICE gathering to finish, so the
// resulting SDP carries every candidate.
func (p *Peer) localDescription(desc webrtc.SessionDescription) (string, error) {
	gathered := webrtc.GatheringCompletePromise(p.pc)
	if err := p.pc.SetLocalDescription(desc); err != nil {
		return "", fmt.Errorf("set local description error: %w", err)
	}
	select {
	case <-gathered:
	case <-p.done:
		return "", errors.New("peer destroyed")
	}
	return p.pc.LocalDescription().SDP, nil
}

func (p *Peer) offer() {
	offer, err := p.pc.CreateOffer(nil)
	if err != nil {
		p.fail(fmt.Errorf("create offer error: %w", err))
		return
	}
	sdp, err := p.localDescription(offer)
	if err != nil {
		p.fail(err)
		return
	}
	p.mu.Lock()
	p.offerSDP = sdp
	p.mu.Unlock()
	p.cfg.OnSignal(room.Signal{Type: webrtc.SDPTypeOffer.String(), SDP: sdp})
}

// resendOffer answers SignalReady. Before gathering completes there is
// nothing to send; offer delivers it then, and the counterpart already
// listens.
func (p *Peer) resendOffer() {
	p.mu.Lock()
	sdp := p.offerSDP
	p.mu.Unlock()
	if sdp == "" || p.pc.RemoteDescription() != nil {
		return
	}
	p.cfg.OnSignal(room.Signal{Type: webrtc.SDPTypeOffer.String(), SDP: sdp})
}

func (p *Peer) answer() {
	answer, err := p.pc.CreateAnswer(nil)
	if err != nil {
		p.fail(fmt.Errorf("create answer error: %w", err))
		return
	}
	sdp, err := p.localDescription(answer)
	if err != nil {
		p.fail(err)
		return
	}
	p.cfg.OnSignal(room.Signal{Type: webrtc.SDPTypeAnswer.String(), SDP: sdp})
}

// Signal applies the counterpart's description. An offer is answered in the
// background once gathering completes. A description arriving after one was
// applied is a re-sent copy and is ignored.
func (p *Peer) Signal(sig room.Signal) error {
	if sig.Type == room.SignalReady {
		if !p.cfg.Initiator {
			return fmt.Errorf("%w: %q", ErrUnexpectedSignal, sig.Type)
		}
		p.resendOffer()
		return nil
	}

	typ := webrtc.NewSDPType(sig.Type)
	switch {
	case typ == webrtc.SDPTypeOffer && !p.cfg.Initiator:
	case typ == webrtc.SDPTypeAnswer && p.cfg.Initiator:
	default:
		return fmt.Errorf("%w: %q", ErrUnexpectedSignal, sig.Type)
	}
	if p.pc.RemoteDescription() != nil {
		return nil
	}

	if err := p.pc.SetRemoteDescription(webrtc.SessionDescription{Type: typ, SDP: sig.SDP}); err != nil {
		return fmt.Errorf("set remote description error: %w", err)
	}
	if typ == webrtc.SDPTypeOffer {
		go p.answer()
	}
	return nil
}

func (p *Peer) ReplaceVideoTrack(t room.Track) error {
	lt, ok := t.(*Track)
	if !ok {
		return ErrForeignTrack
	}
	if p.video == nil {
		return errors.New("no video sender")
	}
	if err := p.video.ReplaceTrack(lt.local); err != nil {
		return fmt.Errorf("replace track error: %w", err)
	}
	return nil
}

func (p *Peer) Destroy() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		err = p.pc.Close()
	})
	return err
}
