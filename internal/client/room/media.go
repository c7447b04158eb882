package room

import (
	"context"

	"github.com/dmitrijs2005/expertconnect/internal/client/models"
)

type TrackKind string

const (
	KindAudio TrackKind = "audio"
	KindVideo TrackKind = "video"
)

// Track is a local media track. Stop ends it and fires the OnEnded
// callback once; a track may also end on its own (the user closes the
// captured window), which fires the same callback.
type Track interface {
	ID() string
	Kind() TrackKind
	Enabled() bool
	SetEnabled(enabled bool)
	Stop()
	OnEnded(fn func())
}

type MediaStream struct {
	ID     string
	Tracks []Track
}

// Video returns the first video track or nil.
func (m *MediaStream) Video() Track {
	for _, t := range m.Tracks {
		if t.Kind() == KindVideo {
			return t
		}
	}
	return nil
}

func (m *MediaStream) Stop() {
	for _, t := range m.Tracks {
		t.Stop()
	}
}

// RemoteStream describes the counterpart's media as it arrives.
type RemoteStream struct {
	ID    string
	Kinds []TrackKind
}

type Constraints struct {
	Audio bool
	Video bool
}

type MediaDevices interface {
	UserMedia(ctx context.Context, c Constraints) (*MediaStream, error)
	DisplayMedia(ctx context.Context) (*MediaStream, error)
}

// SignalReady is sent by the answering side once it listens for signals.
// The initiator answers it with its current offer, so the order in which
// the two participants join does not matter.
const SignalReady = "ready"

// Signal carries a complete session description, or SignalReady with no SDP.
// Trickle ICE is not used.
type Signal struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

type PeerConfig struct {
	Initiator bool
	Trickle   bool
	Stream    *MediaStream

	// Callbacks may arrive on any goroutine.
	OnSignal  func(Signal)
	OnConnect func()
	OnStream  func(RemoteStream)
	OnError   func(error)
}

type Peer interface {
	// Signal hands over a description received from the counterpart.
	Signal(sig Signal) error
	ReplaceVideoTrack(t Track) error
	Destroy() error
}

type PeerFactory interface {
	NewPeer(ctx context.Context, cfg PeerConfig) (Peer, error)
}

// Signaling relays descriptions between the two participants of a meeting.
type Signaling interface {
	Subscribe(meetingID int, fn func(from int, sig Signal)) (cancel func())
	SendSignal(ctx context.Context, meetingID, to int, sig Signal) error
}

type MeetingStatusUpdater interface {
	UpdateStatus(ctx context.Context, id int, status models.MeetingStatus) error
}

// CallRecorder counts session outcomes.
type CallRecorder interface {
	RecordCall(outcome string)
}
