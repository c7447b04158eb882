package peer

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"

	"github.com/dmitrijs2005/expertconnect/internal/client/room"
)

// Track is a local sample track. Muting keeps the track negotiated and
// drops written samples.
type Track struct {
	local *webrtc.TrackLocalStaticSample
	kind  room.TrackKind

	mu      sync.Mutex
	enabled bool
	stopped bool
	onEnded func()
}

func newTrack(kind room.TrackKind, label, streamID string) (*Track, error) {
	mime := webrtc.MimeTypeVP8
	if kind == room.KindAudio {
		mime = webrtc.MimeTypeOpus
	}
	local, err := webrtc.NewTrackLocalStaticSample(webrtc.RTPCodecCapability{MimeType: mime}, label, streamID)
	if err != nil {
		return nil, fmt.Errorf("new %s track error: %w", kind, err)
	}
	return &Track{local: local, kind: kind, enabled: true}, nil
}

func (t *Track) ID() string           { return t.local.ID() }
func (t *Track) Kind() room.TrackKind { return t.kind }

func (t *Track) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

func (t *Track) SetEnabled(enabled bool) {
	t.mu.Lock()
	t.enabled = enabled
	t.mu.Unlock()
}

// OnEnded sets the ended callback. On a track that already stopped, fn
// runs at once.
func (t *Track) OnEnded(fn func()) {
	t.mu.Lock()
	t.onEnded = fn
	stopped := t.stopped
	t.mu.Unlock()

	if stopped && fn != nil {
		fn()
	}
}

// Stop ends the track. The ended callback fires on the first call only.
func (t *Track) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	fn := t.onEnded
	t.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// WriteSample feeds one encoded frame. It returns io.ErrClosedPipe after
// Stop.
func (t *Track) WriteSample(s media.Sample) error {
	t.mu.Lock()
	stopped, enabled := t.stopped, t.enabled
	t.mu.Unlock()

	if stopped {
		return io.ErrClosedPipe
	}
	if !enabled {
		return nil
	}
	return t.local.WriteSample(s)
}

// Devices hands out sample tracks. Frame sources write into them; nothing
// here talks to real hardware.
type Devices struct{}

func NewDevices() *Devices { return &Devices{} }

func (d *Devices) UserMedia(ctx context.Context, c room.Constraints) (*room.MediaStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stream := &room.MediaStream{ID: "camera-" + uuid.NewString()}
	if c.Audio {
		t, err := newTrack(room.KindAudio, "audio", stream.ID)
		if err != nil {
			return nil, err
		}
		stream.Tracks = append(stream.Tracks, t)
	}
	if c.Video {
		t, err := newTrack(room.KindVideo, "video", stream.ID)
		if err != nil {
			return nil, err
		}
		stream.Tracks = append(stream.Tracks, t)
	}
	return stream, nil
}

func (d *Devices) DisplayMedia(ctx context.Context) (*room.MediaStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stream := &room.MediaStream{ID: "screen-" + uuid.NewString()}
	t, err := newTrack(room.KindVideo, "screen", stream.ID)
	if err != nil {
		return nil, err
	}
	stream.Tracks = []room.Track{t}
	return stream, nil
}
