package peer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/expertconnect/internal/client/models"
	"github.com/dmitrijs2005/expertconnect/internal/client/room"
)

// relay passes signals between participants the way the realtime socket
// does: only to whoever is subscribed when the signal arrives. Each
// receiver gets its signals in order on its own goroutine.
type relay struct {
	mu      sync.Mutex
	subs    map[int]func(from int, sig room.Signal)
	queues  map[int]chan func()
	dropped []string
}

func newRelay() *relay {
	return &relay{subs: map[int]func(int, room.Signal){}, queues: map[int]chan func(){}}
}

func (r *relay) queue(user int) chan func() {
	q, ok := r.queues[user]
	if !ok {
		q = make(chan func(), 16)
		r.queues[user] = q
		go func() {
			for fn := range q {
				fn()
			}
		}()
	}
	return q
}

func (r *relay) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.queues {
		close(q)
	}
	r.queues = map[int]chan func(){}
}

func (r *relay) droppedSignals() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.dropped...)
}

// endpoint is one participant's view of the relay.
type endpoint struct {
	r    *relay
	user int
}

func (e endpoint) Subscribe(_ int, fn func(from int, sig room.Signal)) func() {
	e.r.mu.Lock()
	defer e.r.mu.Unlock()
	e.r.subs[e.user] = fn
	return func() {
		e.r.mu.Lock()
		defer e.r.mu.Unlock()
		delete(e.r.subs, e.user)
	}
}

func (e endpoint) SendSignal(_ context.Context, _, to int, sig room.Signal) error {
	e.r.mu.Lock()
	defer e.r.mu.Unlock()
	fn, ok := e.r.subs[to]
	if !ok {
		e.r.dropped = append(e.r.dropped, sig.Type)
		return nil
	}
	from := e.user
	e.r.queue(to) <- func() { fn(from, sig) }
	return nil
}

type noopUpdater struct{}

func (noopUpdater) UpdateStatus(context.Context, int, models.MeetingStatus) error { return nil }

func TestSession_ConnectsInEitherJoinOrder(t *testing.T) {
	const requester, expert = 1, 2

	tests := []struct {
		name  string
		order []int
		// what the first participant sends into an empty room
		lost string
	}{
		{"requester first", []int{requester, expert}, "offer"},
		{"expert first", []int{expert, requester}, room.SignalReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFactory(nil, nil, WithLoopback())
			require.NoError(t, err)
			r := newRelay()
			t.Cleanup(r.close)

			now := time.Now()
			m := models.Meeting{
				ID: 12, Requester: requester, Expert: expert, Status: models.StatusConfirmed,
				ScheduledStart: now.Add(-time.Minute), ScheduledEnd: now.Add(time.Hour),
			}
			join := func(user int) *room.Session {
				s, err := room.Join(context.Background(), room.Deps{
					Devices:   NewDevices(),
					Peers:     f,
					Signaling: endpoint{r: r, user: user},
					Meetings:  noopUpdater{},
				}, m, models.User{ID: user})
				require.NoError(t, err)
				t.Cleanup(s.Close)
				return s
			}

			first := join(tt.order[0])
			// первый сигнал уходит в пустую комнату и теряется
			require.Eventually(t, func() bool {
				return len(r.droppedSignals()) > 0
			}, 15*time.Second, 10*time.Millisecond)
			assert.Equal(t, []string{tt.lost}, r.droppedSignals())
			assert.Equal(t, room.StateAwaitingPeer, first.State())

			second := join(tt.order[1])

			require.Eventually(t, func() bool {
				return first.State() == room.StateConnected && second.State() == room.StateConnected
			}, 20*time.Second, 20*time.Millisecond)
			assert.NoError(t, first.Status().Err)
			assert.NoError(t, second.Status().Err)
		})
	}
}
