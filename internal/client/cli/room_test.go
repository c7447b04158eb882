package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/expertconnect/internal/client/models"
	"github.com/dmitrijs2005/expertconnect/internal/client/room"
	"github.com/dmitrijs2005/expertconnect/internal/common"
)

func liveMeeting(status models.MeetingStatus) models.Meeting {
	return models.Meeting{ID: 12, Requester: 1, Expert: 2, Status: status,
		ScheduledStart: testNow.Add(-10 * time.Minute), ScheduledEnd: testNow.Add(50 * time.Minute)}
}

func callHarness(t *testing.T, lines ...string) (*harness, *fakeDevices, *fakePeers, *fakeSocket) {
	t.Helper()
	h := newHarness(t, lines...)
	h.signIn(ada)

	devices, peers, sock := &fakeDevices{}, &fakePeers{}, newFakeSocket()
	h.app.media = devices
	h.app.peers = peers
	h.app.dial = func(context.Context, string, int) (Realtime, error) { return sock, nil }
	t.Cleanup(h.app.disconnectRealtime)
	return h, devices, peers, sock
}

func TestJoin_NotJoinableTouchesNoDevices(t *testing.T) {
	h, devices, _, _ := callHarness(t)
	h.meetings.byID[12] = liveMeeting(models.StatusPending)

	err := h.app.Exec(context.Background(), "join", []string{"12"})

	var perr *room.PreconditionError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "This meeting is not confirmed yet.", perr.Reason)
	assert.Zero(t, devices.calls)
	assert.Nil(t, h.app.realtimeSocket())
}

func TestJoin_NeedsSignaling(t *testing.T) {
	h, devices, _, _ := callHarness(t)
	h.app.dial = func(context.Context, string, int) (Realtime, error) {
		return nil, common.ErrNetwork
	}
	h.meetings.byID[12] = liveMeeting(models.StatusConfirmed)

	require.ErrorIs(t, h.app.Exec(context.Background(), "join", []string{"12"}), common.ErrNetwork)
	assert.Zero(t, devices.calls)
}

func TestJoin_CallCommandsThenEnd(t *testing.T) {
	h, devices, peers, sock := callHarness(t, "mute", "camera", "status", "bogus", "end")
	h.meetings.byID[12] = liveMeeting(models.StatusConfirmed)

	require.NoError(t, h.app.Exec(context.Background(), "join", []string{"12"}))

	assert.Equal(t, 1, devices.calls)
	assert.True(t, peers.cfg.Initiator)
	assert.True(t, peers.peer.destroyed)
	assert.Zero(t, sock.subs)

	assert.True(t, h.out.contains("Calling, waiting for the expert to join..."))
	assert.True(t, h.out.contains("Microphone off."))
	assert.True(t, h.out.contains("Camera off."))
	assert.True(t, h.out.contains("State: awaiting-peer, microphone off, camera off, sharing off"))
	assert.True(t, h.out.contains("Unknown call command: bogus"))
	assert.True(t, h.out.contains("Call ended."))

	// встреча ещё не закончилась по расписанию
	assert.Empty(t, h.meetings.updates)
	assert.Nil(t, h.app.session)
}

func TestJoin_EndAfterScheduleCompletes(t *testing.T) {
	h, _, peers, _ := callHarness(t, "end")
	h.signIn(models.User{ID: 2, Username: "bob"})
	m := liveMeeting(models.StatusConfirmed)
	m.ScheduledStart = testNow.Add(-time.Hour)
	m.ScheduledEnd = testNow
	h.meetings.byID[12] = m

	require.NoError(t, h.app.Exec(context.Background(), "join", []string{"12"}))
	assert.False(t, peers.cfg.Initiator)
	assert.Equal(t, []string{"12:completed"}, h.meetings.updates)
	assert.True(t, h.out.contains("Meeting marked as completed."))
}

func TestJoin_InputEndsCall(t *testing.T) {
	h, _, peers, _ := callHarness(t)
	h.meetings.byID[12] = liveMeeting(models.StatusConfirmed)

	require.NoError(t, h.app.Exec(context.Background(), "join", []string{"12"}))
	assert.True(t, peers.peer.destroyed)
	assert.Empty(t, h.meetings.updates)
}

func TestJoin_MediaDenied(t *testing.T) {
	h, devices, _, _ := callHarness(t)
	devices.err = errors.New("permission denied")
	h.meetings.byID[12] = liveMeeting(models.StatusConfirmed)

	err := h.app.Exec(context.Background(), "join", []string{"12"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.Nil(t, h.app.session)
}
