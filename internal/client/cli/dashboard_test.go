package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/expertconnect/internal/client/models"
)

func TestDashboard(t *testing.T) {
	h := newHarness(t)
	h.signIn(ada)
	h.credits.state.Balance = 7
	h.meetings.list = []models.Meeting{
		{ID: 1, Requester: 1, Expert: 2, ExpertName: "Bob", Status: models.StatusConfirmed,
			ScheduledStart: testNow.Add(time.Hour), ScheduledEnd: testNow.Add(2 * time.Hour)},
		{ID: 2, Requester: 1, Expert: 2, Status: models.StatusPending,
			ScheduledStart: testNow.Add(time.Hour), ScheduledEnd: testNow.Add(2 * time.Hour)},
	}
	h.messaging.state.Notifications = []models.Notification{
		{ID: 1}, {ID: 2}, {ID: 3, IsRead: true},
	}

	require.NoError(t, h.app.Exec(context.Background(), "dashboard", nil))

	out := h.out.all()
	require.GreaterOrEqual(t, len(out), 5)
	assert.Equal(t, "Welcome back, Ada!", out[0])
	assert.Equal(t, "Credits: 7", out[1])
	assert.Equal(t, "Upcoming meetings: 1", out[2])
	assert.Contains(t, out[3], "with Bob")
	assert.Equal(t, "Unread notifications: 2", out[4])
	assert.Equal(t, 1, h.credits.fetchCalls)
}

func TestDashboard_BannerFallback(t *testing.T) {
	h := newHarness(t)
	h.signIn(models.User{ID: 3, Username: "carol"})

	require.NoError(t, h.app.Exec(context.Background(), "dashboard", nil))
	assert.Equal(t, "Welcome back, carol!", h.out.all()[0])
}
