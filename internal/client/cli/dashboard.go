package cli

import (
	"context"

	"github.com/dmitrijs2005/expertconnect/internal/client/models"
	"github.com/dmitrijs2005/expertconnect/internal/client/views"
)

// dashboardUpcoming caps the meetings listed on the dashboard.
const dashboardUpcoming = 5

func (a *App) Dashboard(ctx context.Context, _ []string) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}
	printlnFn(views.WelcomeBanner(u))

	if err := a.credits.FetchBalance(ctx); err != nil {
		return err
	}
	printf("Credits: %d", a.credits.State().Balance)

	if err := a.meetings.FetchMeetings(ctx, models.MeetingQuery{}); err != nil {
		return err
	}
	upcoming := views.GroupMeetings(a.meetings.State().Meetings, a.now())[views.TabUpcoming]
	printf("Upcoming meetings: %d", len(upcoming))
	for i, m := range upcoming {
		if i == dashboardUpcoming {
			break
		}
		printlnFn("  " + views.MeetingLine(m, u.ID))
	}

	// notifications are secondary here; a failure only hides the counter
	if err := a.messaging.FetchNotifications(ctx); err != nil {
		a.log.Warn(ctx, "dashboard notifications failed", "error", err)
		return nil
	}
	unread := 0
	for _, n := range a.messaging.State().Notifications {
		if !n.IsRead {
			unread++
		}
	}
	printf("Unread notifications: %d", unread)
	return nil
}
