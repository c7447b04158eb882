package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/expertconnect/internal/client/models"
	"github.com/dmitrijs2005/expertconnect/internal/client/services"
	"github.com/dmitrijs2005/expertconnect/internal/client/views"
)

var errNotOffered = errors.New("action not available")

func (a *App) Meetings(ctx context.Context, args []string) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}

	tabs := views.Tabs
	if len(args) > 0 {
		tab := views.Tab(strings.ToLower(args[0]))
		found := false
		for _, t := range views.Tabs {
			found = found || t == tab
		}
		if !found {
			return usage("meetings")
		}
		tabs = []views.Tab{tab}
	}

	if err := a.meetings.FetchMeetings(ctx, models.MeetingQuery{}); err != nil {
		return err
	}
	groups := views.GroupMeetings(a.meetings.State().Meetings, a.now())
	for _, tab := range tabs {
		list := groups[tab]
		printf("%s (%d)", tab, len(list))
		for _, m := range list {
			printlnFn("  " + views.MeetingLine(m, u.ID))
		}
	}
	return nil
}

// Meeting prints the detail page with the actions currently offered.
func (a *App) Meeting(ctx context.Context, args []string) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}
	id, err := idArg("meeting", args)
	if err != nil {
		return err
	}
	m, err := a.meetings.Get(ctx, id)
	if err != nil {
		return err
	}
	a.printMeeting(m, u.ID)
	return nil
}

func (a *App) printMeeting(m models.Meeting, userID int) {
	printlnFn(views.MeetingLine(m, userID))
	printf("  %s - %s (%d min)", m.ScheduledStart.Local().Format(inputTime),
		m.ScheduledEnd.Local().Format(inputTime), m.DurationMinutes)
	if m.CategoryName != "" {
		printlnFn("  Category: " + m.CategoryName)
	}
	if m.Description != "" {
		printlnFn("  " + m.Description)
	}
	for _, r := range m.Reviews {
		printf("  Review by %s: %d/5 %s", r.ReviewerName, r.Rating, r.Feedback)
	}

	actions := views.MeetingActions(m, userID, a.now())
	if len(actions) == 0 {
		return
	}
	names := make([]string, len(actions))
	for i, act := range actions {
		names[i] = string(act)
	}
	printf("  Actions: %s", strings.Join(names, ", "))
}

// transition checks that the page would offer action before asking the
// server for the new status. The server stays the authority.
func (a *App) transition(ctx context.Context, cmd string, args []string, action views.Action, status models.MeetingStatus) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}
	id, err := idArg(cmd, args)
	if err != nil {
		return err
	}
	m, err := a.meetings.Get(ctx, id)
	if err != nil {
		return err
	}
	if !views.Offers(views.MeetingActions(m, u.ID, a.now()), action) {
		return fmt.Errorf("%w: %s on a %s meeting", errNotOffered, action, m.Status)
	}
	if err := a.meetings.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	printf("Meeting #%d is now %s.", id, status)
	return nil
}

func (a *App) Accept(ctx context.Context, args []string) error {
	return a.transition(ctx, "accept", args, views.ActionAccept, models.StatusConfirmed)
}

func (a *App) Cancel(ctx context.Context, args []string) error {
	return a.transition(ctx, "cancel", args, views.ActionCancel, models.StatusCancelled)
}

func (a *App) Complete(ctx context.Context, args []string) error {
	return a.transition(ctx, "complete", args, views.ActionComplete, models.StatusCompleted)
}

// Review rates the other participant of a completed meeting.
func (a *App) Review(ctx context.Context, args []string) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}
	id, err := idArg("review", args)
	if err != nil {
		return err
	}
	m, err := a.meetings.Get(ctx, id)
	if err != nil {
		return err
	}
	if !views.Offers(views.MeetingActions(m, u.ID, a.now()), views.ActionReview) {
		return fmt.Errorf("%w: review on a %s meeting", errNotOffered, m.Status)
	}

	rating, err := getSimpleText(a.reader, "Rating (1-5)", a.out)
	if err != nil {
		return err
	}
	req := models.ReviewRequest{Meeting: m.ID, Reviewee: m.Counterpart(u.ID)}
	if req.Rating, err = parseInt("rating", rating, 0); err != nil {
		return err
	}
	if req.Feedback, err = getMultiline(a.reader, "Feedback", a.out); err != nil {
		return err
	}

	if err := a.meetings.CreateReview(ctx, req); err != nil {
		return err
	}
	printlnFn("Thanks for your review!")
	return nil
}

// Book requests a meeting with an expert. The credit guard runs first, on a
// freshly read balance: with too small a balance nothing is asked and
// nothing is posted.
func (a *App) Book(ctx context.Context, args []string) error {
	expertID, err := idArg("book", args)
	if err != nil {
		return err
	}

	if err := a.credits.FetchBalance(ctx); err != nil {
		return err
	}
	if err := a.credits.CheckFunds(services.MeetingCost); err != nil {
		return err
	}

	req := models.CreateMeetingRequest{Expert: expertID}
	if req.Title, err = getSimpleText(a.reader, "Title", a.out); err != nil {
		return err
	}
	if req.Description, err = getMultiline(a.reader, "Description", a.out); err != nil {
		return err
	}

	category, err := getSimpleText(a.reader, "Category id ('categories' lists them)", a.out)
	if err != nil {
		return err
	}
	if req.Category, err = parseInt("category", category, 0); err != nil {
		return err
	}

	start, err := getSimpleText(a.reader, "Start ("+inputTime+")", a.out)
	if err != nil {
		return err
	}
	if req.ScheduledStart, err = parseLocalTime("scheduled_start", start); err != nil {
		return err
	}

	duration, err := getSimpleText(a.reader, "Duration in minutes [60]", a.out)
	if err != nil {
		return err
	}
	minutes, err := parseInt("duration_minutes", duration, 60)
	if err != nil {
		return err
	}
	if minutes <= 0 {
		return fieldError("duration_minutes", "must be positive")
	}
	req.ScheduledEnd = req.ScheduledStart.Add(time.Duration(minutes) * time.Minute)

	m, err := a.meetings.Create(ctx, req)
	if err != nil {
		return err
	}
	printf("Meeting #%d requested, waiting for the expert to accept.", m.ID)

	if err := a.credits.FetchBalance(ctx); err != nil {
		a.log.Warn(ctx, "balance refresh failed", "error", err)
	}
	return nil
}
