package views

import (
	"sort"
	"time"

	"github.com/dmitrijs2005/expertconnect/internal/client/models"
)

type Tab string

const (
	TabUpcoming  Tab = "upcoming"
	TabPending   Tab = "pending"
	TabPast      Tab = "past"
	TabCancelled Tab = "cancelled"
)

var Tabs = []Tab{TabUpcoming, TabPending, TabPast, TabCancelled}

// TabOf places a meeting on the meetings page.
func TabOf(m models.Meeting, now time.Time) Tab {
	switch m.Status {
	case models.StatusPending:
		return TabPending
	case models.StatusConfirmed:
		if now.After(m.ScheduledEnd) {
			return TabPast
		}
		return TabUpcoming
	case models.StatusCompleted:
		return TabPast
	default:
		return TabCancelled
	}
}

// GroupMeetings buckets meetings by tab, each sorted by start time. Past
// meetings come newest first.
func GroupMeetings(meetings []models.Meeting, now time.Time) map[Tab][]models.Meeting {
	out := make(map[Tab][]models.Meeting, len(Tabs))
	for _, m := range meetings {
		tab := TabOf(m, now)
		out[tab] = append(out[tab], m)
	}

	for tab, list := range out {
		desc := tab == TabPast
		sort.SliceStable(list, func(i, j int) bool {
			if desc {
				return list[i].ScheduledStart.After(list[j].ScheduledStart)
			}
			return list[i].ScheduledStart.Before(list[j].ScheduledStart)
		})
	}
	return out
}

type Action string

const (
	ActionAccept   Action = "accept"
	ActionCancel   Action = "cancel"
	ActionJoin     Action = "join"
	ActionComplete Action = "complete"
	ActionReview   Action = "review"
)

// JoinWindow matches the meeting room's early entry allowance.
const JoinWindow = 5 * time.Minute

// MeetingActions lists what the page offers userID for m at now. The
// server has the final word on every transition.
func MeetingActions(m models.Meeting, userID int, now time.Time) []Action {
	var out []Action
	switch m.Status {
	case models.StatusPending:
		if m.Expert == userID {
			out = append(out, ActionAccept)
		}
		out = append(out, ActionCancel)
	case models.StatusConfirmed:
		if !now.Before(m.ScheduledStart.Add(-JoinWindow)) && !now.After(m.ScheduledEnd) {
			out = append(out, ActionJoin)
		}
		if now.After(m.ScheduledEnd) {
			out = append(out, ActionComplete)
		}
	case models.StatusCompleted:
		if m.IsParticipant(userID) && !m.ReviewedBy(userID) {
			out = append(out, ActionReview)
		}
	}
	return out
}

func Offers(actions []Action, a Action) bool {
	for _, x := range actions {
		if x == a {
			return true
		}
	}
	return false
}
