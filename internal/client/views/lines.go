package views

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/expertconnect/internal/client/models"
)

const timeLayout = "2006-01-02 15:04"

// MeetingLine is the one-line summary used by lists, seen from userID.
func MeetingLine(m models.Meeting, userID int) string {
	with := m.ExpertName
	if m.Expert == userID {
		with = m.RequesterName
	}
	if with == "" {
		with = fmt.Sprintf("user %d", m.Counterpart(userID))
	}
	return fmt.Sprintf("#%d %s  %s  with %s  [%s]",
		m.ID, m.ScheduledStart.Local().Format(timeLayout), m.Title, with, m.Status)
}

func ExpertLine(u models.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s", u.ID, u.FullName())
	if u.Headline != "" {
		b.WriteString("  " + u.Headline)
	}
	if len(u.Skills) > 0 {
		skills := make([]string, 0, len(u.Skills))
		for _, s := range u.Skills {
			skills = append(skills, fmt.Sprintf("%s (%s)", s.SkillName, s.SkillLevel))
		}
		b.WriteString("  " + strings.Join(skills, ", "))
	} else {
		b.WriteString("  No skills listed")
	}
	return b.String()
}

// MessageLine marks unread incoming messages with "*".
func MessageLine(msg models.Message, selfID int) string {
	who := msg.SenderName
	if msg.Sender == selfID {
		who = "you"
	} else if who == "" {
		who = fmt.Sprintf("user %d", msg.Sender)
	}
	mark := " "
	if msg.Receiver == selfID && !msg.IsRead {
		mark = "*"
	}
	return fmt.Sprintf("%s[%s] %s: %s", mark, msg.CreatedAt.Local().Format(timeLayout), who, msg.Content)
}
