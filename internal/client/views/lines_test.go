package views

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/expertconnect/internal/client/models"
)

func TestMeetingLine(t *testing.T) {
	m := meeting(12, models.StatusConfirmed, now)
	m.Title = "Go review"
	m.ExpertName = "Bob"
	m.RequesterName = "Ada"

	assert.True(t, strings.HasPrefix(MeetingLine(m, 1), "#12 "))
	assert.Contains(t, MeetingLine(m, 1), "with Bob  [confirmed]")
	assert.Contains(t, MeetingLine(m, 2), "with Ada")

	m.ExpertName = ""
	assert.Contains(t, MeetingLine(m, 1), "with user 2")
}

func TestExpertLine(t *testing.T) {
	u := models.User{ID: 3, FirstName: "Ada", LastName: "L", Headline: "Mentor",
		Skills: []models.Skill{{SkillName: "Go", SkillLevel: models.SkillExpert}}}
	assert.Equal(t, "#3 Ada L  Mentor  Go (expert)", ExpertLine(u))
	assert.Equal(t, "#4 bob  No skills listed", ExpertLine(models.User{ID: 4, Username: "bob"}))
}

func TestMessageLine(t *testing.T) {
	in := models.Message{Sender: 2, SenderName: "Bob", Receiver: 1, Content: "hi"}
	assert.True(t, strings.HasPrefix(MessageLine(in, 1), "*["))
	assert.True(t, strings.HasSuffix(MessageLine(in, 1), "Bob: hi"))

	in.IsRead = true
	assert.True(t, strings.HasPrefix(MessageLine(in, 1), " ["))

	out := models.Message{Sender: 1, Receiver: 2, Content: "yo"}
	assert.True(t, strings.HasSuffix(MessageLine(out, 1), "you: yo"))
}
