package models

import (
	"net/url"
	"strconv"
	"time"
)

type MeetingStatus string

const (
	StatusPending   MeetingStatus = "pending"
	StatusConfirmed MeetingStatus = "confirmed"
	StatusCompleted MeetingStatus = "completed"
	StatusCancelled MeetingStatus = "cancelled"
	StatusNoShow    MeetingStatus = "no_show"
)

type Meeting struct {
	ID              int           `json:"id"`
	Requester       int           `json:"requester"`
	RequesterName   string        `json:"requester_name"`
	Expert          int           `json:"expert"`
	ExpertName      string        `json:"expert_name"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Category        int           `json:"category"`
	CategoryName    string        `json:"category_name"`
	ScheduledStart  time.Time     `json:"scheduled_start"`
	ScheduledEnd    time.Time     `json:"scheduled_end"`
	DurationMinutes int           `json:"duration_minutes"`
	Status          MeetingStatus `json:"status"`
	MeetingLink     string        `json:"meeting_link"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	Reviews         []Review      `json:"reviews"`
}

// IsParticipant reports whether userID is the requester or the expert.
func (m Meeting) IsParticipant(userID int) bool {
	return userID != 0 && (m.Requester == userID || m.Expert == userID)
}

// Counterpart returns the other participant's id for userID.
func (m Meeting) Counterpart(userID int) int {
	if m.Requester == userID {
		return m.Expert
	}
	return m.Requester
}

// ReviewedBy reports whether userID already left a review for the meeting.
func (m Meeting) ReviewedBy(userID int) bool {
	for _, r := range m.Reviews {
		if r.Reviewer == userID {
			return true
		}
	}
	return false
}

type Review struct {
	ID           int       `json:"id"`
	Meeting      int       `json:"meeting"`
	Reviewer     int       `json:"reviewer"`
	ReviewerName string    `json:"reviewer_name"`
	Reviewee     int       `json:"reviewee"`
	RevieweeName string    `json:"reviewee_name"`
	Rating       int       `json:"rating"`
	Feedback     string    `json:"feedback"`
	CreatedAt    time.Time `json:"created_at"`
}

type CreateMeetingRequest struct {
	Expert         int       `json:"expert" validate:"required"`
	Title          string    `json:"title" validate:"required,max=100"`
	Description    string    `json:"description"`
	Category       int       `json:"category" validate:"required"`
	ScheduledStart time.Time `json:"scheduled_start" validate:"required"`
	ScheduledEnd   time.Time `json:"scheduled_end" validate:"required,gtfield=ScheduledStart"`
}

type StatusUpdate struct {
	Status MeetingStatus `json:"status"`
}

type ReviewRequest struct {
	Meeting  int    `json:"meeting" validate:"required"`
	Reviewee int    `json:"reviewee" validate:"required"`
	Rating   int    `json:"rating" validate:"min=1,max=5"`
	Feedback string `json:"feedback"`
}

// MeetingQuery filters /meetings/. Zero values are omitted.
type MeetingQuery struct {
	Status MeetingStatus
	Role   string
}

func (q MeetingQuery) Values() url.Values {
	v := url.Values{}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	if q.Role != "" {
		v.Set("role", q.Role)
	}
	return v
}

type ReviewQuery struct {
	Reviewee int
	Meeting  int
}

func (q ReviewQuery) Values() url.Values {
	v := url.Values{}
	if q.Reviewee != 0 {
		v.Set("reviewee", strconv.Itoa(q.Reviewee))
	}
	if q.Meeting != 0 {
		v.Set("meeting", strconv.Itoa(q.Meeting))
	}
	return v
}
