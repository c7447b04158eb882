package room

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/expertconnect/internal/client/models"
)

// JoinWindow is how early before the scheduled start the room opens.
const JoinWindow = 5 * time.Minute

var ErrNotJoinable = errors.New("meeting is not joinable")

// PreconditionError explains why a meeting cannot be joined right now.
type PreconditionError struct {
	MeetingID int
	Reason    string
}

func (e *PreconditionError) Error() string { return e.Reason }

func (e *PreconditionError) Is(target error) bool { return target == ErrNotJoinable }

// Check reports whether userID may enter the meeting room at now. It never
// touches devices or the network.
func Check(m models.Meeting, userID int, now time.Time) error {
	reject := func(reason string) error {
		return &PreconditionError{MeetingID: m.ID, Reason: reason}
	}

	switch {
	case m.Status != models.StatusConfirmed:
		return reject("This meeting is not confirmed yet.")
	case now.Before(m.ScheduledStart.Add(-JoinWindow)):
		return reject("This meeting hasn't started yet.")
	case now.After(m.ScheduledEnd):
		return reject("This meeting has already ended.")
	case m.Requester != userID && m.Expert != userID:
		return reject("You are not authorized to join this meeting.")
	}
	return nil
}
