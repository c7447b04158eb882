package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/expertconnect/internal/client/client"
	"github.com/dmitrijs2005/expertconnect/internal/client/models"
	"github.com/dmitrijs2005/expertconnect/internal/client/validation"
	"github.com/dmitrijs2005/expertconnect/internal/logging"
)

type MeetingState struct {
	Meetings []models.Meeting
	// Query is the filter of the last list load; mutations re-fetch with it.
	Query models.MeetingQuery
	Err   error
}

type MeetingService interface {
	FetchMeetings(ctx context.Context, q models.MeetingQuery) error
	Get(ctx context.Context, id int) (models.Meeting, error)
	Create(ctx context.Context, req models.CreateMeetingRequest) (models.Meeting, error)
	// UpdateStatus requests a transition. The server decides legality; on
	// rejection the cached list is left as it was.
	UpdateStatus(ctx context.Context, id int, status models.MeetingStatus) error
	CreateReview(ctx context.Context, req models.ReviewRequest) error
	Reviews(ctx context.Context, q models.ReviewQuery) ([]models.Review, error)

	State() MeetingState
	Subscribe(fn func(MeetingState)) (cancel func())
}

type meetingService struct {
	api client.MeetingAPI
	log logging.Logger

	mu    sync.Mutex
	state MeetingState
	subs  observers[MeetingState]
}

func NewMeetingService(api client.MeetingAPI, log logging.Logger) MeetingService {
	if log == nil {
		log = logging.Nop()
	}
	return &meetingService{api: api, log: log}
}

func (m *meetingService) State() MeetingState {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.state
	s.Meetings = append([]models.Meeting(nil), s.Meetings...)
	return s
}

func (m *meetingService) Subscribe(fn func(MeetingState)) func() {
	return m.subs.subscribe(fn)
}

func (m *meetingService) set(fn func(s *MeetingState)) {
	m.mu.Lock()
	fn(&m.state)
	m.mu.Unlock()
	m.subs.notify(m.State())
}

func (m *meetingService) fail(ctx context.Context, op string, err error) error {
	m.log.Warn(ctx, op+" failed", "error", err)
	m.set(func(s *MeetingState) { s.Err = err })
	return err
}

func (m *meetingService) FetchMeetings(ctx context.Context, q models.MeetingQuery) error {
	list, err := m.api.List(ctx, q)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return m.fail(ctx, "fetch meetings", fmt.Errorf("fetch meetings error: %w", err))
	}

	m.set(func(s *MeetingState) {
		s.Meetings = list
		s.Query = q
		s.Err = nil
	})
	return nil
}

func (m *meetingService) refetch(ctx context.Context) error {
	m.mu.Lock()
	q := m.state.Query
	m.mu.Unlock()
	return m.FetchMeetings(ctx, q)
}

func (m *meetingService) Get(ctx context.Context, id int) (models.Meeting, error) {
	meeting, err := m.api.Get(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return models.Meeting{}, ctx.Err()
		}
		return models.Meeting{}, m.fail(ctx, "get meeting", fmt.Errorf("get meeting %d error: %w", id, err))
	}
	return meeting, nil
}

func (m *meetingService) Create(ctx context.Context, req models.CreateMeetingRequest) (models.Meeting, error) {
	if err := validation.Struct(req); err != nil {
		return models.Meeting{}, m.fail(ctx, "create meeting", err)
	}

	created, err := m.api.Create(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return models.Meeting{}, ctx.Err()
		}
		return models.Meeting{}, m.fail(ctx, "create meeting", fmt.Errorf("create meeting error: %w", err))
	}
	m.log.Info(ctx, "meeting requested", "meeting_id", created.ID, "expert", req.Expert)

	return created, m.refetch(ctx)
}

func (m *meetingService) UpdateStatus(ctx context.Context, id int, status models.MeetingStatus) error {
	if _, err := m.api.UpdateStatus(ctx, id, status); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return m.fail(ctx, "update meeting status", fmt.Errorf("update meeting %d status error: %w", id, err))
	}
	m.log.Info(ctx, "meeting status updated", "meeting_id", id, "status", status)

	return m.refetch(ctx)
}

func (m *meetingService) CreateReview(ctx context.Context, req models.ReviewRequest) error {
	if err := validation.Struct(req); err != nil {
		return m.fail(ctx, "create review", err)
	}

	if _, err := m.api.CreateReview(ctx, req); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return m.fail(ctx, "create review", fmt.Errorf("create review error: %w", err))
	}

	return m.refetch(ctx)
}

func (m *meetingService) Reviews(ctx context.Context, q models.ReviewQuery) ([]models.Review, error) {
	reviews, err := m.api.Reviews(ctx, q)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("fetch reviews error: %w", err)
	}
	return reviews, nil
}
