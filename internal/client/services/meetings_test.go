package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/expertconnect/internal/client/client"
	"github.com/dmitrijs2005/expertconnect/internal/client/models"
	"github.com/dmitrijs2005/expertconnect/internal/common"
)

type meetingBackend struct {
	mu       sync.Mutex
	meetings map[int]models.Meeting
	patches  []map[string]string
	lists    []string
	// allowed is the user id the backend lets change status, 0 for anyone
	allowed int
}

func (b *meetingBackend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /meetings/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.lists = append(b.lists, r.URL.RawQuery)
		out := []models.Meeting{}
		for _, m := range b.meetings {
			if s := r.URL.Query().Get("status"); s != "" && string(m.Status) != s {
				continue
			}
			out = append(out, m)
		}
		_ = json.NewEncoder(w).Encode(out)
	})
	mux.HandleFunc("PATCH /meetings/{id}/update_status/", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		b.mu.Lock()
		defer b.mu.Unlock()
		b.patches = append(b.patches, body)
		if b.allowed != 0 && r.Header.Get("Authorization") != "Bearer "+strconv.Itoa(b.allowed) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"detail": "Only the expert can confirm this meeting."}`))
			return
		}
		m := b.meetings[id]
		m.Status = models.MeetingStatus(body["status"])
		b.meetings[id] = m
		_ = json.NewEncoder(w).Encode(m)
	})
	return mux
}

func pendingMeeting(now time.Time) models.Meeting {
	return models.Meeting{
		ID: 12, Requester: 1, Expert: 2, Title: "Go review", Status: models.StatusPending,
		ScheduledStart: now.Add(24 * time.Hour), ScheduledEnd: now.Add(25 * time.Hour),
	}
}

func TestUpdateStatus_AcceptRefetchesList(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	backend := &meetingBackend{meetings: map[int]models.Meeting{12: pendingMeeting(now)}}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	svc := NewMeetingService(client.NewAPI(client.New(srv.URL, nil)).Meetings, nil)
	ctx := context.Background()

	require.NoError(t, svc.FetchMeetings(ctx, models.MeetingQuery{}))
	require.Len(t, svc.State().Meetings, 1)
	assert.Equal(t, models.StatusPending, svc.State().Meetings[0].Status)

	require.NoError(t, svc.UpdateStatus(ctx, 12, models.StatusConfirmed))

	assert.Equal(t, []map[string]string{{"status": "confirmed"}}, backend.patches)
	assert.Len(t, backend.lists, 2, "list is re-fetched after the PATCH")
	assert.Equal(t, models.StatusConfirmed, svc.State().Meetings[0].Status)
}

func TestUpdateStatus_RejectionKeepsCache(t *testing.T) {
	now := time.Now().UTC()
	backend := &meetingBackend{meetings: map[int]models.Meeting{12: pendingMeeting(now)}, allowed: 2}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	svc := NewMeetingService(client.NewAPI(client.New(srv.URL, fakeToken("1"))).Meetings, nil)
	ctx := context.Background()
	require.NoError(t, svc.FetchMeetings(ctx, models.MeetingQuery{}))

	err := svc.UpdateStatus(ctx, 12, models.StatusConfirmed)
	require.ErrorIs(t, err, common.ErrAuthorization)
	assert.Len(t, backend.lists, 1)
	assert.Equal(t, models.StatusPending, svc.State().Meetings[0].Status)
	assert.ErrorIs(t, svc.State().Err, common.ErrAuthorization)
}

func TestFetchMeetings_RemembersQuery(t *testing.T) {
	now := time.Now().UTC()
	backend := &meetingBackend{meetings: map[int]models.Meeting{12: pendingMeeting(now)}}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	svc := NewMeetingService(client.NewAPI(client.New(srv.URL, nil)).Meetings, nil)
	ctx := context.Background()

	q := models.MeetingQuery{Status: models.StatusPending}
	require.NoError(t, svc.FetchMeetings(ctx, q))
	require.NoError(t, svc.UpdateStatus(ctx, 12, models.StatusCancelled))

	assert.Equal(t, []string{"status=pending", "status=pending"}, backend.lists)
	assert.Equal(t, q, svc.State().Query)
	assert.Empty(t, svc.State().Meetings)
}

func TestCreate_ValidatesBeforePosting(t *testing.T) {
	backend := &meetingBackend{meetings: map[int]models.Meeting{}}
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	svc := NewMeetingService(client.NewAPI(client.New(srv.URL, nil)).Meetings, nil)
	start := time.Now().Add(time.Hour)

	_, err := svc.Create(context.Background(), models.CreateMeetingRequest{
		Expert: 2, Title: "x", Category: 1, ScheduledStart: start, ScheduledEnd: start.Add(-time.Minute),
	})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Empty(t, backend.lists)
}

func TestCreateReview_ValidatesRating(t *testing.T) {
	svc := NewMeetingService(client.NewAPI(client.New("http://127.0.0.1:1", nil)).Meetings, nil)

	err := svc.CreateReview(context.Background(), models.ReviewRequest{Meeting: 1, Reviewee: 2, Rating: 0})
	require.ErrorIs(t, err, common.ErrValidation)
}

type fakeToken string

func (f fakeToken) AccessToken(context.Context) (string, error) { return string(f), nil }
