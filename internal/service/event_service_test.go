package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Eursukkul/campus-events/internal/models"
	"github.com/Eursukkul/campus-events/internal/repository"
	"github.com/Eursukkul/campus-events/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDraft() models.EventDraft {
	return models.EventDraft{
		Title:        "Go Workshop",
		Description:  "Hands-on Go",
		Date:         fixedNow.AddDate(0, 0, 3),
		Time:         "10:00 AM",
		Location:     "Lab 3",
		Club:         "csi",
		Category:     "technical",
		Price:        0,
		OrganizerID:  "org-1",
		MaxAttendees: 50,
		DueDate:      fixedNow.AddDate(0, 0, 2),
	}
}

func TestCreateEvent_Success(t *testing.T) {
	var stored *models.Event
	repo := &mockEventRepo{
		createFn: func(ctx context.Context, event *models.Event) error {
			stored = event
			return nil
		},
	}
	mirror := state.NewMirror()
	emitter := &recordingEmitter{}
	pub := &recordingPublisher{}
	svc := newTestEventService(repo, mirror, emitter, pub, nil)

	event, err := svc.CreateEvent(context.Background(), organizer("org-1"), sampleDraft())

	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, 0, event.CurrentAttendees)
	assert.Equal(t, models.ClubCSI, event.Club)
	assert.Equal(t, models.CategoryTechnical, event.Category)
	assert.Equal(t, 0, event.Date.Hour())
	assert.Equal(t, event.ID, stored.ID)

	_, ok := mirror.Event(event.ID)
	assert.True(t, ok)
	assert.Equal(t, []string{KeyEventCreated}, pub.keys())
}

func TestCreateEvent_DateStoredAsUTCCalendarDay(t *testing.T) {
	svc := newTestEventService(&mockEventRepo{}, state.NewMirror(), nil, nil, nil)
	ist := time.FixedZone("IST", 5*3600+1800)
	draft := sampleDraft()
	draft.Date = time.Date(2026, 3, 14, 1, 30, 0, 0, ist)

	event, err := svc.CreateEvent(context.Background(), organizer("org-1"), draft)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), event.Date)
}

func TestCreateEvent_BroadcastsNewEventNotification(t *testing.T) {
	emitter := &recordingEmitter{}
	svc := newTestEventService(&mockEventRepo{}, state.NewMirror(), emitter, nil, nil)

	event, err := svc.CreateEvent(context.Background(), organizer("org-1"), sampleDraft())

	require.NoError(t, err)
	require.Len(t, emitter.sent, 1)
	n := emitter.sent[0]
	assert.Equal(t, models.KindNewEvent, n.Kind)
	assert.Equal(t, "New Event: Go Workshop", n.Title)
	assert.Equal(t, "CSI Club just posted a new event: Go Workshop. Registration closes on Mar 12, 2026.", n.Message)
	assert.Nil(t, n.UserID, "new event notifications are broadcast, never targeted at the creator")
	require.NotNil(t, n.EventID)
	assert.Equal(t, event.ID, *n.EventID)
}

func TestCreateEvent_StudentCreatorDoesNotNotify(t *testing.T) {
	emitter := &recordingEmitter{}
	svc := newTestEventService(&mockEventRepo{}, state.NewMirror(), emitter, nil, nil)

	draft := sampleDraft()
	draft.OrganizerID = "stu-1"
	_, err := svc.CreateEvent(context.Background(), student("stu-1"), draft)

	require.NoError(t, err)
	assert.Empty(t, emitter.sent)
}

func TestCreateEvent_OrganizerMismatch(t *testing.T) {
	svc := newTestEventService(&mockEventRepo{}, state.NewMirror(), nil, nil, nil)

	_, err := svc.CreateEvent(context.Background(), organizer("org-2"), sampleDraft())

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreateEvent_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(d *models.EventDraft)
		field string
	}{
		{"missing title", func(d *models.EventDraft) { d.Title = "" }, "title"},
		{"negative price", func(d *models.EventDraft) { d.Price = -1 }, "price"},
		{"zero capacity", func(d *models.EventDraft) { d.MaxAttendees = 0 }, "max_attendees"},
		{"unknown club", func(d *models.EventDraft) { d.Club = "chess" }, "club"},
		{"unknown category", func(d *models.EventDraft) { d.Category = "music" }, "category"},
		{"due date in the past", func(d *models.EventDraft) { d.DueDate = fixedNow.Add(-time.Hour) }, "due_date"},
		{"due date on event date", func(d *models.EventDraft) { d.DueDate = d.Date }, "due_date"},
		{"due date after event date", func(d *models.EventDraft) { d.DueDate = d.Date.AddDate(0, 0, 1) }, "due_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			repo := &mockEventRepo{createFn: func(ctx context.Context, event *models.Event) error {
				called = true
				return nil
			}}
			svc := newTestEventService(repo, state.NewMirror(), nil, nil, nil)

			draft := sampleDraft()
			tt.edit(&draft)
			_, err := svc.CreateEvent(context.Background(), organizer("org-1"), draft)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			fields := make([]string, len(ve.Fields))
			for i, f := range ve.Fields {
				fields[i] = f.Field
			}
			assert.Contains(t, fields, tt.field)
			assert.False(t, called, "store must not be called on invalid input")
		})
	}
}

func TestCreateEvent_StoreError(t *testing.T) {
	repo := &mockEventRepo{createFn: func(ctx context.Context, event *models.Event) error {
		return errors.New("db connection failed")
	}}
	mirror := state.NewMirror()
	emitter := &recordingEmitter{}
	svc := newTestEventService(repo, mirror, emitter, nil, nil)

	_, err := svc.CreateEvent(context.Background(), organizer("org-1"), sampleDraft())

	assert.True(t, IsStore(err))
	assert.Contains(t, err.Error(), "db connection failed")
	assert.Empty(t, mirror.Events())
	assert.Empty(t, emitter.sent)
}

func TestListEvents_KeepsMirrorOnFailure(t *testing.T) {
	mirror := state.NewMirror()
	mirror.ReplaceEvents([]models.Event{*sampleEvent("e1")})
	repo := &mockEventRepo{findAllFn: func(ctx context.Context) ([]models.Event, error) {
		return nil, context.DeadlineExceeded
	}}
	svc := newTestEventService(repo, mirror, nil, nil, nil)

	_, err := svc.ListEvents(context.Background())

	assert.True(t, IsStore(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, mirror.Events(), 1)
}

func TestListEvents_ReplacesMirror(t *testing.T) {
	mirror := state.NewMirror()
	mirror.ReplaceEvents([]models.Event{*sampleEvent("stale")})
	repo := &mockEventRepo{findAllFn: func(ctx context.Context) ([]models.Event, error) {
		return []models.Event{*sampleEvent("a"), *sampleEvent("b")}, nil
	}}
	svc := newTestEventService(repo, mirror, nil, nil, nil)

	events, err := svc.ListEvents(context.Background())

	require.NoError(t, err)
	assert.Len(t, events, 2)
	_, ok := mirror.Event("stale")
	assert.False(t, ok)
}

func TestGetEvent_NotFound(t *testing.T) {
	svc := newTestEventService(&mockEventRepo{}, state.NewMirror(), nil, nil, nil)

	event, err := svc.GetEvent(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, event)
}

func TestGetEvent_FallsBackToStore(t *testing.T) {
	mirror := state.NewMirror()
	repo := &mockEventRepo{findByIDFn: func(ctx context.Context, id string) (*models.Event, error) {
		return sampleEvent(id), nil
	}}
	svc := newTestEventService(repo, mirror, nil, nil, nil)

	event, err := svc.GetEvent(context.Background(), "e1")

	require.NoError(t, err)
	assert.Equal(t, "e1", event.ID)
	_, ok := mirror.Event("e1")
	assert.True(t, ok)
}

func TestListByClubAndCategory(t *testing.T) {
	mirror := state.NewMirror()
	a := sampleEvent("a")
	b := sampleEvent("b")
	b.Club = models.ClubISTE
	b.Category = models.CategorySports
	mirror.ReplaceEvents([]models.Event{*a, *b})
	svc := newTestEventService(&mockEventRepo{}, mirror, nil, nil, nil)

	byClub, err := svc.ListByClub(context.Background(), "iste")
	require.NoError(t, err)
	require.Len(t, byClub, 1)
	assert.Equal(t, "b", byClub[0].ID)

	byCat, err := svc.ListByCategory(context.Background(), "Technical")
	require.NoError(t, err)
	require.Len(t, byCat, 1)
	assert.Equal(t, "a", byCat[0].ID)

	_, err = svc.ListByClub(context.Background(), "chess")
	assert.True(t, IsValidation(err))
}

func TestUpdateEvent_SparsePatch(t *testing.T) {
	mirror := state.NewMirror()
	mirror.PutEvent(*sampleEvent("e1"))
	var sent models.EventPatch
	repo := &mockEventRepo{updateFn: func(ctx context.Context, id string, patch models.EventPatch) error {
		sent = patch
		return nil
	}}
	pub := &recordingPublisher{}
	svc := newTestEventService(repo, mirror, nil, pub, nil)

	title := "Advanced Go"
	club := "debuggers"
	updated, err := svc.UpdateEvent(context.Background(), organizer("org-1"), "e1", models.EventPatch{Title: &title, Club: &club})

	require.NoError(t, err)
	assert.Equal(t, "Advanced Go", updated.Title)
	assert.Equal(t, models.ClubDebuggers, updated.Club)
	require.NotNil(t, sent.Club)
	assert.Equal(t, "DEBUGGERS", *sent.Club)
	assert.Nil(t, sent.Location)

	inMirror, _ := mirror.Event("e1")
	assert.Equal(t, "Advanced Go", inMirror.Title)
	assert.Equal(t, "Lab 3", inMirror.Location)
	assert.Equal(t, []string{KeyEventUpdated}, pub.keys())
}

func TestUpdateEvent_RejectsImmutableFields(t *testing.T) {
	mirror := state.NewMirror()
	mirror.PutEvent(*sampleEvent("e1"))
	svc := newTestEventService(&mockEventRepo{}, mirror, nil, nil, nil)

	other := "org-2"
	_, err := svc.UpdateEvent(context.Background(), organizer("org-1"), "e1", models.EventPatch{OrganizerID: &other})
	assert.True(t, IsValidation(err))

	id := "e2"
	_, err = svc.UpdateEvent(context.Background(), organizer("org-1"), "e1", models.EventPatch{ID: &id})
	assert.True(t, IsValidation(err))

	_, err = svc.UpdateEvent(context.Background(), organizer("org-1"), "e1", models.EventPatch{})
	assert.True(t, IsValidation(err))
}

func TestUpdateEvent_NotOwner(t *testing.T) {
	mirror := state.NewMirror()
	mirror.PutEvent(*sampleEvent("e1"))
	svc := newTestEventService(&mockEventRepo{}, mirror, nil, nil, nil)

	title := "Hijacked"
	_, err := svc.UpdateEvent(context.Background(), organizer("org-2"), "e1", models.EventPatch{Title: &title})

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateEvent_DateOrdering(t *testing.T) {
	mirror := state.NewMirror()
	mirror.PutEvent(*sampleEvent("e1"))
	svc := newTestEventService(&mockEventRepo{}, mirror, nil, nil, nil)

	due := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	_, err := svc.UpdateEvent(context.Background(), organizer("org-1"), "e1", models.EventPatch{DueDate: &due})
	assert.True(t, IsValidation(err))

	date := fixedNow.AddDate(0, 0, -5)
	_, err = svc.UpdateEvent(context.Background(), organizer("org-1"), "e1", models.EventPatch{Date: &date})
	assert.True(t, IsValidation(err))
}

func TestUpdateEvent_CapacityBelowAttendees(t *testing.T) {
	mirror := state.NewMirror()
	e := sampleEvent("e1")
	e.MaxAttendees = 10
	e.CurrentAttendees = 5
	mirror.PutEvent(*e)
	svc := newTestEventService(&mockEventRepo{}, mirror, nil, nil, nil)

	capacity := 4
	_, err := svc.UpdateEvent(context.Background(), organizer("org-1"), "e1", models.EventPatch{MaxAttendees: &capacity})

	assert.True(t, IsValidation(err))
}

func TestDeleteEvent(t *testing.T) {
	mirror := state.NewMirror()
	mirror.PutEvent(*sampleEvent("e1"))
	pub := &recordingPublisher{}
	svc := newTestEventService(&mockEventRepo{}, mirror, nil, pub, nil)

	err := svc.DeleteEvent(context.Background(), organizer("org-2"), "e1")
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.DeleteEvent(context.Background(), organizer("org-1"), "e1")
	require.NoError(t, err)
	_, ok := mirror.Event("e1")
	assert.False(t, ok)
	assert.Equal(t, []string{KeyEventDeleted}, pub.keys())
}

func TestDeleteEvent_StoreNotFound(t *testing.T) {
	mirror := state.NewMirror()
	mirror.PutEvent(*sampleEvent("e1"))
	repo := &mockEventRepo{deleteFn: func(ctx context.Context, id string) error {
		return repository.ErrNotFound
	}}
	svc := newTestEventService(repo, mirror, nil, nil, nil)

	err := svc.DeleteEvent(context.Background(), organizer("org-1"), "e1")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, mirror.Events())
}

func TestAttachImage(t *testing.T) {
	mirror := state.NewMirror()
	mirror.PutEvent(*sampleEvent("e1"))
	var gotKey string
	images := &mockImageStore{uploadFn: func(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
		gotKey = key
		return "https://cdn.example.com/" + key, nil
	}}
	svc := newTestEventService(&mockEventRepo{}, mirror, nil, nil, images)

	event, err := svc.AttachImage(context.Background(), organizer("org-1"), "e1", ImageUpload{
		Filename:    "poster.PNG",
		ContentType: "image/png",
		Size:        512,
		Body:        strings.NewReader("png"),
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(gotKey, "events/e1/"))
	assert.True(t, strings.HasSuffix(gotKey, ".png"))
	require.NotNil(t, event.ImageURL)
	assert.Equal(t, "https://cdn.example.com/"+gotKey, *event.ImageURL)
}

func TestAttachImage_Rejected(t *testing.T) {
	mirror := state.NewMirror()
	mirror.PutEvent(*sampleEvent("e1"))
	images := &mockImageStore{uploadFn: func(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
		t.Fatal("upload must not be called")
		return "", nil
	}}
	svc := newTestEventService(&mockEventRepo{}, mirror, nil, nil, images)

	_, err := svc.AttachImage(context.Background(), organizer("org-1"), "e1", ImageUpload{
		Filename: "doc.pdf", ContentType: "application/pdf", Size: 10, Body: strings.NewReader("x"),
	})
	assert.True(t, IsValidation(err))

	_, err = svc.AttachImage(context.Background(), organizer("org-1"), "e1", ImageUpload{
		Filename: "big.jpg", ContentType: "image/jpeg", Size: 4096, Body: strings.NewReader("x"),
	})
	assert.True(t, IsValidation(err))
}
