package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/i20tominaga/resident-app/internal/event"
)

func validCreateEvent() CreateEventRequest {
	return CreateEventRequest{
		BuildingID:     "bldg-1",
		Title:          "Elevator inspection",
		Type:           "inspection",
		StartDate:      "2026-09-10",
		EndDate:        "2026-09-12",
		StartTime:      "09:00",
		EndTime:        "17:00",
		AffectedFloors: []int{3, 4},
		NoiseLevel:     "medium",
	}
}

func TestCreateEvent(t *testing.T) {
	env := newTestEnv(t)
	staff := env.addUser(t, staffUser("usr-staff"), "correct-horse")

	rec := env.do(t, http.MethodPost, "/events", env.token(t, staff), validCreateEvent())
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var ev event.ConstructionEvent
	decodeBody(t, rec, &ev)
	if ev.ID == "" {
		t.Error("expected generated event ID")
	}
	if ev.Status != event.StatusScheduled {
		t.Errorf("status = %q, want scheduled", ev.Status)
	}
	if !ev.StartDate.Equal(time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start date = %v", ev.StartDate)
	}

	stored, err := env.events.GetByID(context.Background(), ev.ID)
	if err != nil {
		t.Fatalf("created event not stored: %v", err)
	}
	if stored.Title != "Elevator inspection" {
		t.Errorf("stored title = %q", stored.Title)
	}
}

func TestCreateEventEscapesTitle(t *testing.T) {
	env := newTestEnv(t)
	staff := env.addUser(t, staffUser("usr-staff"), "correct-horse")

	req := validCreateEvent()
	req.Title = "<script>alert(1)</script>"
	rec := env.do(t, http.MethodPost, "/events", env.token(t, staff), req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var ev event.ConstructionEvent
	decodeBody(t, rec, &ev)
	if ev.Title != "&lt;script&gt;alert(1)&lt;/script&gt;" {
		t.Errorf("title = %q, want HTML-escaped", ev.Title)
	}
}

func TestCreateEventValidation(t *testing.T) {
	env := newTestEnv(t)
	staff := env.addUser(t, staffUser("usr-staff"), "correct-horse")
	token := env.token(t, staff)

	tests := []struct {
		name     string
		mutate   func(*CreateEventRequest)
		wantCode string
	}{
		{"short title", func(r *CreateEventRequest) { r.Title = "ab" }, ErrCodeValidation},
		{"missing building", func(r *CreateEventRequest) { r.BuildingID = "" }, ErrCodeValidation},
		{"missing dates", func(r *CreateEventRequest) { r.StartDate, r.EndDate = "", "" }, ErrCodeValidation},
		{"malformed date", func(r *CreateEventRequest) { r.StartDate = "10/09/2026" }, ErrCodeValidation},
		{"unknown noise level", func(r *CreateEventRequest) { r.NoiseLevel = "deafening" }, ErrCodeValidation},
		{"end before start", func(r *CreateEventRequest) {
			r.StartDate, r.EndDate = "2026-09-12", "2026-09-10"
		}, ErrCodeInvalidTimeRange},
		{"start time after end time", func(r *CreateEventRequest) {
			r.StartTime, r.EndTime = "18:00", "09:00"
		}, ErrCodeInvalidTimeRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateEvent()
			tt.mutate(&req)
			rec := env.do(t, http.MethodPost, "/events", token, req)
			assertErrorResponse(t, rec, http.StatusBadRequest, tt.wantCode)
		})
	}
}

func TestCreateEventStaffOnly(t *testing.T) {
	env := newTestEnv(t)
	resident := env.addUser(t, residentOnFloor("usr-res", 3), "correct-horse")

	rec := env.do(t, http.MethodPost, "/events", env.token(t, resident), validCreateEvent())
	assertErrorResponse(t, rec, http.StatusForbidden, ErrCodeForbidden)
}

func TestListEvents(t *testing.T) {
	env := newTestEnv(t)
	resident := env.addUser(t, residentOnFloor("usr-res", 3), "correct-horse")

	start := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	mustInsertEvent(t, env, scheduledEvent("evt-1", start, start.AddDate(0, 0, 2)))
	mustInsertEvent(t, env, scheduledEvent("evt-2", start.AddDate(0, 0, 5), start.AddDate(0, 0, 6)))

	rec := env.do(t, http.MethodGet, "/events?building_id=bldg-1", env.token(t, resident), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Events []event.ConstructionEvent `json:"events"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Events) != 2 {
		t.Errorf("got %d events, want 2", len(resp.Events))
	}

	rec = env.do(t, http.MethodGet, "/events", env.token(t, resident), nil)
	assertErrorResponse(t, rec, http.StatusBadRequest, ErrCodeValidation)
}

func TestGetEvent(t *testing.T) {
	env := newTestEnv(t)
	resident := env.addUser(t, residentOnFloor("usr-res", 3), "correct-horse")
	token := env.token(t, resident)

	start := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	mustInsertEvent(t, env, scheduledEvent("evt-1", start, start.AddDate(0, 0, 2)))

	rec := env.do(t, http.MethodGet, "/events/evt-1", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var ev event.ConstructionEvent
	decodeBody(t, rec, &ev)
	if ev.ID != "evt-1" {
		t.Errorf("id = %q", ev.ID)
	}

	rec = env.do(t, http.MethodGet, "/events/evt-missing", token, nil)
	assertErrorResponse(t, rec, http.StatusNotFound, ErrCodeNotFound)
}

func TestCancelEvent(t *testing.T) {
	env := newTestEnv(t)
	staff := env.addUser(t, staffUser("usr-staff"), "correct-horse")
	token := env.token(t, staff)

	start := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	mustInsertEvent(t, env, scheduledEvent("evt-1", start, start.AddDate(0, 0, 2)))

	rec := env.do(t, http.MethodPost, "/events/evt-1/cancel", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var ev event.ConstructionEvent
	decodeBody(t, rec, &ev)
	if ev.Status != event.StatusCancelled {
		t.Errorf("status = %q, want cancelled", ev.Status)
	}

	// Cancelling twice conflicts.
	rec = env.do(t, http.MethodPost, "/events/evt-1/cancel", token, nil)
	assertErrorResponse(t, rec, http.StatusConflict, ErrCodeEventCancelled)

	rec = env.do(t, http.MethodPost, "/events/evt-missing/cancel", token, nil)
	assertErrorResponse(t, rec, http.StatusNotFound, ErrCodeNotFound)
}

func TestNotifyEvent(t *testing.T) {
	env := newTestEnv(t)
	staff := env.addUser(t, staffUser("usr-staff"), "correct-horse")
	token := env.token(t, staff)

	// A resident on an affected floor should receive the broadcast.
	resident := env.addUser(t, residentOnFloor("usr-res", 3), "correct-horse")

	start := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	ev := scheduledEvent("evt-1", start, start.AddDate(0, 0, 2))
	ev.AffectedFloors = []int{3}
	ev.NoiseLevel = event.NoiseHigh
	mustInsertEvent(t, env, ev)

	rec := env.do(t, http.MethodPost, "/events/evt-1/notify", token, NotifyEventRequest{
		Type:    "schedule_change",
		Title:   "Schedule moved",
		Message: "Work now starts one hour earlier.",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Notified int `json:"notified"`
	}
	decodeBody(t, rec, &resp)
	if resp.Notified != 1 {
		t.Errorf("notified = %d, want 1", resp.Notified)
	}

	stored, err := env.notifications.ListByUser(context.Background(), resident.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("got %d notifications, want 1", len(stored))
	}
	if stored[0].Title != "Schedule moved" {
		t.Errorf("title = %q", stored[0].Title)
	}
}

func TestNotifyEventValidation(t *testing.T) {
	env := newTestEnv(t)
	staff := env.addUser(t, staffUser("usr-staff"), "correct-horse")
	token := env.token(t, staff)

	start := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	mustInsertEvent(t, env, scheduledEvent("evt-1", start, start.AddDate(0, 0, 2)))

	rec := env.do(t, http.MethodPost, "/events/evt-1/notify", token, NotifyEventRequest{
		Type: "schedule_change",
	})
	assertErrorResponse(t, rec, http.StatusBadRequest, ErrCodeValidation)

	rec = env.do(t, http.MethodPost, "/events/evt-1/notify", token, NotifyEventRequest{
		Type:    "carrier_pigeon",
		Title:   "t",
		Message: "m",
	})
	assertErrorResponse(t, rec, http.StatusBadRequest, ErrCodeValidation)
}

func mustInsertEvent(t *testing.T, env *testEnv, ev *event.ConstructionEvent) {
	t.Helper()
	if err := env.events.Insert(context.Background(), ev); err != nil {
		t.Fatalf("Insert event: %v", err)
	}
}
