package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/i20tominaga/resident-app/internal/auth"
	"github.com/i20tominaga/resident-app/internal/building"
	"github.com/i20tominaga/resident-app/internal/event"
	"github.com/i20tominaga/resident-app/internal/faq"
	"github.com/i20tominaga/resident-app/internal/middleware"
	"github.com/i20tominaga/resident-app/internal/notification"
	"github.com/i20tominaga/resident-app/internal/preference"
	"github.com/i20tominaga/resident-app/internal/relevance"
)

const apiTestSecret = "wJ6Qk8Qn1v9Qw1Zb2l8Qk9J3p6Qk8Qn1v9Qw1Zb2l8Qk="

// testEnv bundles the in-memory stores and a fully wired router.
type testEnv struct {
	users         *building.InMemoryUserRepository
	events        *event.InMemoryRepository
	notifications *notification.InMemoryRepository
	faqs          *faq.InMemoryRepository
	prefs         *preference.InMemoryStore
	jwt           *auth.JWTService
	handler       http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		users:         building.NewInMemoryUserRepository(),
		events:        event.NewInMemoryRepository(),
		notifications: notification.NewInMemoryRepository(),
		faqs:          faq.NewInMemoryRepository(),
		prefs:         preference.NewInMemoryStore(),
		jwt:           auth.NewJWTService(apiTestSecret),
	}
	notifier := notification.NewService(env.users, env.prefs, env.notifications, relevance.DefaultWeights())

	env.handler = NewRouter(RouterConfig{
		Users:         env.users,
		Events:        env.events,
		Notifications: env.notifications,
		FAQs:          env.faqs,
		Prefs:         env.prefs,
		JWT:           env.jwt,
		Notifier:      notifier,
		CORS:          middleware.CORSConfig{},
	})
	return env
}

// addUser inserts a user with a known password and returns it.
func (env *testEnv) addUser(t *testing.T, user *building.User, password string) *building.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	user.PasswordHash = hash
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if err := env.users.Insert(context.Background(), user); err != nil {
		t.Fatalf("Insert user: %v", err)
	}
	return user
}

func (env *testEnv) token(t *testing.T, user *building.User) string {
	t.Helper()
	token, err := env.jwt.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

// do runs a request through the router, optionally authenticated.
func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body: %v, body: %s", err, rec.Body.String())
	}
}

// assertErrorResponse checks the status and error code of an error envelope.
func assertErrorResponse(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int, wantCode string) {
	t.Helper()
	if rec.Code != wantStatus {
		t.Fatalf("status = %d, want %d, body: %s", rec.Code, wantStatus, rec.Body.String())
	}
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	if resp.Error.Code != wantCode {
		t.Errorf("error code = %q, want %q", resp.Error.Code, wantCode)
	}
}

func intPtr(n int) *int { return &n }

func residentOnFloor(id string, floor int) *building.User {
	return &building.User{
		ID:          id,
		Email:       id + "@example.com",
		DisplayName: "Resident " + id,
		Role:        building.RoleResident,
		BuildingID:  "bldg-1",
		FloorNumber: intPtr(floor),
	}
}

func staffUser(id string) *building.User {
	return &building.User{
		ID:          id,
		Email:       id + "@example.com",
		DisplayName: "Staff " + id,
		Role:        building.RoleStaff,
		BuildingID:  "bldg-1",
	}
}

func scheduledEvent(id string, start, end time.Time) *event.ConstructionEvent {
	return &event.ConstructionEvent{
		ID:         id,
		BuildingID: "bldg-1",
		Title:      "Work " + id,
		Type:       event.TypeConstruction,
		Status:     event.StatusScheduled,
		StartDate:  start,
		EndDate:    end,
		NoiseLevel: event.NoiseLow,
	}
}
