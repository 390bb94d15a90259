package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/careconnect/booking-api/internal/config"
	"github.com/careconnect/booking-api/internal/handler"
	"github.com/careconnect/booking-api/internal/repository"
	"github.com/careconnect/booking-api/internal/router"
	"github.com/careconnect/booking-api/internal/utils"
)

const testSecret = "test-secret"

// newServer wires the real route table onto the in-memory store.
// Redis and the event publisher are absent, exactly like a bare
// development run.
func newServer(t *testing.T) (*echo.Echo, *repository.MemoryStore) {
	t.Helper()
	return newServerWithPublisher(t, nil)
}

func newServerWithPublisher(t *testing.T, events handler.EventPublisher) (*echo.Echo, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	e := echo.New()
	router.Register(e, router.Deps{
		Cfg:          config.Config{JWTSecret: testSecret, RequestTimeout: 5 * time.Second},
		Store:        store,
		Users:        handler.NewUserHandler(store, 0),
		Appointments: handler.NewAppointmentHandler(store, events, 0),
		Availability: handler.NewAvailabilityHandler(store, 0),
	})
	return e, store
}

func bearer(t *testing.T, externalID string) string {
	t.Helper()
	tok, err := utils.NewIdentityToken(testSecret, externalID, externalID+"@test.com", time.Hour)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + tok
}

// do issues a JSON request against the server and returns the
// recorder. token may be empty for unauthenticated requests.
func do(t *testing.T, e *echo.Echo, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(bs)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// registerUser creates a directory record through the API and
// returns its decoded response.
func registerUser(t *testing.T, e *echo.Echo, externalID, role string, extra map[string]any) map[string]any {
	t.Helper()
	body := map[string]any{
		"externalId": externalID,
		"email":      externalID + "@test.com",
		"role":       role,
	}
	for k, v := range extra {
		body[k] = v
	}
	rec := do(t, e, http.MethodPost, "/api/users", bearer(t, externalID), body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", externalID, rec.Code, rec.Body.String())
	}
	var out map[string]any
	decode(t, rec, &out)
	return out
}
