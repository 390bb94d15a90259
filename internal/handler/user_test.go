package handler_test

import (
	"net/http"
	"strings"
	"testing"
)

func TestMeWithoutCredential(t *testing.T) {
	e, _ := newServer(t)

	rec := do(t, e, http.MethodGet, "/api/users/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var body map[string]any
	decode(t, rec, &body)
	if _, ok := body["error"]; !ok {
		t.Errorf("body %v has no error field", body)
	}
	for _, k := range []string{"email", "role", "externalId"} {
		if _, ok := body[k]; ok {
			t.Errorf("unauthenticated response leaked %q", k)
		}
	}
}

func TestRegisterAndFetchMe(t *testing.T) {
	e, _ := newServer(t)

	created := registerUser(t, e, "pat-1", "patient", map[string]any{
		"displayName": "Pat",
	})
	if created["role"] != "patient" {
		t.Errorf("role = %v, want patient", created["role"])
	}
	if created["profileComplete"] != false {
		t.Errorf("profileComplete = %v, want false", created["profileComplete"])
	}

	rec := do(t, e, http.MethodGet, "/api/users/me", bearer(t, "pat-1"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: status %d body %s", rec.Code, rec.Body.String())
	}
	var me map[string]any
	decode(t, rec, &me)
	if me["externalId"] != "pat-1" || me["displayName"] != "Pat" {
		t.Errorf("me = %v", me)
	}
}

func TestRegisterValidation(t *testing.T) {
	e, _ := newServer(t)

	cases := []struct {
		name string
		body map[string]any
		want int
	}{
		{"missing external id", map[string]any{"email": "a@b.com", "role": "patient"}, http.StatusBadRequest},
		{"bad email", map[string]any{"externalId": "x-1", "email": "not-an-email", "role": "patient"}, http.StatusBadRequest},
		{"bad role", map[string]any{"externalId": "x-1", "email": "a@b.com", "role": "admin"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, e, http.MethodPost, "/api/users", bearer(t, "x-1"), tc.body)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestRegisterSubjectMismatch(t *testing.T) {
	e, _ := newServer(t)

	// Token says alice, body claims bob's identity.
	rec := do(t, e, http.MethodPost, "/api/users", bearer(t, "alice"), map[string]any{
		"externalId": "bob",
		"email":      "bob@test.com",
		"role":       "patient",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestRegisterDuplicateExternalID(t *testing.T) {
	e, _ := newServer(t)

	registerUser(t, e, "pat-1", "patient", nil)
	rec := do(t, e, http.MethodPost, "/api/users", bearer(t, "pat-1"), map[string]any{
		"externalId": "pat-1",
		"email":      "other@test.com",
		"role":       "doctor",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestUpdateProfile(t *testing.T) {
	e, _ := newServer(t)
	registerUser(t, e, "doc-1", "doctor", nil)

	rec := do(t, e, http.MethodPatch, "/api/users/me", bearer(t, "doc-1"), map[string]any{
		"displayName":     "Dr. Who",
		"specialty":       "cardiology",
		"profileComplete": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var updated map[string]any
	decode(t, rec, &updated)
	if updated["displayName"] != "Dr. Who" || updated["specialty"] != "cardiology" {
		t.Errorf("updated = %v", updated)
	}
	if updated["profileComplete"] != true {
		t.Errorf("profileComplete = %v, want true", updated["profileComplete"])
	}

	// Fields not in the patch keep their value.
	rec = do(t, e, http.MethodPatch, "/api/users/me", bearer(t, "doc-1"), map[string]any{
		"phoneNumber": "555-0100",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("second patch: status %d", rec.Code)
	}
	decode(t, rec, &updated)
	if updated["displayName"] != "Dr. Who" {
		t.Errorf("displayName lost across patch: %v", updated)
	}
}

func TestUpdateProfileRejectsIdentityFields(t *testing.T) {
	e, _ := newServer(t)
	registerUser(t, e, "pat-1", "patient", nil)

	for _, body := range []map[string]any{
		{"role": "doctor"},
		{"email": "new@test.com"},
		{"externalId": "someone-else"},
		{"id": 99},
	} {
		rec := do(t, e, http.MethodPatch, "/api/users/me", bearer(t, "pat-1"), body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("patch %v: status = %d, want 400", body, rec.Code)
		}
	}

	// Role must be unchanged after the rejected attempts.
	rec := do(t, e, http.MethodGet, "/api/users/me", bearer(t, "pat-1"), nil)
	var me map[string]any
	decode(t, rec, &me)
	if me["role"] != "patient" {
		t.Errorf("role = %v after rejected patches, want patient", me["role"])
	}
}

func TestListDoctorsIsPublic(t *testing.T) {
	e, _ := newServer(t)
	registerUser(t, e, "doc-1", "doctor", map[string]any{"displayName": "Dr. A"})
	registerUser(t, e, "doc-2", "doctor", map[string]any{"displayName": "Dr. B"})
	registerUser(t, e, "pat-1", "patient", nil)

	// No Authorization header at all.
	rec := do(t, e, http.MethodGet, "/api/users/doctors", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var doctors []map[string]any
	decode(t, rec, &doctors)
	if len(doctors) != 2 {
		t.Fatalf("got %d doctors, want 2", len(doctors))
	}
	for _, d := range doctors {
		if d["role"] != "doctor" {
			t.Errorf("non-doctor in listing: %v", d)
		}
	}
}

func TestMalformedBearerToken(t *testing.T) {
	e, _ := newServer(t)

	for _, hdr := range []string{
		"Bearer not.a.jwt",
		"Basic abc",
		strings.TrimSpace("Bearer "),
	} {
		rec := do(t, e, http.MethodGet, "/api/users/me", hdr, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", hdr, rec.Code)
		}
	}
}
