package handlers_test

import (
	"net/http"
	"testing"

	"github.com/scifair/fairjudge/internal/auth"
)

func TestHandleLogin_Success(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodPost, "/api/admin/login", map[string]string{"password": "test-password"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName && c.Value != "" {
			found = true
			if !c.HttpOnly {
				t.Error("expected HttpOnly session cookie")
			}
		}
	}
	if !found {
		t.Error("expected a session cookie")
	}
}

func TestHandleLogin_WrongPassword(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodPost, "/api/admin/login", map[string]string{"password": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestHandleLogin_EmptyBody(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodPost, "/api/admin/login", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty body, got %d", rec.Code)
	}
}

func TestHandleLogout_InvalidatesSession(t *testing.T) {
	setup := newTestSetup(t)
	cookie := setup.login(t)

	rec := setup.do(t, http.MethodGet, "/api/admin/judges", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected authenticated request to succeed, got %d", rec.Code)
	}

	rec = setup.do(t, http.MethodPost, "/api/admin/logout", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout failed: %d", rec.Code)
	}

	rec = setup.do(t, http.MethodGet, "/api/admin/judges", nil, cookie)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestHandleAuthCheck(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodGet, "/api/admin/session", nil)
	var response map[string]bool
	decodeBody(t, rec, &response)
	if response["authenticated"] {
		t.Error("expected unauthenticated without a cookie")
	}

	cookie := setup.login(t)
	rec = setup.do(t, http.MethodGet, "/api/admin/session", nil, cookie)
	decodeBody(t, rec, &response)
	if !response["authenticated"] {
		t.Error("expected authenticated with a session cookie")
	}
}
