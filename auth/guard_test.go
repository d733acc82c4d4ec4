package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func guarded(m *Manager) http.Handler {
	return m.Guard(DefaultAreas()...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, ok := ClientFromContext(r.Context()); ok {
			w.Header().Set("X-Client", c.Email)
		}
		if c, ok := AdminFromContext(r.Context()); ok {
			w.Header().Set("X-Admin", c.Username)
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestGuard_Redirects(t *testing.T) {
	h := guarded(NewManager("guard-secret-guard-secret", false))
	tests := []struct {
		path     string
		status   int
		location string
	}{
		{"/admin", http.StatusSeeOther, "/admin/login"},
		{"/admin/clients", http.StatusSeeOther, "/admin/login"},
		{"/admin/login", http.StatusOK, ""},
		{"/espace-client", http.StatusSeeOther, "/espace-client/login"},
		{"/espace-client/documents/abc", http.StatusSeeOther, "/espace-client/login"},
		{"/espace-client/login", http.StatusOK, ""},
		{"/espace-client/inscription", http.StatusOK, ""},
		{"/api/espace-client/collaborateurs", http.StatusUnauthorized, ""},
		{"/administration", http.StatusOK, ""},
		{"/", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.status {
				t.Fatalf("status %d want %d", rec.Code, tt.status)
			}
			if tt.location != "" && rec.Header().Get("Location") != tt.location {
				t.Fatalf("location %q", rec.Header().Get("Location"))
			}
		})
	}
}

func TestGuard_AttachesClaims(t *testing.T) {
	m := NewManager("guard-secret-guard-secret", false)
	rec := httptest.NewRecorder()
	_, _ = m.IssueClient(rec, ClientClaims{ID: 4, Email: "c@d.fr"})
	ck := cookieNamed(t, rec, ClientCookie)

	req := httptest.NewRequest(http.MethodGet, "/espace-client/documents", nil)
	req.AddCookie(ck)
	out := httptest.NewRecorder()
	guarded(m).ServeHTTP(out, req)
	if out.Code != http.StatusOK || out.Header().Get("X-Client") != "c@d.fr" {
		t.Fatalf("status %d client %q", out.Code, out.Header().Get("X-Client"))
	}

	// a client session does not open the admin area
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(ck)
	out = httptest.NewRecorder()
	guarded(m).ServeHTTP(out, req)
	if out.Code != http.StatusSeeOther {
		t.Fatalf("client cookie reached admin: %d", out.Code)
	}
}

func TestGuard_ExpiredCookieIsClearedAndRedirected(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	issuer := NewManager("guard-secret-guard-secret", false).WithClock(fixedClock(now.Add(-AdminTTL - time.Second)))
	rec := httptest.NewRecorder()
	_, _ = issuer.IssueAdmin(rec, AdminClaims{ID: 1, Username: "root"})
	ck := cookieNamed(t, rec, AdminCookie)

	m := NewManager("guard-secret-guard-secret", false).WithClock(fixedClock(now))
	req := httptest.NewRequest(http.MethodGet, "/admin/devis", nil)
	req.AddCookie(ck)
	out := httptest.NewRecorder()
	guarded(m).ServeHTTP(out, req)
	if out.Code != http.StatusSeeOther || out.Header().Get("Location") != "/admin/login" {
		t.Fatalf("status %d location %q", out.Code, out.Header().Get("Location"))
	}
	cleared := cookieNamed(t, out, AdminCookie)
	if cleared.MaxAge >= 0 {
		t.Fatal("stale cookie should be cleared")
	}
}
