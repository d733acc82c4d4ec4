package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func cookieNamed(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func fixedClock(ts time.Time) func() time.Time { return func() time.Time { return ts } }

func TestIssueAdmin_CookieAttributes(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := NewManager("test-secret-0123456789abcdef", true).WithClock(fixedClock(now))
	rec := httptest.NewRecorder()
	exp, err := m.IssueAdmin(rec, AdminClaims{ID: 7, Username: "root", Role: "admin"})
	if err != nil {
		t.Fatal(err)
	}
	if !exp.Equal(now.Add(24 * time.Hour)) {
		t.Fatalf("expiry %v", exp)
	}
	c := cookieNamed(t, rec, AdminCookie)
	if !c.HttpOnly || !c.Secure || c.Path != "/" {
		t.Fatalf("bad attributes %+v", c)
	}
	if d := c.Expires.Sub(now.Add(24 * time.Hour)); d < -time.Second || d > time.Second {
		t.Fatalf("cookie expires %v", c.Expires)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(c)
	claims, ok := m.ParseAdmin(req)
	if !ok || claims.ID != 7 || claims.Username != "root" || claims.Role != "admin" {
		t.Fatalf("parse: %v %+v", ok, claims)
	}
	if !claims.Expires().Equal(exp) {
		t.Fatalf("claims expiry %v", claims.Expires())
	}
}

func TestIssueClient_SevenDays(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := NewManager("s3cret-s3cret-s3cret-s3cret", false).WithClock(fixedClock(now))
	rec := httptest.NewRecorder()
	exp, err := m.IssueClient(rec, ClientClaims{ID: 3, Email: "a@b.com", Entreprise: "ACME"})
	if err != nil {
		t.Fatal(err)
	}
	if !exp.Equal(now.Add(7 * 24 * time.Hour)) {
		t.Fatalf("expiry %v", exp)
	}
	if c := cookieNamed(t, rec, ClientCookie); c.Secure {
		t.Fatal("secure must follow configuration")
	}
}

func TestParse_ExpiredOneSecondAgo(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	secret := "s3cret-s3cret-s3cret-s3cret"
	rec := httptest.NewRecorder()
	if _, err := NewManager(secret, false).WithClock(fixedClock(issuedAt)).IssueAdmin(rec, AdminClaims{ID: 1, Username: "a"}); err != nil {
		t.Fatal(err)
	}
	c := cookieNamed(t, rec, AdminCookie)

	later := NewManager(secret, false).WithClock(fixedClock(issuedAt.Add(AdminTTL + time.Second)))
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(c)
	if _, ok := later.ParseAdmin(req); ok {
		t.Fatal("expired session must be rejected")
	}
}

func TestParse_FailsClosed(t *testing.T) {
	m := NewManager("secret-one-secret-one-secret", false)
	other := NewManager("secret-two-secret-two-secret", false)

	rec := httptest.NewRecorder()
	_, _ = other.IssueAdmin(rec, AdminClaims{ID: 1})
	forged := cookieNamed(t, rec, AdminCookie)

	rec = httptest.NewRecorder()
	_, _ = m.IssueClient(rec, ClientClaims{ID: 1})
	clientTok := cookieNamed(t, rec, ClientCookie).Value

	rec = httptest.NewRecorder()
	_, _ = m.IssueAdmin(rec, AdminClaims{ID: 1})
	good := cookieNamed(t, rec, AdminCookie).Value
	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	for name, value := range map[string]string{
		"empty":           "",
		"garbage":         "not-a-token",
		"other secret":    forged.Value,
		"client audience": clientTok,
		"tampered":        tampered,
		"alg none":        "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJpZCI6MX0.",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.AddCookie(&http.Cookie{Name: AdminCookie, Value: value})
			if _, ok := m.ParseAdmin(req); ok {
				t.Fatal("expected rejection")
			}
		})
	}
}

func TestIssue_RequiresID(t *testing.T) {
	m := NewManager("x", false)
	if _, err := m.IssueAdmin(httptest.NewRecorder(), AdminClaims{}); err == nil {
		t.Fatal("expected error")
	}
	if _, err := m.IssueClient(httptest.NewRecorder(), ClientClaims{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestClear(t *testing.T) {
	rec := httptest.NewRecorder()
	NewManager("x", false).ClearClient(rec)
	c := cookieNamed(t, rec, ClientCookie)
	if c.Value != "" || c.MaxAge >= 0 {
		t.Fatalf("cookie not cleared: %+v", c)
	}
}
