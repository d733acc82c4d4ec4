package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONError(rec, http.StatusBadRequest, "validation_failed", map[string]string{"email": "invalid_email"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type %q", ct)
	}
	want := `{"error":"validation_failed","details":{"email":"invalid_email"}}`
	if rec.Body.String() != want {
		t.Fatalf("body %s", rec.Body.String())
	}
}

func TestJSON_EncodeFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, map[string]any{"ch": make(chan int)})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestWantsJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	if !WantsJSON(r) {
		t.Fatal("json body should want json")
	}
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept", "text/html,application/json")
	if WantsJSON(r) {
		t.Fatal("browser accept header should prefer html")
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Email string `json:"email"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.com"}`))
	if err := DecodeJSON(r, &dst); err != nil || dst.Email != "a@b.com" {
		t.Fatalf("decode: %v %q", err, dst.Email)
	}
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.com","admin":true}`))
	if err := DecodeJSON(r, &dst); err == nil {
		t.Fatal("unknown field should fail")
	}
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"x@y.z"} {}`))
	if err := DecodeJSON(r, &dst); err == nil {
		t.Fatal("trailing data should fail")
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	if got := ClientIP(r); got != "10.0.0.1" {
		t.Fatalf("got %q", got)
	}
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := ClientIP(r); got != "203.0.113.7" {
		t.Fatalf("got %q", got)
	}
}
