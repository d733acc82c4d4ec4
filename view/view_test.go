package view

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diewo77/agence/auth"
	"github.com/diewo77/agence/i18n"
)

func TestRenderStatus_LayoutAndLanguage(t *testing.T) {
	for _, tc := range []struct {
		lang string
		want string
	}{
		{"fr", "Accueil"},
		{"en", "Home"},
	} {
		t.Run(tc.lang, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/missing", nil)
			r = r.WithContext(i18n.WithLang(r.Context(), tc.lang))
			rec := httptest.NewRecorder()
			if err := RenderStatus(rec, r, http.StatusNotFound, "error.html", map[string]any{"Status": 404, "Message": "<b>absent</b>"}); err != nil {
				t.Fatal(err)
			}
			if rec.Code != http.StatusNotFound {
				t.Fatalf("status %d", rec.Code)
			}
			body := rec.Body.String()
			if !strings.Contains(body, tc.want) {
				t.Fatalf("missing %q in %s", tc.want, body)
			}
			if strings.Contains(body, "<b>absent</b>") {
				t.Fatal("message not escaped")
			}
		})
	}
}

func TestRender_AdminNavigationFollowsPermissions(t *testing.T) {
	prev := canResolver
	t.Cleanup(func() { canResolver = prev })
	SetCanResolver(func(_ *http.Request, resource, _ string) bool { return resource != "newsletter" })

	r := httptest.NewRequest(http.MethodGet, "/admin", nil)
	r = r.WithContext(auth.WithAdmin(r.Context(), &auth.AdminClaims{ID: 1, Username: "eva", Role: "editeur"}))
	rec := httptest.NewRecorder()
	if err := Render(rec, r, "error.html", map[string]any{"Status": 403}); err != nil {
		t.Fatal(err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `href="/admin/clients"`) || !strings.Contains(body, "eva") {
		t.Fatalf("admin header not rendered: %s", body)
	}
	if strings.Contains(body, `href="/admin/newsletter"`) {
		t.Fatal("newsletter link shown without permission")
	}
}

func TestRender_UnknownPage(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := Render(httptest.NewRecorder(), r, "nope.html", nil); err == nil {
		t.Fatal("expected error for missing template")
	}
}

func TestHumanSize(t *testing.T) {
	cases := map[int64]string{512: "512 o", 2048: "2 Ko", 5 << 20: "5.0 Mo"}
	for n, want := range cases {
		if got := humanSize(n); got != want {
			t.Errorf("humanSize(%d) = %q, want %q", n, got, want)
		}
	}
}
