package auth

import (
	"net/http"
	"slices"
	"strings"

	"github.com/diewo77/agence/httpx"
)

// Portal identifies which session cookie protects an area.
type Portal int

const (
	PortalAdmin Portal = iota + 1
	PortalClient
)

// Area is a protected path prefix. Requests under Prefix (except Exempt paths)
// need a valid session of Portal; failures redirect to Login, or answer 401
// JSON when JSON is set.
type Area struct {
	Prefix string
	Portal Portal
	Login  string
	Exempt []string
	JSON   bool
}

// DefaultAreas are the protected areas of the site.
func DefaultAreas() []Area {
	return []Area{
		{Prefix: "/admin", Portal: PortalAdmin, Login: "/admin/login", Exempt: []string{"/admin/login", "/admin/logout"}},
		{
			Prefix: "/espace-client",
			Portal: PortalClient,
			Login:  "/espace-client/login",
			Exempt: []string{"/espace-client/login", "/espace-client/logout", "/espace-client/inscription"},
		},
		{Prefix: "/api/espace-client", Portal: PortalClient, JSON: true},
	}
}

func (a Area) covers(path string) bool {
	if path != a.Prefix && !strings.HasPrefix(path, a.Prefix+"/") {
		return false
	}
	return !slices.Contains(a.Exempt, strings.TrimSuffix(path, "/"))
}

// Guard attaches valid session claims to every request context and rejects
// requests to a protected area that lack them.
func (m *Manager) Guard(areas ...Area) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			admin, adminOK := m.ParseAdmin(r)
			if adminOK {
				ctx = WithAdmin(ctx, admin)
			}
			client, clientOK := m.ParseClient(r)
			if clientOK {
				ctx = WithClient(ctx, client)
			}
			r = r.WithContext(ctx)

			for _, a := range areas {
				if !a.covers(r.URL.Path) {
					continue
				}
				ok := (a.Portal == PortalAdmin && adminOK) || (a.Portal == PortalClient && clientOK)
				if ok {
					break
				}
				m.reject(w, r, a)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m *Manager) reject(w http.ResponseWriter, r *http.Request, a Area) {
	name := AdminCookie
	if a.Portal == PortalClient {
		name = ClientCookie
	}
	if _, err := r.Cookie(name); err == nil {
		m.clear(w, name)
	}
	if a.JSON || a.Login == "" {
		httpx.JSONError(w, http.StatusUnauthorized, ErrMsgUnauthenticated, nil)
		return
	}
	http.Redirect(w, r, a.Login, http.StatusSeeOther)
}

// ErrMsgUnauthenticated is the body of a 401 from a JSON area.
const ErrMsgUnauthenticated = "Non authentifié"
