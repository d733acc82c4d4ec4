package main

import (
	"net/http"

	"github.com/diewo77/agence/auth"
	"github.com/diewo77/agence/gate"
	"github.com/diewo77/agence/i18n"
	"github.com/diewo77/agence/internal/handlers"
	"github.com/diewo77/agence/internal/obs"
	"github.com/diewo77/agence/internal/policy"
	"github.com/diewo77/agence/internal/ratelimit"
	"github.com/diewo77/agence/view"
	"go.uber.org/zap"
)

// AppDeps are the pieces NewApp assembles into the HTTP handler.
type AppDeps struct {
	Router    *policy.RouterConfig
	Sessions  *auth.Manager
	Metrics   *obs.Metrics
	Limiter   ratelimit.Limiter
	RateLimit int // requests per window on logins and public forms
	// Files serves signed downloads of the local object store; nil when the
	// store hands out its own URLs.
	Files     http.Handler
	Ping      handlers.Pinger
	StaticDir string
	Log       *zap.Logger
}

// App is the main application handler that sets up all routes.
type App struct {
	mux     *http.ServeMux
	deps    AppDeps
	handler http.Handler
}

// NewApp creates a new application with all routes configured.
func NewApp(d AppDeps) *App {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = obs.NewMetrics()
	}
	if d.StaticDir == "" {
		d.StaticDir = "static"
	}
	app := &App{mux: http.NewServeMux(), deps: d}

	// Templates ask the admin gate; espace-client pages do not use "can".
	view.SetCanResolver(func(r *http.Request, resource, action string) bool {
		return d.Router.AdminGate.CanProfile(r.Context(), gate.Action(action), resource)
	})
	app.wireMetrics()
	app.setupRoutes()

	var h http.Handler = app.mux
	h = d.Sessions.Guard(auth.DefaultAreas()...)(h)
	h = withPreferences(h)
	h = securityHeaders(h)
	h = d.Metrics.Instrument(h)
	h = obs.Logging(d.Log)(h)
	h = obs.Recover(d.Log)(h)
	app.handler = h
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

func (a *App) wireMetrics() {
	m, cfg := a.deps.Metrics, a.deps.Router
	cfg.AuthHandler.OnLogin(func(portal, result string) {
		m.Logins.WithLabelValues(portal, result).Inc()
	})
	cfg.Shares.OnEvent(func(event string) {
		m.Shares.WithLabelValues(event).Inc()
	})
	orphan := func() { m.StorageOrphans.Inc() }
	cfg.Documents.OnOrphan(orphan)
	cfg.Clients.OnOrphan(orphan)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	cfg := a.deps.Router
	limit := func(bucket string) func(http.Handler) http.Handler {
		return ratelimit.Middleware(a.deps.Limiter, bucket, a.deps.RateLimit, func(b string) {
			a.deps.Metrics.RateLimited.WithLabelValues(b).Inc()
		})
	}
	login, forms, shares := limit("login"), limit("forms"), limit("share")

	// ─────────────────────────────────────────────────────────────────────────
	// Public site
	// ─────────────────────────────────────────────────────────────────────────
	ph := cfg.PublicHandler
	fh := cfg.FormsHandler

	a.mux.HandleFunc("GET /", ph.Home)
	a.mux.HandleFunc("GET /services", ph.Page("services.html"))
	a.mux.HandleFunc("GET /portfolio", ph.Page("portfolio.html"))
	a.mux.HandleFunc("GET /faq", ph.Page("faq.html"))
	a.mux.HandleFunc("GET /equipe", ph.Page("equipe.html"))
	a.mux.HandleFunc("GET /blog", ph.Blog)
	a.mux.HandleFunc("GET /blog/{slug}", ph.BlogPost)

	a.mux.HandleFunc("GET /devis", fh.QuoteForm)
	a.mux.Handle("POST /devis", forms(http.HandlerFunc(fh.QuoteSubmit)))
	a.mux.Handle("POST /api/devis", forms(http.HandlerFunc(fh.QuoteAPI)))
	a.mux.HandleFunc("GET /contact", fh.ContactForm)
	a.mux.Handle("POST /contact", forms(http.HandlerFunc(fh.Contact)))
	a.mux.Handle("POST /newsletter", forms(http.HandlerFunc(fh.Newsletter)))

	sh := cfg.ShareHandler
	a.mux.Handle("GET /documents/partage/{token}", shares(http.HandlerFunc(sh.View)))
	a.mux.Handle("GET /documents/partage/{token}/telecharger", shares(http.HandlerFunc(sh.Download)))

	// ─────────────────────────────────────────────────────────────────────────
	// Login, logout, signup
	// ─────────────────────────────────────────────────────────────────────────
	ah := cfg.AuthHandler

	a.mux.HandleFunc("GET /admin/login", ah.AdminLoginForm)
	a.mux.Handle("POST /admin/login", login(http.HandlerFunc(ah.AdminLogin)))
	a.mux.HandleFunc("GET /admin/logout", ah.AdminLogout)
	a.mux.HandleFunc("POST /admin/logout", ah.AdminLogout)

	a.mux.HandleFunc("GET /espace-client/login", ah.ClientLoginForm)
	a.mux.Handle("POST /espace-client/login", login(http.HandlerFunc(ah.ClientLogin)))
	a.mux.HandleFunc("GET /espace-client/logout", ah.ClientLogout)
	a.mux.HandleFunc("POST /espace-client/logout", ah.ClientLogout)
	a.mux.HandleFunc("GET /espace-client/inscription", ah.SignupForm)
	a.mux.Handle("POST /espace-client/inscription", login(http.HandlerFunc(ah.Signup)))

	// ─────────────────────────────────────────────────────────────────────────
	// Back-office (admin_session checked by the guard, then role permission)
	// ─────────────────────────────────────────────────────────────────────────
	adm := cfg.AdminHandler
	req := cfg.AdminGate.Require

	a.mux.Handle("GET /admin", req("dashboard", gate.ActionView, adm.Dashboard))
	a.mux.Handle("GET /admin/{$}", req("dashboard", gate.ActionView, adm.Dashboard))

	a.mux.Handle("GET /admin/devis", req("quote", gate.ActionList, adm.Quotes))
	a.mux.Handle("POST /admin/devis/{id}/statut", req("quote", gate.ActionUpdate, adm.QuoteStatus))

	a.mux.Handle("GET /admin/clients", req("client", gate.ActionList, adm.Clients))
	a.mux.Handle("POST /admin/clients", req("client", gate.ActionCreate, adm.CreateClient))
	a.mux.Handle("POST /admin/clients/{id}/delete", req("client", gate.ActionDelete, adm.DeleteClient))

	a.mux.Handle("GET /admin/documents", req("document", gate.ActionList, adm.Documents))
	a.mux.Handle("POST /admin/documents", req("document", gate.ActionCreate, adm.UploadDocument))
	a.mux.Handle("POST /admin/documents/{id}/statut", req("document", gate.ActionUpdate, adm.DocumentStatus))
	a.mux.Handle("POST /admin/documents/{id}/delete", req("document", gate.ActionDelete, adm.DeleteDocument))

	a.mux.Handle("GET /admin/projets", req("project", gate.ActionList, adm.Projects))
	a.mux.Handle("POST /admin/projets", req("project", gate.ActionCreate, adm.CreateProject))
	a.mux.Handle("POST /admin/projets/{id}/statut", req("project", gate.ActionUpdate, adm.ProjectStatus))

	a.mux.Handle("GET /admin/messages", req("contact", gate.ActionList, adm.Messages))
	a.mux.Handle("POST /admin/messages/{id}/lu", req("contact", gate.ActionUpdate, adm.MarkMessageRead))
	a.mux.Handle("GET /admin/newsletter", req("newsletter", gate.ActionList, adm.Newsletter))

	// ─────────────────────────────────────────────────────────────────────────
	// Espace-client (client_session checked by the guard, ownership by services)
	// ─────────────────────────────────────────────────────────────────────────
	eh := cfg.EspaceHandler

	a.mux.HandleFunc("GET /espace-client", eh.Dashboard)
	a.mux.HandleFunc("GET /espace-client/{$}", eh.Dashboard)
	a.mux.HandleFunc("GET /espace-client/documents", eh.Documents)
	a.mux.HandleFunc("GET /espace-client/documents/{id}", eh.Document)
	a.mux.HandleFunc("GET /espace-client/documents/{id}/telecharger", eh.Download)
	a.mux.HandleFunc("POST /espace-client/documents/{id}/partage", eh.Share)
	a.mux.HandleFunc("GET /espace-client/notifications", eh.Notifications)
	a.mux.HandleFunc("POST /espace-client/notifications/{id}/lu", eh.MarkNotificationRead)
	a.mux.HandleFunc("GET /espace-client/projets", eh.Projects)
	a.mux.HandleFunc("GET /espace-client/profil", eh.Profile)
	a.mux.HandleFunc("POST /espace-client/profil", eh.UpdateProfile)
	a.mux.HandleFunc("POST /espace-client/profil/mot-de-passe", eh.ChangePassword)
	a.mux.HandleFunc("GET /espace-client/collaborateurs", eh.Collaborators)
	a.mux.HandleFunc("POST /espace-client/collaborateurs/{id}/delete", eh.RemoveCollaborator)

	a.mux.HandleFunc("GET /api/espace-client/collaborateurs", eh.Collaborators)
	a.mux.Handle("POST /api/espace-client/collaborateurs", forms(http.HandlerFunc(eh.InviteCollaborator)))
	a.mux.HandleFunc("DELETE /api/espace-client/collaborateurs/{id}", eh.RemoveCollaborator)

	// ─────────────────────────────────────────────────────────────────────────
	// Files, ops, static
	// ─────────────────────────────────────────────────────────────────────────
	if a.deps.Files != nil {
		a.mux.Handle("GET /fichiers/{key...}", a.deps.Files)
	}
	hh := handlers.NewHealthHandler(a.deps.Ping, a.deps.Log)
	a.mux.HandleFunc("GET /health", hh.Health)
	a.mux.HandleFunc("GET /healthz", hh.Ready)
	a.mux.Handle("GET /metrics", a.deps.Metrics.Handler())

	a.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(a.deps.StaticDir))))
}

// ─────────────────────────────────────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────────────────────────────────────

const langCookie = "lang"

// withPreferences puts the page language in the context: ?lang= (remembered
// in a cookie), then the cookie, then Accept-Language.
func withPreferences(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		if c, err := r.Cookie(langCookie); err == nil && i18n.Supported(c.Value) {
			lang = c.Value
		}
		if q := r.URL.Query().Get("lang"); i18n.Supported(q) {
			lang = q
			http.SetCookie(w, &http.Cookie{
				Name:     langCookie,
				Value:    lang,
				Path:     "/",
				MaxAge:   86400 * 365,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "same-origin")
		h.Set("Permissions-Policy", "geolocation=(), camera=(), microphone=()")
		h.Set("Content-Security-Policy",
			"default-src 'self'; img-src 'self' data: https://res.cloudinary.com; "+
				"style-src 'self'; script-src 'self'; form-action 'self'; frame-ancestors 'none'; base-uri 'none'")
		next.ServeHTTP(w, r)
	})
}
