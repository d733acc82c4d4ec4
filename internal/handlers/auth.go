package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/agence/auth"
	"github.com/diewo77/agence/httpx"
	"github.com/diewo77/agence/internal/errs"
	"github.com/diewo77/agence/internal/services"
	"go.uber.org/zap"
)

// LoginObserver is told the outcome of every login attempt.
type LoginObserver func(portal, result string)

// AuthHandler serves the login, logout and signup pages of both portals.
type AuthHandler struct {
	auth     *services.AuthService
	clients  *services.ClientService
	sessions *auth.Manager
	log      *zap.Logger
	observe  LoginObserver
}

func NewAuthHandler(authSvc *services.AuthService, clients *services.ClientService, sessions *auth.Manager, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: authSvc, clients: clients, sessions: sessions, log: log, observe: func(string, string) {}}
}

// OnLogin registers the login observer.
func (h *AuthHandler) OnLogin(fn LoginObserver) {
	if fn != nil {
		h.observe = fn
	}
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, errs.ErrInvalidCredentials):
		return "invalid"
	default:
		return "error"
	}
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) readCredentials(w http.ResponseWriter, r *http.Request) (credentials, error) {
	var c credentials
	if httpx.WantsJSON(r) {
		return c, decodeJSON(w, r, &c)
	}
	if err := parseForm(w, r); err != nil {
		return c, errs.Invalid(map[string]string{"body": "invalid_form"})
	}
	c.Username = r.FormValue("username")
	c.Email = r.FormValue("email")
	c.Password = r.FormValue("password")
	return c, nil
}

// loginFailed answers a failed login. Credential errors show the generic
// message on the form; anything else maps through respondError.
func (h *AuthHandler) loginFailed(w http.ResponseWriter, r *http.Request, page string, form map[string]any, err error) {
	if !errors.Is(err, errs.ErrInvalidCredentials) {
		respondError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusUnauthorized, errs.ErrInvalidCredentials.Error(), nil)
		return
	}
	form["Error"] = errs.ErrInvalidCredentials.Error()
	render(w, r, h.log, http.StatusUnauthorized, page, form)
}

func (h *AuthHandler) AdminLoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.AdminFromContext(r.Context()); ok {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	render(w, r, h.log, http.StatusOK, "admin/login.html", nil)
}

func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	c, err := h.readCredentials(w, r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	claims, err := h.auth.LoginAdmin(r.Context(), c.Username, c.Password)
	h.observe("admin", loginResult(err))
	if err != nil {
		h.loginFailed(w, r, "admin/login.html", map[string]any{"Username": c.Username}, err)
		return
	}
	expires, err := h.sessions.IssueAdmin(w, claims)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	h.log.Info("admin logged in", zap.Uint("admin_id", claims.ID), zap.String("role", claims.Role))
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"username": claims.Username, "role": claims.Role, "expires": expires})
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *AuthHandler) AdminLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearAdmin(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) ClientLoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.ClientFromContext(r.Context()); ok {
		http.Redirect(w, r, "/espace-client", http.StatusSeeOther)
		return
	}
	render(w, r, h.log, http.StatusOK, "client/login.html", withFlash(r, nil))
}

func (h *AuthHandler) ClientLogin(w http.ResponseWriter, r *http.Request) {
	c, err := h.readCredentials(w, r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	claims, err := h.auth.LoginClient(r.Context(), c.Email, c.Password)
	h.observe("client", loginResult(err))
	if err != nil {
		h.loginFailed(w, r, "client/login.html", map[string]any{"Email": c.Email}, err)
		return
	}
	h.startClientSession(w, r, claims, "")
}

func (h *AuthHandler) startClientSession(w http.ResponseWriter, r *http.Request, claims auth.ClientClaims, flash string) {
	expires, err := h.sessions.IssueClient(w, claims)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"email": claims.Email, "entreprise": claims.Entreprise, "expires": expires})
		return
	}
	redirectOK(w, r, "/espace-client", flash)
}

func (h *AuthHandler) ClientLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearClient(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.log, http.StatusOK, "client/inscription.html", map[string]any{"Form": services.NewClient{}})
}

// Signup creates an account and opens its session.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in services.NewClient
	if httpx.WantsJSON(r) {
		if err := decodeJSON(w, r, &in); err != nil {
			respondError(w, r, h.log, err)
			return
		}
	} else {
		if err := parseForm(w, r); err != nil {
			respondError(w, r, h.log, errs.Invalid(map[string]string{"body": "invalid_form"}))
			return
		}
		in = services.NewClient{
			Email:         r.FormValue("email"),
			Password:      r.FormValue("password"),
			NomEntreprise: r.FormValue("nom_entreprise"),
			NomContact:    r.FormValue("nom_contact"),
			Telephone:     r.FormValue("telephone"),
		}
		if in.Password != r.FormValue("password_confirm") {
			render(w, r, h.log, http.StatusBadRequest, "client/inscription.html", map[string]any{
				"Form":   in,
				"Errors": map[string]string{"password_confirm": "password_mismatch"},
			})
			return
		}
	}

	c, err := h.clients.Signup(r.Context(), in)
	if err != nil {
		if httpx.WantsJSON(r) {
			respondError(w, r, h.log, err)
			return
		}
		data := map[string]any{"Form": in}
		switch ve, ok := errs.AsValidation(err); {
		case ok:
			data["Errors"] = ve.Violations
		case errors.Is(err, errs.ErrAlreadyExists):
			data["Errors"] = map[string]string{"email": "already_exists"}
		default:
			respondError(w, r, h.log, err)
			return
		}
		render(w, r, h.log, statusFor(err), "client/inscription.html", data)
		return
	}
	h.startClientSession(w, r, auth.ClientClaims{ID: c.ID, Email: c.Email, Entreprise: c.NomEntreprise}, "account_created")
}
