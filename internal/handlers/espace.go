package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/diewo77/agence/auth"
	"github.com/diewo77/agence/httpx"
	"github.com/diewo77/agence/i18n"
	"github.com/diewo77/agence/internal/errs"
	"github.com/diewo77/agence/internal/services"
	"go.uber.org/zap"
)

// EspaceServices groups what the espace-client needs.
type EspaceServices struct {
	Stats         *services.StatsService
	Clients       *services.ClientService
	Docs          *services.DocumentService
	Shares        *services.ShareService
	Notifications *services.NotificationService
	Projects      *services.ProjectService
	Collaborators *services.CollaboratorService
}

// EspaceHandler serves the espace-client. Every service call is scoped to the
// client id of the session.
type EspaceHandler struct {
	svc EspaceServices
	log *zap.Logger
}

func NewEspaceHandler(svc EspaceServices, log *zap.Logger) *EspaceHandler {
	return &EspaceHandler{svc: svc, log: log}
}

func (h *EspaceHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats.Client(r.Context(), auth.ClientID(r.Context()))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	render(w, r, h.log, http.StatusOK, "client/dashboard.html", withFlash(r, map[string]any{"Stats": stats}))
}

func (h *EspaceHandler) Documents(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.Docs.ListForClient(r.Context(), auth.ClientID(r.Context()))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, docs)
		return
	}
	render(w, r, h.log, http.StatusOK, "client/documents.html", withFlash(r, map[string]any{"Documents": docs}))
}

func (h *EspaceHandler) Document(w http.ResponseWriter, r *http.Request) {
	h.renderDocument(w, r, http.StatusOK, nil)
}

func (h *EspaceHandler) renderDocument(w http.ResponseWriter, r *http.Request, status int, extra map[string]any) {
	ctx := r.Context()
	clientID := auth.ClientID(ctx)
	doc, err := h.svc.Docs.Get(ctx, clientID, r.PathValue("id"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) && status == http.StatusOK {
		httpx.JSON(w, http.StatusOK, doc)
		return
	}
	shares, err := h.svc.Shares.ListForDocument(ctx, clientID, doc.ID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	data := withFlash(r, map[string]any{
		"Document":    doc,
		"Shares":      shares,
		"DefaultDays": services.DefaultShareDays,
		"MaxDays":     services.MaxShareDays,
	})
	for k, v := range extra {
		data[k] = v
	}
	render(w, r, h.log, status, "client/document.html", data)
}

// Download redirects to a signed URL valid for one minute.
func (h *EspaceHandler) Download(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Docs.DownloadURL(r.Context(), auth.ClientID(r.Context()), r.PathValue("id"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]string{"url": u})
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, u, http.StatusSeeOther)
}

// Share creates a share link. The token is only ever shown in this response.
func (h *EspaceHandler) Share(w http.ResponseWriter, r *http.Request) {
	var days int
	if httpx.WantsJSON(r) {
		var body struct {
			ExpirationDays int `json:"expiration_days"`
		}
		if err := decodeJSON(w, r, &body); err != nil {
			respondError(w, r, h.log, err)
			return
		}
		days = body.ExpirationDays
	} else {
		if err := parseForm(w, r); err != nil {
			respondError(w, r, h.log, errs.Invalid(map[string]string{"body": "invalid_form"}))
			return
		}
		if raw := r.FormValue("expiration_days"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				respondError(w, r, h.log, errs.Invalid(map[string]string{"expiration_days": "out_of_range"}))
				return
			}
			days = n
		}
	}

	link, err := h.svc.Shares.Create(r.Context(), auth.ClientID(r.Context()), r.PathValue("id"), days)
	if err != nil {
		if ve, ok := errs.AsValidation(err); ok && !httpx.WantsJSON(r) {
			h.renderDocument(w, r, http.StatusBadRequest, map[string]any{"Errors": ve.Violations})
			return
		}
		respondError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, link)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	h.renderDocument(w, r, http.StatusCreated, map[string]any{
		"ShareLink": link,
		"Flash":     i18n.T(lang(r), "share_created"),
	})
}

func (h *EspaceHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Notifications.List(r.Context(), auth.ClientID(r.Context()))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, list)
		return
	}
	render(w, r, h.log, http.StatusOK, "client/notifications.html", withFlash(r, map[string]any{"Notifications": list}))
}

func (h *EspaceHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "id")
	if !ok {
		respondError(w, r, h.log, errs.ErrNotFound)
		return
	}
	if err := h.svc.Notifications.MarkRead(r.Context(), auth.ClientID(r.Context()), id); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]bool{"est_lu": true})
		return
	}
	redirectOK(w, r, "/espace-client/notifications", "notification_read")
}

func (h *EspaceHandler) Projects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.svc.Projects.ListForClient(r.Context(), auth.ClientID(r.Context()))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, projects)
		return
	}
	render(w, r, h.log, http.StatusOK, "client/projets.html", map[string]any{"Projects": projects})
}

func (h *EspaceHandler) Profile(w http.ResponseWriter, r *http.Request) {
	h.renderProfile(w, r, http.StatusOK, nil)
}

func (h *EspaceHandler) renderProfile(w http.ResponseWriter, r *http.Request, status int, extra map[string]any) {
	c, err := h.svc.Clients.Get(r.Context(), auth.ClientID(r.Context()))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) && status == http.StatusOK {
		httpx.JSON(w, http.StatusOK, c)
		return
	}
	data := withFlash(r, map[string]any{"Profile": c})
	for k, v := range extra {
		data[k] = v
	}
	render(w, r, h.log, status, "client/profil.html", data)
}

func (h *EspaceHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in services.ProfileUpdate
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
		in = services.ProfileUpdate{
			NomEntreprise: r.FormValue("nom_entreprise"),
			NomContact:    r.FormValue("nom_contact"),
			Telephone:     r.FormValue("telephone"),
			Adresse:       r.FormValue("adresse"),
			CodePostal:    r.FormValue("code_postal"),
			Ville:         r.FormValue("ville"),
			Pays:          r.FormValue("pays"),
			SiteWeb:       r.FormValue("site_web"),
		}
	}
	c, err := h.svc.Clients.UpdateProfile(r.Context(), auth.ClientID(r.Context()), in)
	if err != nil {
		if ve, ok := errs.AsValidation(err); ok && !httpx.WantsJSON(r) {
			h.renderProfile(w, r, http.StatusBadRequest, map[string]any{"Errors": ve.Violations, "Form": in})
			return
		}
		respondError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, c)
		return
	}
	redirectOK(w, r, "/espace-client/profil", "profile_updated")
}

func (h *EspaceHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		respondError(w, r, h.log, errs.Invalid(map[string]string{"body": "invalid_form"}))
		return
	}
	next := r.FormValue("new_password")
	if next != r.FormValue("new_password_confirm") {
		h.renderProfile(w, r, http.StatusBadRequest, map[string]any{"PasswordErrors": map[string]string{"new_password_confirm": "password_mismatch"}})
		return
	}
	err := h.svc.Clients.ChangePassword(r.Context(), auth.ClientID(r.Context()), r.FormValue("current_password"), next)
	if err != nil {
		if ve, ok := errs.AsValidation(err); ok {
			h.renderProfile(w, r, http.StatusBadRequest, map[string]any{"PasswordErrors": ve.Violations})
			return
		}
		respondError(w, r, h.log, err)
		return
	}
	redirectOK(w, r, "/espace-client/profil", "password_changed")
}

func (h *EspaceHandler) Collaborators(w http.ResponseWriter, r *http.Request) {
	h.renderCollaborators(w, r, http.StatusOK, nil)
}

func (h *EspaceHandler) renderCollaborators(w http.ResponseWriter, r *http.Request, status int, extra map[string]any) {
	list, err := h.svc.Collaborators.List(r.Context(), auth.ClientID(r.Context()))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) && status == http.StatusOK {
		httpx.JSON(w, http.StatusOK, list)
		return
	}
	data := withFlash(r, map[string]any{"Collaborators": list})
	for k, v := range extra {
		data[k] = v
	}
	render(w, r, h.log, status, "client/collaborateurs.html", data)
}

// InviteCollaborator is the single invitation endpoint. JSON callers get 201
// when the email went out and 202 with a warning when it did not; form posts
// come back to the collaborators page.
func (h *EspaceHandler) InviteCollaborator(w http.ResponseWriter, r *http.Request) {
	jsonCall := httpx.WantsJSON(r)
	var email string
	if jsonCall {
		var body struct {
			Email string `json:"email"`
		}
		if err := decodeJSON(w, r, &body); err != nil {
			respondError(w, r, h.log, err)
			return
		}
		email = body.Email
	} else {
		if err := parseForm(w, r); err != nil {
			respondError(w, r, h.log, errs.Invalid(map[string]string{"body": "invalid_form"}))
			return
		}
		email = r.FormValue("email")
	}

	c, mailed, err := h.svc.Collaborators.Invite(r.Context(), auth.ClientID(r.Context()), email)
	if err != nil {
		if jsonCall {
			respondError(w, r, h.log, err)
			return
		}
		data := map[string]any{"Email": email}
		switch ve, ok := errs.AsValidation(err); {
		case ok:
			data["Errors"] = ve.Violations
		case errors.Is(err, errs.ErrAlreadyExists):
			data["Errors"] = map[string]string{"email": "already_exists"}
		default:
			respondError(w, r, h.log, err)
			return
		}
		h.renderCollaborators(w, r, statusFor(err), data)
		return
	}

	if jsonCall {
		if !mailed {
			httpx.JSON(w, http.StatusAccepted, map[string]any{
				"collaborator": c,
				"warning":      i18n.T(lang(r), "invite_mail_failed"),
			})
			return
		}
		httpx.JSON(w, http.StatusCreated, map[string]any{"collaborator": c})
		return
	}
	if !mailed {
		http.Redirect(w, r, "/espace-client/collaborateurs?"+url.Values{"warn": {"invite_mail_failed"}}.Encode(), http.StatusSeeOther)
		return
	}
	redirectOK(w, r, "/espace-client/collaborateurs", "invite_sent")
}

func (h *EspaceHandler) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "id")
	if !ok {
		respondError(w, r, h.log, errs.ErrNotFound)
		return
	}
	if err := h.svc.Collaborators.Remove(r.Context(), auth.ClientID(r.Context()), id); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	redirectOK(w, r, "/espace-client/collaborateurs", "collaborator_removed")
}
