package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/agence/httpx"
	"github.com/diewo77/agence/internal/errs"
	"github.com/diewo77/agence/internal/models"
	"github.com/diewo77/agence/internal/services"
	"go.uber.org/zap"
)

// AdminServices groups what the back-office needs.
type AdminServices struct {
	Stats    *services.StatsService
	Quotes   *services.QuoteService
	Clients  *services.ClientService
	Docs     *services.DocumentService
	Projects *services.ProjectService
	Contact  *services.ContactService
}

// AdminHandler serves the back-office. Permissions are checked by the router.
type AdminHandler struct {
	svc AdminServices
	log *zap.Logger
}

func NewAdminHandler(svc AdminServices, log *zap.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, log: log}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats.Admin(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	render(w, r, h.log, http.StatusOK, "admin/dashboard.html", withFlash(r, map[string]any{"Stats": stats}))
}

// statusUpdate reads the "statut" field of a form or JSON body.
func statusUpdate(w http.ResponseWriter, r *http.Request) (string, error) {
	if httpx.WantsJSON(r) {
		var body struct {
			Statut string `json:"statut"`
		}
		err := decodeJSON(w, r, &body)
		return body.Statut, err
	}
	if err := parseForm(w, r); err != nil {
		return "", errs.Invalid(map[string]string{"body": "invalid_form"})
	}
	return r.FormValue("statut"), nil
}

// done finishes a mutation: JSON callers get 200, form callers a 303.
func (h *AdminHandler) done(w http.ResponseWriter, r *http.Request, path, code string) {
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	redirectOK(w, r, path, code)
}

func (h *AdminHandler) Quotes(w http.ResponseWriter, r *http.Request) {
	statut := r.URL.Query().Get("statut")
	quotes, err := h.svc.Quotes.ListAll(r.Context(), statut)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, quotes)
		return
	}
	render(w, r, h.log, http.StatusOK, "admin/devis.html", withFlash(r, map[string]any{
		"Quotes":   quotes,
		"Statut":   statut,
		"Statuses": models.QuoteStatuses,
	}))
}

func (h *AdminHandler) QuoteStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "id")
	if !ok {
		respondError(w, r, h.log, errs.ErrNotFound)
		return
	}
	statut, err := statusUpdate(w, r)
	if err == nil {
		err = h.svc.Quotes.UpdateStatus(r.Context(), id, statut)
	}
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	h.done(w, r, "/admin/devis", "status_updated")
}

func (h *AdminHandler) Clients(w http.ResponseWriter, r *http.Request) {
	h.renderClients(w, r, http.StatusOK, nil)
}

func (h *AdminHandler) renderClients(w http.ResponseWriter, r *http.Request, status int, extra map[string]any) {
	query := r.URL.Query().Get("q")
	clients, err := h.svc.Clients.List(r.Context(), query)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) && status == http.StatusOK {
		httpx.JSON(w, http.StatusOK, clients)
		return
	}
	data := withFlash(r, map[string]any{"Clients": clients, "Query": query, "Form": services.NewClient{}})
	for k, v := range extra {
		data[k] = v
	}
	render(w, r, h.log, status, "admin/clients.html", data)
}

// CreateClient is the back-office addClient.
func (h *AdminHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
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
	}

	c, err := h.svc.Clients.Add(r.Context(), in)
	if err != nil {
		if httpx.WantsJSON(r) {
			respondError(w, r, h.log, err)
			return
		}
		in.Password = ""
		switch ve, ok := errs.AsValidation(err); {
		case ok:
			h.renderClients(w, r, http.StatusBadRequest, map[string]any{"Form": in, "Errors": ve.Violations})
		case errors.Is(err, errs.ErrAlreadyExists):
			h.renderClients(w, r, http.StatusConflict, map[string]any{"Form": in, "Errors": map[string]string{"email": "already_exists"}})
		default:
			respondError(w, r, h.log, err)
		}
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, c)
		return
	}
	redirectOK(w, r, "/admin/clients", "client_created")
}

func (h *AdminHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "id")
	if !ok {
		respondError(w, r, h.log, errs.ErrNotFound)
		return
	}
	if err := h.svc.Clients.Delete(r.Context(), id); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	h.done(w, r, "/admin/clients", "client_deleted")
}

func (h *AdminHandler) Documents(w http.ResponseWriter, r *http.Request) {
	h.renderDocuments(w, r, http.StatusOK, nil)
}

func (h *AdminHandler) renderDocuments(w http.ResponseWriter, r *http.Request, status int, extra map[string]any) {
	var filter services.DocumentFilter
	if id, err := strconv.ParseUint(r.URL.Query().Get("client"), 10, 0); err == nil {
		filter.ClientID = uint(id)
	}
	filter.Statut = r.URL.Query().Get("statut")
	docs, err := h.svc.Docs.ListAll(r.Context(), filter)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) && status == http.StatusOK {
		httpx.JSON(w, http.StatusOK, docs)
		return
	}
	clients, err := h.svc.Clients.List(r.Context(), "")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	data := withFlash(r, map[string]any{
		"Documents": docs,
		"Clients":   clients,
		"Filter":    filter,
		"Statuses":  models.DocumentStatuses,
		"Types":     models.DocumentTypes,
	})
	for k, v := range extra {
		data[k] = v
	}
	render(w, r, h.log, status, "admin/documents.html", data)
}

// UploadDocument takes a multipart form with the file in "fichier".
func (h *AdminHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		h.uploadFailed(w, r, errs.Invalid(map[string]string{"fichier": "too_large"}))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()
	file, header, err := r.FormFile("fichier")
	if err != nil {
		h.uploadFailed(w, r, errs.Invalid(map[string]string{"fichier": "required"}))
		return
	}
	defer file.Close()

	clientID, _ := strconv.ParseUint(r.FormValue("client_id"), 10, 0)
	in := services.UploadInput{
		ClientID: uint(clientID),
		Titre:    r.FormValue("titre"),
		Type:     r.FormValue("type"),
		Statut:   r.FormValue("statut"),
		FileName: header.Filename,
		Size:     header.Size,
		Mime:     header.Header.Get("Content-Type"),
	}
	doc, err := h.svc.Docs.Upload(r.Context(), in, file)
	if err != nil {
		h.uploadFailed(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, doc)
		return
	}
	redirectOK(w, r, "/admin/documents", "document_uploaded")
}

func (h *AdminHandler) uploadFailed(w http.ResponseWriter, r *http.Request, err error) {
	ve, ok := errs.AsValidation(err)
	if !ok || httpx.WantsJSON(r) {
		respondError(w, r, h.log, err)
		return
	}
	h.renderDocuments(w, r, http.StatusBadRequest, map[string]any{"Errors": ve.Violations})
}

func (h *AdminHandler) DocumentStatus(w http.ResponseWriter, r *http.Request) {
	statut, err := statusUpdate(w, r)
	if err == nil {
		err = h.svc.Docs.UpdateStatus(r.Context(), r.PathValue("id"), statut)
	}
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	h.done(w, r, "/admin/documents", "status_updated")
}

func (h *AdminHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Docs.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	h.done(w, r, "/admin/documents", "document_deleted")
}

func (h *AdminHandler) Projects(w http.ResponseWriter, r *http.Request) {
	h.renderProjects(w, r, http.StatusOK, nil)
}

func (h *AdminHandler) renderProjects(w http.ResponseWriter, r *http.Request, status int, extra map[string]any) {
	projects, err := h.svc.Projects.ListAll(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) && status == http.StatusOK {
		httpx.JSON(w, http.StatusOK, projects)
		return
	}
	clients, err := h.svc.Clients.List(r.Context(), "")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	data := withFlash(r, map[string]any{
		"Projects": projects,
		"Clients":  clients,
		"Statuses": models.ProjectStatuses,
		"Form":     services.NewProject{},
	})
	for k, v := range extra {
		data[k] = v
	}
	render(w, r, h.log, status, "admin/projets.html", data)
}

func parseDate(s string) *time.Time {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &t
}

func (h *AdminHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var in services.NewProject
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
		clientID, _ := strconv.ParseUint(r.FormValue("client_id"), 10, 0)
		montant, _ := strconv.ParseFloat(strings.Replace(r.FormValue("montant"), ",", ".", 1), 64)
		in = services.NewProject{
			ClientID:    uint(clientID),
			Nom:         r.FormValue("nom"),
			Description: r.FormValue("description"),
			Statut:      r.FormValue("statut"),
			TypeContrat: r.FormValue("type_contrat"),
			Montant:     montant,
			DateDebut:   parseDate(r.FormValue("date_debut")),
			DateFin:     parseDate(r.FormValue("date_fin")),
		}
	}
	p, err := h.svc.Projects.Create(r.Context(), in)
	if err != nil {
		if ve, ok := errs.AsValidation(err); ok && !httpx.WantsJSON(r) {
			h.renderProjects(w, r, http.StatusBadRequest, map[string]any{"Form": in, "Errors": ve.Violations})
			return
		}
		respondError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, p)
		return
	}
	redirectOK(w, r, "/admin/projets", "project_created")
}

func (h *AdminHandler) ProjectStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "id")
	if !ok {
		respondError(w, r, h.log, errs.ErrNotFound)
		return
	}
	statut, err := statusUpdate(w, r)
	if err == nil {
		err = h.svc.Projects.UpdateStatus(r.Context(), id, statut)
	}
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	h.done(w, r, "/admin/projets", "status_updated")
}

func (h *AdminHandler) Messages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.svc.Contact.ListMessages(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, msgs)
		return
	}
	render(w, r, h.log, http.StatusOK, "admin/messages.html", withFlash(r, map[string]any{"Messages": msgs}))
}

func (h *AdminHandler) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "id")
	if !ok {
		respondError(w, r, h.log, errs.ErrNotFound)
		return
	}
	if err := h.svc.Contact.MarkMessageRead(r.Context(), id); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	h.done(w, r, "/admin/messages", "message_read")
}

func (h *AdminHandler) Newsletter(w http.ResponseWriter, r *http.Request) {
	subs, err := h.svc.Contact.ListSubscribers(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, subs)
		return
	}
	render(w, r, h.log, http.StatusOK, "admin/newsletter.html", map[string]any{"Subscribers": subs})
}
