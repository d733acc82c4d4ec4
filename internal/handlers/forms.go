package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/agence/httpx"
	"github.com/diewo77/agence/internal/errs"
	"github.com/diewo77/agence/internal/services"
	"go.uber.org/zap"
)

// FormsHandler handles the public devis, contact and newsletter forms.
type FormsHandler struct {
	quotes  *services.QuoteService
	contact *services.ContactService
	log     *zap.Logger
}

func NewFormsHandler(quotes *services.QuoteService, contact *services.ContactService, log *zap.Logger) *FormsHandler {
	return &FormsHandler{quotes: quotes, contact: contact, log: log}
}

func quoteFromForm(r *http.Request) services.QuoteInput {
	return services.QuoteInput{
		TypeProjet:  r.FormValue("type_projet"),
		Services:    r.Form["services"],
		Budget:      r.FormValue("budget"),
		Delai:       r.FormValue("delai"),
		Description: r.FormValue("description"),
		Nom:         r.FormValue("nom"),
		Email:       r.FormValue("email"),
		Telephone:   r.FormValue("telephone"),
		Entreprise:  r.FormValue("entreprise"),
	}
}

func quoteStep(r *http.Request) int {
	step, err := strconv.Atoi(r.FormValue("etape"))
	if err != nil || step < 1 {
		return 1
	}
	if step > services.QuoteSteps {
		return services.QuoteSteps
	}
	return step
}

func (h *FormsHandler) renderQuote(w http.ResponseWriter, r *http.Request, status, step int, in services.QuoteInput, violations any) {
	render(w, r, h.log, status, "devis.html", map[string]any{
		"Step":         step,
		"Steps":        services.QuoteSteps,
		"Quote":        in,
		"Errors":       violations,
		"ProjectTypes": services.QuoteProjectTypes,
		"Services":     services.QuoteServices,
		"Budgets":      services.QuoteBudgets,
		"Delais":       services.QuoteDelais,
	})
}

// QuoteForm shows one step of the devis form (GET /devis?etape=N).
func (h *FormsHandler) QuoteForm(w http.ResponseWriter, r *http.Request) {
	h.renderQuote(w, r, http.StatusOK, quoteStep(r), services.QuoteInput{}, nil)
}

// QuoteSubmit validates the posted step. Earlier answers come back as hidden
// fields; the last step records the request.
func (h *FormsHandler) QuoteSubmit(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		respondError(w, r, h.log, errs.Invalid(map[string]string{"body": "invalid_form"}))
		return
	}
	step := quoteStep(r)
	in := quoteFromForm(r)

	if r.FormValue("action") == "back" && step > 1 {
		h.renderQuote(w, r, http.StatusOK, step-1, in, nil)
		return
	}
	if err := h.quotes.ValidateStep(step, in); err != nil {
		ve, _ := errs.AsValidation(err)
		h.renderQuote(w, r, http.StatusBadRequest, step, in, ve.Violations)
		return
	}
	if step < services.QuoteSteps {
		h.renderQuote(w, r, http.StatusOK, step+1, in, nil)
		return
	}

	q, err := h.quotes.Submit(r.Context(), in)
	if err != nil {
		if ve, ok := errs.AsValidation(err); ok {
			h.renderQuote(w, r, http.StatusBadRequest, services.FirstInvalidStep(ve.Violations), in, ve.Violations)
			return
		}
		respondError(w, r, h.log, err)
		return
	}
	render(w, r, h.log, http.StatusOK, "devis-confirmation.html", map[string]any{"Quote": q})
}

// QuoteAPI accepts a complete devis as JSON (POST /api/devis).
func (h *FormsHandler) QuoteAPI(w http.ResponseWriter, r *http.Request) {
	var in services.QuoteInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	q, err := h.quotes.Submit(r.Context(), in)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"reference": q.Reference, "statut": q.Statut})
}

func (h *FormsHandler) ContactForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.log, http.StatusOK, "contact.html", withFlash(r, map[string]any{"Form": services.ContactInput{}}))
}

func (h *FormsHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var in services.ContactInput
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
		in = services.ContactInput{
			Nom:     r.FormValue("nom"),
			Email:   r.FormValue("email"),
			Sujet:   r.FormValue("sujet"),
			Message: r.FormValue("message"),
		}
	}

	_, err := h.contact.SendMessage(r.Context(), in)
	if err != nil {
		if ve, ok := errs.AsValidation(err); ok && !httpx.WantsJSON(r) {
			render(w, r, h.log, http.StatusBadRequest, "contact.html", map[string]any{"Form": in, "Errors": ve.Violations})
			return
		}
		respondError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, map[string]string{"status": "ok"})
		return
	}
	redirectOK(w, r, "/contact", "message_sent")
}

func (h *FormsHandler) Newsletter(w http.ResponseWriter, r *http.Request) {
	var email string
	if httpx.WantsJSON(r) {
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

	if err := h.contact.Subscribe(r.Context(), email); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	redirectOK(w, r, "/", "newsletter_ok")
}
