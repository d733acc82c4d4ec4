package handlers

import (
	"net/http"

	"github.com/diewo77/agence/httpx"
	"github.com/diewo77/agence/internal/services"
	"go.uber.org/zap"
)

// ShareHandler serves the public share links. Holding the token is the only
// credential.
type ShareHandler struct {
	shares *services.ShareService
	log    *zap.Logger
}

func NewShareHandler(shares *services.ShareService, log *zap.Logger) *ShareHandler {
	return &ShareHandler{shares: shares, log: log}
}

func (h *ShareHandler) View(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	doc, err := h.shares.Resolve(r.Context(), token)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store")
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"titre":          doc.Titre,
			"type":           doc.Type,
			"fichier_nom":    doc.FichierNom,
			"fichier_taille": doc.FichierTaille,
			"fichier_mime":   doc.FichierMime,
		})
		return
	}
	render(w, r, h.log, http.StatusOK, "partage.html", map[string]any{"Document": doc, "Token": token})
}

func (h *ShareHandler) Download(w http.ResponseWriter, r *http.Request) {
	u, err := h.shares.DownloadURL(r.Context(), r.PathValue("token"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, u, http.StatusSeeOther)
}
