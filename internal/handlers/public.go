package handlers

import (
	"net/http"

	"github.com/diewo77/agence/internal/services"
	"go.uber.org/zap"
)

// PublicHandler serves the marketing pages and the blog.
type PublicHandler struct {
	blog *services.BlogService
	log  *zap.Logger
}

func NewPublicHandler(blog *services.BlogService, log *zap.Logger) *PublicHandler {
	return &PublicHandler{blog: blog, log: log}
}

func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.NotFound(w, r)
		return
	}
	posts, err := h.blog.List(r.Context(), 3)
	if err != nil {
		h.log.Warn("home: latest posts unavailable", zap.Error(err))
	}
	render(w, r, h.log, http.StatusOK, "home.html", withFlash(r, map[string]any{"Posts": posts}))
}

// Page renders a static page template.
func (h *PublicHandler) Page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, h.log, http.StatusOK, name, nil)
	}
}

func (h *PublicHandler) Blog(w http.ResponseWriter, r *http.Request) {
	posts, err := h.blog.List(r.Context(), 0)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	render(w, r, h.log, http.StatusOK, "blog/index.html", map[string]any{"Posts": posts})
}

func (h *PublicHandler) BlogPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.blog.BySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		if statusFor(err) == http.StatusNotFound {
			h.NotFound(w, r)
			return
		}
		respondError(w, r, h.log, err)
		return
	}
	render(w, r, h.log, http.StatusOK, "blog/post.html", map[string]any{"Post": post})
}

func (h *PublicHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.log, http.StatusNotFound, "error.html", map[string]any{
		"Status":  http.StatusNotFound,
		"Message": "Page introuvable",
	})
}
