// Package handlers holds the HTTP handlers of the public site, the admin
// back-office and the espace-client. Handlers parse input, call a service and
// map its sentinel errors to a status code.
package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/diewo77/agence/httpx"
	"github.com/diewo77/agence/i18n"
	"github.com/diewo77/agence/internal/errs"
	"github.com/diewo77/agence/view"
	"go.uber.org/zap"
)

// maxFormSize bounds url-encoded and JSON bodies; uploads have their own limit.
const maxFormSize = 1 << 20

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	if _, ok := errs.AsValidation(err); ok {
		return http.StatusBadRequest
	}
	switch {
	case errors.Is(err, errs.ErrNotAuthenticated), errors.Is(err, errs.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrNotFound), errors.Is(err, errs.ErrInvalidShareLink):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, errs.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the text shown for err. Unknown errors never leak.
func publicMessage(r *http.Request, err error) string {
	if _, ok := errs.AsValidation(err); ok {
		return i18n.T(lang(r), "validation_failed")
	}
	for _, known := range []error{
		errs.ErrNotAuthenticated, errs.ErrInvalidCredentials, errs.ErrForbidden, errs.ErrNotFound,
		errs.ErrInvalidShareLink, errs.ErrAlreadyExists, errs.ErrUnavailable,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return i18n.T(lang(r), "internal_error")
}

// respondError writes err as JSON or as the error page.
func respondError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("unhandled error", zap.String("path", r.URL.Path), zap.Error(err))
	}
	if httpx.WantsJSON(r) {
		if ve, ok := errs.AsValidation(err); ok {
			httpx.JSONError(w, status, "validation_failed", ve.Violations)
			return
		}
		httpx.JSONError(w, status, publicMessage(r, err), nil)
		return
	}
	render(w, r, log, status, "error.html", map[string]any{
		"Status":  status,
		"Message": publicMessage(r, err),
	})
}

// render executes a page and falls back to a bare 500 when the template fails.
func render(w http.ResponseWriter, r *http.Request, log *zap.Logger, status int, name string, data map[string]any) {
	if err := view.RenderStatus(w, r, status, name, data); err != nil {
		log.Error("render failed", zap.String("template", name), zap.Error(err))
		http.Error(w, i18n.T(lang(r), "internal_error"), http.StatusInternalServerError)
	}
}

func lang(r *http.Request) string { return i18n.LangFromContext(r.Context()) }

// withFlash adds the flash message carried by ?ok= after a redirect.
func withFlash(r *http.Request, data map[string]any) map[string]any {
	if data == nil {
		data = map[string]any{}
	}
	if code := r.URL.Query().Get("ok"); code != "" {
		data["Flash"] = i18n.T(lang(r), code)
	}
	if code := r.URL.Query().Get("warn"); code != "" {
		data["Warning"] = i18n.T(lang(r), code)
	}
	return data
}

// redirectOK redirects with 303 and a flash code (post/redirect/get).
func redirectOK(w http.ResponseWriter, r *http.Request, path, code string) {
	target := path
	if code != "" {
		target += "?" + url.Values{"ok": {code}}.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// uintParam parses the path value name as a positive id.
func uintParam(r *http.Request, name string) (uint, bool) {
	n, err := strconv.ParseUint(r.PathValue(name), 10, 0)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// parseForm bounds and parses a url-encoded body.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	return r.ParseForm()
}

// decodeJSON bounds and decodes a JSON body; syntax errors become a
// validation failure on the "body" field.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := httpx.DecodeJSON(r, dst); err != nil {
		return &errs.ValidationError{Violations: map[string]string{"body": "invalid_json"}}
	}
	return nil
}
