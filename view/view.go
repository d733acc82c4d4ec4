// Package view renders the HTML pages: a shared layout, a few partials and
// one template file per page, with i18n and permission helpers.
package view

import (
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/diewo77/agence/auth"
	"github.com/diewo77/agence/i18n"
)

var (
	baseDir  string
	once     sync.Once
	tplCache = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}
	assetManifest     map[string]string
	assetManifestOnce sync.Once
	devMode           bool

	// canResolver lets templates ask whether the current admin holds a permission.
	canResolver func(*http.Request, string, string) bool
)

var partials = []string{
	"header.html",
	"flash.html",
	"errors-alert.html",
	"stat-card.html",
	"field-text.html",
	"field-select.html",
}

// SetCanResolver sets the callback behind the "can" template func.
func SetCanResolver(f func(r *http.Request, resource, action string) bool) {
	if f != nil {
		canResolver = f
	}
}

// SetDev disables the template cache so edits show up on reload.
func SetDev(dev bool) { devMode = dev }

func detectBase() {
	for _, c := range []string{"templates", "../templates", "../../templates", "../../../templates"} {
		if fi, err := os.Stat(filepath.Clean(c)); err == nil && fi.IsDir() {
			baseDir = filepath.Clean(c)
			return
		}
	}
	baseDir = "templates"
}

// Funcs returns the func map for r. A nil r yields placeholders used at parse time.
func Funcs(r *http.Request) template.FuncMap {
	lang := i18n.DefaultLang
	if r != nil {
		lang = i18n.LangFromContext(r.Context())
	}
	return template.FuncMap{
		"t":    func(code string) string { return i18n.T(lang, code) },
		"lang": func() string { return lang },
		"can": func(resource, action string) bool {
			if r == nil || canResolver == nil {
				return false
			}
			return canResolver(r, resource, action)
		},
		"asset": resolveAsset,
		"date": func(t any) string {
			switch v := t.(type) {
			case time.Time:
				return v.Format("02/01/2006")
			case *time.Time:
				if v != nil {
					return v.Format("02/01/2006")
				}
			}
			return ""
		},
		"datetime": func(t time.Time) string { return t.Format("02/01/2006 15:04") },
		"size":     humanSize,
		"euros":    func(v float64) string { return strings.Replace(fmt.Sprintf("%.2f €", v), ".", ",", 1) },
		"contains": func(list []string, s string) bool {
			for _, v := range list {
				if v == s {
					return true
				}
			}
			return false
		},
		"split": strings.Split,
		// dict builds a map for sub-templates: {{ template "x" (dict "K" v) }}.
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			m := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				m[key] = values[i+1]
			}
			return m
		},
	}
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f Mo", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.0f Ko", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d o", n)
	}
}

// versionedAsset returns /static/<name>?v=<hash> for cache busting.
func versionedAsset(rel string) string {
	if strings.HasPrefix(rel, "http://") || strings.HasPrefix(rel, "https://") || strings.HasPrefix(rel, "//") {
		return rel
	}
	b, err := os.ReadFile(filepath.Join("static", rel))
	if err != nil {
		return "/static/" + rel
	}
	h := sha1.Sum(b)
	return "/static/" + rel + "?v=" + fmt.Sprintf("%x", h[:8])
}

// resolveAsset prefers a hashed filename from manifest.json.
func resolveAsset(rel string) string {
	if devMode {
		parseManifest()
	} else {
		assetManifestOnce.Do(parseManifest)
	}
	if h, ok := assetManifest[rel]; ok {
		return "/static/" + h
	}
	return versionedAsset(rel)
}

func parseManifest() {
	b, err := os.ReadFile(filepath.Join("static", "manifest.json"))
	if err != nil {
		return
	}
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return
	}
	assetManifest = m
}

// parse loads layout, partials and the page. Pages containing a doctype are
// parsed alone.
func parse(name string) (*template.Template, error) {
	mainPath := filepath.Join(baseDir, filepath.FromSlash(name))
	content, err := os.ReadFile(mainPath)
	if err != nil {
		return nil, err
	}
	funcs := Funcs(nil)
	if bytes.Contains(bytes.ToLower(content), []byte("<!doctype")) {
		return template.New(filepath.Base(name)).Funcs(funcs).ParseFiles(mainPath)
	}
	files := []string{filepath.Join(baseDir, "layout.html"), mainPath}
	for _, p := range partials {
		pp := filepath.Join(baseDir, "partials", p)
		if fi, err := os.Stat(pp); err == nil && !fi.IsDir() {
			files = append(files, pp)
		}
	}
	return template.New("layout.html").Funcs(funcs).ParseFiles(files...)
}

func lookup(name string) (*template.Template, error) {
	once.Do(detectBase)
	if !devMode {
		tplCache.RLock()
		t, ok := tplCache.m[name]
		tplCache.RUnlock()
		if ok {
			return t, nil
		}
	}
	t, err := parse(name)
	if err != nil {
		return nil, err
	}
	if !devMode {
		tplCache.Lock()
		tplCache.m[name] = t
		tplCache.Unlock()
	}
	return t, nil
}

// Render executes page name (relative to the templates dir, e.g.
// "admin/dashboard.html") with request-bound funcs. Output is buffered so a
// template error never produces a half-written page.
func Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	return RenderStatus(w, r, http.StatusOK, name, data)
}

// RenderStatus is Render with an explicit status code.
func RenderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) error {
	cached, err := lookup(name)
	if err != nil {
		return err
	}
	t, err := cached.Clone()
	if err != nil {
		return err
	}
	t.Funcs(Funcs(r))

	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["Year"]; !ok {
		data["Year"] = time.Now().Year()
	}
	if admin, ok := auth.AdminFromContext(r.Context()); ok {
		data["Admin"] = admin
	}
	if client, ok := auth.ClientFromContext(r.Context()); ok {
		data["Client"] = client
	}
	data["Path"] = r.URL.Path

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}
