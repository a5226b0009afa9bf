package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"parkingconsole/internal/backend"
	"parkingconsole/internal/guard"
	"parkingconsole/internal/models"
	"parkingconsole/internal/notify"
	"parkingconsole/internal/security"
	"parkingconsole/internal/session"
)

const appName = "ParkWise Admin"

// Pages is what every page handler shares
type Pages struct {
	templates *template.Template
	client    *backend.Client
	store     *session.Store
	csrf      *security.CSRF
	pageSize  int
}

// NewPages creates the shared page dependencies
func NewPages(templates *template.Template, client *backend.Client, store *session.Store, csrf *security.CSRF, pageSize int) *Pages {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Pages{
		templates: templates,
		client:    client,
		store:     store,
		csrf:      csrf,
		pageSize:  pageSize,
	}
}

// api binds the backend client to the request's session
func (p *Pages) api(r *http.Request, flash *notify.Flash) *backend.API {
	return p.client.For(GetSessionFromContext(r.Context()), flash)
}

// pageData fills the layout. Messages left by a previous redirect come
// before the ones collected during this request.
func (p *Pages) pageData(r *http.Request, title, nav string, flash *notify.Flash) PageData {
	sid := sessionID(r.Context())

	msgs, err := notify.Take(r.Context(), p.store, sid)
	if err != nil {
		log.Printf("Error loading flash messages: %v", err)
	}
	if flash != nil {
		msgs = append(msgs, flash.Messages()...)
	}

	return PageData{
		Title:     title + " - " + appName,
		Nav:       nav,
		Session:   GetSessionFromContext(r.Context()),
		CSRFToken: p.csrf.Token(sid),
		Flash:     msgs,
	}
}

// render executes a page template into a buffer so a failing template never
// leaves a half-written page
func (p *Pages) render(w http.ResponseWriter, name string, data interface{}) {
	var buf bytes.Buffer
	if err := p.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("Error rendering %s template: %v", name, err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("Error writing %s response: %v", name, err)
	}
}

// redirect keeps the collected messages for the next render and sends the browser to target
func (p *Pages) redirect(w http.ResponseWriter, r *http.Request, flash *notify.Flash, target string) {
	if flash != nil {
		if err := flash.Save(r.Context(), p.store, sessionID(r.Context())); err != nil {
			log.Printf("Error saving flash messages: %v", err)
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// signedOut handles a token the backend no longer accepts: the identity is
// cleared and the browser goes back to login. It reports whether it responded.
func (p *Pages) signedOut(w http.ResponseWriter, r *http.Request, err error) bool {
	if !backend.IsStatus(err, http.StatusUnauthorized) {
		return false
	}

	sid := sessionID(r.Context())
	log.Printf("Backend rejected the token of session %.8s, signing out", sid)
	if err := p.store.Clear(r.Context(), sid); err != nil {
		log.Printf("Error clearing rejected session: %v", err)
	}

	target := guard.LoginPath
	if r.Method == http.MethodGet {
		target += "?" + url.Values{guard.NextParam: {guard.SafeReturnTo(r.URL.RequestURI())}}.Encode()
	}
	flash := &notify.Flash{}
	flash.Error(errSessionExpired)
	p.redirect(w, r, flash, target)
	return true
}

// aborted reports whether err only means the browser went away
func aborted(err error) bool {
	return errors.Is(err, context.Canceled)
}

// LoadTemplates parses the layout, partials and page templates under templatesPath
func LoadTemplates(templatesPath string) (*template.Template, error) {
	patterns := []string{
		filepath.Join(templatesPath, "*.tmpl"),
		filepath.Join(templatesPath, "auth/*.tmpl"),
		filepath.Join(templatesPath, "console/*.tmpl"),
		filepath.Join(templatesPath, "components/*.tmpl"),
	}

	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found in %s", templatesPath)
	}

	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money": models.FormatMoney,
		"lower": strings.ToLower,
		// title turns an enum like STANDARD into Standard
		"title": func(s interface{}) string {
			v := strings.ToLower(fmt.Sprint(s))
			if v == "" {
				return v
			}
			return strings.ToUpper(v[:1]) + v[1:]
		},
		"csrfField": func() string {
			return security.CSRFFormField
		},
		"deleteDialog": func(heading, description, action string, view ListView) DeleteDialogData {
			return DeleteDialogData{Heading: heading, Description: description, Action: action, View: view}
		},
	}
}
