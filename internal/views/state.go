package views

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"parkingconsole/internal/backend"
)

// Dialog names the modal open on top of a list
type Dialog string

const (
	DialogNone       Dialog = ""
	DialogCreate     Dialog = "create"
	DialogCreateMany Dialog = "create-many"
	DialogEdit       Dialog = "edit"
	DialogDelete     Dialog = "delete"
	DialogDetails    Dialog = "details"
)

func (d Dialog) valid() bool {
	switch d {
	case DialogNone, DialogCreate, DialogCreateMany, DialogEdit, DialogDelete, DialogDetails:
		return true
	}
	return false
}

// NeedsSelection reports whether the dialog acts on one entity
func (d Dialog) NeedsSelection() bool {
	return d == DialogEdit || d == DialogDelete || d == DialogDetails
}

// ListState is the per-view UI state of a list page. It round-trips
// through the URL query so every state is bookmarkable.
type ListState struct {
	Page     int
	PageSize int
	Search   string
	Filters  map[string]string
	Dialog   Dialog
	Selected string
}

// ParseListState reads the state from a query. Only the named filters are kept.
func ParseListState(q url.Values, pageSize int, filters ...string) ListState {
	s := ListState{
		Page:     1,
		PageSize: pageSize,
		Search:   strings.TrimSpace(q.Get("search")),
		Filters:  make(map[string]string, len(filters)),
	}
	if p, err := strconv.Atoi(q.Get("page")); err == nil {
		s.SetPage(p)
	}
	for _, f := range filters {
		if v := strings.TrimSpace(q.Get(f)); v != "" {
			s.Filters[f] = v
		}
	}

	dialog := Dialog(q.Get("dialog"))
	id := q.Get("id")
	if !dialog.valid() || (dialog.NeedsSelection() && id == "") {
		dialog = DialogNone
	}
	s.Dialog = dialog
	if dialog.NeedsSelection() {
		s.Selected = id
	}
	return s
}

// SetPage moves to page p, never below 1
func (s *ListState) SetPage(p int) {
	s.Page = max(p, 1)
}

func (s *ListState) OpenCreate()           { s.open(DialogCreate, "") }
func (s *ListState) OpenCreateMany()       { s.open(DialogCreateMany, "") }
func (s *ListState) OpenEdit(id string)    { s.open(DialogEdit, id) }
func (s *ListState) OpenDelete(id string)  { s.open(DialogDelete, id) }
func (s *ListState) OpenDetails(id string) { s.open(DialogDetails, id) }

// Close dismisses any dialog
func (s *ListState) Close() { s.open(DialogNone, "") }

func (s *ListState) open(d Dialog, id string) {
	s.Dialog = d
	s.Selected = id
}

// Params is the backend request for the current page
func (s ListState) Params() backend.ListParams {
	filters := make(map[string]string, len(s.Filters))
	for k, v := range s.Filters {
		filters[k] = v
	}
	return backend.ListParams{Page: s.Page, Limit: s.PageSize, Search: s.Search, Filters: filters}
}

// Query encodes the state; defaults are left out
func (s ListState) Query() url.Values {
	q := url.Values{}
	if s.Page > 1 {
		q.Set("page", strconv.Itoa(s.Page))
	}
	if s.Search != "" {
		q.Set("search", s.Search)
	}
	for k, v := range s.Filters {
		if v != "" {
			q.Set(k, v)
		}
	}
	if s.Dialog != DialogNone {
		q.Set("dialog", string(s.Dialog))
		if s.Selected != "" {
			q.Set("id", s.Selected)
		}
	}
	return q
}

// URL renders the state as a link under base
func (s ListState) URL(base string) string {
	if q := s.Query(); len(q) > 0 {
		return base + "?" + q.Encode()
	}
	return base
}

// PageURL links to page p of base with the dialog closed
func (s ListState) PageURL(base string, p int) string {
	s.Close()
	s.SetPage(p)
	return s.URL(base)
}

// DialogURL links to base with dialog d open on id
func (s ListState) DialogURL(base string, d Dialog, id string) string {
	s.open(d, id)
	return s.URL(base)
}

// ClosedURL links back to the list without a dialog
func (s ListState) ClosedURL(base string) string {
	s.Close()
	return s.URL(base)
}

// FilterNames returns the active filter names in a stable order
func (s ListState) FilterNames() []string {
	names := make([]string, 0, len(s.Filters))
	for k := range s.Filters {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
