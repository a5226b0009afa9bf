package handlers

import (
	"net/http"
	"strings"

	"parkingconsole/internal/models"
	"parkingconsole/internal/notify"
	"parkingconsole/internal/views"
)

const usersBase = "/users"

// UserHandler serves user management. Routes are admin-only through the guard.
type UserHandler struct {
	*Pages
}

// NewUserHandler creates a new user handler
func NewUserHandler(pages *Pages) *UserHandler {
	return &UserHandler{Pages: pages}
}

// List renders one page of users with the dialog named in the query
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	state := views.ParseListState(r.URL.Query(), h.pageSize)
	h.renderList(w, r, state, &notify.Flash{}, UserForm{}, "")
}

func (h *UserHandler) renderList(w http.ResponseWriter, r *http.Request, state views.ListState, flash *notify.Flash, form UserForm, formError string) {
	ctx := r.Context()
	api := h.api(r, flash)

	data := UsersViewData{Form: form}
	page, err := api.Users.List(ctx, state.Params())
	if aborted(err) || h.signedOut(w, r, err) {
		return
	}
	total := 0
	if page != nil {
		data.Users = page.Items
		total = page.Total
	}

	if state.Dialog.NeedsSelection() {
		data.Selected = findByID(data.Users, state.Selected, func(u models.User) string { return u.ID })
		if data.Selected == nil {
			data.Selected, err = api.Users.Get(ctx, state.Selected)
			if aborted(err) {
				return
			}
		}
		if data.Selected == nil {
			state.Close()
		} else if state.Dialog == views.DialogEdit && form == (UserForm{}) {
			data.Form = UserForm{
				FirstName: data.Selected.FirstName,
				LastName:  data.Selected.LastName,
				Email:     data.Selected.Email,
			}
		}
	}

	data.ListView = ListView{
		PageData:   h.pageData(r, "User Management", "users", flash),
		Base:       usersBase,
		State:      state,
		Pagination: views.NewPagination(state.Page, state.PageSize, total),
		FormError:  formError,
	}
	h.render(w, "users.tmpl", data)
}

func userForm(r *http.Request) UserForm {
	return UserForm{
		FirstName: strings.TrimSpace(r.PostFormValue("firstName")),
		LastName:  strings.TrimSpace(r.PostFormValue("lastName")),
		Email:     strings.TrimSpace(r.PostFormValue("email")),
	}
}

// Create handles the create dialog
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	state := views.ParseListState(r.URL.Query(), h.pageSize)
	form := userForm(r)

	result := &notify.Flash{}
	_, err := h.api(r, result).Users.Create(r.Context(), models.CreateUserRequest{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Password:  r.PostFormValue("password"),
	})
	if err != nil {
		if aborted(err) {
			return
		}
		state.OpenCreate()
		h.renderList(w, r, state, &notify.Flash{}, form, result.LastError())
		return
	}

	h.redirect(w, r, result, state.ClosedURL(usersBase))
}

// Update handles the edit dialog
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	id := r.PathValue("id")
	state := views.ParseListState(r.URL.Query(), h.pageSize)
	form := userForm(r)

	result := &notify.Flash{}
	_, err := h.api(r, result).Users.Update(r.Context(), id, models.UpdateUserRequest{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
	})
	if err != nil {
		if aborted(err) {
			return
		}
		state.OpenEdit(id)
		h.renderList(w, r, state, &notify.Flash{}, form, result.LastError())
		return
	}

	h.redirect(w, r, result, state.ClosedURL(usersBase))
}

// Delete handles the confirmed delete dialog
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	state := views.ParseListState(r.URL.Query(), h.pageSize)

	result := &notify.Flash{}
	if err := h.api(r, result).Users.Delete(r.Context(), id); err != nil {
		if aborted(err) {
			return
		}
		state.OpenDelete(id)
		h.renderList(w, r, state, &notify.Flash{}, UserForm{}, result.LastError())
		return
	}

	h.redirect(w, r, result, state.ClosedURL(usersBase))
}

// findByID returns a pointer to the item with id, or nil
func findByID[T any](items []T, id string, idOf func(T) string) *T {
	for i := range items {
		if idOf(items[i]) == id {
			return &items[i]
		}
	}
	return nil
}
