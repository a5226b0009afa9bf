package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"parkingconsole/internal/backend"
	"parkingconsole/internal/models"
	"parkingconsole/internal/notify"
	"parkingconsole/internal/views"
)

const slotsBase = "/parking-slots"

var slotFilters = []string{backend.FilterSlotSize, backend.FilterSlotStatus, backend.FilterParkingID}

// ParkingSlotHandler serves parking slot management
type ParkingSlotHandler struct {
	*Pages
}

// NewParkingSlotHandler creates a new parking slot handler
func NewParkingSlotHandler(pages *Pages) *ParkingSlotHandler {
	return &ParkingSlotHandler{Pages: pages}
}

// List renders one page of slots, filtered by size, status and parking
func (h *ParkingSlotHandler) List(w http.ResponseWriter, r *http.Request) {
	state := views.ParseListState(r.URL.Query(), h.pageSize, slotFilters...)
	h.renderList(w, r, state, &notify.Flash{}, SlotForm{}, "")
}

func (h *ParkingSlotHandler) renderList(w http.ResponseWriter, r *http.Request, state views.ListState, flash *notify.Flash, form SlotForm, formError string) {
	ctx := r.Context()
	api := h.api(r, flash)

	data := ParkingSlotsViewData{
		Form:     form,
		Sizes:    models.SlotSizes,
		Statuses: models.SlotStatuses,
	}
	page, err := api.ParkingSlots.List(ctx, state.Params())
	if aborted(err) || h.signedOut(w, r, err) {
		return
	}
	total := 0
	if page != nil {
		data.Slots = page.Items
		total = page.Total
	}

	if state.Dialog.NeedsSelection() {
		data.Selected = findByID(data.Slots, state.Selected, func(s models.ParkingSlot) string { return s.ID })
		if data.Selected == nil {
			data.Selected, err = api.ParkingSlots.Get(ctx, state.Selected)
			if aborted(err) {
				return
			}
		}
		if data.Selected == nil {
			state.Close()
		} else if state.Dialog == views.DialogEdit && form == (SlotForm{}) {
			data.Form = SlotForm{
				ParkingID: data.Selected.ParkingID,
				Size:      string(data.Selected.Size),
				Status:    string(data.Selected.Status),
			}
		}
	}

	data.ListView = ListView{
		PageData:   h.pageData(r, "Parking Slots", "parking-slots", flash),
		Base:       slotsBase,
		State:      state,
		Pagination: views.NewPagination(state.Page, state.PageSize, total),
		FormError:  formError,
	}
	h.render(w, "parking_slots.tmpl", data)
}

func slotForm(r *http.Request) SlotForm {
	return SlotForm{
		ParkingID: strings.TrimSpace(r.PostFormValue("parkingId")),
		Size:      r.PostFormValue("parkingSlotSize"),
		Status:    r.PostFormValue("parkingSlotStatus"),
		Count:     strings.TrimSpace(r.PostFormValue("numberOfParkingSlots")),
	}
}

// Create handles the single slot dialog
func (h *ParkingSlotHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	state := views.ParseListState(r.URL.Query(), h.pageSize, slotFilters...)
	form := slotForm(r)

	result := &notify.Flash{}
	_, err := h.api(r, result).ParkingSlots.Create(r.Context(), models.CreateParkingSlotRequest{
		ParkingID: form.ParkingID,
		Size:      models.SlotSize(form.Size),
	})
	if err != nil {
		if aborted(err) {
			return
		}
		state.OpenCreate()
		h.renderList(w, r, state, &notify.Flash{}, form, result.LastError())
		return
	}

	h.redirect(w, r, result, state.ClosedURL(slotsBase))
}

// CreateMany handles the bulk dialog
func (h *ParkingSlotHandler) CreateMany(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	state := views.ParseListState(r.URL.Query(), h.pageSize, slotFilters...)
	form := slotForm(r)

	// A non-number is left at zero and rejected by validation
	count, _ := strconv.Atoi(form.Count)

	result := &notify.Flash{}
	_, err := h.api(r, result).ParkingSlots.CreateMany(r.Context(), models.CreateManyParkingSlotsRequest{
		ParkingID: form.ParkingID,
		Count:     count,
		Size:      models.SlotSize(form.Size),
	})
	if err != nil {
		if aborted(err) {
			return
		}
		state.OpenCreateMany()
		h.renderList(w, r, state, &notify.Flash{}, form, result.LastError())
		return
	}

	h.redirect(w, r, result, state.ClosedURL(slotsBase))
}

// Update handles the edit dialog
func (h *ParkingSlotHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	id := r.PathValue("id")
	state := views.ParseListState(r.URL.Query(), h.pageSize, slotFilters...)
	form := slotForm(r)

	result := &notify.Flash{}
	_, err := h.api(r, result).ParkingSlots.Update(r.Context(), id, models.UpdateParkingSlotRequest{
		ParkingID: form.ParkingID,
		Size:      models.SlotSize(form.Size),
		Status:    models.SlotStatus(form.Status),
	})
	if err != nil {
		if aborted(err) {
			return
		}
		state.OpenEdit(id)
		h.renderList(w, r, state, &notify.Flash{}, form, result.LastError())
		return
	}

	h.redirect(w, r, result, state.ClosedURL(slotsBase))
}

// Delete handles the confirmed delete dialog
func (h *ParkingSlotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	state := views.ParseListState(r.URL.Query(), h.pageSize, slotFilters...)

	result := &notify.Flash{}
	if err := h.api(r, result).ParkingSlots.Delete(r.Context(), id); err != nil {
		if aborted(err) {
			return
		}
		state.OpenDelete(id)
		h.renderList(w, r, state, &notify.Flash{}, SlotForm{}, result.LastError())
		return
	}

	h.redirect(w, r, result, state.ClosedURL(slotsBase))
}
