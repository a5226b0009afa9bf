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

const (
	ordersBase = "/orders"

	// Narrow the listing to the orders of one slot or one customer
	scopeSlot = "parkingSlotId"
	scopeUser = "userId"
)

var orderFilters = []string{backend.FilterOrderStatus, scopeSlot, scopeUser}

// OrderHandler serves parking slot order management
type OrderHandler struct {
	*Pages
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(pages *Pages) *OrderHandler {
	return &OrderHandler{Pages: pages}
}

// List renders one page of orders. With parkingSlotId or userId in the
// query only that slot's or customer's orders are listed.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	state := views.ParseListState(r.URL.Query(), h.pageSize, orderFilters...)
	h.renderList(w, r, state, &notify.Flash{}, OrderForm{}, "")
}

func (h *OrderHandler) fetch(r *http.Request, api *backend.API, state views.ListState) (*backend.Page[models.ParkingSlotOrder], string, error) {
	params := state.Params()
	slotID, userID := params.Filters[scopeSlot], params.Filters[scopeUser]
	delete(params.Filters, scopeSlot)
	delete(params.Filters, scopeUser)

	switch {
	case slotID != "":
		page, err := api.Orders.ListBySlot(r.Context(), slotID, params)
		return page, "Parking slot " + slotID, err
	case userID != "":
		page, err := api.Orders.ListByUser(r.Context(), userID, params)
		return page, "Customer " + userID, err
	default:
		page, err := api.Orders.List(r.Context(), params)
		return page, "", err
	}
}

func (h *OrderHandler) renderList(w http.ResponseWriter, r *http.Request, state views.ListState, flash *notify.Flash, form OrderForm, formError string) {
	ctx := r.Context()
	api := h.api(r, flash)

	data := OrdersViewData{Form: form, Statuses: models.OrderStatuses}
	page, scope, err := h.fetch(r, api, state)
	if aborted(err) || h.signedOut(w, r, err) {
		return
	}
	data.Scope = scope
	total := 0
	if page != nil {
		data.Orders = page.Items
		total = page.Total
	}

	if state.Dialog.NeedsSelection() {
		data.Selected = findByID(data.Orders, state.Selected, func(o models.ParkingSlotOrder) string { return o.ID })
		if data.Selected == nil {
			data.Selected, err = api.Orders.Get(ctx, state.Selected)
			if aborted(err) {
				return
			}
		}
		if data.Selected == nil {
			state.Close()
		} else if state.Dialog == views.DialogEdit && form == (OrderForm{}) {
			data.Form = OrderForm{
				ParkingSlotID: data.Selected.ParkingSlotID,
				Hours:         strconv.FormatFloat(data.Selected.Hours, 'f', -1, 64),
			}
		}
	}

	data.ListView = ListView{
		PageData:   h.pageData(r, "Parking Slot Orders", "orders", flash),
		Base:       ordersBase,
		State:      state,
		Pagination: views.NewPagination(state.Page, state.PageSize, total),
		FormError:  formError,
	}
	h.render(w, "orders.tmpl", data)
}

func orderForm(r *http.Request) OrderForm {
	return OrderForm{
		ParkingSlotID:      strings.TrimSpace(r.PostFormValue("parkingSlotId")),
		VehiclePlateNumber: strings.TrimSpace(r.PostFormValue("vehiclePlateNumber")),
		Hours:              strings.TrimSpace(r.PostFormValue("hours")),
	}
}

// Create handles the "Book Parking" dialog
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	state := views.ParseListState(r.URL.Query(), h.pageSize, orderFilters...)
	form := orderForm(r)

	result := &notify.Flash{}
	_, err := h.api(r, result).Orders.Create(r.Context(), models.CreateOrderRequest{
		ParkingSlotID:      form.ParkingSlotID,
		VehiclePlateNumber: form.VehiclePlateNumber,
	})
	if err != nil {
		if aborted(err) {
			return
		}
		state.OpenCreate()
		h.renderList(w, r, state, &notify.Flash{}, form, result.LastError())
		return
	}

	h.redirect(w, r, result, state.ClosedURL(ordersBase))
}

// Update handles the edit dialog
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	id := r.PathValue("id")
	state := views.ParseListState(r.URL.Query(), h.pageSize, orderFilters...)
	form := orderForm(r)

	req := models.UpdateOrderRequest{ParkingSlotID: form.ParkingSlotID}
	if form.Hours != "" {
		hours, err := strconv.ParseFloat(form.Hours, 64)
		if err != nil {
			state.OpenEdit(id)
			h.renderList(w, r, state, &notify.Flash{}, form, "hours: must be a number")
			return
		}
		req.Hours = hours
	}

	result := &notify.Flash{}
	if _, err := h.api(r, result).Orders.Update(r.Context(), id, req); err != nil {
		if aborted(err) {
			return
		}
		state.OpenEdit(id)
		h.renderList(w, r, state, &notify.Flash{}, form, result.LastError())
		return
	}

	h.redirect(w, r, result, state.ClosedURL(ordersBase))
}

// UpdateStatus moves an order along its lifecycle from the details dialog
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	id := r.PathValue("id")
	state := views.ParseListState(r.URL.Query(), h.pageSize, orderFilters...)
	status := models.OrderStatus(r.PostFormValue("status"))

	result := &notify.Flash{}
	if _, err := h.api(r, result).Orders.UpdateStatus(r.Context(), id, status); err != nil {
		if aborted(err) {
			return
		}
		state.OpenDetails(id)
		h.renderList(w, r, state, &notify.Flash{}, OrderForm{}, result.LastError())
		return
	}

	h.redirect(w, r, result, state.ClosedURL(ordersBase))
}

// Delete cancels an order after confirmation
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	state := views.ParseListState(r.URL.Query(), h.pageSize, orderFilters...)

	result := &notify.Flash{}
	if err := h.api(r, result).Orders.Delete(r.Context(), id); err != nil {
		if aborted(err) {
			return
		}
		state.OpenDelete(id)
		h.renderList(w, r, state, &notify.Flash{}, OrderForm{}, result.LastError())
		return
	}

	h.redirect(w, r, result, state.ClosedURL(ordersBase))
}
