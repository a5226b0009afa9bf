package handlers

import (
	"net/url"

	"parkingconsole/internal/models"
	"parkingconsole/internal/notify"
	"parkingconsole/internal/views"
)

// PageData is the layout part every page shares
type PageData struct {
	Title     string
	Nav       string
	Session   *models.Session
	CSRFToken string
	Flash     []notify.Message
}

type HomeViewData struct {
	PageData
}

type LoginViewData struct {
	PageData
	Error string
	Email string
	Next  string
}

type RegisterViewData struct {
	PageData
	Error     string
	FirstName string
	LastName  string
	Email     string
}

type ForgotPasswordViewData struct {
	PageData
	Error     string
	Email     string
	Submitted bool
}

type ResetPasswordViewData struct {
	PageData
	Token     string
	Error     string
	Submitted bool
}

type VerifyEmailViewData struct {
	PageData
	Email    string
	Token    string
	Error    string
	Verified bool
	Resent   bool
}

// StatCard is one number on the dashboard
type StatCard struct {
	Title       string
	Value       int
	Description string
	Link        string
	Unavailable bool
}

type DashboardViewData struct {
	PageData
	Stats  []StatCard
	Recent []models.ParkingSlotOrder
}

// ListView is the shared part of every list page
type ListView struct {
	PageData
	Base       string
	State      views.ListState
	Pagination views.Pagination
	// FormError is the message of a failed dialog submission
	FormError string
}

// PageURL links to page p keeping search and filters
func (l ListView) PageURL(p int) string {
	return l.State.PageURL(l.Base, p)
}

// DialogURL links to the list with dialog d open on id
func (l ListView) DialogURL(d, id string) string {
	return l.State.DialogURL(l.Base, views.Dialog(d), id)
}

// CloseURL links back to the list without a dialog
func (l ListView) CloseURL() string {
	return l.State.ClosedURL(l.Base)
}

// ActionURL is a form action under path that remembers the list state
func (l ListView) ActionURL(path string) string {
	s := l.State
	s.Close()
	if q := s.Query(); len(q) > 0 {
		return path + "?" + q.Encode()
	}
	return path
}

// EntityActionURL is ActionURL for a form acting on one entity
func (l ListView) EntityActionURL(id, action string) string {
	return l.ActionURL(l.Base + "/" + url.PathEscape(id) + "/" + action)
}

// IsOpen reports whether dialog d is showing
func (l ListView) IsOpen(d string) bool {
	return string(l.State.Dialog) == d
}

// Filter returns the current value of a filter
func (l ListView) Filter(name string) string {
	return l.State.Filters[name]
}

// DeleteDialogData fills the shared delete confirmation
type DeleteDialogData struct {
	Heading     string
	Description string
	Action      string
	View        ListView
}

// UserForm keeps the values of a failed user dialog
type UserForm struct {
	FirstName string
	LastName  string
	Email     string
}

type UsersViewData struct {
	ListView
	Users    []models.User
	Selected *models.User
	Form     UserForm
}

// SlotForm keeps the values of a failed parking slot dialog
type SlotForm struct {
	ParkingID string
	Size      string
	Status    string
	Count     string
}

type ParkingSlotsViewData struct {
	ListView
	Slots    []models.ParkingSlot
	Selected *models.ParkingSlot
	Form     SlotForm
	Sizes    []models.SlotSize
	Statuses []models.SlotStatus
}

// OrderForm keeps the values of a failed order dialog
type OrderForm struct {
	ParkingSlotID      string
	VehiclePlateNumber string
	Hours              string
}

type OrdersViewData struct {
	ListView
	Orders   []models.ParkingSlotOrder
	Selected *models.ParkingSlotOrder
	Form     OrderForm
	Statuses []models.OrderStatus
	// Scope describes a per-slot or per-customer listing
	Scope string
}
