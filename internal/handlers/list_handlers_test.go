package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"parkingconsole/internal/models"
	"parkingconsole/internal/notify"
)

func userList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": []map[string]string{
			{"id": "u-1", "firstName": "Grace", "lastName": "Hopper", "email": "grace@example.com"},
			{"id": "u-2", "firstName": "Alan", "lastName": "Turing", "email": "alan@example.com"},
		},
		"total": 25, "page": 1, "limit": 10,
	})
}

func TestUserListRendersRowsAndPager(t *testing.T) {
	h := newConsoleHarness(t, userList)
	sid := h.signIn("admin@example.com", models.RoleAdmin)

	rec := h.do(http.MethodGet, "/users?search=gr", sid, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{"Grace Hopper", "alan@example.com", "page=2", "page=3"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in the page", want)
		}
	}
	if strings.Contains(body, "page=4") {
		t.Error("25 items at 10 per page must not link a fourth page")
	}

	call := h.lastCall(http.MethodGet)
	if call.Path != "/api/v1/user/" || call.Auth != "Bearer tok-123" {
		t.Errorf("unexpected backend call %+v", call)
	}
	if call.Query.Get("page") != "1" || call.Query.Get("limit") != "10" || call.Query.Get("search") != "gr" {
		t.Errorf("unexpected query %v", call.Query)
	}
}

func TestCreateUserRedirectsWithFlash(t *testing.T) {
	h := newConsoleHarness(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			writeJSON(w, http.StatusCreated, map[string]interface{}{
				"status": "success", "data": map[string]string{"id": "u-9", "email": "jane@example.com"},
			})
			return
		}
		userList(w, r)
	})
	sid := h.signIn("admin@example.com", models.RoleAdmin)

	rec := h.do(http.MethodPost, "/users/create?page=2&search=j", sid, url.Values{
		"firstName": {"Jane"},
		"lastName":  {"Doe"},
		"email":     {"jane@example.com"},
		"password":  {"password1"},
	})

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != "/users?page=2&search=j" {
		t.Errorf("expected to return to the same list page, got %q", got)
	}

	call := h.lastCall(http.MethodPost)
	if call.Path != "/api/v1/user/" || call.Body["email"] != "jane@example.com" || call.Body["password"] != "password1" {
		t.Errorf("unexpected create call %+v", call)
	}

	msgs := h.pendingFlash(sid)
	if len(msgs) != 1 || msgs[0].Kind != notify.KindSuccess || msgs[0].Text != "User created successfully" {
		t.Errorf("unexpected flash %+v", msgs)
	}
}

func TestCreateUserFailureKeepsDialogOpen(t *testing.T) {
	h := newConsoleHarness(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			writeJSON(w, http.StatusConflict, map[string]string{"status": "error", "message": "Email already in use"})
			return
		}
		userList(w, r)
	})
	sid := h.signIn("admin@example.com", models.RoleAdmin)

	rec := h.do(http.MethodPost, "/users/create", sid, url.Values{
		"firstName": {"Jane"},
		"lastName":  {"Doe"},
		"email":     {"jane@example.com"},
		"password":  {"password1"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected the list to be re-rendered, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Add User</h2>") {
		t.Error("expected the create dialog to stay open")
	}
	if strings.Count(body, "Email already in use") != 1 {
		t.Error("expected the server message exactly once")
	}
	if !strings.Contains(body, `value="jane@example.com"`) {
		t.Error("expected the submitted values to be kept")
	}
	if !strings.Contains(body, "Grace Hopper") {
		t.Error("expected the list to be fetched again")
	}
	if msgs := h.pendingFlash(sid); len(msgs) != 0 {
		t.Errorf("a failed dialog must not leave a pending flash, got %+v", msgs)
	}
}

func TestCreateUserValidationSkipsBackend(t *testing.T) {
	h := newConsoleHarness(t, userList)
	sid := h.signIn("admin@example.com", models.RoleAdmin)

	rec := h.do(http.MethodPost, "/users/create", sid, url.Values{
		"firstName": {"Jane"},
		"lastName":  {"Doe"},
		"email":     {"not-an-email"},
		"password":  {"password1"},
	})

	if !strings.Contains(rec.Body.String(), "invalid email address") {
		t.Error("expected the validation message in the dialog")
	}
	for _, c := range h.backendCalls() {
		if c.Method == http.MethodPost {
			t.Errorf("invalid form reached the backend: %+v", c)
		}
	}
}

func slotList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": []map[string]string{
			{"id": "s-1", "parkingId": "p-1", "parkingSlotNumber": "A1", "parkingSlotSize": "SMALL", "parkingSlotStatus": "AVAILABLE"},
		},
		"total": 1,
	})
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	h := newConsoleHarness(t, slotList)
	sid := h.signIn("admin@example.com", models.RoleAdmin)

	rec := h.do(http.MethodGet, "/parking-slots?dialog=delete&id=s-1", sid, nil)
	body := rec.Body.String()
	if !strings.Contains(body, "Delete Parking Slot") || !strings.Contains(body, `action="/parking-slots/s-1/delete"`) {
		t.Errorf("expected confirmation dialog, got %s", body)
	}
	for _, c := range h.backendCalls() {
		if c.Method == http.MethodDelete {
			t.Fatal("opening the dialog must not delete anything")
		}
	}
}

func TestDeleteParkingSlot(t *testing.T) {
	h := newConsoleHarness(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
			return
		}
		slotList(w, r)
	})
	sid := h.signIn("admin@example.com", models.RoleAdmin)

	rec := h.do(http.MethodPost, "/parking-slots/s-1/delete?parkingSlotSize=SMALL", sid, url.Values{})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/parking-slots?parkingSlotSize=SMALL" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if call := h.lastCall(http.MethodDelete); call.Path != "/api/v1/parkingSlots/s-1" {
		t.Errorf("unexpected delete call %+v", call)
	}
	if msgs := h.pendingFlash(sid); len(msgs) != 1 || msgs[0].Text != "Parking slot deleted successfully" {
		t.Errorf("unexpected flash %+v", msgs)
	}
}

func TestSlotFiltersReachBackend(t *testing.T) {
	h := newConsoleHarness(t, slotList)
	sid := h.signIn("admin@example.com", models.RoleAdmin)

	h.do(http.MethodGet, "/parking-slots?parkingSlotSize=LARGE&parkingSlotStatus=OCCUPIED&page=2", sid, nil)

	call := h.lastCall(http.MethodGet)
	if call.Query.Get("parkingSlotSize") != "LARGE" || call.Query.Get("parkingSlotStatus") != "OCCUPIED" || call.Query.Get("page") != "2" {
		t.Errorf("unexpected query %v", call.Query)
	}
}

func TestCreateManyParkingSlots(t *testing.T) {
	h := newConsoleHarness(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			writeJSON(w, http.StatusCreated, map[string]interface{}{"status": "success", "data": map[string]int{"count": 4}})
			return
		}
		slotList(w, r)
	})
	sid := h.signIn("admin@example.com", models.RoleAdmin)

	rec := h.do(http.MethodPost, "/parking-slots/create-many", sid, url.Values{
		"parkingId":            {"p-1"},
		"numberOfParkingSlots": {"4"},
		"parkingSlotSize":      {"STANDARD"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
	}
	call := h.lastCall(http.MethodPost)
	if call.Path != "/api/v1/parkingSlots/many" || call.Body["numberOfParkingSlots"] != float64(4) {
		t.Errorf("unexpected call %+v", call)
	}
	if msgs := h.pendingFlash(sid); len(msgs) != 1 || msgs[0].Text != "4 parking slots created successfully" {
		t.Errorf("unexpected flash %+v", msgs)
	}
}

func orderList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": []map[string]interface{}{
			{
				"id": "o-1", "parkingSlotId": "s-1", "pricePerHour": 5.5, "hours": 3,
				"parkingSlotOrderStatus": "ACTIVE",
				"parkingSlot":            map[string]string{"id": "s-1", "parkingSlotNumber": "B7"},
				"parkingSlotVehicle":     map[string]string{"id": "v-1", "vehiclePlateNumber": "KA-01-1234"},
			},
		},
		"total": 1,
	})
}

func TestOrderDetailsShowTotalCost(t *testing.T) {
	h := newConsoleHarness(t, orderList)
	sid := h.signIn("admin@example.com", models.RoleAdmin)

	body := h.do(http.MethodGet, "/orders?dialog=details&id=o-1", sid, nil).Body.String()
	for _, want := range []string{"Order Details", "$16.50", "KA-01-1234", "B7", `action="/orders/o-1/status"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in the details dialog", want)
		}
	}
}

func TestOrdersScopedToSlot(t *testing.T) {
	h := newConsoleHarness(t, orderList)
	sid := h.signIn("admin@example.com", models.RoleAdmin)

	h.do(http.MethodGet, "/orders?parkingSlotId=s-1&parkingSlotOrderStatus=ACTIVE", sid, nil)

	call := h.lastCall(http.MethodGet)
	if call.Path != "/api/v1/parkingSlot-orders/parkingSlot/s-1" {
		t.Errorf("unexpected path %s", call.Path)
	}
	if call.Query.Has("parkingSlotId") || call.Query.Get("parkingSlotOrderStatus") != "ACTIVE" {
		t.Errorf("unexpected query %v", call.Query)
	}
}

func TestOrderStatusChange(t *testing.T) {
	h := newConsoleHarness(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"status": "success", "data": map[string]string{"id": "o-1", "parkingSlotOrderStatus": "COMPLETED"},
			})
			return
		}
		orderList(w, r)
	})
	sid := h.signIn("admin@example.com", models.RoleAdmin)

	rec := h.do(http.MethodPost, "/orders/o-1/status", sid, url.Values{"status": {"COMPLETED"}})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/orders" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Header().Get("Location"))
	}
	call := h.lastCall(http.MethodPatch)
	if call.Path != "/api/v1/parkingSlot-orders/o-1/status" || call.Body["parkingSlotOrderStatus"] != "COMPLETED" {
		t.Errorf("unexpected call %+v", call)
	}
	if msgs := h.pendingFlash(sid); len(msgs) != 1 || msgs[0].Text != "Parking slot order status updated successfully" {
		t.Errorf("unexpected flash %+v", msgs)
	}
}

func TestDashboardShowsTotals(t *testing.T) {
	h := newConsoleHarness(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/v1/user/":
			writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "data": []interface{}{}, "total": 12})
		case r.URL.Path == "/api/v1/parkingSlots/" && r.URL.Query().Get("parkingSlotStatus") == "AVAILABLE":
			writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "data": []interface{}{}, "total": 28})
		case r.URL.Path == "/api/v1/parkingSlots/":
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error"})
		default:
			orderList(w, r)
		}
	})
	sid := h.signIn("admin@example.com", models.RoleAdmin)

	rec := h.do(http.MethodGet, "/dashboard", sid, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Welcome back, Ada!", ">28<", ">12<", "Registered Users", "n/a", "KA-01-1234"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q on the dashboard", want)
		}
	}
	if strings.Contains(body, "toast-error") {
		t.Error("a failed total must not raise an error message")
	}
}

func TestNewSearchStartsAtFirstPage(t *testing.T) {
	h := newConsoleHarness(t, userList)
	sid := h.signIn("admin@example.com", models.RoleAdmin)

	body := h.do(http.MethodGet, "/users?page=3&search=a", sid, nil).Body.String()
	start := strings.Index(body, `<form method="GET" action="/users"`)
	if start < 0 {
		t.Fatal("expected the search form on the page")
	}
	searchForm := body[start:]
	searchForm = searchForm[:strings.Index(searchForm, "</form>")]
	if strings.Contains(searchForm, `name="page"`) {
		t.Errorf("search form must not carry the current page: %s", searchForm)
	}
	if !strings.Contains(searchForm, `value="a"`) {
		t.Error("expected the current search term in the form")
	}

	// Submitting the form sends only the new term
	h.do(http.MethodGet, "/users?search=b", sid, nil)
	call := h.lastCall(http.MethodGet)
	if call.Query.Get("page") != "1" || call.Query.Get("search") != "b" {
		t.Errorf("expected page 1 for a new search, got %v", call.Query)
	}
}

func TestRejectedTokenSignsOut(t *testing.T) {
	h := newConsoleHarness(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"status": "error", "message": "jwt expired"})
	})
	sid := h.signIn("admin@example.com", models.RoleAdmin)

	rec := h.do(http.MethodGet, "/parking-slots?page=2", sid, nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	want := "/login?next=" + url.QueryEscape("/parking-slots?page=2")
	if got := rec.Header().Get("Location"); got != want {
		t.Errorf("expected redirect to %q, got %q", want, got)
	}
	if sess, _ := h.store.Get(context.Background(), sid); sess != nil {
		t.Errorf("expected the rejected session to be cleared, got %+v", sess)
	}
	if msgs := h.pendingFlash(sid); len(msgs) != 1 || msgs[0].Text != errSessionExpired {
		t.Errorf("unexpected flash %+v", msgs)
	}
}

func TestOrderHoursMustBeFinite(t *testing.T) {
	h := newConsoleHarness(t, orderList)
	sid := h.signIn("admin@example.com", models.RoleAdmin)

	for _, hours := range []string{"NaN", "Inf"} {
		rec := h.do(http.MethodPost, "/orders/o-1/update", sid, url.Values{"hours": {hours}})
		if rec.Code != http.StatusOK {
			t.Fatalf("hours=%s: expected the dialog to be re-rendered, got %d", hours, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "hours: must be a finite number") {
			t.Errorf("hours=%s: expected a field error in the dialog", hours)
		}
	}
	for _, c := range h.backendCalls() {
		if c.Method == http.MethodPatch {
			t.Errorf("non-finite hours reached the backend: %+v", c)
		}
	}
}
