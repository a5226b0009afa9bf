package handlers

import (
	"context"
	"log"
	"net/http"

	"golang.org/x/sync/errgroup"

	"parkingconsole/internal/backend"
	"parkingconsole/internal/models"
	"parkingconsole/internal/notify"
)

const recentOrders = 5

// DashboardHandler renders the signed-in landing page
type DashboardHandler struct {
	*Pages
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(pages *Pages) *DashboardHandler {
	return &DashboardHandler{Pages: pages}
}

// Show greets the user and shows collection totals. A total that cannot be
// fetched is shown as unavailable instead of failing the page.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := GetSessionFromContext(ctx)

	// Totals fail quietly; only the recent orders table reports errors
	counts := h.client.For(sess, notify.Discard{})
	flash := &notify.Flash{}
	api := h.api(r, flash)

	stats := []StatCard{
		{Title: "Available Parking Slots", Description: "ready to be booked", Link: "/parking-slots?" + backend.FilterSlotStatus + "=" + string(models.SlotAvailable)},
		{Title: "Active Bookings", Description: "ongoing reservations", Link: "/orders?" + backend.FilterOrderStatus + "=" + string(models.OrderActive)},
		{Title: "Parking Slots", Description: "across all parkings", Link: "/parking-slots"},
	}
	fetches := []func(ctx context.Context, p backend.ListParams) (int, error){
		func(ctx context.Context, p backend.ListParams) (int, error) {
			p.Filters = map[string]string{backend.FilterSlotStatus: string(models.SlotAvailable)}
			page, err := counts.ParkingSlots.List(ctx, p)
			return total(page, err)
		},
		func(ctx context.Context, p backend.ListParams) (int, error) {
			p.Filters = map[string]string{backend.FilterOrderStatus: string(models.OrderActive)}
			page, err := counts.Orders.List(ctx, p)
			return total(page, err)
		},
		func(ctx context.Context, p backend.ListParams) (int, error) {
			page, err := counts.ParkingSlots.List(ctx, p)
			return total(page, err)
		},
	}
	if sess.IsAdmin() {
		stats = append(stats, StatCard{Title: "Registered Users", Description: "console accounts", Link: "/users"})
		fetches = append(fetches, func(ctx context.Context, p backend.ListParams) (int, error) {
			page, err := counts.Users.List(ctx, p)
			return total(page, err)
		})
	}

	var g errgroup.Group
	for i := range stats {
		g.Go(func() error {
			n, err := fetches[i](ctx, backend.ListParams{Page: 1, Limit: 1})
			if err != nil {
				if !aborted(err) {
					log.Printf("Dashboard: failed to load %q: %v", stats[i].Title, err)
				}
				stats[i].Unavailable = true
				return nil
			}
			stats[i].Value = n
			return nil
		})
	}

	var recent []models.ParkingSlotOrder
	g.Go(func() error {
		page, err := api.Orders.List(ctx, backend.ListParams{Page: 1, Limit: recentOrders})
		if err != nil {
			return err
		}
		recent = page.Items
		return nil
	})

	err := g.Wait()
	if aborted(err) || h.signedOut(w, r, err) {
		return
	}

	h.render(w, "dashboard.tmpl", DashboardViewData{
		PageData: h.pageData(r, "Dashboard", "dashboard", flash),
		Stats:    stats,
		Recent:   recent,
	})
}

func total[T any](page *backend.Page[T], err error) (int, error) {
	if err != nil {
		return 0, err
	}
	return page.Total, nil
}
