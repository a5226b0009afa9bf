package backend

import (
	"context"
	"net/http"
	"net/url"

	"parkingconsole/internal/models"
)

// FilterOrderStatus narrows an order list to one status
const FilterOrderStatus = "parkingSlotOrderStatus"

// Orders is the /parkingSlot-orders collection
type Orders struct {
	*Resource[models.ParkingSlotOrder, models.CreateOrderRequest, models.UpdateOrderRequest]
}

func newOrders(api *API) *Orders {
	return &Orders{newResource[models.ParkingSlotOrder, models.CreateOrderRequest, models.UpdateOrderRequest](
		api, "parkingSlotOrders", "/parkingSlot-orders", Labels{Singular: "parking slot order", Plural: "parking slot orders"})}
}

// UpdateStatus moves an order to status
func (o *Orders) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.ParkingSlotOrder, error) {
	return o.mutate(ctx, "update_status", http.MethodPatch, o.path+"/"+url.PathEscape(id)+"/status", id,
		models.UpdateOrderStatusRequest{Status: status},
		"Failed to update parking slot order status", "Parking slot order status updated successfully")
}

// ListBySlot lists the orders booked on one parking slot
func (o *Orders) ListBySlot(ctx context.Context, slotID string, params ListParams) (*Page[models.ParkingSlotOrder], error) {
	return o.list(ctx, o.path+"/parkingSlot/"+url.PathEscape(slotID), params, o.labels.failed("fetch", true))
}

// ListByUser lists the orders of one customer
func (o *Orders) ListByUser(ctx context.Context, userID string, params ListParams) (*Page[models.ParkingSlotOrder], error) {
	return o.list(ctx, o.path+"/user/"+url.PathEscape(userID), params, o.labels.failed("fetch", true))
}
