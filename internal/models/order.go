package models

import (
	"fmt"
	"math"

	"parkingconsole/internal/validation"
)

// OrderStatus is the lifecycle state of a parking slot order
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderActive    OrderStatus = "ACTIVE"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// OrderStatuses lists the statuses in lifecycle order
var OrderStatuses = []OrderStatus{OrderPending, OrderActive, OrderCompleted, OrderCancelled}

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderActive, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// BadgeClass returns the css class used for the status badge
func (s OrderStatus) BadgeClass() string {
	switch s {
	case OrderPending:
		return "badge-pending"
	case OrderActive:
		return "badge-active"
	case OrderCompleted:
		return "badge-completed"
	case OrderCancelled:
		return "badge-cancelled"
	default:
		return "badge-unknown"
	}
}

// Vehicle is the vehicle booked on an order
type Vehicle struct {
	ID          string `json:"id"`
	PlateNumber string `json:"vehiclePlateNumber"`
}

// ParkingSlotOrder mirrors the backend order resource
type ParkingSlotOrder struct {
	ID            string       `json:"id"`
	CustomerID    string       `json:"parkingSlotCustomerId,omitempty"`
	ParkingSlotID string       `json:"parkingSlotId"`
	VehicleID     string       `json:"vehicleId"`
	PricePerHour  float64      `json:"pricePerHour"`
	Hours         float64      `json:"hours"`
	Status        OrderStatus  `json:"parkingSlotOrderStatus"`
	ParkingSlot   *ParkingSlot `json:"parkingSlot,omitempty"`
	Vehicle       *Vehicle     `json:"parkingSlotVehicle,omitempty"`
}

// TotalCost is price per hour times hours. It is derived and never stored.
func (o ParkingSlotOrder) TotalCost() float64 {
	return o.PricePerHour * o.Hours
}

// ShortID returns the id prefix shown in list tables
func (o ParkingSlotOrder) ShortID() string {
	return shortID(o.ID)
}

// SlotNumber returns the nested slot number or "-"
func (o ParkingSlotOrder) SlotNumber() string {
	if o.ParkingSlot == nil || o.ParkingSlot.SlotNumber == "" {
		return "-"
	}
	return o.ParkingSlot.SlotNumber
}

// PlateNumber returns the nested vehicle plate or "-"
func (o ParkingSlotOrder) PlateNumber() string {
	if o.Vehicle == nil || o.Vehicle.PlateNumber == "" {
		return "-"
	}
	return o.Vehicle.PlateNumber
}

// FormatMoney renders an amount with two decimals, rounding half away from zero
func FormatMoney(amount float64) string {
	return fmt.Sprintf("%.2f", math.Round(amount*100)/100)
}

// CreateOrderRequest books a slot for a vehicle plate
type CreateOrderRequest struct {
	ParkingSlotID      string `json:"parkingSlotId"`
	VehiclePlateNumber string `json:"vehiclePlateNumber"`
}

// Validate checks the booking form rules
func (r CreateOrderRequest) Validate() error {
	if err := validation.ValidateRequired("parkingSlotId", r.ParkingSlotID); err != nil {
		return err
	}
	return validation.ValidateRequired("vehiclePlateNumber", r.VehiclePlateNumber)
}

// UpdateOrderRequest edits the booked slot or duration
type UpdateOrderRequest struct {
	ParkingSlotID string  `json:"parkingSlotId,omitempty"`
	Hours         float64 `json:"hours,omitempty"`
}

// Validate checks the edit form rules
func (r UpdateOrderRequest) Validate() error {
	if math.IsNaN(r.Hours) || math.IsInf(r.Hours, 0) {
		return validation.ValidationError{Field: "hours", Message: "must be a finite number"}
	}
	if r.Hours < 0 {
		return validation.ValidationError{Field: "hours", Message: "must not be negative"}
	}
	return nil
}

// UpdateOrderStatusRequest moves an order to a new status
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"parkingSlotOrderStatus"`
}

// Validate checks the status is known
func (r UpdateOrderStatusRequest) Validate() error {
	if !r.Status.Valid() {
		return validation.ValidationError{Field: "parkingSlotOrderStatus", Message: fmt.Sprintf("unknown status %q", r.Status)}
	}
	return nil
}
