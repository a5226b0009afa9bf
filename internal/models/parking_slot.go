package models

import (
	"fmt"

	"parkingconsole/internal/validation"
)

// SlotSize is the physical size class of a parking slot
type SlotSize string

const (
	SlotSmall    SlotSize = "SMALL"
	SlotStandard SlotSize = "STANDARD"
	SlotLarge    SlotSize = "LARGE"
)

// SlotSizes lists the sizes in display order
var SlotSizes = []SlotSize{SlotSmall, SlotStandard, SlotLarge}

// Valid reports whether s is a known size
func (s SlotSize) Valid() bool {
	switch s {
	case SlotSmall, SlotStandard, SlotLarge:
		return true
	}
	return false
}

// SlotStatus is the occupancy state of a parking slot
type SlotStatus string

const (
	SlotAvailable SlotStatus = "AVAILABLE"
	SlotOccupied  SlotStatus = "OCCUPIED"
)

// SlotStatuses lists the statuses in display order
var SlotStatuses = []SlotStatus{SlotAvailable, SlotOccupied}

// Valid reports whether s is a known status
func (s SlotStatus) Valid() bool {
	return s == SlotAvailable || s == SlotOccupied
}

// Parking is the lot a slot belongs to
type Parking struct {
	ID           string  `json:"id"`
	MaxSlots     int     `json:"maxSlots"`
	Category     string  `json:"slotCategory"`
	PricePerHour float64 `json:"pricePerHour"`
}

// ParkingSlot mirrors the backend parking slot resource
type ParkingSlot struct {
	ID         string     `json:"id"`
	ParkingID  string     `json:"parkingId"`
	SlotNumber string     `json:"parkingSlotNumber"`
	Size       SlotSize   `json:"parkingSlotSize"`
	Status     SlotStatus `json:"parkingSlotStatus"`
	Parking    *Parking   `json:"parking,omitempty"`
}

// ShortID returns the id prefix shown in list tables
func (s ParkingSlot) ShortID() string {
	return shortID(s.ID)
}

// CreateParkingSlotRequest is the payload for a single slot
type CreateParkingSlotRequest struct {
	ParkingID string   `json:"parkingId"`
	Size      SlotSize `json:"parkingSlotSize"`
}

// Validate checks the create form rules
func (r CreateParkingSlotRequest) Validate() error {
	if err := validation.ValidateRequired("parkingId", r.ParkingID); err != nil {
		return err
	}
	if !r.Size.Valid() {
		return validation.ValidationError{Field: "parkingSlotSize", Message: fmt.Sprintf("unknown size %q", r.Size)}
	}
	return nil
}

// UpdateParkingSlotRequest carries only the fields being changed
type UpdateParkingSlotRequest struct {
	ParkingID string     `json:"parkingId,omitempty"`
	Size      SlotSize   `json:"parkingSlotSize,omitempty"`
	Status    SlotStatus `json:"parkingSlotStatus,omitempty"`
}

// Validate checks that any provided enum is known
func (r UpdateParkingSlotRequest) Validate() error {
	if r.Size != "" && !r.Size.Valid() {
		return validation.ValidationError{Field: "parkingSlotSize", Message: fmt.Sprintf("unknown size %q", r.Size)}
	}
	if r.Status != "" && !r.Status.Valid() {
		return validation.ValidationError{Field: "parkingSlotStatus", Message: fmt.Sprintf("unknown status %q", r.Status)}
	}
	return nil
}

// CreateManyParkingSlotsRequest creates Count slots of one size in a parking
type CreateManyParkingSlotsRequest struct {
	ParkingID string   `json:"parkingId"`
	Count     int      `json:"numberOfParkingSlots"`
	Size      SlotSize `json:"parkingSlotSize"`
}

// Validate checks the bulk form rules
func (r CreateManyParkingSlotsRequest) Validate() error {
	if err := validation.ValidateRequired("parkingId", r.ParkingID); err != nil {
		return err
	}
	if r.Count < 1 {
		return validation.ValidationError{Field: "numberOfParkingSlots", Message: "must be at least 1"}
	}
	if !r.Size.Valid() {
		return validation.ValidationError{Field: "parkingSlotSize", Message: fmt.Sprintf("unknown size %q", r.Size)}
	}
	return nil
}

// CreatedCount is the data payload of the bulk create endpoint
type CreatedCount struct {
	Count int `json:"count"`
}
