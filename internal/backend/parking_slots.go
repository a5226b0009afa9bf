package backend

import (
	"context"
	"fmt"
	"net/http"

	"parkingconsole/internal/models"
)

// Slot list filter names understood by the backend
const (
	FilterSlotSize   = "parkingSlotSize"
	FilterSlotStatus = "parkingSlotStatus"
	FilterParkingID  = "parkingId"
)

// ParkingSlots is the /parkingSlots collection
type ParkingSlots struct {
	*Resource[models.ParkingSlot, models.CreateParkingSlotRequest, models.UpdateParkingSlotRequest]
}

func newParkingSlots(api *API) *ParkingSlots {
	return &ParkingSlots{newResource[models.ParkingSlot, models.CreateParkingSlotRequest, models.UpdateParkingSlotRequest](
		api, "parkingSlots", "/parkingSlots", Labels{Singular: "parking slot", Plural: "parking slots"})}
}

// CreateMany creates req.Count slots in one call and returns how many the backend made
func (s *ParkingSlots) CreateMany(ctx context.Context, req models.CreateManyParkingSlotsRequest) (int, error) {
	const failed = "Failed to create parking slots"

	if err := req.Validate(); err != nil {
		return 0, s.api.fail(err, failed)
	}

	env, err := s.api.send(ctx, call{
		resource: s.name,
		method:   http.MethodPost,
		path:     s.path + "/many",
		body:     req,
	})
	if err != nil {
		return 0, s.api.fail(err, failed)
	}

	count := req.Count
	if created, err := decode[models.CreatedCount](env); err == nil {
		count = created.Count
	}

	s.api.notifier.Success(fmt.Sprintf("%d parking slots created successfully", count))
	s.api.record(ctx, "create_many", s.name, req.ParkingID)
	return count, nil
}
