package pricing

import (
	"errors"
	"fmt"
)

var (
	ErrIncompatibleVehicle = errors.New("vehicle cannot carry this weight")
	ErrUnknownVehicleType  = errors.New("unknown vehicle type")
	ErrUnknownFeeKind      = errors.New("unknown additional fee")
	ErrInvalidRequest      = errors.New("invalid pricing request")
)

// IncompatibleVehicleError is returned when the vehicle has a zero rate for
// the weight tier of the shipment.
type IncompatibleVehicleError struct {
	VehicleType VehicleType
	Weight      float64
	Tier        WeightTier
}

func (e *IncompatibleVehicleError) Error() string {
	return fmt.Sprintf("vehicle %s cannot carry %g kg (%s tier)", e.VehicleType, e.Weight, e.Tier)
}

func (e *IncompatibleVehicleError) Is(target error) bool {
	return target == ErrIncompatibleVehicle
}
