package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"

	"github.com/aditya/go-freight/internal/pricing"
)

// Freight status constants
const (
	FreightStatusPending   = "pending"
	FreightStatusAssigned  = "assigned"
	FreightStatusInTransit = "in_transit"
	FreightStatusDelivered = "delivered"
	FreightStatusCancelled = "cancelled"
)

// Valid freight state transitions
var ValidFreightTransitions = map[string][]string{
	FreightStatusPending:   {FreightStatusAssigned, FreightStatusCancelled},
	FreightStatusAssigned:  {FreightStatusInTransit, FreightStatusPending, FreightStatusCancelled},
	FreightStatusInTransit: {FreightStatusDelivered},
	FreightStatusDelivered: {},
	FreightStatusCancelled: {},
}

type Freight struct {
	ID                 string         `db:"id" json:"id"`
	ShipperID          string         `db:"shipper_id" json:"shipper_id"`
	TransporterID      *string        `db:"transporter_id" json:"transporter_id,omitempty"`
	Origin             string         `db:"origin" json:"origin"`
	Destination        string         `db:"destination" json:"destination"`
	DistanceKm         float64        `db:"distance_km" json:"distance_km"`
	DistanceSource     string         `db:"distance_source" json:"distance_source"`
	VehicleType        string         `db:"vehicle_type" json:"vehicle_type"`
	WeightKg           float64        `db:"weight_kg" json:"weight_kg"`
	AdditionalFees     pq.StringArray `db:"additional_fees" json:"additional_fees"`
	EmptyReturn        bool           `db:"empty_return" json:"empty_return"`
	Price              int64          `db:"price" json:"price"`
	PriceBreakdown     types.JSONText `db:"price_breakdown" json:"price_breakdown"`
	QuoteID            *string        `db:"quote_id" json:"quote_id,omitempty"`
	Status             string         `db:"status" json:"status"`
	PickupDate         *time.Time     `db:"pickup_date" json:"pickup_date,omitempty"`
	Description        *string        `db:"description" json:"description,omitempty"`
	IdempotencyKey     *string        `db:"idempotency_key" json:"-"`
	CancellationReason *string        `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}

type CreateFreightRequest struct {
	ShipperID   string     `json:"shipper_id" validate:"required,uuid"`
	QuoteID     string     `json:"quote_id,omitempty" validate:"omitempty,uuid"`
	PickupDate  *time.Time `json:"pickup_date,omitempty"`
	Description string     `json:"description,omitempty" validate:"omitempty,max=1000"`

	// Used when no quote id is given; priced on the spot.
	Quote *QuoteRequest `json:"quote,omitempty" validate:"required_without=QuoteID"`
}

type AssignTransporterRequest struct {
	TransporterID string `json:"transporter_id" validate:"required,uuid"`
}

type UpdateFreightStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending assigned in_transit delivered"`
}

type CancelFreightRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type FreightFilter struct {
	ShipperID     string `validate:"omitempty,uuid"`
	TransporterID string `validate:"omitempty,uuid"`
	Status        string `validate:"omitempty,oneof=pending assigned in_transit delivered cancelled"`
	Limit         int    `validate:"gte=0,lte=100"`
	Offset        int    `validate:"gte=0"`
}

type FreightResponse struct {
	ID                 string             `json:"id"`
	ShipperID          string             `json:"shipper_id"`
	TransporterID      *string            `json:"transporter_id,omitempty"`
	Origin             string             `json:"origin"`
	Destination        string             `json:"destination"`
	DistanceKm         float64            `json:"distance_km"`
	DistanceSource     string             `json:"distance_source"`
	VehicleType        string             `json:"vehicle_type"`
	VehicleLabel       string             `json:"vehicle_label"`
	WeightKg           float64            `json:"weight_kg"`
	AdditionalFees     []string           `json:"additional_fees"`
	EmptyReturn        bool               `json:"empty_return"`
	Price              int64              `json:"price"`
	FormattedPrice     string             `json:"formatted_price"`
	PriceBreakdown     *pricing.Breakdown `json:"price_breakdown,omitempty"`
	QuoteID            *string            `json:"quote_id,omitempty"`
	Status             string             `json:"status"`
	PickupDate         *time.Time         `json:"pickup_date,omitempty"`
	Description        *string            `json:"description,omitempty"`
	CancellationReason *string            `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

func (f *Freight) ToResponse() *FreightResponse {
	resp := &FreightResponse{
		ID:                 f.ID,
		ShipperID:          f.ShipperID,
		TransporterID:      f.TransporterID,
		Origin:             f.Origin,
		Destination:        f.Destination,
		DistanceKm:         f.DistanceKm,
		DistanceSource:     f.DistanceSource,
		VehicleType:        f.VehicleType,
		VehicleLabel:       pricing.VehicleTypeLabel(pricing.VehicleType(f.VehicleType)),
		WeightKg:           f.WeightKg,
		AdditionalFees:     []string(f.AdditionalFees),
		EmptyReturn:        f.EmptyReturn,
		Price:              f.Price,
		FormattedPrice:     pricing.FormatCurrency(f.Price),
		QuoteID:            f.QuoteID,
		Status:             f.Status,
		PickupDate:         f.PickupDate,
		Description:        f.Description,
		CancellationReason: f.CancellationReason,
		CreatedAt:          f.CreatedAt,
		UpdatedAt:          f.UpdatedAt,
	}
	if resp.AdditionalFees == nil {
		resp.AdditionalFees = []string{}
	}

	if len(f.PriceBreakdown) > 0 {
		var b pricing.Breakdown
		if err := f.PriceBreakdown.Unmarshal(&b); err == nil {
			resp.PriceBreakdown = &b
		}
	}

	return resp
}

// CanTransitionTo checks if a freight can transition to a new status
func (f *Freight) CanTransitionTo(newStatus string) bool {
	validNextStates, exists := ValidFreightTransitions[f.Status]
	if !exists {
		return false
	}

	for _, state := range validNextStates {
		if state == newStatus {
			return true
		}
	}
	return false
}
