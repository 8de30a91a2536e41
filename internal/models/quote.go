package models

import (
	"time"

	"github.com/aditya/go-freight/internal/pricing"
)

type QuoteRequest struct {
	Origin                  string   `json:"origin" validate:"required_without=DistanceKm,max=200"`
	Destination             string   `json:"destination" validate:"required_without=DistanceKm,max=200"`
	DistanceKm              *float64 `json:"distance_km,omitempty" validate:"omitempty,gte=0,lte=10000"`
	VehicleType             string   `json:"vehicle_type" validate:"required,oneof=car van truck semi refrigerated"`
	WeightKg                float64  `json:"weight_kg" validate:"gte=0,lte=100000"`
	AdditionalFees          []string `json:"additional_fees,omitempty" validate:"omitempty,max=3,unique,dive,oneof=manual_loading fragile urgent"`
	EmptyReturn             bool     `json:"empty_return"`
	EmptyReturnDiscountRate *float64 `json:"empty_return_discount_rate,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// ToPricingRequest converts the request into engine input for a resolved distance.
func (r *QuoteRequest) ToPricingRequest(distanceKm float64) pricing.Request {
	fees := make([]pricing.FeeKind, 0, len(r.AdditionalFees))
	for _, f := range r.AdditionalFees {
		fees = append(fees, pricing.FeeKind(f))
	}
	return pricing.Request{
		DistanceKm:              distanceKm,
		VehicleType:             pricing.VehicleType(r.VehicleType),
		Weight:                  r.WeightKg,
		AdditionalFees:          fees,
		EmptyReturn:             r.EmptyReturn,
		EmptyReturnDiscountRate: r.EmptyReturnDiscountRate,
	}
}

// Quote is a priced request held in the quote cache until it expires.
type Quote struct {
	ID             string             `json:"id"`
	Request        QuoteRequest       `json:"request"`
	Distance       pricing.Distance   `json:"distance"`
	Pricing        *pricing.Breakdown `json:"pricing"`
	FormattedTotal string             `json:"formatted_total"`
	CreatedAt      time.Time          `json:"created_at"`
	ExpiresAt      time.Time          `json:"expires_at"`
}

type FeeLineResponse struct {
	Kind   string  `json:"kind"`
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

type QuoteResponse struct {
	ID                  string            `json:"id"`
	Origin              string            `json:"origin,omitempty"`
	Destination         string            `json:"destination,omitempty"`
	Distance            pricing.Distance  `json:"distance"`
	VehicleType         string            `json:"vehicle_type"`
	VehicleLabel        string            `json:"vehicle_label"`
	WeightKg            float64           `json:"weight_kg"`
	WeightTier          string            `json:"weight_tier"`
	BaseFee             float64           `json:"base_fee"`
	DistanceFee         float64           `json:"distance_fee"`
	DistanceFactor      float64           `json:"distance_factor"`
	AdditionalFees      []FeeLineResponse `json:"additional_fees"`
	EmptyReturnDiscount float64           `json:"empty_return_discount"`
	Total               int64             `json:"total"`
	FormattedTotal      string            `json:"formatted_total"`
	Currency            string            `json:"currency"`
	ExpiresAt           time.Time         `json:"expires_at"`
}

func (q *Quote) ToResponse() *QuoteResponse {
	fees := make([]FeeLineResponse, 0, len(q.Pricing.Breakdown.AdditionalFees))
	for _, f := range q.Pricing.Breakdown.AdditionalFees {
		fees = append(fees, FeeLineResponse{
			Kind:   string(f.Kind),
			Label:  pricing.AdditionalFeeLabel(f.Kind),
			Amount: f.Amount,
		})
	}

	return &QuoteResponse{
		ID:                  q.ID,
		Origin:              q.Request.Origin,
		Destination:         q.Request.Destination,
		Distance:            q.Distance,
		VehicleType:         q.Request.VehicleType,
		VehicleLabel:        pricing.VehicleTypeLabel(pricing.VehicleType(q.Request.VehicleType)),
		WeightKg:            q.Request.WeightKg,
		WeightTier:          string(q.Pricing.Tier),
		BaseFee:             q.Pricing.Breakdown.BaseFee,
		DistanceFee:         q.Pricing.Breakdown.DistanceFee,
		DistanceFactor:      q.Pricing.DistanceFactor,
		AdditionalFees:      fees,
		EmptyReturnDiscount: q.Pricing.Breakdown.EmptyReturnDiscount,
		Total:               q.Pricing.Total,
		FormattedTotal:      q.FormattedTotal,
		Currency:            pricing.CurrencyCode,
		ExpiresAt:           q.ExpiresAt,
	}
}

// VehicleInfo describes one vehicle class for pre-submission form checks.
type VehicleInfo struct {
	Type            string              `json:"type"`
	Label           string              `json:"label"`
	RatesPerKm      pricing.TierRates   `json:"rates_per_km"`
	AdvisoryWeight  pricing.WeightRange `json:"advisory_weight"`
	QuotableWeight  pricing.WeightRange `json:"quotable_weight"`
	HasQuotableTier bool                `json:"has_quotable_tier"`

	// Set only when the catalog is asked about a specific weight.
	CanCarry   *bool `json:"can_carry,omitempty"`
	AdvisoryOK *bool `json:"advisory_ok,omitempty"`
}

type FeeInfo struct {
	Kind   string            `json:"kind"`
	Label  string            `json:"label"`
	Effect pricing.FeeEffect `json:"effect"`
}

type PricePerKgKmResponse struct {
	DistanceKm   float64 `json:"distance_km"`
	WeightKg     float64 `json:"weight_kg"`
	PricePerKgKm float64 `json:"price_per_kg_km"`
	Currency     string  `json:"currency"`
}
