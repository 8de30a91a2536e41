package pricing

import (
	"fmt"
	"math"
)

// Request describes a trip to price. Weight defaults to zero, which is the
// base tier.
type Request struct {
	DistanceKm     float64
	VehicleType    VehicleType
	Weight         float64
	AdditionalFees []FeeKind
	EmptyReturn    bool
	// EmptyReturnDiscountRate is clamped into the discount range. Nil means
	// the minimum of the range.
	EmptyReturnDiscountRate *float64
}

// FeeLine is one resolved additional fee.
type FeeLine struct {
	Kind   FeeKind `json:"kind"`
	Amount float64 `json:"amount"`
}

// Components are the unrounded parts of a quote.
type Components struct {
	BaseFee             float64   `json:"base_fee"`
	DistanceFee         float64   `json:"distance_fee"`
	AdditionalFees      []FeeLine `json:"additional_fees"`
	EmptyReturnDiscount float64   `json:"empty_return_discount"`
}

// Breakdown is the result of CalculatePrice. Total equals
// round(BaseFee + DistanceFee + sum(AdditionalFees) - EmptyReturnDiscount).
type Breakdown struct {
	Total     int64      `json:"total"`
	Breakdown Components `json:"breakdown"`

	Tier                WeightTier `json:"weight_tier"`
	RatePerKm           float64    `json:"rate_per_km"`
	DistanceFactor      float64    `json:"distance_factor"`
	EmptyReturnRate     float64    `json:"empty_return_rate,omitempty"`
	TotalAdditionalFees float64    `json:"total_additional_fees"`
}

// CalculatePrice prices a trip. It returns *IncompatibleVehicleError when the
// vehicle cannot carry the weight tier.
func CalculatePrice(req Request) (*Breakdown, error) {
	if req.DistanceKm < 0 || math.IsNaN(req.DistanceKm) || math.IsInf(req.DistanceKm, 0) {
		return nil, fmt.Errorf("%w: distance must be a non-negative number", ErrInvalidRequest)
	}
	if req.Weight < 0 || math.IsNaN(req.Weight) || math.IsInf(req.Weight, 0) {
		return nil, fmt.Errorf("%w: weight must be a non-negative number", ErrInvalidRequest)
	}

	rates, ok := CostPerKm[req.VehicleType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVehicleType, req.VehicleType)
	}

	tier := ClassifyWeight(req.Weight)
	rate := rates.For(tier)
	if rate == 0 {
		return nil, &IncompatibleVehicleError{VehicleType: req.VehicleType, Weight: req.Weight, Tier: tier}
	}

	baseFee := BaseFee
	factor := LongDistanceFactor(req.DistanceKm)
	distanceFee := req.DistanceKm * rate * factor

	lines, totalFees, err := resolveFees(req.AdditionalFees, baseFee+distanceFee)
	if err != nil {
		return nil, err
	}

	subtotal := baseFee + distanceFee + totalFees

	discountRate := 0.0
	discount := 0.0
	if req.EmptyReturn {
		discountRate = EmptyReturnRate(req.EmptyReturnDiscountRate)
		discount = subtotal * discountRate
	}

	return &Breakdown{
		Total: roundTotal(subtotal - discount),
		Breakdown: Components{
			BaseFee:             baseFee,
			DistanceFee:         distanceFee,
			AdditionalFees:      lines,
			EmptyReturnDiscount: discount,
		},
		Tier:                tier,
		RatePerKm:           rate,
		DistanceFactor:      factor,
		EmptyReturnRate:     discountRate,
		TotalAdditionalFees: totalFees,
	}, nil
}

// resolveFees computes every requested fee against the same base + distance
// subtotal so percentages never compound. Repeated kinds count once.
func resolveFees(kinds []FeeKind, subtotal float64) ([]FeeLine, float64, error) {
	lines := make([]FeeLine, 0, len(kinds))
	seen := make(map[FeeKind]bool, len(kinds))
	total := 0.0

	for _, kind := range kinds {
		if seen[kind] {
			continue
		}
		effect, ok := AdditionalFees[kind]
		if !ok {
			return nil, 0, fmt.Errorf("%w: %q", ErrUnknownFeeKind, kind)
		}
		seen[kind] = true

		amount := effect.Value
		if effect.Type == EffectPercentage {
			amount = effect.Value * subtotal
		}

		lines = append(lines, FeeLine{Kind: kind, Amount: amount})
		total += amount
	}

	return lines, total, nil
}

// EmptyReturnRate resolves the backhaul discount rate for a caller-supplied
// value, clamping it into [MinEmptyReturnDiscount, MaxEmptyReturnDiscount].
func EmptyReturnRate(requested *float64) float64 {
	if requested == nil || math.IsNaN(*requested) {
		return MinEmptyReturnDiscount
	}
	return math.Min(math.Max(*requested, MinEmptyReturnDiscount), MaxEmptyReturnDiscount)
}

// CanCarry reports whether the vehicle has a non-zero rate for the weight.
func CanCarry(v VehicleType, weight float64) bool {
	rates, ok := CostPerKm[v]
	if !ok {
		return false
	}
	return rates.For(ClassifyWeight(weight)) != 0
}

// roundTotal rounds to the nearest currency unit, halves away from zero.
func roundTotal(amount float64) int64 {
	return int64(math.Round(amount))
}
