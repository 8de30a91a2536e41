package pricing

// VehicleType is a transporter vehicle class.
type VehicleType string

const (
	VehicleCar          VehicleType = "car"
	VehicleVan          VehicleType = "van"
	VehicleTruck        VehicleType = "truck"
	VehicleSemi         VehicleType = "semi"
	VehicleRefrigerated VehicleType = "refrigerated"
)

// VehicleTypes lists every vehicle class in display order.
var VehicleTypes = []VehicleType{VehicleCar, VehicleVan, VehicleTruck, VehicleSemi, VehicleRefrigerated}

// WeightTier is the band a shipment weight falls into.
type WeightTier string

const (
	TierBase   WeightTier = "base"
	TierMedium WeightTier = "medium"
	TierHeavy  WeightTier = "heavy"
)

// FeeKind identifies an optional handling surcharge.
type FeeKind string

const (
	FeeManualLoading FeeKind = "manual_loading"
	FeeFragile       FeeKind = "fragile"
	FeeUrgent        FeeKind = "urgent"
)

// FeeKinds lists every additional fee kind in display order.
var FeeKinds = []FeeKind{FeeManualLoading, FeeFragile, FeeUrgent}

// EffectType tells how a fee amount is derived.
type EffectType string

const (
	EffectFlat       EffectType = "flat"
	EffectPercentage EffectType = "percentage"
)

// FeeEffect is either a flat amount or a rate applied to base + distance.
type FeeEffect struct {
	Type  EffectType `json:"type"`
	Value float64    `json:"value"`
}

func Flat(amount float64) FeeEffect     { return FeeEffect{Type: EffectFlat, Value: amount} }
func Percentage(rate float64) FeeEffect { return FeeEffect{Type: EffectPercentage, Value: rate} }

// TierRates holds the per-km rate for each weight tier. A zero rate means the
// vehicle cannot carry that tier.
type TierRates struct {
	Base   float64 `json:"base"`
	Medium float64 `json:"medium"`
	Heavy  float64 `json:"heavy"`
}

func (r TierRates) For(tier WeightTier) float64 {
	switch tier {
	case TierHeavy:
		return r.Heavy
	case TierMedium:
		return r.Medium
	default:
		return r.Base
	}
}

// WeightRange is a kilogram range. Unbounded ranges have no upper limit and
// leave Max at zero.
type WeightRange struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Unbounded bool    `json:"unbounded,omitempty"`
}

// Contains reports whether weight lies inside the range, both ends inclusive.
func (r WeightRange) Contains(weight float64) bool {
	if weight < r.Min {
		return false
	}
	return r.Unbounded || weight <= r.Max
}

type longDistanceFactor struct {
	OverKm float64
	Factor float64
}

// Currency amounts are in CFA francs.
const (
	CurrencyCode   = "XOF"
	CurrencySuffix = "FCFA"

	BaseFee = 15000.0

	MediumWeightThreshold = 2000.0
	HeavyWeightThreshold  = 10000.0

	MinEmptyReturnDiscount = 0.20
	MaxEmptyReturnDiscount = 0.30

	DefaultDistanceKm = 100.0
)

// CostPerKm is the hard compatibility constraint: the calculator rejects any
// vehicle/tier pair whose rate is zero.
var CostPerKm = map[VehicleType]TierRates{
	VehicleCar:          {Base: 250, Medium: 0, Heavy: 0},
	VehicleVan:          {Base: 350, Medium: 450, Heavy: 0},
	VehicleTruck:        {Base: 500, Medium: 650, Heavy: 800},
	VehicleSemi:         {Base: 0, Medium: 900, Heavy: 1100},
	VehicleRefrigerated: {Base: 600, Medium: 750, Heavy: 950},
}

// AdditionalFees maps each surcharge to its effect.
var AdditionalFees = map[FeeKind]FeeEffect{
	FeeManualLoading: Flat(5000),
	FeeFragile:       Percentage(0.15),
	FeeUrgent:        Percentage(0.25),
}

// Checked from the largest threshold down.
var longDistanceFactors = []longDistanceFactor{
	{OverKm: 800, Factor: 1.20},
	{OverKm: 400, Factor: 1.10},
}

// VehicleWeightCapacities is advisory only. Forms use it to disable choices
// before submission; it is never consulted by CalculatePrice.
var VehicleWeightCapacities = map[VehicleType]WeightRange{
	VehicleCar:          {Min: 0, Max: 500},
	VehicleVan:          {Min: 0, Max: 3500},
	VehicleTruck:        {Min: 500, Max: 20000},
	VehicleSemi:         {Min: 5000, Max: 40000},
	VehicleRefrigerated: {Min: 0, Max: 15000},
}

// ClassifyWeight returns the tier for a weight in kilograms.
func ClassifyWeight(weight float64) WeightTier {
	switch {
	case weight >= HeavyWeightThreshold:
		return TierHeavy
	case weight >= MediumWeightThreshold:
		return TierMedium
	default:
		return TierBase
	}
}

// LongDistanceFactor returns the multiplier applied to the distance fee.
func LongDistanceFactor(distanceKm float64) float64 {
	for _, f := range longDistanceFactors {
		if distanceKm > f.OverKm {
			return f.Factor
		}
	}
	return 1.0
}

// TierWeightRange derives the weights a vehicle can legally be quoted for from
// the rate table. Max is exclusive here, since tiers switch at the threshold.
// ok is false when the vehicle has no usable tier.
func TierWeightRange(v VehicleType) (r WeightRange, ok bool) {
	rates, exists := CostPerKm[v]
	if !exists {
		return WeightRange{}, false
	}

	bounds := []struct {
		tier     WeightTier
		min, max float64
	}{
		{TierBase, 0, MediumWeightThreshold},
		{TierMedium, MediumWeightThreshold, HeavyWeightThreshold},
		{TierHeavy, HeavyWeightThreshold, 0},
	}

	for _, b := range bounds {
		if rates.For(b.tier) == 0 {
			continue
		}
		if !ok {
			r.Min = b.min
			ok = true
		}
		r.Max = b.max
		r.Unbounded = b.tier == TierHeavy
	}
	return r, ok
}

// IsValidVehicleType reports whether v is a known vehicle class.
func IsValidVehicleType(v VehicleType) bool {
	_, ok := CostPerKm[v]
	return ok
}

// IsValidFeeKind reports whether k is a known additional fee.
func IsValidFeeKind(k FeeKind) bool {
	_, ok := AdditionalFees[k]
	return ok
}
