package pricing

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var vehicleLabels = map[VehicleType]string{
	VehicleCar:          "Voiture",
	VehicleVan:          "Camionnette",
	VehicleTruck:        "Camion",
	VehicleSemi:         "Semi-remorque",
	VehicleRefrigerated: "Camion frigorifique",
}

var feeLabels = map[FeeKind]string{
	FeeManualLoading: "Chargement manuel",
	FeeFragile:       "Marchandise fragile",
	FeeUrgent:        "Livraison urgente",
}

var currencyPrinter = message.NewPrinter(language.French)

// FormatCurrency renders an amount with French digit grouping, e.g. "81 150 FCFA".
func FormatCurrency(amount int64) string {
	return currencyPrinter.Sprintf("%d", amount) + " " + CurrencySuffix
}

// VehicleTypeLabel returns the display name of a vehicle class. Unknown values
// are returned as-is.
func VehicleTypeLabel(v VehicleType) string {
	if label, ok := vehicleLabels[v]; ok {
		return label
	}
	return string(v)
}

// AdditionalFeeLabel returns the display name of a fee kind.
func AdditionalFeeLabel(k FeeKind) string {
	if label, ok := feeLabels[k]; ok {
		return label
	}
	return string(k)
}

// GetVehicleWeightCapacity returns the advisory capacity used by forms.
func GetVehicleWeightCapacity(v VehicleType) (WeightRange, bool) {
	r, ok := VehicleWeightCapacities[v]
	return r, ok
}

const basePricePerKgKm = 0.12

type scaleStep struct {
	Over  float64
	Scale float64
}

var (
	distanceScaleSteps = []scaleStep{{500, 0.70}, {200, 0.80}, {100, 0.90}}
	weightScaleSteps   = []scaleStep{{10000, 0.60}, {5000, 0.70}, {1000, 0.85}}
)

func scaleFor(steps []scaleStep, v float64) float64 {
	for _, s := range steps {
		if v > s.Over {
			return s.Scale
		}
	}
	return 1.0
}

// CalculatePricePerKgKm gives an illustrative marginal rate per kilogram per
// kilometer, cheaper for longer and heavier loads. It is informational only and
// is not the formula CalculatePrice uses.
func CalculatePricePerKgKm(distanceKm, weight float64) float64 {
	if distanceKm <= 0 || weight <= 0 {
		return 0
	}
	return basePricePerKgKm * scaleFor(distanceScaleSteps, distanceKm) * scaleFor(weightScaleSteps, weight)
}
