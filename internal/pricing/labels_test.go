package pricing

import (
	"math"
	"strings"
	"testing"
	"unicode"
)

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount     int64
		wantDigits string
		grouped    bool
	}{
		{81150, "81150", true},
		{1250000, "1250000", true},
		{950, "950", false},
		{0, "0", false},
	}

	for _, tt := range tests {
		got := FormatCurrency(tt.amount)
		if !strings.HasSuffix(got, " "+CurrencySuffix) {
			t.Errorf("FormatCurrency(%d) = %q, missing suffix", tt.amount, got)
		}
		number := strings.TrimSuffix(got, " "+CurrencySuffix)
		if digitsOnly(number) != tt.wantDigits {
			t.Errorf("FormatCurrency(%d) = %q, digits %q", tt.amount, got, digitsOnly(number))
		}
		if grouped := len(number) > len(tt.wantDigits); grouped != tt.grouped {
			t.Errorf("FormatCurrency(%d) = %q, grouped = %v, want %v", tt.amount, got, grouped, tt.grouped)
		}
	}
}

func TestLabels_EveryValueHasOne(t *testing.T) {
	for _, v := range VehicleTypes {
		if label := VehicleTypeLabel(v); label == "" || label == string(v) {
			t.Errorf("VehicleTypeLabel(%s) = %q", v, label)
		}
	}
	for _, k := range FeeKinds {
		if label := AdditionalFeeLabel(k); label == "" || label == string(k) {
			t.Errorf("AdditionalFeeLabel(%s) = %q", k, label)
		}
	}
	if got := VehicleTypeLabel("hovercraft"); got != "hovercraft" {
		t.Errorf("VehicleTypeLabel(unknown) = %q", got)
	}
}

func TestEnumListsMatchTables(t *testing.T) {
	if len(VehicleTypes) != len(CostPerKm) || len(VehicleTypes) != len(VehicleWeightCapacities) {
		t.Errorf("vehicle tables out of sync: %d types, %d rates, %d capacities",
			len(VehicleTypes), len(CostPerKm), len(VehicleWeightCapacities))
	}
	for _, v := range VehicleTypes {
		if !IsValidVehicleType(v) {
			t.Errorf("%s missing from CostPerKm", v)
		}
		if _, ok := GetVehicleWeightCapacity(v); !ok {
			t.Errorf("%s missing capacity", v)
		}
	}
	if len(FeeKinds) != len(AdditionalFees) {
		t.Errorf("fee tables out of sync")
	}
	for _, k := range FeeKinds {
		if !IsValidFeeKind(k) {
			t.Errorf("%s missing from AdditionalFees", k)
		}
	}
}

func TestClassifyWeight(t *testing.T) {
	tests := []struct {
		weight float64
		want   WeightTier
	}{
		{0, TierBase},
		{MediumWeightThreshold - 0.01, TierBase},
		{MediumWeightThreshold, TierMedium},
		{HeavyWeightThreshold - 1, TierMedium},
		{HeavyWeightThreshold, TierHeavy},
		{60000, TierHeavy},
	}
	for _, tt := range tests {
		if got := ClassifyWeight(tt.weight); got != tt.want {
			t.Errorf("ClassifyWeight(%v) = %v, want %v", tt.weight, got, tt.want)
		}
	}
}

func TestLongDistanceFactor(t *testing.T) {
	tests := []struct {
		km   float64
		want float64
	}{
		{0, 1.0},
		{400, 1.0},
		{400.1, 1.1},
		{800, 1.1},
		{801, 1.2},
		{5000, 1.2},
	}
	for _, tt := range tests {
		if got := LongDistanceFactor(tt.km); got != tt.want {
			t.Errorf("LongDistanceFactor(%v) = %v, want %v", tt.km, got, tt.want)
		}
	}
}

func TestTierWeightRange(t *testing.T) {
	tests := []struct {
		vehicle VehicleType
		want    WeightRange
		wantOK  bool
	}{
		{VehicleCar, WeightRange{Min: 0, Max: MediumWeightThreshold}, true},
		{VehicleVan, WeightRange{Min: 0, Max: HeavyWeightThreshold}, true},
		{VehicleTruck, WeightRange{Min: 0, Unbounded: true}, true},
		{VehicleSemi, WeightRange{Min: MediumWeightThreshold, Unbounded: true}, true},
		{"bicycle", WeightRange{}, false},
	}
	for _, tt := range tests {
		got, ok := TierWeightRange(tt.vehicle)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("TierWeightRange(%s) = %+v, %v; want %+v, %v", tt.vehicle, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestWeightRange_Contains(t *testing.T) {
	r := WeightRange{Min: 500, Max: 20000}
	if r.Contains(499) || !r.Contains(500) || !r.Contains(20000) || r.Contains(20001) {
		t.Errorf("Contains bounds wrong for %+v", r)
	}
	open := WeightRange{Min: 5000, Unbounded: true}
	if !open.Contains(1e9) || open.Contains(10) {
		t.Errorf("Contains wrong for unbounded %+v", open)
	}
}

func TestCalculatePricePerKgKm(t *testing.T) {
	tests := []struct {
		distance float64
		weight   float64
		want     float64
	}{
		{50, 500, 0.12},
		{150, 500, 0.12 * 0.9},
		{300, 2000, 0.12 * 0.8 * 0.85},
		{600, 6000, 0.12 * 0.7 * 0.7},
		{600, 20000, 0.12 * 0.7 * 0.6},
		{0, 1000, 0},
		{100, 0, 0},
	}
	for _, tt := range tests {
		if got := CalculatePricePerKgKm(tt.distance, tt.weight); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("CalculatePricePerKgKm(%v, %v) = %v, want %v", tt.distance, tt.weight, got, tt.want)
		}
	}

	if CalculatePricePerKgKm(1000, 20000) >= CalculatePricePerKgKm(50, 100) {
		t.Errorf("long heavy loads should be cheaper per kg-km")
	}
}
