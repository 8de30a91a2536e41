package pricing

import (
	"context"
	"sort"
	"strings"
)

// DistanceSource tells where a distance came from.
type DistanceSource string

const (
	SourceRouteTable DistanceSource = "route_table"
	SourceRoutingAPI DistanceSource = "routing_api"
	SourceDefault    DistanceSource = "default"
	SourceCaller     DistanceSource = "caller"
)

// Confidence of a resolved distance. Low means the default placeholder was used
// and callers should warn the user.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Distance is a resolved trip length.
type Distance struct {
	Km         float64        `json:"km"`
	Source     DistanceSource `json:"source"`
	Confidence Confidence     `json:"confidence"`
}

// DistanceProvider resolves the road distance between two places.
type DistanceProvider interface {
	Estimate(ctx context.Context, origin, destination string) (Distance, error)
}

// routes holds one direction per city pair; lookups try both.
var routes = map[string]map[string]float64{
	"Dakar": {
		"Thiès":       70,
		"Mbour":       83,
		"Diourbel":    146,
		"Kaolack":     189,
		"Touba":       194,
		"Louga":       203,
		"Saint-Louis": 264,
		"Fatick":      155,
		"Kaffrine":    250,
		"Ziguinchor":  454,
		"Tambacounda": 467,
		"Kolda":       668,
		"Matam":       695,
		"Kédougou":    702,
	},
	"Thiès": {
		"Mbour":       60,
		"Diourbel":    76,
		"Touba":       124,
		"Kaolack":     120,
		"Louga":       133,
		"Saint-Louis": 194,
	},
	"Kaolack": {
		"Fatick":      45,
		"Kaffrine":    63,
		"Diourbel":    72,
		"Touba":       110,
		"Tambacounda": 278,
		"Ziguinchor":  274,
	},
	"Saint-Louis": {
		"Louga": 71,
		"Matam": 428,
		"Podor": 210,
		"Touba": 180,
	},
	"Tambacounda": {
		"Kédougou": 235,
		"Kolda":    194,
		"Matam":    260,
	},
	"Ziguinchor": {
		"Kolda":   190,
		"Sédhiou": 100,
	},
}

// CityToken reduces "City, Region, Country" to "City".
func CityToken(place string) string {
	if i := strings.Index(place, ","); i >= 0 {
		place = place[:i]
	}
	return strings.TrimSpace(place)
}

// lookupRoute tries origin→destination then destination→origin.
func lookupRoute(origin, destination string) (float64, bool) {
	if d, ok := routes[origin][destination]; ok {
		return d, true
	}
	if d, ok := routes[destination][origin]; ok {
		return d, true
	}
	return 0, false
}

// EstimateDistance returns the table distance in kilometers between two
// places, or DefaultDistanceKm when the pair is unknown. It never fails.
func EstimateDistance(origin, destination string) float64 {
	return ResolveDistance(origin, destination).Km
}

// ResolveDistance is EstimateDistance with provenance attached.
func ResolveDistance(origin, destination string) Distance {
	o, d := CityToken(origin), CityToken(destination)
	if km, ok := lookupRoute(o, d); ok {
		return Distance{Km: km, Source: SourceRouteTable, Confidence: ConfidenceMedium}
	}
	return Distance{Km: DefaultDistanceKm, Source: SourceDefault, Confidence: ConfidenceLow}
}

// KnownCities returns every city present in the route table, sorted.
func KnownCities() []string {
	seen := make(map[string]bool)
	var cities []string
	add := func(c string) {
		if !seen[c] {
			seen[c] = true
			cities = append(cities, c)
		}
	}
	for from, to := range routes {
		add(from)
		for city := range to {
			add(city)
		}
	}
	sort.Strings(cities)
	return cities
}

// StaticTableProvider serves distances from the built-in route table.
type StaticTableProvider struct{}

func NewStaticTableProvider() *StaticTableProvider {
	return &StaticTableProvider{}
}

func (p *StaticTableProvider) Estimate(_ context.Context, origin, destination string) (Distance, error) {
	return ResolveDistance(origin, destination), nil
}
