package maps

import (
	"context"
	"fmt"

	"github.com/newrelic/go-agent/v3/newrelic"
	"googlemaps.github.io/maps"

	"github.com/aditya/go-freight/internal/pricing"
)

type directionsClient interface {
	Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error)
}

// RouteDistanceProvider resolves road distances through the Google Directions API.
type RouteDistanceProvider struct {
	client directionsClient
	region string
}

// NewRouteDistanceProvider creates a provider with the given API key.
func NewRouteDistanceProvider(apiKey string) (*RouteDistanceProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteDistanceProvider{client: client, region: "SN"}, nil
}

// Estimate returns the driving distance of the first suggested route.
func (p *RouteDistanceProvider) Estimate(ctx context.Context, origin, destination string) (pricing.Distance, error) {
	defer newrelic.FromContext(ctx).StartSegment("maps.directions").End()

	r := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        maps.TravelModeDriving,
		Language:    "fr",
		Region:      p.region,
	}

	routes, _, err := p.client.Directions(ctx, r)
	if err != nil {
		return pricing.Distance{}, fmt.Errorf("maps api error: %w", err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return pricing.Distance{}, fmt.Errorf("no route found from %q to %q", origin, destination)
	}

	meters := 0
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
	}

	return pricing.Distance{
		Km:         float64(meters) / 1000,
		Source:     pricing.SourceRoutingAPI,
		Confidence: pricing.ConfidenceHigh,
	}, nil
}
