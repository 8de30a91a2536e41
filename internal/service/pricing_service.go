package service

import (
	"context"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/aditya/go-freight/internal/cache"
	apperrors "github.com/aditya/go-freight/internal/errors"
	"github.com/aditya/go-freight/internal/models"
	"github.com/aditya/go-freight/internal/pricing"
	"github.com/aditya/go-freight/pkg/utils"
)

type PricingService interface {
	// Price computes a quote without storing it.
	Price(ctx context.Context, req *models.QuoteRequest) (*models.Quote, error)
	// Quote computes a quote and keeps it in the quote cache until it expires.
	Quote(ctx context.Context, req *models.QuoteRequest) (*models.Quote, error)
	GetQuote(ctx context.Context, id string) (*models.Quote, error)
	EstimateDistance(ctx context.Context, origin, destination string) (pricing.Distance, error)
	// VehicleCatalog describes every vehicle class. With a weight it also
	// reports whether the tariff can price it and whether it sits inside the
	// advisory capacity.
	VehicleCatalog(weightKg *float64) []models.VehicleInfo
	FeeCatalog() []models.FeeInfo
	PricePerKgKm(distanceKm, weightKg float64) *models.PricePerKgKmResponse
}

type pricingService struct {
	distances  pricing.DistanceProvider
	quoteCache cache.QuoteCache
	quoteTTL   time.Duration
	now        func() time.Time
}

func NewPricingService(distances pricing.DistanceProvider, quoteCache cache.QuoteCache, quoteTTL time.Duration) PricingService {
	if distances == nil {
		distances = pricing.NewStaticTableProvider()
	}
	return &pricingService{
		distances:  distances,
		quoteCache: quoteCache,
		quoteTTL:   quoteTTL,
		now:        time.Now,
	}
}

func (s *pricingService) Price(ctx context.Context, req *models.QuoteRequest) (*models.Quote, error) {
	distance, err := s.resolveDistance(ctx, req)
	if err != nil {
		return nil, err
	}

	seg := newrelic.FromContext(ctx).StartSegment("pricing.calculate")
	breakdown, err := pricing.CalculatePrice(req.ToPricingRequest(distance.Km))
	seg.End()
	if err != nil {
		return nil, err
	}

	now := s.now()
	return &models.Quote{
		ID:             utils.GenerateID(),
		Request:        *req,
		Distance:       distance,
		Pricing:        breakdown,
		FormattedTotal: pricing.FormatCurrency(breakdown.Total),
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.quoteTTL),
	}, nil
}

func (s *pricingService) Quote(ctx context.Context, req *models.QuoteRequest) (*models.Quote, error) {
	quote, err := s.Price(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.quoteCache.SaveQuote(ctx, quote, s.quoteTTL); err != nil {
		return nil, err
	}

	return quote, nil
}

func (s *pricingService) GetQuote(ctx context.Context, id string) (*models.Quote, error) {
	quote, err := s.quoteCache.GetQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, apperrors.NotFound("quote")
	}
	if s.now().After(quote.ExpiresAt) {
		return nil, apperrors.QuoteExpired()
	}
	return quote, nil
}

func (s *pricingService) EstimateDistance(ctx context.Context, origin, destination string) (pricing.Distance, error) {
	return s.distances.Estimate(ctx, origin, destination)
}

// resolveDistance prefers a caller-supplied distance over a lookup.
func (s *pricingService) resolveDistance(ctx context.Context, req *models.QuoteRequest) (pricing.Distance, error) {
	if req.DistanceKm != nil {
		return pricing.Distance{
			Km:         *req.DistanceKm,
			Source:     pricing.SourceCaller,
			Confidence: pricing.ConfidenceHigh,
		}, nil
	}

	d, err := s.distances.Estimate(ctx, req.Origin, req.Destination)
	if err != nil {
		return pricing.Distance{}, apperrors.DistanceUnavailable()
	}
	return d, nil
}

func (s *pricingService) VehicleCatalog(weightKg *float64) []models.VehicleInfo {
	catalog := make([]models.VehicleInfo, 0, len(pricing.VehicleTypes))
	for _, v := range pricing.VehicleTypes {
		advisory, _ := pricing.GetVehicleWeightCapacity(v)
		quotable, ok := pricing.TierWeightRange(v)
		info := models.VehicleInfo{
			Type:            string(v),
			Label:           pricing.VehicleTypeLabel(v),
			RatesPerKm:      pricing.CostPerKm[v],
			AdvisoryWeight:  advisory,
			QuotableWeight:  quotable,
			HasQuotableTier: ok,
		}
		if weightKg != nil {
			canCarry := pricing.CanCarry(v, *weightKg)
			advisoryOK := advisory.Contains(*weightKg)
			info.CanCarry = &canCarry
			info.AdvisoryOK = &advisoryOK
		}
		catalog = append(catalog, info)
	}
	return catalog
}

func (s *pricingService) FeeCatalog() []models.FeeInfo {
	catalog := make([]models.FeeInfo, 0, len(pricing.FeeKinds))
	for _, k := range pricing.FeeKinds {
		catalog = append(catalog, models.FeeInfo{
			Kind:   string(k),
			Label:  pricing.AdditionalFeeLabel(k),
			Effect: pricing.AdditionalFees[k],
		})
	}
	return catalog
}

func (s *pricingService) PricePerKgKm(distanceKm, weightKg float64) *models.PricePerKgKmResponse {
	return &models.PricePerKgKmResponse{
		DistanceKm:   distanceKm,
		WeightKg:     weightKg,
		PricePerKgKm: pricing.CalculatePricePerKgKm(distanceKm, weightKg),
		Currency:     pricing.CurrencyCode,
	}
}
