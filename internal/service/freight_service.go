package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"

	"github.com/aditya/go-freight/internal/cache"
	apperrors "github.com/aditya/go-freight/internal/errors"
	"github.com/aditya/go-freight/internal/models"
	"github.com/aditya/go-freight/internal/repository"
	"github.com/aditya/go-freight/pkg/utils"
)

// A claimed quote stays claimed well past its own expiry.
const quoteClaimTTL = 24 * time.Hour

type FreightService interface {
	CreateFreight(ctx context.Context, req *models.CreateFreightRequest, idempotencyKey string) (*models.Freight, error)
	GetFreight(ctx context.Context, id string) (*models.Freight, error)
	ListFreights(ctx context.Context, filter models.FreightFilter) ([]*models.Freight, error)
	AssignTransporter(ctx context.Context, id string, req *models.AssignTransporterRequest) (*models.Freight, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Freight, error)
	CancelFreight(ctx context.Context, id string, req *models.CancelFreightRequest) error
}

type freightService struct {
	freightRepo    repository.FreightRepository
	pricingService PricingService
	quoteCache     cache.QuoteCache
}

func NewFreightService(
	freightRepo repository.FreightRepository,
	pricingService PricingService,
	quoteCache cache.QuoteCache,
) FreightService {
	return &freightService{
		freightRepo:    freightRepo,
		pricingService: pricingService,
		quoteCache:     quoteCache,
	}
}

func (s *freightService) CreateFreight(ctx context.Context, req *models.CreateFreightRequest, idempotencyKey string) (*models.Freight, error) {
	// Check idempotency
	if idempotencyKey != "" {
		existing, err := s.freightRepo.GetByIdempotencyKey(ctx, idempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	freightID := utils.GenerateID()

	var quote *models.Quote
	var err error
	if req.QuoteID != "" {
		quote, err = s.pricingService.GetQuote(ctx, req.QuoteID)
		if err != nil {
			return nil, err
		}
		claimed, err := s.quoteCache.ClaimQuote(ctx, quote.ID, freightID, quoteClaimTTL)
		if err != nil {
			return nil, err
		}
		if !claimed {
			return nil, apperrors.Conflict("quote has already been used for another freight")
		}
	} else {
		quote, err = s.pricingService.Price(ctx, req.Quote)
		if err != nil {
			return nil, err
		}
	}

	breakdown, err := json.Marshal(quote.Pricing)
	if err != nil {
		return nil, err
	}

	fees := make(pq.StringArray, 0, len(quote.Request.AdditionalFees))
	fees = append(fees, quote.Request.AdditionalFees...)

	freight := &models.Freight{
		ID:             freightID,
		ShipperID:      req.ShipperID,
		Origin:         quote.Request.Origin,
		Destination:    quote.Request.Destination,
		DistanceKm:     quote.Distance.Km,
		DistanceSource: string(quote.Distance.Source),
		VehicleType:    quote.Request.VehicleType,
		WeightKg:       quote.Request.WeightKg,
		AdditionalFees: fees,
		EmptyReturn:    quote.Request.EmptyReturn,
		Price:          quote.Pricing.Total,
		PriceBreakdown: types.JSONText(breakdown),
		PickupDate:     req.PickupDate,
	}
	if req.QuoteID != "" {
		freight.QuoteID = &quote.ID
	}
	if req.Description != "" {
		freight.Description = &req.Description
	}
	if idempotencyKey != "" {
		freight.IdempotencyKey = &idempotencyKey
	}

	if err := s.freightRepo.Create(ctx, freight); err != nil {
		if freight.QuoteID != nil {
			if relErr := s.quoteCache.ReleaseQuote(ctx, *freight.QuoteID); relErr != nil {
				log.Printf("failed to release quote %s: %v", *freight.QuoteID, relErr)
			}
		}
		if err == repository.ErrDuplicateIdempotencyKey {
			return s.freightRepo.GetByIdempotencyKey(ctx, idempotencyKey)
		}
		return nil, err
	}

	return freight, nil
}

func (s *freightService) GetFreight(ctx context.Context, id string) (*models.Freight, error) {
	freight, err := s.freightRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if freight == nil {
		return nil, apperrors.NotFound("freight")
	}
	return freight, nil
}

func (s *freightService) ListFreights(ctx context.Context, filter models.FreightFilter) ([]*models.Freight, error) {
	return s.freightRepo.List(ctx, filter)
}

func (s *freightService) AssignTransporter(ctx context.Context, id string, req *models.AssignTransporterRequest) (*models.Freight, error) {
	freight, err := s.GetFreight(ctx, id)
	if err != nil {
		return nil, err
	}

	switch freight.Status {
	case models.FreightStatusPending:
	case models.FreightStatusAssigned:
		if freight.TransporterID != nil && *freight.TransporterID == req.TransporterID {
			return freight, nil
		}
		return nil, apperrors.FreightAlreadyAssigned()
	default:
		return nil, apperrors.InvalidTransition(freight.Status, models.FreightStatusAssigned)
	}

	ok, err := s.freightRepo.AssignTransporter(ctx, id, req.TransporterID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race against another transporter.
		return nil, apperrors.FreightAlreadyAssigned()
	}

	return s.GetFreight(ctx, id)
}

func (s *freightService) UpdateStatus(ctx context.Context, id, status string) (*models.Freight, error) {
	freight, err := s.GetFreight(ctx, id)
	if err != nil {
		return nil, err
	}

	if status == models.FreightStatusAssigned {
		return nil, apperrors.BadRequest("use the assign endpoint to assign a transporter")
	}
	if !freight.CanTransitionTo(status) {
		return nil, apperrors.InvalidTransition(freight.Status, status)
	}

	var ok bool
	if status == models.FreightStatusPending {
		ok, err = s.freightRepo.Unassign(ctx, id)
	} else {
		ok, err = s.freightRepo.UpdateStatus(ctx, id, freight.Status, status)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.staleTransition(ctx, id, status)
	}

	return s.GetFreight(ctx, id)
}

func (s *freightService) CancelFreight(ctx context.Context, id string, req *models.CancelFreightRequest) error {
	freight, err := s.GetFreight(ctx, id)
	if err != nil {
		return err
	}

	if !freight.CanTransitionTo(models.FreightStatusCancelled) {
		return apperrors.InvalidTransition(freight.Status, models.FreightStatusCancelled)
	}

	ok, err := s.freightRepo.Cancel(ctx, id, freight.Status, req.Reason)
	if err != nil {
		return err
	}
	if !ok {
		return s.staleTransition(ctx, id, models.FreightStatusCancelled)
	}
	return nil
}

// staleTransition reports a guarded write that lost to a concurrent change,
// naming the status the freight holds now.
func (s *freightService) staleTransition(ctx context.Context, id, to string) error {
	current, err := s.GetFreight(ctx, id)
	if err != nil {
		return err
	}
	return apperrors.InvalidTransition(current.Status, to)
}
