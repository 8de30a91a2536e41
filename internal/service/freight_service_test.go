package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	apperrors "github.com/aditya/go-freight/internal/errors"
	"github.com/aditya/go-freight/internal/models"
)

const (
	shipperID    = "6f1c2c1e-4a0b-4c55-9a37-0f7c2d8e9b11"
	transporterA = "0d4b7f55-2f1e-4c0a-8d7e-3b5a9c1f2e44"
	transporterB = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
	testQuoteTTL = 15 * time.Minute
)

func newTestFreightService() (FreightService, PricingService, *memFreightRepo) {
	quotes := newMemQuoteCache()
	repo := newMemFreightRepo()
	ps := NewPricingService(nil, quotes, testQuoteTTL)
	return NewFreightService(repo, ps, quotes), ps, repo
}

func vanRequest() *models.QuoteRequest {
	return &models.QuoteRequest{
		Origin:         "Dakar",
		Destination:    "Kaolack",
		VehicleType:    "van",
		WeightKg:       1500,
		AdditionalFees: []string{"fragile"},
	}
}

func statusCode(err error) int {
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func TestFreightService_CreateFromInlineRequest(t *testing.T) {
	fs, _, _ := newTestFreightService()

	freight, err := fs.CreateFreight(context.Background(), &models.CreateFreightRequest{
		ShipperID: shipperID,
		Quote:     vanRequest(),
	}, "")
	if err != nil {
		t.Fatalf("CreateFreight() error = %v", err)
	}
	// 15000 + 66150 + 15% of 81150
	if freight.Price != 93323 {
		t.Errorf("Price = %v, want 93323", freight.Price)
	}
	if freight.Status != models.FreightStatusPending {
		t.Errorf("Status = %v, want pending", freight.Status)
	}
	if len(freight.AdditionalFees) != 1 || freight.AdditionalFees[0] != "fragile" {
		t.Errorf("AdditionalFees = %v, want [fragile]", freight.AdditionalFees)
	}

	resp := freight.ToResponse()
	if resp.PriceBreakdown == nil || resp.PriceBreakdown.Total != freight.Price {
		t.Errorf("ToResponse() breakdown = %+v, want total %v", resp.PriceBreakdown, freight.Price)
	}
}

func TestFreightService_CreateFromQuote(t *testing.T) {
	fs, ps, _ := newTestFreightService()
	ctx := context.Background()

	quote, err := ps.Quote(ctx, vanRequest())
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}

	freight, err := fs.CreateFreight(ctx, &models.CreateFreightRequest{ShipperID: shipperID, QuoteID: quote.ID}, "")
	if err != nil {
		t.Fatalf("CreateFreight() error = %v", err)
	}
	if freight.Price != quote.Pricing.Total {
		t.Errorf("Price = %v, want quoted %v", freight.Price, quote.Pricing.Total)
	}
	if freight.QuoteID == nil || *freight.QuoteID != quote.ID {
		t.Errorf("QuoteID = %v, want %v", freight.QuoteID, quote.ID)
	}

	// A quote backs a single freight.
	_, err = fs.CreateFreight(ctx, &models.CreateFreightRequest{ShipperID: shipperID, QuoteID: quote.ID}, "")
	if statusCode(err) != http.StatusConflict {
		t.Errorf("second CreateFreight() error = %v, want conflict", err)
	}
}

func TestFreightService_CreateReleasesQuoteOnFailure(t *testing.T) {
	fs, ps, repo := newTestFreightService()
	ctx := context.Background()

	quote, err := ps.Quote(ctx, vanRequest())
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}

	repo.createErr = errors.New("connection reset")
	if _, err := fs.CreateFreight(ctx, &models.CreateFreightRequest{ShipperID: shipperID, QuoteID: quote.ID}, ""); err == nil {
		t.Fatal("CreateFreight() expected error")
	}

	repo.createErr = nil
	if _, err := fs.CreateFreight(ctx, &models.CreateFreightRequest{ShipperID: shipperID, QuoteID: quote.ID}, ""); err != nil {
		t.Errorf("CreateFreight() retry error = %v", err)
	}
}

func TestFreightService_Idempotency(t *testing.T) {
	fs, _, _ := newTestFreightService()
	ctx := context.Background()
	req := &models.CreateFreightRequest{ShipperID: shipperID, Quote: vanRequest()}

	first, err := fs.CreateFreight(ctx, req, "key-1")
	if err != nil {
		t.Fatalf("CreateFreight() error = %v", err)
	}
	second, err := fs.CreateFreight(ctx, req, "key-1")
	if err != nil {
		t.Fatalf("CreateFreight() replay error = %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("replay returned %v, want %v", second.ID, first.ID)
	}
}

func TestFreightService_Lifecycle(t *testing.T) {
	fs, _, _ := newTestFreightService()
	ctx := context.Background()

	freight, err := fs.CreateFreight(ctx, &models.CreateFreightRequest{ShipperID: shipperID, Quote: vanRequest()}, "")
	if err != nil {
		t.Fatalf("CreateFreight() error = %v", err)
	}

	assigned, err := fs.AssignTransporter(ctx, freight.ID, &models.AssignTransporterRequest{TransporterID: transporterA})
	if err != nil {
		t.Fatalf("AssignTransporter() error = %v", err)
	}
	if assigned.Status != models.FreightStatusAssigned {
		t.Errorf("Status = %v, want assigned", assigned.Status)
	}

	// Same transporter again is a no-op, a different one conflicts.
	if _, err := fs.AssignTransporter(ctx, freight.ID, &models.AssignTransporterRequest{TransporterID: transporterA}); err != nil {
		t.Errorf("repeat AssignTransporter() error = %v", err)
	}
	_, err = fs.AssignTransporter(ctx, freight.ID, &models.AssignTransporterRequest{TransporterID: transporterB})
	if statusCode(err) != http.StatusConflict {
		t.Errorf("AssignTransporter() by other error = %v, want conflict", err)
	}

	unassigned, err := fs.UpdateStatus(ctx, freight.ID, models.FreightStatusPending)
	if err != nil {
		t.Fatalf("UpdateStatus(pending) error = %v", err)
	}
	if unassigned.TransporterID != nil {
		t.Errorf("TransporterID = %v, want nil after unassign", *unassigned.TransporterID)
	}

	if _, err := fs.AssignTransporter(ctx, freight.ID, &models.AssignTransporterRequest{TransporterID: transporterB}); err != nil {
		t.Fatalf("AssignTransporter() error = %v", err)
	}
	for _, status := range []string{models.FreightStatusInTransit, models.FreightStatusDelivered} {
		got, err := fs.UpdateStatus(ctx, freight.ID, status)
		if err != nil {
			t.Fatalf("UpdateStatus(%s) error = %v", status, err)
		}
		if got.Status != status {
			t.Errorf("Status = %v, want %v", got.Status, status)
		}
	}

	err = fs.CancelFreight(ctx, freight.ID, &models.CancelFreightRequest{Reason: "too late"})
	if statusCode(err) != http.StatusConflict {
		t.Errorf("CancelFreight() on delivered error = %v, want conflict", err)
	}
}

func TestFreightService_InvalidTransitions(t *testing.T) {
	fs, _, _ := newTestFreightService()
	ctx := context.Background()

	freight, err := fs.CreateFreight(ctx, &models.CreateFreightRequest{ShipperID: shipperID, Quote: vanRequest()}, "")
	if err != nil {
		t.Fatalf("CreateFreight() error = %v", err)
	}

	tests := []struct {
		name   string
		status string
		want   int
	}{
		{"Pending to in transit", models.FreightStatusInTransit, http.StatusConflict},
		{"Pending to delivered", models.FreightStatusDelivered, http.StatusConflict},
		{"Assign through status", models.FreightStatusAssigned, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fs.UpdateStatus(ctx, freight.ID, tt.status)
			if statusCode(err) != tt.want {
				t.Errorf("UpdateStatus(%s) error = %v, want status %d", tt.status, err, tt.want)
			}
		})
	}

	if err := fs.CancelFreight(ctx, freight.ID, &models.CancelFreightRequest{}); err != nil {
		t.Fatalf("CancelFreight() error = %v", err)
	}
	_, err = fs.AssignTransporter(ctx, freight.ID, &models.AssignTransporterRequest{TransporterID: transporterA})
	if statusCode(err) != http.StatusConflict {
		t.Errorf("AssignTransporter() on cancelled error = %v, want conflict", err)
	}

	_, err = fs.GetFreight(ctx, "missing")
	if statusCode(err) != http.StatusNotFound {
		t.Errorf("GetFreight() missing error = %v, want not found", err)
	}
}

func TestFreightService_StaleWritesRejected(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (FreightService, *memFreightRepo, string) {
		t.Helper()
		fs, _, repo := newTestFreightService()
		freight, err := fs.CreateFreight(ctx, &models.CreateFreightRequest{ShipperID: shipperID, Quote: vanRequest()}, "")
		if err != nil {
			t.Fatalf("CreateFreight() error = %v", err)
		}
		if _, err := fs.AssignTransporter(ctx, freight.ID, &models.AssignTransporterRequest{TransporterID: transporterA}); err != nil {
			t.Fatalf("AssignTransporter() error = %v", err)
		}
		return fs, repo, freight.ID
	}

	t.Run("Cancel after pickup", func(t *testing.T) {
		fs, repo, id := setup(t)
		repo.concurrentStatus = models.FreightStatusInTransit

		err := fs.CancelFreight(ctx, id, &models.CancelFreightRequest{Reason: "changed plans"})
		if !errors.Is(err, apperrors.ErrInvalidTransition) {
			t.Fatalf("CancelFreight() error = %v, want invalid transition", err)
		}
		got, _ := fs.GetFreight(ctx, id)
		if got.Status != models.FreightStatusInTransit {
			t.Errorf("Status = %v, want in_transit", got.Status)
		}
	})

	t.Run("Unassign after pickup", func(t *testing.T) {
		fs, repo, id := setup(t)
		repo.concurrentStatus = models.FreightStatusInTransit

		_, err := fs.UpdateStatus(ctx, id, models.FreightStatusPending)
		if statusCode(err) != http.StatusConflict {
			t.Fatalf("UpdateStatus(pending) error = %v, want conflict", err)
		}
		got, _ := fs.GetFreight(ctx, id)
		if got.TransporterID == nil {
			t.Error("TransporterID cleared by a stale unassign")
		}
	})

	t.Run("Pickup after cancel", func(t *testing.T) {
		fs, repo, id := setup(t)
		repo.concurrentStatus = models.FreightStatusCancelled

		_, err := fs.UpdateStatus(ctx, id, models.FreightStatusInTransit)
		if statusCode(err) != http.StatusConflict {
			t.Fatalf("UpdateStatus(in_transit) error = %v, want conflict", err)
		}
		got, _ := fs.GetFreight(ctx, id)
		if got.Status != models.FreightStatusCancelled {
			t.Errorf("Status = %v, want cancelled", got.Status)
		}
	})
}
