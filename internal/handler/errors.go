package handler

import (
	"errors"
	"log"
	"net/http"

	apperrors "github.com/aditya/go-freight/internal/errors"
	"github.com/aditya/go-freight/internal/pricing"
	"github.com/aditya/go-freight/pkg/utils"
)

func handleError(w http.ResponseWriter, err error) {
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) {
		utils.Error(w, apiErr)
		return
	}

	var incompatible *pricing.IncompatibleVehicleError
	if errors.As(err, &incompatible) {
		utils.Error(w, apperrors.IncompatibleVehicle(pricing.VehicleTypeLabel(incompatible.VehicleType), incompatible.Weight))
		return
	}

	switch {
	case errors.Is(err, pricing.ErrInvalidRequest),
		errors.Is(err, pricing.ErrUnknownVehicleType),
		errors.Is(err, pricing.ErrUnknownFeeKind):
		utils.BadRequest(w, err.Error())
	default:
		log.Printf("unhandled error: %v", err)
		utils.InternalError(w, "internal server error")
	}
}
