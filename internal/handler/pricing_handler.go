package handler

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aditya/go-freight/internal/models"
	"github.com/aditya/go-freight/internal/pricing"
	"github.com/aditya/go-freight/internal/service"
	"github.com/aditya/go-freight/pkg/utils"
)

type PricingHandler struct {
	pricingService service.PricingService
	validate       *validator.Validate
}

func NewPricingHandler(pricingService service.PricingService) *PricingHandler {
	return &PricingHandler{
		pricingService: pricingService,
		validate:       validator.New(),
	}
}

func (h *PricingHandler) RegisterRoutes(r chi.Router) {
	r.Post("/quotes", h.CreateQuote)
	r.Get("/quotes/{id}", h.GetQuote)
	r.Get("/distance", h.EstimateDistance)
	r.Get("/tariffs/vehicles", h.ListVehicles)
	r.Get("/tariffs/fees", h.ListFees)
	r.Get("/tariffs/price-per-kg-km", h.PricePerKgKm)
}

// POST /v1/quotes
func (h *PricingHandler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req models.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.ValidationFailed(w, err)
		return
	}

	quote, err := h.pricingService.Quote(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Created(w, quote.ToResponse())
}

// GET /v1/quotes/{id}
func (h *PricingHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.ParseID(chi.URLParam(r, "id"))
	if !ok {
		utils.BadRequest(w, "invalid quote id")
		return
	}

	quote, err := h.pricingService.GetQuote(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, quote.ToResponse())
}

type distanceResponse struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	pricing.Distance
}

// GET /v1/distance?origin=&destination=
func (h *PricingHandler) EstimateDistance(w http.ResponseWriter, r *http.Request) {
	origin := r.URL.Query().Get("origin")
	destination := r.URL.Query().Get("destination")
	if origin == "" || destination == "" {
		utils.BadRequest(w, "origin and destination are required")
		return
	}

	d, err := h.pricingService.EstimateDistance(r.Context(), origin, destination)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, distanceResponse{
		Origin:      origin,
		Destination: destination,
		Distance:    d,
	})
}

// GET /v1/tariffs/vehicles?weight=
func (h *PricingHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	var weight *float64
	if raw := r.URL.Query().Get("weight"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || v < 0 {
			utils.BadRequest(w, "weight must be a non-negative number")
			return
		}
		weight = &v
	}

	utils.Success(w, http.StatusOK, h.pricingService.VehicleCatalog(weight))
}

// GET /v1/tariffs/fees
func (h *PricingHandler) ListFees(w http.ResponseWriter, r *http.Request) {
	utils.Success(w, http.StatusOK, h.pricingService.FeeCatalog())
}

// GET /v1/tariffs/price-per-kg-km?distance=&weight=
func (h *PricingHandler) PricePerKgKm(w http.ResponseWriter, r *http.Request) {
	distance, err := strconv.ParseFloat(r.URL.Query().Get("distance"), 64)
	if err != nil {
		utils.BadRequest(w, "distance must be a number")
		return
	}
	weight, err := strconv.ParseFloat(r.URL.Query().Get("weight"), 64)
	if err != nil {
		utils.BadRequest(w, "weight must be a number")
		return
	}

	utils.Success(w, http.StatusOK, h.pricingService.PricePerKgKm(distance, weight))
}
