package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aditya/go-freight/internal/middleware"
	"github.com/aditya/go-freight/internal/models"
	"github.com/aditya/go-freight/internal/service"
	"github.com/aditya/go-freight/pkg/utils"
)

type FreightHandler struct {
	freightService service.FreightService
	validate       *validator.Validate
}

func NewFreightHandler(freightService service.FreightService) *FreightHandler {
	return &FreightHandler{
		freightService: freightService,
		validate:       validator.New(),
	}
}

func (h *FreightHandler) RegisterRoutes(r chi.Router) {
	r.Post("/freights", h.CreateFreight)
	r.Get("/freights", h.ListFreights)
	r.Get("/freights/{id}", h.GetFreight)
	r.Post("/freights/{id}/assign", h.AssignTransporter)
	r.Post("/freights/{id}/status", h.UpdateStatus)
	r.Post("/freights/{id}/cancel", h.CancelFreight)
}

// POST /v1/freights
func (h *FreightHandler) CreateFreight(w http.ResponseWriter, r *http.Request) {
	var req models.CreateFreightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.ValidationFailed(w, err)
		return
	}

	idempotencyKey := r.Header.Get(middleware.IdempotencyHeader)

	freight, err := h.freightService.CreateFreight(r.Context(), &req, idempotencyKey)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Created(w, freight.ToResponse())
}

// GET /v1/freights
func (h *FreightHandler) ListFreights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.FreightFilter{
		ShipperID:     q.Get("shipper_id"),
		TransporterID: q.Get("transporter_id"),
		Status:        q.Get("status"),
	}

	var err error
	if filter.Limit, err = intParam(q.Get("limit")); err != nil {
		utils.BadRequest(w, "limit must be an integer")
		return
	}
	if filter.Offset, err = intParam(q.Get("offset")); err != nil {
		utils.BadRequest(w, "offset must be an integer")
		return
	}

	if err := h.validate.Struct(filter); err != nil {
		utils.ValidationFailed(w, err)
		return
	}

	freights, err := h.freightService.ListFreights(r.Context(), filter)
	if err != nil {
		handleError(w, err)
		return
	}

	data := make([]*models.FreightResponse, 0, len(freights))
	for _, f := range freights {
		data = append(data, f.ToResponse())
	}

	utils.Success(w, http.StatusOK, utils.ListResponse{
		Data:   data,
		Count:  len(data),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// GET /v1/freights/{id}
func (h *FreightHandler) GetFreight(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.ParseID(chi.URLParam(r, "id"))
	if !ok {
		utils.BadRequest(w, "invalid freight id")
		return
	}

	freight, err := h.freightService.GetFreight(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, freight.ToResponse())
}

// POST /v1/freights/{id}/assign
func (h *FreightHandler) AssignTransporter(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.ParseID(chi.URLParam(r, "id"))
	if !ok {
		utils.BadRequest(w, "invalid freight id")
		return
	}

	var req models.AssignTransporterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.ValidationFailed(w, err)
		return
	}

	freight, err := h.freightService.AssignTransporter(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, freight.ToResponse())
}

// POST /v1/freights/{id}/status
func (h *FreightHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.ParseID(chi.URLParam(r, "id"))
	if !ok {
		utils.BadRequest(w, "invalid freight id")
		return
	}

	var req models.UpdateFreightStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.ValidationFailed(w, err)
		return
	}

	freight, err := h.freightService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, freight.ToResponse())
}

// POST /v1/freights/{id}/cancel
func (h *FreightHandler) CancelFreight(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.ParseID(chi.URLParam(r, "id"))
	if !ok {
		utils.BadRequest(w, "invalid freight id")
		return
	}

	// The body is optional here.
	var req models.CancelFreightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.ValidationFailed(w, err)
		return
	}

	if err := h.freightService.CancelFreight(r.Context(), id, &req); err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, map[string]string{
		"status":  models.FreightStatusCancelled,
		"message": "freight cancelled successfully",
	})
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
