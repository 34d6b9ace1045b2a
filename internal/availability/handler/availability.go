package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"salonbook/internal/availability/service"
	"salonbook/pkg/httpx"
	"salonbook/pkg/logger"
)

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

func (h *AvailabilityHandler) ForMaster(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	query := r.URL.Query()

	slots, err := h.service.SlotsForMaster(r.Context(), ps.ByName("id"), query.Get("date"), query.Get("service_id"))
	if err != nil {
		if writeErr := httpx.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ForMaster", "error", writeErr)
		}
		return
	}

	if err := httpx.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "ForMaster", "error", err)
	}
}

func (h *AvailabilityHandler) ForService(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	slots, err := h.service.UnionSlots(r.Context(), query.Get("service_id"), query.Get("date"))
	if err != nil {
		if writeErr := httpx.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ForService", "error", writeErr)
		}
		return
	}

	if err := httpx.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "ForService", "error", err)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/masters/:id/availability", h.ForMaster)
	router.GET("/api/v1/availability", h.ForService)
}
