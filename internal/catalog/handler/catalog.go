package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"salonbook/internal/catalog/service"
	"salonbook/pkg/httpx"
	"salonbook/pkg/logger"
)

type CatalogHandler struct {
	service service.CatalogService
	log     *logger.Logger
}

func NewCatalogHandler(service service.CatalogService, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		log:     log,
	}
}

func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	services, err := h.service.ListServices(r.Context())
	if err != nil {
		if writeErr := httpx.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListServices", "error", writeErr)
		}
		return
	}

	if err := httpx.WriteSuccess(w, services); err != nil {
		h.log.Error("failed to write success response", "handler", "ListServices", "error", err)
	}
}

func (h *CatalogHandler) GetService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	svc, err := h.service.GetService(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httpx.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetService", "error", writeErr)
		}
		return
	}

	if err := httpx.WriteSuccess(w, svc); err != nil {
		h.log.Error("failed to write success response", "handler", "GetService", "error", err)
	}
}

func (h *CatalogHandler) ListMasters(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	serviceID := r.URL.Query().Get("service_id")

	var err error
	var masters any
	if serviceID != "" {
		masters, err = h.service.ListMastersForService(r.Context(), serviceID)
	} else {
		masters, err = h.service.ListActiveMasters(r.Context())
	}
	if err != nil {
		if writeErr := httpx.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListMasters", "error", writeErr)
		}
		return
	}

	if err := httpx.WriteSuccess(w, masters); err != nil {
		h.log.Error("failed to write success response", "handler", "ListMasters", "error", err)
	}
}

func (h *CatalogHandler) GetMaster(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	master, err := h.service.GetMaster(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httpx.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetMaster", "error", writeErr)
		}
		return
	}

	if err := httpx.WriteSuccess(w, master); err != nil {
		h.log.Error("failed to write success response", "handler", "GetMaster", "error", err)
	}
}

func (h *CatalogHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/services", h.ListServices)
	router.GET("/api/v1/services/:id", h.GetService)
	router.GET("/api/v1/masters", h.ListMasters)
	router.GET("/api/v1/masters/:id", h.GetMaster)
}
