package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"salonbook/internal/schedule/service"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/httpx"
	"salonbook/pkg/logger"
	"salonbook/pkg/middleware"
	"salonbook/pkg/model"
)

type ShiftHandler struct {
	service service.ShiftService
	log     *logger.Logger
}

func NewShiftHandler(service service.ShiftService, log *logger.Logger) *ShiftHandler {
	return &ShiftHandler{
		service: service,
		log:     log,
	}
}

func (h *ShiftHandler) Upsert(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		h.writeError(w, "Upsert", err)
		return
	}

	var req model.ShiftUpsert
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Upsert", apperrors.Validation("Invalid request body", nil))
		return
	}

	shift, created, err := h.service.UpsertShift(r.Context(), actor, &req)
	if err != nil {
		h.writeError(w, "Upsert", err)
		return
	}

	if created {
		if err := httpx.WriteCreated(w, shift); err != nil {
			h.log.Error("failed to write created response", "handler", "Upsert", "error", err)
		}
		return
	}
	if err := httpx.WriteSuccess(w, shift); err != nil {
		h.log.Error("failed to write success response", "handler", "Upsert", "error", err)
	}
}

func (h *ShiftHandler) BulkUpsert(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		h.writeError(w, "BulkUpsert", err)
		return
	}

	var req model.BulkShiftUpsert
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "BulkUpsert", apperrors.Validation("Invalid request body", nil))
		return
	}

	result, err := h.service.BulkUpsert(r.Context(), actor, &req)
	if err != nil {
		h.writeError(w, "BulkUpsert", err)
		return
	}

	if err := httpx.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "BulkUpsert", "error", err)
	}
}

func (h *ShiftHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	masterID := ps.ByName("masterId")
	date := r.URL.Query().Get("date")

	shift, err := h.service.GetShift(r.Context(), masterID, date)
	if err != nil {
		h.writeError(w, "Get", err)
		return
	}

	if err := httpx.WriteSuccess(w, shift); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "error", err)
	}
}

func (h *ShiftHandler) List(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	masterID := ps.ByName("masterId")
	query := r.URL.Query()

	shifts, err := h.service.ListShifts(r.Context(), masterID, query.Get("from"), query.Get("to"))
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httpx.WriteSuccess(w, shifts); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "error", err)
	}
}

func (h *ShiftHandler) Deactivate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		h.writeError(w, "Deactivate", err)
		return
	}

	masterID := ps.ByName("masterId")
	date := r.URL.Query().Get("date")

	if err := h.service.DeactivateShift(r.Context(), actor, masterID, date); err != nil {
		h.writeError(w, "Deactivate", err)
		return
	}

	httpx.WriteNoContent(w)
}

func (h *ShiftHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httpx.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func (h *ShiftHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/schedule/:masterId", h.Get)
	router.GET("/api/v1/schedule/:masterId/range", h.List)
	router.POST("/api/v1/admin/schedule", h.Upsert)
	router.POST("/api/v1/admin/schedule/bulk", h.BulkUpsert)
	router.DELETE("/api/v1/admin/schedule/:masterId", h.Deactivate)
}
