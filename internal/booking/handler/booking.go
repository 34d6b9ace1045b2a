package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"salonbook/internal/booking/service"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/httpx"
	"salonbook/pkg/logger"
	"salonbook/pkg/middleware"
	"salonbook/pkg/model"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

// createResponse names the assigned master so any-master clients learn who
// will serve them.
type createResponse struct {
	ID         string              `json:"id"`
	Status     model.BookingStatus `json:"status"`
	MasterName string              `json:"master_name"`
	Message    string              `json:"message"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var req model.BookingCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", apperrors.Validation("Invalid request body", nil))
		return
	}

	result, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	resp := createResponse{
		ID:         result.Booking.ID,
		Status:     result.Booking.Status,
		MasterName: result.Master.DisplayName(),
		Message:    "Запись создана, ожидает подтверждения мастера",
	}
	if err := httpx.WriteCreated(w, resp); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	booking, err := h.service.GetByID(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httpx.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	limit, offset, err := httpx.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	query := r.URL.Query()
	filter := model.BookingFilter{
		Status:        model.BookingStatus(query.Get("status")),
		FromDate:      query.Get("from"),
		ShowCompleted: query.Get("show_completed") == "true",
	}
	if filter.Status != "" && !filter.Status.Valid() {
		h.writeError(w, "List", apperrors.InvalidData("Unknown booking status: "+string(filter.Status)))
		return
	}

	bookings, count, err := h.service.List(r.Context(), actor, filter, limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httpx.WritePaginated(w, bookings, count, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "error", err)
	}
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	var req model.BookingStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "UpdateStatus", apperrors.Validation("Invalid request body", nil))
		return
	}

	booking, err := h.service.ChangeStatus(r.Context(), actor, ps.ByName("id"), req.Status)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	if err := httpx.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateStatus", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if _, err := h.service.Cancel(r.Context(), actor, ps.ByName("id")); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	httpx.WriteNoContent(w)
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httpx.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.List)
	router.GET("/api/v1/bookings/:id", h.GetByID)
	router.PATCH("/api/v1/bookings/:id/status", h.UpdateStatus)
	router.DELETE("/api/v1/bookings/:id", h.Cancel)
}
