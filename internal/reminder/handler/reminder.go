package handler

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"salonbook/internal/reminder/service"
	"salonbook/pkg/config"
	"salonbook/pkg/httpx"
	"salonbook/pkg/logger"
	"salonbook/pkg/middleware"
)

type ReminderHandler struct {
	service service.ReminderService
	cfg     *config.Config
	log     *logger.Logger
}

func NewReminderHandler(service service.ReminderService, cfg *config.Config) *ReminderHandler {
	return &ReminderHandler{
		service: service,
		cfg:     cfg,
		log:     cfg.Log,
	}
}

func (h *ReminderHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Scan(r.Context(), time.Now())
	if err != nil {
		if writeErr := httpx.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Trigger", "error", writeErr)
		}
		return
	}

	if err := httpx.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Trigger", "error", err)
	}
}

// Liveness answers GET on the trigger path so external cron setups can
// verify the endpoint before wiring the secret.
func (h *ReminderHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	if err := httpx.WriteSuccess(w, map[string]string{"status": "ok"}); err != nil {
		h.log.Error("failed to write success response", "handler", "Liveness", "error", err)
	}
}

func (h *ReminderHandler) RegisterRoutes(router *httprouter.Router) {
	guard := middleware.SharedSecret(h.cfg.CronSecret, h.log)
	router.Handler(http.MethodPost, "/internal/cron/reminders", guard(http.HandlerFunc(h.Trigger)))
	router.Handler(http.MethodGet, "/internal/cron/reminders", guard(http.HandlerFunc(h.Liveness)))
}
