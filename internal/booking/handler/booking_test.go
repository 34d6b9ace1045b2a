package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonbook/internal/booking/service"
	"salonbook/pkg/logger"
	"salonbook/pkg/middleware"
	"salonbook/pkg/model"
)

type mockBookingService struct {
	createFunc func(ctx context.Context, actor model.Actor, req *model.BookingCreate) (*service.CreateResult, error)
}

func (m *mockBookingService) Create(ctx context.Context, actor model.Actor, req *model.BookingCreate) (*service.CreateResult, error) {
	return m.createFunc(ctx, actor, req)
}

func (m *mockBookingService) GetByID(ctx context.Context, actor model.Actor, id string) (*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingService) List(ctx context.Context, actor model.Actor, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	return nil, 0, nil
}

func (m *mockBookingService) ChangeStatus(ctx context.Context, actor model.Actor, id string, next model.BookingStatus) (*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingService) Cancel(ctx context.Context, actor model.Actor, id string) (*model.Booking, error) {
	return nil, nil
}

func TestCreate_ResponseCarriesMasterName(t *testing.T) {
	log := logger.New(logger.Config{Output: io.Discard})
	handler := NewBookingHandler(&mockBookingService{
		createFunc: func(ctx context.Context, actor model.Actor, req *model.BookingCreate) (*service.CreateResult, error) {
			return &service.CreateResult{
				Booking: &model.Booking{
					ID:     "64a1f0aa9d3b2c0001bb0001",
					Status: model.StatusPending,
				},
				Master: &model.Master{Name: "Olga", Nickname: "Оля"},
			}, nil
		},
	}, log)

	router := httprouter.New()
	handler.RegisterRoutes(router)

	body, err := json.Marshal(map[string]string{
		"client_id":  "64a1f0aa9d3b2c0001cc0001",
		"service_id": "64a1f0aa9d3b2c0001dd0001",
		"date":       "2026-09-15",
		"start_time": "11:00",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewReader(body))
	req.Header.Set(middleware.HeaderUserID, "64a1f0aa9d3b2c0001cc0001")
	req.Header.Set(middleware.HeaderUserRole, string(model.RoleClient))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var envelope struct {
		Data createResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "64a1f0aa9d3b2c0001bb0001", envelope.Data.ID)
	assert.Equal(t, model.StatusPending, envelope.Data.Status)
	assert.Equal(t, "Оля", envelope.Data.MasterName, "nickname wins when present")
	assert.NotEmpty(t, envelope.Data.Message)
}
