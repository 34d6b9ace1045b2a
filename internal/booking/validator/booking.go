package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"salonbook/pkg/logger"
	"salonbook/pkg/model"
	"salonbook/pkg/timegrid"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	if err := v.RegisterValidation("clock_time", validateClockTime); err != nil {
		log.Fatal("Failed to register 'clock_time' validator", "error", err)
	}
	if err := v.RegisterValidation("calendar_date", validateCalendarDate); err != nil {
		log.Fatal("Failed to register 'calendar_date' validator", "error", err)
	}

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func validateClockTime(fl validator.FieldLevel) bool {
	_, err := timegrid.ParseClock(strings.TrimSpace(fl.Field().String()))
	return err == nil
}

func validateCalendarDate(fl validator.FieldLevel) bool {
	_, err := timegrid.ParseDate(strings.TrimSpace(fl.Field().String()), time.UTC)
	return err == nil
}

func (bv *BookingValidator) ValidateCreate(req *model.BookingCreate) error {
	if err := bv.validate.Struct(req); err != nil {
		return bv.convert(err)
	}
	return nil
}

func (bv *BookingValidator) ValidateStatusUpdate(req *model.BookingStatusUpdate) error {
	if err := bv.validate.Struct(req); err != nil {
		return bv.convert(err)
	}
	return nil
}

func (bv *BookingValidator) convert(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return ValidationErrors{{Field: "request", Message: err.Error()}}
	}

	var result ValidationErrors
	for _, fieldErr := range validationErrors {
		result = append(result, ValidationError{
			Field:   strings.ToLower(fieldErr.Field()),
			Message: messageForTag(fieldErr),
		})
	}
	return result
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "mongodb":
		return "must be a valid ID"
	case "clock_time":
		return "must be a valid time in HH:MM format"
	case "calendar_date":
		return "must be a valid date in YYYY-MM-DD format"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation for '%s'", fe.Tag())
	}
}
