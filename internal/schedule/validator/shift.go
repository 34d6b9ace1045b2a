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

type ShiftValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewShiftValidator(log *logger.Logger) *ShiftValidator {
	v := validator.New()

	if err := v.RegisterValidation("clock_time", validateClockTime); err != nil {
		log.Fatal("Failed to register 'clock_time' validator", "error", err)
	}
	if err := v.RegisterValidation("calendar_date", validateCalendarDate); err != nil {
		log.Fatal("Failed to register 'calendar_date' validator", "error", err)
	}

	return &ShiftValidator{
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

func (sv *ShiftValidator) ValidateUpsert(req *model.ShiftUpsert) error {
	if err := sv.validate.Struct(req); err != nil {
		return sv.convert(err)
	}
	return sv.checkWindow(req.StartTime, req.EndTime)
}

func (sv *ShiftValidator) ValidateBulkUpsert(req *model.BulkShiftUpsert) error {
	if err := sv.validate.Struct(req); err != nil {
		return sv.convert(err)
	}
	return sv.checkWindow(req.StartTime, req.EndTime)
}

// checkWindow enforces start < end; shifts never cross midnight.
func (sv *ShiftValidator) checkWindow(start, end string) error {
	startMin, err := timegrid.ParseClock(start)
	if err != nil {
		return ValidationErrors{{Field: "start_time", Message: "must be in HH:MM format"}}
	}
	endMin, err := timegrid.ParseClock(end)
	if err != nil {
		return ValidationErrors{{Field: "end_time", Message: "must be in HH:MM format"}}
	}
	if endMin <= startMin {
		return ValidationErrors{{Field: "end_time", Message: "must be after start_time"}}
	}
	return nil
}

func (sv *ShiftValidator) convert(err error) error {
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
	case "min":
		return fmt.Sprintf("must have at least %s item(s)", fe.Param())
	default:
		return fmt.Sprintf("failed validation for '%s'", fe.Tag())
	}
}
