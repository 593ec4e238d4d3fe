package validator

import (
	"errors"
	"fmt"
	"reflect"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"
	"strings"

	"github.com/go-playground/validator/v10"
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
	v.RegisterTagNameFunc(jsonName)

	if err := v.RegisterValidation("calendar_date", validateCalendarDate); err != nil {
		log.Fatal("Failed to register 'calendar_date' validator", "error", err)
	}
	if err := v.RegisterValidation("start_of_slot", validateStartOfSlot); err != nil {
		log.Fatal("Failed to register 'start_of_slot' validator", "error", err)
	}

	log.Debug("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

func validateCalendarDate(fl validator.FieldLevel) bool {
	d, ok := fl.Field().Interface().(model.Date)
	return ok && !d.IsZero() && d.IsValid()
}

// A slot can start at 00:00 but not at 24:00.
func validateStartOfSlot(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(model.TimeOfDay)
	return ok && t.Valid() && t < model.MinutesPerDay
}

func (v *BookingValidator) ValidateCreate(req *model.CreateBookingRequest) error {
	return v.check(req)
}

func (v *BookingValidator) ValidateReschedule(req *model.RescheduleRequest) error {
	return v.check(req)
}

func (v *BookingValidator) ValidateCancel(req *model.CancelBookingRequest) error {
	return v.check(req)
}

func (v *BookingValidator) check(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
		case "calendar_date":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		case "start_of_slot":
			message = fmt.Sprintf("%s must be a time between 00:00 and 23:59", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
