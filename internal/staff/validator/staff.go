package validator

import (
	"errors"
	"fmt"
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

type StaffValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewStaffValidator(log *logger.Logger) *StaffValidator {
	v := validator.New()

	if err := v.RegisterValidation("weekly_schedule", validateWeeklySchedule); err != nil {
		log.Fatal("Failed to register 'weekly_schedule' validator", "error", err)
	}
	v.RegisterStructValidation(validateVacation, model.Vacation{})
	v.RegisterStructValidation(validateExtraWorkDay, model.ExtraWorkDay{})

	log.Debug("Staff validator initialized successfully")

	return &StaffValidator{
		validate: v,
		logger:   log,
	}
}

func validWindow(start, end model.TimeOfDay) bool {
	return start.Valid() && end.Valid() && start < end
}

// Days not working may carry any times; they are never read.
func validateWeeklySchedule(fl validator.FieldLevel) bool {
	schedule, ok := fl.Field().Interface().(map[model.Weekday]model.WorkDay)
	if !ok {
		return false
	}
	for day, wd := range schedule {
		if !day.Valid() {
			return false
		}
		if wd.IsWorking && !validWindow(wd.StartTime, wd.EndTime) {
			return false
		}
	}
	return true
}

func validateVacation(sl validator.StructLevel) {
	v := sl.Current().Interface().(model.Vacation)
	if v.StartDate.IsZero() {
		sl.ReportError(v.StartDate, "StartDate", "start_date", "required", "")
	}
	if v.EndDate.Before(v.StartDate) {
		sl.ReportError(v.EndDate, "EndDate", "end_date", "vacation_range", "")
	}
}

func validateExtraWorkDay(sl validator.StructLevel) {
	e := sl.Current().Interface().(model.ExtraWorkDay)
	if e.Date.IsZero() {
		sl.ReportError(e.Date, "Date", "date", "required", "")
	}
	if !validWindow(e.StartTime, e.EndTime) {
		sl.ReportError(e.EndTime, "EndTime", "end_time", "work_window", "")
	}
}

func (v *StaffValidator) Validate(s *model.Staff) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *StaffValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "weekly_schedule":
			message = "weekly_schedule keys must be weekday names (Sunday-Saturday) and working days need start_time before end_time"
		case "vacation_range":
			message = "end_date must not be before start_date"
		case "work_window":
			message = "start_time must be before end_time, both within 00:00-24:00"
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Namespace(),
			Message: message,
		})
	}

	return validationErrors
}
