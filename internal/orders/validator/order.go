package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"visadocs/pkg/logger"
	"visadocs/pkg/model"

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

type OrderValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewOrderValidator(log *logger.Logger) *OrderValidator {
	v := validator.New()

	log.Info("Order validator initialized successfully")

	return &OrderValidator{
		validate: v,
		logger:   log,
	}
}

func (v *OrderValidator) ValidateFinalizeRequest(req *model.FinalizeOrderRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// ValidatePayload re-checks the redeemed session payload before persistence.
// The payload was validated at issuance, but it crossed a serialization
// boundary and the order write is the last stop before the database.
func (v *OrderValidator) ValidatePayload(payload *model.SessionPayload) (*model.BookingDetails, error) {
	if payload.Service == "" || payload.Travelers < 1 || payload.TotalAmount < 0 {
		return nil, ValidationErrors{
			ValidationError{
				Field:   "Payload",
				Message: "session payload is malformed",
			},
		}
	}

	var details model.BookingDetails
	if err := json.Unmarshal(payload.BookingDetails, &details); err != nil {
		return nil, ValidationErrors{
			ValidationError{
				Field:   "BookingDetails",
				Message: "bookingDetails must be a valid booking details object",
			},
		}
	}

	if err := v.validate.Struct(&details); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return nil, v.translateValidationErrors(validationErrs)
		}
		return nil, err
	}

	if err := validateServiceDetails(payload.Service, &details); err != nil {
		return nil, err
	}

	return &details, nil
}

func validateServiceDetails(service string, details *model.BookingDetails) error {
	present := 0
	var match bool

	if details.Flight != nil {
		present++
		match = match || service == model.ServiceFlightReservation
	}
	if details.Hotel != nil {
		present++
		match = match || service == model.ServiceHotelBooking
	}
	if details.Insurance != nil {
		present++
		match = match || service == model.ServiceTravelInsurance
	}

	if present != 1 || !match {
		return ValidationErrors{
			ValidationError{
				Field:   "BookingDetails",
				Message: fmt.Sprintf("bookingDetails must carry exactly one sub-document matching service %q", service),
			},
		}
	}

	return nil
}

func (v *OrderValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "datetime":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
