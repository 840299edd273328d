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

type SessionValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewSessionValidator(log *logger.Logger) *SessionValidator {
	v := validator.New()

	log.Info("Session validator initialized successfully")

	return &SessionValidator{
		validate: v,
		logger:   log,
	}
}

// Validate checks a session creation request, including that bookingDetails
// parses and carries exactly the sub-document matching the requested service.
func (v *SessionValidator) Validate(req *model.CreateSessionRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	var details model.BookingDetails
	if err := json.Unmarshal(req.BookingDetails, &details); err != nil {
		return ValidationErrors{
			ValidationError{
				Field:   "BookingDetails",
				Message: "bookingDetails must be a valid booking details object",
			},
		}
	}

	if err := v.validate.Struct(&details); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if err := validateServiceDetails(req.Service, &details); err != nil {
		return err
	}

	if len(details.Travelers) != req.Travelers {
		return ValidationErrors{
			ValidationError{
				Field:   "Travelers",
				Message: fmt.Sprintf("travelers count (%d) does not match booking details (%d)", req.Travelers, len(details.Travelers)),
			},
		}
	}

	return nil
}

func validateServiceDetails(service string, details *model.BookingDetails) error {
	var missing, extra string

	switch service {
	case model.ServiceFlightReservation:
		if details.Flight == nil {
			missing = "flight"
		}
		if details.Hotel != nil {
			extra = "hotel"
		} else if details.Insurance != nil {
			extra = "insurance"
		}
	case model.ServiceHotelBooking:
		if details.Hotel == nil {
			missing = "hotel"
		}
		if details.Flight != nil {
			extra = "flight"
		} else if details.Insurance != nil {
			extra = "insurance"
		}
	case model.ServiceTravelInsurance:
		if details.Insurance == nil {
			missing = "insurance"
		}
		if details.Flight != nil {
			extra = "flight"
		} else if details.Hotel != nil {
			extra = "hotel"
		}
	}

	if missing != "" {
		return ValidationErrors{
			ValidationError{
				Field:   "BookingDetails",
				Message: fmt.Sprintf("bookingDetails must include %s details for service %q", missing, service),
			},
		}
	}

	if extra != "" {
		return ValidationErrors{
			ValidationError{
				Field:   "BookingDetails",
				Message: fmt.Sprintf("bookingDetails must not include %s details for service %q", extra, service),
			},
		}
	}

	return nil
}

func (v *SessionValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "dive":
			message = fmt.Sprintf("%s contains invalid entries", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
