package validator

import (
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)

	bloodTypes = map[string]bool{
		"A+": true, "A-": true, "B+": true, "B-": true,
		"AB+": true, "AB-": true, "O+": true, "O-": true,
	}

	appointmentStatuses = map[string]bool{
		"scheduled": true, "completed": true, "cancelled": true,
	}
)

// Funcs returns the custom binding tags used by request DTOs:
//
//	clock      HH:MM or HH:MM:SS
//	isodate    YYYY-MM-DD
//	bloodtype  A+ ... O-
//	apptstatus scheduled|completed|cancelled
func Funcs() map[string]validator.Func {
	return map[string]validator.Func{
		"clock":      validateClock,
		"isodate":    validateISODate,
		"bloodtype":  validateBloodType,
		"apptstatus": validateAppointmentStatus,
	}
}

// Register installs Funcs on v.
func Register(v *validator.Validate) error {
	for tag, fn := range Funcs() {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func validateClock(fl validator.FieldLevel) bool {
	return clockPattern.MatchString(fl.Field().String())
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

func validateBloodType(fl validator.FieldLevel) bool {
	return bloodTypes[strings.ToUpper(strings.TrimSpace(fl.Field().String()))]
}

func validateAppointmentStatus(fl validator.FieldLevel) bool {
	return appointmentStatuses[fl.Field().String()]
}
