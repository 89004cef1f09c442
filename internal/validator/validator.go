// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"fittrack/internal/models"
	"fittrack/internal/progress"
)

var otpCodeRegex = regexp.MustCompile(`^[0-9]{6}$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("otp_code", validateOTPCode)
		_ = v.RegisterValidation("workout_type", validateWorkoutType)
		_ = v.RegisterValidation("iso_date", validateISODate)
	}
}

func validateOTPCode(fl validator.FieldLevel) bool {
	return otpCodeRegex.MatchString(fl.Field().String())
}

func validateWorkoutType(fl validator.FieldLevel) bool {
	switch models.WorkoutType(fl.Field().String()) {
	case models.WorkoutTypeStrength, models.WorkoutTypeCardio, models.WorkoutTypeFlexibility, models.WorkoutTypeMixed:
		return true
	}
	return false
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(progress.DateLayout, fl.Field().String())
	return err == nil
}
