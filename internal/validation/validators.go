package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/focusflow/focusflow/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums. These should never fail to
	// register in normal operation.
	if err := Validate.RegisterValidation("task_source", validateTaskSource); err != nil {
		panic(fmt.Sprintf("failed to register task_source validator: %v", err))
	}
	if err := Validate.RegisterValidation("session_type", validateSessionType); err != nil {
		panic(fmt.Sprintf("failed to register session_type validator: %v", err))
	}
	if err := Validate.RegisterValidation("recurrence", validateRecurrence); err != nil {
		panic(fmt.Sprintf("failed to register recurrence validator: %v", err))
	}
}

func validateTaskSource(fl validator.FieldLevel) bool {
	return ValidateTaskSource(fl.Field().String()) == nil
}

func validateSessionType(fl validator.FieldLevel) bool {
	return ValidateSessionType(fl.Field().String()) == nil
}

func validateRecurrence(fl validator.FieldLevel) bool {
	return ValidateRecurrence(fl.Field().String()) == nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateTaskSource validates a TaskSource string value
func ValidateTaskSource(value string) error {
	switch models.TaskSource(value) {
	case models.TaskSourceManual, models.TaskSourceCalendar, models.TaskSourceEmail:
		return nil
	default:
		return fmt.Errorf("invalid source: %s (must be 'manual', 'calendar', or 'email')", value)
	}
}

// ValidateSessionType validates a SessionType string value
func ValidateSessionType(value string) error {
	switch models.SessionType(value) {
	case models.SessionTypeWork, models.SessionTypeShortBreak, models.SessionTypeLongBreak:
		return nil
	default:
		return fmt.Errorf("invalid session_type: %s (must be 'work', 'short_break', or 'long_break')", value)
	}
}

// ValidateRecurrence validates a Recurrence string value
func ValidateRecurrence(value string) error {
	switch models.Recurrence(value) {
	case models.RecurrenceNone, models.RecurrenceDaily, models.RecurrenceWeekly, models.RecurrenceMonthly:
		return nil
	default:
		return fmt.Errorf("invalid recurrence: %s (must be 'none', 'daily', 'weekly', or 'monthly')", value)
	}
}

// ValidateDate validates a YYYY-MM-DD date string
func ValidateDate(value string) error {
	if _, err := time.Parse(models.DateLayout, value); err != nil {
		return fmt.Errorf("invalid date: %s (must be YYYY-MM-DD)", value)
	}
	return nil
}
