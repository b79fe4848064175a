package domain

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount coerces a client supplied numeric value into a positive finite
// float. The field name is used in the returned ValidationError.
func ParseAmount(field, raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, Invalid(field, "is required")
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, Invalid(field, "must be a number")
	}
	if err := ValidateAmount(field, value); err != nil {
		return 0, err
	}
	return value, nil
}

// ValidateAmount rejects zero, negative, NaN and infinite values.
func ValidateAmount(field string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Invalid(field, "must be a finite number")
	}
	if value <= 0 {
		return Invalid(field, "must be greater than zero")
	}
	return nil
}

// ValidateName rejects names that are empty after trimming.
func ValidateName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return Invalid(field, "is required")
	}
	return nil
}
