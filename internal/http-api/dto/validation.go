package dto

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// decimal(8,2): six integer digits, two fractional
var maxPrice = decimal.New(1, 6)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// report fields by their form names so messages line up with the inputs
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
			_, err := ParsePrice(fl.Field().String())
			return err == nil
		})
	}
}

// ValidationError carries one message per offending form field.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records message for field unless one is already present.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// FromBindError converts a gin binding error into per-field messages.
// Errors that carry no field (type conversion, malformed body) land on fallbackField.
func FromBindError(err error, fallbackField string) *ValidationError {
	out := &ValidationError{Fields: map[string]string{}}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out.Add(fe.Field(), messageFor(fe))
		}
		return out
	}
	out.Add(fallbackField, "Enter a valid value.")
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "url", "http_url":
		return "Enter a valid URL."
	case "email":
		return "Enter a valid email address."
	case "price":
		return "Enter a price with at most 6 digits before and 2 after the decimal point."
	case "oneof":
		return "Select a valid choice."
	case "eqfield":
		return "The two password fields didn't match."
	case "alphanum":
		return "Use letters and digits only."
	default:
		return "Enter a valid value."
	}
}

// ParsePrice accepts a non-negative amount that fits decimal(8,2). Empty input means no price.
func ParsePrice(raw string) (decimal.NullDecimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("parse price: %w", err)
	}
	if d.IsNegative() {
		return decimal.NullDecimal{}, errors.New("price must not be negative")
	}
	if !d.Equal(d.Truncate(2)) {
		return decimal.NullDecimal{}, errors.New("price has more than 2 decimal places")
	}
	if d.GreaterThanOrEqual(maxPrice) {
		return decimal.NullDecimal{}, errors.New("price has more than 6 integer digits")
	}
	return decimal.NewNullDecimal(d), nil
}
