package models

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Phone number validation regex (Australian format)
var phoneRegex = regexp.MustCompile(`^(\+61|0)[2-9]\d{8}$`)

// ABN validation regex (11 digits with optional spaces/hyphens)
var abnRegex = regexp.MustCompile(`^\d{2}[\s-]?\d{3}[\s-]?\d{3}[\s-]?\d{3}$`)

var abnWeights = []int{10, 1, 3, 5, 7, 9, 11, 13, 15, 17, 19}

// IsValidPhone validates Australian phone number format
func IsValidPhone(phone string) bool {
	if phone == "" {
		return true // Optional field
	}
	return phoneRegex.MatchString(stripSeparators(phone))
}

// IsValidABN validates Australian Business Number format and checksum
func IsValidABN(abn string) bool {
	if !abnRegex.MatchString(abn) {
		return false
	}

	cleaned := stripSeparators(abn)
	sum := 0
	for i, r := range cleaned {
		digit := int(r - '0')
		if i == 0 {
			digit--
		}
		sum += digit * abnWeights[i]
	}
	return sum%89 == 0
}

func stripSeparators(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, " ", ""), "-", "")
}

// NewValidator returns a validator that reports fields by their JSON names
// and knows the "phone" and "abn" tags.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsValidPhone(fl.Field().String())
	})
	_ = v.RegisterValidation("abn", func(fl validator.FieldLevel) bool {
		return IsValidABN(fl.Field().String())
	})
	return v
}
