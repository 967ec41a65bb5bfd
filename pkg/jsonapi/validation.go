package jsonapi

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"lambda-jsonapi/pkg/apierror"
)

// AttributeErrors is a validation error bag: messages keyed by attribute path,
// e.g. {"addresses[0].street": ["can't be blank"]}.
type AttributeErrors map[string][]string

func (a AttributeErrors) Add(attribute, message string) {
	a[attribute] = append(a[attribute], message)
}

func (a AttributeErrors) Error() string {
	return fmt.Sprintf("%d attribute(s) failed validation", len(a))
}

var indexPattern = regexp.MustCompile(`\[(\d+)\]`)

// AttributePath converts "addresses[0].street" into "addresses/0/street".
func AttributePath(attribute string) string {
	return indexPattern.ReplaceAllString(strings.ReplaceAll(attribute, ".", "/"), "/$1")
}

// AttributeName returns the last segment of the attribute path.
func AttributeName(attribute string) string {
	return path.Base(AttributePath(attribute))
}

// AttributeError returns the 422 error for one failed attribute.
func AttributeError(attribute, message string) *apierror.Error {
	return apierror.New(422, fmt.Sprintf("`%s' %s", AttributeName(attribute), message)).
		WithPointer("/data/attributes/" + AttributePath(attribute))
}

// ValidationErrors flattens a validation error bag into 422 errors. It
// recognises AttributeErrors and validator.ValidationErrors, also when wrapped.
func ValidationErrors(object any) ([]*apierror.Error, bool) {
	switch v := object.(type) {
	case AttributeErrors:
		return fromAttributeErrors(v), true
	case validator.ValidationErrors:
		return fromFieldErrors(v), true
	case error:
		var bag AttributeErrors
		if errors.As(v, &bag) {
			return fromAttributeErrors(bag), true
		}
		var fieldErrors validator.ValidationErrors
		if errors.As(v, &fieldErrors) {
			return fromFieldErrors(fieldErrors), true
		}
	}
	return nil, false
}

func fromAttributeErrors(bag AttributeErrors) []*apierror.Error {
	attributes := make([]string, 0, len(bag))
	for attribute := range bag {
		attributes = append(attributes, attribute)
	}
	sort.Strings(attributes)

	var result []*apierror.Error
	for _, attribute := range attributes {
		for _, message := range bag[attribute] {
			result = append(result, AttributeError(attribute, message))
		}
	}
	return result
}

func fromFieldErrors(fieldErrors validator.ValidationErrors) []*apierror.Error {
	result := make([]*apierror.Error, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		attribute := fe.Namespace()
		// Drop the root struct name: "Customer.email" -> "email".
		if _, rest, ok := strings.Cut(attribute, "."); ok {
			attribute = rest
		}
		result = append(result, AttributeError(attribute, ValidationMessage(fe)).WithCode(fe.Tag()))
	}
	return result
}

// ValidationMessage phrases a validator failure without the field name.
func ValidationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if", "required_with":
		return "can't be blank"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "len":
		return fmt.Sprintf("must have length %s", fe.Param())
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "url":
		return "must be a valid URL"
	}
	return "is invalid"
}
