package jsonapi

import (
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email   string `validate:"required,email"`
	Name    string `validate:"required"`
	Country string `validate:"oneof=AU NZ"`
}

func TestAttributePath(t *testing.T) {
	assert.Equal(t, "name", AttributePath("name"))
	assert.Equal(t, "addresses/0/street", AttributePath("addresses[0].street"))
	assert.Equal(t, "street", AttributeName("addresses[0].street"))
}

func TestAttributeError(t *testing.T) {
	err := AttributeError("profile.first_name", "can't be blank")

	assert.Equal(t, 422, err.Status)
	assert.Equal(t, "`first_name' can't be blank", err.Detail())
	assert.Equal(t, "/data/attributes/profile/first_name", err.Pointer)
}

func TestValidationErrorsFromBag(t *testing.T) {
	bag := AttributeErrors{}
	bag.Add("name", "can't be blank")
	bag.Add("name", "is too short")

	errs, ok := ValidationErrors(fmt.Errorf("save: %w", bag))

	require.True(t, ok)
	require.Len(t, errs, 2)
	assert.Equal(t, "`name' can't be blank", errs[0].Detail())
	assert.Equal(t, "`name' is too short", errs[1].Detail())
}

func TestValidationErrorsFromValidator(t *testing.T) {
	err := validator.New().Struct(signup{Email: "nope", Country: "US"})
	require.Error(t, err)

	errs, ok := ValidationErrors(err)

	require.True(t, ok)
	require.Len(t, errs, 3)
	assert.Equal(t, "`Email' must be a valid email address", errs[0].Detail())
	assert.Equal(t, "/data/attributes/Email", errs[0].Pointer)
	assert.Equal(t, "email", errs[0].Code)
	assert.Equal(t, "`Name' can't be blank", errs[1].Detail())
	assert.Equal(t, "`Country' must be one of: AU NZ", errs[2].Detail())
}

func TestValidationErrorsIgnoresOtherValues(t *testing.T) {
	_, ok := ValidationErrors(fmt.Errorf("plain"))
	assert.False(t, ok)

	_, ok = ValidationErrors(person{})
	assert.False(t, ok)
}
