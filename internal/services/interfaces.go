package services

import (
	"context"

	"lambda-jsonapi/internal/models"
	"lambda-jsonapi/internal/repositories"
)

// CustomerService defines the interface for customer business logic operations
type CustomerService interface {
	CreateCustomer(ctx context.Context, req *CreateCustomerRequest) (repositories.CustomerRecord, error)
	GetCustomer(ctx context.Context, id string) (repositories.CustomerRecord, error)
	UpdateCustomer(ctx context.Context, id string, req *UpdateCustomerRequest) (repositories.CustomerRecord, error)
	DeleteCustomer(ctx context.Context, id string) error
	ListCustomers(ctx context.Context, filters *CustomerFilters) ([]repositories.CustomerRecord, error)
}

type AddressRequest struct {
	Street   string `json:"street"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
}

type CreateCustomerRequest struct {
	CustomerType models.CustomerType `json:"customer_type"`
	FirstName    string              `json:"first_name,omitempty"`
	LastName     string              `json:"last_name,omitempty"`
	BusinessName string              `json:"business_name,omitempty"`
	ABN          string              `json:"abn,omitempty"`
	Email        string              `json:"email,omitempty"`
	Phone        string              `json:"phone,omitempty"`
	Addresses    []AddressRequest    `json:"addresses,omitempty"`
}

// UpdateCustomerRequest changes only the fields that are set.
type UpdateCustomerRequest struct {
	FirstName    *string           `json:"first_name,omitempty"`
	LastName     *string           `json:"last_name,omitempty"`
	BusinessName *string           `json:"business_name,omitempty"`
	ABN          *string           `json:"abn,omitempty"`
	Email        *string           `json:"email,omitempty"`
	Phone        *string           `json:"phone,omitempty"`
	Addresses    *[]AddressRequest `json:"addresses,omitempty"`
}

type CustomerFilters struct {
	Query string `json:"query,omitempty"`
	Limit int    `json:"limit,omitempty"`
}
