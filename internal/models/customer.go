package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CustomerType represents the type of customer
type CustomerType string

const (
	CustomerTypeIndividual CustomerType = "individual"
	CustomerTypeBusiness   CustomerType = "business"
)

// Address is a postal address of a customer
type Address struct {
	ID       string `json:"id"`
	Street   string `json:"street" validate:"required"`
	City     string `json:"city" validate:"required"`
	Postcode string `json:"postcode" validate:"omitempty,numeric,len=4"`
}

// NewAddress creates an address with a generated ID
func NewAddress(street, city, postcode string) Address {
	return Address{ID: uuid.New().String(), Street: street, City: city, Postcode: postcode}
}

// Customer represents a customer in the system
type Customer struct {
	ID           string       `json:"id"`
	CustomerType CustomerType `json:"customer_type" validate:"required,oneof=individual business"`
	FirstName    string       `json:"first_name" validate:"required_if=CustomerType individual"`
	LastName     string       `json:"last_name"`
	Email        string       `json:"email" validate:"omitempty,email"`
	Phone        string       `json:"phone" validate:"omitempty,phone"`
	Addresses    []Address    `json:"addresses" validate:"dive"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// NewCustomer creates a new customer with generated ID and timestamps
func NewCustomer(customerType CustomerType) *Customer {
	now := time.Now().UTC()
	return &Customer{
		ID:           uuid.New().String(),
		CustomerType: customerType,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewIndividualCustomer creates a new individual customer
func NewIndividualCustomer(firstName, lastName string) *Customer {
	customer := NewCustomer(CustomerTypeIndividual)
	customer.FirstName = firstName
	customer.LastName = lastName
	return customer
}

// GetDisplayName returns the display name for the customer
func (c *Customer) GetDisplayName() string {
	var parts []string
	if c.FirstName != "" {
		parts = append(parts, c.FirstName)
	}
	if c.LastName != "" {
		parts = append(parts, c.LastName)
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	return "Unknown Customer"
}

// GetSearchableText returns text that can be used for searching
func (c *Customer) GetSearchableText() string {
	var parts []string
	for _, part := range []string{c.FirstName, c.LastName, c.Email, c.Phone} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// UpdateTimestamp updates the UpdatedAt timestamp
func (c *Customer) UpdateTimestamp() {
	c.UpdatedAt = time.Now().UTC()
}

// BusinessCustomer is a customer trading under a business name. It renders
// with the customer serializer unless one is registered for it.
type BusinessCustomer struct {
	Customer
	BusinessName string `json:"business_name" validate:"required"`
	ABN          string `json:"abn" validate:"omitempty,abn"`
}

// NewBusinessCustomer creates a new business customer
func NewBusinessCustomer(businessName string) *BusinessCustomer {
	return &BusinessCustomer{
		Customer:     *NewCustomer(CustomerTypeBusiness),
		BusinessName: businessName,
	}
}

// GetDisplayName returns the business name
func (b *BusinessCustomer) GetDisplayName() string {
	if b.BusinessName != "" {
		return b.BusinessName
	}
	return b.Customer.GetDisplayName()
}

// HasABN returns true if the customer has an ABN
func (b *BusinessCustomer) HasABN() bool {
	return strings.TrimSpace(b.ABN) != ""
}
