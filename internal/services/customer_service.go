package services

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"lambda-jsonapi/internal/models"
	"lambda-jsonapi/internal/repositories"
	"lambda-jsonapi/pkg/jsonapi"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// customerService implements the CustomerService interface
type customerService struct {
	customerRepo repositories.CustomerRepository
	validator    *validator.Validate
}

// NewCustomerService creates a new customer service instance
func NewCustomerService(customerRepo repositories.CustomerRepository) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		validator:    models.NewValidator(),
	}
}

// CreateCustomer creates a new customer
func (s *customerService) CreateCustomer(ctx context.Context, req *CreateCustomerRequest) (repositories.CustomerRecord, error) {
	if req == nil {
		req = &CreateCustomerRequest{}
	}

	var record repositories.CustomerRecord
	if req.CustomerType == models.CustomerTypeBusiness {
		business := models.NewBusinessCustomer(req.BusinessName)
		business.ABN = req.ABN
		record.Business = business
		record.Customer = business.Customer
	} else {
		record.Customer = *models.NewCustomer(req.CustomerType)
	}
	record.Customer.FirstName = req.FirstName
	record.Customer.LastName = req.LastName
	record.Customer.Email = req.Email
	record.Customer.Phone = req.Phone
	record.Customer.Addresses = newAddresses(req.Addresses)

	if err := s.validate(record); err != nil {
		return repositories.CustomerRecord{}, err
	}

	if err := s.customerRepo.Create(ctx, record); err != nil {
		return repositories.CustomerRecord{}, err
	}
	return record, nil
}

// GetCustomer retrieves a customer by ID
func (s *customerService) GetCustomer(ctx context.Context, id string) (repositories.CustomerRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return repositories.CustomerRecord{}, repositories.NotFoundError("customer", id)
	}
	return s.customerRepo.GetByID(ctx, id)
}

// UpdateCustomer updates an existing customer
func (s *customerService) UpdateCustomer(ctx context.Context, id string, req *UpdateCustomerRequest) (repositories.CustomerRecord, error) {
	record, err := s.GetCustomer(ctx, id)
	if err != nil {
		return repositories.CustomerRecord{}, err
	}
	if req == nil {
		return record, nil
	}

	// Update fields if provided
	if req.FirstName != nil {
		record.Customer.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		record.Customer.LastName = *req.LastName
	}
	if req.Email != nil {
		record.Customer.Email = *req.Email
	}
	if req.Phone != nil {
		record.Customer.Phone = *req.Phone
	}
	if req.Addresses != nil {
		record.Customer.Addresses = newAddresses(*req.Addresses)
	}
	if record.Business != nil {
		business := *record.Business
		if req.BusinessName != nil {
			business.BusinessName = *req.BusinessName
		}
		if req.ABN != nil {
			business.ABN = *req.ABN
		}
		record.Business = &business
	}

	record.Customer.UpdateTimestamp()

	if err := s.validate(record); err != nil {
		return repositories.CustomerRecord{}, err
	}
	if err := s.customerRepo.Update(ctx, record); err != nil {
		return repositories.CustomerRecord{}, err
	}
	return record, nil
}

// DeleteCustomer deletes a customer by ID
func (s *customerService) DeleteCustomer(ctx context.Context, id string) error {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return err
	}
	return s.customerRepo.Delete(ctx, id)
}

// ListCustomers retrieves customers with optional filters
func (s *customerService) ListCustomers(ctx context.Context, filters *CustomerFilters) ([]repositories.CustomerRecord, error) {
	if filters == nil {
		filters = &CustomerFilters{}
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)

	return s.customerRepo.Search(ctx, filters.Query, limit)
}

func (s *customerService) validate(record repositories.CustomerRecord) error {
	var err error
	if record.Business != nil {
		business := *record.Business
		business.Customer = record.Customer
		err = s.validator.Struct(&business)
	} else {
		err = s.validator.Struct(&record.Customer)
	}
	return attributeErrors(err)
}

// attributeErrors turns validator failures into an attribute error bag keyed
// by JSON attribute path. Fields of the embedded customer are reported at the
// top level.
func attributeErrors(err error) error {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	bag := make(jsonapi.AttributeErrors)
	for _, fe := range fieldErrors {
		_, attribute, _ := strings.Cut(fe.Namespace(), ".")
		attribute = strings.TrimPrefix(attribute, "Customer.")
		bag.Add(attribute, jsonapi.ValidationMessage(fe))
	}
	return bag
}

func newAddresses(requests []AddressRequest) []models.Address {
	if len(requests) == 0 {
		return nil
	}
	addresses := make([]models.Address, 0, len(requests))
	for _, req := range requests {
		addresses = append(addresses, models.NewAddress(req.Street, req.City, req.Postcode))
	}
	return addresses
}
