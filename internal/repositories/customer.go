// Package repositories stores the customers served by the sample API.
package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"

	"lambda-jsonapi/internal/models"
)

// CustomerRecord is a stored customer. Business customers carry their
// business fields in Business.
type CustomerRecord struct {
	Customer models.Customer
	Business *models.BusinessCustomer
}

// Value returns the stored customer as its domain type.
func (r CustomerRecord) Value() any {
	if r.Business != nil {
		b := *r.Business
		b.Customer = r.Customer
		return &b
	}
	c := r.Customer
	return &c
}

// CustomerRepository defines customer persistence operations
type CustomerRepository interface {
	Create(ctx context.Context, record CustomerRecord) error
	GetByID(ctx context.Context, id string) (CustomerRecord, error)
	GetByEmail(ctx context.Context, email string) (CustomerRecord, error)
	Update(ctx context.Context, record CustomerRecord) error
	Delete(ctx context.Context, id string) error
	// Search returns customers whose searchable text contains query, oldest
	// first. An empty query matches everything.
	Search(ctx context.Context, query string, limit int) ([]CustomerRecord, error)
}

// MemoryCustomerRepository keeps customers in memory. Lambda containers are
// reused between invocations, so records live as long as the container.
type MemoryCustomerRepository struct {
	mu      sync.RWMutex
	records map[string]CustomerRecord
}

func NewMemoryCustomerRepository() *MemoryCustomerRepository {
	return &MemoryCustomerRepository{records: make(map[string]CustomerRecord)}
}

func (r *MemoryCustomerRepository) Create(ctx context.Context, record CustomerRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[record.Customer.ID]; ok {
		return DuplicateError("customer", "id", record.Customer.ID)
	}
	if err := r.checkEmail(record); err != nil {
		return err
	}
	r.records[record.Customer.ID] = record
	return nil
}

func (r *MemoryCustomerRepository) GetByID(ctx context.Context, id string) (CustomerRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return CustomerRecord{}, NotFoundError("customer", id)
	}
	return record, nil
}

func (r *MemoryCustomerRepository) GetByEmail(ctx context.Context, email string) (CustomerRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, record := range r.records {
		if strings.EqualFold(record.Customer.Email, email) {
			return record, nil
		}
	}
	return CustomerRecord{}, &RepositoryError{Op: "get", Entity: "customer", Err: ErrNotFound, Message: "customer with email " + email + " not found"}
}

func (r *MemoryCustomerRepository) Update(ctx context.Context, record CustomerRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[record.Customer.ID]; !ok {
		return NotFoundError("customer", record.Customer.ID)
	}
	if err := r.checkEmail(record); err != nil {
		return err
	}
	r.records[record.Customer.ID] = record
	return nil
}

func (r *MemoryCustomerRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return NotFoundError("customer", id)
	}
	delete(r.records, id)
	return nil
}

func (r *MemoryCustomerRepository) Search(ctx context.Context, query string, limit int) ([]CustomerRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query = strings.ToLower(strings.TrimSpace(query))
	var result []CustomerRecord
	for _, record := range r.records {
		if query == "" || strings.Contains(searchableText(record), query) {
			result = append(result, record)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].Customer, result[j].Customer
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// checkEmail must be called with the lock held.
func (r *MemoryCustomerRepository) checkEmail(record CustomerRecord) error {
	if record.Customer.Email == "" {
		return nil
	}
	for id, existing := range r.records {
		if id != record.Customer.ID && strings.EqualFold(existing.Customer.Email, record.Customer.Email) {
			return DuplicateError("customer", "email", record.Customer.Email)
		}
	}
	return nil
}

func searchableText(record CustomerRecord) string {
	text := record.Customer.GetSearchableText()
	if record.Business != nil {
		text += " " + strings.ToLower(record.Business.BusinessName)
	}
	return text
}
