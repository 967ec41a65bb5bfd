package handlers

import (
	"fmt"
	"time"

	"lambda-jsonapi/internal/models"
	"lambda-jsonapi/pkg/jsonapi"
)

// CustomerSerializer renders customers. Business customers have no
// serializer of their own and resolve to this one through their embedded
// Customer.
var CustomerSerializer = jsonapi.SerializerFunc(func(object any) (jsonapi.Object, error) {
	switch v := object.(type) {
	case models.Customer:
		return customerObject(&v), nil
	case *models.Customer:
		return customerObject(v), nil
	case models.BusinessCustomer:
		return businessObject(&v), nil
	case *models.BusinessCustomer:
		return businessObject(v), nil
	}
	return jsonapi.Object{}, fmt.Errorf("CustomerSerializer cannot serialize %T", object)
})

// AddressSerializer renders customer addresses.
var AddressSerializer = jsonapi.Typed(func(a models.Address) jsonapi.Object {
	return jsonapi.Object{
		Type: "addresses",
		ID:   a.ID,
		Attributes: map[string]any{
			"street":   a.Street,
			"city":     a.City,
			"postcode": a.Postcode,
		},
	}
})

// NewCatalog registers the serializers of the customers API.
func NewCatalog() *jsonapi.Catalog {
	return jsonapi.NewCatalog().
		RegisterFor(models.Customer{}, CustomerSerializer).
		RegisterFor(models.Address{}, AddressSerializer)
}

func customerObject(c *models.Customer) jsonapi.Object {
	return jsonapi.Object{
		Type: "customers",
		ID:   c.ID,
		Attributes: map[string]any{
			"customer_type": string(c.CustomerType),
			"display_name":  c.GetDisplayName(),
			"first_name":    c.FirstName,
			"last_name":     c.LastName,
			"email":         c.Email,
			"phone":         c.Phone,
			"created_at":    c.CreatedAt.Format(time.RFC3339),
			"updated_at":    c.UpdatedAt.Format(time.RFC3339),
		},
		Relationships: map[string]jsonapi.Related{
			"addresses": {Data: c.Addresses},
		},
		Links: map[string]string{"self": customerPath(c.ID)},
	}
}

func businessObject(b *models.BusinessCustomer) jsonapi.Object {
	obj := customerObject(&b.Customer)
	obj.Attributes["display_name"] = b.GetDisplayName()
	obj.Attributes["business_name"] = b.BusinessName
	obj.Attributes["abn"] = b.ABN
	return obj
}

func customerPath(id string) string {
	return "/customers/" + id
}
