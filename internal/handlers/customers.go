package handlers

import (
	"net/http"

	"lambda-jsonapi/internal/jsoncodec"
	"lambda-jsonapi/internal/repositories"
	"lambda-jsonapi/internal/services"
	"lambda-jsonapi/pkg/apierror"
	"lambda-jsonapi/pkg/controller"
)

const customerKey = "customer"

// CustomerHandler serves the customers resource
type CustomerHandler struct {
	customerService services.CustomerService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// Controller builds the "customers" controller. Member actions load the
// customer in a before filter; every action gets a cache-control header.
func (h *CustomerHandler) Controller(opts ...controller.Option) (*controller.Controller, error) {
	opts = append([]controller.Option{
		controller.Action("index", h.Index),
		controller.Action("show", h.Show),
		controller.Action("create", h.Create),
		controller.Action("update", h.Update),
		controller.Action("destroy", h.Destroy),
		controller.Action("legacy", h.Legacy),
		controller.Before("load_customer", h.loadCustomer, controller.Only("show", "update", "destroy")),
		controller.After("cache_control", setCacheControl),
	}, opts...)
	return controller.New("customers", opts...)
}

// Index lists customers, filtered by filter[q] and limited by page[size].
func (h *CustomerHandler) Index(c *controller.Context) error {
	params, err := c.Params()
	if err != nil {
		return err
	}

	filters := &services.CustomerFilters{}
	if filter := params.Map("filter"); filter != nil {
		filters.Query = controller.Parameters(filter).String("q")
	}
	if page := params.Map("page"); page != nil {
		filters.Limit = controller.Parameters(page).Int("size")
	}

	records, err := h.customerService.ListCustomers(c.Context(), filters)
	if err != nil {
		return respondError(c, err)
	}

	customers := make([]any, 0, len(records))
	for _, record := range records {
		customers = append(customers, record.Value())
	}
	return c.Render(customers, controller.Meta(map[string]any{"count": len(customers)}))
}

// Show renders the customer loaded by the before filter.
func (h *CustomerHandler) Show(c *controller.Context) error {
	record, err := loadedCustomer(c)
	if err != nil {
		return err
	}
	return c.Render(record.Value())
}

// Create accepts a JSON:API document or a flat JSON object of attributes.
func (h *CustomerHandler) Create(c *controller.Context) error {
	var req services.CreateCustomerRequest
	if err := decodeAttributes(c, &req); err != nil {
		return err
	}

	record, err := h.customerService.CreateCustomer(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}

	c.Response().SetHeader("location", customerPath(record.Customer.ID))
	return c.Render(record.Value(), controller.Status(http.StatusCreated))
}

func (h *CustomerHandler) Update(c *controller.Context) error {
	record, err := loadedCustomer(c)
	if err != nil {
		return err
	}

	var req services.UpdateCustomerRequest
	if err := decodeAttributes(c, &req); err != nil {
		return err
	}

	updated, err := h.customerService.UpdateCustomer(c.Context(), record.Customer.ID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Render(updated.Value())
}

func (h *CustomerHandler) Destroy(c *controller.Context) error {
	record, err := loadedCustomer(c)
	if err != nil {
		return err
	}
	if err := h.customerService.DeleteCustomer(c.Context(), record.Customer.ID); err != nil {
		return respondError(c, err)
	}
	return c.Render(nil, controller.Status(http.StatusNoContent))
}

// Legacy permanently redirects the old /clients/{id} URLs.
func (h *CustomerHandler) Legacy(c *controller.Context) error {
	return c.RedirectTo(customerPath(c.Request().PathParameter("id")), http.StatusMovedPermanently, "")
}

func (h *CustomerHandler) loadCustomer(c *controller.Context) error {
	record, err := h.customerService.GetCustomer(c.Context(), c.Request().PathParameter("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(customerKey, record)
	return nil
}

func loadedCustomer(c *controller.Context) (repositories.CustomerRecord, error) {
	value, ok := c.Get(customerKey)
	if !ok {
		return repositories.CustomerRecord{}, apierror.New(http.StatusInternalServerError, "customer was not loaded")
	}
	return value.(repositories.CustomerRecord), nil
}

func setCacheControl(c *controller.Context) error {
	if c.Request().Method() == http.MethodGet {
		c.Response().SetHeader("cache-control", "private, max-age=60")
	} else {
		c.Response().SetHeader("cache-control", "no-store")
	}
	return nil
}

// decodeAttributes fills target from data.attributes, or from the whole body
// when it is not a JSON:API document.
func decodeAttributes(c *controller.Context, target any) error {
	params, err := c.Params()
	if err != nil {
		return err
	}

	attributes := map[string]any(params)
	if data := params.Map("data"); data != nil {
		attributes, _ = data["attributes"].(map[string]any)
	}

	raw, err := jsoncodec.Marshal(attributes)
	if err != nil {
		return apierror.Wrap(http.StatusBadRequest, err)
	}
	if err := jsoncodec.Unmarshal(raw, target); err != nil {
		return apierror.New(http.StatusBadRequest, "The request attributes have invalid types.").WithPointer("/data/attributes")
	}
	return nil
}
