package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/samber/mo"

	"github.com/iliyamo/order-desk/internal/model"
	"github.com/iliyamo/order-desk/internal/repository"
)

// CustomerHandler serves the /customers resource.
type CustomerHandler struct {
	Customers *repository.CustomerRepo
}

// NewCustomerHandler constructs a CustomerHandler and panics if repo is nil.
func NewCustomerHandler(repo *repository.CustomerRepo) *CustomerHandler {
	if repo == nil {
		panic("nil repository passed to NewCustomerHandler")
	}
	return &CustomerHandler{Customers: repo}
}

type createCustomerRequest struct {
	ID    idField            `json:"cust_id"`
	Name  mo.Option[*string] `json:"name"`
	Phone mo.Option[*string] `json:"phone"`
}

type updateCustomerRequest struct {
	Name  mo.Option[*string] `json:"name"`
	Phone mo.Option[*string] `json:"phone"`
}

func (r updateCustomerRequest) patch() (model.CustomerPatch, error) {
	name, err := nonNull("name", r.Name)
	if err != nil {
		return model.CustomerPatch{}, err
	}
	phone, err := nonNull("phone", r.Phone)
	if err != nil {
		return model.CustomerPatch{}, err
	}
	return model.CustomerPatch{Name: name, Phone: phone}, nil
}

// Create handles POST /customers/.
func (h *CustomerHandler) Create(c echo.Context) error {
	var body createCustomerRequest
	if err := c.Bind(&body); err != nil {
		return badBody(c)
	}
	if idSupplied(body.ID) {
		return errorJSON(c, http.StatusBadRequest, "cust_id must not be supplied")
	}
	name, okName := body.Name.Get()
	phone, okPhone := body.Phone.Get()
	if !okName || !okPhone || name == nil || phone == nil {
		return errorJSON(c, http.StatusBadRequest, "name and phone are required")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	cust := &model.Customer{Name: *name, Phone: *phone}
	if err := h.Customers.Create(ctx, cust); err != nil {
		return internalError(c, "create customer", err)
	}
	return c.JSON(http.StatusCreated, cust)
}

// Get handles GET /customers/:id.
func (h *CustomerHandler) Get(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return badID(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	cust, err := h.Customers.GetByID(ctx, id)
	if errors.Is(err, repository.ErrCustomerNotFound) {
		return errorJSON(c, http.StatusNotFound, "customer not found")
	}
	if err != nil {
		return internalError(c, "get customer", err)
	}
	return c.JSON(http.StatusOK, cust)
}

// Update handles PUT /customers/:id. Only fields present in the body are
// written; the response is the record after the update.
func (h *CustomerHandler) Update(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return badID(c)
	}
	var body updateCustomerRequest
	if err := c.Bind(&body); err != nil {
		return badBody(c)
	}
	patch, err := body.patch()
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	cust, err := h.Customers.Update(ctx, id, patch)
	if errors.Is(err, repository.ErrCustomerNotFound) {
		return errorJSON(c, http.StatusNotFound, "customer not found")
	}
	if err != nil {
		return internalError(c, "update customer", err)
	}
	return c.JSON(http.StatusOK, cust)
}

// Delete handles DELETE /customers/:id. Missing rows are not an error.
func (h *CustomerHandler) Delete(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return badID(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.Customers.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return errorJSON(c, http.StatusConflict, "customer still has orders")
		}
		return internalError(c, "delete customer", err)
	}
	return messageJSON(c, "Customer deleted successfully")
}
