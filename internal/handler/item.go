package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/samber/mo"

	"github.com/iliyamo/order-desk/internal/model"
	"github.com/iliyamo/order-desk/internal/repository"
)

// ItemHandler serves the /items resource.
type ItemHandler struct {
	Items *repository.ItemRepo
}

// NewItemHandler constructs an ItemHandler and panics if repo is nil.
func NewItemHandler(repo *repository.ItemRepo) *ItemHandler {
	if repo == nil {
		panic("nil repository passed to NewItemHandler")
	}
	return &ItemHandler{Items: repo}
}

type createItemRequest struct {
	ID    idField             `json:"id"`
	Name  mo.Option[*string]  `json:"name"`
	Price mo.Option[*float64] `json:"price"`
}

type updateItemRequest struct {
	Name  mo.Option[*string]  `json:"name"`
	Price mo.Option[*float64] `json:"price"`
}

func (r updateItemRequest) patch() (model.ItemPatch, error) {
	name, err := nonNull("name", r.Name)
	if err != nil {
		return model.ItemPatch{}, err
	}
	price, err := nonNull("price", r.Price)
	if err != nil {
		return model.ItemPatch{}, err
	}
	return model.ItemPatch{Name: name, Price: price}, nil
}

// Create handles POST /items/. Names are unique and compared exactly.
func (h *ItemHandler) Create(c echo.Context) error {
	var body createItemRequest
	if err := c.Bind(&body); err != nil {
		return badBody(c)
	}
	if idSupplied(body.ID) {
		return errorJSON(c, http.StatusBadRequest, "id must not be supplied")
	}
	name, okName := body.Name.Get()
	price, okPrice := body.Price.Get()
	if !okName || !okPrice || name == nil || price == nil {
		return errorJSON(c, http.StatusBadRequest, "name and price are required")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	item := &model.Item{Name: *name, Price: *price}
	if err := h.Items.Create(ctx, item); err != nil {
		if errors.Is(err, repository.ErrItemExists) {
			return errorJSON(c, http.StatusBadRequest, "Item already exists")
		}
		return internalError(c, "create item", err)
	}
	return c.JSON(http.StatusCreated, item)
}

// Get handles GET /items/:id.
func (h *ItemHandler) Get(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return badID(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	item, err := h.Items.GetByID(ctx, id)
	if errors.Is(err, repository.ErrItemNotFound) {
		return errorJSON(c, http.StatusNotFound, "item not found")
	}
	if err != nil {
		return internalError(c, "get item", err)
	}
	return c.JSON(http.StatusOK, item)
}

// Update handles PUT /items/:id.
func (h *ItemHandler) Update(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return badID(c)
	}
	var body updateItemRequest
	if err := c.Bind(&body); err != nil {
		return badBody(c)
	}
	patch, err := body.patch()
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	switch err := h.Items.Update(ctx, id, patch); {
	case errors.Is(err, repository.ErrItemNotFound):
		return errorJSON(c, http.StatusNotFound, "item not found")
	case errors.Is(err, repository.ErrItemExists):
		return errorJSON(c, http.StatusBadRequest, "Item already exists")
	case err != nil:
		return internalError(c, "update item", err)
	}
	return messageJSON(c, "Item updated successfully")
}

// Delete handles DELETE /items/:id.
func (h *ItemHandler) Delete(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return badID(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.Items.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return errorJSON(c, http.StatusConflict, "item is referenced by orders")
		}
		return internalError(c, "delete item", err)
	}
	return messageJSON(c, "Item deleted successfully")
}
