package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/crimson-storefront/internal/model"
	"github.com/iliyamo/crimson-storefront/internal/repository"
)

// ProductHandler serves the catalog.
type ProductHandler struct {
	Products *repository.ProductRepo
	Log      zerolog.Logger
}

func NewProductHandler(p *repository.ProductRepo, log zerolog.Logger) *ProductHandler {
	return &ProductHandler{Products: p, Log: log}
}

// List handles GET /api/products, newest first.
func (h *ProductHandler) List(c echo.Context) error {
	ps, err := h.Products.List(c.Request().Context())
	if err != nil {
		return storeError(c, h.Log, err, "product")
	}
	return c.JSON(http.StatusOK, ps)
}

// Create handles POST /api/products.  The client normally supplies the
// business id; one is generated when it does not.
func (h *ProductHandler) Create(c echo.Context) error {
	var p model.Product
	if err := c.Bind(&p); err != nil {
		return badRequest(c, "invalid body")
	}
	if msg := validateProduct(p); msg != "" {
		return badRequest(c, msg)
	}
	if strings.TrimSpace(p.ID) == "" {
		p.ID = model.NewProductID()
	}
	out, err := h.Products.Create(c.Request().Context(), p)
	if err != nil {
		return storeError(c, h.Log, err, "product")
	}
	return c.JSON(http.StatusCreated, out)
}

// Update handles PUT /api/products/:id.  The path id wins over the body.
func (h *ProductHandler) Update(c echo.Context) error {
	var p model.Product
	if err := c.Bind(&p); err != nil {
		return badRequest(c, "invalid body")
	}
	p.ID = c.Param("id")
	if msg := validateProduct(p); msg != "" {
		return badRequest(c, msg)
	}
	out, err := h.Products.Update(c.Request().Context(), p)
	if err != nil {
		return storeError(c, h.Log, err, "product")
	}
	return c.JSON(http.StatusOK, out)
}

// Delete handles DELETE /api/products/:id.
func (h *ProductHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.Products.Delete(c.Request().Context(), id); err != nil {
		return storeError(c, h.Log, err, "product")
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": id})
}

func validateProduct(p model.Product) string {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return "name is required"
	case p.Price < 0:
		return "price must not be negative"
	case p.Stock < 0:
		return "stock must not be negative"
	case p.Rating < 0 || p.Rating > 5:
		return "rating must be between 0 and 5"
	}
	return ""
}

// Search handles GET /api/products/search?q=&category=&min_price=&max_price=&in_stock=&page=&page_size=.
func (h *ProductHandler) Search(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	ps, _ := strconv.Atoi(c.QueryParam("page_size"))
	if ps < 1 {
		ps = 20
	}
	if ps > 100 {
		ps = 100
	}
	minPrice, _ := strconv.ParseFloat(c.QueryParam("min_price"), 64)
	maxPrice, _ := strconv.ParseFloat(c.QueryParam("max_price"), 64)
	inStock, _ := strconv.ParseBool(c.QueryParam("in_stock"))

	q := repository.ProductSearchQuery{
		Text:     strings.TrimSpace(c.QueryParam("q")),
		Category: strings.TrimSpace(c.QueryParam("category")),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		InStock:  inStock,
		Page:     page,
		PageSize: ps,
	}
	items, total, err := h.Products.Search(c.Request().Context(), q)
	if err != nil {
		return storeError(c, h.Log, err, "product")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":      items,
		"total":     total,
		"page":      page,
		"page_size": ps,
	})
}
