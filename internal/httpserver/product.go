package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_backend/internal/logging"
	authmw "github.com/Skotchmaster/shop_backend/internal/middleware/auth"
	uploadmw "github.com/Skotchmaster/shop_backend/internal/middleware/upload"
	"github.com/Skotchmaster/shop_backend/internal/search"
	"github.com/Skotchmaster/shop_backend/internal/service"
	"github.com/Skotchmaster/shop_backend/internal/transport"
	"github.com/Skotchmaster/shop_backend/internal/validation"
)

type ProductHTTP struct {
	Svc *service.CatalogService
}

func (h *ProductHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list_products")

	items, err := h.Svc.ListProducts(ctx)
	if err != nil {
		l.Error("list_products_failed", "status", 500, "error", err)
		return message(c, http.StatusInternalServerError, "Internal server error.")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Products retrieved successfully.",
		"products": items,
	})
}

func (h *ProductHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := productID(c)
	if err != nil {
		l.Warn("get_product_failed", "status", 400, "reason", "id is not an integer", "error", err)
		return message(c, http.StatusBadRequest, "Invalid product id.")
	}

	prod, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return productError(c, l, "get_product_failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Product retrieved successfully.",
		"product": prod,
	})
}

func (h *ProductHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search_products")

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, limit := search.Page(page, size)

	total, items, err := h.Svc.SearchProducts(ctx, strings.TrimSpace(c.QueryParam("q")), from, limit)
	if err != nil {
		return productError(c, l, "search_products_failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Products retrieved successfully.",
		"total":    total,
		"products": items,
	})
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	who, _ := authmw.IdentityFrom(c)
	req, err := productRequest(c)
	if err != nil {
		l.Warn("create_product_failed", "status", 400, "reason", "invalid body", "error", err)
		return message(c, http.StatusBadRequest, "Invalid request body.")
	}

	prod, err := h.Svc.CreateProduct(ctx, who, req, uploadmw.ImageFrom(c))
	if err != nil {
		return productError(c, l, "create_product_failed", err)
	}

	l.Info("create_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Product created successfully.",
		"product": prod,
	})
}

func (h *ProductHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update_product")

	id, err := productID(c)
	if err != nil {
		l.Warn("update_product_failed", "status", 400, "reason", "id is not an integer", "error", err)
		return message(c, http.StatusBadRequest, "Invalid product id.")
	}
	who, _ := authmw.IdentityFrom(c)
	req, err := productRequest(c)
	if err != nil {
		l.Warn("update_product_failed", "status", 400, "reason", "invalid body", "error", err)
		return message(c, http.StatusBadRequest, "Invalid request body.")
	}

	prod, err := h.Svc.UpdateProduct(ctx, who, id, req, uploadmw.ImageFrom(c))
	if err != nil {
		return productError(c, l, "update_product_failed", err)
	}

	l.Info("update_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Product updated successfully.",
		"product": prod,
	})
}

func (h *ProductHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	id, err := productID(c)
	if err != nil {
		l.Warn("delete_product_failed", "status", 400, "reason", "id is not an integer", "error", err)
		return message(c, http.StatusBadRequest, "Invalid product id.")
	}
	who, _ := authmw.IdentityFrom(c)

	prod, err := h.Svc.DeleteProduct(ctx, who, id)
	if err != nil {
		return productError(c, l, "delete_product_failed", err)
	}

	l.Info("delete_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Product deleted successfully.",
		"product": prod,
	})
}

func productError(c echo.Context, l *slog.Logger, event string, err error) error {
	var (
		verr *validation.Errors
		cerr *service.CategoryError
	)
	switch {
	case errors.Is(err, service.ErrForbidden):
		l.Warn(event, "status", 401, "reason", "not an admin")
		return message(c, http.StatusUnauthorized, "Access denied. Only admins can perform this action.")
	case errors.Is(err, service.ErrImageRequired):
		l.Warn(event, "status", 400, "reason", "image missing")
		return message(c, http.StatusBadRequest, "Image file is required.")
	case errors.Is(err, service.ErrInvalidInput):
		l.Warn(event, "status", 400, "reason", "missing fields")
		return message(c, http.StatusBadRequest, "All fields (name, price, description, stock, category) must be entered.")
	case errors.As(err, &verr):
		l.Warn(event, "status", 400, "reason", "validation", "error", err)
		return validationFailed(c, verr)
	case errors.As(err, &cerr):
		l.Warn(event, "status", 400, "reason", "unknown category", "category", cerr.Name)
		return message(c, http.StatusBadRequest, cerr.Error())
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", 404, "reason", "product not found")
		return message(c, http.StatusNotFound, "Product not found.")
	case errors.Is(err, service.ErrUploadFailed):
		l.Error(event, "status", 500, "reason", "image upload", "error", err)
		return message(c, http.StatusInternalServerError, "Failed to upload product image.")
	case errors.Is(err, service.ErrImageDeleteFailed):
		l.Error(event, "status", 500, "reason", "image delete", "error", err)
		return message(c, http.StatusInternalServerError, "Failed to delete product image.")
	case errors.Is(err, service.ErrSearchDisabled):
		l.Warn(event, "status", 503, "reason", "search disabled")
		return message(c, http.StatusServiceUnavailable, "Product search is not available.")
	default:
		l.Error(event, "status", 500, "error", err)
		return message(c, http.StatusInternalServerError, "Internal server error.")
	}
}

func productID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// productRequest reads the product fields from a JSON body or from a
// (multipart) form.
func productRequest(c echo.Context) (transport.ProductRequest, error) {
	var get func(key string) (string, bool)

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		body := map[string]any{}
		dec := json.NewDecoder(c.Request().Body)
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return transport.ProductRequest{}, err
		}
		get = func(key string) (string, bool) {
			v, ok := body[key]
			if !ok || v == nil {
				return "", false
			}
			switch t := v.(type) {
			case string:
				return t, true
			case json.Number:
				return t.String(), true
			default:
				return fmt.Sprint(t), true
			}
		}
	} else {
		form, err := c.FormParams()
		if err != nil {
			return transport.ProductRequest{}, err
		}
		get = func(key string) (string, bool) {
			vs, ok := form[key]
			if !ok || len(vs) == 0 {
				return "", false
			}
			return vs[0], true
		}
	}

	req := transport.ProductRequest{}
	req.Name, _ = get("name")
	req.Price, _ = get("price")
	req.Description, _ = get("description")
	req.Stock, req.StockSet = get("stock")
	req.Category, _ = get("category")
	return req, nil
}
