package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/nityakart/delivery-shop/internal/es"
	"github.com/nityakart/delivery-shop/internal/logging"
	"github.com/nityakart/delivery-shop/internal/models"
	"github.com/nityakart/delivery-shop/internal/mykafka"
	"github.com/nityakart/delivery-shop/internal/transport"
)

const productTopic = "product_events"

type ProductHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	ES       *es.Indexer
}

func (h *ProductHandler) index(c echo.Context, p models.Product) {
	if err := h.ES.IndexProduct(c.Request().Context(), p); err != nil {
		logging.FromContext(c.Request().Context()).Error("es_index_error", "product_id", p.ID, "error", err)
	}
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	items := make([]models.Product, 0)
	if err := h.DB.WithContext(ctx).Order("id DESC").Find(&items).Error; err != nil {
		l.Error("get_products_error", "status", 500, "error", err)
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, items)
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("get_product_error", "status", 400, "reason", "id is not an integer", "error", err)
		return errorJSON(c, http.StatusBadRequest, "id must be an integer")
	}

	var product models.Product
	if err := h.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("get_product_error", "status", 404, "reason", "no such product")
			return errorJSON(c, http.StatusNotFound, "Product not found")
		}
		l.Error("get_product_error", "status", 500, "error", err)
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_product_error", "status", 400, "reason", "invalid body", "error", err)
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}

	prod := models.Product{
		Name:     req.Name,
		Stock:    req.Stock,
		Price:    req.Price,
		ImageURL: req.ImageURL,
	}

	// Constraint violations (duplicate name, null required field) surface
	// as a 500 carrying the database error.
	if err := h.DB.WithContext(ctx).Create(&prod).Error; err != nil {
		l.Error("create_product_error", "status", 500, "error", err)
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	publish(c, h.Producer, productTopic, strconv.Itoa(prod.ID), map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
	})
	h.index(c, prod)

	l.Info("create_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusCreated, prod)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update_product")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("update_product_error", "status", 400, "reason", "id is not an integer", "error", err)
		return errorJSON(c, http.StatusBadRequest, "id must be an integer")
	}

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_product_error", "status", 400, "reason", "invalid body", "error", err)
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}

	// Full overwrite of every column, zero values included.
	res := h.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(map[string]any{
		"name":      req.Name,
		"stock":     req.Stock,
		"price":     req.Price,
		"image_url": req.ImageURL,
	})
	if res.Error != nil {
		l.Error("update_product_error", "status", 500, "error", res.Error)
		return errorJSON(c, http.StatusInternalServerError, res.Error.Error())
	}

	// An unmatched id is still a success with an empty body.
	if res.RowsAffected == 0 {
		l.Warn("update_product_no_match", "product_id", id)
		return c.JSON(http.StatusOK, nil)
	}

	var prod models.Product
	if err := h.DB.WithContext(ctx).First(&prod, id).Error; err != nil {
		l.Error("update_product_error", "status", 500, "error", err)
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	publish(c, h.Producer, productTopic, strconv.Itoa(prod.ID), map[string]any{
		"type":      "product_updated",
		"productID": prod.ID,
		"name":      prod.Name,
	})
	h.index(c, prod)

	l.Info("update_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("delete_product_error", "status", 400, "reason", "id is not an integer", "error", err)
		return errorJSON(c, http.StatusBadRequest, "id must be an integer")
	}

	var prod models.Product
	if err := h.DB.WithContext(ctx).First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("delete_product_error", "status", 404, "reason", "no such product")
			return errorJSON(c, http.StatusNotFound, "Product not found")
		}
		l.Error("delete_product_error", "status", 500, "error", err)
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	if err := h.DB.WithContext(ctx).Delete(&prod).Error; err != nil {
		l.Error("delete_product_error", "status", 500, "error", err)
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	publish(c, h.Producer, productTopic, strconv.Itoa(prod.ID), map[string]any{
		"type":      "product_deleted",
		"productID": prod.ID,
	})
	if esErr := h.ES.DeleteProduct(ctx, prod.ID); esErr != nil {
		l.Error("es_delete_error", "product_id", prod.ID, "error", esErr)
	}

	l.Info("delete_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Product %q deleted.", prod.Name),
	})
}
