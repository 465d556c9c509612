package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/nityakart/delivery-shop/internal/logging"
	"github.com/nityakart/delivery-shop/internal/models"
	"github.com/nityakart/delivery-shop/internal/mykafka"
	"github.com/nityakart/delivery-shop/internal/transport"
)

const orderTopic = "order_events"

type OrderHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

// CreateOrder runs the whole placement inside one transaction: per item it
// snapshots the current price and decrements stock, then inserts the order
// row. Any failure rolls the whole thing back; the client only ever sees a
// generic message while the cause goes to the log.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Error("create_order_error", "status", 500, "reason", "invalid body", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to process order.")
	}

	var order models.Order
	txErr := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var total float64
		items := make(models.OrderItems, 0, len(req.Items))

		for _, it := range req.Items {
			var prod models.Product
			if err := tx.Select("price").Where("name = ?", it.Name).First(&prod).Error; err != nil {
				return fmt.Errorf("product %s: %w", it.Name, err)
			}

			total += prod.Price * float64(it.Quantity)
			items = append(items, models.OrderItem{
				Name:     it.Name,
				Quantity: it.Quantity,
				Price:    prod.Price,
			})

			// The guard absorbs under-stock requests: zero affected rows is
			// not an error and the order is still recorded as requested.
			if err := tx.Exec(
				"UPDATE products SET stock = stock - ? WHERE name = ? AND stock >= ?",
				it.Quantity, it.Name, it.Quantity,
			).Error; err != nil {
				return fmt.Errorf("decrement stock for %s: %w", it.Name, err)
			}
		}

		order = models.Order{
			CustomerName:    req.CustomerName,
			ContactNumber:   req.ContactNumber,
			DeliveryAddress: req.DeliveryAddress,
			Items:           items,
			OrderDate:       req.OrderDate,
			Status:          models.StatusOutForDelivery,
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		// The total is computed but not stored anywhere on the order row.
		l.Debug("order_total_computed", "order_id", order.ID, "total", total)
		return nil
	})
	if txErr != nil {
		l.Error("create_order_error", "status", 500, "error", txErr)
		return errorJSON(c, http.StatusInternalServerError, "Failed to process order.")
	}

	publish(c, h.Producer, orderTopic, strconv.Itoa(order.ID), map[string]any{
		"type":     "order_created",
		"orderID":  order.ID,
		"customer": order.CustomerName,
	})

	l.Info("create_order_success", "order_id", order.ID, "items", len(order.Items))
	return c.JSON(http.StatusCreated, map[string]any{
		"success": true,
		"order":   order,
	})
}

func (h *OrderHandler) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_orders")

	outForDelivery := make([]models.Order, 0)
	if err := h.DB.WithContext(ctx).
		Where("status = ?", models.StatusOutForDelivery).
		Order("order_date DESC").
		Find(&outForDelivery).Error; err != nil {
		l.Error("get_orders_error", "status", 500, "error", err)
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	delivered := make([]models.Order, 0)
	if err := h.DB.WithContext(ctx).
		Where("status = ?", models.StatusDelivered).
		Order("order_date DESC").
		Find(&delivered).Error; err != nil {
		l.Error("get_orders_error", "status", 500, "error", err)
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"outForDelivery": outForDelivery,
		"delivered":      delivered,
	})
}

// DeliverOrder sets the status unconditionally, so repeating the call on an
// already-delivered order succeeds again.
func (h *OrderHandler) DeliverOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.deliver_order")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("deliver_order_error", "status", 400, "reason", "id is not an integer", "error", err)
		return errorJSON(c, http.StatusBadRequest, "id must be an integer")
	}

	res := h.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", models.StatusDelivered)
	if res.Error != nil {
		l.Error("deliver_order_error", "status", 500, "error", res.Error)
		return errorJSON(c, http.StatusInternalServerError, res.Error.Error())
	}

	var order *models.Order
	if res.RowsAffected > 0 {
		order = &models.Order{}
		if err := h.DB.WithContext(ctx).First(order, id).Error; err != nil {
			l.Error("deliver_order_error", "status", 500, "error", err)
			return errorJSON(c, http.StatusInternalServerError, err.Error())
		}

		publish(c, h.Producer, orderTopic, strconv.Itoa(order.ID), map[string]any{
			"type":    "order_delivered",
			"orderID": order.ID,
		})
		l.Info("deliver_order_success", "order_id", order.ID)
	} else {
		l.Warn("deliver_order_no_match", "order_id", id)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"order":   order,
	})
}
