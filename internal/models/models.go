package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	StatusOutForDelivery = "Out for Delivery"
	StatusDelivered      = "Delivered"
)

type Product struct {
	ID       int     `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name     string  `gorm:"unique;not null"           json:"name"`
	Stock    int     `gorm:"not null"                  json:"stock"`
	Price    float64 `gorm:"not null"                  json:"price"`
	ImageURL *string `gorm:"column:image_url"          json:"image_url"`
}

// OrderItem carries the price snapshotted from the product at the moment
// the order was placed; it is never recomputed afterwards.
type OrderItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// OrderItems is stored as a single jsonb column on the orders table.
type OrderItems []OrderItem

func (items OrderItems) Value() (driver.Value, error) {
	return json.Marshal(items)
}

func (items *OrderItems) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*items = nil
		return nil
	case []byte:
		return json.Unmarshal(v, items)
	case string:
		return json.Unmarshal([]byte(v), items)
	default:
		return fmt.Errorf("order items: unsupported column type %T", value)
	}
}

type Order struct {
	ID              int        `gorm:"primaryKey;autoIncrement"                     json:"id"`
	CustomerName    string     `gorm:"not null"                                     json:"customer_name"`
	ContactNumber   string     `json:"contact_number"`
	DeliveryAddress string     `json:"delivery_address"`
	Items           OrderItems `gorm:"type:jsonb;not null"                          json:"items"`
	OrderDate       time.Time  `gorm:"not null"                                     json:"order_date"`
	Status          string     `gorm:"type:varchar(50);default:'Out for Delivery'"  json:"status"`
}
