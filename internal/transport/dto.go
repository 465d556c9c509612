package transport

import "time"

type ProductRequest struct {
	Name     string  `json:"name"`
	Stock    int     `json:"stock"`
	Price    float64 `json:"price"`
	ImageURL *string `json:"image_url"`
}

type OrderItemRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type CreateOrderRequest struct {
	CustomerName    string             `json:"customerName"`
	ContactNumber   string             `json:"contactNumber"`
	DeliveryAddress string             `json:"deliveryAddress"`
	Items           []OrderItemRequest `json:"items"`
	OrderDate       time.Time          `json:"orderDate"`
}
