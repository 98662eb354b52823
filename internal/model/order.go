package model

import "time"

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type ShippingAddress struct {
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state,omitempty"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country,omitempty"`
}

type OrderCreate struct {
	ShippingAddress ShippingAddress  `json:"shipping_address"`
	BillingAddress  *ShippingAddress `json:"billing_address,omitempty"`
	CustomerName    string           `json:"customer_name"`
	CustomerEmail   string           `json:"customer_email"`
	CustomerPhone   string           `json:"customer_phone"`
	PaymentMethod   string           `json:"payment_method,omitempty"`
	CustomerNotes   string           `json:"customer_notes,omitempty"`
}

type OrderItem struct {
	ID              string  `json:"id"`
	ProductID       string  `json:"product_id,omitempty"`
	ProductName     string  `json:"product_name"`
	Quantity        int     `json:"quantity"`
	PriceAtPurchase float64 `json:"price_at_purchase"`
	Subtotal        float64 `json:"subtotal"`
}

type Order struct {
	ID             string        `json:"id"`
	OrderNumber    string        `json:"order_number"`
	UserID         string        `json:"user_id"`
	TotalAmount    float64       `json:"total_amount"`
	Subtotal       float64       `json:"subtotal"`
	ShippingCost   float64       `json:"shipping_cost"`
	TaxAmount      float64       `json:"tax_amount"`
	Status         OrderStatus   `json:"status"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	CustomerName   string        `json:"customer_name"`
	CustomerEmail  string        `json:"customer_email"`
	CustomerPhone  string        `json:"customer_phone"`
	PaymentMethod  string        `json:"payment_method"`
	TrackingNumber string        `json:"tracking_number,omitempty"`
	Items          []OrderItem   `json:"items"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

type OrderList struct {
	Items      []Order `json:"items"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalPages int     `json:"total_pages"`
}

type CancelOrderResponse struct {
	Message string `json:"message"`
	Order   Order  `json:"order"`
}
