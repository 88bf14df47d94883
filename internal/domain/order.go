package domain

import "time"

// OrderChannel identifies how an order reached the merchant.
const OrderChannelWhatsApp = "whatsapp"

// Order is the server-owned record created from a checkout submission.
type Order struct {
	ID               string         `json:"id"`
	OrderNumber      string         `json:"orderNumber"`
	CustomerName     string         `json:"customerName"`
	CustomerPhone    string         `json:"customerPhone"`
	Channel          string         `json:"channel"`
	Status           OrderStatus    `json:"status"`
	DeliveryOption   DeliveryOption `json:"deliveryOption"`
	DeliveryLocation string         `json:"deliveryLocation,omitempty"`
	Subtotal         int64          `json:"subtotal"`
	DeliveryFee      int64          `json:"deliveryFee"`
	Total            int64          `json:"total"`
	TrackingNumber   string         `json:"trackingNumber,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	ShippedAt        *time.Time     `json:"shippedAt,omitempty"`
	DeliveredAt      *time.Time     `json:"deliveredAt,omitempty"`
	Items            []OrderItem    `json:"items"`
	RequestID        string         `json:"requestId,omitempty"`
}

type OrderItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

// OrderSubmission is the payload the storefront sends when a checkout is handed off.
// RequestID is fixed per checkout so the beacon and its POST fallback record one order.
type OrderSubmission struct {
	RequestID        string         `json:"requestId,omitempty"`
	CustomerName     string         `json:"customerName"`
	CustomerPhone    string         `json:"customerPhone"`
	Channel          string         `json:"channel"`
	Subtotal         int64          `json:"subtotal"`
	DeliveryOption   DeliveryOption `json:"deliveryOption"`
	DeliveryFee      int64          `json:"deliveryFee"`
	DeliveryLocation string         `json:"deliveryLocation"`
	Items            []OrderItem    `json:"items"`
}

// TrackingInfo is the read model returned by the tracking endpoints.
type TrackingInfo struct {
	OrderID        string      `json:"orderId,omitempty"`
	OrderNumber    string      `json:"orderNumber,omitempty"`
	Status         OrderStatus `json:"status"`
	TrackingNumber string      `json:"trackingNumber,omitempty"`
	CreatedAt      *time.Time  `json:"createdAt,omitempty"`
	ShippedAt      *time.Time  `json:"shippedAt,omitempty"`
	DeliveredAt    *time.Time  `json:"deliveredAt,omitempty"`
}

// Tracking projects an Order into its TrackingInfo.
func (o Order) Tracking() TrackingInfo {
	info := TrackingInfo{
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		Status:         o.Status,
		TrackingNumber: o.TrackingNumber,
		ShippedAt:      o.ShippedAt,
		DeliveredAt:    o.DeliveredAt,
	}
	if !o.CreatedAt.IsZero() {
		created := o.CreatedAt
		info.CreatedAt = &created
	}
	return info
}
