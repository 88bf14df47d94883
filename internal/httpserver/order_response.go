package httpserver

import (
	"time"

	"fabricstore/internal/delivery"
	"fabricstore/internal/domain"
)

type orderResponse struct {
	ID               string              `json:"id"`
	OrderNumber      string              `json:"orderNumber"`
	CustomerName     string              `json:"customerName"`
	CustomerPhone    string              `json:"customerPhone"`
	Channel          string              `json:"channel"`
	Status           domain.OrderStatus  `json:"status"`
	Stage            string              `json:"stage"`
	DeliveryOption   string              `json:"deliveryOption"`
	DeliveryLabel    string              `json:"deliveryLabel"`
	DeliveryLocation string              `json:"deliveryLocation,omitempty"`
	Subtotal         int64               `json:"subtotal"`
	DeliveryFee      int64               `json:"deliveryFee"`
	Total            int64               `json:"total"`
	TrackingNumber   string              `json:"trackingNumber,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
	ShippedAt        *time.Time          `json:"shippedAt,omitempty"`
	DeliveredAt      *time.Time          `json:"deliveredAt,omitempty"`
	Items            []orderItemResponse `json:"items"`
}

type orderItemResponse struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
	LineTotal int64  `json:"lineTotal"`
}

type orderListResponse struct {
	Count   int             `json:"count"`
	Results []orderResponse `json:"results"`
}

type trackingResponse struct {
	domain.TrackingInfo
	Stage string `json:"stage"`
}

type statusUpdateRequest struct {
	Status         string `json:"status" binding:"required"`
	TrackingNumber string `json:"trackingNumber"`
}

type issueTokenRequest struct {
	CustomerPhone string `json:"customerPhone" binding:"required"`
	TTLSeconds    int    `json:"ttlSeconds"`
}

type issueTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func toOrderResponse(o domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.UnitPrice * int64(it.Quantity),
		})
	}
	return orderResponse{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		CustomerName:     o.CustomerName,
		CustomerPhone:    o.CustomerPhone,
		Channel:          o.Channel,
		Status:           o.Status,
		Stage:            domain.Classify(o.Status).String(),
		DeliveryOption:   string(o.DeliveryOption),
		DeliveryLabel:    delivery.Label(o.DeliveryOption),
		DeliveryLocation: o.DeliveryLocation,
		Subtotal:         o.Subtotal,
		DeliveryFee:      o.DeliveryFee,
		Total:            o.Total,
		TrackingNumber:   o.TrackingNumber,
		CreatedAt:        o.CreatedAt,
		ShippedAt:        o.ShippedAt,
		DeliveredAt:      o.DeliveredAt,
		Items:            items,
	}
}

func toOrderListResponse(orders []domain.Order) orderListResponse {
	out := orderListResponse{Count: len(orders), Results: make([]orderResponse, 0, len(orders))}
	for _, o := range orders {
		out.Results = append(out.Results, toOrderResponse(o))
	}
	return out
}

func toTrackingResponse(info domain.TrackingInfo) trackingResponse {
	return trackingResponse{TrackingInfo: info, Stage: domain.Classify(info.Status).String()}
}
