package checkout

import (
	"strings"

	"fabricstore/internal/delivery"
	"fabricstore/internal/domain"
)

const guestName = "Guest"

var (
	ErrPhoneRequired    = &domain.FieldError{Field: "customerPhone", Message: "phone required"}
	ErrLocationRequired = &domain.FieldError{Field: "deliveryLocation", Message: "location required"}
	ErrEmptyCart        = &domain.FieldError{Field: "cart", Message: "cart is empty"}
)

// Selection is the delivery choice made at checkout.
type Selection struct {
	Option   domain.DeliveryOption
	Location string
}

// Draft is the client-held checkout form before it becomes a server-side order.
type Draft struct {
	CustomerName  string
	CustomerPhone string
	Delivery      Selection
}

// Validate applies the checkout rules in order; the first failure wins.
func Validate(d Draft) error {
	if strings.TrimSpace(d.CustomerPhone) == "" {
		return ErrPhoneRequired
	}
	if d.Delivery.Option != domain.DeliveryPickup && strings.TrimSpace(d.Delivery.Location) == "" {
		return ErrLocationRequired
	}
	return nil
}

// CanSubmit reports whether d passes Validate.
func CanSubmit(d Draft) bool {
	return Validate(d) == nil
}

// normalized trims fields, defaults the name and drops the location for pickup.
func (d Draft) normalized() Draft {
	out := Draft{
		CustomerName:  strings.TrimSpace(d.CustomerName),
		CustomerPhone: strings.TrimSpace(d.CustomerPhone),
		Delivery: Selection{
			Option:   d.Delivery.Option,
			Location: strings.TrimSpace(d.Delivery.Location),
		},
	}
	if out.CustomerName == "" {
		out.CustomerName = guestName
	}
	if out.Delivery.Option == domain.DeliveryPickup {
		out.Delivery.Location = ""
	}
	return out
}

// GrandTotal is the cart total plus the delivery fee under fees.
func GrandTotal(items []domain.CartItem, option domain.DeliveryOption, fees delivery.FeePolicy) int64 {
	return domain.CartTotal(items) + fees(option)
}

// Submission builds the backend payload for a validated draft.
func Submission(d Draft, items []domain.CartItem, fees delivery.FeePolicy) domain.OrderSubmission {
	n := d.normalized()
	lines := make([]domain.OrderItem, 0, len(items))
	for _, it := range items {
		lines = append(lines, domain.OrderItem{ProductID: it.ID, Quantity: it.Quantity, UnitPrice: it.Price})
	}
	return domain.OrderSubmission{
		CustomerName:     n.CustomerName,
		CustomerPhone:    n.CustomerPhone,
		Channel:          domain.OrderChannelWhatsApp,
		Subtotal:         domain.CartTotal(items),
		DeliveryOption:   n.Delivery.Option,
		DeliveryFee:      fees(n.Delivery.Option),
		DeliveryLocation: n.Delivery.Location,
		Items:            lines,
	}
}
