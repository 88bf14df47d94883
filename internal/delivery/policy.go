package delivery

import "fabricstore/internal/domain"

// FeePolicy resolves the delivery fee for an option.
type FeePolicy func(domain.DeliveryOption) int64

var fees = map[domain.DeliveryOption]int64{
	domain.DeliveryPickup:    0,
	domain.DeliveryKigali:    2000,
	domain.DeliveryUpcountry: 3500,
}

var labels = map[domain.DeliveryOption]string{
	domain.DeliveryPickup:    "Pickup",
	domain.DeliveryKigali:    "Kigali Delivery",
	domain.DeliveryUpcountry: "Upcountry Delivery",
}

// Fee returns the fee in RWF for option. Unknown options cost nothing; option
// membership is checked before checkout reaches this point.
func Fee(option domain.DeliveryOption) int64 {
	return fees[option]
}

// Label is the human name used in handoff messages.
func Label(option domain.DeliveryOption) string {
	if l, ok := labels[option]; ok {
		return l
	}
	return string(option)
}

// Default is the standard fee table.
var Default FeePolicy = Fee
