package domain

import (
	"fmt"
	"strings"
)

// DeliveryOption is the closed set of fulfilment choices offered at checkout.
type DeliveryOption string

const (
	DeliveryPickup    DeliveryOption = "pickup"
	DeliveryKigali    DeliveryOption = "kigali"
	DeliveryUpcountry DeliveryOption = "upcountry"
)

// Valid reports whether o is one of the known options.
func (o DeliveryOption) Valid() bool {
	switch o {
	case DeliveryPickup, DeliveryKigali, DeliveryUpcountry:
		return true
	}
	return false
}

// ParseDeliveryOption normalizes user input into a DeliveryOption.
func ParseDeliveryOption(s string) (DeliveryOption, error) {
	o := DeliveryOption(strings.ToLower(strings.TrimSpace(s)))
	if !o.Valid() {
		return "", fmt.Errorf("unknown delivery option %q", s)
	}
	return o, nil
}
