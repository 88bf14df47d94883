package checkout

import (
	"fmt"
	"net/url"
	"strings"

	"fabricstore/internal/delivery"
	"fabricstore/internal/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const handoffBase = "https://wa.me/"

// BuildMessage renders the order summary sent to the merchant. It is a pure
// function of its inputs. Options outside the fee table are not rejected
// here: the Delivery line shows the raw option value (empty for the zero
// value), and callers that take free-form input parse it with
// domain.ParseDeliveryOption first.
func BuildMessage(d Draft, items []domain.CartItem, fee int64) string {
	n := d.normalized()
	var b strings.Builder
	b.WriteString("NEW ORDER\n\n")
	fmt.Fprintf(&b, "Customer: %s\n", n.CustomerName)
	fmt.Fprintf(&b, "Phone: %s\n", n.CustomerPhone)
	if n.Delivery.Option != domain.DeliveryPickup {
		fmt.Fprintf(&b, "Delivery: %s\n", delivery.Label(n.Delivery.Option))
		if n.Delivery.Location != "" {
			fmt.Fprintf(&b, "Location: %s\n", n.Delivery.Location)
		}
	}
	b.WriteString("\nORDER ITEMS:\n")
	for i, it := range items {
		fmt.Fprintf(&b, "%d. %s - Qty: %d x %s RWF\n", i+1, it.Name, it.Quantity, FormatAmount(it.Price))
	}
	fmt.Fprintf(&b, "\nTOTAL: %s RWF", FormatAmount(domain.CartTotal(items)+fee))
	return b.String()
}

// FormatAmount groups thousands the way the storefront displays prices (15,000).
func FormatAmount(n int64) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

// HandoffURL is the WhatsApp deep link carrying msg to recipient.
func HandoffURL(recipient, msg string) string {
	return handoffBase + digitsOnly(recipient) + "?text=" + encodeComponent(msg)
}

// encodeComponent escapes like encodeURIComponent: spaces become %20, not +.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
