package domain

import (
	"fmt"
	"strings"
)

// OrderStatus is the closed set of states an order can be in.
type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusConfirmed  OrderStatus = "CONFIRMED"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

// ParseOrderStatus accepts any casing and surrounding whitespace.
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Terminal reports whether no further status changes are allowed.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Stage is a point in the customer-facing delivery progression.
type Stage int

const (
	StageUnknown Stage = iota
	StagePlaced
	StageProcessing
	StageShipped
	StageDelivered
	StageCancelled
)

var stageNames = map[Stage]string{
	StageUnknown:    "Unknown",
	StagePlaced:     "Order Placed",
	StageProcessing: "Processing",
	StageShipped:    "Shipped",
	StageDelivered:  "Delivered",
	StageCancelled:  "Cancelled",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return stageNames[StageUnknown]
}

// ProgressStages is the linear progression shown to customers, in order.
// Cancelled is a separate branch and never appears here.
var ProgressStages = []Stage{StagePlaced, StageProcessing, StageShipped, StageDelivered}

// Classify maps a raw status string onto a Stage. CONFIRMED and PROCESSING
// collapse into the same stage.
func Classify(status OrderStatus) Stage {
	switch OrderStatus(strings.ToUpper(strings.TrimSpace(string(status)))) {
	case StatusPending:
		return StagePlaced
	case StatusConfirmed, StatusProcessing:
		return StageProcessing
	case StatusShipped:
		return StageShipped
	case StatusDelivered:
		return StageDelivered
	case StatusCancelled:
		return StageCancelled
	}
	return StageUnknown
}

// Rank is the position of s in ProgressStages, or -1 when s is off the linear path.
func (s Stage) Rank() int {
	for i, p := range ProgressStages {
		if p == s {
			return i
		}
	}
	return -1
}
