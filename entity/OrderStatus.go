package entity

// OrderStatus is used both for a restaurant group and for the whole order.
type OrderStatus string

const (
	OrderPending        OrderStatus = "Pending"
	OrderPreparing      OrderStatus = "Preparing"
	OrderOutForDelivery OrderStatus = "Out for Delivery"
	OrderDelivered      OrderStatus = "Delivered"
	OrderCancelled      OrderStatus = "Cancelled"
)

var orderStatuses = []OrderStatus{
	OrderPending, OrderPreparing, OrderOutForDelivery, OrderDelivered, OrderCancelled,
}

// ParseOrderStatus accepts only the five recognised status names.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, st := range orderStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// AggregateStatus derives the order-wide status from its group statuses.
// First match wins: all Delivered, any Out for Delivery, any Preparing,
// all Cancelled, otherwise Pending.
func AggregateStatus(statuses []OrderStatus) OrderStatus {
	if len(statuses) == 0 {
		return OrderPending
	}
	allDelivered, allCancelled := true, true
	anyOut, anyPreparing := false, false
	for _, s := range statuses {
		switch s {
		case OrderOutForDelivery:
			anyOut = true
		case OrderPreparing:
			anyPreparing = true
		}
		if s != OrderDelivered {
			allDelivered = false
		}
		if s != OrderCancelled {
			allCancelled = false
		}
	}
	switch {
	case allDelivered:
		return OrderDelivered
	case anyOut:
		return OrderOutForDelivery
	case anyPreparing:
		return OrderPreparing
	case allCancelled:
		return OrderCancelled
	default:
		return OrderPending
	}
}
