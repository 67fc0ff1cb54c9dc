package order

import (
	"time"

	"github.com/xenking/swift-grocers/internal/domain/cart"
)

// Status is the delivery state of an order.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusInTransit  Status = "in_transit"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusReturned   Status = "returned"
)

var statusLabels = map[Status]string{
	StatusProcessing: "Processing",
	StatusInTransit:  "In Transit",
	StatusDelivered:  "Delivered",
	StatusCancelled:  "Cancelled",
	StatusReturned:   "Returned",
}

// transitions lists the forward edges of the delivery state machine.
var transitions = map[Status][]Status{
	StatusProcessing: {StatusInTransit, StatusCancelled},
	StatusInTransit:  {StatusDelivered, StatusCancelled},
	StatusDelivered:  {StatusReturned},
}

// ParseStatus converts a stored or user supplied value to a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := statusLabels[st]; !ok {
		return "", &UnknownStatusError{Value: s}
	}
	return st, nil
}

// Label is the human-readable name of s.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// CanTransition reports whether next directly follows s.
func (s Status) CanTransition(next Status) bool {
	for _, to := range transitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further delivery transition is expected.
// Delivered is terminal unless a return is later requested.
func (s Status) Terminal() bool {
	switch s {
	case StatusDelivered, StatusCancelled, StatusReturned:
		return true
	default:
		return false
	}
}

// RefundStatus is the state of the refund that follows a return request. It
// is independent of Status.
type RefundStatus string

const (
	RefundNone      RefundStatus = ""
	RefundPending   RefundStatus = "pending"
	RefundProcessed RefundStatus = "processed"
	RefundRefunded  RefundStatus = "refunded"
)

// ParseRefundStatus converts a stored value. Empty means no refund.
func ParseRefundStatus(s string) (RefundStatus, error) {
	switch rs := RefundStatus(s); rs {
	case RefundNone, RefundPending, RefundProcessed, RefundRefunded:
		return rs, nil
	default:
		return "", &UnknownStatusError{Value: s, Refund: true}
	}
}

// Next returns the following refund step. ok is false once refunded or
// when no refund is in progress.
func (rs RefundStatus) Next() (next RefundStatus, ok bool) {
	switch rs {
	case RefundPending:
		return RefundProcessed, true
	case RefundProcessed:
		return RefundRefunded, true
	default:
		return rs, false
	}
}

// Item is a frozen copy of a cart line taken at checkout.
type Item struct {
	ProductID string
	Name      string
	Quantity  int
	Price     int64
	Image     string
}

// Subtotal returns Price × Quantity.
func (it Item) Subtotal() int64 {
	return it.Price * int64(it.Quantity)
}

// ItemFromLine freezes a cart line.
func ItemFromLine(li cart.LineItem) Item {
	return Item{
		ProductID: li.ID,
		Name:      li.Name,
		Quantity:  li.Quantity,
		Price:     li.Price,
		Image:     li.Image,
	}
}

// SumItems returns Σ(price × quantity).
func SumItems(items []Item) int64 {
	var sum int64
	for _, it := range items {
		sum += it.Subtotal()
	}
	return sum
}

// Order is a checkout record. Items never change after creation; Status and
// the return/refund fields evolve independently of each other.
type Order struct {
	ID        string
	CreatedAt time.Time
	Status    Status
	Items     []Item

	DeliveryAddress    string
	PaymentMethodLabel string

	Subtotal    int64
	Discount    int64
	DeliveryFee int64
	Total       int64
	CouponCode  string

	Tracking          string
	EstimatedDelivery *time.Time
	DeliveryDate      *time.Time

	ReturnRequested bool
	ReturnReason    string
	ReturnDate      *time.Time
	ReturnItems     []Item
	RefundAmount    int64
	RefundStatus    RefundStatus
}

// CanReturn reports whether the storefront should offer a return.
func (o *Order) CanReturn() bool {
	return o.Status == StatusDelivered && !o.ReturnRequested
}

func (o *Order) clone() *Order {
	c := *o
	c.Items = append([]Item(nil), o.Items...)
	if o.ReturnItems != nil {
		c.ReturnItems = append([]Item(nil), o.ReturnItems...)
	}
	c.EstimatedDelivery = cloneTime(o.EstimatedDelivery)
	c.DeliveryDate = cloneTime(o.DeliveryDate)
	c.ReturnDate = cloneTime(o.ReturnDate)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
