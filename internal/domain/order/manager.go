package order

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xenking/swift-grocers/internal/domain/cart"
	"github.com/xenking/swift-grocers/internal/storage"
)

// DefaultDeliveryWindow is how far after checkout delivery is estimated.
const DefaultDeliveryWindow = 48 * time.Hour

// ShippingInfo is what checkout collected from the customer.
type ShippingInfo struct {
	DeliveryAddress    string
	PaymentMethodLabel string
}

// Charges adjust the item subtotal into the amount paid.
type Charges struct {
	Discount    int64
	DeliveryFee int64
	CouponCode  string
}

// CreateRequest holds the input for CreateOrder.
type CreateRequest struct {
	Items    []cart.LineItem
	Shipping ShippingInfo
	Charges  Charges
}

// Manager keeps the persisted order list.
//
// Reads degrade to an empty list when the store fails. Mutations read the
// list strictly instead, so an unreadable list is never overwritten.
type Manager struct {
	store          storage.Store
	key            string
	user           string
	now            func() time.Time
	newID          func() string
	newTracking    func() string
	deliveryWindow time.Duration

	mu sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithKey overrides the store key (storage.OrdersKey by default).
func WithKey(key string) Option {
	return func(m *Manager) { m.key = key }
}

// WithUser partitions the order list by user ID.
func WithUser(userID string) Option {
	return func(m *Manager) { m.user = userID }
}

// WithClock sets the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDs replaces the order ID and tracking code generators.
func WithIDs(orderID, tracking func() string) Option {
	return func(m *Manager) {
		m.newID = orderID
		m.newTracking = tracking
	}
}

// WithDeliveryWindow sets the estimated delivery offset.
func WithDeliveryWindow(d time.Duration) Option {
	return func(m *Manager) { m.deliveryWindow = d }
}

// NewManager returns a Manager over store.
func NewManager(store storage.Store, opts ...Option) *Manager {
	m := &Manager{
		store:          store,
		key:            storage.OrdersKey,
		now:            time.Now,
		newID:          newOrderID,
		newTracking:    newTrackingCode,
		deliveryWindow: DefaultDeliveryWindow,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.key = storage.UserKey(m.key, m.user)
	return m
}

// CreateOrder freezes the given cart lines into a new processing order and
// appends it to the list.
func (m *Manager) CreateOrder(ctx context.Context, req CreateRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	items := make([]Item, len(req.Items))
	for i, li := range req.Items {
		if li.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: li.ID}
		}
		items[i] = ItemFromLine(li)
	}

	now := m.now().UTC()
	eta := now.Add(m.deliveryWindow)
	subtotal := SumItems(items)

	// Total = subtotal - discount + delivery fee, floored at zero.
	total := subtotal - req.Charges.Discount + req.Charges.DeliveryFee
	if total < 0 {
		total = 0
	}

	o := &Order{
		ID:                 m.newID(),
		CreatedAt:          now,
		Status:             StatusProcessing,
		Items:              items,
		DeliveryAddress:    req.Shipping.DeliveryAddress,
		PaymentMethodLabel: req.Shipping.PaymentMethodLabel,
		Subtotal:           subtotal,
		Discount:           req.Charges.Discount,
		DeliveryFee:        req.Charges.DeliveryFee,
		Total:              total,
		CouponCode:         req.Charges.CouponCode,
		Tracking:           m.newTracking(),
		EstimatedDelivery:  &eta,
	}

	if err := m.mutate(ctx, func(orders []*Order) ([]*Order, error) {
		return append(orders, o), nil
	}); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	zctx.From(ctx).Info("Order created",
		zap.String("order_id", o.ID),
		zap.Int("items", len(o.Items)),
		zap.Int64("total", o.Total),
	)
	return o.clone(), nil
}

// InitiateReturn records a return request for some or all items of an
// order and starts its refund as pending. The delivery status is left as
// it is.
func (m *Manager) InitiateReturn(ctx context.Context, orderID, reason string, items []Item) (*Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, &ValidationError{
			Field:   "reason",
			Message: "a reason for the return is required",
			Reason:  ErrReturnReasonRequired,
		}
	}
	if len(items) == 0 {
		return nil, &ValidationError{
			Field:   "items",
			Message: "select at least one item to return",
			Reason:  ErrReturnItemsRequired,
		}
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, &ValidationError{
				Field:   "items",
				Message: fmt.Sprintf("return quantity for %q must be greater than 0", it.Name),
			}
		}
	}

	return m.update(ctx, orderID, func(o *Order) error {
		if o.ReturnRequested {
			return ErrReturnAlreadyRequested
		}
		returned, err := matchReturnItems(o, items)
		if err != nil {
			return err
		}
		now := m.now().UTC()
		o.ReturnRequested = true
		o.ReturnReason = reason
		o.ReturnDate = &now
		o.ReturnItems = returned
		o.RefundAmount = SumItems(returned)
		o.RefundStatus = RefundPending
		return nil
	})
}

// matchReturnItems resolves requested items against the order's lines by
// product ID, or by name when the request carries no ID. Requests for the
// same line are merged. Prices come from the order, never from the request.
func matchReturnItems(o *Order, items []Item) ([]Item, error) {
	var (
		out  []Item
		seen = make(map[int]int, len(items))
	)
	for _, it := range items {
		line := -1
		for i, ordered := range o.Items {
			if (it.ProductID != "" && ordered.ProductID == it.ProductID) ||
				(it.ProductID == "" && ordered.Name == it.Name) {
				line = i
				break
			}
		}
		if line < 0 {
			return nil, &ValidationError{
				Field:   "items",
				Message: fmt.Sprintf("order %s has no item %s", o.ID, itemLabel(it)),
				Reason:  ErrReturnItemNotInOrder,
			}
		}

		j, ok := seen[line]
		if !ok {
			it := o.Items[line]
			it.Quantity = 0
			out = append(out, it)
			j = len(out) - 1
			seen[line] = j
		}
		out[j].Quantity += it.Quantity
		if ordered := o.Items[line]; out[j].Quantity > ordered.Quantity {
			return nil, &ValidationError{
				Field:   "items",
				Message: fmt.Sprintf("only %d of %s were ordered", ordered.Quantity, itemLabel(ordered)),
				Reason:  ErrReturnQuantityExceeded,
			}
		}
	}
	return out, nil
}

func itemLabel(it Item) string {
	if it.ProductID != "" {
		return it.ProductID
	}
	return it.Name
}

// SetStatus stores a delivery status reported by fulfilment. Any known
// status is accepted; moves outside the usual flow are logged.
func (m *Manager) SetStatus(ctx context.Context, orderID, status string) (*Order, error) {
	next, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}

	return m.update(ctx, orderID, func(o *Order) error {
		if o.Status != next && !o.Status.CanTransition(next) {
			zctx.From(ctx).Warn("Unexpected order status transition",
				zap.String("order_id", o.ID),
				zap.String("from", string(o.Status)),
				zap.String("to", string(next)),
			)
		}
		if next == StatusDelivered && o.Status != StatusDelivered {
			now := m.now().UTC()
			o.DeliveryDate = &now
		}
		o.Status = next
		return nil
	})
}

// AdvanceRefund moves the refund of a returned order one step forward.
func (m *Manager) AdvanceRefund(ctx context.Context, orderID string) (*Order, error) {
	return m.update(ctx, orderID, func(o *Order) error {
		if !o.ReturnRequested {
			return ErrNoReturnRequested
		}
		next, ok := o.RefundStatus.Next()
		if !ok {
			return ErrRefundComplete
		}
		o.RefundStatus = next
		return nil
	})
}

// Import appends orders whose IDs are not in the list yet and returns how
// many were added.
func (m *Manager) Import(ctx context.Context, orders []Order) (int, error) {
	added := 0
	err := m.mutate(ctx, func(current []*Order) ([]*Order, error) {
		seen := make(map[string]struct{}, len(current))
		for _, o := range current {
			seen[o.ID] = struct{}{}
		}
		for i := range orders {
			if _, ok := seen[orders[i].ID]; ok {
				continue
			}
			seen[orders[i].ID] = struct{}{}
			current = append(current, orders[i].clone())
			added++
		}
		return current, nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "import orders")
	}
	return added, nil
}

// List returns every order in creation order.
func (m *Manager) List(ctx context.Context) []Order {
	orders, err := m.load(ctx)
	if err != nil {
		zctx.From(ctx).Warn("Order list unavailable, showing none",
			zap.String("key", m.key),
			zap.Error(err),
		)
		return nil
	}

	out := make([]Order, len(orders))
	for i, o := range orders {
		out[i] = *o.clone()
	}
	return out
}

// Get returns one order.
func (m *Manager) Get(ctx context.Context, orderID string) (*Order, error) {
	for _, o := range m.List(ctx) {
		if o.ID == orderID {
			return &o, nil
		}
	}
	return nil, &NotFoundError{OrderID: orderID}
}

func (m *Manager) update(ctx context.Context, orderID string, fn func(o *Order) error) (*Order, error) {
	var updated *Order
	err := m.mutate(ctx, func(orders []*Order) ([]*Order, error) {
		for _, o := range orders {
			if o.ID != orderID {
				continue
			}
			if err := fn(o); err != nil {
				return nil, err
			}
			updated = o.clone()
			return orders, nil
		}
		return nil, &NotFoundError{OrderID: orderID}
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (m *Manager) mutate(ctx context.Context, fn func(orders []*Order) ([]*Order, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	orders, err := m.load(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrUnavailable) {
			zctx.From(ctx).Error("Order history is unreadable, refusing to overwrite it",
				zap.String("key", m.key),
				zap.String("hint", "repair or move the stored document aside to resume ordering"),
				zap.Error(err),
			)
		}
		return err
	}

	orders, err = fn(orders)
	if err != nil {
		return err
	}

	if err := m.store.Write(ctx, m.key, Encode(orders)); err != nil {
		return errors.Wrap(err, "persist orders")
	}
	return nil
}

func (m *Manager) load(ctx context.Context) ([]*Order, error) {
	data, err := m.store.Read(ctx, m.key)
	if err != nil {
		return nil, errors.Wrap(err, "read orders")
	}
	orders, err := Decode(data)
	if err != nil {
		return nil, errors.Wrap(err, "decode orders")
	}
	return orders, nil
}

func newOrderID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + strings.ToUpper(id[:12])
}

func newTrackingCode() string {
	u := uuid.New()
	return fmt.Sprintf("TRK-%09d", binary.BigEndian.Uint64(u[:8])%1_000_000_000)
}
