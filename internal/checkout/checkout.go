// Package checkout turns the current cart into an order.
package checkout

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/swift-grocers/internal/domain/cart"
	"github.com/xenking/swift-grocers/internal/domain/coupon"
	"github.com/xenking/swift-grocers/internal/domain/order"
)

// ErrEmptyCart is returned when placing an order with nothing in the cart.
var ErrEmptyCart = errors.New("cart is empty")

// Delivery fee defaults, in minor units.
const (
	DefaultDeliveryFee           = 500
	DefaultFreeDeliveryThreshold = 5000
)

// Cart is the part of the cart engine checkout needs.
type Cart interface {
	Items(ctx context.Context) cart.Cart
	Clear(ctx context.Context) cart.Cart
}

// Orders creates orders.
type Orders interface {
	CreateOrder(ctx context.Context, req order.CreateRequest) (*order.Order, error)
}

// Config holds the delivery fee rule.
type Config struct {
	// DeliveryFee is charged when the subtotal is at or below
	// FreeDeliveryThreshold.
	DeliveryFee           int64
	FreeDeliveryThreshold int64
}

// DefaultConfig returns the storefront's standard fee rule.
func DefaultConfig() Config {
	return Config{
		DeliveryFee:           DefaultDeliveryFee,
		FreeDeliveryThreshold: DefaultFreeDeliveryThreshold,
	}
}

// Quote is the price breakdown shown before placing an order.
type Quote struct {
	Subtotal     int64
	Discount     int64
	DeliveryFee  int64
	Total        int64
	CouponCode   string
	FreeShipping bool
}

// PlaceOrderRequest holds the checkout form input.
type PlaceOrderRequest struct {
	Shipping  order.ShippingInfo
	PromoCode string
}

// Service prices the cart and places orders.
type Service struct {
	cart    Cart
	orders  Orders
	coupons coupon.Validator
	cfg     Config
}

// NewService creates a checkout Service. coupons may be nil, in which case
// every promo code is rejected.
func NewService(c Cart, orders Orders, coupons coupon.Validator, cfg Config) *Service {
	return &Service{cart: c, orders: orders, coupons: coupons, cfg: cfg}
}

// Quote prices the current cart with an optional promo code.
func (s *Service) Quote(ctx context.Context, promoCode string) (Quote, error) {
	q, _, err := s.quote(ctx, promoCode)
	return q, err
}

func (s *Service) quote(ctx context.Context, promoCode string) (Quote, cart.Cart, error) {
	c := s.cart.Items(ctx)
	q := Quote{Subtotal: c.Total()}

	if code := coupon.NormalizeCode(promoCode); code != "" {
		if s.coupons == nil {
			return Quote{}, c, coupon.ErrInvalidCoupon
		}
		d, err := s.coupons.Validate(ctx, code, couponItems(c))
		if err != nil {
			return Quote{}, c, errors.Wrapf(err, "promo code %s", code)
		}
		q.Discount = d.Amount
		q.FreeShipping = d.FreeShipping
		q.CouponCode = d.Code
	}

	if q.Subtotal <= s.cfg.FreeDeliveryThreshold && !q.FreeShipping {
		q.DeliveryFee = s.cfg.DeliveryFee
	}
	if c.Empty() {
		q.DeliveryFee = 0
	}

	q.Total = q.Subtotal - q.Discount + q.DeliveryFee
	if q.Total < 0 {
		q.Total = 0
	}
	return q, c, nil
}

// PlaceOrder records the cart as an order and then clears the cart. The cart
// is left untouched when the order could not be stored.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*order.Order, error) {
	q, c, err := s.quote(ctx, req.PromoCode)
	if err != nil {
		return nil, err
	}
	if c.Empty() {
		return nil, ErrEmptyCart
	}

	o, err := s.orders.CreateOrder(ctx, order.CreateRequest{
		Items:    c.Items,
		Shipping: req.Shipping,
		Charges: order.Charges{
			Discount:    q.Discount,
			DeliveryFee: q.DeliveryFee,
			CouponCode:  q.CouponCode,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "place order")
	}

	s.cart.Clear(ctx)

	if q.CouponCode != "" {
		if _, err := s.coupons.Redeem(ctx, q.CouponCode, couponItems(c)); err != nil {
			zctx.From(ctx).Warn("Failed to record promo code use",
				zap.String("order_id", o.ID),
				zap.String("code", q.CouponCode),
				zap.Error(err),
			)
		}
	}

	return o, nil
}

func couponItems(c cart.Cart) []coupon.Item {
	items := make([]coupon.Item, len(c.Items))
	for i, li := range c.Items {
		items[i] = coupon.Item{ProductID: li.ID, Price: li.Price, Quantity: li.Quantity}
	}
	return items
}
