package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/swift-grocers/internal/checkout"
	"github.com/xenking/swift-grocers/internal/domain/order"
)

func (c *CLI) checkoutQuote(ctx context.Context, args []string) error {
	fs := c.flags("quote")
	promo := fs.String("promo", "", "promo code")
	rest, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := exactArgs(rest, 0); err != nil {
		return err
	}

	q, err := c.svc.Checkout.Quote(ctx, *promo)
	if err != nil {
		return err
	}
	c.printQuote(q)
	return nil
}

func (c *CLI) printQuote(q checkout.Quote) {
	tw := newTable(c.out)
	fmt.Fprintf(tw, "Subtotal\t%s\n", money(q.Subtotal))
	if q.CouponCode != "" {
		fmt.Fprintf(tw, "Discount (%s)\t-%s\n", q.CouponCode, money(q.Discount))
	}
	if q.DeliveryFee == 0 {
		fmt.Fprintf(tw, "Delivery\tFREE\n")
	} else {
		fmt.Fprintf(tw, "Delivery\t%s\n", money(q.DeliveryFee))
	}
	fmt.Fprintf(tw, "Total\t%s\n", money(q.Total))
	_ = tw.Flush()
}

func (c *CLI) checkoutPlace(ctx context.Context, args []string) error {
	fs := c.flags("place")
	address := fs.String("address", "", "delivery address")
	payment := fs.String("payment", "Cash on Delivery", "payment method label")
	promo := fs.String("promo", "", "promo code")
	rest, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := exactArgs(rest, 0); err != nil {
		return err
	}
	if strings.TrimSpace(*address) == "" {
		return errors.Wrap(ErrUsage, "delivery address is required")
	}

	o, err := c.svc.Checkout.PlaceOrder(ctx, checkout.PlaceOrderRequest{
		Shipping: order.ShippingInfo{
			DeliveryAddress:    *address,
			PaymentMethodLabel: *payment,
		},
		PromoCode: *promo,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Order %s placed: %s, estimated delivery %s, tracking %s\n",
		o.ID, money(o.Total), day(o.EstimatedDelivery), o.Tracking)
	return nil
}

func (c *CLI) ordersList(ctx context.Context, args []string) error {
	fs := c.flags("list")
	status := fs.String("status", "", "only orders with this status")
	returns := fs.Bool("returns", false, "only orders with a return request")
	query := fs.String("q", "", "search order id or item name")
	rest, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := exactArgs(rest, 0); err != nil {
		return err
	}

	f := order.Filter{ReturnsOnly: *returns, Query: *query}
	if *status != "" {
		if f.Status, err = order.ParseStatus(*status); err != nil {
			return err
		}
	}

	orders := c.svc.Orders.Filter(ctx, f)
	if len(orders) == 0 {
		fmt.Fprintln(c.out, "No orders found")
		return nil
	}

	tw := newTable(c.out)
	fmt.Fprintln(tw, "ID\tDATE\tSTATUS\tITEMS\tTOTAL\tREFUND")
	for _, o := range orders {
		refund := "-"
		if o.ReturnRequested {
			refund = fmt.Sprintf("%s %s", money(o.RefundAmount), o.RefundStatus)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			o.ID, day(&o.CreatedAt), o.Status.Label(), len(o.Items), money(o.Total), refund)
	}
	return tw.Flush()
}

func (c *CLI) ordersShow(ctx context.Context, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}
	o, err := c.svc.Orders.Get(ctx, args[0])
	if err != nil {
		return err
	}
	c.printOrder(o)
	return nil
}

func (c *CLI) printOrder(o *order.Order) {
	fmt.Fprintf(c.out, "Order %s (%s)\n", o.ID, o.Status.Label())
	tw := newTable(c.out)
	fmt.Fprintf(tw, "Placed\t%s\n", day(&o.CreatedAt))
	fmt.Fprintf(tw, "Deliver to\t%s\n", o.DeliveryAddress)
	fmt.Fprintf(tw, "Payment\t%s\n", o.PaymentMethodLabel)
	if o.Tracking != "" {
		fmt.Fprintf(tw, "Tracking\t%s\n", o.Tracking)
	}
	if o.DeliveryDate != nil {
		fmt.Fprintf(tw, "Delivered\t%s\n", day(o.DeliveryDate))
	} else if o.EstimatedDelivery != nil {
		fmt.Fprintf(tw, "Estimated delivery\t%s\n", day(o.EstimatedDelivery))
	}
	_ = tw.Flush()

	tw = newTable(c.out)
	fmt.Fprintln(tw, "\nPRODUCT\tNAME\tQTY\tPRICE")
	for _, it := range o.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", it.ProductID, it.Name, it.Quantity, money(it.Price))
	}
	_ = tw.Flush()

	c.printQuote(checkout.Quote{
		Subtotal:    o.Subtotal,
		Discount:    o.Discount,
		DeliveryFee: o.DeliveryFee,
		Total:       o.Total,
		CouponCode:  o.CouponCode,
	})

	if o.ReturnRequested {
		fmt.Fprintf(c.out, "Return requested %s: %s\n", day(o.ReturnDate), o.ReturnReason)
		fmt.Fprintf(c.out, "Refund %s: %s\n", money(o.RefundAmount), o.RefundStatus)
	}
}

type itemFlags []string

func (f *itemFlags) String() string { return strings.Join(*f, ",") }

func (f *itemFlags) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func (c *CLI) ordersReturn(ctx context.Context, args []string) error {
	fs := c.flags("return")
	reason := fs.String("reason", "", "reason for the return")
	var picks itemFlags
	fs.Var(&picks, "item", "product to return as PRODUCT[:QTY], repeatable; default all items")
	rest, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := exactArgs(rest, 1); err != nil {
		return err
	}

	o, err := c.svc.Orders.Get(ctx, rest[0])
	if err != nil {
		return err
	}
	items, err := selectItems(o, picks)
	if err != nil {
		return err
	}

	updated, err := c.svc.Orders.InitiateReturn(ctx, o.ID, *reason, items)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Return requested for %s, refund of %s is %s\n",
		updated.ID, money(updated.RefundAmount), updated.RefundStatus)
	return nil
}

// selectItems turns PRODUCT[:QTY] picks into return items. A pick without a
// quantity returns everything ordered of that product. No picks selects the
// whole order. The order manager checks the picks against the order.
func selectItems(o *order.Order, picks []string) ([]order.Item, error) {
	if len(picks) == 0 {
		return append([]order.Item(nil), o.Items...), nil
	}

	items := make([]order.Item, 0, len(picks))
	for _, pick := range picks {
		id, qtyStr, hasQty := strings.Cut(pick, ":")
		it := order.Item{ProductID: id, Quantity: 1}
		for _, ordered := range o.Items {
			if ordered.ProductID == id {
				it.Quantity = ordered.Quantity
				break
			}
		}
		if hasQty {
			n, err := strconv.Atoi(qtyStr)
			if err != nil {
				return nil, errors.Wrapf(ErrUsage, "quantity %q", qtyStr)
			}
			it.Quantity = n
		}
		items = append(items, it)
	}
	return items, nil
}

func (c *CLI) ordersStatus(ctx context.Context, args []string) error {
	if err := exactArgs(args, 2); err != nil {
		return err
	}
	o, err := c.svc.Orders.SetStatus(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Order %s is now %s\n", o.ID, o.Status.Label())
	return nil
}

func (c *CLI) ordersRefund(ctx context.Context, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}
	o, err := c.svc.Orders.AdvanceRefund(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Refund for %s is now %s\n", o.ID, o.RefundStatus)
	return nil
}

func (c *CLI) ordersSeed(ctx context.Context, args []string) error {
	if err := exactArgs(args, 0); err != nil {
		return err
	}
	n, err := c.svc.Orders.Import(ctx, order.SampleOrders())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Added %d sample order(s)\n", n)
	return nil
}
