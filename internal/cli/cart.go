package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/xenking/swift-grocers/internal/domain/cart"
)

func (c *CLI) productsList(ctx context.Context, args []string) error {
	if err := exactArgs(args, 0); err != nil {
		return err
	}
	products, err := c.svc.Catalog.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list products")
	}

	tw := newTable(c.out)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Category, money(p.Price))
	}
	return tw.Flush()
}

func (c *CLI) cartList(ctx context.Context, args []string) error {
	if err := exactArgs(args, 0); err != nil {
		return err
	}
	return c.printCart(c.svc.Cart.Items(ctx), "Your cart is empty")
}

func (c *CLI) cartAdd(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.Wrap(ErrUsage, "want a product id and an optional quantity")
	}
	qty := 1
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return errors.Wrapf(ErrUsage, "quantity %q", args[1])
		}
		qty = n
	}

	p, err := c.svc.Catalog.GetByID(ctx, args[0])
	if err != nil {
		return err
	}
	cur := c.svc.Cart.AddItem(ctx, *p, qty)
	if li, ok := cur.Find(p.ID); ok {
		fmt.Fprintf(c.out, "Added %s (now %d in cart)\n", p.Name, li.Quantity)
	}
	return nil
}

func (c *CLI) cartSet(ctx context.Context, args []string) error {
	if err := exactArgs(args, 2); err != nil {
		return err
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return errors.Wrapf(ErrUsage, "quantity %q", args[1])
	}

	if _, ok := c.svc.Cart.Items(ctx).Find(args[0]); !ok {
		return errors.Errorf("%s is not in the cart", args[0])
	}
	cur := c.svc.Cart.SetQuantity(ctx, args[0], qty)
	if li, ok := cur.Find(args[0]); ok {
		fmt.Fprintf(c.out, "%s quantity set to %d\n", li.Name, li.Quantity)
	} else {
		fmt.Fprintf(c.out, "Removed %s\n", args[0])
	}
	return nil
}

func (c *CLI) cartRemove(ctx context.Context, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}
	c.svc.Cart.RemoveItem(ctx, args[0])
	fmt.Fprintf(c.out, "Removed %s\n", args[0])
	return nil
}

func (c *CLI) cartClear(ctx context.Context, args []string) error {
	if err := exactArgs(args, 0); err != nil {
		return err
	}
	c.svc.Cart.Clear(ctx)
	fmt.Fprintln(c.out, "Cart cleared")
	return nil
}

func (c *CLI) cartTotal(ctx context.Context, args []string) error {
	if err := exactArgs(args, 0); err != nil {
		return err
	}
	cur := c.svc.Cart.Items(ctx)
	fmt.Fprintf(c.out, "%d item(s), total %s\n", cur.ItemCount(), money(cur.Total()))
	return nil
}

func (c *CLI) savedList(ctx context.Context, args []string) error {
	if err := exactArgs(args, 0); err != nil {
		return err
	}
	return c.printCart(c.svc.Saved.Items(ctx), "Nothing saved for later")
}

func (c *CLI) savedSave(ctx context.Context, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}
	if !cart.Move(ctx, c.svc.Cart, c.svc.Saved, args[0]) {
		return errors.Errorf("%s is not in the cart", args[0])
	}
	fmt.Fprintf(c.out, "Saved %s for later\n", args[0])
	return nil
}

func (c *CLI) savedRestore(ctx context.Context, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}
	if !cart.Move(ctx, c.svc.Saved, c.svc.Cart, args[0]) {
		return errors.Errorf("%s is not saved for later", args[0])
	}
	fmt.Fprintf(c.out, "Moved %s back to the cart\n", args[0])
	return nil
}

func (c *CLI) savedRemove(ctx context.Context, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}
	c.svc.Saved.RemoveItem(ctx, args[0])
	fmt.Fprintf(c.out, "Removed %s from saved items\n", args[0])
	return nil
}

func (c *CLI) printCart(cur cart.Cart, empty string) error {
	if cur.Empty() {
		fmt.Fprintln(c.out, empty)
		return nil
	}
	tw := newTable(c.out)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tSUBTOTAL")
	for _, li := range cur.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", li.ID, li.Name, li.Quantity, money(li.Price), money(li.Subtotal()))
	}
	fmt.Fprintf(tw, "\t\t%d\t\t%s\n", cur.ItemCount(), money(cur.Total()))
	return tw.Flush()
}
