// Package cli implements the swiftcart sub-commands.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/swift-grocers/internal/app"
)

// ErrUsage is returned for malformed command lines.
var ErrUsage = errors.New("usage")

type command struct {
	usage string
	run   func(c *CLI, ctx context.Context, args []string) error
}

// CLI runs commands against wired services.
type CLI struct {
	svc *app.Services
	out io.Writer
}

// New returns a CLI writing its output to out.
func New(svc *app.Services, out io.Writer) *CLI {
	return &CLI{svc: svc, out: out}
}

// Run executes one command line such as ["cart", "add", "prod-1", "2"].
func (c *CLI) Run(ctx context.Context, args []string) error {
	unsubscribe := c.svc.Bus.Subscribe(func(ctx context.Context) {
		zctx.From(ctx).Debug("Cart changed",
			zap.Int("cart_items", c.svc.Cart.ItemCount(ctx)),
			zap.Int("saved_items", c.svc.Saved.ItemCount(ctx)),
		)
	})
	defer unsubscribe()

	if len(args) == 0 {
		c.usage()
		return ErrUsage
	}

	group, ok := commands[args[0]]
	if !ok {
		c.usage()
		return errors.Wrapf(ErrUsage, "unknown command %q", args[0])
	}

	name := "list"
	rest := args[1:]
	if len(rest) > 0 {
		name, rest = rest[0], rest[1:]
	}
	cmd, ok := group[name]
	if !ok {
		c.groupUsage(args[0])
		return errors.Wrapf(ErrUsage, "unknown %s command %q", args[0], name)
	}

	if err := cmd.run(c, ctx, rest); err != nil {
		if errors.Is(err, ErrUsage) {
			fmt.Fprintf(c.out, "usage: swiftcart %s %s %s\n", args[0], name, cmd.usage)
		}
		return err
	}
	return nil
}

var commands map[string]map[string]command

func init() {
	commands = map[string]map[string]command{
		"products": {
			"list": {usage: "", run: (*CLI).productsList},
		},
		"cart": {
			"list":   {usage: "", run: (*CLI).cartList},
			"add":    {usage: "<product-id> [quantity]", run: (*CLI).cartAdd},
			"set":    {usage: "<product-id> <quantity>", run: (*CLI).cartSet},
			"remove": {usage: "<product-id>", run: (*CLI).cartRemove},
			"clear":  {usage: "", run: (*CLI).cartClear},
			"total":  {usage: "", run: (*CLI).cartTotal},
		},
		"saved": {
			"list":    {usage: "", run: (*CLI).savedList},
			"save":    {usage: "<product-id>", run: (*CLI).savedSave},
			"restore": {usage: "<product-id>", run: (*CLI).savedRestore},
			"remove":  {usage: "<product-id>", run: (*CLI).savedRemove},
		},
		"checkout": {
			"quote": {usage: "[-promo CODE]", run: (*CLI).checkoutQuote},
			"place": {usage: "-address ADDRESS [-payment LABEL] [-promo CODE]", run: (*CLI).checkoutPlace},
		},
		"orders": {
			"list":   {usage: "[-status STATUS] [-returns] [-q QUERY]", run: (*CLI).ordersList},
			"show":   {usage: "<order-id>", run: (*CLI).ordersShow},
			"return": {usage: "-reason REASON [-item PRODUCT[:QTY]]... <order-id>", run: (*CLI).ordersReturn},
			"status": {usage: "<order-id> <status>", run: (*CLI).ordersStatus},
			"refund": {usage: "<order-id>", run: (*CLI).ordersRefund},
			"seed":   {usage: "", run: (*CLI).ordersSeed},
		},
	}
}

func (c *CLI) usage() {
	fmt.Fprintln(c.out, "usage: swiftcart <command> [sub-command] [args]")
	groups := make([]string, 0, len(commands))
	for g := range commands {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	for _, g := range groups {
		c.groupUsage(g)
	}
}

func (c *CLI) groupUsage(group string) {
	names := make([]string, 0, len(commands[group]))
	for n := range commands[group] {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintln(c.out, strings.TrimRight(fmt.Sprintf("  %s %s %s", group, n, commands[group][n].usage), " "))
	}
}

// parseArgs parses flags that may appear before, between or after
// positional arguments and returns the positional ones.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, errors.Wrap(ErrUsage, err.Error())
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func (c *CLI) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.out)
	return fs
}

func exactArgs(args []string, n int) error {
	if len(args) != n {
		return errors.Wrapf(ErrUsage, "want %d argument(s), got %d", n, len(args))
	}
	return nil
}
