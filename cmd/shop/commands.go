package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"text/tabwriter"

	"decor-store/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (a *app) products(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	var f model.ProductFilter
	fs.StringVar(&f.Type, "type", "", "wallpaper, rug or wall_panel")
	fs.StringVar(&f.Room, "room", "", "room category")
	fs.StringVar(&f.Color, "color", "", "hex colour, e.g. #FFFFFF")
	fs.StringVar(&f.Search, "search", "", "name contains")
	fs.BoolVar(&f.BestSeller, "bestseller", false, "best sellers only")
	fs.BoolVar(&f.NewArrival, "new", false, "new arrivals only")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	products, err := a.api.Products(ctx, f)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		fmt.Fprintln(a.out, "No products found")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tROOM\tPRICE\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Type, p.RoomCategory, rupiah(p.Price), p.Stock)
	}
	return tw.Flush()
}

func (a *app) product(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: product <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	p, err := a.api.Product(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s (#%d)\n", p.Name, p.ID)
	fmt.Fprintf(a.out, "%s | %s | %s | stock %d\n", p.Type, p.RoomCategory, rupiah(p.Price), p.Stock)
	if p.Description != "" {
		fmt.Fprintln(a.out, p.Description)
	}
	if len(p.Variants) > 0 {
		fmt.Fprintln(a.out, "Variants:")
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		for _, v := range p.Variants {
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%d\n", v.ID, v.Name, rupiah(v.Price), v.Stock)
		}
		return tw.Flush()
	}
	return nil
}

func (a *app) cartCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: cart <add|list|update|remove|clear>")
	}

	switch args[0] {
	case "add":
		return a.cartAdd(ctx, args[1:])
	case "list":
		a.printCart()
		return nil
	case "update":
		if len(args) != 3 {
			return fmt.Errorf("usage: cart update <productId> <quantity>")
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		qty, err := parseQuantity(args[2])
		if err != nil {
			return err
		}
		a.cart.UpdateQuantity(id, qty)
		a.printCart()
		return nil
	case "remove":
		if len(args) != 2 {
			return fmt.Errorf("usage: cart remove <productId>")
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		a.cart.RemoveItem(id)
		a.printCart()
		return nil
	case "clear":
		a.cart.Clear()
		fmt.Fprintln(a.out, "Cart cleared")
		return nil
	default:
		return fmt.Errorf("unknown cart command %q", args[0])
	}
}

func (a *app) cartAdd(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 3 {
		return fmt.Errorf("usage: cart add <productId> [quantity] [variantId]")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	qty := 1
	if len(args) > 1 {
		if qty, err = parseQuantity(args[1]); err != nil {
			return err
		}
	}

	p, err := a.api.Product(ctx, id)
	if err != nil {
		return err
	}

	var variantID *int64
	if len(args) > 2 {
		vid, err := parseID(args[2])
		if err != nil {
			return err
		}
		found := false
		for _, v := range p.Variants {
			if v.ID == vid {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("product %d has no variant %d", id, vid)
		}
		variantID = &vid
	}

	a.cart.AddItem(p.Product, qty, variantID)
	return nil
}

func (a *app) printCart() {
	lines := a.cart.Lines()
	if len(lines) == 0 {
		fmt.Fprintln(a.out, "Your cart is empty")
		return
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tSUBTOTAL")
	for _, l := range lines {
		name := l.Product.Name
		if l.VariantID != nil {
			name = fmt.Sprintf("%s (variant %d)", name, *l.VariantID)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", l.Product.ID, name, l.Quantity, rupiah(l.Product.Price), rupiah(l.Subtotal()))
	}
	_ = tw.Flush()
	fmt.Fprintf(a.out, "%d lines, total %s\n", a.cart.Count(), rupiah(a.cart.Total()))
}

func (a *app) register(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("usage: register <username> <password> [email]")
	}
	req := &model.RegisterRequest{Username: args[0], Password: args[1]}
	if len(args) == 3 {
		req.Email = &args[2]
	}

	user, err := a.api.Register(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s\n", user.Username)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: login <username> <password>")
	}

	user, err := a.api.Login(ctx, &model.LoginRequest{Username: args[0], Password: args[1]})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", user.Username)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := a.api.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	user, err := a.api.CurrentUser(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, user.Username)
	return nil
}

func (a *app) order(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: order <id>")
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid order id %q", args[0])
	}

	o, err := a.api.Order(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Order %s (%s), placed %s\n", o.Order.ID, o.Order.Status, o.Order.CreatedAt.Format("2006-01-02 15:04"))
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, it := range o.Items {
		fmt.Fprintf(tw, "  product %d\tx%d\t%s\n", it.ProductID, it.Quantity, rupiah(it.Price))
	}
	_ = tw.Flush()
	d := o.Order.ShippingDetails
	fmt.Fprintf(a.out, "Shipping: %s %s, %s\n", d.Courier, d.Service, rupiah(decimal.NewFromFloat(d.ShippingCost)))
	fmt.Fprintf(a.out, "Total: %s\n", rupiah(o.Order.Total))
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseQuantity(s string) (int, error) {
	qty, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	if qty < 1 {
		return 0, model.ErrInvalidQuantity
	}
	return qty, nil
}

// rupiah formats an amount as "Rp 450.000".
func rupiah(d decimal.Decimal) string {
	s := d.Round(0).StringFixed(0)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg, s = true, s[1:]
	}
	var out []byte
	for i := range len(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-Rp " + string(out)
	}
	return "Rp " + string(out)
}
