package main

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"decor-store/internal/cart"
	"decor-store/internal/checkout"
	"decor-store/internal/model"

	"github.com/shopspring/decimal"
)

var errAborted = errors.New("checkout aborted")

// checkout walks the shopper through address, shipping and confirmation.
// Typing "back" at a prompt returns to the previous step; end of input aborts.
func (a *app) checkout(ctx context.Context) error {
	opts := checkout.DefaultOptions()
	opts.Logger = a.logger

	w, err := checkout.New(a.cart, a.api, a.api, cart.NotifierFunc(a.notify), opts)
	if errors.Is(err, checkout.ErrEmptyCart) {
		fmt.Fprintln(a.out, "Your cart is empty")
		return nil
	}
	if err != nil {
		return err
	}

	a.printCart()

	for {
		switch w.Step() {
		case checkout.StepAddress:
			err = a.addressStep(ctx, w)
		case checkout.StepShipping:
			err = a.shippingStep(ctx, w)
		case checkout.StepConfirm:
			err = a.confirmStep(ctx, w)
		case checkout.StepDone:
			if o := w.Order(); o != nil {
				fmt.Fprintf(a.out, "Order %s placed, total %s\n", o.ID, rupiah(o.Total))
			}
			return nil
		}

		switch {
		case err == nil:
		case errors.Is(err, errAborted):
			fmt.Fprintln(a.out, "Checkout cancelled, your cart is unchanged")
			return nil
		case errors.Is(err, checkout.ErrLoginRequired):
			fmt.Fprintln(a.out, "Run 'shop login <username> <password>' and check out again")
			return err
		default:
			return err
		}
	}
}

func (a *app) addressStep(ctx context.Context, w *checkout.Wizard) error {
	fmt.Fprintln(a.out, "\n== Shipping address ==")
	addr := w.Address()

	var err error
	for _, f := range []struct {
		label string
		dst   *string
	}{
		{"First name", &addr.FirstName},
		{"Last name", &addr.LastName},
		{"Phone", &addr.Phone},
		{"Address", &addr.Address},
	} {
		if *f.dst, err = a.prompt(f.label, *f.dst); err != nil {
			return err
		}
	}

	provinces, err := a.api.Provinces(ctx)
	if err != nil {
		return err
	}
	for _, p := range provinces {
		fmt.Fprintf(a.out, "  %s  %s\n", p.ProvinceID, p.Province)
	}
	provinceID, err := a.prompt("Province id", encodedID(addr.Province))
	if err != nil {
		return err
	}
	i := slices.IndexFunc(provinces, func(p model.Province) bool { return p.ProvinceID == provinceID })
	if i < 0 {
		fmt.Fprintf(a.out, "Unknown province %q\n", provinceID)
		return nil
	}
	addr.Province = provinces[i].ProvinceID + "," + provinces[i].Province

	cities, err := a.api.Cities(ctx, provinceID)
	if err != nil {
		return err
	}
	for _, c := range cities {
		fmt.Fprintf(a.out, "  %s  %s %s\n", c.CityID, c.Type, c.CityName)
	}
	cityID, err := a.prompt("City id", encodedID(addr.City))
	if err != nil {
		return err
	}
	j := slices.IndexFunc(cities, func(c model.City) bool { return c.CityID == cityID })
	if j < 0 {
		fmt.Fprintf(a.out, "Unknown city %q\n", cityID)
		return nil
	}
	addr.City = cities[j].CityID + "," + cities[j].CityName

	postal := addr.PostalCode
	if postal == "" {
		postal = cities[j].PostalCode
	}
	if addr.PostalCode, err = a.prompt("Postal code", postal); err != nil {
		return err
	}

	if err := w.SetAddress(addr); err != nil {
		return err
	}

	err = w.Next()
	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		for _, field := range slices.Sorted(maps.Keys(verr.Fields)) {
			fmt.Fprintf(a.out, "  %s: %s\n", field, verr.Fields[field])
		}
		return nil
	}
	return err
}

func (a *app) shippingStep(ctx context.Context, w *checkout.Wizard) error {
	fmt.Fprintln(a.out, "\n== Shipping ==")

	courier, err := a.prompt("Courier ("+strings.Join(w.Couriers(), "/")+")", w.Courier())
	if err != nil {
		return err
	}
	if courier == "back" {
		return w.Back()
	}
	if err := w.SelectCourier(ctx, courier); err != nil {
		fmt.Fprintln(a.out, failure(err))
		return nil
	}

	quotes := w.Quotes()
	if len(quotes) == 0 {
		fmt.Fprintln(a.out, "No services available for this courier")
		return nil
	}
	for n, q := range quotes {
		fmt.Fprintf(a.out, "  %d) %-6s %-28s %s  %s days\n", n+1, q.Service, q.Description, rupiah(decimal.NewFromFloat(q.Cost.Value)), q.Cost.ETD)
	}

	choice, err := a.prompt("Service", "")
	if err != nil {
		return err
	}
	if choice == "back" {
		return w.Back()
	}
	if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(quotes) {
		choice = quotes[n-1].Service
	}
	choice = strings.ToUpper(choice)
	if err := w.SelectService(choice); err != nil {
		fmt.Fprintln(a.out, failure(err))
		return nil
	}

	return w.Next()
}

func (a *app) confirmStep(ctx context.Context, w *checkout.Wizard) error {
	fmt.Fprintln(a.out, "\n== Confirm ==")

	s := w.Summary()
	addr := w.Address()
	fmt.Fprintf(a.out, "Ship to: %s %s, %s, %s, %s %s\n",
		addr.FirstName, addr.LastName, addr.Address, labelOf(addr.City), labelOf(addr.Province), addr.PostalCode)
	fmt.Fprintf(a.out, "Subtotal: %s\n", rupiah(s.Subtotal))
	fmt.Fprintf(a.out, "Shipping: %s %s %s\n", strings.ToUpper(s.Courier), s.Service, rupiah(s.ShippingCost))
	fmt.Fprintf(a.out, "Total:    %s\n", rupiah(s.Total))

	answer, err := a.prompt("Place order? (yes/back)", "")
	if err != nil {
		return err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return w.Submit(ctx)
	case "back":
		return w.Back()
	default:
		return errAborted
	}
}

// prompt reads one line. An empty answer keeps def.
func (a *app) prompt(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(a.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(a.out, "%s: ", label)
	}

	if !a.in.Scan() {
		if err := a.in.Err(); err != nil {
			return "", err
		}
		return "", errAborted
	}
	if v := strings.TrimSpace(a.in.Text()); v != "" {
		return v, nil
	}
	return def, nil
}

func failure(err error) string {
	var um checkout.UserMessager
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	return err.Error()
}

// encodedID and labelOf split the "<id>,<label>" form used for province and city.
func encodedID(s string) string {
	id, _, _ := strings.Cut(s, ",")
	return id
}

func labelOf(s string) string {
	if _, label, ok := strings.Cut(s, ","); ok {
		return label
	}
	return s
}
