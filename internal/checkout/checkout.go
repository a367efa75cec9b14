// Package checkout drives the three-step checkout: delivery address, shipping
// service selection and confirmation.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"decor-store/internal/cart"
	"decor-store/internal/model"
	"decor-store/internal/shipping"
	"decor-store/internal/validation"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Step is a stage of the checkout.
type Step int

const (
	StepAddress Step = iota
	StepShipping
	StepConfirm
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepAddress:
		return "address"
	case StepShipping:
		return "shipping"
	case StepConfirm:
		return "confirm"
	case StepDone:
		return "done"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

var (
	// ErrEmptyCart is returned when checkout is started or submitted with no lines.
	ErrEmptyCart = errors.New("checkout: cart is empty")
	// ErrLoginRequired is returned by Submit when the shopper is not logged in.
	ErrLoginRequired = errors.New("checkout: login required")
	// ErrFinished is returned by every operation once the order is placed.
	ErrFinished = errors.New("checkout: order already placed")
)

// StepError reports an operation attempted at the wrong step.
type StepError struct {
	Op   string
	Step Step
}

func (e *StepError) Error() string {
	return fmt.Sprintf("checkout: %s is not allowed at the %s step", e.Op, e.Step)
}

// ValidationError lists the fields blocking a transition.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return "checkout: " + strings.Join(parts, "; ")
}

// Address is the delivery address entered at the first step. Province and
// City may carry the storefront's "<id>,<label>" encoding.
type Address struct {
	FirstName  string `json:"firstName" validate:"required"`
	LastName   string `json:"lastName" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	Address    string `json:"address" validate:"required,min=5"`
	Province   string `json:"province" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
}

// DestinationID is the city id used for shipping quotes.
func (a Address) DestinationID() string {
	id, _, _ := strings.Cut(a.City, ",")
	return strings.TrimSpace(id)
}

// Cart is the part of the cart store the checkout reads and clears.
type Cart interface {
	Lines() []cart.Line
	Total() decimal.Decimal
	Clear()
}

// Quoter prices the services of a courier.
type Quoter interface {
	Quote(ctx context.Context, origin, destination string, weightGrams float64, courier string) ([]shipping.ServiceOption, error)
}

// Submitter places the order.
type Submitter interface {
	CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error)
}

// Options configures a Wizard.
type Options struct {
	// Origin is the city id parcels ship from.
	Origin      string
	WeightGrams float64
	Couriers    []string
	Validator   *validation.Validator
	Logger      zerolog.Logger
}

// DefaultOptions ships 1 kg parcels from Jakarta Pusat with JNE, POS or TIKI.
func DefaultOptions() Options {
	return Options{
		Origin:      "152",
		WeightGrams: shipping.DefaultWeightGrams,
		Couriers:    []string{"jne", "pos", "tiki"},
		Logger:      zerolog.Nop(),
	}
}

// Summary is what the confirmation step shows.
type Summary struct {
	Lines        []cart.Line
	Subtotal     decimal.Decimal
	Courier      string
	Service      string
	ShippingCost decimal.Decimal
	Total        decimal.Decimal
}

// Wizard holds the state of one checkout. It is not safe for concurrent use.
type Wizard struct {
	cart      Cart
	quoter    Quoter
	submitter Submitter
	notifier  cart.Notifier
	opts      Options
	validator *validation.Validator
	logger    zerolog.Logger

	step     Step
	address  Address
	courier  string
	quotes   []shipping.ServiceOption
	selected *shipping.ServiceOption
	order    *model.Order
}

// New starts a checkout. It fails with ErrEmptyCart when the cart has no lines.
func New(c Cart, quoter Quoter, submitter Submitter, notifier cart.Notifier, opts Options) (*Wizard, error) {
	if len(c.Lines()) == 0 {
		return nil, ErrEmptyCart
	}

	defaults := DefaultOptions()
	if opts.Origin == "" {
		opts.Origin = defaults.Origin
	}
	if opts.WeightGrams <= 0 {
		opts.WeightGrams = defaults.WeightGrams
	}
	if len(opts.Couriers) == 0 {
		opts.Couriers = defaults.Couriers
	}
	v := opts.Validator
	if v == nil {
		v = validation.New()
	}

	return &Wizard{
		cart:      c,
		quoter:    quoter,
		submitter: submitter,
		notifier:  notifier,
		opts:      opts,
		validator: v,
		logger:    opts.Logger.With().Str("component", "checkout").Logger(),
		step:      StepAddress,
	}, nil
}

// Step returns the current step.
func (w *Wizard) Step() Step { return w.step }

// Address returns the address entered so far.
func (w *Wizard) Address() Address { return w.address }

// Couriers returns the couriers the shopper can pick from.
func (w *Wizard) Couriers() []string { return slices.Clone(w.opts.Couriers) }

// Courier returns the courier whose quotes are loaded.
func (w *Wizard) Courier() string { return w.courier }

// Quotes returns the services quoted for the current courier.
func (w *Wizard) Quotes() []shipping.ServiceOption { return slices.Clone(w.quotes) }

// Selected returns the chosen service, or nil.
func (w *Wizard) Selected() *shipping.ServiceOption {
	if w.selected == nil {
		return nil
	}
	s := *w.selected
	return &s
}

// Order returns the placed order once the checkout is done.
func (w *Wizard) Order() *model.Order { return w.order }

// SetAddress records the delivery address. It is only accepted at the
// address step; changing the destination city discards quotes fetched for
// the old one.
func (w *Wizard) SetAddress(a Address) error {
	if w.step != StepAddress {
		return w.stepErr("set address")
	}
	if a.DestinationID() != w.address.DestinationID() {
		w.courier = ""
		w.quotes = nil
		w.selected = nil
	}
	w.address = a
	return nil
}

// Next advances one step if the current step is complete.
func (w *Wizard) Next() error {
	switch w.step {
	case StepAddress:
		if fields := w.validator.Fields(w.address); len(fields) > 0 {
			return &ValidationError{Fields: fields}
		}
		w.step = StepShipping
		return nil
	case StepShipping:
		if w.selected == nil || w.courier == "" {
			return &ValidationError{Fields: map[string]string{"service": "Please choose a shipping service"}}
		}
		if w.selected.Cost.Value < 0 {
			return &ValidationError{Fields: map[string]string{"shippingCost": "shippingCost must be 0 or more"}}
		}
		w.step = StepConfirm
		return nil
	case StepDone:
		return ErrFinished
	default:
		return &StepError{Op: "next", Step: w.step}
	}
}

// Back returns to the previous step, keeping everything entered.
func (w *Wizard) Back() error {
	switch w.step {
	case StepShipping:
		w.step = StepAddress
	case StepConfirm:
		w.step = StepShipping
	case StepDone:
		return ErrFinished
	}
	return nil
}

// SelectCourier loads the quotes of courier for the current destination.
// Any previously chosen service is dropped.
func (w *Wizard) SelectCourier(ctx context.Context, courier string) error {
	if w.step != StepShipping {
		return w.stepErr("select courier")
	}

	courier = strings.ToLower(strings.TrimSpace(courier))
	if !slices.Contains(w.opts.Couriers, courier) {
		return &ValidationError{Fields: map[string]string{
			"courier": "courier must be one of: " + strings.Join(w.opts.Couriers, ", "),
		}}
	}

	w.courier = courier
	w.quotes = nil
	w.selected = nil

	quotes, err := w.quoter.Quote(ctx, w.opts.Origin, w.address.DestinationID(), w.opts.WeightGrams, courier)
	if err != nil {
		return fmt.Errorf("quote %s: %w", courier, err)
	}
	w.quotes = quotes

	w.logger.Debug().
		Str("courier", courier).
		Str("destination", w.address.DestinationID()).
		Int("services", len(quotes)).
		Msg("shipping quotes loaded")
	return nil
}

// SelectService picks one of the quoted services of the current courier.
func (w *Wizard) SelectService(service string) error {
	if w.step != StepShipping {
		return w.stepErr("select service")
	}
	if w.courier == "" {
		return &ValidationError{Fields: map[string]string{"courier": "Please choose a courier first"}}
	}

	i := slices.IndexFunc(w.quotes, func(o shipping.ServiceOption) bool { return o.Service == service })
	if i < 0 {
		return &ValidationError{Fields: map[string]string{
			"service": fmt.Sprintf("%s does not offer %q for this route", strings.ToUpper(w.courier), service),
		}}
	}
	opt := w.quotes[i]
	w.selected = &opt
	return nil
}

// ShippingDetails assembles the address and the chosen service.
func (w *Wizard) ShippingDetails() model.ShippingDetails {
	d := model.ShippingDetails{
		FirstName:  w.address.FirstName,
		LastName:   w.address.LastName,
		Address:    w.address.Address,
		Province:   w.address.Province,
		City:       w.address.City,
		PostalCode: w.address.PostalCode,
		Phone:      w.address.Phone,
	}
	if w.selected != nil {
		d.Courier = w.courier
		d.Service = w.selected.Service
		d.ShippingCost = w.selected.Cost.Value
	}
	return d
}

// Summary returns the figures shown at confirmation. The server reprices
// the order, so the placed total may differ if prices changed meanwhile.
func (w *Wizard) Summary() Summary {
	d := w.ShippingDetails()
	subtotal := w.cart.Total()
	cost := decimal.NewFromFloat(d.ShippingCost)
	return Summary{
		Lines:        w.cart.Lines(),
		Subtotal:     subtotal,
		Courier:      d.Courier,
		Service:      d.Service,
		ShippingCost: cost,
		Total:        subtotal.Add(cost),
	}
}

// Submit places the order. On success the cart is cleared and the checkout
// ends. A rejected login is reported as ErrLoginRequired.
func (w *Wizard) Submit(ctx context.Context) error {
	if w.step != StepConfirm {
		return w.stepErr("submit")
	}
	if w.selected == nil || w.courier == "" {
		return &ValidationError{Fields: map[string]string{"service": "Please choose a shipping service"}}
	}

	lines := w.cart.Lines()
	if len(lines) == 0 {
		return ErrEmptyCart
	}

	req := &model.OrderRequest{
		Items:           make([]model.OrderItemRequest, 0, len(lines)),
		ShippingDetails: w.ShippingDetails(),
	}
	for _, l := range lines {
		req.Items = append(req.Items, model.OrderItemRequest{ProductID: l.Product.ID, Quantity: l.Quantity})
	}

	order, err := w.submitter.CreateOrder(ctx, req)
	if err != nil {
		if errors.Is(err, model.ErrUnauthorized) {
			w.notify("Login required", "Please log in to place an order")
			return ErrLoginRequired
		}
		w.logger.Warn().Err(err).Msg("order submission failed")
		w.notify("Order failed", failureMessage(err))
		return err
	}

	w.cart.Clear()
	w.order = order
	w.step = StepDone
	w.notify("Order placed", "Thank you for shopping with us.")
	return nil
}

func (w *Wizard) stepErr(op string) error {
	if w.step == StepDone {
		return ErrFinished
	}
	return &StepError{Op: op, Step: w.step}
}

func (w *Wizard) notify(title, message string) {
	if w.notifier != nil {
		w.notifier.Notify(title, message)
	}
}

// UserMessager is implemented by errors that carry a message fit for the shopper.
type UserMessager interface {
	UserMessage() string
}

// failureMessage is the one-line reason shown to the shopper.
func failureMessage(err error) string {
	var um UserMessager
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	var de *model.DomainError
	if errors.As(err, &de) && de.Kind != model.KindInternal {
		return de.Message
	}
	return "Could not place the order"
}
