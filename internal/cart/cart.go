// Package cart is the shopper's local cart: product lines keyed by product
// and variant, persisted between runs.
package cart

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"decor-store/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Line is one entry of the cart.
type Line struct {
	Product   model.Product `json:"product"`
	VariantID *int64        `json:"variantId,omitempty"`
	Quantity  int           `json:"quantity"`
}

// Key identifies the line: the product id, suffixed with the variant id when one was chosen.
func (l Line) Key() string {
	return lineKey(l.Product.ID, l.VariantID)
}

// Subtotal is the unit price times the quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func lineKey(productID int64, variantID *int64) string {
	key := strconv.FormatInt(productID, 10)
	if variantID != nil {
		key += "-" + strconv.FormatInt(*variantID, 10)
	}
	return key
}

// Notifier shows a confirmation to the shopper.
type Notifier interface {
	Notify(title, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(title, message string)

func (f NotifierFunc) Notify(title, message string) { f(title, message) }

// Store holds the cart lines and writes them through to Persistence after
// every change. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	lines    []Line
	persist  Persistence
	notifier Notifier
	logger   zerolog.Logger
}

// New loads the saved cart. Unreadable state is logged and replaced by an empty cart.
func New(persist Persistence, notifier Notifier, logger zerolog.Logger) *Store {
	s := &Store{
		persist:  persist,
		notifier: notifier,
		logger:   logger.With().Str("component", "cart").Logger(),
	}
	s.lines = s.load()
	return s
}

func (s *Store) load() []Line {
	data, err := s.persist.Load()
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read saved cart, starting empty")
		return nil
	}
	if len(data) == 0 {
		return nil
	}

	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		s.logger.Warn().Err(err).Msg("saved cart is corrupt, starting empty")
		return nil
	}

	valid := lines[:0]
	for _, l := range lines {
		if l.Quantity >= 1 {
			valid = append(valid, l)
		}
	}
	return valid
}

// save must be called with mu held.
func (s *Store) save() {
	data, err := json.Marshal(s.lines)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode cart")
		return
	}
	if err := s.persist.Save(data); err != nil {
		s.logger.Error().Err(err).Msg("failed to save cart")
	}
}

// AddItem adds quantity of product to the cart, merging with an existing line
// of the same product and variant. A quantity below 1 adds one.
func (s *Store) AddItem(product model.Product, quantity int, variantID *int64) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	key := lineKey(product.ID, variantID)
	merged := false
	for i := range s.lines {
		if s.lines[i].Key() == key {
			s.lines[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		var v *int64
		if variantID != nil {
			id := *variantID
			v = &id
		}
		s.lines = append(s.lines, Line{Product: product, VariantID: v, Quantity: quantity})
	}
	s.save()
	s.mu.Unlock()

	if s.notifier != nil {
		s.notifier.Notify("Added to cart", fmt.Sprintf("%s has been added to your cart.", product.Name))
	}
}

// RemoveItem drops every line of productID.
func (s *Store) RemoveItem(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.lines[:0]
	for _, l := range s.lines {
		if l.Product.ID != productID {
			kept = append(kept, l)
		}
	}
	s.lines = kept
	s.save()
}

// UpdateQuantity sets the quantity of every line of productID. Quantities
// below 1 are ignored; use RemoveItem to drop a line.
func (s *Store) UpdateQuantity(productID int64, quantity int) {
	if quantity < 1 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].Product.ID == productID {
			s.lines[i].Quantity = quantity
		}
	}
	s.save()
}

// Clear empties the cart and deletes the saved state.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	if err := s.persist.Clear(); err != nil {
		s.logger.Error().Err(err).Msg("failed to clear saved cart")
	}
}

// Lines returns a copy of the cart lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Count is the number of lines.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Total sums the line subtotals.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
