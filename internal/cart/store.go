// Package cart is the client-side cart state container: line items plus the
// applied coupon, recomputing totals on every mutation and writing through to
// persistent storage. It replaces ambient global cart state with an explicit
// store handed to whoever needs it.
package cart

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ferixo/storefront/internal/pricing"
)

var (
	ErrVerifyInFlight = errors.New("coupon verification already in flight")
	ErrItemNotFound   = errors.New("cart item not found")
)

// Storage is the serialize/deserialize boundary: hydrate once at startup,
// write through on every mutation.
type Storage interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// Verifier is the network boundary for coupon application.
type Verifier interface {
	Verify(ctx context.Context, code string) (*pricing.Coupon, error)
}

// Store is single-goroutine by contract: all mutation happens on the UI event
// loop, so there is no locking. The only async boundary is coupon
// verification, guarded by a busy flag against duplicate in-flight requests.
type Store struct {
	storage  Storage
	verifier Verifier
	policy   pricing.Policy

	items     []pricing.LineItem
	coupon    *pricing.Coupon
	totals    pricing.Totals
	verifying bool
}

type persistedState struct {
	Items  []pricing.LineItem `json:"items"`
	Coupon *pricing.Coupon    `json:"coupon,omitempty"`
}

// NewStore hydrates from storage; unreadable or corrupt state starts an empty
// cart rather than failing.
func NewStore(storage Storage, verifier Verifier, policy pricing.Policy) *Store {
	s := &Store{storage: storage, verifier: verifier, policy: policy}

	if storage != nil {
		if data, err := storage.Load(); err == nil && len(data) > 0 {
			var state persistedState
			if err := json.Unmarshal(data, &state); err == nil {
				s.items = state.Items
				s.coupon = state.Coupon
			}
		}
	}
	s.recompute()
	return s
}

func (s *Store) Items() []pricing.LineItem {
	out := make([]pricing.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Totals() pricing.Totals {
	return s.totals
}

func (s *Store) Coupon() *pricing.Coupon {
	return s.coupon
}

// AddItem merges into an existing line with the same identity key
// (product, variant, size) or appends a new one. Quantity floor is 1.
func (s *Store) AddItem(item pricing.LineItem) error {
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	merged := false
	for i := range s.items {
		if s.items[i].Key() == item.Key() {
			s.items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, item)
	}
	return s.commit()
}

// UpdateQuantity clamps to a minimum of 1; decrementing a quantity-1 line
// leaves it at 1. Removal is explicit via RemoveItem.
func (s *Store) UpdateQuantity(key string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	for i := range s.items {
		if s.items[i].Key() == key {
			s.items[i].Quantity = uint(quantity)
			return s.commit()
		}
	}
	return ErrItemNotFound
}

func (s *Store) RemoveItem(key string) error {
	for i := range s.items {
		if s.items[i].Key() == key {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return s.commit()
		}
	}
	return ErrItemNotFound
}

// Clear empties the cart and drops the coupon, used after a completed order.
func (s *Store) Clear() error {
	s.items = nil
	s.coupon = nil
	return s.commit()
}

// ApplyCoupon round-trips the verifier before committing. A second call while
// one is in flight is refused so the UI can keep the apply action disabled.
func (s *Store) ApplyCoupon(ctx context.Context, code string) error {
	if s.verifying {
		return ErrVerifyInFlight
	}
	s.verifying = true
	defer func() { s.verifying = false }()

	verified, err := s.verifier.Verify(ctx, code)
	if err != nil {
		return err
	}
	s.coupon = verified
	return s.commit()
}

func (s *Store) RemoveCoupon() error {
	s.coupon = nil
	return s.commit()
}

func (s *Store) recompute() {
	s.totals = pricing.Calculate(s.items, s.coupon, s.policy)
}

func (s *Store) commit() error {
	s.recompute()
	if s.storage == nil {
		return nil
	}
	data, err := json.Marshal(persistedState{Items: s.items, Coupon: s.coupon})
	if err != nil {
		return err
	}
	return s.storage.Save(data)
}
