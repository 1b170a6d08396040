// Package cart implements the client-side shopping cart: an insertion-ordered
// list of line items with derived totals, persisted as a JSON snapshot through
// the storage port and pushed to observers on every change.
package cart

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/example/homeware-storefront/internal/storage"
)

// StorageKey is the fixed key the cart snapshot lives under.
const StorageKey = "hot_cart_v1"

// Item is one line item. ID is the product identifier and is unique within
// the cart; Price is the unit price fixed at first add.
type Item struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Qty   int             `json:"qty"`
}

// MarshalJSON writes Price as a bare JSON number. The persisted snapshot
// format carries numbers, not strings, and other writers of the same key
// expect to read them back.
func (i Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID    string      `json:"id"`
		Name  string      `json:"name"`
		Price json.Number `json:"price"`
		Qty   int         `json:"qty"`
	}{i.ID, i.Name, json.Number(i.Price.String()), i.Qty})
}

// Summary is the read-only composed view handed to checkout consumers and
// change observers.
type Summary struct {
	Items    []Item          `json:"items"`
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
	IsEmpty  bool            `json:"is_empty"`
}

// ChangeFunc receives the cart summary after every mutation. The rendering
// layer subscribes with OnChange to keep badges and drawers current.
type ChangeFunc func(Summary)

// Store owns the cart line items. Mutations persist the full snapshot and
// notify observers; persistence failures are logged and swallowed so the
// in-memory state stays authoritative for the running session.
type Store struct {
	mu        sync.Mutex
	storage   storage.Storage
	items     []Item
	observers []ChangeFunc
}

// NewStore loads the persisted snapshot and returns a ready cart. A missing
// or corrupt snapshot yields an empty cart, never an error.
func NewStore(ctx context.Context, st storage.Storage) *Store {
	s := &Store{storage: st}

	data, ok, err := st.Get(ctx, StorageKey)
	if err != nil {
		log.Printf("[Cart] Failed to load snapshot: %v", err)
		return s
	}
	if !ok {
		return s
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		log.Printf("[Cart] Discarding corrupt snapshot: %v", err)
		return s
	}
	s.items = items
	return s
}

// OnChange registers an observer called after every mutation.
func (s *Store) OnChange(fn ChangeFunc) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// Add puts item in the cart. If an item with the same ID exists its quantity
// is incremented by one and the supplied name and price are ignored;
// otherwise the item is appended with quantity one. Add never fails.
func (s *Store) Add(ctx context.Context, item Item) {
	s.mu.Lock()
	if existing := s.find(item.ID); existing != nil {
		existing.Qty++
	} else {
		s.items = append(s.items, Item{
			ID:    item.ID,
			Name:  item.Name,
			Price: item.Price,
			Qty:   1,
		})
	}
	s.persistLocked(ctx)
	summary := s.summaryLocked()
	s.mu.Unlock()

	s.notify(summary)
}

// Remove deletes the item with the given ID. Removing an absent ID is a
// no-op.
func (s *Store) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	s.removeLocked(id)
	s.persistLocked(ctx)
	summary := s.summaryLocked()
	s.mu.Unlock()

	s.notify(summary)
}

// SetQty sets the quantity of the item with the given ID. A quantity of zero
// or less removes the item. Absent IDs are ignored. No upper bound is
// enforced here; capping is a display concern.
func (s *Store) SetQty(ctx context.Context, id string, qty int) {
	s.mu.Lock()
	item := s.find(id)
	if item == nil {
		s.mu.Unlock()
		return
	}
	if qty <= 0 {
		s.removeLocked(id)
	} else {
		item.Qty = qty
	}
	s.persistLocked(ctx)
	summary := s.summaryLocked()
	s.mu.Unlock()

	s.notify(summary)
}

// Clear empties the cart unconditionally. Any confirmation gate belongs to
// the caller.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.persistLocked(ctx)
	summary := s.summaryLocked()
	s.mu.Unlock()

	s.notify(summary)
}

// Count returns the sum of all quantities.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked()
}

// Subtotal returns the sum of price times quantity over all items. No
// currency rounding is applied; formatting is a presentation concern.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subtotalLocked()
}

// Items returns a copy of the current item list in insertion order. Mutating
// the returned slice does not affect the store.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemsLocked()
}

// Summary returns the composed read-only view for checkout consumers.
func (s *Store) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked()
}

func (s *Store) find(id string) *Item {
	for i := range s.items {
		if s.items[i].ID == id {
			return &s.items[i]
		}
	}
	return nil
}

func (s *Store) removeLocked(id string) {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// persistLocked writes the snapshot. Failures never propagate: the cart
// simply continues with in-memory state for this session.
func (s *Store) persistLocked(ctx context.Context) {
	data, err := json.Marshal(s.itemsLocked())
	if err != nil {
		log.Printf("[Cart] Failed to encode snapshot: %v", err)
		return
	}
	if err := s.storage.Set(ctx, StorageKey, data); err != nil {
		log.Printf("[Cart] Failed to persist snapshot: %v", err)
	}
}

func (s *Store) countLocked() int {
	total := 0
	for _, item := range s.items {
		total += item.Qty
	}
	return total
}

func (s *Store) subtotalLocked() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Qty))))
	}
	return total
}

func (s *Store) itemsLocked() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) summaryLocked() Summary {
	return Summary{
		Items:    s.itemsLocked(),
		Count:    s.countLocked(),
		Subtotal: s.subtotalLocked(),
		IsEmpty:  len(s.items) == 0,
	}
}

func (s *Store) notify(summary Summary) {
	s.mu.Lock()
	observers := make([]ChangeFunc, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(summary)
	}
}
