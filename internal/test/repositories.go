package test

import (
	"context"
	"sort"
	"sync"

	domainErrors "github.com/Zaqui712/B-FO/internal/domain/errors"
	"github.com/Zaqui712/B-FO/internal/domain/model"
	"github.com/Zaqui712/B-FO/internal/domain/repository"
)

// MemoryOrderStore is a transactional in-memory order repository. Writes made
// inside WithinTx become visible only when the callback returns nil.
type MemoryOrderStore struct {
	mu     sync.Mutex
	orders map[int64]model.Order
	lines  map[int64][]model.OrderLine
	nextID int64

	// BeginErr fails every transaction before the callback runs.
	BeginErr error
	// FindErr fails duplicate lookups.
	FindErr error
	// InsertLineErr is consulted before each line insert.
	InsertLineErr func(model.OrderLine) error
	// ListErr fails every read query.
	ListErr error

	Commits   int
	Rollbacks int
	Finds     int
}

// NewMemoryOrderStore constructs an empty store.
func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{
		orders: make(map[int64]model.Order),
		lines:  make(map[int64][]model.OrderLine),
		nextID: 1,
	}
}

// Seed stores orders directly, bypassing uniqueness checks.
func (s *MemoryOrderStore) Seed(orders ...model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range orders {
		if o.ID == 0 {
			o.ID = s.nextID
		}
		if o.ID >= s.nextID {
			s.nextID = o.ID + 1
		}
		lines := o.Lines
		o.Lines = nil
		s.orders[o.ID] = o
		for _, l := range lines {
			l.OrderID = o.ID
			s.lines[o.ID] = append(s.lines[o.ID], l)
		}
	}
}

// Count returns the number of committed orders.
func (s *MemoryOrderStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// LineCount returns the number of committed lines.
func (s *MemoryOrderStore) LineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for _, l := range s.lines {
		n += len(l)
	}
	return n
}

// Snapshot returns a committed order with its lines.
func (s *MemoryOrderStore) Snapshot(id int64) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return model.Order{}, false
	}
	o.Lines = append([]model.OrderLine(nil), s.lines[id]...)
	return o, true
}

// WithinTx runs fn against a private copy of the store and publishes it on success.
func (s *MemoryOrderStore) WithinTx(ctx context.Context, fn func(repository.OrderWriter) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.BeginErr != nil {
		return s.BeginErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	w := &memoryWriter{store: s, orders: make(map[int64]model.Order, len(s.orders)), lines: make(map[int64][]model.OrderLine, len(s.lines)), nextID: s.nextID}
	for id, o := range s.orders {
		w.orders[id] = o
	}
	for id, l := range s.lines {
		w.lines[id] = append([]model.OrderLine(nil), l...)
	}

	if err := fn(w); err != nil {
		s.Rollbacks++
		return err
	}
	s.orders, s.lines, s.nextID = w.orders, w.lines, w.nextID
	s.Commits++
	return nil
}

// GetByID returns a committed order with its lines.
func (s *MemoryOrderStore) GetByID(_ context.Context, id int64) (*model.Order, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	o, ok := s.Snapshot(id)
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &o, nil
}

// List returns committed orders, most recent first.
func (s *MemoryOrderStore) List(_ context.Context) ([]model.Order, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	orders := s.sorted(func(model.Order) bool { return true })
	for i, j := 0, len(orders)-1; i < j; i, j = i+1, j-1 {
		orders[i], orders[j] = orders[j], orders[i]
	}
	return orders, nil
}

// ListIncomplete returns committed orders not yet marked complete that sort
// after the cursor, oldest first.
func (s *MemoryOrderStore) ListIncomplete(_ context.Context, after repository.IncompleteCursor, limit int) ([]model.Order, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	orders := s.sorted(func(o model.Order) bool {
		return (o.Complete == nil || !*o.Complete) && !after.Before(o)
	})
	sort.Slice(orders, func(i, j int) bool {
		return !repository.CursorAfter(orders[i]).Before(orders[j])
	})
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (s *MemoryOrderStore) sorted(keep func(model.Order) bool) []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]model.Order, 0, len(s.orders))
	for id, o := range s.orders {
		if !keep(o) {
			continue
		}
		o.Lines = append([]model.OrderLine(nil), s.lines[id]...)
		result = append(result, o)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

type memoryWriter struct {
	store  *MemoryOrderStore
	orders map[int64]model.Order
	lines  map[int64][]model.OrderLine
	nextID int64
}

func (w *memoryWriter) FindMatch(_ context.Context, c repository.MatchCriteria) (*model.Order, int, error) {
	w.store.Finds++
	if w.store.FindErr != nil {
		return nil, 0, w.store.FindErr
	}
	if c.Empty() {
		return nil, 0, nil
	}
	var (
		best  *model.Order
		count int
	)
	for _, o := range w.orders {
		if c.ID != nil && o.ID != *c.ID {
			continue
		}
		if c.ExternalKey != nil && o.ExternalKey != *c.ExternalKey {
			continue
		}
		if c.StatusID != nil && o.StatusID != *c.StatusID {
			continue
		}
		if c.SupplierID != nil && o.SupplierID != *c.SupplierID {
			continue
		}
		count++
		if best == nil || o.ID < best.ID {
			found := o
			best = &found
		}
	}
	return best, count, nil
}

func (w *memoryWriter) InsertOrder(_ context.Context, order model.Order, explicitID bool) (int64, error) {
	if order.ExternalKey != "" {
		for _, o := range w.orders {
			if o.ExternalKey == order.ExternalKey {
				return 0, &domainErrors.ConflictError{OrderID: o.ID}
			}
		}
	}
	id := w.nextID
	if explicitID {
		id = order.ID
		if _, exists := w.orders[id]; exists {
			return 0, &domainErrors.ConflictError{OrderID: id}
		}
	}
	if id >= w.nextID {
		w.nextID = id + 1
	}
	order.ID = id
	order.Lines = nil
	w.orders[id] = order
	return id, nil
}

func (w *memoryWriter) InsertLine(_ context.Context, line model.OrderLine) error {
	if w.store.InsertLineErr != nil {
		if err := w.store.InsertLineErr(line); err != nil {
			return err
		}
	}
	if _, ok := w.orders[line.OrderID]; !ok {
		return &domainErrors.ValidationError{Field: "order_id", Err: domainErrors.ErrInvalidRef}
	}
	for _, l := range w.lines[line.OrderID] {
		if l.ItemID == line.ItemID {
			return domainErrors.ErrInvalidPayload
		}
	}
	w.lines[line.OrderID] = append(w.lines[line.OrderID], line)
	return nil
}

func (w *memoryWriter) DeleteLines(_ context.Context, orderID int64) error {
	delete(w.lines, orderID)
	return nil
}

func (w *memoryWriter) UpdateOrder(_ context.Context, orderID int64, order model.Order) error {
	existing, ok := w.orders[orderID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	existing.StatusID = order.StatusID
	if order.Complete != nil {
		existing.Complete = order.Complete
	}
	if order.DeliveredAt != nil {
		existing.DeliveredAt = order.DeliveredAt
	}
	w.orders[orderID] = existing
	return nil
}

func (w *memoryWriter) UpdateDelivery(_ context.Context, update model.DeliveryUpdate) (*model.Order, error) {
	existing, ok := w.orders[update.OrderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	complete := update.Complete
	delivered := update.DeliveredAt
	existing.Complete = &complete
	existing.DeliveredAt = &delivered
	w.orders[update.OrderID] = existing
	return &existing, nil
}

func (w *memoryWriter) UpdateApproval(_ context.Context, orderID int64, approved bool) error {
	existing, ok := w.orders[orderID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	existing.AdminApproved = &approved
	w.orders[orderID] = existing
	return nil
}
