package store

import (
	"sync"

	"github.com/google/btree"

	"github.com/ksenkov/cryptoledger/internal/domain"
)

// SortField selects the ordering key for order listings.
type SortField string

const (
	SortByTime  SortField = "time"
	SortByPrice SortField = "price"
)

// SortDir selects ascending or descending order.
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// OrderQuery describes an order listing: optional asset filter,
// whether filled orders are included, and the sort key/direction.
// The zero value means: all assets, open orders only, sorted by
// creation time descending (newest first).
type OrderQuery struct {
	AssetID       string
	IncludeFilled bool
	SortBy        SortField
	Dir           SortDir
}

// timeLess orders entries by created_at ascending, then order_id
// ascending for a stable total order.
func timeLess(a, b *domain.Order) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.OrderID < b.OrderID
}

// priceLess orders entries by price ascending, then created_at
// ascending, then order_id ascending.
func priceLess(a, b *domain.Order) bool {
	if cmp := a.Price.Cmp(b.Price); cmp != 0 {
		return cmp < 0
	}
	return timeLess(a, b)
}

// OrderStore is a thread-safe in-memory store for orders, with a
// primary index by order_id and B-tree indexes by creation time and
// by price backing sorted listings. Orders are never removed: filled
// orders stay in the indexes and are filtered out at query time.
type OrderStore struct {
	mu      sync.RWMutex
	orders  map[string]*domain.Order
	byTime  *btree.BTreeG[*domain.Order]
	byPrice *btree.BTreeG[*domain.Order]
}

// NewOrderStore creates an empty OrderStore.
func NewOrderStore() *OrderStore {
	const degree = 32
	return &OrderStore{
		orders:  make(map[string]*domain.Order),
		byTime:  btree.NewG[*domain.Order](degree, timeLess),
		byPrice: btree.NewG[*domain.Order](degree, priceLess),
	}
}

// Create adds an order to the store and both sort indexes.
func (s *OrderStore) Create(o *domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[o.OrderID] = o
	s.byTime.ReplaceOrInsert(o)
	s.byPrice.ReplaceOrInsert(o)
}

// Get retrieves an order by ID. It returns
// domain.ErrOrderNotFound if the order does not exist.
func (s *OrderStore) Get(id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

// List returns orders matching the query in the requested sort order.
func (s *OrderStore) List(q OrderQuery) []*domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tree := s.byTime
	if q.SortBy == SortByPrice {
		tree = s.byPrice
	}

	result := make([]*domain.Order, 0)
	visit := func(o *domain.Order) bool {
		if q.AssetID != "" && o.Asset.ID != q.AssetID {
			return true
		}
		if !q.IncludeFilled && o.Status() != domain.OrderStatusOpen {
			return true
		}
		result = append(result, o)
		return true
	}

	if q.Dir == SortAsc {
		tree.Ascend(visit)
	} else {
		tree.Descend(visit)
	}
	return result
}
