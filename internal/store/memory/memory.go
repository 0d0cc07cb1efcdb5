// Package memory is an in-memory store.Repository used by tests and by
// dev mode when no DATABASE_URL is configured. A single mutex guards all
// state, so every operation is trivially atomic.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GodwinAdu/retail-pos-sub000/internal/models"
	"github.com/GodwinAdu/retail-pos-sub000/internal/store"
)

type Store struct {
	mu          sync.Mutex
	branches    map[string]models.Branch
	products    map[string]models.Product
	customers   map[string]models.Customer
	sales       map[string]models.Sale
	salesByIdem map[string]string
	counters    map[string]int64
	users       map[string]models.User
	usersByName map[string]string
}

func New() *Store {
	return &Store{
		branches:    map[string]models.Branch{},
		products:    map[string]models.Product{},
		customers:   map[string]models.Customer{},
		sales:       map[string]models.Sale{},
		salesByIdem: map[string]string{},
		counters:    map[string]int64{},
		users:       map[string]models.User{},
		usersByName: map[string]string{},
	}
}

var _ store.Repository = (*Store)(nil)

// ---- branches ----

func (s *Store) CreateBranch(ctx context.Context, b *models.Branch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.branches[b.ID]; ok {
		return store.ErrConflict
	}
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	s.branches[b.ID] = *b
	return nil
}

func (s *Store) GetBranch(ctx context.Context, id string) (models.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.branches[id]
	if !ok {
		return models.Branch{}, store.ErrNotFound
	}
	return b, nil
}

func (s *Store) ListBranches(ctx context.Context, storeID string) ([]models.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Branch, 0, len(s.branches))
	for _, b := range s.branches {
		if storeID == "" || b.StoreID == storeID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ---- products & stock ----

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; ok {
		return store.ErrConflict
	}
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	s.products[p.ID] = *p
	return nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return models.Product{}, store.ErrNotFound
	}
	return p, nil
}

func (s *Store) ListProducts(ctx context.Context, branchID string) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if branchID == "" || p.BranchID == branchID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.products[p.ID]
	if !ok {
		return store.ErrNotFound
	}
	p.CreatedAt = old.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	s.products[p.ID] = p
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *Store) DecrementStock(ctx context.Context, productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return store.ErrNotFound
	}
	if p.StockOnHand < qty {
		return store.ErrInsufficientStock
	}
	p.StockOnHand -= qty
	p.UpdatedAt = time.Now().UTC()
	s.products[productID] = p
	return nil
}

func (s *Store) RestoreStock(ctx context.Context, productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return store.ErrNotFound
	}
	p.StockOnHand += qty
	p.UpdatedAt = time.Now().UTC()
	s.products[productID] = p
	return nil
}

// ---- sale numbering ----

func (s *Store) NextSaleNumber(ctx context.Context, branchID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[branchID]++
	return s.counters[branchID], nil
}

// ---- sales ----

func (s *Store) CreateSale(ctx context.Context, sale *models.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sales[sale.ID]; ok {
		return store.ErrConflict
	}
	if sale.IdempotencyKey != nil {
		if _, ok := s.salesByIdem[*sale.IdempotencyKey]; ok {
			return store.ErrConflict
		}
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}
	s.sales[sale.ID] = cloneSale(*sale)
	if sale.IdempotencyKey != nil {
		s.salesByIdem[*sale.IdempotencyKey] = sale.ID
	}
	return nil
}

func (s *Store) GetSale(ctx context.Context, id string) (models.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale, ok := s.sales[id]
	if !ok {
		return models.Sale{}, store.ErrNotFound
	}
	return cloneSale(sale), nil
}

func (s *Store) FindSaleByIdemKey(ctx context.Context, key string) (models.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.salesByIdem[key]
	if !ok {
		return models.Sale{}, store.ErrNotFound
	}
	return cloneSale(s.sales[id]), nil
}

func (s *Store) ListSales(ctx context.Context, branchID string, from, to time.Time) ([]models.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Sale{}
	for _, sale := range s.sales {
		if sale.BranchID != branchID {
			continue
		}
		if !from.IsZero() && sale.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && sale.CreatedAt.After(to) {
			continue
		}
		out = append(out, cloneSale(sale))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) TransitionSale(ctx context.Context, saleID string, from []models.SaleStatus, to models.SaleStatus, pay models.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale, ok := s.sales[saleID]
	if !ok {
		return store.ErrNotFound
	}
	allowed := false
	for _, st := range from {
		if sale.Status == st {
			allowed = true
			break
		}
	}
	if !allowed {
		return store.ErrConflict
	}
	sale.Status = to
	if pay != "" {
		sale.PaymentStatus = pay
	}
	s.sales[saleID] = sale
	return nil
}

func (s *Store) SaleStats(ctx context.Context, branchID string, from, to time.Time) (store.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := store.Stats{Revenue: decimal.Zero}
	for _, sale := range s.sales {
		if sale.BranchID != branchID || sale.Status != models.SaleCompleted {
			continue
		}
		if !from.IsZero() && sale.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && sale.CreatedAt.After(to) {
			continue
		}
		stats.Revenue = stats.Revenue.Add(sale.Total)
		stats.TransactionCount++
	}
	return stats, nil
}

// ---- customers & loyalty ----

func (s *Store) CreateCustomer(ctx context.Context, c *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[c.ID]; ok {
		return store.ErrConflict
	}
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	if c.TotalPurchases.IsZero() {
		c.TotalPurchases = decimal.Zero
	}
	s.customers[c.ID] = *c
	return nil
}

func (s *Store) GetCustomer(ctx context.Context, id string) (models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return models.Customer{}, store.ErrNotFound
	}
	return c, nil
}

func (s *Store) ListCustomers(ctx context.Context, storeID string) ([]models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		if storeID == "" || c.StoreID == storeID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, c models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.customers[c.ID]
	if !ok {
		return store.ErrNotFound
	}
	c.CreatedAt = old.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	s.customers[c.ID] = c
	return nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.customers, id)
	return nil
}

func (s *Store) AddLoyalty(ctx context.Context, customerID string, points int64, purchases decimal.Decimal, visitedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[customerID]
	if !ok {
		return store.ErrNotFound
	}
	c.LoyaltyPoints += points
	if c.LoyaltyPoints < 0 {
		c.LoyaltyPoints = 0
	}
	c.TotalPurchases = c.TotalPurchases.Add(purchases)
	if c.TotalPurchases.IsNegative() {
		c.TotalPurchases = decimal.Zero
	}
	if visitedAt != nil {
		t := *visitedAt
		c.LastVisit = &t
	}
	c.UpdatedAt = time.Now().UTC()
	s.customers[customerID] = c
	return nil
}

// ---- users ----

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.usersByName[u.Username]; ok {
		return store.ErrConflict
	}
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = *u
	s.usersByName[u.Username] = u.ID
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.usersByName[username]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return s.users[id], nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *Store) UpdateUser(ctx context.Context, u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.users[u.ID]
	if !ok {
		return store.ErrNotFound
	}
	if old.Username != u.Username {
		if _, taken := s.usersByName[u.Username]; taken {
			return store.ErrConflict
		}
		delete(s.usersByName, old.Username)
		s.usersByName[u.Username] = u.ID
	}
	u.CreatedAt = old.CreatedAt
	u.UpdatedAt = time.Now().UTC()
	s.users[u.ID] = u
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	delete(s.usersByName, u.Username)
	delete(s.users, id)
	return nil
}

// cloneSale deep-copies the items slice so callers cannot mutate the
// stored record through the returned value.
func cloneSale(s models.Sale) models.Sale {
	items := make([]models.SaleItem, len(s.Items))
	copy(items, s.Items)
	s.Items = items
	return s
}
