// Package gormdb implements store.Repository on PostgreSQL via GORM.
//
// The correctness-critical operations are single statements the database
// executes atomically: stock decrements are conditional UPDATEs that fail
// instead of going negative, the sale number sequence is an upsert with
// RETURNING, status transitions are compare-and-swap UPDATEs, and loyalty
// increments clamp in SQL. None of them read-then-write in Go.
package gormdb

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/GodwinAdu/retail-pos-sub000/internal/models"
	"github.com/GodwinAdu/retail-pos-sub000/internal/store"
)

type Store struct {
	db *gorm.DB
}

// New wraps an open GORM connection. The connection must be opened with
// TranslateError enabled so duplicate-key violations surface as
// gorm.ErrDuplicatedKey.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ store.Repository = (*Store)(nil)

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return store.ErrConflict
	default:
		return err
	}
}

// ---- branches ----

func (s *Store) CreateBranch(ctx context.Context, b *models.Branch) error {
	return translate(s.db.WithContext(ctx).Create(b).Error)
}

func (s *Store) GetBranch(ctx context.Context, id string) (models.Branch, error) {
	var b models.Branch
	err := s.db.WithContext(ctx).First(&b, "id = ?", id).Error
	return b, translate(err)
}

func (s *Store) ListBranches(ctx context.Context, storeID string) ([]models.Branch, error) {
	var out []models.Branch
	q := s.db.WithContext(ctx).Order("name")
	if storeID != "" {
		q = q.Where("store_id = ?", storeID)
	}
	return out, translate(q.Find(&out).Error)
}

// ---- products & stock ----

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	return translate(s.db.WithContext(ctx).Create(p).Error)
}

func (s *Store) GetProduct(ctx context.Context, id string) (models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return p, translate(err)
}

func (s *Store) ListProducts(ctx context.Context, branchID string) ([]models.Product, error) {
	var out []models.Product
	q := s.db.WithContext(ctx).Order("name")
	if branchID != "" {
		q = q.Where("branch_id = ?", branchID)
	}
	return out, translate(q.Find(&out).Error)
}

func (s *Store) UpdateProduct(ctx context.Context, p models.Product) error {
	res := s.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", p.ID).
		Select("name", "unit_price", "min_stock", "max_stock", "is_perishable", "batch_number", "expiry_date").
		Updates(p)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DecrementStock(ctx context.Context, productID string, qty int) error {
	res := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock_on_hand >= ?", productID, qty).
		UpdateColumn("stock_on_hand", gorm.Expr("stock_on_hand - ?", qty))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		// Distinguish a missing product from a real shortfall.
		if _, err := s.GetProduct(ctx, productID); err != nil {
			return err
		}
		return store.ErrInsufficientStock
	}
	return nil
}

func (s *Store) RestoreStock(ctx context.Context, productID string, qty int) error {
	res := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock_on_hand", gorm.Expr("stock_on_hand + ?", qty))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ---- sale numbering ----

func (s *Store) NextSaleNumber(ctx context.Context, branchID string) (int64, error) {
	var seq int64
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO sale_counters (branch_id, last_seq) VALUES (?, 1)
		ON CONFLICT (branch_id) DO UPDATE SET last_seq = sale_counters.last_seq + 1
		RETURNING last_seq
	`, branchID).Scan(&seq).Error
	if err != nil {
		return 0, translate(err)
	}
	return seq, nil
}

// ---- sales ----

func (s *Store) CreateSale(ctx context.Context, sale *models.Sale) error {
	return translate(s.db.WithContext(ctx).Create(sale).Error)
}

func (s *Store) GetSale(ctx context.Context, id string) (models.Sale, error) {
	var sale models.Sale
	err := s.db.WithContext(ctx).Preload("Items").First(&sale, "id = ?", id).Error
	return sale, translate(err)
}

func (s *Store) FindSaleByIdemKey(ctx context.Context, key string) (models.Sale, error) {
	var sale models.Sale
	err := s.db.WithContext(ctx).Preload("Items").First(&sale, "idempotency_key = ?", key).Error
	return sale, translate(err)
}

func (s *Store) ListSales(ctx context.Context, branchID string, from, to time.Time) ([]models.Sale, error) {
	var out []models.Sale
	q := s.db.WithContext(ctx).Preload("Items").Where("branch_id = ?", branchID).Order("created_at")
	if !from.IsZero() {
		q = q.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("created_at <= ?", to)
	}
	return out, translate(q.Find(&out).Error)
}

func (s *Store) TransitionSale(ctx context.Context, saleID string, from []models.SaleStatus, to models.SaleStatus, pay models.PaymentStatus) error {
	updates := map[string]any{"status": to}
	if pay != "" {
		updates["payment_status"] = pay
	}
	res := s.db.WithContext(ctx).Model(&models.Sale{}).
		Where("id = ? AND status IN ?", saleID, from).
		Updates(updates)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Sale{}).Where("id = ?", saleID).Count(&count).Error; err != nil {
			return translate(err)
		}
		if count == 0 {
			return store.ErrNotFound
		}
		return store.ErrConflict
	}
	return nil
}

func (s *Store) SaleStats(ctx context.Context, branchID string, from, to time.Time) (store.Stats, error) {
	var row struct {
		Revenue          decimal.Decimal
		TransactionCount int64
	}
	q := s.db.WithContext(ctx).Model(&models.Sale{}).
		Select("COALESCE(SUM(total), 0) AS revenue, COUNT(*) AS transaction_count").
		Where("branch_id = ? AND status = ?", branchID, models.SaleCompleted)
	if !from.IsZero() {
		q = q.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("created_at <= ?", to)
	}
	if err := q.Scan(&row).Error; err != nil {
		return store.Stats{}, translate(err)
	}
	return store.Stats{Revenue: row.Revenue, TransactionCount: row.TransactionCount}, nil
}

// ---- customers & loyalty ----

func (s *Store) CreateCustomer(ctx context.Context, c *models.Customer) error {
	return translate(s.db.WithContext(ctx).Create(c).Error)
}

func (s *Store) GetCustomer(ctx context.Context, id string) (models.Customer, error) {
	var c models.Customer
	err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return c, translate(err)
}

func (s *Store) ListCustomers(ctx context.Context, storeID string) ([]models.Customer, error) {
	var out []models.Customer
	q := s.db.WithContext(ctx).Order("name")
	if storeID != "" {
		q = q.Where("store_id = ?", storeID)
	}
	return out, translate(q.Find(&out).Error)
}

func (s *Store) UpdateCustomer(ctx context.Context, c models.Customer) error {
	res := s.db.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", c.ID).
		Select("name", "phone").
		Updates(c)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Customer{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) AddLoyalty(ctx context.Context, customerID string, points int64, purchases decimal.Decimal, visitedAt *time.Time) error {
	res := s.db.WithContext(ctx).Exec(`
		UPDATE customers
		SET loyalty_points = GREATEST(loyalty_points + ?, 0),
		    total_purchases = GREATEST(total_purchases + ?, 0),
		    last_visit = COALESCE(?, last_visit),
		    updated_at = now()
		WHERE id = ?
	`, points, purchases, visitedAt, customerID)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ---- users ----

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error
	return u, translate(err)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, "username = ?", username).Error
	return u, translate(err)
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	return out, translate(s.db.WithContext(ctx).Order("username").Find(&out).Error)
}

func (s *Store) UpdateUser(ctx context.Context, u models.User) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", u.ID).
		Select("username", "password_hash", "role", "branch_access").
		Updates(u)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
