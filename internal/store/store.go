// Package store defines the persistence port for the POS engine. Two
// implementations exist: gormdb (Postgres via GORM) for production and
// memory for tests and single-node dev mode.
//
// The contract matters more than the backend: stock decrements, the sale
// number sequence, status transitions and loyalty increments must each be
// a single atomic operation. No caller may read-modify-write stock or
// loyalty balances in separate steps.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GodwinAdu/retail-pos-sub000/internal/models"
)

var (
	// ErrNotFound is returned when the referenced record does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrInsufficientStock is returned by DecrementStock when the
	// conditional update would drive stock negative. The decrement does
	// not happen in that case.
	ErrInsufficientStock = errors.New("store: insufficient stock")

	// ErrConflict is returned by TransitionSale when the sale exists but
	// its current status is not one of the allowed source states, and by
	// unique-constraint violations on create.
	ErrConflict = errors.New("store: conflict")
)

// Stats is a read-only aggregate over completed sales in a period.
type Stats struct {
	Revenue          decimal.Decimal `json:"revenue"`
	TransactionCount int64           `json:"transaction_count"`
}

// Repository is the persistence port.
type Repository interface {
	// Branches.
	CreateBranch(ctx context.Context, b *models.Branch) error
	GetBranch(ctx context.Context, id string) (models.Branch, error)
	ListBranches(ctx context.Context, storeID string) ([]models.Branch, error)

	// Products and the stock ledger.
	CreateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id string) (models.Product, error)
	ListProducts(ctx context.Context, branchID string) ([]models.Product, error)
	UpdateProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id string) error

	// DecrementStock subtracts qty from the product's on-hand count only
	// if the result stays non-negative; otherwise ErrInsufficientStock.
	DecrementStock(ctx context.Context, productID string, qty int) error
	// RestoreStock adds qty back. Used for manual corrections and for
	// compensating a failed checkout, never automatically on refund.
	RestoreStock(ctx context.Context, productID string, qty int) error

	// NextSaleNumber atomically increments and returns the per-branch
	// sale sequence. Concurrent callers on the same branch never observe
	// the same value.
	NextSaleNumber(ctx context.Context, branchID string) (int64, error)

	// Sales.
	CreateSale(ctx context.Context, s *models.Sale) error
	GetSale(ctx context.Context, id string) (models.Sale, error)
	FindSaleByIdemKey(ctx context.Context, key string) (models.Sale, error)
	ListSales(ctx context.Context, branchID string, from, to time.Time) ([]models.Sale, error)

	// TransitionSale moves a sale's status compare-and-swap style: the
	// update applies only while the current status is one of from. A
	// mismatch yields ErrConflict, a missing sale ErrNotFound.
	TransitionSale(ctx context.Context, saleID string, from []models.SaleStatus, to models.SaleStatus, pay models.PaymentStatus) error

	SaleStats(ctx context.Context, branchID string, from, to time.Time) (Stats, error)

	// Customers and loyalty.
	CreateCustomer(ctx context.Context, c *models.Customer) error
	GetCustomer(ctx context.Context, id string) (models.Customer, error)
	ListCustomers(ctx context.Context, storeID string) ([]models.Customer, error)
	UpdateCustomer(ctx context.Context, c models.Customer) error
	DeleteCustomer(ctx context.Context, id string) error

	// AddLoyalty applies a single atomic increment of points and purchase
	// total. Negative deltas (refund reversal) clamp the stored balances
	// at zero rather than going negative. visitedAt, when non-nil,
	// updates the customer's last-visit timestamp.
	AddLoyalty(ctx context.Context, customerID string, points int64, purchases decimal.Decimal, visitedAt *time.Time) error

	// Users.
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, u models.User) error
	DeleteUser(ctx context.Context, id string) error
}
