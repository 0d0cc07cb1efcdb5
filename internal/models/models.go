package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ==========================================
// BRANCHES & PRODUCTS
// ==========================================

// Branch is a physical retail location belonging to a store (tenant).
// Stock, sale numbering and POS configuration are isolated per branch.
type Branch struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	StoreID   string    `gorm:"not null;index" json:"store_id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Product struct {
	ID           string          `gorm:"primaryKey" json:"id"`
	BranchID     string          `gorm:"not null;index" json:"branch_id"`
	Name         string          `gorm:"not null" json:"name"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	StockOnHand  int             `gorm:"not null;default:0" json:"stock_on_hand"`
	MinStock     int             `gorm:"not null;default:0" json:"min_stock"`
	MaxStock     int             `gorm:"not null;default:0" json:"max_stock"`
	IsPerishable bool            `gorm:"not null;default:false" json:"is_perishable"`
	BatchNumber  string          `json:"batch_number,omitempty"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// StockState classifies a product's on-hand level against its thresholds.
type StockState string

const (
	StockOut StockState = "out_of_stock"
	StockLow StockState = "low_stock"
	StockOK  StockState = "in_stock"
)

// StockStateOf returns the classification for a product given the branch
// low-stock threshold. The effective threshold is the larger of the
// product's own MinStock and the configured value.
func StockStateOf(p Product, threshold int) StockState {
	limit := p.MinStock
	if threshold > limit {
		limit = threshold
	}
	switch {
	case p.StockOnHand == 0:
		return StockOut
	case p.StockOnHand <= limit:
		return StockLow
	default:
		return StockOK
	}
}

// ==========================================
// CUSTOMERS & LOYALTY
// ==========================================

// Customer balances are mutated only through the loyalty accrual path,
// never written directly by checkout/refund callers.
type Customer struct {
	ID             string          `gorm:"primaryKey" json:"id"`
	StoreID        string          `gorm:"not null;index" json:"store_id"`
	Name           string          `gorm:"not null" json:"name"`
	Phone          string          `json:"phone,omitempty"`
	LoyaltyPoints  int64           `gorm:"not null;default:0" json:"loyalty_points"`
	TotalPurchases decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total_purchases"`
	LastVisit      *time.Time      `json:"last_visit,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ==========================================
// SALES
// ==========================================

type TaxMode string

const (
	TaxPercentage TaxMode = "percentage"
	TaxFixed      TaxMode = "fixed"
)

type DiscountMode string

const (
	DiscountPercentage DiscountMode = "percentage"
	DiscountFixed      DiscountMode = "fixed"
)

type SaleStatus string

const (
	SalePending   SaleStatus = "pending"
	SaleCompleted SaleStatus = "completed"
	SaleCancelled SaleStatus = "cancelled"
	SaleRefunded  SaleStatus = "refunded"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPartial  PaymentStatus = "partial"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PayCash   PaymentMethod = "cash"
	PayCard   PaymentMethod = "card"
	PayMobile PaymentMethod = "mobile"
)

// Sale is the immutable financial record of a transaction. Once status
// reaches completed/cancelled/refunded its items and totals never change;
// only status and payment_status may move along legal edges.
type Sale struct {
	ID             string          `gorm:"primaryKey" json:"id"`
	BranchID       string          `gorm:"not null;index;uniqueIndex:idx_branch_sale_number,priority:1" json:"branch_id"`
	StoreID        string          `gorm:"not null;index" json:"store_id"`
	SaleNumber     string          `gorm:"not null;uniqueIndex:idx_branch_sale_number,priority:2" json:"sale_number"`
	CustomerID     *string         `gorm:"index" json:"customer_id,omitempty"`
	CashierID      string          `gorm:"not null" json:"cashier_id"`
	Items          []SaleItem      `gorm:"foreignKey:SaleID" json:"items"`
	Subtotal       decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"subtotal"`
	TaxAmount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"tax"`
	TaxMode        TaxMode         `gorm:"type:varchar(20);not null" json:"tax_type"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"discount"`
	DiscountMode   DiscountMode    `gorm:"type:varchar(20);not null" json:"discount_type"`
	Total          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total"`
	Status         SaleStatus      `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus  PaymentStatus   `gorm:"type:varchar(20);not null" json:"payment_status"`
	PaymentMethod  PaymentMethod   `gorm:"type:varchar(20);not null" json:"payment_method"`
	IdempotencyKey *string         `gorm:"uniqueIndex" json:"-"`
	CreatedAt      time.Time       `gorm:"index" json:"created_at"`
}

// SaleItem is a snapshot copy of a cart line at checkout time. Price and
// name are copied, not referenced, so historical sales are immune to later
// catalog changes.
type SaleItem struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	SaleID    string          `gorm:"not null;index" json:"-"`
	ProductID string          `gorm:"not null" json:"product_id"`
	Name      string          `gorm:"not null" json:"name"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Quantity  int             `gorm:"not null" json:"quantity"`
}

// SaleCounter holds the per-branch sale number sequence. It is only ever
// touched by an atomic increment-and-read, never by count-then-format.
type SaleCounter struct {
	BranchID string `gorm:"primaryKey"`
	LastSeq  int64  `gorm:"not null;default:0"`
}

// ==========================================
// AUTH & USERS
// ==========================================

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleCashier Role = "cashier"
)

type User struct {
	ID       string `gorm:"primaryKey" json:"id"`
	Username string `gorm:"not null;unique" json:"username"`

	// The column stores a bcrypt hash; json:"-" keeps it out of responses.
	Password string `gorm:"column:password_hash;not null" json:"-"`

	Role Role `gorm:"type:varchar(20);not null" json:"role"`

	// Branches this user may operate. Stored as a JSON array column.
	BranchAccess []string `gorm:"serializer:json" json:"branch_access"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasBranch reports whether the user may operate the given branch.
func (u User) HasBranch(branchID string) bool {
	for _, b := range u.BranchAccess {
		if b == branchID {
			return true
		}
	}
	return false
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Role  Role   `json:"role"`
}
