package pos

import (
	"github.com/shopspring/decimal"

	"github.com/GodwinAdu/retail-pos-sub000/internal/models"
)

// Config is the per-branch POS configuration, passed by value into each
// engine operation. It is never read from global state, so tests can
// inject arbitrary configurations deterministically.
type Config struct {
	// RequireCustomer rejects checkouts without a customer reference.
	RequireCustomer bool

	// AllowedPaymentMethods restricts checkout payment methods. Empty
	// means every known method is accepted.
	AllowedPaymentMethods []models.PaymentMethod

	// MaxDiscountPercent caps the discount at this percentage of the
	// subtotal. Zero means no cap.
	MaxDiscountPercent decimal.Decimal

	// LowStockThreshold feeds the low-stock classification alongside
	// each product's own MinStock.
	LowStockThreshold int

	// LoyaltyEnabled turns customer point accrual on or off.
	LoyaltyEnabled bool

	// RestoreStockOnRefund, when set, puts a fully refunded sale's items
	// back on hand. Off by default: by the established business policy
	// returned goods re-enter inventory through a manual correction.
	RestoreStockOnRefund bool
}

// DefaultConfig returns the configuration used when a branch has no
// explicit settings.
func DefaultConfig() Config {
	return Config{
		LowStockThreshold: 5,
		LoyaltyEnabled:    true,
	}
}

// ConfigProvider resolves the POS configuration for a branch. It is a
// read-only collaborator; the engine itself never caches configuration.
type ConfigProvider interface {
	ConfigFor(branchID string) Config
}

// StaticConfig serves the same configuration for every branch.
type StaticConfig struct {
	Config Config
}

func (s StaticConfig) ConfigFor(string) Config { return s.Config }

func (c Config) allowsPayment(m models.PaymentMethod) bool {
	if len(c.AllowedPaymentMethods) == 0 {
		return true
	}
	for _, allowed := range c.AllowedPaymentMethods {
		if allowed == m {
			return true
		}
	}
	return false
}
