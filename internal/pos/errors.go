package pos

import (
	"errors"
	"fmt"

	"github.com/GodwinAdu/retail-pos-sub000/internal/store"
)

// The engine reports every failure as a typed, wrappable error. Handlers
// dispatch on these with errors.Is; nothing is collapsed into a generic
// "failed" result.
var (
	// ErrValidation covers malformed identifiers, bad quantities, unknown
	// enum values and out-of-range refund amounts. Rejected before any
	// mutation.
	ErrValidation = errors.New("pos: validation failed")

	// ErrInsufficientPayment means cash tendered was less than the total.
	ErrInsufficientPayment = errors.New("pos: insufficient payment")

	// ErrPolicyViolation covers branch-configuration rules: missing
	// required customer, disallowed payment method, discount above the
	// configured cap.
	ErrPolicyViolation = errors.New("pos: policy violation")

	// ErrIllegalTransition means the sale's current status forbids the
	// requested refund/cancel/status change.
	ErrIllegalTransition = errors.New("pos: illegal status transition")

	ErrBranchNotFound   = errors.New("pos: branch not found")
	ErrProductNotFound  = errors.New("pos: product not found")
	ErrCustomerNotFound = errors.New("pos: customer not found")
	ErrSaleNotFound     = errors.New("pos: sale not found")
)

// StockError reports which product fell short and by how much. It unwraps
// to store.ErrInsufficientStock.
type StockError struct {
	ProductID string
	Requested int
	OnHand    int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, on hand %d", e.ProductID, e.Requested, e.OnHand)
}

func (e *StockError) Unwrap() error { return store.ErrInsufficientStock }
