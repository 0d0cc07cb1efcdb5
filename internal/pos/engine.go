// Package pos is the sale transaction engine. It turns a client-held cart
// into an immutable, uniquely numbered Sale while enforcing stock
// availability, authoritative pricing, loyalty accrual and the post-sale
// status state machine.
package pos

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GodwinAdu/retail-pos-sub000/internal/models"
	"github.com/GodwinAdu/retail-pos-sub000/internal/policy"
	"github.com/GodwinAdu/retail-pos-sub000/internal/pricing"
	"github.com/GodwinAdu/retail-pos-sub000/internal/store"
)

var ten = decimal.NewFromInt(10)

// Engine orchestrates checkout, refund and status changes as single
// logical operations over the store port.
type Engine struct {
	repo  store.Repository
	gate  policy.Gate
	now   func() time.Time
	newID func() string
}

func NewEngine(repo store.Repository, gate policy.Gate) *Engine {
	if gate == nil {
		gate = policy.AllowAll{}
	}
	return &Engine{
		repo:  repo,
		gate:  gate,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.New().String() },
	}
}

// CartLine is one requested line of a checkout. Price and name are looked
// up server-side; the client only names the product and a quantity.
type CartLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CheckoutRequest is the validated input of a checkout attempt. Totals
// are always recomputed from the catalog; any client-supplied amounts are
// ignored.
type CheckoutRequest struct {
	BranchID       string
	Lines          []CartLine
	TaxMode        models.TaxMode
	TaxValue       decimal.Decimal
	DiscountMode   models.DiscountMode
	DiscountValue  decimal.Decimal
	CustomerID     *string
	PaymentMethod  models.PaymentMethod
	AmountReceived *decimal.Decimal
	// IdempotencyKey lets a client retry a timed-out checkout without
	// double-selling. A repeated key returns the original sale.
	IdempotencyKey string
}

// Receipt is the result of a successful checkout.
type Receipt struct {
	SaleID     string          `json:"sale_id"`
	SaleNumber string          `json:"sale_number"`
	Total      decimal.Decimal `json:"total"`
	Change     decimal.Decimal `json:"change"`
	Sale       models.Sale     `json:"sale"`
}

func (e *Engine) preconditions() policy.Precondition {
	return policy.Chain(
		policy.SubscriptionActive(e.gate),
		policy.BranchAuthorized(),
	)
}

// Checkout runs the whole sale sequence: preconditions, branch policy
// checks, authoritative pricing, conditional stock decrements, sale
// numbering, persistence and loyalty accrual. Stock decrements are
// compensated if any later step fails, so the operation is all-or-nothing.
func (e *Engine) Checkout(ctx context.Context, id policy.Identity, cfg Config, req CheckoutRequest) (Receipt, error) {
	branch, err := e.repo.GetBranch(ctx, req.BranchID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Receipt{}, fmt.Errorf("%w: %s", ErrBranchNotFound, req.BranchID)
		}
		return Receipt{}, err
	}
	if err := e.preconditions()(ctx, id, branch.StoreID, branch.ID); err != nil {
		return Receipt{}, err
	}

	if req.IdempotencyKey != "" {
		if prior, err := e.repo.FindSaleByIdemKey(ctx, req.IdempotencyKey); err == nil {
			return e.receiptFor(prior, req.AmountReceived), nil
		} else if !errors.Is(err, store.ErrNotFound) {
			return Receipt{}, err
		}
	}

	if err := validateCheckout(cfg, req); err != nil {
		return Receipt{}, err
	}

	// Resolve cart lines against the catalog and snapshot price/name now.
	lines := make([]pricing.Line, 0, len(req.Lines))
	items := make([]models.SaleItem, 0, len(req.Lines))
	for _, l := range req.Lines {
		p, err := e.repo.GetProduct(ctx, l.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return Receipt{}, fmt.Errorf("%w: %s", ErrProductNotFound, l.ProductID)
			}
			return Receipt{}, err
		}
		if p.BranchID != branch.ID {
			return Receipt{}, fmt.Errorf("%w: product %s belongs to another branch", ErrValidation, p.ID)
		}
		lines = append(lines, pricing.Line{UnitPrice: p.UnitPrice, Quantity: l.Quantity})
		items = append(items, models.SaleItem{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.UnitPrice,
			Quantity:  l.Quantity,
		})
	}

	// A structurally invalid customer must fail the checkout before any
	// stock is touched, never silently skip the loyalty update.
	if req.CustomerID != nil {
		if _, err := e.repo.GetCustomer(ctx, *req.CustomerID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return Receipt{}, fmt.Errorf("%w: %s", ErrCustomerNotFound, *req.CustomerID)
			}
			return Receipt{}, err
		}
	}

	totals, err := pricing.Compute(lines, req.TaxMode, req.TaxValue, req.DiscountMode, req.DiscountValue)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if !cfg.MaxDiscountPercent.IsZero() {
		capAmount := totals.Subtotal.Mul(cfg.MaxDiscountPercent).Div(decimal.NewFromInt(100))
		if totals.DiscountAmount.GreaterThan(capAmount) {
			return Receipt{}, fmt.Errorf("%w: discount %s exceeds cap of %s%%", ErrPolicyViolation, totals.DiscountAmount, cfg.MaxDiscountPercent)
		}
	}

	change := decimal.Zero
	if req.PaymentMethod == models.PayCash {
		if req.AmountReceived == nil || req.AmountReceived.LessThan(totals.Total) {
			return Receipt{}, fmt.Errorf("%w: total is %s", ErrInsufficientPayment, totals.Total)
		}
		change = req.AmountReceived.Sub(totals.Total)
	}

	// Conditional decrements. On any failure every decrement already made
	// in this attempt is restored before returning.
	decremented := make([]CartLine, 0, len(req.Lines))
	rollback := func() {
		for _, d := range decremented {
			if rerr := e.repo.RestoreStock(ctx, d.ProductID, d.Quantity); rerr != nil {
				log.Printf("pos: failed to restore %d units of %s during checkout rollback: %v", d.Quantity, d.ProductID, rerr)
			}
		}
	}
	for _, l := range req.Lines {
		if err := e.repo.DecrementStock(ctx, l.ProductID, l.Quantity); err != nil {
			rollback()
			if errors.Is(err, store.ErrInsufficientStock) {
				onHand := 0
				if p, perr := e.repo.GetProduct(ctx, l.ProductID); perr == nil {
					onHand = p.StockOnHand
				}
				return Receipt{}, &StockError{ProductID: l.ProductID, Requested: l.Quantity, OnHand: onHand}
			}
			return Receipt{}, err
		}
		decremented = append(decremented, l)
	}

	seq, err := e.repo.NextSaleNumber(ctx, branch.ID)
	if err != nil {
		rollback()
		return Receipt{}, fmt.Errorf("pos: sale numbering failed: %w", err)
	}
	saleNumber := FormatSaleNumber(seq)

	// Loyalty is accrued before the sale is persisted so a persistence
	// failure can still compensate it exactly.
	points := int64(0)
	loyaltyApplied := false
	if req.CustomerID != nil && cfg.LoyaltyEnabled {
		visited := e.now()
		points = totals.Total.Div(ten).Floor().IntPart()
		if err := e.repo.AddLoyalty(ctx, *req.CustomerID, points, totals.Total, &visited); err != nil {
			rollback()
			return Receipt{}, fmt.Errorf("pos: loyalty accrual failed: %w", err)
		}
		loyaltyApplied = true
	}

	sale := models.Sale{
		ID:             e.newID(),
		BranchID:       branch.ID,
		StoreID:        branch.StoreID,
		SaleNumber:     saleNumber,
		CustomerID:     req.CustomerID,
		CashierID:      id.UserID,
		Items:          items,
		Subtotal:       totals.Subtotal,
		TaxAmount:      totals.TaxAmount,
		TaxMode:        req.TaxMode,
		DiscountAmount: totals.DiscountAmount,
		DiscountMode:   req.DiscountMode,
		Total:          totals.Total,
		Status:         models.SaleCompleted,
		PaymentStatus:  models.PaymentPaid,
		PaymentMethod:  req.PaymentMethod,
		CreatedAt:      e.now(),
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		sale.IdempotencyKey = &key
	}

	if err := e.repo.CreateSale(ctx, &sale); err != nil {
		if loyaltyApplied {
			if rerr := e.repo.AddLoyalty(ctx, *req.CustomerID, -points, totals.Total.Neg(), nil); rerr != nil {
				log.Printf("pos: failed to reverse loyalty for %s during checkout rollback: %v", *req.CustomerID, rerr)
			}
		}
		rollback()
		return Receipt{}, fmt.Errorf("pos: sale persistence failed: %w", err)
	}

	return Receipt{
		SaleID:     sale.ID,
		SaleNumber: sale.SaleNumber,
		Total:      sale.Total,
		Change:     change,
		Sale:       sale,
	}, nil
}

func (e *Engine) receiptFor(sale models.Sale, received *decimal.Decimal) Receipt {
	change := decimal.Zero
	if sale.PaymentMethod == models.PayCash && received != nil && received.GreaterThanOrEqual(sale.Total) {
		change = received.Sub(sale.Total)
	}
	return Receipt{
		SaleID:     sale.ID,
		SaleNumber: sale.SaleNumber,
		Total:      sale.Total,
		Change:     change,
		Sale:       sale,
	}
}

func validateCheckout(cfg Config, req CheckoutRequest) error {
	if len(req.Lines) == 0 {
		return fmt.Errorf("%w: cart is empty", ErrValidation)
	}
	for i, l := range req.Lines {
		if l.ProductID == "" {
			return fmt.Errorf("%w: line %d has no product", ErrValidation, i)
		}
		if l.Quantity < 1 {
			return fmt.Errorf("%w: line %d quantity must be at least 1", ErrValidation, i)
		}
	}
	switch req.PaymentMethod {
	case models.PayCash, models.PayCard, models.PayMobile:
	default:
		return fmt.Errorf("%w: unknown payment method %q", ErrValidation, req.PaymentMethod)
	}
	if !cfg.allowsPayment(req.PaymentMethod) {
		return fmt.Errorf("%w: payment method %q not allowed at this branch", ErrPolicyViolation, req.PaymentMethod)
	}
	if cfg.RequireCustomer && req.CustomerID == nil {
		return fmt.Errorf("%w: customer information required", ErrPolicyViolation)
	}
	return nil
}

// FormatSaleNumber renders a sequence value as the human-facing,
// fixed-width sale number, e.g. S000123.
func FormatSaleNumber(seq int64) string {
	return fmt.Sprintf("S%06d", seq)
}

// Refund moves a completed sale to refunded, reverses loyalty for the
// refunded amount and, when configured and the refund is full, restores
// the sold quantities. amount defaults to the full sale total.
func (e *Engine) Refund(ctx context.Context, id policy.Identity, cfg Config, branchID, saleID string, amount *decimal.Decimal) error {
	sale, err := e.repo.GetSale(ctx, saleID)
	if err != nil || sale.BranchID != branchID {
		if err == nil || errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrSaleNotFound, saleID)
		}
		return err
	}
	if err := e.preconditions()(ctx, id, sale.StoreID, sale.BranchID); err != nil {
		return err
	}

	refund := sale.Total
	if amount != nil {
		refund = *amount
	}
	if refund.LessThanOrEqual(decimal.Zero) || refund.GreaterThan(sale.Total) {
		return fmt.Errorf("%w: refund amount must be in (0, %s]", ErrValidation, sale.Total)
	}

	// Validate the customer before the status flips so a broken reference
	// fails the refund instead of silently skipping the reversal.
	if sale.CustomerID != nil && cfg.LoyaltyEnabled {
		if _, err := e.repo.GetCustomer(ctx, *sale.CustomerID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrCustomerNotFound, *sale.CustomerID)
			}
			return err
		}
	}

	// CAS on status: of two concurrent refunds exactly one wins.
	err = e.repo.TransitionSale(ctx, saleID, []models.SaleStatus{models.SaleCompleted}, models.SaleRefunded, models.PaymentRefunded)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return fmt.Errorf("%w: sale %s is %s", ErrIllegalTransition, saleID, sale.Status)
		}
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrSaleNotFound, saleID)
		}
		return err
	}

	if sale.CustomerID != nil && cfg.LoyaltyEnabled {
		points := refund.Div(ten).Floor().IntPart()
		if err := e.repo.AddLoyalty(ctx, *sale.CustomerID, -points, refund.Neg(), nil); err != nil {
			log.Printf("pos: loyalty reversal failed for sale %s customer %s: %v", saleID, *sale.CustomerID, err)
			return fmt.Errorf("pos: loyalty reversal failed: %w", err)
		}
	}

	if cfg.RestoreStockOnRefund && refund.Equal(sale.Total) {
		for _, item := range sale.Items {
			if err := e.repo.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
				log.Printf("pos: failed to restore %d units of %s after refund of sale %s: %v", item.Quantity, item.ProductID, saleID, err)
			}
		}
	}

	return nil
}

// saleTransitions lists the legal SetStatus edges. Refunded is reachable
// only through Refund, which owns the monetary reversal.
var saleTransitions = map[models.SaleStatus][]models.SaleStatus{
	models.SaleCompleted: {models.SalePending},
	models.SaleCancelled: {models.SalePending, models.SaleCompleted},
}

// SetStatus applies a plain status transition. Cancellation performs no
// monetary reversal; refunds are the monetary path.
func (e *Engine) SetStatus(ctx context.Context, id policy.Identity, branchID, saleID string, to models.SaleStatus) error {
	sale, err := e.repo.GetSale(ctx, saleID)
	if err != nil || sale.BranchID != branchID {
		if err == nil || errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrSaleNotFound, saleID)
		}
		return err
	}
	if err := e.preconditions()(ctx, id, sale.StoreID, sale.BranchID); err != nil {
		return err
	}

	switch to {
	case models.SaleCompleted, models.SaleCancelled:
	case models.SaleRefunded:
		return fmt.Errorf("%w: use the refund operation", ErrValidation)
	default:
		return fmt.Errorf("%w: unknown status %q", ErrValidation, to)
	}

	pay := models.PaymentStatus("")
	if to == models.SaleCompleted {
		pay = models.PaymentPaid
	}

	err = e.repo.TransitionSale(ctx, saleID, saleTransitions[to], to, pay)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, sale.Status, to)
		}
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrSaleNotFound, saleID)
		}
		return err
	}
	return nil
}

// GetSale returns a sale after the usual preconditions.
func (e *Engine) GetSale(ctx context.Context, id policy.Identity, branchID, saleID string) (models.Sale, error) {
	sale, err := e.repo.GetSale(ctx, saleID)
	if err != nil || sale.BranchID != branchID {
		if err == nil || errors.Is(err, store.ErrNotFound) {
			return models.Sale{}, fmt.Errorf("%w: %s", ErrSaleNotFound, saleID)
		}
		return models.Sale{}, err
	}
	if err := e.preconditions()(ctx, id, sale.StoreID, sale.BranchID); err != nil {
		return models.Sale{}, err
	}
	return sale, nil
}

// ListSales returns the branch's sales created within [from, to], oldest
// first. Zero times leave that bound open.
func (e *Engine) ListSales(ctx context.Context, id policy.Identity, branchID string, from, to time.Time) ([]models.Sale, error) {
	branch, err := e.repo.GetBranch(ctx, branchID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBranchNotFound, branchID)
		}
		return nil, err
	}
	if err := e.preconditions()(ctx, id, branch.StoreID, branch.ID); err != nil {
		return nil, err
	}
	return e.repo.ListSales(ctx, branchID, from, to)
}

// StatsReport is the read-only sales aggregate for a period.
type StatsReport struct {
	Revenue          decimal.Decimal `json:"revenue"`
	TransactionCount int64           `json:"transaction_count"`
	AverageSale      decimal.Decimal `json:"avg_sale"`
	// GrowthPercent compares revenue against the immediately preceding
	// period of equal length.
	GrowthPercent decimal.Decimal `json:"growth_vs_prior_period"`
}

// Stats aggregates completed sales over [from, to] and compares against
// the prior period of equal length.
func (e *Engine) Stats(ctx context.Context, id policy.Identity, branchID string, from, to time.Time) (StatsReport, error) {
	branch, err := e.repo.GetBranch(ctx, branchID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return StatsReport{}, fmt.Errorf("%w: %s", ErrBranchNotFound, branchID)
		}
		return StatsReport{}, err
	}
	if err := e.preconditions()(ctx, id, branch.StoreID, branch.ID); err != nil {
		return StatsReport{}, err
	}

	cur, err := e.repo.SaleStats(ctx, branchID, from, to)
	if err != nil {
		return StatsReport{}, err
	}

	report := StatsReport{
		Revenue:          cur.Revenue,
		TransactionCount: cur.TransactionCount,
		AverageSale:      decimal.Zero,
		GrowthPercent:    decimal.Zero,
	}
	if cur.TransactionCount > 0 {
		report.AverageSale = cur.Revenue.Div(decimal.NewFromInt(cur.TransactionCount)).Round(2)
	}

	if !from.IsZero() && !to.IsZero() && to.After(from) {
		span := to.Sub(from)
		prior, err := e.repo.SaleStats(ctx, branchID, from.Add(-span), from.Add(-time.Nanosecond))
		if err != nil {
			return StatsReport{}, err
		}
		switch {
		case prior.Revenue.IsPositive():
			report.GrowthPercent = cur.Revenue.Sub(prior.Revenue).Div(prior.Revenue).Mul(decimal.NewFromInt(100)).Round(2)
		case cur.Revenue.IsPositive():
			report.GrowthPercent = decimal.NewFromInt(100)
		}
	}

	return report, nil
}

// StockAlert is one product flagged by the low-stock/out-of-stock query.
type StockAlert struct {
	Product models.Product    `json:"product"`
	State   models.StockState `json:"state"`
}

// StockAlerts lists every product of the branch that is low or out of
// stock according to the branch threshold.
func (e *Engine) StockAlerts(ctx context.Context, id policy.Identity, cfg Config, branchID string) ([]StockAlert, error) {
	branch, err := e.repo.GetBranch(ctx, branchID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBranchNotFound, branchID)
		}
		return nil, err
	}
	if err := e.preconditions()(ctx, id, branch.StoreID, branch.ID); err != nil {
		return nil, err
	}

	products, err := e.repo.ListProducts(ctx, branchID)
	if err != nil {
		return nil, err
	}
	alerts := []StockAlert{}
	for _, p := range products {
		if state := models.StockStateOf(p, cfg.LowStockThreshold); state != models.StockOK {
			alerts = append(alerts, StockAlert{Product: p, State: state})
		}
	}
	return alerts, nil
}

// ReceiveStock records a manual stock correction (goods received or a
// count adjustment upward). qty must be positive.
func (e *Engine) ReceiveStock(ctx context.Context, id policy.Identity, branchID, productID string, qty int) (models.Product, error) {
	if qty < 1 {
		return models.Product{}, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	p, err := e.stockTarget(ctx, id, branchID, productID)
	if err != nil {
		return models.Product{}, err
	}
	if err := e.repo.RestoreStock(ctx, p.ID, qty); err != nil {
		return models.Product{}, err
	}
	return e.repo.GetProduct(ctx, p.ID)
}

// WriteOffStock records a manual downward correction (shrinkage, damage,
// expiry). It fails rather than driving stock negative.
func (e *Engine) WriteOffStock(ctx context.Context, id policy.Identity, branchID, productID string, qty int) (models.Product, error) {
	if qty < 1 {
		return models.Product{}, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	p, err := e.stockTarget(ctx, id, branchID, productID)
	if err != nil {
		return models.Product{}, err
	}
	if err := e.repo.DecrementStock(ctx, p.ID, qty); err != nil {
		if errors.Is(err, store.ErrInsufficientStock) {
			return models.Product{}, &StockError{ProductID: p.ID, Requested: qty, OnHand: p.StockOnHand}
		}
		return models.Product{}, err
	}
	return e.repo.GetProduct(ctx, p.ID)
}

func (e *Engine) stockTarget(ctx context.Context, id policy.Identity, branchID, productID string) (models.Product, error) {
	branch, err := e.repo.GetBranch(ctx, branchID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Product{}, fmt.Errorf("%w: %s", ErrBranchNotFound, branchID)
		}
		return models.Product{}, err
	}
	if err := e.preconditions()(ctx, id, branch.StoreID, branch.ID); err != nil {
		return models.Product{}, err
	}
	p, err := e.repo.GetProduct(ctx, productID)
	if err != nil || p.BranchID != branchID {
		if err == nil || errors.Is(err, store.ErrNotFound) {
			return models.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return models.Product{}, err
	}
	return p, nil
}
