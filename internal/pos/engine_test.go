package pos

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/GodwinAdu/retail-pos-sub000/internal/models"
	"github.com/GodwinAdu/retail-pos-sub000/internal/policy"
	"github.com/GodwinAdu/retail-pos-sub000/internal/store"
	"github.com/GodwinAdu/retail-pos-sub000/internal/store/memory"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type testEnv struct {
	engine   *Engine
	repo     *memory.Store
	identity policy.Identity
	cfg      Config
}

func newTestEnv(t *testing.T, gate policy.Gate) *testEnv {
	t.Helper()
	repo := memory.New()
	ctx := context.Background()

	require.NoError(t, repo.CreateBranch(ctx, &models.Branch{ID: "b1", StoreID: "s1", Name: "Main"}))
	require.NoError(t, repo.CreateBranch(ctx, &models.Branch{ID: "b2", StoreID: "s1", Name: "Annex"}))

	return &testEnv{
		engine: NewEngine(repo, gate),
		repo:   repo,
		identity: policy.Identity{
			UserID:       "cashier-1",
			Role:         models.RoleCashier,
			BranchAccess: []string{"b1"},
		},
		cfg: DefaultConfig(),
	}
}

func (env *testEnv) addProduct(t *testing.T, id, price string, stock int) {
	t.Helper()
	require.NoError(t, env.repo.CreateProduct(context.Background(), &models.Product{
		ID:          id,
		BranchID:    "b1",
		Name:        "Product " + id,
		UnitPrice:   dec(price),
		StockOnHand: stock,
	}))
}

func (env *testEnv) addCustomer(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, env.repo.CreateCustomer(context.Background(), &models.Customer{
		ID:      id,
		StoreID: "s1",
		Name:    "Customer " + id,
	}))
}

func (env *testEnv) stockOf(t *testing.T, productID string) int {
	t.Helper()
	p, err := env.repo.GetProduct(context.Background(), productID)
	require.NoError(t, err)
	return p.StockOnHand
}

func cashReq(lines []CartLine, received string) CheckoutRequest {
	amount := dec(received)
	return CheckoutRequest{
		BranchID:       "b1",
		Lines:          lines,
		TaxMode:        models.TaxFixed,
		TaxValue:       decimal.Zero,
		DiscountMode:   models.DiscountFixed,
		DiscountValue:  decimal.Zero,
		PaymentMethod:  models.PayCash,
		AmountReceived: &amount,
	}
}

func TestCheckoutWorkedExample(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addProduct(t, "p1", "10.00", 10)

	amount := dec("30.00")
	receipt, err := env.engine.Checkout(context.Background(), env.identity, env.cfg, CheckoutRequest{
		BranchID:       "b1",
		Lines:          []CartLine{{ProductID: "p1", Quantity: 3}},
		TaxMode:        models.TaxPercentage,
		TaxValue:       dec("5"),
		DiscountMode:   models.DiscountFixed,
		DiscountValue:  dec("2"),
		PaymentMethod:  models.PayCash,
		AmountReceived: &amount,
	})
	require.NoError(t, err)

	require.Equal(t, "S000001", receipt.SaleNumber)
	require.True(t, receipt.Total.Equal(dec("29.50")), "total = %s", receipt.Total)
	require.True(t, receipt.Change.Equal(dec("0.50")), "change = %s", receipt.Change)
	require.Equal(t, 7, env.stockOf(t, "p1"))

	sale := receipt.Sale
	require.Equal(t, models.SaleCompleted, sale.Status)
	require.Equal(t, models.PaymentPaid, sale.PaymentStatus)
	require.True(t, sale.Subtotal.Equal(dec("30.00")))
	require.True(t, sale.DiscountAmount.Equal(dec("2.00")))
	require.True(t, sale.TaxAmount.Equal(dec("1.50")))
	require.Equal(t, "cashier-1", sale.CashierID)
	require.Len(t, sale.Items, 1)
	require.Equal(t, "Product p1", sale.Items[0].Name)
	require.Equal(t, 3, sale.Items[0].Quantity)
}

func TestCheckoutSaleItemsAreSnapshots(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addProduct(t, "p1", "10.00", 5)

	receipt, err := env.engine.Checkout(context.Background(), env.identity, env.cfg,
		cashReq([]CartLine{{ProductID: "p1", Quantity: 1}}, "10.00"))
	require.NoError(t, err)

	// Reprice the catalog; the persisted sale must keep the old numbers.
	p, err := env.repo.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	p.UnitPrice = dec("99.00")
	p.Name = "Renamed"
	require.NoError(t, env.repo.UpdateProduct(context.Background(), p))

	sale, err := env.repo.GetSale(context.Background(), receipt.SaleID)
	require.NoError(t, err)
	require.True(t, sale.Items[0].UnitPrice.Equal(dec("10.00")))
	require.Equal(t, "Product p1", sale.Items[0].Name)
}

func TestCheckoutInsufficientStock(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addProduct(t, "p1", "5.00", 2)

	_, err := env.engine.Checkout(context.Background(), env.identity, env.cfg,
		cashReq([]CartLine{{ProductID: "p1", Quantity: 3}}, "100.00"))

	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, "p1", stockErr.ProductID)
	require.Equal(t, 3, stockErr.Requested)
	require.Equal(t, 2, stockErr.OnHand)
	require.ErrorIs(t, err, store.ErrInsufficientStock)
	require.Equal(t, 2, env.stockOf(t, "p1"), "failed checkout must not touch stock")
}

func TestCheckoutRollsBackEarlierLines(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addProduct(t, "p1", "5.00", 10)
	env.addProduct(t, "p2", "5.00", 1)

	_, err := env.engine.Checkout(context.Background(), env.identity, env.cfg,
		cashReq([]CartLine{
			{ProductID: "p1", Quantity: 4},
			{ProductID: "p2", Quantity: 2},
		}, "100.00"))
	require.ErrorIs(t, err, store.ErrInsufficientStock)

	require.Equal(t, 10, env.stockOf(t, "p1"), "first line decrement must be compensated")
	require.Equal(t, 1, env.stockOf(t, "p2"))
}

func TestConcurrentCheckoutLastUnits(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addProduct(t, "p1", "5.00", 2)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.engine.Checkout(context.Background(), env.identity, env.cfg,
				cashReq([]CartLine{{ProductID: "p1", Quantity: 2}}, "10.00"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var okCount, stockFailCount int
	for err := range errs {
		switch {
		case err == nil:
			okCount++
		default:
			require.ErrorIs(t, err, store.ErrInsufficientStock)
			stockFailCount++
		}
	}
	require.Equal(t, 1, okCount, "exactly one checkout may win the last units")
	require.Equal(t, 1, stockFailCount)
	require.Equal(t, 0, env.stockOf(t, "p1"))
}

func TestConcurrentCheckoutSaleNumbersUnique(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addProduct(t, "p1", "1.00", 1000)

	const n = 20
	type result struct {
		number string
		err    error
	}
	var wg sync.WaitGroup
	results := make(chan result, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			receipt, err := env.engine.Checkout(context.Background(), env.identity, env.cfg,
				cashReq([]CartLine{{ProductID: "p1", Quantity: 1}}, "1.00"))
			results <- result{number: receipt.SaleNumber, err: err}
		}()
	}
	wg.Wait()
	close(results)

	seen := map[string]bool{}
	for r := range results {
		require.NoError(t, r.err)
		require.False(t, seen[r.number], "sale number %s issued twice", r.number)
		seen[r.number] = true
	}
	require.Len(t, seen, n)
}

func TestCheckoutInsufficientPayment(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addProduct(t, "p1", "10.00", 5)

	_, err := env.engine.Checkout(context.Background(), env.identity, env.cfg,
		cashReq([]CartLine{{ProductID: "p1", Quantity: 2}}, "19.99"))
	require.ErrorIs(t, err, ErrInsufficientPayment)
	require.Equal(t, 5, env.stockOf(t, "p1"))
}

func TestCheckoutCardNeedsNoTender(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addProduct(t, "p1", "10.00", 5)

	req := cashReq([]CartLine{{ProductID: "p1", Quantity: 1}}, "0")
	req.PaymentMethod = models.PayCard
	req.AmountReceived = nil

	receipt, err := env.engine.Checkout(context.Background(), env.identity, env.cfg, req)
	require.NoError(t, err)
	require.True(t, receipt.Change.Equal(decimal.Zero))
}

func TestCheckoutPolicyChecks(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addProduct(t, "p1", "10.00", 5)
	lines := []CartLine{{ProductID: "p1", Quantity: 1}}

	t.Run("customer required", func(t *testing.T) {
		cfg := env.cfg
		cfg.RequireCustomer = true
		_, err := env.engine.Checkout(context.Background(), env.identity, cfg, cashReq(lines, "10.00"))
		require.ErrorIs(t, err, ErrPolicyViolation)
	})

	t.Run("payment method not allowed", func(t *testing.T) {
		cfg := env.cfg
		cfg.AllowedPaymentMethods = []models.PaymentMethod{models.PayCard}
		_, err := env.engine.Checkout(context.Background(), env.identity, cfg, cashReq(lines, "10.00"))
		require.ErrorIs(t, err, ErrPolicyViolation)
	})

	t.Run("discount above cap", func(t *testing.T) {
		cfg := env.cfg
		cfg.MaxDiscountPercent = dec("10")
		req := cashReq(lines, "10.00")
		req.DiscountMode = models.DiscountPercentage
		req.DiscountValue = dec("50")
		_, err := env.engine.Checkout(context.Background(), env.identity, cfg, req)
		require.ErrorIs(t, err, ErrPolicyViolation)
	})

	require.Equal(t, 5, env.stockOf(t, "p1"), "policy failures must precede stock mutation")
}

func TestCheckoutValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addProduct(t, "p1", "10.00", 5)

	_, err := env.engine.Checkout(context.Background(), env.identity, env.cfg,
		cashReq(nil, "10.00"))
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.engine.Checkout(context.Background(), env.identity, env.cfg,
		cashReq([]CartLine{{ProductID: "p1", Quantity: 0}}, "10.00"))
	require.ErrorIs(t, err, ErrValidation)

	req := cashReq([]CartLine{{ProductID: "p1", Quantity: 1}}, "10.00")
	req.PaymentMethod = models.PaymentMethod("barter")
	_, err = env.engine.Checkout(context.Background(), env.identity, env.cfg, req)
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.engine.Checkout(context.Background(), env.identity, env.cfg,
		cashReq([]CartLine{{ProductID: "ghost", Quantity: 1}}, "10.00"))
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestCheckoutUnknownCustomerFails(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addProduct(t, "p1", "10.00", 5)

	ghost := "no-such-customer"
	req := cashReq([]CartLine{{ProductID: "p1", Quantity: 1}}, "10.00")
	req.CustomerID = &ghost

	_, err := env.engine.Checkout(context.Background(), env.identity, env.cfg, req)
	require.ErrorIs(t, err, ErrCustomerNotFound)
	require.Equal(t, 5, env.stockOf(t, "p1"))
}

func TestCheckoutSubscriptionBlocked(t *testing.T) {
	gate := policy.StaticGate{Blocked: map[string]bool{"s1": true}}
	env := newTestEnv(t, gate)
	env.addProduct(t, "p1", "10.00", 5)

	_, err := env.engine.Checkout(context.Background(), env.identity, env.cfg,
		cashReq([]CartLine{{ProductID: "p1", Quantity: 1}}, "10.00"))
	require.ErrorIs(t, err, policy.ErrSubscriptionBlocked)
	require.Equal(t, 5, env.stockOf(t, "p1"))
}

func TestCheckoutBranchAccessDenied(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addProduct(t, "p1", "10.00", 5)

	outsider := policy.Identity{UserID: "u2", Role: models.RoleCashier, BranchAccess: []string{"b2"}}
	_, err := env.engine.Checkout(context.Background(), outsider, env.cfg,
		cashReq([]CartLine{{ProductID: "p1", Quantity: 1}}, "10.00"))
	require.ErrorIs(t, err, policy.ErrBranchAccessDenied)
}

func TestCheckoutIdempotencyKeyReplaysReceipt(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addProduct(t, "p1", "10.00", 5)

	req := cashReq([]CartLine{{ProductID: "p1", Quantity: 2}}, "20.00")
	req.IdempotencyKey = "attempt-42"

	first, err := env.engine.Checkout(context.Background(), env.identity, env.cfg, req)
	require.NoError(t, err)
	require.Equal(t, 3, env.stockOf(t, "p1"))

	second, err := env.engine.Checkout(context.Background(), env.identity, env.cfg, req)
	require.NoError(t, err)
	require.Equal(t, first.SaleID, second.SaleID)
	require.Equal(t, first.SaleNumber, second.SaleNumber)
	require.Equal(t, 3, env.stockOf(t, "p1"), "a replayed checkout must not sell again")
}

func TestLoyaltyAccrualAndConservationOverRefund(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addProduct(t, "p1", "50.00", 10)
	env.addCustomer(t, "c1")

	customerID := "c1"
	req := cashReq([]CartLine{{ProductID: "p1", Quantity: 2}}, "100.00")
	req.CustomerID = &customerID

	receipt, err := env.engine.Checkout(context.Background(), env.identity, env.cfg, req)
	require.NoError(t, err)
	require.True(t, receipt.Total.Equal(dec("100.00")))

	c, err := env.repo.GetCustomer(context.Background(), "c1")
	require.NoError(t, err)
	require.Equal(t, int64(10), c.LoyaltyPoints)
	require.True(t, c.TotalPurchases.Equal(dec("100.00")))
	require.NotNil(t, c.LastVisit)

	require.NoError(t, env.engine.Refund(context.Background(), env.identity, env.cfg, "b1", receipt.SaleID, nil))

	c, err = env.repo.GetCustomer(context.Background(), "c1")
	require.NoError(t, err)
	require.Equal(t, int64(0), c.LoyaltyPoints, "full refund must return points to the starting balance")
	require.True(t, c.TotalPurchases.Equal(decimal.Zero))

	sale, err := env.repo.GetSale(context.Background(), receipt.SaleID)
	require.NoError(t, err)
	require.Equal(t, models.SaleRefunded, sale.Status)
	require.Equal(t, models.PaymentRefunded, sale.PaymentStatus)

	// Stock is intentionally not restored by a refund.
	require.Equal(t, 8, env.stockOf(t, "p1"))
}

func TestRefundBounds(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addProduct(t, "p1", "10.00", 5)

	receipt, err := env.engine.Checkout(context.Background(), env.identity, env.cfg,
		cashReq([]CartLine{{ProductID: "p1", Quantity: 2}}, "20.00"))
	require.NoError(t, err)

	for _, amount := range []string{"0", "-5", "20.01"} {
		a := dec(amount)
		err := env.engine.Refund(context.Background(), env.identity, env.cfg, "b1", receipt.SaleID, &a)
		require.ErrorIs(t, err, ErrValidation, "amount %s must be rejected", amount)
	}

	partial := dec("5.00")
	require.NoError(t, env.engine.Refund(context.Background(), env.identity, env.cfg, "b1", receipt.SaleID, &partial))
}

func TestDoubleRefundRejected(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addProduct(t, "p1", "10.00", 5)

	receipt, err := env.engine.Checkout(context.Background(), env.identity, env.cfg,
		cashReq([]CartLine{{ProductID: "p1", Quantity: 1}}, "10.00"))
	require.NoError(t, err)

	require.NoError(t, env.engine.Refund(context.Background(), env.identity, env.cfg, "b1", receipt.SaleID, nil))
	err = env.engine.Refund(context.Background(), env.identity, env.cfg, "b1", receipt.SaleID, nil)
	require.ErrorIs(t, err, ErrIllegalTransition)
}

func TestConcurrentRefundExactlyOneWins(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addProduct(t, "p1", "10.00", 5)

	receipt, err := env.engine.Checkout(context.Background(), env.identity, env.cfg,
		cashReq([]CartLine{{ProductID: "p1", Quantity: 1}}, "10.00"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- env.engine.Refund(context.Background(), env.identity, env.cfg, "b1", receipt.SaleID, nil)
		}()
	}
	wg.Wait()
	close(errs)

	var okCount, illegalCount int
	for err := range errs {
		switch {
		case err == nil:
			okCount++
		default:
			require.ErrorIs(t, err, ErrIllegalTransition)
			illegalCount++
		}
	}
	require.Equal(t, 1, okCount)
	require.Equal(t, 1, illegalCount)
}

func TestRefundCancelledSaleRejected(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addProduct(t, "p1", "10.00", 5)

	receipt, err := env.engine.Checkout(context.Background(), env.identity, env.cfg,
		cashReq([]CartLine{{ProductID: "p1", Quantity: 1}}, "10.00"))
	require.NoError(t, err)

	require.NoError(t, env.engine.SetStatus(context.Background(), env.identity, "b1", receipt.SaleID, models.SaleCancelled))
	err = env.engine.Refund(context.Background(), env.identity, env.cfg, "b1", receipt.SaleID, nil)
	require.ErrorIs(t, err, ErrIllegalTransition)
}

func TestRefundRestoresStockWhenConfigured(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addProduct(t, "p1", "10.00", 5)

	receipt, err := env.engine.Checkout(context.Background(), env.identity, env.cfg,
		cashReq([]CartLine{{ProductID: "p1", Quantity: 3}}, "30.00"))
	require.NoError(t, err)
	require.Equal(t, 2, env.stockOf(t, "p1"))

	cfg := env.cfg
	cfg.RestoreStockOnRefund = true
	require.NoError(t, env.engine.Refund(context.Background(), env.identity, cfg, "b1", receipt.SaleID, nil))
	require.Equal(t, 5, env.stockOf(t, "p1"))
}

func TestSetStatusStateMachine(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addProduct(t, "p1", "10.00", 10)
	ctx := context.Background()

	receipt, err := env.engine.Checkout(ctx, env.identity, env.cfg,
		cashReq([]CartLine{{ProductID: "p1", Quantity: 1}}, "10.00"))
	require.NoError(t, err)

	// completed -> cancelled is legal and terminal.
	require.NoError(t, env.engine.SetStatus(ctx, env.identity, "b1", receipt.SaleID, models.SaleCancelled))
	err = env.engine.SetStatus(ctx, env.identity, "b1", receipt.SaleID, models.SaleCompleted)
	require.ErrorIs(t, err, ErrIllegalTransition)

	// Refunds go through the refund operation, not SetStatus.
	other, err := env.engine.Checkout(ctx, env.identity, env.cfg,
		cashReq([]CartLine{{ProductID: "p1", Quantity: 1}}, "10.00"))
	require.NoError(t, err)
	err = env.engine.SetStatus(ctx, env.identity, "b1", other.SaleID, models.SaleRefunded)
	require.ErrorIs(t, err, ErrValidation)

	err = env.engine.SetStatus(ctx, env.identity, "b1", other.SaleID, models.SaleStatus("limbo"))
	require.ErrorIs(t, err, ErrValidation)

	err = env.engine.SetStatus(ctx, env.identity, "b1", "no-such-sale", models.SaleCancelled)
	require.ErrorIs(t, err, ErrSaleNotFound)
}

func TestStats(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addProduct(t, "p1", "10.00", 100)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := env.engine.Checkout(ctx, env.identity, env.cfg,
			cashReq([]CartLine{{ProductID: "p1", Quantity: 1}}, "10.00"))
		require.NoError(t, err)
	}
	// A refunded sale must not count as revenue.
	refunded, err := env.engine.Checkout(ctx, env.identity, env.cfg,
		cashReq([]CartLine{{ProductID: "p1", Quantity: 1}}, "10.00"))
	require.NoError(t, err)
	require.NoError(t, env.engine.Refund(ctx, env.identity, env.cfg, "b1", refunded.SaleID, nil))

	now := time.Now().UTC()
	report, err := env.engine.Stats(ctx, env.identity, "b1", now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(3), report.TransactionCount)
	require.True(t, report.Revenue.Equal(dec("30.00")), "revenue = %s", report.Revenue)
	require.True(t, report.AverageSale.Equal(dec("10.00")))
	// No prior-period sales: growth reports 100%.
	require.True(t, report.GrowthPercent.Equal(dec("100")))
}

func TestStockAlerts(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	require.NoError(t, env.repo.CreateProduct(ctx, &models.Product{
		ID: "out", BranchID: "b1", Name: "Out", UnitPrice: dec("1.00"), StockOnHand: 0,
	}))
	require.NoError(t, env.repo.CreateProduct(ctx, &models.Product{
		ID: "low", BranchID: "b1", Name: "Low", UnitPrice: dec("1.00"), StockOnHand: 3,
	}))
	require.NoError(t, env.repo.CreateProduct(ctx, &models.Product{
		ID: "ok", BranchID: "b1", Name: "OK", UnitPrice: dec("1.00"), StockOnHand: 50,
	}))

	cfg := env.cfg
	cfg.LowStockThreshold = 5
	alerts, err := env.engine.StockAlerts(ctx, env.identity, cfg, "b1")
	require.NoError(t, err)

	states := map[string]models.StockState{}
	for _, a := range alerts {
		states[a.Product.ID] = a.State
	}
	require.Equal(t, models.StockOut, states["out"])
	require.Equal(t, models.StockLow, states["low"])
	require.NotContains(t, states, "ok")
}

func TestStockCorrections(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addProduct(t, "p1", "10.00", 5)
	ctx := context.Background()

	p, err := env.engine.ReceiveStock(ctx, env.identity, "b1", "p1", 10)
	require.NoError(t, err)
	require.Equal(t, 15, p.StockOnHand)

	p, err = env.engine.WriteOffStock(ctx, env.identity, "b1", "p1", 4)
	require.NoError(t, err)
	require.Equal(t, 11, p.StockOnHand)

	_, err = env.engine.WriteOffStock(ctx, env.identity, "b1", "p1", 99)
	require.ErrorIs(t, err, store.ErrInsufficientStock)

	_, err = env.engine.ReceiveStock(ctx, env.identity, "b1", "p1", 0)
	require.ErrorIs(t, err, ErrValidation)
}

func TestSaleNumbersAreSequentialPerBranch(t *testing.T) {
	env := newTestEnv(t, nil)
	env.addProduct(t, "p1", "1.00", 100)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		receipt, err := env.engine.Checkout(ctx, env.identity, env.cfg,
			cashReq([]CartLine{{ProductID: "p1", Quantity: 1}}, "1.00"))
		require.NoError(t, err)
		require.Equal(t, FormatSaleNumber(int64(i)), receipt.SaleNumber)
	}
}
