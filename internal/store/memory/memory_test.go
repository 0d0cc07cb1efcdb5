package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/GodwinAdu/retail-pos-sub000/internal/models"
	"github.com/GodwinAdu/retail-pos-sub000/internal/store"
)

func seedProduct(t *testing.T, s *Store, id string, stock int) {
	t.Helper()
	err := s.CreateProduct(context.Background(), &models.Product{
		ID:          id,
		BranchID:    "b1",
		Name:        "Test Product",
		UnitPrice:   decimal.New(100, -2),
		StockOnHand: stock,
	})
	require.NoError(t, err)
}

func TestDecrementStockConditional(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedProduct(t, s, "p1", 3)

	require.NoError(t, s.DecrementStock(ctx, "p1", 2))
	err := s.DecrementStock(ctx, "p1", 2)
	require.ErrorIs(t, err, store.ErrInsufficientStock)

	p, err := s.GetProduct(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 1, p.StockOnHand)

	require.ErrorIs(t, s.DecrementStock(ctx, "missing", 1), store.ErrNotFound)
}

func TestDecrementStockNeverNegativeUnderConcurrency(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedProduct(t, s, "p1", 10)

	var wg sync.WaitGroup
	successes := make(chan struct{}, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.DecrementStock(ctx, "p1", 1); err == nil {
				successes <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(successes)

	won := 0
	for range successes {
		won++
	}
	require.Equal(t, 10, won, "exactly the initial stock may be sold")

	p, err := s.GetProduct(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 0, p.StockOnHand)
}

func TestNextSaleNumberUniqueUnderConcurrency(t *testing.T) {
	s := New()
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	results := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, err := s.NextSaleNumber(ctx, "b1")
			require.NoError(t, err)
			results <- seq
		}()
	}
	wg.Wait()
	close(results)

	seen := map[int64]bool{}
	for seq := range results {
		require.False(t, seen[seq], "sequence %d issued twice", seq)
		seen[seq] = true
	}
	require.Len(t, seen, n)

	// Branch scoping: another branch starts from 1.
	seq, err := s.NextSaleNumber(ctx, "b2")
	require.NoError(t, err)
	require.Equal(t, int64(1), seq)
}

func TestTransitionSaleCAS(t *testing.T) {
	s := New()
	ctx := context.Background()
	sale := &models.Sale{
		ID:         "sale1",
		BranchID:   "b1",
		StoreID:    "s1",
		SaleNumber: "S000001",
		CashierID:  "u1",
		Total:      decimal.New(1000, -2),
		Status:     models.SaleCompleted,
	}
	require.NoError(t, s.CreateSale(ctx, sale))

	from := []models.SaleStatus{models.SaleCompleted}
	require.NoError(t, s.TransitionSale(ctx, "sale1", from, models.SaleRefunded, models.PaymentRefunded))

	// Second identical transition must lose the CAS.
	err := s.TransitionSale(ctx, "sale1", from, models.SaleRefunded, models.PaymentRefunded)
	require.ErrorIs(t, err, store.ErrConflict)

	got, err := s.GetSale(ctx, "sale1")
	require.NoError(t, err)
	require.Equal(t, models.SaleRefunded, got.Status)
	require.Equal(t, models.PaymentRefunded, got.PaymentStatus)

	require.ErrorIs(t, s.TransitionSale(ctx, "missing", from, models.SaleRefunded, ""), store.ErrNotFound)
}

func TestCreateSaleIdempotencyKeyConflict(t *testing.T) {
	s := New()
	ctx := context.Background()
	key := "attempt-1"

	first := &models.Sale{ID: "sale1", BranchID: "b1", SaleNumber: "S000001", IdempotencyKey: &key}
	require.NoError(t, s.CreateSale(ctx, first))

	dup := &models.Sale{ID: "sale2", BranchID: "b1", SaleNumber: "S000002", IdempotencyKey: &key}
	require.ErrorIs(t, s.CreateSale(ctx, dup), store.ErrConflict)

	found, err := s.FindSaleByIdemKey(ctx, key)
	require.NoError(t, err)
	require.Equal(t, "sale1", found.ID)
}

func TestAddLoyaltyClampsAtZero(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.CreateCustomer(ctx, &models.Customer{
		ID:             "c1",
		StoreID:        "s1",
		Name:           "Ama",
		LoyaltyPoints:  3,
		TotalPurchases: decimal.New(3000, -2),
	}))

	// Reversal bigger than the balance clamps instead of going negative.
	require.NoError(t, s.AddLoyalty(ctx, "c1", -10, decimal.New(-10000, -2), nil))

	c, err := s.GetCustomer(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, int64(0), c.LoyaltyPoints)
	require.True(t, c.TotalPurchases.Equal(decimal.Zero))

	require.ErrorIs(t, s.AddLoyalty(ctx, "missing", 1, decimal.Zero, nil), store.ErrNotFound)
}

func TestSaleReturnedByValueIsDetached(t *testing.T) {
	s := New()
	ctx := context.Background()
	sale := &models.Sale{
		ID:         "sale1",
		BranchID:   "b1",
		SaleNumber: "S000001",
		Status:     models.SaleCompleted,
		Items:      []models.SaleItem{{ProductID: "p1", Name: "Widget", Quantity: 1}},
	}
	require.NoError(t, s.CreateSale(ctx, sale))

	got, err := s.GetSale(ctx, "sale1")
	require.NoError(t, err)
	got.Items[0].Name = "tampered"

	again, err := s.GetSale(ctx, "sale1")
	require.NoError(t, err)
	require.Equal(t, "Widget", again.Items[0].Name)
}
