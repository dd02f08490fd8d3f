package payout

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "vendra/internal/errors"
	"vendra/internal/models"
	"vendra/internal/repositories"
	"vendra/internal/services/ledger"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type fixture struct {
	store   *repositories.MemoryStore
	ledger  ledger.Service
	payouts Service
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	store := repositories.NewMemoryStore()
	return &fixture{
		store:   store,
		ledger:  ledger.NewService(store, nil, ledger.Config{}, nil),
		payouts: NewService(store, nil, cfg),
	}
}

func (f *fixture) fund(t *testing.T, vendorID uint, amount string) {
	t.Helper()
	_, err := f.ledger.Credit(context.Background(), vendorID, dec(amount), nil, "order earning")
	require.NoError(t, err)
}

func (f *fixture) withdrawalCount(t *testing.T, vendorID uint) int {
	t.Helper()
	txns, _, err := f.ledger.ListTransactions(context.Background(), repositories.TransactionFilter{
		VendorID: vendorID,
		Type:     models.TransactionTypeWithdrawal,
		Limit:    100,
	})
	require.NoError(t, err)
	return len(txns)
}

func TestCreate(t *testing.T) {
	f := newFixture(t, Config{MinAmount: dec("25")})
	ctx := context.Background()
	f.fund(t, 1, "200")

	bank := models.JSON{"iban": "DE02120300000000202051"}

	t.Run("no balance check at creation", func(t *testing.T) {
		p, err := f.payouts.Create(ctx, 1, dec("300"), bank)
		require.NoError(t, err)
		assert.Equal(t, models.PayoutStatusPending, p.Status)
		assert.True(t, p.Amount.Equal(dec("300")))
		assert.Nil(t, p.ProcessedAt)
	})

	t.Run("below minimum", func(t *testing.T) {
		_, err := f.payouts.Create(ctx, 1, dec("10"), bank)
		assert.ErrorIs(t, err, errs.ErrPayoutBelowMinimum)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := f.payouts.Create(ctx, 1, decimal.Zero, bank)
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
		_, err = f.payouts.Create(ctx, 1, dec("-50"), bank)
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	})
}

func TestApproveReject(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	approved, err := f.payouts.Create(ctx, 1, dec("100"), nil)
	require.NoError(t, err)
	rejected, err := f.payouts.Create(ctx, 1, dec("100"), nil)
	require.NoError(t, err)

	p, err := f.payouts.Approve(ctx, approved.ID, "looks fine")
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusProcessing, p.Status)
	assert.Equal(t, "looks fine", p.AdminNotes)
	assert.Nil(t, p.ProcessedAt)

	p, err = f.payouts.Reject(ctx, rejected.ID, "bank details mismatch")
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusRejected, p.Status)
	require.NotNil(t, p.ProcessedAt)

	// Neither admin decision touches the wallet.
	assert.Equal(t, 0, f.withdrawalCount(t, 1))
}

func TestIllegalTransitions(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	f.fund(t, 1, "1000")

	mk := func(status string) uint {
		p, err := f.payouts.Create(ctx, 1, dec("100"), nil)
		require.NoError(t, err)
		switch status {
		case models.PayoutStatusProcessing:
			_, err = f.payouts.Approve(ctx, p.ID, "")
			require.NoError(t, err)
		case models.PayoutStatusCompleted:
			_, err = f.payouts.Approve(ctx, p.ID, "")
			require.NoError(t, err)
			_, err = f.payouts.Complete(ctx, p.ID, "")
			require.NoError(t, err)
		case models.PayoutStatusRejected:
			_, err = f.payouts.Reject(ctx, p.ID, "")
			require.NoError(t, err)
		}
		return p.ID
	}

	tests := []struct {
		name string
		from string
		call func(id uint) error
	}{
		{"approve processing", models.PayoutStatusProcessing, func(id uint) error { _, err := f.payouts.Approve(ctx, id, ""); return err }},
		{"approve completed", models.PayoutStatusCompleted, func(id uint) error { _, err := f.payouts.Approve(ctx, id, ""); return err }},
		{"approve rejected", models.PayoutStatusRejected, func(id uint) error { _, err := f.payouts.Approve(ctx, id, ""); return err }},
		{"reject processing", models.PayoutStatusProcessing, func(id uint) error { _, err := f.payouts.Reject(ctx, id, ""); return err }},
		{"reject completed", models.PayoutStatusCompleted, func(id uint) error { _, err := f.payouts.Reject(ctx, id, ""); return err }},
		{"complete pending", models.PayoutStatusPending, func(id uint) error { _, err := f.payouts.Complete(ctx, id, ""); return err }},
		{"complete rejected", models.PayoutStatusRejected, func(id uint) error { _, err := f.payouts.Complete(ctx, id, ""); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := mk(tt.from)
			err := tt.call(id)
			assert.ErrorIs(t, err, errs.ErrInvalidStateTransition)

			p, err := f.payouts.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, tt.from, p.Status)
		})
	}

	t.Run("unknown id", func(t *testing.T) {
		_, err := f.payouts.Approve(ctx, 9999, "")
		assert.ErrorIs(t, err, errs.ErrPayoutNotFound)
	})
}

func TestComplete_DebitsOnce(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	f.fund(t, 1, "500")

	p, err := f.payouts.Create(ctx, 1, dec("200"), nil)
	require.NoError(t, err)
	_, err = f.payouts.Approve(ctx, p.ID, "")
	require.NoError(t, err)

	done, err := f.payouts.Complete(ctx, p.ID, "bank-ref-77")
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusCompleted, done.Status)
	require.NotNil(t, done.ProcessedAt)

	wallet, err := f.ledger.GetWallet(ctx, 1)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(dec("300")))
	assert.True(t, wallet.TotalWithdrawn.Equal(dec("200")))

	// A duplicate delivery of the same completion must not re-debit.
	_, err = f.payouts.Complete(ctx, p.ID, "bank-ref-77")
	assert.ErrorIs(t, err, errs.ErrInvalidStateTransition)

	wallet, err = f.ledger.GetWallet(ctx, 1)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(dec("300")))
	assert.Equal(t, 1, f.withdrawalCount(t, 1))

	ok, err := f.ledger.Reconcile(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestComplete_InsufficientFundsKeepsProcessing(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	f.fund(t, 1, "200")

	p, err := f.payouts.Create(ctx, 1, dec("300"), nil)
	require.NoError(t, err)
	_, err = f.payouts.Approve(ctx, p.ID, "")
	require.NoError(t, err)

	_, err = f.payouts.Complete(ctx, p.ID, "")
	assert.ErrorIs(t, err, errs.ErrInsufficientFunds)

	// The failed completion must leave no trace: same status, same
	// balance, no withdrawal row.
	p, err = f.payouts.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusProcessing, p.Status)
	assert.Nil(t, p.ProcessedAt)

	wallet, err := f.ledger.GetWallet(ctx, 1)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(dec("200")))
	assert.Equal(t, 0, f.withdrawalCount(t, 1))

	// More earnings arrive; the same request can now complete.
	f.fund(t, 1, "200")
	done, err := f.payouts.Complete(ctx, p.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusCompleted, done.Status)
	assert.NotEmpty(t, done.ID)

	wallet, err = f.ledger.GetWallet(ctx, 1)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(dec("100")))
	assert.Equal(t, 1, f.withdrawalCount(t, 1))
}

func TestList(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	for vendor := uint(1); vendor <= 2; vendor++ {
		for i := 0; i < 3; i++ {
			_, err := f.payouts.Create(ctx, vendor, dec("100"), nil)
			require.NoError(t, err)
		}
	}
	p, err := f.payouts.Create(ctx, 1, dec("100"), nil)
	require.NoError(t, err)
	_, err = f.payouts.Reject(ctx, p.ID, "")
	require.NoError(t, err)

	all, total, err := f.payouts.List(ctx, repositories.PayoutFilter{VendorID: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, all, 4)

	rejected, total, err := f.payouts.List(ctx, repositories.PayoutFilter{
		VendorID: 1,
		Status:   models.PayoutStatusRejected,
		Limit:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rejected, 1)
	assert.Equal(t, p.ID, rejected[0].ID)
}

type failingCache struct {
	invalidations int
}

func (c *failingCache) GetWallet(context.Context, uint) (*models.Wallet, error) {
	return nil, errors.New("cache miss")
}
func (c *failingCache) SetWallet(context.Context, *models.Wallet) error { return nil }
func (c *failingCache) InvalidateWallet(context.Context, uint) error {
	c.invalidations++
	return errors.New("redis unreachable")
}

func TestComplete_CacheInvalidationFailureDoesNotFailPayout(t *testing.T) {
	store := repositories.NewMemoryStore()
	cache := &failingCache{}
	f := &fixture{
		store:   store,
		ledger:  ledger.NewService(store, nil, ledger.Config{}, nil),
		payouts: NewService(store, cache, Config{}),
	}
	ctx := context.Background()
	f.fund(t, 1, "500")

	p, err := f.payouts.Create(ctx, 1, dec("200"), nil)
	require.NoError(t, err)
	_, err = f.payouts.Approve(ctx, p.ID, "")
	require.NoError(t, err)

	done, err := f.payouts.Complete(ctx, p.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusCompleted, done.Status)
	assert.Equal(t, 1, cache.invalidations)

	wallet, err := f.ledger.GetWallet(ctx, 1)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(dec("300")))
}
