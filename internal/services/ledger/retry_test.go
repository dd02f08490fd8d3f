package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "vendra/internal/errors"
	"vendra/internal/models"
	"vendra/internal/repositories"
)

// conflictStore wraps a real store and makes the next n wallet updates
// fail with a version conflict.
type conflictStore struct {
	repositories.LedgerStore

	mu       sync.Mutex
	failures int
	updates  int
}

func (s *conflictStore) InTransaction(ctx context.Context, fn func(tx repositories.LedgerStore) error) error {
	return s.LedgerStore.InTransaction(ctx, func(tx repositories.LedgerStore) error {
		return fn(&conflictTx{LedgerStore: tx, owner: s})
	})
}

type conflictTx struct {
	repositories.LedgerStore
	owner *conflictStore
}

func (t *conflictTx) UpdateWallet(ctx context.Context, wallet *models.Wallet, expectedVersion int64) error {
	t.owner.mu.Lock()
	t.owner.updates++
	fail := t.owner.failures > 0
	if fail {
		t.owner.failures--
	}
	t.owner.mu.Unlock()

	if fail {
		return errs.ErrConcurrentModification
	}
	return t.LedgerStore.UpdateWallet(ctx, wallet, expectedVersion)
}

func TestRetry_RecoversFromVersionConflict(t *testing.T) {
	store := &conflictStore{LedgerStore: repositories.NewMemoryStore(), failures: 2}
	svc := NewService(store, nil, Config{MaxRetries: 3, RetryBackoff: 1}, nil)

	txn, err := svc.Credit(context.Background(), 1, dec("100"), nil, "earning")
	require.NoError(t, err)
	assert.True(t, txn.BalanceAfter.Equal(dec("100")))
	assert.Equal(t, 3, store.updates)

	wallet, err := svc.GetWallet(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(dec("100")))
}

func TestRetry_ExhaustsBudget(t *testing.T) {
	store := &conflictStore{LedgerStore: repositories.NewMemoryStore(), failures: 100}
	svc := NewService(store, nil, Config{MaxRetries: 3, RetryBackoff: 1}, nil)

	_, err := svc.Credit(context.Background(), 1, dec("100"), nil, "earning")
	assert.ErrorIs(t, err, errs.ErrConcurrentModification)
	assert.Equal(t, 3, store.updates)

	// The rolled-back attempts must not have leaked any state.
	_, err = svc.GetWallet(context.Background(), 1)
	assert.ErrorIs(t, err, errs.ErrWalletNotFound)
}

// storageStore fails every wallet update with a non-retryable error.
type storageStore struct {
	repositories.LedgerStore

	mu      sync.Mutex
	updates int
}

func (s *storageStore) InTransaction(ctx context.Context, fn func(tx repositories.LedgerStore) error) error {
	return s.LedgerStore.InTransaction(ctx, func(tx repositories.LedgerStore) error {
		return fn(&storageTx{LedgerStore: tx, owner: s})
	})
}

type storageTx struct {
	repositories.LedgerStore
	owner *storageStore
}

func (t *storageTx) UpdateWallet(ctx context.Context, wallet *models.Wallet, expectedVersion int64) error {
	t.owner.mu.Lock()
	t.owner.updates++
	t.owner.mu.Unlock()
	return errs.ErrStorage
}

func TestRetry_StorageErrorsAreNotRetried(t *testing.T) {
	store := &storageStore{LedgerStore: repositories.NewMemoryStore()}
	svc := NewService(store, nil, Config{MaxRetries: 5, RetryBackoff: 1}, nil)

	_, err := svc.Credit(context.Background(), 1, dec("100"), nil, "earning")
	assert.ErrorIs(t, err, errs.ErrStorage)
	assert.Equal(t, 1, store.updates)
}

// raceStore makes the first wallet insert fail the way the Postgres store
// reports a lost creation race: another writer committed the vendor's
// wallet between the not-found read and the insert.
type raceStore struct {
	repositories.LedgerStore

	mu      sync.Mutex
	raced   bool
	creates int
}

func (s *raceStore) InTransaction(ctx context.Context, fn func(tx repositories.LedgerStore) error) error {
	return s.LedgerStore.InTransaction(ctx, func(tx repositories.LedgerStore) error {
		return fn(&raceTx{LedgerStore: tx, owner: s})
	})
}

type raceTx struct {
	repositories.LedgerStore
	owner *raceStore
}

func (t *raceTx) CreateWallet(ctx context.Context, wallet *models.Wallet) error {
	t.owner.mu.Lock()
	t.owner.creates++
	lost := !t.owner.raced
	t.owner.raced = true
	t.owner.mu.Unlock()

	if lost {
		return errs.ErrConcurrentModification
	}
	return t.LedgerStore.CreateWallet(ctx, wallet)
}

func TestRetry_RecoversFromWalletCreationRace(t *testing.T) {
	store := &raceStore{LedgerStore: repositories.NewMemoryStore()}
	svc := NewService(store, nil, Config{MaxRetries: 3, RetryBackoff: 1}, nil)

	txn, err := svc.Credit(context.Background(), 1, dec("100"), nil, "earning")
	require.NoError(t, err)
	assert.True(t, txn.BalanceAfter.Equal(dec("100")))
	assert.Equal(t, 2, store.creates)

	wallet, err := svc.GetWallet(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(dec("100")))

	wallets, total, err := svc.ListWallets(context.Background(), repositories.WalletFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, wallets, 1)
}
