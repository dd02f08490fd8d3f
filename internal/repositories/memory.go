package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	errs "vendra/internal/errors"
	"vendra/internal/models"
)

// MemoryStore is an in-memory LedgerStore used by unit tests. Its
// InTransaction serializes all transactions behind one mutex and restores a
// snapshot on error, which is a strictly stronger guarantee than the
// per-row locking of the Postgres store.
type MemoryStore struct {
	mu   sync.Mutex
	data *memData
}

type memData struct {
	wallets      map[uint]*models.Wallet // keyed by vendor id
	transactions []models.Transaction
	payouts      map[uint]*models.PayoutRequest
	nextWalletID uint
	nextTxnID    uint
	nextPayoutID uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: &memData{
		wallets:      make(map[uint]*models.Wallet),
		payouts:      make(map[uint]*models.PayoutRequest),
		nextWalletID: 1,
		nextTxnID:    1,
		nextPayoutID: 1,
	}}
}

func (d *memData) clone() *memData {
	c := &memData{
		wallets:      make(map[uint]*models.Wallet, len(d.wallets)),
		transactions: make([]models.Transaction, len(d.transactions)),
		payouts:      make(map[uint]*models.PayoutRequest, len(d.payouts)),
		nextWalletID: d.nextWalletID,
		nextTxnID:    d.nextTxnID,
		nextPayoutID: d.nextPayoutID,
	}
	for k, w := range d.wallets {
		cp := *w
		c.wallets[k] = &cp
	}
	copy(c.transactions, d.transactions)
	for k, p := range d.payouts {
		cp := *p
		c.payouts[k] = &cp
	}
	return c
}

func (m *MemoryStore) InTransaction(ctx context.Context, fn func(tx LedgerStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := m.data.clone()
	if err := fn(&memTx{data: m.data}); err != nil {
		m.data = snapshot
		return err
	}
	return nil
}

func (m *MemoryStore) locked(fn func(tx *memTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&memTx{data: m.data})
}

// memTx operates on shared data while the owning MemoryStore holds the lock.
type memTx struct {
	data *memData
}

// Nested transactions share the outer snapshot.
func (t *memTx) InTransaction(ctx context.Context, fn func(tx LedgerStore) error) error {
	return fn(t)
}

func (t *memTx) GetWalletByVendor(ctx context.Context, vendorID uint) (*models.Wallet, error) {
	w, ok := t.data.wallets[vendorID]
	if !ok {
		return nil, errs.ErrWalletNotFound
	}
	cp := *w
	return &cp, nil
}

func (t *memTx) GetWalletByVendorForUpdate(ctx context.Context, vendorID uint) (*models.Wallet, error) {
	return t.GetWalletByVendor(ctx, vendorID)
}

func (t *memTx) CreateWallet(ctx context.Context, wallet *models.Wallet) error {
	wallet.ID = t.data.nextWalletID
	t.data.nextWalletID++
	now := time.Now()
	wallet.CreatedAt = now
	wallet.UpdatedAt = now
	cp := *wallet
	t.data.wallets[wallet.VendorID] = &cp
	return nil
}

func (t *memTx) UpdateWallet(ctx context.Context, wallet *models.Wallet, expectedVersion int64) error {
	stored, ok := t.data.wallets[wallet.VendorID]
	if !ok || stored.Version != expectedVersion {
		return errs.ErrConcurrentModification
	}
	stored.Balance = wallet.Balance
	stored.PendingBalance = wallet.PendingBalance
	stored.TotalEarnings = wallet.TotalEarnings
	stored.TotalWithdrawn = wallet.TotalWithdrawn
	stored.Version = expectedVersion + 1
	stored.UpdatedAt = time.Now()
	wallet.Version = stored.Version
	return nil
}

func (t *memTx) SetWalletHidden(ctx context.Context, vendorID uint, hidden bool) error {
	w, ok := t.data.wallets[vendorID]
	if !ok {
		return errs.ErrWalletNotFound
	}
	w.Hidden = hidden
	return nil
}

func (t *memTx) ListWallets(ctx context.Context, filter WalletFilter) ([]models.Wallet, int64, error) {
	var all []models.Wallet
	for _, w := range t.data.wallets {
		if filter.VendorID != 0 && w.VendorID != filter.VendorID {
			continue
		}
		if !filter.IncludeHidden && w.Hidden {
			continue
		}
		all = append(all, *w)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].VendorID < all[j].VendorID })
	total := int64(len(all))
	all = page(all, filter.Offset, clampLimit(filter.Limit))
	return all, total, nil
}

func (t *memTx) AppendTransaction(ctx context.Context, txn *models.Transaction) error {
	txn.ID = t.data.nextTxnID
	t.data.nextTxnID++
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}
	t.data.transactions = append(t.data.transactions, *txn)
	return nil
}

func (t *memTx) GetTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	for i := range t.data.transactions {
		if t.data.transactions[i].ID == id {
			cp := t.data.transactions[i]
			return &cp, nil
		}
	}
	return nil, errs.ErrTransactionNotFound
}

func (t *memTx) ListTransactions(ctx context.Context, filter TransactionFilter) ([]models.Transaction, string, error) {
	if filter.VendorID != 0 && filter.WalletID == 0 {
		w, ok := t.data.wallets[filter.VendorID]
		if !ok {
			return []models.Transaction{}, "", nil
		}
		filter.WalletID = w.ID
	}
	lastID, err := decodeCursor(filter.Cursor)
	if err != nil {
		return nil, "", errs.ErrInvalidCursor.WithCause(err)
	}

	var matched []models.Transaction
	for _, txn := range t.data.transactions {
		if filter.WalletID != 0 && txn.WalletID != filter.WalletID {
			continue
		}
		if filter.Type != "" && txn.Type != filter.Type {
			continue
		}
		if filter.Status != "" && txn.Status != filter.Status {
			continue
		}
		if filter.From != nil && txn.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && txn.CreatedAt.After(*filter.To) {
			continue
		}
		if lastID != 0 && txn.ID >= lastID {
			continue
		}
		matched = append(matched, txn)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	limit := clampLimit(filter.Limit)
	next := ""
	if len(matched) > limit {
		matched = matched[:limit]
		next = encodeCursor(matched[limit-1].ID)
	}
	return matched, next, nil
}

func (t *memTx) SumTransactions(ctx context.Context, walletID uint, status string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, txn := range t.data.transactions {
		if txn.WalletID == walletID && txn.Status == status {
			sum = sum.Add(txn.Amount)
		}
	}
	return sum, nil
}

func (t *memTx) LastTransaction(ctx context.Context, walletID uint, status string) (*models.Transaction, error) {
	for i := len(t.data.transactions) - 1; i >= 0; i-- {
		if t.data.transactions[i].WalletID == walletID && t.data.transactions[i].Status == status {
			cp := t.data.transactions[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (t *memTx) CreatePayout(ctx context.Context, payout *models.PayoutRequest) error {
	payout.ID = t.data.nextPayoutID
	t.data.nextPayoutID++
	if payout.RequestedAt.IsZero() {
		payout.RequestedAt = time.Now()
	}
	cp := *payout
	t.data.payouts[payout.ID] = &cp
	return nil
}

func (t *memTx) GetPayout(ctx context.Context, id uint) (*models.PayoutRequest, error) {
	p, ok := t.data.payouts[id]
	if !ok {
		return nil, errs.ErrPayoutNotFound
	}
	cp := *p
	return &cp, nil
}

func (t *memTx) GetPayoutForUpdate(ctx context.Context, id uint) (*models.PayoutRequest, error) {
	return t.GetPayout(ctx, id)
}

func (t *memTx) SavePayout(ctx context.Context, payout *models.PayoutRequest) error {
	cp := *payout
	t.data.payouts[payout.ID] = &cp
	return nil
}

func (t *memTx) ListPayouts(ctx context.Context, filter PayoutFilter) ([]models.PayoutRequest, int64, error) {
	var all []models.PayoutRequest
	for _, p := range t.data.payouts {
		if filter.VendorID != 0 && p.VendorID != filter.VendorID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].RequestedAt.After(all[j].RequestedAt) })
	total := int64(len(all))
	all = page(all, filter.Offset, clampLimit(filter.Limit))
	return all, total, nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

// Every non-transactional call still runs under the store mutex.

func (m *MemoryStore) GetWalletByVendor(ctx context.Context, vendorID uint) (w *models.Wallet, err error) {
	err = m.locked(func(tx *memTx) error { w, err = tx.GetWalletByVendor(ctx, vendorID); return err })
	return
}

func (m *MemoryStore) GetWalletByVendorForUpdate(ctx context.Context, vendorID uint) (w *models.Wallet, err error) {
	err = m.locked(func(tx *memTx) error { w, err = tx.GetWalletByVendorForUpdate(ctx, vendorID); return err })
	return
}

func (m *MemoryStore) CreateWallet(ctx context.Context, wallet *models.Wallet) error {
	return m.locked(func(tx *memTx) error { return tx.CreateWallet(ctx, wallet) })
}

func (m *MemoryStore) UpdateWallet(ctx context.Context, wallet *models.Wallet, expectedVersion int64) error {
	return m.locked(func(tx *memTx) error { return tx.UpdateWallet(ctx, wallet, expectedVersion) })
}

func (m *MemoryStore) SetWalletHidden(ctx context.Context, vendorID uint, hidden bool) error {
	return m.locked(func(tx *memTx) error { return tx.SetWalletHidden(ctx, vendorID, hidden) })
}

func (m *MemoryStore) ListWallets(ctx context.Context, filter WalletFilter) (ws []models.Wallet, total int64, err error) {
	err = m.locked(func(tx *memTx) error { ws, total, err = tx.ListWallets(ctx, filter); return err })
	return
}

func (m *MemoryStore) AppendTransaction(ctx context.Context, txn *models.Transaction) error {
	return m.locked(func(tx *memTx) error { return tx.AppendTransaction(ctx, txn) })
}

func (m *MemoryStore) GetTransaction(ctx context.Context, id uint) (txn *models.Transaction, err error) {
	err = m.locked(func(tx *memTx) error { txn, err = tx.GetTransaction(ctx, id); return err })
	return
}

func (m *MemoryStore) ListTransactions(ctx context.Context, filter TransactionFilter) (txns []models.Transaction, next string, err error) {
	err = m.locked(func(tx *memTx) error { txns, next, err = tx.ListTransactions(ctx, filter); return err })
	return
}

func (m *MemoryStore) SumTransactions(ctx context.Context, walletID uint, status string) (sum decimal.Decimal, err error) {
	err = m.locked(func(tx *memTx) error { sum, err = tx.SumTransactions(ctx, walletID, status); return err })
	return
}

func (m *MemoryStore) LastTransaction(ctx context.Context, walletID uint, status string) (txn *models.Transaction, err error) {
	err = m.locked(func(tx *memTx) error { txn, err = tx.LastTransaction(ctx, walletID, status); return err })
	return
}

func (m *MemoryStore) CreatePayout(ctx context.Context, payout *models.PayoutRequest) error {
	return m.locked(func(tx *memTx) error { return tx.CreatePayout(ctx, payout) })
}

func (m *MemoryStore) GetPayout(ctx context.Context, id uint) (p *models.PayoutRequest, err error) {
	err = m.locked(func(tx *memTx) error { p, err = tx.GetPayout(ctx, id); return err })
	return
}

func (m *MemoryStore) GetPayoutForUpdate(ctx context.Context, id uint) (p *models.PayoutRequest, err error) {
	err = m.locked(func(tx *memTx) error { p, err = tx.GetPayoutForUpdate(ctx, id); return err })
	return
}

func (m *MemoryStore) SavePayout(ctx context.Context, payout *models.PayoutRequest) error {
	return m.locked(func(tx *memTx) error { return tx.SavePayout(ctx, payout) })
}

func (m *MemoryStore) ListPayouts(ctx context.Context, filter PayoutFilter) (ps []models.PayoutRequest, total int64, err error) {
	err = m.locked(func(tx *memTx) error { ps, total, err = tx.ListPayouts(ctx, filter); return err })
	return
}
