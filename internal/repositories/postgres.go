package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	errs "vendra/internal/errors"
	"vendra/internal/models"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type gormStore struct {
	db *gorm.DB
}

// NewGormStore wraps a gorm connection (or an open gorm transaction) as a
// LedgerStore.
func NewGormStore(db *gorm.DB) LedgerStore {
	return &gormStore{db: db}
}

func (s *gormStore) InTransaction(ctx context.Context, fn func(tx LedgerStore) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
	if err == nil {
		return nil
	}
	var domainErr *errs.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return errs.ErrStorage.WithCause(err)
}

func (s *gormStore) GetWalletByVendor(ctx context.Context, vendorID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := s.db.WithContext(ctx).Where("vendor_id = ?", vendorID).First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrWalletNotFound
		}
		return nil, errs.ErrStorage.WithCause(err)
	}
	return &wallet, nil
}

// GetWalletByVendorForUpdate takes a row-level lock (SELECT ... FOR UPDATE)
// held until the enclosing transaction commits. Operations on different
// vendors never contend; two on the same vendor serialize here.
func (s *gormStore) GetWalletByVendorForUpdate(ctx context.Context, vendorID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("vendor_id = ?", vendorID).
		First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrWalletNotFound
		}
		return nil, errs.ErrStorage.WithCause(err)
	}
	return &wallet, nil
}

func (s *gormStore) CreateWallet(ctx context.Context, wallet *models.Wallet) error {
	if err := s.db.WithContext(ctx).Create(wallet).Error; err != nil {
		// Two first-ever operations for the same vendor can both read
		// not-found before either insert commits; the loser then hits the
		// vendor_id unique index. Surface that as a version conflict so
		// the retry re-reads the winner's committed row.
		if isUniqueViolation(err) {
			return errs.ErrConcurrentModification
		}
		return errs.ErrStorage.WithCause(err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *gormStore) UpdateWallet(ctx context.Context, wallet *models.Wallet, expectedVersion int64) error {
	res := s.db.WithContext(ctx).Model(&models.Wallet{}).
		Where("id = ? AND version = ?", wallet.ID, expectedVersion).
		Updates(map[string]interface{}{
			"balance":         wallet.Balance,
			"pending_balance": wallet.PendingBalance,
			"total_earnings":  wallet.TotalEarnings,
			"total_withdrawn": wallet.TotalWithdrawn,
			"version":         expectedVersion + 1,
		})
	if res.Error != nil {
		return errs.ErrStorage.WithCause(res.Error)
	}
	// The caller holds the row lock, so zero rows affected means the version
	// moved between its read and this write.
	if res.RowsAffected == 0 {
		return errs.ErrConcurrentModification
	}
	wallet.Version = expectedVersion + 1
	return nil
}

func (s *gormStore) SetWalletHidden(ctx context.Context, vendorID uint, hidden bool) error {
	res := s.db.WithContext(ctx).Model(&models.Wallet{}).
		Where("vendor_id = ?", vendorID).
		Update("hidden", hidden)
	if res.Error != nil {
		return errs.ErrStorage.WithCause(res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.ErrWalletNotFound
	}
	return nil
}

func (s *gormStore) ListWallets(ctx context.Context, filter WalletFilter) ([]models.Wallet, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Wallet{})
	if filter.VendorID != 0 {
		q = q.Where("vendor_id = ?", filter.VendorID)
	}
	if !filter.IncludeHidden {
		q = q.Where("hidden = false")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errs.ErrStorage.WithCause(err)
	}

	var wallets []models.Wallet
	err := q.Order("vendor_id").Offset(filter.Offset).Limit(clampLimit(filter.Limit)).Find(&wallets).Error
	if err != nil {
		return nil, 0, errs.ErrStorage.WithCause(err)
	}
	return wallets, total, nil
}

func (s *gormStore) AppendTransaction(ctx context.Context, txn *models.Transaction) error {
	if err := s.db.WithContext(ctx).Create(txn).Error; err != nil {
		return errs.ErrStorage.WithCause(err)
	}
	return nil
}

func (s *gormStore) GetTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.db.WithContext(ctx).First(&txn, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTransactionNotFound
		}
		return nil, errs.ErrStorage.WithCause(err)
	}
	return &txn, nil
}

func (s *gormStore) ListTransactions(ctx context.Context, filter TransactionFilter) ([]models.Transaction, string, error) {
	q := s.db.WithContext(ctx).Model(&models.Transaction{})

	if filter.VendorID != 0 && filter.WalletID == 0 {
		wallet, err := s.GetWalletByVendor(ctx, filter.VendorID)
		if err != nil {
			if errors.Is(err, errs.ErrWalletNotFound) {
				return []models.Transaction{}, "", nil
			}
			return nil, "", err
		}
		filter.WalletID = wallet.ID
	}
	if filter.WalletID != 0 {
		q = q.Where("wallet_id = ?", filter.WalletID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}

	lastID, err := decodeCursor(filter.Cursor)
	if err != nil {
		return nil, "", errs.ErrInvalidCursor.WithCause(err)
	}
	if lastID != 0 {
		q = q.Where("id < ?", lastID)
	}

	limit := clampLimit(filter.Limit)
	var txns []models.Transaction
	if err := q.Order("id DESC").Limit(limit + 1).Find(&txns).Error; err != nil {
		return nil, "", errs.ErrStorage.WithCause(err)
	}

	next := ""
	if len(txns) > limit {
		txns = txns[:limit]
		next = encodeCursor(txns[limit-1].ID)
	}
	return txns, next, nil
}

func (s *gormStore) SumTransactions(ctx context.Context, walletID uint, status string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("wallet_id = ? AND status = ?", walletID, status).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, errs.ErrStorage.WithCause(err)
	}
	return sum, nil
}

// LastTransaction returns the newest row in the given bucket, or nil when
// the wallet has none.
func (s *gormStore) LastTransaction(ctx context.Context, walletID uint, status string) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.db.WithContext(ctx).
		Where("wallet_id = ? AND status = ?", walletID, status).
		Order("id DESC").
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errs.ErrStorage.WithCause(err)
	}
	return &txn, nil
}

func (s *gormStore) CreatePayout(ctx context.Context, payout *models.PayoutRequest) error {
	if err := s.db.WithContext(ctx).Create(payout).Error; err != nil {
		return errs.ErrStorage.WithCause(err)
	}
	return nil
}

func (s *gormStore) GetPayout(ctx context.Context, id uint) (*models.PayoutRequest, error) {
	var payout models.PayoutRequest
	err := s.db.WithContext(ctx).First(&payout, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrPayoutNotFound
		}
		return nil, errs.ErrStorage.WithCause(err)
	}
	return &payout, nil
}

func (s *gormStore) GetPayoutForUpdate(ctx context.Context, id uint) (*models.PayoutRequest, error) {
	var payout models.PayoutRequest
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&payout, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrPayoutNotFound
		}
		return nil, errs.ErrStorage.WithCause(err)
	}
	return &payout, nil
}

func (s *gormStore) SavePayout(ctx context.Context, payout *models.PayoutRequest) error {
	if err := s.db.WithContext(ctx).Save(payout).Error; err != nil {
		return errs.ErrStorage.WithCause(err)
	}
	return nil
}

func (s *gormStore) ListPayouts(ctx context.Context, filter PayoutFilter) ([]models.PayoutRequest, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.PayoutRequest{})
	if filter.VendorID != 0 {
		q = q.Where("vendor_id = ?", filter.VendorID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errs.ErrStorage.WithCause(err)
	}

	var payouts []models.PayoutRequest
	err := q.Order("requested_at DESC").Offset(filter.Offset).Limit(clampLimit(filter.Limit)).Find(&payouts).Error
	if err != nil {
		return nil, 0, errs.ErrStorage.WithCause(err)
	}
	return payouts, total, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultPageLimit
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}
	return limit
}
