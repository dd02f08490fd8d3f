package ledger

import (
	"context"
	"errors"

	errs "vendra/internal/errors"
	"vendra/internal/models"
	"vendra/internal/repositories"
)

// Apply runs one balance mutation against an already-open transactional
// store view: lock the wallet row, guard the new balance, write it
// conditioned on the version read under the lock, append the log row.
//
// The caller owns atomicity: tx must come from LedgerStore.InTransaction,
// which lets the payout service put a debit and a status flip in one commit.
func Apply(ctx context.Context, tx repositories.LedgerStore, op Operation) (*models.Transaction, error) {
	wallet, err := tx.GetWalletByVendorForUpdate(ctx, op.VendorID)
	if err != nil {
		if !errors.Is(err, errs.ErrWalletNotFound) {
			return nil, err
		}
		// First ledger operation for this vendor creates the wallet.
		wallet = &models.Wallet{VendorID: op.VendorID}
		if err := tx.CreateWallet(ctx, wallet); err != nil {
			return nil, err
		}
	}

	current := wallet.Balance
	if op.Status == models.TransactionStatusPending {
		current = wallet.PendingBalance
	}

	newBalance := current.Add(op.Amount)
	if newBalance.IsNegative() {
		return nil, errs.ErrInsufficientFunds
	}

	if op.Status == models.TransactionStatusPending {
		wallet.PendingBalance = newBalance
	} else {
		wallet.Balance = newBalance
	}

	// Lifetime counters are informational and monotonic: earnings count
	// when they become spendable, withdrawals by magnitude, reversals and
	// adjustments never.
	switch {
	case op.Type == models.TransactionTypeEarning && op.Status == models.TransactionStatusCompleted && op.Amount.IsPositive():
		wallet.TotalEarnings = wallet.TotalEarnings.Add(op.Amount)
	case op.Type == models.TransactionTypeWithdrawal && op.Amount.IsNegative():
		wallet.TotalWithdrawn = wallet.TotalWithdrawn.Add(op.Amount.Neg())
	}

	if err := tx.UpdateWallet(ctx, wallet, wallet.Version); err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		WalletID:        wallet.ID,
		Type:            op.Type,
		Status:          op.Status,
		Amount:          op.Amount,
		BalanceAfter:    newBalance,
		OrderID:         op.OrderID,
		ReferenceNumber: op.ReferenceNumber,
		Description:     op.Description,
	}
	if err := tx.AppendTransaction(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}
