/*
Package ledger is the single choke point for wallet balance mutation.

Every balance-affecting event, whether an order earning, a payout debit, an
admin adjustment, or a reversal, flows through one code path: take the row
lock, compute the new balance, write it conditioned on the optimistic
version, and append an immutable transaction row carrying the balance
snapshot. The balance write and the log append commit or roll back together.

The wallet row is a cache of the log. Reconcile refolds the full log and
compares it against the cached balances; it must hold whenever the ledger
has been the only writer.

Usage:

	svc := ledger.NewService(store, cache, ledger.Config{}, nil)

	txn, err := svc.Credit(ctx, vendorID, amount, &orderID, "order earning")
	txn, err = svc.Debit(ctx, vendorID, amount, "payout completed", ref)
	ok, err := svc.Reconcile(ctx, vendorID)

Error handling:

  - errors.ErrInsufficientFunds: a debit or negative adjustment would drive
    a balance below zero; nothing is written.
  - errors.ErrConcurrentModification: version conflict that survived the
    internal retry budget.
  - errors.ErrWalletNotFound: read-only lookup on a vendor with no wallet;
    mutating operations create the wallet lazily instead.
  - errors.ErrStorage: persistence failure, surfaced without retry so the
    caller can apply its own retry or reconciliation policy.
*/
package ledger
