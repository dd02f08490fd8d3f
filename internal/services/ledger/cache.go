package ledger

import (
	"context"
	"errors"

	"vendra/internal/models"
)

var errCacheMiss = errors.New("cache miss")

// NoopCache satisfies Cache for tests and cacheless deployments.
type NoopCache struct{}

func (NoopCache) GetWallet(context.Context, uint) (*models.Wallet, error) { return nil, errCacheMiss }
func (NoopCache) SetWallet(context.Context, *models.Wallet) error         { return nil }
func (NoopCache) InvalidateWallet(context.Context, uint) error            { return nil }
