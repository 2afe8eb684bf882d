package repositories

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

type gormTxManager struct {
	db *gorm.DB
}

// NewTxManager creates a GORM-backed transaction manager
func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

// Do opens a transaction and calls fn with the transaction handle stored
// in the context. Commit happens iff fn returns nil; a panic or error
// rolls back unconditionally.
func (m *gormTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFor returns the transaction handle carried by ctx, falling back to the
// repository's own handle outside a transaction.
func dbFor(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
