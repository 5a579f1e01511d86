package persistence

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// withTx hands tx to repositories called further down with ctx
func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey{}, tx)
}

// txFrom returns the transaction bound by withTx, or fallback
func txFrom(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback
}
