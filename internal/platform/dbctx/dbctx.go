package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// WithTx returns a copy of dbc bound to tx.
func (dbc Context) WithTx(tx *gorm.DB) Context {
	return Context{Ctx: dbc.Ctx, Tx: tx}
}

// DB returns the transaction when present, else fallback, scoped to dbc.Ctx.
func (dbc Context) DB(fallback *gorm.DB) *gorm.DB {
	tx := dbc.Tx
	if tx == nil {
		tx = fallback
	}
	if dbc.Ctx == nil {
		return tx
	}
	return tx.WithContext(dbc.Ctx)
}
