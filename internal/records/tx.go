package records

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-translatable/internal/translations"
)

// TxRunner runs fn with record and entry stores whose writes commit or roll
// back together.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, records Repository, entries translations.Repository) error) error
}

// BunTxRunner binds the Bun record and entry repositories to one database
// transaction.
type BunTxRunner struct {
	db      *bun.DB
	records *BunRepository
	entries *translations.BunRepository
}

func NewBunTxRunner(db *bun.DB, records *BunRepository, entries *translations.BunRepository) *BunTxRunner {
	return &BunTxRunner{db: db, records: records, entries: entries}
}

func (r *BunTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context, records Repository, entries translations.Repository) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, r.records.WithTx(tx), r.entries.WithTx(tx))
	})
}
