package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const recordNamespace = "translatable_record"

// NewRecordRepository builds the generic go-repository-bun repository for records.
func NewRecordRepository(db *bun.DB) repository.Repository[*Record] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Record]{
		NewRecord: func() *Record { return &Record{} },
		GetID: func(r *Record) uuid.UUID {
			return r.ID
		},
		SetID: func(r *Record, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(r *Record) string {
			if r == nil {
				return ""
			}
			return r.ID.String()
		},
	})
}

// CreateSchema creates the records table and its type index.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	if _, err := db.NewCreateTable().Model((*Record)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("records: create table: %w", err)
	}
	if _, err := db.NewCreateIndex().
		Model((*Record)(nil)).
		Index("ix_translatable_records_type").
		Column("type").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("records: create type index: %w", err)
	}
	return nil
}

// BunRepository implements Repository with optional caching.
type BunRepository struct {
	db           bun.IDB
	repo         repository.Repository[*Record]
	cacheService cache.CacheService
	cachePrefix  string
	now          func() time.Time
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository {
	base := NewRecordRepository(db)
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = recordNamespace + cache.KeySeparator
	}
	return &BunRepository{
		db:           db,
		repo:         base,
		cacheService: svc,
		cachePrefix:  prefix,
		now:          time.Now,
	}
}

// WithTx returns a copy of the repository that runs every statement on tx.
func (r *BunRepository) WithTx(tx bun.IDB) *BunRepository {
	clone := *r
	clone.db = tx
	return &clone
}

func (r *BunRepository) Create(ctx context.Context, record *Record) (*Record, error) {
	if record == nil {
		return nil, ErrRecordRequired
	}
	stored := cloneRecord(record)
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	now := r.now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	return r.repo.CreateTx(ctx, r.db, stored)
}

func (r *BunRepository) Update(ctx context.Context, record *Record) (*Record, error) {
	if record == nil {
		return nil, ErrRecordRequired
	}
	current, err := r.GetByID(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	next := cloneRecord(record)
	next.UpdatedAt = r.now().UTC()
	if _, err := r.repo.UpdateTx(ctx, r.db, next,
		repository.UpdateByID(next.ID.String()),
		repository.UpdateColumns("attributes", "relations", "updated_at"),
	); err != nil {
		return nil, err
	}
	current.Attributes = next.Attributes
	current.Relations = next.Relations
	current.UpdatedAt = next.UpdatedAt
	return current, nil
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	record, err := r.repo.GetByIDTx(ctx, r.db, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id)
	}
	return record, nil
}

func (r *BunRepository) ListByType(ctx context.Context, recordType string) ([]*Record, error) {
	records, _, err := r.repo.ListTx(ctx, r.db,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.type = ?", recordType).
				OrderExpr("?TableAlias.created_at ASC, ?TableAlias.id ASC")
		}),
	)
	return records, err
}

func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return r.repo.DeleteTx(ctx, r.db, &Record{ID: id})
}

// SetAssociationsTranslated writes only the cached flag, bypassing the update
// pipeline and leaving updated_at untouched.
func (r *BunRepository) SetAssociationsTranslated(ctx context.Context, id uuid.UUID, value *bool) error {
	res, err := r.db.NewUpdate().
		Model((*Record)(nil)).
		Set("associations_translated = ?", value).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("records: set associations_translated: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return notFound(id)
	}
	return r.InvalidateCache(ctx)
}

func (r *BunRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func mapRepositoryError(err error, id uuid.UUID) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) || errors.Is(err, sql.ErrNoRows) {
		return notFound(id)
	}
	return fmt.Errorf("record repository error: %w", err)
}
