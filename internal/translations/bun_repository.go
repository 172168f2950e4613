package translations

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

	"github.com/goliatone/go-translatable/internal/storage"
)

const (
	entryNamespace   = "translation_entry"
	uniqueEntryIndex = "ux_translation_entries_owner_attribute"
)

// NewEntryRepository builds the generic go-repository-bun repository for entries.
func NewEntryRepository(db *bun.DB) repository.Repository[*Entry] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Entry]{
		NewRecord: func() *Entry { return &Entry{} },
		GetID: func(e *Entry) uuid.UUID {
			return e.ID
		},
		SetID: func(e *Entry, id uuid.UUID) {
			e.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(e *Entry) string {
			if e == nil {
				return ""
			}
			return e.ID.String()
		},
	})
}

// CreateSchema creates the entries table and the unique owner/attribute index.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	if _, err := db.NewCreateTable().Model((*Entry)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("translations: create table: %w", err)
	}
	if _, err := db.NewCreateIndex().
		Model((*Entry)(nil)).
		Unique().
		Index(uniqueEntryIndex).
		Column("owner_type", "owner_id", "attribute_name").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("translations: create unique index: %w", err)
	}
	return nil
}

// BunRepository persists entries with Bun. Reads go through go-repository-bun
// (optionally cached); the atomic upsert is a single INSERT ... ON CONFLICT
// statement backed by the unique index. db is either the database or a
// transaction from WithTx.
type BunRepository struct {
	db           bun.IDB
	repo         repository.Repository[*Entry]
	cacheService cache.CacheService
	cachePrefix  string
	now          func() time.Time
}

// NewBunRepository creates an entry repository without caching.
func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache creates an entry repository with read caching.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository {
	base := NewEntryRepository(db)
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = cachePrefix(entryNamespace)
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

// Create inserts entry, failing with ErrDuplicateEntry when its key is taken.
// The insert runs in its own transaction (a savepoint inside WithTx) so a
// collision leaves an enclosing transaction usable.
func (r *BunRepository) Create(ctx context.Context, entry *Entry) (*Entry, error) {
	if err := validateEntry(entry); err != nil {
		return nil, err
	}
	record := cloneEntry(entry)
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	now := r.now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	var created *Entry
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		created, err = r.repo.CreateTx(ctx, tx, record)
		return err
	})
	if err != nil {
		if repository.IsDuplicatedKey(err) || storage.IsUniqueViolation(err) {
			return nil, ErrDuplicateEntry
		}
		return nil, err
	}
	return created, nil
}

func (r *BunRepository) Update(ctx context.Context, entry *Entry) (*Entry, error) {
	if err := validateEntry(entry); err != nil {
		return nil, err
	}
	if _, err := r.GetByID(ctx, entry.ID); err != nil {
		return nil, err
	}
	record := cloneEntry(entry)
	record.UpdatedAt = r.now().UTC()

	updated, err := r.repo.UpdateTx(ctx, r.db, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns("text", "translator_id", "updated_at"),
	)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Upsert inserts the entry or, when the owner attribute already has one,
// overwrites its text and translator in the same statement.
func (r *BunRepository) Upsert(ctx context.Context, entry *Entry) (*Entry, error) {
	if err := validateEntry(entry); err != nil {
		return nil, err
	}
	record := cloneEntry(entry)
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	now := r.now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	if _, err := r.db.NewInsert().
		Model(record).
		On("CONFLICT (owner_type, owner_id, attribute_name) DO UPDATE").
		Set("text = EXCLUDED.text").
		Set("translator_id = EXCLUDED.translator_id").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("translations: upsert %s: %w", record.Key(), err)
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return r.GetByKey(ctx, record.Key())
}

func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return r.repo.DeleteTx(ctx, r.db, &Entry{ID: id})
}

func (r *BunRepository) DeleteByOwner(ctx context.Context, owner Owner) (int, error) {
	res, err := r.db.NewDelete().
		Model((*Entry)(nil)).
		Where("owner_type = ?", owner.Type).
		Where("owner_id = ?", owner.ID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("translations: delete owner entries: %w", err)
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	record, err := r.repo.GetByIDTx(ctx, r.db, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return record, nil
}

func (r *BunRepository) GetByKey(ctx context.Context, key Key) (*Entry, error) {
	record := &Entry{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.owner_type = ?", key.OwnerType).
		Where("?TableAlias.owner_id = ?", key.OwnerID).
		Where("?TableAlias.attribute_name = ?", key.Attribute).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "translation_entry", Key: key.String()}
		}
		return nil, err
	}
	return record, nil
}

func (r *BunRepository) ListByOwner(ctx context.Context, owner Owner) ([]*Entry, error) {
	records, _, err := r.repo.ListTx(ctx, r.db,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.owner_type = ?", owner.Type).
				Where("?TableAlias.owner_id = ?", owner.ID).
				OrderExpr("?TableAlias.attribute_name ASC")
		}),
	)
	return records, err
}

func (r *BunRepository) List(ctx context.Context, opts ListOptions) ([]*Entry, error) {
	records, _, err := r.repo.ListTx(ctx, r.db,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			if opts.OwnerType != "" {
				q = q.Where("?TableAlias.owner_type = ?", opts.OwnerType)
			}
			if opts.Verified != nil {
				if *opts.Verified {
					q = q.Where("?TableAlias.translator_id IS NOT NULL")
				} else {
					q = q.Where("?TableAlias.translator_id IS NULL")
				}
			}
			if opts.TranslatorID != nil {
				q = q.Where("?TableAlias.translator_id = ?", *opts.TranslatorID)
			}
			return q.OrderExpr("?TableAlias.owner_type ASC, ?TableAlias.owner_id ASC, ?TableAlias.attribute_name ASC")
		}),
	)
	return records, err
}

type coverageRow struct {
	OwnerID       uuid.UUID `bun:"owner_id"`
	AttributeName string    `bun:"attribute_name"`
	Text          string    `bun:"text"`
}

// Coverage loads owner/attribute pairs for ownerType in one query. Blank text
// is filtered here so whitespace rules match IsBlank on every dialect.
func (r *BunRepository) Coverage(ctx context.Context, ownerType string) (Coverage, error) {
	var rows []coverageRow
	if err := r.db.NewSelect().
		Model((*Entry)(nil)).
		Column("owner_id", "attribute_name", "text").
		Where("?TableAlias.owner_type = ?", ownerType).
		Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("translations: coverage %q: %w", ownerType, err)
	}
	out := Coverage{}
	for _, row := range rows {
		if IsBlank(row.Text) {
			continue
		}
		out.add(row.OwnerID, row.AttributeName)
	}
	return out, nil
}

// InvalidateCache drops cached reads after writes that bypass the cached repository.
func (r *BunRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) || errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Resource: "translation_entry", Key: key}
	}
	return fmt.Errorf("translation_entry repository error: %w", err)
}

func cachePrefix(namespace string) string {
	if namespace == "" {
		return ""
	}
	return namespace + cache.KeySeparator
}
