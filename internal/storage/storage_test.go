package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
)

type widget struct {
	bun.BaseModel `bun:"table:widgets"`

	ID   int64  `bun:",pk,autoincrement"`
	Code string `bun:"code,notnull,unique"`
}

func TestNormalizeDriver(t *testing.T) {
	cases := map[string]string{
		"":           DriverSQLite,
		"SQLite":     DriverSQLite,
		"pgx":        DriverPostgres,
		"postgresql": DriverPostgres,
		"mysql":      "mysql",
	}
	for input, want := range cases {
		if got := NormalizeDriver(input); got != want {
			t.Fatalf("NormalizeDriver(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	if _, err := Open(Config{Driver: "sqlite3"}); !errors.Is(err, ErrDSNRequired) {
		t.Fatalf("expected ErrDSNRequired, got %v", err)
	}
	if _, err := Open(Config{Driver: "mysql", DSN: "root@/db"}); !errors.Is(err, ErrDriverUnsupported) {
		t.Fatalf("expected ErrDriverUnsupported, got %v", err)
	}
}

func TestMigrateAndUniqueViolation(t *testing.T) {
	ctx := context.Background()
	db, err := Open(Config{Driver: "sqlite", DSN: "file:storage_test?mode=memory&cache=shared&_fk=1"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	err = Migrate(ctx, db, func(ctx context.Context, idb bun.IDB) error {
		_, err := idb.NewCreateTable().Model((*widget)(nil)).IfNotExists().Exec(ctx)
		return err
	})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if _, err := db.NewInsert().Model(&widget{Code: "a"}).Exec(ctx); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err = db.NewInsert().Model(&widget{Code: "a"}).Exec(ctx)
	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
}

func TestMigrateRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db, err := Open(Config{DSN: "file:storage_rollback_test?mode=memory&cache=shared&_fk=1"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	boom := errors.New("boom")
	err = Migrate(ctx, db, func(ctx context.Context, idb bun.IDB) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestIsUniqueViolationPostgres(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	if !IsUniqueViolation(err) {
		t.Fatalf("expected pg unique violation to be detected")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("foreign key violation must not be reported as unique")
	}
	if IsUniqueViolation(sqlite3.Error{Code: sqlite3.ErrBusy}) {
		t.Fatalf("busy error must not be reported as unique")
	}
	if IsUniqueViolation(nil) {
		t.Fatalf("nil error must not be reported as unique")
	}
}
