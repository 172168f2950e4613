// Package testsupport holds helpers shared by package tests.
package testsupport

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-translatable/internal/storage"
)

// NewSQLiteDB opens a private in-memory SQLite database named after the
// running test and applies the given schema functions. The handle is closed
// when the test finishes.
func NewSQLiteDB(t testing.TB, schema ...storage.SchemaFunc) *bun.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := storage.Open(storage.Config{
		Driver: storage.DriverSQLite,
		DSN:    "file:" + name + "?mode=memory&cache=shared&_fk=1",
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := storage.Migrate(ctx, db, schema...); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}
