package records

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	t.Run("CreateGetList", func(t *testing.T) { contractCreateGetList(t, newRepo(t)) })
	t.Run("UpdateKeepsLocaleAndFlag", func(t *testing.T) { contractUpdateKeepsLocaleAndFlag(t, newRepo(t)) })
	t.Run("SetAssociationsTranslated", func(t *testing.T) { contractSetAssociationsTranslated(t, newRepo(t)) })
	t.Run("Delete", func(t *testing.T) { contractDelete(t, newRepo(t)) })
}

func contractCreateGetList(t *testing.T, repo Repository) {
	ctx := context.Background()
	chair := uuid.New()

	record := NewRecord("Item", map[string]string{"name": "Chair", "description": ""})
	record.Locale = "en"
	record.SetOne("chair", chair)
	record.SetMany("tags", uuid.New(), uuid.New())

	created, err := repo.Create(ctx, record)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatalf("expected id to be assigned")
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Native("name") != "Chair" || got.Locale != "en" {
		t.Fatalf("unexpected record %+v", got)
	}
	rel, ok := got.Relation("chair")
	if !ok || rel.Kind != RelationOne || len(rel.IDs) != 1 || rel.IDs[0] != chair {
		t.Fatalf("unexpected chair relation %+v", rel)
	}
	if tags, _ := got.Relation("tags"); len(tags.IDs) != 2 {
		t.Fatalf("expected two tags, got %+v", tags)
	}
	if got.AssociationsTranslated != nil {
		t.Fatalf("expected nil association flag on create")
	}

	if _, err := repo.Create(ctx, NewRecord("Chair", map[string]string{"name": "Seat"})); err != nil {
		t.Fatalf("create chair: %v", err)
	}
	items, err := repo.ListByType(ctx, "Item")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].ID != created.ID {
		t.Fatalf("expected only the item record, got %d", len(items))
	}
	if _, err := repo.GetByID(ctx, uuid.New()); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func contractUpdateKeepsLocaleAndFlag(t *testing.T, repo Repository) {
	ctx := context.Background()
	record := NewRecord("Item", map[string]string{"name": "Chair"})
	record.Locale = "en"
	created, err := repo.Create(ctx, record)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	flag := true
	if err := repo.SetAssociationsTranslated(ctx, created.ID, &flag); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	created.Locale = "fr"
	created.AssociationsTranslated = nil
	created.SetNative("name", "Stool")
	if _, err := repo.Update(ctx, created); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Native("name") != "Stool" {
		t.Fatalf("expected attribute update, got %q", got.Native("name"))
	}
	if got.Locale != "en" {
		t.Fatalf("locale must be fixed at creation, got %q", got.Locale)
	}
	if got.AssociationsTranslated == nil || !*got.AssociationsTranslated {
		t.Fatalf("update must not touch the association flag")
	}

	missing := NewRecord("Item", nil)
	missing.ID = uuid.New()
	if _, err := repo.Update(ctx, missing); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func contractSetAssociationsTranslated(t *testing.T, repo Repository) {
	ctx := context.Background()
	created, err := repo.Create(ctx, NewRecord("Item", map[string]string{"name": "Chair"}))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	before, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get before: %v", err)
	}

	flag := false
	if err := repo.SetAssociationsTranslated(ctx, created.ID, &flag); err != nil {
		t.Fatalf("set false: %v", err)
	}
	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AssociationsTranslated == nil || *got.AssociationsTranslated {
		t.Fatalf("expected flag false, got %v", got.AssociationsTranslated)
	}
	if !got.UpdatedAt.Equal(before.UpdatedAt) {
		t.Fatalf("bypass write must not bump updated_at")
	}

	if err := repo.SetAssociationsTranslated(ctx, created.ID, nil); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, err = repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AssociationsTranslated != nil {
		t.Fatalf("expected cleared flag")
	}

	if err := repo.SetAssociationsTranslated(ctx, uuid.New(), &flag); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func contractDelete(t *testing.T, repo Repository) {
	ctx := context.Background()
	created, err := repo.Create(ctx, NewRecord("Item", map[string]string{"name": "Chair"}))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, created.ID); !IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := repo.Delete(ctx, created.ID); !IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
