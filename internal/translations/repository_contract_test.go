package translations

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
)

type repoFactory func(t *testing.T) Repository

func runRepositoryContract(t *testing.T, newRepo repoFactory) {
	t.Run("CreateAndLookup", func(t *testing.T) { contractCreateAndLookup(t, newRepo(t)) })
	t.Run("UpsertLastWriterWins", func(t *testing.T) { contractUpsertLastWriterWins(t, newRepo(t)) })
	t.Run("UpsertBlankLeavesPrior", func(t *testing.T) { contractUpsertBlankLeavesPrior(t, newRepo(t)) })
	t.Run("UpsertConcurrent", func(t *testing.T) { contractUpsertConcurrent(t, newRepo(t)) })
	t.Run("UpdateAndDelete", func(t *testing.T) { contractUpdateAndDelete(t, newRepo(t)) })
	t.Run("DeleteByOwner", func(t *testing.T) { contractDeleteByOwner(t, newRepo(t)) })
	t.Run("ListFilters", func(t *testing.T) { contractListFilters(t, newRepo(t)) })
	t.Run("Coverage", func(t *testing.T) { contractCoverage(t, newRepo(t)) })
}

func contractCreateAndLookup(t *testing.T, repo Repository) {
	ctx := context.Background()
	owner := uuid.New()

	created, err := repo.Create(ctx, &Entry{OwnerType: "Item", OwnerID: owner, AttributeName: "name", Text: "Chaise"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatalf("expected id to be assigned")
	}
	if created.Verified() {
		t.Fatalf("entry without translator must be unverified")
	}

	byID, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Text != "Chaise" {
		t.Fatalf("expected text Chaise, got %q", byID.Text)
	}

	byKey, err := repo.GetByKey(ctx, Key{OwnerType: "Item", OwnerID: owner, Attribute: "name"})
	if err != nil {
		t.Fatalf("get by key: %v", err)
	}
	if byKey.ID != created.ID {
		t.Fatalf("expected key lookup to return %s, got %s", created.ID, byKey.ID)
	}

	if _, err := repo.Create(ctx, &Entry{OwnerType: "Item", OwnerID: owner, AttributeName: "name", Text: "Siège"}); !errors.Is(err, ErrDuplicateEntry) {
		t.Fatalf("expected ErrDuplicateEntry, got %v", err)
	}

	if _, err := repo.GetByKey(ctx, Key{OwnerType: "Item", OwnerID: owner, Attribute: "description"}); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := repo.GetByID(ctx, uuid.New()); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func contractUpsertLastWriterWins(t *testing.T, repo Repository) {
	ctx := context.Background()
	owner := uuid.New()
	first := uuid.New()
	second := uuid.New()

	if _, err := repo.Upsert(ctx, &Entry{OwnerType: "T", OwnerID: owner, AttributeName: "title", Text: "Bonjour", TranslatorID: &first}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	stored, err := repo.Upsert(ctx, &Entry{OwnerType: "T", OwnerID: owner, AttributeName: "title", Text: "Salut", TranslatorID: &second})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	entries, err := repo.ListByOwner(ctx, Owner{Type: "T", ID: owner})
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one entry, got %d", len(entries))
	}
	got := entries[0]
	if got.Text != "Salut" {
		t.Fatalf("expected text Salut, got %q", got.Text)
	}
	if got.TranslatorID == nil || *got.TranslatorID != second {
		t.Fatalf("expected translator %s, got %v", second, got.TranslatorID)
	}
	if stored.ID != got.ID {
		t.Fatalf("expected upsert to return the stored entry")
	}
}

func contractUpsertBlankLeavesPrior(t *testing.T, repo Repository) {
	ctx := context.Background()
	owner := uuid.New()
	translator := uuid.New()

	if _, err := repo.Upsert(ctx, &Entry{OwnerType: "T", OwnerID: owner, AttributeName: "title", Text: "Bonjour", TranslatorID: &translator}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	_, err := repo.Upsert(ctx, &Entry{OwnerType: "T", OwnerID: owner, AttributeName: "title", Text: "   "})
	if !IsValidationError(err) {
		t.Fatalf("expected validation error for blank text, got %v", err)
	}

	got, err := repo.GetByKey(ctx, Key{OwnerType: "T", OwnerID: owner, Attribute: "title"})
	if err != nil {
		t.Fatalf("get by key: %v", err)
	}
	if got.Text != "Bonjour" {
		t.Fatalf("expected prior text to survive, got %q", got.Text)
	}
}

func contractUpsertConcurrent(t *testing.T, repo Repository) {
	ctx := context.Background()
	owner := uuid.New()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			translator := uuid.New()
			if _, err := repo.Upsert(ctx, &Entry{OwnerType: "T", OwnerID: owner, AttributeName: "title", Text: "Salut", TranslatorID: &translator}); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent upsert: %v", err)
	}

	entries, err := repo.ListByOwner(ctx, Owner{Type: "T", ID: owner})
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry after concurrent upserts, got %d", len(entries))
	}
}

func contractUpdateAndDelete(t *testing.T, repo Repository) {
	ctx := context.Background()
	translator := uuid.New()
	created, err := repo.Create(ctx, &Entry{OwnerType: "Item", OwnerID: uuid.New(), AttributeName: "name", Text: "Chaise", TranslatorID: &translator})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	created.Text = "Fauteuil"
	updated, err := repo.Update(ctx, created)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Text != "Fauteuil" {
		t.Fatalf("expected updated text, got %q", updated.Text)
	}
	if !updated.Verified() || *updated.TranslatorID != translator {
		t.Fatalf("expected translator to be kept, got %v", updated.TranslatorID)
	}

	if _, err := repo.Update(ctx, &Entry{ID: uuid.New(), OwnerType: "Item", OwnerID: uuid.New(), AttributeName: "name", Text: "x"}); !IsNotFound(err) {
		t.Fatalf("expected not found on missing update, got %v", err)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, created.ID); !IsNotFound(err) {
		t.Fatalf("expected entry to be gone, got %v", err)
	}
	if err := repo.Delete(ctx, created.ID); !IsNotFound(err) {
		t.Fatalf("expected not found deleting twice, got %v", err)
	}
}

func contractDeleteByOwner(t *testing.T, repo Repository) {
	ctx := context.Background()
	owner := Owner{Type: "Item", ID: uuid.New()}
	other := Owner{Type: "Item", ID: uuid.New()}

	for _, attr := range []string{"name", "description"} {
		if _, err := repo.Create(ctx, &Entry{OwnerType: owner.Type, OwnerID: owner.ID, AttributeName: attr, Text: "x"}); err != nil {
			t.Fatalf("create %s: %v", attr, err)
		}
	}
	if _, err := repo.Create(ctx, &Entry{OwnerType: other.Type, OwnerID: other.ID, AttributeName: "name", Text: "y"}); err != nil {
		t.Fatalf("create other: %v", err)
	}

	removed, err := repo.DeleteByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("delete by owner: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	remaining, err := repo.ListByOwner(ctx, other)
	if err != nil {
		t.Fatalf("list other: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected other owner entries untouched, got %d", len(remaining))
	}
}

func contractListFilters(t *testing.T, repo Repository) {
	ctx := context.Background()
	translator := uuid.New()
	ownerType := "Listing-" + uuid.NewString()

	if _, err := repo.Create(ctx, &Entry{OwnerType: ownerType, OwnerID: uuid.New(), AttributeName: "name", Text: "a", TranslatorID: &translator}); err != nil {
		t.Fatalf("create verified: %v", err)
	}
	if _, err := repo.Create(ctx, &Entry{OwnerType: ownerType, OwnerID: uuid.New(), AttributeName: "name", Text: "b"}); err != nil {
		t.Fatalf("create unverified: %v", err)
	}
	if _, err := repo.Create(ctx, &Entry{OwnerType: "Elsewhere", OwnerID: uuid.New(), AttributeName: "name", Text: "c"}); err != nil {
		t.Fatalf("create elsewhere: %v", err)
	}

	cases := []struct {
		name string
		opts ListOptions
		want []string
	}{
		{name: "owner type", opts: ListOptions{OwnerType: ownerType}, want: []string{"a", "b"}},
		{name: "verified", opts: withOwnerType(Verified(), ownerType), want: []string{"a"}},
		{name: "unverified", opts: withOwnerType(Unverified(), ownerType), want: []string{"b"}},
		{name: "translator", opts: ForTranslator(translator), want: []string{"a"}},
	}
	for _, tc := range cases {
		entries, err := repo.List(ctx, tc.opts)
		if err != nil {
			t.Fatalf("%s: list: %v", tc.name, err)
		}
		if len(entries) != len(tc.want) {
			t.Fatalf("%s: expected %d entries, got %d", tc.name, len(tc.want), len(entries))
		}
		seen := map[string]bool{}
		for _, entry := range entries {
			seen[entry.Text] = true
		}
		for _, text := range tc.want {
			if !seen[text] {
				t.Fatalf("%s: expected entry %q in %v", tc.name, text, seen)
			}
		}
	}
}

func contractCoverage(t *testing.T, repo Repository) {
	ctx := context.Background()
	first := uuid.New()
	second := uuid.New()

	seed := []*Entry{
		{OwnerType: "Chair", OwnerID: first, AttributeName: "name", Text: "Chaise"},
		{OwnerType: "Chair", OwnerID: first, AttributeName: "description", Text: "Bois"},
		{OwnerType: "Chair", OwnerID: second, AttributeName: "name", Text: "Tabouret"},
		{OwnerType: "Table", OwnerID: second, AttributeName: "description", Text: "Table"},
	}
	for _, entry := range seed {
		if _, err := repo.Create(ctx, entry); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	coverage, err := repo.Coverage(ctx, "Chair")
	if err != nil {
		t.Fatalf("coverage: %v", err)
	}
	if !coverage.Has(first, "name") || !coverage.Has(first, "description") {
		t.Fatalf("expected both attributes covered for first owner: %v", coverage)
	}
	if !coverage.Has(second, "name") {
		t.Fatalf("expected name covered for second owner")
	}
	if coverage.Has(second, "description") {
		t.Fatalf("coverage must be scoped to owner type")
	}
}

func withOwnerType(opts ListOptions, ownerType string) ListOptions {
	opts.OwnerType = ownerType
	return opts
}
