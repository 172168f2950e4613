package completeness

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-translatable/internal/records"
	"github.com/goliatone/go-translatable/internal/registry"
	"github.com/goliatone/go-translatable/internal/translations"
)

type fixture struct {
	registry  *registry.Registry
	records   *records.MemoryRepository
	entries   *translations.MemoryRepository
	service   translations.Service
	evaluator *Evaluator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := registry.New()
	if err := reg.Register("Item", []string{"name", "description"}); err != nil {
		t.Fatalf("register Item: %v", err)
	}
	if err := reg.Register("Set", []string{"title"}, registry.WithAssociations("items")); err != nil {
		t.Fatalf("register Set: %v", err)
	}
	recordRepo := records.NewMemoryRepository()
	entryRepo := translations.NewMemoryRepository()
	return &fixture{
		registry:  reg,
		records:   recordRepo,
		entries:   entryRepo,
		service:   translations.NewService(entryRepo, translations.WithRegistry(reg)),
		evaluator: NewEvaluator(reg, recordRepo, entryRepo),
	}
}

func (f *fixture) create(t *testing.T, recordType string, attrs map[string]string) *records.Record {
	t.Helper()
	record, err := f.records.Create(context.Background(), records.NewRecord(recordType, attrs))
	if err != nil {
		t.Fatalf("create %s: %v", recordType, err)
	}
	return record
}

func (f *fixture) translate(t *testing.T, record *records.Record, attribute, text string) {
	t.Helper()
	_, err := f.service.Translate(context.Background(), translations.TranslateRequest{
		TranslatorID: uuid.New(),
		OwnerType:    record.Type,
		OwnerID:      record.ID,
		Attribute:    attribute,
		Text:         text,
	})
	if err != nil {
		t.Fatalf("translate %s: %v", attribute, err)
	}
}

func TestItemScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.create(t, "Item", map[string]string{"name": "Chair", "description": ""})

	required, err := f.evaluator.Required(item)
	if err != nil {
		t.Fatalf("required: %v", err)
	}
	if required != 1 {
		t.Fatalf("expected required 1, got %d", required)
	}
	incomplete, err := f.evaluator.IsIncomplete(ctx, item)
	if err != nil {
		t.Fatalf("is incomplete: %v", err)
	}
	if !incomplete {
		t.Fatalf("expected item to be incomplete before translation")
	}

	f.translate(t, item, "name", "Chaise")

	complete, err := f.evaluator.IsComplete(ctx, item)
	if err != nil {
		t.Fatalf("is complete: %v", err)
	}
	if !complete {
		t.Fatalf("expected item to be complete after translating name")
	}
}

func TestVacuousCompleteness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	blank := f.create(t, "Item", map[string]string{"name": "  ", "description": ""})
	empty := f.create(t, "Item", nil)

	for _, record := range []*records.Record{blank, empty} {
		status, err := f.evaluator.Status(ctx, record)
		if err != nil {
			t.Fatalf("status: %v", err)
		}
		if status.Required != 0 || !status.Complete || status.Incomplete {
			t.Fatalf("expected vacuously complete status, got %+v", status)
		}
	}

	classification, err := f.evaluator.Classify(ctx, "Item")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if !classification.IsComplete(blank.ID) || !classification.IsComplete(empty.ID) {
		t.Fatalf("records with nothing to translate must be classified complete: %+v", classification)
	}
	if classification.IsIncomplete(blank.ID) || classification.IsIncomplete(empty.ID) {
		t.Fatalf("records with nothing to translate are never incomplete")
	}
}

func TestCompleteXorIncompleteWhenRequired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	partial := f.create(t, "Item", map[string]string{"name": "Chair", "description": "Wooden"})
	f.translate(t, partial, "name", "Chaise")

	status, err := f.evaluator.Status(ctx, partial)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Required != 2 || status.Translated != 1 {
		t.Fatalf("unexpected counts %+v", status)
	}
	if status.Complete == status.Incomplete {
		t.Fatalf("complete and incomplete must differ when required > 0: %+v", status)
	}
}

func TestTranslationsOfBlankAttributesDoNotCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.create(t, "Item", map[string]string{"name": "Chair", "description": ""})
	f.translate(t, item, "description", "Vide")

	status, err := f.evaluator.Status(ctx, item)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Complete || status.Translated != 0 {
		t.Fatalf("a translation of a blank attribute must not stand in for a required one: %+v", status)
	}
}

func TestClassifyAndFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	done := f.create(t, "Item", map[string]string{"name": "Chair"})
	todo := f.create(t, "Item", map[string]string{"name": "Desk"})
	f.translate(t, done, "name", "Chaise")

	classification, err := f.evaluator.Classify(ctx, "Item")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if len(classification.Complete) != 1 || classification.Complete[0] != done.ID {
		t.Fatalf("unexpected complete ids %v", classification.Complete)
	}
	if len(classification.Incomplete) != 1 || classification.Incomplete[0] != todo.ID {
		t.Fatalf("unexpected incomplete ids %v", classification.Incomplete)
	}

	isComplete, err := f.evaluator.CompleteFilter(ctx, "Item")
	if err != nil {
		t.Fatalf("complete filter: %v", err)
	}
	isIncomplete, err := f.evaluator.IncompleteFilter(ctx, "Item")
	if err != nil {
		t.Fatalf("incomplete filter: %v", err)
	}
	if !isComplete(done.ID) || isComplete(todo.ID) {
		t.Fatalf("complete filter mismatch")
	}
	if isIncomplete(done.ID) || !isIncomplete(todo.ID) {
		t.Fatalf("incomplete filter mismatch")
	}
}

func TestListViewsHonourAssociationCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cachedTrue := f.create(t, "Set", map[string]string{"title": "Living room"})
	cachedFalse := f.create(t, "Set", map[string]string{"title": "Office"})
	f.translate(t, cachedTrue, "title", "Salon")
	f.translate(t, cachedFalse, "title", "Bureau")

	yes, no := true, false
	if err := f.records.SetAssociationsTranslated(ctx, cachedTrue.ID, &yes); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if err := f.records.SetAssociationsTranslated(ctx, cachedFalse.ID, &no); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	plain, err := f.evaluator.ListComplete(ctx, "Set", ViewOptions{})
	if err != nil {
		t.Fatalf("list complete: %v", err)
	}
	if len(plain) != 2 {
		t.Fatalf("expected both sets complete on own attributes, got %d", len(plain))
	}

	withCache, err := f.evaluator.ListComplete(ctx, "Set", ViewOptions{IncludeAssociations: true})
	if err != nil {
		t.Fatalf("list complete with cache: %v", err)
	}
	if len(withCache) != 1 || withCache[0].ID != cachedTrue.ID {
		t.Fatalf("expected only the set with cached true, got %d", len(withCache))
	}

	incomplete, err := f.evaluator.ListIncomplete(ctx, "Set", ViewOptions{IncludeAssociations: true})
	if err != nil {
		t.Fatalf("list incomplete with cache: %v", err)
	}
	if len(incomplete) != 1 || incomplete[0].ID != cachedFalse.ID {
		t.Fatalf("expected the set with cached false, got %d", len(incomplete))
	}
}

func TestUnregisteredTypeFailsFast(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ghost := records.NewRecord("Ghost", map[string]string{"name": "x"})

	if _, err := f.evaluator.Required(ghost); !errors.Is(err, registry.ErrTypeNotRegistered) {
		t.Fatalf("expected ErrTypeNotRegistered from Required, got %v", err)
	}
	if _, err := f.evaluator.Classify(ctx, "Ghost"); !errors.Is(err, registry.ErrTypeNotRegistered) {
		t.Fatalf("expected ErrTypeNotRegistered from Classify, got %v", err)
	}
}
