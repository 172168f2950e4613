package translatable_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	translatable "github.com/goliatone/go-translatable"
)

func newModule(t *testing.T) *translatable.Module {
	t.Helper()
	cfg := translatable.DefaultConfig()
	cfg.Locales.Active = []string{"en", "fr"}

	module, err := translatable.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })

	if err := module.Register("Item", []string{"name", "description"}); err != nil {
		t.Fatalf("register Item: %v", err)
	}
	if err := module.Register("Order", []string{"note"}, translatable.WithAssociations("item", "extras")); err != nil {
		t.Fatalf("register Order: %v", err)
	}
	return module
}

func TestItemScenario(t *testing.T) {
	module := newModule(t)
	ctx := context.Background()
	lc := module.Locale().WithCurrent("en")

	item, err := module.SaveRecord(ctx, lc, translatable.NewRecord("Item", map[string]string{"name": "Chair", "description": ""}))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	status, err := module.Status(ctx, item)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Required != 1 || !status.Incomplete || status.Complete {
		t.Fatalf("expected one required attribute and an incomplete record, got %+v", status)
	}

	if _, err := module.Translate(ctx, translatable.TranslateRequest{
		TranslatorID: uuid.New(),
		OwnerType:    "Item",
		OwnerID:      item.ID,
		Attribute:    "name",
		Text:         "Chaise",
	}); err != nil {
		t.Fatalf("translate: %v", err)
	}

	complete, err := module.IsComplete(ctx, item)
	if err != nil {
		t.Fatalf("IsComplete: %v", err)
	}
	if !complete {
		t.Fatalf("expected item to be complete after translating name")
	}

	french := lc.WithCurrent("fr")
	fresh, err := module.GetRecord(ctx, item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got, err := module.Localized(ctx, french, fresh, "name"); err != nil || got != "Chaise" {
		t.Fatalf("expected French reader to see Chaise, got %q (%v)", got, err)
	}
	if got, err := module.Localized(ctx, lc, fresh, "name"); err != nil || got != "Chair" {
		t.Fatalf("expected native reader to see Chair, got %q (%v)", got, err)
	}
}

func TestSaveRecordRefreshesCascadeAndLeavesStalenessWindow(t *testing.T) {
	module := newModule(t)
	ctx := context.Background()
	lc := module.Locale().WithCurrent("en")

	item, err := module.SaveRecord(ctx, lc, translatable.NewRecord("Item", map[string]string{"name": "Lamp"}))
	if err != nil {
		t.Fatalf("save item: %v", err)
	}

	order := translatable.NewRecord("Order", map[string]string{"note": ""})
	order.SetOne("item", item.ID)
	order, err = module.SaveRecord(ctx, lc, order)
	if err != nil {
		t.Fatalf("save order: %v", err)
	}
	if order.AssociationsTranslated == nil || *order.AssociationsTranslated {
		t.Fatalf("expected cached false for an untranslated item, got %v", order.AssociationsTranslated)
	}

	if _, err := module.Translate(ctx, translatable.TranslateRequest{OwnerType: "Item", OwnerID: item.ID, Attribute: "name", Text: "Lampe"}); err != nil {
		t.Fatalf("translate: %v", err)
	}

	stale, err := module.GetRecord(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if stale.AssociationsTranslated == nil || *stale.AssociationsTranslated {
		t.Fatalf("expected the cached flag to stay false until a refresh, got %v", stale.AssociationsTranslated)
	}

	refreshed, err := module.RefreshType(ctx, "Order")
	if err != nil {
		t.Fatalf("RefreshType: %v", err)
	}
	if refreshed != 1 {
		t.Fatalf("expected one refreshed order, got %d", refreshed)
	}

	complete, err := module.ListComplete(ctx, "Order", translatable.ViewOptions{IncludeAssociations: true})
	if err != nil {
		t.Fatalf("ListComplete: %v", err)
	}
	if len(complete) != 1 || complete[0].ID != order.ID {
		t.Fatalf("expected the order in the complete view, got %d records", len(complete))
	}
}

func TestSetTranslatedFormRoundTripThroughSave(t *testing.T) {
	module := newModule(t)
	ctx := context.Background()
	lc := module.Locale().WithCurrent("en")

	item := translatable.NewRecord("Item", map[string]string{"name": "Desk", "description": "Oak"})
	if err := module.SetTranslatedForm(ctx, item, "description", "Chêne"); err != nil {
		t.Fatalf("SetTranslatedForm: %v", err)
	}
	saved, err := module.SaveRecord(ctx, lc, item)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded, err := module.GetRecord(ctx, saved.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got, err := module.TranslatedForm(ctx, reloaded, "description"); err != nil || got != "Chêne" {
		t.Fatalf("expected persisted translation, got %q (%v)", got, err)
	}

	if err := module.SetTranslatedForm(ctx, reloaded, "description", "  "); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := module.SaveRecord(ctx, lc, reloaded); err != nil {
		t.Fatalf("save cleared: %v", err)
	}
	entries, err := module.Translations().ListByOwner(ctx, reloaded.Owner())
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected blank setter to delete the entry, got %d entries", len(entries))
	}
}

func TestTranslateRejectsBlankAndUndeclared(t *testing.T) {
	module := newModule(t)
	ctx := context.Background()

	item, err := module.SaveRecord(ctx, module.Locale(), translatable.NewRecord("Item", map[string]string{"name": "Stool"}))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	_, err = module.Translate(ctx, translatable.TranslateRequest{OwnerType: "Item", OwnerID: item.ID, Attribute: "name", Text: " "})
	if !translatable.IsValidationError(err) {
		t.Fatalf("expected validation error for blank text, got %v", err)
	}

	_, err = module.Translate(ctx, translatable.TranslateRequest{OwnerType: "Item", OwnerID: item.ID, Attribute: "colour", Text: "Rouge"})
	if !errors.Is(err, translatable.ErrAttributeNotTranslatable) {
		t.Fatalf("expected ErrAttributeNotTranslatable, got %v", err)
	}
}

func TestDeleteRecordRemovesEntries(t *testing.T) {
	module := newModule(t)
	ctx := context.Background()

	item, err := module.SaveRecord(ctx, module.Locale(), translatable.NewRecord("Item", map[string]string{"name": "Bench"}))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := module.Translate(ctx, translatable.TranslateRequest{OwnerType: "Item", OwnerID: item.ID, Attribute: "name", Text: "Banc"}); err != nil {
		t.Fatalf("translate: %v", err)
	}

	if err := module.DeleteRecord(ctx, item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	entries, err := module.Translations().ListByOwner(ctx, item.Owner())
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected owned entries to be deleted, got %d", len(entries))
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := translatable.DefaultConfig()
	cfg.Storage.Provider = "postgres"

	if _, err := translatable.New(cfg); !errors.Is(err, translatable.ErrStorageDSNRequired) {
		t.Fatalf("expected ErrStorageDSNRequired, got %v", err)
	}
}
