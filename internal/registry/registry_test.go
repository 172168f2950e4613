package registry

import (
	"errors"
	"strings"
	"testing"
)

func TestRegisterAndLookup(t *testing.T) {
	reg := New()
	if err := reg.Register("Item", []string{"name", "description"},
		WithAssociations("category", "parts"),
		WithDefault("description", "n/a"),
	); err != nil {
		t.Fatalf("Register: %v", err)
	}

	attrs, err := reg.AttributesOf("Item")
	if err != nil {
		t.Fatalf("AttributesOf: %v", err)
	}
	if strings.Join(attrs, ",") != "name,description" {
		t.Fatalf("unexpected attribute order %v", attrs)
	}

	assoc, err := reg.AssociationsOf("Item")
	if err != nil {
		t.Fatalf("AssociationsOf: %v", err)
	}
	if len(assoc) != 2 || assoc[0] != "category" || assoc[1] != "parts" {
		t.Fatalf("unexpected associations %v", assoc)
	}

	attr, err := reg.Attribute("Item", "description")
	if err != nil {
		t.Fatalf("Attribute: %v", err)
	}
	if attr.Default != "n/a" || attr.Position != 1 {
		t.Fatalf("unexpected attribute row %+v", attr)
	}
}

func TestLookupsFailFastForUnregisteredTypes(t *testing.T) {
	reg := New()

	if _, err := reg.AttributesOf("Ghost"); !errors.Is(err, ErrTypeNotRegistered) {
		t.Fatalf("AttributesOf: expected ErrTypeNotRegistered, got %v", err)
	}
	if _, err := reg.AssociationsOf("Ghost"); !errors.Is(err, ErrTypeNotRegistered) {
		t.Fatalf("AssociationsOf: expected ErrTypeNotRegistered, got %v", err)
	}
	if _, err := reg.HasAssociations("Ghost"); !errors.Is(err, ErrTypeNotRegistered) {
		t.Fatalf("HasAssociations: expected ErrTypeNotRegistered, got %v", err)
	}

	var lookupErr *LookupError
	_, err := reg.Declaration("Ghost")
	if !errors.As(err, &lookupErr) || lookupErr.Type != "Ghost" {
		t.Fatalf("expected LookupError for Ghost, got %v", err)
	}
}

func TestUnknownAttribute(t *testing.T) {
	reg := New()
	if err := reg.Register("Item", []string{"name"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := reg.Attribute("Item", "sku"); !errors.Is(err, ErrAttributeNotTranslatable) {
		t.Fatalf("expected ErrAttributeNotTranslatable, got %v", err)
	}
}

func TestReRegisterReplacesDeclaration(t *testing.T) {
	reg := New()
	if err := reg.Register("Item", []string{"name", "description"}, WithAssociations("category")); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := reg.Register("Item", []string{"title"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	attrs, _ := reg.AttributesOf("Item")
	if len(attrs) != 1 || attrs[0] != "title" {
		t.Fatalf("expected replacement, got %v", attrs)
	}
	cascades, _ := reg.HasAssociations("Item")
	if cascades {
		t.Fatalf("associations should not survive re-registration")
	}
}

func TestRegisterValidation(t *testing.T) {
	cases := []struct {
		name  string
		typ   string
		attrs []string
		opts  []Option
	}{
		{name: "blank type", typ: " ", attrs: []string{"name"}},
		{name: "no attributes", typ: "Item"},
		{name: "blank attribute", typ: "Item", attrs: []string{"name", ""}},
		{name: "duplicate attribute", typ: "Item", attrs: []string{"name", "name"}},
		{name: "duplicate association", typ: "Item", attrs: []string{"name"}, opts: []Option{WithAssociations("a", "a")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := New()
			if err := reg.Register(tc.typ, tc.attrs, tc.opts...); err == nil {
				t.Fatalf("expected validation error")
			}
			if len(reg.Types()) != 0 {
				t.Fatalf("invalid declaration must not be stored")
			}
		})
	}
}

func TestAssociationsOfReturnsCopy(t *testing.T) {
	reg := New()
	_ = reg.Register("Order", []string{"note"}, WithAssociations("items"))
	assoc, _ := reg.AssociationsOf("Order")
	assoc[0] = "mutated"
	again, _ := reg.AssociationsOf("Order")
	if again[0] != "items" {
		t.Fatalf("declaration was mutated through lookup result: %v", again)
	}
}
