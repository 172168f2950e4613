package records

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-translatable/internal/translations"
)

// RelationKind distinguishes single references from collections.
type RelationKind string

const (
	RelationOne  RelationKind = "one"
	RelationMany RelationKind = "many"
)

// Relation points at associated records by id.
type Relation struct {
	Kind RelationKind `json:"kind"`
	IDs  []uuid.UUID  `json:"ids,omitempty"`
}

// Record is a translatable entity. Attributes hold native values keyed by
// attribute name; the translated side lives in Translations.
type Record struct {
	bun.BaseModel `bun:"table:translatable_records,alias:tr"`

	ID                     uuid.UUID           `bun:",pk,type:uuid"                                 json:"id"`
	Type                   string              `bun:"type,notnull"                                  json:"type"`
	Locale                 string              `bun:"locale"                                        json:"locale,omitempty"`
	Attributes             map[string]string   `bun:"attributes,type:jsonb"                         json:"attributes,omitempty"`
	Relations              map[string]Relation `bun:"relations,type:jsonb"                          json:"relations,omitempty"`
	AssociationsTranslated *bool               `bun:"associations_translated"                       json:"associations_translated,omitempty"`
	CreatedAt              time.Time           `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt              time.Time           `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Translations *translations.Set `bun:"-" json:"-"`
}

// NewRecord returns an unsaved record of recordType with an empty staging set.
func NewRecord(recordType string, attributes map[string]string) *Record {
	attrs := make(map[string]string, len(attributes))
	for k, v := range attributes {
		attrs[k] = v
	}
	return &Record{
		Type:         recordType,
		Attributes:   attrs,
		Relations:    map[string]Relation{},
		Translations: translations.NewSet(translations.Owner{Type: recordType}),
	}
}

// Owner returns the owner coordinates used by translation entries.
func (r *Record) Owner() translations.Owner {
	return translations.Owner{Type: r.Type, ID: r.ID}
}

// IsNew reports whether the record has not been persisted yet.
func (r *Record) IsNew() bool {
	return r.ID == uuid.Nil
}

// Native returns the native value of attribute.
func (r *Record) Native(attribute string) string {
	if r == nil || r.Attributes == nil {
		return ""
	}
	return r.Attributes[attribute]
}

// SetNative assigns the native value of attribute.
func (r *Record) SetNative(attribute, value string) {
	if r.Attributes == nil {
		r.Attributes = map[string]string{}
	}
	r.Attributes[attribute] = value
}

// Relation returns the named relation.
func (r *Record) Relation(name string) (Relation, bool) {
	if r == nil || r.Relations == nil {
		return Relation{}, false
	}
	rel, ok := r.Relations[name]
	return rel, ok
}

// SetOne points a single reference at id. uuid.Nil clears the reference.
func (r *Record) SetOne(name string, id uuid.UUID) {
	rel := Relation{Kind: RelationOne}
	if id != uuid.Nil {
		rel.IDs = []uuid.UUID{id}
	}
	r.setRelation(name, rel)
}

// SetMany replaces the members of a collection.
func (r *Record) SetMany(name string, ids ...uuid.UUID) {
	r.setRelation(name, Relation{Kind: RelationMany, IDs: append([]uuid.UUID(nil), ids...)})
}

func (r *Record) setRelation(name string, rel Relation) {
	if r.Relations == nil {
		r.Relations = map[string]Relation{}
	}
	r.Relations[name] = rel
}

// Validate checks the record shape before persistence.
func (r *Record) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Type, validation.Required),
		validation.Field(&r.Relations, validation.By(validRelations)),
	)
}

func validRelations(value any) error {
	rels, _ := value.(map[string]Relation)
	for name, rel := range rels {
		switch rel.Kind {
		case RelationOne:
			if len(rel.IDs) > 1 {
				return validation.NewError("records.relation_one_multiple",
					fmt.Sprintf("relation %q holds more than one id", name))
			}
		case RelationMany:
		default:
			return validation.NewError("records.relation_kind_invalid",
				fmt.Sprintf("relation %q has unknown kind %q", name, rel.Kind))
		}
	}
	return nil
}

func cloneRecord(src *Record) *Record {
	if src == nil {
		return nil
	}
	copied := *src
	if src.Attributes != nil {
		copied.Attributes = make(map[string]string, len(src.Attributes))
		for k, v := range src.Attributes {
			copied.Attributes[k] = v
		}
	}
	if src.Relations != nil {
		copied.Relations = make(map[string]Relation, len(src.Relations))
		for k, rel := range src.Relations {
			copied.Relations[k] = Relation{Kind: rel.Kind, IDs: append([]uuid.UUID(nil), rel.IDs...)}
		}
	}
	if src.AssociationsTranslated != nil {
		flag := *src.AssociationsTranslated
		copied.AssociationsTranslated = &flag
	}
	copied.Translations = nil
	return &copied
}
