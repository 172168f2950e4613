package translations

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const entryValidationCode = "TRANSLATION_ENTRY_INVALID"

// Entry stores the translated text of one attribute of one record. The triple
// (owner_type, owner_id, attribute_name) is unique.
type Entry struct {
	bun.BaseModel `bun:"table:translation_entries,alias:te"`

	ID            uuid.UUID  `bun:",pk,type:uuid"                      json:"id"`
	OwnerType     string     `bun:"owner_type,notnull"                 json:"owner_type"`
	OwnerID       uuid.UUID  `bun:"owner_id,notnull,type:uuid"         json:"owner_id"`
	AttributeName string     `bun:"attribute_name,notnull"             json:"attribute_name"`
	Text          string     `bun:"text,notnull"                       json:"text"`
	TranslatorID  *uuid.UUID `bun:"translator_id,type:uuid,nullzero"   json:"translator_id,omitempty"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Owner identifies the record a set of entries belongs to.
type Owner struct {
	Type string
	ID   uuid.UUID
}

// Key is the stable identity of an entry.
type Key struct {
	OwnerType string
	OwnerID   uuid.UUID
	Attribute string
}

// Owner returns the owner coordinates of the entry.
func (e *Entry) Owner() Owner {
	return Owner{Type: e.OwnerType, ID: e.OwnerID}
}

// Key returns the identity triple of the entry.
func (e *Entry) Key() Key {
	return Key{OwnerType: e.OwnerType, OwnerID: e.OwnerID, Attribute: e.AttributeName}
}

// Verified reports whether a human translator signed off the text.
func (e *Entry) Verified() bool {
	return e != nil && e.TranslatorID != nil && *e.TranslatorID != uuid.Nil
}

// Validate enforces the persistence rules of an entry: owner coordinates,
// attribute name and non-blank text.
func (e *Entry) Validate() error {
	return validation.ValidateStruct(e,
		validation.Field(&e.OwnerType, validation.By(notBlank("owner_type"))),
		validation.Field(&e.OwnerID, validation.By(notNilUUID)),
		validation.Field(&e.AttributeName, validation.By(notBlank("attribute_name"))),
		validation.Field(&e.Text, validation.By(notBlank("text"))),
	)
}

// IsBlank reports whether s has no non-whitespace characters.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsValidationError reports whether err is an entry validation failure.
func IsValidationError(err error) bool {
	return err != nil && goerrors.IsCategory(err, goerrors.CategoryValidation)
}

func validateEntry(e *Entry) error {
	if e == nil {
		return goerrors.Wrap(ErrEntryRequired, goerrors.CategoryValidation, "translation entry is required").
			WithTextCode(entryValidationCode)
	}
	if err := e.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "translation entry is invalid").
			WithTextCode(entryValidationCode)
	}
	return nil
}

func notBlank(field string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if IsBlank(s) {
			return validation.NewError("translations."+field+"_blank", field+" cannot be blank")
		}
		return nil
	}
}

func notNilUUID(value any) error {
	id, _ := value.(uuid.UUID)
	if id == uuid.Nil {
		return validation.NewError("translations.owner_id_required", "owner_id is required")
	}
	return nil
}

func cloneEntry(src *Entry) *Entry {
	if src == nil {
		return nil
	}
	copied := *src
	if src.TranslatorID != nil {
		id := *src.TranslatorID
		copied.TranslatorID = &id
	}
	return &copied
}
