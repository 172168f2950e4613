package registry

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	// ErrTypeNotRegistered is returned when a record type has no declaration.
	ErrTypeNotRegistered = errors.New("registry: record type is not registered")
	// ErrAttributeNotTranslatable is returned for attributes missing from a declaration.
	ErrAttributeNotTranslatable = errors.New("registry: attribute is not translatable")
)

// LookupError reports which type (and attribute) a failed lookup asked for.
type LookupError struct {
	Type      string
	Attribute string
	Err       error
}

func (e *LookupError) Error() string {
	if e.Attribute == "" {
		return fmt.Sprintf("%s: %q", e.Err, e.Type)
	}
	return fmt.Sprintf("%s: %q.%q", e.Err, e.Type, e.Attribute)
}

func (e *LookupError) Unwrap() error { return e.Err }

// Attribute is one row of a type's translatable attribute table.
type Attribute struct {
	Name     string
	Default  string
	Position int
}

// Declaration is the registered translatable setup for a record type.
type Declaration struct {
	Type         string
	Attributes   []Attribute
	Associations []string

	index map[string]int
}

// Names returns the attribute names in declaration order.
func (d Declaration) Names() []string {
	out := make([]string, len(d.Attributes))
	for i, attr := range d.Attributes {
		out[i] = attr.Name
	}
	return out
}

// Lookup returns the attribute called name.
func (d Declaration) Lookup(name string) (Attribute, bool) {
	idx, ok := d.index[name]
	if !ok {
		return Attribute{}, false
	}
	return d.Attributes[idx], true
}

// Cascades reports whether the type caches association completeness.
func (d Declaration) Cascades() bool {
	return len(d.Associations) > 0
}

// Validate checks the declaration shape before it is stored.
func (d Declaration) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(d.Type) == "" {
		errs["type"] = validation.NewError("registry.type_required", "type is required")
	}
	if len(d.Attributes) == 0 {
		errs["attributes"] = validation.NewError("registry.attributes_required", "at least one attribute is required")
	}
	seen := map[string]struct{}{}
	for _, attr := range d.Attributes {
		name := strings.TrimSpace(attr.Name)
		if name == "" {
			errs["attributes"] = validation.NewError("registry.attribute_blank", "attribute names cannot be blank")
			break
		}
		if _, dup := seen[name]; dup {
			errs["attributes"] = validation.NewError("registry.attribute_duplicate", fmt.Sprintf("attribute %q declared twice", name))
			break
		}
		seen[name] = struct{}{}
	}
	assoc := map[string]struct{}{}
	for _, name := range d.Associations {
		name = strings.TrimSpace(name)
		if name == "" {
			errs["associations"] = validation.NewError("registry.association_blank", "association names cannot be blank")
			break
		}
		if _, dup := assoc[name]; dup {
			errs["associations"] = validation.NewError("registry.association_duplicate", fmt.Sprintf("association %q declared twice", name))
			break
		}
		assoc[name] = struct{}{}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Option configures a registration.
type Option func(*Declaration)

// WithAssociations lists the relations whose completeness cascades into the
// type's associations_translated cache.
func WithAssociations(names ...string) Option {
	return func(d *Declaration) {
		d.Associations = append(d.Associations, names...)
	}
}

// WithDefault sets the schema default returned by TranslatedForm when an
// attribute has no translation.
func WithDefault(attribute, value string) Option {
	return func(d *Declaration) {
		for i := range d.Attributes {
			if d.Attributes[i].Name == attribute {
				d.Attributes[i].Default = value
			}
		}
	}
}

// Registry stores declarations per record type. Registration happens during
// setup; lookups are safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	types map[string]Declaration
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{types: make(map[string]Declaration)}
}

// Register declares the translatable attributes of recordType. Registering a
// type again replaces the previous declaration as a whole.
func (r *Registry) Register(recordType string, attributes []string, opts ...Option) error {
	decl := Declaration{Type: strings.TrimSpace(recordType)}
	for _, name := range attributes {
		decl.Attributes = append(decl.Attributes, Attribute{Name: strings.TrimSpace(name)})
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&decl)
		}
	}
	return r.Put(decl)
}

// Put validates and stores a fully built declaration.
func (r *Registry) Put(decl Declaration) error {
	if err := decl.Validate(); err != nil {
		return err
	}
	stored := Declaration{
		Type:         strings.TrimSpace(decl.Type),
		Attributes:   make([]Attribute, len(decl.Attributes)),
		Associations: make([]string, 0, len(decl.Associations)),
		index:        make(map[string]int, len(decl.Attributes)),
	}
	for i, attr := range decl.Attributes {
		attr.Name = strings.TrimSpace(attr.Name)
		attr.Position = i
		stored.Attributes[i] = attr
		stored.index[attr.Name] = i
	}
	for _, name := range decl.Associations {
		stored.Associations = append(stored.Associations, strings.TrimSpace(name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.types == nil {
		r.types = make(map[string]Declaration)
	}
	r.types[stored.Type] = stored
	return nil
}

// Declaration returns the declaration for recordType.
func (r *Registry) Declaration(recordType string) (Declaration, error) {
	r.mu.RLock()
	decl, ok := r.types[recordType]
	r.mu.RUnlock()
	if !ok {
		return Declaration{}, &LookupError{Type: recordType, Err: ErrTypeNotRegistered}
	}
	return decl, nil
}

// AttributesOf returns the translatable attribute names of recordType.
func (r *Registry) AttributesOf(recordType string) ([]string, error) {
	decl, err := r.Declaration(recordType)
	if err != nil {
		return nil, err
	}
	return decl.Names(), nil
}

// AssociationsOf returns the cascading associations of recordType.
func (r *Registry) AssociationsOf(recordType string) ([]string, error) {
	decl, err := r.Declaration(recordType)
	if err != nil {
		return nil, err
	}
	return slices.Clone(decl.Associations), nil
}

// Attribute returns a single attribute row.
func (r *Registry) Attribute(recordType, name string) (Attribute, error) {
	decl, err := r.Declaration(recordType)
	if err != nil {
		return Attribute{}, err
	}
	attr, ok := decl.Lookup(name)
	if !ok {
		return Attribute{}, &LookupError{Type: recordType, Attribute: name, Err: ErrAttributeNotTranslatable}
	}
	return attr, nil
}

// HasAssociations reports whether recordType declares cascading associations.
func (r *Registry) HasAssociations(recordType string) (bool, error) {
	decl, err := r.Declaration(recordType)
	if err != nil {
		return false, err
	}
	return decl.Cascades(), nil
}

// Types lists registered record types sorted by name.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.types))
	for name := range r.types {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
