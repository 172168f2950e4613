package registry

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrDeclarationsInvalid wraps schema failures for declaration documents.
var ErrDeclarationsInvalid = errors.New("registry: declarations document is invalid")

//go:embed schema/declarations.schema.json
var declarationsSchema []byte

const declarationsSchemaURL = "declarations.schema.json"

// Document is the on-disk form of a set of declarations.
//
//	{"types": [{"type": "Item", "attributes": ["name", {"name": "description", "default": ""}], "associations": ["category"]}]}
type Document struct {
	Types []DocumentType `json:"types"`
}

// DocumentType declares one record type.
type DocumentType struct {
	Type         string              `json:"type"`
	Attributes   []DocumentAttribute `json:"attributes"`
	Associations []string            `json:"associations,omitempty"`
}

// DocumentAttribute accepts either a bare name or {"name", "default"}.
type DocumentAttribute struct {
	Name    string `json:"name"`
	Default string `json:"default,omitempty"`
}

func (a *DocumentAttribute) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		a.Name = name
		return nil
	}
	type plain DocumentAttribute
	var out plain
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*a = DocumentAttribute(out)
	return nil
}

// Declarations converts the document into registry declarations.
func (d Document) Declarations() []Declaration {
	out := make([]Declaration, 0, len(d.Types))
	for _, typ := range d.Types {
		decl := Declaration{Type: typ.Type, Associations: typ.Associations}
		for _, attr := range typ.Attributes {
			decl.Attributes = append(decl.Attributes, Attribute{Name: attr.Name, Default: attr.Default})
		}
		out = append(out, decl)
	}
	return out
}

// ParseDocument validates raw JSON against the declarations schema and decodes it.
func ParseDocument(r io.Reader) (Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("registry: read declarations: %w", err)
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrDeclarationsInvalid, err)
	}
	schema, err := compileDeclarationsSchema()
	if err != nil {
		return Document{}, err
	}
	if err := schema.Validate(payload); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrDeclarationsInvalid, err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrDeclarationsInvalid, err)
	}
	return doc, nil
}

// Load parses a declarations document and registers every type in it. Types
// that fail validation abort the load; earlier types stay registered.
func (r *Registry) Load(reader io.Reader) (int, error) {
	doc, err := ParseDocument(reader)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, decl := range doc.Declarations() {
		if err := r.Put(decl); err != nil {
			return count, fmt.Errorf("registry: type %q: %w", decl.Type, err)
		}
		count++
	}
	return count, nil
}

// LoadFile is Load for a path on disk.
func (r *Registry) LoadFile(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("registry: open declarations %q: %w", path, err)
	}
	defer file.Close()
	return r.Load(file)
}

func compileDeclarationsSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(declarationsSchemaURL, bytes.NewReader(declarationsSchema)); err != nil {
		return nil, fmt.Errorf("registry: load declarations schema: %w", err)
	}
	return compiler.Compile(declarationsSchemaURL)
}
