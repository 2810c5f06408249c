package index

import "fmt"

// FieldType is the service data type of a field.
type FieldType string

// Field type constants.
const (
	String           FieldType = "Edm.String"
	DateTimeOffset   FieldType = "Edm.DateTimeOffset"
	StringCollection FieldType = "Collection(Edm.String)"
	Int32            FieldType = "Edm.Int32"
	Int64            FieldType = "Edm.Int64"
	Double           FieldType = "Edm.Double"
	Boolean          FieldType = "Edm.Boolean"
)

var validTypes = map[FieldType]bool{
	String: true, DateTimeOffset: true, StringCollection: true,
	Int32: true, Int64: true, Double: true, Boolean: true,
}

// IsValid checks if the field type is supported.
func (t FieldType) IsValid() bool { return validTypes[t] }

// Field describes one field of an index.
type Field struct {
	Name        string    `json:"name" yaml:"name" toml:"name"`
	Type        FieldType `json:"type" yaml:"type" toml:"type"`
	Searchable  bool      `json:"searchable" yaml:"searchable" toml:"searchable"`
	Filterable  bool      `json:"filterable" yaml:"filterable" toml:"filterable"`
	Retrievable bool      `json:"retrievable" yaml:"retrievable" toml:"retrievable"`
	Sortable    bool      `json:"sortable" yaml:"sortable" toml:"sortable"`
	Facetable   bool      `json:"facetable" yaml:"facetable" toml:"facetable"`
	Key         bool      `json:"key" yaml:"key" toml:"key"`
	Analyzer    string    `json:"analyzer,omitempty" yaml:"analyzer,omitempty" toml:"analyzer,omitempty"`
}

func (f Field) validate() error {
	if f.Name == "" {
		return fmt.Errorf("field name is required")
	}
	if len(f.Name) > 128 {
		return fmt.Errorf("field name %q too long (max 128)", f.Name)
	}
	if !f.Type.IsValid() {
		return fmt.Errorf("invalid field type %q for %q", f.Type, f.Name)
	}
	if f.Key && f.Type != String {
		return fmt.Errorf("key field %q must be %s, got %s", f.Name, String, f.Type)
	}
	return nil
}
