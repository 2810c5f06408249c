package searchsync

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/kailas-cloud/searchsync/internal/domain/index"
)

const tagKey = "search"

var timeType = reflect.TypeOf(time.Time{})

// schemaMeta holds parsed struct tag metadata, cached per TypedIndex.
type schemaMeta struct {
	typ    reflect.Type
	fields []index.Field
	// Mapping from struct field index to document field name.
	mapping []fieldMapping
}

type fieldMapping struct {
	structIdx int
	name      string
}

// parseSchema reflects on T and extracts search struct tag metadata.
//
// Tag format: `search:"name,key,searchable,filterable,retrievable,sortable,facetable,analyzer=zh-Hans.lucene,type=Edm.String"`.
// Untagged fields and fields tagged "-" are skipped. The field type is
// inferred from the Go type unless type= is given.
func parseSchema[T any]() (*schemaMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return nil, fmt.Errorf("searchsync: type parameter must be a struct")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("searchsync: type %s is not a struct", t)
	}

	meta := &schemaMeta{typ: t}
	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get(tagKey)
		if tag == "" || tag == "-" || !f.IsExported() {
			continue
		}
		field, err := parseTag(f, tag)
		if err != nil {
			return nil, err
		}
		meta.fields = append(meta.fields, field)
		meta.mapping = append(meta.mapping, fieldMapping{structIdx: i, name: field.Name})
	}

	if len(meta.fields) == 0 {
		return nil, fmt.Errorf("searchsync: no field with `search:\"...\"` tag in %s", t)
	}
	return meta, nil
}

// parseTag processes a single struct field's search tag.
func parseTag(f reflect.StructField, tag string) (index.Field, error) {
	parts := strings.Split(tag, ",")
	field := index.Field{Name: parts[0]}
	if field.Name == "" {
		field.Name = f.Name
	}

	for _, mod := range parts[1:] {
		key, val, hasVal := strings.Cut(strings.TrimSpace(mod), "=")
		switch {
		case key == "key" && !hasVal:
			field.Key = true
		case key == "searchable" && !hasVal:
			field.Searchable = true
		case key == "filterable" && !hasVal:
			field.Filterable = true
		case key == "retrievable" && !hasVal:
			field.Retrievable = true
		case key == "sortable" && !hasVal:
			field.Sortable = true
		case key == "facetable" && !hasVal:
			field.Facetable = true
		case key == "analyzer" && hasVal:
			field.Analyzer = val
		case key == "type" && hasVal:
			field.Type = index.FieldType(val)
		case key == "":
		default:
			return index.Field{}, fmt.Errorf("searchsync: unknown modifier %q on field %s", mod, f.Name)
		}
	}

	if field.Type == "" {
		ft, ok := inferType(f.Type)
		if !ok {
			return index.Field{}, fmt.Errorf("searchsync: cannot infer field type of %s (%s), use type=", f.Name, f.Type)
		}
		field.Type = ft
	}
	return field, nil
}

func inferType(t reflect.Type) (index.FieldType, bool) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == timeType {
		return index.DateTimeOffset, true
	}
	switch t.Kind() {
	case reflect.String:
		return index.String, true
	case reflect.Bool:
		return index.Boolean, true
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Uint8, reflect.Uint16:
		return index.Int32, true
	case reflect.Int, reflect.Int64, reflect.Uint32:
		return index.Int64, true
	case reflect.Float32, reflect.Float64:
		return index.Double, true
	case reflect.Slice:
		if t.Elem().Kind() == reflect.String {
			return index.StringCollection, true
		}
	}
	return "", false
}

// toDocument converts a typed struct to Document using schema metadata.
// Nil pointers become nulls.
func (m *schemaMeta) toDocument(item any) Document {
	v := reflect.ValueOf(item)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	doc := make(Document, len(m.mapping))
	for _, fm := range m.mapping {
		fv := v.Field(fm.structIdx)
		if fv.Kind() == reflect.Pointer && fv.IsNil() {
			doc[fm.name] = nil
			continue
		}
		doc[fm.name] = reflect.Indirect(fv).Interface()
	}
	return doc
}
