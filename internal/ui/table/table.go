// Package table renders record slices into a uniform table view.
//
// A Table is built once per page from an ordered column list. Each
// column either names a record field, looked up by json tag or field
// name, or supplies a Render func that produces the cell. Render is
// pure: the same records and loading flag always give the same View.
package table

import (
	"errors"
	"fmt"
	"html/template"
	"reflect"
	"strings"
)

const (
	LoadingText = "Loading..."
	EmptyText   = "No data available"
)

var (
	ErrEmptyKey     = errors.New("column key is empty")
	ErrDuplicateKey = errors.New("duplicate column key")
	ErrUnknownField = errors.New("column key does not name a field")
)

// Column describes one table column. Key identifies the column and,
// when Render is nil, names the record field shown in the cell.
type Column[T any] struct {
	Key    string
	Header string
	Render func(T) template.HTML
}

// Table is an immutable, validated column set.
type Table[T any] struct {
	columns []Column[T]
	fields  map[string][]int
}

// View is the template model produced by Render. Exactly one of Rows
// or Placeholder is populated.
type View struct {
	Headers     []string
	Rows        [][]template.HTML
	Placeholder string
	ColSpan     int
}

// New validates columns. Keys must be unique and non-empty. For struct
// records, every column without a Render func must resolve to a field.
func New[T any](columns ...Column[T]) (*Table[T], error) {
	t := &Table[T]{
		columns: append([]Column[T](nil), columns...),
		fields:  make(map[string][]int, len(columns)),
	}

	structType := recordStruct[T]()
	seen := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		if col.Key == "" {
			return nil, ErrEmptyKey
		}
		if _, dup := seen[col.Key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, col.Key)
		}
		seen[col.Key] = struct{}{}

		if col.Render != nil || structType == nil {
			continue
		}
		index, ok := fieldIndex(structType, col.Key)
		if !ok {
			return nil, fmt.Errorf("%w: %s on %s", ErrUnknownField, col.Key, structType.Name())
		}
		t.fields[col.Key] = index
	}
	return t, nil
}

// MustNew is New for package-level tables built from literals.
func MustNew[T any](columns ...Column[T]) *Table[T] {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// Columns returns the number of columns.
func (t *Table[T]) Columns() int { return len(t.columns) }

// Render builds the view for data. While loading, and when there is no
// data, the view holds a single placeholder row spanning every column.
func (t *Table[T]) Render(data []T, isLoading bool) View {
	v := View{
		Headers: make([]string, len(t.columns)),
		ColSpan: len(t.columns),
	}
	for i, col := range t.columns {
		v.Headers[i] = col.Header
	}

	switch {
	case isLoading:
		v.Placeholder = LoadingText
		return v
	case len(data) == 0:
		v.Placeholder = EmptyText
		return v
	}

	v.Rows = make([][]template.HTML, len(data))
	for r, record := range data {
		row := make([]template.HTML, len(t.columns))
		for c, col := range t.columns {
			if col.Render != nil {
				row[c] = col.Render(record)
				continue
			}
			row[c] = template.HTML(template.HTMLEscapeString(t.cellText(record, col.Key)))
		}
		v.Rows[r] = row
	}
	return v
}

func (t *Table[T]) cellText(record T, key string) string {
	rv := reflect.ValueOf(record)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		index, ok := t.fields[key]
		if !ok {
			return ""
		}
		return stringify(rv.FieldByIndex(index))
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return ""
		}
		value := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !value.IsValid() {
			return ""
		}
		return stringify(value)
	}
	return ""
}

func stringify(v reflect.Value) string {
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.String {
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = v.Index(i).String()
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(v.Interface())
}

func recordStruct[T any]() reflect.Type {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return nil
	}
	return rt
}

func fieldIndex(rt reflect.Type, key string) ([]int, bool) {
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name == key {
			return f.Index, true
		}
	}
	if f, ok := rt.FieldByNameFunc(func(name string) bool {
		return strings.EqualFold(name, key)
	}); ok && f.IsExported() {
		return f.Index, true
	}
	return nil, false
}
