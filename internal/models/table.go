package models

import (
	"reflect"
	"strings"
)

// Table is a named collection of flat rows. Records holds a typed slice such as
// []User; columns come from the json tags of the element type.
type Table struct {
	Records any
	Name    string
}

// NewTable wraps a typed row slice.
func NewTable(name string, records any) Table {
	return Table{Name: name, Records: records}
}

// Len returns the number of rows.
func (t Table) Len() int {
	v := reflect.ValueOf(t.Records)
	if v.Kind() != reflect.Slice {
		return 0
	}

	return v.Len()
}

// Columns returns the column names: the primary key first, then struct field order.
func (t Table) Columns() []string {
	fields := t.fields()
	cols := make([]string, len(fields))

	for i, f := range fields {
		cols[i] = f.name
	}

	return cols
}

// Model returns a pointer to a zero row, for schema migration.
func (t Table) Model() any {
	elem := t.elemType()
	if elem == nil {
		return nil
	}

	return reflect.New(elem).Interface()
}

// Rows returns every row as a slice of column values. Pointer fields are dereferenced;
// nil pointers stay nil.
func (t Table) Rows() [][]any {
	v := reflect.ValueOf(t.Records)
	if v.Kind() != reflect.Slice {
		return nil
	}

	fields := t.fields()
	rows := make([][]any, v.Len())

	for i := range v.Len() {
		rows[i] = rowValues(v.Index(i), fields)
	}

	return rows
}

// Column returns the values of one column, or nil if the column does not exist.
func (t Table) Column(name string) []any {
	idx := -1

	fields := t.fields()
	for i, f := range fields {
		if f.name == name {
			idx = i
			break
		}
	}

	if idx < 0 {
		return nil
	}

	v := reflect.ValueOf(t.Records)
	out := make([]any, v.Len())

	for i := range v.Len() {
		out[i] = fieldValue(v.Index(i).Field(fields[idx].index))
	}

	return out
}

// Each calls fn with every row value.
func (t Table) Each(fn func(i int, row any)) {
	v := reflect.ValueOf(t.Records)
	if v.Kind() != reflect.Slice {
		return
	}

	for i := range v.Len() {
		fn(i, v.Index(i).Interface())
	}
}

type column struct {
	name    string
	index   int
	primary bool
}

func (t Table) elemType() reflect.Type {
	typ := reflect.TypeOf(t.Records)
	if typ == nil || typ.Kind() != reflect.Slice {
		return nil
	}

	return typ.Elem()
}

func (t Table) fields() []column {
	elem := t.elemType()
	if elem == nil || elem.Kind() != reflect.Struct {
		return nil
	}

	var cols []column

	for i := range elem.NumField() {
		f := elem.Field(i)
		if !f.IsExported() {
			continue
		}

		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}

			if tagName != "" {
				name = tagName
			}
		}

		primary := strings.Contains(f.Tag.Get("gorm"), "primaryKey")
		cols = append(cols, column{name: name, index: i, primary: primary})
	}

	// Primary key columns come first regardless of field order.
	ordered := make([]column, 0, len(cols))
	for _, c := range cols {
		if c.primary {
			ordered = append(ordered, c)
		}
	}

	for _, c := range cols {
		if !c.primary {
			ordered = append(ordered, c)
		}
	}

	return ordered
}

// PrimaryKey returns the name of the primary key column, or "" if none is tagged.
func (t Table) PrimaryKey() string {
	for _, c := range t.fields() {
		if c.primary {
			return c.name
		}
	}

	return ""
}

func rowValues(v reflect.Value, fields []column) []any {
	out := make([]any, len(fields))
	for i, f := range fields {
		out[i] = fieldValue(v.Field(f.index))
	}

	return out
}

func fieldValue(f reflect.Value) any {
	if f.Kind() == reflect.Pointer {
		if f.IsNil() {
			return nil
		}

		return f.Elem().Interface()
	}

	return f.Interface()
}
