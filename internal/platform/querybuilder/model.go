package querybuilder

import (
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
)

// UpsertModel builds an insert from the db tags of model that updates every
// non-key column when a row with the same key already exists.
func UpsertModel(table string, model any, key ...string) (string, []any, error) {
	cols, vals, err := columnsAndValues(model)
	if err != nil {
		return "", nil, err
	}

	keys := make(map[string]struct{}, len(key))
	for _, k := range key {
		keys[k] = struct{}{}
	}
	update := make([]string, 0, len(cols))
	for _, c := range cols {
		if _, isKey := keys[c]; !isKey {
			update = append(update, c)
		}
	}

	return InsertInto(table).
		Columns(cols...).
		Values(vals...).
		OnConflictUpdate(key, update...).
		ToSQL()
}

func columnsAndValues(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, errors.New("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, errors.New("model must be struct")
	}

	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		col, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		col = strings.TrimSpace(col)
		if col == "" || col == "-" {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, value.Field(i).Interface())
	}

	if len(cols) == 0 {
		return nil, nil, errors.New("model has no db columns")
	}
	return cols, vals, nil
}
