// Package query parses the JSON listing parameters (where, select, sort,
// limit, skip, count) into a whitelisted option set. Client JSON is
// never handed to the store directly; only known fields and scalar
// equality matches survive parsing.
package query

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"task-tracker/backend/internal/apperrors"
)

type Field struct {
	JSON   string
	Column string
}

// Schema is the ordered whitelist of queryable fields for one
// collection, mapping wire names to store columns.
type Schema struct {
	fields []Field
	byJSON map[string]string
}

func NewSchema(fields ...Field) Schema {
	byJSON := make(map[string]string, len(fields))
	for _, f := range fields {
		byJSON[f.JSON] = f.Column
	}
	return Schema{fields: fields, byJSON: byJSON}
}

func (s Schema) Column(jsonName string) (string, bool) {
	col, ok := s.byJSON[jsonName]
	return col, ok
}

func (s Schema) Columns() []string {
	cols := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		cols = append(cols, f.Column)
	}
	return cols
}

var TaskSchema = NewSchema(
	Field{"id", "id"},
	Field{"name", "name"},
	Field{"description", "description"},
	Field{"deadline", "deadline"},
	Field{"completed", "completed"},
	Field{"assignedUser", "assigned_user"},
	Field{"assignedUserName", "assigned_user_name"},
	Field{"dateCreated", "date_created"},
)

var UserSchema = NewSchema(
	Field{"id", "id"},
	Field{"name", "name"},
	Field{"email", "email"},
	Field{"pendingTasks", "pending_tasks"},
	Field{"dateCreated", "date_created"},
)

type Order struct {
	Column string
	Desc   bool
}

// Options is the normalized listing request applied by the store. Where
// keys and Select/Sort entries are store columns, already validated
// against the schema.
type Options struct {
	Where  map[string]interface{}
	Select []string
	Sort   []Order
	Limit  int
	Skip   int
	Count  bool
}

// Params carries the raw query-string values as received by the HTTP
// layer.
type Params struct {
	Where  string
	Select string
	Sort   string
	Limit  string
	Skip   string
	Count  string
}

// Parse validates p against schema. defaultLimit <= 0 means unlimited
// unless the client asks for one.
func Parse(p Params, schema Schema, defaultLimit int) (Options, error) {
	opts := Options{Limit: defaultLimit}

	if p.Where != "" {
		where, err := parseWhere(p.Where, schema)
		if err != nil {
			return Options{}, err
		}
		opts.Where = where
	}

	if p.Select != "" {
		sel, err := parseSelect(p.Select, schema)
		if err != nil {
			return Options{}, err
		}
		opts.Select = sel
	}

	if p.Sort != "" {
		sort, err := parseSort(p.Sort, schema)
		if err != nil {
			return Options{}, err
		}
		opts.Sort = sort
	}

	if p.Limit != "" {
		limit, err := strconv.Atoi(p.Limit)
		if err != nil || limit < 0 {
			return Options{}, apperrors.NewValidation("the 'limit' parameter must be a non-negative integer")
		}
		opts.Limit = limit
	}

	if p.Skip != "" {
		skip, err := strconv.Atoi(p.Skip)
		if err != nil || skip < 0 {
			return Options{}, apperrors.NewValidation("the 'skip' parameter must be a non-negative integer")
		}
		opts.Skip = skip
	}

	opts.Count = strings.EqualFold(p.Count, "true")

	return opts, nil
}

func parseWhere(raw string, schema Schema) (map[string]interface{}, error) {
	var filter map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &filter); err != nil {
		return nil, apperrors.NewValidation("the 'where' parameter must be valid JSON")
	}

	where := make(map[string]interface{}, len(filter))
	for field, value := range filter {
		column, ok := schema.Column(field)
		if !ok {
			return nil, apperrors.NewValidation(fmt.Sprintf("unknown field %q in 'where' parameter", field))
		}
		switch value.(type) {
		case string, float64, bool:
			where[column] = value
		default:
			return nil, apperrors.NewValidation(fmt.Sprintf("field %q in 'where' must be a scalar value", field))
		}
	}
	return where, nil
}

func parseSelect(raw string, schema Schema) ([]string, error) {
	var projection map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &projection); err != nil {
		return nil, apperrors.NewValidation("the 'select' parameter must be valid JSON")
	}

	included := make(map[string]bool, len(projection))
	excluded := make(map[string]bool, len(projection))
	for field, value := range projection {
		column, ok := schema.Column(field)
		if !ok {
			return nil, apperrors.NewValidation(fmt.Sprintf("unknown field %q in 'select' parameter", field))
		}
		if truthy(value) {
			included[column] = true
		} else {
			excluded[column] = true
		}
	}

	if len(included) > 0 {
		// id is always carried along unless explicitly excluded.
		if !excluded["id"] {
			included["id"] = true
		}
		columns := make([]string, 0, len(included))
		for _, col := range schema.Columns() {
			if included[col] {
				columns = append(columns, col)
			}
		}
		return columns, nil
	}

	columns := make([]string, 0, len(schema.fields))
	for _, col := range schema.Columns() {
		if !excluded[col] {
			columns = append(columns, col)
		}
	}
	return columns, nil
}

func parseSort(raw string, schema Schema) ([]Order, error) {
	var sort map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &sort); err != nil {
		return nil, apperrors.NewValidation("the 'sort' parameter must be valid JSON")
	}

	orders := make([]Order, 0, len(sort))
	for _, f := range schema.fields {
		value, ok := sort[f.JSON]
		if !ok {
			continue
		}
		desc, err := descending(value)
		if err != nil {
			return nil, apperrors.NewValidation(fmt.Sprintf("field %q in 'sort' must be 1, -1, \"asc\" or \"desc\"", f.JSON))
		}
		orders = append(orders, Order{Column: f.Column, Desc: desc})
		delete(sort, f.JSON)
	}

	for field := range sort {
		return nil, apperrors.NewValidation(fmt.Sprintf("unknown field %q in 'sort' parameter", field))
	}
	return orders, nil
}

func truthy(value interface{}) bool {
	switch v := value.(type) {
	case float64:
		return v != 0
	case bool:
		return v
	default:
		return false
	}
}

func descending(value interface{}) (bool, error) {
	switch v := value.(type) {
	case float64:
		return v < 0, nil
	case string:
		switch strings.ToLower(v) {
		case "asc", "ascending":
			return false, nil
		case "desc", "descending":
			return true, nil
		}
	}
	return false, fmt.Errorf("invalid sort direction %v", value)
}
