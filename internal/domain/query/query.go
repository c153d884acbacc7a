// Package query holds the store-independent list query: filter, sort,
// projection and pagination parameters parsed from request query strings.
//
// Parsing never fails. Input that does not parse as a structured expression
// is treated as if the parameter had been omitted.
package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// IDField is the document key of the entity identifier.
const IDField = "_id"

// Operator is a comparison operator of a filter condition.
type Operator string

// Supported filter operators
const (
	OpEq  Operator = "$eq"
	OpNe  Operator = "$ne"
	OpGt  Operator = "$gt"
	OpGte Operator = "$gte"
	OpLt  Operator = "$lt"
	OpLte Operator = "$lte"
	OpIn  Operator = "$in"
	OpNin Operator = "$nin"
)

var operators = map[Operator]bool{
	OpEq: true, OpNe: true, OpGt: true, OpGte: true,
	OpLt: true, OpLte: true, OpIn: true, OpNin: true,
}

// Condition is a single field comparison. Value is a string, int64, float64,
// bool or nil; for OpIn and OpNin it is a []any of those.
type Condition struct {
	Field string
	Op    Operator
	Value any
}

// SortField orders results by one field.
type SortField struct {
	Field      string
	Descending bool
}

// Params is a parsed list query.
type Params struct {
	Filter     []Condition
	Sort       []SortField
	Projection *Projection
	Skip       int
	Limit      int // 0 means no limit
	Count      bool
}

// FromValues parses the where, sort, select, skip, limit and count query
// parameters. defaultLimit applies when limit is missing, zero or invalid.
func FromValues(v url.Values, defaultLimit int) Params {
	return Params{
		Filter:     ParseFilter(v.Get("where")),
		Sort:       ParseSort(v.Get("sort")),
		Projection: ParseProjection(v.Get("select")),
		Skip:       ParseSkip(v.Get("skip")),
		Limit:      ParseLimit(v.Get("limit"), defaultLimit),
		Count:      v.Get("count") == "true",
	}
}

// ParseFilter parses a JSON filter object such as
// {"completed": false, "deadline": {"$lt": "2030-01-01"}}.
// It returns nil when raw is empty or malformed.
func ParseFilter(raw string) []Condition {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil || doc == nil {
		return nil
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil
	}

	conds := make([]Condition, 0, len(doc))
	for field, value := range doc {
		if field == "" || strings.HasPrefix(field, "$") {
			return nil
		}

		clauses, ok := value.(map[string]any)
		if !ok {
			v, ok := scalar(value)
			if !ok {
				return nil
			}
			conds = append(conds, Condition{Field: field, Op: OpEq, Value: v})
			continue
		}

		if len(clauses) == 0 {
			return nil
		}
		for op, operand := range clauses {
			cond, ok := condition(field, Operator(op), operand)
			if !ok {
				return nil
			}
			conds = append(conds, cond)
		}
	}

	sort.Slice(conds, func(i, j int) bool {
		if conds[i].Field != conds[j].Field {
			return conds[i].Field < conds[j].Field
		}
		return conds[i].Op < conds[j].Op
	})

	return conds
}

func condition(field string, op Operator, operand any) (Condition, bool) {
	if !operators[op] {
		return Condition{}, false
	}

	if op == OpIn || op == OpNin {
		items, ok := operand.([]any)
		if !ok {
			return Condition{}, false
		}
		values := make([]any, 0, len(items))
		for _, item := range items {
			v, ok := scalar(item)
			if !ok {
				return Condition{}, false
			}
			values = append(values, v)
		}
		return Condition{Field: field, Op: op, Value: values}, true
	}

	v, ok := scalar(operand)
	if !ok {
		return Condition{}, false
	}
	return Condition{Field: field, Op: op, Value: v}, true
}

// scalar normalizes a decoded JSON leaf. Objects and arrays are rejected.
func scalar(v any) (any, bool) {
	switch t := v.(type) {
	case nil, string, bool:
		return t, true
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, true
		}
		f, err := t.Float64()
		if err != nil {
			return nil, false
		}
		return f, true
	default:
		return nil, false
	}
}

// ParseSort parses a JSON sort object such as {"deadline": 1, "name": -1}.
// Key order is preserved. It returns nil when raw is empty or malformed.
func ParseSort(raw string) []SortField {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var fields []SortField
	ok := walkObject(raw, func(key string, value json.RawMessage) bool {
		desc, ok := sortDirection(value)
		if !ok || key == "" {
			return false
		}
		fields = append(fields, SortField{Field: key, Descending: desc})
		return true
	})
	if !ok {
		return nil
	}

	return fields
}

func sortDirection(raw json.RawMessage) (bool, bool) {
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		switch n.String() {
		case "1":
			return false, true
		case "-1":
			return true, true
		}
		return false, false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false, false
	}
	switch strings.ToLower(s) {
	case "asc", "ascending":
		return false, true
	case "desc", "descending":
		return true, true
	}
	return false, false
}

// walkObject visits the members of a JSON object in document order. It
// returns false if raw is not a single JSON object or fn rejects a member.
func walkObject(raw string, fn func(key string, value json.RawMessage) bool) bool {
	dec := json.NewDecoder(strings.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return false
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return false
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return false
		}
		key, ok := tok.(string)
		if !ok {
			return false
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return false
		}
		if !fn(key, value) {
			return false
		}
	}

	if _, err := dec.Token(); err != nil {
		return false
	}
	// Trailing garbage after the object
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return false
	}

	return true
}

// ParseSkip parses a skip count. Invalid or negative input yields 0.
func ParseSkip(raw string) int {
	n, ok := leadingInt(raw)
	if !ok || n < 0 {
		return 0
	}
	return n
}

// ParseLimit parses a limit count. Invalid, zero or negative input yields
// defaultLimit.
func ParseLimit(raw string, defaultLimit int) int {
	n, ok := leadingInt(raw)
	if !ok || n <= 0 {
		return defaultLimit
	}
	return n
}

// leadingInt reads an optionally signed integer prefix, so "10abc" is 10.
func leadingInt(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
