package postgres

import (
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"task-user-service/internal/domain/query"
	"task-user-service/pkg/security"
)

type columnKind int

const (
	kindString columnKind = iota
	kindBool
	kindTime
	kindList
)

type column struct {
	name string
	kind columnKind
}

// fieldSet maps document field names to columns. Fields outside the set are
// ignored by filters and sorts.
type fieldSet map[string]column

var userFields = fieldSet{
	query.IDField:  {name: "id", kind: kindString},
	"name":         {name: "name", kind: kindString},
	"email":        {name: "email", kind: kindString},
	"pendingTasks": {name: "pending_tasks", kind: kindList},
	"dateCreated":  {name: "date_created", kind: kindTime},
}

var taskFields = fieldSet{
	query.IDField:      {name: "id", kind: kindString},
	"name":             {name: "name", kind: kindString},
	"description":      {name: "description", kind: kindString},
	"deadline":         {name: "deadline", kind: kindTime},
	"completed":        {name: "completed", kind: kindBool},
	"assignedUser":     {name: "assigned_user", kind: kindString},
	"assignedUserName": {name: "assigned_user_name", kind: kindString},
	"dateCreated":      {name: "date_created", kind: kindTime},
}

var comparisons = map[query.Operator]string{
	query.OpEq:  "=",
	query.OpNe:  "<>",
	query.OpGt:  ">",
	query.OpGte: ">=",
	query.OpLt:  "<",
	query.OpLte: "<=",
}

// applyFilter adds one WHERE clause per condition on a known field.
func applyFilter(db *gorm.DB, fields fieldSet, conds []query.Condition) *gorm.DB {
	for _, c := range conds {
		col, ok := fields[c.Field]
		if !ok {
			continue
		}
		if col.kind == kindList {
			db = whereList(db, col, c)
		} else {
			db = whereScalar(db, col, c)
		}
	}
	return db
}

func matchNone(db *gorm.DB) *gorm.DB {
	return db.Where("1 = 0")
}

func whereScalar(db *gorm.DB, col column, c query.Condition) *gorm.DB {
	switch c.Op {
	case query.OpIn, query.OpNin:
		items, _ := c.Value.([]any)
		values := make([]any, 0, len(items))
		for _, item := range items {
			if v, ok := coerce(col.kind, item); ok {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			if c.Op == query.OpIn {
				return matchNone(db)
			}
			return db
		}
		if c.Op == query.OpIn {
			return db.Where(fmt.Sprintf("%s IN ?", col.name), values)
		}
		return db.Where(fmt.Sprintf("%s NOT IN ?", col.name), values)
	}

	v, ok := coerce(col.kind, c.Value)
	if !ok {
		// A value of the wrong type never equals the column.
		if c.Op == query.OpNe {
			return db
		}
		return matchNone(db)
	}
	return db.Where(fmt.Sprintf("%s %s ?", col.name, comparisons[c.Op]), v)
}

// whereList filters a JSON array column by membership.
func whereList(db *gorm.DB, col column, c query.Condition) *gorm.DB {
	switch c.Op {
	case query.OpEq, query.OpNe:
		id, ok := c.Value.(string)
		if !ok {
			if c.Op == query.OpNe {
				return db
			}
			return matchNone(db)
		}
		if c.Op == query.OpEq {
			return db.Where(containsClause(col.name), containsPattern(id))
		}
		return db.Where("NOT "+containsClause(col.name), containsPattern(id))

	case query.OpIn, query.OpNin:
		items, _ := c.Value.([]any)
		var parts []string
		var args []any
		for _, item := range items {
			id, ok := item.(string)
			if !ok {
				continue
			}
			parts = append(parts, containsClause(col.name))
			args = append(args, containsPattern(id))
		}
		if len(parts) == 0 {
			if c.Op == query.OpIn {
				return matchNone(db)
			}
			return db
		}
		if c.Op == query.OpIn {
			return db.Where("("+strings.Join(parts, " OR ")+")", args...)
		}
		return db.Where("NOT ("+strings.Join(parts, " OR ")+")", args...)

	default:
		return matchNone(db)
	}
}

func containsClause(name string) string {
	return name + ` LIKE ? ESCAPE '\'`
}

// containsPattern matches the JSON-encoded id as an array element.
func containsPattern(id string) string {
	encoded, _ := json.Marshal(id)
	return "%" + security.EscapeLike(string(encoded)) + "%"
}

// coerce converts a filter value to the column's Go type.
func coerce(kind columnKind, v any) (any, bool) {
	switch kind {
	case kindString:
		switch t := v.(type) {
		case string:
			return t, true
		case nil:
			return "", true
		}
	case kindBool:
		if b, ok := v.(bool); ok {
			return b, true
		}
	case kindTime:
		if v == nil {
			return nil, false
		}
		if ts, ok := query.ParseTime(v); ok {
			return ts, true
		}
	}
	return nil, false
}

// applySort orders by the known sort fields, then by id for a stable order.
// Identifiers are time-ordered, so unsorted results come back in insertion
// order.
func applySort(db *gorm.DB, fields fieldSet, sort []query.SortField) *gorm.DB {
	for _, s := range sort {
		col, ok := fields[s.Field]
		if !ok {
			continue
		}
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: col.name}, Desc: s.Descending})
	}
	return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
}

func applyPage(db *gorm.DB, skip, limit int) *gorm.DB {
	if skip > 0 {
		db = db.Offset(skip)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	return db
}

// listQuery applies filter, sort, skip and limit in that order.
func listQuery(db *gorm.DB, fields fieldSet, p query.Params) *gorm.DB {
	db = applyFilter(db, fields, p.Filter)
	db = applySort(db, fields, p.Sort)
	return applyPage(db, p.Skip, p.Limit)
}
