package query

import (
	"bytes"
	"encoding/json"
)

// Projection selects which document fields a response carries.
type Projection struct {
	Fields    map[string]bool // fields named in the projection, excluding _id
	Include   bool            // true: only Fields are kept; false: Fields are dropped
	ExcludeID bool
}

// ParseProjection parses a JSON projection object such as {"name": 1,
// "email": 1} or {"pendingTasks": 0}. Mixing inclusion and exclusion of
// fields other than _id is malformed. It returns nil when raw is empty or
// malformed.
func ParseProjection(raw string) *Projection {
	if raw == "" {
		return nil
	}

	p := &Projection{Fields: map[string]bool{}}
	mode := 0 // 1 include, -1 exclude

	ok := walkObject(raw, func(key string, value json.RawMessage) bool {
		include, ok := projectionFlag(value)
		if !ok || key == "" {
			return false
		}
		if key == IDField {
			p.ExcludeID = !include
			return true
		}
		want := -1
		if include {
			want = 1
		}
		if mode != 0 && mode != want {
			return false
		}
		mode = want
		p.Fields[key] = true
		return true
	})
	if !ok {
		return nil
	}

	// {"_id": 0} alone excludes only the id
	p.Include = mode == 1
	return p
}

func projectionFlag(raw json.RawMessage) (bool, bool) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, true
	}

	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return false, false
	}
	f, err := n.Float64()
	if err != nil {
		return false, false
	}
	return f != 0, true
}

// Apply returns the projected copy of doc. A nil projection returns doc.
func (p *Projection) Apply(doc map[string]any) map[string]any {
	if p == nil {
		return doc
	}

	out := make(map[string]any, len(doc))
	for key, value := range doc {
		if key == IDField {
			if !p.ExcludeID {
				out[key] = value
			}
			continue
		}
		if p.Fields[key] == p.Include {
			out[key] = value
		}
	}
	return out
}
