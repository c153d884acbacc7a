package handler

import (
	"bytes"
	"encoding/json"
	"time"

	"task-user-service/internal/domain/query"
)

// userBody is the JSON body of user create and replace requests.
type userBody struct {
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	PendingTasks json.RawMessage `json:"pendingTasks"`
}

// pendingTasks reports the list when the body carries an array of strings.
func (b *userBody) pendingTasks() ([]string, bool) {
	if len(b.PendingTasks) == 0 {
		return nil, false
	}
	var ids []string
	if err := json.Unmarshal(b.PendingTasks, &ids); err != nil || ids == nil {
		return nil, false
	}
	return ids, true
}

// taskBody is the JSON body of task create and replace requests.
type taskBody struct {
	Name             string   `json:"name"`
	Description      *string  `json:"description"`
	Deadline         flexTime `json:"deadline"`
	Completed        truthy   `json:"completed"`
	AssignedUser     *string  `json:"assignedUser"`
	AssignedUserName *string  `json:"assignedUserName"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func decodeAny(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// falsy reports whether v is null, false, zero or the empty string.
func falsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 0
	}
	return false
}

// flexTime accepts epoch milliseconds, numeric strings, RFC 3339 timestamps
// and YYYY-MM-DD dates. Falsy input leaves it unset.
type flexTime struct {
	Time    time.Time
	Invalid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *flexTime) UnmarshalJSON(data []byte) error {
	v, err := decodeAny(data)
	if err != nil {
		return err
	}
	*f = flexTime{}
	if falsy(v) {
		return nil
	}
	ts, ok := query.ParseTime(v)
	if !ok {
		f.Invalid = true
		return nil
	}
	f.Time = ts
	return nil
}

// truthy decodes any JSON value to a boolean. Strings are true unless empty,
// "false" or "0".
type truthy bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *truthy) UnmarshalJSON(data []byte) error {
	v, err := decodeAny(data)
	if err != nil {
		return err
	}
	if s, ok := v.(string); ok {
		*b = truthy(s != "" && s != "false" && s != "0")
		return nil
	}
	*b = truthy(!falsy(v))
	return nil
}
