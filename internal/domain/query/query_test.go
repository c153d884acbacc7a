package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []Condition
	}{
		{
			name:     "empty",
			raw:      "",
			expected: nil,
		},
		{
			name:     "not json",
			raw:      "{completed:false",
			expected: nil,
		},
		{
			name:     "array instead of object",
			raw:      `[1,2]`,
			expected: nil,
		},
		{
			name:     "trailing garbage",
			raw:      `{"name":"a"} extra`,
			expected: nil,
		},
		{
			name:     "empty object",
			raw:      `{}`,
			expected: []Condition{},
		},
		{
			name: "bare values",
			raw:  `{"completed": false, "name": "Write report", "priority": 2}`,
			expected: []Condition{
				{Field: "completed", Op: OpEq, Value: false},
				{Field: "name", Op: OpEq, Value: "Write report"},
				{Field: "priority", Op: OpEq, Value: int64(2)},
			},
		},
		{
			name: "operators",
			raw:  `{"_id": {"$in": ["a", "b"]}, "deadline": {"$lt": 1700000000000, "$gte": 1.5}}`,
			expected: []Condition{
				{Field: "_id", Op: OpIn, Value: []any{"a", "b"}},
				{Field: "deadline", Op: OpGte, Value: 1.5},
				{Field: "deadline", Op: OpLt, Value: int64(1700000000000)},
			},
		},
		{
			name: "null equality",
			raw:  `{"assignedUser": null}`,
			expected: []Condition{
				{Field: "assignedUser", Op: OpEq, Value: nil},
			},
		},
		{
			name:     "unknown operator",
			raw:      `{"name": {"$regex": "^a"}}`,
			expected: nil,
		},
		{
			name:     "top level logical operator",
			raw:      `{"$or": [{"name": "a"}]}`,
			expected: nil,
		},
		{
			name:     "in without array",
			raw:      `{"_id": {"$in": "a"}}`,
			expected: nil,
		},
		{
			name:     "nested document value",
			raw:      `{"name": {"first": "a"}}`,
			expected: nil,
		},
		{
			name:     "bare array value",
			raw:      `{"pendingTasks": ["a"]}`,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseFilter(tt.raw))
		})
	}
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []SortField
	}{
		{"empty", "", nil},
		{"malformed", `{"name":`, nil},
		{"not an object", `"name"`, nil},
		{
			"preserves key order",
			`{"deadline": 1, "name": -1}`,
			[]SortField{{Field: "deadline"}, {Field: "name", Descending: true}},
		},
		{
			"reverse key order",
			`{"name": -1, "deadline": 1}`,
			[]SortField{{Field: "name", Descending: true}, {Field: "deadline"}},
		},
		{
			"string directions",
			`{"name": "desc", "email": "ascending"}`,
			[]SortField{{Field: "name", Descending: true}, {Field: "email"}},
		},
		{"invalid direction", `{"name": 2}`, nil},
		{"invalid string direction", `{"name": "up"}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseSort(tt.raw))
		})
	}
}

func TestParseSkipAndLimit(t *testing.T) {
	assert.Equal(t, 0, ParseSkip(""))
	assert.Equal(t, 0, ParseSkip("abc"))
	assert.Equal(t, 0, ParseSkip("-3"))
	assert.Equal(t, 10, ParseSkip("10"))
	assert.Equal(t, 10, ParseSkip("10abc"))

	assert.Equal(t, 100, ParseLimit("", 100))
	assert.Equal(t, 100, ParseLimit("0", 100))
	assert.Equal(t, 100, ParseLimit("-5", 100))
	assert.Equal(t, 0, ParseLimit("nope", 0))
	assert.Equal(t, 5, ParseLimit("5", 100))
	assert.Equal(t, 7, ParseLimit(" 7 ", 0))
}

func TestFromValues(t *testing.T) {
	v := url.Values{}
	v.Set("where", `{"completed": true}`)
	v.Set("sort", `{"name": 1}`)
	v.Set("select", `{"name": 1}`)
	v.Set("skip", "20")
	v.Set("count", "true")

	p := FromValues(v, 100)

	require.Len(t, p.Filter, 1)
	assert.Equal(t, Condition{Field: "completed", Op: OpEq, Value: true}, p.Filter[0])
	assert.Equal(t, []SortField{{Field: "name"}}, p.Sort)
	require.NotNil(t, p.Projection)
	assert.True(t, p.Projection.Include)
	assert.Equal(t, 20, p.Skip)
	assert.Equal(t, 100, p.Limit)
	assert.True(t, p.Count)
}

func TestFromValues_CountMustBeExactlyTrue(t *testing.T) {
	v := url.Values{}
	v.Set("count", "1")

	p := FromValues(v, 0)

	assert.False(t, p.Count)
	assert.Nil(t, p.Filter)
	assert.Nil(t, p.Sort)
	assert.Nil(t, p.Projection)
	assert.Equal(t, 0, p.Limit)
}
