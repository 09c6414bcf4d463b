package mcpserver

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{0, 1, 2, 3, 4}

	tests := []struct {
		name   string
		items  []int
		offset int
		limit  int
		want   []int
	}{
		{name: "default limit returns all when under 100", items: items, want: []int{0, 1, 2, 3, 4}},
		{name: "explicit limit", items: items, limit: 2, want: []int{0, 1}},
		{name: "offset only", items: items, offset: 2, want: []int{2, 3, 4}},
		{name: "offset and limit", items: items, offset: 1, limit: 2, want: []int{1, 2}},
		{name: "offset beyond end", items: items, offset: 5, limit: 2, want: nil},
		{name: "negative offset", items: items, offset: -1, limit: 2, want: nil},
		{name: "limit exceeds remaining", items: items, offset: 3, limit: 10, want: []int{3, 4}},
		{name: "overflow", items: items, offset: 1, limit: math.MaxInt, want: []int{1, 2, 3, 4}},
		{name: "nil slice", items: nil, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, paginate(tt.items, tt.offset, tt.limit))
		})
	}
}

func TestMakeSlice(t *testing.T) {
	assert.Nil(t, makeSlice[int](0))
	s := makeSlice[int](3)
	assert.NotNil(t, s)
	assert.Empty(t, s)
	assert.Equal(t, 3, cap(s))
}

func TestSanitizeError(t *testing.T) {
	assert.Empty(t, sanitizeError(nil))
	err := errors.New("open /home/alice/specs/api.yaml: no such file")
	assert.Equal(t, "open <path>: no such file", sanitizeError(err))
}

func TestErrResult(t *testing.T) {
	res := errResult(errors.New("boom"))
	assert.True(t, res.IsError)
	assert.Len(t, res.Content, 1)
}

func TestGroupAndSort(t *testing.T) {
	groups := groupAndSort([]string{"b", "a", "b", "c", "a", "b"}, func(s string) []string {
		return []string{s}
	})
	assert.Equal(t, []groupCount{{Key: "b", Count: 3}, {Key: "a", Count: 2}, {Key: "c", Count: 1}}, groups)
}
