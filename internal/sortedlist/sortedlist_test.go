package sortedlist

import (
	"cmp"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntList(values ...int) List[int] {
	l := New(cmp.Compare[int])
	for _, v := range values {
		l.Insert(v)
	}
	return l
}

func TestList_InsertKeepsSortedUnique(t *testing.T) {
	values := []int{5, 3, 9, 3, 1, 9, 7, 5, 2}
	rand.Shuffle(len(values), func(i, j int) {
		values[i], values[j] = values[j], values[i]
	})

	l := New(cmp.Compare[int])
	for _, v := range values {
		l.Insert(v)
	}

	got := l.Values()
	require.Equal(t, []int{1, 2, 3, 5, 7, 9}, got)

	// Re-inserting an existing value reports false and changes nothing.
	assert.False(t, l.Insert(5))
	assert.Equal(t, 6, l.Len())
}

func TestList_Contains(t *testing.T) {
	l := newIntList(1, 3, 5)

	assert.True(t, l.Contains(3))
	assert.False(t, l.Contains(4))
	assert.False(t, l.Contains(0))
	assert.False(t, l.Contains(6))
}

func TestList_FindGT(t *testing.T) {
	l := newIntList(10, 20, 30)

	tests := []struct {
		name     string
		value    int
		expected int
	}{
		{name: "below all", value: 5, expected: 0},
		{name: "equal to first", value: 10, expected: 1},
		{name: "between elements", value: 15, expected: 1},
		{name: "equal to last", value: 30, expected: -1},
		{name: "above all", value: 35, expected: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, l.FindGT(tt.value))
		})
	}
}

func TestList_FindLT(t *testing.T) {
	l := newIntList(10, 20, 30)

	tests := []struct {
		name     string
		value    int
		expected int
	}{
		{name: "below all", value: 5, expected: -1},
		{name: "equal to first", value: 10, expected: -1},
		{name: "between elements", value: 25, expected: 1},
		{name: "above all", value: 35, expected: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, l.FindLT(tt.value))
		})
	}
}

func TestList_SortUnique(t *testing.T) {
	l := New(cmp.Compare[int])
	for _, v := range []int{4, 2, 4, 4, 1, 2} {
		l.Append(v)
	}
	l.SortUnique()

	assert.Equal(t, []int{1, 2, 4}, l.Values())
}

func TestList_Replace(t *testing.T) {
	l := newIntList(1, 2, 3)
	src := []int{9, 7, 7, 8}
	l.Replace(src)

	assert.Equal(t, []int{7, 8, 9}, l.Values())

	// The list must not alias the caller's slice.
	src[0] = 0
	assert.Equal(t, []int{7, 8, 9}, l.Values())
}

func TestList_RemoveAll(t *testing.T) {
	l := newIntList(1, 2, 3, 4, 5, 6)
	l.RemoveAll([]int{2, 4, 7}, 0)

	assert.Equal(t, []int{1, 3, 5, 6}, l.Values())
}

func TestList_RemoveAllResume(t *testing.T) {
	l := newIntList(1, 2, 3, 4, 5, 6, 7, 8)

	// Two subtractions in increasing order, the second resuming where
	// the first stopped.
	hint := l.RemoveAll([]int{2, 3}, 0)
	hint = l.RemoveAll([]int{6, 7}, hint)

	assert.Equal(t, []int{1, 4, 5, 8}, l.Values())
	assert.LessOrEqual(t, hint, l.Len())
}

func TestList_RemoveAllNoOverlap(t *testing.T) {
	l := newIntList(1, 3, 5)
	l.RemoveAll([]int{2, 4, 6}, 0)

	assert.Equal(t, []int{1, 3, 5}, l.Values())
}

func TestList_CloneIsIndependent(t *testing.T) {
	l := newIntList(1, 2, 3)
	c := l.Clone()
	c.Insert(4)

	assert.Equal(t, 3, l.Len())
	assert.Equal(t, 4, c.Len())
}

func TestList_Equal(t *testing.T) {
	a := newIntList(1, 2, 3)
	b := newIntList(3, 2, 1)
	c := newIntList(1, 2)

	assert.True(t, a.Equal(&b))
	assert.False(t, a.Equal(&c))
}
