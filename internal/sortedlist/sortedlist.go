// Package sortedlist provides an ordered list of unique values with
// binary-search lookups and sweep subtraction of one sorted list from
// another. It backs the RDATE/EXDATE collections of the recurrence
// package.
package sortedlist

import "slices"

// List is a list of unique values kept in ascending order of a compare
// function. Construct with New; the zero value has no compare function
// and is not usable.
type List[T any] struct {
	cmp   func(a, b T) int
	elems []T
}

// New returns an empty list ordered by cmp.
func New[T any](cmp func(a, b T) int) List[T] {
	return List[T]{cmp: cmp}
}

// Insert places v keeping ascending order. It reports whether v was
// added; a value already present is discarded.
func (l *List[T]) Insert(v T) bool {
	i, present := slices.BinarySearchFunc(l.elems, v, l.cmp)
	if present {
		return false
	}
	l.elems = slices.Insert(l.elems, i, v)
	return true
}

// Contains reports whether the list holds v.
func (l *List[T]) Contains(v T) bool {
	_, present := slices.BinarySearchFunc(l.elems, v, l.cmp)
	return present
}

// FindGT returns the index of the first element strictly greater than v,
// or -1 if no element is greater.
func (l *List[T]) FindGT(v T) int {
	i, present := slices.BinarySearchFunc(l.elems, v, l.cmp)
	if present {
		i++
	}
	if i >= len(l.elems) {
		return -1
	}
	return i
}

// FindLT returns the index of the last element strictly less than v,
// or -1 if no element is less.
func (l *List[T]) FindLT(v T) int {
	i, _ := slices.BinarySearchFunc(l.elems, v, l.cmp)
	return i - 1
}

// Append pushes v without maintaining order. Callers batching values
// this way must call SortUnique before any lookup.
func (l *List[T]) Append(v T) {
	l.elems = append(l.elems, v)
}

// Replace copies elems into the list and normalizes it.
func (l *List[T]) Replace(elems []T) {
	l.elems = slices.Clone(elems)
	l.SortUnique()
}

// SortUnique sorts the list and drops duplicate values.
func (l *List[T]) SortUnique() {
	slices.SortFunc(l.elems, l.cmp)
	l.elems = slices.CompactFunc(l.elems, func(a, b T) bool {
		return l.cmp(a, b) == 0
	})
}

// RemoveAll removes every element that appears in other, whose elements
// must be in ascending order. Scanning starts at index start and both
// lists are swept once. The returned index is where the subtraction
// stopped, so a caller subtracting several lists in increasing order can
// resume there instead of rescanning from zero, making the total cost
// linear in both sequences.
func (l *List[T]) RemoveAll(other []T, start int) int {
	if start < 0 {
		start = 0
	}
	if start >= len(l.elems) || len(other) == 0 {
		return start
	}
	r, w := start, start
	for j := 0; r < len(l.elems) && j < len(other); {
		switch c := l.cmp(l.elems[r], other[j]); {
		case c < 0:
			l.elems[w] = l.elems[r]
			w++
			r++
		case c > 0:
			j++
		default:
			r++
		}
	}
	resume := w
	for r < len(l.elems) {
		l.elems[w] = l.elems[r]
		w++
		r++
	}
	l.elems = l.elems[:w]
	return resume
}

// Len returns the number of elements.
func (l *List[T]) Len() int {
	return len(l.elems)
}

// At returns the i'th element in ascending order.
func (l *List[T]) At(i int) T {
	return l.elems[i]
}

// First returns the smallest element. The list must be non-empty.
func (l *List[T]) First() T {
	return l.elems[0]
}

// Last returns the largest element. The list must be non-empty.
func (l *List[T]) Last() T {
	return l.elems[len(l.elems)-1]
}

// Values returns a copy of the elements in ascending order.
func (l *List[T]) Values() []T {
	return slices.Clone(l.elems)
}

// Clone returns an independent copy of the list.
func (l *List[T]) Clone() List[T] {
	return List[T]{cmp: l.cmp, elems: slices.Clone(l.elems)}
}

// Clear removes all elements.
func (l *List[T]) Clear() {
	l.elems = nil
}

// Equal reports whether both lists hold the same elements in the same
// order, compared with l's compare function.
func (l *List[T]) Equal(other *List[T]) bool {
	if len(l.elems) != len(other.elems) {
		return false
	}
	for i := range l.elems {
		if l.cmp(l.elems[i], other.elems[i]) != 0 {
			return false
		}
	}
	return true
}
