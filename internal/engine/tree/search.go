package tree

import "iter"

// Search yields the value of every map entry whose key equals key, anywhere
// in v. Nodes are processed from a LIFO stack: a map's entries are scanned in
// stored order, matches are yielded immediately, and container values of
// non-matching entries are pushed for later. Sequence elements are pushed in
// their original order, so they pop last-first. A matched value is not
// itself descended into.
//
// "First" for callers therefore means first in this order, not first in
// document order.
func Search(v *Value, key string) iter.Seq[*Value] {
	return func(yield func(*Value) bool) {
		if v == nil {
			return
		}
		stack := []*Value{v}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			switch cur.Kind() {
			case KindSeq:
				stack = append(stack, cur.items...)
			case KindMap:
				for _, e := range cur.entries {
					if e.Key == key {
						if !yield(e.Value) {
							return
						}
						continue
					}
					if e.Value.IsContainer() {
						stack = append(stack, e.Value)
					}
				}
			}
		}
	}
}

// First returns the first value produced by seq, or def when seq is empty.
// Iteration stops as soon as a value is seen.
func First(seq iter.Seq[*Value], def *Value) *Value {
	for v := range seq {
		return v
	}
	return def
}

// FindFirst is First(Search(v, key), nil).
func FindFirst(v *Value, key string) *Value {
	return First(Search(v, key), nil)
}

// FindAll collects every Search match.
func FindAll(v *Value, key string) []*Value {
	var out []*Value
	for m := range Search(v, key) {
		out = append(out, m)
	}
	return out
}
