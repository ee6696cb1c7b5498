// Package btree implements an in-memory ordered index: a B-tree mapping
// each key to the sequence of values inserted under it.
//
// Repeated Put with the same key accumulates values in insertion order,
// Del removes the key with all its values. Pages hold between Degree-1
// and 2*Degree-1 kvs (the root excepted), all leaves stay at the same
// depth.
//
// The tree is not safe for concurrent use.
package btree

import "cmp"

// Degree is the minimal branching factor.
const Degree = 16

type Tree[K cmp.Ordered, V any] struct {
	root *page[K, V]

	n     int // distinct keys
	depth int
}

func New[K cmp.Ordered, V any]() *Tree[K, V] {
	return &Tree[K, V]{
		root:  &page[K, V]{leaf: true},
		depth: 1,
	}
}

func (t *Tree[K, V]) Size() int { return t.n }

func (t *Tree[K, V]) Depth() int { return t.depth }

func (t *Tree[K, V]) Put(k K, v V) {
	if t.root.full() { // deletion merges may leave the root at capacity
		t.grow()
	}

	if t.put(t.root, k, v) {
		t.n++
	}

	if t.root.full() {
		t.grow()
	}
}

// grow splits the root and wraps both halves in a new one, the only way
// the tree gets taller.
func (t *Tree[K, V]) grow() {
	sep, right := t.root.split()

	t.root = &page[K, V]{
		kvs: []kv[K, V]{sep},
		sub: []*page[K, V]{t.root, right},
	}
	t.depth++
}

// put descends to the page the key belongs to.
// A duplicate key accumulates the value at whatever page already holds
// it, be it a leaf or not. It reports whether a new key was added.
func (t *Tree[K, V]) put(p *page[K, V], k K, v V) bool {
	i, eq := p.search(k)
	if eq {
		p.kvs[i].v = append(p.kvs[i].v, v)
		return false
	}

	if p.leaf {
		p.insert(i, k, v)
		return true
	}

	// a deletion merge may have left the child at capacity, split it
	// before it takes one more kv
	if p.sub[i].full() {
		p.splitChild(i)

		if sep := p.kvs[i]; k == sep.k { // the key came up with the split
			p.kvs[i].v = append(p.kvs[i].v, v)
			return false
		} else if k > sep.k {
			i++
		}
	}

	ch := p.sub[i]
	fresh := t.put(ch, k, v)

	// overflow is repaired by the parent, bounding the split chain to
	// the descent path
	if ch.full() {
		p.splitChild(i)
	}

	return fresh
}

// Get returns all the values accumulated under the key, in insertion
// order, or nil if there is no such key.
func (t *Tree[K, V]) Get(k K) []V {
	p := t.root

	for {
		i, eq := p.search(k)
		if eq {
			return p.kvs[i].v
		}

		if p.leaf {
			return nil
		}

		p = p.sub[i]
	}
}

// Del removes the key and all its values. It's a no-op if the key is
// not there.
func (t *Tree[K, V]) Del(k K) {
	root, ok := t.root.remove(k)
	if root != t.root { // merge drained the root, the tree shrinks
		t.depth--
	}
	t.root = root

	if ok {
		t.n--
	}
}
