package btree

import (
	"cmp"
	"fmt"
	"slices"
	"sort"

	"tlog.app/go/loc"
)

type (
	// page is a tree node. Branch pages keep one more child than kvs,
	// kvs separate the children key ranges.
	page[K cmp.Ordered, V any] struct {
		leaf bool
		kvs  []kv[K, V]
		sub  []*page[K, V]
	}

	kv[K cmp.Ordered, V any] struct {
		k K
		v []V
	}
)

// search returns the position of k in the page and whether it is there.
// Without the exact match i is the insertion position, which is also the
// child the key belongs to.
func (p *page[K, V]) search(k K) (i int, eq bool) {
	i = sort.Search(len(p.kvs), func(i int) bool { return p.kvs[i].k >= k })
	eq = i < len(p.kvs) && p.kvs[i].k == k

	return i, eq
}

func (p *page[K, V]) insert(i int, k K, v V) {
	p.kvs = slices.Insert(p.kvs, i, kv[K, V]{k: k, v: []V{v}})
}

func (p *page[K, V]) full() bool { return len(p.kvs) == 2*Degree-1 }

// split moves the highest-ranking half of the page to a new right
// sibling. The caller splices the separator and the sibling into the
// parent.
func (p *page[K, V]) split() (kv[K, V], *page[K, V]) {
	if !p.full() {
		panic(fmt.Sprintf("split of non-full page (%d kvs)  from %v", len(p.kvs), loc.Caller(1)))
	}

	sep := p.kvs[Degree-1]

	r := &page[K, V]{leaf: p.leaf}
	r.kvs = append(r.kvs, p.kvs[Degree:]...)
	p.kvs = p.kvs[:Degree-1]

	if !p.leaf {
		r.sub = append(r.sub, p.sub[Degree:]...)
		p.sub = p.sub[:Degree]
	}

	return sep, r
}

func (p *page[K, V]) splitChild(i int) {
	sep, r := p.sub[i].split()

	p.kvs = slices.Insert(p.kvs, i, sep)
	p.sub = slices.Insert(p.sub, i+1, r)
}

// merge collapses sub[i], the separator at i and sub[i+1] into a single
// page, which takes the child slot at i.
func (p *page[K, V]) merge(i int) *page[K, V] {
	l, r := p.sub[i], p.sub[i+1]
	if len(l.kvs)+len(r.kvs)+1 > 2*Degree-1 {
		panic(fmt.Sprintf("merge overflow (%d + %d kvs)  from %v", len(l.kvs), len(r.kvs), loc.Caller(1)))
	}

	m := &page[K, V]{leaf: l.leaf}
	m.kvs = append(m.kvs, l.kvs...)
	m.kvs = append(m.kvs, p.kvs[i])
	m.kvs = append(m.kvs, r.kvs...)

	if !m.leaf {
		m.sub = append(m.sub, l.sub...)
		m.sub = append(m.sub, r.sub...)
	}

	p.kvs = slices.Delete(p.kvs, i, i+1)
	p.sub = slices.Delete(p.sub, i+1, i+2)
	p.sub[i] = m

	return m
}

// borrowRight rotates the lowest kv of the right sibling through the
// separator into sub[i].
func (p *page[K, V]) borrowRight(i int) {
	c, r := p.sub[i], p.sub[i+1]
	if len(r.kvs) <= Degree-1 {
		panic(fmt.Sprintf("borrow from minimal sibling (%d kvs)  from %v", len(r.kvs), loc.Caller(1)))
	}

	c.kvs = append(c.kvs, p.kvs[i])
	p.kvs[i] = r.kvs[0]
	r.kvs = slices.Delete(r.kvs, 0, 1)

	if !c.leaf {
		c.sub = append(c.sub, r.sub[0])
		r.sub = slices.Delete(r.sub, 0, 1)
	}
}

func (p *page[K, V]) borrowLeft(i int) {
	l, c := p.sub[i-1], p.sub[i]
	if len(l.kvs) <= Degree-1 {
		panic(fmt.Sprintf("borrow from minimal sibling (%d kvs)  from %v", len(l.kvs), loc.Caller(1)))
	}

	c.kvs = slices.Insert(c.kvs, 0, p.kvs[i-1])
	p.kvs[i-1] = l.kvs[len(l.kvs)-1]
	l.kvs = l.kvs[:len(l.kvs)-1]

	if !c.leaf {
		c.sub = slices.Insert(c.sub, 0, l.sub[len(l.sub)-1])
		l.sub = l.sub[:len(l.sub)-1]
	}
}

// pred is the highest kv of the subtree, succ is the lowest.
func (p *page[K, V]) pred() kv[K, V] {
	for !p.leaf {
		p = p.sub[len(p.sub)-1]
	}

	return p.kvs[len(p.kvs)-1]
}

func (p *page[K, V]) succ() kv[K, V] {
	for !p.leaf {
		p = p.sub[0]
	}

	return p.kvs[0]
}

// remove deletes the key and all its values from the subtree.
// It returns the page to use in place of p, since a merge draining the
// last separator collapses p into the merged child, and whether the key
// was there.
func (p *page[K, V]) remove(k K) (*page[K, V], bool) {
	i, eq := p.search(k)

	if p.leaf {
		if !eq {
			return p, false
		}

		p.kvs = slices.Delete(p.kvs, i, i+1)

		return p, true
	}

	if eq { // the key separates sub[i] and sub[i+1]
		l, r := p.sub[i], p.sub[i+1]

		switch {
		case len(l.kvs) > Degree-1:
			e := l.pred()
			p.kvs[i] = e
			p.sub[i], _ = l.remove(e.k)
		case len(r.kvs) > Degree-1:
			e := r.succ()
			p.kvs[i] = e
			p.sub[i+1], _ = r.remove(e.k)
		default: // both neighbours minimal, bring the key down and retry there
			m := p.merge(i)

			if len(p.kvs) == 0 {
				return m.remove(k)
			}

			m.remove(k)
		}

		return p, true
	}

	// the key can only be in sub[i]

	if len(p.sub[i].kvs) == Degree-1 { // repair before descending
		switch {
		case i+1 < len(p.sub) && len(p.sub[i+1].kvs) > Degree-1:
			p.borrowRight(i)
		case i > 0 && len(p.sub[i-1].kvs) > Degree-1:
			p.borrowLeft(i)
		default:
			mi := i
			if mi > 0 {
				mi--
			}

			m := p.merge(mi)

			if len(p.kvs) == 0 {
				return m.remove(k)
			}
		}

		// the key moved with the repair, retry at the same page
		return p.remove(k)
	}

	_, ok := p.sub[i].remove(k)

	return p, ok
}
