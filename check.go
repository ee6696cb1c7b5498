package btree

import (
	stderrors "errors"

	"tlog.app/go/errors"
)

var ( // invariant violations
	errPageSize  = stderrors.New("page size out of bounds")
	errPageLinks = stderrors.New("kvs/children mismatch")
	errKeyOrder  = stderrors.New("keys out of order")
	errLeafDepth = stderrors.New("leaves at different depth")
	errNoValues  = stderrors.New("kv with no values")
	errMeta      = stderrors.New("size/depth bookkeeping mismatch")
)

// check walks the whole tree verifying the structural invariants: page
// fill bounds, children counts, equal leaf depth and strict key order
// across the in-order walk. Tests run it after mutation sequences.
func (t *Tree[K, V]) check() error {
	var prev *K
	leafd := -1
	keys := 0

	key := func(k K) error {
		if prev != nil && *prev >= k {
			return errors.Wrap(errKeyOrder, "%v after %v", k, *prev)
		}

		prev = &k
		keys++

		return nil
	}

	var walk func(p *page[K, V], d int) error
	walk = func(p *page[K, V], d int) (err error) {
		switch {
		case len(p.kvs) > 2*Degree-1:
			return errors.Wrap(errPageSize, "%d kvs", len(p.kvs))
		case p != t.root && len(p.kvs) < Degree-1:
			return errors.Wrap(errPageSize, "%d kvs", len(p.kvs))
		case p == t.root && !p.leaf && len(p.kvs) == 0:
			return errors.Wrap(errPageSize, "drained root")
		}

		for _, e := range p.kvs {
			if len(e.v) == 0 {
				return errors.Wrap(errNoValues, "key %v", e.k)
			}
		}

		if p.leaf {
			if len(p.sub) != 0 {
				return errors.Wrap(errPageLinks, "leaf with %d children", len(p.sub))
			}

			if leafd == -1 {
				leafd = d
			} else if leafd != d {
				return errors.Wrap(errLeafDepth, "%d != %d", d, leafd)
			}

			for _, e := range p.kvs {
				if err = key(e.k); err != nil {
					return err
				}
			}

			return nil
		}

		if len(p.sub) != len(p.kvs)+1 {
			return errors.Wrap(errPageLinks, "%d kvs, %d children", len(p.kvs), len(p.sub))
		}

		for i, ch := range p.sub {
			if err = walk(ch, d+1); err != nil {
				return errors.Wrap(err, "child %d", i)
			}

			if i < len(p.kvs) {
				if err = key(p.kvs[i].k); err != nil {
					return err
				}
			}
		}

		return nil
	}

	err := walk(t.root, 0)
	if err != nil {
		return err
	}

	if keys != t.n {
		return errors.Wrap(errMeta, "%d keys, Size %d", keys, t.n)
	}
	if leafd+1 != t.depth {
		return errors.Wrap(errMeta, "%d levels, Depth %d", leafd+1, t.depth)
	}

	return nil
}
