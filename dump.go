package btree

import (
	"cmp"
	"fmt"
	"io"
	"strings"
)

// LevelOrder returns the keys of every page, one row per tree level,
// root first. Diagnostic only.
func (t *Tree[K, V]) LevelOrder() [][]K {
	var d [][]K

	level := []*page[K, V]{t.root}

	for len(level) != 0 {
		var next []*page[K, V]
		var row []K

		for _, p := range level {
			next = append(next, p.sub...)

			for _, e := range p.kvs {
				row = append(row, e.k)
			}
		}

		d = append(d, row)
		level = next
	}

	return d
}

// DebugDump writes keys with their values in order, children indented
// under the parent.
func DebugDump[K cmp.Ordered, V any](w io.Writer, t *Tree[K, V]) {
	debugDump(w, 0, t.root)
}

func debugDump[K cmp.Ordered, V any](w io.Writer, d int, p *page[K, V]) {
	pad := strings.Repeat("    ", d)

	for i, e := range p.kvs {
		if !p.leaf {
			debugDump(w, d+1, p.sub[i])
		}

		fmt.Fprintf(w, "%v%-8v => %v\n", pad, e.k, e.v)
	}

	if !p.leaf {
		debugDump(w, d+1, p.sub[len(p.sub)-1])
	}
}
