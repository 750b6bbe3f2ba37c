package inferring

import "github.com/cottand/tinf/util"

// Merging recursive structures, like an array that ends up holding arrays of itself,
// can unfold forever. Below the universe's max depth a node is therefore kept in
// collapsed form: no keyed children and a single leaf any-key child summarising
// everything that was or would have been below it.

// canonical reports whether id is in collapsed form, or is a leaf
func (a *arena) canonical(id nodeID) bool {
	n := &a.nodes[id]
	if !n.structured() {
		return true
	}
	return n.subkeys == nil && !a.nodes[n.anyKey].structured()
}

// summarise joins the heads of all strict descendants of id into s.
// Arrays that had children of their own are counted as mixed,
// as their element type cannot be kept.
func (u *Universe) summarise(s head, a *arena, id nodeID) head {
	n := &a.nodes[id]
	var children []nodeID
	if n.anyKey != noNode {
		children = append(children, n.anyKey)
	}
	if n.subkeys != nil {
		itr := n.subkeys.Iterator()
		for !itr.Done() {
			_, c, _ := itr.Next()
			children = append(children, c)
		}
	}
	for _, c := range children {
		h := headOf(&a.nodes[c])
		if a.nodes[c].structured() && h.ptype == PArray {
			h.ptype = PMixed
		}
		s = u.combineHeads(s, h)
		s = u.summarise(s, a, c)
	}
	return s
}

// collapse puts id in collapsed form, also folding in everything below rid when ra is not nil
func (w *Worker) collapse(a *arena, id nodeID, ra *arena, rid nodeID) {
	s := w.u.summarise(head{}, a, id)
	if ra != nil {
		s = w.u.summarise(s, ra, rid)
	}

	if !a.canonical(id) {
		// the old children are left unreachable in the arena rather than modified,
		// so whoever still holds a handle on them sees them unchanged
		a.nodes[id].subkeys = nil
		a.nodes[id].anyKey = noNode
		w.onChanged(a, id)
		w.u.logger.Debug("collapsed recursive structure", "depth", a.depth(id), "summary", s.ptype.String())
	}
	child := w.atForce(a, id, AnyKey())
	w.joinHead(a, child, s, true)
}

// FixInfArray collapses any structure of t nested deeper than the universe's max depth,
// which bounds the height of every type and so guarantees the fixpoint terminates.
// SetLCA already keeps what it builds bounded; this is for structure created through
// WriteAtPath and SetLCAAt with long paths.
func (w *Worker) FixInfArray(t *TypeData) {
	w.own(t)
	type item struct {
		id    nodeID
		depth int
	}
	stack := util.NewStack(item{id: t.id, depth: t.a.depth(t.id)})
	for cur, ok := stack.Pop(); ok; cur, ok = stack.Pop() {
		if cur.depth >= w.u.maxDepth {
			if !t.a.canonical(cur.id) {
				w.collapse(t.a, cur.id, nil, noNode)
			}
			continue
		}
		n := &t.a.nodes[cur.id]
		if n.anyKey != noNode {
			stack.Push(item{id: n.anyKey, depth: cur.depth + 1})
		}
		if n.subkeys != nil {
			itr := n.subkeys.Iterator()
			for !itr.Done() {
				_, c, _ := itr.Next()
				stack.Push(item{id: c, depth: cur.depth + 1})
			}
		}
	}
}

// Height is the length of the longest path from t down to a leaf
func (t TypeData) Height() int {
	n := t.node()
	h := 0
	if child, ok := t.AnyKeyChild(); ok {
		h = max(h, child.Height()+1)
	}
	if n.subkeys != nil {
		for _, child := range t.Subkeys() {
			h = max(h, child.Height()+1)
		}
	}
	return h
}
