package inferring

// head is what a node holds apart from its children
type head struct {
	ptype PrimitiveType
	class ClassID
	flags Flags
}

func headOf(n *node) head {
	return head{ptype: n.ptype, class: n.class, flags: n.flags}
}

// combineHeads joins two heads without touching any node
func (u *Universe) combineHeads(l, r head) head {
	p := JoinPrimitive(l.ptype, r.ptype)
	flags := l.flags | r.flags
	if p != PFalse && (l.ptype == PFalse || r.ptype == PFalse) {
		flags |= FlagOrFalse
	}

	class := NoClass
	if p == PClass {
		switch {
		case l.class == NoClass:
			class = r.class
		case r.class == NoClass:
			class = l.class
		default:
			class = u.Classes.CommonAncestor(l.class, r.class)
			if class == NoClass {
				p = PError
			}
		}
	}
	if p == PError {
		flags |= FlagError
	}
	return head{ptype: p, class: class, flags: flags}
}

func (w *Worker) joinHead(a *arena, id nodeID, r head, saveOrFalse bool) {
	if !saveOrFalse {
		r.flags &^= FlagOrFalse
		if r.ptype == PFalse {
			r.ptype = PUnknown
		}
	}
	res := w.u.combineHeads(headOf(&a.nodes[id]), r)
	w.setPType(a, id, res.ptype)
	w.setClass(a, id, res.class)
	w.setFlags(a, id, res.flags)
}

// SetLCA merges rhs into t, leaving in t the least upper bound of both.
//
// Tags, classes and flags are joined, then children are joined key by key
// (keys only rhs has are created in t). The or_false flag and the false tag of rhs
// only take part when saveOrFalse is set; children always merge them.
// Structure deeper than the universe's max depth is collapsed as FixInfArray does,
// so merging is idempotent only for types within that depth: merging a deeper type,
// even with itself, leaves it collapsed.
func (w *Worker) SetLCA(t *TypeData, rhs TypeData, saveOrFalse bool) {
	if !rhs.Present() {
		return
	}
	w.own(t)
	w.join(t.a, t.id, rhs.a, rhs.id, saveOrFalse, t.a.depth(t.id))
}

// SetLCAAt merges rhs into the node of t at path, creating the path if needed
func (w *Worker) SetLCAAt(t *TypeData, path MultiKey, rhs TypeData, saveOrFalse bool) {
	if !rhs.Present() {
		return
	}
	w.own(t)
	cur := t.id
	for _, k := range path.All() {
		cur = w.atForce(t.a, cur, k)
	}
	w.join(t.a, cur, rhs.a, rhs.id, saveOrFalse, t.a.depth(cur))
}

// SetLCAType joins t's tag with p, leaving children alone
func (w *Worker) SetLCAType(t *TypeData, p PrimitiveType) {
	w.own(t)
	w.joinHead(t.a, t.id, head{ptype: p}, true)
}

func (w *Worker) join(la *arena, lid nodeID, ra *arena, rid nodeID, saveOrFalse bool, depth int) {
	if la == ra && lid == rid {
		return
	}
	// r is a copy: ra may be la, and la.nodes can move while children are created
	r := ra.nodes[rid]
	w.joinHead(la, lid, headOf(&r), saveOrFalse)

	if depth >= w.u.maxDepth {
		if r.structured() || la.nodes[lid].structured() {
			w.collapse(la, lid, ra, rid)
		}
		return
	}
	if r.anyKey != noNode {
		lc := w.atForce(la, lid, AnyKey())
		w.join(la, lc, ra, r.anyKey, true, depth+1)
	}
	if r.subkeys != nil {
		itr := r.subkeys.Iterator()
		for !itr.Done() {
			k, rc, _ := itr.Next()
			lc := w.atForce(la, lid, k)
			w.join(la, lc, ra, rc, true, depth+1)
		}
	}
}
