package inferring

import (
	"github.com/benbjohnson/immutable"
)

// own makes sure t's tree has no other owner before it is written to.
// Only a root handle can take over a shared tree, as the clone replaces the whole arena.
func (w *Worker) own(t *TypeData) {
	if !t.Present() {
		violated("write through an absent TypeData")
	}
	if !t.a.shared() {
		return
	}
	if t.a.nodes[t.id].parent != noNode {
		violated("write through a child of a shared type: write through its root instead")
	}
	old := t.a
	t.a = old.cloneAll()
	if !old.frozen {
		old.refs.Add(-1)
	}
}

// onChanged stamps id and all its ancestors with the worker's generation
func (w *Worker) onChanged(a *arena, id nodeID) {
	for cur := id; cur != noNode; cur = a.nodes[cur].parent {
		n := &a.nodes[cur]
		if n.generation < w.current {
			n.generation = w.current
		}
	}
}

func (w *Worker) setPType(a *arena, id nodeID, p PrimitiveType) {
	if a.nodes[id].ptype == p {
		return
	}
	a.nodes[id].ptype = p
	w.onChanged(a, id)
	if p == PError {
		w.setError(a, id)
	}
}

func (w *Worker) setClass(a *arena, id nodeID, c ClassID) {
	if a.nodes[id].class == c {
		return
	}
	a.nodes[id].class = c
	w.onChanged(a, id)
}

// setFlags adds flags, which must include all flags already set
func (w *Worker) setFlags(a *arena, id nodeID, flags Flags) {
	old := a.nodes[id].flags
	if removed := old &^ flags; removed != 0 {
		violated("it is forbidden to remove flags %04b", removed)
	}
	added := flags &^ old &^ FlagError
	if added != 0 {
		a.nodes[id].flags |= added
		w.onChanged(a, id)
	}
	if flags&FlagError != 0 {
		w.setError(a, id)
	}
}

func (w *Worker) setFlag(a *arena, id nodeID, flag Flags, on bool) {
	has := a.nodes[id].flags&flag != 0
	switch {
	case has && !on:
		violated("it is forbidden to remove flag %04b", flag)
	case !has && on:
		w.setFlags(a, id, a.nodes[id].flags|flag)
	}
}

// setError raises the error flag and, where the proxy predicate says so, the parent's
func (w *Worker) setError(a *arena, id nodeID) {
	for cur := id; cur != noNode; {
		n := &a.nodes[cur]
		if n.flags&FlagError != 0 {
			return
		}
		n.flags |= FlagError
		w.onChanged(a, cur)

		parent := n.parent
		if parent == noNode || !w.u.proxyError(TypeData{a: a, id: cur}, TypeData{a: a, id: parent}) {
			return
		}
		cur = parent
	}
}

// atForce returns the child of id at exactly k, creating it if needed
func (w *Worker) atForce(a *arena, id nodeID, k Key) nodeID {
	k.mustBeValid()
	if child := a.child(id, k); child != noNode {
		return child
	}
	child := a.newNode(PUnknown, NoClass, 0, id, w.current)
	n := &a.nodes[id]
	if k.IsAny() {
		n.anyKey = child
	} else {
		if n.subkeys == nil {
			n.subkeys = immutable.NewSortedMap[Key, nodeID](keyComparer{})
		}
		n.subkeys = n.subkeys.Set(k, child)
	}
	w.onChanged(a, id)
	return child
}

// WriteAt returns the child of t at k for writing, creating it (and so making t structured)
// if it does not exist yet. If t's tree is shared it is cloned first and t is updated to point
// into the clone; t must then be the root of the tree. Handles on nodes of t taken before
// the clone keep pointing into the tree the other owners still hold, so they must not be
// written through afterwards.
func (w *Worker) WriteAt(t *TypeData, k Key) TypeData {
	w.own(t)
	return t.at(w.atForce(t.a, t.id, k))
}

// WriteAtPath applies WriteAt along path, creating intermediate structure
func (w *Worker) WriteAtPath(t *TypeData, path MultiKey) TypeData {
	w.own(t)
	cur := t.id
	for _, k := range path.All() {
		cur = w.atForce(t.a, cur, k)
	}
	return t.at(cur)
}

func (w *Worker) SetWriteFlag(t *TypeData, on bool) {
	w.own(t)
	w.setFlag(t.a, t.id, FlagWrite, on)
}

func (w *Worker) SetReadFlag(t *TypeData, on bool) {
	w.own(t)
	w.setFlag(t.a, t.id, FlagRead, on)
}

func (w *Worker) SetOrFalseFlag(t *TypeData, on bool) {
	w.own(t)
	w.setFlag(t.a, t.id, FlagOrFalse, on)
}

// SetErrorFlag raises the error flag. Lowering it is not an error, but has no effect.
func (w *Worker) SetErrorFlag(t *TypeData, on bool) {
	if !on {
		return
	}
	w.own(t)
	w.setError(t.a, t.id)
}

// SetFlags adds flags to t. flags must contain every flag t already has.
func (w *Worker) SetFlags(t *TypeData, flags Flags) {
	w.own(t)
	w.setFlags(t.a, t.id, flags)
}

// SetClassType joins t's class with c, like SetLCA with a class leaf would
func (w *Worker) SetClassType(t *TypeData, c ClassID) {
	w.own(t)
	w.joinHead(t.a, t.id, head{ptype: PClass, class: c}, true)
}
