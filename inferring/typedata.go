package inferring

import (
	"iter"

	"github.com/cottand/tinf/util"
)

// Flags is the bitset of facts recorded about a type. All of them are monotone:
// once set they are never cleared.
type Flags uint8

const (
	FlagWrite Flags = 1 << iota
	FlagRead
	// FlagOrFalse records that the value may also be the distinguished false
	FlagOrFalse
	// FlagError records a type conflict somewhere in or below this node
	FlagError
)

// TypeData is a handle on one node of a type tree.
// The zero TypeData is absent: it refers to no node.
type TypeData struct {
	a  *arena
	id nodeID
}

// Present reports whether t refers to a node
func (t TypeData) Present() bool {
	return t.a != nil
}

func (t TypeData) node() *node {
	if t.a == nil {
		violated("use of an absent TypeData")
	}
	return &t.a.nodes[t.id]
}

func (t TypeData) at(id nodeID) TypeData {
	if id == noNode {
		return TypeData{}
	}
	return TypeData{a: t.a, id: id}
}

func (t TypeData) Universe() *Universe {
	return t.a.u
}

func (t TypeData) PType() PrimitiveType {
	return t.node().ptype
}

// RealPType reads an unknown type that may be false as false
func (t TypeData) RealPType() PrimitiveType {
	n := t.node()
	if n.ptype == PUnknown && n.flags&FlagOrFalse != 0 {
		return PFalse
	}
	return n.ptype
}

func (t TypeData) Class() ClassID {
	return t.node().class
}

func (t TypeData) Flags() Flags {
	return t.node().flags
}

func (t TypeData) WriteFlag() bool   { return t.Flags()&FlagWrite != 0 }
func (t TypeData) ReadFlag() bool    { return t.Flags()&FlagRead != 0 }
func (t TypeData) OrFalseFlag() bool { return t.Flags()&FlagOrFalse != 0 }
func (t TypeData) ErrorFlag() bool   { return t.Flags()&FlagError != 0 }

// UseOrFalse reports whether code generation must wrap this type to also hold false
func (t TypeData) UseOrFalse() bool {
	n := t.node()
	if n.flags&FlagOrFalse == 0 {
		return false
	}
	switch n.ptype {
	case PUnknown, PFalse, PMixed, PError:
		return false
	default:
		return true
	}
}

// Structured reports whether t has children. Once true it stays true.
func (t TypeData) Structured() bool {
	return t.node().structured()
}

func (t TypeData) Generation() Generation {
	return t.node().generation
}

// Parent returns the node t is a child of, if any
func (t TypeData) Parent() (TypeData, bool) {
	p := t.at(t.node().parent)
	return p, p.Present()
}

// LookupAt returns the child at k, falling back to the any-index child
func (t TypeData) LookupAt(k Key) (TypeData, bool) {
	k.mustBeValid()
	child := t.a.child(t.id, k)
	if child == noNode {
		child = t.node().anyKey
	}
	res := t.at(child)
	return res, res.Present()
}

// LookupAtPath follows LookupAt along path
func (t TypeData) LookupAtPath(path MultiKey) (TypeData, bool) {
	cur := t
	for _, k := range path.All() {
		next, ok := cur.LookupAt(k)
		if !ok {
			return TypeData{}, false
		}
		cur = next
	}
	return cur, true
}

// ConstReadAt is LookupAt for readers that need a type either way:
// an absent child reads as unknown
func (t TypeData) ConstReadAt(k Key) TypeData {
	if res, ok := t.LookupAt(k); ok {
		return res
	}
	return t.a.u.TypeOf(PUnknown)
}

func (t TypeData) ConstReadAtPath(path MultiKey) TypeData {
	if res, ok := t.LookupAtPath(path); ok {
		return res
	}
	return t.a.u.TypeOf(PUnknown)
}

// AnyKeyChild returns the child standing for an unknown index
func (t TypeData) AnyKeyChild() (TypeData, bool) {
	res := t.at(t.node().anyKey)
	return res, res.Present()
}

// Subkeys iterates over the explicitly keyed children, in key order
func (t TypeData) Subkeys() iter.Seq2[Key, TypeData] {
	return func(yield func(Key, TypeData) bool) {
		sub := t.node().subkeys
		if sub == nil {
			return
		}
		itr := sub.Iterator()
		for !itr.Done() {
			k, child, _ := itr.Next()
			if !yield(k, t.at(child)) {
				return
			}
		}
	}
}

// SubkeysLen is the number of explicitly keyed children
func (t TypeData) SubkeysLen() int {
	sub := t.node().subkeys
	if sub == nil {
		return 0
	}
	return sub.Len()
}

// Clone returns a deep copy of the subtree at t, owned by the caller.
// The class is shared, not copied.
func (t TypeData) Clone() TypeData {
	if !t.Present() {
		return t
	}
	a := newArena(t.a.u)
	return TypeData{a: a, id: copySubtree(a, t.a, t.id, noNode)}
}

// Share registers one more owner of the tree t belongs to.
// While it has several owners, writing through any of them clones it first.
func (t TypeData) Share() TypeData {
	if t.Present() && !t.a.frozen {
		t.a.refs.Add(1)
	}
	return t
}

// Release gives up ownership taken with Share
func (t TypeData) Release() {
	if t.Present() && !t.a.frozen {
		t.a.refs.Add(-1)
	}
}

// Shared reports whether writing to t would clone its tree first
func (t TypeData) Shared() bool {
	return t.Present() && t.a.shared()
}

// HasClassTypeInside reports whether any class is reachable from t
func (t TypeData) HasClassTypeInside() bool {
	found := false
	t.walk(func(n *node) bool {
		found = n.class != NoClass
		return !found
	})
	return found
}

// walk visits the subtree at t depth first until visit returns false
func (t TypeData) walk(visit func(n *node) bool) {
	stack := util.NewStack(t.id)
	for id, ok := stack.Pop(); ok; id, ok = stack.Pop() {
		n := &t.a.nodes[id]
		if !visit(n) {
			return
		}
		if n.anyKey != noNode {
			stack.Push(n.anyKey)
		}
		if n.subkeys != nil {
			itr := n.subkeys.Iterator()
			for !itr.Done() {
				_, child, _ := itr.Next()
				stack.Push(child)
			}
		}
	}
}
