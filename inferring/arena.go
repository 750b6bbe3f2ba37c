package inferring

import (
	"sync/atomic"

	"github.com/benbjohnson/immutable"
)

// nodeID indexes arena.nodes
type nodeID int32

const noNode nodeID = -1

type node struct {
	ptype      PrimitiveType
	class      ClassID
	flags      Flags
	generation Generation

	// parent is a back-reference only: a node is owned by the arena, not by its parent
	parent nodeID
	anyKey nodeID
	// subkeys is nil until the first keyed child is created. It is persistent, so
	// iterating over a snapshot of it is safe while the same node is being extended.
	subkeys *immutable.SortedMap[Key, nodeID]
}

func (n *node) structured() bool {
	return n.anyKey != noNode || n.subkeys != nil
}

// arena owns every node of one type tree.
//
// Trees can be shared by several owners (see TypeData.Share); a Worker clones a shared
// arena before writing to it.
type arena struct {
	u     *Universe
	nodes []node
	// refs counts the owners of this arena
	refs atomic.Int32
	// frozen arenas are the Universe's constants and are never written to
	frozen bool
}

func newArena(u *Universe) *arena {
	a := &arena{u: u}
	a.refs.Store(1)
	return a
}

func (a *arena) newNode(p PrimitiveType, class ClassID, flags Flags, parent nodeID, gen Generation) nodeID {
	a.nodes = append(a.nodes, node{
		ptype:      p,
		class:      class,
		flags:      flags,
		generation: gen,
		parent:     parent,
		anyKey:     noNode,
	})
	return nodeID(len(a.nodes) - 1)
}

func (a *arena) shared() bool {
	return a.frozen || a.refs.Load() > 1
}

// cloneAll copies the whole arena keeping node ids, so handles into the original
// can be redirected to the copy by swapping the arena only.
// Children maps are persistent and are shared rather than copied.
func (a *arena) cloneAll() *arena {
	c := newArena(a.u)
	c.nodes = make([]node, len(a.nodes))
	copy(c.nodes, a.nodes)
	return c
}

// copySubtree copies the subtree rooted at from in src into dst, below parent,
// and returns the id of the copy. Node ids are renumbered; orphaned nodes of src are left behind.
func copySubtree(dst *arena, src *arena, from nodeID, parent nodeID) nodeID {
	n := src.nodes[from]
	id := dst.newNode(n.ptype, n.class, n.flags, parent, n.generation)
	if n.anyKey != noNode {
		child := copySubtree(dst, src, n.anyKey, id)
		dst.nodes[id].anyKey = child
	}
	if n.subkeys != nil {
		sub := immutable.NewSortedMap[Key, nodeID](keyComparer{})
		itr := n.subkeys.Iterator()
		for !itr.Done() {
			k, srcChild, _ := itr.Next()
			sub = sub.Set(k, copySubtree(dst, src, srcChild, id))
		}
		dst.nodes[id].subkeys = sub
	}
	return id
}

// depth is the number of ancestors of id
func (a *arena) depth(id nodeID) int {
	d := 0
	for cur := a.nodes[id].parent; cur != noNode; cur = a.nodes[cur].parent {
		d++
	}
	return d
}

// child returns the child of id at exactly k, without falling back to the any key
func (a *arena) child(id nodeID, k Key) nodeID {
	n := &a.nodes[id]
	if k.IsAny() {
		return n.anyKey
	}
	if n.subkeys == nil {
		return noNode
	}
	if c, ok := n.subkeys.Get(k); ok {
		return c
	}
	return noNode
}
