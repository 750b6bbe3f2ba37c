package inferring

import (
	"sync"

	"github.com/hashicorp/go-set/v3"
	"github.com/pkg/errors"
)

// ClassID identifies a user-defined class. Class definitions outlive every TypeData
// that refers to them, so a TypeData only stores the id.
type ClassID int32

// NoClass is the zero ClassID, used when a TypeData refers to no class
const NoClass ClassID = 0

// Classes is the single-inheritance class hierarchy of the program being compiled.
// It is safe for concurrent use, although classes are normally all declared before inference starts.
type Classes struct {
	mu      sync.RWMutex
	names   []string
	parents []ClassID
	byName  map[string]ClassID
}

func NewClasses() *Classes {
	return &Classes{
		// index 0 is NoClass
		names:   []string{""},
		parents: []ClassID{NoClass},
		byName:  make(map[string]ClassID),
	}
}

// Declare registers name as a subclass of parent (or a root class if parent is NoClass).
// Declaring the same class twice with the same parent returns the existing id.
func (c *Classes) Declare(name string, parent ClassID) (ClassID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name == "" {
		return NoClass, errors.New("class name must not be empty")
	}
	if int(parent) >= len(c.names) || parent < 0 {
		return NoClass, errors.Errorf("parent of class %s is not declared", name)
	}
	if id, ok := c.byName[name]; ok {
		if c.parents[id] != parent {
			return NoClass, errors.Errorf("class %s redeclared with a different parent", name)
		}
		return id, nil
	}
	id := ClassID(len(c.names))
	c.names = append(c.names, name)
	c.parents = append(c.parents, parent)
	c.byName[name] = id
	return id, nil
}

func (c *Classes) Lookup(name string) (ClassID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.byName[name]
	return id, ok
}

func (c *Classes) Name(id ClassID) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if int(id) >= len(c.names) || id < 0 {
		return "<undeclared>"
	}
	return c.names[id]
}

func (c *Classes) Parent(id ClassID) ClassID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.parents[id]
}

// ancestors returns id followed by all its superclasses, closest first
func (c *Classes) ancestors(id ClassID) []ClassID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var chain []ClassID
	for cur := id; cur != NoClass; cur = c.parents[cur] {
		chain = append(chain, cur)
	}
	return chain
}

// IsAncestor reports whether ancestor is id itself or one of its superclasses
func (c *Classes) IsAncestor(ancestor, id ClassID) bool {
	for _, cur := range c.ancestors(id) {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// CommonAncestor returns the closest class both a and b derive from,
// or NoClass when they are unrelated
func (c *Classes) CommonAncestor(a, b ClassID) ClassID {
	if a == b {
		return a
	}
	if a == NoClass || b == NoClass {
		return NoClass
	}
	ofA := set.From(c.ancestors(a))
	for _, cur := range c.ancestors(b) {
		if ofA.Contains(cur) {
			return cur
		}
	}
	return NoClass
}
