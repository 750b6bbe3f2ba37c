package inferring

import (
	"iter"
	"strings"

	"github.com/benbjohnson/immutable"
)

// MultiKey is an immutable path of keys, outermost first.
// The zero MultiKey is the empty path.
type MultiKey struct {
	keys *immutable.List[Key]
}

func NewMultiKey(keys ...Key) MultiKey {
	for _, k := range keys {
		k.mustBeValid()
	}
	return MultiKey{keys: immutable.NewList(keys...)}
}

func (m MultiKey) Len() int {
	if m.keys == nil {
		return 0
	}
	return m.keys.Len()
}

func (m MultiKey) At(i int) Key {
	return m.keys.Get(i)
}

// Append returns a longer path; m itself is left untouched
func (m MultiKey) Append(k Key) MultiKey {
	k.mustBeValid()
	if m.keys == nil {
		return NewMultiKey(k)
	}
	return MultiKey{keys: m.keys.Append(k)}
}

func (m MultiKey) All() iter.Seq2[int, Key] {
	return func(yield func(int, Key) bool) {
		for i := range m.Len() {
			if !yield(i, m.At(i)) {
				return
			}
		}
	}
}

// Compare orders paths lexicographically, shorter prefixes first
func (m MultiKey) Compare(other MultiKey) int {
	for i := range min(m.Len(), other.Len()) {
		if c := CompareKeys(m.At(i), other.At(i)); c != 0 {
			return c
		}
	}
	return m.Len() - other.Len()
}

func (m MultiKey) Equal(other MultiKey) bool {
	return m.Compare(other) == 0
}

// MultiKeyString renders m as "[a][0][Any]"
func (in *Interner) MultiKeyString(m MultiKey) string {
	sb := &strings.Builder{}
	for _, k := range m.All() {
		sb.WriteString("[")
		sb.WriteString(in.KeyString(k))
		sb.WriteString("]")
	}
	return sb.String()
}

// PathOf builds a MultiKey from literals as understood by KeyFor
func (in *Interner) PathOf(literals ...string) MultiKey {
	keys := make([]Key, len(literals))
	for i, lit := range literals {
		keys[i] = in.KeyFor(lit)
	}
	return NewMultiKey(keys...)
}
