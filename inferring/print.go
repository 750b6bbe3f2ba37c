package inferring

import (
	"strconv"
	"strings"
)

// String renders t in the syntax ParseType reads, for example
//
//	array<int|false>
//	array{"name": string, 0: \User, *: mixed}
//	tuple(int, string)!
func (t TypeData) String() string {
	if !t.Present() {
		return "<absent>"
	}
	sb := &strings.Builder{}
	t.write(sb)
	return sb.String()
}

func (t TypeData) write(sb *strings.Builder) {
	n := *t.node()
	u := t.a.u
	if n.ptype == PClass && n.class != NoClass {
		sb.WriteString(`\`)
		sb.WriteString(u.Classes.Name(n.class))
	} else {
		sb.WriteString(n.ptype.String())
	}

	switch {
	case n.subkeys == nil && n.anyKey != noNode:
		sb.WriteString("<")
		t.at(n.anyKey).write(sb)
		sb.WriteString(">")
	case n.ptype == PTuple && t.tupleShaped():
		sb.WriteString("(")
		first := true
		for _, child := range t.Subkeys() {
			if !first {
				sb.WriteString(", ")
			}
			first = false
			child.write(sb)
		}
		sb.WriteString(")")
	case n.subkeys != nil:
		sb.WriteString("{")
		first := true
		for k, child := range t.Subkeys() {
			if !first {
				sb.WriteString(", ")
			}
			first = false
			sb.WriteString(u.keyLiteral(k))
			sb.WriteString(": ")
			child.write(sb)
		}
		if n.anyKey != noNode {
			sb.WriteString(", *: ")
			t.at(n.anyKey).write(sb)
		}
		sb.WriteString("}")
	}

	if n.flags&FlagOrFalse != 0 && n.ptype != PFalse {
		sb.WriteString("|false")
	}
	if n.flags&FlagError != 0 && n.ptype != PError {
		sb.WriteString("!")
	}
}

// tupleShaped reports whether t's children are exactly the int keys 0..n-1
func (t TypeData) tupleShaped() bool {
	if t.node().anyKey != noNode {
		return false
	}
	want := int64(0)
	for k := range t.Subkeys() {
		i, ok := k.Int()
		if !ok || i != want {
			return false
		}
		want++
	}
	return true
}

func (u *Universe) keyLiteral(k Key) string {
	switch {
	case k.IsAny():
		return "*"
	case k.IsString():
		return strconv.Quote(u.Keys.KeyString(k))
	default:
		return u.Keys.KeyString(k)
	}
}
