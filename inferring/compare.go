package inferring

import (
	"cmp"

	xset "github.com/xtgo/set"
)

type keySlice []Key

func (s keySlice) Len() int           { return len(s) }
func (s keySlice) Less(i, j int) bool { return CompareKeys(s[i], s[j]) < 0 }
func (s keySlice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// unionSubkeys returns the keys explicitly present in a or b, in order
func unionSubkeys(a, b TypeData) []Key {
	keys := make(keySlice, 0, a.SubkeysLen()+b.SubkeysLen())
	for k := range a.Subkeys() {
		keys = append(keys, k)
	}
	pivot := len(keys)
	for k := range b.Subkeys() {
		keys = append(keys, k)
	}
	return keys[:xset.Union(keys, pivot)]
}

// SubkeyAt returns the child explicitly stored at k, without falling back to the any-index child
func (t TypeData) SubkeyAt(k Key) (TypeData, bool) {
	k.mustBeValid()
	res := t.at(t.a.child(t.id, k))
	return res, res.Present()
}

// Compare orders types structurally: by tag, class, flags, any-index child and then keyed children.
// Generations are not compared. An absent TypeData sorts first.
func Compare(a, b TypeData) int {
	switch {
	case !a.Present() && !b.Present():
		return 0
	case !a.Present():
		return -1
	case !b.Present():
		return 1
	}
	an, bn := a.node(), b.node()
	if c := cmp.Compare(an.ptype, bn.ptype); c != 0 {
		return c
	}
	if c := cmp.Compare(an.class, bn.class); c != 0 {
		return c
	}
	if c := cmp.Compare(an.flags, bn.flags); c != 0 {
		return c
	}
	aAny, _ := a.AnyKeyChild()
	bAny, _ := b.AnyKeyChild()
	if c := Compare(aAny, bAny); c != 0 {
		return c
	}
	for _, k := range unionSubkeys(a, b) {
		ac, _ := a.SubkeyAt(k)
		bc, _ := b.SubkeyAt(k)
		if c := Compare(ac, bc); c != 0 {
			return c
		}
	}
	return 0
}

// Equal reports whether t and other are structurally the same type
func (t TypeData) Equal(other TypeData) bool {
	return Compare(t, other) == 0
}

// CanBeSameType reports whether a value could have both types a and b,
// which decides whether comparing values of these types can ever succeed
func CanBeSameType(a, b TypeData) bool {
	if !a.Present() || !b.Present() {
		return true
	}
	pa, pb := a.PType(), b.PType()
	switch {
	case pa == PUnknown || pb == PUnknown || pa == PError || pb == PError:
		return true
	case pa == PMixed && (pb.mixable() || pb == PFalse), pb == PMixed && (pa.mixable() || pa == PFalse):
		return true
	case pa == PFalse && b.OrFalseFlag(), pb == PFalse && a.OrFalseFlag():
		return true
	case pa != pb:
		return false
	}

	if pa == PClass && a.Class() != NoClass && b.Class() != NoClass {
		classes := a.Universe().Classes
		if !classes.IsAncestor(a.Class(), b.Class()) && !classes.IsAncestor(b.Class(), a.Class()) {
			return false
		}
	}
	aAny, aOk := a.AnyKeyChild()
	bAny, bOk := b.AnyKeyChild()
	if aOk && bOk && !CanBeSameType(aAny, bAny) {
		return false
	}
	for _, k := range unionSubkeys(a, b) {
		ac, aOk := a.LookupAt(k)
		bc, bOk := b.LookupAt(k)
		if aOk && bOk && !CanBeSameType(ac, bc) {
			return false
		}
	}
	return true
}
