package inferring

import (
	"cmp"
	"testing"

	"github.com/hashicorp/go-set/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagsAreMonotone(t *testing.T) {
	u := NewUniverse()
	w := u.NewWorker()
	x := u.NewType(PInt)

	w.SetWriteFlag(&x, true)
	assert.True(t, x.WriteFlag())
	assert.Panics(t, func() { w.SetWriteFlag(&x, false) })
	assert.Panics(t, func() { w.SetFlags(&x, FlagRead) }, "SetFlags must not drop the write flag")

	w.SetFlags(&x, FlagRead|FlagWrite)
	w.SetOrFalseFlag(&x, true)
	assert.Panics(t, func() { w.SetOrFalseFlag(&x, false) })
	assert.Panics(t, func() { w.SetReadFlag(&x, false) })

	w.SetErrorFlag(&x, true)
	assert.NotPanics(t, func() { w.SetErrorFlag(&x, false) })
	assert.True(t, x.ErrorFlag())

	y := u.NewType(PInt)
	w.SetLCA(&y, x, true)
	assert.Equal(t, FlagWrite|FlagRead|FlagOrFalse|FlagError, y.Flags())

	// merging something with fewer flags keeps them all
	w.SetLCA(&y, u.TypeOf(PInt), true)
	assert.Equal(t, FlagWrite|FlagRead|FlagOrFalse|FlagError, y.Flags())
}

func TestStructuredNeverReverts(t *testing.T) {
	u := NewUniverse()
	w := u.NewWorker()
	x := u.NewType(PArray)
	assert.False(t, x.Structured())

	child := w.WriteAt(&x, u.Keys.IntKey(0))
	assert.True(t, x.Structured())
	assert.False(t, child.Structured())
	parent, ok := child.Parent()
	require.True(t, ok)
	assert.True(t, parent.Equal(x))

	w.SetLCA(&x, u.TypeOf(PInt), true)
	w.SetLCA(&x, u.TypeOf(PUnknown), true)
	w.FixInfArray(&x)
	assert.True(t, x.Structured())
	assert.Equal(t, "mixed{0: unknown}", x.String())
}

func TestWriteAtInvalidKey(t *testing.T) {
	u := NewUniverse()
	w := u.NewWorker()
	x := u.NewType(PArray)
	assert.Panics(t, func() { w.WriteAt(&x, Key{}) })
	assert.Panics(t, func() { x.LookupAt(Key{}) })

	var absent TypeData
	assert.Panics(t, func() { w.WriteAt(&absent, AnyKey()) })
}

func TestLookupAt(t *testing.T) {
	u := NewUniverse()
	x := u.MustParseType(`array{"a": int, *: string}`)

	a, ok := x.LookupAt(u.Keys.StringKey("a"))
	require.True(t, ok)
	assert.Equal(t, "int", a.String())

	other, ok := x.LookupAt(u.Keys.StringKey("zz"))
	require.True(t, ok, "unknown keys fall back to the any-index child")
	assert.Equal(t, "string", other.String())

	_, ok = x.SubkeyAt(u.Keys.StringKey("zz"))
	assert.False(t, ok)

	_, ok = u.TypeOf(PInt).LookupAt(AnyKey())
	assert.False(t, ok)

	nested := u.MustParseType(`array<array{"x": bool}>`)
	found, ok := nested.LookupAtPath(u.Keys.PathOf("3", "x"))
	require.True(t, ok)
	assert.Equal(t, "bool", found.String())
	_, ok = nested.LookupAtPath(u.Keys.PathOf("3", "x", "y"))
	assert.False(t, ok)
}

func TestConstReadAt(t *testing.T) {
	u := NewUniverse()
	// the shape of a wait_multi result: an array of futures
	waitMulti := u.MustParseType("array<future<int>>")

	assert.Equal(t, "future<int>", waitMulti.ConstReadAt(AnyKey()).String())
	assert.Equal(t, "int", waitMulti.ConstReadAtPath(u.Keys.PathOf("*", "*")).String())

	missing := u.TypeOf(PInt).ConstReadAt(AnyKey())
	assert.Equal(t, PUnknown, missing.PType())
	assert.True(t, missing.Equal(u.TypeOf(PUnknown)))
}

func TestSubkeysAreOrdered(t *testing.T) {
	u := NewUniverse()
	w := u.NewWorker()
	x := u.NewType(PArray)
	for _, i := range []int64{3, -1, 0, 2} {
		w.WriteAt(&x, u.Keys.IntKey(i))
	}
	var got []int64
	for k := range x.Subkeys() {
		i, _ := k.Int()
		got = append(got, i)
	}
	assert.Equal(t, []int64{-1, 0, 2, 3}, got)
	assert.Equal(t, 4, x.SubkeysLen())
}

func TestCopyOnWrite(t *testing.T) {
	u := NewUniverse()
	w := u.NewWorker()

	x := u.MustParseType("array<int>")
	other := x.Share()
	assert.True(t, x.Shared())

	w.WriteAt(&x, u.Keys.StringKey("k"))
	assert.Equal(t, `array{"k": unknown, *: int}`, x.String())
	assert.Equal(t, "array<int>", other.String(), "the other owner must not see the write")
	assert.False(t, x.Shared())
	assert.False(t, other.Shared())

	constant := u.TypeOf(PInt)
	w.SetLCAType(&constant, PString)
	assert.Equal(t, PMixed, constant.PType())
	assert.Equal(t, PInt, u.TypeOf(PInt).PType(), "constants are never written to")

	arr := u.ArrayOf(PString)
	w.SetLCA(&arr, u.ArrayOf(PInt), true)
	assert.Equal(t, "array<mixed>", arr.String())
	assert.Equal(t, "array<string>", u.ArrayOf(PString).String())

	shared := u.NewType(PInt).Share()
	shared.Release()
	assert.False(t, shared.Shared())
}

func TestCopyOnWriteThroughChild(t *testing.T) {
	u := NewUniverse()
	w := u.NewWorker()

	root := u.NewType(PArray)
	child := w.WriteAt(&root, u.Keys.IntKey(0))
	w.SetLCAType(&child, PInt)
	assert.Equal(t, "array{0: int}", root.String(), "writes through a child of an unshared tree reach the root")

	other := root.Share()
	assert.Panics(t, func() { w.SetLCA(&child, u.TypeOf(PString), true) })
	assert.True(t, root.Shared(), "a refused write must not give up ownership")
	assert.Equal(t, "array{0: int}", other.String())

	w.SetLCA(&root, u.ArrayOf(PString), true)
	assert.Equal(t, "array{0: int, *: string}", root.String())
	assert.Equal(t, "array{0: int}", other.String(), "the other owner must not see the write")
	assert.False(t, other.Shared())
}

func TestClone(t *testing.T) {
	u := NewUniverse()
	w := u.NewWorker()
	x := u.MustParseType(`array{"a": tuple(int, string), *: float|false}`)
	inner, _ := x.SubkeyAt(u.Keys.StringKey("a"))

	c := inner.Clone()
	assert.Equal(t, "tuple(int, string)", c.String())
	_, hasParent := c.Parent()
	assert.False(t, hasParent)

	w.SetLCAAt(&c, u.Keys.PathOf("0"), u.TypeOf(PString), true)
	assert.Equal(t, "tuple(mixed, string)", c.String())
	assert.Equal(t, `array{"a": tuple(int, string), *: float|false}`, x.String())
}

func TestGenerations(t *testing.T) {
	u := NewUniverse()
	w := u.NewWorker()
	x := u.MustParseType("array<int>")
	assert.Equal(t, Generation(0), x.Generation())

	w.IncGeneration()
	child := w.WriteAt(&x, AnyKey())
	assert.Equal(t, Generation(0), x.Generation(), "writing to an existing child is not a change")

	w.SetLCAType(&child, PString)
	assert.Equal(t, Generation(1), child.Generation())
	assert.Equal(t, Generation(1), x.Generation(), "changes are visible from the root")

	w.IncGeneration()
	w.SetLCA(&x, u.MustParseType("array<int>"), true)
	assert.Equal(t, Generation(1), x.Generation(), "a merge that changes nothing keeps the generation")

	w.SetReadFlag(&x, true)
	assert.Equal(t, Generation(2), x.Generation())
	assert.Equal(t, Generation(1), child.Generation())
}

func TestClock(t *testing.T) {
	u := NewUniverse()
	w1, w2 := u.NewWorker(), u.NewWorker()

	w1.IncGeneration()
	w1.IncGeneration()
	w1.IncGeneration()
	assert.Equal(t, Generation(0), u.Clock().Current(), "workers only publish when synced")
	assert.Equal(t, Generation(3), w1.Sync())
	assert.Equal(t, Generation(3), u.Clock().Current())

	assert.Equal(t, Generation(3), w2.Sync())
	g := u.Clock().Advance()
	assert.Equal(t, Generation(4), g)

	w2.UpdGeneration(g)
	w2.UpdGeneration(2)
	assert.Equal(t, Generation(4), w2.CurrentGeneration())

	// publishing an older generation never moves the clock back
	assert.Equal(t, Generation(4), w1.Sync())
	assert.Equal(t, Generation(4), u.Clock().Current())
}

func TestErrorFlagProxy(t *testing.T) {
	t.Run("to array parent", func(t *testing.T) {
		u := NewUniverse()
		w := u.NewWorker()
		arr := u.MustParseType("array<int>")
		child := w.WriteAt(&arr, AnyKey())
		w.SetLCAType(&child, PTuple)

		assert.True(t, child.ErrorFlag())
		assert.True(t, arr.ErrorFlag())
		assert.Equal(t, PArray, arr.PType())
		assert.Equal(t, "array<error>!", arr.String())
	})
	t.Run("not to mixed parent", func(t *testing.T) {
		u := NewUniverse()
		w := u.NewWorker()
		m := u.MustParseType("mixed<int>")
		child := w.WriteAt(&m, AnyKey())
		w.SetErrorFlag(&child, true)

		assert.True(t, child.ErrorFlag())
		assert.False(t, m.ErrorFlag())
	})
	t.Run("through several levels", func(t *testing.T) {
		u := NewUniverse()
		w := u.NewWorker()
		x := u.MustParseType(`tuple(array<future<int>>)`)
		leaf := w.WriteAtPath(&x, u.Keys.PathOf("0", "*", "*"))
		w.SetErrorFlag(&leaf, true)
		assert.Equal(t, "tuple(array<future<int!>!>!)!", x.String())
	})
	t.Run("custom predicate", func(t *testing.T) {
		u := NewUniverse(WithErrorProxy(func(child, parent TypeData) bool { return false }))
		w := u.NewWorker()
		arr := u.MustParseType("array<int>")
		child := w.WriteAt(&arr, AnyKey())
		w.SetErrorFlag(&child, true)
		assert.False(t, arr.ErrorFlag())
	})
}

func TestUseOrFalse(t *testing.T) {
	u := NewUniverse()
	testCases := []struct {
		src      string
		use      bool
		realType PrimitiveType
	}{
		{"int|false", true, PInt},
		{"int", false, PInt},
		{"mixed|false", false, PMixed},
		{"unknown|false", false, PFalse},
		{"false", false, PFalse},
	}
	for _, tc := range testCases {
		t.Run(tc.src, func(t *testing.T) {
			x := u.MustParseType(tc.src)
			assert.Equal(t, tc.use, x.UseOrFalse())
			assert.Equal(t, tc.realType, x.RealPType())
		})
	}
}

func TestClassDiscovery(t *testing.T) {
	u := universeWithClasses(t)
	a, _ := u.Classes.Lookup("A")
	b, _ := u.Classes.Lookup("B")
	c, _ := u.Classes.Lookup("C")

	x := u.MustParseType(`array{"a": \B, *: tuple(\A, int)}`)
	assert.True(t, x.HasClassTypeInside())
	assert.Equal(t, []ClassID{a, b}, x.AllClassTypesInside())

	plain := u.MustParseType("array<tuple(int, string)>")
	assert.False(t, plain.HasClassTypeInside())
	assert.Empty(t, plain.AllClassTypesInside())

	// a class tag whose class is not known yet names no class
	bare := u.NewType(PClass)
	assert.False(t, bare.HasClassTypeInside())
	assert.Empty(t, bare.AllClassTypesInside())

	all := set.NewTreeSet[ClassID](cmp.Compare[ClassID])
	CollectClassTypes(all, x, plain, u.MustParseType(`future<\C>`), TypeData{})
	assert.Equal(t, []ClassID{a, b, c}, all.Slice())
}

func TestCompare(t *testing.T) {
	u := NewUniverse()
	testCases := []struct {
		a, b string
		want int
	}{
		{"int", "int", 0},
		{"int", "string", -1},
		{"int|false", "int", 1},
		{"array<int>", "array", 1},
		{`array{"a": int}`, `array{"a": int}`, 0},
		{`array{"a": int}`, `array{"a": string}`, -1},
		{`array{"a": int}`, `array{"a": int, "b": int}`, -1},
	}
	for _, tc := range testCases {
		t.Run(tc.a+" vs "+tc.b, func(t *testing.T) {
			a, b := u.MustParseType(tc.a), u.MustParseType(tc.b)
			assert.Equal(t, tc.want, Compare(a, b))
			assert.Equal(t, -tc.want, Compare(b, a))
		})
	}
	assert.Equal(t, -1, Compare(TypeData{}, u.TypeOf(PUnknown)))
}

func TestCanBeSameType(t *testing.T) {
	u := universeWithClasses(t)
	testCases := []struct {
		a, b string
		want bool
	}{
		{"int", "int", true},
		{"int", "string", false},
		{"mixed", "int", true},
		{"false", "int|false", true},
		{"false", "int", false},
		{`\A`, `\Base`, true},
		{`\A`, `\B`, false},
		{"array<int>", "array<string>", false},
		{"array<int>", "array<mixed>", true},
		{`array{"a": int}`, "array<string>", false},
		{"unknown", "tuple(int)", true},
	}
	for _, tc := range testCases {
		t.Run(tc.a+" vs "+tc.b, func(t *testing.T) {
			a, b := u.MustParseType(tc.a), u.MustParseType(tc.b)
			assert.Equal(t, tc.want, CanBeSameType(a, b))
			assert.Equal(t, tc.want, CanBeSameType(b, a))
		})
	}
}
