package inferring

import (
	"cmp"

	"github.com/hashicorp/go-set/v3"
)

// AllClassTypesInside collects every class reachable from t, ordered by id.
// Code generation uses it to know which classes a type needs registered.
func (t TypeData) AllClassTypesInside() []ClassID {
	found := set.NewTreeSet[ClassID](cmp.Compare[ClassID])
	t.walk(func(n *node) bool {
		if n.class != NoClass {
			found.Insert(n.class)
		}
		return true
	})
	return found.Slice()
}

// CollectClassTypes adds the classes of all types to into, for callers that gather
// classes across many types at once
func CollectClassTypes(into *set.TreeSet[ClassID], types ...TypeData) {
	for _, t := range types {
		if !t.Present() {
			continue
		}
		for _, c := range t.AllClassTypesInside() {
			into.Insert(c)
		}
	}
}
