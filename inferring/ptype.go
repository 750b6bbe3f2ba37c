package inferring

// PrimitiveType is the tag at the head of every TypeData.
//
// The tags form a lattice with PUnknown at the bottom and PError at the top:
//
//	unknown < false < {bool, int, float, string, array} < mixed < error
//	unknown < false < {tuple, class, future, future_queue, void} < error
//
// false joined with any other non-unknown tag disappears into the or_false flag.
type PrimitiveType uint8

const (
	PUnknown PrimitiveType = iota
	PFalse
	PBool
	PInt
	PFloat
	PString
	PArray
	PMixed
	PTuple
	PClass
	PFuture
	PFutureQueue
	PVoid
	PError

	numPrimitiveTypes
)

var primitiveTypeNames = [numPrimitiveTypes]string{
	PUnknown:     "unknown",
	PFalse:       "false",
	PBool:        "bool",
	PInt:         "int",
	PFloat:       "float",
	PString:      "string",
	PArray:       "array",
	PMixed:       "mixed",
	PTuple:       "tuple",
	PClass:       "class",
	PFuture:      "future",
	PFutureQueue: "future_queue",
	PVoid:        "void",
	PError:       "error",
}

func (p PrimitiveType) String() string {
	if p >= numPrimitiveTypes {
		return "invalid"
	}
	return primitiveTypeNames[p]
}

func ParsePrimitiveType(name string) (PrimitiveType, bool) {
	for p, n := range primitiveTypeNames {
		if n == name {
			return PrimitiveType(p), true
		}
	}
	return PUnknown, false
}

// mixable tags are the ones mixed can hold
func (p PrimitiveType) mixable() bool {
	return p >= PBool && p <= PMixed
}

// JoinPrimitive is the least upper bound of two tags. Two class tags join to PClass here;
// whether their classes are related is decided by the caller.
func JoinPrimitive(a, b PrimitiveType) PrimitiveType {
	switch {
	case a == b:
		return a
	case a == PUnknown:
		return b
	case b == PUnknown:
		return a
	case a == PError || b == PError:
		return PError
	case a == PFalse:
		return b
	case b == PFalse:
		return a
	case a.mixable() && b.mixable():
		return PMixed
	default:
		return PError
	}
}
