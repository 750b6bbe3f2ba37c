package inferring

import (
	"cmp"
	"hash/fnv"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
)

// Key addresses one index of an array-like type.
//
// Ids live in three disjoint spaces: 0 is the any-index key, odd ids are integer
// indices (i*2+1) and even ids from 2 onwards are interned strings.
// The zero Key is not valid and must not be used for addressing.
type Key struct {
	id    int64
	valid bool
}

const (
	minIntKey = -(1 << 61)
	maxIntKey = 1<<61 - 1
)

const anyKeyLabel = "Any"

// AnyKey is the key standing for an unknown index
func AnyKey() Key {
	return Key{id: 0, valid: true}
}

func (k Key) Valid() bool { return k.valid }

// ID returns the raw id of k
func (k Key) ID() int64 {
	k.mustBeValid()
	return k.id
}

func (k Key) IsAny() bool    { return k.valid && k.id == 0 }
func (k Key) IsInt() bool    { return k.valid && k.id&1 == 1 }
func (k Key) IsString() bool { return k.valid && k.id != 0 && k.id&1 == 0 }

// Int decodes an integer key
func (k Key) Int() (int64, bool) {
	if !k.IsInt() {
		return 0, false
	}
	return (k.id - 1) / 2, true
}

func (k Key) mustBeValid() {
	if !k.valid {
		violated("use of an uninitialised Key")
	}
}

// CompareKeys orders keys by id, which puts negative integers first, then the any key,
// then string and positive integer keys interleaved
func CompareKeys(a, b Key) int {
	a.mustBeValid()
	b.mustBeValid()
	return cmp.Compare(a.id, b.id)
}

// keyComparer adapts CompareKeys for immutable.SortedMap
type keyComparer struct{}

func (keyComparer) Compare(a, b Key) int { return CompareKeys(a, b) }

const internerBuckets = 64

// Interner hands out string keys and remembers their names.
//
// It is safe for concurrent use: lookups of an existing key never block, and creating a
// new one only locks the bucket the string hashes to.
type Interner struct {
	buckets [internerBuckets]internBucket
	// stringKeys counts created string keys; the n-th one gets id n*2
	stringKeys atomic.Int64
	// names maps string key ids back to their string, for diagnostics
	names sync.Map

	logger *slog.Logger
}

type internBucket struct {
	mu   sync.Mutex
	keys sync.Map
}

func NewInterner(logger *slog.Logger) *Interner {
	if logger == nil {
		logger = discardLogger()
	}
	return &Interner{logger: logger}
}

func bucketOf(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64() % internerBuckets
}

// IntKey returns the key for integer index i.
// Keys are values, so two callers asking for the same i always get equal keys.
func (in *Interner) IntKey(i int64) Key {
	if i < minIntKey || i > maxIntKey {
		violated("int key %d out of range", i)
	}
	return Key{id: i*2 + 1, valid: true}
}

// StringKey returns the key for string index s, creating it on first use
func (in *Interner) StringKey(s string) Key {
	b := &in.buckets[bucketOf(s)]
	if k, ok := b.keys.Load(s); ok {
		return k.(Key)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	// another goroutine may have created it while we waited for the lock
	if k, ok := b.keys.Load(s); ok {
		return k.(Key)
	}
	k := Key{id: in.stringKeys.Add(1) * 2, valid: true}
	if _, loaded := in.names.LoadOrStore(k.id, s); loaded {
		violated("string key id %d handed out twice", k.id)
	}
	b.keys.Store(s, k)
	in.logger.Debug("new string key", "key", s, "id", k.id)
	return k
}

// StringKeys returns how many string keys have been created so far
func (in *Interner) StringKeys() int {
	return int(in.stringKeys.Load())
}

// KeyFor interprets a literal the way paths are written in graph files and on the command line:
// "*" is the any key, integers are int keys and everything else is a string key
func (in *Interner) KeyFor(literal string) Key {
	if literal == "*" {
		return AnyKey()
	}
	if i, err := strconv.ParseInt(literal, 10, 64); err == nil && i >= minIntKey && i <= maxIntKey {
		return in.IntKey(i)
	}
	return in.StringKey(literal)
}

// KeyString decodes k for diagnostics
func (in *Interner) KeyString(k Key) string {
	k.mustBeValid()
	switch {
	case k.IsInt():
		i, _ := k.Int()
		return strconv.FormatInt(i, 10)
	case k.IsString():
		name, ok := in.names.Load(k.id)
		if !ok {
			violated("string key id %d was not produced by this interner", k.id)
		}
		return name.(string)
	case k.IsAny():
		return anyKeyLabel
	}
	violated("malformed key id %d", k.id)
	return ""
}
