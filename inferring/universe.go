package inferring

import (
	"log/slog"

	"github.com/cottand/tinf/internal/log"
)

// DefaultMaxDepth bounds how deep the join may build structure before collapsing it
const DefaultMaxDepth = 6

// ErrorProxy decides whether an error flag raised on child also taints parent
type ErrorProxy func(child, parent TypeData) bool

// DefaultErrorProxy proxies errors to every parent except mixed ones,
// as a mixed container can hold whatever its element turned out to be
func DefaultErrorProxy(_, parent TypeData) bool {
	return parent.PType() != PMixed
}

// Universe holds what one compilation run shares across all its workers:
// the key interner, the class hierarchy, the generation clock and settings
type Universe struct {
	Keys    *Interner
	Classes *Classes

	clock      Clock
	maxDepth   int
	proxyError ErrorProxy
	logger     *slog.Logger

	constants [numPrimitiveTypes]TypeData
	arrays    [numPrimitiveTypes]TypeData
}

type Option func(*Universe)

func WithMaxDepth(depth int) Option {
	return func(u *Universe) {
		if depth < 1 {
			depth = 1
		}
		u.maxDepth = depth
	}
}

func WithErrorProxy(proxy ErrorProxy) Option {
	return func(u *Universe) {
		u.proxyError = proxy
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(u *Universe) {
		u.logger = logger
	}
}

// WithClasses makes the universe use an existing class hierarchy
func WithClasses(classes *Classes) Option {
	return func(u *Universe) {
		u.Classes = classes
	}
}

func NewUniverse(opts ...Option) *Universe {
	u := &Universe{
		Classes:    NewClasses(),
		maxDepth:   DefaultMaxDepth,
		proxyError: DefaultErrorProxy,
		logger:     log.Section("inferring"),
	}
	for _, opt := range opts {
		opt(u)
	}
	u.Keys = NewInterner(u.logger)
	u.initConstants()
	return u
}

func (u *Universe) Clock() *Clock {
	return &u.clock
}

func (u *Universe) MaxDepth() int {
	return u.maxDepth
}

func (u *Universe) Logger() *slog.Logger {
	return u.logger
}

// Worker mutates TypeData on behalf of one inference goroutine.
// It is not safe for concurrent use; create one per goroutine.
type Worker struct {
	u       *Universe
	current Generation
}

func (u *Universe) NewWorker() *Worker {
	return &Worker{u: u, current: u.clock.Current()}
}

func (w *Worker) Universe() *Universe {
	return w.u
}

func (u *Universe) initConstants() {
	for p := range numPrimitiveTypes {
		t := u.NewType(p)
		t.a.frozen = true
		u.constants[p] = t

		arr := u.NewType(PArray)
		elem := arr.a.newNode(p, NoClass, 0, arr.id, 0)
		if p == PError {
			arr.a.nodes[elem].flags |= FlagError
			arr.a.nodes[arr.id].flags |= FlagError
		}
		arr.a.nodes[arr.id].anyKey = elem
		arr.a.frozen = true
		u.arrays[p] = arr
	}
}

// TypeOf returns the shared, read-only type made of just tag p.
// Writing to it through a Worker clones it first.
func (u *Universe) TypeOf(p PrimitiveType) TypeData {
	return u.constants[p]
}

// ArrayOf returns the shared, read-only type of arrays of p
func (u *Universe) ArrayOf(p PrimitiveType) TypeData {
	return u.arrays[p]
}

// NewType returns a fresh leaf owned by the caller
func (u *Universe) NewType(p PrimitiveType) TypeData {
	a := newArena(u)
	var flags Flags
	if p == PError {
		flags = FlagError
	}
	return TypeData{a: a, id: a.newNode(p, NoClass, flags, noNode, 0)}
}

// NewClassType returns a fresh leaf of class c
func (u *Universe) NewClassType(c ClassID) TypeData {
	a := newArena(u)
	return TypeData{a: a, id: a.newNode(PClass, c, 0, noNode, 0)}
}
