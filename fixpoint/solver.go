package fixpoint

import (
	"context"
	"log/slog"

	"github.com/cottand/tinf/inferring"
	"github.com/cottand/tinf/internal/log"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultWorkers   = 4
	DefaultMaxRounds = 1000
)

// Solver runs the lattice join over a Graph until it reaches a fixpoint.
//
// Every round works on a snapshot of the previous one, and each slot is written
// by exactly one worker, so workers never share a node they mutate.
type Solver struct {
	u         *inferring.Universe
	workers   int
	maxRounds int
	logger    *slog.Logger
}

type SolverOption func(*Solver)

func WithWorkers(n int) SolverOption {
	return func(s *Solver) {
		s.workers = max(n, 1)
	}
}

func WithMaxRounds(n int) SolverOption {
	return func(s *Solver) {
		s.maxRounds = max(n, 1)
	}
}

func NewSolver(u *inferring.Universe, opts ...SolverOption) *Solver {
	s := &Solver{
		u:         u,
		workers:   DefaultWorkers,
		maxRounds: DefaultMaxRounds,
		logger:    log.Section("fixpoint"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type SlotResult struct {
	Name string
	Type inferring.TypeData
}

type Result struct {
	// Slots are in the order the graph declares them
	Slots []SlotResult
	// Rounds counts the rounds run, including the last one, which changed nothing
	Rounds int
}

func (r *Result) Lookup(name string) (inferring.TypeData, bool) {
	for _, slot := range r.Slots {
		if slot.Name == name {
			return slot.Type, true
		}
	}
	return inferring.TypeData{}, false
}

type edge struct {
	from        int
	path        inferring.MultiKey
	saveOrFalse bool
}

func (s *Solver) declareClasses(classes []ClassDecl) error {
	for _, decl := range classes {
		parent := inferring.NoClass
		if decl.Extends != "" {
			var ok bool
			parent, ok = s.u.Classes.Lookup(decl.Extends)
			if !ok {
				return errors.Errorf("class %s extends %s, which is not declared before it", decl.Name, decl.Extends)
			}
		}
		if _, err := s.u.Classes.Declare(decl.Name, parent); err != nil {
			return errors.Wrap(err, "could not declare class")
		}
	}
	return nil
}

func (s *Solver) Solve(ctx context.Context, g *Graph) (*Result, error) {
	if err := s.declareClasses(g.Classes); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(g.Slots))
	types := make([]inferring.TypeData, len(g.Slots))
	for i, decl := range g.Slots {
		if _, dup := index[decl.Name]; dup {
			return nil, errors.Errorf("slot %s declared twice", decl.Name)
		}
		index[decl.Name] = i
		if decl.Type == "" {
			types[i] = s.u.NewType(inferring.PUnknown)
			continue
		}
		t, err := s.u.ParseType(decl.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "slot %s", decl.Name)
		}
		types[i] = t
	}

	incoming := make([][]edge, len(types))
	for _, e := range g.Edges {
		from, ok := index[e.From]
		if !ok {
			return nil, errors.Errorf("edge from undeclared slot %s", e.From)
		}
		to, ok := index[e.To]
		if !ok {
			return nil, errors.Errorf("edge to undeclared slot %s", e.To)
		}
		incoming[to] = append(incoming[to], edge{
			from:        from,
			path:        s.u.Keys.PathOf(e.At...),
			saveOrFalse: !e.DropFalse,
		})
	}

	workers := make([]*inferring.Worker, max(min(s.workers, len(types)), 1))
	for i := range workers {
		workers[i] = s.u.NewWorker()
	}

	for round := 1; ; round++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "interrupted at round %d", round)
		}
		if round > s.maxRounds {
			return nil, errors.Errorf("no fixpoint after %d rounds", s.maxRounds)
		}
		gen := s.u.Clock().Advance()
		s.logger.Debug("round started", "round", round, "generation", gen)

		snapshot := make([]inferring.TypeData, len(types))
		for i, t := range types {
			snapshot[i] = t.Clone()
		}

		group, groupCtx := errgroup.WithContext(ctx)
		for wi, w := range workers {
			w.UpdGeneration(gen)
			group.Go(func() error {
				defer w.Sync()
				for slot := wi; slot < len(types); slot += len(workers) {
					if err := groupCtx.Err(); err != nil {
						return err
					}
					for _, e := range incoming[slot] {
						w.SetLCAAt(&types[slot], e.path, snapshot[e.from], e.saveOrFalse)
					}
					w.FixInfArray(&types[slot])
				}
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return nil, errors.Wrapf(err, "interrupted at round %d", round)
		}

		changed := 0
		for _, t := range types {
			if t.Generation() >= gen {
				changed++
			}
		}
		s.logger.Debug("round finished", "round", round, "changed", changed)
		if changed == 0 {
			s.logger.Info("fixpoint reached", "rounds", round, "slots", len(types))
			return s.result(g, types, round), nil
		}
	}
}

func (s *Solver) result(g *Graph, types []inferring.TypeData, rounds int) *Result {
	res := &Result{Rounds: rounds, Slots: make([]SlotResult, len(types))}
	for i, decl := range g.Slots {
		res.Slots[i] = SlotResult{Name: decl.Name, Type: types[i]}
	}
	return res
}
