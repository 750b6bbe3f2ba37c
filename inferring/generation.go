package inferring

import "sync/atomic"

// Generation stamps TypeData nodes with the moment they last changed.
// Stamps only ever grow.
type Generation int64

// Clock is the generation shared by all workers of one compilation.
// Workers run on their own copy and only meet the Clock at synchronisation points.
type Clock struct {
	global atomic.Int64
}

func (c *Clock) Current() Generation {
	return Generation(c.global.Load())
}

// Advance starts a new inference round and returns its generation
func (c *Clock) Advance() Generation {
	return Generation(c.global.Add(1))
}

// observe raises the clock to g if it is behind
func (c *Clock) observe(g Generation) {
	for {
		cur := c.global.Load()
		if int64(g) <= cur || c.global.CompareAndSwap(cur, int64(g)) {
			return
		}
	}
}

// CurrentGeneration is the stamp this worker puts on the nodes it changes
func (w *Worker) CurrentGeneration() Generation {
	return w.current
}

func (w *Worker) IncGeneration() {
	w.current++
}

// UpdGeneration moves the worker forward to other, if other is ahead
func (w *Worker) UpdGeneration(other Generation) {
	if other > w.current {
		w.current = other
	}
}

// Sync publishes the worker's generation to the shared Clock and catches up with it.
// It returns the generation the worker continues with.
func (w *Worker) Sync() Generation {
	w.u.clock.observe(w.current)
	w.UpdGeneration(w.u.clock.Current())
	return w.current
}
