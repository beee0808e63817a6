package interpreter

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/LyricLy/yaiba/pkg/program"
	"github.com/LyricLy/yaiba/pkg/runtime"
)

// Options configures an Interpreter.
type Options struct {
	// Port handles 'r' and 'w'. A nil port fails the first I/O instruction.
	Port   Port
	Logger zerolog.Logger
}

// Stats summarises a run.
type Stats struct {
	Sweeps   int64
	Steps    int64
	Spawned  int64
	Removed  int64
	PeakPool int
}

// Interpreter runs one program. It is not safe for concurrent use.
type Interpreter struct {
	prog  *program.Program
	pool  *runtime.Pool
	port  Port
	log   zerolog.Logger
	stats Stats
}

// New prepares prog for execution with the single seed strand at offset 0.
func New(prog *program.Program, opts Options) *Interpreter {
	port := opts.Port
	if port == nil {
		port = nullPort{}
	}
	return &Interpreter{
		prog:  prog,
		pool:  runtime.NewPool(runtime.Seed()),
		port:  port,
		log:   opts.Logger,
		stats: Stats{PeakPool: 1},
	}
}

// Pool exposes the live strand pool.
func (i *Interpreter) Pool() *runtime.Pool {
	return i.pool
}

func (i *Interpreter) Program() *program.Program {
	return i.prog
}

func (i *Interpreter) Stats() Stats {
	return i.stats
}

// Done reports whether every strand has terminated.
func (i *Interpreter) Done() bool {
	return i.pool.Empty()
}

// Run sweeps until the pool is empty, the first fatal error, or ctx is done.
// There is no step limit: a program that never empties its pool runs until
// the caller cancels ctx.
func (i *Interpreter) Run(ctx context.Context) error {
	for !i.pool.Empty() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := i.Sweep(); err != nil {
			i.log.Debug().Err(err).Int64("sweep", i.stats.Sweeps).Msg("run aborted")
			return err
		}
	}
	i.log.Info().
		Int64("sweeps", i.stats.Sweeps).
		Int64("steps", i.stats.Steps).
		Int64("spawned", i.stats.Spawned).
		Int64("removed", i.stats.Removed).
		Int("peak_pool", i.stats.PeakPool).
		Msg("program finished")
	return nil
}

// Sweep performs one pass over the pool. The bound is the live pool length,
// so strands appended during the sweep are reached in the same sweep; they
// are still fresh then and only give up their grace period.
func (i *Interpreter) Sweep() error {
	i.stats.Sweeps++
	i.log.Debug().Int64("sweep", i.stats.Sweeps).Int("strands", i.pool.Len()).Msg("sweep start")
	for cur := 0; cur < i.pool.Len(); {
		strand := i.pool.At(cur)
		if strand.Fresh {
			strand.Fresh = false
			cur++
			continue
		}
		next := cur + 1
		if err := i.step(&cur, &next); err != nil {
			return err
		}
		cur = next
		if n := i.pool.Len(); n > i.stats.PeakPool {
			i.stats.PeakPool = n
		}
	}
	return nil
}
