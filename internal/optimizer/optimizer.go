// Package optimizer runs optional passes over the IR of each defined
// function: constant folding and dead code elimination.
//
// Passes only make a function smaller; they never change what a well-formed
// function computes.
package optimizer

import (
	"fmt"
	"io"

	"github.com/gmh5225/compiler-orka/internal/ir"
)

// Pass transforms one function in place.
type Pass interface {
	Name() string

	Run(fn *ir.Function) error
}

// Optimizer runs its passes over every defined function until they stop
// changing it.
type Optimizer struct {
	passes []Pass

	maxIterations int

	// log receives one line per pass run; nil keeps the optimizer quiet.
	log io.Writer

	stats *Stats
}

// NewOptimizer returns an optimizer with the default pipeline: constant
// folding, then dead code elimination.
func NewOptimizer() *Optimizer {
	return &Optimizer{
		passes: []Pass{
			&ConstantFoldingPass{},
			&DeadCodeEliminationPass{},
		},
		maxIterations: 10,
		stats:         &Stats{},
	}
}

func (o *Optimizer) AddPass(pass Pass) {
	o.passes = append(o.passes, pass)
}

// SetOutput makes the optimizer report each pass it runs to w.
func (o *Optimizer) SetOutput(w io.Writer) {
	o.log = w
}

func (o *Optimizer) SetMaxIterations(max int) {
	o.maxIterations = max
}

// Optimize runs the passes over every function of module that has a body.
func (o *Optimizer) Optimize(module *ir.Module) error {
	for _, fn := range module.Functions {
		if fn.External {
			continue
		}
		if err := o.OptimizeFunction(fn); err != nil {
			return fmt.Errorf("optimization failed for function %s: %w", fn.Name, err)
		}
	}
	return nil
}

// OptimizeFunction repeats the pipeline until an iteration removes nothing
// or the iteration limit is reached.
func (o *Optimizer) OptimizeFunction(fn *ir.Function) error {
	for i := 0; i < o.maxIterations; i++ {
		before := countInstructions(fn)

		for _, pass := range o.passes {
			if o.log != nil {
				fmt.Fprintf(o.log, "  running %s on %s\n", pass.Name(), fn.Name)
			}
			if err := pass.Run(fn); err != nil {
				return fmt.Errorf("pass %s failed: %w", pass.Name(), err)
			}
			o.stats.PassExecutions++
		}

		if countInstructions(fn) == before {
			break
		}
	}
	return nil
}

// Stats sums what the built-in passes have done so far.
func (o *Optimizer) Stats() Stats {
	s := *o.stats
	for _, pass := range o.passes {
		switch p := pass.(type) {
		case *ConstantFoldingPass:
			s.ConstantsFolded += p.Folded
		case *DeadCodeEliminationPass:
			s.InstructionsRemoved += p.InstructionsRemoved
			s.BlocksRemoved += p.BlocksRemoved
		}
	}
	return s
}

func countInstructions(fn *ir.Function) int {
	count := 0
	for _, block := range fn.Blocks {
		count += len(block.Instructions)
	}
	return count
}

// Stats reports the work done by an Optimizer.
type Stats struct {
	InstructionsRemoved int
	BlocksRemoved       int
	ConstantsFolded     int
	PassExecutions      int
}

func (s Stats) String() string {
	return fmt.Sprintf("constants folded: %d, instructions removed: %d, blocks removed: %d",
		s.ConstantsFolded, s.InstructionsRemoved, s.BlocksRemoved)
}
