package optimizer

import (
	"github.com/gmh5225/compiler-orka/internal/ir"
)

// DeadCodeEliminationPass removes code that cannot affect the program:
//   - instructions after a block's terminator;
//   - blocks other than the entry block, which nothing can branch to;
//   - allocas, loads and arithmetic whose results are never used.
//
// Stores, calls and returns are always kept.
type DeadCodeEliminationPass struct {
	InstructionsRemoved int
	BlocksRemoved       int
}

func (d *DeadCodeEliminationPass) Name() string {
	return "DeadCodeElimination"
}

func (d *DeadCodeEliminationPass) Run(fn *ir.Function) error {
	d.truncateAfterTerminators(fn)
	d.removeUnreachableBlocks(fn)

	for d.removeUnusedInstructions(fn, d.markUsedValues(fn)) {
	}
	return nil
}

func (d *DeadCodeEliminationPass) truncateAfterTerminators(fn *ir.Function) {
	for _, block := range fn.Blocks {
		for i, instr := range block.Instructions {
			if ir.IsTerminator(instr) {
				d.InstructionsRemoved += len(block.Instructions) - i - 1
				block.Instructions = block.Instructions[:i+1]
				break
			}
		}
	}
}

// removeUnreachableBlocks keeps only the entry block. The IR has no branch
// instructions, so control never reaches any other block.
func (d *DeadCodeEliminationPass) removeUnreachableBlocks(fn *ir.Function) {
	if fn.Entry == nil || len(fn.Blocks) <= 1 {
		return
	}
	for _, block := range fn.Blocks {
		if block != fn.Entry {
			d.BlocksRemoved++
			d.InstructionsRemoved += len(block.Instructions)
		}
	}
	fn.Entry.Index = 0
	fn.Blocks = []*ir.BasicBlock{fn.Entry}
}

// markUsedValues returns every value read by some instruction.
func (d *DeadCodeEliminationPass) markUsedValues(fn *ir.Function) map[*ir.Value]bool {
	used := make(map[*ir.Value]bool)
	for _, block := range fn.Blocks {
		for _, instr := range block.Instructions {
			for _, operand := range instr.Operands() {
				if operand != nil && !operand.IsConstant() {
					used[operand] = true
				}
			}
		}
	}
	return used
}

func (d *DeadCodeEliminationPass) isCritical(instr ir.Instruction) bool {
	switch instr.(type) {
	case *ir.Store, *ir.Call, *ir.Return:
		return true
	default:
		return false
	}
}

func (d *DeadCodeEliminationPass) removeUnusedInstructions(fn *ir.Function, used map[*ir.Value]bool) bool {
	modified := false

	for _, block := range fn.Blocks {
		kept := block.Instructions[:0]
		for _, instr := range block.Instructions {
			if d.isCritical(instr) {
				kept = append(kept, instr)
				continue
			}
			if result := instr.Result(); result != nil && used[result] {
				kept = append(kept, instr)
				continue
			}
			d.InstructionsRemoved++
			modified = true
		}
		block.Instructions = kept
	}

	return modified
}
