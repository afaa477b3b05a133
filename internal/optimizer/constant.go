package optimizer

import (
	"math"

	"github.com/gmh5225/compiler-orka/internal/ir"
)

// ConstantFoldingPass evaluates i32 arithmetic whose operands are constants.
//
//	Before:  %t0 = add i32 2, 3
//	         %t1 = mul i32 %t0, 4
//	         ret i32 %t1
//	After:   ret i32 20
//
// A folded instruction is removed and its result is replaced by the constant
// in every later instruction. Arithmetic wraps at 32 bits. Division by zero
// and MinInt32 / -1 are left for run time.
type ConstantFoldingPass struct {
	// Folded counts the instructions folded away.
	Folded int
}

func (c *ConstantFoldingPass) Name() string {
	return "ConstantFolding"
}

func (c *ConstantFoldingPass) Run(fn *ir.Function) error {
	constants := make(map[*ir.Value]*ir.Value)

	for _, block := range fn.Blocks {
		kept := block.Instructions[:0]
		for _, instr := range block.Instructions {
			substitute(instr, constants)

			if op, ok := instr.(*ir.BinaryOp); ok {
				if result, ok := fold(op); ok {
					constants[op.Dest] = ir.ConstInt(result)
					c.Folded++
					continue
				}
			}
			kept = append(kept, instr)
		}
		block.Instructions = kept
	}

	return nil
}

// fold computes op when both operands are i32 constants.
func fold(op *ir.BinaryOp) (int32, bool) {
	left, ok := op.Left.IntConstant()
	if !ok {
		return 0, false
	}
	right, ok := op.Right.IntConstant()
	if !ok {
		return 0, false
	}

	switch op.Op {
	case ir.OpAdd:
		return left + right, true
	case ir.OpSub:
		return left - right, true
	case ir.OpMul:
		return left * right, true
	case ir.OpSDiv:
		if right == 0 || (left == math.MinInt32 && right == -1) {
			return 0, false
		}
		return left / right, true
	}
	return 0, false
}

// substitute replaces every operand of instr found in values.
func substitute(instr ir.Instruction, values map[*ir.Value]*ir.Value) {
	if len(values) == 0 {
		return
	}
	replace := func(v *ir.Value) *ir.Value {
		if r, ok := values[v]; ok {
			return r
		}
		return v
	}

	switch in := instr.(type) {
	case *ir.Load:
		in.Address = replace(in.Address)
	case *ir.Store:
		in.Address = replace(in.Address)
		in.Value = replace(in.Value)
	case *ir.BinaryOp:
		in.Left = replace(in.Left)
		in.Right = replace(in.Right)
	case *ir.Call:
		for i, arg := range in.Args {
			in.Args[i] = replace(arg)
		}
	case *ir.Return:
		if in.Value != nil {
			in.Value = replace(in.Value)
		}
	}
}
