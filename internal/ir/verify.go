package ir

import "fmt"

// Verify checks the structural rules a backend relies on and returns every
// violation found:
//   - a declaration has no blocks and a definition has at least one;
//   - every block ends in a terminator and nothing follows it;
//   - loads read through pointers and stores write a value of the pointee type;
//   - arithmetic operands are i32;
//   - calls pass as many arguments as the callee takes, each of the right type.
func (m *Module) Verify() []error {
	var errs []error

	for _, fn := range m.Functions {
		if fn.External {
			if len(fn.Blocks) > 0 {
				errs = append(errs, fmt.Errorf("declaration %s has a body", fn.Name))
			}
			continue
		}
		if len(fn.Blocks) == 0 {
			errs = append(errs, fmt.Errorf("function %s has no entry block", fn.Name))
			continue
		}

		for _, block := range fn.Blocks {
			for i, instr := range block.Instructions {
				if IsTerminator(instr) && i != len(block.Instructions)-1 {
					errs = append(errs, fmt.Errorf(
						"block %s in function %s has instructions after its terminator",
						block.Label, fn.Name))
					break
				}
				if err := verifyInstruction(instr); err != nil {
					errs = append(errs, fmt.Errorf("function %s: %s: %v", fn.Name, instr, err))
				}
			}
			if !block.IsTerminated() {
				errs = append(errs, fmt.Errorf(
					"block %s in function %s has no terminator",
					block.Label, fn.Name))
			}
		}
	}

	return errs
}

func verifyInstruction(instr Instruction) error {
	switch in := instr.(type) {
	case *Load:
		if in.Address.Type.Kind != TypePointer {
			return fmt.Errorf("load address is not a pointer")
		}
		if !in.Address.Type.Elem.Equal(in.Dest.Type) {
			return fmt.Errorf("load of %s through %s", in.Dest.Type, in.Address.Type)
		}
	case *Store:
		if in.Address.Type.Kind != TypePointer {
			return fmt.Errorf("store address is not a pointer")
		}
		if !in.Address.Type.Elem.Equal(in.Value.Type) {
			return fmt.Errorf("store of %s through %s", in.Value.Type, in.Address.Type)
		}
	case *BinaryOp:
		if !in.Left.Type.Equal(I32) || !in.Right.Type.Equal(I32) {
			return fmt.Errorf("%s operands must be i32", in.Op)
		}
	case *Call:
		sig := in.Function.Type
		if sig.Kind != TypeFunc {
			return fmt.Errorf("callee is not a function")
		}
		if len(in.Args) != len(sig.Params) {
			return fmt.Errorf("call passes %d arguments, want %d", len(in.Args), len(sig.Params))
		}
		for i, arg := range in.Args {
			if !arg.Type.Equal(sig.Params[i]) {
				return fmt.Errorf("argument %d is %s, want %s", i+1, arg.Type, sig.Params[i])
			}
		}
	}
	return nil
}
