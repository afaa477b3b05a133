// Package llvm translates a verified IR module into an LLVM module.
//
// String constants become private [N x i8] globals holding the text and a
// trailing NUL; uses see a constant getelementptr to the first byte.
// Functions keep their names, so an external declaration binds to the symbol
// of the same name at link time.
package llvm

import (
	"fmt"
	"strconv"

	llir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/gmh5225/compiler-orka/internal/ir"
)

// emitter carries the state of one Emit call.
type emitter struct {
	out *llir.Module

	funcs   map[string]*llir.Func
	globals map[string]constant.Constant

	// locals maps the temporaries of the function being emitted.
	locals map[*ir.Value]value.Value
}

// Emit returns the LLVM module for m. The module should have passed
// ir.Module.Verify; Emit fails on anything it cannot translate.
func Emit(m *ir.Module) (*llir.Module, error) {
	e := &emitter{
		out:     llir.NewModule(),
		funcs:   make(map[string]*llir.Func),
		globals: make(map[string]constant.Constant),
	}
	e.out.SourceFilename = m.Name

	for _, g := range m.Globals {
		e.emitGlobal(g)
	}

	// Declare every function first so calls can refer to later ones.
	for _, fn := range m.Functions {
		if err := e.declare(fn); err != nil {
			return nil, err
		}
	}

	for _, fn := range m.Functions {
		if fn.External {
			continue
		}
		if err := e.define(fn); err != nil {
			return nil, fmt.Errorf("function %s: %w", fn.Name, err)
		}
	}

	return e.out, nil
}

func (e *emitter) emitGlobal(g *ir.Global) {
	data := constant.NewCharArrayFromString(g.Data + "\x00")
	def := e.out.NewGlobalDef(g.Name, data)
	def.Linkage = enum.LinkagePrivate
	def.UnnamedAddr = enum.UnnamedAddrUnnamedAddr
	def.Immutable = true

	zero := constant.NewInt(types.I64, 0)
	e.globals[g.Name] = constant.NewGetElementPtr(data.Typ, def, zero, zero)
}

func (e *emitter) declare(fn *ir.Function) error {
	if _, ok := e.funcs[fn.Name]; ok {
		return fmt.Errorf("function %s defined twice", fn.Name)
	}

	ret, err := translateType(fn.ReturnType)
	if err != nil {
		return fmt.Errorf("function %s: %w", fn.Name, err)
	}

	params := make([]*llir.Param, 0, len(fn.Parameters))
	for _, p := range fn.Parameters {
		typ, err := translateType(p.Type)
		if err != nil {
			return fmt.Errorf("function %s: parameter %s: %w", fn.Name, p.Name, err)
		}
		params = append(params, llir.NewParam(p.Name, typ))
	}

	e.funcs[fn.Name] = e.out.NewFunc(fn.Name, ret, params...)
	return nil
}

func (e *emitter) define(fn *ir.Function) error {
	out := e.funcs[fn.Name]
	e.locals = make(map[*ir.Value]value.Value)
	for i, p := range fn.Parameters {
		e.locals[p] = out.Params[i]
	}

	for _, block := range fn.Blocks {
		bb := out.NewBlock(block.Label)
		for _, instr := range block.Instructions {
			if err := e.emitInstruction(out, bb, instr); err != nil {
				return fmt.Errorf("block %s: %w", block.Label, err)
			}
		}
	}
	return nil
}

func (e *emitter) emitInstruction(fn *llir.Func, bb *llir.Block, instr ir.Instruction) error {
	switch in := instr.(type) {
	case *ir.Alloca:
		typ, err := translateType(in.Type)
		if err != nil {
			return err
		}
		slot := bb.NewAlloca(typ)
		e.bind(in.Dest, slot)

	case *ir.Load:
		typ, err := translateType(in.Dest.Type)
		if err != nil {
			return err
		}
		addr, err := e.value(in.Address)
		if err != nil {
			return err
		}
		e.bind(in.Dest, bb.NewLoad(typ, addr))

	case *ir.Store:
		val, err := e.value(in.Value)
		if err != nil {
			return err
		}
		addr, err := e.value(in.Address)
		if err != nil {
			return err
		}
		bb.NewStore(val, addr)

	case *ir.BinaryOp:
		left, err := e.value(in.Left)
		if err != nil {
			return err
		}
		right, err := e.value(in.Right)
		if err != nil {
			return err
		}
		switch in.Op {
		case ir.OpAdd:
			e.bind(in.Dest, bb.NewAdd(left, right))
		case ir.OpSub:
			e.bind(in.Dest, bb.NewSub(left, right))
		case ir.OpMul:
			e.bind(in.Dest, bb.NewMul(left, right))
		case ir.OpSDiv:
			e.bind(in.Dest, bb.NewSDiv(left, right))
		default:
			return fmt.Errorf("unknown operator %s", in.Op)
		}

	case *ir.Call:
		callee, ok := e.funcs[in.Function.Name]
		if !ok {
			return fmt.Errorf("call to unknown function %s", in.Function.Name)
		}
		args := make([]value.Value, 0, len(in.Args))
		for _, arg := range in.Args {
			v, err := e.value(arg)
			if err != nil {
				return err
			}
			args = append(args, v)
		}
		call := bb.NewCall(callee, args...)
		if in.Dest != nil {
			e.bind(in.Dest, call)
		}

	case *ir.Return:
		// A function declared void returns nothing, whatever the source
		// handed to return.
		if in.Value == nil || types.Equal(fn.Sig.RetType, types.Void) {
			bb.NewRet(nil)
			return nil
		}
		val, err := e.value(in.Value)
		if err != nil {
			return err
		}
		bb.NewRet(val)

	default:
		return fmt.Errorf("unsupported instruction %T", instr)
	}
	return nil
}

// bind names the LLVM value after the temporary it implements.
func (e *emitter) bind(v *ir.Value, out value.Named) {
	if v.Name != "" {
		out.SetName(v.Name + "." + strconv.Itoa(v.ID))
	} else {
		out.SetName("t" + strconv.Itoa(v.ID))
	}
	e.locals[v] = out
}

func (e *emitter) value(v *ir.Value) (value.Value, error) {
	switch v.Kind {
	case ir.ValueConstant:
		n, ok := v.IntConstant()
		if !ok {
			return nil, fmt.Errorf("unsupported constant %v", v.Constant)
		}
		return constant.NewInt(types.I32, int64(n)), nil
	case ir.ValueGlobal:
		if g, ok := e.globals[v.Name]; ok {
			return g, nil
		}
		return nil, fmt.Errorf("unknown global @%s", v.Name)
	case ir.ValueFunction:
		if f, ok := e.funcs[v.Name]; ok {
			return f, nil
		}
		return nil, fmt.Errorf("unknown function @%s", v.Name)
	default:
		if local, ok := e.locals[v]; ok {
			return local, nil
		}
		return nil, fmt.Errorf("value %s used before it is defined", v)
	}
}

func translateType(t *ir.Type) (types.Type, error) {
	if t == nil {
		return nil, fmt.Errorf("missing type")
	}
	switch t.Kind {
	case ir.TypeVoid:
		return types.Void, nil
	case ir.TypeI8:
		return types.I8, nil
	case ir.TypeI32:
		return types.I32, nil
	case ir.TypePointer:
		elem, err := translateType(t.Elem)
		if err != nil {
			return nil, err
		}
		return types.NewPointer(elem), nil
	case ir.TypeFunc:
		ret, err := translateType(t.Ret)
		if err != nil {
			return nil, err
		}
		params := make([]types.Type, len(t.Params))
		for i, p := range t.Params {
			if params[i], err = translateType(p); err != nil {
				return nil, err
			}
		}
		return types.NewFunc(ret, params...), nil
	}
	return nil, fmt.Errorf("unknown type %s", t)
}
