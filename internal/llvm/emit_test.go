package llvm

import (
	"strings"
	"testing"

	llir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"

	"github.com/gmh5225/compiler-orka/internal/ir"
)

// helloModule builds:
//
//	extern func puts(s: str)
//	func main begin puts("hi"); end
func helloModule() *ir.Module {
	m := ir.NewModule("hello.ok")
	puts := m.NewExternal("puts", ir.Void, ir.NewParam("s", ir.PointerTo(ir.I8)))
	main := m.NewFunction("main", ir.Void)
	b := ir.NewBuilder(main, main.NewBlock("entry"))
	b.Call(puts, m.NewStringConstant("hi"))
	b.Ret(nil)
	return m
}

func findFunc(t *testing.T, m *llir.Module, name string) *llir.Func {
	t.Helper()
	for _, f := range m.Funcs {
		if f.Name() == name {
			return f
		}
	}
	t.Fatalf("function %s not emitted", name)
	return nil
}

func TestEmit_Declaration(t *testing.T) {
	out, err := Emit(helloModule())
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	puts := findFunc(t, out, "puts")
	if len(puts.Blocks) != 0 {
		t.Errorf("puts has %d blocks, want a declaration", len(puts.Blocks))
	}
	if !types.Equal(puts.Sig.RetType, types.Void) {
		t.Errorf("puts returns %s, want void", puts.Sig.RetType)
	}
	if len(puts.Params) != 1 {
		t.Fatalf("puts has %d parameters, want 1", len(puts.Params))
	}
	if !types.Equal(puts.Params[0].Typ, types.I8Ptr) {
		t.Errorf("parameter type = %s, want i8*", puts.Params[0].Typ)
	}
	if !strings.HasPrefix(puts.LLString(), "declare void @puts(i8*") {
		t.Errorf("declaration = %q", puts.LLString())
	}
}

func TestEmit_StringGlobal(t *testing.T) {
	out, err := Emit(helloModule())
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	if len(out.Globals) != 1 {
		t.Fatalf("got %d globals, want 1", len(out.Globals))
	}
	g := out.Globals[0]
	if !g.Immutable {
		t.Error("string global is not constant")
	}
	data, ok := g.Init.(*constant.CharArray)
	if !ok {
		t.Fatalf("initializer is %T, want *constant.CharArray", g.Init)
	}
	if got := string(data.X); got != "hi\x00" {
		t.Errorf("data = %q, want %q", got, "hi\x00")
	}

	main := findFunc(t, out, "main")
	call, ok := main.Blocks[0].Insts[0].(*llir.InstCall)
	if !ok {
		t.Fatalf("first instruction is %T, want call", main.Blocks[0].Insts[0])
	}
	if _, ok := call.Args[0].(*constant.ExprGetElementPtr); !ok {
		t.Errorf("argument is %T, want a getelementptr", call.Args[0])
	}
	if !types.Equal(call.Args[0].Type(), types.I8Ptr) {
		t.Errorf("argument type = %s, want i8*", call.Args[0].Type())
	}
}

func TestEmit_Arithmetic(t *testing.T) {
	m := ir.NewModule("calc.ok")
	fn := m.NewFunction("calc", ir.Void)
	b := ir.NewBuilder(fn, fn.NewBlock("entry"))
	slot := b.Alloca("x", ir.I32)
	b.Store(ir.ConstInt(6), slot)
	x := b.Load("x", ir.I32, slot)
	sum := b.BinOp(ir.OpAdd, x, ir.ConstInt(1))
	diff := b.BinOp(ir.OpSub, sum, ir.ConstInt(2))
	prod := b.BinOp(ir.OpMul, diff, ir.ConstInt(3))
	b.Store(b.BinOp(ir.OpSDiv, prod, ir.ConstInt(4)), slot)
	b.Ret(nil)

	out, err := Emit(m)
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	insts := findFunc(t, out, "calc").Blocks[0].Insts
	var kinds []string
	for _, inst := range insts {
		switch inst.(type) {
		case *llir.InstAlloca:
			kinds = append(kinds, "alloca")
		case *llir.InstStore:
			kinds = append(kinds, "store")
		case *llir.InstLoad:
			kinds = append(kinds, "load")
		case *llir.InstAdd:
			kinds = append(kinds, "add")
		case *llir.InstSub:
			kinds = append(kinds, "sub")
		case *llir.InstMul:
			kinds = append(kinds, "mul")
		case *llir.InstSDiv:
			kinds = append(kinds, "sdiv")
		default:
			kinds = append(kinds, "?")
		}
	}
	want := "alloca store load add sub mul sdiv store"
	if got := strings.Join(kinds, " "); got != want {
		t.Errorf("instructions = %s, want %s", got, want)
	}

	load := insts[2].(*llir.InstLoad)
	if load.Src != insts[0].(*llir.InstAlloca) {
		t.Error("load does not read the alloca")
	}
	if !types.Equal(load.ElemType, types.I32) {
		t.Errorf("load type = %s, want i32", load.ElemType)
	}
}

func TestEmit_ReturnInVoidFunction(t *testing.T) {
	m := ir.NewModule("ret.ok")
	fn := m.NewFunction("main", ir.Void)
	b := ir.NewBuilder(fn, fn.NewBlock("entry"))
	b.Ret(ir.ConstInt(5))

	out, err := Emit(m)
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	term, ok := findFunc(t, out, "main").Blocks[0].Term.(*llir.TermRet)
	if !ok {
		t.Fatalf("terminator is %T, want ret", findFunc(t, out, "main").Blocks[0].Term)
	}
	if term.X != nil {
		t.Errorf("ret carries %v, want ret void", term.X)
	}
}

func TestEmit_ForwardCall(t *testing.T) {
	m := ir.NewModule("fwd.ok")
	main := m.NewFunction("main", ir.Void)
	helper := m.NewFunction("helper", ir.Void)

	b := ir.NewBuilder(main, main.NewBlock("entry"))
	b.Call(helper)
	b.Ret(nil)
	ir.NewBuilder(helper, helper.NewBlock("entry")).Ret(nil)

	out, err := Emit(m)
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	call := findFunc(t, out, "main").Blocks[0].Insts[0].(*llir.InstCall)
	if call.Callee != findFunc(t, out, "helper") {
		t.Errorf("call target = %v, want @helper", call.Callee)
	}
}

func TestEmit_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func() *ir.Module
		want  string
	}{
		{
			name: "duplicate function",
			setup: func() *ir.Module {
				m := ir.NewModule("dup.ok")
				m.NewExternal("f", ir.Void)
				m.NewExternal("f", ir.Void)
				return m
			},
			want: "function f defined twice",
		},
		{
			name: "value from another function",
			setup: func() *ir.Module {
				m := ir.NewModule("foreign.ok")
				other := m.NewFunction("other", ir.Void)
				foreign := ir.NewBuilder(other, other.NewBlock("entry")).Alloca("x", ir.I32)

				fn := m.NewFunction("main", ir.Void)
				b := ir.NewBuilder(fn, fn.NewBlock("entry"))
				b.Store(ir.ConstInt(1), foreign)
				b.Ret(nil)
				return m
			},
			want: "used before it is defined",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Emit(tt.setup())
			if err == nil {
				t.Fatal("Emit() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Emit() error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}
