package codegen

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gmh5225/compiler-orka/internal/ir"
	"github.com/gmh5225/compiler-orka/internal/lexer"
	"github.com/gmh5225/compiler-orka/internal/parser"
	"github.com/gmh5225/compiler-orka/internal/parser/ast"
	"github.com/gmh5225/compiler-orka/internal/types"
)

func compile(t *testing.T, source string) (*ir.Module, []error) {
	t.Helper()
	tree, errs := parser.New(lexer.New(source, "test.ok")).Parse()
	if len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	return Compile(tree)
}

func mustCompile(t *testing.T, source string) *ir.Module {
	t.Helper()
	m, errs := compile(t, source)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if errs := m.Verify(); len(errs) > 0 {
		t.Fatalf("module does not verify: %v\n%s", errs, m)
	}
	return m
}

// kinds lists the instruction types of a block, e.g. "*ir.Alloca".
func kinds(block *ir.BasicBlock) []string {
	out := make([]string, len(block.Instructions))
	for i, instr := range block.Instructions {
		out[i] = fmt.Sprintf("%T", instr)
	}
	return out
}

func entry(t *testing.T, m *ir.Module, name string) *ir.BasicBlock {
	t.Helper()
	fn := m.Function(name)
	if fn == nil {
		t.Fatalf("function %s not in module", name)
	}
	if fn.Entry == nil {
		t.Fatalf("function %s has no entry block", name)
	}
	return fn.Entry
}

func TestCompile_DeclarationThenUse(t *testing.T) {
	m := mustCompile(t, "func f\n  x:int\nbegin\n  x = 5\n  return x\nend")

	fn := m.Function("f")
	if got := fn.Type().String(); got != "void ()" {
		t.Errorf("signature = %q, want %q", got, "void ()")
	}

	block := entry(t, m, "f")
	want := []string{"*ir.Alloca", "*ir.Store", "*ir.Load", "*ir.Return"}
	if diff := cmp.Diff(want, kinds(block)); diff != "" {
		t.Fatalf("instructions mismatch (-want +got):\n%s\n%s", diff, m)
	}

	alloca := block.Instructions[0].(*ir.Alloca)
	store := block.Instructions[1].(*ir.Store)
	load := block.Instructions[2].(*ir.Load)
	ret := block.Instructions[3].(*ir.Return)

	if !alloca.Type.Equal(ir.I32) {
		t.Errorf("alloca type = %s, want i32", alloca.Type)
	}
	if n, ok := store.Value.IntConstant(); !ok || n != 5 || store.Address != alloca.Dest {
		t.Errorf("store = %s, want a store of 5 into the slot", store)
	}
	if load.Address != alloca.Dest || !load.Dest.Type.Equal(ir.I32) {
		t.Errorf("load = %s, want an i32 load from the slot", load)
	}
	if ret.Value != load.Dest {
		t.Errorf("return = %s, want the loaded value", ret)
	}
}

func TestCompile_UndeclaredCallee(t *testing.T) {
	m, errs := compile(t, "func main\nx:int\nbegin\nmissing(1);\nx = 2\nend")

	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
	want := "test.ok:4:1: invalid call: missing is not a declared function"
	if errs[0].Error() != want {
		t.Errorf("error = %q, want %q", errs[0], want)
	}

	block := entry(t, m, "main")
	if diff := cmp.Diff([]string{"*ir.Alloca", "*ir.Store", "*ir.Return"}, kinds(block)); diff != "" {
		t.Errorf("instructions mismatch (-want +got):\n%s", diff)
	}
	if n, _ := block.Instructions[1].(*ir.Store).Value.IntConstant(); n != 2 {
		t.Errorf("later assignment stored %d, want 2", n)
	}
}

func TestCompile_ExternSignature(t *testing.T) {
	m := mustCompile(t, "extern func puts(s: str)\nextern func exit(code: int)")

	puts := m.Function("puts")
	if puts == nil || !puts.External {
		t.Fatalf("puts = %v, want an external declaration", puts)
	}
	if len(puts.Blocks) != 0 {
		t.Errorf("puts has %d blocks, want none", len(puts.Blocks))
	}
	if len(puts.Parameters) != 1 || !puts.Parameters[0].Type.Equal(ir.PointerTo(ir.I8)) {
		t.Errorf("puts parameters = %v, want one i8*", puts.Parameters)
	}
	if !puts.ReturnType.Equal(ir.Void) {
		t.Errorf("puts returns %s, want void", puts.ReturnType)
	}

	if got := m.Function("exit").Type().String(); got != "void (i32)" {
		t.Errorf("exit signature = %q, want %q", got, "void (i32)")
	}
}

func TestCompile_HelloWorld(t *testing.T) {
	m := mustCompile(t, `
extern func puts(s: str)

func main
begin
  puts("hello");
  puts("hello");
end
`)

	if len(m.Globals) != 2 {
		t.Fatalf("len(Globals) = %d, want 2 (literals are not merged)", len(m.Globals))
	}
	for _, g := range m.Globals {
		if g.Data != "hello" {
			t.Errorf("global %s = %q, want %q", g.Name, g.Data, "hello")
		}
	}

	block := entry(t, m, "main")
	want := []string{"*ir.Call", "*ir.Call", "*ir.Return"}
	if diff := cmp.Diff(want, kinds(block)); diff != "" {
		t.Fatalf("instructions mismatch (-want +got):\n%s", diff)
	}
	call := block.Instructions[0].(*ir.Call)
	if call.Function.Name != "puts" || len(call.Args) != 1 || call.Args[0].Kind != ir.ValueGlobal {
		t.Errorf("call = %s, want puts with a string constant", call)
	}
	if ret := block.Instructions[2].(*ir.Return); ret.Value != nil {
		t.Errorf("implicit return = %s, want ret void", ret)
	}
}

func TestCompile_ForwardCall(t *testing.T) {
	m := mustCompile(t, "func main\nbegin\nhelper();\nend\nfunc helper\nbegin\nend")

	call, ok := entry(t, m, "main").Instructions[0].(*ir.Call)
	if !ok || call.Function.Name != "helper" {
		t.Errorf("first instruction = %v, want a call to helper", entry(t, m, "main").Instructions[0])
	}
	if diff := cmp.Diff([]string{"*ir.Return"}, kinds(entry(t, m, "helper"))); diff != "" {
		t.Errorf("helper mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_Arithmetic(t *testing.T) {
	m := mustCompile(t, "func f\na:int\nb:int\nc:int\nbegin\na = a + b - c\nb = a / 2 * 3\nend")

	var ops []ir.BinaryOperator
	for _, instr := range entry(t, m, "f").Instructions {
		if bin, ok := instr.(*ir.BinaryOp); ok {
			ops = append(ops, bin.Op)
		}
	}

	// a + (b - c), then a / (2 * 3); the inner operation is emitted first.
	want := []ir.BinaryOperator{ir.OpSub, ir.OpAdd, ir.OpMul, ir.OpSDiv}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Errorf("operators mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantErr string
	}{
		{
			name:    "assignment to undeclared variable",
			source:  "func f\nbegin\ny = 1\nend",
			wantErr: "undeclared variable y",
		},
		{
			name:    "read of undeclared variable",
			source:  "func f\nx:int\nbegin\nx = y + 1\nend",
			wantErr: "undeclared variable y",
		},
		{
			name:    "undeclared return value",
			source:  "func f\nbegin\nreturn z\nend",
			wantErr: "undeclared variable z",
		},
		{
			name:    "string into int",
			source:  "func f\nx:int\nbegin\nx = \"s\"\nend",
			wantErr: "cannot assign str value to x of type int",
		},
		{
			name:    "arithmetic on strings",
			source:  "func f\ns:str\nbegin\ns = \"a\" + 1\nend",
			wantErr: "operator + needs int operands, got str and int",
		},
		{
			name:    "too few arguments",
			source:  "extern func puts(s: str)\nfunc f\nbegin\nputs();\nend",
			wantErr: "invalid call to puts: got 0 arguments, want 1",
		},
		{
			name:    "wrong argument type",
			source:  "extern func puts(s: str)\nfunc f\nbegin\nputs(1);\nend",
			wantErr: "invalid call to puts: argument 1 is int, want str",
		},
		{
			name:    "arguments to a void() function",
			source:  "func f\nbegin\ng(1);\nend\nfunc g\nbegin\nend",
			wantErr: "invalid call to g: got 1 arguments, want 0",
		},
		{
			name:    "duplicate function",
			source:  "func f\nbegin\nend\nfunc f\nbegin\nend",
			wantErr: "f redeclared",
		},
		{
			name:    "extern clashes with function",
			source:  "extern func f()\nfunc f\nbegin\nend",
			wantErr: "f redeclared",
		},
		{
			name:    "tables do not outlive a function",
			source:  "func a\nx:int\nbegin\nend\nfunc b\nbegin\nx = 1\nend",
			wantErr: "undeclared variable x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := compile(t, tt.source)
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
			}
			if !strings.Contains(errs[0].Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", errs[0], tt.wantErr)
			}
		})
	}
}

func TestCompile_ReportsEveryError(t *testing.T) {
	m, errs := compile(t, "func f\nx:int\nbegin\ny = 1\nmissing();\nx = 3\nreturn q\nend")

	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(errs), errs)
	}
	for i, want := range []string{"undeclared variable y", "invalid call", "undeclared variable q"} {
		if !strings.Contains(errs[i].Error(), want) {
			t.Errorf("errs[%d] = %q, want it to contain %q", i, errs[i], want)
		}
	}

	want := []string{"*ir.Alloca", "*ir.Store", "*ir.Return"}
	if diff := cmp.Diff(want, kinds(entry(t, m, "f"))); diff != "" {
		t.Errorf("instructions mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_StatementsAfterReturn(t *testing.T) {
	m := mustCompile(t, "func f\nx:int\nbegin\nreturn\nx = 1\nend")

	fn := m.Function("f")
	if len(fn.Blocks) != 2 {
		t.Fatalf("len(Blocks) = %d, want 2\n%s", len(fn.Blocks), m)
	}
	if diff := cmp.Diff([]string{"*ir.Alloca", "*ir.Return"}, kinds(fn.Blocks[0])); diff != "" {
		t.Errorf("entry mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"*ir.Store", "*ir.Return"}, kinds(fn.Blocks[1])); diff != "" {
		t.Errorf("dead block mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_RedeclarationReplacesSlot(t *testing.T) {
	m := mustCompile(t, "func f\nx:int\nx:str\nbegin\nx = \"s\"\nend")

	block := entry(t, m, "f")
	second := block.Instructions[1].(*ir.Alloca)
	store := block.Instructions[2].(*ir.Store)
	if store.Address != second.Dest {
		t.Errorf("store goes to %s, want the second slot %s", store.Address, second.Dest)
	}
}

func TestCompile_MalformedTrees(t *testing.T) {
	pos := lexer.Position{Filename: "test.ok", Line: 1, Column: 1}
	tests := []struct {
		name    string
		body    []ast.Stmt
		wantErr string
	}{
		{
			name:    "assignment without value",
			body:    []ast.Stmt{&ast.VarDecl{Name: "x", Type: types.Int32}, &ast.VarAssign{Position: pos, Name: "x"}},
			wantErr: "assignment to x has no value",
		},
		{
			name: "assignment with two values",
			body: []ast.Stmt{
				&ast.VarDecl{Name: "x", Type: types.Int32},
				&ast.VarAssign{Name: "x", Exprs: []ast.Expr{&ast.IntLiteral{Value: 1}, &ast.IntLiteral{Value: 2}}},
			},
			wantErr: "assignment to x has 2 values, want 1",
		},
		{
			name:    "char variable",
			body:    []ast.Stmt{&ast.VarDecl{Name: "c", Type: types.Char}},
			wantErr: "type char has no machine representation",
		},
		{
			name:    "pointer to int",
			body:    []ast.Stmt{&ast.VarDecl{Name: "p", Type: types.NewPointer(types.Int32)}},
			wantErr: "type *int has no machine representation",
		},
		{
			name:    "void variable",
			body:    []ast.Stmt{&ast.VarDecl{Name: "v", Type: types.Void}},
			wantErr: "type void has no machine representation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := &ast.Tree{Filename: "test.ok"}
			tree.Append(&ast.Function{Name: "f", Body: tt.body})

			_, errs := Compile(tree)
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
			}
			if !strings.Contains(errs[0].Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", errs[0], tt.wantErr)
			}
		})
	}
}

func TestCompile_ReturnWithSeveralValues(t *testing.T) {
	tree := &ast.Tree{Filename: "test.ok"}
	tree.Append(&ast.Function{Name: "f", Body: []ast.Stmt{
		&ast.Return{Exprs: []ast.Expr{&ast.IntLiteral{Value: 1}, &ast.IntLiteral{Value: 2}}},
	}})

	m, errs := Compile(tree)
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "return with 2 values") {
		t.Fatalf("errors = %v, want one return-arity error", errs)
	}

	block := entry(t, m, "f")
	if len(block.Instructions) != 1 {
		t.Fatalf("instructions = %v, want a single ret void", kinds(block))
	}
	if ret := block.Instructions[0].(*ir.Return); ret.Value != nil {
		t.Errorf("return = %s, want ret void", ret)
	}
}

func TestCompile_ExternWithUnrepresentableParameter(t *testing.T) {
	tree := &ast.Tree{Filename: "test.ok"}
	tree.Append(&ast.ExternFunction{Name: "f", Params: []ast.Var{{Name: "c", Type: types.Char}}})

	m, errs := Compile(tree)
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "parameter c of f") {
		t.Fatalf("errors = %v, want one parameter error", errs)
	}
	if m.Function("f") != nil {
		t.Error("f should not be declared")
	}
}

func TestTranslateType(t *testing.T) {
	tests := []struct {
		in   types.Type
		want *ir.Type
	}{
		{types.Int32, ir.I32},
		{types.String, ir.PointerTo(ir.I8)},
		{types.NewPointer(types.Char), ir.PointerTo(ir.I8)},
	}
	for _, tt := range tests {
		got, err := translateType(tt.in)
		if err != nil || !got.Equal(tt.want) {
			t.Errorf("translateType(%s) = %v, %v; want %s", tt.in, got, err, tt.want)
		}
	}

	for _, bad := range []types.Type{types.Void, types.Char, types.NewPointer(types.NewPointer(types.Char)), nil} {
		if _, err := translateType(bad); err == nil {
			t.Errorf("translateType(%v) succeeded, want an error", bad)
		}
	}
}
