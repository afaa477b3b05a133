package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// BasicBlock is a straight-line run of instructions ending in a terminator.
type BasicBlock struct {
	Label string

	Instructions []Instruction

	// Index is the block's position in its function.
	Index int
}

func NewBasicBlock(label string) *BasicBlock {
	return &BasicBlock{Label: label}
}

func (bb *BasicBlock) AddInstruction(instr Instruction) {
	bb.Instructions = append(bb.Instructions, instr)
}

// Terminator returns the last instruction if it is a terminator.
func (bb *BasicBlock) Terminator() Instruction {
	if len(bb.Instructions) == 0 {
		return nil
	}
	last := bb.Instructions[len(bb.Instructions)-1]
	if IsTerminator(last) {
		return last
	}
	return nil
}

func (bb *BasicBlock) IsTerminated() bool {
	return bb.Terminator() != nil
}

func (bb *BasicBlock) String() string {
	var sb strings.Builder

	sb.WriteString(bb.Label)
	sb.WriteString(":\n")
	for _, instr := range bb.Instructions {
		sb.WriteString("  ")
		sb.WriteString(instr.String())
		sb.WriteString("\n")
	}

	return sb.String()
}

// Function is either a definition with at least one block or, when External
// is set, a declaration of a symbol resolved at link time.
type Function struct {
	Name string

	Parameters []*Value

	ReturnType *Type

	Blocks []*BasicBlock

	// Entry is the first block; nil for a declaration.
	Entry *BasicBlock

	External bool

	value       *Value
	nextValueID int
}

// Type returns the function's signature.
func (f *Function) Type() *Type {
	params := make([]*Type, len(f.Parameters))
	for i, p := range f.Parameters {
		params[i] = p.Type
	}
	return FuncOf(f.ReturnType, params...)
}

// Value returns the function as a call operand.
func (f *Function) Value() *Value {
	if f.value == nil {
		f.value = &Value{Name: f.Name, Type: f.Type(), Kind: ValueFunction}
	}
	return f.value
}

// NewBlock appends a block. The first block becomes the entry block.
func (f *Function) NewBlock(label string) *BasicBlock {
	bb := NewBasicBlock(label)
	bb.Index = len(f.Blocks)
	f.Blocks = append(f.Blocks, bb)
	if f.Entry == nil {
		f.Entry = bb
	}
	return bb
}

// NewTemp returns a fresh temporary. name may be empty.
func (f *Function) NewTemp(name string, typ *Type) *Value {
	v := &Value{
		ID:   f.nextValueID,
		Name: name,
		Type: typ,
		Kind: ValueTemporary,
	}
	f.nextValueID++
	return v
}

func (f *Function) String() string {
	var sb strings.Builder

	params := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		params[i] = typed(p)
	}
	signature := fmt.Sprintf("%s @%s(%s)", f.ReturnType, f.Name, strings.Join(params, ", "))

	if f.External {
		sb.WriteString("declare ")
		sb.WriteString(signature)
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString("define ")
	sb.WriteString(signature)
	sb.WriteString(" {\n")
	for i, block := range f.Blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(block.String())
	}
	sb.WriteString("}\n")
	return sb.String()
}

// Global is a private, constant, NUL-terminated string.
type Global struct {
	Name string
	Data string

	value *Value
}

// Value returns the global as an i8* operand.
func (g *Global) Value() *Value {
	if g.value == nil {
		g.value = &Value{Name: g.Name, Type: PointerTo(I8), Kind: ValueGlobal}
	}
	return g.value
}

// Module is one compilation unit.
type Module struct {
	Name string

	Globals []*Global

	Functions []*Function

	funcs map[string]*Function
}

func NewModule(name string) *Module {
	return &Module{
		Name:  name,
		funcs: make(map[string]*Function),
	}
}

// NewFunction adds a function definition. It has no blocks until NewBlock is
// called. Adding a second function with the same name replaces the lookup
// entry; callers check Function first.
func (m *Module) NewFunction(name string, ret *Type, params ...*Value) *Function {
	fn := &Function{Name: name, ReturnType: ret, Parameters: params}
	m.Functions = append(m.Functions, fn)
	m.funcs[name] = fn
	return fn
}

// NewExternal adds a declaration of a function defined elsewhere.
func (m *Module) NewExternal(name string, ret *Type, params ...*Value) *Function {
	fn := m.NewFunction(name, ret, params...)
	fn.External = true
	return fn
}

// NewParam returns a parameter value for NewFunction or NewExternal.
func NewParam(name string, typ *Type) *Value {
	return &Value{Name: name, Type: typ, Kind: ValueParameter}
}

// Function returns the function called name, or nil.
func (m *Module) Function(name string) *Function {
	return m.funcs[name]
}

// NewStringConstant adds a global holding data and returns a pointer to its
// first byte. Equal strings are not merged.
func (m *Module) NewStringConstant(data string) *Value {
	g := &Global{Name: ".str." + strconv.Itoa(len(m.Globals)), Data: data}
	m.Globals = append(m.Globals, g)
	return g.Value()
}

func (m *Module) String() string {
	var sb strings.Builder

	sb.WriteString("; module ")
	sb.WriteString(m.Name)
	sb.WriteString("\n")

	if len(m.Globals) > 0 {
		sb.WriteString("\n")
		for _, g := range m.Globals {
			fmt.Fprintf(&sb, "@%s = constant %s\n", g.Name, strconv.Quote(g.Data))
		}
	}

	for _, fn := range m.Functions {
		sb.WriteString("\n")
		sb.WriteString(fn.String())
	}

	return sb.String()
}
