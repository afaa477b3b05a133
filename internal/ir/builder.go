package ir

// Builder appends instructions to the end of a block and allocates the
// temporaries they define.
type Builder struct {
	fn    *Function
	block *BasicBlock
}

// NewBuilder returns a Builder inserting at the end of block, which must
// belong to fn.
func NewBuilder(fn *Function, block *BasicBlock) *Builder {
	return &Builder{fn: fn, block: block}
}

func (b *Builder) Function() *Function { return b.fn }
func (b *Builder) Block() *BasicBlock  { return b.block }

// SetInsertPoint moves the builder to the end of block.
func (b *Builder) SetInsertPoint(block *BasicBlock) {
	b.block = block
}

// Alloca reserves a stack slot for a value of typ and returns its address.
func (b *Builder) Alloca(name string, typ *Type) *Value {
	dest := b.fn.NewTemp(name, PointerTo(typ))
	b.block.AddInstruction(&Alloca{Dest: dest, Type: typ})
	return dest
}

// Load reads a value of type typ through ptr.
func (b *Builder) Load(name string, typ *Type, ptr *Value) *Value {
	dest := b.fn.NewTemp(name, typ)
	b.block.AddInstruction(&Load{Dest: dest, Address: ptr})
	return dest
}

func (b *Builder) Store(val, ptr *Value) {
	b.block.AddInstruction(&Store{Address: ptr, Value: val})
}

// BinOp emits left op right; the result has the type of left.
func (b *Builder) BinOp(op BinaryOperator, left, right *Value) *Value {
	dest := b.fn.NewTemp("", left.Type)
	b.block.AddInstruction(&BinaryOp{Op: op, Dest: dest, Left: left, Right: right})
	return dest
}

// Call emits a call to callee. It returns nil when callee returns void.
func (b *Builder) Call(callee *Function, args ...*Value) *Value {
	var dest *Value
	if callee.ReturnType.Kind != TypeVoid {
		dest = b.fn.NewTemp("", callee.ReturnType)
	}
	b.block.AddInstruction(&Call{Dest: dest, Function: callee.Value(), Args: args})
	return dest
}

// Ret emits a return of val, or a void return when val is nil.
func (b *Builder) Ret(val *Value) {
	b.block.AddInstruction(&Return{Value: val})
}
