// Package ir is the target intermediate representation.
//
// A Module holds string constants and functions. A defined function is a list
// of basic blocks of instructions; an external function is a signature only.
// Instructions read and produce Values, and every Value carries its machine
// type.
package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is an operand: a temporary produced by an instruction, a constant,
// a parameter, a global or a function.
type Value struct {
	// ID numbers temporaries within their function.
	ID int

	Name string

	Type *Type

	Kind ValueKind

	// Constant holds the int32 of a constant.
	Constant interface{}
}

type ValueKind int

const (
	ValueTemporary ValueKind = iota
	ValueConstant
	ValueParameter
	ValueGlobal
	ValueFunction
)

// ConstInt returns an i32 constant.
func ConstInt(v int32) *Value {
	return &Value{Kind: ValueConstant, Type: I32, Constant: v}
}

func (v *Value) String() string {
	switch v.Kind {
	case ValueConstant:
		return fmt.Sprintf("%v", v.Constant)
	case ValueParameter:
		return "%" + v.Name
	case ValueGlobal, ValueFunction:
		return "@" + v.Name
	default:
		if v.Name != "" {
			return "%" + v.Name + "." + strconv.Itoa(v.ID)
		}
		return "%t" + strconv.Itoa(v.ID)
	}
}

func (v *Value) IsConstant() bool {
	return v.Kind == ValueConstant
}

// IntConstant returns the value of an i32 constant.
func (v *Value) IntConstant() (int32, bool) {
	if v.Kind != ValueConstant {
		return 0, false
	}
	n, ok := v.Constant.(int32)
	return n, ok
}

func typed(v *Value) string {
	return v.Type.String() + " " + v.String()
}

// Instruction is a single IR operation.
type Instruction interface {
	String() string

	// Operands returns the values the instruction reads.
	Operands() []*Value

	// Result returns the value the instruction defines, or nil.
	Result() *Value
}

// Alloca reserves stack storage for one value of type Type. Dest is a
// pointer to it.
type Alloca struct {
	Dest *Value
	Type *Type
}

func (a *Alloca) String() string {
	return fmt.Sprintf("%s = alloca %s", a.Dest, a.Type)
}

func (a *Alloca) Operands() []*Value { return nil }
func (a *Alloca) Result() *Value     { return a.Dest }

// Load reads the value at Address. Dest has the pointee type.
type Load struct {
	Dest    *Value
	Address *Value
}

func (l *Load) String() string {
	return fmt.Sprintf("%s = load %s, %s", l.Dest, l.Dest.Type, typed(l.Address))
}

func (l *Load) Operands() []*Value { return []*Value{l.Address} }
func (l *Load) Result() *Value     { return l.Dest }

// Store writes Value to Address.
type Store struct {
	Address *Value
	Value   *Value
}

func (s *Store) String() string {
	return fmt.Sprintf("store %s, %s", typed(s.Value), typed(s.Address))
}

func (s *Store) Operands() []*Value { return []*Value{s.Address, s.Value} }
func (s *Store) Result() *Value     { return nil }

// BinaryOp is integer arithmetic on two i32 values.
type BinaryOp struct {
	Op    BinaryOperator
	Dest  *Value
	Left  *Value
	Right *Value
}

func (b *BinaryOp) String() string {
	return fmt.Sprintf("%s = %s %s %s, %s", b.Dest, b.Op, b.Dest.Type, b.Left, b.Right)
}

func (b *BinaryOp) Operands() []*Value { return []*Value{b.Left, b.Right} }
func (b *BinaryOp) Result() *Value     { return b.Dest }

type BinaryOperator int

const (
	OpAdd BinaryOperator = iota
	OpSub
	OpMul
	// OpSDiv is signed division. Division by zero is not checked.
	OpSDiv
)

func (op BinaryOperator) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpSDiv:
		return "sdiv"
	default:
		return "?"
	}
}

// Call invokes Function with Args. Dest is nil for a void callee.
type Call struct {
	Dest     *Value
	Function *Value
	Args     []*Value
}

func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = typed(a)
	}
	call := fmt.Sprintf("call %s(%s)", c.Function, strings.Join(args, ", "))
	if c.Dest != nil {
		return c.Dest.String() + " = " + call
	}
	return call
}

func (c *Call) Operands() []*Value {
	operands := make([]*Value, 0, len(c.Args)+1)
	operands = append(operands, c.Function)
	operands = append(operands, c.Args...)
	return operands
}

func (c *Call) Result() *Value { return c.Dest }

// Return leaves the function. Value is nil for a void return.
type Return struct {
	Value *Value
}

func (r *Return) String() string {
	if r.Value != nil {
		return "ret " + typed(r.Value)
	}
	return "ret void"
}

func (r *Return) Operands() []*Value {
	if r.Value != nil {
		return []*Value{r.Value}
	}
	return nil
}

func (r *Return) Result() *Value { return nil }

// IsTerminator reports whether instr ends a basic block.
func IsTerminator(instr Instruction) bool {
	_, ok := instr.(*Return)
	return ok
}
