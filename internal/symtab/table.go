package symtab

import (
	"github.com/gmh5225/compiler-orka/internal/ir"
	"github.com/gmh5225/compiler-orka/internal/lexer"
	"github.com/gmh5225/compiler-orka/internal/types"
)

// Table maps variable names to their storage and, in parallel, to their
// declared types. The two maps always have the same keys.
type Table struct {
	storage map[string]*ir.Value
	types   map[string]types.Type
	pos     map[string]lexer.Position
}

func New() *Table {
	return &Table{
		storage: make(map[string]*ir.Value),
		types:   make(map[string]types.Type),
		pos:     make(map[string]lexer.Position),
	}
}

// Declare records name with its storage and type. It reports whether an
// earlier declaration of name was replaced.
func (t *Table) Declare(name string, typ types.Type, storage *ir.Value, pos lexer.Position) (replaced bool) {
	_, replaced = t.storage[name]
	t.storage[name] = storage
	t.types[name] = typ
	t.pos[name] = pos
	return replaced
}

// Storage returns the stack slot of name, or nil if it was never declared.
func (t *Table) Storage(name string) *ir.Value {
	return t.storage[name]
}

// Type returns the declared type of name, or nil if it was never declared.
func (t *Table) Type(name string) types.Type {
	return t.types[name]
}

// Lookup returns the symbol for name, or nil.
func (t *Table) Lookup(name string) *Symbol {
	storage, ok := t.storage[name]
	if !ok {
		return nil
	}
	return &Symbol{
		Name:    name,
		Type:    t.types[name],
		Storage: storage,
		Pos:     t.pos[name],
	}
}

// Len returns the number of declared names.
func (t *Table) Len() int {
	return len(t.storage)
}
