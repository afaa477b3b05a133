// Package symtab holds the per-function symbol and type tables used while
// lowering a function.
//
// Orka has no nested scopes: every variable a function declares lives in one
// flat namespace, and a new Table is made for each function. Redeclaring a
// name inside a function replaces the earlier entry.
package symtab

import (
	"github.com/gmh5225/compiler-orka/internal/ir"
	"github.com/gmh5225/compiler-orka/internal/lexer"
	"github.com/gmh5225/compiler-orka/internal/types"
)

// Symbol is one declared variable as seen through a Table.
type Symbol struct {
	Name string

	// Type is the declared data type.
	Type types.Type

	// Storage is the address of the variable's stack slot.
	Storage *ir.Value

	// Pos is where the variable was declared.
	Pos lexer.Position
}

func (s *Symbol) String() string {
	return s.Name + ": " + s.Type.String() + " at " + s.Pos.String()
}
