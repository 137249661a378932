package checker

import "fmt"

// SymbolKind represents the kind of symbol
type SymbolKind int

const (
	SymVariable SymbolKind = iota
	SymParam
	SymFunction
)

// String returns the string representation of the symbol kind
func (sk SymbolKind) String() string {
	switch sk {
	case SymVariable:
		return "variable"
	case SymParam:
		return "parameter"
	case SymFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Storage classifies where a variable's value lives during execution.
type Storage int

const (
	// StorageValue keeps the variable as a register-resident value.
	StorageValue Storage = iota
	// StorageAddress backs the variable with an addressable stack slot.
	// Forced when the variable's address is taken or its type is an array.
	StorageAddress
)

// String returns the string representation of the storage class
func (s Storage) String() string {
	switch s {
	case StorageValue:
		return "value"
	case StorageAddress:
		return "address"
	default:
		return "unknown"
	}
}

// Symbol represents a named declaration in the symbol table
type Symbol struct {
	Name    string
	Type    *Type
	Kind    SymbolKind
	Storage Storage
	Used    bool
	Line    int
	Column  int
}

// Scope represents a lexical scope with a symbol table.
// Lookup walks from the innermost frame outward through parent frames.
type Scope struct {
	parent  *Scope
	symbols map[string]*Symbol
	order   []string // declaration order, for deterministic iteration
}

// NewScope creates a new scope with an optional parent
func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent:  parent,
		symbols: make(map[string]*Symbol),
	}
}

// Parent returns the enclosing scope, or nil at the outermost frame
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Define adds a symbol to the current scope.
// Returns an error if the symbol is already defined in this frame
// (shadowing an outer frame is allowed).
func (s *Scope) Define(sym *Symbol) error {
	if _, exists := s.symbols[sym.Name]; exists {
		return fmt.Errorf("symbol '%s' already defined in this scope", sym.Name)
	}
	s.symbols[sym.Name] = sym
	s.order = append(s.order, sym.Name)
	return nil
}

// Resolve looks up a symbol in the current scope and parent scopes.
// Returns nil if the symbol is not found.
func (s *Scope) Resolve(name string) *Symbol {
	if sym, ok := s.symbols[name]; ok {
		return sym
	}
	if s.parent != nil {
		return s.parent.Resolve(name)
	}
	return nil
}

// ResolveLocal looks up a symbol only in the current frame
func (s *Scope) ResolveLocal(name string) *Symbol {
	if sym, ok := s.symbols[name]; ok {
		return sym
	}
	return nil
}

// Symbols returns the frame's symbols in declaration order
func (s *Scope) Symbols() []*Symbol {
	out := make([]*Symbol, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.symbols[name])
	}
	return out
}
