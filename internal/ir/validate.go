package ir

import "fmt"

// Validate checks the structural invariants of a module: unique function
// names, labeled and terminated blocks, branch targets that exist,
// registers defined before use, and operands that refer to declared locals,
// slots, functions, and string table entries. It returns the first
// violation found, or nil.
func Validate(m *Module) error {
	funcs := make(map[string]*Func, len(m.Funcs))
	for _, f := range m.Funcs {
		if _, dup := funcs[f.Name]; dup {
			return fmt.Errorf("duplicate function %q", f.Name)
		}
		funcs[f.Name] = f
	}

	for _, f := range m.Funcs {
		if err := validateFunc(m, funcs, f); err != nil {
			return fmt.Errorf("func %s: %w", f.Name, err)
		}
	}
	return nil
}

func validateFunc(m *Module, funcs map[string]*Func, f *Func) error {
	if len(f.Blocks) == 0 {
		return fmt.Errorf("no blocks")
	}

	labels := make(map[string]bool, len(f.Blocks))
	for _, b := range f.Blocks {
		if b.Label == "" {
			return fmt.Errorf("unlabeled block")
		}
		if labels[b.Label] {
			return fmt.Errorf("duplicate block label %q", b.Label)
		}
		labels[b.Label] = true
	}

	locals := make(map[string]bool)
	for _, p := range f.Params {
		locals[p.Name] = true
	}
	for _, l := range f.Locals {
		locals[l.Name] = true
	}
	slots := make(map[string]bool)
	for _, s := range f.Slots {
		if s.Count < 1 {
			return fmt.Errorf("slot %q has count %d", s.Name, s.Count)
		}
		slots[s.Name] = true
	}

	defined := make(map[int]bool)
	for _, b := range f.Blocks {
		if len(b.Instrs) == 0 {
			return fmt.Errorf("block %s: empty", b.Label)
		}
		for i, in := range b.Instrs {
			last := i == len(b.Instrs)-1
			if in.IsTerminator() != last {
				if last {
					return fmt.Errorf("block %s: missing terminator", b.Label)
				}
				return fmt.Errorf("block %s: terminator before end of block", b.Label)
			}

			for _, arg := range in.Args {
				if !defined[arg] {
					return fmt.Errorf("block %s: %%%d used before definition", b.Label, arg)
				}
			}

			if err := validateOperands(m, funcs, locals, slots, labels, b, in); err != nil {
				return err
			}

			if in.ID >= 0 {
				if defined[in.ID] {
					return fmt.Errorf("block %s: %%%d defined twice", b.Label, in.ID)
				}
				defined[in.ID] = true
			}
		}
	}
	return nil
}

func validateOperands(m *Module, funcs map[string]*Func, locals, slots, labels map[string]bool, b *Block, in *Instr) error {
	switch in.Op {
	case OpLocalGet, OpLocalSet:
		if !locals[in.Sym] {
			return fmt.Errorf("block %s: unknown local %q", b.Label, in.Sym)
		}
	case OpSlotAddr:
		if !slots[in.Sym] {
			return fmt.Errorf("block %s: unknown slot %q", b.Label, in.Sym)
		}
	case OpCall:
		target, ok := funcs[in.Sym]
		if !ok {
			return fmt.Errorf("block %s: call to unknown function %q", b.Label, in.Sym)
		}
		if len(in.Args) != len(target.Params) {
			return fmt.Errorf("block %s: call to %q with %d argument(s), want %d",
				b.Label, in.Sym, len(in.Args), len(target.Params))
		}
	case OpFuncConst:
		if _, ok := funcs[in.Sym]; !ok {
			return fmt.Errorf("block %s: func.const of unknown function %q", b.Label, in.Sym)
		}
	case OpStrConst, OpPrint:
		if in.StrIdx < 0 || in.StrIdx >= len(m.Strings) {
			return fmt.Errorf("block %s: string index %d out of range", b.Label, in.StrIdx)
		}
	case OpBr:
		if !labels[in.Target] {
			return fmt.Errorf("block %s: branch to unknown label %q", b.Label, in.Target)
		}
	case OpCondBr:
		if !labels[in.Then] {
			return fmt.Errorf("block %s: branch to unknown label %q", b.Label, in.Then)
		}
		if !labels[in.Else] {
			return fmt.Errorf("block %s: branch to unknown label %q", b.Label, in.Else)
		}
	}
	return nil
}
