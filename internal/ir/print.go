package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// String renders the module in its canonical textual form. The output is
// deterministic: the same module always renders to the same bytes.
func (m *Module) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "module %s\n", m.Name)

	if len(m.Strings) > 0 {
		sb.WriteString("\n")
		for i, s := range m.Strings {
			fmt.Fprintf(&sb, "str.%d = %s\n", i, strconv.Quote(s))
		}
	}

	for _, f := range m.Funcs {
		sb.WriteString("\n")
		f.write(&sb)
	}
	return sb.String()
}

// String renders a single function
func (f *Func) String() string {
	var sb strings.Builder
	f.write(&sb)
	return sb.String()
}

func (f *Func) write(sb *strings.Builder) {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = fmt.Sprintf("%s: %s", p.Name, p.Type)
	}
	fmt.Fprintf(sb, "func %s(%s) -> %s {\n", f.Name, strings.Join(params, ", "), f.Result)

	for _, l := range f.Locals {
		fmt.Fprintf(sb, "  local %s: %s\n", l.Name, l.Type)
	}
	for _, s := range f.Slots {
		if s.Count == 1 {
			fmt.Fprintf(sb, "  slot %s: %s\n", s.Name, s.Elem)
		} else {
			fmt.Fprintf(sb, "  slot %s: %s x %d\n", s.Name, s.Elem, s.Count)
		}
	}

	for _, b := range f.Blocks {
		fmt.Fprintf(sb, "%s:\n", b.Label)
		for _, in := range b.Instrs {
			sb.WriteString("  ")
			sb.WriteString(in.String())
			sb.WriteString("\n")
		}
	}
	sb.WriteString("}\n")
}

func reg(id int) string {
	return "%" + strconv.Itoa(id)
}

func regs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = reg(id)
	}
	return strings.Join(parts, ", ")
}

// String renders one instruction in its canonical form
func (in *Instr) String() string {
	switch in.Op {
	case OpConst:
		return fmt.Sprintf("%s = const %d : %s", reg(in.ID), in.IntVal, in.Type)
	case OpStrConst:
		return fmt.Sprintf("%s = str.const str.%d : str", reg(in.ID), in.StrIdx)
	case OpFuncConst:
		return fmt.Sprintf("%s = func.const @%s : fn", reg(in.ID), in.Sym)
	case OpLocalGet:
		return fmt.Sprintf("%s = local.get %s : %s", reg(in.ID), in.Sym, in.Type)
	case OpLocalSet:
		return fmt.Sprintf("local.set %s, %s", in.Sym, reg(in.Args[0]))
	case OpSlotAddr:
		return fmt.Sprintf("%s = slot.addr %s : ptr", reg(in.ID), in.Sym)
	case OpLoad:
		return fmt.Sprintf("%s = load %s : %s", reg(in.ID), reg(in.Args[0]), in.Type)
	case OpStore:
		return fmt.Sprintf("store %s, %s : %s", reg(in.Args[0]), reg(in.Args[1]), in.Elem)
	case OpIndex:
		return fmt.Sprintf("%s = index %s, %s, %s : ptr", reg(in.ID), in.Elem, reg(in.Args[0]), reg(in.Args[1]))
	case OpBin:
		return fmt.Sprintf("%s = %s %s, %s : %s", reg(in.ID), in.Bin, reg(in.Args[0]), reg(in.Args[1]), in.Type)
	case OpUn:
		return fmt.Sprintf("%s = %s %s : %s", reg(in.ID), in.Un, reg(in.Args[0]), in.Type)
	case OpConvert:
		return fmt.Sprintf("%s = convert %s : %s", reg(in.ID), reg(in.Args[0]), in.Type)
	case OpCall:
		if in.ID < 0 {
			return fmt.Sprintf("call @%s(%s) : void", in.Sym, regs(in.Args))
		}
		return fmt.Sprintf("%s = call @%s(%s) : %s", reg(in.ID), in.Sym, regs(in.Args), in.Type)
	case OpCallIndirect:
		callee := reg(in.Args[0])
		rest := regs(in.Args[1:])
		if in.ID < 0 {
			return fmt.Sprintf("call.indirect %s(%s) : void", callee, rest)
		}
		return fmt.Sprintf("%s = call.indirect %s(%s) : %s", reg(in.ID), callee, rest, in.Type)
	case OpPrint:
		return fmt.Sprintf("print str.%d(%s)", in.StrIdx, regs(in.Args))
	case OpConcat:
		return fmt.Sprintf("%s = concat %s, %s : str", reg(in.ID), reg(in.Args[0]), reg(in.Args[1]))
	case OpStrLen:
		return fmt.Sprintf("%s = str.len %s : i64", reg(in.ID), reg(in.Args[0]))
	case OpIntToStr:
		return fmt.Sprintf("%s = int.to.str %s : str", reg(in.ID), reg(in.Args[0]))
	case OpBoolToStr:
		return fmt.Sprintf("%s = bool.to.str %s : str", reg(in.ID), reg(in.Args[0]))
	case OpBr:
		return fmt.Sprintf("br %s", in.Target)
	case OpCondBr:
		return fmt.Sprintf("cond.br %s, %s, %s", reg(in.Args[0]), in.Then, in.Else)
	case OpRet:
		if len(in.Args) == 0 {
			return "ret"
		}
		return fmt.Sprintf("ret %s", reg(in.Args[0]))
	case OpUnreachable:
		return "unreachable"
	default:
		return "<invalid>"
	}
}
