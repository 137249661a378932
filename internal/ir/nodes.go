package ir

// Type is the closed set of value types carried by instructions.
type Type int

const (
	Void Type = iota
	I8
	I16
	I32
	I64
	I128
	Bool
	Str
	Ptr
	Fn
)

// String returns the textual name used in the IR dump
func (t Type) String() string {
	switch t {
	case Void:
		return "void"
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case I128:
		return "i128"
	case Bool:
		return "bool"
	case Str:
		return "str"
	case Ptr:
		return "ptr"
	case Fn:
		return "fn"
	default:
		return "invalid"
	}
}

// IntType maps an integer bit width to its IR type.
func IntType(width int) Type {
	switch width {
	case 8:
		return I8
	case 16:
		return I16
	case 32:
		return I32
	case 64:
		return I64
	case 128:
		return I128
	default:
		return Void
	}
}

// Op enumerates the instruction set.
type Op int

const (
	OpConst       Op = iota // integer or bool constant
	OpStrConst              // reference into the module string table
	OpFuncConst             // address of a module function
	OpLocalGet              // read a value-resident local
	OpLocalSet              // write a value-resident local
	OpSlotAddr              // address of a stack slot
	OpLoad                  // load through an address
	OpStore                 // store through an address
	OpIndex                 // element address: base + index*sizeof(elem)
	OpBin                   // binary arithmetic or comparison
	OpUn                    // unary negation or logical not
	OpConvert               // integer width conversion (truncate or sign-extend)
	OpCall                  // direct call to a module function
	OpCallIndirect          // call through a function value
	OpPrint                 // formatted output, format in the string table
	OpConcat                // string concatenation
	OpStrLen                // string length
	OpIntToStr              // integer to decimal string
	OpBoolToStr             // bool to "true"/"false" string
	OpBr                    // unconditional branch
	OpCondBr                // two-way branch on a bool operand
	OpRet                   // return, with optional value
	OpUnreachable           // marks statically unreachable control flow
)

// BinKind selects the operation of an OpBin instruction.
type BinKind int

const (
	BinAdd BinKind = iota
	BinSub
	BinMul
	BinDiv
	BinRem
	BinEq
	BinNe
	BinLt
	BinGt
	BinLe
	BinGe
)

func (b BinKind) String() string {
	switch b {
	case BinAdd:
		return "add"
	case BinSub:
		return "sub"
	case BinMul:
		return "mul"
	case BinDiv:
		return "div"
	case BinRem:
		return "rem"
	case BinEq:
		return "eq"
	case BinNe:
		return "ne"
	case BinLt:
		return "lt"
	case BinGt:
		return "gt"
	case BinLe:
		return "le"
	case BinGe:
		return "ge"
	default:
		return "invalid"
	}
}

// UnKind selects the operation of an OpUn instruction.
type UnKind int

const (
	UnNeg UnKind = iota
	UnNot
)

func (u UnKind) String() string {
	switch u {
	case UnNeg:
		return "neg"
	case UnNot:
		return "not"
	default:
		return "invalid"
	}
}

// Instr is a single three-address instruction. ID is the result register,
// or -1 when the instruction produces no value. Args hold operand register
// ids; the remaining fields are operand payloads keyed by Op.
type Instr struct {
	Op   Op
	ID   int
	Type Type

	Args   []int
	IntVal int64   // OpConst
	StrIdx int     // OpStrConst, OpPrint format string
	Sym    string  // OpFuncConst, OpCall target, OpLocalGet/Set, OpSlotAddr
	Bin    BinKind // OpBin
	Un     UnKind  // OpUn
	Elem   Type    // OpLoad, OpStore, OpIndex element type

	Target string // OpBr destination
	Then   string // OpCondBr destination when true
	Else   string // OpCondBr destination when false
}

// IsTerminator reports whether the instruction ends a basic block.
func (in *Instr) IsTerminator() bool {
	switch in.Op {
	case OpBr, OpCondBr, OpRet, OpUnreachable:
		return true
	}
	return false
}

// Block is a basic block: a labeled instruction sequence ending in exactly
// one terminator.
type Block struct {
	Label  string
	Instrs []*Instr
}

// Terminated reports whether the block already ends in a terminator.
func (b *Block) Terminated() bool {
	n := len(b.Instrs)
	return n > 0 && b.Instrs[n-1].IsTerminator()
}

// Local is a named, typed value-resident variable of a function.
type Local struct {
	Name string
	Type Type
}

// Slot is a named stack allocation of Count elements. Scalars whose address
// is taken get a one-element slot; arrays get one slot per declaration.
type Slot struct {
	Name  string
	Elem  Type
	Count int
}

// Func is a module function: parameters, value locals, stack slots, and a
// list of basic blocks. Blocks[0] is the entry block. Register ids are
// assigned per function in emission order.
type Func struct {
	Name   string
	Params []Local
	Result Type
	Locals []Local
	Slots  []Slot
	Blocks []*Block

	nextID int
}

// NewBlock appends an empty block with the given label and returns it.
func (f *Func) NewBlock(label string) *Block {
	b := &Block{Label: label}
	f.Blocks = append(f.Blocks, b)
	return b
}

// Emit appends an instruction to a block, assigning its result id when the
// type is non-void. It returns the result id, or -1.
func (f *Func) Emit(b *Block, in *Instr) int {
	if in.Type != Void && !in.IsTerminator() && in.Op != OpLocalSet && in.Op != OpStore {
		in.ID = f.nextID
		f.nextID++
	} else {
		in.ID = -1
	}
	b.Instrs = append(b.Instrs, in)
	return in.ID
}

// Module is a compiled translation unit: functions plus an interned string
// table shared by string constants and print format strings.
type Module struct {
	Name    string
	Funcs   []*Func
	Strings []string

	strIdx map[string]int
}

// NewModule creates an empty module
func NewModule(name string) *Module {
	return &Module{Name: name, strIdx: make(map[string]int)}
}

// Intern returns the string table index for s, adding it on first use.
func (m *Module) Intern(s string) int {
	if m.strIdx == nil {
		m.strIdx = make(map[string]int)
	}
	if idx, ok := m.strIdx[s]; ok {
		return idx
	}
	idx := len(m.Strings)
	m.Strings = append(m.Strings, s)
	m.strIdx[s] = idx
	return idx
}

// Func returns the module function with the given name, or nil.
func (m *Module) Func(name string) *Func {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}
