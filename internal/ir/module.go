package ir

import (
	"fmt"
	"io"
)

// Module is the top-level container: a bound, the functions in emission
// order, and the partitioned global instructions.
type Module struct {
	bound     uint64
	functions []*Function
	globals   *GlobalSection
	ids       map[uint32]*Id
}

// NewModule creates an empty module with bound 1.
func NewModule() *Module {
	m := &Module{
		bound: 1,
		ids:   map[uint32]*Id{},
	}
	m.globals = &GlobalSection{module: m}
	return m
}

// Bound returns one past the highest concrete id value in use.
func (m *Module) Bound() uint32 {
	return uint32(m.bound)
}

// Globals returns the module's global instruction section.
func (m *Module) Globals() *GlobalSection {
	return m.globals
}

// Functions returns the module's functions in emission order.
func (m *Module) Functions() []*Function {
	return m.functions
}

// GetId returns the module's Id for a concrete value, creating it if
// needed. Each concrete value has at most one Id object.
func (m *Module) GetId(value uint32) (*Id, error) {
	if value == 0 || value >= 0xffffffff {
		return nil, Errorf("id value %d out of range", value)
	}
	if id, ok := m.ids[value]; ok {
		return id, nil
	}
	id := &Id{value: uint64(value)}
	m.ids[value] = id
	if uint64(value)+1 > m.bound {
		m.bound = uint64(value) + 1
	}
	return id, nil
}

// NewTempId returns a fresh temporary id.
func (m *Module) NewTempId() *Id {
	return &Id{value: tempIdCounter.Add(1), isTemp: true}
}

// InsertGlobalInst inserts a global instruction into the module.
func (m *Module) InsertGlobalInst(inst *Instruction) error {
	return m.globals.AppendInst(inst)
}

// GetGlobalInst returns a global instruction with the given opcode,
// type, and operands, reusing an existing one when possible.
func (m *Module) GetGlobalInst(op string, typeID *Id, operands []Operand) (*Instruction, error) {
	return m.globals.GetInst(op, typeID, operands)
}

// AppendFunction inserts a function at the end of the module.
func (m *Module) AppendFunction(f *Function) {
	m.functions = append(m.functions, f)
}

// PrependFunction inserts a function at the top of the module.
func (m *Module) PrependFunction(f *Function) {
	m.functions = append([]*Function{f}, m.functions...)
}

// InsertFunctionAfter inserts f after an existing function.
func (m *Module) InsertFunctionAfter(f, pos *Function) error {
	return m.insertFunctionAt(f, pos, 1)
}

// InsertFunctionBefore inserts f before an existing function.
func (m *Module) InsertFunctionBefore(f, pos *Function) error {
	return m.insertFunctionAt(f, pos, 0)
}

func (m *Module) insertFunctionAt(f, pos *Function, offset int) error {
	for i, cur := range m.functions {
		if cur == pos {
			idx := i + offset
			m.functions = append(m.functions, nil)
			copy(m.functions[idx+1:], m.functions[idx:])
			m.functions[idx] = f
			return nil
		}
	}
	return Errorf("function is not in the module")
}

// Instructions returns every instruction in the module (globals first,
// then each function) as a snapshot.
func (m *Module) Instructions() []*Instruction {
	insts := m.globals.Instructions()
	for _, f := range m.functions {
		insts = append(insts, f.Instructions()...)
	}
	return insts
}

// InstructionsReversed returns every instruction in the module in
// reverse order, as a snapshot.
func (m *Module) InstructionsReversed() []*Instruction {
	var insts []*Instruction
	for i := len(m.functions) - 1; i >= 0; i-- {
		insts = append(insts, m.functions[i].InstructionsReversed()...)
	}
	return append(insts, m.globals.InstructionsReversed()...)
}

// GetConstant returns a constant instruction with the given type and
// value, creating and interning it if needed. For vector and matrix
// types the value is a []ConstantValue of element values (or a scalar,
// which is replicated for all elements).
func (m *Module) GetConstant(typeID *Id, value ConstantValue) (*Instruction, error) {
	typeInst := typeID.Inst()
	if typeInst == nil {
		return nil, Errorf("constant type is not defined")
	}
	switch typeInst.op {
	case "OpTypeInt", "OpTypeFloat":
		words, err := constWords(typeInst, value)
		if err != nil {
			return nil, err
		}
		return m.GetGlobalInst("OpConstant", typeID, words)
	case "OpTypeVector", "OpTypeMatrix":
		elemTypeID := typeInst.IdOperand(0)
		count := int(typeInst.operands[1].(LiteralNumber))
		elems, ok := value.([]ConstantValue)
		if !ok {
			elems = make([]ConstantValue, count)
			for i := range elems {
				elems[i] = value
			}
		}
		if len(elems) != count {
			return nil, Errorf("constant value has %d elements, type has %d",
				len(elems), count)
		}
		operands := make([]Operand, 0, count)
		for _, elem := range elems {
			elemInst, err := m.GetConstant(elemTypeID, elem)
			if err != nil {
				return nil, err
			}
			operands = append(operands, elemInst.resultID)
		}
		return m.GetGlobalInst("OpConstantComposite", typeID, operands)
	case "OpTypeBool":
		truth, ok := value.(bool)
		if !ok {
			return nil, Errorf("invalid value for boolean constant")
		}
		if truth {
			return m.GetGlobalInst("OpConstantTrue", typeID, nil)
		}
		return m.GetGlobalInst("OpConstantFalse", typeID, nil)
	}
	return nil, Errorf("invalid type for constant")
}

// RenumberTempIds converts every temporary id to a fresh concrete id and
// rewrites all uses. Serialization requires that no reachable id is
// temporary.
func (m *Module) RenumberTempIds() error {
	// The temporary ids are collected into a list so the renumbering is
	// deterministic.
	var tempIds []*Id
	for _, inst := range m.Instructions() {
		if inst.resultID != nil && inst.resultID.isTemp {
			tempIds = append(tempIds, inst.resultID)
		}
	}
	for _, oldID := range tempIds {
		newID, err := m.GetId(uint32(m.bound))
		if err != nil {
			return err
		}
		newID.inst = oldID.inst
		newID.inst.resultID = newID
		oldID.inst = nil
		for _, inst := range oldID.uses {
			if inst.typeID == oldID {
				inst.typeID = newID
			}
			for i, operand := range inst.operands {
				if operand == Operand(oldID) {
					inst.operands[i] = newID
				}
			}
		}
		newID.uses = oldID.uses
		oldID.uses = nil
	}
	return nil
}

// Dump writes a debug dump of the module to w.
func (m *Module) Dump(w io.Writer) {
	for _, inst := range m.globals.Instructions() {
		fmt.Fprintf(w, "%s\n", inst)
	}
	for _, f := range m.functions {
		fmt.Fprintf(w, "\n%s\n", f.inst)
		for _, inst := range f.parameters {
			fmt.Fprintf(w, "%s\n", inst)
		}
		for _, bb := range f.blocks {
			fmt.Fprintf(w, "%s\n", bb.inst)
			for _, inst := range bb.insts {
				fmt.Fprintf(w, "  %s\n", inst)
			}
		}
		fmt.Fprintf(w, "%s\n", f.endInst)
	}
}
