package ir

import (
	"sort"
	"strings"

	"spirv/internal/spv"
)

// container is what an instruction can be inserted into: a basic block or
// the module's global instruction section.
type container interface {
	insertInstAfter(inst, pos *Instruction) error
	insertInstBefore(inst, pos *Instruction) error
	removeInst(inst *Instruction)
}

// Instruction is one SPIR-V operation.
type Instruction struct {
	module    *Module
	op        string
	resultID  *Id
	typeID    *Id
	operands  []Operand
	parent    container
	function  *Function
	destroyed bool
}

// NewInst creates a detached instruction. A result id is allocated if the
// operation produces one; use NewInstWithResult to supply it instead.
func NewInst(m *Module, op string, typeID *Id, operands []Operand) (*Instruction, error) {
	return NewInstWithResult(m, op, typeID, operands, nil)
}

// NewInstWithResult creates a detached instruction with an explicit
// result id.
func NewInstWithResult(m *Module, op string, typeID *Id, operands []Operand, resultID *Id) (*Instruction, error) {
	format, ok := spv.Formats[op]
	if !ok {
		return nil, Errorf("invalid operation %q", op)
	}
	if resultID == nil && format.HasResult {
		resultID = m.NewTempId()
	}
	if op == "OpFunction" {
		if len(operands) < 2 {
			return nil, Errorf("OpFunction needs a function type operand")
		}
		typeID, ok := operands[1].(*Id)
		if !ok || typeID.Inst() == nil || typeID.Inst().op != "OpTypeFunction" {
			return nil, Errorf("expected OpTypeFunction as second operand")
		}
	}
	inst := &Instruction{
		module:   m,
		op:       op,
		resultID: resultID,
		typeID:   typeID,
		operands: operands,
	}
	if resultID != nil {
		if resultID.inst != nil {
			return nil, Errorf("%s is already defined", resultID)
		}
		resultID.inst = inst
	}
	return inst, nil
}

// Op returns the operation name.
func (inst *Instruction) Op() string {
	return inst.op
}

// ResultID returns the result id, or nil.
func (inst *Instruction) ResultID() *Id {
	return inst.resultID
}

// TypeID returns the type id, or nil.
func (inst *Instruction) TypeID() *Id {
	return inst.typeID
}

// Operands returns the operand list. Callers must not modify it directly;
// mutations go through the Instruction methods so use edges stay
// consistent.
func (inst *Instruction) Operands() []Operand {
	return inst.operands
}

// IdOperand returns operand i as an *Id.
func (inst *Instruction) IdOperand(i int) *Id {
	return inst.operands[i].(*Id)
}

// Module returns the owning module.
func (inst *Instruction) Module() *Module {
	return inst.module
}

// Block returns the basic block containing the instruction, or nil for
// global and detached instructions.
func (inst *Instruction) Block() *BasicBlock {
	if block, ok := inst.parent.(*BasicBlock); ok {
		return block
	}
	return nil
}

// Function returns the function containing the instruction, or nil.
func (inst *Instruction) Function() *Function {
	return inst.function
}

// IsDetached reports whether the instruction is outside any basic block
// or global bucket.
func (inst *Instruction) IsDetached() bool {
	return inst.parent == nil
}

// Destroyed reports whether Destroy has been called.
func (inst *Instruction) Destroyed() bool {
	return inst.destroyed
}

func (inst *Instruction) String() string {
	var sb strings.Builder
	if inst.resultID != nil {
		sb.WriteString(inst.resultID.String())
		sb.WriteString(" = ")
	}
	sb.WriteString(inst.op)
	if inst.typeID != nil {
		sb.WriteString(" ")
		sb.WriteString(inst.typeID.String())
	}
	for i, operand := range inst.operands {
		if i == 0 {
			sb.WriteString(" ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(operandString(operand))
	}
	return sb.String()
}

// InsertAfter splices the instruction into pos's container, after pos.
func (inst *Instruction) InsertAfter(pos *Instruction) error {
	if pos.parent == nil {
		return Errorf("instruction is not in a basic block or module")
	}
	return pos.parent.insertInstAfter(inst, pos)
}

// InsertBefore splices the instruction into pos's container, before pos.
func (inst *Instruction) InsertBefore(pos *Instruction) error {
	if pos.parent == nil {
		return Errorf("instruction is not in a basic block or module")
	}
	return pos.parent.insertInstBefore(inst, pos)
}

// Remove detaches the instruction from its container. Debug and
// decoration instructions referencing the result id are unaffected, so
// the instruction can be re-inserted.
func (inst *Instruction) Remove() error {
	if inst.parent == nil {
		return Errorf("instruction is not in basic block or module")
	}
	inst.parent.removeInst(inst)
	return nil
}

// Destroy removes the instruction together with the debug and decoration
// instructions attached to its result id. The instruction must not be
// used afterwards.
func (inst *Instruction) Destroy() {
	if inst.resultID != nil {
		for _, use := range inst.resultID.Uses() {
			if DecorationInstructions[use.op] || DebugInstructions[use.op] {
				use.Destroy()
			}
		}
	}
	if inst.parent != nil {
		inst.parent.removeInst(inst)
	}
	if inst.resultID != nil {
		inst.resultID.inst = nil
	}
	inst.parent = nil
	inst.function = nil
	inst.resultID = nil
	inst.typeID = nil
	inst.operands = nil
	inst.destroyed = true
}

// AddToPhi appends a (value, parent label) pair to a phi node.
func (inst *Instruction) AddToPhi(valueInst, parentInst *Instruction) {
	if inst.op != "OpPhi" {
		panic("AddToPhi on " + inst.op)
	}
	inst.operands = append(inst.operands, valueInst.resultID, parentInst.resultID)
	valueInst.resultID.addUse(inst)
	parentInst.resultID.addUse(inst)
}

// RemoveFromPhi removes the (value, parent) pair naming parentID from a
// phi node, keeping use edges consistent even when the value id occurs in
// other pairs.
func (inst *Instruction) RemoveFromPhi(parentID *Id) {
	if inst.op != "OpPhi" {
		panic("RemoveFromPhi on " + inst.op)
	}
	idx := -1
	for i := 1; i < len(inst.operands); i += 2 {
		if inst.operands[i] == Operand(parentID) {
			idx = i
			break
		}
	}
	if idx < 0 {
		panic("parent not found in phi")
	}
	removeUseFromId(inst)
	inst.operands = append(inst.operands[:idx-1], inst.operands[idx+1:]...)
	addUseToId(inst)
}

// Uses returns the instructions using this instruction's result. Debug
// and decoration instructions are not considered uses; they belong to the
// instruction they reference.
func (inst *Instruction) Uses() []*Instruction {
	if inst.resultID == nil {
		return nil
	}
	var uses []*Instruction
	for _, use := range inst.resultID.Uses() {
		if !DecorationInstructions[use.op] && !DebugInstructions[use.op] {
			uses = append(uses, use)
		}
	}
	return uses
}

// GetDecorations returns the decoration instructions for this
// instruction, sorted by decoration kind for determinism.
func (inst *Instruction) GetDecorations() []*Instruction {
	if inst.resultID == nil {
		return nil
	}
	var decorations []*Instruction
	for _, use := range inst.resultID.Uses() {
		if DecorationInstructions[use.op] {
			decorations = append(decorations, use)
		}
	}
	sort.SliceStable(decorations, func(i, j int) bool {
		return operandString(decorations[i].operands[1]) <
			operandString(decorations[j].operands[1])
	})
	return decorations
}

// ReplaceUsesWith substitutes this instruction's result id with
// newInst's result id in every use. Decoration and debug instructions
// are not updated, as they are a part of the instruction they reference.
func (inst *Instruction) ReplaceUsesWith(newInst *Instruction) {
	for _, use := range inst.Uses() {
		removeUseFromId(use)
		if use.typeID == inst.resultID {
			use.typeID = newInst.resultID
		}
		for i, operand := range use.operands {
			if operand == Operand(inst.resultID) {
				use.operands[i] = newInst.resultID
			}
		}
		addUseToId(use)
	}
}

// ReplaceWith inserts newInst after this instruction, redirects all uses
// to it, and destroys this instruction.
func (inst *Instruction) ReplaceWith(newInst *Instruction) error {
	if err := newInst.InsertAfter(inst); err != nil {
		return err
	}
	inst.ReplaceUsesWith(newInst)
	inst.Destroy()
	return nil
}

// HasSideEffects reports whether the instruction may have side effects.
// An OpExtInst for an unknown instruction set conservatively does.
func (inst *Instruction) HasSideEffects() bool {
	if inst.resultID == nil && inst.op != "OpNop" {
		return true
	}
	if inst.op == "OpExtInst" {
		setInst := inst.IdOperand(0).Inst()
		setName := string(setInst.operands[0].(LiteralString))
		number := uint32(inst.operands[1].(LiteralNumber))
		if format, ok := spv.LookupExtInst(setName, number); ok {
			return format.HasSideEffects
		}
		return true
	}
	return hasSideEffect[inst.op]
}

// IsCommutative reports whether the operation is commutative. Extended
// instructions consult the instruction set metadata.
func (inst *Instruction) IsCommutative() bool {
	if inst.op == "OpExtInst" {
		setInst := inst.IdOperand(0).Inst()
		setName := string(setInst.operands[0].(LiteralString))
		number := uint32(inst.operands[1].(LiteralNumber))
		if format, ok := spv.LookupExtInst(setName, number); ok {
			return format.IsCommutative
		}
		return false
	}
	return isCommutative[inst.op]
}

// IsGlobal reports whether this is a global instruction (one that lives
// outside any function body). OpVariable with Function storage class is
// the body-instruction exception.
func (inst *Instruction) IsGlobal() bool {
	if InitialInstructions[inst.op] ||
		DebugInstructions[inst.op] ||
		DecorationInstructions[inst.op] ||
		TypeDeclarationInstructions[inst.op] ||
		ConstantInstructions[inst.op] ||
		SpecConstantInstructions[inst.op] ||
		GlobalVariableInstructions[inst.op] {
		return !(inst.op == "OpVariable" && inst.operands[0] == Operand(EnumName("Function")))
	}
	return false
}

// IsConstInst reports whether the instruction creates a constant.
func (inst *Instruction) IsConstInst() bool {
	return ConstantInstructions[inst.op]
}

// CopyDecorations duplicates src's decoration instructions onto this
// instruction.
func (inst *Instruction) CopyDecorations(src *Instruction) error {
	for _, decoration := range src.GetDecorations() {
		operands := make([]Operand, len(decoration.operands))
		copy(operands, decoration.operands)
		operands[0] = inst.resultID
		newInst, err := NewInst(inst.module, decoration.op, nil, operands)
		if err != nil {
			return err
		}
		if err := newInst.InsertAfter(decoration); err != nil {
			return err
		}
	}
	return nil
}
