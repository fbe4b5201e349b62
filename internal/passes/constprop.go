package passes

import (
	"spirv/internal/ir"
)

// ConstProp changes instructions having only constant operands to a
// constant. It tends to leave dead instructions, so dead_inst_elim
// should be run after.
func ConstProp(m *ir.Module) error {
	for _, f := range m.Functions() {
		for _, inst := range f.Instructions() {
			if inst.Destroyed() || inst.IsDetached() {
				continue
			}
			optimized, err := constpropInst(m, inst)
			if err != nil {
				return err
			}
			if optimized != inst {
				inst.ReplaceUsesWith(optimized)
			}
		}
	}
	return nil
}

// constpropInst folds one instruction whose Id operands are all
// constants. All interning goes through the module's global instruction
// lookup so duplicate constants are never created.
func constpropInst(m *ir.Module, inst *ir.Instruction) (*ir.Instruction, error) {
	for _, operand := range inst.Operands() {
		if id, ok := operand.(*ir.Id); ok {
			if id.Inst() == nil || !id.Inst().IsConstInst() {
				return inst, nil
			}
		}
	}

	switch inst.Op() {
	case "OpCompositeConstruct":
		return m.GetGlobalInst("OpConstantComposite", inst.TypeID(),
			cloneOperands(inst.Operands()))
	case "OpCompositeExtract":
		return foldCompositeExtract(inst), nil
	case "OpLogicalAnd":
		return foldComponentwise2(m, inst, func(x, y bool) bool { return x && y })
	case "OpLogicalEqual":
		return foldComponentwise2(m, inst, func(x, y bool) bool { return x == y })
	case "OpLogicalNot":
		return foldComponentwise1(m, inst, func(x bool) bool { return !x })
	case "OpLogicalNotEqual":
		return foldComponentwise2(m, inst, func(x, y bool) bool { return x != y })
	case "OpLogicalOr":
		return foldComponentwise2(m, inst, func(x, y bool) bool { return x || y })
	case "OpVectorShuffle":
		return foldVectorShuffle(m, inst)
	}
	return inst, nil
}

func cloneOperands(operands []ir.Operand) []ir.Operand {
	clone := make([]ir.Operand, len(operands))
	copy(clone, operands)
	return clone
}

// foldCompositeExtract walks the extract indices into the composite
// constant and returns the indexed leaf constant.
func foldCompositeExtract(inst *ir.Instruction) *ir.Instruction {
	result := inst.IdOperand(0).Inst()
	for _, index := range inst.Operands()[1:] {
		idx := int(index.(ir.LiteralNumber))
		result = result.IdOperand(idx).Inst()
	}
	return result
}

// boolValue returns the value of a boolean constant instruction.
func boolValue(inst *ir.Instruction) bool {
	return inst.Op() == "OpConstantTrue"
}

// foldComponentwise1 folds a one-operand boolean operation per
// component.
func foldComponentwise1(m *ir.Module, inst *ir.Instruction, transform func(bool) bool) (*ir.Instruction, error) {
	return foldScalarOrComposite(m, inst.TypeID(),
		[]*ir.Instruction{inst.IdOperand(0).Inst()},
		func(elems []*ir.Instruction) bool {
			return transform(boolValue(elems[0]))
		})
}

// foldComponentwise2 folds a two-operand boolean operation per
// component.
func foldComponentwise2(m *ir.Module, inst *ir.Instruction, transform func(bool, bool) bool) (*ir.Instruction, error) {
	return foldScalarOrComposite(m, inst.TypeID(),
		[]*ir.Instruction{inst.IdOperand(0).Inst(), inst.IdOperand(1).Inst()},
		func(elems []*ir.Instruction) bool {
			return transform(boolValue(elems[0]), boolValue(elems[1]))
		})
}

// foldScalarOrComposite computes a boolean transform over scalar
// constants, recursing through vector and matrix composites.
func foldScalarOrComposite(m *ir.Module, typeID *ir.Id, consts []*ir.Instruction, transform func([]*ir.Instruction) bool) (*ir.Instruction, error) {
	typeInst := typeID.Inst()
	if typeInst.Op() == "OpTypeVector" || typeInst.Op() == "OpTypeMatrix" {
		elemTypeID := typeInst.IdOperand(0)
		var operands []ir.Operand
		for i := range consts[0].Operands() {
			elems := make([]*ir.Instruction, len(consts))
			for j, c := range consts {
				elems[j] = c.IdOperand(i).Inst()
			}
			elemInst, err := foldScalarOrComposite(m, elemTypeID, elems, transform)
			if err != nil {
				return nil, err
			}
			operands = append(operands, elemInst.ResultID())
		}
		return m.GetGlobalInst("OpConstantComposite", typeID, operands)
	}
	return m.GetConstant(typeID, transform(consts))
}

// foldVectorShuffle resolves each shuffle index into the constant input
// vectors. Undefined components pick the first element of vector one.
func foldVectorShuffle(m *ir.Module, inst *ir.Instruction) (*ir.Instruction, error) {
	vec1Inst := inst.IdOperand(0).Inst()
	vec2Inst := inst.IdOperand(1).Inst()
	vec1Len := uint32(len(vec1Inst.Operands()))
	var components []ir.Operand
	for _, operand := range inst.Operands()[2:] {
		component := uint32(operand.(ir.LiteralNumber))
		switch {
		case component == undefComponent:
			components = append(components, vec1Inst.Operands()[0])
		case component < vec1Len:
			components = append(components, vec1Inst.Operands()[component])
		default:
			components = append(components, vec2Inst.Operands()[component-vec1Len])
		}
	}
	return m.GetGlobalInst("OpConstantComposite", inst.TypeID(), components)
}
