package passes

import (
	"spirv/internal/ir"
)

const undefComponent = 0xffffffff

// InstCombine combines and simplifies instructions. Each rewritten
// instruction is also constant folded, so a separate constprop run is
// not needed after this pass. It tends to leave dead instructions, so
// dead_inst_elim should be run after.
func InstCombine(m *ir.Module) error {
	for _, f := range m.Functions() {
		for _, inst := range f.Instructions() {
			if inst.Destroyed() || inst.IsDetached() {
				continue
			}
			optimized, err := combineInst(m, inst)
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

// combineInst simplifies one instruction: canonicalize the operand
// order, run the peephole rules to a fixed point, then constant fold.
func combineInst(m *ir.Module, inst *ir.Instruction) (*ir.Instruction, error) {
	inst, err := canonicalizeInst(m, inst)
	if err != nil {
		return nil, err
	}

	// A transformed instruction can trigger another rule, so the
	// peephole rules are iterated until the result stops changing.
	for {
		newInst, err := peepholeInst(m, inst)
		if err != nil {
			return nil, err
		}
		if newInst == inst {
			break
		}
		inst = newInst
	}

	// It is common that the simplified instruction can be constant
	// folded, and that folded constants open up simplifications in the
	// instructions that follow. Folding here saves iterating the
	// instcombine and constprop passes until the module stabilizes.
	return constpropInst(m, inst)
}

func isConstOperand(operand ir.Operand) bool {
	id, ok := operand.(*ir.Id)
	return ok && id.Inst() != nil && id.Inst().IsConstInst()
}

// canonicalizeInst swaps the operands of a commutative instruction with
// exactly one constant operand so the constant is always second.
func canonicalizeInst(m *ir.Module, inst *ir.Instruction) (*ir.Instruction, error) {
	operands := inst.Operands()
	if inst.Op() == "OpExtInst" {
		if !inst.IsCommutative() || len(operands) != 4 {
			return inst, nil
		}
		if !isConstOperand(operands[2]) || isConstOperand(operands[3]) {
			return inst, nil
		}
		newInst, err := ir.NewInst(m, "OpExtInst", inst.TypeID(),
			[]ir.Operand{operands[0], operands[1], operands[3], operands[2]})
		if err != nil {
			return nil, err
		}
		if err := newInst.InsertBefore(inst); err != nil {
			return nil, err
		}
		return newInst, nil
	}
	if inst.IsCommutative() &&
		isConstOperand(operands[0]) && !isConstOperand(operands[1]) {
		newInst, err := ir.NewInst(m, inst.Op(), inst.TypeID(),
			[]ir.Operand{operands[1], operands[0]})
		if err != nil {
			return nil, err
		}
		if err := newInst.InsertBefore(inst); err != nil {
			return nil, err
		}
		return newInst, nil
	}
	return inst, nil
}

// peepholeInst applies the peephole rules for one instruction.
func peepholeInst(m *ir.Module, inst *ir.Instruction) (*ir.Instruction, error) {
	switch inst.Op() {
	case "OpBitcast":
		return combineBitcast(m, inst)
	case "OpCompositeConstruct":
		return combineCompositeConstruct(m, inst)
	case "OpIAdd":
		return combineIAdd(inst), nil
	case "OpIMul":
		return combineIMul(m, inst)
	case "OpLogicalAnd":
		return combineLogicalAnd(m, inst)
	case "OpLogicalEqual":
		return combineLogicalEqual(m, inst)
	case "OpLogicalNot":
		return combineDoubleInverse(inst), nil
	case "OpLogicalNotEqual":
		return combineLogicalNotEqual(m, inst)
	case "OpLogicalOr":
		return combineLogicalOr(m, inst)
	case "OpNot", "OpSNegate", "OpTranspose":
		return combineDoubleInverse(inst), nil
	case "OpVectorShuffle":
		return combineVectorShuffle(m, inst)
	}
	return inst, nil
}

// combineBitcast folds bitcast(bitcast(x)) to x or to a single bitcast.
func combineBitcast(m *ir.Module, inst *ir.Instruction) (*ir.Instruction, error) {
	operandInst := inst.IdOperand(0).Inst()
	if operandInst.Op() != "OpBitcast" {
		return inst, nil
	}
	source := operandInst.IdOperand(0)
	if inst.TypeID() == source.Inst().TypeID() {
		return source.Inst(), nil
	}
	newInst, err := ir.NewInst(m, "OpBitcast", inst.TypeID(), []ir.Operand{source})
	if err != nil {
		return nil, err
	}
	if err := newInst.CopyDecorations(inst); err != nil {
		return nil, err
	}
	if err := newInst.InsertBefore(inst); err != nil {
		return nil, err
	}
	return newInst, nil
}

// combineCompositeConstruct turns a vector construct whose operands are
// all OpCompositeExtract from at most two vectors into an
// OpVectorShuffle:
//
//	%20 = OpCompositeExtract f32 %19, 0
//	%21 = OpCompositeExtract f32 %19, 1
//	%22 = OpCompositeExtract f32 %19, 2
//	%23 = OpCompositeConstruct <3 x f32> %20, %21, %22
func combineCompositeConstruct(m *ir.Module, inst *ir.Instruction) (*ir.Instruction, error) {
	if inst.TypeID().Inst().Op() != "OpTypeVector" {
		return inst, nil
	}
	var sources []*ir.Id
	for _, operand := range inst.Operands() {
		extract := operand.(*ir.Id).Inst()
		if extract.Op() != "OpCompositeExtract" || len(extract.Operands()) != 2 {
			return inst, nil
		}
		srcInst := extract.IdOperand(0).Inst()
		if !containsId(sources, srcInst.ResultID()) {
			if srcInst.TypeID().Inst().Op() != "OpTypeVector" {
				return inst, nil
			}
			sources = append(sources, srcInst.ResultID())
		}
		if len(sources) > 2 {
			return inst, nil
		}
	}
	vec1ID := sources[0]
	vec2ID := sources[0]
	if len(sources) == 2 {
		vec2ID = sources[1]
	}
	vec1Len := vec1ID.Inst().TypeID().Inst().Operands()[1].(ir.LiteralNumber)
	operands := []ir.Operand{vec1ID, vec2ID}
	for _, operand := range inst.Operands() {
		extract := operand.(*ir.Id).Inst()
		idx := extract.Operands()[1].(ir.LiteralNumber)
		if extract.IdOperand(0) != vec1ID {
			idx += vec1Len
		}
		operands = append(operands, idx)
	}
	newInst, err := ir.NewInst(m, "OpVectorShuffle", inst.TypeID(), operands)
	if err != nil {
		return nil, err
	}
	if err := newInst.CopyDecorations(inst); err != nil {
		return nil, err
	}
	if err := newInst.InsertBefore(inst); err != nil {
		return nil, err
	}
	return newInst, nil
}

func containsId(ids []*ir.Id, id *ir.Id) bool {
	for _, cur := range ids {
		if cur == id {
			return true
		}
	}
	return false
}

// combineIAdd folds x + 0 to x.
func combineIAdd(inst *ir.Instruction) *ir.Instruction {
	if inst.IdOperand(1).Inst().IsConstantValue(0) {
		return inst.IdOperand(0).Inst()
	}
	return inst
}

// combineIMul folds x*0, x*1, and x*(-1).
func combineIMul(m *ir.Module, inst *ir.Instruction) (*ir.Instruction, error) {
	if inst.IdOperand(1).Inst().IsConstantValue(0) {
		return inst.IdOperand(1).Inst(), nil
	}
	if inst.IdOperand(1).Inst().IsConstantValue(1) {
		return inst.IdOperand(0).Inst(), nil
	}
	if inst.IdOperand(1).Inst().IsConstantValue(-1) {
		newInst, err := ir.NewInst(m, "OpSNegate", inst.TypeID(),
			[]ir.Operand{inst.Operands()[0]})
		if err != nil {
			return nil, err
		}
		if err := newInst.InsertBefore(inst); err != nil {
			return nil, err
		}
		return newInst, nil
	}
	return inst, nil
}

// combineDoubleInverse folds f(f(x)) to x for the self-inverse
// operations (logical/bitwise not, negate, transpose).
func combineDoubleInverse(inst *ir.Instruction) *ir.Instruction {
	operandInst := inst.IdOperand(0).Inst()
	if operandInst.Op() == inst.Op() {
		return operandInst.IdOperand(0).Inst()
	}
	return inst
}

// deMorgan rewrites op(not x, not y) to not(dual(x, y)).
func deMorgan(m *ir.Module, inst *ir.Instruction, dual string) (*ir.Instruction, error) {
	op0 := inst.IdOperand(0).Inst()
	op1 := inst.IdOperand(1).Inst()
	if op0.Op() != "OpLogicalNot" || op1.Op() != "OpLogicalNot" {
		return inst, nil
	}
	dualInst, err := ir.NewInst(m, dual, inst.TypeID(),
		[]ir.Operand{op0.Operands()[0], op1.Operands()[0]})
	if err != nil {
		return nil, err
	}
	if err := dualInst.InsertBefore(inst); err != nil {
		return nil, err
	}
	notInst, err := ir.NewInst(m, "OpLogicalNot", inst.TypeID(),
		[]ir.Operand{dualInst.ResultID()})
	if err != nil {
		return nil, err
	}
	if err := notInst.InsertAfter(dualInst); err != nil {
		return nil, err
	}
	return notInst, nil
}

func combineLogicalAnd(m *ir.Module, inst *ir.Instruction) (*ir.Instruction, error) {
	// x and true -> x
	if inst.IdOperand(1).Inst().IsConstantValue(true) {
		return inst.IdOperand(0).Inst(), nil
	}
	// x and false -> false
	if inst.IdOperand(1).Inst().IsConstantValue(false) {
		return inst.IdOperand(1).Inst(), nil
	}
	// x and x -> x
	if inst.IdOperand(0) == inst.IdOperand(1) {
		return inst.IdOperand(0).Inst(), nil
	}
	// (not x) and (not y) -> not (x or y)
	return deMorgan(m, inst, "OpLogicalOr")
}

func combineLogicalOr(m *ir.Module, inst *ir.Instruction) (*ir.Instruction, error) {
	// x or true -> true
	if inst.IdOperand(1).Inst().IsConstantValue(true) {
		return inst.IdOperand(1).Inst(), nil
	}
	// x or false -> x
	if inst.IdOperand(1).Inst().IsConstantValue(false) {
		return inst.IdOperand(0).Inst(), nil
	}
	// x or x -> x
	if inst.IdOperand(0) == inst.IdOperand(1) {
		return inst.IdOperand(0).Inst(), nil
	}
	// (not x) or (not y) -> not (x and y)
	return deMorgan(m, inst, "OpLogicalAnd")
}

func combineLogicalEqual(m *ir.Module, inst *ir.Instruction) (*ir.Instruction, error) {
	// Equal(x, true) -> x
	if inst.IdOperand(1).Inst().IsConstantValue(true) {
		return inst.IdOperand(0).Inst(), nil
	}
	// Equal(x, false) -> not(x)
	if inst.IdOperand(1).Inst().IsConstantValue(false) {
		return insertNot(m, inst)
	}
	// Equal(x, x) -> true
	if inst.IdOperand(0) == inst.IdOperand(1) {
		return m.GetConstant(inst.TypeID(), true)
	}
	return inst, nil
}

func combineLogicalNotEqual(m *ir.Module, inst *ir.Instruction) (*ir.Instruction, error) {
	// NotEqual(x, false) -> x
	if inst.IdOperand(1).Inst().IsConstantValue(false) {
		return inst.IdOperand(0).Inst(), nil
	}
	// NotEqual(x, true) -> not(x)
	if inst.IdOperand(1).Inst().IsConstantValue(true) {
		return insertNot(m, inst)
	}
	// NotEqual(x, x) -> false
	if inst.IdOperand(0) == inst.IdOperand(1) {
		return m.GetConstant(inst.TypeID(), false)
	}
	return inst, nil
}

func insertNot(m *ir.Module, inst *ir.Instruction) (*ir.Instruction, error) {
	newInst, err := ir.NewInst(m, "OpLogicalNot", inst.TypeID(),
		[]ir.Operand{inst.Operands()[0]})
	if err != nil {
		return nil, err
	}
	if err := newInst.InsertBefore(inst); err != nil {
		return nil, err
	}
	return newInst, nil
}

// combineVectorShuffle canonicalizes a vector shuffle. Undefined
// components (index 0xffffffff) may be chosen freely; they are picked so
// that an unused input operand becomes equal to the used one, which
// avoids introducing an OpUndef for swizzles and lets the constant
// folder handle a constant input without special-casing undef inputs.
func combineVectorShuffle(m *ir.Module, inst *ir.Instruction) (*ir.Instruction, error) {
	vec1Inst := inst.IdOperand(0).Inst()
	vec2Inst := inst.IdOperand(1).Inst()
	components := make([]uint32, 0, len(inst.Operands())-2)
	for _, operand := range inst.Operands()[2:] {
		components = append(components, uint32(operand.(ir.LiteralNumber)))
	}

	vec1TypeInst := vec1Inst.TypeID().Inst()
	vec1Len := uint32(vec1TypeInst.Operands()[1].(ir.LiteralNumber))
	usingVec1 := false
	usingVec2 := false
	for _, component := range components {
		if component != undefComponent {
			if component < vec1Len {
				usingVec1 = true
			} else {
				usingVec2 = true
			}
		}
	}
	switch {
	case !usingVec1 && !usingVec2:
		newInst, err := ir.NewInst(m, "OpUndef", inst.TypeID(), nil)
		if err != nil {
			return nil, err
		}
		if err := newInst.InsertBefore(inst); err != nil {
			return nil, err
		}
		return newInst, nil
	case !usingVec2:
		vec2Inst = vec1Inst
	case !usingVec1:
		for i, component := range components {
			if component != undefComponent {
				components[i] = component - vec1Len
			}
		}
		vec1Inst = vec2Inst
	}

	// With both inputs identical, renumber so only the first is used.
	if vec1Inst == vec2Inst {
		vec1Len = uint32(vec1Inst.TypeID().Inst().Operands()[1].(ir.LiteralNumber))
		for i, component := range components {
			if component != undefComponent && component >= vec1Len {
				components[i] = component - vec1Len
			}
		}
	}

	// Eliminate identity swizzles.
	if vec1Inst == vec2Inst && inst.TypeID() == vec1Inst.TypeID() {
		identity := true
		for i, component := range components {
			if component != undefComponent && component != uint32(i) {
				identity = false
				break
			}
		}
		if identity {
			return vec1Inst, nil
		}
	}

	operands := []ir.Operand{vec1Inst.ResultID(), vec2Inst.ResultID()}
	for _, component := range components {
		operands = append(operands, ir.LiteralNumber(component))
	}
	if !ir.OperandsEqual(operands, inst.Operands()) {
		newInst, err := ir.NewInst(m, "OpVectorShuffle", inst.TypeID(), operands)
		if err != nil {
			return nil, err
		}
		if err := newInst.CopyDecorations(inst); err != nil {
			return nil, err
		}
		if err := newInst.InsertBefore(inst); err != nil {
			return nil, err
		}
		return newInst, nil
	}
	return inst, nil
}
