package ir

// Function is an OpFunction header, its parameters, an ordered list of
// basic blocks (the first block is the entry), and the OpFunctionEnd
// sentinel.
type Function struct {
	module     *Module
	inst       *Instruction
	endInst    *Instruction
	parameters []*Instruction
	blocks     []*BasicBlock
}

// NewFunction creates a function for the OpTypeFunction identified by
// typeID. The header's type id is the function type's return type.
func NewFunction(m *Module, control MaskList, typeID *Id, resultID *Id) (*Function, error) {
	typeInst := typeID.Inst()
	if typeInst == nil || typeInst.op != "OpTypeFunction" {
		return nil, Errorf("expected OpTypeFunction as second operand")
	}
	inst, err := NewInstWithResult(m, "OpFunction", typeInst.IdOperand(0),
		[]Operand{control, typeID}, resultID)
	if err != nil {
		return nil, err
	}
	endInst, err := NewInst(m, "OpFunctionEnd", nil, nil)
	if err != nil {
		return nil, err
	}
	function := &Function{
		module:  m,
		inst:    inst,
		endInst: endInst,
	}
	inst.function = function
	addUseToId(inst)
	endInst.function = function
	addUseToId(endInst)
	return function, nil
}

// Inst returns the OpFunction header instruction.
func (f *Function) Inst() *Instruction {
	return f.inst
}

// EndInst returns the OpFunctionEnd sentinel.
func (f *Function) EndInst() *Instruction {
	return f.endInst
}

// Parameters returns the OpFunctionParameter instructions.
func (f *Function) Parameters() []*Instruction {
	return f.parameters
}

// BasicBlocks returns the function's basic blocks in order.
func (f *Function) BasicBlocks() []*BasicBlock {
	return f.blocks
}

// Module returns the owning module.
func (f *Function) Module() *Module {
	return f.module
}

func (f *Function) String() string {
	return f.inst.String()
}

// AppendParameter appends a parameter; its type must match the function
// type's next parameter type.
func (f *Function) AppendParameter(inst *Instruction) error {
	if inst.op != "OpFunctionParameter" {
		return Errorf("expected OpFunctionParameter")
	}
	funcTypeInst := f.inst.IdOperand(1).Inst()
	params := funcTypeInst.operands[1:]
	paramIdx := len(f.parameters)
	if paramIdx >= len(params) {
		return Errorf("too many parameters")
	}
	if Operand(inst.typeID) != params[paramIdx] {
		return Errorf("incorrect parameter type")
	}
	f.parameters = append(f.parameters, inst)
	inst.function = f
	addUseToId(inst)
	return nil
}

func (f *Function) adopt(bb *BasicBlock) {
	bb.function = f
	bb.inst.function = f
	for _, inst := range bb.insts {
		inst.function = f
	}
}

// AppendBasicBlock inserts a basic block at the end of the function.
func (f *Function) AppendBasicBlock(bb *BasicBlock) {
	f.blocks = append(f.blocks, bb)
	f.adopt(bb)
}

// PrependBasicBlock inserts a basic block at the top of the function.
func (f *Function) PrependBasicBlock(bb *BasicBlock) {
	f.blocks = append([]*BasicBlock{bb}, f.blocks...)
	f.adopt(bb)
}

// InsertBasicBlockAfter inserts bb after an existing basic block.
func (f *Function) InsertBasicBlockAfter(bb, pos *BasicBlock) error {
	return f.insertBasicBlockAt(bb, pos, 1)
}

// InsertBasicBlockBefore inserts bb before an existing basic block.
func (f *Function) InsertBasicBlockBefore(bb, pos *BasicBlock) error {
	return f.insertBasicBlockAt(bb, pos, 0)
}

func (f *Function) insertBasicBlockAt(bb, pos *BasicBlock, offset int) error {
	for i, cur := range f.blocks {
		if cur == pos {
			idx := i + offset
			f.blocks = append(f.blocks, nil)
			copy(f.blocks[idx+1:], f.blocks[idx:])
			f.blocks[idx] = bb
			f.adopt(bb)
			return nil
		}
	}
	return Errorf("basic block is not in the function")
}

// Remove detaches the function from its module.
func (f *Function) Remove() {
	for i, cur := range f.module.functions {
		if cur == f {
			f.module.functions = append(f.module.functions[:i], f.module.functions[i+1:]...)
			return
		}
	}
}

// Destroy destroys the function with all its basic blocks and
// instructions, in reverse order to preserve use edges. The function
// must not be used afterwards.
func (f *Function) Destroy() error {
	f.Remove()
	blocks := make([]*BasicBlock, len(f.blocks))
	copy(blocks, f.blocks)
	for i := len(blocks) - 1; i >= 0; i-- {
		if err := blocks[i].Destroy(); err != nil {
			return err
		}
	}
	params := make([]*Instruction, len(f.parameters))
	copy(params, f.parameters)
	for _, inst := range params {
		removeUseFromId(inst)
		inst.Destroy()
	}
	removeUseFromId(f.endInst)
	f.endInst.Destroy()
	removeUseFromId(f.inst)
	f.inst.Destroy()
	f.module = nil
	f.parameters = nil
	f.blocks = nil
	f.inst = nil
	f.endInst = nil
	return nil
}

// Instructions returns every instruction of the function (header,
// parameters, each block's label and body, end sentinel) in order. The
// result is a snapshot; instructions destroyed after the call remain in
// the slice.
func (f *Function) Instructions() []*Instruction {
	insts := []*Instruction{f.inst}
	insts = append(insts, f.parameters...)
	for _, bb := range f.blocks {
		insts = append(insts, bb.inst)
		insts = append(insts, bb.insts...)
	}
	return append(insts, f.endInst)
}

// InstructionsReversed returns every instruction of the function in
// reverse order, as a snapshot.
func (f *Function) InstructionsReversed() []*Instruction {
	insts := []*Instruction{f.endInst}
	for i := len(f.blocks) - 1; i >= 0; i-- {
		bb := f.blocks[i]
		for j := len(bb.insts) - 1; j >= 0; j-- {
			insts = append(insts, bb.insts[j])
		}
		insts = append(insts, bb.inst)
	}
	for i := len(f.parameters) - 1; i >= 0; i-- {
		insts = append(insts, f.parameters[i])
	}
	return append(insts, f.inst)
}
