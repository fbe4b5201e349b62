package ir

// BasicBlock is an OpLabel header plus an ordered list of body
// instructions ending with a branch instruction.
type BasicBlock struct {
	module   *Module
	function *Function
	inst     *Instruction
	insts    []*Instruction
}

// NewBasicBlock creates a detached basic block. A temporary label id is
// allocated when labelID is nil.
func NewBasicBlock(m *Module, labelID *Id) (*BasicBlock, error) {
	labelInst, err := NewInstWithResult(m, "OpLabel", nil, nil, labelID)
	if err != nil {
		return nil, err
	}
	block := &BasicBlock{
		module: m,
		inst:   labelInst,
	}
	labelInst.parent = block
	addUseToId(labelInst)
	return block, nil
}

// Inst returns the block's OpLabel instruction.
func (bb *BasicBlock) Inst() *Instruction {
	return bb.inst
}

// Insts returns the block's body instructions. Callers must not modify
// the returned slice.
func (bb *BasicBlock) Insts() []*Instruction {
	return bb.insts
}

// Function returns the function the block belongs to, or nil.
func (bb *BasicBlock) Function() *Function {
	return bb.function
}

// Module returns the owning module.
func (bb *BasicBlock) Module() *Module {
	return bb.module
}

func (bb *BasicBlock) String() string {
	return bb.inst.String()
}

// GetSuccessors returns the successor basic blocks, derived from the
// block's terminator.
func (bb *BasicBlock) GetSuccessors() []*BasicBlock {
	branchInst := bb.insts[len(bb.insts)-1]
	switch branchInst.op {
	case "OpBranch":
		return []*BasicBlock{branchInst.IdOperand(0).Inst().Block()}
	case "OpBranchConditional":
		return []*BasicBlock{
			branchInst.IdOperand(1).Inst().Block(),
			branchInst.IdOperand(2).Inst().Block(),
		}
	case "OpSwitch":
		successors := []*BasicBlock{branchInst.IdOperand(1).Inst().Block()}
		targets := branchInst.operands[2:]
		for i := 1; i < len(targets); i += 2 {
			successors = append(successors, targets[i].(*Id).Inst().Block())
		}
		return successors
	}
	return nil
}

// Predecessors returns the predecessor basic blocks, in no particular
// order.
func (bb *BasicBlock) Predecessors() []*BasicBlock {
	var preds []*BasicBlock
	for _, inst := range bb.inst.Uses() {
		if inst.op != "OpPhi" {
			preds = append(preds, inst.Block())
		}
	}
	return preds
}

func (bb *BasicBlock) checkBody(inst *Instruction) error {
	if inst.IsGlobal() {
		return Errorf("%s is a global instruction", inst.op)
	}
	return nil
}

// AppendInst inserts an instruction at the end of the basic block.
func (bb *BasicBlock) AppendInst(inst *Instruction) error {
	if err := bb.checkBody(inst); err != nil {
		return err
	}
	bb.insts = append(bb.insts, inst)
	inst.parent = bb
	inst.function = bb.function
	addUseToId(inst)
	return nil
}

// PrependInst inserts an instruction at the top of the basic block.
func (bb *BasicBlock) PrependInst(inst *Instruction) error {
	if err := bb.checkBody(inst); err != nil {
		return err
	}
	bb.insts = append([]*Instruction{inst}, bb.insts...)
	inst.parent = bb
	inst.function = bb.function
	addUseToId(inst)
	return nil
}

func (bb *BasicBlock) insertInstAfter(inst, pos *Instruction) error {
	return bb.insertAt(inst, pos, 1)
}

func (bb *BasicBlock) insertInstBefore(inst, pos *Instruction) error {
	return bb.insertAt(inst, pos, 0)
}

func (bb *BasicBlock) insertAt(inst, pos *Instruction, offset int) error {
	if err := bb.checkBody(inst); err != nil {
		return err
	}
	for i, cur := range bb.insts {
		if cur == pos {
			idx := i + offset
			bb.insts = append(bb.insts, nil)
			copy(bb.insts[idx+1:], bb.insts[idx:])
			bb.insts[idx] = inst
			inst.parent = bb
			inst.function = bb.function
			addUseToId(inst)
			return nil
		}
	}
	return Errorf("instruction is not in the basic block")
}

func (bb *BasicBlock) removeInst(inst *Instruction) {
	if inst == bb.inst {
		// The label is owned by the block and only goes away with it.
		inst.parent = nil
		return
	}
	removeUseFromId(inst)
	for i, cur := range bb.insts {
		if cur == inst {
			bb.insts = append(bb.insts[:i], bb.insts[i+1:]...)
			break
		}
	}
	inst.parent = nil
	inst.function = nil
}

// InsertAfter inserts the block into pos's function, after pos.
func (bb *BasicBlock) InsertAfter(pos *BasicBlock) error {
	if pos.function == nil {
		return Errorf("basic block is not in a function")
	}
	return pos.function.InsertBasicBlockAfter(bb, pos)
}

// InsertBefore inserts the block into pos's function, before pos.
func (bb *BasicBlock) InsertBefore(pos *BasicBlock) error {
	if pos.function == nil {
		return Errorf("basic block is not in a function")
	}
	return pos.function.InsertBasicBlockBefore(bb, pos)
}

// Remove detaches the basic block from its function.
func (bb *BasicBlock) Remove() error {
	if bb.function == nil {
		return Errorf("basic block is not in function")
	}
	blocks := bb.function.blocks
	for i, cur := range blocks {
		if cur == bb {
			bb.function.blocks = append(blocks[:i], blocks[i+1:]...)
			break
		}
	}
	bb.function = nil
	bb.inst.function = nil
	for _, inst := range bb.insts {
		inst.function = nil
	}
	return nil
}

// Destroy removes the block from its function, unhooks the block's phi
// entries in users, then destroys every body instruction in reverse
// order. The block must not be used afterwards.
func (bb *BasicBlock) Destroy() error {
	if err := bb.Remove(); err != nil {
		return err
	}
	for _, inst := range bb.inst.Uses() {
		if inst.op == "OpPhi" {
			inst.RemoveFromPhi(bb.inst.resultID)
		}
	}
	insts := make([]*Instruction, len(bb.insts))
	copy(insts, bb.insts)
	for i := len(insts) - 1; i >= 0; i-- {
		insts[i].Destroy()
	}
	bb.module = nil
	bb.insts = nil
	return nil
}
