package passes

import (
	"spirv/internal/ir"
)

// Mem2Reg promotes function-scope OpVariables that are only accessed by
// OpLoad and OpStore to registers.
//
// The implementation naively inserts an OpPhi instruction at each join
// point and promotes the loads and stores as it walks the function. It
// tends to leave dead OpPhi instructions behind, so dead_inst_elim
// should be run after.
func Mem2Reg(m *ir.Module) error {
	for _, f := range m.Functions() {
		if err := mem2regFunction(m, f); err != nil {
			return err
		}
	}
	return nil
}

func mem2regFunction(m *ir.Module, f *ir.Function) error {
	if len(f.BasicBlocks()) == 0 {
		return nil
	}
	entry := f.BasicBlocks()[0]
	insts := make([]*ir.Instruction, len(entry.Insts()))
	copy(insts, entry.Insts())
	for _, inst := range insts {
		// The variables must be declared at the top of the entry block;
		// the first non-OpVariable instruction ends the walk.
		if inst.Op() != "OpVariable" {
			break
		}
		if err := promoteVariable(m, f, inst); err != nil {
			return err
		}
	}
	return nil
}

// calculatePredecessors returns the predecessor list for every basic
// block, in block order.
func calculatePredecessors(f *ir.Function) map[*ir.BasicBlock][]*ir.BasicBlock {
	pred := map[*ir.BasicBlock][]*ir.BasicBlock{}
	for _, bb := range f.BasicBlocks() {
		for _, successor := range bb.GetSuccessors() {
			if !containsBlock(pred[successor], bb) {
				pred[successor] = append(pred[successor], bb)
			}
		}
	}
	return pred
}

func containsBlock(blocks []*ir.BasicBlock, bb *ir.BasicBlock) bool {
	for _, cur := range blocks {
		if cur == bb {
			return true
		}
	}
	return false
}

// promoteVariable eliminates the variable's loads and stores if possible.
func promoteVariable(m *ir.Module, f *ir.Function, varInst *ir.Instruction) error {
	if !varInst.ResultID().HasUses() {
		varInst.Destroy()
		return nil
	}

	// Only simple loads and stores are handled; anything else means the
	// address escapes.
	varID := varInst.ResultID()
	for _, use := range varInst.Uses() {
		switch use.Op() {
		case "OpLoad":
		case "OpStore":
			if use.IdOperand(0) != varID || use.Operands()[1] == ir.Operand(varID) {
				return nil
			}
		default:
			return nil
		}
	}

	pred := calculatePredecessors(f)
	exitValue := map[*ir.BasicBlock]*ir.Instruction{}
	var phiNodes []*ir.Instruction
	var undefInsts []*ir.Instruction
	varTypeID := varInst.TypeID().Inst().IdOperand(1)

	for _, bb := range f.BasicBlocks() {
		// The variable's value at the start of the basic block.
		var stored *ir.Instruction
		switch len(pred[bb]) {
		case 0:
		case 1:
			stored = exitValue[pred[bb][0]]
		default:
			phi, err := ir.NewInst(m, "OpPhi", varTypeID, nil)
			if err != nil {
				return err
			}
			if err := bb.PrependInst(phi); err != nil {
				return err
			}
			phiNodes = append(phiNodes, phi)
			stored = phi
		}

		// Promote the loads and stores.
		var ordered []*ir.Instruction
		for _, inst := range bb.Insts() {
			for _, use := range varID.Uses() {
				if use == inst {
					ordered = append(ordered, inst)
					break
				}
			}
		}
		for _, inst := range ordered {
			switch inst.Op() {
			case "OpLoad":
				if stored == nil {
					// A read before any write; its value is undefined.
					undef, err := ir.NewInst(m, "OpUndef", inst.TypeID(), nil)
					if err != nil {
						return err
					}
					if err := undef.InsertBefore(inst); err != nil {
						return err
					}
					undefInsts = append(undefInsts, undef)
					stored = undef
				}
				inst.ReplaceUsesWith(stored)
				inst.Destroy()
			case "OpStore":
				stored = inst.IdOperand(1).Inst()
				inst.Destroy()
			}
		}

		exitValue[bb] = stored
	}

	// Patch the phi nodes with one (value, predecessor) pair per
	// predecessor.
	for _, phi := range phiNodes {
		if phi.Destroyed() {
			continue
		}
		bb := phi.Block()
		for _, predBB := range pred[bb] {
			exit := exitValue[predBB]
			if exit == nil {
				undef, err := ir.NewInst(m, "OpUndef", varTypeID, nil)
				if err != nil {
					return err
				}
				if err := insertBeforeExit(undef, predBB); err != nil {
					return err
				}
				undefInsts = append(undefInsts, undef)
				exitValue[predBB] = undef
				exit = undef
			}
			phi.AddToPhi(exit, predBB.Inst())
		}
	}

	// Destroy the obviously dead instructions this pass created.
	for i := len(phiNodes) - 1; i >= 0; i-- {
		if !phiNodes[i].Destroyed() && !phiNodes[i].ResultID().HasUses() {
			phiNodes[i].Destroy()
		}
	}
	for _, inst := range undefInsts {
		if !inst.Destroyed() && !inst.ResultID().HasUses() {
			inst.Destroy()
		}
	}
	varInst.Destroy()
	return nil
}

// insertBeforeExit inserts inst just before the block's merge
// instruction, if any, otherwise before its terminator.
func insertBeforeExit(inst *ir.Instruction, bb *ir.BasicBlock) error {
	insts := bb.Insts()
	n := len(insts)
	if n >= 2 {
		op := insts[n-2].Op()
		if op == "OpLoopMerge" || op == "OpSelectionMerge" {
			return inst.InsertBefore(insts[n-2])
		}
	}
	return inst.InsertBefore(insts[n-1])
}
