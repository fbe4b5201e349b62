package passes

import (
	"spirv/internal/ir"
)

// SimplifyCFG performs dead code elimination and basic block merging:
//
//   - rewrites conditional branches and switches with a known target to
//     unconditional branches,
//   - removes basic blocks that are unreachable from the entry block,
//   - merges a basic block into its predecessor when it is the only
//     successor and not a structured merge target,
//   - replaces phi nodes whose incoming values all agree.
func SimplifyCFG(m *ir.Module) error {
	if err := removeConstantCondBranches(m); err != nil {
		return err
	}
	if err := removeUnreachableBlocks(m); err != nil {
		return err
	}
	if err := mergeBasicBlocks(m); err != nil {
		return err
	}
	collapsePhiNodes(m)
	return nil
}

// rewriteTerminator changes the block's terminator to a plain branch to
// destID, destroying the structured merge instruction if the block
// carries one.
func rewriteTerminator(m *ir.Module, inst *ir.Instruction, destID *ir.Id) error {
	bb := inst.Block()
	branchInst, err := ir.NewInst(m, "OpBranch", nil, []ir.Operand{destID})
	if err != nil {
		return err
	}
	if err := inst.ReplaceWith(branchInst); err != nil {
		return err
	}
	insts := bb.Insts()
	if len(insts) >= 2 {
		op := insts[len(insts)-2].Op()
		if op == "OpSelectionMerge" || op == "OpLoopMerge" {
			insts[len(insts)-2].Destroy()
		}
	}
	return nil
}

// removeConstantCondBranches eliminates conditional branches with a
// constant or redundant condition.
func removeConstantCondBranches(m *ir.Module) error {
	for _, f := range m.Functions() {
		for _, bb := range f.BasicBlocks() {
			insts := bb.Insts()
			inst := insts[len(insts)-1]
			switch inst.Op() {
			case "OpBranchConditional":
				condInst := inst.IdOperand(0).Inst()
				thenID := inst.IdOperand(1)
				elseID := inst.IdOperand(2)
				var destID *ir.Id
				switch {
				case condInst.Op() == "OpConstantTrue":
					destID = thenID
				case condInst.Op() == "OpConstantFalse":
					destID = elseID
				case thenID == elseID:
					destID = thenID
				}
				if destID != nil {
					if err := rewriteTerminator(m, inst, destID); err != nil {
						return err
					}
				}
			case "OpSwitch":
				defaultID := inst.IdOperand(1)
				allSame := true
				targets := inst.Operands()[2:]
				for i := 1; i < len(targets); i += 2 {
					if targets[i] != ir.Operand(defaultID) {
						allSame = false
						break
					}
				}
				if allSame {
					if err := rewriteTerminator(m, inst, defaultID); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// removeUnreachableBlocks destroys basic blocks unreachable from the
// function's entry block.
func removeUnreachableBlocks(m *ir.Module) error {
	for _, f := range m.Functions() {
		if len(f.BasicBlocks()) == 0 {
			continue
		}
		reachable := map[*ir.BasicBlock]bool{}
		markBlockReachable(f.BasicBlocks()[0], reachable)
		blocks := make([]*ir.BasicBlock, len(f.BasicBlocks()))
		copy(blocks, f.BasicBlocks())
		for _, bb := range blocks {
			if !reachable[bb] {
				if err := bb.Destroy(); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func markBlockReachable(bb *ir.BasicBlock, reachable map[*ir.BasicBlock]bool) {
	if reachable[bb] {
		return
	}
	reachable[bb] = true
	for _, successor := range bb.GetSuccessors() {
		markBlockReachable(successor, reachable)
	}
}

// mergeTargets returns the blocks named by structured merge
// instructions. Both the merge target and OpLoopMerge's continue target
// must remain distinct blocks.
func mergeTargets(m *ir.Module) map[*ir.BasicBlock]bool {
	targets := map[*ir.BasicBlock]bool{}
	for _, f := range m.Functions() {
		for _, bb := range f.BasicBlocks() {
			insts := bb.Insts()
			if len(insts) < 2 {
				continue
			}
			mergeInst := insts[len(insts)-2]
			switch mergeInst.Op() {
			case "OpSelectionMerge":
				targets[mergeInst.IdOperand(0).Inst().Block()] = true
			case "OpLoopMerge":
				targets[mergeInst.IdOperand(0).Inst().Block()] = true
				targets[mergeInst.IdOperand(1).Inst().Block()] = true
			}
		}
	}
	return targets
}

// mergeBasicBlocks merges a basic block into its predecessor when it has
// exactly one, it is not a merge target, and the predecessor ends with a
// plain branch to it.
func mergeBasicBlocks(m *ir.Module) error {
	targets := mergeTargets(m)
	for _, f := range m.Functions() {
		blocks := make([]*ir.BasicBlock, len(f.BasicBlocks()))
		copy(blocks, f.BasicBlocks())
		for i := len(blocks) - 1; i >= 1; i-- {
			bb := blocks[i]
			preds := bb.Predecessors()
			if len(preds) != 1 || targets[bb] {
				continue
			}
			predBB := preds[0]
			if predBB == bb {
				continue
			}
			predInsts := predBB.Insts()
			if predInsts[len(predInsts)-1].Op() != "OpBranch" {
				continue
			}
			predInsts[len(predInsts)-1].Destroy()
			insts := make([]*ir.Instruction, len(bb.Insts()))
			copy(insts, bb.Insts())
			for _, inst := range insts {
				if err := inst.Remove(); err != nil {
					return err
				}
				if err := predBB.AppendInst(inst); err != nil {
					return err
				}
			}
			// Phi nodes naming the dead block as parent now get their
			// values from the predecessor.
			bb.Inst().ReplaceUsesWith(predBB.Inst())
			if err := bb.Destroy(); err != nil {
				return err
			}
		}
	}
	return nil
}

// collapsePhiNodes replaces the uses of phi nodes whose incoming values
// all name the same value. The dead phi is left for dead_inst_elim.
func collapsePhiNodes(m *ir.Module) {
	for _, f := range m.Functions() {
		for _, bb := range f.BasicBlocks() {
			for _, inst := range bb.Insts() {
				if inst.Op() != "OpPhi" {
					break
				}
				operands := inst.Operands()
				if len(operands) < 2 {
					continue
				}
				valueID := inst.IdOperand(0)
				same := true
				for i := 2; i < len(operands); i += 2 {
					if operands[i] != ir.Operand(valueID) {
						same = false
						break
					}
				}
				if same && valueID.Inst() != nil {
					inst.ReplaceUsesWith(valueID.Inst())
				}
			}
		}
	}
}
