package passes

import (
	"spirv/internal/ir"
)

// DeadInstElim removes unused instructions: instructions whose result id
// has no non-debug, non-decoration use, and that have no side effects.
func DeadInstElim(m *ir.Module) error {
	sweepDebugAndDecorations(m)

	// Walk all instructions in reverse so uses are removed before their
	// definitions. Destroying an OpPhi may make an instruction dead that
	// the reverse walk has already passed (the phi's value operand can
	// live in a block processed earlier this round), so the sweep is
	// repeated until it reaches a fixed point. Each round strictly
	// reduces the instruction count, so this terminates.
	for {
		destroyedPhi := false
		for _, inst := range m.InstructionsReversed() {
			if inst.Destroyed() || inst.IsDetached() {
				continue
			}
			if !inst.HasSideEffects() && len(inst.Uses()) == 0 {
				if inst.Op() == "OpPhi" {
					destroyedPhi = true
				}
				inst.Destroy()
			}
		}
		if !destroyedPhi {
			return nil
		}
	}
}

// sweepDebugAndDecorations garbage collects debug and decoration
// instructions whose target was already removed. This runs before the
// main sweep because these instructions have no result id of their own,
// and the debug buckets come in the wrong order with regard to the
// instructions they reference. Debug and decoration instructions that
// are live at this point are destroyed together with their target.
func sweepDebugAndDecorations(m *ir.Module) {
	globals := m.Globals()
	debug := make([]*ir.Instruction, 0, len(globals.Strings())+len(globals.Names()))
	debug = append(debug, globals.Strings()...)
	debug = append(debug, globals.Names()...)
	for _, inst := range debug {
		if inst.Destroyed() || inst.Op() == "OpString" {
			continue
		}
		if targetGone(inst) {
			inst.Destroy()
		}
	}
	decorations := make([]*ir.Instruction, len(globals.Decorations()))
	copy(decorations, globals.Decorations())
	for i := len(decorations) - 1; i >= 0; i-- {
		inst := decorations[i]
		if inst.Destroyed() || inst.Op() == "OpDecorationGroup" {
			continue
		}
		if targetGone(inst) {
			inst.Destroy()
		}
	}
}

// targetGone reports whether the instruction's first operand references
// an id with no defining instruction.
func targetGone(inst *ir.Instruction) bool {
	if len(inst.Operands()) == 0 {
		return false
	}
	id, ok := inst.Operands()[0].(*ir.Id)
	return ok && id.Inst() == nil
}
