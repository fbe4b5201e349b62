package passes

import (
	"spirv/internal/ir"
)

// DeadFuncElim removes functions that are not reachable from any
// OpEntryPoint through OpFunctionCall.
func DeadFuncElim(m *ir.Module) error {
	idToFunc := map[*ir.Id]*ir.Function{}
	for _, f := range m.Functions() {
		idToFunc[f.Inst().ResultID()] = f
	}

	reachable := map[*ir.Function]bool{}
	for _, inst := range m.Globals().EntryPoints() {
		entry, ok := idToFunc[inst.IdOperand(1)]
		if !ok {
			return ir.Errorf("entry point %s is not a function",
				inst.Operands()[1].(*ir.Id))
		}
		markReachable(entry, reachable, idToFunc)
	}

	functions := make([]*ir.Function, len(m.Functions()))
	copy(functions, m.Functions())
	for _, f := range functions {
		if !reachable[f] {
			if err := f.Destroy(); err != nil {
				return err
			}
		}
	}
	return nil
}

// markReachable recursively marks functions reachable from f.
func markReachable(f *ir.Function, reachable map[*ir.Function]bool, idToFunc map[*ir.Id]*ir.Function) {
	reachable[f] = true
	for _, inst := range f.Instructions() {
		if inst.Op() != "OpFunctionCall" {
			continue
		}
		if callee, ok := idToFunc[inst.IdOperand(0)]; ok && !reachable[callee] {
			markReachable(callee, reachable, idToFunc)
		}
	}
}
