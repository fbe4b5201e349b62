// Package passes implements the optimization passes over the IR: dead
// instruction elimination, dead function elimination, memory-to-register
// promotion, control flow simplification, instruction combining, and
// constant propagation.
package passes

import (
	"github.com/tliron/commonlog"

	"spirv/internal/ir"
)

var log = commonlog.GetLogger("spirv.passes")

// Optimize runs the basic optimization sequence on the module. The
// cleanup passes run twice, before and after mem2reg, so mem2reg benefits
// from the prior cleanup and its own output is cleaned in turn.
func Optimize(m *ir.Module) error {
	sequence := []struct {
		name string
		run  func(*ir.Module) error
	}{
		{"instcombine", InstCombine},
		{"simplify_cfg", SimplifyCFG},
		{"dead_inst_elim", DeadInstElim},
		{"dead_func_elim", DeadFuncElim},
		{"mem2reg", Mem2Reg},
		{"instcombine", InstCombine},
		{"simplify_cfg", SimplifyCFG},
		{"dead_inst_elim", DeadInstElim},
		{"dead_func_elim", DeadFuncElim},
	}
	for _, pass := range sequence {
		log.Debugf("running %s", pass.name)
		if err := pass.run(m); err != nil {
			return err
		}
	}
	return nil
}
