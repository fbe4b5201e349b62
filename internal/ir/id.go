package ir

import (
	"fmt"
	"sync/atomic"
)

// tempIdCounter is shared by all modules so temporary values stay unique
// for the lifetime of the process. Only renumbering turns a temporary id
// into a concrete one.
var tempIdCounter atomic.Uint64

// Id is a value identifier. Concrete ids carry the numeric value used in
// the binary encoding; temporary ids carry a synthetic value that must be
// renumbered before serialization. Ids are identity objects: two Id
// structs with the same value are still distinct identifiers.
type Id struct {
	value  uint64
	isTemp bool
	inst   *Instruction
	uses   []*Instruction
}

// Value returns the numeric value of a concrete id.
func (id *Id) Value() uint32 {
	return uint32(id.value)
}

// IsTemp reports whether the id is temporary.
func (id *Id) IsTemp() bool {
	return id.isTemp
}

// Inst returns the instruction defining this id, or nil.
func (id *Id) Inst() *Instruction {
	return id.inst
}

func (id *Id) String() string {
	if id.isTemp {
		return fmt.Sprintf("%%.%d", id.value)
	}
	return fmt.Sprintf("%%%d", id.value)
}

// addUse records inst as a user. The use set is insertion ordered and
// stores each instruction once, no matter how many operands reference
// the id.
func (id *Id) addUse(inst *Instruction) {
	for _, use := range id.uses {
		if use == inst {
			return
		}
	}
	id.uses = append(id.uses, inst)
}

func (id *Id) removeUse(inst *Instruction) {
	for i, use := range id.uses {
		if use == inst {
			id.uses = append(id.uses[:i], id.uses[i+1:]...)
			return
		}
	}
}

// Uses returns a snapshot of every instruction referencing this id via
// its type id or operands, including debug and decoration instructions.
func (id *Id) Uses() []*Instruction {
	uses := make([]*Instruction, len(id.uses))
	copy(uses, id.uses)
	return uses
}

// HasUses reports whether any instruction references this id.
func (id *Id) HasUses() bool {
	return len(id.uses) > 0
}
