package ir

// GlobalSection is the synthetic container for instructions living
// outside any function body. It presents the globals as a single ordered
// view but keeps them partitioned into category buckets in canonical
// emission order.
type GlobalSection struct {
	module         *Module
	capabilities   []*Instruction
	extensions     []*Instruction
	extImports     []*Instruction
	memoryModels   []*Instruction
	entryPoints    []*Instruction
	executionModes []*Instruction
	strings        []*Instruction
	names          []*Instruction
	decorations    []*Instruction
	types          []*Instruction
}

func (g *GlobalSection) String() string {
	return "global instructions pseudo-BB"
}

// bucketFor returns the bucket holding instructions of op's kind and the
// bucket's position in emission order.
func (g *GlobalSection) bucketFor(op string) (*[]*Instruction, int, error) {
	switch {
	case op == "OpCapability":
		return &g.capabilities, 0, nil
	case op == "OpExtension":
		return &g.extensions, 1, nil
	case op == "OpExtInstImport":
		return &g.extImports, 2, nil
	case op == "OpMemoryModel":
		return &g.memoryModels, 3, nil
	case op == "OpEntryPoint":
		return &g.entryPoints, 4, nil
	case op == "OpExecutionMode":
		return &g.executionModes, 5, nil
	case op == "OpString" || op == "OpSourceExtension" ||
		op == "OpSource" || op == "OpSourceContinued":
		return &g.strings, 6, nil
	case op == "OpName" || op == "OpMemberName":
		return &g.names, 7, nil
	case DecorationInstructions[op]:
		return &g.decorations, 8, nil
	case TypeDeclarationInstructions[op] || ConstantInstructions[op] ||
		SpecConstantInstructions[op] || GlobalVariableInstructions[op]:
		return &g.types, 9, nil
	}
	return nil, 0, Errorf("%s is not a valid global instruction", op)
}

// Bucket accessors, in emission order.

func (g *GlobalSection) Capabilities() []*Instruction   { return g.capabilities }
func (g *GlobalSection) Extensions() []*Instruction     { return g.extensions }
func (g *GlobalSection) ExtImports() []*Instruction     { return g.extImports }
func (g *GlobalSection) MemoryModels() []*Instruction   { return g.memoryModels }
func (g *GlobalSection) EntryPoints() []*Instruction    { return g.entryPoints }
func (g *GlobalSection) ExecutionModes() []*Instruction { return g.executionModes }
func (g *GlobalSection) Strings() []*Instruction        { return g.strings }
func (g *GlobalSection) Names() []*Instruction          { return g.names }
func (g *GlobalSection) Decorations() []*Instruction    { return g.decorations }
func (g *GlobalSection) Types() []*Instruction          { return g.types }

func (g *GlobalSection) buckets() []*[]*Instruction {
	return []*[]*Instruction{
		&g.capabilities, &g.extensions, &g.extImports, &g.memoryModels,
		&g.entryPoints, &g.executionModes, &g.strings, &g.names,
		&g.decorations, &g.types,
	}
}

// Instructions returns all global instructions in emission order, as a
// snapshot skipping already-detached instructions.
func (g *GlobalSection) Instructions() []*Instruction {
	var insts []*Instruction
	for _, bucket := range g.buckets() {
		for _, inst := range *bucket {
			if inst.parent != nil {
				insts = append(insts, inst)
			}
		}
	}
	return insts
}

// InstructionsReversed returns all global instructions in reverse
// emission order, as a snapshot.
func (g *GlobalSection) InstructionsReversed() []*Instruction {
	var insts []*Instruction
	buckets := g.buckets()
	for i := len(buckets) - 1; i >= 0; i-- {
		bucket := *buckets[i]
		for j := len(bucket) - 1; j >= 0; j-- {
			if bucket[j].parent != nil {
				insts = append(insts, bucket[j])
			}
		}
	}
	return insts
}

// GetInst returns a global instruction with the given opcode, type, and
// operands. An existing instruction is returned when one matches; a new
// one is created and appended otherwise.
func (g *GlobalSection) GetInst(op string, typeID *Id, operands []Operand) (*Instruction, error) {
	bucket, _, err := g.bucketFor(op)
	if err != nil {
		return nil, err
	}
	for _, inst := range *bucket {
		if inst.op == op && inst.typeID == typeID &&
			OperandsEqual(inst.operands, operands) {
			return inst, nil
		}
	}
	inst, err := NewInst(g.module, op, typeID, operands)
	if err != nil {
		return nil, err
	}
	if err := g.AppendInst(inst); err != nil {
		return nil, err
	}
	return inst, nil
}

// AppendInst inserts inst at the end of the global instructions of its
// kind.
func (g *GlobalSection) AppendInst(inst *Instruction) error {
	bucket, _, err := g.bucketFor(inst.op)
	if err != nil {
		return err
	}
	*bucket = append(*bucket, inst)
	inst.parent = g
	addUseToId(inst)
	return nil
}

// PrependInst inserts inst at the top of the global instructions of its
// kind.
func (g *GlobalSection) PrependInst(inst *Instruction) error {
	bucket, _, err := g.bucketFor(inst.op)
	if err != nil {
		return err
	}
	*bucket = append([]*Instruction{inst}, *bucket...)
	inst.parent = g
	addUseToId(inst)
	return nil
}

func (g *GlobalSection) insertInstAfter(inst, pos *Instruction) error {
	posBucket, posOrd, err := g.bucketFor(pos.op)
	if err != nil {
		return err
	}
	bucket, ord, err := g.bucketFor(inst.op)
	if err != nil {
		return err
	}
	if bucket == posBucket {
		for i, cur := range *bucket {
			if cur == pos {
				*bucket = append(*bucket, nil)
				copy((*bucket)[i+2:], (*bucket)[i+1:])
				(*bucket)[i+1] = inst
				inst.parent = g
				addUseToId(inst)
				return nil
			}
		}
		return Errorf("instruction is not a global instruction")
	}
	if ord > posOrd {
		return g.PrependInst(inst)
	}
	return Errorf("%s cannot be inserted after %s", inst.op, pos.op)
}

func (g *GlobalSection) insertInstBefore(inst, pos *Instruction) error {
	posBucket, posOrd, err := g.bucketFor(pos.op)
	if err != nil {
		return err
	}
	bucket, ord, err := g.bucketFor(inst.op)
	if err != nil {
		return err
	}
	if bucket == posBucket {
		for i, cur := range *bucket {
			if cur == pos {
				*bucket = append(*bucket, nil)
				copy((*bucket)[i+1:], (*bucket)[i:])
				(*bucket)[i] = inst
				inst.parent = g
				addUseToId(inst)
				return nil
			}
		}
		return Errorf("instruction is not a global instruction")
	}
	if ord < posOrd {
		return g.AppendInst(inst)
	}
	return Errorf("%s cannot be inserted before %s", inst.op, pos.op)
}

func (g *GlobalSection) removeInst(inst *Instruction) {
	removeUseFromId(inst)
	bucket, _, err := g.bucketFor(inst.op)
	if err != nil {
		return
	}
	for i, cur := range *bucket {
		if cur == inst {
			*bucket = append((*bucket)[:i], (*bucket)[i+1:]...)
			break
		}
	}
	inst.parent = nil
}
