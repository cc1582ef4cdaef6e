package ir

import (
	"fmt"
	"strings"
)

// Printer renders a Module in the textual IR format specified for golden
// files and diagnostics: one instruction per indented line, e.g.
// `$3 = add $1, 5`, `store $0, 10`, `jmp '2`, `cond $4, '3, '4`, and
// `$5 = phi { '1: $2, '2: 0 }`, with block headers of the form `'0:`.
// Grounded on the indent/writeLine helper shape of the teacher's own IR
// printer, retargeted to this format.
type Printer struct {
	indent int
	output strings.Builder
}

// NewPrinter returns an empty Printer.
func NewPrinter() *Printer {
	return &Printer{}
}

// Print renders an entire module.
func Print(module *Module) string {
	p := NewPrinter()
	for i, name := range module.SortedFunctionNames() {
		if i > 0 {
			p.writeLine("")
		}
		p.printFunction(module.Functions[name])
	}
	return p.output.String()
}

// PrintFunction renders a single function, for tests that only need one
// function's output.
func PrintFunction(f *Function) string {
	p := NewPrinter()
	p.printFunction(f)
	return p.output.String()
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("\t")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printFunction(f *Function) {
	p.writeLine("func %s:", f.Name)
	for _, id := range f.SortedBlockIDs() {
		p.printBlock(id, f.Blocks[id])
	}
}

func (p *Printer) printBlock(id BlockId, block *Block) {
	p.writeLine("%s:", id)
	p.indent++
	for _, inst := range block.Instructions {
		p.writeLine("%s", InstructionText(inst))
	}
	p.indent--
}

// InstructionText renders a single instruction in the textual IR format.
func InstructionText(inst Instruction) string {
	switch i := inst.(type) {
	case Alloca:
		return fmt.Sprintf("%s = alloca", i.Dest)
	case Store:
		return fmt.Sprintf("store %s, %s", i.Address, i.Value)
	case Load:
		return fmt.Sprintf("%s = load %s", i.Dest, i.Address)
	case Bin:
		return fmt.Sprintf("%s = %s %s, %s", i.Dest, i.Op, i.LHS, i.RHS)
	case Un:
		return fmt.Sprintf("%s = %s %s", i.Dest, i.Op, i.Src)
	case Phi:
		return fmt.Sprintf("%s = phi %s", i.Dest, formatIncoming(i.Incoming))
	case Jmp:
		return fmt.Sprintf("jmp %s", i.Target)
	case Cond:
		return fmt.Sprintf("cond %s, %s, %s", i.Pred, i.Then, i.Else)
	case Ret:
		return fmt.Sprintf("ret %s", i.Value)
	default:
		return fmt.Sprintf("<unknown instruction %T>", inst)
	}
}

func formatIncoming(incoming map[BlockId]Operand) string {
	preds := make([]BlockId, 0, len(incoming))
	for p := range incoming {
		preds = append(preds, p)
	}
	// ascending BlockId for deterministic, byte-reproducible output
	for i := 1; i < len(preds); i++ {
		for j := i; j > 0 && preds[j-1] > preds[j]; j-- {
			preds[j-1], preds[j] = preds[j], preds[j-1]
		}
	}
	parts := make([]string, len(preds))
	for i, pred := range preds {
		parts[i] = fmt.Sprintf("%s: %s", pred, incoming[pred])
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}
