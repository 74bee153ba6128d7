package codegen

import (
	"bytes"
	"fmt"
	"strings"

	"modernc.org/libqbe"

	"github.com/hdc-lang/hdc/pkg/config"
	"github.com/hdc-lang/hdc/pkg/ir"
)

// qbeEmitter renders a module as QBE SSA text.
type qbeEmitter struct {
	out      strings.Builder
	wordSize int
}

// EmitText renders the whole module as QBE SSA.
func EmitText(mod *ir.Module) string {
	e := &qbeEmitter{wordSize: mod.WordSize}
	for _, fn := range mod.Funcs {
		e.emitFunc(fn)
	}
	return e.out.String()
}

// EmitNative lowers the module all the way to target assembly through the
// embedded QBE backend.
func EmitNative(cfg *config.Config, mod *ir.Module) ([]byte, error) {
	ssa := EmitText(mod)
	var asmBuf bytes.Buffer
	if err := libqbe.Main(cfg.QbeTarget, "input.ssa", strings.NewReader(ssa), &asmBuf, nil); err != nil {
		return nil, fmt.Errorf("qbe backend failed: %w\ngenerated SSA:\n%s", err, ssa)
	}
	return asmBuf.Bytes(), nil
}

func (e *qbeEmitter) emitFunc(fn *ir.Func) {
	retTypeStr := e.formatType(fn.ReturnType)
	if retTypeStr != "" {
		retTypeStr = " " + retTypeStr
	}
	fmt.Fprintf(&e.out, "export function%s $%s(", retTypeStr, fn.Name)
	for i, p := range fn.Params {
		fmt.Fprintf(&e.out, "%s %s", e.formatType(p.Typ), e.formatValue(p.Val))
		if i < len(fn.Params)-1 {
			e.out.WriteString(", ")
		}
	}
	e.out.WriteString(") {\n")
	for _, block := range fn.Blocks {
		e.emitBlock(block)
	}
	e.out.WriteString("}\n")
}

func (e *qbeEmitter) emitBlock(block *ir.BasicBlock) {
	fmt.Fprintf(&e.out, "@%s\n", block.Label)
	for _, instr := range block.Instructions {
		e.emitInstr(instr)
	}
}

func (e *qbeEmitter) emitInstr(instr *ir.Instruction) {
	e.out.WriteString("\t")
	if instr.Result != nil {
		resultType := instr.Typ
		if instr.Op == ir.OpAlloc {
			resultType = ir.TypePtr
		}
		fmt.Fprintf(&e.out, "%s =%s ", e.formatValue(instr.Result), e.formatType(resultType))
	}
	e.out.WriteString(e.formatOp(instr))
	for i, arg := range instr.Args {
		e.out.WriteString(" ")
		e.out.WriteString(e.formatValue(arg))
		if i < len(instr.Args)-1 {
			e.out.WriteString(",")
		}
	}
	e.out.WriteString("\n")
}

func (e *qbeEmitter) formatOp(instr *ir.Instruction) string {
	switch instr.Op {
	case ir.OpAlloc:
		if instr.Align <= 4 {
			return fmt.Sprintf("alloc4 %d", instr.Align)
		}
		if instr.Align <= 8 {
			return fmt.Sprintf("alloc8 %d", instr.Align)
		}
		return fmt.Sprintf("alloc16 %d", instr.Align)
	case ir.OpLoad:
		return "load" + e.formatType(instr.Typ)
	case ir.OpStore:
		return "store" + e.formatType(instr.Typ)
	case ir.OpAdd, ir.OpAddF:
		return "add"
	case ir.OpSub, ir.OpSubF:
		return "sub"
	case ir.OpMul, ir.OpMulF:
		return "mul"
	case ir.OpDiv, ir.OpDivF:
		return "div"
	case ir.OpNegF:
		return "neg"
	case ir.OpRet:
		return "ret"
	}
	return ""
}

func (e *qbeEmitter) formatValue(v ir.Value) string {
	switch val := v.(type) {
	case ir.Const:
		return fmt.Sprintf("%d", val.Value)
	case ir.FloatConst:
		return fmt.Sprintf("%s_%f", e.formatType(val.Typ), val.Value)
	case ir.Global:
		return "$" + val.Name
	case ir.Temporary:
		return val.String()
	case ir.Label:
		return "@" + val.Name
	}
	return ""
}

func (e *qbeEmitter) formatType(t ir.Type) string {
	switch t {
	case ir.TypeW:
		return "w"
	case ir.TypeL:
		return "l"
	case ir.TypeS:
		return "s"
	case ir.TypeD:
		return "d"
	case ir.TypePtr:
		if e.wordSize == 4 {
			return "w"
		}
		return "l"
	}
	return ""
}
