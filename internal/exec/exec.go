// Package exec interprets a lowered SSA module directly, in lieu of a
// native JIT/ORC backend (none is available as a plain Go dependency
// anywhere in the corpus this compiler is grounded on — see SPEC_FULL.md
// §6). It walks github.com/llir/llvm/ir basic blocks and instructions with
// the same fetch-decode-execute shape as a CPU interpreter: one small
// register file, one dispatch per instruction kind.
package exec

import (
	"bufio"
	"fmt"
	"io"

	"github.com/brainfork/bfjit/internal/diag"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// machine holds interpreter state for one run of "main".
type machine struct {
	tape []byte
	ints map[value.Value]uint8 // non-pointer SSA results (i1 and i8)
	ptrs map[value.Value]int   // pointer SSA results, as an offset into tape

	from *ir.Block // predecessor the current block was entered from, for phis

	in  *bufio.Reader
	out *bufio.Writer
}

// Run interprets module's "main" function end to end, reading getchar()
// from stdin and writing putchar() to stdout.
func Run(module *ir.Module, stdin io.Reader, stdout io.Writer) error {
	var main, getchar, putchar, memset *ir.Func
	for _, f := range module.Funcs {
		switch f.Name() {
		case "main":
			main = f
		case "getchar":
			getchar = f
		case "putchar":
			putchar = f
		case "llvm.memset.p0i8.i64":
			memset = f
		}
	}
	if main == nil || len(main.Blocks) == 0 {
		return diag.Backendf(nil, "exec: module has no defined main function")
	}

	m := &machine{
		ints: make(map[value.Value]uint8),
		ptrs: make(map[value.Value]int),
		in:   bufio.NewReader(stdin),
		out:  bufio.NewWriter(stdout),
	}
	defer m.out.Flush()

	blk := main.Blocks[0]
	for blk != nil {
		next, err := m.runBlock(blk, getchar, putchar, memset)
		if err != nil {
			return err
		}
		m.from = blk
		blk = next
	}
	return nil
}

// runBlock executes every instruction in blk, then its terminator, and
// returns the successor block (nil at a return).
func (m *machine) runBlock(blk *ir.Block, getchar, putchar, memset *ir.Func) (*ir.Block, error) {
	for _, inst := range blk.Insts {
		if err := m.runInst(blk, inst, getchar, putchar, memset); err != nil {
			return nil, err
		}
	}

	switch term := blk.Term.(type) {
	case *ir.TermRet:
		return nil, nil
	case *ir.TermBr:
		return term.Target, nil
	case *ir.TermCondBr:
		if m.asBool(term.Cond) {
			return term.TargetTrue, nil
		}
		return term.TargetFalse, nil
	default:
		return nil, diag.Backendf(nil, "exec: unsupported terminator %T", blk.Term)
	}
}

func (m *machine) runInst(blk *ir.Block, inst ir.Instruction, getchar, putchar, memset *ir.Func) error {
	switch in := inst.(type) {
	case *ir.InstAlloca:
		n := tapeLen(in)
		m.tape = make([]byte, n)
		m.ptrs[in] = 0

	case *ir.InstGetElementPtr:
		base := m.resolvePtr(in.Src)
		off := 0
		// Two-index form decays the array to its first element (both
		// indices constant 0); single-index form is p+k (spec §4.5).
		if len(in.Indices) == 2 {
			off = base + int(asConstInt(in.Indices[1]))
		} else {
			off = base + int(asConstInt(in.Indices[0]))
		}
		m.ptrs[in] = off

	case *ir.InstLoad:
		off := m.resolvePtr(in.Src)
		m.ints[in] = m.tape[off]

	case *ir.InstStore:
		off := m.resolvePtr(in.Dst)
		m.tape[off] = m.asByte(in.Src)

	case *ir.InstAdd:
		m.ints[in] = m.asByte(in.X) + m.asByte(in.Y)

	case *ir.InstMul:
		m.ints[in] = m.asByte(in.X) * m.asByte(in.Y)

	case *ir.InstICmp:
		if in.Pred != enum.IPredNE {
			return diag.Backendf(nil, "exec: unsupported icmp predicate %v", in.Pred)
		}
		if m.asByte(in.X) != m.asByte(in.Y) {
			m.ints[in] = 1
		} else {
			m.ints[in] = 0
		}

	case *ir.InstPhi:
		// Every phi this compiler emits is pointer-typed (spec §4.5): it
		// threads the current data pointer through a loop.
		for _, inc := range in.Incs {
			if inc.Pred == m.from {
				m.ptrs[in] = m.resolvePtr(inc.X)
				return nil
			}
		}
		return diag.Backendf(nil, "exec: phi has no incoming edge from predecessor")

	case *ir.InstCall:
		return m.runCall(in, getchar, putchar, memset)

	default:
		return diag.Backendf(nil, "exec: unsupported instruction %T", inst)
	}
	return nil
}

func (m *machine) runCall(call *ir.InstCall, getchar, putchar, memset *ir.Func) error {
	switch call.Callee {
	case getchar:
		b, err := m.in.ReadByte()
		if err != nil {
			b = 0 // EOF reads as zero; spec.md leaves stream exhaustion unspecified.
		}
		m.ints[call] = b

	case putchar:
		if err := m.out.WriteByte(m.asByte(call.Args[0])); err != nil {
			return diag.Backendf(err, "exec: putchar write failed")
		}

	case memset:
		dst := m.resolvePtr(call.Args[0])
		val := m.asByte(call.Args[1])
		n := int(asConstInt(call.Args[2]))
		for i := 0; i < n; i++ {
			m.tape[dst+i] = val
		}

	default:
		return diag.Backendf(nil, "exec: call to unrecognized function %v", call.Callee)
	}
	return nil
}

// resolvePtr looks up the tape offset a pointer SSA value denotes.
func (m *machine) resolvePtr(v value.Value) int {
	return m.ptrs[v]
}

// asByte evaluates v (a constant or a previously-executed instruction) as
// an 8-bit cell value.
func (m *machine) asByte(v value.Value) uint8 {
	if c, ok := v.(*constant.Int); ok {
		return uint8(c.X.Int64())
	}
	return m.ints[v]
}

// asBool evaluates v as the i1 result of a NonZero comparison.
func (m *machine) asBool(v value.Value) bool {
	return m.asByte(v) != 0
}

// asConstInt extracts an int64 from a constant.Int index/length operand;
// every such operand in this compiler's own lowering is always constant.
func asConstInt(v value.Value) int64 {
	c, ok := v.(*constant.Int)
	if !ok {
		panic(fmt.Sprintf("exec: expected constant operand, got %T", v))
	}
	return c.X.Int64()
}

// tapeLen recovers the element count of an alloca's array type.
func tapeLen(a *ir.InstAlloca) int {
	arr := a.ElemType.(*types.ArrayType)
	return int(arr.Len)
}
