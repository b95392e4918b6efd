// Package ssa wraps github.com/llir/llvm's ir/types/constant/enum packages
// (the host SSA-IR builder named abstractly in spec.md §1/§6) behind the
// exact operation set spec.md §6 lists, so internal/lower never imports
// llir/llvm directly.
package ssa

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// Builder owns the module being constructed: the single "main" entry
// function (spec §4.5) plus the external getchar/putchar/memset
// declarations it links against.
type Builder struct {
	Module   *ir.Module
	Main     *ir.Func
	getchar  *ir.Func
	putchar  *ir.Func
	memset   *ir.Func
	tapeType *types.ArrayType
}

// Cursor is "the current builder" for one basic-block lineage (spec §4.5's
// builder stack): a block plus enough context to keep emitting typed
// pointer arithmetic into it.
type Cursor struct {
	b     *Builder
	Block *ir.Block
}

// Phi wraps an in-progress phi node so a caller can add incoming edges
// after creating successor blocks, per the loop-lowering discipline in
// spec §4.5 steps 3-7.
type Phi struct {
	inst *ir.InstPhi
}

// NewModule creates a module with a void-returning "main" function under C
// calling convention, declares getchar/putchar/memset, and builds main's
// entry block: a tapeSize-cell stack allocation, zeroed via a call to the
// memset intrinsic, holding the initial tape pointer (spec §4.5, "Entry
// function").
func NewModule(tapeSize int) (*Builder, *Cursor, value.Value) {
	m := ir.NewModule()

	getchar := m.NewFunc("getchar", types.I8)
	getchar.CallingConv = enum.CallingConvC

	putchar := m.NewFunc("putchar", types.Void, ir.NewParam("c", types.I8))
	putchar.CallingConv = enum.CallingConvC

	i8ptr := types.NewPointer(types.I8)
	memset := m.NewFunc("llvm.memset.p0i8.i64", types.Void,
		ir.NewParam("dst", i8ptr),
		ir.NewParam("val", types.I8),
		ir.NewParam("len", types.I64),
		ir.NewParam("isvolatile", types.I1),
	)

	main := m.NewFunc("main", types.Void)
	main.CallingConv = enum.CallingConvC

	b := &Builder{
		Module:   m,
		Main:     main,
		getchar:  getchar,
		putchar:  putchar,
		memset:   memset,
		tapeType: types.NewArray(uint64(tapeSize), types.I8),
	}

	entry := b.NewBlock("entry")
	alloca := entry.Block.NewAlloca(b.tapeType)
	zero64 := constant.NewInt(types.I64, 0)
	base := entry.Block.NewGetElementPtr(b.tapeType, alloca, zero64, zero64)

	entry.Block.NewCall(memset, base,
		constant.NewInt(types.I8, 0),
		constant.NewInt(types.I64, int64(tapeSize)),
		constant.NewBool(false),
	)

	return b, entry, base
}

// NewBlock creates a fresh basic block in main.
func (b *Builder) NewBlock(name string) *Cursor {
	return &Cursor{b: b, Block: b.Main.NewBlock(name)}
}

// ConstCell builds an i8 constant, wrapping k into the 0-255 range the way
// an 8-bit cell would (spec §3, "unsigned 8-bit with wrap-around").
func (b *Builder) ConstCell(k int32) value.Value {
	return constant.NewInt(types.I8, int64(uint8(k)))
}

// ConstOffset builds an i32 constant for use as a pointer-index operand.
func (b *Builder) ConstOffset(k int32) value.Value {
	return constant.NewInt(types.I32, int64(k))
}

// PtrIndex computes p+k as a new SSA pointer value via a constant-offset
// pointer-index (GEP) instruction (spec §4.5: "pointer motion is
// compile-time arithmetic on the SSA value, emitted as a pointer-index
// instruction").
func (c *Cursor) PtrIndex(p value.Value, k int32) value.Value {
	return c.Block.NewGetElementPtr(types.I8, p, c.b.ConstOffset(k))
}

// Load reads the i8 cell at p.
func (c *Cursor) Load(p value.Value) value.Value {
	return c.Block.NewLoad(types.I8, p)
}

// Store writes val to the i8 cell at p.
func (c *Cursor) Store(val, p value.Value) {
	c.Block.NewStore(val, p)
}

// Add emits an 8-bit add; LLVM integer arithmetic wraps, matching spec
// §3's cell semantics without any explicit masking.
func (c *Cursor) Add(x, y value.Value) value.Value {
	return c.Block.NewAdd(x, y)
}

// Mul emits an 8-bit multiply.
func (c *Cursor) Mul(x, y value.Value) value.Value {
	return c.Block.NewMul(x, y)
}

// NonZero emits an i1 "v != 0" comparison, used for the loop condition
// test (spec §4.5 step 2/6).
func (c *Cursor) NonZero(v value.Value) value.Value {
	return c.Block.NewICmp(enum.IPredNE, v, c.b.ConstCell(0))
}

// CondBr terminates the current block with a conditional branch.
func (c *Cursor) CondBr(cond value.Value, whenTrue, whenFalse *Cursor) {
	c.Block.NewCondBr(cond, whenTrue.Block, whenFalse.Block)
}

// Br terminates the current block with an unconditional branch.
func (c *Cursor) Br(target *Cursor) {
	c.Block.NewBr(target.Block)
}

// NewPhi starts a pointer-typed phi node at the head of c's block with a
// single incoming edge, per spec §4.5 steps 3-4.
func (c *Cursor) NewPhi(val value.Value, from *Cursor) *Phi {
	inst := c.Block.NewPhi(ir.NewIncoming(val, from.Block))
	return &Phi{inst: inst}
}

// AddIncoming appends a back-edge incoming value to the phi, per spec §4.5
// step 7.
func (p *Phi) AddIncoming(val value.Value, from *Cursor) {
	p.inst.Incs = append(p.inst.Incs, ir.NewIncoming(val, from.Block))
}

// Value returns the phi's SSA value for use as the current pointer.
func (p *Phi) Value() value.Value {
	return p.inst
}

// GetChar emits a call to the external getchar().
func (c *Cursor) GetChar() value.Value {
	return c.Block.NewCall(c.b.getchar)
}

// PutChar emits a call to the external putchar(v).
func (c *Cursor) PutChar(v value.Value) {
	c.Block.NewCall(c.b.putchar, v)
}

// Ret terminates the current block with a void return (spec §4.5,
// "Return").
func (c *Cursor) Ret() {
	c.Block.NewRet(nil)
}

// String renders the module as textual LLVM IR — the -o delivery mode,
// directly off llir/llvm's own printer (spec.md §6).
func (b *Builder) String() string {
	return b.Module.String()
}
