package lower

import (
	"github.com/brainfork/bfjit/internal/cir"
	"github.com/brainfork/bfjit/internal/ssa"
	"github.com/llir/llvm/ir/value"
)

// CIR lowers a (typically optimized) CIR chain to SSA IR (spec §4.5,
// "CIR-specific lowering").
func CIR(root *cir.Node, tapeSize int) *ssa.Builder {
	b, entry, ptr := ssa.NewModule(tapeSize)
	blk, _ := lowerCIRChain(root.Next, b, entry, ptr)
	blk.Ret()
	return b
}

func lowerCIRChain(n *cir.Node, b *ssa.Builder, blk *ssa.Cursor, ptr value.Value) (*ssa.Cursor, value.Value) {
	for cur := n; cur != nil; cur = cur.Next {
		switch cur.Kind {
		case cir.CPtrMov:
			ptr = blk.PtrIndex(ptr, cur.K)
		case cir.CAdd:
			p := blk.PtrIndex(ptr, cur.Off)
			v := blk.Load(p)
			blk.Store(blk.Add(v, b.ConstCell(cur.K)), p)
		case cir.CSet:
			p := blk.PtrIndex(ptr, cur.Off)
			blk.Store(b.ConstCell(cur.K), p)
		case cir.CInput:
			p := blk.PtrIndex(ptr, cur.Off)
			blk.Store(blk.GetChar(), p)
		case cir.COutput:
			p := blk.PtrIndex(ptr, cur.Off)
			blk.PutChar(blk.Load(p))
		case cir.CMul:
			opPtr := blk.PtrIndex(ptr, cur.Op)
			tgtPtr := blk.PtrIndex(ptr, cur.Tgt)
			// Read M[p+Op] before writing M[p+Tgt] even though they don't
			// currently alias (spec §9's aliasing note): a future rewrite
			// pass may introduce Op==Tgt, and this order stays correct.
			opVal := blk.Load(opPtr)
			tgtVal := blk.Load(tgtPtr)
			product := blk.Mul(opVal, b.ConstCell(cur.K))
			blk.Store(blk.Add(tgtVal, product), tgtPtr)
		case cir.CLoop:
			blk, ptr = lowerCIRLoop(cur, b, blk, ptr)
		}
	}
	return blk, ptr
}

// lowerCIRLoop implements spec §4.5's loop-lowering algorithm for a CLoop
// node; identical in shape to lowerASTLoop, differing only in which chain
// type it recurses into.
func lowerCIRLoop(loop *cir.Node, b *ssa.Builder, blk *ssa.Cursor, ptr value.Value) (*ssa.Cursor, value.Value) {
	body := b.NewBlock("body")
	post := b.NewBlock("post")

	cond := blk.NonZero(blk.Load(ptr))
	blk.CondBr(cond, body, post)

	bodyPhi := body.NewPhi(ptr, blk)
	postPhi := post.NewPhi(ptr, blk)

	bodyEnd, bodyEndPtr := lowerCIRChain(loop.Body.Next, b, body, bodyPhi.Value())

	endCond := bodyEnd.NonZero(bodyEnd.Load(bodyEndPtr))
	bodyEnd.CondBr(endCond, body, post)

	bodyPhi.AddIncoming(bodyEndPtr, bodyEnd)
	postPhi.AddIncoming(bodyEndPtr, bodyEnd)

	return post, postPhi.Value()
}
