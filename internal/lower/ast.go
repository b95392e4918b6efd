// Package lower walks the AST or CIR and emits SSA IR via internal/ssa,
// including the phi-node discipline that threads the current data-pointer
// value through loops (spec §4.5).
package lower

import (
	"github.com/brainfork/bfjit/internal/ast"
	"github.com/brainfork/bfjit/internal/ssa"
	"github.com/llir/llvm/ir/value"
)

// AST lowers an AST chain directly to SSA IR, without the CIR optimization
// pipeline (the "-O" flag's absence, spec §6).
func AST(root *ast.Node, tapeSize int) *ssa.Builder {
	b, entry, ptr := ssa.NewModule(tapeSize)
	blk, _ := lowerASTChain(root.Next, b, entry, ptr)
	blk.Ret()
	return b
}

// lowerASTChain lowers the AST chain starting at n, returning the cursor
// and pointer value in effect after the last node.
func lowerASTChain(n *ast.Node, b *ssa.Builder, blk *ssa.Cursor, ptr value.Value) (*ssa.Cursor, value.Value) {
	for cur := n; cur != nil; cur = cur.Next {
		switch cur.Kind {
		case ast.IncrPtr:
			ptr = blk.PtrIndex(ptr, 1)
		case ast.DecrPtr:
			ptr = blk.PtrIndex(ptr, -1)
		case ast.IncrData:
			v := blk.Load(ptr)
			blk.Store(blk.Add(v, b.ConstCell(1)), ptr)
		case ast.DecrData:
			v := blk.Load(ptr)
			blk.Store(blk.Add(v, b.ConstCell(-1)), ptr)
		case ast.GetInput:
			blk.Store(blk.GetChar(), ptr)
		case ast.Output:
			blk.PutChar(blk.Load(ptr))
		case ast.Loop:
			blk, ptr = lowerASTLoop(cur, b, blk, ptr)
		}
	}
	return blk, ptr
}

// lowerASTLoop implements spec §4.5's loop-lowering algorithm for an AST
// Loop node.
func lowerASTLoop(loop *ast.Node, b *ssa.Builder, blk *ssa.Cursor, ptr value.Value) (*ssa.Cursor, value.Value) {
	body := b.NewBlock("body")
	post := b.NewBlock("post")

	cond := blk.NonZero(blk.Load(ptr))
	blk.CondBr(cond, body, post)

	bodyPhi := body.NewPhi(ptr, blk)
	postPhi := post.NewPhi(ptr, blk)

	bodyEnd, bodyEndPtr := lowerASTChain(loop.Body.Next, b, body, bodyPhi.Value())

	endCond := bodyEnd.NonZero(bodyEnd.Load(bodyEndPtr))
	bodyEnd.CondBr(endCond, body, post)

	bodyPhi.AddIncoming(bodyEndPtr, bodyEnd)
	postPhi.AddIncoming(bodyEndPtr, bodyEnd)

	return post, postPhi.Value()
}
