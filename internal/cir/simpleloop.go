package cir

// EliminateSimpleLoops rewrites every simple loop (spec §4.4) into a
// straight-line multiply-accumulate-and-clear sequence. Non-simple loops
// are preserved, with their bodies recursively transformed. Input must
// already be canonicalized (spec §4.4 contract).
func EliminateSimpleLoops(root *Node) *Node {
	out := NewSentinel()
	tail := &out.Next
	for cur := root.Next; cur != nil; cur = cur.Next {
		if cur.Kind == CLoop {
			tail = emitLoop(cur, tail)
		} else {
			n := copyNode(cur)
			*tail = n
			tail = &n.Next
		}
	}
	return out
}

// emitLoop appends the (possibly rewritten) form of a CLoop onto *tail and
// returns the new tail slot.
func emitLoop(loop *Node, tail **Node) **Node {
	simple, r := analyzeSimple(loop.Body.Next)
	if simple && r.delta == 0 && r.amounts[0] == -1 {
		for _, off := range r.order {
			if off == 0 {
				continue
			}
			if amt := r.amounts[off]; amt != 0 {
				n := &Node{Kind: CMul, Op: 0, Tgt: off, K: amt}
				*tail = n
				tail = &n.Next
			}
		}
		n := &Node{Kind: CSet, Off: 0, K: 0}
		*tail = n
		return &n.Next
	}

	body := EliminateSimpleLoops(loop.Body)
	n := &Node{Kind: CLoop, Body: body}
	*tail = n
	return &n.Next
}

// analyzeSimple walks a loop body, reporting whether it consists solely of
// CPtrMov/CAdd ops (the "single basic block" requirement) and the
// accumulated pointer delta / per-offset add amounts seen along the way.
// A missing offset-0 entry in r.amounts reads as 0 (map default), which is
// exactly the guard spec §9 requires callers to reproduce.
func analyzeSimple(body *Node) (simple bool, r *run) {
	r = newRun()
	for cur := body; cur != nil; cur = cur.Next {
		switch cur.Kind {
		case CPtrMov:
			r.addPtrMov(cur.K)
		case CAdd:
			r.addAdd(cur.Off, cur.K)
		default:
			return false, r
		}
	}
	return true, r
}

// copyNode duplicates a single node (recursing into a CLoop's body via
// EliminateSimpleLoops), without touching Next.
func copyNode(n *Node) *Node {
	switch n.Kind {
	case CLoop:
		return &Node{Kind: CLoop, Body: EliminateSimpleLoops(n.Body)}
	default:
		return &Node{Kind: n.Kind, Off: n.Off, Tgt: n.Tgt, Op: n.Op, K: n.K}
	}
}
