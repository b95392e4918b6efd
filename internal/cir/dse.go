package cir

// DeadStoreElim implements the one sub-case of the -L host-optimizer passes
// (spec.md's LLVM pass list, SPEC_FULL.md §6) that has a direct CIR-level
// analogue once loops have already been reduced to straight-line code by
// EliminateSimpleLoops: it drops a write to an offset when a later,
// unconditional write to the same offset is guaranteed to occur first,
// with nothing in between reading or writing that offset.
//
// Only CSet is an unconditional, pure write: it doesn't depend on the prior
// cell value and has no side effect of its own, so it can both serve as the
// proof that kills an earlier store and be killed itself. CInput also
// overwrites unconditionally, but consuming a byte from stdin is an
// observable side effect — it must never be eliminated, so it ends a
// pending store's run (like COutput) without ever becoming one itself.
// CAdd and a CMul targeting the offset are read-modify-write and can still
// be eliminated as the *earlier* write in such a pair, but never serve as
// the proof that makes an earlier write provably dead. A CLoop is a full
// barrier: its condition reads offset 0, and its body may read or write
// anything, so tracking resets across it. A CPtrMov re-bases every pending
// offset to a different physical cell, so tracking resets across it too.
func DeadStoreElim(root *Node) *Node {
	out := NewSentinel()
	out.Next = dseSegment(root.Next)
	return out
}

// slot is one node of the segment being filtered, kept alongside whether it
// has been determined dead.
type slot struct {
	node *Node
	dead bool
}

func dseSegment(head *Node) *Node {
	var slots []*slot
	pending := make(map[int32]*slot)

	use := func(off int32) {
		delete(pending, off)
	}
	write := func(off int32, s *slot, unconditional bool) {
		if unconditional {
			if prev, ok := pending[off]; ok {
				prev.dead = true
			}
		} else {
			delete(pending, off) // RMW reads the prior value first
		}
		pending[off] = s
	}

	for cur := head; cur != nil; cur = cur.Next {
		switch cur.Kind {
		case CLoop:
			pending = make(map[int32]*slot)
			body := NewSentinel()
			body.Next = dseSegment(cur.Body.Next)
			s := &slot{node: &Node{Kind: CLoop, Body: body}}
			slots = append(slots, s)
		case CSet:
			s := &slot{node: copyNode(cur)}
			slots = append(slots, s)
			write(cur.Off, s, true)
		case CInput:
			s := &slot{node: copyNode(cur)}
			slots = append(slots, s)
			use(cur.Off) // overwrites the cell, but never itself droppable
		case CAdd:
			s := &slot{node: copyNode(cur)}
			slots = append(slots, s)
			write(cur.Off, s, false)
		case CMul:
			s := &slot{node: copyNode(cur)}
			slots = append(slots, s)
			use(cur.Op)
			write(cur.Tgt, s, false)
		case COutput:
			s := &slot{node: copyNode(cur)}
			slots = append(slots, s)
			use(cur.Off)
		case CPtrMov:
			// Every pending offset is relative to the pointer in effect
			// when it was recorded; once the pointer moves, the same
			// numeric offset names a different physical cell, so no
			// pending write survives across it.
			pending = make(map[int32]*slot)
			slots = append(slots, &slot{node: copyNode(cur)})
		}
	}

	out := NewSentinel()
	tail := &out.Next
	for _, s := range slots {
		if s.dead {
			continue
		}
		*tail = s.node
		tail = &s.node.Next
	}
	return out.Next
}
