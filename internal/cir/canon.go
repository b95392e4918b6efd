package cir

// run accumulates the state of one maximal CPtrMov/CAdd run: a net pointer
// delta plus an offset->amount map, in first-seen offset order so emission
// is deterministic (not required by spec §9's open question, but harmless).
type run struct {
	delta   int32
	order   []int32
	amounts map[int32]int32
}

func newRun() *run {
	return &run{amounts: make(map[int32]int32)}
}

func (r *run) addPtrMov(k int32) {
	r.delta += k
}

func (r *run) addAdd(off, k int32) {
	abs := off + r.delta
	if _, ok := r.amounts[abs]; !ok {
		r.order = append(r.order, abs)
	}
	r.amounts[abs] += k
}

// flush appends the run's normal form to *tail: one CAdd per nonzero entry
// (in first-seen order), then a CPtrMov if the net delta is nonzero. The
// run is left empty afterward.
func (r *run) flush(tail **Node) {
	for _, off := range r.order {
		if amt := r.amounts[off]; amt != 0 {
			n := &Node{Kind: CAdd, Off: off, K: amt}
			*tail = n
			tail = &n.Next
		}
	}
	if r.delta != 0 {
		n := &Node{Kind: CPtrMov, K: r.delta}
		*tail = n
		tail = &n.Next
	}
	r.delta = 0
	r.order = nil
	r.amounts = make(map[int32]int32)
}

// Canonicalize rewrites every maximal run of CPtrMov/CAdd nodes into its
// normal form (spec §4.3). Loop bodies are canonicalized recursively in a
// fresh nested context.
func Canonicalize(root *Node) *Node {
	out := NewSentinel()
	canonicalizeInto(root.Next, &out.Next)
	return out
}

func canonicalizeInto(n *Node, tail **Node) {
	r := newRun()
	for cur := n; cur != nil; cur = cur.Next {
		switch cur.Kind {
		case CPtrMov:
			r.addPtrMov(cur.K)
		case CAdd:
			r.addAdd(cur.Off, cur.K)
		default:
			r.flush(tail)
			for *tail != nil {
				tail = &(*tail).Next
			}
			tail = appendBoundary(cur, tail)
		}
	}
	r.flush(tail)
}

// appendBoundary copies a single boundary op (recursing into CLoop bodies)
// onto *tail and returns the new tail slot.
func appendBoundary(cur *Node, tail **Node) **Node {
	switch cur.Kind {
	case CLoop:
		body := NewSentinel()
		canonicalizeInto(cur.Body.Next, &body.Next)
		n := &Node{Kind: CLoop, Body: body}
		*tail = n
		return &n.Next
	case CMul:
		n := &Node{Kind: CMul, Op: cur.Op, Tgt: cur.Tgt, K: cur.K}
		*tail = n
		return &n.Next
	case CSet:
		n := &Node{Kind: CSet, Off: cur.Off, K: cur.K}
		*tail = n
		return &n.Next
	case CInput:
		n := &Node{Kind: CInput, Off: cur.Off}
		*tail = n
		return &n.Next
	case COutput:
		n := &Node{Kind: COutput, Off: cur.Off}
		*tail = n
		return &n.Next
	default:
		panic("cir: appendBoundary called with a non-boundary kind")
	}
}
