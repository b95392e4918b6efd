package cir

import "github.com/brainfork/bfjit/internal/ast"

// Translate lowers an AST chain to a fresh CIR chain, one-for-one, per the
// mapping table in spec §4.2. The translator tracks its own append point
// per nesting level by recursing into loop bodies, one append point per
// call, rather than keeping an explicit stack as ast.Parse does.
func Translate(root *ast.Node) *Node {
	out := NewSentinel()
	translateInto(root.Next, &out.Next)
	return out
}

// translateInto appends the translation of the AST chain starting at n into
// *tail, advancing *tail as it goes.
func translateInto(n *ast.Node, tail **Node) {
	for cur := n; cur != nil; cur = cur.Next {
		var c *Node
		switch cur.Kind {
		case ast.IncrPtr:
			c = &Node{Kind: CPtrMov, K: 1}
		case ast.DecrPtr:
			c = &Node{Kind: CPtrMov, K: -1}
		case ast.IncrData:
			c = &Node{Kind: CAdd, Off: 0, K: 1}
		case ast.DecrData:
			c = &Node{Kind: CAdd, Off: 0, K: -1}
		case ast.GetInput:
			c = &Node{Kind: CInput, Off: 0}
		case ast.Output:
			c = &Node{Kind: COutput, Off: 0}
		case ast.Loop:
			body := NewSentinel()
			translateInto(cur.Body.Next, &body.Next)
			c = &Node{Kind: CLoop, Body: body}
		default:
			continue // Nop only appears as a sentinel head, never mid-chain
		}
		*tail = c
		tail = &c.Next
	}
}
