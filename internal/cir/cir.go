// Package cir implements the canonical offset-addressed intermediate
// representation: translation from the AST, basic-block canonicalization,
// and simple-loop elimination (spec §3, §4.2-§4.4).
package cir

// Kind tags the variant of a Node.
type Kind int

const (
	// CNode is the list-head sentinel; no-op.
	CNode Kind = iota
	// CPtrMov is p += K.
	CPtrMov
	// CAdd is M[p+Off] += K (mod 256).
	CAdd
	// CMul is M[p+Tgt] += M[p+Op] * K (mod 256).
	CMul
	// CSet is M[p+Off] = K.
	CSet
	// CInput is M[p+Off] = getchar().
	CInput
	// COutput is putchar(M[p+Off]).
	COutput
	// CLoop is while (M[p] != 0) { Body }.
	CLoop
)

// Node is one element of a CIR chain, analogous to ast.Node but with
// offset-addressed, multi-field operations. Off/Tgt/Op are offsets
// relative to the current pointer; K is a constant amount; all are signed
// 32-bit (spec §3).
type Node struct {
	Kind Kind
	Off  int32 // CAdd/CSet/CInput/COutput: the offset.
	Tgt  int32 // CMul: target offset.
	Op   int32 // CMul: source offset.
	K    int32 // CPtrMov: the delta. CAdd/CSet/CMul: the constant.
	Body *Node // CLoop: owned sub-chain, rooted at its own sentinel.
	Next *Node
}

// NewSentinel allocates a fresh CNode list head.
func NewSentinel() *Node {
	return &Node{Kind: CNode}
}
