package ast

import (
	"github.com/brainfork/bfjit/internal/diag"
	"github.com/brainfork/bfjit/internal/token"
)

// tokenSource is the abstract "get next token" contract the parser
// consumes; *token.Scanner satisfies it.
type tokenSource interface {
	Next() (kind token.Kind, pos int)
}

// frame tracks the append point for one nesting level: the slot that the
// next node's pointer should be written into.
type frame struct {
	tail **Node
}

// Parse consumes src's token stream and builds an AST chain rooted at a
// fresh sentinel, or fails with a Malformed diagnostic on unbalanced
// brackets (spec §4.1).
func Parse(src tokenSource) (*Node, error) {
	root := NewSentinel()
	stack := []frame{{tail: &root.Next}}

	for {
		kind, pos := src.Next()
		top := &stack[len(stack)-1]

		switch kind {
		case token.EOF:
			if len(stack) > 1 {
				return nil, diag.Malformedf(pos, "unmatched start-loop")
			}
			return root, nil

		case token.StartLoop:
			body := NewSentinel()
			n := &Node{Kind: Loop, Body: body}
			*top.tail = n
			top.tail = &n.Next
			stack = append(stack, frame{tail: &body.Next})

		case token.EndLoop:
			if len(stack) <= 1 {
				return nil, diag.Malformedf(pos, "unmatched end-loop")
			}
			stack = stack[:len(stack)-1]

		default:
			n := &Node{Kind: kindFor(kind)}
			*top.tail = n
			top.tail = &n.Next
		}
	}
}

// kindFor maps a non-loop token kind to its AST node kind.
func kindFor(k token.Kind) Kind {
	switch k {
	case token.IncrPtr:
		return IncrPtr
	case token.DecrPtr:
		return DecrPtr
	case token.IncrData:
		return IncrData
	case token.DecrData:
		return DecrData
	case token.InputData:
		return GetInput
	case token.OutputData:
		return Output
	default:
		panic("ast: kindFor called with a loop or EOF token")
	}
}
