// Package dump renders a CIR chain in the diagnostic dump format from
// spec.md §6: one node per line, indented two spaces per loop nesting
// level.
package dump

import (
	"fmt"
	"io"
	"strings"

	"github.com/brainfork/bfjit/internal/cir"
)

// Write renders root to w.
func Write(w io.Writer, root *cir.Node) error {
	return writeChain(w, root.Next, 0)
}

func writeChain(w io.Writer, n *cir.Node, depth int) error {
	indent := strings.Repeat("  ", depth)
	for cur := n; cur != nil; cur = cur.Next {
		switch cur.Kind {
		case cir.CPtrMov:
			if _, err := fmt.Fprintf(w, "%sCPtrMov(%d)\n", indent, cur.K); err != nil {
				return err
			}
		case cir.CAdd:
			if _, err := fmt.Fprintf(w, "%sCAdd(%d,%d)\n", indent, cur.Off, cur.K); err != nil {
				return err
			}
		case cir.CMul:
			if _, err := fmt.Fprintf(w, "%sCMul(%d,%d,%d)\n", indent, cur.Op, cur.Tgt, cur.K); err != nil {
				return err
			}
		case cir.CSet:
			if _, err := fmt.Fprintf(w, "%sCSet(%d,%d)\n", indent, cur.Off, cur.K); err != nil {
				return err
			}
		case cir.CInput:
			if _, err := fmt.Fprintf(w, "%sCInput(%d)\n", indent, cur.Off); err != nil {
				return err
			}
		case cir.COutput:
			if _, err := fmt.Fprintf(w, "%sCOutput(%d)\n", indent, cur.Off); err != nil {
				return err
			}
		case cir.CLoop:
			if _, err := fmt.Fprintf(w, "%sCLoop:\n", indent); err != nil {
				return err
			}
			if err := writeChain(w, cur.Body.Next, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// String renders root and returns it as a string, for tests; the -p flag
// writes through Write directly.
func String(root *cir.Node) string {
	var b strings.Builder
	_ = Write(&b, root)
	return b.String()
}
