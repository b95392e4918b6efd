package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeSource writes src to a temp .bf file and returns its path.
func writeSource(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.bf")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

func TestRunJIT(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		stdin    string
		optimize bool
		want     string
	}{
		{"multiply-loop", "++++++++[>++++[>++<-]>.[-]<<-]", "", false, "@"},
		{"multiply-loop-optimized", "++++++++[>++++[>++<-]>.[-]<<-]", "", true, "@"},
		{"echo", ",.", "A", false, "A"},
		{"echo-optimized", ",.", "A", true, "A"},
		{"hello-world", "++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>++++++++++++.------------.<-.<.+++.------.--------.>>+.>++.", "", false, "Hello, World!\n"},
		{"hello-world-optimized", "++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>++++++++++++.------------.<-.<.+++.------.--------.>>+.>++.", "", true, "Hello, World!\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			*optimize = tt.optimize
			*runJIT = true
			*lPasses = false
			*outFile = ""
			*dumpCIR = false
			defer func() {
				*optimize, *runJIT, *lPasses, *outFile, *dumpCIR = false, false, false, "", false
			}()

			path := writeSource(t, tt.src)
			var out bytes.Buffer
			err := run(path, strings.NewReader(tt.stdin), &out)
			require.NoError(t, err)
			require.Equal(t, tt.want, out.String())
		})
	}
}

func TestRunEmitsTextualIR(t *testing.T) {
	*optimize, *runJIT, *lPasses, *dumpCIR = false, false, false, false
	defer func() { *outFile = "" }()

	path := writeSource(t, "+.")
	irPath := filepath.Join(t.TempDir(), "out.ll")
	*outFile = irPath

	var out bytes.Buffer
	require.NoError(t, run(path, strings.NewReader(""), &out))

	contents, err := os.ReadFile(irPath)
	require.NoError(t, err)
	require.Contains(t, string(contents), "define")
	require.Contains(t, string(contents), "@main")
}

func TestRunRejectsMissingFile(t *testing.T) {
	*optimize, *runJIT, *lPasses, *outFile, *dumpCIR = false, false, false, "", false
	var out bytes.Buffer
	err := run(filepath.Join(t.TempDir(), "does-not-exist.bf"), strings.NewReader(""), &out)
	require.Error(t, err)
}

func TestRunRejectsMalformedSource(t *testing.T) {
	*optimize, *runJIT, *lPasses, *outFile, *dumpCIR = false, false, false, "", false
	path := writeSource(t, "[+")
	var out bytes.Buffer
	err := run(path, strings.NewReader(""), &out)
	require.Error(t, err)
}
