package vm_test

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/ember/internal/filetest"
	"github.com/mna/ember/lang/heap"
	"github.com/mna/ember/lang/vm"
)

var testUpdateGoldenTests = flag.Bool("test.update-vm-golden-tests", false, "If set, replace expected VM golden test results with actual results.")

// TestGolden runs every script under testdata/in end to end and diffs its
// printed output and any runtime error against the matching golden file
// under testdata/out, the same source-file/golden-file harness the teacher
// uses for its scanner/parser/resolver tests.
func TestGolden(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".lox") {
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(srcDir, fi.Name()))
			if err != nil {
				t.Fatal(err)
			}

			var out bytes.Buffer
			h := heap.New(heap.Options{})
			m := vm.New(h, &out, nil)

			var errs string
			if err := m.Interpret(string(src)); err != nil {
				errs = err.Error()
			}

			filetest.DiffOutput(t, fi, out.String(), resultDir, testUpdateGoldenTests)
			filetest.DiffErrors(t, fi, errs, resultDir, testUpdateGoldenTests)
		})
	}
}
