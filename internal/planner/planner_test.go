package planner

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/data-bridge/bridgeflow/internal/fault"
	"github.com/data-bridge/bridgeflow/internal/format"
)

// --- Helper builders ---

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte{}, 0o644); err != nil {
		t.Fatalf("touch %s: %v", path, err)
	}
	return path
}

func mustPlan(t *testing.T, req Request) []Task {
	t.Helper()
	tasks, err := Plan(req)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	return tasks
}

// --- Scenarios ---

func TestPlan_DefaultFormatsNoReferences(t *testing.T) {
	in := t.TempDir()
	touch(t, in, "100.lin")

	tasks := mustPlan(t, Request{Input: in})
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(tasks))
	}
	task := tasks[0]
	if task.Input.Format != format.LINVG {
		t.Errorf("input format: got %v, want LIN_VG", task.Input.Format)
	}
	if !task.DeleteOutputAfterUse {
		t.Error("outputs without an output directory are not kept")
	}

	wantNames := []string{"100.lin", "100.pbn", "100.rbn", "100.rbx", "100.txt", "100.eml", "100.rec"}
	if len(task.Outputs) != len(wantNames) {
		t.Fatalf("got %d outputs, want %d", len(task.Outputs), len(wantNames))
	}
	for i, out := range task.Outputs {
		if out.Name != wantNames[i] {
			t.Errorf("output %d: name %q, want %q", i, out.Name, wantNames[i])
		}
		if out.HasReference {
			t.Errorf("output %s: unexpected reference", out.Name)
		}
		if out.Path != "" {
			t.Errorf("output %s: path %q should not be materialized", out.Name, out.Path)
		}
	}
	if task.Outputs[0].Format != format.LINVG {
		t.Errorf("LIN output of a numeric base: got %v, want LIN_VG", task.Outputs[0].Format)
	}
}

func TestPlan_ReferenceMatchesBaseAndFormat(t *testing.T) {
	in := t.TempDir()
	ref := t.TempDir()
	touch(t, in, "100.lin")
	refPBN := touch(t, ref, "100.pbn")
	touch(t, ref, "101.pbn")

	tasks := mustPlan(t, Request{Input: in, Reference: ref, Formats: []format.Format{format.PBN}})
	outs := tasks[0].Outputs
	if len(outs) != 1 {
		t.Fatalf("got %d outputs, want 1", len(outs))
	}
	if !outs[0].HasReference || outs[0].ReferencePath != refPBN {
		t.Errorf("reference: got (%v, %q), want (true, %q)", outs[0].HasReference, outs[0].ReferencePath, refPBN)
	}
}

func TestPlan_ReferenceLINDialectMustAgree(t *testing.T) {
	in := t.TempDir()
	ref := t.TempDir()
	touch(t, in, "100.pbn")
	touch(t, ref, "100.lin")

	tasks := mustPlan(t, Request{Input: in, Reference: ref, Formats: []format.Format{format.LIN, format.RBN}})
	if !tasks[0].Outputs[0].HasReference {
		t.Error("100.lin reference should match the LIN_VG output of 100")
	}
	if tasks[0].Outputs[1].HasReference {
		t.Error("no RBN reference exists")
	}
}

func TestPlan_ReferenceFormatFilter(t *testing.T) {
	in := t.TempDir()
	ref := t.TempDir()
	touch(t, in, "hands.lin")
	touch(t, ref, "hands.pbn")
	touch(t, ref, "hands.rbn")

	tasks := mustPlan(t, Request{
		Input: in, Reference: ref, RefFormat: format.RBN,
		Formats: []format.Format{format.PBN, format.RBN},
	})
	if tasks[0].Outputs[0].HasReference {
		t.Error("PBN reference should be filtered out")
	}
	if !tasks[0].Outputs[1].HasReference {
		t.Error("RBN reference should be kept")
	}
}

func TestPlan_OutputDirectoryMirrorsInputTree(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	touch(t, filepath.Join(in, "a"), "x.pbn")
	touch(t, filepath.Join(in, "b"), "x.pbn")

	tasks := mustPlan(t, Request{Input: in, Output: out, Keep: true, Formats: []format.Format{format.RBN}})
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(tasks))
	}
	want := []string{filepath.Join(out, "a", "x.rbn"), filepath.Join(out, "b", "x.rbn")}
	for i, task := range tasks {
		if task.Outputs[0].Path != want[i] {
			t.Errorf("task %d: path %q, want %q", i, task.Outputs[0].Path, want[i])
		}
		if task.DeleteOutputAfterUse {
			t.Errorf("task %d: kept outputs must not be deleted", i)
		}
	}
}

func TestPlan_SingleOutputFile(t *testing.T) {
	in := t.TempDir()
	src := touch(t, in, "hands.lin")
	out := filepath.Join(t.TempDir(), "converted.pbn")

	tasks := mustPlan(t, Request{Input: src, Output: out, Keep: true})
	if len(tasks) != 1 || len(tasks[0].Outputs) != 1 {
		t.Fatalf("got %+v, want one task with one output", tasks)
	}
	if got := tasks[0].Outputs[0]; got.Path != out || got.Format != format.PBN {
		t.Errorf("output: got %+v", got)
	}

	touch(t, in, "more.lin")
	_, err := Plan(Request{Input: in, Output: out})
	if !errors.Is(err, fault.ErrPlan) {
		t.Errorf("two inputs with one output file: got %v, want ErrPlan", err)
	}
}

func TestPlan_SingleInputFileIntoDirectory(t *testing.T) {
	in := t.TempDir()
	src := touch(t, in, "Tournament3.lin")
	out := t.TempDir()

	tasks := mustPlan(t, Request{Input: src, Output: out, Formats: []format.Format{format.LIN}})
	got := tasks[0].Outputs[0]
	if got.Path != filepath.Join(out, "Tournament3.lin") || got.Format != format.LINTRN {
		t.Errorf("output: got %+v", got)
	}
	if !tasks[0].DeleteOutputAfterUse {
		t.Error("Keep=false should delete outputs after use")
	}
}

func TestPlan_Errors(t *testing.T) {
	empty := t.TempDir()
	touch(t, empty, "readme.md")
	if _, err := Plan(Request{Input: empty}); !errors.Is(err, ErrNoInputs) || !errors.Is(err, fault.ErrPlan) {
		t.Errorf("no inputs: got %v", err)
	}
	if _, err := Plan(Request{Input: filepath.Join(empty, "missing")}); !errors.Is(err, fault.ErrPlan) {
		t.Errorf("missing input: got %v", err)
	}
	if _, err := Plan(Request{Input: empty, Reference: filepath.Join(empty, "nope")}); err == nil {
		t.Error("missing reference directory should fail")
	}
}

func TestPlan_Deterministic(t *testing.T) {
	in := t.TempDir()
	ref := t.TempDir()
	for _, n := range []string{"9.lin", "10.lin", "o01abc.lin", "z.pbn", "a.rbx"} {
		touch(t, in, n)
	}
	touch(t, ref, "z.txt")
	req := Request{Input: in, Reference: ref, Formats: []format.Format{format.TXT, format.LIN, format.PBN}}

	first := mustPlan(t, req)
	for i := 0; i < 5; i++ {
		if again := mustPlan(t, req); !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\n%+v\n%+v", i, first, again)
		}
	}
}
