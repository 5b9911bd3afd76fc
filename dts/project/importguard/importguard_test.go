package importguard

import (
	"reflect"
	"testing"
)

func TestOkForFilesWithoutDependencies(t *testing.T) {
	g := New[int]()
	if err := g.Add(1, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.Add(2, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOkForUnrelatedFiles(t *testing.T) {
	g := New[int]()
	mustOk(t, g.Add(1, []int{2}))
	mustOk(t, g.Add(3, []int{4}))
}

func TestOkForFilesWithNonCyclicDependencies(t *testing.T) {
	g := New[int]()
	mustOk(t, g.Add(1, []int{2}))
	mustOk(t, g.Add(2, []int{3}))
	mustOk(t, g.Add(3, nil))
}

func TestOkDependenciesForMultipleIncludes(t *testing.T) {
	g := New[int]()
	mustOk(t, g.Add(1, nil))
	mustOk(t, g.Add(2, nil))
	mustOk(t, g.Add(3, []int{1, 2}))
}

func TestOkForDependencyInMultipleFiles(t *testing.T) {
	g := New[int]()
	mustOk(t, g.Add(1, nil))
	mustOk(t, g.Add(2, []int{1}))
	mustOk(t, g.Add(3, []int{1}))
}

func TestSimpleCyclicDependency(t *testing.T) {
	g := New[int]()
	mustOk(t, g.Add(1, []int{2}))
	err := g.Add(2, []int{1})
	wantCycle(t, err, []int{2, 1, 2})
}

func TestCyclicDependencySpanningMultipleFiles(t *testing.T) {
	g := New[int]()
	mustOk(t, g.Add(1, []int{2}))
	mustOk(t, g.Add(2, []int{3}))
	err := g.Add(3, []int{1})
	wantCycle(t, err, []int{3, 1, 2, 3})
}

func TestComplexCyclicDependencyGraph(t *testing.T) {
	g := New[int]()
	mustOk(t, g.Add(1, []int{2, 3}))
	mustOk(t, g.Add(2, []int{4}))
	mustOk(t, g.Add(4, nil))
	mustOk(t, g.Add(3, []int{4}))
}

func TestSelfImport(t *testing.T) {
	g := New[int]()
	err := g.Add(1, []int{1})
	wantCycle(t, err, []int{1, 1})
}

func TestDoubleEdges(t *testing.T) {
	g := New[int]()
	mustOk(t, g.Add(1, []int{2}))
	mustOk(t, g.Add(1, []int{2}))
}

func mustOk(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func wantCycle(t *testing.T, err error, want []int) {
	t.Helper()
	cerr, ok := err.(*CyclicDependencyError[int])
	if !ok {
		t.Fatalf("got %v (%T), want *CyclicDependencyError[int]", err, err)
	}
	if !reflect.DeepEqual(cerr.Cycle(), want) {
		t.Fatalf("cycle = %v, want %v", cerr.Cycle(), want)
	}
}
