package diag

import (
	"errors"
	"strings"
	"testing"
)

func TestCodeKind(t *testing.T) {
	tests := []struct {
		code Code
		want Kind
	}{
		{StructCycle, KindStructural},
		{StructDuplicateName, KindStructural},
		{PreZeroStep, KindPrecondition},
		{CompatVersion, KindCompatibility},
	}
	for _, tt := range tests {
		if got := tt.code.Kind(); got != tt.want {
			t.Fatalf("%s.Kind() = %v, want %v", tt.code.ID(), got, tt.want)
		}
	}
	if StructCycle.ID() != "STR1001" {
		t.Fatalf("ID = %q", StructCycle.ID())
	}
}

func TestPathChildDoesNotAlias(t *testing.T) {
	base := Path{}.Child(1, "body")
	a := base.Child(2, "branch0")
	b := base.Child(3, "branch1")
	if a.String() != "body/op1.body/op2.branch0" {
		t.Fatalf("a = %s", a)
	}
	if b.String() != "body/op1.body/op3.branch1" {
		t.Fatalf("b = %s", b)
	}
}

func TestLocationString(t *testing.T) {
	loc := FuncLoc(2, "main").InPath(Path{}.Child(4, "cond")).AtOp(1).AtValue(7)
	got := loc.String()
	want := `function #2 "main", body/op4.cond, op 1, value %7`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if ModuleLoc().String() != "module" {
		t.Fatalf("module loc = %q", ModuleLoc().String())
	}
}

func TestBagLimitAndErr(t *testing.T) {
	b := NewBag(2)
	b.Add(Warnf(PreZeroStep, ModuleLoc(), "zero step"))
	if b.HasErrors() || b.Err() != nil {
		t.Fatal("warnings must not count as errors")
	}
	if !b.Add(Errorf(StructCycle, FuncLoc(0, "f"), "cycle")) {
		t.Fatal("second add rejected")
	}
	if b.Add(Errorf(StructCycle, FuncLoc(1, "g"), "cycle")) {
		t.Fatal("third add accepted past limit")
	}
	err := b.Err()
	var de *Error
	if !errors.As(err, &de) || de.Code != StructCycle {
		t.Fatalf("errors.As failed: %v", err)
	}
	if !strings.Contains(err.Error(), "STR1001") {
		t.Fatalf("error text = %q", err.Error())
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(10)
	b.Add(Errorf(StructLinearUnconsumed, FuncLoc(1, "g").AtValue(3), "x"))
	b.Add(Errorf(StructCycle, FuncLoc(0, "f"), "y"))
	b.Add(Errorf(StructCycle, FuncLoc(0, "f"), "y"))
	b.Sort()
	b.Dedup()
	if b.Len() != 2 {
		t.Fatalf("len = %d, want 2", b.Len())
	}
	if b.Items()[0].Loc.Func != 0 {
		t.Fatalf("first item func = %d", b.Items()[0].Loc.Func)
	}
}
