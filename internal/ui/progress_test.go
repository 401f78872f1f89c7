package ui

import (
	"strings"
	"testing"

	"jeff/internal/driver"
)

func TestApplyEvent(t *testing.T) {
	files := []string{"a.jeff", "b.jeff.yaml"}
	m := NewProgressModel("check", files, nil).(*progressModel)

	m.applyEvent(driver.Event{File: "a.jeff", Stage: driver.StageValidate, Status: driver.StatusWorking})
	if m.items[0].status != "validating" || m.items[0].finished {
		t.Fatalf("item = %+v", m.items[0])
	}
	m.applyEvent(driver.Event{File: "a.jeff", Stage: driver.StageValidate, Status: driver.StatusDone, Cached: true})
	m.applyEvent(driver.Event{File: "b.jeff.yaml", Stage: driver.StageDecode, Status: driver.StatusError})
	m.applyEvent(driver.Event{File: "unknown.jeff", Status: driver.StatusDone})

	if m.items[0].status != "cached" || m.items[1].status != "error" {
		t.Fatalf("items = %+v", m.items)
	}
	if got := m.finished(); got != 2 {
		t.Fatalf("finished = %d, want 2", got)
	}
	view := m.View()
	if !strings.Contains(view, "check (2/2)") || !strings.Contains(view, "b.jeff.yaml") {
		t.Fatalf("view:\n%s", view)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdefghij", 9); got != "abc..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abc", 10); got != "abc" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abcdef", 2); got != "ab" {
		t.Fatalf("truncate = %q", got)
	}
}
