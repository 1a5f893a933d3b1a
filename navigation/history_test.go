package navigation

import (
	"strings"
	"testing"

	"meshbrowse/contentid"
)

func hashOf(c string) contentid.ID {
	return contentid.MustParse(strings.Repeat(c, 64))
}

func TestHistoryEmpty(t *testing.T) {
	h := NewHistory()
	if h.Index() != -1 || h.Len() != 0 {
		t.Fatalf("empty history: index=%d len=%d", h.Index(), h.Len())
	}
	if _, ok := h.Current(); ok {
		t.Error("empty history has a current entry")
	}
	if _, ok := h.Back(); ok {
		t.Error("Back moved on empty history")
	}
	if _, ok := h.Forward(); ok {
		t.Error("Forward moved on empty history")
	}
}

func TestHistoryForwardTruncation(t *testing.T) {
	a, b, c, d := hashOf("a"), hashOf("b"), hashOf("c"), hashOf("d")

	h := NewHistory()
	h.Push(a)
	h.Push(b)
	h.Push(c)

	if got, ok := h.Back(); !ok || got != b {
		t.Fatalf("Back() = %q, %v", got, ok)
	}
	h.Push(d)

	want := []contentid.ID{a, b, d}
	got := h.Entries()
	if len(got) != len(want) {
		t.Fatalf("entries = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, got[i], want[i])
		}
	}
	if h.Index() != 2 {
		t.Errorf("index = %d, want 2", h.Index())
	}
	if h.CanForward() {
		t.Error("no forward entries expected after push")
	}
}

func TestHistoryIndexStaysInRange(t *testing.T) {
	h := NewHistory()
	ids := []contentid.ID{hashOf("1"), hashOf("2"), hashOf("3")}
	for _, id := range ids {
		h.Push(id)
	}
	for i := 0; i < 5; i++ {
		h.Back()
		if h.Index() < 0 || h.Index() >= h.Len() {
			t.Fatalf("index %d out of range", h.Index())
		}
	}
	if h.Index() != 0 {
		t.Errorf("expected index 0 after backing out, got %d", h.Index())
	}
	for i := 0; i < 5; i++ {
		h.Forward()
	}
	if h.Index() != 2 {
		t.Errorf("expected index 2 after moving forward, got %d", h.Index())
	}
}

func TestHistoryEntriesIsACopy(t *testing.T) {
	h := NewHistory()
	h.Push(hashOf("a"))
	e := h.Entries()
	e[0] = hashOf("f")
	if cur, _ := h.Current(); cur != hashOf("a") {
		t.Error("mutating Entries() changed the history")
	}
}
