package tui

import (
	"strings"
	"testing"
)

func plainSegments(words ...string) []styledSegment {
	out := make([]styledSegment, 0, len(words))
	for _, w := range words {
		out = append(out, styledSegment{s: w, width: len([]rune(w))})
	}
	return out
}

func TestWrapSegmentsPacksLines(t *testing.T) {
	lines := wrapSegments(plainSegments("aaa", "bbb", "cc", "dddd"), 8)
	want := []string{"aaa  bbb", "cc  dddd"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestWrapSegmentsOversizedSegment(t *testing.T) {
	lines := wrapSegments(plainSegments("a", "toolongsegment", "b"), 5)
	want := []string{"a", "toolongsegment", "b"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected lines %q", lines)
	}
}

func TestWrapSegmentsNoWidth(t *testing.T) {
	lines := wrapSegments(plainSegments("a", "b"), 0)
	if len(lines) != 1 || lines[0] != "a  b" {
		t.Fatalf("expected single line, got %q", lines)
	}
}

func TestHintSegmentsWidth(t *testing.T) {
	segs := hintSegments([][2]string{{"enter", "start"}, {"×", "x"}})
	if segs[0].width != len("enter start") {
		t.Fatalf("unexpected width %d", segs[0].width)
	}
	if segs[1].width != 3 {
		t.Fatalf("expected width 3 for multi-byte key, got %d", segs[1].width)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 10); got != "abcdef" {
		t.Fatalf("short text changed: %q", got)
	}
	got := truncate("abcdefghij", 5)
	if got != "abcd…" {
		t.Fatalf("unexpected truncation %q", got)
	}
}
