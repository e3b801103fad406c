package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"automv/internal/deps"
	"automv/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("AutoMV checkout", statusError, "not found", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "AutoMV checkout:", "[ERROR] not found")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Python", statusOK, "Python 3.10", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestDependencyLines(t *testing.T) {
	statuses := []deps.Status{
		{Requirement: deps.Requirement{Name: "Python"}},
		{Requirement: deps.Requirement{Name: "FFmpeg", Optional: true}, Detail: `binary "ffmpeg" not found`},
		{Requirement: deps.Requirement{Name: "Shell"}, Available: true, Path: "/bin/sh"},
	}
	lines := dependencyLines(statuses, false)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), lines)
	}
	if !strings.Contains(lines[0], "[ERROR] not available") {
		t.Fatalf("expected error detail first, got %q", lines[0])
	}
	if !strings.Contains(lines[1], `[WARN] binary "ffmpeg" not found`) {
		t.Fatalf("expected optional warning second, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "[OK] Ready (/bin/sh)") {
		t.Fatalf("expected ready line third, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "Missing dependencies:") || !strings.Contains(lines[3], "Python, FFmpeg") {
		t.Fatalf("expected missing summary, got %q", lines[3])
	}
}

func TestPreflightLines(t *testing.T) {
	lines := preflightLines([]preflight.Result{
		{Name: "API keys", Passed: false, Detail: "missing GEMINI_API_KEY"},
		{Name: "Python interpreter", Passed: true, Detail: "Python 3.10.14"},
	}, false)
	if !strings.Contains(lines[0], "[ERROR] missing GEMINI_API_KEY") || !strings.Contains(lines[1], "[OK] Python 3.10.14") {
		t.Fatalf("unexpected lines %q", lines)
	}
}

func TestRenderTableAlignsColumns(t *testing.T) {
	out := renderTable([]string{"Project", "Segments"}, [][]string{{"song", "12"}, {"short"}}, []columnAlignment{alignLeft, alignRight})
	if !strings.Contains(out, "Project") || !strings.Contains(out, "song") || !strings.Contains(out, "12") {
		t.Fatalf("unexpected table:\n%s", out)
	}
	if renderTable(nil, nil, nil) != "" {
		t.Fatal("expected empty output without headers")
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
	if got := renderMarkdown("**bold**", io.Discard); got != "**bold**" {
		t.Fatalf("expected markdown passthrough off a terminal, got %q", got)
	}
}
