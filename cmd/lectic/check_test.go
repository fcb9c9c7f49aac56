package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lectic/internal/config"
	"lectic/internal/diagfmt"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestCollectDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.lec"), "")
	writeFile(t, filepath.Join(dir, "nested", "b.lec"), "")
	writeFile(t, filepath.Join(dir, "nested", "notes.md"), "")

	got, err := collectDocuments([]string{dir, filepath.Join(dir, "a.lec")})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(got) != 2 || !strings.HasSuffix(got[0], "a.lec") || !strings.HasSuffix(got[1], filepath.Join("nested", "b.lec")) {
		t.Fatalf("unexpected documents %v", got)
	}
	if _, err := collectDocuments([]string{filepath.Join(dir, "nested", "empty")}); err == nil {
		t.Fatal("expected an error for a missing path")
	}
}

func TestCheckDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chat.lec")
	writeFile(t, path, "---\ninterlocutor:\n  name: Known\n  prompt: hi\n---\n:ask[Ghost]\nsee [a](file://./a.txt)\n")

	opts := checkOptions{max: 50}
	report, err := checkDocument(context.Background(), path, &config.Resolver{}, nil, opts)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	errorsFound, warnings := countSeverities([]diagfmt.Report{report})
	if errorsFound != 1 || warnings != 1 {
		t.Fatalf("expected 1 error and 1 warning, got %d/%d: %+v", errorsFound, warnings, report.Diagnostics)
	}

	opts.noWarnings = true
	report, err = checkDocument(context.Background(), path, &config.Resolver{}, nil, opts)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(report.Diagnostics) != 1 || report.Diagnostics[0].Code.ID() != "LEC2001" {
		t.Fatalf("warnings must be dropped: %+v", report.Diagnostics)
	}
}

func TestColorEnabled(t *testing.T) {
	if !colorEnabled("on", os.Stdout) || colorEnabled("off", os.Stdout) {
		t.Fatal("explicit modes must win")
	}
}
