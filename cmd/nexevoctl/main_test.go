package main

import (
	"context"
	"strings"
	"testing"
)

func TestRunRejectsUnknownCommand(t *testing.T) {
	err := run(context.Background(), []string{"bogus"})
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestRunRequiresCommand(t *testing.T) {
	err := run(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "missing command") {
		t.Fatalf("expected missing command error, got %v", err)
	}
}

func TestRunEndToEndWithMemoryStore(t *testing.T) {
	ctx := context.Background()
	artifactsDir := t.TempDir()

	err := run(ctx, []string{
		"run",
		"-store", "memory",
		"-artifacts-dir", artifactsDir,
		"-arch", "linear",
		"-fitness", "sphere",
		"-pop", "8",
		"-gens", "2",
		"-seed", "1",
	})
	if err != nil {
		t.Fatalf("run command: %v", err)
	}
}

func TestListCommandsParse(t *testing.T) {
	if err := run(context.Background(), []string{"archs"}); err != nil {
		t.Fatalf("archs: %v", err)
	}
	if err := run(context.Background(), []string{"operators"}); err != nil {
		t.Fatalf("operators: %v", err)
	}
}
