package main

import (
	"bytes"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestKeygen(t *testing.T) {
	out, err := run(t, "keygen")
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	if !strings.Contains(out, "PETCARE_PUSH_VAPID_PUBLIC_KEY=") || !strings.Contains(out, "PETCARE_PUSH_VAPID_PRIVATE_KEY=") {
		t.Errorf("output = %q", out)
	}
}

func TestStatsAndReconcileOnEmptyStore(t *testing.T) {
	t.Setenv("PETCARE_STORAGE_BACKEND", "memory")
	t.Setenv("PETCARE_TIMEZONE", "UTC")

	out, err := run(t, "--db", ":memory:", "--log-level", "error", "stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out, `"total_pets": 0`) {
		t.Errorf("stats output = %q", out)
	}

	out, err = run(t, "--db", ":memory:", "--log-level", "error", "reconcile")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !strings.Contains(out, `"removed"`) {
		t.Errorf("reconcile output = %q", out)
	}
}

func TestBadConfigPath(t *testing.T) {
	if _, err := run(t, "--config", "/does/not/exist.yaml", "stats"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
