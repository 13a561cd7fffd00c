package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func runCommand(t *testing.T, dbPath string, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs(append([]string{
		"--env-file", filepath.Join(t.TempDir(), "missing.env"),
		"--database-type", "sqlite",
		"--database-url", dbPath,
		"--session-salt", "test-session-salt",
		"--slug-salt", "test-slug-salt",
	}, args...))

	if err := cmd.Execute(); err != nil {
		t.Fatalf("%v failed: %v", args, err)
	}
	return out.String()
}

func TestAdminBootstrapCommands(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "friday.db")

	out := runCommand(t, dbPath, "create-user", "Organizer")
	if !strings.HasPrefix(out, "user_id: ") {
		t.Fatalf("Unexpected create-user output: %q", out)
	}
	uid := strings.TrimSpace(strings.TrimPrefix(strings.Split(out, "\n")[0], "user_id:"))

	out = runCommand(t, dbPath, "grant-admin", uid, "Organizer")
	if !strings.Contains(out, uid+" is now an admin") {
		t.Errorf("Unexpected grant-admin output: %q", out)
	}
}

func TestRepairCommands(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "friday.db")

	out := runCommand(t, dbPath, "reconcile")
	if !strings.Contains(out, "cleared 0 stale pointers, removed 0 orphaned claims") {
		t.Errorf("Unexpected reconcile output: %q", out)
	}

	out = runCommand(t, dbPath, "cleanup-ghosts")
	if !strings.Contains(out, "removed 0 ghost assignments") {
		t.Errorf("Unexpected cleanup output: %q", out)
	}
}

func TestGrantAdminUnknownUser(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "friday.db")

	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"--env-file", filepath.Join(t.TempDir(), "missing.env"),
		"--database-type", "sqlite",
		"--database-url", dbPath,
		"--session-salt", "s",
		"--slug-salt", "s",
		"grant-admin", "nobody",
	})
	if err := cmd.Execute(); err == nil {
		t.Error("Expected an error for an unknown user")
	}
}
