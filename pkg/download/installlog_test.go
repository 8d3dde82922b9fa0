package download

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestInstallLog_AppendAndEntries(t *testing.T) {
	l := &InstallLog{Path: filepath.Join(t.TempDir(), "installed.log")}

	if err := l.Append("Vault", "https://cdn.modrinth.com/vault.jar"); err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	if err := l.Append("WorldEdit", "https://api.spiget.org/v2/resources/1/download"); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	entries, err := l.Entries()
	if err != nil {
		t.Fatalf("Entries() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Name != "Vault" || entries[1].Name != "WorldEdit" {
		t.Errorf("entries = %+v", entries)
	}
	if time.Since(entries[0].Timestamp) > time.Minute {
		t.Errorf("timestamp too old: %v", entries[0].Timestamp)
	}
}

func TestInstallLog_LineFormat(t *testing.T) {
	l := &InstallLog{Path: filepath.Join(t.TempDir(), "installed.log")}
	if err := l.Append("Vault", "https://example.com/vault.jar"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(l.Path)
	if err != nil {
		t.Fatal(err)
	}
	line := strings.TrimSpace(string(data))
	parts := strings.Split(line, " | ")
	if len(parts) != 3 {
		t.Fatalf("line = %q, want three pipe-separated fields", line)
	}
	if _, err := time.Parse(time.RFC3339, parts[0]); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", parts[0], err)
	}
}

func TestInstallLog_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "installed.log")
	content := "garbage line\n" +
		"2026-01-02T15:04:05Z | Vault | https://example.com/vault.jar\n" +
		"not-a-time | X | url\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	l := &InstallLog{Path: path}
	entries, err := l.Entries()
	if err != nil {
		t.Fatalf("Entries() error: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "Vault" {
		t.Errorf("entries = %+v, want just Vault", entries)
	}
}

func TestInstallLog_MissingFile(t *testing.T) {
	l := &InstallLog{Path: filepath.Join(t.TempDir(), "nope.log")}
	entries, err := l.Entries()
	if err != nil {
		t.Fatalf("Entries() error: %v", err)
	}
	if entries != nil {
		t.Errorf("entries = %v, want nil", entries)
	}
}
