package download

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/depo-mc/depo/pkg/errors"
)

// jarBytes builds an in-memory archive declaring the given manifest.
func jarBytes(t *testing.T, manifest string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	if manifest != "" {
		entry, err := w.Create("plugin.yml")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := entry.Write([]byte(manifest)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func serveBytes(b []byte) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(b)
	}))
}

func newPipeline() *Pipeline {
	return &Pipeline{
		Client:     &http.Client{Timeout: 5 * time.Second},
		RetryDelay: time.Millisecond,
	}
}

func TestPipeline_Fetch(t *testing.T) {
	jar := jarBytes(t, "name: Vault\n")
	server := serveBytes(jar)
	defer server.Close()

	dir := t.TempDir()
	p := newPipeline()
	p.InstallLog = &InstallLog{Path: filepath.Join(dir, "installed.log")}

	dest := filepath.Join(dir, "Vault.jar")
	if err := p.Fetch(context.Background(), server.URL, dest, "Vault", 0); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
	if !bytes.Equal(got, jar) {
		t.Error("artifact content mismatch")
	}

	entries, err := p.InstallLog.Entries()
	if err != nil {
		t.Fatalf("Entries() error: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "Vault" || entries[0].SourceURL != server.URL {
		t.Errorf("install log = %+v", entries)
	}
}

func TestPipeline_IdentityMatchesProvidesAlias(t *testing.T) {
	server := serveBytes(jarBytes(t, "name: Essentials\nprovides: [EssentialsChat]\n"))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "chat.jar")
	if err := newPipeline().Fetch(context.Background(), server.URL, dest, "essentialschat", 0); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
}

func TestPipeline_BlocksInsecureURL(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	p := newPipeline()
	p.BlockInsecure = true

	dest := filepath.Join(t.TempDir(), "x.jar")
	err := p.Fetch(context.Background(), server.URL, dest, "X", 0)
	if !errors.Is(err, errors.ErrCodePolicyViolation) {
		t.Fatalf("expected POLICY_VIOLATION, got %v", err)
	}
	if calls != 0 {
		t.Errorf("server called %d times, want 0", calls)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("no file should have been written")
	}
}

func TestPipeline_RetriesServerError(t *testing.T) {
	jar := jarBytes(t, "name: Vault\n")
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write(jar)
	}))
	defer server.Close()

	p := newPipeline()
	dest := filepath.Join(t.TempDir(), "Vault.jar")
	if err := p.Fetch(context.Background(), server.URL, dest, "Vault", 2); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if calls != 2 {
		t.Errorf("server called %d times, want 2", calls)
	}
}

func TestPipeline_EmptyBodyFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 200 with no content at all.
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "x.jar")
	err := newPipeline().Fetch(context.Background(), server.URL, dest, "X", 2)
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Fatalf("expected NETWORK_ERROR, got %v", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("no artifact should remain after an empty body")
	}
}

func TestPipeline_IdentityMismatchDeletesFile(t *testing.T) {
	server := serveBytes(jarBytes(t, "name: DefinitelyNotVault\n"))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "Vault.jar")
	err := newPipeline().Fetch(context.Background(), server.URL, dest, "Vault", 0)
	if !errors.Is(err, errors.ErrCodeIdentityMismatch) {
		t.Fatalf("expected IDENTITY_MISMATCH, got %v", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("invalid artifact should have been deleted")
	}
}

func TestPipeline_NotAnArchiveDeletesFile(t *testing.T) {
	server := serveBytes([]byte("this is html, not a jar"))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "Vault.jar")
	err := newPipeline().Fetch(context.Background(), server.URL, dest, "Vault", 0)
	if !errors.Is(err, errors.ErrCodeIdentityMismatch) {
		t.Fatalf("expected IDENTITY_MISMATCH, got %v", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("invalid artifact should have been deleted")
	}
}

func TestPipeline_ChecksumMismatchDeletesFile(t *testing.T) {
	server := serveBytes(jarBytes(t, "name: Vault\n"))
	defer server.Close()

	p := newPipeline()
	p.Checksums = map[string]string{"Vault": strings.Repeat("ab", 32)}

	dest := filepath.Join(t.TempDir(), "Vault.jar")
	err := p.Fetch(context.Background(), server.URL, dest, "Vault", 0)
	if !errors.Is(err, errors.ErrCodeChecksumMismatch) {
		t.Fatalf("expected CHECKSUM_MISMATCH, got %v", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("artifact with bad checksum should have been deleted")
	}
}

func TestPipeline_ChecksumMatchesCaseInsensitively(t *testing.T) {
	jar := jarBytes(t, "name: Vault\n")
	sum := sha256.Sum256(jar)
	server := serveBytes(jar)
	defer server.Close()

	p := newPipeline()
	p.Checksums = map[string]string{"vault": strings.ToUpper(hex.EncodeToString(sum[:]))}

	dest := filepath.Join(t.TempDir(), "Vault.jar")
	if err := p.Fetch(context.Background(), server.URL, dest, "Vault", 0); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
}

func TestPipeline_EmptyIdentityUsesDeclaredName(t *testing.T) {
	server := serveBytes(jarBytes(t, "name: Towny\n"))
	defer server.Close()

	dir := t.TempDir()
	p := newPipeline()
	p.InstallLog = &InstallLog{Path: filepath.Join(dir, "installed.log")}

	dest := filepath.Join(dir, "Towny-Paper-1.2.0.jar")
	if err := p.Fetch(context.Background(), server.URL, dest, "", 0); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	entries, err := p.InstallLog.Entries()
	if err != nil {
		t.Fatalf("Entries() error: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "Towny" {
		t.Errorf("install log = %+v, want declared name Towny", entries)
	}
}

func TestPipeline_EmptyIdentityStillRequiresManifest(t *testing.T) {
	server := serveBytes(jarBytes(t, ""))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "mystery.jar")
	err := newPipeline().Fetch(context.Background(), server.URL, dest, "", 0)
	if errors.GetCode(err) != errors.ErrCodeIdentityMismatch {
		t.Fatalf("error code = %v, want identity mismatch", errors.GetCode(err))
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("invalid artifact was not deleted")
	}
}
