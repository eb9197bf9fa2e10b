package artifacts

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStoreWrite(t *testing.T) {
	dir, err := os.MkdirTemp("", "artifacts-test-*")
	if err != nil {
		t.Fatalf("create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	store, err := NewLocalStore(dir, "out/")
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	data := []byte(`{"ok":true}`)

	if err := store.Write(ctx, "schools.json", data); err != nil {
		t.Fatalf("write: %v", err)
	}

	path := filepath.Join(dir, "out", "schools.json")
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("read back %q, want %q", got, data)
	}

	// No temp file should survive a successful write.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}

	ok, err := store.Exists(ctx, "schools.json")
	if err != nil || !ok {
		t.Errorf("Exists = %v, %v; want true, nil", ok, err)
	}
	ok, err = store.Exists(ctx, "missing.json")
	if err != nil || ok {
		t.Errorf("Exists(missing) = %v, %v; want false, nil", ok, err)
	}
}

func TestLocalStoreOverwrite(t *testing.T) {
	dir, err := os.MkdirTemp("", "artifacts-test-*")
	if err != nil {
		t.Fatalf("create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	store, err := NewLocalStore(dir, "")
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Write(ctx, "a.json", []byte("first")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := store.Write(ctx, "a.json", []byte("second")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, _ := os.ReadFile(filepath.Join(dir, "a.json"))
	if string(got) != "second" {
		t.Errorf("got %q after overwrite", got)
	}
}

func TestLocalStoreURI(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "run1/")
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	uri := store.URI("schools.json")
	if !strings.HasPrefix(uri, "file://") || !strings.HasSuffix(uri, "run1/schools.json") {
		t.Errorf("unexpected URI %q", uri)
	}
}

func TestComputeChecksum(t *testing.T) {
	sum := ComputeChecksum([]byte("hello"))
	if !strings.HasPrefix(sum, "sha256:") {
		t.Errorf("checksum missing prefix: %q", sum)
	}
	if !VerifyChecksum([]byte("hello"), sum) {
		t.Error("checksum should verify against the same data")
	}
	if VerifyChecksum([]byte("hellO"), sum) {
		t.Error("checksum should not verify against different data")
	}
}

func TestCompressRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte(`{"udise":"21180100101"}`), 100)

	compressed, err := Compress(data)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if len(compressed) >= len(data) {
		t.Errorf("repetitive JSON did not shrink: %d -> %d", len(data), len(compressed))
	}

	out, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Error("round trip mismatch")
	}
}

func TestPublisher(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "")
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	ctx := context.Background()
	pub := NewPublisher(store, "run-1", ProducerInfo{Name: "test", Version: "dev"}, true, nil)

	payload := map[string]string{"udise": "21180100101"}
	if err := pub.PublishJSON(ctx, SchoolsFile, payload, 1); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := pub.Finalize(ctx); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	// Plain artifact, compressed copy, and manifest all present.
	for _, name := range []string{SchoolsFile, SchoolsFile + CompressedSuffix, ManifestFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	raw, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	if m.RunID != "run-1" {
		t.Errorf("run id = %q", m.RunID)
	}
	info, ok := m.Artifacts[SchoolsFile]
	if !ok {
		t.Fatal("manifest missing schools entry")
	}
	if info.RecordCount != 1 {
		t.Errorf("record count = %d, want 1", info.RecordCount)
	}

	data, _ := os.ReadFile(filepath.Join(dir, SchoolsFile))
	if !VerifyChecksum(data, info.Checksum) {
		t.Error("manifest checksum does not match artifact bytes")
	}
	if info.Compressed != SchoolsFile+CompressedSuffix {
		t.Errorf("compressed name = %q", info.Compressed)
	}

	compressed, _ := os.ReadFile(filepath.Join(dir, SchoolsFile+CompressedSuffix))
	out, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("decompress copy: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Error("compressed copy does not match plain artifact")
	}
}
