package auth

import (
	"path/filepath"
	"testing"
)

func TestSealRoundTrip(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "seal.key")
	sealer, err := NewSealer(keyPath)
	if err != nil {
		t.Fatalf("sealer init error: %v", err)
	}

	sealed, err := sealer.Seal("opaque-token-123")
	if err != nil {
		t.Fatalf("seal error: %v", err)
	}
	if sealed == "opaque-token-123" {
		t.Fatal("sealed credential equals plaintext")
	}

	opened, err := sealer.Open(sealed)
	if err != nil {
		t.Fatalf("open error: %v", err)
	}
	if opened != "opaque-token-123" {
		t.Fatalf("expected original token back, got %q", opened)
	}

	// Same key file must keep opening old blobs across restarts.
	reloaded, err := NewSealer(keyPath)
	if err != nil {
		t.Fatalf("sealer reload error: %v", err)
	}
	if opened, err := reloaded.Open(sealed); err != nil || opened != "opaque-token-123" {
		t.Fatalf("reloaded sealer failed to open: (%q, %v)", opened, err)
	}
}

func TestSealRejectsForeignKey(t *testing.T) {
	dir := t.TempDir()
	a, err := NewSealer(filepath.Join(dir, "a.key"))
	if err != nil {
		t.Fatalf("sealer init error: %v", err)
	}
	b, err := NewSealer(filepath.Join(dir, "b.key"))
	if err != nil {
		t.Fatalf("sealer init error: %v", err)
	}

	sealed, err := a.Seal("secret")
	if err != nil {
		t.Fatalf("seal error: %v", err)
	}
	if _, err := b.Open(sealed); err == nil {
		t.Fatal("expected open with foreign key to fail")
	}
	if _, err := a.Open("not-base64!!"); err == nil {
		t.Fatal("expected malformed blob to fail")
	}
}
