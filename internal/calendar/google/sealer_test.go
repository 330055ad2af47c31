package google

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestSealerRoundTrip(t *testing.T) {
	t.Parallel()

	sealer, err := NewSealer(testKey)
	if err != nil {
		t.Fatalf("NewSealer returned error: %v", err)
	}
	sealed, err := sealer.Seal([]byte(`{"access_token":"abc"}`))
	if err != nil {
		t.Fatalf("Seal returned error: %v", err)
	}
	if bytes.Contains(sealed, []byte("abc")) {
		t.Fatalf("sealed credential leaks plaintext")
	}
	opened, err := sealer.Open(sealed)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if string(opened) != `{"access_token":"abc"}` {
		t.Fatalf("unexpected plaintext %q", opened)
	}

	sealed[len(sealed)-1] ^= 0xff
	if _, err := sealer.Open(sealed); !errors.Is(err, ErrUnsealFailed) {
		t.Fatalf("expected ErrUnsealFailed for tampered box, got %v", err)
	}
	if _, err := sealer.Open([]byte("short")); !errors.Is(err, ErrUnsealFailed) {
		t.Fatalf("expected ErrUnsealFailed for short box, got %v", err)
	}
}

func TestNewSealerRejectsBadKeys(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"", "zz", strings.Repeat("ab", 16)} {
		if _, err := NewSealer(key); !errors.Is(err, ErrInvalidSealKey) {
			t.Fatalf("NewSealer(%q) = %v, want ErrInvalidSealKey", key, err)
		}
	}
}
