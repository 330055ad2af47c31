package application

import (
	"errors"
	"strings"
	"testing"
)

// cheap parameters keep the suite fast.
var testHasher = PasswordHasher{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}

func TestPasswordHasher(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		encoded, err := testHasher.Hash("s3cret")
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		if !strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=1$") {
			t.Fatalf("unexpected encoding %q", encoded)
		}
		if err := testHasher.Verify(encoded, "s3cret"); err != nil {
			t.Fatalf("expected password to verify, got %v", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		encoded, err := testHasher.Hash("s3cret")
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		if err := testHasher.Verify(encoded, "guess"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("hash parameters override verifier", func(t *testing.T) {
		encoded, err := testHasher.Hash("s3cret")
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		if err := DefaultPasswordHasher.Verify(encoded, "s3cret"); err != nil {
			t.Fatalf("expected verification with stored parameters, got %v", err)
		}
	})

	t.Run("malformed hashes", func(t *testing.T) {
		for _, encoded := range []string{"", "plain", "$bcrypt$v=19$m=1,t=1,p=1$AAAA$AAAA", "$argon2id$v=1$m=1,t=1,p=1$AAAA$AAAA", "$argon2id$v=19$m=1,t=1,p=1$!!$AAAA"} {
			if err := testHasher.Verify(encoded, "x"); !errors.Is(err, ErrInvalidPasswordHash) {
				t.Fatalf("Verify(%q) = %v, want ErrInvalidPasswordHash", encoded, err)
			}
		}
	})
}
