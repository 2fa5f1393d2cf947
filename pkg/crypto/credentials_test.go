package crypto

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

// Test key generated with: openssl rand -base64 32
const testKey = "dGVzdC1rZXktZm9yLXVuaXQtdGVzdHMtMzItYnl0ZXM=" // "test-key-for-unit-tests-32-bytes"

func TestNewCredentialEncryptor(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "valid 32-byte base64 key", key: testKey},
		{name: "empty key", key: "", wantErr: true},
		{name: "passphrase", key: "local-dev-passphrase"},
		{name: "short base64 key is hashed", key: base64.StdEncoding.EncodeToString([]byte("sixteen-byte-key"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := NewCredentialEncryptor(tt.key)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidKey) {
					t.Errorf("expected ErrInvalidKey, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if enc == nil {
				t.Fatal("expected encryptor, got nil")
			}
		})
	}
}

func TestPassphraseKeyConsistency(t *testing.T) {
	enc1, _ := NewCredentialEncryptor("same-passphrase")
	enc2, _ := NewCredentialEncryptor("same-passphrase")

	ct, err := enc1.Encrypt("hunter2")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	pt, err := enc2.Decrypt(ct)
	if err != nil {
		t.Fatalf("Decrypt with same passphrase failed: %v", err)
	}
	if pt != "hunter2" {
		t.Errorf("Decrypt() = %q, want hunter2", pt)
	}
}

func TestEncryptDecrypt(t *testing.T) {
	enc, err := NewCredentialEncryptor(testKey)
	if err != nil {
		t.Fatalf("failed to create encryptor: %v", err)
	}

	for _, plaintext := range []string{"", "a", "hunter2", "p@ss:w/rd?#", strings.Repeat("x", 4096), "пароль"} {
		ct, err := enc.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt(%q) failed: %v", plaintext, err)
		}
		if plaintext == "" && ct != "" {
			t.Errorf("empty plaintext should stay empty, got %q", ct)
		}
		if plaintext != "" && ct == plaintext {
			t.Errorf("ciphertext equals plaintext for %q", plaintext)
		}
		pt, err := enc.Decrypt(ct)
		if err != nil {
			t.Fatalf("Decrypt failed: %v", err)
		}
		if pt != plaintext {
			t.Errorf("round trip = %q, want %q", pt, plaintext)
		}
	}
}

func TestEncryptProducesUniqueNonces(t *testing.T) {
	enc, _ := NewCredentialEncryptor(testKey)

	a, _ := enc.Encrypt("same")
	b, _ := enc.Encrypt("same")
	if a == b {
		t.Error("two encryptions of the same value must differ")
	}
}

func TestDecryptWithWrongKey(t *testing.T) {
	enc1, _ := NewCredentialEncryptor(testKey)
	enc2, _ := NewCredentialEncryptor("another-key")

	ct, _ := enc1.Encrypt("hunter2")
	_, err := enc2.Decrypt(ct)
	if !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestDecryptInvalidInput(t *testing.T) {
	enc, _ := NewCredentialEncryptor(testKey)

	for _, input := range []string{"not base64!!", base64.StdEncoding.EncodeToString([]byte("short"))} {
		if _, err := enc.Decrypt(input); !errors.Is(err, ErrDecryptionFailed) {
			t.Errorf("Decrypt(%q) expected ErrDecryptionFailed, got %v", input, err)
		}
	}
}

func TestSealOpen(t *testing.T) {
	enc, _ := NewCredentialEncryptor(testKey)

	sealed, err := enc.Seal("hunter2")
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if !strings.HasPrefix(sealed, "ENC(") || !strings.HasSuffix(sealed, ")") {
		t.Errorf("Seal() = %q, want ENC(...) form", sealed)
	}
	if !IsSealed(sealed) {
		t.Error("IsSealed() = false for sealed value")
	}

	again, _ := enc.Seal(sealed)
	if again != sealed {
		t.Error("sealing a sealed value must be a no-op")
	}

	opened, err := enc.Open(sealed)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if opened != "hunter2" {
		t.Errorf("Open() = %q, want hunter2", opened)
	}

	plain, err := enc.Open("not-sealed")
	if err != nil || plain != "not-sealed" {
		t.Errorf("Open(plain) = %q, %v; want passthrough", plain, err)
	}
}

func TestIsSealed(t *testing.T) {
	tests := map[string]bool{
		"ENC(abc)": true,
		"ENC()":    false,
		"ENC(abc":  false,
		"enc(abc)": false,
		"******":   false,
		"":         false,
	}
	for in, want := range tests {
		if got := IsSealed(in); got != want {
			t.Errorf("IsSealed(%q) = %v, want %v", in, got, want)
		}
	}
}
