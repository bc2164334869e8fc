package crypto

import (
	"bytes"
	"errors"
	"testing"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	svc, err := New(testKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !svc.Configured() {
		t.Fatal("expected service to be configured")
	}

	sealed, err := svc.EncryptString("123456789012")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if bytes.Contains(sealed, []byte("123456789012")) {
		t.Fatal("expected ciphertext not to contain the plain value")
	}
	plain, err := svc.DecryptString(sealed)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if plain != "123456789012" {
		t.Fatalf("expected round trip value, got %q", plain)
	}
}

func TestUnconfiguredPassesThrough(t *testing.T) {
	svc, err := New("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := svc.EncryptString("secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "secret" {
		t.Fatalf("expected passthrough, got %q", out)
	}
}

func TestDecryptShortCiphertext(t *testing.T) {
	svc, err := New(testKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Decrypt([]byte("abc")); !errors.Is(err, ErrCiphertextTooShort) {
		t.Fatalf("expected ErrCiphertextTooShort, got %v", err)
	}
}

func TestInvalidKeyLength(t *testing.T) {
	if _, err := New("short"); err == nil {
		t.Fatal("expected key length error")
	}
}

func TestLast4(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "123456789012", want: "9012"},
		{in: "1234", want: "1234"},
		{in: " 98765 ", want: "8765"},
		{in: "", want: ""},
	}
	for _, tc := range tests {
		if got := Last4(tc.in); got != tc.want {
			t.Fatalf("Last4(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDecryptRejectsTamperedCiphertext(t *testing.T) {
	svc, err := New(testKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sealed, err := svc.EncryptString("JBSWY3DPEHPK3PXP")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	sealed[len(sealed)-1] ^= 0xff
	if _, err := svc.Decrypt(sealed); err == nil {
		t.Fatal("expected authentication failure")
	}
}
