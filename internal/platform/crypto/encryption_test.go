package crypto

import (
	"bytes"
	"strings"
	"testing"
)

const testKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	svc, err := New(testKey)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !svc.Configured() {
		t.Fatal("expected configured service")
	}
	sealed, err := svc.EncryptString("GB29 NWBK 6016 1331 9268 19")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Contains(sealed, []byte("NWBK")) {
		t.Fatal("ciphertext leaks plaintext")
	}
	plain, err := svc.DecryptString(sealed)
	if err != nil || plain != "GB29 NWBK 6016 1331 9268 19" {
		t.Fatalf("decrypt: %q %v", plain, err)
	}
	if _, err := svc.Decrypt([]byte("abc")); err == nil {
		t.Fatal("expected short ciphertext error")
	}
}

func TestUnconfiguredPassesThrough(t *testing.T) {
	svc, err := New("")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	sealed, _ := svc.EncryptString("plain")
	if string(sealed) != "plain" {
		t.Fatalf("expected passthrough, got %q", sealed)
	}
}

func TestNewRejectsShortKey(t *testing.T) {
	if _, err := New("short"); err == nil || !strings.Contains(err.Error(), "32 bytes") {
		t.Fatalf("expected key length error, got %v", err)
	}
}

func TestEncryptJSON(t *testing.T) {
	svc, _ := New(testKey)
	type account struct {
		Bank   string `json:"bank"`
		Number string `json:"number"`
	}
	sealed, err := svc.EncryptJSON([]account{{Bank: "ACME", Number: "123"}})
	if err != nil {
		t.Fatalf("encrypt json: %v", err)
	}
	var out []account
	if err := svc.DecryptJSON(sealed, &out); err != nil {
		t.Fatalf("decrypt json: %v", err)
	}
	if len(out) != 1 || out[0].Number != "123" {
		t.Fatalf("unexpected accounts %+v", out)
	}

	empty, err := svc.EncryptJSON([]account{})
	if err != nil || empty != nil {
		t.Fatalf("expected nil for empty slice, got %v %v", empty, err)
	}
}
