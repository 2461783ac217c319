package util

import (
	"testing"
)

func TestEncryptDecryptAES_RoundTrip(t *testing.T) {
	key := "test-key"
	plain := []byte("hello there")

	cipher, err := EncryptAES(key, plain)
	if err != nil {
		t.Fatalf("EncryptAES() error = %v", err)
	}

	got, err := DecryptAES(key, cipher)
	if err != nil {
		t.Fatalf("DecryptAES() error = %v", err)
	}
	if string(got) != string(plain) {
		t.Errorf("DecryptAES() = %q, want %q", got, plain)
	}
}

func TestDecryptAES_WrongKey(t *testing.T) {
	cipher, err := EncryptAES("key-a", []byte("secret"))
	if err != nil {
		t.Fatalf("EncryptAES() error = %v", err)
	}

	if _, err := DecryptAES("key-b", cipher); err == nil {
		t.Error("DecryptAES() with wrong key error = nil, want error")
	}
}

func TestDecryptAES_TooShort(t *testing.T) {
	if _, err := DecryptAES("key", []byte{1, 2, 3}); err == nil {
		t.Error("DecryptAES() with short input error = nil, want error")
	}
}

func TestEncryptAES_NonDeterministic(t *testing.T) {
	a, err := EncryptAES("key", []byte("same input"))
	if err != nil {
		t.Fatalf("EncryptAES() error = %v", err)
	}
	b, err := EncryptAES("key", []byte("same input"))
	if err != nil {
		t.Fatalf("EncryptAES() error = %v", err)
	}
	if string(a) == string(b) {
		t.Error("two encryptions produced identical output, nonce not random")
	}
}

func TestEncryptField_RoundTrip(t *testing.T) {
	stored, err := EncryptField("key", "message text")
	if err != nil {
		t.Fatalf("EncryptField() error = %v", err)
	}
	if stored == "message text" {
		t.Fatal("EncryptField() stored plaintext")
	}

	if got := DecryptField("key", stored); got != "message text" {
		t.Errorf("DecryptField() = %q, want %q", got, "message text")
	}
}

func TestEncryptField_EmptyPassthrough(t *testing.T) {
	stored, err := EncryptField("", "plain")
	if err != nil {
		t.Fatalf("EncryptField() error = %v", err)
	}
	if stored != "plain" {
		t.Errorf("EncryptField() with empty key = %q, want passthrough", stored)
	}

	stored, err = EncryptField("key", "")
	if err != nil {
		t.Fatalf("EncryptField() error = %v", err)
	}
	if stored != "" {
		t.Errorf("EncryptField() with empty input = %q, want empty", stored)
	}
}

func TestDecryptField_InvalidStored(t *testing.T) {
	// undecodable stored value comes back unchanged
	if got := DecryptField("key", "not-base64!!"); got != "not-base64!!" {
		t.Errorf("DecryptField() = %q, want passthrough", got)
	}
}
