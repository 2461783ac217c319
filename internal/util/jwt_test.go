package util

import (
	"testing"
	"time"
)

const testSecret = "test-secret"

func TestGenerateParseToken_RoundTrip(t *testing.T) {
	token, err := GenerateToken(testSecret, 42, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken(testSecret, 1, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if _, err := ParseToken("another-secret", token); err == nil {
		t.Error("ParseToken() with wrong secret error = nil, want error")
	}
}

func TestParseToken_Expired(t *testing.T) {
	token, err := GenerateToken(testSecret, 1, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if _, err := ParseToken(testSecret, token); err == nil {
		t.Error("ParseToken() with expired token error = nil, want error")
	}
}

func TestParseToken_Malformed(t *testing.T) {
	testCases := []string{"", "garbage", "a.b.c"}

	for _, tc := range testCases {
		if _, err := ParseToken(testSecret, tc); err == nil {
			t.Errorf("ParseToken(%q) error = nil, want error", tc)
		}
	}
}
