package auth

import "testing"

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("labassist@admin123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "labassist@admin123" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "labassist@admin123") {
		t.Error("expected matching password to check")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("expected wrong password to fail")
	}
}

func TestHashPassword_Salted(t *testing.T) {
	a, _ := HashPassword("same")
	b, _ := HashPassword("same")
	if a == b {
		t.Error("expected different salts to give different hashes")
	}
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	if CheckPassword("not-a-bcrypt-hash", "anything") {
		t.Error("malformed hash must not match")
	}
	if CheckPassword("", "") {
		t.Error("empty hash must not match")
	}
}
