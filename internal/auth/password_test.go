package auth

import "testing"

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}

	if !CheckPassword("correct horse battery staple", hash) {
		t.Error("CheckPassword() = false for matching password")
	}
	if CheckPassword("wrong password", hash) {
		t.Error("CheckPassword() = true for wrong password")
	}
	if CheckPassword("anything", "not-a-bcrypt-hash") {
		t.Error("CheckPassword() = true for malformed hash")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	h1, err := HashPassword("pw123456")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	h2, err := HashPassword("pw123456")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password are identical; salting is broken")
	}
}
