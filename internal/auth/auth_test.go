package auth

import "testing"

func TestVerify(t *testing.T) {
	hash, err := Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if !Verify(hash, "correct horse") {
		t.Error("Verify rejected the right password")
	}
	if Verify(hash, "wrong") {
		t.Error("Verify accepted the wrong password")
	}
	if Verify("not-a-hash", "anything") {
		t.Error("Verify accepted a malformed hash")
	}
}

func TestSessions(t *testing.T) {
	s := NewSessions()

	token := s.Create()
	if token == "" {
		t.Fatal("empty session token")
	}
	if !s.Valid(token) {
		t.Error("fresh token should be valid")
	}
	if s.Valid("nope") {
		t.Error("unknown token should be invalid")
	}

	s.Revoke(token)
	if s.Valid(token) {
		t.Error("revoked token should be invalid")
	}
}
