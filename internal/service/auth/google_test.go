package auth

import (
	"testing"
	"time"
)

func TestStateRoundTrip(t *testing.T) {
	state, err := NewState("state-secret")
	if err != nil {
		t.Fatalf("NewState returned error: %v", err)
	}
	if err := VerifyState("state-secret", state, 10*time.Minute); err != nil {
		t.Fatalf("VerifyState rejected fresh state: %v", err)
	}
}

func TestStateRejectsWrongSecret(t *testing.T) {
	state, err := NewState("state-secret")
	if err != nil {
		t.Fatalf("NewState returned error: %v", err)
	}
	if err := VerifyState("other-secret", state, 10*time.Minute); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestStateRejectsTampering(t *testing.T) {
	if err := VerifyState("state-secret", "bm90LXZhbGlk", 10*time.Minute); err == nil {
		t.Fatal("expected error for tampered state")
	}
}

func TestStateExpires(t *testing.T) {
	state, err := NewState("state-secret")
	if err != nil {
		t.Fatalf("NewState returned error: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if err := VerifyState("state-secret", state, time.Millisecond); err == nil {
		t.Fatal("expected error for expired state")
	}
}
