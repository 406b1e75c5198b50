package ratelimit

import "testing"

func TestAllowDrainsBucket(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		if !l.Allow("openai", 3, 0.0001) {
			t.Fatalf("call %d should be allowed", i)
		}
	}
	if l.Allow("openai", 3, 0.0001) {
		t.Fatalf("bucket should be empty")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		l.Allow("openai", 3, 0.0001)
	}
	if !l.Allow("finnhub", 3, 0.0001) {
		t.Fatalf("separate key must have its own bucket")
	}
}
