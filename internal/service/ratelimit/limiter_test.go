package ratelimit

import (
	"testing"
	"time"
)

func TestAllowBurstThenDeny(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		if !l.Allow("client-a", 3, 0.001) {
			t.Fatalf("request %d denied within capacity", i)
		}
	}
	if l.Allow("client-a", 3, 0.001) {
		t.Error("request allowed past capacity")
	}
}

func TestAllowRefills(t *testing.T) {
	l := New()
	if !l.Allow("client-b", 1, 200) {
		t.Fatal("first request denied")
	}
	if l.Allow("client-b", 1, 200) {
		t.Fatal("bucket not drained")
	}
	time.Sleep(20 * time.Millisecond)
	if !l.Allow("client-b", 1, 200) {
		t.Error("request denied after refill window")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := New()
	if !l.Allow("a", 1, 0.001) {
		t.Fatal("first key denied")
	}
	if !l.Allow("b", 1, 0.001) {
		t.Error("second key should have its own bucket")
	}
}
