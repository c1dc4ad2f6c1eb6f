package ratelimit

import (
	"testing"
	"time"
)

func TestAllowWithinLimit(t *testing.T) {
	l := NewLimiter(3, time.Minute)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		if !l.Allow("acme_co_db") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("acme_co_db") {
		t.Fatal("fourth request should be rejected")
	}
}

func TestAllowIsPerKey(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	defer l.Stop()

	if !l.Allow("acme_co_db") {
		t.Fatal("first tenant should be allowed")
	}
	if !l.Allow("initech_db") {
		t.Fatal("second tenant has its own bucket")
	}
	if l.Allow("acme_co_db") {
		t.Fatal("first tenant is over budget")
	}
}

func TestEmptyKeyBypassesLimit(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	defer l.Stop()

	for i := 0; i < 5; i++ {
		if !l.Allow("") {
			t.Fatal("requests without a tenant key are not limited")
		}
	}
}

func TestAllowStrictSeparateBudget(t *testing.T) {
	l := NewLimiter(100, time.Minute)
	defer l.Stop()

	if !l.AllowStrict("10.0.0.1", 2, time.Minute) {
		t.Fatal("first strict request should be allowed")
	}
	if !l.AllowStrict("10.0.0.1", 2, time.Minute) {
		t.Fatal("second strict request should be allowed")
	}
	if l.AllowStrict("10.0.0.1", 2, time.Minute) {
		t.Fatal("third strict request should be rejected")
	}
	// The general bucket for the same identifier is untouched.
	if !l.Allow("10.0.0.1") {
		t.Fatal("general budget is independent of the strict one")
	}
}

func TestWindowExpiry(t *testing.T) {
	l := NewLimiter(1, 20*time.Millisecond)
	defer l.Stop()

	if !l.Allow("k") {
		t.Fatal("first request should be allowed")
	}
	if l.Allow("k") {
		t.Fatal("second immediate request should be rejected")
	}
	time.Sleep(30 * time.Millisecond)
	if !l.Allow("k") {
		t.Fatal("request after the window should be allowed again")
	}
}
