package main

import (
	"testing"
	"time"
)

func TestTokenFileRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if _, err := loadToken(); err == nil {
		t.Fatalf("want error before any login")
	}

	if err := saveToken("tok-123", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("saveToken: %v", err)
	}
	got, err := loadToken()
	if err != nil || got != "tok-123" {
		t.Fatalf("loadToken: got=%q err=%v", got, err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if err := saveToken("stale", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("saveToken: %v", err)
	}
	if _, err := loadToken(); err == nil {
		t.Fatalf("want error for expired token")
	}
}
