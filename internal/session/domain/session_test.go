package domain

import (
	"testing"
	"time"
)

func TestSession_Expired(t *testing.T) {
	expiry := time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)
	s := &Session{ExpiresAt: expiry}

	if s.Expired(expiry.Add(-time.Second)) {
		t.Error("session should not be expired before ExpiresAt")
	}
	if s.Expired(expiry) {
		t.Error("session should not be expired exactly at ExpiresAt")
	}
	if !s.Expired(expiry.Add(time.Second)) {
		t.Error("session should be expired after ExpiresAt")
	}
}
