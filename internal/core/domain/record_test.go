package domain

import (
	"strings"
	"testing"
	"time"
)

func TestNewTokenRecord(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)
	rec := NewTokenRecord("u1", "$2a$digest", now, time.Minute, "/dashboard")

	want := time.Date(2026, 3, 1, 12, 1, 0, 124000000, time.UTC)
	if !rec.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", rec.ExpiresAt, want)
	}
	if rec.OriginURL != "/dashboard" {
		t.Errorf("OriginURL = %q, want /dashboard", rec.OriginURL)
	}

	exact := NewTokenRecord("u1", "h", time.Date(2026, 3, 1, 12, 0, 0, 5000000, time.UTC), time.Second, "")
	if want := time.Date(2026, 3, 1, 12, 0, 1, 5000000, time.UTC); !exact.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt on a millisecond boundary = %v, want %v", exact.ExpiresAt, want)
	}
}

func TestNewTokenRecord_SubMillisecondTTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 7000000, time.UTC)
	for _, ttl := range []time.Duration{time.Nanosecond, 500 * time.Microsecond, 999 * time.Microsecond} {
		rec := NewTokenRecord("u1", "h", now, ttl, "")
		if rec.IsExpired(now) {
			t.Errorf("ttl %v: record expired when written (ExpiresAt %v)", ttl, rec.ExpiresAt)
		}
	}
}

func TestTokenRecord_IsExpired(t *testing.T) {
	exp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := &TokenRecord{UserID: "u1", HashedToken: "h", ExpiresAt: exp}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before expiry", exp.Add(-time.Millisecond), false},
		{"exactly at expiry", exp, true},
		{"after expiry", exp.Add(time.Second), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rec.IsExpired(tt.now); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokenRecord_Validate(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	tests := []struct {
		name    string
		rec     TokenRecord
		wantErr bool
	}{
		{"valid", TokenRecord{UserID: "u1", HashedToken: "h", ExpiresAt: exp}, false},
		{"valid without origin", TokenRecord{UserID: "u1", HashedToken: "h", ExpiresAt: exp, OriginURL: ""}, false},
		{"missing user", TokenRecord{HashedToken: "h", ExpiresAt: exp}, true},
		{"long user", TokenRecord{UserID: strings.Repeat("u", 4096), HashedToken: "h", ExpiresAt: exp}, false},
		{"missing digest", TokenRecord{UserID: "u1", ExpiresAt: exp}, true},
		{"missing expiry", TokenRecord{UserID: "u1", HashedToken: "h"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && GetErrorCode(err) != ErrRecordInvalid.Code {
				t.Errorf("code = %q, want %q", GetErrorCode(err), ErrRecordInvalid.Code)
			}
		})
	}
}

func TestTokenRecord_Clone(t *testing.T) {
	var nilRec *TokenRecord
	if nilRec.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}

	rec := &TokenRecord{UserID: "u1", HashedToken: "h", ExpiresAt: time.Now(), OriginURL: "/a"}
	c := rec.Clone()
	c.OriginURL = "/b"
	if rec.OriginURL != "/a" {
		t.Error("Clone should not share state with the original")
	}
}
