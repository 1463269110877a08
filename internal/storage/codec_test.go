package storage

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/yndnr/pwdless-go/internal/core/domain"
	"github.com/yndnr/pwdless-go/pkg/crypto/adaptive"
)

func testCipher(t *testing.T) *adaptive.Cipher {
	t.Helper()
	key := make([]byte, adaptive.KeySize)
	for i := range key {
		key[i] = byte(255 - i)
	}
	c, err := adaptive.New(key)
	if err != nil {
		t.Fatalf("adaptive.New: %v", err)
	}
	return c
}

func sampleRecord() *domain.TokenRecord {
	return domain.NewTokenRecord("alice", "$2a$10$abcdef", time.Date(2026, 5, 1, 8, 0, 0, 123456789, time.UTC), 15*time.Minute, "/next")
}

func TestCodec_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		cipher *adaptive.Cipher
	}{
		{"plain", nil},
		{"sealed", testCipher(t)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := sampleRecord()
			frame, err := EncodeRecord(want, tt.cipher)
			if err != nil {
				t.Fatalf("EncodeRecord() error = %v", err)
			}

			got, err := DecodeRecord(frame, "alice", tt.cipher)
			if err != nil {
				t.Fatalf("DecodeRecord() error = %v", err)
			}
			if got.UserID != want.UserID || got.HashedToken != want.HashedToken || got.OriginURL != want.OriginURL {
				t.Errorf("DecodeRecord() = %+v, want %+v", got, want)
			}
			if !got.ExpiresAt.Equal(want.ExpiresAt) {
				t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, want.ExpiresAt)
			}
		})
	}
}

func TestCodec_SealedHidesDigest(t *testing.T) {
	frame, err := EncodeRecord(sampleRecord(), testCipher(t))
	if err != nil {
		t.Fatalf("EncodeRecord() error = %v", err)
	}
	if frame[0] != frameSealed {
		t.Errorf("frame version = %#x, want %#x", frame[0], frameSealed)
	}
	if bytes.Contains(frame, []byte("$2a$10$abcdef")) {
		t.Error("sealed frame exposes the digest")
	}
}

func TestCodec_PlainReadableWithCipher(t *testing.T) {
	frame, _ := EncodeRecord(sampleRecord(), nil)
	if _, err := DecodeRecord(frame, "alice", testCipher(t)); err != nil {
		t.Errorf("plain frame should decode when a key is configured: %v", err)
	}
}

func TestCodec_NonUTF8Fields(t *testing.T) {
	const userID = "user\xff\xfe"
	want := domain.NewTokenRecord(userID, "digest\x80", time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC), time.Minute, "/d\xffx")

	for _, c := range []*adaptive.Cipher{nil, testCipher(t)} {
		frame, err := EncodeRecord(want, c)
		if err != nil {
			t.Fatalf("EncodeRecord() error = %v", err)
		}
		got, err := DecodeRecord(frame, userID, c)
		if err != nil {
			t.Fatalf("DecodeRecord() error = %v", err)
		}
		if got.UserID != userID || got.HashedToken != want.HashedToken || got.OriginURL != want.OriginURL {
			t.Errorf("DecodeRecord() = %q %q %q, want %q %q %q",
				got.UserID, got.HashedToken, got.OriginURL, userID, want.HashedToken, want.OriginURL)
		}
	}
}

func TestCodec_Rejects(t *testing.T) {
	c := testCipher(t)
	plain, _ := EncodeRecord(sampleRecord(), nil)
	sealed, _ := EncodeRecord(sampleRecord(), c)

	flipped := append([]byte(nil), plain...)
	flipped[len(flipped)-2] ^= 0x20

	tamperedSeal := append([]byte(nil), sealed...)
	tamperedSeal[len(tamperedSeal)-1] ^= 0x01

	tests := []struct {
		name   string
		data   []byte
		userID string
		cipher *adaptive.Cipher
	}{
		{"empty", nil, "alice", nil},
		{"short plain", []byte{framePlain, 0, 0}, "alice", nil},
		{"unknown version", append([]byte{0x7f}, plain[1:]...), "alice", nil},
		{"bit flip", flipped, "alice", nil},
		{"wrong user", plain, "bob", nil},
		{"sealed without key", sealed, "alice", nil},
		{"sealed under other user", sealed, "bob", c},
		{"tampered seal", tamperedSeal, "alice", c},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecord(tt.data, tt.userID, tt.cipher)
			if !errors.Is(err, domain.ErrRecordCorrupted) {
				t.Errorf("DecodeRecord() error = %v, want ErrRecordCorrupted", err)
			}
		})
	}
}

func TestEncodeRecord_Nil(t *testing.T) {
	if _, err := EncodeRecord(nil, nil); err == nil {
		t.Error("EncodeRecord(nil) should fail")
	}
}
