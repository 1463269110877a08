package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"time"

	"github.com/yndnr/pwdless-go/internal/core/domain"
	"github.com/yndnr/pwdless-go/pkg/crypto/adaptive"
)

// Frame versions.
const (
	framePlain  byte = 0x01
	frameSealed byte = 0x02
)

// wireRecord is the persisted layout of a token record. The string fields
// are opaque and may hold any bytes, so they travel as base64 rather than
// JSON strings, which would replace invalid UTF-8. Origin is always
// written, as empty when absent.
type wireRecord struct {
	UserID    []byte `json:"uid"`
	Hash      []byte `json:"hash"`
	ExpiresAt int64  `json:"exp"`
	Origin    []byte `json:"origin"`
}

// EncodeRecord serializes rec into a frame.
//
// Plain frame:  [0x01][crc32:4][json]
// Sealed frame: [0x02][adaptive.Seal(json, userID)]
func EncodeRecord(rec *domain.TokenRecord, cipher *adaptive.Cipher) ([]byte, error) {
	if rec == nil {
		return nil, fmt.Errorf("codec: record is nil")
	}

	payload, err := json.Marshal(wireRecord{
		UserID:    []byte(rec.UserID),
		Hash:      []byte(rec.HashedToken),
		ExpiresAt: rec.ExpiresAt.UnixMilli(),
		Origin:    []byte(rec.OriginURL),
	})
	if err != nil {
		return nil, fmt.Errorf("codec: marshal record: %w", err)
	}

	if cipher == nil {
		out := make([]byte, 5, 5+len(payload))
		out[0] = framePlain
		binary.BigEndian.PutUint32(out[1:5], crc32.ChecksumIEEE(payload))
		return append(out, payload...), nil
	}

	sealed, err := cipher.Seal(payload, []byte(rec.UserID))
	if err != nil {
		return nil, fmt.Errorf("codec: seal record: %w", err)
	}
	return append([]byte{frameSealed}, sealed...), nil
}

// DecodeRecord parses a frame written by EncodeRecord for userID. Plain
// frames are accepted even when cipher is set so that encryption can be
// enabled on an existing store. Every failure wraps domain.ErrRecordCorrupted.
func DecodeRecord(data []byte, userID string, cipher *adaptive.Cipher) (*domain.TokenRecord, error) {
	if len(data) < 1 {
		return nil, corrupted(userID, "empty frame", nil)
	}

	var payload []byte
	switch data[0] {
	case framePlain:
		if len(data) < 5 {
			return nil, corrupted(userID, "short frame", nil)
		}
		payload = data[5:]
		if crc32.ChecksumIEEE(payload) != binary.BigEndian.Uint32(data[1:5]) {
			return nil, corrupted(userID, "checksum mismatch", nil)
		}
	case frameSealed:
		if cipher == nil {
			return nil, corrupted(userID, "record is encrypted but no key is configured", nil)
		}
		var err error
		payload, err = cipher.Open(data[1:], []byte(userID))
		if err != nil {
			return nil, corrupted(userID, "open sealed frame", err)
		}
	default:
		return nil, corrupted(userID, fmt.Sprintf("unknown frame version 0x%02x", data[0]), nil)
	}

	var w wireRecord
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, corrupted(userID, "unmarshal record", err)
	}
	if string(w.UserID) != userID {
		return nil, corrupted(userID, "user id mismatch", nil)
	}

	return &domain.TokenRecord{
		UserID:      userID,
		HashedToken: string(w.Hash),
		ExpiresAt:   time.UnixMilli(w.ExpiresAt).UTC(),
		OriginURL:   string(w.Origin),
	}, nil
}

func corrupted(userID, details string, cause error) error {
	err := domain.ErrRecordCorrupted.WithDetails(fmt.Sprintf("user %q: %s", userID, details))
	if cause != nil {
		return err.WithCause(cause)
	}
	return err
}
