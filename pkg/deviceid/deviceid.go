// Package deviceid generates and checks device identifiers: 128-bit UUIDs
// encoded as unpadded base64url, 22 characters long.
package deviceid

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Length is the length of an encoded device ID.
const Length = 22

// ErrInvalidID is returned for strings that are not encoded device IDs.
var ErrInvalidID = errors.New("invalid device id")

var encoding = base64.RawURLEncoding

// Generate returns the deterministic ID for uniqueData in namespace
// (UUID version 5). The same inputs always produce the same ID.
func Generate(namespace uuid.UUID, uniqueData string) string {
	return Encode(uuid.NewSHA1(namespace, []byte(uniqueData)))
}

// Random returns a fresh random ID (UUID version 4).
func Random() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generating device id: %w", err)
	}
	return Encode(id), nil
}

// Encode returns the device ID form of a UUID.
func Encode(id uuid.UUID) string {
	return encoding.EncodeToString(id[:])
}

// Decode parses a device ID back into its UUID.
func Decode(id string) (uuid.UUID, error) {
	if len(id) != Length {
		return uuid.Nil, fmt.Errorf("%w: %q has length %d, want %d", ErrInvalidID, id, len(id), Length)
	}
	raw, err := encoding.DecodeString(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q: %v", ErrInvalidID, id, err)
	}
	u, err := uuid.FromBytes(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q: %v", ErrInvalidID, id, err)
	}
	return u, nil
}

// Validate checks that id is a well-formed device ID.
func Validate(id string) error {
	_, err := Decode(id)
	return err
}
