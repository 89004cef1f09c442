// Package uuid generates the time-ordered identifiers used for records and users.
package uuid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	googleuuid "github.com/google/uuid"
)

// New generates a UUIDv7 for the current time.
func New() string {
	return At(time.Now())
}

// At generates a UUIDv7 whose timestamp is t. Callers with an injected
// clock use it so identifiers sort with the clock's notion of time.
//
// Layout: 48 bits of Unix milliseconds, 4 version bits (0111),
// 12 random bits, 2 variant bits (10), 62 random bits.
func At(t time.Time) string {
	var id [16]byte

	binary.BigEndian.PutUint64(id[0:8], uint64(t.UnixMilli())<<16)

	if _, err := rand.Read(id[6:]); err != nil {
		// Fallback to standard UUIDv4 if random generation fails
		return googleuuid.New().String()
	}

	id[6] = (id[6] & 0x0f) | 0x70
	id[8] = (id[8] & 0x3f) | 0x80

	return format(id)
}

func format(id [16]byte) string {
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		binary.BigEndian.Uint32(id[0:4]),
		binary.BigEndian.Uint16(id[4:6]),
		binary.BigEndian.Uint16(id[6:8]),
		binary.BigEndian.Uint16(id[8:10]),
		id[10:16],
	)
}

// IsValid checks if a string is a valid UUID
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
