// Package password hashes and checks user passwords and enforces the
// password and email policies applied at registration and reset.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/crypto/pbkdf2"

	"fittrack/internal/models"
)

const (
	// DefaultIterations is the PBKDF2 work factor for new hashes.
	DefaultIterations = 10000
	// MinLength is the shortest accepted password.
	MinLength = 8

	saltBytes = 16
	keyBytes  = 32

	// legacySalt was appended to passwords before per-user salts existed.
	legacySalt = "DRD_FITNESS_SECURE_SALT_2025"

	specialChars = "@$!%*?&"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Decoy is a well-formed hash no password matches. Verifying against it
// costs the same as a real check.
var Decoy = models.PasswordHash{
	Salt: strings.Repeat("0", 2*saltBytes),
	Hash: strings.Repeat("0", 2*keyBytes),
}

// Hasher derives and verifies salted PBKDF2-SHA256 hashes.
type Hasher struct {
	iterations int
}

// NewHasher returns a Hasher using the given iteration count, or
// DefaultIterations when iterations is not positive.
func NewHasher(iterations int) *Hasher {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return &Hasher{iterations: iterations}
}

// Hash derives a hash of password under a fresh random salt.
func (h *Hasher) Hash(password string) (models.PasswordHash, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return models.PasswordHash{}, fmt.Errorf("failed to generate salt: %w", err)
	}
	saltHex := hex.EncodeToString(salt)
	return models.PasswordHash{
		Salt: saltHex,
		Hash: h.derive(password, saltHex),
	}, nil
}

// Verify reports whether password matches stored.
func (h *Hasher) Verify(password string, stored models.PasswordHash) bool {
	if stored.IsLegacy() {
		sum := sha256.Sum256([]byte(password + legacySalt))
		return constantTimeEqual(hex.EncodeToString(sum[:]), stored.Legacy)
	}
	if stored.Salt == "" || stored.Hash == "" {
		return false
	}
	return constantTimeEqual(h.derive(password, stored.Salt), stored.Hash)
}

func (h *Hasher) derive(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), h.iterations, keyBytes, sha256.New)
	return hex.EncodeToString(key)
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// IsStrong reports whether password satisfies the policy: at least
// MinLength characters drawn from letters, digits and "@$!%*?&", with at
// least one lowercase letter, uppercase letter, digit and special character.
func IsStrong(password string) bool {
	if len(password) < MinLength {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r > unicode.MaxASCII:
			return false
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}

// IsValidEmail reports whether email looks like a deliverable address.
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// NormalizeEmail trims and lower-cases an address for registry lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
