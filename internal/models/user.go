package models

import (
	"encoding/json"
	"time"
)

// PasswordHash is a salted PBKDF2 digest. Records written by the first
// release hold a bare SHA-256 hex string instead; it is kept in Legacy.
type PasswordHash struct {
	Salt   string `json:"salt"`
	Hash   string `json:"hash"`
	Legacy string `json:"-"`
}

// IsLegacy reports whether the hash uses the unsalted format.
func (p PasswordHash) IsLegacy() bool {
	return p.Legacy != "" && p.Salt == ""
}

// MarshalJSON writes legacy hashes back as plain strings.
func (p PasswordHash) MarshalJSON() ([]byte, error) {
	if p.IsLegacy() {
		return json.Marshal(p.Legacy)
	}
	type plain PasswordHash
	return json.Marshal(plain(p))
}

// UnmarshalJSON accepts both the object and the legacy string form.
func (p *PasswordHash) UnmarshalJSON(data []byte) error {
	var legacy string
	if err := json.Unmarshal(data, &legacy); err == nil {
		*p = PasswordHash{Legacy: legacy}
		return nil
	}
	type plain PasswordHash
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = PasswordHash(v)
	return nil
}

// User is a registry record. The registry is stored as one JSON document,
// so User has no table of its own.
type User struct {
	ID               string       `json:"id"`
	Email            string       `json:"email"`
	Password         PasswordHash `json:"password"`
	CreatedAt        time.Time    `json:"created"`
	TwoFactorEnabled bool         `json:"two_factor_enabled"`
	TwoFactorCode    string       `json:"two_factor_code,omitempty"`
	TwoFactorExpires *time.Time   `json:"two_factor_expires,omitempty"`
	FailedAttempts   int          `json:"failed_attempts"`
	LastFailedAt     *time.Time   `json:"last_failed_at,omitempty"`
	AccountLocked    bool         `json:"account_locked"`
	LockUntil        *time.Time   `json:"lock_until,omitempty"`
	LastLogin        *time.Time   `json:"last_login,omitempty"`
}

// IsLocked reports whether the account is locked at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.AccountLocked && u.LockUntil != nil && now.Before(*u.LockUntil)
}
