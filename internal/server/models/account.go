// Package models holds the persisted entities of the Linkup server.
package models

import (
	"database/sql"
	"time"
)

// Account status values. An account starts pending and becomes active on its
// first successful OTP redemption; it never transitions back.
const (
	StatusPendingVerification = "pending_verification"
	StatusActive              = "active"
)

// Account is the sole persisted entity of the credential subsystem.
//
// OTPCode and OTPExpiresAt are a pair: either both set (a challenge is
// outstanding) or both null. They must be cleared together, never
// independently. PasswordHash is always a one-way digest; the plaintext is
// never stored.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Status       string
	OTPCode      sql.NullString
	OTPExpiresAt sql.NullTime

	// Derived counters, maintained by collaborators outside this core.
	PostsCount     int
	FollowersCount int
	FollowingCount int

	// Revision guards concurrent read-modify-write cycles; the store rejects
	// updates carrying a stale revision.
	Revision  int64
	CreatedAt time.Time
}

// SetOTP arms a fresh challenge, replacing any outstanding one.
func (a *Account) SetOTP(code string, expiresAt time.Time) {
	a.OTPCode = sql.NullString{String: code, Valid: true}
	a.OTPExpiresAt = sql.NullTime{Time: expiresAt, Valid: true}
}

// ClearOTP removes the outstanding challenge.
func (a *Account) ClearOTP() {
	a.OTPCode = sql.NullString{}
	a.OTPExpiresAt = sql.NullTime{}
}

// HasOTP reports whether a challenge is outstanding.
func (a *Account) HasOTP() bool {
	return a.OTPCode.Valid && a.OTPExpiresAt.Valid
}

// Profile is the public view of an account. It never includes the password
// hash or OTP state.
type Profile struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	PostsCount     int    `json:"postsCount"`
	FollowersCount int    `json:"followersCount"`
	FollowingCount int    `json:"followingCount"`
}

// Profile returns the public view of the account.
func (a *Account) Profile() *Profile {
	return &Profile{
		ID:             a.ID,
		Name:           a.Name,
		Email:          a.Email,
		PostsCount:     a.PostsCount,
		FollowersCount: a.FollowersCount,
		FollowingCount: a.FollowingCount,
	}
}
