package models

import (
	"fmt"
	"strings"
	"time"
)

// User is a registered account. The credential hash is opaque to this
// package; hashing and comparison live in the identity package.
type User struct {
	id             string
	sequence       int
	email          string
	displayName    string
	credentialHash string
	createdAt      time.Time
	updatedAt      time.Time
	deletedAt      *time.Time
}

// NewUser creates a User. The ID is assigned by the repository at insertion time.
func NewUser(sequence int, email, displayName, credentialHash string) *User {
	now := time.Now()
	return &User{
		sequence:       sequence,
		email:          email,
		displayName:    displayName,
		credentialHash: credentialHash,
		createdAt:      now,
		updatedAt:      now,
	}
}

func (u *User) ID() string             { return u.id }
func (u *User) Sequence() int          { return u.sequence }
func (u *User) Email() string          { return u.email }
func (u *User) DisplayName() string    { return u.displayName }
func (u *User) CredentialHash() string { return u.credentialHash }
func (u *User) CreatedAt() time.Time   { return u.createdAt }
func (u *User) UpdatedAt() time.Time   { return u.updatedAt }
func (u *User) DeletedAt() *time.Time  { return u.deletedAt }

func (u *User) SetID(id string)            { u.id = id }
func (u *User) SetDisplayName(name string) { u.displayName = name }
func (u *User) SetCredentialHash(h string) { u.credentialHash = h }
func (u *User) SetCreatedAt(t time.Time)   { u.createdAt = t }
func (u *User) SetUpdatedAt(t time.Time)   { u.updatedAt = t }
func (u *User) SetDeletedAt(t *time.Time)  { u.deletedAt = t }

// Validate checks that required user fields are present.
func (u *User) Validate() error {
	if u.email == "" || !strings.Contains(u.email, "@") {
		return fmt.Errorf("valid email is required")
	}
	if u.displayName == "" {
		return fmt.Errorf("display name is required")
	}
	if u.credentialHash == "" {
		return fmt.Errorf("credential hash is required")
	}
	return nil
}
