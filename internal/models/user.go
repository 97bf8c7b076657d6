package models

import (
	"fmt"
	"time"
)

// DefaultInitialTokens is the balance granted to a newly created user.
const DefaultInitialTokens = 5

// HarshnessLevel controls the tone intensity of generated roasts.
type HarshnessLevel string

const (
	HarshnessGentleTease   HarshnessLevel = "Gentle Tease"
	HarshnessStandardSnark HarshnessLevel = "Standard Snark"
	HarshnessBrutalHonesty HarshnessLevel = "Brutal Honesty"
	HarshnessInfernoMode   HarshnessLevel = "Inferno Mode"
)

// DefaultHarshnessLevel is applied when a user record is created.
const DefaultHarshnessLevel = HarshnessStandardSnark

var harshnessLevels = []HarshnessLevel{
	HarshnessGentleTease,
	HarshnessStandardSnark,
	HarshnessBrutalHonesty,
	HarshnessInfernoMode,
}

// HarshnessLevels returns the recognised levels, mildest first.
func HarshnessLevels() []HarshnessLevel {
	out := make([]HarshnessLevel, len(harshnessLevels))
	copy(out, harshnessLevels)
	return out
}

// ParseHarshnessLevel matches s exactly against the recognised levels.
func ParseHarshnessLevel(s string) (HarshnessLevel, error) {
	for _, l := range harshnessLevels {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unrecognised harshness level %q", s)
}

// Valid reports whether l is one of the recognised levels.
func (l HarshnessLevel) Valid() bool {
	_, err := ParseHarshnessLevel(string(l))
	return err == nil
}

// User is the local record for an authenticated identity.
// IdentityRef is the identity provider's subject and doubles as the record id.
type User struct {
	IdentityRef    string         `json:"identity_ref"`
	Email          string         `json:"email"`
	Tokens         int            `json:"tokens"`
	HarshnessLevel HarshnessLevel `json:"harshness_level"`
	CreatedAt      time.Time      `json:"created_at"`
	ModifiedAt     time.Time      `json:"modified_at"`
}

// NewUser returns a user with every default populated.
func NewUser(identityRef, email string, initialTokens int, now time.Time) *User {
	if initialTokens < 0 {
		initialTokens = 0
	}
	return &User{
		IdentityRef:    identityRef,
		Email:          email,
		Tokens:         initialTokens,
		HarshnessLevel: DefaultHarshnessLevel,
		CreatedAt:      now,
		ModifiedAt:     now,
	}
}
