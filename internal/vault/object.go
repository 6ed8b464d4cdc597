package vault

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Object represents one stored payload plus its access policy and audit trail.
type Object struct {
	ID   string `db:"id" json:"id"`     // Opaque access token, assigned once at creation
	Name string `db:"name" json:"name"` // Display filename, used for content hints only

	PasswordHash string `db:"password_hash" json:"password_hash,omitempty"` // bcrypt hash; empty means no password gate
	SelfDestruct bool   `db:"self_destruct" json:"self_destruct"`           // One wrong password submission destroys the object

	Countdown  *int       `db:"countdown" json:"countdown,omitempty"`     // Remaining permitted serves; nil means unlimited
	ValidUntil *time.Time `db:"valid_until" json:"valid_until,omitempty"` // Absolute expiry; nil means no time limit

	CreatedAt     time.Time  `db:"created_at" json:"created_at"`             // Timestamp when the object was created
	AccessedTimes int        `db:"accessed_times" json:"accessed_times"`     // Number of successful serves
	AccessedAt    *time.Time `db:"accessed_at" json:"accessed_at,omitempty"` // Timestamp of the last successful serve

	RemovedAt      *time.Time `db:"removed_at" json:"removed_at,omitempty"`           // Set exactly once at destruction, never cleared
	RemovedBecause Reason     `db:"removed_because" json:"removed_because,omitempty"` // Reason recorded at destruction

	Size        int64  `db:"size" json:"size"`                           // Payload length in bytes, recorded at creation
	ContentType string `db:"content_type" json:"content_type,omitempty"` // Detected at creation from the first payload bytes
}

// HasPassword reports whether a password gate is configured.
func (o *Object) HasPassword() bool {
	return o.PasswordHash != ""
}

// PasswordMatches checks a supplied credential against the stored hash.
// An object without a password never matches a supplied credential; the
// gate simply does not apply (see Evaluate).
func (o *Object) PasswordMatches(password string) bool {
	if !o.HasPassword() || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(o.PasswordHash), []byte(password)) == nil
}

// Expired reports whether the time window has passed at the given instant.
func (o *Object) Expired(now time.Time) bool {
	return o.ValidUntil != nil && now.After(*o.ValidUntil)
}

// Exhausted reports whether the countdown budget is spent.
func (o *Object) Exhausted() bool {
	return o.Countdown != nil && *o.Countdown <= 0
}

// Removed reports whether the object has already been destroyed.
func (o *Object) Removed() bool {
	return o.RemovedAt != nil
}

// HashPassword creates a bcrypt hash for storage in an Object record.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}
