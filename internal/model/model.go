package model

import "time"

// Group is a named container of records. Identity is ID, assigned by the
// server on create.
type Group struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Comment   string    `json:"comment,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Record is a single stored credential. Title, Username and Secret are
// ciphertext on the wire and at rest; inside the cache they hold the
// decrypted values for the current session only.
type Record struct {
	ID        int64     `json:"id"`
	GroupID   int64     `json:"group_id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Username  string    `json:"username"`
	Secret    string    `json:"secret"`
	Link      string    `json:"link,omitempty"`
	Note      string    `json:"note,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`

	// Corrupted marks a record whose sensitive fields failed to decrypt
	// with the active session key. Such fields are blanked, never shown
	// as raw ciphertext.
	Corrupted bool `json:"-"`
}
