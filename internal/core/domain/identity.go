package domain

import "time"

// Identity is a registered principal. It is created once by registration and
// never modified afterwards.
type Identity struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	PasswordDigest []byte    `json:"-"`
	Role           Role      `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

// Claims is the verified content of a session token.
type Claims struct {
	Subject   string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}
