package domain

import "time"

// Account models an authenticated caller of the API. The Address is the
// on-ledger identity minted at registration; everything the treasury records
// is keyed by it, never by the username.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Address      Identity  `json:"address"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
