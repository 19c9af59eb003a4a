// Package waitlist implements durable storage for waitlist signups keyed
// by the provider-issued identity id.
package waitlist

import (
	"context"
	"regexp"
	"time"
)

// Entry represents one row on the waitlist.
type Entry struct {
	IdentityID    string     `json:"-"`
	Username      string     `json:"username"`
	DisplayName   string     `json:"display_name"`
	WalletAddress *string    `json:"wallet_address"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"-"`
}

// walletAddressPattern matches a 0x-prefixed 40-hex-digit address.
var walletAddressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// ValidWalletAddress reports whether s is a well-formed wallet address.
func ValidWalletAddress(s string) bool {
	return walletAddressPattern.MatchString(s)
}

// Store defines the waitlist persistence contract.
type Store interface {
	// Upsert inserts a new entry for identityID, or updates username and
	// displayName in place when the identity already exists. Atomic:
	// concurrent callbacks for the same identity never produce duplicate
	// rows. Callers cannot distinguish the insert path from the update path.
	Upsert(ctx context.Context, identityID, username, displayName string) error

	// UpdateWallet sets the wallet address for the entry matching username
	// and returns the number of rows affected. A missing username is not an
	// error; it reports 0 affected rows and writes nothing.
	UpdateWallet(ctx context.Context, username, walletAddress string) (int64, error)

	// Count returns the total number of entries.
	Count(ctx context.Context) (int, error)

	// List returns all entries ordered by creation time, newest first.
	List(ctx context.Context) ([]Entry, error)
}
