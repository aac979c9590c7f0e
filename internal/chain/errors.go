// internal/chain/errors.go
package chain

import (
	"errors"
	"strings"
)

var (
	// ErrAccountNotFound means the account does not exist at the queried
	// commitment. Distinct from a malformed account, which is a hard error.
	ErrAccountNotFound = errors.New("account not found")

	// ErrMalformedAccount means the account exists but its data failed to
	// decode into the expected layout.
	ErrMalformedAccount = errors.New("account data malformed")

	// ErrBlockhashExpired means the reference blockhash of a submitted
	// transaction passed its last valid height before confirmation.
	ErrBlockhashExpired = errors.New("blockhash expired before confirmation")
)

// IsNotFound reports whether err is a "not found" condition, either our
// sentinel or the RPC layer's message.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAccountNotFound) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}
