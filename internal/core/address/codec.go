package address

import (
	"errors"
	"fmt"

	"github.com/tonkeeper/tongo/ton"
)

// Packing flags are fixed per deployment so that every account has exactly
// one canonical form.
const (
	bounceable = true
	testnet    = false
)

// ErrInvalidAddress is returned when a stored (workchain, hex) pair is not a
// valid account address. Seeing it for data already accepted into storage
// means the data is corrupted upstream.
var ErrInvalidAddress = errors.New("invalid account address")

// Pack converts a raw (workchain, hex body) pair into the canonical packed
// base64url address published by the API. Deterministic, no side effects.
func Pack(workchainID int32, hex string) (string, error) {
	if workchainID != -1 && workchainID != 0 {
		return "", fmt.Errorf("%w: unsupported workchain %d", ErrInvalidAddress, workchainID)
	}

	account, err := ton.ParseAccountID(fmt.Sprintf("%d:%s", workchainID, hex))
	if err != nil {
		return "", fmt.Errorf("%w: %d:%s", ErrInvalidAddress, workchainID, hex)
	}

	return account.ToHuman(bounceable, testnet), nil
}
