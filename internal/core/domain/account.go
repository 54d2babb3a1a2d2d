package domain

import (
	"github.com/tonpay/events/internal/core/address"
)

// Account is the multi-representation form of an on-chain account. Base64URL
// is derived from the raw pair and is never the source of truth.
type Account struct {
	WorkchainID int32  `json:"workchainId"`
	Hex         string `json:"hex"`
	Base64URL   string `json:"base64url"`
}

// NewAccount builds an Account from a stored raw pair, deriving the canonical
// packed form. Returns address.ErrInvalidAddress when the pair is malformed;
// callers treat that as corrupted data, not a transient failure.
func NewAccount(workchainID int32, hex string) (Account, error) {
	packed, err := address.Pack(workchainID, hex)
	if err != nil {
		return Account{}, err
	}
	return Account{
		WorkchainID: workchainID,
		Hex:         hex,
		Base64URL:   packed,
	}, nil
}
