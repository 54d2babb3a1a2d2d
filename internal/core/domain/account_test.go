package domain

import (
	"errors"
	"testing"

	"github.com/tonpay/events/internal/core/address"
)

func TestNewAccount(t *testing.T) {
	hex := "33d4f7c7653efd9ac9b85a5d1cd5c5fbbd5a380c08a1a906cc3a27d9446b0e36"

	account, err := NewAccount(0, hex)
	if err != nil {
		t.Fatalf("NewAccount failed: %v", err)
	}
	if account.WorkchainID != 0 || account.Hex != hex {
		t.Errorf("raw pair not preserved: %+v", account)
	}
	if account.Base64URL == "" {
		t.Error("canonical form not derived")
	}

	// Canonical form must be recomputable from the raw pair
	packed, err := address.Pack(account.WorkchainID, account.Hex)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	if packed != account.Base64URL {
		t.Errorf("canonical form %q not recomputable (got %q)", account.Base64URL, packed)
	}
}

func TestNewAccount_Malformed(t *testing.T) {
	_, err := NewAccount(0, "zzzz")
	if !errors.Is(err, address.ErrInvalidAddress) {
		t.Errorf("NewAccount error = %v, want ErrInvalidAddress", err)
	}
}
