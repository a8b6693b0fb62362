package models

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Address identifica uma conta ou um contrato. Usa chaves públicas ed25519
// codificadas em base58.
type Address = solana.PublicKey

// ZeroAddress representa "nenhuma conta" (ex.: origem de um mint).
var ZeroAddress Address

// ParseAddress decodifica um endereço base58.
func ParseAddress(s string) (Address, error) {
	addr, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return ZeroAddress, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}
	return addr, nil
}

// NewAddress gera um endereço novo a partir de uma carteira aleatória.
func NewAddress() Address {
	return solana.NewWallet().PublicKey()
}
