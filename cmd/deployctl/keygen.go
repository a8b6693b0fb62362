package main

import (
	"fmt"
	"io"

	"github.com/gagliardetto/solana-go"
)

// keygen imprime um novo par de chaves; a chave pública é o endereço usado
// no cabeçalho X-Caller.
func keygen(w io.Writer) error {
	wallet := solana.NewWallet()
	_, err := fmt.Fprintf(w, "Address:     %s\nPrivate key: %s\n", wallet.PublicKey(), wallet.PrivateKey)
	return err
}
