package models

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// DefaultDecimals é a precisão usada para converter valores de exibição
// (ex.: "1.5") em unidades base.
const DefaultDecimals = 18

// ParseUnits converte um valor decimal em unidades base inteiras, rejeitando
// frações abaixo da precisão, valores negativos e estouro de uint64.
func ParseUnits(value string, decimals int32) (uint64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("valor inválido %q: %w", value, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("valor negativo %q", value)
	}
	scaled := d.Shift(decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("valor %q tem mais de %d casas decimais", value, decimals)
	}
	bi := scaled.BigInt()
	if !bi.IsUint64() {
		return 0, fmt.Errorf("%w: %q", ErrOverflow, value)
	}
	return bi.Uint64(), nil
}

// FormatUnits é o inverso de ParseUnits.
func FormatUnits(amount uint64, decimals int32) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -decimals).String()
}
