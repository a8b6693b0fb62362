package models

import "errors"

// Tipos de erro das operações. Falhas são retornadas como
// fmt.Errorf("%w: mensagem", Err...) e classificadas com errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrNotOwner            = errors.New("not owner")
	ErrNotApproved         = errors.New("not approved")
	ErrInvalidPrice        = errors.New("invalid price")
	ErrAlreadySold         = errors.New("already sold")
	ErrInsufficientPayment = errors.New("insufficient payment")

	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrOverflow          = errors.New("amount overflow")
	ErrInvalidAddress    = errors.New("invalid address")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrNotFound, "NotFound"},
	{ErrNotOwner, "NotOwner"},
	{ErrNotApproved, "NotApproved"},
	{ErrInvalidPrice, "InvalidPrice"},
	{ErrAlreadySold, "AlreadySold"},
	{ErrInsufficientPayment, "InsufficientPayment"},
	{ErrInsufficientFunds, "InsufficientFunds"},
	{ErrOverflow, "Overflow"},
	{ErrInvalidAddress, "InvalidAddress"},
}

// ErrorKind retorna o nome do tipo de erro de err, ou "Internal" se err não
// envolve nenhum dos erros acima.
func ErrorKind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Internal"
}
