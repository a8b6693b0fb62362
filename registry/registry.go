// Package registry implementa o Asset Registry: tokens únicos, com dono e
// metadados imutáveis, transferíveis pelo dono ou por operadores aprovados.
package registry

import (
	"fmt"

	"github.com/ferreirogomes/nftmarket/models"
	"github.com/ferreirogomes/nftmarket/state"
)

// Registry opera sobre o StateDB compartilhado. Cada operação de escrita é
// tudo-ou-nada.
type Registry struct {
	db       *state.StateDB
	contract models.Contract
}

// New vincula o contrato implantado ao estado.
func New(db *state.StateDB, contract models.Contract) *Registry {
	return &Registry{db: db, contract: contract}
}

func (r *Registry) Address() models.Address { return r.contract.Address }
func (r *Registry) Name() string            { return r.contract.Name }
func (r *Registry) Symbol() string          { return r.contract.Symbol }

// TokenCount retorna quantos tokens já foram cunhados.
func (r *Registry) TokenCount() uint64 {
	return r.db.TokenCount()
}

func (r *Registry) token(id uint64) (models.Token, error) {
	t, ok := r.db.Token(id)
	if !ok {
		return models.Token{}, fmt.Errorf("%w: token %d doesn't exist", models.ErrNotFound, id)
	}
	return t, nil
}

// Mint cunha um token para caller e retorna o novo tokenId.
func (r *Registry) Mint(caller models.Address, metadataURI string) (uint64, error) {
	var id uint64
	err := r.db.Atomic(func() error {
		t := r.db.AddToken(r.contract.Address, caller, metadataURI)
		r.db.AddLog(models.NewTransferEvent(r.contract.Address, models.ZeroAddress, caller, t.ID))
		id = t.ID
		return nil
	})
	return id, err
}

// Token retorna o registro completo de um token.
func (r *Registry) Token(id uint64) (models.Token, error) {
	return r.token(id)
}

// OwnerOf retorna o dono atual do token.
func (r *Registry) OwnerOf(id uint64) (models.Address, error) {
	t, err := r.token(id)
	if err != nil {
		return models.ZeroAddress, err
	}
	return t.Owner, nil
}

// TokenURI retorna o URI de metadados do token.
func (r *Registry) TokenURI(id uint64) (string, error) {
	t, err := r.token(id)
	if err != nil {
		return "", err
	}
	return t.MetadataURI, nil
}

// BalanceOf conta os tokens de owner.
func (r *Registry) BalanceOf(owner models.Address) uint64 {
	return uint64(len(r.db.TokensOf(owner)))
}

// TokensOf lista os tokens de owner.
func (r *Registry) TokensOf(owner models.Address) []models.Token {
	return r.db.TokensOf(owner)
}

// SetApprovalForAll concede ou revoga a permissão de operator para transferir
// qualquer token de caller. É idempotente.
func (r *Registry) SetApprovalForAll(caller, operator models.Address, approved bool) error {
	if caller == operator {
		return fmt.Errorf("%w: approve to caller", models.ErrNotApproved)
	}
	return r.db.Atomic(func() error {
		r.db.SetOperator(caller, operator, approved)
		r.db.AddLog(models.NewApprovalForAllEvent(r.contract.Address, caller, operator, approved))
		return nil
	})
}

// IsApprovedForAll informa se operator tem permissão geral sobre owner.
func (r *Registry) IsApprovedForAll(owner, operator models.Address) bool {
	return r.db.IsOperator(owner, operator)
}

// Approve aprova to para transferir um único token. Apenas o dono ou um
// operador do dono pode aprovar.
func (r *Registry) Approve(caller, to models.Address, id uint64) error {
	return r.db.Atomic(func() error {
		t, err := r.token(id)
		if err != nil {
			return err
		}
		if to == t.Owner {
			return fmt.Errorf("%w: approval to current owner", models.ErrNotApproved)
		}
		if caller != t.Owner && !r.db.IsOperator(t.Owner, caller) {
			return fmt.Errorf("%w: caller is not token owner or approved for all", models.ErrNotApproved)
		}
		r.db.SetTokenApproval(id, to)
		r.db.AddLog(models.NewApprovalEvent(r.contract.Address, t.Owner, to, id))
		return nil
	})
}

// GetApproved retorna a conta aprovada para o token (zero se nenhuma).
func (r *Registry) GetApproved(id uint64) (models.Address, error) {
	if _, err := r.token(id); err != nil {
		return models.ZeroAddress, err
	}
	return r.db.TokenApproval(id), nil
}

// TransferFrom move o token de from para to. caller precisa ser from, um
// operador de from ou a conta aprovada para o token. A aprovação do token é
// limpa na transferência.
func (r *Registry) TransferFrom(caller, from, to models.Address, id uint64) error {
	return r.db.Atomic(func() error {
		t, err := r.token(id)
		if err != nil {
			return err
		}
		if t.Owner != from {
			return fmt.Errorf("%w: transfer from incorrect owner", models.ErrNotOwner)
		}
		approved := r.db.TokenApproval(id)
		if caller != from && !r.db.IsOperator(from, caller) && (approved.IsZero() || approved != caller) {
			return fmt.Errorf("%w: caller is not token owner or approved", models.ErrNotApproved)
		}
		if to.IsZero() {
			return fmt.Errorf("%w: transfer to the zero address", models.ErrInvalidAddress)
		}
		r.db.SetTokenApproval(id, models.ZeroAddress)
		r.db.SetOwner(id, to)
		r.db.AddLog(models.NewTransferEvent(r.contract.Address, from, to, id))
		return nil
	})
}
