// Package marketplace implementa o livro de ofertas: lista tokens em custódia,
// calcula preço total com taxa e liquida compras de forma atômica.
package marketplace

import (
	"fmt"
	"math/bits"

	"github.com/ferreirogomes/nftmarket/models"
	"github.com/ferreirogomes/nftmarket/state"
)

// TokenRegistry é a parte do Registry que o Marketplace usa para custódia e
// entrega dos tokens.
type TokenRegistry interface {
	Address() models.Address
	TransferFrom(caller, from, to models.Address, id uint64) error
}

// Marketplace opera sobre o mesmo StateDB do Registry. feeAccount e
// feePercent vêm do registro de implantação e nunca mudam.
type Marketplace struct {
	db         *state.StateDB
	contract   models.Contract
	registries map[models.Address]TokenRegistry
}

// New vincula o contrato implantado ao estado e aos Registries aceitos.
func New(db *state.StateDB, contract models.Contract, registries ...TokenRegistry) *Marketplace {
	m := &Marketplace{
		db:         db,
		contract:   contract,
		registries: make(map[models.Address]TokenRegistry, len(registries)),
	}
	for _, r := range registries {
		m.registries[r.Address()] = r
	}
	return m
}

func (m *Marketplace) Address() models.Address    { return m.contract.Address }
func (m *Marketplace) FeeAccount() models.Address { return m.contract.Deployer }
func (m *Marketplace) FeePercent() uint64         { return m.contract.FeePercent }

// ItemCount retorna o último itemId atribuído.
func (m *Marketplace) ItemCount() uint64 {
	return m.db.ItemCount()
}

// Fee calcula floor(price * feePercent / 100) com intermediário de 128 bits.
func Fee(price, feePercent uint64) (uint64, error) {
	hi, lo := bits.Mul64(price, feePercent)
	if hi >= 100 {
		return 0, fmt.Errorf("%w: fee of %d at %d%%", models.ErrOverflow, price, feePercent)
	}
	fee, _ := bits.Div64(hi, lo, 100)
	return fee, nil
}

// TotalPrice calcula price + Fee(price, feePercent).
func TotalPrice(price, feePercent uint64) (uint64, error) {
	fee, err := Fee(price, feePercent)
	if err != nil {
		return 0, err
	}
	total, carry := bits.Add64(price, fee, 0)
	if carry != 0 {
		return 0, fmt.Errorf("%w: total price of %d at %d%%", models.ErrOverflow, price, feePercent)
	}
	return total, nil
}

func (m *Marketplace) item(id uint64) (models.Item, error) {
	it, ok := m.db.Item(id)
	if !ok {
		return models.Item{}, fmt.Errorf("%w: item doesn't exist", models.ErrNotFound)
	}
	return it, nil
}

// Item retorna a listagem com o id informado.
func (m *Marketplace) Item(id uint64) (models.Item, error) {
	return m.item(id)
}

// Items lista todas as listagens em ordem de id.
func (m *Marketplace) Items() []models.Item {
	return m.db.Items()
}

// MakeItem lista o token ref por price, puxando-o de caller para custódia do
// Marketplace. caller precisa ser o dono e ter aprovado o Marketplace.
func (m *Marketplace) MakeItem(caller models.Address, ref models.TokenRef, price uint64) (uint64, error) {
	var id uint64
	err := m.db.Atomic(func() error {
		if price == 0 {
			return fmt.Errorf("%w: Price must be greater than zero", models.ErrInvalidPrice)
		}
		if _, err := TotalPrice(price, m.contract.FeePercent); err != nil {
			return fmt.Errorf("%w: %v", models.ErrInvalidPrice, err)
		}
		reg, ok := m.registries[ref.Registry]
		if !ok {
			return fmt.Errorf("%w: registry %s is not accepted", models.ErrNotFound, ref.Registry)
		}
		if err := reg.TransferFrom(m.contract.Address, caller, m.contract.Address, ref.TokenID); err != nil {
			return err
		}
		it := m.db.AddItem(models.Item{
			NFT:     ref.Registry,
			TokenID: ref.TokenID,
			Seller:  caller,
			Price:   price,
		})
		m.db.AddLog(models.NewOfferedEvent(m.contract.Address, it))
		id = it.ID
		return nil
	})
	return id, err
}

// GetTotalPrice retorna o valor exato exigido para comprar o item.
func (m *Marketplace) GetTotalPrice(id uint64) (uint64, error) {
	it, err := m.item(id)
	if err != nil {
		return 0, err
	}
	return TotalPrice(it.Price, m.contract.FeePercent)
}

// PurchaseItem liquida a compra do item por buyer pagando payment. As
// validações seguem a ordem: existência, item não vendido, pagamento
// suficiente. O excedente acima do preço total fica com o Marketplace.
func (m *Marketplace) PurchaseItem(buyer models.Address, id uint64, payment uint64) (models.Item, error) {
	var sold models.Item
	err := m.db.Atomic(func() error {
		it, err := m.item(id)
		if err != nil {
			return err
		}
		if it.Sold {
			return fmt.Errorf("%w: item already sold", models.ErrAlreadySold)
		}
		total, err := TotalPrice(it.Price, m.contract.FeePercent)
		if err != nil {
			return err
		}
		if payment < total {
			return fmt.Errorf("%w: not enough ether to cover item price and market fee", models.ErrInsufficientPayment)
		}
		reg, ok := m.registries[it.NFT]
		if !ok {
			return fmt.Errorf("%w: registry %s is not accepted", models.ErrNotFound, it.NFT)
		}

		it.Sold = true
		it.Buyer = buyer
		m.db.SetItem(it)

		if err := m.db.SubBalance(buyer, payment); err != nil {
			return err
		}
		if err := m.db.AddBalance(it.Seller, it.Price); err != nil {
			return err
		}
		if err := m.db.AddBalance(m.contract.Deployer, total-it.Price); err != nil {
			return err
		}
		if err := m.db.AddBalance(m.contract.Address, payment-total); err != nil {
			return err
		}
		if err := reg.TransferFrom(m.contract.Address, m.contract.Address, buyer, it.TokenID); err != nil {
			return err
		}
		m.db.AddLog(models.NewBoughtEvent(m.contract.Address, it, buyer))
		sold = it
		return nil
	})
	return sold, err
}
