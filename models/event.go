package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	EventTransfer       = "Transfer"
	EventApproval       = "Approval"
	EventApprovalForAll = "ApprovalForAll"
	EventOffered        = "Offered"
	EventBought         = "Bought"
)

// Event é uma notificação emitida por um contrato. Args segue exatamente a
// ordem dos campos declarada no descritor do evento.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Seq       uint64    `json:"seq"` // Posição no log global, a partir de 1
	Contract  Address   `json:"contract"`
	Name      string    `json:"name"`
	Args      []string  `json:"args"`
	CreatedAt time.Time `json:"created_at"`
}

func newEvent(contract Address, name string, args ...string) Event {
	return Event{
		ID:        uuid.New(),
		Contract:  contract,
		Name:      name,
		Args:      args,
		CreatedAt: time.Now().UTC(),
	}
}

func u64(v uint64) string { return strconv.FormatUint(v, 10) }

// NewTransferEvent cria Transfer(from, to, tokenId). Um mint usa from zero.
func NewTransferEvent(registry, from, to Address, tokenID uint64) Event {
	return newEvent(registry, EventTransfer, from.String(), to.String(), u64(tokenID))
}

// NewApprovalEvent cria Approval(owner, approved, tokenId).
func NewApprovalEvent(registry, owner, approved Address, tokenID uint64) Event {
	return newEvent(registry, EventApproval, owner.String(), approved.String(), u64(tokenID))
}

// NewApprovalForAllEvent cria ApprovalForAll(owner, operator, approved).
func NewApprovalForAllEvent(registry, owner, operator Address, approved bool) Event {
	return newEvent(registry, EventApprovalForAll, owner.String(), operator.String(), strconv.FormatBool(approved))
}

// NewOfferedEvent cria Offered(itemId, nft, tokenId, price, seller).
func NewOfferedEvent(market Address, item Item) Event {
	return newEvent(market, EventOffered,
		u64(item.ID), item.NFT.String(), u64(item.TokenID), u64(item.Price), item.Seller.String())
}

// NewBoughtEvent cria Bought(itemId, nft, tokenId, price, seller, buyer).
func NewBoughtEvent(market Address, item Item, buyer Address) Event {
	return newEvent(market, EventBought,
		u64(item.ID), item.NFT.String(), u64(item.TokenID), u64(item.Price), item.Seller.String(), buyer.String())
}
