package models

// Item representa uma listagem do Marketplace para exatamente um token.
type Item struct {
	ID      uint64  `json:"item_id"`
	NFT     Address `json:"nft"`      // Registry do token listado
	TokenID uint64  `json:"token_id"` // Token mantido em custódia até a venda
	Seller  Address `json:"seller"`
	Price   uint64  `json:"price"` // Em unidades base, sem a taxa
	Sold    bool    `json:"sold"`
	Buyer   Address `json:"buyer"` // Zero enquanto não vendido
}

// Ref retorna a referência ao token listado.
func (i Item) Ref() TokenRef {
	return TokenRef{Registry: i.NFT, TokenID: i.TokenID}
}
