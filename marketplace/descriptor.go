package marketplace

import "github.com/ferreirogomes/nftmarket/models"

// Descriptor retorna o descritor de interface do Marketplace.
func (m *Marketplace) Descriptor() models.Descriptor {
	return Descriptor(m.contract.Name)
}

func Descriptor(name string) models.Descriptor {
	p := func(n, t string) models.Param { return models.Param{Name: n, Type: t} }
	item := []models.Param{
		p("itemId", "uint64"), p("nft", "address"), p("tokenId", "uint64"),
		p("price", "uint64"), p("seller", "address"), p("sold", "bool"),
	}
	return models.Descriptor{
		ContractName: name,
		Kind:         models.KindMarketplace,
		Methods: []models.Method{
			{Name: "feeAccount", Outputs: []models.Param{p("", "address")}},
			{Name: "feePercent", Outputs: []models.Param{p("", "uint64")}},
			{Name: "itemCount", Outputs: []models.Param{p("", "uint64")}},
			{Name: "items", Inputs: []models.Param{p("itemId", "uint64")}, Outputs: item},
			{Name: "makeItem", Inputs: []models.Param{p("nft", "address"), p("tokenId", "uint64"), p("price", "uint64")}, Outputs: []models.Param{p("itemId", "uint64")}, Mutating: true},
			{Name: "getTotalPrice", Inputs: []models.Param{p("itemId", "uint64")}, Outputs: []models.Param{p("", "uint64")}},
			{Name: "purchaseItem", Inputs: []models.Param{p("itemId", "uint64")}, Mutating: true, Payable: true},
		},
		Events: []models.EventSpec{
			{Name: models.EventOffered, Inputs: []models.Param{
				p("itemId", "uint64"), p("nft", "address"), p("tokenId", "uint64"), p("price", "uint64"), p("seller", "address"),
			}},
			{Name: models.EventBought, Inputs: []models.Param{
				p("itemId", "uint64"), p("nft", "address"), p("tokenId", "uint64"), p("price", "uint64"), p("seller", "address"), p("buyer", "address"),
			}},
		},
	}
}
