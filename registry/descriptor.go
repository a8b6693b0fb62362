package registry

import "github.com/ferreirogomes/nftmarket/models"

// Descriptor retorna o descritor de interface do Registry.
func (r *Registry) Descriptor() models.Descriptor {
	return Descriptor(r.contract.Name)
}

// Descriptor monta o descritor de interface para um Registry com o nome dado.
func Descriptor(name string) models.Descriptor {
	p := func(n, t string) models.Param { return models.Param{Name: n, Type: t} }
	return models.Descriptor{
		ContractName: name,
		Kind:         models.KindRegistry,
		Methods: []models.Method{
			{Name: "name", Outputs: []models.Param{p("", "string")}},
			{Name: "symbol", Outputs: []models.Param{p("", "string")}},
			{Name: "tokenCount", Outputs: []models.Param{p("", "uint64")}},
			{Name: "mint", Inputs: []models.Param{p("tokenURI", "string")}, Outputs: []models.Param{p("tokenId", "uint64")}, Mutating: true},
			{Name: "ownerOf", Inputs: []models.Param{p("tokenId", "uint64")}, Outputs: []models.Param{p("owner", "address")}},
			{Name: "tokenURI", Inputs: []models.Param{p("tokenId", "uint64")}, Outputs: []models.Param{p("", "string")}},
			{Name: "balanceOf", Inputs: []models.Param{p("owner", "address")}, Outputs: []models.Param{p("", "uint64")}},
			{Name: "approve", Inputs: []models.Param{p("to", "address"), p("tokenId", "uint64")}, Mutating: true},
			{Name: "getApproved", Inputs: []models.Param{p("tokenId", "uint64")}, Outputs: []models.Param{p("", "address")}},
			{Name: "setApprovalForAll", Inputs: []models.Param{p("operator", "address"), p("approved", "bool")}, Mutating: true},
			{Name: "isApprovedForAll", Inputs: []models.Param{p("owner", "address"), p("operator", "address")}, Outputs: []models.Param{p("", "bool")}},
			{Name: "transferFrom", Inputs: []models.Param{p("from", "address"), p("to", "address"), p("tokenId", "uint64")}, Mutating: true},
		},
		Events: []models.EventSpec{
			{Name: models.EventTransfer, Inputs: []models.Param{p("from", "address"), p("to", "address"), p("tokenId", "uint64")}},
			{Name: models.EventApproval, Inputs: []models.Param{p("owner", "address"), p("approved", "address"), p("tokenId", "uint64")}},
			{Name: models.EventApprovalForAll, Inputs: []models.Param{p("owner", "address"), p("operator", "address"), p("approved", "bool")}},
		},
	}
}
