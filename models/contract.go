package models

import "time"

type ContractKind string

const (
	KindRegistry    ContractKind = "registry"
	KindMarketplace ContractKind = "marketplace"
)

// Contract é o registro de implantação de um Registry ou Marketplace.
type Contract struct {
	Name       string       `json:"name"`
	Kind       ContractKind `json:"kind"`
	Address    Address      `json:"address"`
	Deployer   Address      `json:"deployer"`              // Para o Marketplace, é a conta de taxas
	FeePercent uint64       `json:"fee_percent,omitempty"` // Apenas Marketplace
	Symbol     string       `json:"symbol,omitempty"`      // Apenas Registry
	DeployedAt time.Time    `json:"deployed_at"`
}

// Param descreve um argumento ou retorno de método, ou um campo de evento.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Method descreve uma operação exposta por um contrato.
type Method struct {
	Name     string  `json:"name"`
	Inputs   []Param `json:"inputs"`
	Outputs  []Param `json:"outputs"`
	Mutating bool    `json:"mutating"`
	Payable  bool    `json:"payable,omitempty"`
}

// EventSpec descreve um evento; Inputs define a ordem dos Args.
type EventSpec struct {
	Name   string  `json:"name"`
	Inputs []Param `json:"inputs"`
}

// Descriptor é o descritor de interface publicado para o front-end.
type Descriptor struct {
	ContractName string       `json:"contractName"`
	Kind         ContractKind `json:"kind"`
	Methods      []Method     `json:"methods"`
	Events       []EventSpec  `json:"events"`
}
