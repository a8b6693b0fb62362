package models

// Token representa um ativo digital único registrado no Registry.
type Token struct {
	ID          uint64  `json:"id"`
	Registry    Address `json:"registry"`     // Endereço do Registry que cunhou o token
	Owner       Address `json:"owner"`        // Dono atual; sempre existe exatamente um
	MetadataURI string  `json:"metadata_uri"` // Imutável após o mint
}

// TokenRef identifica um token específico dentro de um Registry.
type TokenRef struct {
	Registry Address `json:"registry"`
	TokenID  uint64  `json:"token_id"`
}
