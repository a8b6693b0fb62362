// Package artifacts grava os arquivos de implantação consumidos pelo
// front-end: <nome>-address.json e <nome>.json.
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ferreirogomes/nftmarket/models"
)

// AddressFile é o conteúdo de <nome>-address.json.
type AddressFile struct {
	Address models.Address `json:"address"`
}

// Save grava o endereço e o descritor do contrato em dir, criando o
// diretório se preciso.
func Save(dir string, c models.Contract, d models.Descriptor) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("falha ao criar %s: %w", dir, err)
	}
	if err := writeJSON(filepath.Join(dir, c.Name+"-address.json"), AddressFile{Address: c.Address}); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, c.Name+".json"), d)
}

// ReadAddress lê o endereço gravado por Save.
func ReadAddress(dir, name string) (models.Address, error) {
	data, err := os.ReadFile(filepath.Join(dir, name+"-address.json"))
	if err != nil {
		return models.ZeroAddress, err
	}
	var f AddressFile
	if err := json.Unmarshal(data, &f); err != nil {
		return models.ZeroAddress, fmt.Errorf("arquivo de endereço inválido: %w", err)
	}
	return f.Address, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("falha ao gravar %s: %w", path, err)
	}
	return nil
}

// Source fornece os contratos implantados e seus descritores.
type Source interface {
	Contracts() []models.Contract
	Contract(name string) (models.Contract, models.Descriptor, error)
}

// SaveAll grava os artefatos de todos os contratos de src.
func SaveAll(dir string, src Source) error {
	for _, c := range src.Contracts() {
		c, d, err := src.Contract(c.Name)
		if err != nil {
			return err
		}
		if err := Save(dir, c, d); err != nil {
			return err
		}
	}
	return nil
}
