package artifacts_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferreirogomes/nftmarket/artifacts"
	"github.com/ferreirogomes/nftmarket/marketplace"
	"github.com/ferreirogomes/nftmarket/models"
)

func TestSaveWritesAddressAndDescriptor(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "contractsData")
	c := models.Contract{Name: "Marketplace", Kind: models.KindMarketplace, Address: models.NewAddress()}

	require.NoError(t, artifacts.Save(dir, c, marketplace.Descriptor(c.Name)))

	addr, err := artifacts.ReadAddress(dir, "Marketplace")
	require.NoError(t, err)
	assert.Equal(t, c.Address, addr)

	raw, err := os.ReadFile(filepath.Join(dir, "Marketplace-address.json"))
	require.NoError(t, err)
	var generic map[string]string
	require.NoError(t, json.Unmarshal(raw, &generic))
	assert.Equal(t, map[string]string{"address": c.Address.String()}, generic)

	raw, err = os.ReadFile(filepath.Join(dir, "Marketplace.json"))
	require.NoError(t, err)
	var d models.Descriptor
	require.NoError(t, json.Unmarshal(raw, &d))
	assert.Equal(t, "Marketplace", d.ContractName)
	assert.NotEmpty(t, d.Methods)
}

func TestReadAddressMissing(t *testing.T) {
	_, err := artifacts.ReadAddress(t.TempDir(), "NFT11")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
