package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ferreirogomes/nftmarket/artifacts"
	"github.com/ferreirogomes/nftmarket/models"
)

func TestDeployWritesArtifacts(t *testing.T) {
	out := filepath.Join(t.TempDir(), "contractsData")
	deployer := models.NewAddress()
	cfg := &deployConfig{
		FeePercent:     1,
		RegistryName:   "NFT11",
		RegistrySymbol: "11th",
		Deployer:       deployer.String(),
		Out:            out,
	}
	require.NoError(t, deploy(cfg, zap.NewNop()))

	for _, name := range []string{"NFT11", "Marketplace"} {
		addr, err := artifacts.ReadAddress(out, name)
		require.NoError(t, err, name)
		assert.False(t, addr.IsZero())
		assert.FileExists(t, filepath.Join(out, name+".json"))
	}
}

func TestDeployRejectsBadDeployer(t *testing.T) {
	err := deploy(&deployConfig{Deployer: "not-a-key", Out: t.TempDir()}, zap.NewNop())
	assert.ErrorIs(t, err, models.ErrInvalidAddress)
}

func TestUnits(t *testing.T) {
	var buf bytes.Buffer
	cfg := &unitsConfig{Decimals: 18}
	cfg.Args.Value = "1.5"
	require.NoError(t, units(cfg, &buf))
	assert.Equal(t, "1500000000000000000\n", buf.String())

	buf.Reset()
	cfg.Reverse = true
	cfg.Args.Value = "10000000000000000"
	require.NoError(t, units(cfg, &buf))
	assert.Equal(t, "0.01\n", buf.String())

	cfg.Reverse = false
	cfg.Args.Value = "0.0000000000000000001"
	assert.Error(t, units(cfg, &buf))
}

func TestKeygen(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, keygen(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	_, err := models.ParseAddress(strings.TrimSpace(strings.TrimPrefix(lines[0], "Address:")))
	assert.NoError(t, err)
}
