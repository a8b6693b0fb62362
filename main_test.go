package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ferreirogomes/nftmarket/artifacts"
	"github.com/ferreirogomes/nftmarket/config"
	"github.com/ferreirogomes/nftmarket/handlers"
	"github.com/ferreirogomes/nftmarket/models"
	"github.com/ferreirogomes/nftmarket/storage"
)

type server struct {
	t       *testing.T
	baseURL string
	cancel  context.CancelFunc
	done    chan error
}

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return strconv.Itoa(l.Addr().(*net.TCPAddr).Port)
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Port:           freePort(t),
		FeePercent:     1,
		FeeAccount:     models.NewAddress().String(),
		RegistryName:   "NFT11",
		RegistrySymbol: "11th",
		ArtifactsDir:   filepath.Join(t.TempDir(), "contractsData"),
		LogLevel:       "info",
		Env:            "test",
	}
}

// startServer executa run em segundo plano e espera a API responder.
func startServer(t *testing.T, cfg *config.Config) *server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	s := &server{t: t, baseURL: "http://127.0.0.1:" + cfg.Port, cancel: cancel, done: make(chan error, 1)}
	go func() { s.done <- run(ctx, cfg, zap.NewNop()) }()

	client := http.Client{Timeout: time.Second}
	require.Eventually(t, func() bool {
		resp, err := client.Get(s.baseURL + "/contracts")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 50*time.Millisecond, "servidor não ficou pronto")
	return s
}

func (s *server) stop() {
	s.t.Helper()
	s.cancel()
	select {
	case err := <-s.done:
		assert.NoError(s.t, err)
	case <-time.After(15 * time.Second):
		s.t.Fatal("servidor não encerrou")
	}
}

func (s *server) call(method, path string, from models.Address, body any, out any) int {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.baseURL+path, &buf)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	if !from.IsZero() {
		req.Header.Set(handlers.CallerHeader, from.String())
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(s.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestServerEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	s := startServer(t, cfg)
	defer s.stop()

	nft, err := artifacts.ReadAddress(cfg.ArtifactsDir, "NFT11")
	require.NoError(t, err)
	market, err := artifacts.ReadAddress(cfg.ArtifactsDir, "Marketplace")
	require.NoError(t, err)

	seller, buyer := models.NewAddress(), models.NewAddress()
	var tok models.Token
	require.Equal(t, http.StatusCreated, s.call("POST", "/tokens", seller, handlers.MintRequest{MetadataURI: "Sample URI"}, &tok))
	require.Equal(t, http.StatusNoContent, s.call("POST", "/approvals", seller,
		handlers.ApprovalForAllRequest{Operator: market, Approved: true}, nil))

	var item models.Item
	require.Equal(t, http.StatusCreated, s.call("POST", "/items", seller,
		map[string]any{"nft": nft, "token_id": tok.ID, "price": 5000}, &item))

	var total handlers.TotalPriceResponse
	require.Equal(t, http.StatusOK, s.call("GET", fmt.Sprintf("/items/%d/total-price", item.ID), models.ZeroAddress, nil, &total))
	assert.Equal(t, uint64(5050), total.TotalPrice)

	require.Equal(t, http.StatusOK, s.call("POST", "/accounts/"+buyer.String()+"/deposit", models.ZeroAddress,
		map[string]any{"amount": total.TotalPrice}, nil))
	require.Equal(t, http.StatusOK, s.call("POST", fmt.Sprintf("/items/%d/purchase", item.ID), buyer,
		map[string]any{"payment": total.TotalPrice}, &item))
	assert.True(t, item.Sold)

	var acct handlers.AccountResponse
	require.Equal(t, http.StatusOK, s.call("GET", "/accounts/"+seller.String(), models.ZeroAddress, nil, &acct))
	assert.Equal(t, uint64(5000), acct.Balance)

	var fee handlers.AccountResponse
	require.Equal(t, http.StatusOK, s.call("GET", "/accounts/"+cfg.FeeAccount, models.ZeroAddress, nil, &fee))
	assert.Equal(t, uint64(50), fee.Balance)
}

func TestRestartKeepsState(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL_TEST")
	if dsn == "" {
		t.Skip("DATABASE_URL_TEST não definido")
	}
	db, err := storage.NewDB(context.Background(), dsn, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.Reset())
	db.Close()

	cfg := testConfig(t)
	cfg.DatabaseURL = dsn
	owner := models.NewAddress()

	s := startServer(t, cfg)
	var tok models.Token
	require.Equal(t, http.StatusCreated, s.call("POST", "/tokens", owner, handlers.MintRequest{MetadataURI: "Sample URI"}, &tok))
	before, err := artifacts.ReadAddress(cfg.ArtifactsDir, "Marketplace")
	require.NoError(t, err)
	s.stop()

	cfg.Port = freePort(t)
	s = startServer(t, cfg)
	defer s.stop()

	var again handlers.TokenResponse
	require.Equal(t, http.StatusOK, s.call("GET", "/tokens/1", models.ZeroAddress, nil, &again))
	assert.Equal(t, owner, again.Owner)
	after, err := artifacts.ReadAddress(cfg.ArtifactsDir, "Marketplace")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
