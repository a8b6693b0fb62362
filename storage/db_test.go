package storage_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ferreirogomes/nftmarket/models"
	"github.com/ferreirogomes/nftmarket/state"
	"github.com/ferreirogomes/nftmarket/storage"
)

func newTestDB(t *testing.T) *storage.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL_TEST")
	if dsn == "" {
		t.Skip("DATABASE_URL_TEST não definido")
	}
	db, err := storage.NewDB(context.Background(), dsn, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.Reset())
	t.Cleanup(func() { db.Close() })
	return db
}

// commit executa fn em um snapshot e persiste as mudanças, como o serviço faz.
func commit(t *testing.T, db *storage.DB, s *state.StateDB, fn func()) {
	t.Helper()
	rev := s.Snapshot()
	fn()
	require.NoError(t, db.Commit(context.Background(), s.Changes(rev)))
	s.Release(rev)
}

func TestCommitAndLoadRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	s := state.New()

	registry, market := models.NewAddress(), models.NewAddress()
	seller, buyer, operator := models.NewAddress(), models.NewAddress(), models.NewAddress()

	commit(t, db, s, func() {
		s.SetContract(models.Contract{Name: "NFT11", Kind: models.KindRegistry, Address: registry, Deployer: seller, Symbol: "11th"})
		s.SetContract(models.Contract{Name: "Marketplace", Kind: models.KindMarketplace, Address: market, Deployer: seller, FeePercent: 1})
		tok := s.AddToken(registry, seller, "Sample URI")
		s.AddLog(models.NewTransferEvent(registry, models.ZeroAddress, seller, tok.ID))
		s.SetOperator(seller, operator, true)
		s.SetTokenApproval(tok.ID, buyer)
		require.NoError(t, s.AddBalance(buyer, ^uint64(0)))
	})
	commit(t, db, s, func() {
		s.SetTokenApproval(1, models.ZeroAddress)
		s.SetOwner(1, market)
		it := s.AddItem(models.Item{NFT: registry, TokenID: 1, Seller: seller, Price: 1_000_000_000_000_000_000})
		s.AddLog(models.NewOfferedEvent(market, it))
	})
	commit(t, db, s, func() {
		it, _ := s.Item(1)
		it.Sold, it.Buyer = true, buyer
		s.SetItem(it)
	})

	loaded, err := db.Load(ctx)
	require.NoError(t, err)

	want := s.Dump()
	assert.Equal(t, want.Tokens, loaded.Tokens)
	assert.Equal(t, want.Items, loaded.Items)
	assert.ElementsMatch(t, want.Balances, loaded.Balances)
	assert.ElementsMatch(t, want.Operators, loaded.Operators)
	assert.Empty(t, loaded.TokenApprovals)
	require.Len(t, loaded.Events, 2)
	assert.Equal(t, want.Events[1].ID, loaded.Events[1].ID)
	assert.Equal(t, want.Events[1].Args, loaded.Events[1].Args)
	assert.Len(t, loaded.Contracts, 2)

	restored, err := state.Restore(loaded)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), restored.ItemCount())
	assert.Equal(t, ^uint64(0), restored.Balance(buyer))
}

func TestCommitIgnoresEmptyChangeSet(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Commit(context.Background(), &state.ChangeSet{}))
	require.NoError(t, db.Commit(context.Background(), nil))
}
