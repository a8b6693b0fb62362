package state

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferreirogomes/nftmarket/models"
)

func TestAtomicRevertsEverything(t *testing.T) {
	db := New()
	registry := models.NewAddress()
	alice := models.NewAddress()
	bob := models.NewAddress()

	require.NoError(t, db.AddBalance(alice, 100))
	tok := db.AddToken(registry, alice, "uri")

	boom := errors.New("boom")
	err := db.Atomic(func() error {
		db.AddToken(registry, bob, "second")
		db.SetOwner(tok.ID, bob)
		db.SetOperator(alice, bob, true)
		db.SetTokenApproval(tok.ID, bob)
		db.AddItem(models.Item{NFT: registry, TokenID: tok.ID, Seller: alice, Price: 5})
		require.NoError(t, db.SubBalance(alice, 40))
		require.NoError(t, db.AddBalance(bob, 40))
		db.AddLog(models.NewTransferEvent(registry, alice, bob, tok.ID))
		db.SetContract(models.Contract{Name: "NFT11", Address: registry})
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, uint64(1), db.TokenCount())
	got, ok := db.Token(tok.ID)
	require.True(t, ok)
	assert.Equal(t, alice, got.Owner)
	assert.False(t, db.IsOperator(alice, bob))
	assert.True(t, db.TokenApproval(tok.ID).IsZero())
	assert.Equal(t, uint64(0), db.ItemCount())
	assert.Equal(t, uint64(100), db.Balance(alice))
	assert.Equal(t, uint64(0), db.Balance(bob))
	assert.Empty(t, db.Logs(0, 0))
	_, ok = db.Contract("NFT11")
	assert.False(t, ok)
}

func TestNestedSnapshots(t *testing.T) {
	db := New()
	a := models.NewAddress()

	outer := db.Snapshot()
	require.NoError(t, db.AddBalance(a, 10))

	err := db.Atomic(func() error {
		require.NoError(t, db.AddBalance(a, 5))
		return nil
	})
	require.NoError(t, err)

	_ = db.Atomic(func() error {
		require.NoError(t, db.AddBalance(a, 1000))
		return errors.New("inner failure")
	})
	assert.Equal(t, uint64(15), db.Balance(a))

	cs := db.Changes(outer)
	require.Len(t, cs.Balances, 1)
	assert.Equal(t, uint64(15), cs.Balances[0].Amount)

	db.RevertToSnapshot(outer)
	assert.Equal(t, uint64(0), db.Balance(a))
}

func TestChangesOnlyCoverTouchedKeys(t *testing.T) {
	db := New()
	registry := models.NewAddress()
	alice := models.NewAddress()
	db.AddToken(registry, alice, "one")
	db.AddToken(registry, alice, "two")

	rev := db.Snapshot()
	db.SetOwner(2, registry)
	db.AddLog(models.NewTransferEvent(registry, alice, registry, 2))
	cs := db.Changes(rev)
	db.Release(rev)

	require.Len(t, cs.Tokens, 1)
	assert.Equal(t, uint64(2), cs.Tokens[0].ID)
	assert.Equal(t, registry, cs.Tokens[0].Owner)
	require.Len(t, cs.Events, 1)
	assert.Equal(t, uint64(1), cs.Events[0].Seq)
	assert.Empty(t, cs.Items)
	assert.False(t, cs.Empty())
}

func TestBalanceGuards(t *testing.T) {
	db := New()
	a := models.NewAddress()

	err := db.SubBalance(a, 1)
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)

	require.NoError(t, db.AddBalance(a, ^uint64(0)))
	err = db.AddBalance(a, 1)
	assert.ErrorIs(t, err, models.ErrOverflow)
}

func TestDumpRestoreRoundTrip(t *testing.T) {
	db := New()
	registry := models.NewAddress()
	alice := models.NewAddress()
	bob := models.NewAddress()
	db.AddToken(registry, alice, "a")
	db.SetOperator(alice, bob, true)
	db.SetTokenApproval(1, bob)
	db.AddItem(models.Item{NFT: registry, TokenID: 1, Seller: alice, Price: 7})
	require.NoError(t, db.AddBalance(bob, 9))
	db.AddLog(models.NewTransferEvent(registry, models.ZeroAddress, alice, 1))

	restored, err := Restore(db.Dump())
	require.NoError(t, err)
	assert.Equal(t, db.Dump(), restored.Dump())
	assert.True(t, restored.IsOperator(alice, bob))
	assert.Equal(t, bob, restored.TokenApproval(1))
}

func TestRestoreRejectsGaps(t *testing.T) {
	_, err := Restore(&ChangeSet{Tokens: []models.Token{{ID: 2}}})
	assert.Error(t, err)
}
