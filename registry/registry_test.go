package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferreirogomes/nftmarket/models"
	"github.com/ferreirogomes/nftmarket/registry"
	"github.com/ferreirogomes/nftmarket/state"
)

const URI = "Sample URI"

func newRegistry(t *testing.T) (*registry.Registry, *state.StateDB) {
	t.Helper()
	db := state.New()
	c := models.Contract{Name: "NFT11", Symbol: "11th", Kind: models.KindRegistry, Address: models.NewAddress()}
	return registry.New(db, c), db
}

func TestNameAndSymbol(t *testing.T) {
	r, _ := newRegistry(t)
	assert.Equal(t, "NFT11", r.Name())
	assert.Equal(t, "11th", r.Symbol())
}

func TestMintTracksEachToken(t *testing.T) {
	r, db := newRegistry(t)
	addr1, addr2 := models.NewAddress(), models.NewAddress()

	id, err := r.Mint(addr1, URI)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
	assert.Equal(t, uint64(1), r.TokenCount())
	assert.Equal(t, uint64(1), r.BalanceOf(addr1))
	uri, err := r.TokenURI(1)
	require.NoError(t, err)
	assert.Equal(t, URI, uri)

	id, err = r.Mint(addr2, URI)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), id)
	assert.Equal(t, uint64(2), r.TokenCount())
	assert.Equal(t, uint64(1), r.BalanceOf(addr1))
	owner, err := r.OwnerOf(2)
	require.NoError(t, err)
	assert.Equal(t, addr2, owner)

	logs := db.Logs(0, 0)
	require.Len(t, logs, 2)
	assert.Equal(t, models.EventTransfer, logs[0].Name)
	assert.Equal(t, []string{models.ZeroAddress.String(), addr1.String(), "1"}, logs[0].Args)
}

func TestUnmintedTokenIsNotFound(t *testing.T) {
	r, _ := newRegistry(t)

	_, err := r.OwnerOf(1)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = r.TokenURI(0)
	assert.ErrorIs(t, err, models.ErrNotFound)
	err = r.TransferFrom(models.NewAddress(), models.NewAddress(), models.NewAddress(), 3)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTransferFromPermissions(t *testing.T) {
	r, db := newRegistry(t)
	owner, operator, stranger := models.NewAddress(), models.NewAddress(), models.NewAddress()
	_, err := r.Mint(owner, URI)
	require.NoError(t, err)

	err = r.TransferFrom(stranger, owner, stranger, 1)
	assert.ErrorIs(t, err, models.ErrNotApproved)

	err = r.TransferFrom(owner, stranger, owner, 1)
	assert.ErrorIs(t, err, models.ErrNotOwner)

	require.NoError(t, r.SetApprovalForAll(owner, operator, true))
	require.NoError(t, r.SetApprovalForAll(owner, operator, true))
	assert.True(t, r.IsApprovedForAll(owner, operator))

	logsBefore := len(db.Logs(0, 0))
	require.NoError(t, r.TransferFrom(operator, owner, operator, 1))
	got, _ := r.OwnerOf(1)
	assert.Equal(t, operator, got)
	logs := db.Logs(0, 0)
	require.Len(t, logs, logsBefore+1)
	assert.Equal(t, []string{owner.String(), operator.String(), "1"}, logs[len(logs)-1].Args)

	require.NoError(t, r.SetApprovalForAll(owner, operator, false))
	assert.False(t, r.IsApprovedForAll(owner, operator))
}

func TestSingleTokenApprovalIsClearedOnTransfer(t *testing.T) {
	r, _ := newRegistry(t)
	owner, spender, buyer := models.NewAddress(), models.NewAddress(), models.NewAddress()
	_, err := r.Mint(owner, URI)
	require.NoError(t, err)

	err = r.Approve(spender, spender, 1)
	assert.ErrorIs(t, err, models.ErrNotApproved)

	require.NoError(t, r.Approve(owner, spender, 1))
	approved, err := r.GetApproved(1)
	require.NoError(t, err)
	assert.Equal(t, spender, approved)

	require.NoError(t, r.TransferFrom(spender, owner, buyer, 1))
	approved, err = r.GetApproved(1)
	require.NoError(t, err)
	assert.True(t, approved.IsZero())

	err = r.TransferFrom(spender, buyer, spender, 1)
	assert.ErrorIs(t, err, models.ErrNotApproved)
}

func TestFailedTransferLeavesNoTrace(t *testing.T) {
	r, db := newRegistry(t)
	owner := models.NewAddress()
	_, err := r.Mint(owner, URI)
	require.NoError(t, err)
	before := db.Dump()

	err = r.TransferFrom(owner, owner, models.ZeroAddress, 1)
	require.ErrorIs(t, err, models.ErrInvalidAddress)
	assert.Equal(t, before, db.Dump())
}

func TestDescriptorListsEventsInFieldOrder(t *testing.T) {
	r, _ := newRegistry(t)
	d := r.Descriptor()
	assert.Equal(t, "NFT11", d.ContractName)
	require.NotEmpty(t, d.Events)
	assert.Equal(t, models.EventTransfer, d.Events[0].Name)
	assert.Equal(t, "from", d.Events[0].Inputs[0].Name)
}
