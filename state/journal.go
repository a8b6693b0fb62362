package state

import "github.com/ferreirogomes/nftmarket/models"

type revision struct {
	id           int
	journalIndex int
}

// journalEntry é uma modificação registrada no journal que pode ser desfeita.
type journalEntry interface {
	// revert desfaz a modificação introduzida pela entrada.
	revert(*StateDB)

	// dirty marca no conjunto as chaves alteradas pela entrada.
	dirty(*dirtySet)
}

// journal contém as modificações aplicadas desde o último Release externo.
type journal struct {
	entries []journalEntry
}

func newJournal() *journal {
	return &journal{}
}

func (j *journal) append(entry journalEntry) {
	j.entries = append(j.entries, entry)
}

// revert desfaz, em ordem inversa, todas as entradas a partir de snapshot.
func (j *journal) revert(db *StateDB, snapshot int) {
	for i := len(j.entries) - 1; i >= snapshot; i-- {
		j.entries[i].revert(db)
	}
	j.entries = j.entries[:snapshot]
}

func (j *journal) length() int {
	return len(j.entries)
}

func (j *journal) reset() {
	j.entries = nil
}

type dirtySet struct {
	tokens         map[uint64]struct{}
	items          map[uint64]struct{}
	balances       map[models.Address]struct{}
	operators      map[operatorKey]struct{}
	tokenApprovals map[uint64]struct{}
	contracts      map[string]struct{}
	firstLog       int // -1 quando nenhum evento foi emitido
}

func newDirtySet() *dirtySet {
	return &dirtySet{
		tokens:         make(map[uint64]struct{}),
		items:          make(map[uint64]struct{}),
		balances:       make(map[models.Address]struct{}),
		operators:      make(map[operatorKey]struct{}),
		tokenApprovals: make(map[uint64]struct{}),
		contracts:      make(map[string]struct{}),
		firstLog:       -1,
	}
}

type (
	addTokenChange struct {
		id uint64
	}
	ownerChange struct {
		id   uint64
		prev models.Address
	}
	tokenApprovalChange struct {
		id      uint64
		prev    models.Address
		existed bool
	}
	operatorChange struct {
		key     operatorKey
		prev    bool
		existed bool
	}
	addItemChange struct {
		id uint64
	}
	itemChange struct {
		prev models.Item
	}
	balanceChange struct {
		account models.Address
		prev    uint64
		existed bool
	}
	contractChange struct {
		prev    models.Contract
		name    string
		existed bool
	}
	addLogChange struct {
		index int
	}
)

func (ch addTokenChange) revert(db *StateDB) {
	db.tokens = db.tokens[:ch.id-1]
}

func (ch addTokenChange) dirty(d *dirtySet) {
	d.tokens[ch.id] = struct{}{}
}

func (ch ownerChange) revert(db *StateDB) {
	db.tokens[ch.id-1].Owner = ch.prev
}

func (ch ownerChange) dirty(d *dirtySet) {
	d.tokens[ch.id] = struct{}{}
}

func (ch tokenApprovalChange) revert(db *StateDB) {
	if ch.existed {
		db.tokenApprovals[ch.id] = ch.prev
	} else {
		delete(db.tokenApprovals, ch.id)
	}
}

func (ch tokenApprovalChange) dirty(d *dirtySet) {
	d.tokenApprovals[ch.id] = struct{}{}
}

func (ch operatorChange) revert(db *StateDB) {
	if ch.existed {
		db.operators[ch.key] = ch.prev
	} else {
		delete(db.operators, ch.key)
	}
}

func (ch operatorChange) dirty(d *dirtySet) {
	d.operators[ch.key] = struct{}{}
}

func (ch addItemChange) revert(db *StateDB) {
	db.items = db.items[:ch.id-1]
}

func (ch addItemChange) dirty(d *dirtySet) {
	d.items[ch.id] = struct{}{}
}

func (ch itemChange) revert(db *StateDB) {
	db.items[ch.prev.ID-1] = ch.prev
}

func (ch itemChange) dirty(d *dirtySet) {
	d.items[ch.prev.ID] = struct{}{}
}

func (ch balanceChange) revert(db *StateDB) {
	if ch.existed {
		db.balances[ch.account] = ch.prev
	} else {
		delete(db.balances, ch.account)
	}
}

func (ch balanceChange) dirty(d *dirtySet) {
	d.balances[ch.account] = struct{}{}
}

func (ch contractChange) revert(db *StateDB) {
	if ch.existed {
		db.contracts[ch.name] = ch.prev
	} else {
		delete(db.contracts, ch.name)
	}
}

func (ch contractChange) dirty(d *dirtySet) {
	d.contracts[ch.name] = struct{}{}
}

func (ch addLogChange) revert(db *StateDB) {
	db.logs = db.logs[:ch.index]
}

func (ch addLogChange) dirty(d *dirtySet) {
	if d.firstLog == -1 || ch.index < d.firstLog {
		d.firstLog = ch.index
	}
}
