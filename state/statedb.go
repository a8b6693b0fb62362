package state

import (
	"fmt"
	"math/bits"
	"sort"

	"github.com/ferreirogomes/nftmarket/models"
)

type operatorKey struct {
	Owner    models.Address
	Operator models.Address
}

// StateDB guarda o estado mundial do Registry e do Marketplace: tokens e
// itens em arenas indexadas por id-1, aprovações, saldos, contratos e o log
// de eventos. Toda mutação passa pelo journal e pode ser revertida até o
// snapshot correspondente ser liberado.
//
// StateDB não é seguro para uso concorrente; o chamador serializa o acesso.
type StateDB struct {
	tokens         []models.Token
	items          []models.Item
	operators      map[operatorKey]bool
	tokenApprovals map[uint64]models.Address
	balances       map[models.Address]uint64
	contracts      map[string]models.Contract
	logs           []models.Event

	journal        *journal
	validRevisions []revision
	nextRevisionID int
}

// New cria um estado vazio, com contadores zerados.
func New() *StateDB {
	return &StateDB{
		operators:      make(map[operatorKey]bool),
		tokenApprovals: make(map[uint64]models.Address),
		balances:       make(map[models.Address]uint64),
		contracts:      make(map[string]models.Contract),
		journal:        newJournal(),
	}
}

// TokenCount retorna o número de tokens cunhados.
func (s *StateDB) TokenCount() uint64 {
	return uint64(len(s.tokens))
}

// Token retorna o token com o id informado.
func (s *StateDB) Token(id uint64) (models.Token, bool) {
	if id == 0 || id > uint64(len(s.tokens)) {
		return models.Token{}, false
	}
	return s.tokens[id-1], true
}

// AddToken cunha um novo token com id = TokenCount()+1.
func (s *StateDB) AddToken(registry, owner models.Address, uri string) models.Token {
	t := models.Token{
		ID:          uint64(len(s.tokens)) + 1,
		Registry:    registry,
		Owner:       owner,
		MetadataURI: uri,
	}
	s.journal.append(addTokenChange{id: t.ID})
	s.tokens = append(s.tokens, t)
	return t
}

// SetOwner reatribui o dono de um token existente.
func (s *StateDB) SetOwner(id uint64, owner models.Address) {
	s.journal.append(ownerChange{id: id, prev: s.tokens[id-1].Owner})
	s.tokens[id-1].Owner = owner
}

// TokensOf lista, em ordem de id, os tokens de um dono.
func (s *StateDB) TokensOf(owner models.Address) []models.Token {
	var out []models.Token
	for _, t := range s.tokens {
		if t.Owner == owner {
			out = append(out, t)
		}
	}
	return out
}

// TokenApproval retorna a conta aprovada para um token (zero se nenhuma).
func (s *StateDB) TokenApproval(id uint64) models.Address {
	return s.tokenApprovals[id]
}

// SetTokenApproval define a aprovação de um token; zero limpa a aprovação.
func (s *StateDB) SetTokenApproval(id uint64, approved models.Address) {
	prev, existed := s.tokenApprovals[id]
	if !existed && approved.IsZero() {
		return
	}
	s.journal.append(tokenApprovalChange{id: id, prev: prev, existed: existed})
	if approved.IsZero() {
		delete(s.tokenApprovals, id)
		return
	}
	s.tokenApprovals[id] = approved
}

// IsOperator informa se operator pode transferir qualquer token de owner.
func (s *StateDB) IsOperator(owner, operator models.Address) bool {
	return s.operators[operatorKey{Owner: owner, Operator: operator}]
}

// SetOperator concede ou revoga a permissão geral de operator sobre owner.
func (s *StateDB) SetOperator(owner, operator models.Address, approved bool) {
	key := operatorKey{Owner: owner, Operator: operator}
	prev, existed := s.operators[key]
	s.journal.append(operatorChange{key: key, prev: prev, existed: existed})
	s.operators[key] = approved
}

// ItemCount retorna o número de itens listados.
func (s *StateDB) ItemCount() uint64 {
	return uint64(len(s.items))
}

// Item retorna o item com o id informado.
func (s *StateDB) Item(id uint64) (models.Item, bool) {
	if id == 0 || id > uint64(len(s.items)) {
		return models.Item{}, false
	}
	return s.items[id-1], true
}

// Items retorna uma cópia de todos os itens em ordem de id.
func (s *StateDB) Items() []models.Item {
	out := make([]models.Item, len(s.items))
	copy(out, s.items)
	return out
}

// AddItem registra um item com id = ItemCount()+1, ignorando item.ID.
func (s *StateDB) AddItem(item models.Item) models.Item {
	item.ID = uint64(len(s.items)) + 1
	s.journal.append(addItemChange{id: item.ID})
	s.items = append(s.items, item)
	return item
}

// SetItem substitui um item existente.
func (s *StateDB) SetItem(item models.Item) {
	s.journal.append(itemChange{prev: s.items[item.ID-1]})
	s.items[item.ID-1] = item
}

// Balance retorna o saldo de uma conta em unidades base.
func (s *StateDB) Balance(account models.Address) uint64 {
	return s.balances[account]
}

func (s *StateDB) setBalance(account models.Address, amount uint64) {
	prev, existed := s.balances[account]
	s.journal.append(balanceChange{account: account, prev: prev, existed: existed})
	s.balances[account] = amount
}

// AddBalance credita amount na conta.
func (s *StateDB) AddBalance(account models.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	sum, carry := bits.Add64(s.balances[account], amount, 0)
	if carry != 0 {
		return fmt.Errorf("%w: saldo de %s", models.ErrOverflow, account)
	}
	s.setBalance(account, sum)
	return nil
}

// SubBalance debita amount da conta.
func (s *StateDB) SubBalance(account models.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	bal := s.balances[account]
	if bal < amount {
		return fmt.Errorf("%w: %s tem %d, precisa de %d", models.ErrInsufficientFunds, account, bal, amount)
	}
	s.setBalance(account, bal-amount)
	return nil
}

// Contract retorna o contrato implantado com o nome informado.
func (s *StateDB) Contract(name string) (models.Contract, bool) {
	c, ok := s.contracts[name]
	return c, ok
}

// Contracts lista os contratos ordenados por nome.
func (s *StateDB) Contracts() []models.Contract {
	out := make([]models.Contract, 0, len(s.contracts))
	for _, c := range s.contracts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SetContract registra um contrato implantado.
func (s *StateDB) SetContract(c models.Contract) {
	prev, existed := s.contracts[c.Name]
	s.journal.append(contractChange{name: c.Name, prev: prev, existed: existed})
	s.contracts[c.Name] = c
}

// AddLog acrescenta um evento ao log e atribui seu número de sequência.
func (s *StateDB) AddLog(e models.Event) models.Event {
	s.journal.append(addLogChange{index: len(s.logs)})
	e.Seq = uint64(len(s.logs)) + 1
	s.logs = append(s.logs, e)
	return e
}

// Logs retorna até limit eventos com Seq >= from. limit <= 0 não limita.
func (s *StateDB) Logs(from uint64, limit int) []models.Event {
	if from == 0 {
		from = 1
	}
	if from > uint64(len(s.logs)) {
		return nil
	}
	evts := s.logs[from-1:]
	if limit > 0 && len(evts) > limit {
		evts = evts[:limit]
	}
	out := make([]models.Event, len(evts))
	copy(out, evts)
	return out
}

// Snapshot cria uma revisão do estado atual.
func (s *StateDB) Snapshot() int {
	id := s.nextRevisionID
	s.nextRevisionID++
	s.validRevisions = append(s.validRevisions, revision{id, s.journal.length()})
	return id
}

func (s *StateDB) revisionIndex(revid int) int {
	idx := sort.Search(len(s.validRevisions), func(i int) bool {
		return s.validRevisions[i].id >= revid
	})
	if idx == len(s.validRevisions) || s.validRevisions[idx].id != revid {
		panic(fmt.Errorf("revision id %v cannot be reverted", revid))
	}
	return idx
}

// RevertToSnapshot desfaz todas as mudanças feitas desde a revisão.
func (s *StateDB) RevertToSnapshot(revid int) {
	idx := s.revisionIndex(revid)
	s.journal.revert(s, s.validRevisions[idx].journalIndex)
	s.validRevisions = s.validRevisions[:idx]
}

// Changes descreve o valor atual de tudo que mudou desde a revisão.
func (s *StateDB) Changes(revid int) *ChangeSet {
	idx := s.revisionIndex(revid)
	d := newDirtySet()
	for _, entry := range s.journal.entries[s.validRevisions[idx].journalIndex:] {
		entry.dirty(d)
	}
	return s.collect(d)
}

// Release aceita as mudanças desde a revisão. Liberar a revisão mais externa
// descarta o journal.
func (s *StateDB) Release(revid int) {
	idx := s.revisionIndex(revid)
	s.validRevisions = s.validRevisions[:idx]
	if idx == 0 {
		s.journal.reset()
	}
}

// Atomic executa fn de forma tudo-ou-nada: se fn falhar, todas as suas
// mutações são desfeitas.
func (s *StateDB) Atomic(fn func() error) error {
	rev := s.Snapshot()
	if err := fn(); err != nil {
		s.RevertToSnapshot(rev)
		return err
	}
	s.Release(rev)
	return nil
}
