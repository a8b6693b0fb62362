package state

import (
	"fmt"
	"sort"

	"github.com/ferreirogomes/nftmarket/models"
)

// Balance é o saldo de uma conta.
type Balance struct {
	Account models.Address `json:"account" db:"account"`
	Amount  uint64         `json:"amount" db:"amount"`
}

// OperatorApproval é uma permissão geral de transferência.
type OperatorApproval struct {
	Owner    models.Address `json:"owner"`
	Operator models.Address `json:"operator"`
	Approved bool           `json:"approved"`
}

// TokenApproval é a aprovação de um único token. Approved zero significa que
// a aprovação foi removida.
type TokenApproval struct {
	TokenID  uint64         `json:"token_id"`
	Approved models.Address `json:"approved"`
}

// ChangeSet reúne os valores atuais de tudo que uma operação alterou. Também
// é usado como dump completo do estado.
type ChangeSet struct {
	Tokens         []models.Token
	Items          []models.Item
	Balances       []Balance
	Operators      []OperatorApproval
	TokenApprovals []TokenApproval
	Contracts      []models.Contract
	Events         []models.Event
}

// Empty informa se nada mudou.
func (c *ChangeSet) Empty() bool {
	return len(c.Tokens) == 0 && len(c.Items) == 0 && len(c.Balances) == 0 &&
		len(c.Operators) == 0 && len(c.TokenApprovals) == 0 &&
		len(c.Contracts) == 0 && len(c.Events) == 0
}

func sortedIDs(m map[uint64]struct{}) []uint64 {
	ids := make([]uint64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *StateDB) collect(d *dirtySet) *ChangeSet {
	cs := &ChangeSet{}
	for _, id := range sortedIDs(d.tokens) {
		if t, ok := s.Token(id); ok {
			cs.Tokens = append(cs.Tokens, t)
		}
	}
	for _, id := range sortedIDs(d.items) {
		if it, ok := s.Item(id); ok {
			cs.Items = append(cs.Items, it)
		}
	}
	for account := range d.balances {
		cs.Balances = append(cs.Balances, Balance{Account: account, Amount: s.balances[account]})
	}
	sort.Slice(cs.Balances, func(i, j int) bool {
		return cs.Balances[i].Account.String() < cs.Balances[j].Account.String()
	})
	for key := range d.operators {
		cs.Operators = append(cs.Operators, OperatorApproval{
			Owner:    key.Owner,
			Operator: key.Operator,
			Approved: s.operators[key],
		})
	}
	sort.Slice(cs.Operators, func(i, j int) bool {
		a, b := cs.Operators[i], cs.Operators[j]
		if a.Owner != b.Owner {
			return a.Owner.String() < b.Owner.String()
		}
		return a.Operator.String() < b.Operator.String()
	})
	for _, id := range sortedIDs(d.tokenApprovals) {
		cs.TokenApprovals = append(cs.TokenApprovals, TokenApproval{TokenID: id, Approved: s.tokenApprovals[id]})
	}
	for name := range d.contracts {
		if c, ok := s.contracts[name]; ok {
			cs.Contracts = append(cs.Contracts, c)
		}
	}
	sort.Slice(cs.Contracts, func(i, j int) bool { return cs.Contracts[i].Name < cs.Contracts[j].Name })
	if d.firstLog >= 0 && d.firstLog < len(s.logs) {
		cs.Events = append(cs.Events, s.logs[d.firstLog:]...)
	}
	return cs
}

// Dump exporta o estado completo.
func (s *StateDB) Dump() *ChangeSet {
	d := newDirtySet()
	for _, t := range s.tokens {
		d.tokens[t.ID] = struct{}{}
	}
	for _, it := range s.items {
		d.items[it.ID] = struct{}{}
	}
	for account := range s.balances {
		d.balances[account] = struct{}{}
	}
	for key := range s.operators {
		d.operators[key] = struct{}{}
	}
	for id := range s.tokenApprovals {
		d.tokenApprovals[id] = struct{}{}
	}
	for name := range s.contracts {
		d.contracts[name] = struct{}{}
	}
	if len(s.logs) > 0 {
		d.firstLog = 0
	}
	return s.collect(d)
}

// Restore reconstrói um estado a partir de um dump. Tokens, itens e eventos
// precisam formar sequências contínuas a partir de 1.
func Restore(dump *ChangeSet) (*StateDB, error) {
	s := New()
	if dump == nil {
		return s, nil
	}
	for i, t := range dump.Tokens {
		if t.ID != uint64(i)+1 {
			return nil, fmt.Errorf("token %d fora de sequência (esperado %d)", t.ID, i+1)
		}
		s.tokens = append(s.tokens, t)
	}
	for i, it := range dump.Items {
		if it.ID != uint64(i)+1 {
			return nil, fmt.Errorf("item %d fora de sequência (esperado %d)", it.ID, i+1)
		}
		s.items = append(s.items, it)
	}
	for i, e := range dump.Events {
		if e.Seq != uint64(i)+1 {
			return nil, fmt.Errorf("evento %d fora de sequência (esperado %d)", e.Seq, i+1)
		}
		s.logs = append(s.logs, e)
	}
	for _, b := range dump.Balances {
		s.balances[b.Account] = b.Amount
	}
	for _, op := range dump.Operators {
		s.operators[operatorKey{Owner: op.Owner, Operator: op.Operator}] = op.Approved
	}
	for _, ta := range dump.TokenApprovals {
		if !ta.Approved.IsZero() {
			s.tokenApprovals[ta.TokenID] = ta.Approved
		}
	}
	for _, c := range dump.Contracts {
		s.contracts[c.Name] = c
	}
	return s, nil
}
