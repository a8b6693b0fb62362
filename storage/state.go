package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/ferreirogomes/nftmarket/models"
	"github.com/ferreirogomes/nftmarket/state"
)

// Valores uint64 vão como texto: colunas NUMERIC(20,0) aceitam a faixa toda,
// o driver não.
func num(v uint64) string { return strconv.FormatUint(v, 10) }

type contractRow struct {
	Name       string    `db:"name"`
	Kind       string    `db:"kind"`
	Address    string    `db:"address"`
	Deployer   string    `db:"deployer"`
	FeePercent uint64    `db:"fee_percent"`
	Symbol     string    `db:"symbol"`
	DeployedAt time.Time `db:"deployed_at"`
}

type tokenRow struct {
	ID          uint64 `db:"id"`
	Registry    string `db:"registry"`
	Owner       string `db:"owner"`
	MetadataURI string `db:"metadata_uri"`
}

type itemRow struct {
	ID      uint64 `db:"id"`
	NFT     string `db:"nft"`
	TokenID uint64 `db:"token_id"`
	Seller  string `db:"seller"`
	Price   uint64 `db:"price"`
	Sold    bool   `db:"sold"`
	Buyer   string `db:"buyer"`
}

type balanceRow struct {
	Account string `db:"account"`
	Amount  uint64 `db:"amount"`
}

type operatorRow struct {
	Owner    string `db:"owner"`
	Operator string `db:"operator"`
	Approved bool   `db:"approved"`
}

type tokenApprovalRow struct {
	TokenID  uint64 `db:"token_id"`
	Approved string `db:"approved"`
}

type eventRow struct {
	Seq       uint64         `db:"seq"`
	ID        uuid.UUID      `db:"id"`
	Contract  string         `db:"contract"`
	Name      string         `db:"name"`
	Args      pq.StringArray `db:"args"`
	CreatedAt time.Time      `db:"created_at"`
}

func addr(a models.Address) string {
	if a.IsZero() {
		return ""
	}
	return a.String()
}

func parseAddr(s string) (models.Address, error) {
	if s == "" {
		return models.ZeroAddress, nil
	}
	return models.ParseAddress(s)
}

// Commit grava um ChangeSet em uma única transação. Se falhar, nada é gravado.
func (d *DB) Commit(ctx context.Context, cs *state.ChangeSet) error {
	if cs == nil || cs.Empty() {
		return nil
	}
	tx, err := d.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("falha ao iniciar transação: %w", err)
	}
	defer tx.Rollback()

	if err := commitChanges(ctx, tx, cs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("falha ao confirmar transação: %w", err)
	}
	d.logger.Debug("mudanças persistidas",
		zap.Int("tokens", len(cs.Tokens)),
		zap.Int("items", len(cs.Items)),
		zap.Int("balances", len(cs.Balances)),
		zap.Int("events", len(cs.Events)),
	)
	return nil
}

func commitChanges(ctx context.Context, tx *sqlx.Tx, cs *state.ChangeSet) error {
	for _, c := range cs.Contracts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO contracts (name, kind, address, deployer, fee_percent, symbol, deployed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (name) DO UPDATE SET
				kind = EXCLUDED.kind, address = EXCLUDED.address, deployer = EXCLUDED.deployer,
				fee_percent = EXCLUDED.fee_percent, symbol = EXCLUDED.symbol, deployed_at = EXCLUDED.deployed_at`,
			c.Name, string(c.Kind), c.Address.String(), c.Deployer.String(), num(c.FeePercent), c.Symbol, c.DeployedAt)
		if err != nil {
			return fmt.Errorf("falha ao salvar contrato %s: %w", c.Name, err)
		}
	}
	for _, t := range cs.Tokens {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tokens (id, registry, owner, metadata_uri) VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET owner = EXCLUDED.owner`,
			num(t.ID), t.Registry.String(), t.Owner.String(), t.MetadataURI)
		if err != nil {
			return fmt.Errorf("falha ao salvar token %d: %w", t.ID, err)
		}
	}
	for _, it := range cs.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO items (id, nft, token_id, seller, price, sold, buyer) VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET sold = EXCLUDED.sold, buyer = EXCLUDED.buyer`,
			num(it.ID), it.NFT.String(), num(it.TokenID), it.Seller.String(), num(it.Price), it.Sold, addr(it.Buyer))
		if err != nil {
			return fmt.Errorf("falha ao salvar item %d: %w", it.ID, err)
		}
	}
	for _, b := range cs.Balances {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO balances (account, amount) VALUES ($1, $2)
			ON CONFLICT (account) DO UPDATE SET amount = EXCLUDED.amount`,
			b.Account.String(), num(b.Amount))
		if err != nil {
			return fmt.Errorf("falha ao salvar saldo de %s: %w", b.Account, err)
		}
	}
	for _, op := range cs.Operators {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO operator_approvals (owner, operator, approved) VALUES ($1, $2, $3)
			ON CONFLICT (owner, operator) DO UPDATE SET approved = EXCLUDED.approved`,
			op.Owner.String(), op.Operator.String(), op.Approved)
		if err != nil {
			return fmt.Errorf("falha ao salvar operador: %w", err)
		}
	}
	for _, ta := range cs.TokenApprovals {
		var err error
		if ta.Approved.IsZero() {
			_, err = tx.ExecContext(ctx, `DELETE FROM token_approvals WHERE token_id = $1`, num(ta.TokenID))
		} else {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO token_approvals (token_id, approved) VALUES ($1, $2)
				ON CONFLICT (token_id) DO UPDATE SET approved = EXCLUDED.approved`,
				num(ta.TokenID), ta.Approved.String())
		}
		if err != nil {
			return fmt.Errorf("falha ao salvar aprovação do token %d: %w", ta.TokenID, err)
		}
	}
	for _, e := range cs.Events {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO events (seq, id, contract, name, args, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			num(e.Seq), e.ID, e.Contract.String(), e.Name, pq.Array(e.Args), e.CreatedAt)
		if err != nil {
			return fmt.Errorf("falha ao salvar evento %d: %w", e.Seq, err)
		}
	}
	return nil
}

// Load lê o estado completo, pronto para state.Restore.
func (d *DB) Load(ctx context.Context) (*state.ChangeSet, error) {
	cs := &state.ChangeSet{}

	var contracts []contractRow
	if err := d.SelectContext(ctx, &contracts, `SELECT * FROM contracts ORDER BY name`); err != nil {
		return nil, fmt.Errorf("falha ao ler contratos: %w", err)
	}
	for _, r := range contracts {
		address, err := parseAddr(r.Address)
		if err != nil {
			return nil, err
		}
		deployer, err := parseAddr(r.Deployer)
		if err != nil {
			return nil, err
		}
		cs.Contracts = append(cs.Contracts, models.Contract{
			Name:       r.Name,
			Kind:       models.ContractKind(r.Kind),
			Address:    address,
			Deployer:   deployer,
			FeePercent: r.FeePercent,
			Symbol:     r.Symbol,
			DeployedAt: r.DeployedAt.UTC(),
		})
	}

	var tokens []tokenRow
	if err := d.SelectContext(ctx, &tokens, `SELECT * FROM tokens ORDER BY id`); err != nil {
		return nil, fmt.Errorf("falha ao ler tokens: %w", err)
	}
	for _, r := range tokens {
		registry, err := parseAddr(r.Registry)
		if err != nil {
			return nil, err
		}
		owner, err := parseAddr(r.Owner)
		if err != nil {
			return nil, err
		}
		cs.Tokens = append(cs.Tokens, models.Token{ID: r.ID, Registry: registry, Owner: owner, MetadataURI: r.MetadataURI})
	}

	var items []itemRow
	if err := d.SelectContext(ctx, &items, `SELECT * FROM items ORDER BY id`); err != nil {
		return nil, fmt.Errorf("falha ao ler itens: %w", err)
	}
	for _, r := range items {
		nft, err := parseAddr(r.NFT)
		if err != nil {
			return nil, err
		}
		seller, err := parseAddr(r.Seller)
		if err != nil {
			return nil, err
		}
		buyer, err := parseAddr(r.Buyer)
		if err != nil {
			return nil, err
		}
		cs.Items = append(cs.Items, models.Item{
			ID: r.ID, NFT: nft, TokenID: r.TokenID, Seller: seller, Price: r.Price, Sold: r.Sold, Buyer: buyer,
		})
	}

	var balances []balanceRow
	if err := d.SelectContext(ctx, &balances, `SELECT * FROM balances ORDER BY account`); err != nil {
		return nil, fmt.Errorf("falha ao ler saldos: %w", err)
	}
	for _, r := range balances {
		account, err := parseAddr(r.Account)
		if err != nil {
			return nil, err
		}
		cs.Balances = append(cs.Balances, state.Balance{Account: account, Amount: r.Amount})
	}

	var operators []operatorRow
	if err := d.SelectContext(ctx, &operators, `SELECT * FROM operator_approvals`); err != nil {
		return nil, fmt.Errorf("falha ao ler operadores: %w", err)
	}
	for _, r := range operators {
		owner, err := parseAddr(r.Owner)
		if err != nil {
			return nil, err
		}
		operator, err := parseAddr(r.Operator)
		if err != nil {
			return nil, err
		}
		cs.Operators = append(cs.Operators, state.OperatorApproval{Owner: owner, Operator: operator, Approved: r.Approved})
	}

	var approvals []tokenApprovalRow
	if err := d.SelectContext(ctx, &approvals, `SELECT * FROM token_approvals ORDER BY token_id`); err != nil {
		return nil, fmt.Errorf("falha ao ler aprovações: %w", err)
	}
	for _, r := range approvals {
		approved, err := parseAddr(r.Approved)
		if err != nil {
			return nil, err
		}
		cs.TokenApprovals = append(cs.TokenApprovals, state.TokenApproval{TokenID: r.TokenID, Approved: approved})
	}

	var evts []eventRow
	if err := d.SelectContext(ctx, &evts, `SELECT * FROM events ORDER BY seq`); err != nil {
		return nil, fmt.Errorf("falha ao ler eventos: %w", err)
	}
	for _, r := range evts {
		contract, err := parseAddr(r.Contract)
		if err != nil {
			return nil, err
		}
		cs.Events = append(cs.Events, models.Event{
			ID: r.ID, Seq: r.Seq, Contract: contract, Name: r.Name, Args: []string(r.Args), CreatedAt: r.CreatedAt.UTC(),
		})
	}

	d.logger.Info("estado carregado",
		zap.Int("tokens", len(cs.Tokens)),
		zap.Int("items", len(cs.Items)),
		zap.Int("events", len(cs.Events)),
	)
	return cs, nil
}

// Restore carrega o estado persistido em um StateDB novo.
func (d *DB) Restore(ctx context.Context) (*state.StateDB, error) {
	dump, err := d.Load(ctx)
	if err != nil {
		return nil, err
	}
	s, err := state.Restore(dump)
	if err != nil {
		return nil, fmt.Errorf("estado persistido inválido: %w", err)
	}
	return s, nil
}
