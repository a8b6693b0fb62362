package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ferreirogomes/nftmarket/events"
	"github.com/ferreirogomes/nftmarket/marketplace"
	"github.com/ferreirogomes/nftmarket/metrics"
	"github.com/ferreirogomes/nftmarket/models"
	"github.com/ferreirogomes/nftmarket/registry"
	"github.com/ferreirogomes/nftmarket/state"
)

// MarketplaceName é o nome de implantação do Marketplace.
const MarketplaceName = "Marketplace"

var ErrNotDeployed = errors.New("contracts not deployed")

// Persister grava as mudanças de uma operação antes de ela ser confirmada.
type Persister interface {
	Commit(ctx context.Context, changes *state.ChangeSet) error
}

// DeployConfig são os parâmetros de implantação dos dois contratos.
type DeployConfig struct {
	RegistryName   string
	RegistrySymbol string
	FeePercent     uint64
	Deployer       models.Address // Recebe as taxas do Marketplace
}

// MarketService é a fachada do substrato de execução: serializa as operações,
// confirma ou reverte cada uma inteira, persiste e publica os eventos.
type MarketService struct {
	mu      sync.RWMutex
	db      *state.StateDB
	store   Persister // nil mantém o estado apenas em memória
	bus     *events.Bus
	metrics *metrics.Metrics
	logger  *zap.Logger

	nft    *registry.Registry
	market *marketplace.Marketplace
}

func NewMarketService(db *state.StateDB, store Persister, bus *events.Bus, m *metrics.Metrics, logger *zap.Logger) *MarketService {
	return &MarketService{
		db:      db,
		store:   store,
		bus:     bus,
		metrics: m,
		logger:  logger,
	}
}

// exec roda fn em um snapshot. Em caso de erro, ou se a persistência falhar,
// o estado volta ao snapshot e nenhum evento é publicado. O chamador segura mu.
func (s *MarketService) exec(ctx context.Context, op string, fn func() error) ([]models.Event, error) {
	rev := s.db.Snapshot()
	if err := fn(); err != nil {
		s.db.RevertToSnapshot(rev)
		s.metrics.Failed(op, models.ErrorKind(err))
		s.logger.Debug("operação rejeitada", zap.String("op", op), zap.Error(err))
		return nil, err
	}
	changes := s.db.Changes(rev)
	if s.store != nil {
		if err := s.store.Commit(ctx, changes); err != nil {
			s.db.RevertToSnapshot(rev)
			s.metrics.Failed(op, models.ErrorKind(err))
			s.logger.Error("falha ao persistir operação", zap.String("op", op), zap.Error(err))
			return nil, fmt.Errorf("falha ao persistir %s: %w", op, err)
		}
	}
	s.db.Release(rev)
	s.bus.Publish(changes.Events...)
	return changes.Events, nil
}

// Deploy implanta o Registry e o Marketplace, ou reaproveita os contratos já
// presentes no estado restaurado.
func (s *MarketService) Deploy(ctx context.Context, cfg DeployConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nft != nil {
		return nil
	}

	if cfg.RegistryName == "" || cfg.RegistryName == MarketplaceName {
		return fmt.Errorf("nome de registry inválido: %q", cfg.RegistryName)
	}

	nftContract, okNFT := s.db.Contract(cfg.RegistryName)
	marketContract, okMarket := s.db.Contract(MarketplaceName)
	if okNFT && okMarket {
		s.bind(nftContract, marketContract)
		s.logger.Info("contratos restaurados",
			zap.Stringer("registry", nftContract.Address),
			zap.Stringer("marketplace", marketContract.Address),
		)
		return nil
	}
	if okNFT != okMarket {
		return fmt.Errorf("estado inconsistente: registry=%v marketplace=%v", okNFT, okMarket)
	}

	if cfg.Deployer.IsZero() {
		return fmt.Errorf("%w: deployer is required", models.ErrInvalidAddress)
	}
	now := time.Now().UTC()
	nftContract = models.Contract{
		Name:       cfg.RegistryName,
		Kind:       models.KindRegistry,
		Address:    models.NewAddress(),
		Deployer:   cfg.Deployer,
		Symbol:     cfg.RegistrySymbol,
		DeployedAt: now,
	}
	marketContract = models.Contract{
		Name:       MarketplaceName,
		Kind:       models.KindMarketplace,
		Address:    models.NewAddress(),
		Deployer:   cfg.Deployer,
		FeePercent: cfg.FeePercent,
		DeployedAt: now,
	}
	_, err := s.exec(ctx, "deploy", func() error {
		s.db.SetContract(nftContract)
		s.db.SetContract(marketContract)
		return nil
	})
	if err != nil {
		return err
	}
	s.bind(nftContract, marketContract)
	s.logger.Info("contratos implantados",
		zap.String("registry_name", nftContract.Name),
		zap.Stringer("registry", nftContract.Address),
		zap.Stringer("marketplace", marketContract.Address),
		zap.Uint64("fee_percent", cfg.FeePercent),
		zap.Stringer("fee_account", cfg.Deployer),
	)
	return nil
}

func (s *MarketService) bind(nftContract, marketContract models.Contract) {
	s.nft = registry.New(s.db, nftContract)
	s.market = marketplace.New(s.db, marketContract, s.nft)
}

// external rejeita chamadas em nome de um contrato implantado. Endereços de
// contrato não têm chave; só agem nas chamadas internas entre contratos.
func (s *MarketService) external(caller models.Address) error {
	if caller == s.nft.Address() || caller == s.market.Address() {
		return fmt.Errorf("%w: caller %s is a contract", models.ErrNotApproved, caller)
	}
	return nil
}

func (s *MarketService) deployed() error {
	if s.nft == nil {
		return ErrNotDeployed
	}
	return nil
}

// Registry retorna o contrato do Registry implantado.
func (s *MarketService) Registry() (models.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.deployed(); err != nil {
		return models.Contract{}, err
	}
	c, _ := s.db.Contract(s.nft.Name())
	return c, nil
}

// Marketplace retorna o contrato do Marketplace implantado.
func (s *MarketService) Marketplace() (models.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.deployed(); err != nil {
		return models.Contract{}, err
	}
	c, _ := s.db.Contract(MarketplaceName)
	return c, nil
}

// Mint cunha um token para caller.
func (s *MarketService) Mint(ctx context.Context, caller models.Address, metadataURI string) (models.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.deployed(); err != nil {
		return models.Token{}, err
	}

	var id uint64
	_, err := s.exec(ctx, "mint", func() error {
		if err := s.external(caller); err != nil {
			return err
		}
		var err error
		id, err = s.nft.Mint(caller, metadataURI)
		return err
	})
	if err != nil {
		return models.Token{}, err
	}
	s.metrics.Minted()
	s.logger.Info("token cunhado", zap.Uint64("token_id", id), zap.Stringer("owner", caller))
	return s.nft.Token(id)
}

func (s *MarketService) Token(id uint64) (models.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.deployed(); err != nil {
		return models.Token{}, err
	}
	return s.nft.Token(id)
}

func (s *MarketService) OwnerOf(id uint64) (models.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.deployed(); err != nil {
		return models.ZeroAddress, err
	}
	return s.nft.OwnerOf(id)
}

func (s *MarketService) TokenURI(id uint64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.deployed(); err != nil {
		return "", err
	}
	return s.nft.TokenURI(id)
}

// TokenCount retorna quantos tokens foram cunhados.
func (s *MarketService) TokenCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.TokenCount()
}

func (s *MarketService) TokensOf(owner models.Address) []models.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.TokensOf(owner)
}

func (s *MarketService) BalanceOf(owner models.Address) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.db.TokensOf(owner)))
}

func (s *MarketService) GetApproved(id uint64) (models.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.deployed(); err != nil {
		return models.ZeroAddress, err
	}
	return s.nft.GetApproved(id)
}

func (s *MarketService) IsApprovedForAll(owner, operator models.Address) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.IsOperator(owner, operator)
}

func (s *MarketService) Approve(ctx context.Context, caller, to models.Address, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.deployed(); err != nil {
		return err
	}
	_, err := s.exec(ctx, "approve", func() error {
		if err := s.external(caller); err != nil {
			return err
		}
		return s.nft.Approve(caller, to, id)
	})
	return err
}

func (s *MarketService) SetApprovalForAll(ctx context.Context, caller, operator models.Address, approved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.deployed(); err != nil {
		return err
	}
	_, err := s.exec(ctx, "setApprovalForAll", func() error {
		if err := s.external(caller); err != nil {
			return err
		}
		return s.nft.SetApprovalForAll(caller, operator, approved)
	})
	return err
}

func (s *MarketService) TransferFrom(ctx context.Context, caller, from, to models.Address, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.deployed(); err != nil {
		return err
	}
	_, err := s.exec(ctx, "transferFrom", func() error {
		if err := s.external(caller); err != nil {
			return err
		}
		return s.nft.TransferFrom(caller, from, to, id)
	})
	return err
}

// MakeItem lista o token por price e o coloca em custódia do Marketplace.
func (s *MarketService) MakeItem(ctx context.Context, caller models.Address, ref models.TokenRef, price uint64) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.deployed(); err != nil {
		return models.Item{}, err
	}

	var id uint64
	_, err := s.exec(ctx, "makeItem", func() error {
		if err := s.external(caller); err != nil {
			return err
		}
		var err error
		id, err = s.market.MakeItem(caller, ref, price)
		return err
	})
	if err != nil {
		return models.Item{}, err
	}
	s.metrics.Listed()
	s.logger.Info("item listado",
		zap.Uint64("item_id", id),
		zap.Uint64("token_id", ref.TokenID),
		zap.Uint64("price", price),
		zap.Stringer("seller", caller),
	)
	return s.market.Item(id)
}

func (s *MarketService) GetTotalPrice(id uint64) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.deployed(); err != nil {
		return 0, err
	}
	return s.market.GetTotalPrice(id)
}

// PurchaseItem compra o item pagando payment a partir do saldo de buyer.
func (s *MarketService) PurchaseItem(ctx context.Context, buyer models.Address, id uint64, payment uint64) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.deployed(); err != nil {
		return models.Item{}, err
	}

	var item models.Item
	_, err := s.exec(ctx, "purchaseItem", func() error {
		if err := s.external(buyer); err != nil {
			return err
		}
		var err error
		item, err = s.market.PurchaseItem(buyer, id, payment)
		return err
	})
	if err != nil {
		return models.Item{}, err
	}
	fee, _ := marketplace.Fee(item.Price, s.market.FeePercent())
	s.metrics.Sold(fee)
	s.logger.Info("item vendido",
		zap.Uint64("item_id", id),
		zap.Uint64("price", item.Price),
		zap.Uint64("fee", fee),
		zap.Uint64("payment", payment),
		zap.Stringer("buyer", buyer),
	)
	return item, nil
}

func (s *MarketService) Item(id uint64) (models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.deployed(); err != nil {
		return models.Item{}, err
	}
	return s.market.Item(id)
}

func (s *MarketService) Items() []models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.Items()
}

func (s *MarketService) ItemCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.ItemCount()
}

// Deposit credita amount na conta. Faz o papel do faucet de uma rede de
// desenvolvimento.
func (s *MarketService) Deposit(ctx context.Context, account models.Address, amount uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.exec(ctx, "deposit", func() error {
		if account.IsZero() {
			return fmt.Errorf("%w: deposit to the zero address", models.ErrInvalidAddress)
		}
		return s.db.AddBalance(account, amount)
	})
	if err != nil {
		return 0, err
	}
	return s.db.Balance(account), nil
}

func (s *MarketService) Balance(account models.Address) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.Balance(account)
}

// Events retorna até limit eventos a partir da sequência from.
func (s *MarketService) Events(from uint64, limit int) []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.Logs(from, limit)
}

func (s *MarketService) Contracts() []models.Contract {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.Contracts()
}

// Contract retorna o contrato implantado e seu descritor de interface.
func (s *MarketService) Contract(name string) (models.Contract, models.Descriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.db.Contract(name)
	if !ok {
		return models.Contract{}, models.Descriptor{}, fmt.Errorf("%w: contract %q", models.ErrNotFound, name)
	}
	if c.Kind == models.KindMarketplace {
		return c, marketplace.Descriptor(c.Name), nil
	}
	return c, registry.Descriptor(c.Name), nil
}
