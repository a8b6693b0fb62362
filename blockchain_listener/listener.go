// Package blockchain_listener acompanha o log de eventos confirmados e o
// replica para fora: log estruturado e, se configurado, um webhook.
package blockchain_listener

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ferreirogomes/nftmarket/events"
	"github.com/ferreirogomes/nftmarket/models"
)

const defaultMaxAttempts = 5

// BlockchainListener escuta o barramento de eventos e entrega cada evento ao
// webhook, com novas tentativas.
type BlockchainListener struct {
	bus        *events.Bus
	webhookURL string
	client     *http.Client
	logger     *zap.Logger

	maxAttempts int
	retryDelay  func(attempt int) time.Duration
}

// NewBlockchainListener cria uma nova instância do listener. webhookURL vazio
// apenas registra os eventos no log.
func NewBlockchainListener(bus *events.Bus, webhookURL string, logger *zap.Logger) *BlockchainListener {
	return &BlockchainListener{
		bus:         bus,
		webhookURL:  webhookURL,
		client:      &http.Client{Timeout: 5 * time.Second},
		logger:      logger,
		maxAttempts: defaultMaxAttempts,
		retryDelay: func(attempt int) time.Duration {
			return time.Duration(attempt*10+10) * time.Second
		},
	}
}

// WithRetry troca a política de novas tentativas do webhook.
func (l *BlockchainListener) WithRetry(maxAttempts int, delay func(attempt int) time.Duration) *BlockchainListener {
	l.maxAttempts = maxAttempts
	l.retryDelay = delay
	return l
}

// StartListening processa eventos até ctx ser cancelado ou o barramento
// fechar.
func (l *BlockchainListener) StartListening(ctx context.Context) error {
	sub := l.bus.Subscribe(events.DefaultBuffer)
	defer sub.Close()
	l.logger.Info("listener de eventos iniciado", zap.Bool("webhook", l.webhookURL != ""))

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-sub.C:
			if !ok {
				return nil
			}
			l.ProcessEvent(ctx, e)
		}
	}
}

// ProcessEvent registra o evento e o entrega ao webhook.
func (l *BlockchainListener) ProcessEvent(ctx context.Context, e models.Event) {
	l.logger.Info("evento",
		zap.Uint64("seq", e.Seq),
		zap.String("name", e.Name),
		zap.Stringer("contract", e.Contract),
		zap.Strings("args", e.Args),
	)
	if l.webhookURL == "" {
		return
	}

	for attempt := 0; attempt < l.maxAttempts; attempt++ {
		err := l.sendWebhook(ctx, e)
		if err == nil {
			return
		}
		if attempt == l.maxAttempts-1 {
			l.logger.Error("webhook falhou, tentativas esgotadas",
				zap.Uint64("seq", e.Seq), zap.Int("attempts", l.maxAttempts), zap.Error(err))
			return
		}
		delay := l.retryDelay(attempt)
		l.logger.Warn("webhook falhou, nova tentativa agendada",
			zap.Uint64("seq", e.Seq), zap.Int("attempt", attempt+1), zap.Duration("delay", delay), zap.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

func (l *BlockchainListener) sendWebhook(ctx context.Context, e models.Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "nftmarket-webhook/1.0")
	req.Header.Set("X-Event-Id", e.ID.String())

	resp, err := l.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("webhook retornou status %d", resp.StatusCode)
}
