// Package events distribui os eventos já confirmados para assinantes internos
// (listener, websocket).
package events

import (
	"sync"

	"go.uber.org/zap"

	"github.com/ferreirogomes/nftmarket/models"
)

const DefaultBuffer = 256

// Subscription recebe eventos em C até Close ser chamado.
type Subscription struct {
	C <-chan models.Event

	bus *Bus
	id  uint64
	ch  chan models.Event
}

// Close cancela a assinatura e fecha C.
func (s *Subscription) Close() {
	s.bus.remove(s.id)
}

// Bus faz fan-out dos eventos. Publish nunca bloqueia: um assinante com o
// buffer cheio perde o evento.
type Bus struct {
	logger *zap.Logger

	lock   sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
	closed bool
}

func NewBus(logger *zap.Logger) *Bus {
	return &Bus{logger: logger, subs: make(map[uint64]*Subscription)}
}

// Subscribe cria uma assinatura com buffer de tamanho buffer.
func (b *Bus) Subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	ch := make(chan models.Event, buffer)
	b.lock.Lock()
	defer b.lock.Unlock()
	b.nextID++
	sub := &Subscription{C: ch, bus: b, id: b.nextID, ch: ch}
	if b.closed {
		close(ch)
		return sub
	}
	b.subs[sub.id] = sub
	return sub
}

func (b *Bus) remove(id uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if sub, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(sub.ch)
	}
}

// Publish entrega evts, em ordem, a todos os assinantes.
func (b *Bus) Publish(evts ...models.Event) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	for _, sub := range b.subs {
		for _, e := range evts {
			select {
			case sub.ch <- e:
			default:
				b.logger.Warn("descartando evento para assinante lento",
					zap.Uint64("subscriber", sub.id),
					zap.Uint64("seq", e.Seq),
				)
			}
		}
	}
}

// Close encerra todas as assinaturas.
func (b *Bus) Close() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
}
