package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ferreirogomes/nftmarket/events"
	"github.com/ferreirogomes/nftmarket/models"
	"github.com/ferreirogomes/nftmarket/services"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	pageLimit  = 1000
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool {
		return true
	},
}

// EventHandler expõe o log de eventos por consulta e por websocket.
type EventHandler struct {
	Service *services.MarketService
	Bus     *events.Bus
	logger  *zap.Logger
}

func NewEventHandler(s *services.MarketService, bus *events.Bus, logger *zap.Logger) *EventHandler {
	return &EventHandler{Service: s, Bus: bus, logger: logger}
}

func queryUint(r *http.Request, key string, def uint64) (uint64, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	return v, err == nil
}

// ListEvents retorna eventos a partir da sequência from.
// GET /events?from=&limit=
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	from, ok := queryUint(r, "from", 1)
	if !ok {
		badRequest(w, r, "from inválido")
		return
	}
	limit, ok := queryUint(r, "limit", pageLimit)
	if !ok || limit == 0 || limit > pageLimit {
		limit = pageLimit
	}
	evts := h.Service.Events(from, int(limit))
	if evts == nil {
		evts = []models.Event{}
	}
	writeJSON(w, r, http.StatusOK, evts)
}

// Stream envia o histórico a partir de from e depois cada novo evento.
// GET /events/ws?from=
func (h *EventHandler) Stream(w http.ResponseWriter, r *http.Request) {
	from, ok := queryUint(r, "from", 0)
	if !ok {
		badRequest(w, r, "from inválido")
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("falha no upgrade do websocket", zap.Error(err))
		return
	}
	defer conn.Close()

	// assina antes de ler o histórico para não perder eventos entre os dois
	sub := h.Bus.Subscribe(events.DefaultBuffer)
	defer sub.Close()

	closed := make(chan struct{})
	go h.readPump(conn, closed)

	var last uint64
	if from > 0 {
		for _, e := range h.Service.Events(from, 0) {
			if err := h.write(conn, e); err != nil {
				return
			}
			last = e.Seq
		}
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case e, ok := <-sub.C:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
				return
			}
			if e.Seq <= last {
				continue
			}
			if err := h.write(conn, e); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (h *EventHandler) write(conn *websocket.Conn, e models.Event) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if err := conn.WriteJSON(e); err != nil {
		h.logger.Debug("falha ao enviar evento", zap.Uint64("seq", e.Seq), zap.Error(err))
		return err
	}
	return nil
}

// readPump descarta mensagens do cliente e sinaliza quando a conexão cai.
func (h *EventHandler) readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadLimit(512)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
