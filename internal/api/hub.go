package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/playmoney-sportsbook/pkg/contracts/events"
)

// WSConnections é registrado pelo main
var WSConnections = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "sportsbook_ws_connections",
	Help: "Clientes WebSocket conectados",
})

// ClientMsg é a mensagem aceita do cliente WebSocket
// Type: subscribe | unsubscribe | ping
type ClientMsg struct {
	Type   string `json:"type"`
	GameID string `json:"gameId"` // requerido em subscribe/unsubscribe
}

// TickMsg é o que o cliente recebe a cada tick do simulador
type TickMsg struct {
	Type string          `json:"type"` // "odds_tick"
	Tick events.OddsTick `json:"tick"`
}

type client struct {
	conn *websocket.Conn
	wmu  sync.Mutex
	// vazio = recebe todos os jogos
	games map[string]struct{}
}

func (c *client) write(v any) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	return c.conn.WriteJSON(v)
}

// Hub entrega os ticks de odds aos clientes WebSocket, filtrando por jogo quando o cliente se inscreve.
type Hub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
}

func NewHub(allowOrigin func(r *http.Request) bool, log *zap.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		log:      log,
		clients:  make(map[*client]struct{}),
	}
}

// HandleWS cuida do ciclo de vida de uma conexão
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	c := &client{conn: conn, games: make(map[string]struct{})}
	h.add(c)
	defer func() {
		h.remove(c)
		_ = conn.Close()
	}()

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Type {
		case "subscribe":
			if msg.GameID == "" {
				continue
			}
			h.mu.Lock()
			c.games[msg.GameID] = struct{}{}
			h.mu.Unlock()
		case "unsubscribe":
			h.mu.Lock()
			delete(c.games, msg.GameID)
			h.mu.Unlock()
		case "ping":
			_ = c.write(map[string]string{"type": "pong"})
		}
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	WSConnections.Inc()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		WSConnections.Dec()
	}
}

// Clients retorna quantos clientes estão conectados
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastTick envia o tick a cada cliente, só com as mudanças dos jogos que ele acompanha
func (h *Hub) BroadcastTick(_ context.Context, tick events.OddsTick) error {
	type delivery struct {
		c   *client
		msg TickMsg
	}
	var out []delivery

	h.mu.RLock()
	for c := range h.clients {
		t := filterTick(tick, c.games)
		if len(t.Changes) == 0 && len(t.Scores) == 0 {
			continue
		}
		out = append(out, delivery{c: c, msg: TickMsg{Type: "odds_tick", Tick: t}})
	}
	h.mu.RUnlock()

	for _, d := range out {
		if err := d.c.write(d.msg); err != nil {
			h.log.Warn("ws write failed", zap.Error(err))
			_ = d.c.conn.Close()
		}
	}
	return nil
}

func filterTick(tick events.OddsTick, games map[string]struct{}) events.OddsTick {
	if len(games) == 0 {
		return tick
	}
	t := events.OddsTick{Version: tick.Version, UpdatedAt: tick.UpdatedAt}
	for _, c := range tick.Changes {
		if _, ok := games[c.GameID]; ok {
			t.Changes = append(t.Changes, c)
		}
	}
	for _, s := range tick.Scores {
		if _, ok := games[s.GameID]; ok {
			t.Scores = append(t.Scores, s)
		}
	}
	return t
}

// StartRedisSubscriber repassa ao hub os ticks publicados no canal Redis
// (usado quando o simulador publica via Pub/Sub em vez de chamar o hub direto)
func StartRedisSubscriber(ctx context.Context, r *redis.Client, channel string, hub *Hub, log *zap.Logger) {
	sub := r.Subscribe(ctx, channel)
	go func() {
		defer func() { _ = sub.Close() }()
		forward(ctx, sub.Channel(), hub, log)
	}()
}

func forward(ctx context.Context, ch <-chan *redis.Message, hub *Hub, log *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var tick events.OddsTick
			if err := json.Unmarshal([]byte(msg.Payload), &tick); err != nil {
				log.Warn("odds tick unmarshal failed", zap.Error(err))
				continue
			}
			_ = hub.BroadcastTick(ctx, tick)
		}
	}
}
