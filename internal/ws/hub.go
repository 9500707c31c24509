// Package ws implements the persistent push channel: the session handshake,
// join_queue/leave_queue control plane, and the Notifier's game_matched
// deliveries, over gorilla/websocket.
package ws

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"matchserver/internal/admission"
	"matchserver/internal/identity"
	"matchserver/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub maintains the set of active clients, and is the notifier.Pusher this
// service's Matcher delivers game_matched notifications through. The
// clients map is read from Matcher worker goroutines via Send, concurrently
// with register/unregister from connection goroutines, so it is guarded by
// a mutex rather than owned by a single loop goroutine.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client // keyed by session endpoint

	gateway  *admission.Gateway
	verifier identity.PlayerVerifier
}

// NewHub builds a Hub wired to the Admission Gateway and identity verifier.
func NewHub(gateway *admission.Gateway, verifier identity.PlayerVerifier) *Hub {
	return &Hub{
		clients:  make(map[string]*Client),
		gateway:  gateway,
		verifier: verifier,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c.Endpoint] = c
	total := len(h.clients)
	h.mu.Unlock()
	slog.Info("client connected", "tag", "ws", "endpoint", c.Endpoint, "total", total)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	existing, ok := h.clients[c.Endpoint]
	if ok && existing == c {
		delete(h.clients, c.Endpoint)
	}
	total := len(h.clients)
	h.mu.Unlock()
	if ok && existing == c {
		close(c.Send)
		slog.Info("client disconnected", "tag", "ws", "endpoint", c.Endpoint, "total", total)
	}
}

// ServeWS verifies the bearer token carried in the handshake, refuses the
// upgrade on failed verification by answering 401 Unauthorized, and
// otherwise upgrades the connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	playerID, err := h.verifier.VerifyPlayer(token)
	if err != nil {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "tag", "ws", "err", err)
		return
	}

	endpoint := session.NewEndpoint()
	client := &Client{
		Hub:      h,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Endpoint: endpoint,
		PlayerID: playerID,
	}

	if err := h.gateway.OpenSession(r.Context(), endpoint, playerID); err != nil {
		slog.Warn("open session failed", "tag", "ws", "player_id", playerID, "err", err)
		conn.Close()
		return
	}

	h.register(client)
	go client.WritePump()
	go client.ReadPump()
}

func bearerToken(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	return r.Header.Get("Sec-WebSocket-Protocol")
}

// Send implements notifier.Pusher: deliver payload to the live connection
// bound to endpoint, if one is registered on this hub instance.
func (h *Hub) Send(endpoint string, payload any) (bool, error) {
	h.mu.RLock()
	client, ok := h.clients[endpoint]
	h.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return client.send(payload)
}
