package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"matchserver/internal/matcherrors"
	"matchserver/internal/wsutil"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is a middleman between one websocket connection and the Hub.
type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	Endpoint string
	PlayerID string
}

// ReadPump pumps messages from the websocket connection to the hub. Runs in
// its own goroutine per connection.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.unregister(c)
		c.Hub.gateway.CloseSession(context.Background(), c.Endpoint)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read error", "tag", "ws", "endpoint", c.Endpoint, "err", err)
			}
			break
		}
		c.handleMessage(message)
	}
}

// WritePump pumps messages from the send channel to the websocket
// connection. Runs in its own goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	var envelope InboundEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.respondError("Invalid message format.")
		return
	}

	switch envelope.Action {
	case "join_queue":
		c.handleJoinQueue(envelope.Raw)
	case "leave_queue":
		c.handleLeaveQueue(envelope.Raw)
	default:
		c.respondError("Unknown action")
	}
}

func (c *Client) handleJoinQueue(raw json.RawMessage) {
	var msg JoinQueueMsg
	if err := json.Unmarshal(raw, &msg); err != nil || msg.TimeControl == "" {
		c.respondError("Invalid join_queue message.")
		return
	}

	err := c.Hub.gateway.Join(context.Background(), msg.TimeControl, c.PlayerID)
	if err != nil {
		switch {
		case matcherrors.Is(err, matcherrors.KindAlreadyQueued):
			c.respondError("Already queued for this time control.")
		case matcherrors.Is(err, matcherrors.KindMalformedRequest):
			c.respondError("Unknown time control.")
		default:
			c.respondError("Could not join queue.")
		}
		return
	}
	c.respondSuccess()
}

func (c *Client) handleLeaveQueue(raw json.RawMessage) {
	var msg LeaveQueueMsg
	if err := json.Unmarshal(raw, &msg); err != nil || msg.TimeControl == "" {
		c.respondError("Invalid leave_queue message.")
		return
	}

	if err := c.Hub.gateway.Leave(context.Background(), msg.TimeControl, c.PlayerID); err != nil {
		switch {
		case matcherrors.Is(err, matcherrors.KindMalformedRequest):
			c.respondError("Unknown time control.")
		default:
			c.respondError("Could not leave queue.")
		}
		return
	}
	c.respondSuccess()
}

func (c *Client) respondSuccess() {
	c.write(ControlResponse{Status: "success"})
}

func (c *Client) respondError(message string) {
	c.write(ControlResponse{Status: "error", Message: message})
}

func (c *Client) write(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("failed to marshal outbound message", "tag", "ws", "err", err)
		return
	}
	wsutil.SafeSend(c.Send, data)
}

// send delivers payload as this client's Notifier push. It returns an error
// only when payload cannot be marshalled; a full or closed channel still
// reports ok, best-effort, as the Matcher treats all non-Delivered outcomes.
func (c *Client) send(payload any) (bool, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return false, err
	}
	wsutil.SafeSend(c.Send, data)
	return true, nil
}
