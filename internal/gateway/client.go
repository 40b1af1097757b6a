package gateway

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second

	// Large enough for a full 5000-bar series.
	maxMessageSize = 1 << 20

	sendBuffer = 16
)

// client is one WebSocket peer. readPump parses analyze frames and runs
// them through the engine; replies go out via writePump.
type client struct {
	gw   *Gateway
	conn *websocket.Conn
	send chan []byte
}

func (c *client) enqueue(v interface{}) {
	msg, err := json.Marshal(v)
	if err != nil {
		c.gw.log.Error().Err(err).Msg("marshal frame")
		return
	}
	select {
	case c.send <- msg:
	default:
		// Slow consumer. Drop the frame rather than block the engine.
		c.gw.log.Warn().Msg("ws send buffer full, dropping frame")
	}
}

func (c *client) readPump() {
	defer func() {
		c.gw.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var frame AnalyzeFrame
		if err := json.Unmarshal(msg, &frame); err != nil {
			c.enqueue(ErrorFrame{Type: TypeError, Error: "invalid frame: " + err.Error()})
			continue
		}
		if frame.Type != TypeAnalyze {
			c.enqueue(ErrorFrame{Type: TypeError, ID: frame.ID, Error: "unknown frame type: " + frame.Type})
			continue
		}
		c.enqueue(c.gw.handleAnalyze(frame))
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
