package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"market-dashboard/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Websocket commands
const (
	CommandRender = "render"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop. It only tracks clients: every reply
// is produced on request by the client's own read loop.
func (s *DashboardServer) handleWebsockets() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.connections.Store(int64(len(s.clients)))

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}
			s.connections.Store(int64(len(s.clients)))

		case <-s.done:
			// Closing the connection ends both pumps of each client
			for client := range s.clients {
				delete(s.clients, client)
				client.conn.Close()
			}
			s.connections.Store(0)
			return
		}
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		send: make(chan interface{}, 16),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage answers one command with exactly one message.
func (s *DashboardServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MRenderCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	var response interface{}
	switch cmd.Command {
	case CommandRender:
		response = s.renderForClient(cmd)
	default:
		response = s.Renderer.ErrorResponse(fmt.Errorf("unknown command %q", cmd.Command))
	}

	select {
	case client.send <- response:
	default:
		s.Logger.Warning("Client send buffer full, dropping reply to %q", cmd.Command)
	}
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) renderForClient(cmd models.MRenderCommand) interface{} {
	if cmd.Panel != "" && !isPanelName(cmd.Panel) {
		return s.Renderer.ErrorResponse(fmt.Errorf("unknown panel %q", cmd.Panel))
	}

	resp, err := s.Renderer.Render(context.Background(), cmd.AssetClass)
	if err != nil {
		s.Errors.Handle(err, "websocket render")
		return s.Renderer.ErrorResponse(err)
	}
	s.lastRender.Store(resp.Timestamp)

	if cmd.Panel == "" {
		return resp
	}
	return map[string]interface{}{
		"type":      resp.Type,
		"panel":     panelOf(resp.Dashboard, cmd.Panel),
		"session":   resp.Session,
		"timestamp": resp.Timestamp,
	}
}
