// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	applog "visualizer/internal/log"
	"visualizer/internal/pipeline"
)

// clientCommand is the control message clients send over the socket.
type clientCommand struct {
	Cmd   string  `json:"cmd"`   // "mode" or "scale"
	Mode  string  `json:"mode"`  // bars | curve | spectrogram | scope
	Scale float64 `json:"scale"` // 0 for auto, else a manual factor
}

// WebSocketTransport broadcasts frames as JSON text messages to every
// connected client and routes their commands to a Controller.
//
// Send marshals on the caller's goroutine because frame buffers are
// reused between ticks; only the encoded bytes cross into the broadcast
// goroutine.
type WebSocketTransport struct {
	addr       string
	upgrader   websocket.Upgrader
	clients    map[*websocket.Conn]bool
	clientsMu  sync.Mutex
	broadcast  chan []byte
	server     *http.Server
	controller Controller
}

var _ Transport = (*WebSocketTransport)(nil)

// NewWebSocketTransport starts the HTTP server and broadcast loop.
// controller may be nil, in which case client commands are ignored.
func NewWebSocketTransport(addr string, controller Controller) *WebSocketTransport {
	wst := &WebSocketTransport{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // local tool, any origin may connect
			},
		},
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 256),
		controller: controller,
	}

	wst.start()
	return wst
}

func (wst *WebSocketTransport) start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wst.handleWebSocket)

	wst.server = &http.Server{
		Addr:    wst.addr,
		Handler: mux,
	}

	go func() {
		applog.Infof("transport: WebSocket server listening on %s", wst.addr)
		if err := wst.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			applog.Errorf("transport: server error: %v", err)
		}
	}()

	go wst.handleBroadcasts()
}

// handleWebSocket upgrades HTTP connections and starts a reader for
// client commands.
func (wst *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Warnf("transport: upgrade error: %v", err)
		return
	}

	wst.clientsMu.Lock()
	wst.clients[conn] = true
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	applog.Infof("transport: client connected, total: %d", total)

	go wst.readCommands(conn)
}

// readCommands consumes client messages until the connection drops.
func (wst *WebSocketTransport) readCommands(conn *websocket.Conn) {
	defer func() {
		wst.clientsMu.Lock()
		delete(wst.clients, conn)
		total := len(wst.clients)
		wst.clientsMu.Unlock()
		conn.Close()
		applog.Infof("transport: client disconnected, total: %d", total)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if wst.controller == nil {
			continue
		}
		if err := wst.dispatch(data); err != nil {
			applog.Warnf("transport: bad client command: %v", err)
		}
	}
}

func (wst *WebSocketTransport) dispatch(data []byte) error {
	var cmd clientCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return err
	}

	switch cmd.Cmd {
	case "mode":
		mode, err := pipeline.ParseMode(cmd.Mode)
		if err != nil {
			return err
		}
		wst.controller.SetMode(mode)
	case "scale":
		if !wst.controller.SetScale(cmd.Scale) {
			return fmt.Errorf("scale %g not in the supported set", cmd.Scale)
		}
	default:
		return fmt.Errorf("unknown command %q", cmd.Cmd)
	}
	return nil
}

// handleBroadcasts fans queued frames out to every client.
func (wst *WebSocketTransport) handleBroadcasts() {
	for data := range wst.broadcast {
		wst.clientsMu.Lock()
		for client := range wst.clients {
			if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
				applog.Warnf("transport: send error, dropping client: %v", err)
				client.Close()
				delete(wst.clients, client)
			}
		}
		wst.clientsMu.Unlock()
	}
}

// Send queues a frame for broadcast. When the queue is full the frame is
// dropped; the next tick replaces it anyway.
func (wst *WebSocketTransport) Send(frame *pipeline.FrameData) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}

	select {
	case wst.broadcast <- data:
	default:
	}
	return nil
}

// Close disconnects all clients and shuts the server down.
func (wst *WebSocketTransport) Close() error {
	applog.Infof("transport: closing server")

	wst.clientsMu.Lock()
	for client := range wst.clients {
		client.Close()
	}
	wst.clients = make(map[*websocket.Conn]bool)
	wst.clientsMu.Unlock()

	if wst.server != nil {
		return wst.server.Close()
	}
	return nil
}
