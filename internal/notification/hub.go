// internal/notification/hub.go

package notification

import (
    "context"
    "encoding/json"
    "log"
    "sync"
    "time"

    "github.com/gorilla/websocket"
)

const (
    writeWait      = 10 * time.Second
    pongWait       = 60 * time.Second
    pingPeriod     = (pongWait * 9) / 10
    maxMessageSize = 512
)

// Hub maintains active websocket connections, one per user
type Hub struct {
    clients    map[int64]*Client
    clientsMux sync.RWMutex

    register   chan *Client
    unregister chan *Client

    ctx    context.Context
    cancel context.CancelFunc
}

func NewHub() *Hub {
    ctx, cancel := context.WithCancel(context.Background())

    return &Hub{
        clients:    make(map[int64]*Client),
        register:   make(chan *Client),
        unregister: make(chan *Client),
        ctx:        ctx,
        cancel:     cancel,
    }
}

func (h *Hub) Run() {
    for {
        select {
        case client := <-h.register:
            h.registerClient(client)

        case client := <-h.unregister:
            h.unregisterClient(client)

        case <-h.ctx.Done():
            h.cleanup()
            return
        }
    }
}

func (h *Hub) Stop() {
    h.cancel()
}

func (h *Hub) registerClient(client *Client) {
    h.clientsMux.Lock()
    defer h.clientsMux.Unlock()

    // Replace any previous connection for the same user
    if old, exists := h.clients[client.userID]; exists {
        old.Close()
    }
    h.clients[client.userID] = client

    log.Printf("User %d connected. Total clients: %d", client.userID, len(h.clients))
}

func (h *Hub) unregisterClient(client *Client) {
    h.clientsMux.Lock()
    defer h.clientsMux.Unlock()

    if current, exists := h.clients[client.userID]; exists && current == client {
        client.Close()
        delete(h.clients, client.userID)
        log.Printf("User %d disconnected. Total clients: %d", client.userID, len(h.clients))
    }
}

// SendToUser pushes a message to the user's connection if one is open.
// Returns false when the user has no live connection here.
func (h *Hub) SendToUser(userID int64, message Message) bool {
    h.clientsMux.RLock()
    client, exists := h.clients[userID]
    h.clientsMux.RUnlock()

    if !exists {
        return false
    }

    data, err := json.Marshal(message)
    if err != nil {
        log.Printf("Error marshalling message: %v", err)
        return false
    }

    select {
    case client.send <- data:
        return true
    default:
        // Slow consumer: drop the connection rather than block the hub
        go func() { h.unregister <- client }()
        return false
    }
}

func (h *Hub) cleanup() {
    h.clientsMux.Lock()
    defer h.clientsMux.Unlock()

    for _, client := range h.clients {
        client.Close()
    }
    h.clients = make(map[int64]*Client)
}

// Client is one user's websocket connection
type Client struct {
    hub    *Hub
    userID int64
    conn   *websocket.Conn
    send   chan []byte

    closeOnce sync.Once
}

func NewClient(hub *Hub, userID int64, conn *websocket.Conn) *Client {
    return &Client{
        hub:    hub,
        userID: userID,
        conn:   conn,
        send:   make(chan []byte, 64),
    }
}

func (c *Client) Close() {
    c.closeOnce.Do(func() {
        close(c.send)
        c.conn.Close()
    })
}

// Serve registers the client and runs the pumps. Blocks until the
// connection drops.
func (c *Client) Serve() {
    c.hub.register <- c
    go c.writePump()
    c.readPump()
}

// readPump drains inbound frames so pongs are processed. Clients have
// nothing to say on this socket.
func (c *Client) readPump() {
    defer func() {
        c.hub.unregister <- c
    }()

    c.conn.SetReadLimit(maxMessageSize)
    c.conn.SetReadDeadline(time.Now().Add(pongWait))
    c.conn.SetPongHandler(func(string) error {
        c.conn.SetReadDeadline(time.Now().Add(pongWait))
        return nil
    })

    for {
        if _, _, err := c.conn.ReadMessage(); err != nil {
            if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
                log.Printf("websocket error for user %d: %v", c.userID, err)
            }
            return
        }
    }
}

func (c *Client) writePump() {
    ticker := time.NewTicker(pingPeriod)
    defer func() {
        ticker.Stop()
        c.conn.Close()
    }()

    for {
        select {
        case data, ok := <-c.send:
            c.conn.SetWriteDeadline(time.Now().Add(writeWait))
            if !ok {
                c.conn.WriteMessage(websocket.CloseMessage, []byte{})
                return
            }
            if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
