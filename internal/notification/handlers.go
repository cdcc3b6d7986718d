package notification

import (
    "log"
    "net/http"

    "github.com/gorilla/websocket"

    "github.com/amouradev/amoura-backend/internal/auth"
    "github.com/amouradev/amoura-backend/internal/common/utils"
)

var upgrader = websocket.Upgrader{
    ReadBufferSize:  1024,
    WriteBufferSize: 1024,
    CheckOrigin: func(r *http.Request) bool {
        // Auth happens via the bearer token, not the origin
        return true
    },
}

type Handler struct {
    hub *Hub
}

func NewHandler(hub *Hub) *Handler {
    return &Handler{hub: hub}
}

// ServeWS upgrades the request and pumps notifications until the client
// disconnects.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
    userID, ok := auth.UserIDFromContext(r.Context())
    if !ok {
        utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
        return
    }

    conn, err := upgrader.Upgrade(w, r, nil)
    if err != nil {
        log.Printf("Failed to upgrade websocket for user %d: %v", userID, err)
        return
    }

    client := NewClient(h.hub, userID, conn)
    go client.Serve()
}
