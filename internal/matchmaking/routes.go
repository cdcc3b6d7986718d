package matchmaking

import (
    "net/http"

    "github.com/gorilla/mux"
)

// RegisterRoutes mounts the matchmaking endpoints. Every endpoint
// requires an authenticated user.
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware func(http.Handler) http.Handler) {
    sub := router.PathPrefix("/api/v1/matchmaking").Subrouter()
    sub.Use(authMiddleware)

    sub.HandleFunc("/candidates", handler.GetCandidates).Methods(http.MethodGet)
    sub.HandleFunc("/batch", handler.AcquireBatch).Methods(http.MethodPost)
    sub.HandleFunc("/like", handler.Like).Methods(http.MethodPost)
    sub.HandleFunc("/pass", handler.Pass).Methods(http.MethodPost)
    sub.HandleFunc("/matches", handler.ListMatches).Methods(http.MethodGet)
    sub.HandleFunc("/likes/received", handler.ListLikesReceived).Methods(http.MethodGet)
    sub.HandleFunc("/unmatch", handler.Unmatch).Methods(http.MethodPost)
}
