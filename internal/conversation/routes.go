package conversation

import (
    "net/http"

    "github.com/gorilla/mux"
)

// RegisterRoutes mounts the conversation endpoints behind authentication.
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware func(http.Handler) http.Handler) {
    sub := router.PathPrefix("/api/v1/conversations").Subrouter()
    sub.Use(authMiddleware)

    sub.HandleFunc("/{ref}", handler.GetConversation).Methods(http.MethodGet)
}
